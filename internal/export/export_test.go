// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/simauto/internal/errors"
	"github.com/dotandev/simauto/internal/table"
)

type fakeDB struct {
	execs   []string
	copied  [][]any
	table   pgx.Identifier
	columns []string
	copyErr error
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	f.table, f.columns = tableName, columnNames
	for rowSrc.Next() {
		vals, err := rowSrc.Values()
		if err != nil {
			return 0, err
		}
		f.copied = append(f.copied, vals)
	}
	return int64(len(f.copied)), rowSrc.Err()
}

func busTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.FromColumns([]string{"BusNum", "BusName"}, []any{
		[]any{"1", "2"},
		[]any{"ALPHA", ""},
	})
	require.NoError(t, err)
	return tbl
}

func TestCreateStatement(t *testing.T) {
	got := CreateStatement(pgx.Identifier{"grid", "buses"}, []string{"BusNum", "Bus Name"})
	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "grid"."buses" ("BusNum" text, "Bus Name" text)`, got)
}

func TestRowsMissingIsNull(t *testing.T) {
	rows := Rows(busTable(t))
	assert.Equal(t, [][]any{{"1", "ALPHA"}, {"2", nil}}, rows)
}

func TestCopy(t *testing.T) {
	db := &fakeDB{}
	n, err := Copy(context.Background(), db, Target{Table: "grid.buses", Replace: true}, busTable(t))
	require.NoError(t, err)

	assert.EqualValues(t, 2, n)
	assert.Equal(t, pgx.Identifier{"grid", "buses"}, db.table)
	assert.Equal(t, []string{"BusNum", "BusName"}, db.columns)
	require.Len(t, db.execs, 2)
	assert.Equal(t, `TRUNCATE "grid"."buses"`, db.execs[1])
}

func TestCopyRejectsBadTarget(t *testing.T) {
	for _, name := range []string{"", "a..b", "a.b.c", "."} {
		_, err := Copy(context.Background(), &fakeDB{}, Target{Table: name}, busTable(t))
		assert.ErrorIs(t, err, errors.ErrContractViolation, name)
	}
}

func TestCopyFailure(t *testing.T) {
	db := &fakeDB{copyErr: stderrors.New("permission denied for table buses")}
	_, err := Copy(context.Background(), db, Target{Table: "buses"}, busTable(t))
	assert.ErrorContains(t, err, "permission denied")
}
