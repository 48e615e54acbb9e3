// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package export copies Result Tables into PostgreSQL.
package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dotandev/simauto/internal/errors"
	"github.com/dotandev/simauto/internal/logger"
	"github.com/dotandev/simauto/internal/table"
)

// DB is the part of a pgx connection or pool the exporter needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Connect opens a pool for dsn and checks it answers.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to export database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping export database: %w", err)
	}
	return pool, nil
}

// Target names the destination table, optionally schema-qualified as
// "schema.table".
type Target struct {
	Table string
	// Replace truncates the table before copying.
	Replace bool
}

func (t Target) identifier() (pgx.Identifier, error) {
	parts := strings.Split(strings.TrimSpace(t.Table), ".")
	if len(parts) > 2 {
		return nil, errors.WrapContractViolation("export table %q has too many dots", t.Table)
	}
	for _, p := range parts {
		if p == "" {
			return nil, errors.WrapContractViolation("export table name is required")
		}
	}
	return pgx.Identifier(parts), nil
}

// CreateStatement is the DDL for a text column per field. Numeric fields
// come back from the engine as strings, so text keeps them exact.
func CreateStatement(id pgx.Identifier, columns []string) string {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = pgx.Identifier{c}.Sanitize() + " text"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", id.Sanitize(), strings.Join(cols, ", "))
}

// Rows converts the table for COPY; missing cells become NULL.
func Rows(t *table.Table) [][]any {
	out := make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		row := make([]any, len(r))
		for j, c := range r {
			if c.Missing {
				continue
			}
			row[j] = c.String()
		}
		out[i] = row
	}
	return out
}

// Copy creates the target table if needed and copies every row of t into
// it, returning the number of rows written.
func Copy(ctx context.Context, db DB, target Target, t *table.Table) (int64, error) {
	id, err := target.identifier()
	if err != nil {
		return 0, err
	}
	if len(t.Columns) == 0 {
		return 0, errors.WrapContractViolation("cannot export a table without columns")
	}
	if _, err := db.Exec(ctx, CreateStatement(id, t.Columns)); err != nil {
		return 0, fmt.Errorf("create %s: %w", id.Sanitize(), err)
	}
	if target.Replace {
		if _, err := db.Exec(ctx, "TRUNCATE "+id.Sanitize()); err != nil {
			return 0, fmt.Errorf("truncate %s: %w", id.Sanitize(), err)
		}
	}
	n, err := db.CopyFrom(ctx, id, t.Columns, pgx.CopyFromRows(Rows(t)))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", id.Sanitize(), err)
	}
	logger.Logger.Info("Exported result table", "table", id.Sanitize(), "rows", n)
	return n, nil
}
