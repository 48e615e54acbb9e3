// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package db keeps a local history of simulator calls so failed runs can be
// searched after the fact.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Call is one recorded engine request.
type Call struct {
	ID        int64
	SessionID string
	Op        string
	Detail    string
	State     string
	Message   string
	Duration  time.Duration
	Timestamp time.Time
}

// SearchParams filters recorded calls. Empty fields match everything.
type SearchParams struct {
	SessionID   string
	Op          string
	ErrorRegex  string
	DetailRegex string
	Since       time.Time
	Limit       int
}

type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS calls (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	op          TEXT NOT NULL,
	detail      TEXT NOT NULL DEFAULT '',
	state       TEXT NOT NULL,
	message     TEXT NOT NULL DEFAULT '',
	duration_ns INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS calls_session ON calls(session_id);
CREATE INDEX IF NOT EXISTS calls_created ON calls(created_at);
`

// DefaultPath is ~/.simauto/history.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".simauto", "history.db"), nil
}

// InitDB opens (creating if needed) the history database at path, or at
// DefaultPath when path is empty.
func InitDB(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	// One writer; sqlite serializes anyway and this keeps :memory: on one connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts c and fills in its ID. A zero Timestamp means now.
func (s *Store) Record(ctx context.Context, c *Call) error {
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO calls (session_id, op, detail, state, message, duration_ns, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.SessionID, c.Op, c.Detail, c.State, c.Message, int64(c.Duration), c.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("record %s call: %w", c.Op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("record %s call: %w", c.Op, err)
	}
	c.ID = id
	return nil
}

// SearchCalls returns matching calls, newest first. The regexes are applied
// to the message and detail columns after the SQL filters.
func (s *Store) SearchCalls(ctx context.Context, params SearchParams) ([]Call, error) {
	var errRe, detailRe *regexp.Regexp
	var err error
	if params.ErrorRegex != "" {
		if errRe, err = regexp.Compile(params.ErrorRegex); err != nil {
			return nil, fmt.Errorf("invalid error pattern: %w", err)
		}
	}
	if params.DetailRegex != "" {
		if detailRe, err = regexp.Compile(params.DetailRegex); err != nil {
			return nil, fmt.Errorf("invalid detail pattern: %w", err)
		}
	}

	var where []string
	var args []any
	if params.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, params.SessionID)
	}
	if params.Op != "" {
		where = append(where, "op = ?")
		args = append(args, params.Op)
	}
	if !params.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, params.Since.UnixNano())
	}
	query := `SELECT id, session_id, op, detail, state, message, duration_ns, created_at FROM calls`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search calls: %w", err)
	}
	defer rows.Close()

	var out []Call
	for rows.Next() {
		var c Call
		var dur, created int64
		if err := rows.Scan(&c.ID, &c.SessionID, &c.Op, &c.Detail, &c.State, &c.Message, &dur, &created); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		c.Duration = time.Duration(dur)
		c.Timestamp = time.Unix(0, created)

		if errRe != nil && !errRe.MatchString(c.Message) {
			continue
		}
		if detailRe != nil && !detailRe.MatchString(c.Detail) {
			continue
		}
		out = append(out, c)
		if params.Limit > 0 && len(out) >= params.Limit {
			break
		}
	}
	return out, rows.Err()
}

// Prune deletes calls older than before and reports how many went.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM calls WHERE created_at < ?`, before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune calls: %w", err)
	}
	return res.RowsAffected()
}
