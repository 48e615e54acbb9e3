// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"strconv"
	"strings"

	"github.com/dotandev/simauto/internal/errors"
	"github.com/dotandev/simauto/internal/logger"
)

// KeySeparator joins the parts of a composite key. Inside a composite key a
// literal separator in a value is written as \| and a backslash as \\, so
// distinct rows never share a key. Single-field keys are the value as is.
const KeySeparator = "|"

var keyEscaper = strings.NewReplacer(`\`, `\\`, KeySeparator, `\`+KeySeparator)

// KeySpec selects how ToMap keys rows. With no Fields, rows are keyed by
// ordinal position. With Func set, Fields must name exactly one field and
// the key is Func applied to its value.
type KeySpec struct {
	Fields []string
	Func   func(string) string
}

func ByField(field string) KeySpec { return KeySpec{Fields: []string{field}} }

func ByFields(fields ...string) KeySpec { return KeySpec{Fields: fields} }

func ByFunc(field string, fn func(string) string) KeySpec {
	return KeySpec{Fields: []string{field}, Func: fn}
}

// ToMap re-shapes the table into records keyed per spec. Rows whose key is
// empty are skipped. When two rows produce the same key the later row wins
// and the collision is logged.
func (t *Table) ToMap(spec KeySpec) (map[string]Record, error) {
	if spec.Func != nil && len(spec.Fields) != 1 {
		return nil, errors.WrapContractViolation("a key function takes exactly one field, got %d", len(spec.Fields))
	}
	idx := make([]int, len(spec.Fields))
	for i, f := range spec.Fields {
		idx[i] = t.Column(f)
		if idx[i] < 0 {
			return nil, errors.WrapContractViolation("key field %q is not among the queried fields %v", f, t.Columns)
		}
	}

	out := make(map[string]Record, t.Len())
	for r := range t.Rows {
		key, ok := t.key(r, idx, spec.Func)
		if !ok {
			logger.Logger.Debug("Skipping row with empty key", "row", r, "key_fields", spec.Fields)
			continue
		}
		if _, dup := out[key]; dup {
			logger.Logger.Warn("Duplicate key, keeping the later row", "key", key, "row", r)
		}
		out[key] = t.Record(r)
	}
	return out, nil
}

func (t *Table) key(row int, idx []int, fn func(string) string) (string, bool) {
	if len(idx) == 0 {
		return strconv.Itoa(row), true
	}
	parts := make([]string, len(idx))
	for i, c := range idx {
		cell := t.Rows[row][c]
		if cell.Missing {
			return "", false
		}
		parts[i] = cell.String()
		if len(idx) > 1 {
			parts[i] = keyEscaper.Replace(parts[i])
		}
	}
	key := strings.Join(parts, KeySeparator)
	if fn != nil {
		key = fn(key)
	}
	return key, key != ""
}
