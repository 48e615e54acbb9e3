// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"fmt"
	"strings"

	"github.com/dotandev/simauto/internal/errors"
	"github.com/dotandev/simauto/internal/simulator"
	"github.com/dotandev/simauto/internal/table"
)

func queryDetail(objectType string, fields []string) string {
	return fmt.Sprintf("%s [%s]", objectType, strings.Join(fields, ","))
}

// GetSingleElement looks up one element by identity. values pairs with
// fields by position: known values identify the element, placeholders (0 or
// "") mark fields to fetch. A missing element is an empty table, not an
// error.
func (s *Session) GetSingleElement(objectType string, fields []string, values []any) (*table.Table, error) {
	if len(fields) != len(values) {
		return nil, errors.WrapContractViolation("%d fields but %d values", len(fields), len(values))
	}
	if len(fields) == 0 {
		return nil, errors.WrapContractViolation("no fields requested")
	}
	if err := s.requireCase("GetSingleElement"); err != nil {
		return nil, err
	}
	detail := queryDetail(objectType, fields)
	out, err := s.do(simulator.OpGetParametersSingleElement, detail, func(e simulator.Engine) (*simulator.Response, error) {
		return e.GetParametersSingleElement(objectType, fields, values)
	})
	if err != nil {
		s.log.Error("Error retrieving single element parameters", "object_type", objectType, "error", err)
		return nil, err
	}
	if out.State == simulator.StateEmpty {
		t := table.New(fields)
		t.Message = out.Message
		return t, nil
	}
	return table.FromRow(fields, out.Payload)
}

// GetMultipleElements fetches fields for every element of objectType, or
// only those passing the named engine-side filter when filterName is set.
func (s *Session) GetMultipleElements(objectType string, fields []string, filterName string) (*table.Table, error) {
	if len(fields) == 0 {
		return nil, errors.WrapContractViolation("no fields requested")
	}
	if err := s.requireCase("GetMultipleElements"); err != nil {
		return nil, err
	}
	detail := queryDetail(objectType, fields)
	if filterName != "" {
		detail += " filter=" + filterName
	}
	out, err := s.do(simulator.OpGetParametersMultipleElement, detail, func(e simulator.Engine) (*simulator.Response, error) {
		return e.GetParametersMultipleElement(objectType, fields, filterName)
	})
	if err != nil {
		s.log.Error("Error retrieving multiple element parameters", "object_type", objectType, "filter", filterName, "error", err)
		return nil, err
	}
	if out.State == simulator.StateEmpty {
		t := table.New(fields)
		t.Message = out.Message
		return t, nil
	}
	return table.FromColumns(fields, out.Payload)
}

// GetMultipleElementsAsMap runs GetMultipleElements and keys the rows per
// key; see table.Table.ToMap for the skipping and duplicate rules.
func (s *Session) GetMultipleElementsAsMap(objectType string, fields []string, filterName string, key table.KeySpec) (map[string]table.Record, error) {
	for _, k := range key.Fields {
		if !contains(fields, k) {
			return nil, errors.WrapContractViolation("key field %q is not among the queried fields %v", k, fields)
		}
	}
	t, err := s.GetMultipleElements(objectType, fields, filterName)
	if err != nil {
		return nil, err
	}
	return t.ToMap(key)
}

// GetFieldList returns the engine's field catalogue for objectType, one row
// per field as the engine lists them.
func (s *Session) GetFieldList(objectType string) (*table.Table, error) {
	if err := s.requireCase("GetFieldList"); err != nil {
		return nil, err
	}
	out, err := s.do(simulator.OpGetFieldList, objectType, func(e simulator.Engine) (*simulator.Response, error) {
		return e.GetFieldList(objectType)
	})
	if err != nil {
		s.log.Error("Error getting field list", "object_type", objectType, "error", err)
		return nil, err
	}
	if out.State == simulator.StateEmpty {
		t := table.New(nil)
		t.Message = out.Message
		return t, nil
	}
	return table.FromRecords(nil, out.Payload)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
