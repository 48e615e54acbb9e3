// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"github.com/dotandev/simauto/internal/errors"
	"github.com/dotandev/simauto/internal/simulator"
)

// CaseFormat is the format SaveCase writes.
const CaseFormat = "PWB"

// Save writes the case to its current path, overwriting it. Large cases take
// several seconds. Failures wrap errors.ErrCaseNotSaved.
func (s *Session) Save() error {
	if err := s.requireCase("Save"); err != nil {
		return err
	}
	path := s.paths.Case
	if _, err := s.do(simulator.OpSaveCase, path, func(e simulator.Engine) (*simulator.Response, error) {
		return e.SaveCase(path, CaseFormat, true)
	}); err != nil {
		s.log.Error("Error saving case. CASE NOT SAVED", "path", path, "error", err)
		return errors.WrapCaseNotSaved(path, err)
	}
	s.log.Info("Case saved", "path", path)
	return nil
}

// SaveAs retargets the Session to path and saves there. Any existing file
// at path is overwritten.
func (s *Session) SaveAs(path string) error {
	if err := s.requireCase("SaveAs"); err != nil {
		return err
	}
	paths, err := ResolvePaths(path)
	if err != nil {
		return err
	}
	s.paths = paths
	return s.Save()
}

// AuxExport selects what SaveAsAuxiliary writes.
type AuxExport struct {
	// Path defaults to the Session's derived auxiliary path.
	Path       string
	FilterName string
	ObjectType string
	Append     bool
	// Fields defaults to all fields.
	Fields []string
}

// SaveAsAuxiliary exports a filtered subset of the case as auxiliary text.
func (s *Session) SaveAsAuxiliary(x AuxExport) error {
	if x.ObjectType == "" {
		return errors.WrapContractViolation("auxiliary export needs an object type")
	}
	if err := s.requireCase("SaveAsAuxiliary"); err != nil {
		return err
	}
	path := x.Path
	if path == "" {
		path = s.paths.Aux
	}
	if _, err := s.do(simulator.OpWriteAuxFile, path, func(e simulator.Engine) (*simulator.Response, error) {
		return e.WriteAuxFile(path, x.FilterName, x.ObjectType, x.Append, x.Fields)
	}); err != nil {
		s.log.Error("Error writing auxiliary file. CASE NOT SAVED", "path", path, "object_type", x.ObjectType, "error", err)
		return errors.WrapCaseNotSaved(path, err)
	}
	s.log.Info("Auxiliary file written", "path", path, "object_type", x.ObjectType)
	return nil
}

// SendToExcel asks the engine to push element data to a spreadsheet.
func (s *Session) SendToExcel(objectType, filterName string, fields []string) error {
	if err := s.requireCase("SendToExcel"); err != nil {
		return err
	}
	if _, err := s.do(simulator.OpSendToExcel, objectType, func(e simulator.Engine) (*simulator.Response, error) {
		return e.SendToExcel(objectType, filterName, fields)
	}); err != nil {
		s.log.Error("Error sending to excel. DATA NOT SENT TO EXCEL", "object_type", objectType, "error", err)
		return err
	}
	return nil
}
