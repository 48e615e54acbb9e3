// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"fmt"
	"os"
	"strings"

	"github.com/dotandev/simauto/internal/auxfile"
	"github.com/dotandev/simauto/internal/errors"
	"github.com/dotandev/simauto/internal/simulator"
)

// RunScript forwards one script command verbatim. The returned error names
// both the engine message and the command.
func (s *Session) RunScript(command string) error {
	if err := s.requireCase("RunScript"); err != nil {
		return err
	}
	if _, err := s.do(simulator.OpRunScriptCommand, command, func(e simulator.Engine) (*simulator.Response, error) {
		return e.RunScriptCommand(command)
	}); err != nil {
		s.log.Error("Error encountered with script", "command", command, "error", err)
		return err
	}
	return nil
}

// LoadAuxiliaryText writes text to the derived auxiliary path, replacing
// whatever is there, and has the engine process it. This reaches edits the
// parameter API cannot express.
func (s *Session) LoadAuxiliaryText(text string) error {
	if err := s.requireCase("LoadAuxiliaryText"); err != nil {
		return err
	}
	path := s.paths.Aux
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		s.log.Error("Error writing auxiliary text", "path", path, "error", err)
		return fmt.Errorf("write auxiliary file %s: %w", path, err)
	}
	if _, err := s.do(simulator.OpProcessAuxFile, path, func(e simulator.Engine) (*simulator.Response, error) {
		return e.ProcessAuxFile(path)
	}); err != nil {
		s.log.Error("Error running auxiliary text", "path", path, "error", err)
		return err
	}
	return nil
}

// CreateFilter defines a named filter in the case. Unset Logic, Pre and
// Enabled default to AND, NO and YES.
func (s *Session) CreateFilter(f auxfile.Filter) error {
	text, err := f.Render()
	if err != nil {
		return err
	}
	if err := s.LoadAuxiliaryText(text); err != nil {
		s.log.Error("Error creating filter", "filter", f.Name, "error", err)
		return fmt.Errorf("create filter %s: %w", f.Name, err)
	}
	return nil
}

// TLRRequest describes a transmission loading relief calculation.
type TLRRequest struct {
	// FlowElement is [INTERFACE "name"] or [BRANCH near far ckt].
	FlowElement string
	// Direction is BUYER or SELLER.
	Direction string
	// Transactor is [AREA n], [ZONE n], [SUPERAREA "name"],
	// [INJECTIONGROUP "name"], [BUS n] or [SLACK].
	Transactor string
	// Method is AC, DC or DCPC; empty means AC.
	Method string
}

// Command renders the CalculateTLR script command.
func (r TLRRequest) Command() (string, error) {
	dir := strings.ToUpper(strings.TrimSpace(r.Direction))
	if dir != "BUYER" && dir != "SELLER" {
		return "", errors.WrapContractViolation("TLR direction must be BUYER or SELLER, got %q", r.Direction)
	}
	if r.FlowElement == "" || r.Transactor == "" {
		return "", errors.WrapContractViolation("TLR needs a flow element and a transactor")
	}
	method := strings.ToUpper(r.Method)
	switch method {
	case "":
		method = "AC"
	case "AC", "DC", "DCPC":
	default:
		return "", errors.WrapContractViolation("TLR linear method must be AC, DC or DCPC, got %q", r.Method)
	}
	return fmt.Sprintf("CalculateTLR(%s, %s, %s, %s);", r.FlowElement, dir, r.Transactor, method), nil
}

// CalculateTLR runs a TLR sensitivity calculation for a flow element.
func (s *Session) CalculateTLR(r TLRRequest) error {
	cmd, err := r.Command()
	if err != nil {
		return err
	}
	return s.RunScript(cmd)
}
