// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"fmt"

	"github.com/dotandev/simauto/internal/errors"
)

// Fault field names on BUS.
const (
	FieldBusNum      = "BusNum"
	FieldFaultCurMag = "FaultCurMag"
)

// FaultCommand is the balanced three-phase fault script for a bus.
func FaultCommand(bus int) string {
	return fmt.Sprintf("Fault([BUS %d], 3PB);", bus)
}

// ThreePhaseFaultCurrent runs a balanced three-phase fault at bus and reads
// back the fault current magnitude. It works on positive-sequence-only
// cases. ok is false when the bus reported no value; if the fault command
// fails the query is not issued.
func (s *Session) ThreePhaseFaultCurrent(bus int) (magnitude float64, ok bool, err error) {
	if err := s.RunScript(FaultCommand(bus)); err != nil {
		s.log.Error("Error running 3PB fault", "bus", bus, "error", err)
		return 0, false, err
	}
	t, err := s.GetSingleElement("BUS", []string{FieldBusNum, FieldFaultCurMag}, []any{bus, 0})
	if err != nil {
		return 0, false, err
	}
	c, found := t.Get(0, FieldFaultCurMag)
	if !found || c.Missing {
		return 0, false, nil
	}
	mag, err := c.Float64()
	if err != nil {
		return 0, false, errors.WrapMalformedPayload(fmt.Sprintf("%s for bus %d: %v", FieldFaultCurMag, bus, err))
	}
	return mag, true, nil
}
