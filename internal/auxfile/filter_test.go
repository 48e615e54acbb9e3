// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package auxfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/simauto/internal/errors"
)

func TestRenderDefaults(t *testing.T) {
	out, err := Filter{
		ObjectType: "BUS",
		Name:       "HighVoltage",
		Condition:  `BusNomVolt > 230`,
	}.Render()
	require.NoError(t, err)

	want := `DATA (FILTER, [ObjectType,FilterName,FilterLogic,FilterPre,Enabled])
{
"BUS" "HighVoltage" "AND" "NO" "YES"
    <SUBDATA Condition>
        BusNomVolt > 230
    </SUBDATA>
}
`
	assert.Equal(t, want, out)
}

func TestRenderKeepsConditionVerbatim(t *testing.T) {
	cond := `AreaName = "East" & BusPUVolt < 0.95`
	out, err := Filter{ObjectType: "BUS", Name: "LowEast", Condition: cond, Logic: "OR", Pre: "YES", Enabled: "NO"}.Render()
	require.NoError(t, err)

	assert.Contains(t, out, cond)
	assert.Contains(t, out, `"BUS" "LowEast" "OR" "YES" "NO"`)
}

func TestRenderRejectsBadAttributes(t *testing.T) {
	tests := []Filter{
		{Name: "NoType"},
		{ObjectType: "BUS"},
		{ObjectType: "BUS", Name: `Bad"Name`},
		{ObjectType: "BUS", Name: "Line\nBreak"},
	}
	for _, f := range tests {
		_, err := f.Render()
		assert.ErrorIs(t, err, errors.ErrContractViolation)
	}
}
