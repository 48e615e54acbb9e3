// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package auxfile renders the auxiliary-file blocks the client generates
// itself. Everything else in that format is caller-supplied text.
package auxfile

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/dotandev/simauto/internal/errors"
)

// Filter is a named, engine-side predicate over elements of one type.
// Condition is raw script-language text placed in the Condition subdata.
type Filter struct {
	ObjectType string
	Name       string
	Condition  string
	Logic      string
	Pre        string
	Enabled    string
}

var filterTemplate = template.Must(template.New("filter").Parse(`DATA (FILTER, [ObjectType,FilterName,FilterLogic,FilterPre,Enabled])
{
"{{.ObjectType}}" "{{.Name}}" "{{.Logic}}" "{{.Pre}}" "{{.Enabled}}"
    <SUBDATA Condition>
        {{.Condition}}
    </SUBDATA>
}
`))

// WithDefaults fills Logic, Pre and Enabled with AND, NO and YES.
func (f Filter) WithDefaults() Filter {
	if f.Logic == "" {
		f.Logic = "AND"
	}
	if f.Pre == "" {
		f.Pre = "NO"
	}
	if f.Enabled == "" {
		f.Enabled = "YES"
	}
	return f
}

// Validate checks the fields that would corrupt the block.
func (f Filter) Validate() error {
	if f.ObjectType == "" {
		return errors.WrapContractViolation("filter object type is required")
	}
	if f.Name == "" {
		return errors.WrapContractViolation("filter name is required")
	}
	for _, v := range []string{f.ObjectType, f.Name, f.Logic, f.Pre, f.Enabled} {
		if strings.ContainsAny(v, "\"\n") {
			return errors.WrapContractViolation("filter attribute %q contains a quote or newline", v)
		}
	}
	return nil
}

// Render produces the DATA (FILTER ...) block.
func (f Filter) Render() (string, error) {
	f = f.WithDefaults()
	if err := f.Validate(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := filterTemplate.Execute(&buf, f); err != nil {
		return "", fmt.Errorf("render filter %s: %w", f.Name, err)
	}
	return buf.String(), nil
}
