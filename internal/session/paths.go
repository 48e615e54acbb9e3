// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"path/filepath"
	"strings"

	"github.com/dotandev/simauto/internal/errors"
)

// CaseExt is appended to case paths given without an extension.
const CaseExt = ".pwb"

// Paths are the case file and the locations derived from it.
type Paths struct {
	Case   string
	Folder string
	Name   string
	// Aux is the scratch auxiliary file next to the case: same folder and
	// stem, .aux extension.
	Aux string
}

// ResolvePaths derives folder, base name and auxiliary path from a case path.
func ResolvePaths(path string) (Paths, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Paths{}, errors.WrapContractViolation("case path is required")
	}
	if filepath.Ext(path) == "" {
		path += CaseExt
	}
	folder := filepath.Dir(path)
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Paths{
		Case:   path,
		Folder: folder,
		Name:   name,
		Aux:    filepath.Join(folder, name+".aux"),
	}, nil
}
