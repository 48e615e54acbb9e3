// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package simulator

// Engine is the automation surface of the external simulator. Every call
// blocks until the simulator answers and returns the raw response pair; the
// error return is reserved for failures to reach the simulator at all.
type Engine interface {
	OpenCase(path string) (*Response, error)
	CloseCase() (*Response, error)
	SaveCase(path, format string, overwrite bool) (*Response, error)
	WriteAuxFile(path, filterName, objectType string, appendTo bool, fields []string) (*Response, error)
	RunScriptCommand(command string) (*Response, error)
	ProcessAuxFile(path string) (*Response, error)
	GetParametersSingleElement(objectType string, fields []string, values []any) (*Response, error)
	GetParametersMultipleElement(objectType string, fields []string, filterName string) (*Response, error)
	SendToExcel(objectType, filterName string, fields []string) (*Response, error)
	GetFieldList(objectType string) (*Response, error)
	Release() error
}

// Operation names, as the simulator spells them.
const (
	OpOpenCase                     = "OpenCase"
	OpCloseCase                    = "CloseCase"
	OpSaveCase                     = "SaveCase"
	OpWriteAuxFile                 = "WriteAuxFile"
	OpRunScriptCommand             = "RunScriptCommand"
	OpProcessAuxFile               = "ProcessAuxFile"
	OpGetParametersSingleElement   = "GetParametersSingleElement"
	OpGetParametersMultipleElement = "GetParametersMultipleElement"
	OpSendToExcel                  = "SendToExcel"
	OpGetFieldList                 = "GetFieldList"
)
