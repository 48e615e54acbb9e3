// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"fmt"
	"strings"
)

// Call describes one engine request for interceptors.
type Call struct {
	Op string
	// Detail is the human-readable argument summary: a path, a command, or
	// an object type with its fields.
	Detail string
}

// Interceptor observes or decorates an engine call. It must call invoke
// exactly once and return its results.
type Interceptor func(call Call, invoke func() (*Response, error)) (*Response, error)

// Intercept wraps next so every call passes through each interceptor, the
// first one outermost.
func Intercept(next Engine, interceptors ...Interceptor) Engine {
	for i := len(interceptors) - 1; i >= 0; i-- {
		next = &intercepted{next: next, fn: interceptors[i]}
	}
	return next
}

type intercepted struct {
	next Engine
	fn   Interceptor
}

func fieldDetail(objectType string, fields []string) string {
	return fmt.Sprintf("%s [%s]", objectType, strings.Join(fields, ","))
}

func (i *intercepted) OpenCase(path string) (*Response, error) {
	return i.fn(Call{Op: OpOpenCase, Detail: path}, func() (*Response, error) {
		return i.next.OpenCase(path)
	})
}

func (i *intercepted) CloseCase() (*Response, error) {
	return i.fn(Call{Op: OpCloseCase}, i.next.CloseCase)
}

func (i *intercepted) SaveCase(path, format string, overwrite bool) (*Response, error) {
	return i.fn(Call{Op: OpSaveCase, Detail: path}, func() (*Response, error) {
		return i.next.SaveCase(path, format, overwrite)
	})
}

func (i *intercepted) WriteAuxFile(path, filterName, objectType string, appendTo bool, fields []string) (*Response, error) {
	return i.fn(Call{Op: OpWriteAuxFile, Detail: path}, func() (*Response, error) {
		return i.next.WriteAuxFile(path, filterName, objectType, appendTo, fields)
	})
}

func (i *intercepted) RunScriptCommand(command string) (*Response, error) {
	return i.fn(Call{Op: OpRunScriptCommand, Detail: command}, func() (*Response, error) {
		return i.next.RunScriptCommand(command)
	})
}

func (i *intercepted) ProcessAuxFile(path string) (*Response, error) {
	return i.fn(Call{Op: OpProcessAuxFile, Detail: path}, func() (*Response, error) {
		return i.next.ProcessAuxFile(path)
	})
}

func (i *intercepted) GetParametersSingleElement(objectType string, fields []string, values []any) (*Response, error) {
	return i.fn(Call{Op: OpGetParametersSingleElement, Detail: fieldDetail(objectType, fields)}, func() (*Response, error) {
		return i.next.GetParametersSingleElement(objectType, fields, values)
	})
}

func (i *intercepted) GetParametersMultipleElement(objectType string, fields []string, filterName string) (*Response, error) {
	return i.fn(Call{Op: OpGetParametersMultipleElement, Detail: fieldDetail(objectType, fields)}, func() (*Response, error) {
		return i.next.GetParametersMultipleElement(objectType, fields, filterName)
	})
}

func (i *intercepted) SendToExcel(objectType, filterName string, fields []string) (*Response, error) {
	return i.fn(Call{Op: OpSendToExcel, Detail: fieldDetail(objectType, fields)}, func() (*Response, error) {
		return i.next.SendToExcel(objectType, filterName, fields)
	})
}

func (i *intercepted) GetFieldList(objectType string) (*Response, error) {
	return i.fn(Call{Op: OpGetFieldList, Detail: objectType}, func() (*Response, error) {
		return i.next.GetFieldList(objectType)
	})
}

func (i *intercepted) Release() error {
	return i.next.Release()
}
