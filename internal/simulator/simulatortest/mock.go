// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package simulatortest provides a testify mock of simulator.Engine.
package simulatortest

import (
	"github.com/stretchr/testify/mock"

	"github.com/dotandev/simauto/internal/simulator"
)

// Engine is a mock simulator.Engine.
type Engine struct {
	mock.Mock
}

var _ simulator.Engine = (*Engine)(nil)

func respond(args mock.Arguments) (*simulator.Response, error) {
	var resp *simulator.Response
	if r := args.Get(0); r != nil {
		resp = r.(*simulator.Response)
	}
	return resp, args.Error(1)
}

func (m *Engine) OpenCase(path string) (*simulator.Response, error) {
	return respond(m.Called(path))
}

func (m *Engine) CloseCase() (*simulator.Response, error) {
	return respond(m.Called())
}

func (m *Engine) SaveCase(path, format string, overwrite bool) (*simulator.Response, error) {
	return respond(m.Called(path, format, overwrite))
}

func (m *Engine) WriteAuxFile(path, filterName, objectType string, appendTo bool, fields []string) (*simulator.Response, error) {
	return respond(m.Called(path, filterName, objectType, appendTo, fields))
}

func (m *Engine) RunScriptCommand(command string) (*simulator.Response, error) {
	return respond(m.Called(command))
}

func (m *Engine) ProcessAuxFile(path string) (*simulator.Response, error) {
	return respond(m.Called(path))
}

func (m *Engine) GetParametersSingleElement(objectType string, fields []string, values []any) (*simulator.Response, error) {
	return respond(m.Called(objectType, fields, values))
}

func (m *Engine) GetParametersMultipleElement(objectType string, fields []string, filterName string) (*simulator.Response, error) {
	return respond(m.Called(objectType, fields, filterName))
}

func (m *Engine) SendToExcel(objectType, filterName string, fields []string) (*simulator.Response, error) {
	return respond(m.Called(objectType, filterName, fields))
}

func (m *Engine) GetFieldList(objectType string) (*simulator.Response, error) {
	return respond(m.Called(objectType))
}

func (m *Engine) Release() error {
	return m.Called().Error(0)
}
