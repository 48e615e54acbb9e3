// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package simulator

import (
	"fmt"
	"runtime"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"github.com/dotandev/simauto/internal/errors"
	"github.com/dotandev/simauto/internal/logger"
)

// comEngine drives the SimulatorAuto object. COM objects are bound to the
// apartment that created them, so every call runs on one locked OS thread.
type comEngine struct {
	progID   string
	calls    chan func(*ole.IDispatch)
	released bool
}

type comResult struct {
	resp *Response
	err  error
}

func connectPlatform(progID string) (Engine, error) {
	e := &comEngine{
		progID: progID,
		calls:  make(chan func(*ole.IDispatch)),
	}
	ready := make(chan error, 1)
	go e.loop(ready)
	if err := <-ready; err != nil {
		return nil, errors.WrapEngineUnavailable(err)
	}
	return e, nil
}

func (e *comEngine) loop(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		ready <- fmt.Errorf("CoInitializeEx: %w", err)
		return
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject(e.progID)
	if err != nil {
		ready <- fmt.Errorf("create %s: %w", e.progID, err)
		return
	}
	disp, err := unknown.QueryInterface(ole.IID_IDispatch)
	unknown.Release()
	if err != nil {
		ready <- fmt.Errorf("query IDispatch on %s: %w", e.progID, err)
		return
	}
	defer disp.Release()

	ready <- nil
	for fn := range e.calls {
		fn(disp)
	}
	logger.Logger.Debug("Simulator COM loop stopped", "prog_id", e.progID)
}

func (e *comEngine) call(method string, args ...interface{}) (*Response, error) {
	if e.released {
		return nil, errors.WrapSessionReleased(method)
	}
	out := make(chan comResult, 1)
	e.calls <- func(disp *ole.IDispatch) {
		v, err := oleutil.CallMethod(disp, method, args...)
		for _, a := range args {
			if arr, ok := a.(ole.VARIANT); ok {
				_ = arr.Clear()
			}
		}
		if err != nil {
			out <- comResult{err: errors.WrapEngineUnavailable(fmt.Errorf("%s: %w", method, err))}
			return
		}
		defer v.Clear()
		resp, err := responseFromVariant(v)
		out <- comResult{resp: resp, err: err}
	}
	r := <-out
	return r.resp, r.err
}

// callWithArrays packs slice arguments as SAFEARRAYs of VARIANTs, the only
// array form SimAuto accepts.
func (e *comEngine) callWithArrays(method string, args ...interface{}) (*Response, error) {
	conv := make([]interface{}, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case []string:
			vals := make([]any, len(v))
			for j, s := range v {
				vals[j] = s
			}
			arr, err := variantArray(vals)
			if err != nil {
				return nil, err
			}
			conv[i] = arr
		case []any:
			arr, err := variantArray(v)
			if err != nil {
				return nil, err
			}
			conv[i] = arr
		default:
			conv[i] = a
		}
	}
	return e.call(method, conv...)
}

func (e *comEngine) OpenCase(path string) (*Response, error) {
	return e.call(OpOpenCase, path)
}

func (e *comEngine) CloseCase() (*Response, error) {
	return e.call(OpCloseCase)
}

func (e *comEngine) SaveCase(path, format string, overwrite bool) (*Response, error) {
	return e.call(OpSaveCase, path, format, overwrite)
}

func (e *comEngine) WriteAuxFile(path, filterName, objectType string, appendTo bool, fields []string) (*Response, error) {
	if len(fields) == 0 {
		return e.call(OpWriteAuxFile, path, filterName, objectType, appendTo, "ALL")
	}
	return e.callWithArrays(OpWriteAuxFile, path, filterName, objectType, appendTo, fields)
}

func (e *comEngine) RunScriptCommand(command string) (*Response, error) {
	return e.call(OpRunScriptCommand, command)
}

func (e *comEngine) ProcessAuxFile(path string) (*Response, error) {
	return e.call(OpProcessAuxFile, path)
}

func (e *comEngine) GetParametersSingleElement(objectType string, fields []string, values []any) (*Response, error) {
	return e.callWithArrays(OpGetParametersSingleElement, objectType, fields, values)
}

func (e *comEngine) GetParametersMultipleElement(objectType string, fields []string, filterName string) (*Response, error) {
	return e.callWithArrays(OpGetParametersMultipleElement, objectType, fields, filterName)
}

func (e *comEngine) SendToExcel(objectType, filterName string, fields []string) (*Response, error) {
	if len(fields) == 0 {
		return e.call(OpSendToExcel, objectType, filterName, "ALL")
	}
	return e.callWithArrays(OpSendToExcel, objectType, filterName, fields)
}

func (e *comEngine) GetFieldList(objectType string) (*Response, error) {
	return e.call(OpGetFieldList, objectType)
}

// Release stops the COM loop, which releases the dispatch handle and
// uninitializes COM on its thread. Subsequent calls fail.
func (e *comEngine) Release() error {
	if e.released {
		return nil
	}
	e.released = true
	close(e.calls)
	return nil
}
