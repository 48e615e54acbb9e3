// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package simulator

import (
	"fmt"
	"math"
	"unsafe"

	ole "github.com/go-ole/go-ole"
	"golang.org/x/sys/windows"

	"github.com/dotandev/simauto/internal/errors"
)

var (
	oleaut32                  = windows.NewLazySystemDLL("oleaut32.dll")
	procSafeArrayCreateVector = oleaut32.NewProc("SafeArrayCreateVector")
	procSafeArrayPutElement   = oleaut32.NewProc("SafeArrayPutElement")
	procSafeArrayGetElement   = oleaut32.NewProc("SafeArrayGetElement")
	procSafeArrayGetLBound    = oleaut32.NewProc("SafeArrayGetLBound")
	procSafeArrayGetUBound    = oleaut32.NewProc("SafeArrayGetUBound")
	procSafeArrayGetVartype   = oleaut32.NewProc("SafeArrayGetVartype")
)

// variantArray builds a one-dimensional VT_ARRAY|VT_VARIANT. The caller owns
// the result and must Clear it.
func variantArray(values []any) (ole.VARIANT, error) {
	sa, _, _ := procSafeArrayCreateVector.Call(uintptr(ole.VT_VARIANT), 0, uintptr(len(values)))
	if sa == 0 {
		return ole.VARIANT{}, errors.WrapEngineUnavailable(fmt.Errorf("SafeArrayCreateVector(%d) failed", len(values)))
	}
	arr := ole.NewVariant(ole.VT_ARRAY|ole.VT_VARIANT, int64(sa))
	for i, v := range values {
		elem, err := toVariant(v)
		if err != nil {
			_ = arr.Clear()
			return ole.VARIANT{}, err
		}
		idx := int32(i)
		hr, _, _ := procSafeArrayPutElement.Call(sa, uintptr(unsafe.Pointer(&idx)), uintptr(unsafe.Pointer(&elem)))
		_ = elem.Clear()
		if hr != 0 {
			_ = arr.Clear()
			return ole.VARIANT{}, errors.WrapEngineUnavailable(fmt.Errorf("SafeArrayPutElement: HRESULT 0x%08x", uint32(hr)))
		}
	}
	return arr, nil
}

func toVariant(v any) (ole.VARIANT, error) {
	switch x := v.(type) {
	case nil:
		return ole.NewVariant(ole.VT_EMPTY, 0), nil
	case string:
		return ole.NewVariant(ole.VT_BSTR, int64(uintptr(unsafe.Pointer(ole.SysAllocStringLen(x))))), nil
	case int:
		return ole.NewVariant(ole.VT_I4, int64(x)), nil
	case int32:
		return ole.NewVariant(ole.VT_I4, int64(x)), nil
	case int64:
		return ole.NewVariant(ole.VT_I8, x), nil
	case float64:
		return ole.NewVariant(ole.VT_R8, int64(math.Float64bits(x))), nil
	case bool:
		if x {
			return ole.NewVariant(ole.VT_BOOL, -1), nil
		}
		return ole.NewVariant(ole.VT_BOOL, 0), nil
	default:
		return ole.VARIANT{}, errors.WrapContractViolation("unsupported value type %T", v)
	}
}

// responseFromVariant decodes SimAuto's [message, payload] return value.
func responseFromVariant(v *ole.VARIANT) (*Response, error) {
	switch {
	case v == nil, v.VT == ole.VT_EMPTY, v.VT == ole.VT_NULL:
		return nil, nil
	case v.VT&ole.VT_ARRAY == 0:
		if s, ok := v.Value().(string); ok {
			return &Response{Message: s}, nil
		}
		return nil, nil
	}

	items, err := decodeArray((*ole.SafeArray)(unsafe.Pointer(uintptr(v.Val))))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	resp := &Response{}
	if s, ok := items[0].(string); ok {
		resp.Message = s
	}
	if len(items) > 1 && items[1] != nil {
		if nested, ok := items[1].([]any); ok {
			resp.Payload = nested
		} else {
			resp.Payload = items[1:]
		}
	}
	return resp, nil
}

func decodeArray(sa *ole.SafeArray) ([]any, error) {
	if sa == nil {
		return nil, nil
	}
	var lower, upper int32
	if hr, _, _ := procSafeArrayGetLBound.Call(uintptr(unsafe.Pointer(sa)), 1, uintptr(unsafe.Pointer(&lower))); hr != 0 {
		return nil, errors.WrapMalformedPayload(fmt.Sprintf("SafeArrayGetLBound: HRESULT 0x%08x", uint32(hr)))
	}
	if hr, _, _ := procSafeArrayGetUBound.Call(uintptr(unsafe.Pointer(sa)), 1, uintptr(unsafe.Pointer(&upper))); hr != 0 {
		return nil, errors.WrapMalformedPayload(fmt.Sprintf("SafeArrayGetUBound: HRESULT 0x%08x", uint32(hr)))
	}
	var vt uint16
	procSafeArrayGetVartype.Call(uintptr(unsafe.Pointer(sa)), uintptr(unsafe.Pointer(&vt)))

	out := make([]any, 0, upper-lower+1)
	for i := lower; i <= upper; i++ {
		idx := i
		switch ole.VT(vt) {
		case ole.VT_BSTR:
			var p *uint16
			procSafeArrayGetElement.Call(uintptr(unsafe.Pointer(sa)), uintptr(unsafe.Pointer(&idx)), uintptr(unsafe.Pointer(&p)))
			out = append(out, windows.UTF16PtrToString(p))
			ole.SysFreeString((*int16)(unsafe.Pointer(p)))
		case ole.VT_R8:
			var f float64
			procSafeArrayGetElement.Call(uintptr(unsafe.Pointer(sa)), uintptr(unsafe.Pointer(&idx)), uintptr(unsafe.Pointer(&f)))
			out = append(out, f)
		case ole.VT_I4:
			var n int32
			procSafeArrayGetElement.Call(uintptr(unsafe.Pointer(sa)), uintptr(unsafe.Pointer(&idx)), uintptr(unsafe.Pointer(&n)))
			out = append(out, int(n))
		default:
			var elem ole.VARIANT
			ole.VariantInit(&elem)
			procSafeArrayGetElement.Call(uintptr(unsafe.Pointer(sa)), uintptr(unsafe.Pointer(&idx)), uintptr(unsafe.Pointer(&elem)))
			val, err := decodeVariant(&elem)
			_ = elem.Clear()
			if err != nil {
				return nil, err
			}
			out = append(out, val)
		}
	}
	return out, nil
}

func decodeVariant(v *ole.VARIANT) (any, error) {
	if v.VT&ole.VT_ARRAY != 0 {
		return decodeArray((*ole.SafeArray)(unsafe.Pointer(uintptr(v.Val))))
	}
	return v.Value(), nil
}
