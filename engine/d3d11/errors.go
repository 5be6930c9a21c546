package d3d11

import (
	"errors"
	"fmt"
	"strings"
)

// HRESULT is a COM status code. Negative values are failures.
type HRESULT uint32

// Failed reports whether the code denotes a failure.
func (hr HRESULT) Failed() bool {
	return int32(hr) < 0
}

const (
	S_OK                               HRESULT = 0x00000000
	DXGI_STATUS_OCCLUDED               HRESULT = 0x087A0001
	E_NOTIMPL                          HRESULT = 0x80004001
	E_NOINTERFACE                      HRESULT = 0x80004002
	E_POINTER                          HRESULT = 0x80004003
	E_FAIL                             HRESULT = 0x80004005
	E_OUTOFMEMORY                      HRESULT = 0x8007000E
	E_INVALIDARG                       HRESULT = 0x80070057
	E_FILE_NOT_FOUND                   HRESULT = 0x80070002
	E_PATH_NOT_FOUND                   HRESULT = 0x80070003
	DXGI_ERROR_INVALID_CALL            HRESULT = 0x887A0001
	DXGI_ERROR_NOT_FOUND               HRESULT = 0x887A0002
	DXGI_ERROR_UNSUPPORTED             HRESULT = 0x887A0004
	DXGI_ERROR_DEVICE_REMOVED          HRESULT = 0x887A0005
	DXGI_ERROR_DEVICE_HUNG             HRESULT = 0x887A0006
	DXGI_ERROR_DEVICE_RESET            HRESULT = 0x887A0007
	DXGI_ERROR_DRIVER_INTERNAL_ERROR   HRESULT = 0x887A0020
	DXGI_ERROR_SDK_COMPONENT_MISSING   HRESULT = 0x887A002D
	D3D11_ERROR_FILE_NOT_FOUND         HRESULT = 0x887C0002
	D3D11_ERROR_TOO_MANY_UNIQUE_STATES HRESULT = 0x887C0001
)

var hresultNames = map[HRESULT]string{
	S_OK:                               "S_OK",
	DXGI_STATUS_OCCLUDED:               "DXGI_STATUS_OCCLUDED",
	E_NOTIMPL:                          "E_NOTIMPL",
	E_NOINTERFACE:                      "E_NOINTERFACE",
	E_POINTER:                          "E_POINTER",
	E_FAIL:                             "E_FAIL",
	E_OUTOFMEMORY:                      "E_OUTOFMEMORY",
	E_INVALIDARG:                       "E_INVALIDARG",
	E_FILE_NOT_FOUND:                   "ERROR_FILE_NOT_FOUND",
	E_PATH_NOT_FOUND:                   "ERROR_PATH_NOT_FOUND",
	DXGI_ERROR_INVALID_CALL:            "DXGI_ERROR_INVALID_CALL",
	DXGI_ERROR_NOT_FOUND:               "DXGI_ERROR_NOT_FOUND",
	DXGI_ERROR_UNSUPPORTED:             "DXGI_ERROR_UNSUPPORTED",
	DXGI_ERROR_DEVICE_REMOVED:          "DXGI_ERROR_DEVICE_REMOVED",
	DXGI_ERROR_DEVICE_HUNG:             "DXGI_ERROR_DEVICE_HUNG",
	DXGI_ERROR_DEVICE_RESET:            "DXGI_ERROR_DEVICE_RESET",
	DXGI_ERROR_DRIVER_INTERNAL_ERROR:   "DXGI_ERROR_DRIVER_INTERNAL_ERROR",
	DXGI_ERROR_SDK_COMPONENT_MISSING:   "DXGI_ERROR_SDK_COMPONENT_MISSING",
	D3D11_ERROR_FILE_NOT_FOUND:         "D3D11_ERROR_FILE_NOT_FOUND",
	D3D11_ERROR_TOO_MANY_UNIQUE_STATES: "D3D11_ERROR_TOO_MANY_UNIQUE_STATES",
}

func (hr HRESULT) String() string {
	if name, ok := hresultNames[hr]; ok {
		return fmt.Sprintf("%s (0x%08X)", name, uint32(hr))
	}
	return fmt.Sprintf("HRESULT 0x%08X", uint32(hr))
}

// Error is a failed driver call.
type Error struct {
	// Op names the native call that failed, e.g. "ID3D11Device::CreateBuffer".
	Op string

	// Code is the HRESULT returned by the call.
	Code HRESULT

	// Description is the system text for Code, when the platform provides one.
	Description string
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Code.String())
	if e.Description != "" {
		b.WriteString(": ")
		b.WriteString(e.Description)
	}
	return b.String()
}

// Is matches another *Error with the same Code, so callers can compare against a bare code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Op == "" && t.Code == e.Code
}

// CodeError returns an error value matching any *Error with the given code under errors.Is.
func CodeError(code HRESULT) error {
	return &Error{Code: code}
}

// IsDeviceLost reports whether err is a device removed, reset or hung failure.
// The engine does not recover from these; the classification is used for reporting only.
func IsDeviceLost(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Code {
	case DXGI_ERROR_DEVICE_REMOVED, DXGI_ERROR_DEVICE_RESET, DXGI_ERROR_DEVICE_HUNG:
		return true
	}
	return false
}

// CompileError is a failed shader compilation.
type CompileError struct {
	Path       string
	EntryPoint string
	Target     string

	// Diagnostics is the compiler's own error text, empty if it supplied none.
	Diagnostics string

	// Err is the underlying failure, usually an *Error.
	Err error
}

func (e *CompileError) Error() string {
	prefix := fmt.Sprintf("compile %s (%s, %s)", e.Path, e.EntryPoint, e.Target)
	if diag := strings.TrimSpace(e.Diagnostics); diag != "" {
		return prefix + ": " + diag
	}
	if e.Err != nil {
		return prefix + ": " + e.Err.Error()
	}
	return prefix + ": failed"
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// ErrUnsupportedPlatform is returned by NewAPI on systems without Direct3D11.
var ErrUnsupportedPlatform = errors.New("d3d11: Direct3D11 is only available on windows")
