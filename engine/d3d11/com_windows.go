//go:build windows

package d3d11

import (
	"strings"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// IUnknown vtable slots shared by every COM interface.
const (
	vtblQueryInterface = 0
	vtblRelease        = 2

	// IDXGIObject
	vtblGetParent = 6

	// IDXGIFactory
	vtblFactoryCreateSwapChain = 10

	// IDXGISwapChain
	vtblSwapChainPresent   = 8
	vtblSwapChainGetBuffer = 9

	// ID3D11Device
	vtblDeviceCreateBuffer           = 3
	vtblDeviceCreateRenderTargetView = 9
	vtblDeviceCreateInputLayout      = 11
	vtblDeviceCreateVertexShader     = 12
	vtblDeviceCreatePixelShader      = 15

	// ID3D11DeviceContext
	vtblCtxPSSetShader            = 9
	vtblCtxVSSetShader            = 11
	vtblCtxDraw                   = 13
	vtblCtxIASetInputLayout       = 17
	vtblCtxIASetVertexBuffers     = 18
	vtblCtxIASetPrimitiveTopology = 24
	vtblCtxOMSetRenderTargets     = 33
	vtblCtxRSSetViewports         = 44
	vtblCtxClearRenderTargetView  = 50
	vtblCtxClearState             = 110
	vtblCtxFlush                  = 111

	// ID3DBlob
	vtblBlobGetBufferPointer = 3
	vtblBlobGetBufferSize    = 4
)

var (
	iidIDXGIDevice     = windows.GUID{Data1: 0x54ec77fa, Data2: 0x1377, Data3: 0x44e6, Data4: [8]byte{0x8c, 0x32, 0x88, 0xfd, 0x5f, 0x44, 0xc8, 0x4c}}
	iidIDXGIAdapter    = windows.GUID{Data1: 0x2411e7e1, Data2: 0x12ac, Data3: 0x4ccf, Data4: [8]byte{0xbd, 0x14, 0x97, 0x98, 0xe8, 0x53, 0x4d, 0xc0}}
	iidIDXGIFactory    = windows.GUID{Data1: 0x7b7166ec, Data2: 0x21c7, Data3: 0x44ae, Data4: [8]byte{0xb2, 0x1a, 0xc9, 0xae, 0x32, 0x1a, 0xe3, 0x69}}
	iidID3D11Texture2D = windows.GUID{Data1: 0x6f15aaf2, Data2: 0xd208, Data3: 0x4e89, Data4: [8]byte{0x9a, 0xb4, 0x48, 0x95, 0x35, 0xd3, 0x4f, 0x9c}}
)

// comObject owns one reference to a COM interface pointer.
type comObject struct {
	ptr uintptr
}

func (o *comObject) raw() uintptr {
	if o == nil {
		return 0
	}
	return o.ptr
}

// Release drops the reference held by o.
func (o *comObject) Release() {
	if o == nil || o.ptr == 0 {
		return
	}
	syscall.SyscallN(vtblFn(o.ptr, vtblRelease), o.ptr)
	o.ptr = 0
}

// call invokes method idx on o and returns its HRESULT.
// Pointer arguments converted to uintptr stay on the heap and alive until the call returns.
//
//go:uintptrescapes
func (o *comObject) call(idx int, args ...uintptr) HRESULT {
	hr, _, _ := syscall.SyscallN(vtblFn(o.ptr, idx), append([]uintptr{o.ptr}, args...)...)
	return HRESULT(uint32(hr))
}

// callVoid invokes a method that returns nothing.
//
//go:uintptrescapes
func (o *comObject) callVoid(idx int, args ...uintptr) {
	syscall.SyscallN(vtblFn(o.ptr, idx), append([]uintptr{o.ptr}, args...)...)
}

// query runs GetParent or QueryInterface (slot idx) for iid and returns the resulting pointer.
func (o *comObject) query(op string, idx int, iid *windows.GUID) (uintptr, error) {
	var out uintptr
	hr := o.call(idx, uintptr(unsafe.Pointer(iid)), uintptr(unsafe.Pointer(&out)))
	if err := check(op, hr); err != nil {
		return 0, err
	}
	return out, nil
}

// vtblFn returns the function pointer stored at slot idx of obj's vtable.
func vtblFn(obj uintptr, idx int) uintptr {
	vtablePtr := *(*uintptr)(unsafe.Pointer(obj))
	return *(*uintptr)(unsafe.Pointer(vtablePtr + uintptr(idx)*unsafe.Sizeof(uintptr(0))))
}

// rawer is implemented by every native object of this package.
type rawer interface {
	raw() uintptr
}

// rawOf returns the interface pointer behind v, or 0 for nil and foreign implementations.
func rawOf(v any) uintptr {
	if r, ok := v.(rawer); ok {
		return r.raw()
	}
	return 0
}

// check converts a failed HRESULT into an *Error carrying the system description.
func check(op string, hr HRESULT) error {
	if !hr.Failed() {
		return nil
	}
	return &Error{Op: op, Code: hr, Description: describe(hr)}
}

func describe(hr HRESULT) string {
	msg := strings.TrimSpace(windows.Errno(hr).Error())
	if strings.HasPrefix(msg, "winapi error") {
		return ""
	}
	return msg
}
