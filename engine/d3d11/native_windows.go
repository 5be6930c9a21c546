//go:build windows

package d3d11

import (
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

const sdkVersion = 7

// standardFileInclude is D3D_COMPILE_STANDARD_FILE_INCLUDE, resolving #include relative to the source file.
const standardFileInclude = 1

var (
	d3d11DLL    = windows.NewLazySystemDLL("d3d11.dll")
	compilerDLL = windows.NewLazySystemDLL("d3dcompiler_47.dll")

	procD3D11CreateDevice  = d3d11DLL.NewProc("D3D11CreateDevice")
	procD3DCompileFromFile = compilerDLL.NewProc("D3DCompileFromFile")
)

type nativeAPI struct{}

// NewAPI loads the Direct3D11 runtime and shader compiler.
//
// Returns:
//   - API: the native driver API
//   - error: an error if either system DLL or its entry point cannot be found
func NewAPI() (API, error) {
	for _, p := range []*windows.LazyProc{procD3D11CreateDevice, procD3DCompileFromFile} {
		if err := p.Find(); err != nil {
			return nil, fmt.Errorf("d3d11: %w", err)
		}
	}
	return nativeAPI{}, nil
}

func (nativeAPI) CreateDevice(driver DriverType, flags CreateDeviceFlag, levels []FeatureLevel) (Device, DeviceContext, FeatureLevel, error) {
	var (
		dev, ctx uintptr
		granted  FeatureLevel
		pLevels  uintptr
	)
	if len(levels) > 0 {
		pLevels = uintptr(unsafe.Pointer(&levels[0]))
	}
	r, _, _ := procD3D11CreateDevice.Call(
		0, // default adapter
		uintptr(driver),
		0,
		uintptr(flags),
		pLevels,
		uintptr(len(levels)),
		sdkVersion,
		uintptr(unsafe.Pointer(&dev)),
		uintptr(unsafe.Pointer(&granted)),
		uintptr(unsafe.Pointer(&ctx)),
	)
	runtime.KeepAlive(levels)
	if err := check("D3D11CreateDevice", HRESULT(uint32(r))); err != nil {
		return nil, nil, 0, err
	}
	return &device{comObject{dev}}, &deviceContext{comObject{ctx}}, granted, nil
}

func (nativeAPI) CompileFromFile(path, entryPoint, target string, flags CompileFlag) (Blob, error) {
	compileErr := func(diag string, err error) error {
		return &CompileError{Path: path, EntryPoint: entryPoint, Target: target, Diagnostics: diag, Err: err}
	}
	wpath, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, compileErr("", err)
	}
	entry, err := windows.BytePtrFromString(entryPoint)
	if err != nil {
		return nil, compileErr("", err)
	}
	profile, err := windows.BytePtrFromString(target)
	if err != nil {
		return nil, compileErr("", err)
	}

	var code, messages uintptr
	r, _, _ := procD3DCompileFromFile.Call(
		uintptr(unsafe.Pointer(wpath)),
		0,
		standardFileInclude,
		uintptr(unsafe.Pointer(entry)),
		uintptr(unsafe.Pointer(profile)),
		uintptr(flags),
		0,
		uintptr(unsafe.Pointer(&code)),
		uintptr(unsafe.Pointer(&messages)),
	)

	var diag string
	if messages != 0 {
		b := &blob{comObject{messages}}
		diag = string(trimNull(b.Bytes()))
		b.Release()
	}
	if err := check("D3DCompileFromFile", HRESULT(uint32(r))); err != nil {
		if code != 0 {
			(&blob{comObject{code}}).Release()
		}
		return nil, compileErr(diag, err)
	}
	return &blob{comObject{code}}, nil
}

func trimNull(b []byte) []byte {
	for len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return b
}

type blob struct {
	comObject
}

func (b *blob) Bytes() []byte {
	if b.ptr == 0 {
		return nil
	}
	p, _, _ := syscall.SyscallN(vtblFn(b.ptr, vtblBlobGetBufferPointer), b.ptr)
	n, _, _ := syscall.SyscallN(vtblFn(b.ptr, vtblBlobGetBufferSize), b.ptr)
	if p == 0 || n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), int(n))
}
