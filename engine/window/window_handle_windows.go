//go:build windows

package window

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// nativeHandle returns the HWND of win.
func nativeHandle(win *glfw.Window) uintptr {
	return uintptr(unsafe.Pointer(win.GetWin32Window()))
}
