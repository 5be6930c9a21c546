//go:build !windows

package window

import "github.com/go-gl/glfw/v3.3/glfw"

// nativeHandle returns 0: only windows has an HWND to hand to DXGI.
func nativeHandle(*glfw.Window) uintptr {
	return 0
}
