package window

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwPlatform holds the GLFW-specific window state.
// GLFW is initialized when the window is created and terminated when it is destroyed,
// so at most one window may be open per process at a time.
type glfwPlatform struct {
	window *glfw.Window
}

func newPlatform() platform {
	return &glfwPlatform{}
}

// create initializes GLFW and creates the window hidden and fixed-size, without a client API.
// The calling goroutine is locked to its OS thread; GLFW and the window's messages belong to it.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func (p *glfwPlatform) create(title string, width, height int) (uintptr, int, int, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// Direct3D presents through DXGI, so no OpenGL context is created.
	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Visible, glfw.False)
	// The swap chain is sized once; resizing is not supported.
	glfw.WindowHint(glfw.Resizable, glfw.False)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return 0, 0, 0, fmt.Errorf("failed to create GLFW window: %w", err)
	}
	p.window = win

	// Framebuffer size is the pixel size of the client area, which may differ from the requested size on high-DPI displays.
	fbWidth, fbHeight := win.GetFramebufferSize()
	return nativeHandle(win), fbWidth, fbHeight, nil
}

func (p *glfwPlatform) show() {
	if p.window != nil {
		p.window.Show()
	}
}

// poll processes pending GLFW events without blocking.
// This is the GLFW equivalent of the Win32 PeekMessage loop.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func (p *glfwPlatform) poll() bool {
	if p.window == nil {
		return true
	}
	glfw.PollEvents()
	return p.window.ShouldClose()
}

func (p *glfwPlatform) requestClose() {
	if p.window != nil {
		p.window.SetShouldClose(true)
	}
}

// destroy destroys the GLFW window and terminates the GLFW library.
func (p *glfwPlatform) destroy() error {
	if p.window == nil {
		return fmt.Errorf("window is not initialized")
	}
	p.window.Destroy()
	p.window = nil
	glfw.Terminate()
	return nil
}
