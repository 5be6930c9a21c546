package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
)

// ErrNotOpen is returned by operations that need the native window before Open succeeded.
var ErrNotOpen = errors.New("window: window is not open")

// CreateHandler runs once the native window exists, before it is shown.
// It receives the native handle (HWND on windows) and the client area size in pixels.
type CreateHandler func(handle uintptr, width, height int) error

// Window provides a single native window and its message pump.
//
// Lifecycle handlers report failure through their error return. The pump never swallows a
// handler error: the first one stops the loop and is returned to the caller, which owns
// reporting and shutdown.
type Window interface {
	// SetCreateHandler sets the function run by Open after the native window is created.
	//
	// Parameters:
	//   - handler: function receiving the native handle and client size (or nil to disable)
	SetCreateHandler(handler CreateHandler)

	// SetCloseHandler sets the function run when a close request is observed, before the loop quits.
	//
	// Parameters:
	//   - handler: function to call (or nil to disable)
	SetCloseHandler(handler func() error)

	// SetUpdateHandler sets the function run once per loop iteration after pending messages are drained.
	//
	// Parameters:
	//   - handler: function to call (or nil to disable)
	SetUpdateHandler(handler func() error)

	// Open creates the native window hidden and runs the create handler.
	// If the handler fails the native window is destroyed again, so a window is never shown half-built.
	//
	// Returns:
	//   - error: error if the window cannot be created or the create handler fails
	Open() error

	// Show makes the window visible.
	//
	// Returns:
	//   - error: ErrNotOpen if Open has not succeeded
	Show() error

	// ProcessMessages runs the message loop until the window quits.
	// Each iteration drains all pending messages without blocking. A close request runs the close
	// handler and then sets the quit flag, so no frame is rendered after it; otherwise the update
	// handler runs exactly once.
	//
	// Returns:
	//   - error: the first handler error, or nil on an orderly quit
	ProcessMessages() error

	// RequestClose asks the window to close; the request is observed on the next loop iteration.
	RequestClose()

	// IsRunning returns true while the window is open and has not quit.
	//
	// Returns:
	//   - bool: true if the window is running
	IsRunning() bool

	// Close destroys the native window and tears down the windowing system. Safe to call more than once.
	//
	// Returns:
	//   - error: error if tear down fails
	Close() error

	// Handle returns the native window handle, 0 before Open or after Close.
	//
	// Returns:
	//   - uintptr: the handle
	Handle() uintptr

	// Title returns the window title.
	//
	// Returns:
	//   - string: the title
	Title() string

	// Width returns the window client area width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the window client area height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// platform is the native windowing system behind an engineWindow.
type platform interface {
	// create makes the window hidden and returns its handle and client size in pixels.
	create(title string, width, height int) (handle uintptr, clientWidth, clientHeight int, err error)
	show()
	// poll drains pending messages and reports whether a close was requested.
	poll() bool
	requestClose()
	destroy() error
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// width is the current window client area width in pixels.
	width int

	// height is the current window client area height in pixels.
	height int

	handle   uintptr
	platform platform

	open bool
	quit bool

	onCreate CreateHandler
	onClose  func() error
	onUpdate func() error

	logger logrus.FieldLogger
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order. No native window exists until Open.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the configured window (not yet opened)
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:  "Dx",
		width:  1280,
		height: 720,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range options {
		opt(w)
	}
	if w.platform == nil {
		w.platform = newPlatform()
	}
	return w
}

func (w *engineWindow) SetCreateHandler(handler CreateHandler) {
	w.onCreate = handler
}

func (w *engineWindow) SetCloseHandler(handler func() error) {
	w.onClose = handler
}

func (w *engineWindow) SetUpdateHandler(handler func() error) {
	w.onUpdate = handler
}

func (w *engineWindow) Open() error {
	if w.open {
		return fmt.Errorf("window %q is already open", w.title)
	}
	if w.width <= 0 || w.height <= 0 {
		return fmt.Errorf("window %q: invalid size %dx%d", w.title, w.width, w.height)
	}
	handle, width, height, err := w.platform.create(w.title, w.width, w.height)
	if err != nil {
		return fmt.Errorf("create window %q: %w", w.title, err)
	}
	w.handle, w.width, w.height = handle, width, height
	w.open = true
	w.quit = false
	w.logger.WithFields(logrus.Fields{"title": w.title, "width": width, "height": height}).Debug("native window created")

	if w.onCreate != nil {
		if err := w.onCreate(handle, width, height); err != nil {
			if cerr := w.Close(); cerr != nil {
				return errors.Join(err, fmt.Errorf("destroy window %q: %w", w.title, cerr))
			}
			return err
		}
	}
	return nil
}

func (w *engineWindow) Show() error {
	if !w.open {
		return ErrNotOpen
	}
	w.platform.show()
	return nil
}

func (w *engineWindow) ProcessMessages() error {
	if !w.open {
		return ErrNotOpen
	}
	for {
		if closeRequested := w.platform.poll(); closeRequested && !w.quit {
			w.logger.WithField("title", w.title).Debug("close requested")
			err := w.runClose()
			w.quit = true
			if err != nil {
				return err
			}
		}
		if w.quit {
			return nil
		}

		if w.onUpdate != nil {
			if err := w.onUpdate(); err != nil {
				return err
			}
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) runClose() error {
	if w.onClose == nil {
		return nil
	}
	return w.onClose()
}

func (w *engineWindow) RequestClose() {
	if w.open {
		w.platform.requestClose()
	}
}

func (w *engineWindow) IsRunning() bool {
	return w.open && !w.quit
}

func (w *engineWindow) Close() error {
	if !w.open {
		return nil
	}
	w.open = false
	w.quit = true
	w.handle = 0
	return w.platform.destroy()
}

func (w *engineWindow) Handle() uintptr {
	return w.handle
}

func (w *engineWindow) Title() string {
	return w.title
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
