// Package surface owns the swap chain bound to a native window and the render-target view drawn into.
package surface

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-dx/engine/d3d11"
)

var (
	// ErrInvalidDescriptor is returned when the requested swap chain parameters are inconsistent.
	ErrInvalidDescriptor = errors.New("surface: invalid swap chain description")

	// ErrInvalidSyncInterval is returned by Present for intervals outside 0..4.
	ErrInvalidSyncInterval = errors.New("surface: sync interval must be between 0 and 4")
)

const (
	// MaxBufferCount is the largest buffer count DXGI accepts.
	MaxBufferCount = 16

	// MaxSyncInterval is the largest vertical-sync interval Present accepts.
	MaxSyncInterval = 4
)

// surface is the implementation of the Surface interface.
type surface struct {
	swapChain d3d11.SwapChain
	view      d3d11.RenderTargetView

	width       int
	height      int
	bufferCount uint32
	swapEffect  d3d11.SwapEffect
	refreshRate d3d11.Rational
	format      d3d11.Format

	logger logrus.FieldLogger
}

// Surface is a swap chain plus the single render-target view over its back buffer 0.
//
// The surface is sized once at creation. It is not recreated when the window client area
// changes size; windows hosting a surface are created non-resizable.
type Surface interface {
	// Present hands the back buffer to the display.
	// An interval of 0 presents immediately, n in 1..4 waits for the n-th vertical blank.
	// A failure is returned as-is; a lost device is not recovered.
	//
	// Parameters:
	//   - syncInterval: the vertical-sync interval
	//
	// Returns:
	//   - error: ErrInvalidSyncInterval, or the driver error
	Present(syncInterval uint32) error

	// RenderTargetView returns the view drawn into each frame, nil after Release.
	//
	// Returns:
	//   - d3d11.RenderTargetView: the view over back buffer 0
	RenderTargetView() d3d11.RenderTargetView

	// BackBufferIndex returns the index of the buffer the view was created from. It is always 0.
	//
	// Returns:
	//   - uint32: the back buffer index
	BackBufferIndex() uint32

	// Width returns the buffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the buffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int

	// BufferCount returns the number of buffers in the chain.
	//
	// Returns:
	//   - uint32: the buffer count
	BufferCount() uint32

	// SwapEffect returns the presentation model of the chain.
	//
	// Returns:
	//   - d3d11.SwapEffect: the swap effect
	SwapEffect() d3d11.SwapEffect

	// Native returns the driver swap chain, nil after Release.
	//
	// Returns:
	//   - d3d11.SwapChain: the native swap chain
	Native() d3d11.SwapChain

	// Release releases the view and then the swap chain. Safe to call more than once.
	Release()
}

var _ Surface = &surface{}

// NewSurface creates a windowed swap chain for windowHandle through factory and builds the
// render-target view over its back buffer 0.
//
// Defaults: two buffers, flip-sequential presentation, 60/1 refresh hint, R8G8B8A8_UNORM,
// one sample, render-target-output usage.
//
// Parameters:
//   - factory: the DXGI factory that owns the device's adapter
//   - device: the device the swap chain presents for
//   - windowHandle: the native window handle (HWND)
//   - width: the client area width in pixels
//   - height: the client area height in pixels
//   - options: functional options applied in order
//
// Returns:
//   - Surface: the surface
//   - error: ErrInvalidDescriptor, or the first driver error in the creation chain
func NewSurface(factory d3d11.Factory, device d3d11.Device, windowHandle uintptr, width, height int, options ...SurfaceBuilderOption) (Surface, error) {
	s := &surface{
		width:       width,
		height:      height,
		bufferCount: 2,
		swapEffect:  d3d11.SwapEffectFlipSequential,
		refreshRate: d3d11.Rational{Numerator: 60, Denominator: 1},
		format:      d3d11.FormatR8G8B8A8UNorm,
		logger:      logrus.StandardLogger(),
	}
	for _, opt := range options {
		opt(s)
	}
	if err := s.validate(windowHandle); err != nil {
		return nil, err
	}

	desc := s.describe(windowHandle)
	swapChain, err := factory.CreateSwapChain(device, desc)
	if err != nil {
		return nil, fmt.Errorf("create swap chain: %w", err)
	}

	backBuffer, err := swapChain.Buffer(0)
	if err != nil {
		swapChain.Release()
		return nil, fmt.Errorf("get back buffer 0: %w", err)
	}
	view, err := device.CreateRenderTargetView(backBuffer)
	// the view keeps its own reference to the buffer
	backBuffer.Release()
	if err != nil {
		swapChain.Release()
		return nil, fmt.Errorf("create render target view: %w", err)
	}

	s.swapChain = swapChain
	s.view = view
	s.logger.WithFields(logrus.Fields{
		"width":        width,
		"height":       height,
		"buffer_count": s.bufferCount,
		"swap_effect":  s.swapEffect,
	}).Debug("swap chain created")
	return s, nil
}

func (s *surface) validate(windowHandle uintptr) error {
	switch {
	case windowHandle == 0:
		return fmt.Errorf("%w: no window handle", ErrInvalidDescriptor)
	case s.width <= 0 || s.height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalidDescriptor, s.width, s.height)
	case s.bufferCount < 1 || s.bufferCount > MaxBufferCount:
		return fmt.Errorf("%w: buffer count %d outside 1..%d", ErrInvalidDescriptor, s.bufferCount, MaxBufferCount)
	case s.swapEffect.IsFlip() && s.bufferCount < 2:
		return fmt.Errorf("%w: %s needs at least 2 buffers, got %d", ErrInvalidDescriptor, s.swapEffect, s.bufferCount)
	case s.refreshRate.Denominator == 0:
		return fmt.Errorf("%w: refresh rate denominator is zero", ErrInvalidDescriptor)
	}
	return nil
}

func (s *surface) describe(windowHandle uintptr) *d3d11.SwapChainDesc {
	return &d3d11.SwapChainDesc{
		BufferDesc: d3d11.ModeDesc{
			Width:       uint32(s.width),
			Height:      uint32(s.height),
			RefreshRate: s.refreshRate,
			Format:      s.format,
		},
		SampleDesc:   d3d11.SampleDesc{Count: 1, Quality: 0},
		BufferUsage:  d3d11.UsageRenderTargetOutput,
		BufferCount:  s.bufferCount,
		OutputWindow: windowHandle,
		Windowed:     true,
		SwapEffect:   s.swapEffect,
	}
}

func (s *surface) Present(syncInterval uint32) error {
	if syncInterval > MaxSyncInterval {
		return fmt.Errorf("%w: got %d", ErrInvalidSyncInterval, syncInterval)
	}
	if s.swapChain == nil {
		return fmt.Errorf("present: %w", d3d11.CodeError(d3d11.DXGI_ERROR_INVALID_CALL))
	}
	if err := s.swapChain.Present(syncInterval, 0); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	return nil
}

func (s *surface) RenderTargetView() d3d11.RenderTargetView {
	return s.view
}

func (s *surface) BackBufferIndex() uint32 {
	return 0
}

func (s *surface) Width() int {
	return s.width
}

func (s *surface) Height() int {
	return s.height
}

func (s *surface) BufferCount() uint32 {
	return s.bufferCount
}

func (s *surface) SwapEffect() d3d11.SwapEffect {
	return s.swapEffect
}

func (s *surface) Native() d3d11.SwapChain {
	return s.swapChain
}

func (s *surface) Release() {
	if s.view != nil {
		s.view.Release()
		s.view = nil
	}
	if s.swapChain != nil {
		s.swapChain.Release()
		s.swapChain = nil
	}
}
