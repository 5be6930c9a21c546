package surface

import (
	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-dx/engine/d3d11"
)

// SurfaceBuilderOption is a functional option for configuring a presentation surface.
// Use the With* functions to create options.
type SurfaceBuilderOption func(s *surface)

// WithBufferCount sets the number of buffers in the swap chain.
// Flip presentation models need at least two.
//
// Parameters:
//   - count: the buffer count, 1 to 16
//
// Returns:
//   - SurfaceBuilderOption: option function to apply
func WithBufferCount(count uint32) SurfaceBuilderOption {
	return func(s *surface) {
		s.bufferCount = count
	}
}

// WithSwapEffect sets how presented buffers are handed to the display.
//
// Parameters:
//   - effect: the DXGI swap effect
//
// Returns:
//   - SurfaceBuilderOption: option function to apply
func WithSwapEffect(effect d3d11.SwapEffect) SurfaceBuilderOption {
	return func(s *surface) {
		s.swapEffect = effect
	}
}

// WithRefreshRate sets the refresh-rate hint passed in the buffer mode description.
//
// Parameters:
//   - numerator: the rate numerator, e.g. 60
//   - denominator: the rate denominator, e.g. 1
//
// Returns:
//   - SurfaceBuilderOption: option function to apply
func WithRefreshRate(numerator, denominator uint32) SurfaceBuilderOption {
	return func(s *surface) {
		s.refreshRate = d3d11.Rational{Numerator: numerator, Denominator: denominator}
	}
}

// WithLogger sets the logger used to report swap chain creation.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - SurfaceBuilderOption: option function to apply
func WithLogger(logger logrus.FieldLogger) SurfaceBuilderOption {
	return func(s *surface) {
		if logger != nil {
			s.logger = logger
		}
	}
}
