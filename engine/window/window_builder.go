package window

import "github.com/sirupsen/logrus"

// WindowBuilderOption configures an engineWindow before it is opened.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the caption of the window. The default is "Dx".
//
// Parameters:
//   - title: the caption
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithWidth sets the requested client area width; the swap chain is created at the size the
// platform actually grants.
//
// Parameters:
//   - width: width in pixels, default 1280
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithWidth(width int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
	}
}

// WithHeight sets the requested client area height.
//
// Parameters:
//   - height: height in pixels, default 720
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithHeight(height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.height = height
	}
}

// WithLogger sets the logger for window lifecycle events.
//
// Parameters:
//   - logger: the logger; nil keeps the standard logger
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithLogger(logger logrus.FieldLogger) WindowBuilderOption {
	return func(w *engineWindow) {
		if logger != nil {
			w.logger = logger
		}
	}
}
