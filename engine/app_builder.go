package engine

import "github.com/sirupsen/logrus"

// AppBuilderOption is a functional option for configuring an App.
// Use the With* functions to create options that are applied directly to the app instance.
type AppBuilderOption func(*app)

// WithErrorReporter replaces the modal error dialog used to report a fatal error.
//
// Parameters:
//   - reporter: the function receiving the dialog title and the error text
//
// Returns:
//   - AppBuilderOption: option function to apply
func WithErrorReporter(reporter ErrorReporter) AppBuilderOption {
	return func(a *app) {
		if reporter != nil {
			a.reporter = reporter
		}
	}
}

// WithLogger sets the logger handed to every component the app creates.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - AppBuilderOption: option function to apply
func WithLogger(logger logrus.FieldLogger) AppBuilderOption {
	return func(a *app) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, frame rate and memory statistics are logged once per second
//
// Returns:
//   - AppBuilderOption: option function to apply
func WithProfiling(enabled bool) AppBuilderOption {
	return func(a *app) {
		a.profilingEnabled = enabled
	}
}
