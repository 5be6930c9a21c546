package device

import (
	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-dx/engine/d3d11"
)

// DeviceBuilderOption is a functional option for configuring a device before it is initialized.
// Use the With* functions to create options.
type DeviceBuilderOption func(d *device)

// WithDriverTypes sets the driver tiers tried, in preference order.
//
// Parameters:
//   - types: the driver tiers, most preferred first
//
// Returns:
//   - DeviceBuilderOption: option function to apply
func WithDriverTypes(types ...d3d11.DriverType) DeviceBuilderOption {
	return func(d *device) {
		d.driverTypes = append([]d3d11.DriverType(nil), types...)
	}
}

// WithFeatureLevels sets the feature levels requested from every driver tier.
//
// Parameters:
//   - levels: the acceptable feature levels, most preferred first
//
// Returns:
//   - DeviceBuilderOption: option function to apply
func WithFeatureLevels(levels ...d3d11.FeatureLevel) DeviceBuilderOption {
	return func(d *device) {
		d.featureLevels = append([]d3d11.FeatureLevel(nil), levels...)
	}
}

// WithDebug enables the driver debug layer. Device creation fails on systems without the SDK layers installed.
//
// Parameters:
//   - enabled: true to request the debug layer
//
// Returns:
//   - DeviceBuilderOption: option function to apply
func WithDebug(enabled bool) DeviceBuilderOption {
	return func(d *device) {
		if enabled {
			d.flags |= d3d11.CreateDeviceDebug
		} else {
			d.flags &^= d3d11.CreateDeviceDebug
		}
	}
}

// WithCompileFlags overrides the flags shaders are compiled with.
//
// Parameters:
//   - flags: the compiler flags
//
// Returns:
//   - DeviceBuilderOption: option function to apply
func WithCompileFlags(flags d3d11.CompileFlag) DeviceBuilderOption {
	return func(d *device) {
		d.compileFlags = flags
	}
}

// WithLogger sets the logger used to report driver selection and resource creation.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - DeviceBuilderOption: option function to apply
func WithLogger(logger logrus.FieldLogger) DeviceBuilderOption {
	return func(d *device) {
		if logger != nil {
			d.logger = logger
		}
	}
}
