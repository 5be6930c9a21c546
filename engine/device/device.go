// Package device owns the Direct3D11 logical device and its immediate context, and creates every
// GPU resource the engine draws with.
package device

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-dx/common"
	"github.com/Carmen-Shannon/oxy-dx/engine/d3d11"
	"github.com/Carmen-Shannon/oxy-dx/engine/renderer/geometry"
	"github.com/Carmen-Shannon/oxy-dx/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-dx/engine/surface"
)

// ErrReleased is returned by resource creation on a device that has been released.
var ErrReleased = errors.New("device: device has been released")

// Attempt records one failed driver tier during initialization.
type Attempt struct {
	Driver d3d11.DriverType
	Err    error
}

// InitError is returned when no driver tier produced a device.
type InitError struct {
	Attempts []Attempt
}

func (e *InitError) Error() string {
	if len(e.Attempts) == 0 {
		return "create device: no driver types configured"
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %v", a.Driver, a.Err)
	}
	return "create device: every driver type failed (" + strings.Join(parts, "; ") + ")"
}

// Unwrap returns the error of the last tier tried.
func (e *InitError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}

// device is the implementation of the Device interface.
type device struct {
	api     d3d11.API
	native  d3d11.Device
	context d3d11.DeviceContext

	driverType   d3d11.DriverType
	featureLevel d3d11.FeatureLevel

	driverTypes   []d3d11.DriverType
	featureLevels []d3d11.FeatureLevel
	flags         d3d11.CreateDeviceFlag
	compileFlags  d3d11.CompileFlag

	logger logrus.FieldLogger
}

// Device is one initialized GPU logical device and its immediate context.
// Everything it creates must be released before the device itself.
type Device interface {
	// CreateSwapChain walks device -> adapter -> factory and creates a presentation surface
	// for the window, together with the render-target view over its back buffer 0.
	//
	// Parameters:
	//   - windowHandle: the native window handle (HWND)
	//   - width: the client area width in pixels
	//   - height: the client area height in pixels
	//   - options: surface options (buffer count, swap effect, refresh rate)
	//
	// Returns:
	//   - surface.Surface: the surface
	//   - error: the first failure in the chain, carrying its status code
	CreateSwapChain(windowHandle uintptr, width, height int, options ...surface.SurfaceBuilderOption) (surface.Surface, error)

	// CompileShader compiles one entry point of an HLSL file with debug information and warnings as errors.
	//
	// Parameters:
	//   - path: the source file
	//   - entryPoint: the function to compile
	//   - target: the shader model profile, "vs_*" or "ps_*"
	//
	// Returns:
	//   - shader.Shader: a shader.VertexShader or shader.PixelShader
	//   - error: a *d3d11.CompileError carrying the compiler diagnostic, or the creation error
	CompileShader(path, entryPoint, target string) (shader.Shader, error)

	// CompileProgram compiles a vertex and pixel shader pair.
	//
	// Parameters:
	//   - src: the source file and entry points
	//
	// Returns:
	//   - *shader.Program: the compiled pair
	//   - error: the first failure
	CompileProgram(src shader.ProgramSource) (*shader.Program, error)

	// LoadVertexData uploads vertices into an immutable vertex buffer of exactly their size.
	//
	// Parameters:
	//   - vertices: the vertex positions
	//
	// Returns:
	//   - geometry.Buffer: the buffer
	//   - error: error if vertices is empty or allocation fails
	LoadVertexData(vertices []common.Vertex) (geometry.Buffer, error)

	// CreateInputLayout creates the single POSITION layout validated against vs.
	//
	// Parameters:
	//   - vs: the vertex shader the layout will be bound with
	//
	// Returns:
	//   - geometry.InputLayout: the layout
	//   - error: *geometry.LayoutMismatchError or the driver error
	CreateInputLayout(vs shader.VertexShader) (geometry.InputLayout, error)

	// Context returns the immediate context, nil after Release.
	//
	// Returns:
	//   - d3d11.DeviceContext: the immediate context
	Context() d3d11.DeviceContext

	// Native returns the driver device, nil after Release.
	//
	// Returns:
	//   - d3d11.Device: the native device
	Native() d3d11.Device

	// DriverType returns the tier that produced the device.
	//
	// Returns:
	//   - d3d11.DriverType: the selected driver tier
	DriverType() d3d11.DriverType

	// FeatureLevel returns the feature level the driver granted.
	//
	// Returns:
	//   - d3d11.FeatureLevel: the granted level
	FeatureLevel() d3d11.FeatureLevel

	// Release clears and flushes the context, then releases the context and the device.
	// Safe to call more than once.
	Release()
}

var _ Device = &device{}

// NewDevice initializes a device, trying each configured driver tier in order.
// The first tier that succeeds is used; there is no degraded mode when all of them fail.
//
// Defaults: hardware, then WARP, then reference, at feature level 11_0, shaders compiled
// with debug information and warnings as errors.
//
// Parameters:
//   - api: the driver API
//   - options: functional options applied in order
//
// Returns:
//   - Device: the device
//   - error: *InitError listing every failed tier
func NewDevice(api d3d11.API, options ...DeviceBuilderOption) (Device, error) {
	d := &device{
		api:           api,
		driverTypes:   append([]d3d11.DriverType(nil), d3d11.DefaultDriverTypes...),
		featureLevels: append([]d3d11.FeatureLevel(nil), d3d11.DefaultFeatureLevels...),
		compileFlags:  shader.DefaultCompileFlags,
		logger:        logrus.StandardLogger(),
	}
	for _, opt := range options {
		opt(d)
	}
	if err := d.initialize(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *device) initialize() error {
	initErr := &InitError{}
	for _, driver := range d.driverTypes {
		native, ctx, level, err := d.api.CreateDevice(driver, d.flags, d.featureLevels)
		if err != nil {
			d.logger.WithFields(logrus.Fields{"driver": driver}).WithError(err).Debug("driver type unavailable")
			initErr.Attempts = append(initErr.Attempts, Attempt{Driver: driver, Err: err})
			continue
		}
		d.native, d.context = native, ctx
		d.driverType, d.featureLevel = driver, level
		d.logger.WithFields(logrus.Fields{"driver": driver, "feature_level": level}).Info("device created")
		return nil
	}
	return initErr
}

func (d *device) CreateSwapChain(windowHandle uintptr, width, height int, options ...surface.SurfaceBuilderOption) (surface.Surface, error) {
	if d.native == nil {
		return nil, ErrReleased
	}
	dxgiDevice, err := d.native.QueryDXGIDevice()
	if err != nil {
		return nil, fmt.Errorf("query dxgi device: %w", err)
	}
	defer dxgiDevice.Release()

	adapter, err := dxgiDevice.Adapter()
	if err != nil {
		return nil, fmt.Errorf("get dxgi adapter: %w", err)
	}
	defer adapter.Release()

	factory, err := adapter.Factory()
	if err != nil {
		return nil, fmt.Errorf("get dxgi factory: %w", err)
	}
	defer factory.Release()

	opts := append([]surface.SurfaceBuilderOption{surface.WithLogger(d.logger)}, options...)
	return surface.NewSurface(factory, d.native, windowHandle, width, height, opts...)
}

func (d *device) CompileShader(path, entryPoint, target string) (shader.Shader, error) {
	if d.native == nil {
		return nil, ErrReleased
	}
	s, err := shader.CompileFile(d.api, d.native, path, entryPoint, target, d.compileFlags)
	if err != nil {
		return nil, err
	}
	d.logger.WithFields(logrus.Fields{"path": path, "entry": entryPoint, "target": target}).Debug("shader compiled")
	return s, nil
}

func (d *device) CompileProgram(src shader.ProgramSource) (*shader.Program, error) {
	if d.native == nil {
		return nil, ErrReleased
	}
	p, err := shader.CompileProgram(d.api, d.native, src, d.compileFlags)
	if err != nil {
		return nil, err
	}
	d.logger.WithFields(logrus.Fields{"path": src.Path, "vertex": src.VertexEntry, "pixel": src.PixelEntry}).Debug("shader program compiled")
	return p, nil
}

func (d *device) LoadVertexData(vertices []common.Vertex) (geometry.Buffer, error) {
	if d.native == nil {
		return nil, ErrReleased
	}
	return geometry.NewBuffer(d.native, vertices)
}

func (d *device) CreateInputLayout(vs shader.VertexShader) (geometry.InputLayout, error) {
	if d.native == nil {
		return nil, ErrReleased
	}
	return geometry.NewInputLayout(d.native, vs, geometry.PositionLayout)
}

func (d *device) Context() d3d11.DeviceContext {
	return d.context
}

func (d *device) Native() d3d11.Device {
	return d.native
}

func (d *device) DriverType() d3d11.DriverType {
	return d.driverType
}

func (d *device) FeatureLevel() d3d11.FeatureLevel {
	return d.featureLevel
}

func (d *device) Release() {
	if d.context != nil {
		d.context.ClearState()
		d.context.Flush()
		d.context.Release()
		d.context = nil
	}
	if d.native != nil {
		d.native.Release()
		d.native = nil
	}
}
