// Package engine ties the window, the GPU resources and the frame renderer together into one
// application lifecycle.
package engine

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-dx/common"
	"github.com/Carmen-Shannon/oxy-dx/config"
	"github.com/Carmen-Shannon/oxy-dx/engine/d3d11"
	"github.com/Carmen-Shannon/oxy-dx/engine/device"
	"github.com/Carmen-Shannon/oxy-dx/engine/profiler"
	"github.com/Carmen-Shannon/oxy-dx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-dx/engine/renderer/geometry"
	"github.com/Carmen-Shannon/oxy-dx/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-dx/engine/surface"
	"github.com/Carmen-Shannon/oxy-dx/engine/window"
)

// ErrorTitle is the title of the dialog reporting a fatal error.
const ErrorTitle = "ERROR"

// ErrorReporter shows a fatal error to the user.
type ErrorReporter func(title, message string)

// DialogReporter returns the default ErrorReporter: a blocking message box on windows, an error log
// entry elsewhere.
//
// Parameters:
//   - logger: receives the message when no dialog can be shown
//
// Returns:
//   - ErrorReporter: the reporter
func DialogReporter(logger logrus.FieldLogger) ErrorReporter {
	return func(title, message string) {
		showErrorDialog(logger, title, message)
	}
}

// app implements the App interface.
// Owns every GPU resource and releases them in reverse creation order.
type app struct {
	api    d3d11.API
	window window.Window
	cfg    config.Config
	state  State

	device   device.Device
	surface  surface.Surface
	program  *shader.Program
	buffer   geometry.Buffer
	layout   geometry.InputLayout
	renderer renderer.Renderer

	profiler         *profiler.Profiler
	profilingEnabled bool

	reporter ErrorReporter
	logger   logrus.FieldLogger
}

// App is the application window: one native window hosting one Direct3D11 context that draws the
// configured frame on every message loop iteration.
type App interface {
	// Run opens the window, creates the GPU resources, shows the window and pumps messages until the
	// window closes. A failure at any point is reported through the error reporter.
	//
	// Returns:
	//   - int: 0 after an orderly close, -1 after a reported failure
	Run() int

	// State returns the current lifecycle state.
	//
	// Returns:
	//   - State: the state
	State() State
}

var _ App = &app{}

// NewApp creates an App drawing cfg's frame into win through api.
// Nothing is created until Run.
//
// Parameters:
//   - api: the native graphics API
//   - win: the window hosting the swap chain
//   - cfg: the validated configuration
//   - options: functional options applied in order
//
// Returns:
//   - App: the application
func NewApp(api d3d11.API, win window.Window, cfg config.Config, options ...AppBuilderOption) App {
	a := &app{
		api:              api,
		window:           win,
		cfg:              cfg,
		state:            StateUninitialized,
		profilingEnabled: cfg.Frame.Profile,
		logger:           logrus.StandardLogger(),
	}
	a.reporter = func(title, message string) {
		showErrorDialog(a.logger, title, message)
	}

	for _, opt := range options {
		opt(a)
	}

	a.profiler = profiler.NewProfiler(a.logger, time.Second)
	return a
}

func (a *app) Run() int {
	if err := a.run(); err != nil {
		a.logger.WithError(err).WithField("state", a.state).Error("application failed")
		a.reporter(ErrorTitle, err.Error())
		return -1
	}
	return 0
}

func (a *app) State() State {
	return a.state
}

// run drives the window lifecycle. Resources left alive by a failed frame are released before the
// window is destroyed.
func (a *app) run() (err error) {
	a.window.SetCreateHandler(a.onCreate)
	a.window.SetUpdateHandler(a.onUpdate)
	a.window.SetCloseHandler(a.onClose)

	defer func() {
		a.release()
		if cerr := a.window.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close window: %w", cerr)
		}
		a.state = StateDestroyed
	}()

	if err := a.window.Open(); err != nil {
		return err
	}
	if err := a.window.Show(); err != nil {
		return err
	}
	a.state = StateRunning
	a.logger.WithFields(logrus.Fields{
		"title":  a.window.Title(),
		"width":  a.window.Width(),
		"height": a.window.Height(),
	}).Info("window shown")

	return a.window.ProcessMessages()
}

// onCreate builds the GPU resources in dependency order: device, surface, shaders, vertex buffer,
// input layout. Anything built before a failure is released again.
func (a *app) onCreate(handle uintptr, width, height int) (err error) {
	defer func() {
		if err != nil {
			a.release()
		}
	}()

	a.device, err = device.NewDevice(a.api,
		device.WithDriverTypes(a.cfg.Device.DriverTypes...),
		device.WithFeatureLevels(a.cfg.Device.FeatureLevels...),
		device.WithDebug(a.cfg.Device.Debug),
		device.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}

	sc := a.cfg.SwapChain
	a.surface, err = a.device.CreateSwapChain(handle, width, height,
		surface.WithBufferCount(sc.BufferCount),
		surface.WithSwapEffect(sc.SwapEffect),
		surface.WithRefreshRate(sc.RefreshNumerator, sc.RefreshDenominator),
	)
	if err != nil {
		return err
	}

	a.program, err = a.device.CompileProgram(a.cfg.ProgramSource())
	if err != nil {
		return err
	}

	a.buffer, err = a.device.LoadVertexData(a.cfg.VertexData())
	if err != nil {
		return err
	}

	a.layout, err = a.device.CreateInputLayout(a.program.Vertex)
	if err != nil {
		return err
	}

	a.renderer = renderer.NewRenderer(a.device.Context(), renderer.WithLogger(a.logger))
	a.state = StateCreated
	a.logger.WithFields(logrus.Fields{
		"driver":        a.device.DriverType(),
		"feature_level": a.device.FeatureLevel(),
		"vertices":      a.buffer.Count(),
	}).Info("gpu resources created")
	return nil
}

// onUpdate renders and presents one frame.
func (a *app) onUpdate() error {
	frame := renderer.Frame{
		Target:     a.surface.RenderTargetView(),
		Width:      a.surface.Width(),
		Height:     a.surface.Height(),
		ClearColor: common.Color(a.cfg.Frame.ClearColor),
		Program:    a.program,
		Buffer:     a.buffer,
		Layout:     a.layout,
	}
	if err := a.renderer.Draw(frame); err != nil {
		return err
	}
	if err := a.surface.Present(a.cfg.SwapChain.SyncInterval); err != nil {
		if d3d11.IsDeviceLost(err) {
			a.logger.WithError(err).Warn("device lost")
		}
		return err
	}
	if a.profilingEnabled {
		a.profiler.Tick()
	}
	return nil
}

// onClose releases every GPU resource while the window still exists.
func (a *app) onClose() error {
	a.release()
	a.state = StateClosing
	a.logger.Debug("gpu resources released")
	return nil
}

// release frees the resources in reverse creation order. Safe to call more than once.
func (a *app) release() {
	a.renderer = nil
	if a.layout != nil {
		a.layout.Release()
		a.layout = nil
	}
	if a.buffer != nil {
		a.buffer.Release()
		a.buffer = nil
	}
	if a.program != nil {
		a.program.Release()
		a.program = nil
	}
	if a.surface != nil {
		a.surface.Release()
		a.surface = nil
	}
	if a.device != nil {
		a.device.Release()
		a.device = nil
	}
}
