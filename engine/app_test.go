package engine

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-dx/config"
	"github.com/Carmen-Shannon/oxy-dx/engine/d3d11"
	"github.com/Carmen-Shannon/oxy-dx/engine/d3d11/d3d11test"
	"github.com/Carmen-Shannon/oxy-dx/engine/window"
)

// fakeWindow runs a fixed number of frames and then reports a close, recording the driver calls of
// every frame.
type fakeWindow struct {
	api    *d3d11test.API
	frames int

	onCreate window.CreateHandler
	onClose  func() error
	onUpdate func() error

	hook func(event string)

	open       bool
	running    bool
	closed     int
	frameCalls [][]string
	liveAtQuit int
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetCreateHandler(handler window.CreateHandler) { w.onCreate = handler }
func (w *fakeWindow) SetCloseHandler(handler func() error)         { w.onClose = handler }
func (w *fakeWindow) SetUpdateHandler(handler func() error)        { w.onUpdate = handler }

func (w *fakeWindow) Open() error {
	if w.onCreate != nil {
		if err := w.onCreate(0x1234, 1280, 720); err != nil {
			return err
		}
	}
	w.open = true
	return nil
}

func (w *fakeWindow) Show() error {
	if !w.open {
		return window.ErrNotOpen
	}
	w.notify("show")
	w.running = true
	return nil
}

func (w *fakeWindow) ProcessMessages() error {
	for i := 0; ; i++ {
		if i == w.frames {
			if w.onClose != nil {
				if err := w.onClose(); err != nil {
					w.running = false
					return err
				}
			}
			w.liveAtQuit = w.api.Live()
			w.notify("quit")
			w.running = false
			return nil
		}
		start := len(w.api.Calls)
		w.notify("update")
		err := w.onUpdate()
		w.frameCalls = append(w.frameCalls, append([]string(nil), w.api.Calls[start:]...))
		if err != nil {
			return err
		}
	}
}

func (w *fakeWindow) notify(event string) {
	if w.hook != nil {
		w.hook(event)
	}
}

func (w *fakeWindow) RequestClose()   {}
func (w *fakeWindow) IsRunning() bool { return w.running }
func (w *fakeWindow) Handle() uintptr { return 0x1234 }
func (w *fakeWindow) Title() string   { return "Dx" }
func (w *fakeWindow) Width() int      { return 1280 }
func (w *fakeWindow) Height() int     { return 720 }

func (w *fakeWindow) Close() error {
	w.closed++
	w.open = false
	w.running = false
	return nil
}

type reported struct {
	title   string
	message string
}

func newTestApp(t *testing.T, frames int, options ...AppBuilderOption) (App, *d3d11test.API, *fakeWindow, *[]reported) {
	t.Helper()
	api := d3d11test.New()
	win := &fakeWindow{api: api, frames: frames}
	reports := &[]reported{}
	logger, _ := test.NewNullLogger()

	opts := append([]AppBuilderOption{
		WithLogger(logger),
		WithErrorReporter(func(title, message string) {
			*reports = append(*reports, reported{title: title, message: message})
		}),
	}, options...)
	return NewApp(api, win, config.Default(), opts...), api, win, reports
}

var triangleFrame = []string{
	"RSSetViewports(1280x720)",
	"ClearRenderTargetView(RenderTargetView, [0 1 0 1])",
	"OMSetRenderTargets(1)",
	"VSSetShader(VertexShader)",
	"PSSetShader(PixelShader)",
	"IASetVertexBuffers(0, 1, [12], [0])",
	"IASetInputLayout(InputLayout)",
	"IASetPrimitiveTopology(4)",
	"Draw(3, 0)",
	"Present(1)",
}

func TestRunDrawsTriangleFrame(t *testing.T) {
	app, api, win, reports := newTestApp(t, 1)

	assert.Equal(t, 0, app.Run())
	assert.Empty(t, *reports)

	require.Len(t, win.frameCalls, 1)
	assert.Equal(t, triangleFrame, win.frameCalls[0])
	assert.Equal(t, []uint32{1}, api.Presents)
	assert.Equal(t, []string{"CreateDevice(hardware)"}, api.CallsMatching("CreateDevice"))
	assert.Equal(t, []string{"CreateBuffer(36)"}, api.CallsMatching("CreateBuffer"))
}

func TestRunReleasesEverythingBeforeQuit(t *testing.T) {
	app, api, win, _ := newTestApp(t, 2)
	var stateAtQuit State
	win.hook = func(event string) {
		if event == "quit" {
			stateAtQuit = app.State()
		}
	}

	require.Equal(t, 0, app.Run())
	assert.Zero(t, win.liveAtQuit, "still live at quit: %v", api.LiveKinds())
	assert.Equal(t, StateClosing, stateAtQuit)
	assert.Equal(t, StateDestroyed, app.State())
	assert.Equal(t, 1, win.closed)

	var tail []string
	for i := len(api.Calls) - 1; i >= 0 && api.Calls[i] != "Present(1)"; i-- {
		tail = append([]string{api.Calls[i]}, tail...)
	}
	assert.Equal(t, []string{
		"Release(InputLayout)",
		"Release(Buffer)",
		"Release(PixelShader)",
		"Release(VertexShader)",
		"Release(RenderTargetView)",
		"Release(SwapChain)",
		"ClearState",
		"Flush",
		"Release(DeviceContext)",
		"Release(Device)",
	}, tail)
}

func TestRunRepeatsFramesWithoutCreatingResources(t *testing.T) {
	app, api, win, _ := newTestApp(t, 2)
	var createdAfterFirst int
	frames := 0
	win.hook = func(event string) {
		if event == "update" {
			frames++
			if frames == 2 {
				createdAfterFirst = api.Created()
			}
		}
	}

	require.Equal(t, 0, app.Run())
	require.Len(t, win.frameCalls, 2)
	assert.Equal(t, win.frameCalls[0], win.frameCalls[1])
	assert.Equal(t, []uint32{1, 1}, api.Presents)
	assert.Equal(t, createdAfterFirst, api.Created())
}

func TestRunStateTransitions(t *testing.T) {
	app, _, win, _ := newTestApp(t, 1)
	assert.Equal(t, StateUninitialized, app.State())

	var states []State
	win.hook = func(string) {
		states = append(states, app.State())
	}

	require.Equal(t, 0, app.Run())
	assert.Equal(t, []State{StateCreated, StateRunning, StateClosing}, states)
	assert.Equal(t, StateDestroyed, app.State())
}

func TestRunReportsCreateFailure(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(api *d3d11test.API)
		expect string
	}{
		{
			name: "no driver type",
			setup: func(api *d3d11test.API) {
				for _, driver := range d3d11.DefaultDriverTypes {
					api.FailDriver[driver] = d3d11.DXGI_ERROR_UNSUPPORTED
				}
			},
			expect: "every driver type failed",
		},
		{
			name:   "swap chain",
			setup:  func(api *d3d11test.API) { api.Fail[d3d11test.OpCreateSwapChain] = d3d11.E_OUTOFMEMORY },
			expect: "create swap chain",
		},
		{
			name: "pixel shader syntax error",
			setup: func(api *d3d11test.API) {
				api.Diagnostics["psmain"] = "shader.fx(9,5): error X3000: syntax error: unexpected token '}'"
			},
			expect: "X3000",
		},
		{
			name:   "vertex buffer",
			setup:  func(api *d3d11test.API) { api.Fail[d3d11test.OpCreateBuffer] = d3d11.E_INVALIDARG },
			expect: "E_INVALIDARG",
		},
		{
			name: "input layout",
			setup: func(api *d3d11test.API) {
				api.Signatures["vsmain"] = append(d3d11.InputSignature{
					{SemanticName: "COLOR", ComponentType: d3d11.ComponentFloat32, Register: 1, Mask: 0xf, ReadWriteMask: 0xf},
				}, d3d11test.PositionSignature...)
			},
			expect: "missing semantics COLOR0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, api, win, reports := newTestApp(t, 3)
			tt.setup(api)

			assert.Equal(t, -1, app.Run())
			require.Len(t, *reports, 1)
			assert.Equal(t, ErrorTitle, (*reports)[0].title)
			assert.Contains(t, (*reports)[0].message, tt.expect)

			assert.Empty(t, win.frameCalls)
			assert.Empty(t, api.Presents)
			assert.Zero(t, api.Live(), "leaked: %v", api.LiveKinds())
			assert.Equal(t, 1, win.closed)
			assert.Equal(t, StateDestroyed, app.State())
		})
	}
}

func TestRunReportsPresentFailure(t *testing.T) {
	app, api, win, reports := newTestApp(t, 5)
	api.Fail[d3d11test.OpPresent] = d3d11.DXGI_ERROR_DEVICE_REMOVED

	assert.Equal(t, -1, app.Run())
	require.Len(t, *reports, 1)
	assert.Contains(t, (*reports)[0].message, "DXGI_ERROR_DEVICE_REMOVED")
	assert.Len(t, win.frameCalls, 1)
	assert.Zero(t, api.Live(), "leaked: %v", api.LiveKinds())
	assert.Equal(t, StateDestroyed, app.State())
}

func TestRunUsesConfiguredSyncInterval(t *testing.T) {
	api := d3d11test.New()
	win := &fakeWindow{api: api, frames: 2}
	cfg := config.Default()
	cfg.SwapChain.SyncInterval = 0
	logger, _ := test.NewNullLogger()

	require.Equal(t, 0, NewApp(api, win, cfg, WithLogger(logger)).Run())
	assert.Equal(t, []uint32{0, 0}, api.Presents)
}

func TestNewAppOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Frame.Profile = true

	a := NewApp(d3d11test.New(), &fakeWindow{}, cfg).(*app)
	assert.True(t, a.profilingEnabled)
	assert.Equal(t, logrus.StandardLogger(), a.logger)
	assert.NotNil(t, a.reporter)

	a = NewApp(d3d11test.New(), &fakeWindow{}, cfg, WithProfiling(false), WithErrorReporter(nil)).(*app)
	assert.False(t, a.profilingEnabled)
	assert.NotNil(t, a.reporter)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "destroyed", StateDestroyed.String())
	assert.Equal(t, "unknown", State(42).String())
}
