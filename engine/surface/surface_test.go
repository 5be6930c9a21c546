package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-dx/engine/d3d11"
	"github.com/Carmen-Shannon/oxy-dx/engine/d3d11/d3d11test"
)

const testHWND uintptr = 0x1234

func newFactory(t *testing.T) (*d3d11test.API, d3d11.Device, d3d11.Factory) {
	t.Helper()
	api := d3d11test.New()
	dev, _, _, err := api.CreateDevice(d3d11.DriverTypeHardware, 0, d3d11.DefaultFeatureLevels)
	require.NoError(t, err)
	dxgi, err := dev.QueryDXGIDevice()
	require.NoError(t, err)
	adapter, err := dxgi.Adapter()
	require.NoError(t, err)
	factory, err := adapter.Factory()
	require.NoError(t, err)
	api.Reset()
	return api, dev, factory
}

func TestNewSurfaceDefaults(t *testing.T) {
	api, dev, factory := newFactory(t)

	s, err := NewSurface(factory, dev, testHWND, 1280, 720)
	require.NoError(t, err)

	sc, ok := s.Native().(*d3d11test.SwapChain)
	require.True(t, ok)
	assert.Equal(t, d3d11.SwapChainDesc{
		BufferDesc: d3d11.ModeDesc{
			Width:       1280,
			Height:      720,
			RefreshRate: d3d11.Rational{Numerator: 60, Denominator: 1},
			Format:      d3d11.FormatR8G8B8A8UNorm,
		},
		SampleDesc:   d3d11.SampleDesc{Count: 1},
		BufferUsage:  d3d11.UsageRenderTargetOutput,
		BufferCount:  2,
		OutputWindow: testHWND,
		Windowed:     true,
		SwapEffect:   d3d11.SwapEffectFlipSequential,
	}, sc.Desc)

	assert.Equal(t, 1280, s.Width())
	assert.Equal(t, 720, s.Height())
	assert.Equal(t, uint32(2), s.BufferCount())
	assert.Equal(t, d3d11.SwapEffectFlipSequential, s.SwapEffect())

	assert.Equal(t, []string{
		"CreateSwapChain(1280x720, buffers=2, flip_sequential)",
		"GetBuffer(0)",
		"CreateRenderTargetView",
		"Release(Texture2D)",
	}, api.Calls)
}

func TestNewSurfaceViewComesFromBackBufferZero(t *testing.T) {
	for _, count := range []uint32{1, 2, 3} {
		_, dev, factory := newFactory(t)
		s, err := NewSurface(factory, dev, testHWND, 800, 600,
			WithBufferCount(count), WithSwapEffect(d3d11.SwapEffectDiscard))
		require.NoError(t, err)

		require.NotNil(t, s.RenderTargetView())
		view, ok := s.RenderTargetView().(*d3d11test.RenderTargetView)
		require.True(t, ok)
		assert.Equal(t, uint32(0), view.BufferIndex)
		assert.Equal(t, uint32(0), s.BackBufferIndex())
	}
}

func TestNewSurfaceOptions(t *testing.T) {
	_, dev, factory := newFactory(t)

	s, err := NewSurface(factory, dev, testHWND, 640, 480,
		WithBufferCount(3),
		WithSwapEffect(d3d11.SwapEffectFlipDiscard),
		WithRefreshRate(144, 1),
	)
	require.NoError(t, err)
	desc := s.Native().(*d3d11test.SwapChain).Desc
	assert.Equal(t, uint32(3), desc.BufferCount)
	assert.Equal(t, d3d11.SwapEffectFlipDiscard, desc.SwapEffect)
	assert.Equal(t, d3d11.Rational{Numerator: 144, Denominator: 1}, desc.BufferDesc.RefreshRate)
}

func TestNewSurfaceValidation(t *testing.T) {
	tests := []struct {
		name   string
		hwnd   uintptr
		width  int
		height int
		opts   []SurfaceBuilderOption
	}{
		{name: "no window", hwnd: 0, width: 1280, height: 720},
		{name: "zero width", hwnd: testHWND, width: 0, height: 720},
		{name: "negative height", hwnd: testHWND, width: 1280, height: -1},
		{name: "zero buffers", hwnd: testHWND, width: 1280, height: 720, opts: []SurfaceBuilderOption{WithBufferCount(0)}},
		{name: "too many buffers", hwnd: testHWND, width: 1280, height: 720, opts: []SurfaceBuilderOption{WithBufferCount(17)}},
		{name: "flip with one buffer", hwnd: testHWND, width: 1280, height: 720, opts: []SurfaceBuilderOption{WithBufferCount(1)}},
		{name: "zero refresh denominator", hwnd: testHWND, width: 1280, height: 720, opts: []SurfaceBuilderOption{WithRefreshRate(60, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, dev, factory := newFactory(t)
			_, err := NewSurface(factory, dev, tt.hwnd, tt.width, tt.height, tt.opts...)
			assert.ErrorIs(t, err, ErrInvalidDescriptor)
			assert.Empty(t, api.CallsMatching("CreateSwapChain"))
		})
	}
}

func TestNewSurfaceFailuresReleaseEverything(t *testing.T) {
	tests := []struct {
		op   string
		code d3d11.HRESULT
	}{
		{op: d3d11test.OpCreateSwapChain, code: d3d11.DXGI_ERROR_INVALID_CALL},
		{op: d3d11test.OpGetBuffer, code: d3d11.E_FAIL},
		{op: d3d11test.OpCreateRenderTargetView, code: d3d11.E_OUTOFMEMORY},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			api, dev, factory := newFactory(t)
			live := api.Live()
			api.Fail[tt.op] = tt.code

			s, err := NewSurface(factory, dev, testHWND, 1280, 720)
			require.Error(t, err)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, d3d11.CodeError(tt.code))
			assert.Equal(t, live, api.Live(), "intermediate objects leaked: %v", api.LiveKinds())
		})
	}
}

func TestPresent(t *testing.T) {
	api, dev, factory := newFactory(t)
	s, err := NewSurface(factory, dev, testHWND, 1280, 720)
	require.NoError(t, err)

	require.NoError(t, s.Present(1))
	require.NoError(t, s.Present(0))
	assert.Equal(t, []uint32{1, 0}, api.Presents)

	err = s.Present(5)
	assert.ErrorIs(t, err, ErrInvalidSyncInterval)
	assert.Len(t, api.Presents, 2)
}

func TestPresentDeviceLost(t *testing.T) {
	api, dev, factory := newFactory(t)
	s, err := NewSurface(factory, dev, testHWND, 1280, 720)
	require.NoError(t, err)
	api.Fail[d3d11test.OpPresent] = d3d11.DXGI_ERROR_DEVICE_REMOVED

	err = s.Present(1)
	require.Error(t, err)
	assert.True(t, d3d11.IsDeviceLost(err))
	assert.Contains(t, err.Error(), "DXGI_ERROR_DEVICE_REMOVED")
}

func TestRelease(t *testing.T) {
	api, dev, factory := newFactory(t)
	s, err := NewSurface(factory, dev, testHWND, 1280, 720)
	require.NoError(t, err)
	api.Reset()

	s.Release()
	s.Release()

	assert.Equal(t, []string{"Release(RenderTargetView)", "Release(SwapChain)"}, api.Calls)
	assert.Nil(t, s.RenderTargetView())
	assert.Nil(t, s.Native())
	assert.ErrorIs(t, s.Present(1), d3d11.CodeError(d3d11.DXGI_ERROR_INVALID_CALL))
}
