package d3d11

import "fmt"

// Releaser is implemented by every native object that holds a driver reference.
// Release drops that reference; calling it more than once is a no-op.
type Releaser interface {
	Release()
}

// API is the entry point into the native driver: device creation and the runtime shader compiler.
type API interface {
	// CreateDevice creates a logical device and its immediate context on the given driver tier.
	//
	// Parameters:
	//   - driver: the driver tier to attempt
	//   - flags: device creation flags
	//   - levels: accepted feature levels, most preferred first
	//
	// Returns:
	//   - Device: the created device
	//   - DeviceContext: the device's immediate context
	//   - FeatureLevel: the feature level the driver granted
	//   - error: a *Error carrying the failing HRESULT
	CreateDevice(driver DriverType, flags CreateDeviceFlag, levels []FeatureLevel) (Device, DeviceContext, FeatureLevel, error)

	// CompileFromFile compiles HLSL source from disk at the given entry point and profile.
	//
	// Parameters:
	//   - path: the source file path
	//   - entryPoint: the function to compile
	//   - target: the shader-model profile, e.g. "vs_5_0"
	//   - flags: compiler flags
	//
	// Returns:
	//   - Blob: the compiled bytecode
	//   - error: a *CompileError, carrying the compiler diagnostics when present
	CompileFromFile(path, entryPoint, target string, flags CompileFlag) (Blob, error)
}

// Blob is a read-only block of memory returned by the compiler.
type Blob interface {
	Releaser

	// Bytes returns the blob contents. The slice is only valid until Release.
	Bytes() []byte
}

// Device is an ID3D11Device.
type Device interface {
	Releaser

	// QueryDXGIDevice returns the IDXGIDevice interface of this device.
	QueryDXGIDevice() (DXGIDevice, error)

	// CreateBuffer creates a buffer, optionally initialised with data.
	CreateBuffer(desc *BufferDesc, data []byte) (Buffer, error)

	// CreateRenderTargetView creates a view over the whole resource using the resource's own format.
	CreateRenderTargetView(resource Texture2D) (RenderTargetView, error)

	// CreateVertexShader creates a vertex shader object from compiled bytecode.
	CreateVertexShader(bytecode []byte) (VertexShader, error)

	// CreatePixelShader creates a pixel shader object from compiled bytecode.
	CreatePixelShader(bytecode []byte) (PixelShader, error)

	// CreateInputLayout creates an input layout validated against the vertex shader bytecode.
	CreateInputLayout(elements []InputElementDesc, bytecode []byte) (InputLayout, error)
}

// DXGIDevice is an IDXGIDevice.
type DXGIDevice interface {
	Releaser

	// Adapter returns the parent IDXGIAdapter.
	Adapter() (Adapter, error)
}

// Adapter is an IDXGIAdapter.
type Adapter interface {
	Releaser

	// Factory returns the parent IDXGIFactory.
	Factory() (Factory, error)
}

// Factory is an IDXGIFactory.
type Factory interface {
	Releaser

	// CreateSwapChain creates a swap chain for the device bound to desc.OutputWindow.
	CreateSwapChain(device Device, desc *SwapChainDesc) (SwapChain, error)
}

// SwapChain is an IDXGISwapChain.
type SwapChain interface {
	Releaser

	// Present presents the current back buffer, waiting for syncInterval vertical blanks.
	Present(syncInterval uint32, flags uint32) error

	// Buffer returns back buffer index as a 2D texture.
	Buffer(index uint32) (Texture2D, error)
}

// Texture2D is an ID3D11Texture2D.
type Texture2D interface {
	Releaser
}

// RenderTargetView is an ID3D11RenderTargetView.
type RenderTargetView interface {
	Releaser
}

// Buffer is an ID3D11Buffer.
type Buffer interface {
	Releaser
}

// VertexShader is an ID3D11VertexShader.
type VertexShader interface {
	Releaser
}

// PixelShader is an ID3D11PixelShader.
type PixelShader interface {
	Releaser
}

// InputLayout is an ID3D11InputLayout.
type InputLayout interface {
	Releaser
}

// DeviceContext is an ID3D11DeviceContext. Setters take effect on the next draw.
type DeviceContext interface {
	Releaser

	RSSetViewports(viewports []Viewport)
	ClearRenderTargetView(view RenderTargetView, color [4]float32)
	OMSetRenderTargets(views []RenderTargetView)
	VSSetShader(shader VertexShader)
	PSSetShader(shader PixelShader)
	IASetInputLayout(layout InputLayout)

	// IASetVertexBuffers binds buffers to consecutive slots from startSlot. It panics when strides or
	// offsets hold fewer entries than buffers.
	IASetVertexBuffers(startSlot uint32, buffers []Buffer, strides, offsets []uint32)
	IASetPrimitiveTopology(topology PrimitiveTopology)
	Draw(vertexCount, startVertex uint32)

	// ClearState resets all bindings to their defaults, dropping the context's references.
	ClearState()

	// Flush submits queued commands to the GPU.
	Flush()
}

// VertexBufferBindings returns the number of slots an IASetVertexBuffers call binds.
// A stride and an offset are needed for every buffer; a short slice is a caller bug and panics.
func VertexBufferBindings(buffers []Buffer, strides, offsets []uint32) int {
	n := len(buffers)
	if len(strides) < n || len(offsets) < n {
		panic(fmt.Sprintf("d3d11: IASetVertexBuffers: %d buffers with %d strides and %d offsets", n, len(strides), len(offsets)))
	}
	return n
}
