//go:build windows

package d3d11

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"
)

type device struct{ comObject }

type deviceContext struct{ comObject }

type dxgiDevice struct{ comObject }

type adapter struct{ comObject }

type factory struct{ comObject }

type swapChain struct{ comObject }

type texture2D struct{ comObject }

type renderTargetView struct{ comObject }

type buffer struct{ comObject }

type vertexShader struct{ comObject }

type pixelShader struct{ comObject }

type inputLayout struct{ comObject }

// nativeSwapChainDesc matches DXGI_SWAP_CHAIN_DESC, whose Windowed member is a 4 byte BOOL.
type nativeSwapChainDesc struct {
	BufferDesc   ModeDesc
	SampleDesc   SampleDesc
	BufferUsage  uint32
	BufferCount  uint32
	OutputWindow uintptr
	Windowed     int32
	SwapEffect   SwapEffect
	Flags        uint32
}

// subresourceData matches D3D11_SUBRESOURCE_DATA.
type subresourceData struct {
	SysMem           uintptr
	SysMemPitch      uint32
	SysMemSlicePitch uint32
}

// nativeInputElementDesc matches D3D11_INPUT_ELEMENT_DESC.
type nativeInputElementDesc struct {
	SemanticName         *byte
	SemanticIndex        uint32
	Format               Format
	InputSlot            uint32
	AlignedByteOffset    uint32
	InputSlotClass       InputClassification
	InstanceDataStepRate uint32
}

func (d *device) QueryDXGIDevice() (DXGIDevice, error) {
	p, err := d.query("ID3D11Device::QueryInterface(IDXGIDevice)", vtblQueryInterface, &iidIDXGIDevice)
	if err != nil {
		return nil, err
	}
	return &dxgiDevice{comObject{p}}, nil
}

func (d *device) CreateBuffer(desc *BufferDesc, data []byte) (Buffer, error) {
	var (
		out     uintptr
		initial *subresourceData
	)
	if len(data) > 0 {
		initial = &subresourceData{SysMem: uintptr(unsafe.Pointer(&data[0]))}
	}
	hr := d.call(vtblDeviceCreateBuffer,
		uintptr(unsafe.Pointer(desc)),
		uintptr(unsafe.Pointer(initial)),
		uintptr(unsafe.Pointer(&out)),
	)
	runtime.KeepAlive(data)
	if err := check("ID3D11Device::CreateBuffer", hr); err != nil {
		return nil, err
	}
	return &buffer{comObject{out}}, nil
}

func (d *device) CreateRenderTargetView(resource Texture2D) (RenderTargetView, error) {
	var out uintptr
	hr := d.call(vtblDeviceCreateRenderTargetView, rawOf(resource), 0, uintptr(unsafe.Pointer(&out)))
	if err := check("ID3D11Device::CreateRenderTargetView", hr); err != nil {
		return nil, err
	}
	return &renderTargetView{comObject{out}}, nil
}

func (d *device) CreateVertexShader(bytecode []byte) (VertexShader, error) {
	out, err := d.createShader("ID3D11Device::CreateVertexShader", vtblDeviceCreateVertexShader, bytecode)
	if err != nil {
		return nil, err
	}
	return &vertexShader{comObject{out}}, nil
}

func (d *device) CreatePixelShader(bytecode []byte) (PixelShader, error) {
	out, err := d.createShader("ID3D11Device::CreatePixelShader", vtblDeviceCreatePixelShader, bytecode)
	if err != nil {
		return nil, err
	}
	return &pixelShader{comObject{out}}, nil
}

func (d *device) createShader(op string, idx int, bytecode []byte) (uintptr, error) {
	if len(bytecode) == 0 {
		return 0, &Error{Op: op, Code: E_INVALIDARG}
	}
	var out uintptr
	hr := d.call(idx,
		uintptr(unsafe.Pointer(&bytecode[0])),
		uintptr(len(bytecode)),
		0, // no class linkage
		uintptr(unsafe.Pointer(&out)),
	)
	runtime.KeepAlive(bytecode)
	return out, check(op, hr)
}

func (d *device) CreateInputLayout(elements []InputElementDesc, bytecode []byte) (InputLayout, error) {
	const op = "ID3D11Device::CreateInputLayout"
	if len(elements) == 0 || len(bytecode) == 0 {
		return nil, &Error{Op: op, Code: E_INVALIDARG}
	}
	descs := make([]nativeInputElementDesc, len(elements))
	for i, e := range elements {
		name, err := windows.BytePtrFromString(e.SemanticName)
		if err != nil {
			return nil, &Error{Op: op, Code: E_INVALIDARG, Description: err.Error()}
		}
		descs[i] = nativeInputElementDesc{
			SemanticName:         name,
			SemanticIndex:        e.SemanticIndex,
			Format:               e.Format,
			InputSlot:            e.InputSlot,
			AlignedByteOffset:    e.AlignedByteOffset,
			InputSlotClass:       e.InputSlotClass,
			InstanceDataStepRate: e.InstanceDataStepRate,
		}
	}
	var out uintptr
	hr := d.call(vtblDeviceCreateInputLayout,
		uintptr(unsafe.Pointer(&descs[0])),
		uintptr(len(descs)),
		uintptr(unsafe.Pointer(&bytecode[0])),
		uintptr(len(bytecode)),
		uintptr(unsafe.Pointer(&out)),
	)
	runtime.KeepAlive(descs)
	runtime.KeepAlive(bytecode)
	if err := check(op, hr); err != nil {
		return nil, err
	}
	return &inputLayout{comObject{out}}, nil
}

func (d *dxgiDevice) Adapter() (Adapter, error) {
	p, err := d.query("IDXGIDevice::GetParent(IDXGIAdapter)", vtblGetParent, &iidIDXGIAdapter)
	if err != nil {
		return nil, err
	}
	return &adapter{comObject{p}}, nil
}

func (a *adapter) Factory() (Factory, error) {
	p, err := a.query("IDXGIAdapter::GetParent(IDXGIFactory)", vtblGetParent, &iidIDXGIFactory)
	if err != nil {
		return nil, err
	}
	return &factory{comObject{p}}, nil
}

func (f *factory) CreateSwapChain(dev Device, desc *SwapChainDesc) (SwapChain, error) {
	native := nativeSwapChainDesc{
		BufferDesc:   desc.BufferDesc,
		SampleDesc:   desc.SampleDesc,
		BufferUsage:  desc.BufferUsage,
		BufferCount:  desc.BufferCount,
		OutputWindow: desc.OutputWindow,
		SwapEffect:   desc.SwapEffect,
		Flags:        desc.Flags,
	}
	if desc.Windowed {
		native.Windowed = 1
	}
	var out uintptr
	hr := f.call(vtblFactoryCreateSwapChain, rawOf(dev), uintptr(unsafe.Pointer(&native)), uintptr(unsafe.Pointer(&out)))
	if err := check("IDXGIFactory::CreateSwapChain", hr); err != nil {
		return nil, err
	}
	return &swapChain{comObject{out}}, nil
}

func (s *swapChain) Present(syncInterval uint32, flags uint32) error {
	return check("IDXGISwapChain::Present", s.call(vtblSwapChainPresent, uintptr(syncInterval), uintptr(flags)))
}

func (s *swapChain) Buffer(index uint32) (Texture2D, error) {
	var out uintptr
	hr := s.call(vtblSwapChainGetBuffer, uintptr(index), uintptr(unsafe.Pointer(&iidID3D11Texture2D)), uintptr(unsafe.Pointer(&out)))
	if err := check("IDXGISwapChain::GetBuffer", hr); err != nil {
		return nil, err
	}
	return &texture2D{comObject{out}}, nil
}

func (c *deviceContext) RSSetViewports(viewports []Viewport) {
	if len(viewports) == 0 {
		c.callVoid(vtblCtxRSSetViewports, 0, 0)
		return
	}
	c.callVoid(vtblCtxRSSetViewports, uintptr(len(viewports)), uintptr(unsafe.Pointer(&viewports[0])))
	runtime.KeepAlive(viewports)
}

func (c *deviceContext) ClearRenderTargetView(view RenderTargetView, color [4]float32) {
	c.callVoid(vtblCtxClearRenderTargetView, rawOf(view), uintptr(unsafe.Pointer(&color[0])))
	runtime.KeepAlive(&color)
}

func (c *deviceContext) OMSetRenderTargets(views []RenderTargetView) {
	raws := make([]uintptr, len(views))
	for i, v := range views {
		raws[i] = rawOf(v)
	}
	var p uintptr
	if len(raws) > 0 {
		p = uintptr(unsafe.Pointer(&raws[0]))
	}
	c.callVoid(vtblCtxOMSetRenderTargets, uintptr(len(raws)), p, 0)
	runtime.KeepAlive(raws)
}

func (c *deviceContext) VSSetShader(shader VertexShader) {
	c.callVoid(vtblCtxVSSetShader, rawOf(shader), 0, 0)
}

func (c *deviceContext) PSSetShader(shader PixelShader) {
	c.callVoid(vtblCtxPSSetShader, rawOf(shader), 0, 0)
}

func (c *deviceContext) IASetInputLayout(layout InputLayout) {
	c.callVoid(vtblCtxIASetInputLayout, rawOf(layout))
}

func (c *deviceContext) IASetVertexBuffers(startSlot uint32, buffers []Buffer, strides, offsets []uint32) {
	n := VertexBufferBindings(buffers, strides, offsets)
	if n == 0 {
		return
	}
	raws := make([]uintptr, n)
	for i, b := range buffers {
		raws[i] = rawOf(b)
	}
	c.callVoid(vtblCtxIASetVertexBuffers,
		uintptr(startSlot),
		uintptr(n),
		uintptr(unsafe.Pointer(&raws[0])),
		uintptr(unsafe.Pointer(&strides[0])),
		uintptr(unsafe.Pointer(&offsets[0])),
	)
	runtime.KeepAlive(raws)
	runtime.KeepAlive(strides)
	runtime.KeepAlive(offsets)
}

func (c *deviceContext) IASetPrimitiveTopology(topology PrimitiveTopology) {
	c.callVoid(vtblCtxIASetPrimitiveTopology, uintptr(topology))
}

func (c *deviceContext) Draw(vertexCount, startVertex uint32) {
	c.callVoid(vtblCtxDraw, uintptr(vertexCount), uintptr(startVertex))
}

func (c *deviceContext) ClearState() {
	c.callVoid(vtblCtxClearState)
}

func (c *deviceContext) Flush() {
	c.callVoid(vtblCtxFlush)
}
