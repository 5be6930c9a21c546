// Package d3d11test provides an in-memory implementation of the d3d11 driver boundary.
// It records every call and tracks object lifetimes so engine code can be tested without a GPU.
package d3d11test

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-dx/engine/d3d11"
)

// Operation names accepted as keys of API.Fail.
const (
	OpCreateDevice           = "CreateDevice"
	OpQueryDXGIDevice        = "QueryDXGIDevice"
	OpAdapter                = "Adapter"
	OpFactory                = "Factory"
	OpCreateSwapChain        = "CreateSwapChain"
	OpGetBuffer              = "GetBuffer"
	OpCreateRenderTargetView = "CreateRenderTargetView"
	OpCompileFromFile        = "CompileFromFile"
	OpCreateVertexShader     = "CreateVertexShader"
	OpCreatePixelShader      = "CreatePixelShader"
	OpCreateInputLayout      = "CreateInputLayout"
	OpCreateBuffer           = "CreateBuffer"
	OpPresent                = "Present"
)

// API is a recording d3d11.API.
type API struct {
	// FailDriver makes CreateDevice fail with the given code for the listed driver tiers.
	FailDriver map[d3d11.DriverType]d3d11.HRESULT

	// Fail makes the named operation fail with the given code.
	Fail map[string]d3d11.HRESULT

	// Diagnostics makes compilation of the given entry point fail with this compiler text.
	Diagnostics map[string]string

	// Signatures overrides the input signature embedded in the bytecode compiled for an entry point.
	// Vertex targets default to PositionSignature; other targets carry no signature.
	Signatures map[string]d3d11.InputSignature

	// Bytecode replaces the whole compiled blob for an entry point, taking precedence over Signatures.
	Bytecode map[string][]byte

	// GrantedLevel is the feature level reported by CreateDevice; defaults to the first requested level.
	GrantedLevel d3d11.FeatureLevel

	// Calls lists every recorded call in order.
	Calls []string

	// Attempts lists the driver tiers CreateDevice was called with, in order.
	Attempts []d3d11.DriverType

	// Presents lists the sync interval of every Present call.
	Presents []uint32

	// CompileFlags lists the flags of every CompileFromFile call.
	CompileFlags []d3d11.CompileFlag

	// Objects lists every object created, in creation order.
	Objects []*Object
}

// New creates an empty recording API on which every call succeeds.
//
// Returns:
//   - *API: the fake API
func New() *API {
	return &API{
		FailDriver:  make(map[d3d11.DriverType]d3d11.HRESULT),
		Fail:        make(map[string]d3d11.HRESULT),
		Diagnostics: make(map[string]string),
		Signatures:  make(map[string]d3d11.InputSignature),
		Bytecode:    make(map[string][]byte),
	}
}

var _ d3d11.API = &API{}

// Object is the lifetime record shared by every fake native object.
type Object struct {
	api      *API
	Kind     string
	Released bool
}

// Release marks the object released. Repeated calls are ignored.
func (o *Object) Release() {
	if o.Released {
		return
	}
	o.Released = true
	o.api.record("Release(%s)", o.Kind)
}

// Live returns the number of objects created and not yet released.
func (a *API) Live() int {
	n := 0
	for _, o := range a.Objects {
		if !o.Released {
			n++
		}
	}
	return n
}

// LiveKinds returns the kinds of the objects that have not been released.
func (a *API) LiveKinds() []string {
	var kinds []string
	for _, o := range a.Objects {
		if !o.Released {
			kinds = append(kinds, o.Kind)
		}
	}
	return kinds
}

// Created returns the number of objects ever created.
func (a *API) Created() int {
	return len(a.Objects)
}

// CallsMatching returns the recorded calls starting with prefix.
func (a *API) CallsMatching(prefix string) []string {
	var out []string
	for _, c := range a.Calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// NewRenderTargetView creates a view over back buffer 0 without going through a swap chain.
func (a *API) NewRenderTargetView() *RenderTargetView {
	return &RenderTargetView{Object: a.newObject("RenderTargetView")}
}

// Reset forgets recorded calls and presents, keeping objects and failure settings.
func (a *API) Reset() {
	a.Calls = nil
	a.Presents = nil
}

func (a *API) record(format string, args ...any) {
	a.Calls = append(a.Calls, fmt.Sprintf(format, args...))
}

func (a *API) newObject(kind string) *Object {
	o := &Object{api: a, Kind: kind}
	a.Objects = append(a.Objects, o)
	return o
}

func (a *API) fail(op string) error {
	if code, ok := a.Fail[op]; ok {
		return &d3d11.Error{Op: op, Code: code}
	}
	return nil
}

func (a *API) CreateDevice(driver d3d11.DriverType, flags d3d11.CreateDeviceFlag, levels []d3d11.FeatureLevel) (d3d11.Device, d3d11.DeviceContext, d3d11.FeatureLevel, error) {
	a.record("CreateDevice(%s)", driver)
	a.Attempts = append(a.Attempts, driver)
	if code, ok := a.FailDriver[driver]; ok {
		return nil, nil, 0, &d3d11.Error{Op: "D3D11CreateDevice", Code: code}
	}
	if err := a.fail(OpCreateDevice); err != nil {
		return nil, nil, 0, err
	}
	level := a.GrantedLevel
	if level == 0 && len(levels) > 0 {
		level = levels[0]
	}
	dev := &Device{Object: a.newObject("Device"), Driver: driver, Flags: flags}
	ctx := &Context{Object: a.newObject("DeviceContext")}
	return dev, ctx, level, nil
}

func (a *API) CompileFromFile(path, entryPoint, target string, flags d3d11.CompileFlag) (d3d11.Blob, error) {
	a.record("CompileFromFile(%s, %s, %s)", path, entryPoint, target)
	a.CompileFlags = append(a.CompileFlags, flags)
	if diag, ok := a.Diagnostics[entryPoint]; ok {
		return nil, &d3d11.CompileError{
			Path: path, EntryPoint: entryPoint, Target: target,
			Diagnostics: diag,
			Err:         &d3d11.Error{Op: "D3DCompileFromFile", Code: d3d11.E_FAIL},
		}
	}
	if code, ok := a.Fail[OpCompileFromFile]; ok {
		return nil, &d3d11.CompileError{
			Path: path, EntryPoint: entryPoint, Target: target,
			Err: &d3d11.Error{Op: "D3DCompileFromFile", Code: code},
		}
	}
	if data, ok := a.Bytecode[entryPoint]; ok {
		return &Blob{Object: a.newObject("Blob"), Data: append([]byte(nil), data...), Flags: flags}, nil
	}
	sig, ok := a.Signatures[entryPoint]
	if !ok && strings.HasPrefix(target, "vs_") {
		sig = PositionSignature
	}
	return &Blob{Object: a.newObject("Blob"), Data: EncodeDXBC(sig), Flags: flags}, nil
}

// Blob is a fake compiled shader blob.
type Blob struct {
	*Object
	Data  []byte
	Flags d3d11.CompileFlag
}

func (b *Blob) Bytes() []byte {
	return b.Data
}

// Device is a fake ID3D11Device.
type Device struct {
	*Object
	Driver d3d11.DriverType
	Flags  d3d11.CreateDeviceFlag
}

func (d *Device) QueryDXGIDevice() (d3d11.DXGIDevice, error) {
	d.api.record("QueryDXGIDevice")
	if err := d.api.fail(OpQueryDXGIDevice); err != nil {
		return nil, err
	}
	return &DXGIDevice{Object: d.api.newObject("DXGIDevice")}, nil
}

func (d *Device) CreateBuffer(desc *d3d11.BufferDesc, data []byte) (d3d11.Buffer, error) {
	d.api.record("CreateBuffer(%d)", desc.ByteWidth)
	if err := d.api.fail(OpCreateBuffer); err != nil {
		return nil, err
	}
	if desc.ByteWidth == 0 {
		return nil, &d3d11.Error{Op: OpCreateBuffer, Code: d3d11.E_INVALIDARG}
	}
	return &Buffer{Object: d.api.newObject("Buffer"), Desc: *desc, Data: append([]byte(nil), data...)}, nil
}

func (d *Device) CreateRenderTargetView(resource d3d11.Texture2D) (d3d11.RenderTargetView, error) {
	d.api.record("CreateRenderTargetView")
	if err := d.api.fail(OpCreateRenderTargetView); err != nil {
		return nil, err
	}
	tex, _ := resource.(*Texture2D)
	if tex == nil || tex.Released {
		return nil, &d3d11.Error{Op: OpCreateRenderTargetView, Code: d3d11.E_INVALIDARG}
	}
	return &RenderTargetView{Object: d.api.newObject("RenderTargetView"), BufferIndex: tex.Index}, nil
}

func (d *Device) CreateVertexShader(bytecode []byte) (d3d11.VertexShader, error) {
	d.api.record("CreateVertexShader")
	if err := d.api.fail(OpCreateVertexShader); err != nil {
		return nil, err
	}
	return &VertexShader{Object: d.api.newObject("VertexShader"), Bytecode: append([]byte(nil), bytecode...)}, nil
}

func (d *Device) CreatePixelShader(bytecode []byte) (d3d11.PixelShader, error) {
	d.api.record("CreatePixelShader")
	if err := d.api.fail(OpCreatePixelShader); err != nil {
		return nil, err
	}
	return &PixelShader{Object: d.api.newObject("PixelShader"), Bytecode: append([]byte(nil), bytecode...)}, nil
}

// CreateInputLayout mimics the driver: the declared elements must cover the signature exactly.
func (d *Device) CreateInputLayout(elements []d3d11.InputElementDesc, bytecode []byte) (d3d11.InputLayout, error) {
	d.api.record("CreateInputLayout(%d)", len(elements))
	if err := d.api.fail(OpCreateInputLayout); err != nil {
		return nil, err
	}
	if sig, err := d3d11.ParseInputSignature(bytecode); err == nil {
		var size uint32
		for _, e := range elements {
			size += e.Format.ByteSize()
		}
		if size != sig.ByteSize() {
			return nil, &d3d11.Error{Op: OpCreateInputLayout, Code: d3d11.E_INVALIDARG}
		}
	}
	return &InputLayout{Object: d.api.newObject("InputLayout"), Elements: append([]d3d11.InputElementDesc(nil), elements...)}, nil
}

// DXGIDevice is a fake IDXGIDevice.
type DXGIDevice struct{ *Object }

func (d *DXGIDevice) Adapter() (d3d11.Adapter, error) {
	d.api.record("GetParent(IDXGIAdapter)")
	if err := d.api.fail(OpAdapter); err != nil {
		return nil, err
	}
	return &Adapter{Object: d.api.newObject("Adapter")}, nil
}

// Adapter is a fake IDXGIAdapter.
type Adapter struct{ *Object }

func (a *Adapter) Factory() (d3d11.Factory, error) {
	a.api.record("GetParent(IDXGIFactory)")
	if err := a.api.fail(OpFactory); err != nil {
		return nil, err
	}
	return &Factory{Object: a.api.newObject("Factory")}, nil
}

// Factory is a fake IDXGIFactory.
type Factory struct{ *Object }

func (f *Factory) CreateSwapChain(device d3d11.Device, desc *d3d11.SwapChainDesc) (d3d11.SwapChain, error) {
	f.api.record("CreateSwapChain(%dx%d, buffers=%d, %s)", desc.BufferDesc.Width, desc.BufferDesc.Height, desc.BufferCount, desc.SwapEffect)
	if err := f.api.fail(OpCreateSwapChain); err != nil {
		return nil, err
	}
	if desc.OutputWindow == 0 {
		return nil, &d3d11.Error{Op: OpCreateSwapChain, Code: d3d11.DXGI_ERROR_INVALID_CALL}
	}
	return &SwapChain{Object: f.api.newObject("SwapChain"), Desc: *desc}, nil
}

// SwapChain is a fake IDXGISwapChain.
type SwapChain struct {
	*Object
	Desc d3d11.SwapChainDesc
}

func (s *SwapChain) Present(syncInterval uint32, flags uint32) error {
	s.api.record("Present(%d)", syncInterval)
	s.api.Presents = append(s.api.Presents, syncInterval)
	return s.api.fail(OpPresent)
}

func (s *SwapChain) Buffer(index uint32) (d3d11.Texture2D, error) {
	s.api.record("GetBuffer(%d)", index)
	if err := s.api.fail(OpGetBuffer); err != nil {
		return nil, err
	}
	if index >= s.Desc.BufferCount {
		return nil, &d3d11.Error{Op: OpGetBuffer, Code: d3d11.DXGI_ERROR_INVALID_CALL}
	}
	return &Texture2D{Object: s.api.newObject("Texture2D"), Index: index}, nil
}

// Texture2D is a fake back buffer.
type Texture2D struct {
	*Object
	Index uint32
}

// RenderTargetView is a fake view over a back buffer.
type RenderTargetView struct {
	*Object
	BufferIndex uint32
}

// Buffer is a fake vertex buffer holding a copy of its initial data.
type Buffer struct {
	*Object
	Desc d3d11.BufferDesc
	Data []byte
}

// VertexShader is a fake vertex shader object.
type VertexShader struct {
	*Object
	Bytecode []byte
}

// PixelShader is a fake pixel shader object.
type PixelShader struct {
	*Object
	Bytecode []byte
}

// InputLayout is a fake input layout.
type InputLayout struct {
	*Object
	Elements []d3d11.InputElementDesc
}

// Context is a fake immediate context recording every command.
type Context struct {
	*Object
}

func kindOf(r d3d11.Releaser) string {
	switch v := r.(type) {
	case nil:
		return "nil"
	case interface{ kind() string }:
		return v.kind()
	}
	return fmt.Sprintf("%T", r)
}

func (o *Object) kind() string {
	return o.Kind
}

func (c *Context) RSSetViewports(viewports []d3d11.Viewport) {
	for _, v := range viewports {
		c.api.record("RSSetViewports(%gx%g)", v.Width, v.Height)
	}
}

func (c *Context) ClearRenderTargetView(view d3d11.RenderTargetView, color [4]float32) {
	c.api.record("ClearRenderTargetView(%s, %v)", kindOf(view), color)
}

func (c *Context) OMSetRenderTargets(views []d3d11.RenderTargetView) {
	c.api.record("OMSetRenderTargets(%d)", len(views))
}

func (c *Context) VSSetShader(shader d3d11.VertexShader) {
	c.api.record("VSSetShader(%s)", kindOf(shader))
}

func (c *Context) PSSetShader(shader d3d11.PixelShader) {
	c.api.record("PSSetShader(%s)", kindOf(shader))
}

func (c *Context) IASetInputLayout(layout d3d11.InputLayout) {
	c.api.record("IASetInputLayout(%s)", kindOf(layout))
}

func (c *Context) IASetVertexBuffers(startSlot uint32, buffers []d3d11.Buffer, strides, offsets []uint32) {
	n := d3d11.VertexBufferBindings(buffers, strides, offsets)
	c.api.record("IASetVertexBuffers(%d, %d, %v, %v)", startSlot, n, strides, offsets)
}

func (c *Context) IASetPrimitiveTopology(topology d3d11.PrimitiveTopology) {
	c.api.record("IASetPrimitiveTopology(%d)", topology)
}

func (c *Context) Draw(vertexCount, startVertex uint32) {
	c.api.record("Draw(%d, %d)", vertexCount, startVertex)
}

func (c *Context) ClearState() {
	c.api.record("ClearState")
}

func (c *Context) Flush() {
	c.api.record("Flush")
}
