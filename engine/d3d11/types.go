// Package d3d11 is the boundary between the engine and the Direct3D11/DXGI driver API.
// It declares the subset of the native contract the engine uses as plain Go types and
// interfaces, and carries a Windows implementation that talks to the COM objects directly.
package d3d11

import (
	"fmt"
	"strings"
)

// DriverType selects the driver tier used when creating a device.
// Values match D3D_DRIVER_TYPE.
type DriverType uint32

const (
	// DriverTypeUnknown lets the runtime pick the driver from an explicit adapter.
	DriverTypeUnknown DriverType = 0

	// DriverTypeHardware uses the GPU vendor driver.
	DriverTypeHardware DriverType = 1

	// DriverTypeReference uses the reference rasterizer (debug layer SDK required).
	DriverTypeReference DriverType = 2

	// DriverTypeNull creates a device that cannot render, used for API validation only.
	DriverTypeNull DriverType = 3

	// DriverTypeSoftware uses a user supplied software rasterizer module.
	DriverTypeSoftware DriverType = 4

	// DriverTypeWARP uses the Windows Advanced Rasterization Platform, a fast software rasterizer.
	DriverTypeWARP DriverType = 5
)

// DefaultDriverTypes is the fixed preference order used when no other order is configured.
var DefaultDriverTypes = []DriverType{DriverTypeHardware, DriverTypeWARP, DriverTypeReference}

var driverTypeNames = map[DriverType]string{
	DriverTypeUnknown:   "unknown",
	DriverTypeHardware:  "hardware",
	DriverTypeReference: "reference",
	DriverTypeNull:      "null",
	DriverTypeSoftware:  "software",
	DriverTypeWARP:      "warp",
}

func (d DriverType) String() string {
	if name, ok := driverTypeNames[d]; ok {
		return name
	}
	return fmt.Sprintf("DriverType(%d)", uint32(d))
}

// MarshalText implements encoding.TextMarshaler.
func (d DriverType) MarshalText() ([]byte, error) {
	if _, ok := driverTypeNames[d]; !ok {
		return nil, fmt.Errorf("d3d11: unknown driver type %d", uint32(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Names are matched case-insensitively.
func (d *DriverType) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for k, v := range driverTypeNames {
		if v == name {
			*d = k
			return nil
		}
	}
	return fmt.Errorf("d3d11: unknown driver type %q", string(text))
}

// FeatureLevel is a D3D_FEATURE_LEVEL value.
type FeatureLevel uint32

const (
	FeatureLevel10_0 FeatureLevel = 0xa000
	FeatureLevel10_1 FeatureLevel = 0xa100
	FeatureLevel11_0 FeatureLevel = 0xb000
	FeatureLevel11_1 FeatureLevel = 0xb100
)

// DefaultFeatureLevels is the minimum feature level requirement used by the engine.
var DefaultFeatureLevels = []FeatureLevel{FeatureLevel11_0}

func (f FeatureLevel) String() string {
	return fmt.Sprintf("%d_%d", uint32(f)>>12, (uint32(f)>>8)&0xf)
}

// MarshalText implements encoding.TextMarshaler using the "11_0" form.
func (f FeatureLevel) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, accepting "11_0" or "11.0".
func (f *FeatureLevel) UnmarshalText(text []byte) error {
	var major, minor uint32
	s := strings.ReplaceAll(strings.TrimSpace(string(text)), ".", "_")
	if _, err := fmt.Sscanf(s, "%d_%d", &major, &minor); err != nil {
		return fmt.Errorf("d3d11: invalid feature level %q: %w", string(text), err)
	}
	level := FeatureLevel(major<<12 | minor<<8)
	switch level {
	case FeatureLevel10_0, FeatureLevel10_1, FeatureLevel11_0, FeatureLevel11_1:
		*f = level
		return nil
	}
	return fmt.Errorf("d3d11: unsupported feature level %q", string(text))
}

// CreateDeviceFlag is a D3D11_CREATE_DEVICE_FLAG bit set.
type CreateDeviceFlag uint32

const (
	CreateDeviceSingleThreaded CreateDeviceFlag = 0x1
	CreateDeviceDebug          CreateDeviceFlag = 0x2
)

// CompileFlag is a D3DCOMPILE_* bit set passed as Flags1 to the shader compiler.
type CompileFlag uint32

const (
	CompileDebug             CompileFlag = 1 << 0
	CompileSkipOptimization  CompileFlag = 1 << 2
	CompileWarningsAreErrors CompileFlag = 1 << 18
)

// Format is a DXGI_FORMAT value.
type Format uint32

const (
	FormatUnknown           Format = 0
	FormatR32G32B32A32Float Format = 2
	FormatR32G32B32Float    Format = 6
	FormatR32G32Float       Format = 16
	FormatR8G8B8A8UNorm     Format = 28
	FormatR32Float          Format = 41
)

// ByteSize returns the size in bytes of one element of the format, or 0 if unknown.
func (f Format) ByteSize() uint32 {
	switch f {
	case FormatR32G32B32A32Float:
		return 16
	case FormatR32G32B32Float:
		return 12
	case FormatR32G32Float:
		return 8
	case FormatR8G8B8A8UNorm, FormatR32Float:
		return 4
	}
	return 0
}

// SwapEffect is a DXGI_SWAP_EFFECT value.
type SwapEffect uint32

const (
	SwapEffectDiscard        SwapEffect = 0
	SwapEffectSequential     SwapEffect = 1
	SwapEffectFlipSequential SwapEffect = 3
	SwapEffectFlipDiscard    SwapEffect = 4
)

var swapEffectNames = map[SwapEffect]string{
	SwapEffectDiscard:        "discard",
	SwapEffectSequential:     "sequential",
	SwapEffectFlipSequential: "flip_sequential",
	SwapEffectFlipDiscard:    "flip_discard",
}

func (s SwapEffect) String() string {
	if name, ok := swapEffectNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SwapEffect(%d)", uint32(s))
}

// IsFlip reports whether the effect uses the flip presentation model, which needs at least two buffers.
func (s SwapEffect) IsFlip() bool {
	return s == SwapEffectFlipSequential || s == SwapEffectFlipDiscard
}

// MarshalText implements encoding.TextMarshaler.
func (s SwapEffect) MarshalText() ([]byte, error) {
	if _, ok := swapEffectNames[s]; !ok {
		return nil, fmt.Errorf("d3d11: unknown swap effect %d", uint32(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SwapEffect) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for k, v := range swapEffectNames {
		if v == name {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("d3d11: unknown swap effect %q", string(text))
}

// PrimitiveTopology is a D3D11_PRIMITIVE_TOPOLOGY value.
type PrimitiveTopology uint32

const (
	PrimitiveTopologyPointList     PrimitiveTopology = 1
	PrimitiveTopologyLineList      PrimitiveTopology = 2
	PrimitiveTopologyTriangleList  PrimitiveTopology = 4
	PrimitiveTopologyTriangleStrip PrimitiveTopology = 5
)

// Usage is a D3D11_USAGE value.
type Usage uint32

const (
	UsageDefault   Usage = 0
	UsageImmutable Usage = 1
	UsageDynamic   Usage = 2
	UsageStaging   Usage = 3
)

// BindFlag is a D3D11_BIND_FLAG bit set.
type BindFlag uint32

const (
	BindVertexBuffer   BindFlag = 0x1
	BindIndexBuffer    BindFlag = 0x2
	BindConstantBuffer BindFlag = 0x4
	BindRenderTarget   BindFlag = 0x20
)

// InputClassification is a D3D11_INPUT_CLASSIFICATION value.
type InputClassification uint32

const (
	InputPerVertexData   InputClassification = 0
	InputPerInstanceData InputClassification = 1
)

// UsageRenderTargetOutput is the DXGI_USAGE_RENDER_TARGET_OUTPUT buffer usage.
const UsageRenderTargetOutput uint32 = 0x20

// Rational mirrors DXGI_RATIONAL.
type Rational struct {
	Numerator   uint32
	Denominator uint32
}

// ModeDesc mirrors DXGI_MODE_DESC.
type ModeDesc struct {
	Width            uint32
	Height           uint32
	RefreshRate      Rational
	Format           Format
	ScanlineOrdering uint32
	Scaling          uint32
}

// SampleDesc mirrors DXGI_SAMPLE_DESC.
type SampleDesc struct {
	Count   uint32
	Quality uint32
}

// SwapChainDesc mirrors DXGI_SWAP_CHAIN_DESC.
// OutputWindow carries the native window handle (HWND).
type SwapChainDesc struct {
	BufferDesc   ModeDesc
	SampleDesc   SampleDesc
	BufferUsage  uint32
	BufferCount  uint32
	OutputWindow uintptr
	Windowed     bool
	SwapEffect   SwapEffect
	Flags        uint32
}

// BufferDesc mirrors D3D11_BUFFER_DESC.
type BufferDesc struct {
	ByteWidth           uint32
	Usage               Usage
	BindFlags           BindFlag
	CPUAccessFlags      uint32
	MiscFlags           uint32
	StructureByteStride uint32
}

// InputElementDesc mirrors D3D11_INPUT_ELEMENT_DESC.
type InputElementDesc struct {
	SemanticName         string
	SemanticIndex        uint32
	Format               Format
	InputSlot            uint32
	AlignedByteOffset    uint32
	InputSlotClass       InputClassification
	InstanceDataStepRate uint32
}

// Viewport mirrors D3D11_VIEWPORT.
type Viewport struct {
	TopLeftX float32
	TopLeftY float32
	Width    float32
	Height   float32
	MinDepth float32
	MaxDepth float32
}
