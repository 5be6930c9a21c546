package geometry

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-dx/common"
	"github.com/Carmen-Shannon/oxy-dx/engine/d3d11"
	"github.com/Carmen-Shannon/oxy-dx/engine/d3d11/d3d11test"
	"github.com/Carmen-Shannon/oxy-dx/engine/renderer/shader"
)

func newDevice(t *testing.T) (*d3d11test.API, d3d11.Device) {
	t.Helper()
	api := d3d11test.New()
	dev, _, _, err := api.CreateDevice(d3d11.DriverTypeHardware, 0, d3d11.DefaultFeatureLevels)
	require.NoError(t, err)
	return api, dev
}

func compileVS(t *testing.T, api *d3d11test.API, dev d3d11.Device) shader.VertexShader {
	t.Helper()
	s, err := shader.CompileFile(api, dev, "shader.fx", "vsmain", "vs_5_0", shader.DefaultCompileFlags)
	require.NoError(t, err)
	vs, ok := s.(shader.VertexShader)
	require.True(t, ok)
	return vs
}

func TestNewBuffer(t *testing.T) {
	api, dev := newDevice(t)

	buf, err := NewBuffer(dev, common.TriangleVertices)
	require.NoError(t, err)
	assert.Equal(t, uint32(12), buf.Stride())
	assert.Equal(t, uint32(3), buf.Count())
	assert.Equal(t, uint32(36), buf.ByteWidth())

	native, ok := buf.Native().(*d3d11test.Buffer)
	require.True(t, ok)
	assert.Equal(t, d3d11.BufferDesc{
		ByteWidth: 36,
		Usage:     d3d11.UsageImmutable,
		BindFlags: d3d11.BindVertexBuffer,
	}, native.Desc)

	require.Len(t, native.Data, 36)
	first := math.Float32frombits(binary.LittleEndian.Uint32(native.Data[0:4]))
	topY := math.Float32frombits(binary.LittleEndian.Uint32(native.Data[16:20]))
	assert.Equal(t, float32(-0.5), first)
	assert.Equal(t, float32(0.5), topY)

	buf.Release()
	buf.Release()
	assert.Nil(t, buf.Native())
	assert.True(t, native.Released)
	assert.Equal(t, []string{"CreateBuffer(36)"}, api.CallsMatching("CreateBuffer"))
}

func TestNewBufferRejectsEmpty(t *testing.T) {
	api, dev := newDevice(t)

	_, err := NewBuffer(dev, nil)
	assert.ErrorIs(t, err, ErrNoVertices)
	assert.Empty(t, api.CallsMatching("CreateBuffer"))
}

func TestNewBufferDriverFailure(t *testing.T) {
	api, dev := newDevice(t)
	api.Fail[d3d11test.OpCreateBuffer] = d3d11.E_OUTOFMEMORY

	_, err := NewBuffer(dev, common.TriangleVertices)
	assert.ErrorIs(t, err, d3d11.CodeError(d3d11.E_OUTOFMEMORY))
}

func TestNewInputLayoutPosition(t *testing.T) {
	api, dev := newDevice(t)
	vs := compileVS(t, api, dev)

	layout, err := NewInputLayout(dev, vs, PositionLayout)
	require.NoError(t, err)
	assert.Equal(t, uint32(12), layout.Stride())
	assert.Equal(t, PositionLayout, layout.Elements())
	assert.NotNil(t, layout.Native())

	layout.Release()
	assert.Nil(t, layout.Native())
}

func TestNewInputLayoutSizeMismatch(t *testing.T) {
	tests := []struct {
		name      string
		signature d3d11.InputSignature
		elements  []d3d11.InputElementDesc
		declared  uint32
		expected  uint32
		missing   []string
	}{
		{
			name: "shader expects float4",
			signature: d3d11.InputSignature{
				{SemanticName: "POSITION", ComponentType: d3d11.ComponentFloat32, Mask: 0xf},
			},
			elements: PositionLayout,
			declared: 12,
			expected: 16,
		},
		{
			name:      "layout declares float2",
			signature: d3d11test.PositionSignature,
			elements: []d3d11.InputElementDesc{
				{SemanticName: "POSITION", Format: d3d11.FormatR32G32Float},
			},
			declared: 8,
			expected: 12,
		},
		{
			name: "shader also reads color",
			signature: d3d11.InputSignature{
				{SemanticName: "POSITION", ComponentType: d3d11.ComponentFloat32, Mask: 0x7},
				{SemanticName: "COLOR", ComponentType: d3d11.ComponentFloat32, Mask: 0xf, Register: 1},
			},
			elements: PositionLayout,
			declared: 12,
			expected: 28,
			missing:  []string{"COLOR0"},
		},
		{
			name:      "same size wrong semantic",
			signature: d3d11test.PositionSignature,
			elements: []d3d11.InputElementDesc{
				{SemanticName: "NORMAL", Format: d3d11.FormatR32G32B32Float},
			},
			declared: 12,
			expected: 12,
			missing:  []string{"POSITION0"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, dev := newDevice(t)
			api.Signatures["vsmain"] = tt.signature
			vs := compileVS(t, api, dev)

			_, err := NewInputLayout(dev, vs, tt.elements)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrLayoutMismatch)

			var mismatch *LayoutMismatchError
			require.True(t, errors.As(err, &mismatch))
			assert.Equal(t, "vsmain", mismatch.EntryPoint)
			assert.Equal(t, tt.declared, mismatch.Declared)
			assert.Equal(t, tt.expected, mismatch.Expected)
			assert.Equal(t, tt.missing, mismatch.Missing)
			assert.Empty(t, api.CallsMatching("CreateInputLayout"), "mismatch must be caught before the driver call")
		})
	}
}

func TestNewInputLayoutValidatesShaderModel51Signature(t *testing.T) {
	api, dev := newDevice(t)
	api.Bytecode["vsmain"] = d3d11test.EncodeDXBC1(d3d11.InputSignature{
		{SemanticName: "POSITION", ComponentType: d3d11.ComponentFloat32, Mask: 0xf, ReadWriteMask: 0xf},
		{SemanticName: "COLOR", ComponentType: d3d11.ComponentFloat32, Register: 1, Mask: 0xf, ReadWriteMask: 0xf},
	})
	s, err := shader.CompileFile(api, dev, "shader.fx", "vsmain", "vs_5_1", shader.DefaultCompileFlags)
	require.NoError(t, err)
	vs, ok := s.(shader.VertexShader)
	require.True(t, ok)

	_, err = NewInputLayout(dev, vs, PositionLayout)
	require.Error(t, err)

	var mismatch *LayoutMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, uint32(12), mismatch.Declared)
	assert.Equal(t, uint32(32), mismatch.Expected)
	assert.Equal(t, []string{"COLOR0"}, mismatch.Missing)
	assert.Empty(t, api.CallsMatching("CreateInputLayout"))
}

func TestNewInputLayoutWithoutSignatureDefersToDriver(t *testing.T) {
	api, dev := newDevice(t)
	api.Signatures["vsmain"] = nil
	vs := compileVS(t, api, dev)
	require.Nil(t, vs.InputSignature())

	layout, err := NewInputLayout(dev, vs, PositionLayout)
	require.NoError(t, err)
	assert.NotNil(t, layout.Native())
	assert.Len(t, api.CallsMatching("CreateInputLayout"), 1)
}

func TestNewInputLayoutDriverFailure(t *testing.T) {
	api, dev := newDevice(t)
	vs := compileVS(t, api, dev)
	api.Fail[d3d11test.OpCreateInputLayout] = d3d11.E_INVALIDARG

	_, err := NewInputLayout(dev, vs, PositionLayout)
	require.Error(t, err)
	assert.ErrorIs(t, err, d3d11.CodeError(d3d11.E_INVALIDARG))
	assert.NotErrorIs(t, err, ErrLayoutMismatch)
}

func TestNewInputLayoutRejectsEmpty(t *testing.T) {
	api, dev := newDevice(t)
	vs := compileVS(t, api, dev)

	_, err := NewInputLayout(dev, vs, nil)
	assert.ErrorIs(t, err, ErrLayoutMismatch)
}

func TestLayoutMismatchErrorMessage(t *testing.T) {
	err := &LayoutMismatchError{EntryPoint: "vsmain", Declared: 12, Expected: 28, Missing: []string{"COLOR0"}}
	assert.Equal(t, "input layout for vsmain: declared 12 bytes per vertex, shader expects 28; missing semantics COLOR0", err.Error())
}
