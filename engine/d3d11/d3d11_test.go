package d3d11_test

import (
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-dx/engine/d3d11"
	"github.com/Carmen-Shannon/oxy-dx/engine/d3d11/d3d11test"
)

func TestParseInputSignature(t *testing.T) {
	want := d3d11.InputSignature{
		{SemanticName: "POSITION", ComponentType: d3d11.ComponentFloat32, Mask: 0x7, ReadWriteMask: 0x7},
		{SemanticName: "TEXCOORD", SemanticIndex: 1, ComponentType: d3d11.ComponentFloat32, Register: 1, Mask: 0x3, ReadWriteMask: 0x3},
		{SemanticName: "SV_VertexID", SystemValue: 6, ComponentType: 1, Register: 2, Mask: 0x1, ReadWriteMask: 0x1},
	}

	sig, err := d3d11.ParseInputSignature(d3d11test.EncodeDXBC(want))
	require.NoError(t, err)
	assert.Equal(t, want, sig)
	assert.Equal(t, uint32(20), sig.ByteSize(), "system values are not fed from vertex buffers")
	assert.Equal(t, []string{"POSITION0", "TEXCOORD1"}, sig.Semantics())
}

func TestParseInputSignaturePosition(t *testing.T) {
	sig, err := d3d11.ParseInputSignature(d3d11test.EncodeDXBC(d3d11test.PositionSignature))
	require.NoError(t, err)
	assert.Equal(t, d3d11.FormatR32G32B32Float.ByteSize(), sig.ByteSize())
}

func TestParseInputSignatureShaderModel51(t *testing.T) {
	want := d3d11.InputSignature{
		{SemanticName: "POSITION", ComponentType: d3d11.ComponentFloat32, Mask: 0xf, ReadWriteMask: 0xf},
		{SemanticName: "COLOR", SemanticIndex: 2, ComponentType: d3d11.ComponentFloat32, Register: 1, Mask: 0xf, ReadWriteMask: 0x7},
	}

	sig, err := d3d11.ParseInputSignature(d3d11test.EncodeDXBC1(want))
	require.NoError(t, err)
	assert.Equal(t, want, sig)
	assert.Equal(t, uint32(32), sig.ByteSize())
	assert.Equal(t, []string{"POSITION0", "COLOR2"}, sig.Semantics())
}

func TestParseInputSignatureErrors(t *testing.T) {
	valid := d3d11test.EncodeDXBC(d3d11test.PositionSignature)

	badMagic := append([]byte(nil), valid...)
	copy(badMagic, "DXBX")

	oversized := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(oversized[24:], uint32(len(valid)+1))

	// an ISG1 chunk claiming more 32 byte elements than it holds
	truncatedISG1 := d3d11test.EncodeDXBC1(d3d11test.PositionSignature)
	binary.LittleEndian.PutUint32(truncatedISG1[44:], 2)

	tests := []struct {
		name     string
		bytecode []byte
		want     error
	}{
		{name: "empty", bytecode: nil, want: d3d11.ErrMalformedBytecode},
		{name: "bad magic", bytecode: badMagic, want: d3d11.ErrMalformedBytecode},
		{name: "truncated", bytecode: valid[:len(valid)-8], want: d3d11.ErrMalformedBytecode},
		{name: "size beyond blob", bytecode: oversized, want: d3d11.ErrMalformedBytecode},
		{name: "no signature chunk", bytecode: d3d11test.EncodeDXBC(nil), want: d3d11.ErrNoInputSignature},
		{name: "ISG1 elements beyond chunk", bytecode: truncatedISG1, want: d3d11.ErrMalformedBytecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d3d11.ParseInputSignature(tt.bytecode)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSemanticKey(t *testing.T) {
	assert.Equal(t, "POSITION0", d3d11.SemanticKey("position", 0))
	assert.Equal(t, "TEXCOORD3", d3d11.SemanticKey("TexCoord", 3))
}

func TestErrorFormatting(t *testing.T) {
	err := &d3d11.Error{Op: "D3D11CreateDevice", Code: d3d11.DXGI_ERROR_UNSUPPORTED, Description: "The specified device interface is not supported."}
	assert.Equal(t, "D3D11CreateDevice: DXGI_ERROR_UNSUPPORTED (0x887A0004): The specified device interface is not supported.", err.Error())

	assert.Equal(t, "HRESULT 0x80001234", d3d11.HRESULT(0x80001234).String())
	assert.True(t, d3d11.E_FAIL.Failed())
	assert.False(t, d3d11.S_OK.Failed())
	assert.False(t, d3d11.DXGI_STATUS_OCCLUDED.Failed())
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("present: %w", &d3d11.Error{Op: "IDXGISwapChain::Present", Code: d3d11.DXGI_ERROR_INVALID_CALL})

	assert.ErrorIs(t, err, d3d11.CodeError(d3d11.DXGI_ERROR_INVALID_CALL))
	assert.NotErrorIs(t, err, d3d11.CodeError(d3d11.E_FAIL))
	assert.NotErrorIs(t, err, &d3d11.Error{Op: "other", Code: d3d11.DXGI_ERROR_INVALID_CALL})
}

func TestIsDeviceLost(t *testing.T) {
	tests := []struct {
		err  error
		lost bool
	}{
		{err: &d3d11.Error{Code: d3d11.DXGI_ERROR_DEVICE_REMOVED}, lost: true},
		{err: fmt.Errorf("present: %w", &d3d11.Error{Code: d3d11.DXGI_ERROR_DEVICE_RESET}), lost: true},
		{err: &d3d11.Error{Code: d3d11.DXGI_ERROR_DEVICE_HUNG}, lost: true},
		{err: &d3d11.Error{Code: d3d11.E_OUTOFMEMORY}, lost: false},
		{err: errors.New("not a driver error"), lost: false},
		{err: nil, lost: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.lost, d3d11.IsDeviceLost(tt.err), "%v", tt.err)
	}
}

func TestCompileError(t *testing.T) {
	cause := &d3d11.Error{Op: "D3DCompileFromFile", Code: d3d11.E_FAIL}
	err := &d3d11.CompileError{
		Path: "shader.fx", EntryPoint: "psmain", Target: "ps_5_0",
		Diagnostics: "shader.fx(14,1): error X3000: syntax error: unexpected end of file\n",
		Err:         cause,
	}
	assert.Equal(t, "compile shader.fx (psmain, ps_5_0): shader.fx(14,1): error X3000: syntax error: unexpected end of file", err.Error())
	assert.ErrorIs(t, err, d3d11.CodeError(d3d11.E_FAIL))

	missing := &d3d11.CompileError{
		Path: "missing.fx", EntryPoint: "vsmain", Target: "vs_5_0",
		Err: &d3d11.Error{Op: "D3DCompileFromFile", Code: d3d11.E_FILE_NOT_FOUND},
	}
	assert.Contains(t, missing.Error(), "ERROR_FILE_NOT_FOUND")
}

func TestDriverTypeText(t *testing.T) {
	for _, driver := range []d3d11.DriverType{d3d11.DriverTypeHardware, d3d11.DriverTypeWARP, d3d11.DriverTypeReference, d3d11.DriverTypeSoftware, d3d11.DriverTypeNull} {
		text, err := driver.MarshalText()
		require.NoError(t, err)

		var back d3d11.DriverType
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, driver, back)
	}

	var d d3d11.DriverType
	require.NoError(t, d.UnmarshalText([]byte(" WARP ")))
	assert.Equal(t, d3d11.DriverTypeWARP, d)
	assert.Error(t, d.UnmarshalText([]byte("gpu")))

	_, err := d3d11.DriverType(99).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "DriverType(99)", d3d11.DriverType(99).String())
}

func TestFeatureLevelText(t *testing.T) {
	assert.Equal(t, "11_0", d3d11.FeatureLevel11_0.String())
	assert.Equal(t, "10_1", d3d11.FeatureLevel10_1.String())

	var level d3d11.FeatureLevel
	require.NoError(t, level.UnmarshalText([]byte("11.1")))
	assert.Equal(t, d3d11.FeatureLevel11_1, level)
	assert.Error(t, level.UnmarshalText([]byte("12_0")))
	assert.Error(t, level.UnmarshalText([]byte("eleven")))
}

func TestSwapEffect(t *testing.T) {
	assert.True(t, d3d11.SwapEffectFlipSequential.IsFlip())
	assert.True(t, d3d11.SwapEffectFlipDiscard.IsFlip())
	assert.False(t, d3d11.SwapEffectDiscard.IsFlip())

	var effect d3d11.SwapEffect
	require.NoError(t, effect.UnmarshalText([]byte("flip_discard")))
	assert.Equal(t, d3d11.SwapEffectFlipDiscard, effect)
	assert.Error(t, effect.UnmarshalText([]byte("flip")))
}

func TestFormatByteSize(t *testing.T) {
	assert.Equal(t, uint32(12), d3d11.FormatR32G32B32Float.ByteSize())
	assert.Equal(t, uint32(4), d3d11.FormatR8G8B8A8UNorm.ByteSize())
	assert.Equal(t, uint32(16), d3d11.FormatR32G32B32A32Float.ByteSize())
	assert.Zero(t, d3d11.Format(0).ByteSize())
}

func TestVertexBufferBindings(t *testing.T) {
	buffers := []d3d11.Buffer{nil, nil}

	assert.Equal(t, 2, d3d11.VertexBufferBindings(buffers, []uint32{12, 16}, []uint32{0, 0}))
	assert.Equal(t, 0, d3d11.VertexBufferBindings(nil, nil, nil))
	assert.PanicsWithValue(t, "d3d11: IASetVertexBuffers: 2 buffers with 1 strides and 2 offsets", func() {
		d3d11.VertexBufferBindings(buffers, []uint32{12}, []uint32{0, 0})
	})
	assert.Panics(t, func() {
		d3d11.VertexBufferBindings(buffers, []uint32{12, 16}, nil)
	})
}

func TestFakeContextRejectsShortVertexBufferArgs(t *testing.T) {
	api := d3d11test.New()
	_, ctx, _, err := api.CreateDevice(d3d11.DriverTypeHardware, 0, d3d11.DefaultFeatureLevels)
	require.NoError(t, err)

	assert.Panics(t, func() {
		ctx.IASetVertexBuffers(0, []d3d11.Buffer{nil}, nil, []uint32{0})
	})
	assert.Empty(t, api.CallsMatching("IASetVertexBuffers"))
}
