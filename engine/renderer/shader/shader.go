package shader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-dx/engine/d3d11"
)

// Stage identifies the pipeline stage a shader runs in.
type Stage int

const (
	// StageVertex is the vertex shader stage, compiled against a vs_* profile.
	StageVertex Stage = iota

	// StagePixel is the pixel shader stage, compiled against a ps_* profile.
	StagePixel
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StagePixel:
		return "pixel"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// DefaultCompileFlags requests debug information and treats compiler warnings as errors.
const DefaultCompileFlags = d3d11.CompileDebug | d3d11.CompileWarningsAreErrors

// ErrUnsupportedTarget is returned for targets that are neither vs_* nor ps_* profiles.
var ErrUnsupportedTarget = errors.New("shader: unsupported target profile")

// StageOf derives the pipeline stage from a shader model target such as "vs_5_0".
//
// Parameters:
//   - target: the shader model target profile
//
// Returns:
//   - Stage: the stage the target compiles for
//   - error: ErrUnsupportedTarget if the prefix is not recognised
func StageOf(target string) (Stage, error) {
	switch {
	case strings.HasPrefix(target, "vs_"):
		return StageVertex, nil
	case strings.HasPrefix(target, "ps_"):
		return StagePixel, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedTarget, target)
}

// shader is the implementation of the Shader interface.
// It holds the compiled bytecode and the stage object created from it.
type shader struct {
	stage      Stage
	path       string
	entryPoint string
	target     string
	bytecode   []byte

	vertex d3d11.VertexShader
	pixel  d3d11.PixelShader

	signature d3d11.InputSignature
}

// Shader is one compiled, immutable pipeline stage.
type Shader interface {
	// Stage returns the pipeline stage the shader was compiled for.
	//
	// Returns:
	//   - Stage: StageVertex or StagePixel
	Stage() Stage

	// Path returns the source file the shader was compiled from.
	//
	// Returns:
	//   - string: the source path
	Path() string

	// EntryPoint returns the function name compilation started at (e.g. "vsmain").
	//
	// Returns:
	//   - string: the entry point name
	EntryPoint() string

	// Target returns the shader model profile (e.g. "vs_5_0").
	//
	// Returns:
	//   - string: the target profile
	Target() string

	// Bytecode returns the compiled DXBC blob. Callers must not modify it.
	//
	// Returns:
	//   - []byte: the bytecode
	Bytecode() []byte

	// Release releases the native stage object. Safe to call more than once.
	Release()
}

// VertexShader is a Shader compiled for the vertex stage.
type VertexShader interface {
	Shader

	// Native returns the driver vertex shader object for binding.
	//
	// Returns:
	//   - d3d11.VertexShader: the native object, nil after Release
	Native() d3d11.VertexShader

	// InputSignature returns the inputs the shader expects from the input assembler.
	// It is nil when the bytecode carries no readable signature.
	//
	// Returns:
	//   - d3d11.InputSignature: the parsed signature
	InputSignature() d3d11.InputSignature
}

// PixelShader is a Shader compiled for the pixel stage.
type PixelShader interface {
	Shader

	// Native returns the driver pixel shader object for binding.
	//
	// Returns:
	//   - d3d11.PixelShader: the native object, nil after Release
	Native() d3d11.PixelShader
}

type vertexShader struct{ *shader }

type pixelShader struct{ *shader }

var (
	_ VertexShader = vertexShader{}
	_ PixelShader  = pixelShader{}
)

// CompileFile compiles entryPoint of the source file at path for target and creates the stage object.
// The returned value is a VertexShader or a PixelShader depending on the target prefix.
// On compiler failure the returned error is a *d3d11.CompileError whose text carries the
// compiler's own diagnostic when it supplied one.
//
// Parameters:
//   - api: the driver API providing the compiler
//   - device: the device the stage object is created on
//   - path: the HLSL source file
//   - entryPoint: the function to compile
//   - target: the shader model profile, "vs_*" or "ps_*"
//   - flags: compiler flags, usually DefaultCompileFlags
//
// Returns:
//   - Shader: the compiled shader
//   - error: error if the target is unsupported, compilation fails or the stage object cannot be created
func CompileFile(api d3d11.API, device d3d11.Device, path, entryPoint, target string, flags d3d11.CompileFlag) (Shader, error) {
	stage, err := StageOf(target)
	if err != nil {
		return nil, err
	}

	blob, err := api.CompileFromFile(path, entryPoint, target, flags)
	if err != nil {
		return nil, err
	}
	// the blob is owned by the compiler; keep a private copy so it can be released right away
	bytecode := append([]byte(nil), blob.Bytes()...)
	blob.Release()

	s := &shader{
		stage:      stage,
		path:       path,
		entryPoint: entryPoint,
		target:     target,
		bytecode:   bytecode,
	}

	switch stage {
	case StageVertex:
		vs, err := device.CreateVertexShader(bytecode)
		if err != nil {
			return nil, fmt.Errorf("create vertex shader %s:%s: %w", path, entryPoint, err)
		}
		s.vertex = vs
		sig, err := d3d11.ParseInputSignature(bytecode)
		switch {
		case errors.Is(err, d3d11.ErrNoInputSignature):
			// nothing to pre-validate against; CreateInputLayout is left to the driver
		case err != nil:
			vs.Release()
			s.vertex = nil
			return nil, fmt.Errorf("read input signature %s:%s: %w", path, entryPoint, err)
		default:
			s.signature = sig
		}
		return vertexShader{s}, nil
	default:
		ps, err := device.CreatePixelShader(bytecode)
		if err != nil {
			return nil, fmt.Errorf("create pixel shader %s:%s: %w", path, entryPoint, err)
		}
		s.pixel = ps
		return pixelShader{s}, nil
	}
}

func (s *shader) Stage() Stage {
	return s.stage
}

func (s *shader) Path() string {
	return s.path
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) Target() string {
	return s.target
}

func (s *shader) Bytecode() []byte {
	return s.bytecode
}

func (s *shader) Release() {
	if s.vertex != nil {
		s.vertex.Release()
		s.vertex = nil
	}
	if s.pixel != nil {
		s.pixel.Release()
		s.pixel = nil
	}
}

func (v vertexShader) Native() d3d11.VertexShader {
	return v.vertex
}

func (v vertexShader) InputSignature() d3d11.InputSignature {
	return v.signature
}

func (p pixelShader) Native() d3d11.PixelShader {
	return p.pixel
}
