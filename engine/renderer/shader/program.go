package shader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-dx/engine/d3d11"
)

// ProgramSource names the source file and entry points of a vertex and pixel shader pair.
type ProgramSource struct {
	// Path is the HLSL file holding both entry points.
	Path string

	VertexEntry  string
	VertexTarget string
	PixelEntry   string
	PixelTarget  string
}

// DefaultProgramSource is the shader.fx pair compiled by the engine out of the box.
var DefaultProgramSource = ProgramSource{
	Path:         "shader.fx",
	VertexEntry:  "vsmain",
	VertexTarget: "vs_5_0",
	PixelEntry:   "psmain",
	PixelTarget:  "ps_5_0",
}

// Program is a vertex and pixel shader pair bound together for drawing.
type Program struct {
	Vertex VertexShader
	Pixel  PixelShader
}

// CompileProgram compiles the vertex and then the pixel stage described by src.
// If the pixel stage fails the already compiled vertex stage is released.
//
// Parameters:
//   - api: the driver API providing the compiler
//   - device: the device the stage objects are created on
//   - src: the source file and entry points
//   - flags: compiler flags
//
// Returns:
//   - *Program: the compiled pair
//   - error: the first compilation or creation failure
func CompileProgram(api d3d11.API, device d3d11.Device, src ProgramSource, flags d3d11.CompileFlag) (*Program, error) {
	vs, err := CompileFile(api, device, src.Path, src.VertexEntry, src.VertexTarget, flags)
	if err != nil {
		return nil, err
	}
	vertex, ok := vs.(VertexShader)
	if !ok {
		vs.Release()
		return nil, fmt.Errorf("%w: %q is not a vertex profile", ErrUnsupportedTarget, src.VertexTarget)
	}

	ps, err := CompileFile(api, device, src.Path, src.PixelEntry, src.PixelTarget, flags)
	if err != nil {
		vertex.Release()
		return nil, err
	}
	pixel, ok := ps.(PixelShader)
	if !ok {
		ps.Release()
		vertex.Release()
		return nil, fmt.Errorf("%w: %q is not a pixel profile", ErrUnsupportedTarget, src.PixelTarget)
	}

	return &Program{Vertex: vertex, Pixel: pixel}, nil
}

// Release releases the pixel stage and then the vertex stage. Safe to call more than once.
func (p *Program) Release() {
	if p == nil {
		return
	}
	if p.Pixel != nil {
		p.Pixel.Release()
	}
	if p.Vertex != nil {
		p.Vertex.Release()
	}
}
