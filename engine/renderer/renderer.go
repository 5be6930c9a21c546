package renderer

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-dx/common"
	"github.com/Carmen-Shannon/oxy-dx/engine/d3d11"
	"github.com/Carmen-Shannon/oxy-dx/engine/renderer/geometry"
	"github.com/Carmen-Shannon/oxy-dx/engine/renderer/shader"
)

// ErrIncompleteFrame is returned by Draw when a Frame is missing one of its resources.
var ErrIncompleteFrame = errors.New("renderer: frame is missing a resource")

// renderer is the implementation of the Renderer interface.
// It holds no GPU state of its own; every call goes straight to the immediate context.
type renderer struct {
	ctx    d3d11.DeviceContext
	logger logrus.FieldLogger
}

// Renderer issues the per-frame command sequence against the immediate context.
//
// The setters are thin and order-independent. Nothing is cached between calls, so every frame
// re-issues every binding unconditionally.
type Renderer interface {
	// SetViewport binds a single viewport covering width x height pixels with depth range [0, 1].
	//
	// Parameters:
	//   - width: the viewport width in pixels
	//   - height: the viewport height in pixels
	SetViewport(width, height int)

	// Clear fills target with color.
	//
	// Parameters:
	//   - target: the render-target view to clear
	//   - color: the RGBA clear color
	Clear(target d3d11.RenderTargetView, color common.Color)

	// SetRenderTarget binds target as the only output-merger render target.
	//
	// Parameters:
	//   - target: the render-target view to draw into
	SetRenderTarget(target d3d11.RenderTargetView)

	// SetShaders binds the vertex and pixel stages.
	//
	// Parameters:
	//   - vs: the vertex shader
	//   - ps: the pixel shader
	SetShaders(vs shader.VertexShader, ps shader.PixelShader)

	// SetVertexBuffer binds buffer to input slot 0 with offset 0 and binds layout to the input assembler.
	//
	// Parameters:
	//   - buffer: the vertex buffer
	//   - layout: the input layout matching the bound vertex shader
	SetVertexBuffer(buffer geometry.Buffer, layout geometry.InputLayout)

	// DrawTriangleList sets the triangle-list topology and then issues one non-indexed draw.
	//
	// Parameters:
	//   - vertexCount: the number of vertices to draw
	//   - startVertex: the index of the first vertex
	DrawTriangleList(vertexCount, startVertex uint32)

	// Draw issues the complete command sequence for f: viewport, clear, render target,
	// shaders, vertex buffer and layout, then the triangle-list draw.
	//
	// Parameters:
	//   - f: the resources and parameters of the frame
	//
	// Returns:
	//   - error: ErrIncompleteFrame if f lacks a resource, in which case nothing is issued
	Draw(f Frame) error
}

// Frame groups everything one frame draws with.
type Frame struct {
	Target     d3d11.RenderTargetView
	Width      int
	Height     int
	ClearColor common.Color
	Program    *shader.Program
	Buffer     geometry.Buffer
	Layout     geometry.InputLayout

	// VertexCount is the number of vertices drawn; zero draws the whole buffer.
	VertexCount uint32
	StartVertex uint32
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer recording into ctx.
//
// Parameters:
//   - ctx: the immediate device context
//   - options: functional options applied in order
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(ctx d3d11.DeviceContext, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		ctx:    ctx,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer) SetViewport(width, height int) {
	r.ctx.RSSetViewports([]d3d11.Viewport{{
		Width:    float32(width),
		Height:   float32(height),
		MinDepth: 0,
		MaxDepth: 1,
	}})
}

func (r *renderer) Clear(target d3d11.RenderTargetView, color common.Color) {
	r.ctx.ClearRenderTargetView(target, [4]float32(color))
}

func (r *renderer) SetRenderTarget(target d3d11.RenderTargetView) {
	r.ctx.OMSetRenderTargets([]d3d11.RenderTargetView{target})
}

func (r *renderer) SetShaders(vs shader.VertexShader, ps shader.PixelShader) {
	r.ctx.VSSetShader(vs.Native())
	r.ctx.PSSetShader(ps.Native())
}

func (r *renderer) SetVertexBuffer(buffer geometry.Buffer, layout geometry.InputLayout) {
	r.ctx.IASetVertexBuffers(0, []d3d11.Buffer{buffer.Native()}, []uint32{buffer.Stride()}, []uint32{0})
	r.ctx.IASetInputLayout(layout.Native())
}

func (r *renderer) DrawTriangleList(vertexCount, startVertex uint32) {
	r.ctx.IASetPrimitiveTopology(d3d11.PrimitiveTopologyTriangleList)
	r.ctx.Draw(vertexCount, startVertex)
}

func (r *renderer) Draw(f Frame) error {
	if err := f.validate(); err != nil {
		return err
	}
	count := f.VertexCount
	if count == 0 {
		count = f.Buffer.Count()
	}

	r.SetViewport(f.Width, f.Height)
	r.Clear(f.Target, f.ClearColor)
	r.SetRenderTarget(f.Target)
	r.SetShaders(f.Program.Vertex, f.Program.Pixel)
	r.SetVertexBuffer(f.Buffer, f.Layout)
	r.DrawTriangleList(count, f.StartVertex)

	r.logger.WithFields(logrus.Fields{"vertices": count, "start": f.StartVertex}).Trace("frame recorded")
	return nil
}

func (f Frame) validate() error {
	switch {
	case f.Target == nil:
		return fmt.Errorf("%w: render target", ErrIncompleteFrame)
	case f.Program == nil || f.Program.Vertex == nil || f.Program.Pixel == nil:
		return fmt.Errorf("%w: shader program", ErrIncompleteFrame)
	case f.Buffer == nil:
		return fmt.Errorf("%w: vertex buffer", ErrIncompleteFrame)
	case f.Layout == nil:
		return fmt.Errorf("%w: input layout", ErrIncompleteFrame)
	case f.Width <= 0 || f.Height <= 0:
		return fmt.Errorf("%w: viewport %dx%d", ErrIncompleteFrame, f.Width, f.Height)
	}
	return nil
}
