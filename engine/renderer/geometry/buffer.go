// Package geometry owns the static vertex data uploaded to the GPU and the input layouts describing it.
package geometry

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-dx/common"
	"github.com/Carmen-Shannon/oxy-dx/engine/d3d11"
)

// ErrNoVertices is returned when a buffer is requested for an empty vertex sequence.
var ErrNoVertices = errors.New("geometry: vertex data is empty")

// vertexBuffer is the implementation of the Buffer interface.
type vertexBuffer struct {
	native    d3d11.Buffer
	stride    uint32
	count     uint32
	byteWidth uint32
}

// Buffer is an immutable GPU-resident vertex buffer.
// No copy of the vertex data is kept on the CPU once it has been uploaded.
type Buffer interface {
	// Stride returns the byte size of one vertex.
	//
	// Returns:
	//   - uint32: the stride in bytes
	Stride() uint32

	// Count returns the number of vertices in the buffer.
	//
	// Returns:
	//   - uint32: the vertex count
	Count() uint32

	// ByteWidth returns the total size of the buffer in bytes (Stride * Count).
	//
	// Returns:
	//   - uint32: the size in bytes
	ByteWidth() uint32

	// Native returns the driver buffer object for binding, nil after Release.
	//
	// Returns:
	//   - d3d11.Buffer: the native buffer
	Native() d3d11.Buffer

	// Release releases the native buffer. Safe to call more than once.
	Release()
}

var _ Buffer = &vertexBuffer{}

// NewBuffer uploads vertices into an immutable vertex buffer sized exactly to their byte length.
//
// Parameters:
//   - device: the device to allocate the buffer on
//   - vertices: the vertex positions, at least one
//
// Returns:
//   - Buffer: the uploaded buffer
//   - error: ErrNoVertices, or the driver error if allocation fails
func NewBuffer(device d3d11.Device, vertices []common.Vertex) (Buffer, error) {
	if len(vertices) == 0 {
		return nil, ErrNoVertices
	}
	data := common.SliceToBytes(vertices)
	desc := &d3d11.BufferDesc{
		ByteWidth: uint32(len(data)),
		Usage:     d3d11.UsageImmutable,
		BindFlags: d3d11.BindVertexBuffer,
	}
	native, err := device.CreateBuffer(desc, data)
	if err != nil {
		return nil, fmt.Errorf("create vertex buffer (%d vertices): %w", len(vertices), err)
	}
	return &vertexBuffer{
		native:    native,
		stride:    common.VertexStride,
		count:     uint32(len(vertices)),
		byteWidth: desc.ByteWidth,
	}, nil
}

func (b *vertexBuffer) Stride() uint32 {
	return b.stride
}

func (b *vertexBuffer) Count() uint32 {
	return b.count
}

func (b *vertexBuffer) ByteWidth() uint32 {
	return b.byteWidth
}

func (b *vertexBuffer) Native() d3d11.Buffer {
	return b.native
}

func (b *vertexBuffer) Release() {
	if b.native != nil {
		b.native.Release()
		b.native = nil
	}
}
