// package common contains the plain data types shared across the engine. They are not interface-wrapped structs, just
// plain structs and aliases that express commonly used data-types.
package common

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is a single vertex position in normalized device coordinates.
// The memory layout is three packed float32 values, matching an R32G32B32_FLOAT POSITION element.
type Vertex = mgl32.Vec3

// VertexStride is the byte size of one Vertex.
const VertexStride = uint32(unsafe.Sizeof(Vertex{}))

// Color is an RGBA color with float components in the [0, 1] range.
type Color = mgl32.Vec4

// TriangleVertices is the default triangle drawn by the engine, wound clockwise.
var TriangleVertices = []Vertex{
	{-0.5, -0.5, 0},
	{0, 0.5, 0},
	{0.5, -0.5, 0},
}

// ClearGreen is the default clear color.
var ClearGreen = Color{0, 1, 0, 1}
