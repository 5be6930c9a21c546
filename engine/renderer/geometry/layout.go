package geometry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-dx/engine/d3d11"
	"github.com/Carmen-Shannon/oxy-dx/engine/renderer/shader"
)

// ErrLayoutMismatch is matched by every *LayoutMismatchError.
var ErrLayoutMismatch = errors.New("geometry: input layout does not match vertex shader signature")

// LayoutMismatchError describes how a declared input layout disagrees with the vertex shader it is bound against.
type LayoutMismatchError struct {
	// EntryPoint is the vertex shader the layout was validated against.
	EntryPoint string

	// Declared is the per-vertex byte size of the declared elements.
	Declared uint32

	// Expected is the per-vertex byte size the shader's input signature consumes.
	Expected uint32

	// Missing lists signature semantics (e.g. "POSITION0") the layout does not declare.
	Missing []string
}

func (e *LayoutMismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "input layout for %s: declared %d bytes per vertex, shader expects %d", e.EntryPoint, e.Declared, e.Expected)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "; missing semantics %s", strings.Join(e.Missing, ", "))
	}
	return b.String()
}

func (e *LayoutMismatchError) Unwrap() error {
	return ErrLayoutMismatch
}

// PositionLayout is the single float3 POSITION attribute read from slot 0.
var PositionLayout = []d3d11.InputElementDesc{
	{
		SemanticName:      "POSITION",
		SemanticIndex:     0,
		Format:            d3d11.FormatR32G32B32Float,
		InputSlot:         0,
		AlignedByteOffset: 0,
		InputSlotClass:    d3d11.InputPerVertexData,
	},
}

// inputLayout is the implementation of the InputLayout interface.
type inputLayout struct {
	native   d3d11.InputLayout
	elements []d3d11.InputElementDesc
	stride   uint32
}

// InputLayout describes per-vertex attribute memory for the input assembler.
// It is only valid together with the vertex shader it was created against.
type InputLayout interface {
	// Elements returns the declared attributes.
	//
	// Returns:
	//   - []d3d11.InputElementDesc: the element descriptors
	Elements() []d3d11.InputElementDesc

	// Stride returns the declared per-vertex byte size.
	//
	// Returns:
	//   - uint32: the byte size of one vertex
	Stride() uint32

	// Native returns the driver input layout for binding, nil after Release.
	//
	// Returns:
	//   - d3d11.InputLayout: the native layout
	Native() d3d11.InputLayout

	// Release releases the native layout. Safe to call more than once.
	Release()
}

var _ InputLayout = &inputLayout{}

// NewInputLayout validates elements against the input signature of vs, then creates the layout.
// Validation requires the declared byte size to equal the size the signature consumes and every
// signature semantic to be declared. Shaders whose bytecode carries no readable signature skip
// this check and are left to the driver.
//
// Parameters:
//   - device: the device to create the layout on
//   - vs: the vertex shader whose bytecode the layout is matched against
//   - elements: the declared attributes
//
// Returns:
//   - InputLayout: the created layout
//   - error: *LayoutMismatchError on pre-validation failure, otherwise the driver error
func NewInputLayout(device d3d11.Device, vs shader.VertexShader, elements []d3d11.InputElementDesc) (InputLayout, error) {
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: no elements declared", ErrLayoutMismatch)
	}
	declared := DeclaredSize(elements)
	if err := Validate(vs.EntryPoint(), vs.InputSignature(), elements); err != nil {
		return nil, err
	}

	native, err := device.CreateInputLayout(elements, vs.Bytecode())
	if err != nil {
		return nil, fmt.Errorf("create input layout for %s: %w", vs.EntryPoint(), err)
	}
	return &inputLayout{
		native:   native,
		elements: append([]d3d11.InputElementDesc(nil), elements...),
		stride:   declared,
	}, nil
}

// DeclaredSize returns the per-vertex byte size of elements.
//
// Parameters:
//   - elements: the declared attributes
//
// Returns:
//   - uint32: the summed byte size of the element formats
func DeclaredSize(elements []d3d11.InputElementDesc) uint32 {
	var size uint32
	for _, e := range elements {
		size += e.Format.ByteSize()
	}
	return size
}

// Validate checks elements against sig. A nil sig is accepted.
//
// Parameters:
//   - entryPoint: the vertex shader name, used in the error
//   - sig: the vertex shader input signature
//   - elements: the declared attributes
//
// Returns:
//   - error: *LayoutMismatchError if the declaration disagrees with sig
func Validate(entryPoint string, sig d3d11.InputSignature, elements []d3d11.InputElementDesc) error {
	if sig == nil {
		return nil
	}
	declaredKeys := make(map[string]struct{}, len(elements))
	for _, e := range elements {
		declaredKeys[d3d11.SemanticKey(e.SemanticName, e.SemanticIndex)] = struct{}{}
	}
	var missing []string
	for _, key := range sig.Semantics() {
		if _, ok := declaredKeys[key]; !ok {
			missing = append(missing, key)
		}
	}

	declared := DeclaredSize(elements)
	expected := sig.ByteSize()
	if declared != expected || len(missing) > 0 {
		return &LayoutMismatchError{
			EntryPoint: entryPoint,
			Declared:   declared,
			Expected:   expected,
			Missing:    missing,
		}
	}
	return nil
}

func (l *inputLayout) Elements() []d3d11.InputElementDesc {
	return l.elements
}

func (l *inputLayout) Stride() uint32 {
	return l.stride
}

func (l *inputLayout) Native() d3d11.InputLayout {
	return l.native
}

func (l *inputLayout) Release() {
	if l.native != nil {
		l.native.Release()
		l.native = nil
	}
}
