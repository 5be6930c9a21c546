package d3d11

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

var (
	// ErrMalformedBytecode is returned when compiled bytecode is not a well formed DXBC container.
	ErrMalformedBytecode = errors.New("d3d11: malformed shader bytecode")

	// ErrNoInputSignature is returned when the bytecode carries neither an ISGN nor an ISG1 chunk.
	ErrNoInputSignature = errors.New("d3d11: shader bytecode has no input signature")
)

// DXBC container layout: magic, 16 byte checksum, version, total size, chunk count, chunk offsets.
const (
	dxbcHeaderSize     = 32
	dxbcChunkHeader    = 8
	signatureTableHead = 8
)

var (
	fourCCDXBC = [4]byte{'D', 'X', 'B', 'C'}
	fourCCISGN = [4]byte{'I', 'S', 'G', 'N'}

	// shader model 5.1 targets emit ISG1: a leading stream index and a trailing min precision per element
	fourCCISG1 = [4]byte{'I', 'S', 'G', '1'}
)

// signatureLayout gives the element size and the byte offset of the name field for one signature chunk kind.
type signatureLayout struct {
	elemSize  uint32
	nameField uint32
}

var signatureLayouts = map[[4]byte]signatureLayout{
	fourCCISGN: {elemSize: 24, nameField: 0},
	fourCCISG1: {elemSize: 32, nameField: 4},
}

// ComponentType is a D3D_REGISTER_COMPONENT_TYPE value.
type ComponentType uint32

const (
	ComponentUnknown ComponentType = 0
	ComponentUint32  ComponentType = 1
	ComponentSint32  ComponentType = 2
	ComponentFloat32 ComponentType = 3
)

// SignatureParameter is one entry of a shader input signature.
type SignatureParameter struct {
	SemanticName  string
	SemanticIndex uint32

	// SystemValue is the D3D_NAME of the parameter; 0 for values fed from vertex buffers.
	SystemValue   uint32
	ComponentType ComponentType
	Register      uint32

	// Mask is the declared component mask (x=1, y=2, z=4, w=8).
	Mask uint8

	// ReadWriteMask is the mask of components the shader actually reads.
	ReadWriteMask uint8
}

// Components returns the number of declared components.
func (p SignatureParameter) Components() int {
	return bits.OnesCount8(p.Mask & 0xf)
}

// InputSignature is the list of inputs a vertex shader expects.
type InputSignature []SignatureParameter

// ByteSize returns the number of bytes per vertex the signature consumes from vertex buffers.
// System values such as SV_VertexID are generated by the input assembler and are not counted.
func (s InputSignature) ByteSize() uint32 {
	var size uint32
	for _, p := range s {
		if p.SystemValue != 0 {
			continue
		}
		size += uint32(p.Components()) * 4
	}
	return size
}

// Semantics returns "NAME<index>" keys for the buffer-fed parameters.
func (s InputSignature) Semantics() []string {
	out := make([]string, 0, len(s))
	for _, p := range s {
		if p.SystemValue != 0 {
			continue
		}
		out = append(out, SemanticKey(p.SemanticName, p.SemanticIndex))
	}
	return out
}

// SemanticKey builds the canonical key used to compare semantics between layouts and signatures.
func SemanticKey(name string, index uint32) string {
	return fmt.Sprintf("%s%d", strings.ToUpper(name), index)
}

// ParseInputSignature extracts the input signature from compiled DXBC bytecode.
// Both the ISGN chunk of shader model 4/5.0 and the ISG1 chunk of shader model 5.1 are read.
//
// Parameters:
//   - bytecode: the compiled shader blob
//
// Returns:
//   - InputSignature: the parsed parameters, in declaration order
//   - error: ErrMalformedBytecode or ErrNoInputSignature
func ParseInputSignature(bytecode []byte) (InputSignature, error) {
	kind, chunk, err := findSignatureChunk(bytecode)
	if err != nil {
		return nil, err
	}
	layout := signatureLayouts[kind]
	if len(chunk) < signatureTableHead {
		return nil, fmt.Errorf("%w: truncated %s chunk", ErrMalformedBytecode, kind[:])
	}
	count := binary.LittleEndian.Uint32(chunk[0:4])
	if uint64(signatureTableHead)+uint64(count)*uint64(layout.elemSize) > uint64(len(chunk)) {
		return nil, fmt.Errorf("%w: %s declares %d elements beyond chunk end", ErrMalformedBytecode, kind[:], count)
	}

	sig := make(InputSignature, 0, count)
	for i := uint32(0); i < count; i++ {
		e := chunk[signatureTableHead+i*layout.elemSize:]
		e = e[layout.nameField:]
		name, err := cString(chunk, binary.LittleEndian.Uint32(e[0:4]))
		if err != nil {
			return nil, err
		}
		sig = append(sig, SignatureParameter{
			SemanticName:  name,
			SemanticIndex: binary.LittleEndian.Uint32(e[4:8]),
			SystemValue:   binary.LittleEndian.Uint32(e[8:12]),
			ComponentType: ComponentType(binary.LittleEndian.Uint32(e[12:16])),
			Register:      binary.LittleEndian.Uint32(e[16:20]),
			Mask:          e[20],
			ReadWriteMask: e[21],
		})
	}
	return sig, nil
}

// findSignatureChunk returns the first ISGN or ISG1 chunk of the container.
func findSignatureChunk(bytecode []byte) ([4]byte, []byte, error) {
	var kind [4]byte
	if len(bytecode) < dxbcHeaderSize || !bytes.Equal(bytecode[0:4], fourCCDXBC[:]) {
		return kind, nil, fmt.Errorf("%w: missing DXBC header", ErrMalformedBytecode)
	}
	total := binary.LittleEndian.Uint32(bytecode[24:28])
	if uint64(total) > uint64(len(bytecode)) {
		return kind, nil, fmt.Errorf("%w: container size %d exceeds blob size %d", ErrMalformedBytecode, total, len(bytecode))
	}
	count := binary.LittleEndian.Uint32(bytecode[28:32])
	if uint64(dxbcHeaderSize)+uint64(count)*4 > uint64(total) {
		return kind, nil, fmt.Errorf("%w: chunk table out of range", ErrMalformedBytecode)
	}
	for i := uint32(0); i < count; i++ {
		offset := binary.LittleEndian.Uint32(bytecode[dxbcHeaderSize+i*4:])
		if uint64(offset)+dxbcChunkHeader > uint64(total) {
			return kind, nil, fmt.Errorf("%w: chunk %d offset out of range", ErrMalformedBytecode, i)
		}
		size := binary.LittleEndian.Uint32(bytecode[offset+4:])
		start := uint64(offset) + dxbcChunkHeader
		if start+uint64(size) > uint64(total) {
			return kind, nil, fmt.Errorf("%w: chunk %d size out of range", ErrMalformedBytecode, i)
		}
		copy(kind[:], bytecode[offset:offset+4])
		if _, ok := signatureLayouts[kind]; ok {
			return kind, bytecode[start : start+uint64(size)], nil
		}
	}
	return [4]byte{}, nil, ErrNoInputSignature
}

func cString(chunk []byte, offset uint32) (string, error) {
	if uint64(offset) >= uint64(len(chunk)) {
		return "", fmt.Errorf("%w: semantic name offset out of range", ErrMalformedBytecode)
	}
	end := bytes.IndexByte(chunk[offset:], 0)
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated semantic name", ErrMalformedBytecode)
	}
	return string(chunk[offset : offset+uint32(end)]), nil
}
