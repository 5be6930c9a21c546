package d3d11test

import (
	"encoding/binary"

	"github.com/Carmen-Shannon/oxy-dx/engine/d3d11"
)

// PositionSignature is the input signature of a pass-through vertex shader taking a float3 POSITION.
var PositionSignature = d3d11.InputSignature{
	{SemanticName: "POSITION", ComponentType: d3d11.ComponentFloat32, Mask: 0x7, ReadWriteMask: 0x7},
}

// EncodeDXBC builds a minimal DXBC container holding one ISGN chunk for sig.
// Passing a nil signature yields a container with no ISGN chunk at all.
//
// Parameters:
//   - sig: the input signature to embed
//
// Returns:
//   - []byte: the encoded container
func EncodeDXBC(sig d3d11.InputSignature) []byte {
	return encode("ISGN", 24, 0, sig)
}

// EncodeDXBC1 builds a container holding one shader model 5.1 ISG1 chunk for sig.
//
// Parameters:
//   - sig: the input signature to embed
//
// Returns:
//   - []byte: the encoded container
func EncodeDXBC1(sig d3d11.InputSignature) []byte {
	return encode("ISG1", 32, 4, sig)
}

// encode lays out a signature chunk of the given kind; nameField is where each element's name
// offset sits, with the remaining fields following it.
func encode(fourCC string, elemSize, nameField int, sig d3d11.InputSignature) []byte {
	const header = 32
	if sig == nil {
		out := make([]byte, header)
		copy(out, "DXBC")
		binary.LittleEndian.PutUint32(out[20:], 1)
		binary.LittleEndian.PutUint32(out[24:], header)
		return out
	}

	table := 8 + elemSize*len(sig)
	var names []byte
	offsets := make([]uint32, len(sig))
	for i, p := range sig {
		offsets[i] = uint32(table + len(names))
		names = append(names, p.SemanticName...)
		names = append(names, 0)
	}
	for len(names)%4 != 0 {
		names = append(names, 0)
	}
	chunk := make([]byte, table, table+len(names))
	binary.LittleEndian.PutUint32(chunk[0:], uint32(len(sig)))
	binary.LittleEndian.PutUint32(chunk[4:], 8)
	for i, p := range sig {
		e := chunk[8+elemSize*i+nameField:]
		binary.LittleEndian.PutUint32(e[0:], offsets[i])
		binary.LittleEndian.PutUint32(e[4:], p.SemanticIndex)
		binary.LittleEndian.PutUint32(e[8:], p.SystemValue)
		binary.LittleEndian.PutUint32(e[12:], uint32(p.ComponentType))
		binary.LittleEndian.PutUint32(e[16:], p.Register)
		e[20] = p.Mask
		e[21] = p.ReadWriteMask
	}
	chunk = append(chunk, names...)

	chunkOffset := header + 4
	total := chunkOffset + 8 + len(chunk)
	out := make([]byte, total)
	copy(out, "DXBC")
	binary.LittleEndian.PutUint32(out[20:], 1)
	binary.LittleEndian.PutUint32(out[24:], uint32(total))
	binary.LittleEndian.PutUint32(out[28:], 1)
	binary.LittleEndian.PutUint32(out[32:], uint32(chunkOffset))
	copy(out[chunkOffset:], fourCC)
	binary.LittleEndian.PutUint32(out[chunkOffset+4:], uint32(len(chunk)))
	copy(out[chunkOffset+8:], chunk)
	return out
}
