package mesh

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct for the fireball pipeline.
// Matches GPUVertex layout exactly (24 bytes, two tightly packed vec3<f32> attributes).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex is the GPU-aligned representation of a single sphere vertex.
// Matches the WGSL VertexInput struct layout exactly (see GPUVertexSource).
// Size: 24 bytes (vertex buffers are not subject to uniform alignment, so no padding).
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	Normal   [3]float32 // offset 12: outward unit normal (12 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 24-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, g.Size())
	g.marshalInto(buf)
	return buf
}

// marshalInto writes the vertex into buf, which must hold at least Size() bytes.
func (g *GPUVertex) marshalInto(buf []byte) {
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Position[i]))
		binary.LittleEndian.PutUint32(buf[12+i*4:], math.Float32bits(g.Normal[i]))
	}
}
