// Package mesh holds the raw triangle data produced by the icosphere generator and
// converts it into the contiguous byte layouts the renderer uploads.
package mesh

import (
	"encoding/binary"
	"fmt"

	"github.com/Carmen-Shannon/oxy-fireball/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is a single mesh vertex in model space.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
}

// Mesh is an indexed triangle list. Every three consecutive entries in Indices form one
// triangle wound counter-clockwise when viewed from outside the surface.
// A Mesh is treated as immutable once handed to a consumer; regeneration builds a new one.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// New creates an empty Mesh with preallocated capacity.
//
// Parameters:
//   - vertexCapacity: expected number of vertices
//   - triangleCapacity: expected number of triangles
//
// Returns:
//   - *Mesh: the empty mesh
func New(vertexCapacity, triangleCapacity int) *Mesh {
	return &Mesh{
		Vertices: make([]Vertex, 0, vertexCapacity),
		Indices:  make([]uint32, 0, triangleCapacity*3),
	}
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(v Vertex) uint32 {
	m.Vertices = append(m.Vertices, v)
	return uint32(len(m.Vertices) - 1)
}

// AddTriangle appends one triangle.
func (m *Mesh) AddTriangle(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IndexCount returns the number of indices, used for indexed draw calls.
func (m *Mesh) IndexCount() int {
	return len(m.Indices)
}

// Triangle returns the three vertex indices of triangle i.
func (m *Mesh) Triangle(i int) [3]uint32 {
	return [3]uint32{m.Indices[i*3], m.Indices[i*3+1], m.Indices[i*3+2]}
}

// Validate checks the structural invariants of the mesh: the index list is a whole number
// of triangles, every index resolves to an existing vertex, and no triangle repeats a vertex.
//
// Returns:
//   - error: an error wrapping common.ErrGeometryInput describing the first violation, or nil
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh: index count %d is not a multiple of 3: %w", len(m.Indices), common.ErrGeometryInput)
	}
	n := uint32(len(m.Vertices))
	for t := 0; t < m.TriangleCount(); t++ {
		tri := m.Triangle(t)
		for _, idx := range tri {
			if idx >= n {
				return fmt.Errorf("mesh: triangle %d references vertex %d of %d: %w", t, idx, n, common.ErrGeometryInput)
			}
		}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
			return fmt.Errorf("mesh: triangle %d is degenerate %v: %w", t, tri, common.ErrGeometryInput)
		}
	}
	return nil
}

// VertexData packs all vertices into the GPUVertex byte layout.
//
// Returns:
//   - []byte: VertexCount()*24 bytes ready for upload to a vertex buffer
func (m *Mesh) VertexData() []byte {
	var gv GPUVertex
	stride := gv.Size()
	buf := make([]byte, len(m.Vertices)*stride)
	for i, v := range m.Vertices {
		gv.Position = v.Position
		gv.Normal = v.Normal
		gv.marshalInto(buf[i*stride:])
	}
	return buf
}

// IndexData packs all indices as little-endian uint32 values.
//
// Returns:
//   - []byte: IndexCount()*4 bytes ready for upload to an index buffer
func (m *Mesh) IndexData() []byte {
	buf := make([]byte, len(m.Indices)*4)
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}
