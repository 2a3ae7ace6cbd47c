// Package icosphere builds sphere meshes by recursively subdividing a regular icosahedron
// and projecting every new vertex back onto the sphere surface.
package icosphere

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fireball/common"
	"github.com/Carmen-Shannon/oxy-fireball/engine/mesh"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MinLevel is the lowest accepted subdivision level (the bare icosahedron).
	MinLevel = 0

	// MaxLevel is the highest accepted subdivision level.
	MaxLevel = 8
)

// phi is the golden ratio used by the icosahedron construction.
var phi = (1.0 + math32.Sqrt(5.0)) / 2.0

// baseVertices are the 12 icosahedron corners, permutations of (±1, ±phi, 0) before normalization.
var baseVertices = [12]mgl32.Vec3{
	{-1, phi, 0}, {1, phi, 0}, {-1, -phi, 0}, {1, -phi, 0},
	{0, -1, phi}, {0, 1, phi}, {0, -1, -phi}, {0, 1, -phi},
	{phi, 0, -1}, {phi, 0, 1}, {-phi, 0, -1}, {-phi, 0, 1},
}

// baseFaces are the 20 icosahedron faces, counter-clockwise when viewed from outside.
var baseFaces = [20][3]uint32{
	{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
	{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
	{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
	{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
}

// edgeKey identifies an edge by its two endpoint indices, smaller index first,
// so both triangles sharing the edge resolve to the same midpoint.
type edgeKey struct {
	lo, hi uint32
}

func newEdgeKey(a, b uint32) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{lo: a, hi: b}
}

// Generator is the synchronous icosphere generator. The zero value is ready to use.
type Generator struct{}

// Build implements the frame driver's mesh builder contract by calling Generate.
func (Generator) Build(center mgl32.Vec3, radius float32, level int) (*mesh.Mesh, error) {
	return Generate(center, radius, level)
}

// VertexCount returns the number of unique vertices an icosphere of the given level has: 10*4^level + 2.
func VertexCount(level int) int {
	return 10*(1<<(2*level)) + 2
}

// TriangleCount returns the number of triangles an icosphere of the given level has: 20*4^level.
func TriangleCount(level int) int {
	return 20 * (1 << (2 * level))
}

// Generate builds an icosphere centered at center with the given radius, subdivided level times.
// Every vertex lies at distance radius from center and its normal is the unit direction from
// center to the vertex. Shared edges are split exactly once through a midpoint cache, so the
// mesh contains no duplicate vertices. Identical inputs always produce identical meshes.
//
// Parameters:
//   - center: sphere center in model space
//   - radius: sphere radius, must be > 0 and finite
//   - level: number of subdivision passes in [MinLevel, MaxLevel]
//
// Returns:
//   - *mesh.Mesh: the generated mesh with 10*4^level+2 vertices and 20*4^level triangles
//   - error: an error wrapping common.ErrGeometryInput for invalid input, in which case no mesh is returned
func Generate(center mgl32.Vec3, radius float32, level int) (*mesh.Mesh, error) {
	if level < MinLevel || level > MaxLevel {
		return nil, fmt.Errorf("icosphere: level %d outside [%d, %d]: %w", level, MinLevel, MaxLevel, common.ErrGeometryInput)
	}
	if !(radius > 0) || math32.IsInf(radius, 0) {
		return nil, fmt.Errorf("icosphere: radius %v must be a positive finite number: %w", radius, common.ErrGeometryInput)
	}
	if !common.IsFiniteVec3(center) {
		return nil, fmt.Errorf("icosphere: center %v must be finite: %w", center, common.ErrGeometryInput)
	}

	g := &subdivider{
		center: center,
		radius: radius,
		mesh:   mesh.New(VertexCount(level), TriangleCount(level)),
	}
	for _, v := range baseVertices {
		g.addProjected(v)
	}

	faces := make([][3]uint32, len(baseFaces), TriangleCount(level))
	copy(faces, baseFaces[:])
	for range level {
		faces = g.subdivide(faces)
	}

	for _, f := range faces {
		g.mesh.AddTriangle(f[0], f[1], f[2])
	}
	return g.mesh, nil
}

// subdivider carries the per-generation state: the growing mesh and the sphere it projects onto.
type subdivider struct {
	center mgl32.Vec3
	radius float32
	mesh   *mesh.Mesh
}

// addProjected places dir (relative to center, any length) on the sphere and appends it.
func (g *subdivider) addProjected(dir mgl32.Vec3) uint32 {
	n := dir.Normalize()
	return g.mesh.AddVertex(mesh.Vertex{
		Position: g.center.Add(n.Mul(g.radius)),
		Normal:   n,
	})
}

// subdivide runs one pass, replacing every face with four. The midpoint cache lives for the
// duration of a single pass because edges from earlier passes are never split twice.
func (g *subdivider) subdivide(faces [][3]uint32) [][3]uint32 {
	cache := make(map[edgeKey]uint32, len(faces)*3/2)
	midpoint := func(a, b uint32) uint32 {
		key := newEdgeKey(a, b)
		if idx, ok := cache[key]; ok {
			return idx
		}
		pa := g.mesh.Vertices[a].Position.Sub(g.center)
		pb := g.mesh.Vertices[b].Position.Sub(g.center)
		idx := g.addProjected(pa.Add(pb).Mul(0.5))
		cache[key] = idx
		return idx
	}

	next := make([][3]uint32, 0, len(faces)*4)
	for _, f := range faces {
		a, b, c := f[0], f[1], f[2]
		ab := midpoint(a, b)
		bc := midpoint(b, c)
		ca := midpoint(c, a)
		next = append(next,
			[3]uint32{a, ab, ca},
			[3]uint32{b, bc, ab},
			[3]uint32{c, ca, bc},
			[3]uint32{ab, bc, ca},
		)
	}
	return next
}
