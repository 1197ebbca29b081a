// Package geom defines the mesh data model shared by the reconstruction
// pipeline and the API layer: vertex positions, index polygons, and the
// triangulated Mesh that a reconstruction run produces.
package geom

import (
	"github.com/golang/geo/r3"
)

// Triangle references three vertices of a mesh by index into its vertex slice.
// Triangles carry no ownership over vertex data.
type Triangle [3]int

// Polygon is a closed loop of vertex indices into a mesh vertex slice.
// A well-formed polygon has at least 3 indices; reconstruction strategies
// may produce shorter ones, which the pipeline filters out before emitting
// triangles.
type Polygon []int

// Mesh is a triangulated surface: vertex positions plus index triples.
// A Mesh is constructed fresh per reconstruction run and never mutated
// after being returned.
type Mesh struct {
	Vertices  []r3.Vector
	Triangles []Triangle
}

// Empty reports whether the mesh has no triangles.
func (m Mesh) Empty() bool {
	return len(m.Triangles) == 0
}

// Valid reports whether every triangle references indices strictly inside
// the vertex slice.
func (m Mesh) Valid() bool {
	for _, t := range m.Triangles {
		for _, idx := range t {
			if idx < 0 || idx >= len(m.Vertices) {
				return false
			}
		}
	}
	return true
}

// Normal returns the (unnormalized) face normal of triangle t using the
// right-hand winding of its vertices.
func (m Mesh) Normal(t Triangle) r3.Vector {
	a := m.Vertices[t[0]]
	b := m.Vertices[t[1]]
	c := m.Vertices[t[2]]
	return b.Sub(a).Cross(c.Sub(a))
}

// Centroid returns the arithmetic mean of the mesh vertices. Returns the
// zero vector for an empty vertex slice.
func (m Mesh) Centroid() r3.Vector {
	if len(m.Vertices) == 0 {
		return r3.Vector{}
	}
	var sum r3.Vector
	for _, v := range m.Vertices {
		sum = sum.Add(v)
	}
	return sum.Mul(1.0 / float64(len(m.Vertices)))
}
