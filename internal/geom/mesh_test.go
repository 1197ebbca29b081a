package geom

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
)

func unitTriangleMesh() Mesh {
	return Mesh{
		Vertices: []r3.Vector{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
		},
		Triangles: []Triangle{{0, 1, 2}},
	}
}

func TestMesh_Empty(t *testing.T) {
	if !(Mesh{}).Empty() {
		t.Error("zero mesh should be empty")
	}
	if unitTriangleMesh().Empty() {
		t.Error("mesh with a triangle should not be empty")
	}
	// Vertices without triangles still count as empty.
	m := Mesh{Vertices: []r3.Vector{{X: 1}}}
	if !m.Empty() {
		t.Error("mesh without triangles should be empty")
	}
}

func TestMesh_Valid(t *testing.T) {
	m := unitTriangleMesh()
	if !m.Valid() {
		t.Error("well-formed mesh reported invalid")
	}

	m.Triangles = append(m.Triangles, Triangle{0, 1, 3})
	if m.Valid() {
		t.Error("out-of-range index not detected")
	}

	m.Triangles = []Triangle{{-1, 0, 1}}
	if m.Valid() {
		t.Error("negative index not detected")
	}

	if !(Mesh{}).Valid() {
		t.Error("empty mesh should be trivially valid")
	}
}

func TestMesh_Normal(t *testing.T) {
	m := unitTriangleMesh()
	n := m.Normal(m.Triangles[0])
	want := r3.Vector{X: 0, Y: 0, Z: 1}
	if n.Sub(want).Norm() > 1e-12 {
		t.Errorf("Normal = %v, want %v", n, want)
	}

	// Reversed winding flips the normal.
	n = m.Normal(Triangle{0, 2, 1})
	if n.Sub(want.Mul(-1)).Norm() > 1e-12 {
		t.Errorf("reversed winding Normal = %v, want %v", n, want.Mul(-1))
	}
}

func TestMesh_Centroid(t *testing.T) {
	if c := (Mesh{}).Centroid(); c != (r3.Vector{}) {
		t.Errorf("empty mesh centroid = %v, want zero vector", c)
	}

	m := Mesh{Vertices: []r3.Vector{
		{X: 0, Y: 0, Z: 0},
		{X: 2, Y: 0, Z: 0},
		{X: 0, Y: 2, Z: 0},
		{X: 0, Y: 0, Z: 2},
	}}
	c := m.Centroid()
	want := r3.Vector{X: 0.5, Y: 0.5, Z: 0.5}
	if math.Abs(c.X-want.X) > 1e-12 || math.Abs(c.Y-want.Y) > 1e-12 || math.Abs(c.Z-want.Z) > 1e-12 {
		t.Errorf("Centroid = %v, want %v", c, want)
	}
}
