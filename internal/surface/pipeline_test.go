package surface

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPipeline_EmptyCloud(t *testing.T) {
	pipeline := NewPipeline(DefaultParams())
	_, err := pipeline.Run(nil)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestPipeline_SparseCloudYieldsEmptyMesh(t *testing.T) {
	// Four widely spaced corners with the default 3 cm radius: every
	// neighborhood is just the point itself, so smoothing drops the whole
	// cloud and reconstruction has nothing to triangulate.
	cloud := SquareCorners(0.001)

	pipeline := NewPipeline(DefaultParams())
	result, err := pipeline.Run(cloud)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.InputPoints != 4 || result.DroppedPoints != 4 || result.SmoothedPoints != 0 {
		t.Errorf("unexpected counters: %+v", result)
	}
	if len(result.Mesh.Vertices) != 0 || len(result.Mesh.Triangles) != 0 {
		t.Errorf("expected empty mesh, got %d vertices, %d triangles",
			len(result.Mesh.Vertices), len(result.Mesh.Triangles))
	}
}

func TestPipeline_TinyCloudSurvivesSmoothing(t *testing.T) {
	// Three points inside one radius: smoothing keeps them via the planar
	// fit, but three points cannot form a 3D hull, so the mesh is empty.
	cloud := NewSyntheticCloud(2).Plane(3)

	pipeline := NewPipeline(Params{SearchRadius: 10, MinNeighbors: 3})
	result, err := pipeline.Run(cloud)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.SmoothedPoints != 3 {
		t.Fatalf("SmoothedPoints = %d, want 3", result.SmoothedPoints)
	}
	if len(result.Mesh.Triangles) != 0 {
		t.Errorf("expected no triangles for a 3-point cloud, got %d", len(result.Mesh.Triangles))
	}
}

func TestPipeline_Sphere(t *testing.T) {
	gen := NewSyntheticCloud(7)
	cloud := gen.Sphere(200)

	params := DefaultParams()
	params.SearchRadius = 0.4
	pipeline := NewPipeline(params)

	result, err := pipeline.Run(cloud)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.InputPoints != 200 {
		t.Errorf("InputPoints = %d, want 200", result.InputPoints)
	}
	if result.SmoothedPoints+result.DroppedPoints != 200 {
		t.Errorf("smoothed %d + dropped %d != 200", result.SmoothedPoints, result.DroppedPoints)
	}
	if result.SmoothedPoints < 180 {
		t.Errorf("dense sphere lost too many points: kept %d", result.SmoothedPoints)
	}
	if !result.Mesh.Valid() {
		t.Fatal("mesh references out-of-range vertex indices")
	}
	if len(result.Mesh.Triangles) == 0 {
		t.Fatal("expected a non-empty hull mesh")
	}
	if len(result.Normals) != len(result.Mesh.Vertices) {
		t.Errorf("normals (%d) not aligned with vertices (%d)",
			len(result.Normals), len(result.Mesh.Vertices))
	}

	// Smoothed vertices should stay close to the unit sphere.
	var sum float64
	for _, v := range result.Mesh.Vertices {
		sum += v.Norm()
	}
	mean := sum / float64(len(result.Mesh.Vertices))
	if math.Abs(mean-1.0) > 0.05 {
		t.Errorf("mean vertex radius %.4f, want ~1.0", mean)
	}
}

func TestPipeline_Deterministic(t *testing.T) {
	gen := NewSyntheticCloud(11)
	cloud := gen.Sphere(120)

	params := DefaultParams()
	params.SearchRadius = 0.4
	pipeline := NewPipeline(params)

	first, err := pipeline.Run(cloud)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := pipeline.Run(cloud)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	ignoreDurations := cmp.FilterPath(func(p cmp.Path) bool {
		name := p.Last().String()
		return name == ".SmoothDuration" || name == ".ReconstructDuration"
	}, cmp.Ignore())
	if diff := cmp.Diff(first, second, ignoreDurations); diff != "" {
		t.Errorf("two runs over the same cloud differ (-first +second):\n%s", diff)
	}
}

func TestPipeline_DefaultsApplied(t *testing.T) {
	pipeline := NewPipeline(Params{})
	params := pipeline.Params()
	if params.SearchRadius != DefaultSearchRadius {
		t.Errorf("SearchRadius = %v, want %v", params.SearchRadius, DefaultSearchRadius)
	}
	if params.MinNeighbors != DefaultMinNeighbors {
		t.Errorf("MinNeighbors = %d, want %d", params.MinNeighbors, DefaultMinNeighbors)
	}
}
