// Package surface implements the point cloud reconstruction core: a
// moving-least-squares smoothing pass over a spatially indexed cloud,
// followed by a pluggable surface triangulation (convex hull by default).
//
// All state is per call. A Pipeline carries only parameters, so a single
// instance can serve concurrent requests; every Run builds and discards
// its own spatial index and intermediate buffers.
package surface

import (
	"fmt"
	"time"

	"github.com/golang/geo/r3"

	"github.com/banshee-data/surfacer/internal/geom"
)

// Params configures one reconstruction run.
type Params struct {
	// SearchRadius is the smoothing neighborhood radius.
	SearchRadius float64 `json:"search_radius"`
	// Polynomial enables the quadric local fit in the smoother.
	Polynomial bool `json:"polynomial"`
	// MinNeighbors is the minimum neighborhood size for a local fit.
	MinNeighbors int `json:"min_neighbors"`
	// FanPolygons fans hull n-gons into n-2 triangles instead of
	// truncating them to their first three indices.
	FanPolygons bool `json:"fan_polygons"`
}

// DefaultParams returns the pipeline defaults used by the service.
func DefaultParams() Params {
	return Params{
		SearchRadius: DefaultSearchRadius,
		Polynomial:   true,
		MinNeighbors: DefaultMinNeighbors,
		FanPolygons:  false,
	}
}

// Result is the outcome of one reconstruction run.
type Result struct {
	Mesh geom.Mesh

	// Normals are the fitted unit normals for the smoothed points
	// (index-aligned with Mesh.Vertices when the mesh is non-degenerate).
	Normals []r3.Vector

	InputPoints     int
	SmoothedPoints  int
	DroppedPoints   int
	Polygons        int
	DroppedPolygons int

	SmoothDuration      time.Duration
	ReconstructDuration time.Duration
}

// Pipeline composes the smoothing and reconstruction stages. The zero
// value is not usable; construct with NewPipeline.
type Pipeline struct {
	params   Params
	strategy Strategy
}

// NewPipeline creates a pipeline with the given parameters and the convex
// hull reconstruction strategy.
func NewPipeline(params Params) *Pipeline {
	if params.SearchRadius <= 0 {
		params.SearchRadius = DefaultSearchRadius
	}
	if params.MinNeighbors <= 0 {
		params.MinNeighbors = DefaultMinNeighbors
	}
	return &Pipeline{
		params:   params,
		strategy: &ConvexHullStrategy{FanPolygons: params.FanPolygons},
	}
}

// NewPipelineWithStrategy creates a pipeline with a caller-supplied
// reconstruction strategy.
func NewPipelineWithStrategy(params Params, strategy Strategy) *Pipeline {
	p := NewPipeline(params)
	p.strategy = strategy
	return p
}

// Params returns the pipeline parameters.
func (p *Pipeline) Params() Params {
	return p.params
}

// Run executes smooth → reconstruct on the cloud. It fails only when the
// input cloud is empty; every downstream degeneracy is a defined outcome
// reported through the Result counters.
func (p *Pipeline) Run(cloud []r3.Vector) (Result, error) {
	result := Result{InputPoints: len(cloud)}

	smoother := NewSmoother(SmootherParams{
		SearchRadius: p.params.SearchRadius,
		Polynomial:   p.params.Polynomial,
		MinNeighbors: p.params.MinNeighbors,
	})

	start := time.Now()
	smoothed, err := smoother.Smooth(cloud)
	if err != nil {
		return Result{}, fmt.Errorf("smoothing failed: %w", err)
	}
	result.SmoothDuration = time.Since(start)
	result.SmoothedPoints = len(smoothed.Points)
	result.DroppedPoints = smoothed.Dropped
	result.Normals = smoothed.Normals

	start = time.Now()
	mesh, stats := p.strategy.Reconstruct(smoothed.Points)
	result.ReconstructDuration = time.Since(start)
	result.Mesh = mesh
	result.Polygons = stats.Polygons
	result.DroppedPolygons = stats.DroppedPolygons

	return result, nil
}
