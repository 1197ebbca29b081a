// This file provides synthetic cloud generation for testing and demos.
package surface

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
)

// SyntheticCloud generates deterministic sample clouds. All generation is
// driven by a seeded source so a given configuration always reproduces the
// same cloud.
type SyntheticCloud struct {
	Seed int64

	// Sphere parameters
	Radius float64 // sphere radius
	Sigma  float64 // gaussian noise stddev applied radially

	// Plane parameters
	Side   float64 // plane side length
	Jitter float64 // out-of-plane noise amplitude
}

// NewSyntheticCloud creates a generator with unit-scale defaults.
func NewSyntheticCloud(seed int64) *SyntheticCloud {
	return &SyntheticCloud{
		Seed:   seed,
		Radius: 1.0,
		Sigma:  0.01,
		Side:   1.0,
		Jitter: 0.001,
	}
}

// Sphere returns n points sampled uniformly on the sphere surface with
// gaussian radial noise.
func (g *SyntheticCloud) Sphere(n int) []r3.Vector {
	rng := rand.New(rand.NewSource(g.Seed))
	points := make([]r3.Vector, n)
	for i := range points {
		// Uniform direction via normalized gaussian triple.
		dir := r3.Vector{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
		norm := dir.Norm()
		if norm == 0 {
			dir, norm = r3.Vector{X: 1}, 1
		}
		radius := g.Radius + rng.NormFloat64()*g.Sigma
		points[i] = dir.Mul(radius / norm)
	}
	return points
}

// Plane returns n points sampled on a square patch at z=0 with the
// configured out-of-plane jitter.
func (g *SyntheticCloud) Plane(n int) []r3.Vector {
	rng := rand.New(rand.NewSource(g.Seed))
	points := make([]r3.Vector, n)
	for i := range points {
		points[i] = r3.Vector{
			X: (rng.Float64() - 0.5) * g.Side,
			Y: (rng.Float64() - 0.5) * g.Side,
			Z: (rng.Float64()*2 - 1) * g.Jitter,
		}
	}
	return points
}

// SquareCorners returns the four corners of a unit square at z≈0, each
// displaced along z by at most jitter. Used for degenerate-hull testing.
func SquareCorners(jitter float64) []r3.Vector {
	return []r3.Vector{
		{X: 0, Y: 0, Z: jitter},
		{X: 1, Y: 0, Z: -jitter},
		{X: 1, Y: 1, Z: jitter},
		{X: 0, Y: 1, Z: -jitter},
	}
}

// SphereGrid returns points on a regular latitude/longitude grid of the
// unit sphere, with no noise. Handy when a test needs a dense, perfectly
// deterministic convex cloud.
func SphereGrid(latSteps, lonSteps int, radius float64) []r3.Vector {
	points := make([]r3.Vector, 0, latSteps*lonSteps)
	for i := 1; i < latSteps; i++ {
		theta := math.Pi * float64(i) / float64(latSteps)
		for j := 0; j < lonSteps; j++ {
			phi := 2 * math.Pi * float64(j) / float64(lonSteps)
			points = append(points, r3.Vector{
				X: radius * math.Sin(theta) * math.Cos(phi),
				Y: radius * math.Sin(theta) * math.Sin(phi),
				Z: radius * math.Cos(theta),
			})
		}
	}
	// Poles
	points = append(points,
		r3.Vector{Z: radius},
		r3.Vector{Z: -radius},
	)
	return points
}
