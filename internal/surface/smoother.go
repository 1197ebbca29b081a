package surface

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Constants for smoothing configuration
const (
	// DefaultSearchRadius is the default neighborhood radius for the local
	// surface fit, in the units of the input coordinates.
	DefaultSearchRadius = 0.03
	// DefaultMinNeighbors is the minimum neighborhood size for a stable
	// local fit. Fewer points cannot define a tangent plane, so the point
	// is dropped.
	DefaultMinNeighbors = 3
	// quadricMinNeighbors is the neighborhood size required before the
	// quadric term is fitted. The quadric has six coefficients; with fewer
	// samples the system is underdetermined and the fit stays planar.
	quadricMinNeighbors = 6

	// minSpreadEps guards against neighborhoods that have collapsed onto a
	// single location, where the principal directions are meaningless.
	minSpreadEps = 1e-12
)

// SmootherParams configures the moving-least-squares smoothing stage.
type SmootherParams struct {
	// SearchRadius is the neighborhood radius for the local fit.
	SearchRadius float64
	// Polynomial enables the quadric local fit; when false the fit is a
	// plane and smoothing reduces to projection onto it.
	Polynomial bool
	// MinNeighbors is the minimum neighborhood cardinality (including the
	// query point) required to attempt a fit.
	MinNeighbors int
}

// DefaultSmootherParams returns the smoothing defaults used by the service.
func DefaultSmootherParams() SmootherParams {
	return SmootherParams{
		SearchRadius: DefaultSearchRadius,
		Polynomial:   true,
		MinNeighbors: DefaultMinNeighbors,
	}
}

// SmoothResult is the output of one smoothing pass.
type SmoothResult struct {
	// Points are the smoothed positions, at most as many as the input.
	Points []r3.Vector
	// Normals are unit surface normals from the local fits, index-aligned
	// with Points. Normal orientation is local only; no global consistency
	// pass is applied.
	Normals []r3.Vector
	// Dropped counts input points discarded because their neighborhood
	// could not support a stable fit.
	Dropped int
}

// Smoother denoises a point cloud by fitting a local polynomial surface
// around every point and projecting the point onto it, the
// moving-least-squares approach. Points whose neighborhood is too sparse or
// too degenerate for a stable fit are dropped rather than passed through,
// so the output never mixes smoothed and raw positions.
//
// A Smoother holds only parameters; Smooth builds all per-call state
// itself, so one Smoother may serve concurrent calls.
type Smoother struct {
	params SmootherParams
}

// NewSmoother creates a smoother with the given parameters. Non-positive
// values fall back to the defaults.
func NewSmoother(params SmootherParams) *Smoother {
	if params.SearchRadius <= 0 {
		params.SearchRadius = DefaultSearchRadius
	}
	if params.MinNeighbors <= 0 {
		params.MinNeighbors = DefaultMinNeighbors
	}
	return &Smoother{params: params}
}

// Params returns the smoothing parameters.
func (s *Smoother) Params() SmootherParams {
	return s.params
}

// Smooth runs one moving-least-squares pass over the cloud. It returns
// ErrInsufficientData only for an empty input; every other degenerate
// condition drops the affected point and increments Dropped.
//
// The pass is deterministic: for a fixed input order and fixed parameters
// the output is identical across runs.
func (s *Smoother) Smooth(cloud []r3.Vector) (SmoothResult, error) {
	if len(cloud) == 0 {
		return SmoothResult{}, ErrInsufficientData
	}

	index := NewSpatialIndex(s.params.SearchRadius)
	index.Build(cloud)

	result := SmoothResult{
		Points:  make([]r3.Vector, 0, len(cloud)),
		Normals: make([]r3.Vector, 0, len(cloud)),
	}

	for i := range cloud {
		neighbors := index.RadiusQuery(cloud, i, s.params.SearchRadius)
		point, normal, ok := s.fitPoint(cloud, i, neighbors)
		if !ok {
			result.Dropped++
			continue
		}
		result.Points = append(result.Points, point)
		result.Normals = append(result.Normals, normal)
	}

	return result, nil
}

// fitPoint fits the local surface for cloud[i] over the given neighborhood
// and returns the projected position and fitted normal. ok is false when
// the neighborhood cannot support a stable fit.
func (s *Smoother) fitPoint(cloud []r3.Vector, i int, neighbors []int) (r3.Vector, r3.Vector, bool) {
	if len(neighbors) < s.params.MinNeighbors {
		return r3.Vector{}, r3.Vector{}, false
	}

	frame, ok := tangentFrameOf(cloud, neighbors)
	if !ok {
		return r3.Vector{}, r3.Vector{}, false
	}

	// Local coordinates of the query point in the tangent frame.
	d := cloud[i].Sub(frame.origin)
	u := d.Dot(frame.u)
	v := d.Dot(frame.v)

	if s.params.Polynomial && len(neighbors) >= quadricMinNeighbors {
		if point, normal, ok := fitQuadric(cloud, neighbors, frame, u, v); ok {
			return point, normal, true
		}
		// Rank-deficient quadric counts as an unstable neighborhood.
		return r3.Vector{}, r3.Vector{}, false
	}

	// Planar fit: drop the out-of-plane component.
	point := frame.origin.Add(frame.u.Mul(u)).Add(frame.v.Mul(v))
	return point, frame.normal, true
}

// tangentFrame holds an orthonormal local coordinate system derived from
// the principal directions of a neighborhood.
type tangentFrame struct {
	origin r3.Vector // neighborhood centroid
	u, v   r3.Vector // tangent directions (largest spread first)
	normal r3.Vector // direction of least spread
}

// tangentFrameOf computes the PCA frame of a neighborhood. It fails when
// the eigendecomposition does not converge or the neighborhood has
// collapsed to (numerically) a single location.
func tangentFrameOf(cloud []r3.Vector, neighbors []int) (tangentFrame, bool) {
	var centroid r3.Vector
	for _, j := range neighbors {
		centroid = centroid.Add(cloud[j])
	}
	n := float64(len(neighbors))
	centroid = centroid.Mul(1 / n)

	var cov [9]float64 // 3x3 row-major
	for _, j := range neighbors {
		d := cloud[j].Sub(centroid)
		cov[0] += d.X * d.X
		cov[1] += d.X * d.Y
		cov[2] += d.X * d.Z
		cov[4] += d.Y * d.Y
		cov[5] += d.Y * d.Z
		cov[8] += d.Z * d.Z
	}
	cov[3], cov[6], cov[7] = cov[1], cov[2], cov[5]
	for k := range cov {
		cov[k] /= n
	}

	covMat := mat.NewSymDense(3, cov[:])

	var eigen mat.EigenSym
	if !eigen.Factorize(covMat, true) {
		return tangentFrame{}, false
	}

	vals := eigen.Values(nil)
	var vecs mat.Dense
	eigen.VectorsTo(&vecs)

	// Eigenvalues come out ascending: column 0 is the normal direction,
	// columns 2 and 1 span the tangent plane. A vanishing largest
	// eigenvalue means every neighbor sits on one spot.
	if vals[2] < minSpreadEps {
		return tangentFrame{}, false
	}

	col := func(c int) r3.Vector {
		return r3.Vector{X: vecs.At(0, c), Y: vecs.At(1, c), Z: vecs.At(2, c)}
	}

	frame := tangentFrame{
		origin: centroid,
		u:      col(2),
		v:      col(1),
		normal: col(0),
	}
	if !finiteVec(frame.u) || !finiteVec(frame.v) || !finiteVec(frame.normal) {
		return tangentFrame{}, false
	}
	return frame, true
}

// fitQuadric fits h(u,v) = c0 + c1*u + c2*v + c3*u^2 + c4*u*v + c5*v^2 to
// the neighborhood heights over the tangent plane by least squares, then
// evaluates the surface and its gradient at (u, v).
func fitQuadric(cloud []r3.Vector, neighbors []int, frame tangentFrame, u, v float64) (r3.Vector, r3.Vector, bool) {
	k := len(neighbors)
	a := mat.NewDense(k, 6, nil)
	b := mat.NewDense(k, 1, nil)

	for row, j := range neighbors {
		d := cloud[j].Sub(frame.origin)
		uj := d.Dot(frame.u)
		vj := d.Dot(frame.v)
		hj := d.Dot(frame.normal)
		a.SetRow(row, []float64{1, uj, vj, uj * uj, uj * vj, vj * vj})
		b.Set(row, 0, hj)
	}

	var qr mat.QR
	qr.Factorize(a)

	var coef mat.Dense
	if err := qr.SolveTo(&coef, false, b); err != nil {
		return r3.Vector{}, r3.Vector{}, false
	}

	c := make([]float64, 6)
	for idx := range c {
		c[idx] = coef.At(idx, 0)
		if math.IsNaN(c[idx]) || math.IsInf(c[idx], 0) {
			return r3.Vector{}, r3.Vector{}, false
		}
	}

	h := c[0] + c[1]*u + c[2]*v + c[3]*u*u + c[4]*u*v + c[5]*v*v
	point := frame.origin.
		Add(frame.u.Mul(u)).
		Add(frame.v.Mul(v)).
		Add(frame.normal.Mul(h))

	// Surface S(u,v) = origin + U*u + V*v + N*h(u,v), so the normal is
	// (N - U*dh/du - V*dh/dv) up to normalization.
	hu := c[1] + 2*c[3]*u + c[4]*v
	hv := c[2] + c[4]*u + 2*c[5]*v
	normal := frame.normal.Sub(frame.u.Mul(hu)).Sub(frame.v.Mul(hv))
	norm := normal.Norm()
	if norm < minSpreadEps || !finiteVec(normal) {
		return r3.Vector{}, r3.Vector{}, false
	}
	normal = normal.Mul(1 / norm)

	if !finiteVec(point) {
		return r3.Vector{}, r3.Vector{}, false
	}
	return point, normal, true
}

func finiteVec(v r3.Vector) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}
