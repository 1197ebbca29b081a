package surface

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"

	"github.com/banshee-data/surfacer/internal/geom"
)

// hullEpsilonScale converts the cloud's bounding box diagonal into the
// tolerance used for visibility and degeneracy tests.
const hullEpsilonScale = 1e-9

// hullFace is one oriented triangular facet of the hull under construction.
type hullFace struct {
	a, b, c int
	normal  r3.Vector
}

// ConvexHull computes the 3D convex hull of the cloud by incremental
// insertion and returns its boundary facets as index polygons into the
// input slice.
//
// Degenerate inputs take defined fallback paths instead of failing:
// fewer than 3 distinct points or a collinear cloud yield no polygons, and
// a coplanar cloud yields the 2D hull of the projected points emitted as a
// deterministic triangle fan around its first hull vertex.
//
// The facet list is deterministic for a fixed input order: points are
// inserted in input order and facets are emitted in canonical sorted order.
func ConvexHull(points []r3.Vector) []geom.Polygon {
	if len(points) < 3 {
		return nil
	}

	eps := hullEpsilon(points)
	if eps == 0 {
		return nil // all points coincident
	}

	i0, i1, i2, i3, rank := initialSimplex(points, eps)
	switch rank {
	case 0, 1:
		return nil // coincident or collinear
	case 2:
		return planarFan(points, i0, i1, i2, eps)
	}

	interior := points[i0].Add(points[i1]).Add(points[i2]).Add(points[i3]).Mul(0.25)

	faces := []hullFace{
		orientFace(points, i0, i1, i2, interior),
		orientFace(points, i0, i1, i3, interior),
		orientFace(points, i0, i2, i3, interior),
		orientFace(points, i1, i2, i3, interior),
	}

	inSimplex := map[int]bool{i0: true, i1: true, i2: true, i3: true}
	for i := range points {
		if inSimplex[i] {
			continue
		}
		faces = addPoint(points, faces, i, interior, eps)
	}

	return canonicalPolygons(faces)
}

// hullEpsilon derives the geometric tolerance from the bounding box
// diagonal. Returns 0 when the cloud has no extent.
func hullEpsilon(points []r3.Vector) float64 {
	min := points[0]
	max := points[0]
	for _, p := range points[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		min.Z = math.Min(min.Z, p.Z)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
		max.Z = math.Max(max.Z, p.Z)
	}
	diag := max.Sub(min).Norm()
	if diag == 0 {
		return 0
	}
	// Floor the tolerance so meshes near the origin are not over-resolved.
	return math.Max(hullEpsilonScale*diag, 1e-12)
}

// initialSimplex picks four affinely independent points: the first point,
// the farthest point from it, the farthest point from that line, and the
// farthest point from that plane. rank reports how many independent
// directions were found (1 = collinear, 2 = coplanar, 3 = full simplex).
func initialSimplex(points []r3.Vector, eps float64) (i0, i1, i2, i3, rank int) {
	i0 = 0

	best := eps
	i1 = -1
	for i, p := range points {
		if d := p.Sub(points[i0]).Norm(); d > best {
			best, i1 = d, i
		}
	}
	if i1 < 0 {
		return i0, 0, 0, 0, 0
	}

	dir := points[i1].Sub(points[i0])
	dirNorm := dir.Norm()
	best = eps
	i2 = -1
	for i, p := range points {
		// Distance from the line through i0 and i1.
		if d := p.Sub(points[i0]).Cross(dir).Norm() / dirNorm; d > best {
			best, i2 = d, i
		}
	}
	if i2 < 0 {
		return i0, i1, 0, 0, 1
	}

	planeNormal := dir.Cross(points[i2].Sub(points[i0]))
	planeNorm := planeNormal.Norm()
	best = eps
	i3 = -1
	for i, p := range points {
		if d := math.Abs(p.Sub(points[i0]).Dot(planeNormal)) / planeNorm; d > best {
			best, i3 = d, i
		}
	}
	if i3 < 0 {
		return i0, i1, i2, 0, 2
	}
	return i0, i1, i2, i3, 3
}

// orientFace builds a facet wound so its normal points away from interior.
func orientFace(points []r3.Vector, a, b, c int, interior r3.Vector) hullFace {
	normal := points[b].Sub(points[a]).Cross(points[c].Sub(points[a]))
	if normal.Dot(interior.Sub(points[a])) > 0 {
		b, c = c, b
		normal = normal.Mul(-1)
	}
	return hullFace{a: a, b: b, c: c, normal: normal}
}

// addPoint inserts points[i] into the hull: facets visible from the point
// are removed and the resulting horizon loop is re-triangulated against
// the point. Points inside (or on) the current hull leave it unchanged.
func addPoint(points []r3.Vector, faces []hullFace, i int, interior r3.Vector, eps float64) []hullFace {
	p := points[i]

	visible := make([]bool, len(faces))
	anyVisible := false
	for fi, f := range faces {
		// Normalize the offset test by facet scale so sliver facets do not
		// skew visibility.
		if f.normal.Dot(p.Sub(points[f.a])) > eps*math.Max(1, f.normal.Norm()) {
			visible[fi] = true
			anyVisible = true
		}
	}
	if !anyVisible {
		return faces
	}

	// Directed edges of the visible region; a horizon edge is one whose
	// reverse is not part of the region.
	type edge struct{ from, to int }
	edges := make(map[edge]bool)
	for fi, f := range faces {
		if !visible[fi] {
			continue
		}
		edges[edge{f.a, f.b}] = true
		edges[edge{f.b, f.c}] = true
		edges[edge{f.c, f.a}] = true
	}

	kept := faces[:0]
	var horizon []edge
	for fi, f := range faces {
		if !visible[fi] {
			kept = append(kept, f)
			continue
		}
		for _, e := range []edge{{f.a, f.b}, {f.b, f.c}, {f.c, f.a}} {
			if !edges[edge{e.to, e.from}] {
				horizon = append(horizon, e)
			}
		}
	}

	for _, e := range horizon {
		kept = append(kept, orientFace(points, e.from, e.to, i, interior))
	}
	return kept
}

// planarFan handles the coplanar degenerate case: the 2D convex hull of
// the points projected onto their common plane, fanned into triangles
// around the lexicographically first hull vertex.
func planarFan(points []r3.Vector, i0, i1, i2 int, eps float64) []geom.Polygon {
	e1 := points[i1].Sub(points[i0])
	e1 = e1.Mul(1 / e1.Norm())
	planeNormal := e1.Cross(points[i2].Sub(points[i0]))
	planeNormal = planeNormal.Mul(1 / planeNormal.Norm())
	e2 := planeNormal.Cross(e1)

	type uv struct {
		u, v float64
		idx  int
	}
	coords := make([]uv, len(points))
	for i, p := range points {
		d := p.Sub(points[i0])
		coords[i] = uv{u: d.Dot(e1), v: d.Dot(e2), idx: i}
	}

	sort.Slice(coords, func(a, b int) bool {
		if coords[a].u != coords[b].u {
			return coords[a].u < coords[b].u
		}
		if coords[a].v != coords[b].v {
			return coords[a].v < coords[b].v
		}
		return coords[a].idx < coords[b].idx
	})

	// Andrew's monotone chain; strictly convex turns only, so duplicate
	// and collinear points never enter the hull loop.
	cross := func(o, a, b uv) float64 {
		return (a.u-o.u)*(b.v-o.v) - (a.v-o.v)*(b.u-o.u)
	}

	var lower, upper []uv
	for _, c := range coords {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], c) <= eps {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, c)
	}
	for i := len(coords) - 1; i >= 0; i-- {
		c := coords[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], c) <= eps {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, c)
	}

	loop := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	if len(loop) < 3 {
		return nil
	}

	polys := make([]geom.Polygon, 0, len(loop)-2)
	for i := 1; i < len(loop)-1; i++ {
		polys = append(polys, geom.Polygon{loop[0].idx, loop[i].idx, loop[i+1].idx})
	}
	return polys
}

// canonicalPolygons converts facets to polygons in a canonical order:
// each facet is rotated so its smallest index leads (winding preserved)
// and the list is sorted lexicographically.
func canonicalPolygons(faces []hullFace) []geom.Polygon {
	polys := make([]geom.Polygon, 0, len(faces))
	for _, f := range faces {
		idx := [3]int{f.a, f.b, f.c}
		for idx[0] > idx[1] || idx[0] > idx[2] {
			idx[0], idx[1], idx[2] = idx[1], idx[2], idx[0]
		}
		polys = append(polys, geom.Polygon{idx[0], idx[1], idx[2]})
	}
	sort.Slice(polys, func(a, b int) bool {
		pa, pb := polys[a], polys[b]
		if pa[0] != pb[0] {
			return pa[0] < pb[0]
		}
		if pa[1] != pb[1] {
			return pa[1] < pb[1]
		}
		return pa[2] < pb[2]
	})
	return polys
}
