package surface

import (
	"log"

	"github.com/golang/geo/r3"

	"github.com/banshee-data/surfacer/internal/geom"
)

// minHullPoints is the smallest cloud that can form a non-degenerate 3D
// hull. Smaller clouds reconstruct to an empty mesh by contract.
const minHullPoints = 4

// ReconstructStats reports what a reconstruction pass did. Dropped counts
// are diagnostics, not failures; the emitted mesh is always structurally
// valid.
type ReconstructStats struct {
	// Polygons is the raw polygon count produced by the strategy before
	// sanitation.
	Polygons int
	// DroppedPolygons counts polygons discarded because they had fewer
	// than three vertices.
	DroppedPolygons int
}

// Strategy converts a smoothed cloud into a surface mesh. Implementations
// must be deterministic, must never fail (degenerate input yields an empty
// mesh), and must emit only triangles whose indices are valid positions in
// the returned vertex slice.
type Strategy interface {
	Reconstruct(cloud []r3.Vector) (geom.Mesh, ReconstructStats)
}

// ConvexHullStrategy reconstructs the surface as the 3D convex hull of the
// cloud. This is only a faithful surface approximation when the sampled
// surface is convex (or star-shaped from the centroid); that limitation is
// part of the output contract, not a bug to fix here. Other strategies can
// be plugged in through the Strategy interface.
type ConvexHullStrategy struct {
	// FanPolygons changes how polygons with more than three vertices are
	// emitted. When false (the default, matching the historical
	// behaviour), only the first three indices of such a polygon become a
	// triangle and the rest of the polygon is discarded. When true, an
	// n-gon is fanned into n-2 triangles. The two settings produce
	// materially different triangle counts, so callers must not flip this
	// flag mid-deployment without knowing their consumers.
	FanPolygons bool
}

// Reconstruct computes the hull mesh. Clouds with fewer than four points
// return an empty mesh: there is no hull to build, and that outcome is a
// defined result rather than an error.
func (s *ConvexHullStrategy) Reconstruct(cloud []r3.Vector) (geom.Mesh, ReconstructStats) {
	if len(cloud) < minHullPoints {
		return geom.Mesh{}, ReconstructStats{}
	}
	return assembleMesh(cloud, ConvexHull(cloud), s.FanPolygons)
}

// assembleMesh sanitises raw polygons into mesh triangles: polygons with
// fewer than three vertices are dropped (with a counted warning), and
// larger polygons are either truncated to their first three indices or
// fanned, per the fan flag.
func assembleMesh(cloud []r3.Vector, polygons []geom.Polygon, fan bool) (geom.Mesh, ReconstructStats) {
	mesh := geom.Mesh{Vertices: cloud}
	stats := ReconstructStats{Polygons: len(polygons)}

	for _, polygon := range polygons {
		if len(polygon) < 3 {
			stats.DroppedPolygons++
			log.Printf("[reconstruct] dropping polygon with %d vertices", len(polygon))
			continue
		}
		if fan {
			for i := 1; i < len(polygon)-1; i++ {
				mesh.Triangles = append(mesh.Triangles, geom.Triangle{polygon[0], polygon[i], polygon[i+1]})
			}
			continue
		}
		// Compatibility default: truncate to the first three indices.
		mesh.Triangles = append(mesh.Triangles, geom.Triangle{polygon[0], polygon[1], polygon[2]})
	}

	return mesh, stats
}

// Verify at compile time that *ConvexHullStrategy implements Strategy.
var _ Strategy = (*ConvexHullStrategy)(nil)
