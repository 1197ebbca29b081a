package surface

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"
)

// estimatedPointsPerCell is used for initial spatial index capacity estimation.
const estimatedPointsPerCell = 4

// cellKey identifies one voxel of the uniform grid.
type cellKey struct {
	x, y, z int32
}

// SpatialIndex provides radius neighborhood queries over a fixed point set
// using a uniform voxel grid. Cell size should approximately match the
// query radius so a query only has to scan the 3x3x3 cell neighborhood.
//
// The index is built once per cloud and is read-only afterwards; concurrent
// queries are safe, concurrent Build calls are not.
type SpatialIndex struct {
	CellSize float64
	Grid     map[cellKey][]int
}

// NewSpatialIndex creates a spatial index with the specified cell size.
func NewSpatialIndex(cellSize float64) *SpatialIndex {
	return &SpatialIndex{
		CellSize: cellSize,
		Grid:     make(map[cellKey][]int),
	}
}

// Build populates the spatial index from a point cloud. Point indices keep
// their input positions so query results map directly back to the cloud.
func (si *SpatialIndex) Build(points []r3.Vector) {
	si.Grid = make(map[cellKey][]int, len(points)/estimatedPointsPerCell+1)
	for i, p := range points {
		key := si.cellOf(p)
		si.Grid[key] = append(si.Grid[key], i)
	}
}

func (si *SpatialIndex) cellOf(p r3.Vector) cellKey {
	return cellKey{
		x: int32(math.Floor(p.X / si.CellSize)),
		y: int32(math.Floor(p.Y / si.CellSize)),
		z: int32(math.Floor(p.Z / si.CellSize)),
	}
}

// RadiusQuery returns the indices of all points within radius of
// points[idx], including idx itself. Results are sorted ascending so that
// downstream fitting is deterministic regardless of grid iteration order.
// Radius must not exceed the cell size, otherwise neighbors outside the
// 3x3x3 cell block are missed.
func (si *SpatialIndex) RadiusQuery(points []r3.Vector, idx int, radius float64) []int {
	p := points[idx]
	center := si.cellOf(p)
	r2 := radius * radius

	var neighbors []int
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dz := int32(-1); dz <= 1; dz++ {
				key := cellKey{center.x + dx, center.y + dy, center.z + dz}
				for _, candidate := range si.Grid[key] {
					d := points[candidate].Sub(p)
					if d.Dot(d) <= r2 {
						neighbors = append(neighbors, candidate)
					}
				}
			}
		}
	}

	sort.Ints(neighbors)
	return neighbors
}
