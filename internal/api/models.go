package api

import (
	"github.com/golang/geo/r3"

	"github.com/banshee-data/surfacer/internal/geom"
)

// Point is the wire representation of one input sample.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// TriangulateRequest is the body of POST /api/triangulate. The optional
// fields override the server's tuning defaults for this request only.
type TriangulateRequest struct {
	Points []Point `json:"points"`

	SearchRadius *float64 `json:"radius,omitempty"`
	Polynomial   *bool    `json:"polynomial,omitempty"`
	FanPolygons  *bool    `json:"fan_polygons,omitempty"`
}

// MeshMsg is the wire representation of a reconstructed mesh: vertex
// positions plus fixed-size vertex-index triples per triangle.
type MeshMsg struct {
	Vertices  []Point  `json:"vertices"`
	Triangles [][3]int `json:"triangles"`
}

// RunStatsMsg reports per-run diagnostics alongside the mesh.
type RunStatsMsg struct {
	InputPoints     int     `json:"input_points"`
	SmoothedPoints  int     `json:"smoothed_points"`
	DroppedPoints   int     `json:"dropped_points"`
	Polygons        int     `json:"polygons"`
	DroppedPolygons int     `json:"dropped_polygons"`
	SmoothMillis    float64 `json:"smooth_ms"`
	ReconstructMS   float64 `json:"reconstruct_ms"`
}

// TriangulateResponse is the body of a successful triangulate call.
type TriangulateResponse struct {
	RunID string      `json:"run_id"`
	Mesh  MeshMsg     `json:"mesh"`
	Stats RunStatsMsg `json:"stats"`
}

// toVectors converts wire points into the pipeline's vector representation.
func toVectors(points []Point) []r3.Vector {
	vectors := make([]r3.Vector, len(points))
	for i, p := range points {
		vectors[i] = r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
	}
	return vectors
}

// meshToMsg converts a reconstructed mesh into its wire representation.
func meshToMsg(m geom.Mesh) MeshMsg {
	msg := MeshMsg{
		Vertices:  make([]Point, len(m.Vertices)),
		Triangles: make([][3]int, len(m.Triangles)),
	}
	for i, v := range m.Vertices {
		msg.Vertices[i] = Point{X: v.X, Y: v.Y, Z: v.Z}
	}
	for i, t := range m.Triangles {
		msg.Triangles[i] = [3]int(t)
	}
	return msg
}
