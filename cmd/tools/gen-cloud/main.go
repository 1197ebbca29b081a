// Command gen-cloud generates sample point cloud JSON for feeding the
// triangulate API.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/banshee-data/surfacer/internal/surface"
)

func main() {
	output := flag.String("o", "cloud.json", "output path")
	shape := flag.String("shape", "sphere", "cloud shape: sphere or plane")
	n := flag.Int("n", 200, "number of points")
	sigma := flag.Float64("sigma", 0.01, "noise stddev (sphere) / jitter (plane)")
	seed := flag.Int64("seed", 1, "rng seed")
	flag.Parse()

	gen := surface.NewSyntheticCloud(*seed)
	gen.Sigma = *sigma
	gen.Jitter = *sigma

	points := gen.Sphere(*n)
	if *shape == "plane" {
		points = gen.Plane(*n)
	}

	type point struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	}
	body := struct {
		Points []point `json:"points"`
	}{Points: make([]point, len(points))}
	for i, p := range points {
		body.Points[i] = point{p.X, p.Y, p.Z}
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("failed to create %s: %v", *output, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	if err := enc.Encode(body); err != nil {
		log.Fatalf("failed to encode cloud: %v", err)
	}
	log.Printf("✓ Created: %s (%d %s points)", *output, len(body.Points), *shape)
}
