// Command cloud-plot renders scatter plots of a cloud before and after
// smoothing, one PNG per axis-aligned projection. Useful for eyeballing
// how much the moving-least-squares pass pulls noisy samples back onto
// the surface.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"

	"github.com/golang/geo/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/surfacer/internal/surface"
)

func main() {
	input := flag.String("i", "cloud.json", "input cloud JSON (as accepted by the triangulate API)")
	outputDir := flag.String("o", ".", "output directory for PNGs")
	radius := flag.Float64("radius", surface.DefaultSearchRadius, "smoothing search radius")
	polynomial := flag.Bool("polynomial", true, "enable the quadric local fit")
	flag.Parse()

	raw, err := loadCloud(*input)
	if err != nil {
		log.Fatalf("failed to load cloud: %v", err)
	}

	smoother := surface.NewSmoother(surface.SmootherParams{
		SearchRadius: *radius,
		Polynomial:   *polynomial,
	})
	result, err := smoother.Smooth(raw)
	if err != nil {
		log.Fatalf("smoothing failed: %v", err)
	}
	log.Printf("smoothed %d points (%d dropped)", len(result.Points), result.Dropped)

	projections := []struct {
		name string
		proj func(r3.Vector) (float64, float64)
	}{
		{"xy", func(v r3.Vector) (float64, float64) { return v.X, v.Y }},
		{"xz", func(v r3.Vector) (float64, float64) { return v.X, v.Z }},
		{"yz", func(v r3.Vector) (float64, float64) { return v.Y, v.Z }},
	}

	for _, projection := range projections {
		p := plot.New()
		p.Title.Text = fmt.Sprintf("cloud %s projection (raw vs smoothed)", projection.name)
		p.X.Label.Text = string(projection.name[0])
		p.Y.Label.Text = string(projection.name[1])

		rawScatter, err := plotter.NewScatter(toXYs(raw, projection.proj))
		if err != nil {
			log.Fatalf("failed to build raw scatter: %v", err)
		}
		rawScatter.GlyphStyle.Color = color.RGBA{R: 200, G: 60, B: 60, A: 255}
		rawScatter.GlyphStyle.Radius = vg.Points(1.5)

		smoothScatter, err := plotter.NewScatter(toXYs(result.Points, projection.proj))
		if err != nil {
			log.Fatalf("failed to build smoothed scatter: %v", err)
		}
		smoothScatter.GlyphStyle.Color = color.RGBA{R: 40, G: 90, B: 200, A: 255}
		smoothScatter.GlyphStyle.Radius = vg.Points(1.5)

		p.Add(rawScatter, smoothScatter)
		p.Legend.Add("raw", rawScatter)
		p.Legend.Add("smoothed", smoothScatter)

		outFile := filepath.Join(*outputDir, fmt.Sprintf("cloud_%s.png", projection.name))
		if err := p.Save(8*vg.Inch, 8*vg.Inch, outFile); err != nil {
			log.Fatalf("failed to save %s: %v", outFile, err)
		}
		log.Printf("✓ Created: %s", outFile)
	}
}

func loadCloud(path string) ([]r3.Vector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var body struct {
		Points []struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
			Z float64 `json:"z"`
		} `json:"points"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, err
	}
	points := make([]r3.Vector, len(body.Points))
	for i, p := range body.Points {
		points[i] = r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
	}
	return points, nil
}

func toXYs(points []r3.Vector, proj func(r3.Vector) (float64, float64)) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, p := range points {
		x, y := proj(p)
		xys[i] = plotter.XY{X: x, Y: y}
	}
	return xys
}
