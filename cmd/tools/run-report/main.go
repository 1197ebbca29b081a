// Command run-report renders an HTML report of recorded reconstruction
// runs from the run database: per-run point and triangle counts plus a
// drop-rate series, charted with ECharts.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/surfacer/internal/db"
)

func main() {
	dbFile := flag.String("db", "surfacer.db", "path to the run record database")
	output := flag.String("o", "run-report.html", "output HTML path")
	limit := flag.Int("n", 200, "number of recent runs to include")
	flag.Parse()

	database, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	runs, err := database.RecentRuns(*limit)
	if err != nil {
		log.Fatalf("failed to load runs: %v", err)
	}
	if len(runs) == 0 {
		log.Fatal("no runs recorded yet")
	}

	summary, err := database.Summary()
	if err != nil {
		log.Fatalf("failed to summarise runs: %v", err)
	}

	// RecentRuns is newest first; chart oldest to newest.
	labels := make([]string, 0, len(runs))
	inputSeries := make([]opts.BarData, 0, len(runs))
	triangleSeries := make([]opts.BarData, 0, len(runs))
	dropSeries := make([]opts.LineData, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		run := runs[i]
		labels = append(labels, run.RunID[:8])
		inputSeries = append(inputSeries, opts.BarData{Value: run.InputPoints})
		triangleSeries = append(triangleSeries, opts.BarData{Value: run.Triangles})
		dropRate := 0.0
		if run.InputPoints > 0 {
			dropRate = float64(run.DroppedPoints) / float64(run.InputPoints)
		}
		dropSeries = append(dropSeries, opts.LineData{Value: dropRate})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Reconstruction Runs", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title: "Reconstruction runs",
			Subtitle: fmt.Sprintf("%d runs, avg %.0f input points, avg %.0f triangles",
				summary.Runs, summary.AvgInputPoints, summary.AvgTriangles),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("input points", inputSeries)
	bar.AddSeries("triangles", triangleSeries)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Point drop rate"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	line.SetXAxis(labels)
	line.AddSeries("dropped / input", dropSeries)

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("failed to create %s: %v", *output, err)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		log.Fatalf("failed to render bar chart: %v", err)
	}
	if err := line.Render(f); err != nil {
		log.Fatalf("failed to render line chart: %v", err)
	}
	log.Printf("✓ Created: %s (%d runs)", *output, len(runs))
}
