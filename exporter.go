// Command centroids turns gridded air-quality rasters into per-city
// time-series tables: for the top cities of each country it extracts the
// nearest grid cell's full time series from each raster source and writes one
// flat table per (source, resolution) pass.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/camspipe/centroids/internal/pipeline"
	"github.com/camspipe/centroids/internal/points"
	"github.com/camspipe/centroids/internal/raster"
	"github.com/camspipe/centroids/internal/sink"
)

var (
	pointsFile    = flag.String("points", "", "path to the city-centroid table in CSV format")
	reanalysis    = flag.String("reanalysis", "", "path to the reanalysis raster in NetCDF format")
	forecast      = flag.String("forecast", "", "path to the forecast raster in NetCDF format")
	outDir        = flag.String("outDir", ".", "directory for the output tables")
	format        = flag.String("format", "csv", "output format, one of: csv, sqlite")
	topN          = flag.Int("topN", 15, "number of most populous cities kept per country")
	resampleDaily = flag.Bool("resampleDaily", false, "reduce hourly sources to daily means before sampling")
	passTimeout   = flag.Duration("passTimeout", 0, "deadline per pass, 0 means none")
)

func main() {
	flag.Parse()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	writer, err := sink.ForFormat(*format)
	if err != nil {
		logger.Error("Could not select an output format", "err", err)
		os.Exit(1)
	}

	pts, err := points.Load(*pointsFile)
	if err != nil {
		logger.Error("Could not load the point table", "err", err)
		os.Exit(1)
	}
	working := points.TopByCountry(pts, *topN)
	logger.Info("Selected working set", "selected", len(working), "candidates", len(pts), "topN", *topN)

	rawPeriod := raster.PeriodNone
	if *resampleDaily {
		rawPeriod = raster.PeriodDaily
	}
	ext := *format
	if ext == "sqlite" {
		ext = "db"
	}
	var passes []pipeline.Pass
	if *forecast != "" {
		passes = append(passes, pipeline.Pass{
			Name:     "forecast-1D",
			Source:   *forecast,
			Resample: rawPeriod,
			Out:      filepath.Join(*outDir, "centroids-forecast-1D."+ext),
		})
	}
	if *reanalysis != "" {
		passes = append(passes,
			pipeline.Pass{
				Name:     "reanalysis-1D",
				Source:   *reanalysis,
				Resample: rawPeriod,
				Out:      filepath.Join(*outDir, "centroids-reanalysis-1D."+ext),
			},
			pipeline.Pass{
				Name:     "reanalysis-Y",
				Source:   *reanalysis,
				Resample: raster.PeriodYearly,
				Out:      filepath.Join(*outDir, "centroids-reanalysis-Y."+ext),
			})
	}
	if len(passes) == 0 {
		logger.Error("No raster sources given, nothing to do")
		os.Exit(1)
	}

	start := time.Now()
	results := pipeline.Run(context.Background(), logger, passes, working, writer, *passTimeout)
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			logger.Error("Pass failed", "pass", res.Pass, "err", res.Err)
			continue
		}
		logger.Info("Pass done", "pass", res.Pass, "rows", res.Rows, "skipped", res.Skipped)
	}
	logger.Info("Export finished", "passes", len(results), "failed", failed,
		"in", time.Since(start).Round(1*time.Second))
	if failed > 0 {
		os.Exit(1)
	}
}
