// Package pipeline runs one export pass per (raster source, resolution) pair:
// load the grid, optionally resample its time axis, sample every working-set
// point, normalize the table and persist it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/camspipe/centroids/internal/points"
	"github.com/camspipe/centroids/internal/raster"
	"github.com/camspipe/centroids/internal/sample"
	"github.com/camspipe/centroids/internal/sink"
)

// Pass is one unit of work. Passes read shared, read-only inputs and write to
// disjoint output paths, so they can run concurrently without coordination.
type Pass struct {
	Name     string
	Source   string
	Resample raster.Period
	Out      string
}

// Result reports how one pass went. Skipped counts working-set points that
// fell outside the raster's coverage.
type Result struct {
	Pass    string
	Rows    int
	Skipped int
	Err     error
}

// Run executes every pass on its own worker and waits for all of them. A
// failing pass reports its error in its Result without stopping the others.
// A non-zero timeout bounds each pass individually, so one hanging grid load
// cannot stall the whole batch.
func Run(ctx context.Context, logger *slog.Logger, passes []Pass, pts []points.Point, w sink.Writer, timeout time.Duration) []Result {
	results := make([]Result, len(passes))
	var wg sync.WaitGroup
	for i, pass := range passes {
		i, pass := i, pass
		wg.Add(1)
		go func() {
			defer wg.Done()
			passCtx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				passCtx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			results[i] = runPass(passCtx, logger.With("pass", pass.Name), pass, pts, w)
		}()
	}
	wg.Wait()
	return results
}

// openGrid is swapped out by tests that feed in-memory grids to a pass.
var openGrid = raster.Open

func runPass(ctx context.Context, logger *slog.Logger, pass Pass, pts []points.Point, w sink.Writer) Result {
	res := Result{Pass: pass.Name, Err: ctx.Err()}
	if res.Err != nil {
		return res
	}

	g, err := openGrid(pass.Source)
	if err != nil {
		res.Err = err
		return res
	}
	logger.Info("Loaded raster", g.Summary()...)

	if g, err = raster.Resample(g, pass.Resample); err != nil {
		res.Err = err
		return res
	}

	t := sample.NewTable(g)
	for _, p := range pts {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}
		rows, err := sample.Sample(g, p)
		var oob *raster.OutOfBoundsError
		if errors.As(err, &oob) {
			logger.Warn("Point is outside raster coverage, skipping",
				"id", p.ID, "name", p.Name, "axis", oob.Axis, "value", oob.Value)
			res.Skipped++
			continue
		}
		if err != nil {
			res.Err = fmt.Errorf("sample point %s: %w", p.ID, err)
			return res
		}
		t.Rows = append(t.Rows, rows...)
	}
	t = sample.Normalize(t)

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	if err := w.Write(pass.Out, t); err != nil {
		res.Err = err
		return res
	}
	res.Rows = len(t.Rows)
	return res
}
