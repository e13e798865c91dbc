// Package raster holds a labeled multi-dimensional grid in memory and the
// lookups and reductions the sampler needs on top of it.
package raster

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Grid is a labeled grid with two spatial axes and an optional time axis.
// Axes are monotonic, ascending or descending. Values are never mutated once
// loaded; reductions produce new Grids.
type Grid struct {
	X    []float64
	Y    []float64
	Time []time.Time // nil when the source has no time dimension
	Vars []Variable
}

// Variable is one data variable defined over the grid, flattened in
// [time][y][x] order ([y][x] when the grid has no time axis).
type Variable struct {
	Name string
	Data []float64
}

// Steps returns the number of timesteps, which is 1 for a timeless grid so
// that every grid yields at least one row per sampled point.
func (g *Grid) Steps() int {
	if len(g.Time) == 0 {
		return 1
	}
	return len(g.Time)
}

// ValueAt returns variable vi at timestep t and cell (yi, xi).
func (g *Grid) ValueAt(vi, t, yi, xi int) float64 {
	return g.Vars[vi].Data[(t*len(g.Y)+yi)*len(g.X)+xi]
}

// Summary returns dataset facts suitable for logging.
func (g *Grid) Summary() []any {
	names := make([]string, len(g.Vars))
	for i, v := range g.Vars {
		names[i] = v.Name
	}
	return []any{
		"vars", names,
		"xCnt", len(g.X),
		"yCnt", len(g.Y),
		"tsCnt", len(g.Time),
	}
}

// OutOfBoundsError reports a query coordinate outside the closed range of an
// axis. Values beyond the first or last coordinate are never snapped to the
// edge cell.
type OutOfBoundsError struct {
	Axis     string
	Value    float64
	Min, Max float64
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("coordinate %v is outside the %s axis range [%v, %v]", e.Value, e.Axis, e.Min, e.Max)
}

// NearestX returns the index of the x coordinate closest to v.
func (g *Grid) NearestX(v float64) (int, error) {
	return nearestIndex(g.X, "x", v)
}

// NearestY returns the index of the y coordinate closest to v.
func (g *Grid) NearestY(v float64) (int, error) {
	return nearestIndex(g.Y, "y", v)
}

// nearestIndex binary-searches a monotonic axis for the coordinate closest to
// v. A query exactly between two coordinates resolves to the lower index.
func nearestIndex(axis []float64, name string, v float64) (int, error) {
	n := len(axis)
	if n == 0 {
		return 0, &OutOfBoundsError{Axis: name, Value: v}
	}
	lo, hi := axis[0], axis[n-1]
	descending := lo > hi
	if descending {
		lo, hi = hi, lo
	}
	if v < lo || v > hi || math.IsNaN(v) {
		return 0, &OutOfBoundsError{Axis: name, Value: v, Min: lo, Max: hi}
	}

	// Index of the first coordinate >= v in axis order.
	i := sort.Search(n, func(i int) bool {
		if descending {
			return axis[i] <= v
		}
		return axis[i] >= v
	})
	if i == 0 {
		return 0, nil
	}
	if i == n {
		return n - 1, nil
	}
	if math.Abs(v-axis[i-1]) <= math.Abs(axis[i]-v) {
		return i - 1, nil
	}
	return i, nil
}
