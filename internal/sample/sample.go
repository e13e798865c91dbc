// Package sample extracts per-point time series from a raster grid and shapes
// them into flat tables.
package sample

import (
	"math"
	"time"

	"github.com/camspipe/centroids/internal/points"
	"github.com/camspipe/centroids/internal/raster"
)

// Row is one output record: every data variable's value at the point's
// nearest grid cell for one timestep, plus the point's identifying metadata.
// X and Y carry the query point's coordinates rounded to 4 decimal places,
// not the matched cell's, so rows stay keyed to the analyst-facing locations
// whatever the grid resolution is.
type Row struct {
	Time    time.Time // zero when the source has no time dimension
	ID      string
	Name    string
	Country string
	X       float64
	Y       float64
	Values  []float64 // parallel to Table.Vars
}

// Table is a flat record set with one value column per data variable.
type Table struct {
	Vars    []string
	HasTime bool
	Rows    []Row
}

// Sample extracts the full time series at the grid cell nearest to p, one row
// per timestep (exactly one row for a timeless grid). It is a pure function
// of its inputs: the same point against the same grid always yields the same
// rows. Points outside the grid's coordinate range return
// *raster.OutOfBoundsError rather than snapping to an edge cell.
func Sample(g *raster.Grid, p points.Point) ([]Row, error) {
	xi, err := g.NearestX(p.Longitude)
	if err != nil {
		return nil, err
	}
	yi, err := g.NearestY(p.Latitude)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, g.Steps())
	for t := range rows {
		r := Row{
			ID:      p.ID,
			Name:    p.Name,
			Country: p.Country,
			X:       round4(p.Longitude),
			Y:       round4(p.Latitude),
			Values:  make([]float64, len(g.Vars)),
		}
		if len(g.Time) > 0 {
			r.Time = g.Time[t]
		}
		for vi := range g.Vars {
			r.Values[vi] = g.ValueAt(vi, t, yi, xi)
		}
		rows[t] = r
	}
	return rows, nil
}

// NewTable builds an empty table with the grid's column layout.
func NewTable(g *raster.Grid) *Table {
	t := &Table{HasTime: len(g.Time) > 0}
	for _, v := range g.Vars {
		t.Vars = append(t.Vars, v.Name)
	}
	return t
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// Bookkeeping columns that are artifacts of flattening a multi-dimensional
// grid and must never reach the output.
var denyColumns = map[string]bool{
	"level":       true,
	"spatial_ref": true,
}

// Normalize strips known grid-bookkeeping columns from the table, if present.
// Tables without them pass through unchanged, so normalizing twice is the
// same as normalizing once.
func Normalize(t *Table) *Table {
	var drop []int
	for i, name := range t.Vars {
		if denyColumns[name] {
			drop = append(drop, i)
		}
	}
	if len(drop) == 0 {
		return t
	}

	keep := func(i int) bool {
		for _, d := range drop {
			if i == d {
				return false
			}
		}
		return true
	}
	out := &Table{HasTime: t.HasTime}
	for i, name := range t.Vars {
		if keep(i) {
			out.Vars = append(out.Vars, name)
		}
	}
	for _, r := range t.Rows {
		nr := r
		nr.Values = make([]float64, 0, len(out.Vars))
		for i, v := range r.Values {
			if keep(i) {
				nr.Values = append(nr.Values, v)
			}
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}
