package raster

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Period is a temporal bucket width for resampling.
type Period int

const (
	PeriodNone Period = iota
	PeriodDaily
	PeriodYearly
)

func (p Period) String() string {
	switch p {
	case PeriodNone:
		return "none"
	case PeriodDaily:
		return "daily"
	case PeriodYearly:
		return "yearly"
	}
	return fmt.Sprintf("Period(%d)", int(p))
}

// ResampleError reports a resampling request the source cannot satisfy.
type ResampleError struct {
	Period Period
	Reason string
}

func (e *ResampleError) Error() string {
	return fmt.Sprintf("cannot resample to %s buckets: %s", e.Period, e.Reason)
}

// Resample groups the time axis into UTC buckets of the given period and
// replaces each bucket with the arithmetic mean of its values, independently
// per variable and per cell. NaN values are skipped, and a bucket with no
// finite values yields NaN, so gaps stay gaps instead of poisoning the mean.
// The input grid is left untouched. Daily buckets are labelled with midnight
// of the day, yearly buckets with the last day of the year.
func Resample(g *Grid, period Period) (*Grid, error) {
	if period == PeriodNone {
		return g, nil
	}
	if period != PeriodDaily && period != PeriodYearly {
		return nil, &ResampleError{Period: period, Reason: "unknown period"}
	}
	if len(g.Time) == 0 {
		return nil, &ResampleError{Period: period, Reason: "source has no time dimension"}
	}

	label := func(t time.Time) time.Time {
		t = t.UTC()
		if period == PeriodDaily {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
		return time.Date(t.Year(), 12, 31, 0, 0, 0, 0, time.UTC)
	}

	// Bucket timestep indices, keeping buckets in time order.
	var labels []time.Time
	buckets := make(map[time.Time][]int)
	for i, t := range g.Time {
		l := label(t)
		if _, ok := buckets[l]; !ok {
			labels = append(labels, l)
		}
		buckets[l] = append(buckets[l], i)
	}

	out := &Grid{X: g.X, Y: g.Y, Time: labels}
	cells := len(g.Y) * len(g.X)
	vals := make([]float64, 0, len(g.Time))
	for _, v := range g.Vars {
		data := make([]float64, len(labels)*cells)
		for bi, l := range labels {
			for c := 0; c < cells; c++ {
				vals = vals[:0]
				for _, ti := range buckets[l] {
					if x := v.Data[ti*cells+c]; !math.IsNaN(x) {
						vals = append(vals, x)
					}
				}
				m := math.NaN()
				if len(vals) > 0 {
					m = stat.Mean(vals, nil)
				}
				data[bi*cells+c] = m
			}
		}
		out.Vars = append(out.Vars, Variable{Name: v.Name, Data: data})
	}
	return out, nil
}
