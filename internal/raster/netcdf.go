package raster

import (
	"fmt"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// TZ=UTC date --date="1900-01-01 00:00:00" +%s
const unixSecs1900 = -2208988800

// SourceLoadError reports a raster file that could not be opened or decoded.
type SourceLoadError struct {
	Path string
	Err  error
}

func (e *SourceLoadError) Error() string {
	return fmt.Sprintf("load raster %s: %v", e.Path, e.Err)
}

func (e *SourceLoadError) Unwrap() error { return e.Err }

// Names under which the spatial axes appear. Reprojected sources use x/y,
// raw reanalysis files use longitude/latitude.
var (
	xAxisNames = []string{"x", "longitude", "lon"}
	yAxisNames = []string{"y", "latitude", "lat"}
)

// Open loads a NetCDF raster into memory: both spatial axes, the time axis if
// one exists, and every float variable laid out over (y, x) or (time, y, x).
func Open(path string) (*Grid, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, &SourceLoadError{Path: path, Err: err}
	}
	defer nc.Close()

	g := &Grid{}
	xName, err := loadAxis(nc, xAxisNames, &g.X)
	if err != nil {
		return nil, &SourceLoadError{Path: path, Err: err}
	}
	yName, err := loadAxis(nc, yAxisNames, &g.Y)
	if err != nil {
		return nil, &SourceLoadError{Path: path, Err: err}
	}
	if g.Time, err = loadTime(nc); err != nil {
		return nil, &SourceLoadError{Path: path, Err: err}
	}

	coords := map[string]bool{xName: true, yName: true, "time": true}
	for _, name := range nc.ListVariables() {
		if coords[name] {
			continue
		}
		vr, err := nc.GetVariable(name)
		if err != nil {
			return nil, &SourceLoadError{Path: path, Err: fmt.Errorf("variable %s: %w", name, err)}
		}
		data, ok := flatten(vr.Values)
		if !ok {
			// Scalar bookkeeping variables (CRS descriptors and the like)
			// carry no gridded data.
			continue
		}
		cells := len(g.Y) * len(g.X)
		want := g.Steps() * cells
		if len(data) != want {
			if len(g.Time) > 0 && len(data) == cells {
				// Static layer in a time-dimensioned file, not sampleable
				// alongside the time series.
				continue
			}
			return nil, &SourceLoadError{Path: path,
				Err: fmt.Errorf("variable %s has %d values, want %d", name, len(data), want)}
		}
		g.Vars = append(g.Vars, Variable{Name: name, Data: data})
	}
	if len(g.Vars) == 0 {
		return nil, &SourceLoadError{Path: path, Err: fmt.Errorf("no gridded data variables")}
	}
	return g, nil
}

func loadAxis(nc api.Group, names []string, dst *[]float64) (string, error) {
	for _, name := range names {
		vg, err := nc.GetVarGetter(name)
		if err != nil {
			continue
		}
		v, err := vg.Values()
		if err != nil {
			return "", fmt.Errorf("axis %s: %w", name, err)
		}
		axis, ok := floats1D(v)
		if !ok || len(axis) == 0 {
			return "", fmt.Errorf("axis %s: not a numeric coordinate array", name)
		}
		*dst = axis
		return name, nil
	}
	return "", fmt.Errorf("no %s axis found", names[0])
}

// loadTime decodes the time axis from hours since 1900-01-01 UTC, the epoch
// convention of the CAMS/ERA family of sources. A missing time variable is
// fine: the grid is then a single timeless layer.
func loadTime(nc api.Group) ([]time.Time, error) {
	vg, err := nc.GetVarGetter("time")
	if err != nil {
		return nil, nil
	}
	v, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("time axis: %w", err)
	}
	hours, ok := floats1D(v)
	if !ok {
		return nil, fmt.Errorf("time axis: unsupported value type %T", v)
	}
	ts := make([]time.Time, len(hours))
	for i, h := range hours {
		ts[i] = time.Unix(int64(h)*3600+unixSecs1900, 0).UTC()
	}
	return ts, nil
}

// floats1D converts a 1-D coordinate array of any supported element type.
func floats1D(v any) ([]float64, bool) {
	switch vv := v.(type) {
	case []float64:
		return vv, true
	case []float32:
		out := make([]float64, len(vv))
		for i, x := range vv {
			out[i] = float64(x)
		}
		return out, true
	case []int32:
		out := make([]float64, len(vv))
		for i, x := range vv {
			out[i] = float64(x)
		}
		return out, true
	case []int64:
		out := make([]float64, len(vv))
		for i, x := range vv {
			out[i] = float64(x)
		}
		return out, true
	}
	return nil, false
}

// flatten converts a 2-D (y, x) or 3-D (time, y, x) float variable into one
// contiguous []float64.
func flatten(v any) ([]float64, bool) {
	switch vv := v.(type) {
	case [][]float32:
		var out []float64
		for _, row := range vv {
			for _, x := range row {
				out = append(out, float64(x))
			}
		}
		return out, true
	case [][]float64:
		var out []float64
		for _, row := range vv {
			out = append(out, row...)
		}
		return out, true
	case [][][]float32:
		var out []float64
		for _, plane := range vv {
			for _, row := range plane {
				for _, x := range row {
					out = append(out, float64(x))
				}
			}
		}
		return out, true
	case [][][]float64:
		var out []float64
		for _, plane := range vv {
			for _, row := range plane {
				out = append(out, row...)
			}
		}
		return out, true
	}
	return nil, false
}
