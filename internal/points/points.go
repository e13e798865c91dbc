// Package points loads the city-centroid table and narrows it down to the
// working set of locations that get sampled.
package points

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Point is a single queryable location with its ranking metadata. Ids are not
// unique across the raw table; (id, longitude, latitude) is the practical key.
type Point struct {
	ID         string
	Name       string
	Country    string
	Longitude  float64
	Latitude   float64
	Population float64
}

var requiredColumns = []string{"id", "name", "country", "population", "longitude", "latitude"}

// SchemaError reports required columns missing from the point table.
type SchemaError struct {
	Path    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("point table %s is missing required columns: %s", e.Path, strings.Join(e.Missing, ", "))
}

// Load reads the point table from a CSV file. Columns beyond the required set
// are ignored.
func Load(path string) ([]Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open point table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read point table header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Path: path, Missing: missing}
	}

	var pts []Point
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read point table: %w", err)
		}
		p := Point{
			ID:      rec[cols["id"]],
			Name:    rec[cols["name"]],
			Country: rec[cols["country"]],
		}
		if p.Population, err = strconv.ParseFloat(rec[cols["population"]], 64); err != nil {
			return nil, fmt.Errorf("point table line %d: population: %w", line, err)
		}
		if p.Longitude, err = strconv.ParseFloat(rec[cols["longitude"]], 64); err != nil {
			return nil, fmt.Errorf("point table line %d: longitude: %w", line, err)
		}
		if p.Latitude, err = strconv.ParseFloat(rec[cols["latitude"]], 64); err != nil {
			return nil, fmt.Errorf("point table line %d: latitude: %w", line, err)
		}
		if p.Longitude < -180 || p.Longitude > 180 || p.Latitude < -90 || p.Latitude > 90 {
			return nil, fmt.Errorf("point table line %d: point %q has coordinates (%v, %v) outside valid degree ranges",
				line, p.ID, p.Longitude, p.Latitude)
		}
		pts = append(pts, p)
	}
	return pts, nil
}

// TopByCountry returns, for each distinct country, the n most populous points,
// or all of them when a country has fewer than n. Countries are emitted in
// sorted order; within a country points are ordered by population descending,
// with ties broken by id and then name ascending.
func TopByCountry(pts []Point, n int) []Point {
	byCountry := make(map[string][]Point)
	for _, p := range pts {
		byCountry[p.Country] = append(byCountry[p.Country], p)
	}

	countries := make([]string, 0, len(byCountry))
	for c := range byCountry {
		countries = append(countries, c)
	}
	sort.Strings(countries)

	var out []Point
	for _, c := range countries {
		group := byCountry[c]
		sort.Slice(group, func(i, j int) bool {
			if group[i].Population != group[j].Population {
				return group[i].Population > group[j].Population
			}
			if group[i].ID != group[j].ID {
				return group[i].ID < group[j].ID
			}
			return group[i].Name < group[j].Name
		})
		if len(group) > n {
			group = group[:n]
		}
		out = append(out, group...)
	}
	return out
}
