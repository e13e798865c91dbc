package sink

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/camspipe/centroids/internal/sample"
)

type csvWriter struct{}

// Write writes the table as a CSV file with a header row. NaN cells become
// empty fields and timestamps are RFC 3339 in UTC.
func (csvWriter) Write(path string, t *sample.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns(t)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	rec := make([]string, 0, len(columns(t)))
	for _, r := range t.Rows {
		rec = rec[:0]
		if t.HasTime {
			rec = append(rec, r.Time.UTC().Format(time.RFC3339))
		}
		for _, v := range r.Values {
			rec = append(rec, formatValue(v))
		}
		rec = append(rec,
			r.ID, r.Name, r.Country,
			strconv.FormatFloat(r.X, 'f', -1, 64),
			strconv.FormatFloat(r.Y, 'f', -1, 64))
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
