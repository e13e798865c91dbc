// Package sink persists sampled tables. Writers are selected by format name,
// and each pass writes to its own file, so writers never share a destination.
package sink

import (
	"fmt"
	"sort"

	"github.com/camspipe/centroids/internal/sample"
)

// Writer persists one table to one output file.
type Writer interface {
	Write(path string, t *sample.Table) error
}

var writers = map[string]Writer{
	"csv":    csvWriter{},
	"sqlite": sqliteWriter{},
}

// ForFormat returns the writer registered for the given format name.
func ForFormat(name string) (Writer, error) {
	w := writers[name]
	if w == nil {
		return nil, fmt.Errorf("writing %q is not supported, formats: %v", name, Formats())
	}
	return w, nil
}

// Formats lists the supported output format names.
func Formats() []string {
	names := make([]string, 0, len(writers))
	for name := range writers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// columns enumerates the output schema explicitly: the time column when the
// source has one, the data variables in source order, then the point
// metadata. Every writer emits exactly these columns in this order.
func columns(t *sample.Table) []string {
	var cols []string
	if t.HasTime {
		cols = append(cols, "time")
	}
	cols = append(cols, t.Vars...)
	return append(cols, "id", "name", "country", "x", "y")
}
