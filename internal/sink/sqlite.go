package sink

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/camspipe/centroids/internal/sample"
)

type sqliteWriter struct{}

// Write writes the table into a fresh `samples` table of a SQLite database at
// path, all rows in one transaction. NaN cells become NULL.
func (sqliteWriter) Write(path string, t *sample.Table) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()

	cols := columns(t)
	defs := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		typ := "DOUBLE"
		switch c {
		case "time", "id", "name", "country":
			typ = "TEXT"
		}
		defs[i] = fmt.Sprintf("%q %s", c, typ)
		marks[i] = "?"
	}
	ddl := fmt.Sprintf("DROP TABLE IF EXISTS samples; CREATE TABLE samples (%s);", strings.Join(defs, ", "))
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create table in %s: %w", path, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin %s: %w", path, err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO samples VALUES (%s)", strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("prepare insert in %s: %w", path, err)
	}
	defer stmt.Close()

	args := make([]any, 0, len(cols))
	for _, r := range t.Rows {
		args = args[:0]
		if t.HasTime {
			args = append(args, r.Time.UTC().Format(time.RFC3339))
		}
		for _, v := range r.Values {
			if math.IsNaN(v) {
				args = append(args, nil)
			} else {
				args = append(args, v)
			}
		}
		args = append(args, r.ID, r.Name, r.Country, r.X, r.Y)
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert into %s: %w", path, err)
		}
	}
	return tx.Commit()
}
