package sink

import (
	"database/sql"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camspipe/centroids/internal/sample"
)

func testTable() *sample.Table {
	return &sample.Table{
		Vars:    []string{"pm2p5"},
		HasTime: true,
		Rows: []sample.Row{
			{
				Time: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
				ID:   "DE001", Name: "Berlin", Country: "DE",
				X: 13.405, Y: 52.52,
				Values: []float64{17.25},
			},
			{
				Time: time.Date(2022, 1, 2, 0, 0, 0, 0, time.UTC),
				ID:   "DE001", Name: "Berlin", Country: "DE",
				X: 13.405, Y: 52.52,
				Values: []float64{math.NaN()},
			},
		},
	}
}

func TestForFormat(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"csv", "sqlite"} {
		w, err := ForFormat(name)
		require.NoError(t, err)
		assert.NotNil(t, w)
	}

	_, err := ForFormat("parquet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parquet")
}

func TestColumns(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]string{"time", "pm2p5", "id", "name", "country", "x", "y"},
		columns(testTable()))

	timeless := &sample.Table{Vars: []string{"pm2p5", "no2"}}
	assert.Equal(t,
		[]string{"pm2p5", "no2", "id", "name", "country", "x", "y"},
		columns(timeless))
}

func TestCSVWriter(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := ForFormat("csv")
	require.NoError(t, err)
	require.NoError(t, w.Write(path, testTable()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, recs, 3)
	assert.Equal(t, []string{"time", "pm2p5", "id", "name", "country", "x", "y"}, recs[0])
	assert.Equal(t, []string{"2022-01-01T00:00:00Z", "17.25", "DE001", "Berlin", "DE", "13.405", "52.52"}, recs[1])
	// NaN cells come out empty.
	assert.Equal(t, "", recs[2][1])
}

func TestSQLiteWriter(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.db")
	w, err := ForFormat("sqlite")
	require.NoError(t, err)
	require.NoError(t, w.Write(path, testTable()))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM samples").Scan(&n))
	assert.Equal(t, 2, n)

	var (
		ts, id, name, country string
		pm                    float64
		x, y                  float64
	)
	row := db.QueryRow(`SELECT "time", pm2p5, id, name, country, x, y FROM samples WHERE "time" = ?`,
		"2022-01-01T00:00:00Z")
	require.NoError(t, row.Scan(&ts, &pm, &id, &name, &country, &x, &y))
	assert.Equal(t, 17.25, pm)
	assert.Equal(t, "Berlin", name)
	assert.Equal(t, 13.405, x)

	// NaN cells come out NULL.
	var nulls int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM samples WHERE pm2p5 IS NULL").Scan(&nulls))
	assert.Equal(t, 1, nulls)

	t.Run("rewriting replaces the table", func(t *testing.T) {
		require.NoError(t, w.Write(path, testTable()))
		var n int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM samples").Scan(&n))
		assert.Equal(t, 2, n)
	})
}
