package raster

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResampleYearly(t *testing.T) {
	t.Parallel()

	t.Run("three timestamps in one year collapse to their mean", func(t *testing.T) {
		t.Parallel()
		g := &Grid{
			X:    []float64{10.0},
			Y:    []float64{50.0},
			Time: []time.Time{day(2022, 1, 1), day(2022, 6, 1), day(2022, 12, 1)},
			Vars: []Variable{{Name: "pm2p5", Data: []float64{3, 6, 9}}},
		}

		got, err := Resample(g, PeriodYearly)
		require.NoError(t, err)
		require.Equal(t, []time.Time{day(2022, 12, 31)}, got.Time)
		require.Len(t, got.Vars, 1)
		assert.Equal(t, []float64{6}, got.Vars[0].Data)
	})

	t.Run("years bucket independently per cell", func(t *testing.T) {
		t.Parallel()
		g := &Grid{
			X:    []float64{10.0, 10.5},
			Y:    []float64{50.0},
			Time: []time.Time{day(2021, 3, 1), day(2021, 9, 1), day(2022, 3, 1)},
			Vars: []Variable{{Name: "pm2p5", Data: []float64{
				1, 10, // 2021-03
				3, 30, // 2021-09
				5, 50, // 2022-03
			}}},
		}

		got, err := Resample(g, PeriodYearly)
		require.NoError(t, err)
		require.Equal(t, []time.Time{day(2021, 12, 31), day(2022, 12, 31)}, got.Time)
		assert.Equal(t, []float64{2, 20, 5, 50}, got.Vars[0].Data)
	})

	t.Run("NaN values are skipped like gaps", func(t *testing.T) {
		t.Parallel()
		g := &Grid{
			X:    []float64{10.0},
			Y:    []float64{50.0},
			Time: []time.Time{day(2022, 1, 1), day(2022, 6, 1)},
			Vars: []Variable{{Name: "pm2p5", Data: []float64{4, math.NaN()}}},
		}

		got, err := Resample(g, PeriodYearly)
		require.NoError(t, err)
		assert.Equal(t, []float64{4}, got.Vars[0].Data)
	})

	t.Run("all-NaN buckets stay NaN", func(t *testing.T) {
		t.Parallel()
		g := &Grid{
			X:    []float64{10.0},
			Y:    []float64{50.0},
			Time: []time.Time{day(2022, 1, 1)},
			Vars: []Variable{{Name: "pm2p5", Data: []float64{math.NaN()}}},
		}

		got, err := Resample(g, PeriodYearly)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(got.Vars[0].Data[0]))
	})

	t.Run("input grid is not mutated", func(t *testing.T) {
		t.Parallel()
		g := &Grid{
			X:    []float64{10.0},
			Y:    []float64{50.0},
			Time: []time.Time{day(2022, 1, 1), day(2022, 6, 1)},
			Vars: []Variable{{Name: "pm2p5", Data: []float64{3, 9}}},
		}

		_, err := Resample(g, PeriodYearly)
		require.NoError(t, err)
		assert.Equal(t, []float64{3, 9}, g.Vars[0].Data)
		assert.Len(t, g.Time, 2)
	})
}

func TestResampleDaily(t *testing.T) {
	t.Parallel()

	hour := func(d, h int) time.Time {
		return time.Date(2022, 1, d, h, 0, 0, 0, time.UTC)
	}
	g := &Grid{
		X:    []float64{10.0},
		Y:    []float64{50.0},
		Time: []time.Time{hour(1, 0), hour(1, 12), hour(2, 6)},
		Vars: []Variable{{Name: "pm2p5", Data: []float64{2, 4, 7}}},
	}

	got, err := Resample(g, PeriodDaily)
	require.NoError(t, err)
	require.Equal(t, []time.Time{day(2022, 1, 1), day(2022, 1, 2)}, got.Time)
	assert.Equal(t, []float64{3, 7}, got.Vars[0].Data)
}

func TestResampleErrors(t *testing.T) {
	t.Parallel()

	t.Run("no time dimension", func(t *testing.T) {
		t.Parallel()
		g := &Grid{
			X:    []float64{10.0},
			Y:    []float64{50.0},
			Vars: []Variable{{Name: "pm2p5", Data: []float64{1}}},
		}

		_, err := Resample(g, PeriodYearly)
		var rerr *ResampleError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, PeriodYearly, rerr.Period)
	})

	t.Run("none period passes the grid through", func(t *testing.T) {
		t.Parallel()
		g := &Grid{X: []float64{10.0}, Y: []float64{50.0},
			Vars: []Variable{{Name: "pm2p5", Data: []float64{1}}}}

		got, err := Resample(g, PeriodNone)
		require.NoError(t, err)
		assert.Same(t, g, got)
	})
}
