package service

import (
	"testing"
	"time"

	"go-adminstats/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrailingWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 4, 5, 0, time.UTC)
	start, end := TrailingWindow(now, 7)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), end)

	start, end = TrailingWindow(now, 0)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestTruncateDay_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	ts := time.Date(2026, 3, 10, 2, 0, 0, 0, loc) // 2026-03-09 18:00 UTC
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), TruncateDay(ts))
}

func TestBuildGrowthSeries_ThreeOnDayFifteen(t *testing.T) {
	now := time.Date(2026, 4, 30, 9, 0, 0, 0, time.UTC)
	start, _ := TrailingWindow(now, 30)
	day15 := start.AddDate(0, 0, 14)

	series := BuildGrowthSeries(now, 30, []model.DailyCount{{Day: day15, Count: 3}})
	require.Len(t, series, 30)
	for i, p := range series {
		if i == 14 {
			assert.EqualValues(t, 3, p.Count)
			assert.Equal(t, day15.Format("2006-01-02"), p.Date)
			continue
		}
		assert.Zero(t, p.Count, "day %d", i+1)
	}
	assert.Equal(t, "2026-04-01", series[0].Date)
	assert.Equal(t, "2026-04-30", series[29].Date)
}

func TestBuildGrowthSeries_SumMatchesWindowAndIgnoresOutside(t *testing.T) {
	now := time.Date(2026, 1, 31, 23, 59, 0, 0, time.UTC)
	start, end := TrailingWindow(now, 30)
	rows := []model.DailyCount{
		{Day: start.AddDate(0, 0, -1), Count: 9}, // 窗口前
		{Day: start, Count: 2},
		{Day: start.Add(5 * time.Hour), Count: 1},
		{Day: end.Add(-time.Hour), Count: 4},
		{Day: end, Count: 7}, // 窗口后
	}
	series := BuildGrowthSeries(now, 30, rows)
	require.Len(t, series, 30)

	var sum int64
	for _, p := range series {
		sum += p.Count
	}
	assert.EqualValues(t, 7, sum)
	assert.EqualValues(t, 3, series[0].Count)
	assert.EqualValues(t, 4, series[29].Count)
}

func TestBuildGrowthSeries_LengthIndependentOfData(t *testing.T) {
	now := time.Now()
	for _, n := range []int{1, 7, 30, 90} {
		assert.Len(t, BuildGrowthSeries(now, n, nil), n)
	}
}
