package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seuros/jogo/internal/models"
)

func snap(funnel, day string, m models.Metrics) models.Snapshot {
	return models.Snapshot{FunnelID: funnel, Day: day, Metrics: m}
}

func TestSummarize(t *testing.T) {
	stats := Summarize([]models.Snapshot{
		snap("a", "2025-03-01", models.Metrics{Visitors: 2, PageViews: 5, Conversions: 1, Revenue: 10, BounceRate: 40, AvgSessionDuration: 30}),
		snap("b", "2025-03-01", models.Metrics{Visitors: 1, PageViews: 1, Revenue: 2.5, BounceRate: 20, AvgSessionDuration: 10}),
	})

	assert.Equal(t, int64(3), stats.TotalVisitors)
	assert.Equal(t, int64(6), stats.TotalPageViews)
	assert.Equal(t, int64(1), stats.TotalConversions)
	assert.Equal(t, 12.5, stats.TotalRevenue)
	assert.Equal(t, 30.0, stats.AvgBounceRate)
	assert.Equal(t, 20.0, stats.AvgSessionDuration)
	assert.Equal(t, 33.3, stats.ConversionRate)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Stats{}, Summarize(nil))
}

func TestDailySeriesSparseAndAscending(t *testing.T) {
	snapshots := []models.Snapshot{
		snap("a", "2025-03-05", models.Metrics{Visitors: 4, Conversions: 1, Revenue: 9, PageViews: 7}),
		snap("a", "2025-03-01", models.Metrics{Visitors: 1}),
		snap("b", "2025-03-05", models.Metrics{Visitors: 2, PageViews: 2}),
	}

	series := DailySeries(snapshots)
	assert.Equal(t, []DailyPoint{
		{Date: "2025-03-01", Visitors: 1},
		{Date: "2025-03-05", Visitors: 6, Conversions: 1, Revenue: 9, PageViews: 9},
	}, series)

	var visitors int64
	for _, point := range series {
		visitors += point.Visitors
	}
	assert.Equal(t, Summarize(snapshots).TotalVisitors, visitors)
}

func TestDailySeriesEmptyIsNotNil(t *testing.T) {
	series := DailySeries(nil)
	assert.NotNil(t, series)
	assert.Empty(t, series)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 66.7, Round(200.0/3, 1))
	assert.Equal(t, 12.35, Round(12.345, 2))
	assert.Equal(t, 0.0, Round(0, 1))
}
