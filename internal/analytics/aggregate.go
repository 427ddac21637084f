package analytics

import (
	"math"
	"sort"

	"github.com/seuros/jogo/internal/models"
)

// Stats summarises a set of daily snapshots.
type Stats struct {
	TotalVisitors      int64   `json:"totalVisitors"`
	TotalPageViews     int64   `json:"totalPageViews"`
	TotalConversions   int64   `json:"totalConversions"`
	TotalRevenue       float64 `json:"totalRevenue"`
	AvgBounceRate      float64 `json:"avgBounceRate"`
	AvgSessionDuration float64 `json:"avgSessionDuration"`
	ConversionRate     float64 `json:"conversionRate"`
}

// DailyPoint is one day of the dashboard series.
type DailyPoint struct {
	Date        string  `json:"date"`
	Visitors    int64   `json:"visitors"`
	Conversions int64   `json:"conversions"`
	Revenue     float64 `json:"revenue"`
	PageViews   int64   `json:"pageViews"`
}

// Summarize sums counters across snapshots. Bounce rate and session duration
// are unweighted means of the per-snapshot values.
func Summarize(snapshots []models.Snapshot) Stats {
	var (
		stats          Stats
		bounce, series float64
	)
	for _, snap := range snapshots {
		stats.TotalVisitors += snap.Metrics.Visitors
		stats.TotalPageViews += snap.Metrics.PageViews
		stats.TotalConversions += snap.Metrics.Conversions
		stats.TotalRevenue += snap.Metrics.Revenue
		bounce += snap.Metrics.BounceRate
		series += snap.Metrics.AvgSessionDuration
	}
	if n := float64(len(snapshots)); n > 0 {
		stats.AvgBounceRate = bounce / n
		stats.AvgSessionDuration = series / n
	}
	stats.ConversionRate = Round(models.ConversionRate(stats.TotalConversions, stats.TotalVisitors), 1)
	return stats
}

// DailySeries groups snapshots by day, ascending. Days without snapshots are omitted.
func DailySeries(snapshots []models.Snapshot) []DailyPoint {
	byDay := make(map[string]*DailyPoint)
	for _, snap := range snapshots {
		point, ok := byDay[snap.Day]
		if !ok {
			point = &DailyPoint{Date: snap.Day}
			byDay[snap.Day] = point
		}
		point.Visitors += snap.Metrics.Visitors
		point.Conversions += snap.Metrics.Conversions
		point.Revenue += snap.Metrics.Revenue
		point.PageViews += snap.Metrics.PageViews
	}

	series := make([]DailyPoint, 0, len(byDay))
	for _, point := range byDay {
		series = append(series, *point)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
