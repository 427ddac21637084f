package analytics

import (
	"sort"

	"github.com/seuros/jogo/internal/models"
)

// attachBreakdowns folds stored breakdown counters into their snapshots.
// Step analytics follow the funnel's step order; unknown step ids trail.
func attachBreakdowns(snapshots []models.Snapshot, rows []models.BreakdownCount, steps []models.Step) {
	byDay := make(map[string][]models.BreakdownCount)
	for _, row := range rows {
		byDay[row.Day] = append(byDay[row.Day], row)
	}

	for i := range snapshots {
		snap := &snapshots[i]
		snap.StepAnalytics = []models.StepAnalytics{}
		snap.TrafficSources = []models.SourceCount{}
		snap.GeoData = []models.GeoCount{}
		snap.Referrers = []models.ReferrerCount{}

		var stepRows []models.BreakdownCount
		for _, row := range byDay[snap.Day] {
			switch row.Dimension {
			case models.DimensionStep:
				stepRows = append(stepRows, row)
			case models.DimensionSource:
				snap.TrafficSources = append(snap.TrafficSources, models.SourceCount{
					Source: row.Key, Visitors: row.Visitors, Conversions: row.Conversions,
				})
			case models.DimensionCountry:
				snap.GeoData = append(snap.GeoData, models.GeoCount{
					Country: row.Key, Visitors: row.Visitors, Conversions: row.Conversions,
				})
			case models.DimensionReferrer:
				snap.Referrers = append(snap.Referrers, models.ReferrerCount{
					Domain: row.Key, Visitors: row.Visitors, Conversions: row.Conversions,
				})
			case models.DimensionDevice:
				switch row.Key {
				case DeviceMobile:
					snap.DeviceBreakdown.Mobile += row.Visitors
				case DeviceTablet:
					snap.DeviceBreakdown.Tablet += row.Visitors
				default:
					snap.DeviceBreakdown.Desktop += row.Visitors
				}
			}
		}

		sort.SliceStable(snap.TrafficSources, func(a, b int) bool {
			return snap.TrafficSources[a].Visitors > snap.TrafficSources[b].Visitors
		})
		sort.SliceStable(snap.GeoData, func(a, b int) bool {
			return snap.GeoData[a].Visitors > snap.GeoData[b].Visitors
		})
		sort.SliceStable(snap.Referrers, func(a, b int) bool {
			return snap.Referrers[a].Visitors > snap.Referrers[b].Visitors
		})
		snap.StepAnalytics = stepAnalytics(stepRows, steps, snap.Metrics.Conversions)
	}
}

// stepAnalytics orders step counters by funnel order and computes drop-off:
// the share of a step's visitors that did not reach the next step, or for the
// last step, did not convert.
func stepAnalytics(rows []models.BreakdownCount, steps []models.Step, conversions int64) []models.StepAnalytics {
	position := make(map[string]int, len(steps))
	types := make(map[string]models.StepType, len(steps))
	for i, step := range steps {
		position[step.ID] = i
		types[step.ID] = step.Type
	}

	sort.SliceStable(rows, func(a, b int) bool {
		pa, okA := position[rows[a].Key]
		pb, okB := position[rows[b].Key]
		switch {
		case okA && okB:
			return pa < pb
		case okA != okB:
			return okA
		default:
			return rows[a].Key < rows[b].Key
		}
	})

	out := make([]models.StepAnalytics, len(rows))
	for i, row := range rows {
		next := conversions
		if i+1 < len(rows) {
			next = rows[i+1].Visitors
		}
		out[i] = models.StepAnalytics{
			StepID:      row.Key,
			StepType:    types[row.Key],
			Visitors:    row.Visitors,
			Conversions: row.Conversions,
			DropoffRate: dropoff(row.Visitors, next),
		}
	}
	return out
}

func dropoff(visitors, reached int64) float64 {
	if visitors <= 0 {
		return 0
	}
	lost := visitors - reached
	if lost < 0 {
		lost = 0
	}
	return Round(float64(lost)/float64(visitors)*100, 1)
}
