package analytics

import (
	"context"
	"errors"

	"github.com/seuros/jogo/internal/apierr"
	"github.com/seuros/jogo/internal/calendar"
	"github.com/seuros/jogo/internal/models"
	"github.com/seuros/jogo/internal/store"
)

// DefaultTopFunnels is how many funnels the dashboard ranks.
const DefaultTopFunnels = 5

// ReportStore is the read side the reporter depends on.
type ReportStore interface {
	GetOwnedFunnel(ctx context.Context, id, userID string) (*models.Funnel, error)
	TopFunnels(ctx context.Context, userID string, limit int) ([]models.Funnel, error)
	ListSnapshots(ctx context.Context, q store.SnapshotQuery) ([]models.Snapshot, error)
	ListBreakdowns(ctx context.Context, funnelID, from, to string) ([]models.BreakdownCount, error)
}

// FunnelSummary is the compact funnel shape used in reports.
type FunnelSummary struct {
	ID     string              `json:"id"`
	Name   string              `json:"name"`
	Status models.FunnelStatus `json:"status"`
	Stats  *models.FunnelStats `json:"stats,omitempty"`
}

// Dashboard is the payload of GET /api/analytics/dashboard.
type Dashboard struct {
	Stats          Stats           `json:"stats"`
	DailyAnalytics []DailyPoint    `json:"dailyAnalytics"`
	TopFunnels     []FunnelSummary `json:"topFunnels"`
	Period         int             `json:"period"`
}

// FunnelReport is the payload of GET /api/analytics/funnel/:id.
type FunnelReport struct {
	Funnel    FunnelSummary     `json:"funnel"`
	Stats     Stats             `json:"stats"`
	Analytics []models.Snapshot `json:"analytics"`
	Period    int               `json:"period"`
}

// Totals are a user's all-time analytics sums.
type Totals struct {
	TotalVisitors    int64   `json:"totalVisitors"`
	TotalConversions int64   `json:"totalConversions"`
	TotalRevenue     float64 `json:"totalRevenue"`
}

// Reporter answers dashboard and per-funnel analytics queries.
type Reporter struct {
	store ReportStore
	cal   calendar.Calendar
	TopN  int
}

// NewReporter ranks DefaultTopFunnels funnels on the dashboard.
func NewReporter(s ReportStore, cal calendar.Calendar) *Reporter {
	return &Reporter{store: s, cal: cal, TopN: DefaultTopFunnels}
}

// Dashboard aggregates every snapshot of userID in the last days calendar days.
func (r *Reporter) Dashboard(ctx context.Context, userID string, days int) (*Dashboard, error) {
	from, to := r.cal.Window(days)
	snapshots, err := r.store.ListSnapshots(ctx, store.SnapshotQuery{UserID: userID, From: from, To: to})
	if err != nil {
		return nil, apierr.Internal("Failed to load dashboard analytics", err)
	}

	funnels, err := r.store.TopFunnels(ctx, userID, r.TopN)
	if err != nil {
		return nil, apierr.Internal("Failed to load dashboard analytics", err)
	}
	top := make([]FunnelSummary, len(funnels))
	for i := range funnels {
		stats := funnels[i].Stats
		stats.ConversionRate = Round(stats.ConversionRate, 1)
		top[i] = FunnelSummary{ID: funnels[i].ID, Name: funnels[i].Name, Status: funnels[i].Status, Stats: &stats}
	}

	return &Dashboard{
		Stats:          Summarize(snapshots),
		DailyAnalytics: DailySeries(snapshots),
		TopFunnels:     top,
		Period:         days,
	}, nil
}

// FunnelReport returns the daily snapshots of one owned funnel with their
// breakdowns. Funnels owned by someone else are reported as not found.
func (r *Reporter) FunnelReport(ctx context.Context, userID, funnelID string, days int) (*FunnelReport, error) {
	funnel, err := r.store.GetOwnedFunnel(ctx, funnelID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apierr.NotFound("Funnel not found")
	}
	if err != nil {
		return nil, apierr.Internal("Failed to load funnel analytics", err)
	}

	from, to := r.cal.Window(days)
	snapshots, err := r.store.ListSnapshots(ctx, store.SnapshotQuery{FunnelID: funnel.ID, From: from, To: to})
	if err != nil {
		return nil, apierr.Internal("Failed to load funnel analytics", err)
	}
	rows, err := r.store.ListBreakdowns(ctx, funnel.ID, from, to)
	if err != nil {
		return nil, apierr.Internal("Failed to load funnel analytics", err)
	}

	for i := range snapshots {
		if start, err := r.cal.DayStart(snapshots[i].Day); err == nil {
			snapshots[i].Date = start
		}
	}
	attachBreakdowns(snapshots, rows, funnel.Steps)

	return &FunnelReport{
		Funnel:    FunnelSummary{ID: funnel.ID, Name: funnel.Name, Status: funnel.Status},
		Stats:     Summarize(snapshots),
		Analytics: snapshots,
		Period:    days,
	}, nil
}

// UserTotals sums every snapshot the user owns, regardless of date.
func (r *Reporter) UserTotals(ctx context.Context, userID string) (Totals, error) {
	snapshots, err := r.store.ListSnapshots(ctx, store.SnapshotQuery{UserID: userID})
	if err != nil {
		return Totals{}, apierr.Internal("Failed to load user statistics", err)
	}
	stats := Summarize(snapshots)
	return Totals{
		TotalVisitors:    stats.TotalVisitors,
		TotalConversions: stats.TotalConversions,
		TotalRevenue:     stats.TotalRevenue,
	}, nil
}
