package analytics

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/seuros/jogo/internal/apierr"
	"github.com/seuros/jogo/internal/calendar"
	"github.com/seuros/jogo/internal/logging"
	"github.com/seuros/jogo/internal/models"
	"github.com/seuros/jogo/internal/store"
)

// TrackerStore is the persistence the tracking path needs.
type TrackerStore interface {
	GetFunnel(ctx context.Context, id string) (*models.Funnel, error)
	ApplySnapshotEvent(ctx context.Context, key models.SnapshotKey, d models.MetricDelta) error
	ApplyBreakdown(ctx context.Context, key models.SnapshotKey, d models.BreakdownDelta) error
	IncrementFunnelStats(ctx context.Context, id string, d models.FunnelDelta) error
}

// CountryResolver maps a client IP to a country code.
type CountryResolver interface {
	Country(ip string) string
}

type unknownCountry struct{}

func (unknownCountry) Country(string) string { return "Unknown" }

// Tracker records events into daily snapshots and funnel totals.
type Tracker struct {
	store TrackerStore
	cal   calendar.Calendar
	geo   CountryResolver
	log   *zap.Logger
}

// NewTracker builds a tracker. A nil geo resolver reports every country as Unknown.
func NewTracker(s TrackerStore, cal calendar.Calendar, geo CountryResolver) *Tracker {
	if geo == nil {
		geo = unknownCountry{}
	}
	return &Tracker{store: s, cal: cal, geo: geo, log: logging.L()}
}

// Track applies ev. The snapshot write and the funnel-total write are two
// separate store calls; a failure between them leaves the totals behind.
func (t *Tracker) Track(ctx context.Context, ev Event) error {
	funnel, err := t.store.GetFunnel(ctx, ev.FunnelID)
	if errors.Is(err, store.ErrNotFound) {
		return apierr.NotFound("Funnel not found")
	}
	if err != nil {
		return apierr.Internal("Failed to track event", err)
	}

	key := models.SnapshotKey{FunnelID: funnel.ID, UserID: funnel.UserID, Day: t.cal.TodayKey()}
	if err := t.store.ApplySnapshotEvent(ctx, key, ev.SnapshotDelta()); err != nil {
		return apierr.Internal("Failed to track event", err)
	}

	if delta := ev.FunnelDelta(); !delta.Empty() {
		if err := t.store.IncrementFunnelStats(ctx, funnel.ID, delta); err != nil {
			return apierr.Internal("Failed to track event", err)
		}
	}

	t.recordBreakdowns(ctx, key, ev)
	return nil
}

// breakdowns lists the counters a visitor or conversion event increments.
func (t *Tracker) breakdowns(ev Event) []models.BreakdownDelta {
	var visitors, conversions int64
	switch ev.Kind {
	case models.EventVisitor:
		visitors = 1
	case models.EventConversion:
		conversions = 1
	default:
		return nil
	}

	referrer := ReferrerDomain(ev.Referrer)
	deltas := []models.BreakdownDelta{
		{Dimension: models.DimensionDevice, Key: DeviceClass(ev.UserAgent)},
		{Dimension: models.DimensionCountry, Key: t.geo.Country(ev.IP)},
		{Dimension: models.DimensionSource, Key: TrafficSource(ev.Source, referrer)},
	}
	if referrer != "" {
		deltas = append(deltas, models.BreakdownDelta{Dimension: models.DimensionReferrer, Key: referrer})
	}
	if ev.StepID != "" {
		deltas = append(deltas, models.BreakdownDelta{Dimension: models.DimensionStep, Key: ev.StepID})
	}
	for i := range deltas {
		deltas[i].Visitors = visitors
		deltas[i].Conversions = conversions
	}
	return deltas
}

func (t *Tracker) recordBreakdowns(ctx context.Context, key models.SnapshotKey, ev Event) {
	for _, d := range t.breakdowns(ev) {
		if err := t.store.ApplyBreakdown(ctx, key, d); err != nil {
			t.log.Warn("failed to record analytics breakdown",
				zap.String("funnel_id", key.FunnelID),
				zap.String("dimension", string(d.Dimension)),
				zap.Error(err))
		}
	}
}
