package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/seuros/jogo/internal/calendar"
	"github.com/seuros/jogo/internal/models"
	"github.com/seuros/jogo/internal/store"
)

// The running session mean halves toward each new sample; a fresh row starts from 0.
const upsertSnapshotQuery = `
	INSERT INTO analytics_snapshot (
		snapshot_id, funnel_id, user_id, day,
		visitors, page_views, conversions, revenue, avg_session_duration
	)
	VALUES (
		$1, $2, $3, $4::date,
		$5, $6, $7, $8,
		CASE WHEN $9::boolean THEN $10::double precision / 2 ELSE 0 END
	)
	ON CONFLICT (funnel_id, day) DO UPDATE SET
		visitors = analytics_snapshot.visitors + EXCLUDED.visitors,
		page_views = analytics_snapshot.page_views + EXCLUDED.page_views,
		conversions = analytics_snapshot.conversions + EXCLUDED.conversions,
		revenue = analytics_snapshot.revenue + EXCLUDED.revenue,
		avg_session_duration = CASE
			WHEN $9::boolean THEN (analytics_snapshot.avg_session_duration + $10::double precision) / 2
			ELSE analytics_snapshot.avg_session_duration
		END,
		updated_at = NOW()`

func (s *Store) ApplySnapshotEvent(ctx context.Context, key models.SnapshotKey, d models.MetricDelta) error {
	if !validID(key.FunnelID) || !validID(key.UserID) {
		return store.ErrNotFound
	}
	var (
		hasDuration bool
		duration    float64
	)
	if d.SessionDuration != nil {
		hasDuration, duration = true, *d.SessionDuration
	}

	_, err := s.db.ExecContext(ctx, upsertSnapshotQuery,
		uuid.NewString(), key.FunnelID, key.UserID, key.Day,
		d.Visitors, d.PageViews, d.Conversions, d.Revenue,
		hasDuration, duration,
	)
	if err != nil {
		return fmt.Errorf("upsert analytics snapshot: %w", err)
	}
	return nil
}

func (s *Store) ApplyBreakdown(ctx context.Context, key models.SnapshotKey, d models.BreakdownDelta) error {
	if !validID(key.FunnelID) {
		return store.ErrNotFound
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analytics_breakdown (funnel_id, day, dimension, key, visitors, conversions)
		VALUES ($1, $2::date, $3, $4, $5, $6)
		ON CONFLICT (funnel_id, day, dimension, key) DO UPDATE SET
			visitors = analytics_breakdown.visitors + EXCLUDED.visitors,
			conversions = analytics_breakdown.conversions + EXCLUDED.conversions`,
		key.FunnelID, key.Day, d.Dimension, d.Key, d.Visitors, d.Conversions,
	)
	if err != nil {
		return fmt.Errorf("upsert analytics breakdown: %w", err)
	}
	return nil
}

func dayConditions(cond *conditions, from, to string) {
	if from != "" {
		cond.add("day >= ?::date", from)
	}
	if to != "" {
		cond.add("day <= ?::date", to)
	}
}

func (s *Store) ListSnapshots(ctx context.Context, q store.SnapshotQuery) ([]models.Snapshot, error) {
	var cond conditions
	if q.UserID != "" {
		if !validID(q.UserID) {
			return []models.Snapshot{}, nil
		}
		cond.add("user_id = ?", q.UserID)
	}
	if q.FunnelID != "" {
		if !validID(q.FunnelID) {
			return []models.Snapshot{}, nil
		}
		cond.add("funnel_id = ?", q.FunnelID)
	}
	dayConditions(&cond, q.From, q.To)

	rows, err := s.db.QueryContext(ctx, `
		SELECT snapshot_id, funnel_id, user_id, day,
			visitors, page_views, conversions, revenue, bounce_rate, avg_session_duration,
			created_at, updated_at
		FROM analytics_snapshot`+cond.where()+`
		ORDER BY day ASC, funnel_id ASC`, cond.args...)
	if err != nil {
		return nil, fmt.Errorf("list analytics snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snapshots := make([]models.Snapshot, 0)
	for rows.Next() {
		var (
			snap models.Snapshot
			day  time.Time
		)
		err := rows.Scan(
			&snap.ID, &snap.FunnelID, &snap.UserID, &day,
			&snap.Metrics.Visitors, &snap.Metrics.PageViews, &snap.Metrics.Conversions,
			&snap.Metrics.Revenue, &snap.Metrics.BounceRate, &snap.Metrics.AvgSessionDuration,
			&snap.CreatedAt, &snap.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		snap.Day = day.Format(calendar.DayLayout)
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

func (s *Store) ListBreakdowns(ctx context.Context, funnelID, from, to string) ([]models.BreakdownCount, error) {
	if !validID(funnelID) {
		return []models.BreakdownCount{}, nil
	}
	var cond conditions
	cond.add("funnel_id = ?", funnelID)
	dayConditions(&cond, from, to)

	rows, err := s.db.QueryContext(ctx, `
		SELECT funnel_id, day, dimension, key, visitors, conversions
		FROM analytics_breakdown`+cond.where()+`
		ORDER BY day ASC, dimension ASC, key ASC`, cond.args...)
	if err != nil {
		return nil, fmt.Errorf("list analytics breakdowns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make([]models.BreakdownCount, 0)
	for rows.Next() {
		var (
			row models.BreakdownCount
			day time.Time
		)
		if err := rows.Scan(&row.FunnelID, &day, &row.Dimension, &row.Key, &row.Visitors, &row.Conversions); err != nil {
			return nil, err
		}
		row.Day = day.Format(calendar.DayLayout)
		counts = append(counts, row)
	}
	return counts, rows.Err()
}
