package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/seuros/jogo/internal/models"
	"github.com/seuros/jogo/internal/store"
)

const funnelColumns = `funnel_id, user_id, name, description, steps, status, template_id, settings,
	visitors, conversions, revenue, conversion_rate, is_published, published_at, created_at, updated_at`

func scanFunnel(row rowScanner) (*models.Funnel, error) {
	var (
		f           models.Funnel
		steps       []byte
		settings    []byte
		publishedAt sql.NullTime
	)
	err := row.Scan(
		&f.ID, &f.UserID, &f.Name, &f.Description, &steps, &f.Status, &f.TemplateID, &settings,
		&f.Stats.Visitors, &f.Stats.Conversions, &f.Stats.Revenue, &f.Stats.ConversionRate,
		&f.IsPublished, &publishedAt, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(steps, &f.Steps); err != nil {
		return nil, fmt.Errorf("decode funnel steps: %w", err)
	}
	if err := decodeJSON(settings, &f.Settings); err != nil {
		return nil, fmt.Errorf("decode funnel settings: %w", err)
	}
	if f.Steps == nil {
		f.Steps = []models.Step{}
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		f.PublishedAt = &t
	}
	return &f, nil
}

func encodeFunnelDocs(f *models.Funnel) (steps, settings string, err error) {
	if steps, err = encodeJSON(f.Steps, "[]"); err != nil {
		return "", "", fmt.Errorf("encode funnel steps: %w", err)
	}
	if settings, err = encodeJSON(f.Settings, "{}"); err != nil {
		return "", "", fmt.Errorf("encode funnel settings: %w", err)
	}
	return steps, settings, nil
}

func (s *Store) CreateFunnel(ctx context.Context, f *models.Funnel) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Status == "" {
		f.Status = models.FunnelDraft
	}
	steps, settings, err := encodeFunnelDocs(f)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO funnel (funnel_id, user_id, name, description, steps, status, template_id, settings,
			visitors, conversions, revenue, conversion_rate, is_published, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`

	var publishedAt sql.NullTime
	if f.PublishedAt != nil {
		publishedAt = sql.NullTime{Time: *f.PublishedAt, Valid: true}
	}
	err = s.db.QueryRowContext(ctx, query,
		f.ID, f.UserID, f.Name, f.Description, steps, f.Status, f.TemplateID, settings,
		f.Stats.Visitors, f.Stats.Conversions, f.Stats.Revenue, f.Stats.ConversionRate,
		f.IsPublished, publishedAt,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert funnel: %w", err)
	}
	return nil
}

func (s *Store) GetFunnel(ctx context.Context, id string) (*models.Funnel, error) {
	if !validID(id) {
		return nil, store.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+funnelColumns+` FROM funnel WHERE funnel_id = $1`, id)
	f, err := scanFunnel(row)
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

func (s *Store) GetOwnedFunnel(ctx context.Context, id, userID string) (*models.Funnel, error) {
	if !validID(id) || !validID(userID) {
		return nil, store.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+funnelColumns+` FROM funnel WHERE funnel_id = $1 AND user_id = $2`, id, userID)
	f, err := scanFunnel(row)
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

func (s *Store) ListFunnels(ctx context.Context, filter store.FunnelFilter) ([]models.Funnel, int64, error) {
	if !validID(filter.UserID) {
		return []models.Funnel{}, 0, nil
	}

	var cond conditions
	cond.add("user_id = ?", filter.UserID)
	if filter.Status != "" {
		cond.add("status = ?", filter.Status)
	}
	if filter.Search != "" {
		cond.add("(name ILIKE ? OR description ILIKE ?)", likePattern(filter.Search))
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM funnel`+cond.where(), cond.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count funnels: %w", err)
	}

	query := `SELECT ` + funnelColumns + ` FROM funnel` + cond.where() + ` ORDER BY updated_at DESC` +
		cond.page(filter.Limit, filter.Offset)
	rows, err := s.db.QueryContext(ctx, query, cond.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list funnels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	funnels := make([]models.Funnel, 0)
	for rows.Next() {
		f, err := scanFunnel(rows)
		if err != nil {
			return nil, 0, err
		}
		funnels = append(funnels, *f)
	}
	return funnels, total, rows.Err()
}

func (s *Store) UpdateFunnel(ctx context.Context, f *models.Funnel) error {
	if !validID(f.ID) || !validID(f.UserID) {
		return store.ErrNotFound
	}
	steps, settings, err := encodeFunnelDocs(f)
	if err != nil {
		return err
	}
	var publishedAt sql.NullTime
	if f.PublishedAt != nil {
		publishedAt = sql.NullTime{Time: *f.PublishedAt, Valid: true}
	}

	query := `
		UPDATE funnel SET
			name = $3,
			description = $4,
			steps = $5,
			status = $6,
			settings = $7,
			is_published = $8,
			published_at = $9,
			updated_at = NOW()
		WHERE funnel_id = $1 AND user_id = $2
		RETURNING ` + funnelColumns

	row := s.db.QueryRowContext(ctx, query,
		f.ID, f.UserID, f.Name, f.Description, steps, f.Status, settings, f.IsPublished, publishedAt)
	updated, err := scanFunnel(row)
	if err != nil {
		return notFound(err)
	}
	*f = *updated
	return nil
}

func (s *Store) DeleteFunnel(ctx context.Context, id, userID string) error {
	if !validID(id) || !validID(userID) {
		return store.ErrNotFound
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM funnel WHERE funnel_id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete funnel: %w", err)
	}
	return requireAffected(result)
}

func (s *Store) IncrementFunnelStats(ctx context.Context, id string, d models.FunnelDelta) error {
	if !validID(id) {
		return store.ErrNotFound
	}
	query := `
		UPDATE funnel SET
			visitors = visitors + $2,
			conversions = conversions + $3,
			revenue = revenue + $4,
			conversion_rate = CASE
				WHEN visitors + $2 > 0 THEN (conversions + $3)::double precision / (visitors + $2) * 100
				ELSE 0
			END,
			updated_at = NOW()
		WHERE funnel_id = $1`

	result, err := s.db.ExecContext(ctx, query, id, d.Visitors, d.Conversions, d.Revenue)
	if err != nil {
		return fmt.Errorf("increment funnel stats: %w", err)
	}
	return requireAffected(result)
}

func (s *Store) TopFunnels(ctx context.Context, userID string, limit int) ([]models.Funnel, error) {
	if !validID(userID) {
		return []models.Funnel{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+funnelColumns+`
		FROM funnel
		WHERE user_id = $1
		ORDER BY conversion_rate DESC, created_at ASC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("top funnels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	funnels := make([]models.Funnel, 0, limit)
	for rows.Next() {
		f, err := scanFunnel(rows)
		if err != nil {
			return nil, err
		}
		funnels = append(funnels, *f)
	}
	return funnels, rows.Err()
}

func (s *Store) CountFunnelsByStatus(ctx context.Context, userID string) (map[models.FunnelStatus]int64, error) {
	counts := make(map[models.FunnelStatus]int64)
	if !validID(userID) {
		return counts, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM funnel WHERE user_id = $1 GROUP BY status`, userID)
	if err != nil {
		return nil, fmt.Errorf("count funnels by status: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			status models.FunnelStatus
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
