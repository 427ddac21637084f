package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/seuros/jogo/internal/models"
	"github.com/seuros/jogo/internal/store"
)

const templateColumns = `template_id, name, description, category, preview, steps, rating, downloads,
	featured, tags, difficulty, estimated_time, is_active, created_by, created_at, updated_at`

func scanTemplate(row rowScanner) (*models.Template, error) {
	var (
		t         models.Template
		steps     []byte
		createdBy sql.NullString
	)
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.Category, &t.Preview, &steps, &t.Rating, &t.Downloads,
		&t.Featured, pq.Array(&t.Tags), &t.Difficulty, &t.EstimatedTime, &t.IsActive, &createdBy,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(steps, &t.Steps); err != nil {
		return nil, fmt.Errorf("decode template steps: %w", err)
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	t.CreatedBy = createdBy.String
	return &t, nil
}

func (s *Store) CreateTemplate(ctx context.Context, t *models.Template) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	steps, err := encodeJSON(t.Steps, "[]")
	if err != nil {
		return fmt.Errorf("encode template steps: %w", err)
	}
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO template (template_id, name, description, category, preview, steps, rating, downloads,
			featured, tags, difficulty, estimated_time, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`,
		t.ID, t.Name, t.Description, t.Category, t.Preview, steps, t.Rating, t.Downloads,
		t.Featured, pq.Array(tags), t.Difficulty, t.EstimatedTime, t.IsActive, nullableUUID(t.CreatedBy),
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

func (s *Store) CountTemplates(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM template`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteTemplates(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM template`); err != nil {
		return fmt.Errorf("delete templates: %w", err)
	}
	return nil
}

func (s *Store) ListTemplates(ctx context.Context, filter store.TemplateFilter) ([]models.Template, int64, error) {
	var cond conditions
	cond.raw("is_active")
	if filter.Category != "" {
		cond.add("category = ?", filter.Category)
	}
	if filter.Difficulty != "" {
		cond.add("difficulty = ?", filter.Difficulty)
	}
	if filter.FeaturedOnly {
		cond.raw("featured")
	}
	if filter.Search != "" {
		cond.add(`(name ILIKE ? OR description ILIKE ? OR EXISTS (
			SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE ?))`, likePattern(filter.Search))
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM template`+cond.where(), cond.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count templates: %w", err)
	}

	query := `SELECT ` + templateColumns + ` FROM template` + cond.where() +
		` ORDER BY featured DESC, downloads DESC, created_at DESC` + cond.page(filter.Limit, filter.Offset)
	rows, err := s.db.QueryContext(ctx, query, cond.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list templates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	templates := make([]models.Template, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, 0, err
		}
		templates = append(templates, *t)
	}
	return templates, total, rows.Err()
}

func (s *Store) TemplateCategories(ctx context.Context) ([]models.CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*) AS count
		FROM template
		WHERE is_active
		GROUP BY category
		ORDER BY count DESC, category ASC`)
	if err != nil {
		return nil, fmt.Errorf("template categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := make([]models.CategoryCount, 0)
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	if !validID(id) {
		return nil, store.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM template WHERE template_id = $1 AND is_active`, id)
	t, err := scanTemplate(row)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (s *Store) IncrementTemplateDownloads(ctx context.Context, id string) (*models.Template, error) {
	if !validID(id) {
		return nil, store.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE template SET downloads = downloads + 1, updated_at = NOW()
		WHERE template_id = $1 AND is_active
		RETURNING `+templateColumns, id)
	t, err := scanTemplate(row)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}
