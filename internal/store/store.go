// Package store defines persistence for funnels, templates, users and analytics.
// Backends live in the postgres, mongo and memory subpackages.
package store

import (
	"context"
	"errors"

	"github.com/seuros/jogo/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("store: duplicate key")
)

// FunnelFilter selects a page of a user's funnels.
type FunnelFilter struct {
	UserID string
	Status models.FunnelStatus // empty for any status
	Search string              // case-insensitive substring of name or description
	Offset int
	Limit  int
}

// TemplateFilter selects a page of active templates.
type TemplateFilter struct {
	Category     string // empty for every category
	Difficulty   string
	Search       string // case-insensitive substring of name, description or a tag
	FeaturedOnly bool
	Offset       int
	Limit        int
}

// SnapshotQuery selects daily snapshots. Exactly one of UserID or FunnelID is
// normally set; From and To are inclusive day keys and empty means unbounded.
type SnapshotQuery struct {
	UserID   string
	FunnelID string
	From     string
	To       string
}

type Funnels interface {
	CreateFunnel(ctx context.Context, f *models.Funnel) error
	GetFunnel(ctx context.Context, id string) (*models.Funnel, error)
	// GetOwnedFunnel returns ErrNotFound both when the funnel is absent and when
	// it belongs to another user.
	GetOwnedFunnel(ctx context.Context, id, userID string) (*models.Funnel, error)
	ListFunnels(ctx context.Context, filter FunnelFilter) ([]models.Funnel, int64, error)
	// UpdateFunnel replaces the editable fields of f, scoped to f.UserID.
	UpdateFunnel(ctx context.Context, f *models.Funnel) error
	DeleteFunnel(ctx context.Context, id, userID string) error
	// IncrementFunnelStats adds d to the totals and recomputes the conversion
	// rate in the same write.
	IncrementFunnelStats(ctx context.Context, id string, d models.FunnelDelta) error
	TopFunnels(ctx context.Context, userID string, limit int) ([]models.Funnel, error)
	CountFunnelsByStatus(ctx context.Context, userID string) (map[models.FunnelStatus]int64, error)
}

type Analytics interface {
	// ApplySnapshotEvent finds or creates the snapshot for key and applies d
	// atomically. At most one snapshot exists per funnel and day.
	ApplySnapshotEvent(ctx context.Context, key models.SnapshotKey, d models.MetricDelta) error
	ApplyBreakdown(ctx context.Context, key models.SnapshotKey, d models.BreakdownDelta) error
	// ListSnapshots returns matching snapshots ordered by day ascending.
	ListSnapshots(ctx context.Context, q SnapshotQuery) ([]models.Snapshot, error)
	ListBreakdowns(ctx context.Context, funnelID, from, to string) ([]models.BreakdownCount, error)
}

type Templates interface {
	CreateTemplate(ctx context.Context, t *models.Template) error
	CountTemplates(ctx context.Context) (int64, error)
	DeleteTemplates(ctx context.Context) error
	// ListTemplates orders by featured, then downloads, then newest first.
	ListTemplates(ctx context.Context, filter TemplateFilter) ([]models.Template, int64, error)
	// TemplateCategories counts active templates per category, largest first.
	TemplateCategories(ctx context.Context) ([]models.CategoryCount, error)
	GetTemplate(ctx context.Context, id string) (*models.Template, error)
	// IncrementTemplateDownloads adds one download to an active template and
	// returns it after the increment.
	IncrementTemplateDownloads(ctx context.Context, id string) (*models.Template, error)
}

type Users interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserProfile(ctx context.Context, u *models.User) error
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	DeleteUser(ctx context.Context, id string) error
}

// Store is the full persistence surface used by the server.
type Store interface {
	Funnels
	Analytics
	Templates
	Users
	Ping(ctx context.Context) error
	Close() error
}
