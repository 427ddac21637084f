// Package memory is an in-process store used by tests and `store_driver = "memory"`.
// Data is lost when the process exits.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seuros/jogo/internal/models"
	"github.com/seuros/jogo/internal/store"
)

type breakdownKey struct {
	funnelID  string
	day       string
	dimension models.Dimension
	key       string
}

type snapshotKey struct {
	funnelID string
	day      string
}

// Store keeps every record in maps guarded by a single mutex.
type Store struct {
	mu         sync.RWMutex
	now        func() time.Time
	funnels    map[string]models.Funnel
	templates  map[string]models.Template
	users      map[string]models.User
	snapshots  map[snapshotKey]models.Snapshot
	breakdowns map[breakdownKey]models.BreakdownCount
}

var _ store.Store = (*Store)(nil)

// New returns an empty store. A nil now uses time.Now for timestamps.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:        now,
		funnels:    make(map[string]models.Funnel),
		templates:  make(map[string]models.Template),
		users:      make(map[string]models.User),
		snapshots:  make(map[snapshotKey]models.Snapshot),
		breakdowns: make(map[breakdownKey]models.BreakdownCount),
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func cloneFunnel(f models.Funnel) models.Funnel {
	f.Steps = append([]models.Step(nil), f.Steps...)
	f.Settings.Integrations = append([]models.Integration(nil), f.Settings.Integrations...)
	if f.PublishedAt != nil {
		published := *f.PublishedAt
		f.PublishedAt = &published
	}
	return f
}

func cloneTemplate(t models.Template) models.Template {
	t.Steps = append([]models.StepBlueprint(nil), t.Steps...)
	t.Tags = append([]string(nil), t.Tags...)
	return t
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// Funnels

func (s *Store) CreateFunnel(_ context.Context, f *models.Funnel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if _, exists := s.funnels[f.ID]; exists {
		return store.ErrDuplicate
	}
	now := s.now()
	f.CreatedAt, f.UpdatedAt = now, now
	if f.Status == "" {
		f.Status = models.FunnelDraft
	}
	s.funnels[f.ID] = cloneFunnel(*f)
	return nil
}

func (s *Store) GetFunnel(_ context.Context, id string) (*models.Funnel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.funnels[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneFunnel(f)
	return &out, nil
}

func (s *Store) GetOwnedFunnel(ctx context.Context, id, userID string) (*models.Funnel, error) {
	f, err := s.GetFunnel(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.UserID != userID {
		return nil, store.ErrNotFound
	}
	return f, nil
}

func (s *Store) ListFunnels(_ context.Context, filter store.FunnelFilter) ([]models.Funnel, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.Funnel, 0)
	for _, f := range s.funnels {
		if f.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !containsFold(f.Name, filter.Search) && !containsFold(f.Description, filter.Search) {
			continue
		}
		matched = append(matched, cloneFunnel(f))
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})
	return page(matched, filter.Offset, filter.Limit), int64(len(matched)), nil
}

func (s *Store) UpdateFunnel(_ context.Context, f *models.Funnel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.funnels[f.ID]
	if !ok || existing.UserID != f.UserID {
		return store.ErrNotFound
	}
	existing.Name = f.Name
	existing.Description = f.Description
	existing.Steps = f.Steps
	existing.Status = f.Status
	existing.Settings = f.Settings
	existing.IsPublished = f.IsPublished
	existing.PublishedAt = f.PublishedAt
	existing.UpdatedAt = s.now()
	s.funnels[f.ID] = cloneFunnel(existing)

	*f = cloneFunnel(existing)
	return nil
}

func (s *Store) DeleteFunnel(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.funnels[id]
	if !ok || existing.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.funnels, id)
	return nil
}

func (s *Store) IncrementFunnelStats(_ context.Context, id string, d models.FunnelDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.funnels[id]
	if !ok {
		return store.ErrNotFound
	}
	f.Stats.Apply(d)
	f.UpdatedAt = s.now()
	s.funnels[id] = f
	return nil
}

func (s *Store) TopFunnels(_ context.Context, userID string, limit int) ([]models.Funnel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := make([]models.Funnel, 0)
	for _, f := range s.funnels {
		if f.UserID == userID {
			owned = append(owned, cloneFunnel(f))
		}
	}
	sort.SliceStable(owned, func(i, j int) bool {
		if owned[i].Stats.ConversionRate != owned[j].Stats.ConversionRate {
			return owned[i].Stats.ConversionRate > owned[j].Stats.ConversionRate
		}
		return owned[i].CreatedAt.Before(owned[j].CreatedAt)
	})
	return page(owned, 0, limit), nil
}

func (s *Store) CountFunnelsByStatus(_ context.Context, userID string) (map[models.FunnelStatus]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[models.FunnelStatus]int64)
	for _, f := range s.funnels {
		if f.UserID == userID {
			counts[f.Status]++
		}
	}
	return counts, nil
}

// Analytics

func (s *Store) ApplySnapshotEvent(_ context.Context, key models.SnapshotKey, d models.MetricDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := snapshotKey{funnelID: key.FunnelID, day: key.Day}
	now := s.now()
	snap, ok := s.snapshots[k]
	if !ok {
		snap = models.Snapshot{
			ID:        uuid.NewString(),
			FunnelID:  key.FunnelID,
			UserID:    key.UserID,
			Day:       key.Day,
			CreatedAt: now,
		}
	}
	snap.Metrics.Apply(d)
	snap.UpdatedAt = now
	s.snapshots[k] = snap
	return nil
}

func (s *Store) ApplyBreakdown(_ context.Context, key models.SnapshotKey, d models.BreakdownDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := breakdownKey{funnelID: key.FunnelID, day: key.Day, dimension: d.Dimension, key: d.Key}
	row, ok := s.breakdowns[k]
	if !ok {
		row = models.BreakdownCount{FunnelID: key.FunnelID, Day: key.Day, Dimension: d.Dimension, Key: d.Key}
	}
	row.Visitors += d.Visitors
	row.Conversions += d.Conversions
	s.breakdowns[k] = row
	return nil
}

func inRange(day, from, to string) bool {
	if from != "" && day < from {
		return false
	}
	if to != "" && day > to {
		return false
	}
	return true
}

func (s *Store) ListSnapshots(_ context.Context, q store.SnapshotQuery) ([]models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Snapshot, 0)
	for _, snap := range s.snapshots {
		if q.UserID != "" && snap.UserID != q.UserID {
			continue
		}
		if q.FunnelID != "" && snap.FunnelID != q.FunnelID {
			continue
		}
		if !inRange(snap.Day, q.From, q.To) {
			continue
		}
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].FunnelID < out[j].FunnelID
	})
	return out, nil
}

func (s *Store) ListBreakdowns(_ context.Context, funnelID, from, to string) ([]models.BreakdownCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.BreakdownCount, 0)
	for _, row := range s.breakdowns {
		if row.FunnelID == funnelID && inRange(row.Day, from, to) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		if out[i].Dimension != out[j].Dimension {
			return out[i].Dimension < out[j].Dimension
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// Templates

func (s *Store) CreateTemplate(_ context.Context, t *models.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := s.now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	s.templates[t.ID] = cloneTemplate(*t)
	return nil
}

func (s *Store) CountTemplates(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.templates)), nil
}

func (s *Store) DeleteTemplates(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates = make(map[string]models.Template)
	return nil
}

func templateMatches(t models.Template, filter store.TemplateFilter) bool {
	if !t.IsActive {
		return false
	}
	if filter.Category != "" && t.Category != filter.Category {
		return false
	}
	if filter.Difficulty != "" && t.Difficulty != filter.Difficulty {
		return false
	}
	if filter.FeaturedOnly && !t.Featured {
		return false
	}
	if filter.Search == "" {
		return true
	}
	if containsFold(t.Name, filter.Search) || containsFold(t.Description, filter.Search) {
		return true
	}
	for _, tag := range t.Tags {
		if containsFold(tag, filter.Search) {
			return true
		}
	}
	return false
}

func (s *Store) ListTemplates(_ context.Context, filter store.TemplateFilter) ([]models.Template, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.Template, 0)
	for _, t := range s.templates {
		if templateMatches(t, filter) {
			matched = append(matched, cloneTemplate(t))
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.Featured != b.Featured {
			return a.Featured
		}
		if a.Downloads != b.Downloads {
			return a.Downloads > b.Downloads
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return page(matched, filter.Offset, filter.Limit), int64(len(matched)), nil
}

func (s *Store) TemplateCategories(context.Context) ([]models.CategoryCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, t := range s.templates {
		if t.IsActive {
			counts[t.Category]++
		}
	}
	out := make([]models.CategoryCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, models.CategoryCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) GetTemplate(_ context.Context, id string) (*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok || !t.IsActive {
		return nil, store.ErrNotFound
	}
	out := cloneTemplate(t)
	return &out, nil
}

func (s *Store) IncrementTemplateDownloads(_ context.Context, id string) (*models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[id]
	if !ok || !t.IsActive {
		return nil, store.ErrNotFound
	}
	t.Downloads++
	t.UpdatedAt = s.now()
	s.templates[id] = t
	out := cloneTemplate(t)
	return &out, nil
}

// Users

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(u.Email)
	for _, existing := range s.users {
		if existing.Email == email {
			return store.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Plan == "" {
		u.Plan = models.PlanFree
	}
	now := s.now()
	u.Email = email
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListUsers(context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateUserProfile(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return store.ErrNotFound
	}
	existing.FirstName = u.FirstName
	existing.LastName = u.LastName
	existing.Phone = u.Phone
	existing.Bio = u.Bio
	existing.UpdatedAt = s.now()
	s.users[u.ID] = existing
	*u = existing
	return nil
}

func (s *Store) UpdateUserPassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	existing.PasswordHash = passwordHash
	existing.UpdatedAt = s.now()
	s.users[id] = existing
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	return nil
}
