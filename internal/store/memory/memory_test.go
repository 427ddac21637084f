package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seuros/jogo/internal/models"
	"github.com/seuros/jogo/internal/store"
)

func newTestStore() *Store {
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	tick := 0
	return New(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})
}

func TestSnapshotUpsertIsUniquePerFunnelAndDay(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	key := models.SnapshotKey{FunnelID: "f1", UserID: "u1", Day: "2025-05-01"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.ApplySnapshotEvent(ctx, key, models.MetricDelta{PageViews: 1}))
		}()
	}
	wg.Wait()

	snaps, err := s.ListSnapshots(ctx, store.SnapshotQuery{FunnelID: "f1"})
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, int64(50), snaps[0].Metrics.PageViews)
}

func TestListSnapshotsFiltersByUserAndWindow(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	for _, day := range []string{"2025-04-20", "2025-04-28", "2025-05-01"} {
		require.NoError(t, s.ApplySnapshotEvent(ctx, models.SnapshotKey{FunnelID: "f1", UserID: "u1", Day: day}, models.MetricDelta{Visitors: 1}))
	}
	require.NoError(t, s.ApplySnapshotEvent(ctx, models.SnapshotKey{FunnelID: "f2", UserID: "u2", Day: "2025-05-01"}, models.MetricDelta{Visitors: 1}))

	snaps, err := s.ListSnapshots(ctx, store.SnapshotQuery{UserID: "u1", From: "2025-04-25", To: "2025-05-01"})
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "2025-04-28", snaps[0].Day)
	assert.Equal(t, "2025-05-01", snaps[1].Day)
}

func TestIncrementFunnelStatsRecomputesRate(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	f := &models.Funnel{UserID: "u1", Name: "Launch"}
	require.NoError(t, s.CreateFunnel(ctx, f))

	require.NoError(t, s.IncrementFunnelStats(ctx, f.ID, models.FunnelDelta{Visitors: 4}))
	require.NoError(t, s.IncrementFunnelStats(ctx, f.ID, models.FunnelDelta{Conversions: 1, Revenue: 20}))

	got, err := s.GetFunnel(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 25.0, got.Stats.ConversionRate)
	assert.Equal(t, 20.0, got.Stats.Revenue)

	assert.ErrorIs(t, s.IncrementFunnelStats(ctx, "missing", models.FunnelDelta{Visitors: 1}), store.ErrNotFound)
}

func TestOwnershipScopedLookups(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	f := &models.Funnel{UserID: "owner", Name: "Mine"}
	require.NoError(t, s.CreateFunnel(ctx, f))

	_, err := s.GetOwnedFunnel(ctx, f.ID, "intruder")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteFunnel(ctx, f.ID, "intruder"), store.ErrNotFound)

	update := &models.Funnel{ID: f.ID, UserID: "intruder", Name: "Stolen"}
	assert.ErrorIs(t, s.UpdateFunnel(ctx, update), store.ErrNotFound)

	require.NoError(t, s.DeleteFunnel(ctx, f.ID, "owner"))
	_, err = s.GetFunnel(ctx, f.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListFunnelsSearchAndPaging(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	for _, name := range []string{"Webinar", "Course Launch", "webinar replay"} {
		require.NoError(t, s.CreateFunnel(ctx, &models.Funnel{UserID: "u1", Name: name, Status: models.FunnelDraft}))
	}
	require.NoError(t, s.CreateFunnel(ctx, &models.Funnel{UserID: "u2", Name: "Webinar"}))

	funnels, total, err := s.ListFunnels(ctx, store.FunnelFilter{UserID: "u1", Search: "WEBINAR", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, funnels, 1)
	assert.Equal(t, "webinar replay", funnels[0].Name, "newest first")

	funnels, _, err = s.ListFunnels(ctx, store.FunnelFilter{UserID: "u1", Offset: 5, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, funnels)
}

func TestTemplatesCatalogue(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	seed := []models.Template{
		{Name: "Checkout", Category: models.CategoryEcommerce, Featured: true, Downloads: 10, IsActive: true, Tags: []string{"upsell"}},
		{Name: "Lead", Category: models.CategoryLeadGeneration, Downloads: 99, IsActive: true},
		{Name: "Shop", Category: models.CategoryEcommerce, Downloads: 5, IsActive: true},
		{Name: "Hidden", Category: models.CategoryEcommerce, IsActive: false},
	}
	for i := range seed {
		require.NoError(t, s.CreateTemplate(ctx, &seed[i]))
	}

	list, total, err := s.ListTemplates(ctx, store.TemplateFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"Checkout", "Lead", "Shop"}, []string{list[0].Name, list[1].Name, list[2].Name})

	list, _, err = s.ListTemplates(ctx, store.TemplateFilter{Search: "UPSELL"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	cats, err := s.TemplateCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.CategoryCount{{Name: models.CategoryEcommerce, Count: 2}, {Name: models.CategoryLeadGeneration, Count: 1}}, cats)

	_, err = s.IncrementTemplateDownloads(ctx, seed[3].ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	updated, err := s.IncrementTemplateDownloads(ctx, seed[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(11), updated.Downloads)
}

func TestUsersUniqueEmail(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &models.User{Email: "Ada@Example.com"}))
	assert.ErrorIs(t, s.CreateUser(ctx, &models.User{Email: "ada@example.com"}), store.ErrDuplicate)

	u, err := s.GetUserByEmail(ctx, " ADA@example.com ")
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, u.Plan)
}
