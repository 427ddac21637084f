package funnels

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seuros/jogo/internal/apierr"
	"github.com/seuros/jogo/internal/calendar"
	"github.com/seuros/jogo/internal/models"
	"github.com/seuros/jogo/internal/store/memory"
)

var now = time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	st := memory.New(func() time.Time { return now })
	return NewService(st, calendar.New(func() time.Time { return now }, time.UTC)), st
}

func TestNormalizeSteps(t *testing.T) {
	in := []models.Step{
		{ID: "keep", Type: models.StepLanding, Title: "Landing", Order: 9},
		{Type: models.StepCheckout, Title: "Checkout", Order: 3},
	}
	out := NormalizeSteps(in)

	require.Len(t, out, 2)
	assert.Equal(t, "keep", out[0].ID)
	assert.Equal(t, 1, out[0].Order)
	assert.True(t, strings.HasPrefix(out[1].ID, "step-"))
	assert.Equal(t, 2, out[1].Order)
	assert.NotNil(t, out[1].Settings)
	assert.Empty(t, in[1].ID, "input must not be modified")
}

func TestStepsFromBlueprints(t *testing.T) {
	steps := StepsFromBlueprints([]models.StepBlueprint{
		{Type: models.StepThankYou, Title: "Thanks", Order: 3},
		{Type: models.StepLanding, Title: "Landing", Order: 1},
		{Type: models.StepForm, Title: "Form", Settings: map[string]any{"fields": 2}},
	})

	require.Len(t, steps, 3)
	titles := []string{steps[0].Title, steps[1].Title, steps[2].Title}
	// The form blueprint has no order and takes its position, 3.
	assert.Equal(t, []string{"Landing", "Thanks", "Form"}, titles)
	for i, step := range steps {
		assert.Equal(t, i+1, step.Order)
		assert.True(t, step.IsActive)
		assert.True(t, strings.HasPrefix(step.ID, "step-"))
	}
	assert.Equal(t, 2, steps[2].Settings["fields"])
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, _ := newService(t)

	funnel, err := svc.Create(context.Background(), "u1", CreateInput{
		Name:  "  Spring Sale ",
		Steps: []models.Step{{Type: models.StepLanding, Title: "Hero"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Spring Sale", funnel.Name)
	assert.Equal(t, models.FunnelDraft, funnel.Status)
	assert.Equal(t, models.Theme{
		PrimaryColor:   models.DefaultPrimaryColor,
		SecondaryColor: models.DefaultSecondaryColor,
		FontFamily:     models.DefaultFontFamily,
	}, funnel.Settings.Theme)
	assert.Equal(t, 1, funnel.Steps[0].Order)
	assert.NotEmpty(t, funnel.ID)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", CreateInput{Name: "   "})
	assert.True(t, apierr.IsKind(err, apierr.KindValidation))

	_, err = svc.Create(ctx, "u1", CreateInput{Name: strings.Repeat("x", MaxNameLength+1)})
	assert.True(t, apierr.IsKind(err, apierr.KindValidation))

	_, err = svc.Create(ctx, "u1", CreateInput{Name: "ok", Description: strings.Repeat("x", MaxDescriptionLength+1)})
	assert.True(t, apierr.IsKind(err, apierr.KindValidation))

	_, err = svc.Create(ctx, "u1", CreateInput{Name: "ok", Steps: []models.Step{{Type: "popup", Title: "x"}}})
	assert.True(t, apierr.IsKind(err, apierr.KindValidation))
}

func TestOwnershipScoping(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	funnel, err := svc.Create(ctx, "owner", CreateInput{Name: "Mine"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, "intruder", funnel.ID)
	assert.True(t, apierr.IsKind(err, apierr.KindNotFound))

	name := "Hijacked"
	_, err = svc.Update(ctx, "intruder", funnel.ID, UpdateInput{Name: &name})
	assert.True(t, apierr.IsKind(err, apierr.KindNotFound))

	err = svc.Delete(ctx, "intruder", funnel.ID)
	assert.True(t, apierr.IsKind(err, apierr.KindNotFound))

	require.NoError(t, svc.Delete(ctx, "owner", funnel.ID))
	_, err = svc.Get(ctx, "owner", funnel.ID)
	assert.True(t, apierr.IsKind(err, apierr.KindNotFound))
}

func TestUpdateIsPartial(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	funnel, err := svc.Create(ctx, "owner", CreateInput{Name: "Before", Description: "keep me"})
	require.NoError(t, err)
	require.NoError(t, st.IncrementFunnelStats(ctx, funnel.ID, models.FunnelDelta{Visitors: 4, Conversions: 1}))

	name := "After"
	status := models.FunnelPaused
	steps := []models.Step{{Type: models.StepEmail, Title: "Drip"}}
	updated, err := svc.Update(ctx, "owner", funnel.ID, UpdateInput{Name: &name, Status: &status, Steps: &steps})
	require.NoError(t, err)

	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, "keep me", updated.Description)
	assert.Equal(t, models.FunnelPaused, updated.Status)
	require.Len(t, updated.Steps, 1)
	assert.Equal(t, 1, updated.Steps[0].Order)
	assert.Equal(t, int64(4), updated.Stats.Visitors)

	bad := models.FunnelStatus("deleted")
	_, err = svc.Update(ctx, "owner", funnel.ID, UpdateInput{Status: &bad})
	assert.True(t, apierr.IsKind(err, apierr.KindValidation))
}

func TestListFiltersAndPages(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for _, name := range []string{"Alpha launch", "Beta launch", "Gamma webinar"} {
		_, err := svc.Create(ctx, "owner", CreateInput{Name: name})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, "other", CreateInput{Name: "Other launch"})
	require.NoError(t, err)

	page, err := svc.List(ctx, "owner", ListInput{Status: "all", Search: "LAUNCH", Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 2, page.Pages)
	assert.Len(t, page.Funnels, 1)

	page, err = svc.List(ctx, "owner", ListInput{Status: "active", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Equal(t, 0, page.Pages)

	_, err = svc.List(ctx, "owner", ListInput{Status: "gone", Page: 1, Limit: 10})
	assert.True(t, apierr.IsKind(err, apierr.KindValidation))
}

func TestTogglePublish(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	funnel, err := svc.Create(ctx, "owner", CreateInput{Name: "Launch"})
	require.NoError(t, err)

	published, err := svc.TogglePublish(ctx, "owner", funnel.ID)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)
	assert.Equal(t, models.FunnelActive, published.Status)
	require.NotNil(t, published.PublishedAt)
	assert.True(t, published.PublishedAt.Equal(now))

	unpublished, err := svc.TogglePublish(ctx, "owner", funnel.ID)
	require.NoError(t, err)
	assert.False(t, unpublished.IsPublished)
	assert.Equal(t, models.FunnelDraft, unpublished.Status)
}

func TestDuplicate(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	funnel, err := svc.Create(ctx, "owner", CreateInput{
		Name:  "Launch",
		Steps: []models.Step{{Type: models.StepLanding, Title: "Hero"}},
	})
	require.NoError(t, err)
	require.NoError(t, st.IncrementFunnelStats(ctx, funnel.ID, models.FunnelDelta{Visitors: 9}))
	_, err = svc.TogglePublish(ctx, "owner", funnel.ID)
	require.NoError(t, err)

	dup, err := svc.Duplicate(ctx, "owner", funnel.ID)
	require.NoError(t, err)

	assert.NotEqual(t, funnel.ID, dup.ID)
	assert.Equal(t, "Launch (Copy)", dup.Name)
	assert.False(t, dup.IsPublished)
	assert.Equal(t, models.FunnelDraft, dup.Status)
	assert.Equal(t, models.FunnelStats{}, dup.Stats)
	require.Len(t, dup.Steps, 1)
	assert.NotEqual(t, funnel.Steps[0].ID, dup.Steps[0].ID)
}

func TestUseTemplate(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	tpl := &models.Template{
		Name:        "Webinar Registration",
		Description: "Register attendees",
		Category:    models.CategoryMarketing,
		IsActive:    true,
		Downloads:   41,
		Steps: []models.StepBlueprint{
			{Type: models.StepLanding, Title: "Landing", Order: 1},
			{Type: models.StepForm, Title: "Register", Order: 2},
			{Type: models.StepThankYou, Title: "Confirmed", Order: 3},
		},
	}
	require.NoError(t, st.CreateTemplate(ctx, tpl))

	gotTpl, funnel, err := svc.UseTemplate(ctx, "owner", tpl.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(42), gotTpl.Downloads)
	assert.Equal(t, "Webinar Registration - 2025-06-02", funnel.Name)
	assert.Equal(t, "Register attendees", funnel.Description)
	assert.Equal(t, tpl.ID, funnel.TemplateID)
	assert.Equal(t, "owner", funnel.UserID)
	require.Len(t, funnel.Steps, 3)
	for i, step := range funnel.Steps {
		assert.Equal(t, i+1, step.Order)
	}
	assert.Equal(t, models.DefaultFontFamily, funnel.Settings.Theme.FontFamily)

	stored, err := st.GetTemplate(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), stored.Downloads)
}

func TestUseTemplateInactiveOrMissing(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	hidden := &models.Template{Name: "Hidden", Category: models.CategorySaaS, IsActive: false}
	require.NoError(t, st.CreateTemplate(ctx, hidden))

	_, _, err := svc.UseTemplate(ctx, "owner", hidden.ID)
	assert.True(t, apierr.IsKind(err, apierr.KindNotFound))

	_, _, err = svc.UseTemplate(ctx, "owner", "nope")
	assert.True(t, apierr.IsKind(err, apierr.KindNotFound))
}
