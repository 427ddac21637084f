// Package funnels implements funnel editing, publishing and template instantiation.
package funnels

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/seuros/jogo/internal/apierr"
	"github.com/seuros/jogo/internal/calendar"
	"github.com/seuros/jogo/internal/models"
	"github.com/seuros/jogo/internal/store"
)

const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
)

// Store is the persistence the funnel service needs.
type Store interface {
	store.Funnels
	GetTemplate(ctx context.Context, id string) (*models.Template, error)
	IncrementTemplateDownloads(ctx context.Context, id string) (*models.Template, error)
}

type Service struct {
	store Store
	cal   calendar.Calendar
}

func NewService(s Store, cal calendar.Calendar) *Service {
	return &Service{store: s, cal: cal}
}

// CreateInput holds the fields a client may set on a new funnel.
type CreateInput struct {
	Name        string
	Description string
	Steps       []models.Step
	TemplateID  string
	Settings    *models.FunnelSettings
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	Status      *models.FunnelStatus
	Settings    *models.FunnelSettings
	Steps       *[]models.Step
}

// ListInput filters the owner's funnels. Page is 1-based.
type ListInput struct {
	Status string
	Search string
	Page   int
	Limit  int
}

// Page is one page of funnels plus the total match count.
type Page struct {
	Funnels []models.Funnel
	Total   int64
	Page    int
	Pages   int
}

func lookupError(err error, action string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apierr.NotFound("Funnel not found")
	}
	return apierr.Internal(action, err)
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apierr.Validation("Funnel name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", apierr.Validation(fmt.Sprintf("Funnel name cannot exceed %d characters", MaxNameLength))
	}
	return name, nil
}

func validateDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return "", apierr.Validation(fmt.Sprintf("Description cannot exceed %d characters", MaxDescriptionLength))
	}
	return description, nil
}

func validateSteps(steps []models.Step) error {
	for _, step := range steps {
		if !step.Type.Valid() {
			return apierr.Validation(fmt.Sprintf("Invalid step type %q", step.Type))
		}
		if strings.TrimSpace(step.Title) == "" {
			return apierr.Validation("Step title is required")
		}
	}
	return nil
}

func withDefaults(settings models.FunnelSettings) models.FunnelSettings {
	settings.Theme = settings.Theme.WithDefaults()
	if settings.Integrations == nil {
		settings.Integrations = []models.Integration{}
	}
	return settings
}

// Create stores a new draft funnel owned by userID.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*models.Funnel, error) {
	name, err := validateName(in.Name)
	if err != nil {
		return nil, err
	}
	description, err := validateDescription(in.Description)
	if err != nil {
		return nil, err
	}
	if err := validateSteps(in.Steps); err != nil {
		return nil, err
	}

	var settings models.FunnelSettings
	if in.Settings != nil {
		settings = *in.Settings
	}
	funnel := &models.Funnel{
		UserID:      userID,
		Name:        name,
		Description: description,
		Steps:       NormalizeSteps(in.Steps),
		Status:      models.FunnelDraft,
		TemplateID:  in.TemplateID,
		Settings:    withDefaults(settings),
	}
	if err := s.store.CreateFunnel(ctx, funnel); err != nil {
		return nil, apierr.Internal("Failed to create funnel", err)
	}
	return funnel, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*models.Funnel, error) {
	funnel, err := s.store.GetOwnedFunnel(ctx, id, userID)
	if err != nil {
		return nil, lookupError(err, "Failed to fetch funnel")
	}
	return funnel, nil
}

// List returns a page of the owner's funnels, most recently updated first.
// Status "all" or "" disables the status filter.
func (s *Service) List(ctx context.Context, userID string, in ListInput) (*Page, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	filter := store.FunnelFilter{
		UserID: userID,
		Search: strings.TrimSpace(in.Search),
		Limit:  in.Limit,
		Offset: (in.Page - 1) * in.Limit,
	}
	if in.Status != "" && in.Status != "all" {
		status := models.FunnelStatus(in.Status)
		if !status.Valid() {
			return nil, apierr.Validation(fmt.Sprintf("Invalid status %q", in.Status))
		}
		filter.Status = status
	}

	funnels, total, err := s.store.ListFunnels(ctx, filter)
	if err != nil {
		return nil, apierr.Internal("Failed to fetch funnels", err)
	}
	return &Page{Funnels: funnels, Total: total, Page: in.Page, Pages: PageCount(total, in.Limit)}, nil
}

// PageCount is the number of pages needed for total items at limit per page.
func PageCount(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// Update applies in to an owned funnel. Owner and stats are never touched.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (*models.Funnel, error) {
	funnel, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if funnel.Name, err = validateName(*in.Name); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		if funnel.Description, err = validateDescription(*in.Description); err != nil {
			return nil, err
		}
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apierr.Validation(fmt.Sprintf("Invalid status %q", *in.Status))
		}
		funnel.Status = *in.Status
	}
	if in.Settings != nil {
		funnel.Settings = withDefaults(*in.Settings)
	}
	if in.Steps != nil {
		if err := validateSteps(*in.Steps); err != nil {
			return nil, err
		}
		funnel.Steps = NormalizeSteps(*in.Steps)
	}

	if err := s.store.UpdateFunnel(ctx, funnel); err != nil {
		return nil, lookupError(err, "Failed to update funnel")
	}
	return funnel, nil
}

// Delete removes an owned funnel. Its analytics snapshots are kept.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteFunnel(ctx, id, userID); err != nil {
		return lookupError(err, "Failed to delete funnel")
	}
	return nil
}

// TogglePublish flips isPublished. Publishing activates the funnel and stamps
// publishedAt; unpublishing returns it to draft.
func (s *Service) TogglePublish(ctx context.Context, userID, id string) (*models.Funnel, error) {
	funnel, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	funnel.IsPublished = !funnel.IsPublished
	if funnel.IsPublished {
		now := s.cal.Instant()
		funnel.Status = models.FunnelActive
		funnel.PublishedAt = &now
	} else {
		funnel.Status = models.FunnelDraft
	}

	if err := s.store.UpdateFunnel(ctx, funnel); err != nil {
		return nil, lookupError(err, "Failed to update funnel")
	}
	return funnel, nil
}

// Duplicate copies an owned funnel into a fresh, unpublished draft with zero stats.
func (s *Service) Duplicate(ctx context.Context, userID, id string) (*models.Funnel, error) {
	original, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	steps := make([]models.Step, len(original.Steps))
	for i, step := range original.Steps {
		step.ID = ""
		steps[i] = step
	}
	dup := &models.Funnel{
		UserID:      userID,
		Name:        original.Name + " (Copy)",
		Description: original.Description,
		Steps:       NormalizeSteps(steps),
		Status:      models.FunnelDraft,
		TemplateID:  original.TemplateID,
		Settings:    original.Settings,
	}
	if err := s.store.CreateFunnel(ctx, dup); err != nil {
		return nil, apierr.Internal("Failed to duplicate funnel", err)
	}
	return dup, nil
}

// UseTemplate counts a download on the template and instantiates it as a new
// funnel for userID. The download is not rolled back if creation fails.
func (s *Service) UseTemplate(ctx context.Context, userID, templateID string) (*models.Template, *models.Funnel, error) {
	tpl, err := s.store.IncrementTemplateDownloads(ctx, templateID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, apierr.NotFound("Template not found")
	}
	if err != nil {
		return nil, nil, apierr.Internal("Failed to use template", err)
	}

	funnel := &models.Funnel{
		UserID:      userID,
		Name:        fmt.Sprintf("%s - %s", tpl.Name, s.cal.TodayKey()),
		Description: tpl.Description,
		Steps:       StepsFromBlueprints(tpl.Steps),
		Status:      models.FunnelDraft,
		TemplateID:  tpl.ID,
		Settings:    withDefaults(models.FunnelSettings{}),
	}
	if err := s.store.CreateFunnel(ctx, funnel); err != nil {
		return tpl, nil, apierr.Internal("Failed to create funnel from template", err)
	}
	return tpl, funnel, nil
}
