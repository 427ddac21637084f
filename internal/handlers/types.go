package handlers

import (
	"github.com/seuros/jogo/internal/analytics"
	"github.com/seuros/jogo/internal/models"
)

// TrackRequest is the body of POST /api/analytics/track.
type TrackRequest struct {
	FunnelID string         `json:"funnelId"`
	Event    string         `json:"event"`
	Data     map[string]any `json:"data"`
}

// StepInput is a step as sent by the editor. isActive defaults to true.
type StepInput struct {
	ID          string          `json:"id"`
	Type        models.StepType `json:"type" validate:"required"`
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description"`
	Settings    map[string]any  `json:"settings"`
	IsActive    *bool           `json:"isActive"`
}

func (s StepInput) toStep() models.Step {
	active := true
	if s.IsActive != nil {
		active = *s.IsActive
	}
	return models.Step{
		ID:          s.ID,
		Type:        s.Type,
		Title:       s.Title,
		Description: s.Description,
		Settings:    s.Settings,
		IsActive:    active,
	}
}

func toSteps(in []StepInput) []models.Step {
	steps := make([]models.Step, len(in))
	for i, s := range in {
		steps[i] = s.toStep()
	}
	return steps
}

// CreateFunnelRequest is the body of POST /api/funnels.
type CreateFunnelRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Steps       []StepInput            `json:"steps" validate:"dive"`
	Template    string                 `json:"template"`
	Settings    *models.FunnelSettings `json:"settings"`
}

// UpdateFunnelRequest is the body of PUT /api/funnels/:id. Absent fields are kept.
type UpdateFunnelRequest struct {
	Name        *string                `json:"name"`
	Description *string                `json:"description"`
	Status      *models.FunnelStatus   `json:"status" validate:"omitempty,oneof=draft active paused archived"`
	Settings    *models.FunnelSettings `json:"settings"`
	Steps       *[]StepInput           `json:"steps" validate:"omitempty,dive"`
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"max=50"`
	LastName  string `json:"lastName" validate:"max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone" validate:"max=30"`
	Bio       string `json:"bio" validate:"max=500"`
}

type PasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UserStats is the body of GET /api/users/stats.
type UserStats struct {
	Funnels   map[models.FunnelStatus]int64 `json:"funnels"`
	Analytics analytics.Totals              `json:"analytics"`
}

// UseTemplateResponse is the data of POST /api/templates/:id/use.
type UseTemplateResponse struct {
	Template *models.Template `json:"template"`
	Funnel   *models.Funnel   `json:"funnel"`
}

// FeaturedResponse is the body of GET /api/templates/featured/list.
type FeaturedResponse struct {
	Success bool              `json:"success"`
	Count   int               `json:"count"`
	Data    []models.Template `json:"data"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
}
