package funnels

import (
	"sort"

	"github.com/google/uuid"

	"github.com/seuros/jogo/internal/models"
)

// NewStepID returns a fresh step identifier.
func NewStepID() string {
	return "step-" + uuid.NewString()
}

// NormalizeSteps renumbers steps 1..n in slice order and assigns ids to steps
// that have none. The input slice is not modified.
func NormalizeSteps(steps []models.Step) []models.Step {
	out := make([]models.Step, len(steps))
	for i, step := range steps {
		if step.ID == "" {
			step.ID = NewStepID()
		}
		if step.Settings == nil {
			step.Settings = map[string]any{}
		}
		step.Order = i + 1
		out[i] = step
	}
	return out
}

// StepsFromBlueprints instantiates template blueprints. A blueprint order of
// zero or less falls back to its position; ties keep catalogue order.
func StepsFromBlueprints(blueprints []models.StepBlueprint) []models.Step {
	steps := make([]models.Step, len(blueprints))
	for i, bp := range blueprints {
		order := bp.Order
		if order <= 0 {
			order = i + 1
		}
		settings := make(map[string]any, len(bp.Settings))
		for k, v := range bp.Settings {
			settings[k] = v
		}
		steps[i] = models.Step{
			ID:          NewStepID(),
			Type:        bp.Type,
			Title:       bp.Title,
			Description: bp.Description,
			Settings:    settings,
			Order:       order,
			IsActive:    true,
		}
	}
	sort.SliceStable(steps, func(a, b int) bool { return steps[a].Order < steps[b].Order })
	return NormalizeSteps(steps)
}
