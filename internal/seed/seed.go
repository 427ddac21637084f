// Package seed loads the built-in template catalogue.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/seuros/jogo/internal/logging"
	"github.com/seuros/jogo/internal/models"
	"github.com/seuros/jogo/internal/store"
)

//go:embed templates.yaml
var catalogue []byte

// Templates decodes the embedded catalogue. Every template is active.
func Templates() ([]models.Template, error) {
	return parse(catalogue)
}

func parse(data []byte) ([]models.Template, error) {
	var templates []models.Template
	if err := yaml.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("decode template catalogue: %w", err)
	}
	for i := range templates {
		tpl := &templates[i]
		if tpl.Name == "" {
			return nil, fmt.Errorf("template %d has no name", i)
		}
		if !models.ValidCategory(tpl.Category) {
			return nil, fmt.Errorf("template %q: unknown category %q", tpl.Name, tpl.Category)
		}
		for _, step := range tpl.Steps {
			if !step.Type.Valid() {
				return nil, fmt.Errorf("template %q: unknown step type %q", tpl.Name, step.Type)
			}
		}
		tpl.IsActive = true
	}
	return templates, nil
}

// Seed inserts the catalogue. A non-empty catalogue is left alone unless
// replace is set, in which case every existing template is deleted first.
// It returns how many templates were inserted.
func Seed(ctx context.Context, s store.Templates, replace bool) (int, error) {
	templates, err := Templates()
	if err != nil {
		return 0, err
	}

	existing, err := s.CountTemplates(ctx)
	if err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	if existing > 0 {
		if !replace {
			logging.L().Info("template catalogue already seeded", zap.Int64("templates", existing))
			return 0, nil
		}
		if err := s.DeleteTemplates(ctx); err != nil {
			return 0, fmt.Errorf("clear templates: %w", err)
		}
	}

	for i := range templates {
		if err := s.CreateTemplate(ctx, &templates[i]); err != nil {
			return i, fmt.Errorf("insert template %q: %w", templates[i].Name, err)
		}
	}
	logging.L().Info("seeded template catalogue", zap.Int("templates", len(templates)))
	return len(templates), nil
}
