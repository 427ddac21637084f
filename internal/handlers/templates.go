package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/seuros/jogo/internal/apierr"
	"github.com/seuros/jogo/internal/httpx"
	"github.com/seuros/jogo/internal/models"
	"github.com/seuros/jogo/internal/store"
)

const (
	defaultTemplatePageSize = 12
	featuredTemplateLimit   = 6
)

// HandleListTemplates serves the public catalogue.
func (h *Handler) HandleListTemplates(c fiber.Ctx) error {
	params := ParsePaginationParams(c, defaultTemplatePageSize)
	filter := store.TemplateFilter{
		Category:     c.Query("category"),
		Difficulty:   c.Query("difficulty"),
		Search:       c.Query("search"),
		FeaturedOnly: c.Query("featured") == "true",
		Offset:       params.Offset,
		Limit:        params.Limit,
	}
	if filter.Category == models.CategoryAll {
		filter.Category = ""
	}

	templates, total, err := h.store.ListTemplates(c.Context(), filter)
	if err != nil {
		return apierr.Internal("Failed to fetch templates", err)
	}
	return c.JSON(NewPaginatedResponse(templates, params, total))
}

// HandleTemplateCategories lists category counts, led by the "All Templates" total.
func (h *Handler) HandleTemplateCategories(c fiber.Ctx) error {
	counts, err := h.store.TemplateCategories(c.Context())
	if err != nil {
		return apierr.Internal("Failed to fetch categories", err)
	}

	var total int64
	for _, cat := range counts {
		total += cat.Count
	}
	result := append([]models.CategoryCount{{Name: models.CategoryAll, Count: total}}, counts...)
	return httpx.OK(c, result)
}

func (h *Handler) HandleFeaturedTemplates(c fiber.Ctx) error {
	templates, _, err := h.store.ListTemplates(c.Context(), store.TemplateFilter{
		FeaturedOnly: true,
		Limit:        featuredTemplateLimit,
	})
	if err != nil {
		return apierr.Internal("Failed to fetch featured templates", err)
	}
	if templates == nil {
		templates = []models.Template{}
	}
	return c.JSON(FeaturedResponse{Success: true, Count: len(templates), Data: templates})
}

func (h *Handler) HandleGetTemplate(c fiber.Ctx) error {
	tpl, err := h.store.GetTemplate(c.Context(), c.Params("id"))
	if errors.Is(err, store.ErrNotFound) {
		return apierr.NotFound("Template not found")
	}
	if err != nil {
		return apierr.Internal("Failed to fetch template", err)
	}
	return httpx.OK(c, tpl)
}

// HandleUseTemplate instantiates a template as a new funnel for the caller.
func (h *Handler) HandleUseTemplate(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	tpl, funnel, err := h.funnels.UseTemplate(c.Context(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return httpx.Send(c, fiber.StatusOK, "Template used successfully", UseTemplateResponse{Template: tpl, Funnel: funnel})
}
