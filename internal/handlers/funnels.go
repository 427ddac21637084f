package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/seuros/jogo/internal/funnels"
	"github.com/seuros/jogo/internal/httpx"
)

const defaultFunnelPageSize = 10

func (h *Handler) HandleListFunnels(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	params := ParsePaginationParams(c, defaultFunnelPageSize)

	page, err := h.funnels.List(c.Context(), userID, funnels.ListInput{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   params.Page,
		Limit:  params.Limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(NewPaginatedResponse(page.Funnels, params, page.Total))
}

func (h *Handler) HandleGetFunnel(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	funnel, err := h.funnels.Get(c.Context(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return httpx.OK(c, funnel)
}

func (h *Handler) HandleCreateFunnel(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req CreateFunnelRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	funnel, err := h.funnels.Create(c.Context(), userID, funnels.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Steps:       toSteps(req.Steps),
		TemplateID:  req.Template,
		Settings:    req.Settings,
	})
	if err != nil {
		return err
	}
	return httpx.Send(c, fiber.StatusCreated, "Funnel created successfully", funnel)
}

func (h *Handler) HandleUpdateFunnel(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req UpdateFunnelRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	in := funnels.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Settings:    req.Settings,
	}
	if req.Steps != nil {
		steps := toSteps(*req.Steps)
		in.Steps = &steps
	}

	funnel, err := h.funnels.Update(c.Context(), userID, c.Params("id"), in)
	if err != nil {
		return err
	}
	return httpx.Send(c, fiber.StatusOK, "Funnel updated successfully", funnel)
}

func (h *Handler) HandleDeleteFunnel(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	if err := h.funnels.Delete(c.Context(), userID, c.Params("id")); err != nil {
		return err
	}
	return httpx.Message(c, "Funnel deleted successfully")
}

func (h *Handler) HandleTogglePublish(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	funnel, err := h.funnels.TogglePublish(c.Context(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	state := "unpublished"
	if funnel.IsPublished {
		state = "published"
	}
	return httpx.Send(c, fiber.StatusOK, fmt.Sprintf("Funnel %s successfully", state), funnel)
}

func (h *Handler) HandleDuplicateFunnel(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	funnel, err := h.funnels.Duplicate(c.Context(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return httpx.Send(c, fiber.StatusCreated, "Funnel duplicated successfully", funnel)
}
