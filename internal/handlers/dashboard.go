package handlers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/seuros/jogo/internal/analytics"
	"github.com/seuros/jogo/internal/httpx"
)

// HandleDashboard aggregates the caller's analytics over ?period= days.
func (h *Handler) HandleDashboard(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	days, err := analytics.ParsePeriod(c.Query("period"), h.defaultPeriod)
	if err != nil {
		return err
	}

	dash, err := h.reporter.Dashboard(c.Context(), userID, days)
	if err != nil {
		return err
	}
	return httpx.OK(c, dash)
}

// HandleFunnelAnalytics returns the daily snapshots of one of the caller's funnels.
func (h *Handler) HandleFunnelAnalytics(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	days, err := analytics.ParsePeriod(c.Query("period"), h.defaultPeriod)
	if err != nil {
		return err
	}

	report, err := h.reporter.FunnelReport(c.Context(), userID, c.Params("id"), days)
	if err != nil {
		return err
	}
	return httpx.OK(c, report)
}
