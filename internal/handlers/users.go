package handlers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/seuros/jogo/internal/apierr"
	"github.com/seuros/jogo/internal/auth"
	"github.com/seuros/jogo/internal/httpx"
	"github.com/seuros/jogo/internal/models"
)

func (h *Handler) HandleUpdateProfile(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req ProfileRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	user, err := h.auth.UpdateProfile(c.Context(), userID, auth.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Bio:       req.Bio,
	})
	if err != nil {
		return err
	}
	return httpx.Send(c, fiber.StatusOK, "Profile updated successfully", user)
}

func (h *Handler) HandleChangePassword(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req PasswordRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	if err := h.auth.ChangePassword(c.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return httpx.Message(c, "Password updated successfully")
}

// HandleUserStats reports funnel counts per status and lifetime analytics totals.
func (h *Handler) HandleUserStats(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	counts, err := h.store.CountFunnelsByStatus(c.Context(), userID)
	if err != nil {
		return apierr.Internal("Failed to fetch user statistics", err)
	}
	byStatus := make(map[models.FunnelStatus]int64, len(models.FunnelStatuses))
	for _, status := range models.FunnelStatuses {
		byStatus[status] = counts[status]
	}

	totals, err := h.reporter.UserTotals(c.Context(), userID)
	if err != nil {
		return err
	}
	return httpx.OK(c, UserStats{Funnels: byStatus, Analytics: totals})
}
