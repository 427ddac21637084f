package handlers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/seuros/jogo/internal/analytics"
	"github.com/seuros/jogo/internal/apierr"
	"github.com/seuros/jogo/internal/httpx"
)

// HandleTrack records a funnel event. Public: the tracking snippet runs on
// visitors' browsers and carries no token.
func (h *Handler) HandleTrack(c fiber.Ctx) error {
	var req TrackRequest
	if err := c.Bind().JSON(&req); err != nil {
		return apierr.Validation("funnelId and event are required")
	}

	ev, err := analytics.NewEvent(req.FunnelID, req.Event, req.Data, analytics.RequestMeta{
		UserAgent: c.Get(fiber.HeaderUserAgent),
		IP:        h.clientIP(c),
		Referer:   c.Get(fiber.HeaderReferer),
	})
	if err != nil {
		return err
	}

	if err := h.tracker.Track(c.Context(), ev); err != nil {
		return err
	}
	return httpx.Message(c, "Event tracked successfully")
}
