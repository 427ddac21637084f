package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/seuros/jogo/internal/httpx"
	"github.com/seuros/jogo/internal/logging"
)

// HandleUp is the liveness probe used by the healthcheck command and
// container orchestrators. It fails when the store is unreachable.
func (h *Handler) HandleUp(c fiber.Ctx) error {
	if err := h.store.Ping(c.Context()); err != nil {
		logging.L().Warn("store ping failed", zap.Error(err))
		return httpx.Fail(c, fiber.StatusServiceUnavailable, "Store unavailable")
	}
	return c.SendString("OK")
}

func (h *Handler) HandleHealth(c fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Success:     true,
		Message:     "Funnel Builder API is running",
		Timestamp:   h.cal.Instant().UTC().Format(time.RFC3339),
		Environment: h.env,
		Version:     h.version,
	})
}
