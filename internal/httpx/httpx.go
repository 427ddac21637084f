// Package httpx holds the JSON envelope every API response uses.
package httpx

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/seuros/jogo/internal/apierr"
	"github.com/seuros/jogo/internal/logging"
)

// Envelope is the response body shape. Error is only filled outside production.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK writes {success: true, data}.
func OK(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true, Data: data})
}

// Created writes {success: true, data} with 201.
func Created(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Data: data})
}

// Message writes {success: true, message}.
func Message(c fiber.Ctx, message string) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true, Message: message})
}

// Send writes {success: true, message, data} with status.
func Send(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{Success: true, Message: message, Data: data})
}

// Fail writes an error envelope without detail.
func Fail(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Envelope{Success: false, Message: message})
}

// ErrorHandler maps handler errors to the envelope. With exposeDetail the
// underlying cause is included as "error".
func ErrorHandler(exposeDetail bool) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Server Error"
		detail := err.Error()

		var fiberErr *fiber.Error
		if apiErr, ok := apierr.As(err); ok {
			status = apiErr.Status()
			message = apiErr.Message
			detail = apiErr.Detail()
		} else if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			message = fiberErr.Message
			detail = ""
		}

		if status >= fiber.StatusInternalServerError {
			logging.L().Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Error(err))
		}

		body := Envelope{Success: false, Message: message}
		if exposeDetail {
			body.Error = detail
		}
		return c.Status(status).JSON(body)
	}
}

// NotFound is the catch-all route handler.
func NotFound(c fiber.Ctx) error {
	return Fail(c, fiber.StatusNotFound, "Route "+c.Method()+" "+c.OriginalURL()+" not found")
}

// QueryInt fetches an integer query parameter with a default value.
func QueryInt(c fiber.Ctx, key string, defaultValue int) int {
	val := c.Query(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// ClientIP extracts the client address according to proxyMode:
//   - "xforwarded": first entry of X-Forwarded-For, then X-Real-IP
//   - "cloudflare": CF-Connecting-IP
//   - anything else: the connection's remote address
//
// Forwarded headers are ignored unless a proxy mode is configured, so a direct
// caller cannot choose its own address.
func ClientIP(c fiber.Ctx, proxyMode string) string {
	switch proxyMode {
	case "cloudflare":
		if cfIP := strings.TrimSpace(c.Get("CF-Connecting-IP")); cfIP != "" {
			return cfIP
		}
	case "xforwarded":
		if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
			return strings.TrimSpace(strings.Split(forwarded, ",")[0])
		}
		if realIP := strings.TrimSpace(c.Get("X-Real-IP")); realIP != "" {
			return realIP
		}
	}
	return c.RequestCtx().RemoteIP().String()
}
