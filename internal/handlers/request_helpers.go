package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/seuros/jogo/internal/apierr"
	"github.com/seuros/jogo/internal/httpx"
	"github.com/seuros/jogo/internal/middleware"
)

// Global validator instance
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// bindJSON decodes the body into dst and runs struct validation.
func bindJSON(c fiber.Ctx, dst any) error {
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(dst); err != nil {
			return apierr.Validation("Invalid JSON payload")
		}
	}
	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return apierr.Validation(formatValidationError(validationErrors[0]))
		}
		return apierr.Validation(err.Error())
	}
	return nil
}

// formatValidationError converts validator errors to user-friendly messages
func formatValidationError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Please enter a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// currentUserID returns the authenticated user id set by middleware.Auth.
func currentUserID(c fiber.Ctx) (string, error) {
	user := middleware.GetUser(c)
	if user == nil {
		return "", apierr.Unauthorized("Not authorized, no token")
	}
	return user.UserID, nil
}

// clientIP derives the caller address for geolocation.
func (h *Handler) clientIP(c fiber.Ctx) string {
	return httpx.ClientIP(c, h.proxyMode)
}
