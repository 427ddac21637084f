package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/seuros/jogo/internal/apierr"
	"github.com/seuros/jogo/internal/models"
)

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// UserContext holds the authenticated user information
type UserContext struct {
	UserID string
	Email  string
	User   *models.User
}

const userKey = "user"

// Auth validates the Authorization bearer token and loads the user into locals.
func Auth(a Authenticator) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return apierr.Unauthorized("Not authorized, no token")
		}

		user, err := a.Authenticate(c.Context(), token)
		if err != nil {
			return err
		}

		c.Locals(userKey, &UserContext{UserID: user.ID, Email: user.Email, User: user})
		return c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetUser retrieves the authenticated user from context
func GetUser(c fiber.Ctx) *UserContext {
	if user, ok := c.Locals(userKey).(*UserContext); ok {
		return user
	}
	return nil
}
