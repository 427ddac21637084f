package handlers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/seuros/jogo/internal/auth"
	"github.com/seuros/jogo/internal/httpx"
)

// HandleRegister creates an account and returns a session token.
func (h *Handler) HandleRegister(c fiber.Ctx) error {
	var req RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	session, err := h.auth.Register(c.Context(), auth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}
	return httpx.Created(c, session)
}

// HandleLogin exchanges credentials for a session token.
func (h *Handler) HandleLogin(c fiber.Ctx) error {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	session, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return httpx.OK(c, session)
}

// HandleMe returns the current user
func (h *Handler) HandleMe(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	user, err := h.auth.Me(c.Context(), userID)
	if err != nil {
		return err
	}
	return httpx.OK(c, user)
}
