// Package auth handles accounts: registration, login, bearer tokens and profile changes.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/seuros/jogo/internal/apierr"
	"github.com/seuros/jogo/internal/models"
	"github.com/seuros/jogo/internal/store"
)

// Session is returned on register and login.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type ProfileInput struct {
	FirstName string
	LastName  string
	Phone     string
	Bio       string
}

type Service struct {
	users  store.Users
	tokens *Issuer
}

func NewService(users store.Users, tokens *Issuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// Register creates an account and signs the user in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	user, err := s.CreateUser(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

// CreateUser validates in and stores a new free-plan user without issuing a token.
func (s *Service) CreateUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, apierr.Validation("Email and password are required")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apierr.Validation("Password must be at least 6 characters")
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apierr.Validation("User already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apierr.Internal("Failed to register user", err)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, apierr.Internal("Failed to register user", err)
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Plan:         models.PlanFree,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apierr.Validation("User already exists")
		}
		return nil, apierr.Internal("Failed to register user", err)
	}
	return user, nil
}

// Login checks credentials. Unknown email and wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, store.ErrNotFound) {
		return nil, apierr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, apierr.Internal("Failed to log in", err)
	}
	ok, err := CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, apierr.Internal("Failed to log in", err)
	}
	if !ok {
		return nil, apierr.Unauthorized("Invalid credentials")
	}
	return s.session(user)
}

func (s *Service) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apierr.Internal("Failed to issue token", err)
	}
	return &Session{Token: token, User: user}, nil
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apierr.Unauthorized("Not authorized, token failed")
	}
	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apierr.Unauthorized("Not authorized, user not found")
	}
	if err != nil {
		return nil, apierr.Internal("Failed to authenticate", err)
	}
	return user, nil
}

func (s *Service) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apierr.NotFound("User not found")
	}
	if err != nil {
		return nil, apierr.Internal("Failed to fetch user", err)
	}
	return user, nil
}

// UpdateProfile replaces the editable profile fields. First and last name are required.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	first, last := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	if first == "" || last == "" {
		return nil, apierr.Validation("First name and last name are required")
	}
	user := &models.User{
		ID:        userID,
		FirstName: first,
		LastName:  last,
		Phone:     strings.TrimSpace(in.Phone),
		Bio:       strings.TrimSpace(in.Bio),
	}
	if err := s.users.UpdateUserProfile(ctx, user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apierr.NotFound("User not found")
		}
		return nil, apierr.Internal("Failed to update profile", err)
	}
	return user, nil
}

// ChangePassword verifies current before storing a hash of next.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		return apierr.Validation("Current password and new password are required")
	}
	if len(next) < MinPasswordLength {
		return apierr.Validation("New password must be at least 6 characters")
	}

	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := CheckPassword(user.PasswordHash, current)
	if err != nil {
		return apierr.Internal("Failed to update password", err)
	}
	if !ok {
		return apierr.Validation("Current password is incorrect")
	}

	hash, err := HashPassword(next)
	if err != nil {
		return apierr.Internal("Failed to update password", err)
	}
	if err := s.users.UpdateUserPassword(ctx, userID, hash); err != nil {
		return apierr.Internal("Failed to update password", err)
	}
	return nil
}
