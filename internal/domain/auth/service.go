package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"facturago/internal/core/apperror"
	"facturago/internal/core/id"
	"facturago/pkg/logger"
)

// Service provides registration and login.
type Service struct {
	repo Repository
	jwt  *JWTService

	bcryptCost int
}

// NewService creates a new auth service.
func NewService(repo Repository, jwt *JWTService) *Service {
	return &Service{
		repo:       repo,
		jwt:        jwt,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// TokenResult is returned on successful login/registration.
type TokenResult struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	User        *User     `json:"user"`
}

// Register creates a new user account and returns an access token.
func (s *Service) Register(ctx context.Context, email, name, password string) (*TokenResult, error) {
	user := NewUser(email, name)
	if err := user.Validate(ctx); err != nil {
		return nil, err
	}

	if len(password) < 8 {
		return nil, apperror.NewValidation("password must be at least 8 characters").
			WithDetail("field", "password")
	}

	exists, err := s.repo.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, apperror.NewDuplicate("user", "email", user.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info(ctx, "user registered", "id", user.ID, "email", user.Email)
	return s.issueToken(user)
}

// Login verifies credentials and returns an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenResult, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperror.IsNotFound(err) {
			// Same response as a wrong password; do not reveal which.
			return nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	return s.issueToken(user)
}

// GetByID looks up an account.
func (s *Service) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) issueToken(user *User) (*TokenResult, error) {
	token, expiresAt, err := s.jwt.GenerateAccessToken(user.ID.String(), user.Email, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &TokenResult{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}
