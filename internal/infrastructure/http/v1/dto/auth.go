package dto

import (
	"time"

	"facturago/internal/domain/auth"
)

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the payload for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse describes an account.
type UserResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
}

// TokenResponse carries the issued access token.
type TokenResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        UserResponse `json:"user"`
}

// FromUser maps a user entity.
func FromUser(u *auth.User) UserResponse {
	return UserResponse{
		ID:      u.ID.String(),
		Email:   u.Email,
		Name:    u.Name,
		IsAdmin: u.IsAdmin,
	}
}

// FromTokenResult maps the auth service result.
func FromTokenResult(r *auth.TokenResult) TokenResponse {
	return TokenResponse{
		AccessToken: r.AccessToken,
		ExpiresAt:   r.ExpiresAt,
		User:        FromUser(r.User),
	}
}
