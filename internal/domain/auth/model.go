package auth

import (
	"context"
	"strings"
	"time"

	"facturago/internal/core/apperror"
	"facturago/internal/core/id"
)

// User represents a registered account. The user's ID string is the
// owner_id every series, invoice and catalog entity is scoped by.
type User struct {
	ID           id.ID     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	IsAdmin      bool      `db:"is_admin" json:"isAdmin"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// NewUser creates a user with generated ID. Password hash is set separately.
func NewUser(email, name string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        id.New(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks user invariants.
func (u *User) Validate(ctx context.Context) error {
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return apperror.NewValidation("valid email is required").
			WithDetail("field", "email")
	}
	if u.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

// Repository defines storage operations for users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
