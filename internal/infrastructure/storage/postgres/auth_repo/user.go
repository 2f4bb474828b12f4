// Package auth_repo provides the PostgreSQL repository for user accounts.
package auth_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"facturago/internal/core/apperror"
	"facturago/internal/core/id"
	"facturago/internal/domain/auth"
	"facturago/internal/infrastructure/storage/postgres"
)

// Compile-time check.
var _ auth.Repository = (*UserRepo)(nil)

var userCols = postgres.ExtractDBColumns[auth.User]()

// UserRepo is the PostgreSQL repository for users.
type UserRepo struct {
	txManager *postgres.TxManager
}

// NewUserRepo creates a user repository.
func NewUserRepo(txManager *postgres.TxManager) *UserRepo {
	return &UserRepo{txManager: txManager}
}

func (r *UserRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	data := postgres.StructToMap(user)

	q := r.builder().
		Insert("users").
		SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return apperror.NewDuplicate("user", "email", user.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	var user auth.User

	q := r.builder().
		Select(userCols...).
		From("users").
		Where(squirrel.Eq{"id": userID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &user, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", userID.String())
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	var user auth.User

	q := r.builder().
		Select(userCols...).
		From("users").
		Where(squirrel.Eq{"email": strings.ToLower(email)}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &user, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", email)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

// ExistsByEmail checks whether a user with the email exists.
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	q := r.builder().
		Select("1").
		From("users").
		Where(squirrel.Eq{"email": strings.ToLower(email)}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	var one int
	err = querier.QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists by email: %w", err)
	}

	return true, nil
}
