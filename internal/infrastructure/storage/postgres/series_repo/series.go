// Package series_repo provides the PostgreSQL repository for numbering series.
package series_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"facturago/internal/core/apperror"
	"facturago/internal/core/id"
	"facturago/internal/domain"
	"facturago/internal/domain/series"
	"facturago/internal/infrastructure/storage/postgres"
)

// Compile-time check.
var _ series.Repository = (*SeriesRepo)(nil)

var seriesCols = postgres.ExtractDBColumns[series.Series]()

// SeriesRepo is the PostgreSQL repository for numbering series.
type SeriesRepo struct {
	txManager *postgres.TxManager
}

// NewSeriesRepo creates a series repository.
func NewSeriesRepo(txManager *postgres.TxManager) *SeriesRepo {
	return &SeriesRepo{txManager: txManager}
}

func (r *SeriesRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new series.
func (r *SeriesRepo) Create(ctx context.Context, s *series.Series) error {
	data := postgres.StructToMap(s)

	q := r.builder().
		Insert("series").
		SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err, "series_owner_type_default_idx") {
			return apperror.NewConflict("another series is already the default for this type")
		}
		if postgres.IsUniqueViolation(err, "") {
			return apperror.NewDuplicate("series", "pattern", s.Pattern)
		}
		return fmt.Errorf("insert series: %w", err)
	}

	return nil
}

// GetByID retrieves a series by ID.
func (r *SeriesRepo) GetByID(ctx context.Context, seriesID id.ID) (*series.Series, error) {
	var s series.Series

	q := r.builder().
		Select(seriesCols...).
		From("series").
		Where(squirrel.Eq{"id": seriesID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("series", seriesID.String())
		}
		return nil, fmt.Errorf("get series: %w", err)
	}

	return &s, nil
}

// GetDefault retrieves the owner's default series for the given type.
func (r *SeriesRepo) GetDefault(ctx context.Context, ownerID string, typ series.Type) (*series.Series, error) {
	var s series.Series

	q := r.builder().
		Select(seriesCols...).
		From("series").
		Where(squirrel.Eq{"owner_id": ownerID}).
		Where(squirrel.Eq{"type": typ}).
		Where(squirrel.Eq{"is_default": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("default series", string(typ))
		}
		return nil, fmt.Errorf("get default series: %w", err)
	}

	return &s, nil
}

// Update modifies a series with optimistic locking.
func (r *SeriesRepo) Update(ctx context.Context, s *series.Series) error {
	data := postgres.StructToMap(s)

	setData := make(map[string]any, len(data))
	for col, val := range data {
		if col == "id" || col == "owner_id" || col == "version" {
			continue
		}
		setData[col] = val
	}
	setData["updated_at"] = time.Now().UTC()

	q := r.builder().
		Update("series").
		SetMap(setData).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": s.ID}).
		Where(squirrel.Eq{"version": s.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		if postgres.IsUniqueViolation(err, "series_owner_type_default_idx") {
			return apperror.NewConflict("another series is already the default for this type")
		}
		return fmt.Errorf("update series: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("series", s.ID)
	}

	return nil
}

// Delete soft-deletes a series.
func (r *SeriesRepo) Delete(ctx context.Context, seriesID id.ID) error {
	q := r.builder().
		Update("series").
		Set("deletion_mark", true).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": seriesID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete series: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("series", seriesID.String())
	}

	return nil
}

// ClearDefault drops the default flag from every series of the (owner, type)
// pair. Runs inside the transaction that promotes the new default.
func (r *SeriesRepo) ClearDefault(ctx context.Context, ownerID string, typ series.Type) error {
	q := r.builder().
		Update("series").
		Set("is_default", false).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"owner_id": ownerID}).
		Where(squirrel.Eq{"type": typ}).
		Where(squirrel.Eq{"is_default": true})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("clear default: %w", err)
	}

	return nil
}

// IncrementCounter bumps the advisory counter atomically and returns the
// new value. Single UPDATE, so concurrent finalizes serialize on the row.
func (r *SeriesRepo) IncrementCounter(ctx context.Context, seriesID id.ID) (int, error) {
	sql := `
		UPDATE series
		SET counter = counter + 1, updated_at = now()
		WHERE id = $1
		RETURNING counter
	`

	querier := r.txManager.GetQuerier(ctx)
	var counter int
	if err := querier.QueryRow(ctx, sql, seriesID).Scan(&counter); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperror.NewNotFound("series", seriesID.String())
		}
		return 0, fmt.Errorf("increment counter: %w", err)
	}

	return counter, nil
}

// List retrieves series with filtering and pagination.
func (r *SeriesRepo) List(ctx context.Context, filter series.ListFilter) (domain.ListResult[*series.Series], error) {
	result := domain.ListResult[*series.Series]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().
		Select(seriesCols...).
		From("series")

	if filter.OwnerID != "" {
		q = q.Where(squirrel.Eq{"owner_id": filter.OwnerID})
	}

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"pattern": "%" + filter.Search + "%"})
	}

	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}

	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"type": *filter.Type})
	}

	if filter.IsDefault != nil {
		q = q.Where(squirrel.Eq{"is_default": *filter.IsDefault})
	}

	countQ := r.builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list series: %w", err)
	}

	return result, nil
}

func parseOrderBy(orderBy string) (string, error) {
	if orderBy == "" || orderBy == "name" {
		return "pattern ASC", nil
	}

	field := orderBy
	dir := "ASC"
	if strings.HasPrefix(orderBy, "-") {
		field = orderBy[1:]
		dir = "DESC"
	}

	for _, col := range seriesCols {
		if col == field {
			return field + " " + dir, nil
		}
	}

	return "", apperror.NewValidation("invalid order field").
		WithDetail("field", field)
}
