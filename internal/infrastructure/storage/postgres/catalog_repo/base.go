// Package catalog_repo provides PostgreSQL implementations for catalog
// repositories (clients, companies).
package catalog_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"facturago/internal/core/apperror"
	"facturago/internal/core/entity"
	"facturago/internal/core/id"
	"facturago/internal/domain"
	"facturago/internal/infrastructure/storage/postgres"
)

// BaseCatalogRepo implements the CRUD surface shared by all catalog
// tables. Concrete repositories embed it and add their own lookups.
type BaseCatalogRepo[T entity.Validatable] struct {
	txManager  *postgres.TxManager
	tableName  string
	selectCols []string
	newFn      func() T
}

// NewBaseCatalogRepo wires a catalog repository for one table. selectCols
// is the authoritative column list; struct fields without a matching
// column are ignored on write.
func NewBaseCatalogRepo[T entity.Validatable](
	txManager *postgres.TxManager,
	tableName string,
	selectCols []string,
	newFn func() T,
) *BaseCatalogRepo[T] {
	return &BaseCatalogRepo[T]{
		txManager:  txManager,
		tableName:  tableName,
		selectCols: selectCols,
		newFn:      newFn,
	}
}

// Builder returns a squirrel builder with dollar placeholders.
func (r *BaseCatalogRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// columnValues keeps only known table columns, minus skip.
func (r *BaseCatalogRepo[T]) columnValues(data map[string]any, skip ...string) map[string]any {
	out := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		skipped := false
		for _, s := range skip {
			if col == s {
				skipped = true
				break
			}
		}
		if skipped {
			continue
		}
		if val, ok := data[col]; ok {
			out[col] = val
		}
	}
	return out
}

// Create inserts a new entity using its "db" tags.
func (r *BaseCatalogRepo[T]) Create(ctx context.Context, ent T) error {
	data := postgres.StructToMap(ent)
	if len(data) == 0 {
		return fmt.Errorf("entity %T has no db-tagged fields", ent)
	}

	q := r.Builder().
		Insert(r.tableName).
		SetMap(r.columnValues(data))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err = querier.Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return apperror.NewDuplicate(r.tableName, "code", fmt.Sprintf("%v", data["code"]))
		}
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}

	return nil
}

// Update modifies an existing entity with optimistic locking. The version
// column is bumped here, never by the caller.
func (r *BaseCatalogRepo[T]) Update(ctx context.Context, ent T) error {
	data := postgres.StructToMap(ent)
	if len(data) == 0 {
		return fmt.Errorf("entity %T has no db-tagged fields", ent)
	}

	entityID, ok := data["id"]
	if !ok {
		return fmt.Errorf("entity %T is missing a db-tagged id", ent)
	}

	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("entity %T is missing an int version column", ent)
	}

	// id and owner_id are immutable; version is bumped in the SET below.
	q := r.Builder().
		Update(r.tableName).
		SetMap(r.columnValues(data, "id", "owner_id", "version")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"version": version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.tableName, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.tableName, entityID)
	}

	return nil
}

// SetDeletionMark sets or clears the soft-delete mark.
func (r *BaseCatalogRepo[T]) SetDeletionMark(ctx context.Context, entityID id.ID, marked bool) error {
	q := r.Builder().
		Update(r.tableName).
		Set("deletion_mark", marked).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entityID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set deletion mark on %s: %w", r.tableName, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.tableName, entityID.String())
	}

	return nil
}

// baseSelect starts a SELECT over the full column list.
func (r *BaseCatalogRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.selectCols...).
		From(r.tableName)
}

// GetByID loads one entity by primary key.
func (r *BaseCatalogRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	ent := r.newFn()

	q := r.baseSelect().
		Where(squirrel.Eq{"id": entityID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return ent, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, ent, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return ent, apperror.NewNotFound(r.tableName, entityID.String())
		}
		return ent, fmt.Errorf("get by id: %w", err)
	}

	return ent, nil
}

// GetByCode retrieves entity by code within an owner's scope.
func (r *BaseCatalogRepo[T]) GetByCode(ctx context.Context, ownerID, code string) (T, error) {
	ent := r.newFn()

	q := r.baseSelect().
		Where(squirrel.Eq{"owner_id": ownerID}).
		Where(squirrel.Eq{"code": code}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return ent, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, ent, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return ent, apperror.NewNotFound(r.tableName, code)
		}
		return ent, fmt.Errorf("get by code: %w", err)
	}

	return ent, nil
}

// List applies the filter, counts the total, then pages the rows.
func (r *BaseCatalogRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if filter.OwnerID != "" {
		q = q.Where(squirrel.Eq{"owner_id": filter.OwnerID})
	}

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"code": pattern},
		})
	}

	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}

		countQ := r.Builder().
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

	orderBy, err := r.parseOrderBy(filter.OrderBy)
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
		return result, fmt.Errorf("list: %w", err)
	}

	return result, nil
}

// Exists reports whether a row with this id is present.
func (r *BaseCatalogRepo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	q := r.Builder().
		Select("1").
		From(r.tableName).
		Where(squirrel.Eq{"id": entityID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	var exists int
	err = querier.QueryRow(ctx, sql, args...).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}

	return true, nil
}

// parseOrderBy validates the order field against known columns.
// A leading '-' means descending ("-created_at" -> "created_at DESC").
func (r *BaseCatalogRepo[T]) parseOrderBy(orderBy string) (string, error) {
	if orderBy == "" {
		return "name ASC", nil
	}

	field := orderBy
	dir := "ASC"
	if strings.HasPrefix(orderBy, "-") {
		field = orderBy[1:]
		dir = "DESC"
	}

	for _, col := range r.selectCols {
		if col == field {
			return field + " " + dir, nil
		}
	}

	return "", apperror.NewValidation("invalid order field").
		WithDetail("field", field)
}
