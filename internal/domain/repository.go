// Package domain holds the service layer shared by all catalogs plus the
// filter, pagination and hook types the repositories and handlers agree on.
package domain

import (
	"context"

	"facturago/internal/core/entity"
	"facturago/internal/core/id"
)

// ListFilter is the common shape of list queries.
type ListFilter struct {
	// OwnerID scopes the query; always set from the authenticated user.
	OwnerID string

	// Search matches a substring of the searchable columns.
	Search string

	IDs []id.ID

	// IncludeDeleted also returns soft-deleted records.
	IncludeDeleted bool

	// OrderBy names a column, "-" prefix for descending.
	OrderBy string

	Limit  int
	Offset int
}

// DefaultListFilter returns the defaults handlers start from.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "name",
	}
}

// ListResult is one page of items plus the unpaged total.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// CatalogRepository is the storage contract for catalog entities
// (clients, companies). Update uses optimistic locking on the version
// column; deletion is a soft mark, catalogs expose no hard delete.
type CatalogRepository[T entity.Validatable] interface {
	Create(ctx context.Context, entity T) error
	GetByID(ctx context.Context, id id.ID) (T, error)

	// GetByCode looks up by the human code, unique per owner.
	GetByCode(ctx context.Context, ownerID, code string) (T, error)

	Update(ctx context.Context, entity T) error
	SetDeletionMark(ctx context.Context, id id.ID, marked bool) error
	List(ctx context.Context, filter ListFilter) (ListResult[T], error)
	Exists(ctx context.Context, id id.ID) (bool, error)
}

// HookEvent names a point in the entity lifecycle.
type HookEvent string

const (
	BeforeCreate HookEvent = "before_create"
	AfterCreate  HookEvent = "after_create"
	BeforeUpdate HookEvent = "before_update"
	AfterUpdate  HookEvent = "after_update"
	BeforeDelete HookEvent = "before_delete"
	AfterDelete  HookEvent = "after_delete"
)

// Hook runs at one lifecycle point. A before-hook error aborts the
// operation.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry collects the hooks registered for one entity type.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On appends a hook for the event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run fires the event's hooks in registration order, stopping at the
// first error.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}
