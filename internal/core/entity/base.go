// Package entity provides the base types shared by catalogs, series and
// documents: identity, owner scoping, optimistic locking and soft delete.
package entity

import (
	"context"
	"time"

	"facturago/internal/core/id"
)

// Validatable is implemented by every entity that checks its own
// invariants. Validation never touches the database; existence and
// uniqueness checks belong to services and repositories.
type Validatable interface {
	// Validate returns nil or an AppError describing the first violation.
	Validate(ctx context.Context) error
}

// BaseEntity carries the fields every stored row has.
type BaseEntity struct {
	// ID is a time-ordered UUIDv7 primary key.
	ID id.ID `db:"id" json:"id"`

	// OwnerID scopes the row to the account that created it. Every read
	// and write filters on it; numbering uniqueness is structurally
	// per-owner because series are owner-scoped.
	OwnerID string `db:"owner_id" json:"ownerId"`

	// DeletionMark soft-deletes the row. Deleted rows stay out of lists
	// but soft-deleted invoices still hold their numbers.
	DeletionMark bool `db:"deletion_mark" json:"deletionMark"`

	// Version backs optimistic locking; each update increments it.
	Version int `db:"version" json:"version"`

	// Attributes holds user-defined JSONB fields.
	Attributes Attributes `db:"attributes" json:"attributes,omitempty"`
}

// NewBaseEntity allocates an identity for a new owner-scoped row.
func NewBaseEntity(ownerID string) BaseEntity {
	return BaseEntity{
		ID:      id.New(),
		OwnerID: ownerID,
		Version: 1,
	}
}

// Touch bumps the version for the next optimistic-locked write.
func (b *BaseEntity) Touch() {
	b.Version++
}

// BaseDocument adds audit stamps on top of BaseEntity.
type BaseDocument struct {
	BaseEntity

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	UpdatedBy string    `db:"updated_by" json:"updatedBy,omitempty"`
}

// NewBaseDocument allocates identity and stamps creation time.
func NewBaseDocument(ownerID string) BaseDocument {
	now := time.Now().UTC()
	return BaseDocument{
		BaseEntity: NewBaseEntity(ownerID),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Touch refreshes the update stamp and bumps the version.
func (b *BaseDocument) Touch() {
	b.UpdatedAt = time.Now().UTC()
	b.BaseEntity.Touch()
}
