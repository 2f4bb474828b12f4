// Package series provides invoice numbering series (Series Registry).
// A series is a named numbering stream with its own pattern and advisory
// counter, scoped to one owner and one invoice type.
package series

import (
	"context"
	"time"

	"facturago/internal/core/apperror"
	"facturago/internal/core/entity"
	"facturago/pkg/numfmt"
)

// Type distinguishes ordinary invoices from rectifying (corrective) ones.
// Each type numbers independently.
type Type string

const (
	TypeStandard   Type = "standard"
	TypeRectifying Type = "rectifying"
)

// Valid reports whether t is a known series type.
func (t Type) Valid() bool {
	return t == TypeStandard || t == TypeRectifying
}

// Series defines one numbering stream.
//
// Counter is advisory: it feeds draft previews and is bumped on every
// finalize, but the authoritative numbering state is the set of final
// display numbers in the stream.
type Series struct {
	entity.BaseEntity

	// Pattern contains one '#' run (sequence width) and optionally one
	// '%' run (2- or 4-digit year). Immutable once a final invoice exists.
	Pattern string `db:"pattern" json:"pattern"`

	// Counter is the advisory sequence counter (>= 0).
	Counter int `db:"counter" json:"counter"`

	// IsDefault marks the owner's default series for this type.
	// At most one default per (owner, type).
	IsDefault bool `db:"is_default" json:"isDefault"`

	// Type is the invoice type this series numbers.
	Type Type `db:"type" json:"type"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a series for an owner.
func New(ownerID, pattern string, typ Type, isDefault bool) *Series {
	now := time.Now().UTC()
	return &Series{
		BaseEntity: entity.NewBaseEntity(ownerID),
		Pattern:    pattern,
		Type:       typ,
		IsDefault:  isDefault,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate implements entity.Validatable.
func (s *Series) Validate(ctx context.Context) error {
	if s.OwnerID == "" {
		return apperror.NewValidation("owner is required").
			WithDetail("field", "ownerId")
	}

	if err := numfmt.Validate(s.Pattern); err != nil {
		return apperror.NewValidation("invalid numbering pattern").
			WithDetail("field", "pattern").
			WithDetail("pattern", s.Pattern).
			WithCause(err)
	}

	if !s.Type.Valid() {
		return apperror.NewValidation("unknown series type").
			WithDetail("field", "type").
			WithDetail("type", string(s.Type))
	}

	if s.Counter < 0 {
		return apperror.NewValidation("counter must not be negative").
			WithDetail("field", "counter")
	}

	return nil
}

var _ entity.Validatable = (*Series)(nil)
