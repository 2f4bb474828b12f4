package entity

import (
	"context"

	"facturago/internal/core/apperror"
)

// Catalog is the base for reference data an owner maintains: clients and
// companies here.
type Catalog struct {
	BaseEntity

	// Code is a short human identifier, unique per owner among live rows.
	Code string `db:"code" json:"code"`

	// Name is the display name.
	Name string `db:"name" json:"name"`
}

// NewCatalog creates a catalog entry for an owner.
func NewCatalog(ownerID, code, name string) Catalog {
	return Catalog{
		BaseEntity: NewBaseEntity(ownerID),
		Code:       code,
		Name:       name,
	}
}

// Validate implements Validatable.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	return nil
}
