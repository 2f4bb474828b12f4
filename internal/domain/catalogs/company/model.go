// Package company provides the Company catalog (invoice issuers).
package company

import (
	"context"

	"facturago/internal/core/apperror"
	"facturago/internal/core/entity"
)

// Company represents an issuing company of the owner.
type Company struct {
	entity.Catalog

	// TaxID is the company's fiscal identifier (NIF/CIF).
	TaxID string `db:"tax_id" json:"taxId"`

	Email   string `db:"email" json:"email,omitempty"`
	Phone   string `db:"phone" json:"phone,omitempty"`
	Address string `db:"address" json:"address,omitempty"`
	City    string `db:"city" json:"city,omitempty"`
	ZipCode string `db:"zip_code" json:"zipCode,omitempty"`
	Country string `db:"country" json:"country,omitempty"`

	// LogoURL points at the uploaded logo used on rendered documents.
	LogoURL string `db:"logo_url" json:"logoUrl,omitempty"`
}

// New creates a new company for an owner.
func New(ownerID, name, taxID string) *Company {
	return &Company{
		Catalog: entity.NewCatalog(ownerID, "", name),
		TaxID:   taxID,
	}
}

// Validate implements entity.Validatable.
func (c *Company) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if c.TaxID == "" {
		return apperror.NewValidation("tax id is required").
			WithDetail("field", "taxId")
	}

	return nil
}

var _ entity.Validatable = (*Company)(nil)
