// Package client provides the Client catalog (invoiced counterparties).
package client

import (
	"context"

	"facturago/internal/core/apperror"
	"facturago/internal/core/entity"
)

// Client represents an invoiced counterparty.
type Client struct {
	entity.Catalog

	// TaxID is the client's fiscal identifier (NIF/CIF/VAT number).
	TaxID string `db:"tax_id" json:"taxId"`

	Email   string `db:"email" json:"email,omitempty"`
	Phone   string `db:"phone" json:"phone,omitempty"`
	Address string `db:"address" json:"address,omitempty"`
	City    string `db:"city" json:"city,omitempty"`
	ZipCode string `db:"zip_code" json:"zipCode,omitempty"`
	Country string `db:"country" json:"country,omitempty"`
}

// New creates a new client for an owner.
func New(ownerID, name, taxID string) *Client {
	return &Client{
		Catalog: entity.NewCatalog(ownerID, "", name),
		TaxID:   taxID,
	}
}

// Validate implements entity.Validatable.
func (c *Client) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if c.TaxID == "" {
		return apperror.NewValidation("tax id is required").
			WithDetail("field", "taxId")
	}

	return nil
}

var _ entity.Validatable = (*Client)(nil)
