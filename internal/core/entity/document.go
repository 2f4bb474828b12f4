package entity

import (
	"context"
	"time"

	"facturago/internal/core/apperror"
)

// Document is the base type for numbered business documents.
// The concrete invoice type adds its lifecycle status on top; Document only
// carries what every numbered document shares.
type Document struct {
	BaseDocument

	// Number is the display number. Drafts carry the draft marker prefix;
	// finalized documents never do.
	Number string `db:"display_number" json:"displayNumber"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new Document with generated ID, scoped to an owner.
func NewDocument(ownerID string) Document {
	return Document{
		BaseDocument: NewBaseDocument(ownerID),
		Date:         time.Now().UTC(),
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.OwnerID == "" {
		return apperror.NewValidation("owner is required").
			WithDetail("field", "ownerId")
	}

	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}
