// Package invoice provides the Invoice document and its numbering lifecycle.
//
// An invoice starts as a mutable draft with a provisional display number and
// transitions exactly once to an immutable final (or submitted) document,
// receiving its authoritative sequential number at that moment. Drafts never
// consume numbers from the regulatory numbering space.
package invoice

import (
	"context"
	"time"

	"facturago/internal/core/apperror"
	"facturago/internal/core/entity"
	"facturago/internal/core/id"
	"facturago/internal/core/types"
)

// Status is the invoice lifecycle state.
type Status string

const (
	// StatusDraft invoices are freely mutable and carry the draft marker.
	StatusDraft Status = "draft"
	// StatusFinal invoices hold an authoritative number and never change.
	StatusFinal Status = "final"
	// StatusSubmitted behaves as an immutable sibling of final: same
	// numbering space, same locks, additionally reported to the tax agency.
	StatusSubmitted Status = "submitted"
)

// DraftPrefix marks display numbers of not-yet-finalized invoices, keeping
// them out of the finalized numbering space.
const DraftPrefix = "DRAFT-"

// Invoice represents an invoice document.
type Invoice struct {
	entity.Document

	// SeriesID is the numbering series this invoice draws its number from.
	SeriesID id.ID `db:"series_id" json:"seriesId"`

	// CompanyID is the issuing company.
	CompanyID id.ID `db:"company_id" json:"companyId"`

	// ClientID is the invoiced client.
	ClientID id.ID `db:"client_id" json:"clientId"`

	// Status: draft, final or submitted. One-way: draft -> final/submitted.
	Status Status `db:"status" json:"status"`

	// Currency ISO code; amounts are stored in its minor units.
	Currency string `db:"currency" json:"currency"`

	// Totals (calculated from lines)
	Subtotal        types.MinorUnits `db:"subtotal" json:"subtotal"`
	TotalVAT        types.MinorUnits `db:"total_vat" json:"totalVat"`
	RetentionRate   int              `db:"retention_rate" json:"retentionRate"`
	TotalRetention  types.MinorUnits `db:"total_retention" json:"totalRetention"`
	Total           types.MinorUnits `db:"total" json:"total"`

	// ArtifactRef points at the rendered PDF document, when one exists.
	// Finalization requires it: a final invoice must have an immutable
	// rendered document.
	ArtifactRef *string `db:"artifact_ref" json:"artifactRef,omitempty"`

	// Table part: invoice lines
	Lines []Line `db:"-" json:"lines"`
}

// Line represents one invoice line.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	Description string           `db:"description" json:"description"`
	Quantity    types.Quantity   `db:"quantity" json:"quantity"`
	UnitPrice   types.MinorUnits `db:"unit_price" json:"unitPrice"`
	VATRate     string           `db:"vat_rate" json:"vatRate"`
	VATAmount   types.MinorUnits `db:"vat_amount" json:"vatAmount"`
	Amount      types.MinorUnits `db:"amount" json:"amount"`
}

// New creates a draft invoice shell for an owner.
// The display number is assigned by the lifecycle service.
func New(ownerID string, seriesID, companyID, clientID id.ID) *Invoice {
	return &Invoice{
		Document:  entity.NewDocument(ownerID),
		SeriesID:  seriesID,
		CompanyID: companyID,
		ClientID:  clientID,
		Status:    StatusDraft,
		Currency:  "EUR",
		Lines:     make([]Line, 0),
	}
}

// AddLine adds a line and recalculates totals.
func (inv *Invoice) AddLine(description string, quantity types.Quantity, unitPrice types.MinorUnits, vatRate string) {
	lineNo := len(inv.Lines) + 1

	// Quantity is scaled by 10000. UnitPrice is in minor units.
	// baseAmount (minor units) = (QuantityScaled * UnitPrice) / 10000
	vatPercent := vatRateToPercent(vatRate)
	baseAmount := types.MinorUnits((quantity.Int64Scaled() * int64(unitPrice)) / types.QuantityScale)
	vatAmount := baseAmount * types.MinorUnits(vatPercent) / 100

	line := Line{
		LineID:      id.New(),
		LineNo:      lineNo,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		VATRate:     vatRate,
		VATAmount:   vatAmount,
		Amount:      baseAmount + vatAmount,
	}

	inv.Lines = append(inv.Lines, line)
	inv.RecalculateTotals()
}

// RecalculateTotals recomputes invoice totals from its lines.
func (inv *Invoice) RecalculateTotals() {
	inv.Subtotal = 0
	inv.TotalVAT = 0

	for _, line := range inv.Lines {
		inv.Subtotal += line.Amount - line.VATAmount
		inv.TotalVAT += line.VATAmount
	}

	inv.TotalRetention = inv.Subtotal * types.MinorUnits(inv.RetentionRate) / 100
	inv.Total = inv.Subtotal + inv.TotalVAT - inv.TotalRetention
}

// IsDraft reports whether the invoice is still mutable.
func (inv *Invoice) IsDraft() bool {
	return inv.Status == StatusDraft
}

// CanModify checks if the invoice can be modified or deleted.
// Non-draft invoices are locked: their numbering is regulatory history.
func (inv *Invoice) CanModify() error {
	if inv.IsDraft() {
		return nil
	}
	return apperror.NewConflict("invoice is not a draft and cannot be modified").
		WithDetail("invoice_id", inv.ID.String()).
		WithDetail("status", string(inv.Status))
}

// Validate implements entity.Validatable.
func (inv *Invoice) Validate(ctx context.Context) error {
	if err := inv.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(inv.SeriesID) {
		return apperror.NewValidation("series is required").
			WithDetail("field", "seriesId")
	}

	if id.IsNil(inv.CompanyID) {
		return apperror.NewValidation("company is required").
			WithDetail("field", "companyId")
	}

	if id.IsNil(inv.ClientID) {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}

	if inv.RetentionRate < 0 || inv.RetentionRate > 100 {
		return apperror.NewValidation("retention rate must be between 0 and 100").
			WithDetail("field", "retentionRate")
	}

	for i, line := range inv.Lines {
		if line.Description == "" {
			return apperror.NewValidation("line description is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

var _ entity.Validatable = (*Invoice)(nil)

// UpdatedAtNow refreshes the audit timestamp. Used by the lifecycle service
// at finalize time with the injected clock.
func (inv *Invoice) UpdatedAtNow(now time.Time) {
	inv.UpdatedAt = now.UTC()
}

func vatRateToPercent(rate string) int {
	switch rate {
	case "4":
		return 4
	case "10":
		return 10
	case "21":
		return 21
	default:
		return 0
	}
}
