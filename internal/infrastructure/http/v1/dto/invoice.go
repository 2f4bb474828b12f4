package dto

import (
	"time"

	"facturago/internal/core/apperror"
	"facturago/internal/core/id"
	"facturago/internal/core/types"
	"facturago/internal/domain/invoice"
)

// InvoiceLineRequest is one invoice line in a create/update payload.
type InvoiceLineRequest struct {
	Description string         `json:"description" binding:"required"`
	Quantity    types.Quantity `json:"quantity" binding:"required"`
	UnitPrice   int64          `json:"unitPrice" binding:"required"`
	VATRate     string         `json:"vatRate" binding:"required"`
}

// CreateInvoiceRequest is the payload for creating a draft invoice.
// SeriesID is optional; the owner's default standard series is used when
// absent.
type CreateInvoiceRequest struct {
	SeriesID      string               `json:"seriesId"`
	CompanyID     string               `json:"companyId" binding:"required"`
	ClientID      string               `json:"clientId" binding:"required"`
	Date          time.Time            `json:"date" binding:"required"`
	Currency      string               `json:"currency"`
	RetentionRate int                  `json:"retentionRate"`
	Comment       string               `json:"comment"`
	Lines         []InvoiceLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToEntity builds a draft invoice. Owner comes from the caller's context.
func (r CreateInvoiceRequest) ToEntity(ownerID string) (*invoice.Invoice, error) {
	seriesID := id.Nil()
	if r.SeriesID != "" {
		parsed, err := id.Parse(r.SeriesID)
		if err != nil {
			return nil, apperror.NewValidation("invalid seriesId format")
		}
		seriesID = parsed
	}

	companyID, err := id.Parse(r.CompanyID)
	if err != nil {
		return nil, apperror.NewValidation("invalid companyId format")
	}

	clientID, err := id.Parse(r.ClientID)
	if err != nil {
		return nil, apperror.NewValidation("invalid clientId format")
	}

	inv := invoice.New(ownerID, seriesID, companyID, clientID)
	inv.Date = r.Date
	inv.Comment = r.Comment
	inv.RetentionRate = r.RetentionRate
	if r.Currency != "" {
		inv.Currency = r.Currency
	}

	for _, line := range r.Lines {
		inv.AddLine(line.Description, line.Quantity, types.MinorUnits(line.UnitPrice), line.VATRate)
	}
	inv.RecalculateTotals()

	return inv, nil
}

// UpdateInvoiceRequest is the payload for updating a draft invoice.
// Replaces the full set of editable fields; lines are replaced wholesale.
type UpdateInvoiceRequest struct {
	SeriesID      *string              `json:"seriesId"`
	ClientID      *string              `json:"clientId"`
	Date          *time.Time           `json:"date"`
	Currency      *string              `json:"currency"`
	RetentionRate *int                 `json:"retentionRate"`
	Comment       *string              `json:"comment"`
	Lines         []InvoiceLineRequest `json:"lines"`
}

// ApplyTo applies changed fields to an existing draft.
func (r UpdateInvoiceRequest) ApplyTo(inv *invoice.Invoice) error {
	if r.SeriesID != nil {
		parsed, err := id.Parse(*r.SeriesID)
		if err != nil {
			return apperror.NewValidation("invalid seriesId format")
		}
		inv.SeriesID = parsed
	}
	if r.ClientID != nil {
		parsed, err := id.Parse(*r.ClientID)
		if err != nil {
			return apperror.NewValidation("invalid clientId format")
		}
		inv.ClientID = parsed
	}
	if r.Date != nil {
		inv.Date = *r.Date
	}
	if r.Currency != nil {
		inv.Currency = *r.Currency
	}
	if r.RetentionRate != nil {
		inv.RetentionRate = *r.RetentionRate
	}
	if r.Comment != nil {
		inv.Comment = *r.Comment
	}
	if r.Lines != nil {
		inv.Lines = nil
		for _, line := range r.Lines {
			inv.AddLine(line.Description, line.Quantity, types.MinorUnits(line.UnitPrice), line.VATRate)
		}
	}
	inv.RecalculateTotals()
	return nil
}

// AttachArtifactRequest records a rendered document reference.
type AttachArtifactRequest struct {
	ArtifactRef string `json:"artifactRef" binding:"required"`
}

// InvoiceLineResponse is one line of an invoice.
type InvoiceLineResponse struct {
	LineID      string         `json:"lineId"`
	LineNo      int            `json:"lineNo"`
	Description string         `json:"description"`
	Quantity    types.Quantity `json:"quantity"`
	UnitPrice   int64          `json:"unitPrice"`
	VATRate     string         `json:"vatRate"`
	VATAmount   int64          `json:"vatAmount"`
	Amount      int64          `json:"amount"`
}

// InvoiceResponse describes an invoice.
type InvoiceResponse struct {
	BaseResponse
	DisplayNumber  string                `json:"displayNumber"`
	SeriesID       string                `json:"seriesId"`
	CompanyID      string                `json:"companyId"`
	ClientID       string                `json:"clientId"`
	Status         string                `json:"status"`
	Date           time.Time             `json:"date"`
	Currency       string                `json:"currency"`
	Subtotal       int64                 `json:"subtotal"`
	TotalVAT       int64                 `json:"totalVat"`
	RetentionRate  int                   `json:"retentionRate"`
	TotalRetention int64                 `json:"totalRetention"`
	Total          int64                 `json:"total"`
	Comment        string                `json:"comment,omitempty"`
	ArtifactRef    *string               `json:"artifactRef,omitempty"`
	Lines          []InvoiceLineResponse `json:"lines"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

// FromInvoice maps an invoice entity.
func FromInvoice(inv *invoice.Invoice) *InvoiceResponse {
	lines := make([]InvoiceLineResponse, len(inv.Lines))
	for i, line := range inv.Lines {
		lines[i] = InvoiceLineResponse{
			LineID:      line.LineID.String(),
			LineNo:      line.LineNo,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   int64(line.UnitPrice),
			VATRate:     line.VATRate,
			VATAmount:   int64(line.VATAmount),
			Amount:      int64(line.Amount),
		}
	}

	return &InvoiceResponse{
		BaseResponse:   FromBaseEntity(inv.BaseEntity),
		DisplayNumber:  inv.Number,
		SeriesID:       inv.SeriesID.String(),
		CompanyID:      inv.CompanyID.String(),
		ClientID:       inv.ClientID.String(),
		Status:         string(inv.Status),
		Date:           inv.Date,
		Currency:       inv.Currency,
		Subtotal:       int64(inv.Subtotal),
		TotalVAT:       int64(inv.TotalVAT),
		RetentionRate:  inv.RetentionRate,
		TotalRetention: int64(inv.TotalRetention),
		Total:          int64(inv.Total),
		Comment:        inv.Comment,
		ArtifactRef:    inv.ArtifactRef,
		Lines:          lines,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
}
