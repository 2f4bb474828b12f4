package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"facturago/internal/core/apperror"
	"facturago/internal/core/id"
	"facturago/internal/domain"
	"facturago/internal/domain/invoice"
	"facturago/internal/infrastructure/http/v1/dto"
	"facturago/internal/infrastructure/storage/postgres"
)

// AuditLog reads back the change history recorded for an entity.
type AuditLog interface {
	GetEntityHistory(ctx context.Context, entityType string, entityID id.ID, limit int) ([]postgres.AuditEntry, error)
}

// InvoiceHandler handles HTTP requests for invoices.
type InvoiceHandler struct {
	*BaseHandler
	service *invoice.Service
	audit   AuditLog
}

// NewInvoiceHandler creates an invoice handler. audit may be nil, in
// which case the history endpoint is not registered.
func NewInvoiceHandler(base *BaseHandler, service *invoice.Service, audit AuditLog) *InvoiceHandler {
	return &InvoiceHandler{BaseHandler: base, service: service, audit: audit}
}

// RegisterRoutes registers invoice routes.
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/artifact", h.AttachArtifact)
	rg.POST("/:id/finalize", h.Finalize)
	rg.POST("/:id/submit", h.Submit)
	if h.audit != nil {
		rg.GET("/:id/history", h.History)
	}
}

// Create handles POST /invoices: creates a draft with a provisional number.
func (h *InvoiceHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := req.ToEntity(h.GetOwnerID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.CreateDraft(ctx, inv); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInvoice(inv))
}

// Get handles GET /invoices/:id.
func (h *InvoiceHandler) Get(c *gin.Context) {
	inv, ok := h.getOwned(c)
	if !ok {
		return
	}
	h.OK(c, dto.FromInvoice(inv))
}

// Update handles PUT /invoices/:id. Drafts only; finalized invoices are
// immutable.
func (h *InvoiceHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	inv, ok := h.getOwned(c)
	if !ok {
		return
	}

	var req dto.UpdateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := req.ApplyTo(inv); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.UpdateDraft(ctx, inv); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInvoice(inv))
}

// Delete handles DELETE /invoices/:id. Drafts only.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	inv, ok := h.getOwned(c)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, inv.ID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// AttachArtifact handles POST /invoices/:id/artifact.
func (h *InvoiceHandler) AttachArtifact(c *gin.Context) {
	ctx := c.Request.Context()

	inv, ok := h.getOwned(c)
	if !ok {
		return
	}

	var req dto.AttachArtifactRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.AttachArtifact(ctx, inv.ID, req.ArtifactRef); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "artifact attached")
}

// Finalize handles POST /invoices/:id/finalize: assigns the authoritative
// sequential number and locks the invoice.
func (h *InvoiceHandler) Finalize(c *gin.Context) {
	h.transition(c, h.service.Finalize)
}

// History handles GET /invoices/:id/history: the audit trail of the
// invoice, newest first.
func (h *InvoiceHandler) History(c *gin.Context) {
	ctx := c.Request.Context()

	inv, ok := h.getOwned(c)
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	entries, err := h.audit.GetEntityHistory(ctx, "invoice", inv.ID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.AuditEntryResponse, len(entries))
	for i, e := range entries {
		items[i] = dto.FromAuditEntry(e)
	}

	h.OK(c, items)
}

// Submit handles POST /invoices/:id/submit.
func (h *InvoiceHandler) Submit(c *gin.Context) {
	h.transition(c, h.service.Submit)
}

func (h *InvoiceHandler) transition(c *gin.Context, fn func(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error)) {
	ctx := c.Request.Context()

	inv, ok := h.getOwned(c)
	if !ok {
		return
	}

	result, err := fn(ctx, inv.ID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInvoice(result))
}

// List handles GET /invoices.
func (h *InvoiceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := invoice.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.OwnerID = h.GetOwnerID(c)
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "date DESC")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if seriesID := c.Query("seriesId"); seriesID != "" {
		if parsed, err := id.Parse(seriesID); err == nil {
			filter.SeriesID = &parsed
		}
	}

	if clientID := c.Query("clientId"); clientID != "" {
		if parsed, err := id.Parse(clientID); err == nil {
			filter.ClientID = &parsed
		}
	}

	if companyID := c.Query("companyId"); companyID != "" {
		if parsed, err := id.Parse(companyID); err == nil {
			filter.CompanyID = &parsed
		}
	}

	if status := c.Query("status"); status != "" {
		parsed := invoice.Status(status)
		filter.Status = &parsed
	}

	if dateFrom := c.Query("dateFrom"); dateFrom != "" {
		if parsed, err := time.Parse(time.RFC3339, dateFrom); err == nil {
			filter.DateFrom = &parsed
		}
	}

	if dateTo := c.Query("dateTo"); dateTo != "" {
		if parsed, err := time.Parse(time.RFC3339, dateTo); err == nil {
			filter.DateTo = &parsed
		}
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.InvoiceResponse, len(result.Items))
	for i, inv := range result.Items {
		items[i] = dto.FromInvoice(inv)
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

func (h *InvoiceHandler) getOwned(c *gin.Context) (*invoice.Invoice, bool) {
	ctx := c.Request.Context()

	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return nil, false
	}

	inv, err := h.service.GetByID(ctx, invoiceID)
	if err != nil {
		h.Error(c, err)
		return nil, false
	}

	if inv.OwnerID != h.GetOwnerID(c) {
		h.Error(c, apperror.NewNotFound("invoice", invoiceID.String()))
		return nil, false
	}

	return inv, true
}
