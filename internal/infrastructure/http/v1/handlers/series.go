package handlers

import (
	"github.com/gin-gonic/gin"

	"facturago/internal/core/apperror"
	"facturago/internal/core/id"
	"facturago/internal/domain"
	"facturago/internal/domain/series"
	"facturago/internal/infrastructure/http/v1/dto"
)

// SeriesHandler handles HTTP requests for numbering series.
type SeriesHandler struct {
	*BaseHandler
	service *series.Service
}

// NewSeriesHandler creates a series handler.
func NewSeriesHandler(base *BaseHandler, service *series.Service) *SeriesHandler {
	return &SeriesHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers series routes.
func (h *SeriesHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/default", h.SetDefault)
}

// Create handles POST /series.
func (h *SeriesHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateSeriesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	srs := req.ToEntity(h.GetOwnerID(c))
	if err := h.service.Create(ctx, srs); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSeries(srs))
}

// Get handles GET /series/:id.
func (h *SeriesHandler) Get(c *gin.Context) {
	srs, ok := h.getOwned(c)
	if !ok {
		return
	}
	h.OK(c, dto.FromSeries(srs))
}

// Update handles PUT /series/:id. Pattern changes are rejected once the
// series holds a final invoice.
func (h *SeriesHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	srs, ok := h.getOwned(c)
	if !ok {
		return
	}

	var req dto.UpdateSeriesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	req.ApplyTo(srs)

	if err := h.service.Update(ctx, srs); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSeries(srs))
}

// Delete handles DELETE /series/:id.
func (h *SeriesHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	srs, ok := h.getOwned(c)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, srs.ID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// SetDefault handles POST /series/:id/default.
func (h *SeriesHandler) SetDefault(c *gin.Context) {
	ctx := c.Request.Context()

	srs, ok := h.getOwned(c)
	if !ok {
		return
	}

	if err := h.service.SetDefault(ctx, srs.ID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "default series updated")
}

// List handles GET /series.
func (h *SeriesHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := series.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.OwnerID = h.GetOwnerID(c)
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if typ := c.Query("type"); typ != "" {
		parsed := series.Type(typ)
		filter.Type = &parsed
	}

	if isDefault := c.Query("isDefault"); isDefault != "" {
		val := isDefault == "true"
		filter.IsDefault = &val
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.SeriesResponse, len(result.Items))
	for i, srs := range result.Items {
		items[i] = dto.FromSeries(srs)
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

func (h *SeriesHandler) getOwned(c *gin.Context) (*series.Series, bool) {
	ctx := c.Request.Context()

	seriesID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return nil, false
	}

	srs, err := h.service.GetByID(ctx, seriesID)
	if err != nil {
		h.Error(c, err)
		return nil, false
	}

	if srs.OwnerID != h.GetOwnerID(c) {
		h.Error(c, apperror.NewNotFound("series", seriesID.String()))
		return nil, false
	}

	return srs, true
}
