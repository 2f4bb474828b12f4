package handlers

import (
	"github.com/gin-gonic/gin"

	"facturago/internal/core/apperror"
	"facturago/internal/core/entity"
	"facturago/internal/core/id"
	"facturago/internal/domain"
	"facturago/internal/infrastructure/http/v1/dto"
)

// BaseCatalogHandlerConfig wires DTO mapping for one catalog entity.
type BaseCatalogHandlerConfig[T entity.Validatable, C any, U any] struct {
	Service    *domain.CatalogService[T]
	EntityName string

	// MapCreateDTO builds a new entity from the create payload and owner.
	MapCreateDTO func(req C, ownerID string) T

	// MapUpdateDTO applies the update payload to an existing entity.
	MapUpdateDTO func(req U, existing T)

	// MapToDTO converts entity to response DTO.
	MapToDTO func(ent T) any

	// OwnerOf extracts the owner for scoping checks.
	OwnerOf func(ent T) string
}

// BaseCatalogHandler provides REST handlers for a catalog entity.
// Cross-owner access surfaces as not-found, never as forbidden.
type BaseCatalogHandler[T entity.Validatable, C any, U any] struct {
	*BaseHandler
	cfg BaseCatalogHandlerConfig[T, C, U]
}

// NewBaseCatalogHandler creates a catalog handler.
func NewBaseCatalogHandler[T entity.Validatable, C any, U any](
	base *BaseHandler,
	cfg BaseCatalogHandlerConfig[T, C, U],
) *BaseCatalogHandler[T, C, U] {
	return &BaseCatalogHandler[T, C, U]{BaseHandler: base, cfg: cfg}
}

// RegisterRoutes registers CRUD routes on the group.
func (h *BaseCatalogHandler[T, C, U]) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// Create handles POST /.
func (h *BaseCatalogHandler[T, C, U]) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req C
	if !h.BindJSON(c, &req) {
		return
	}

	ent := h.cfg.MapCreateDTO(req, h.GetOwnerID(c))
	if err := h.cfg.Service.Create(ctx, ent); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, h.cfg.MapToDTO(ent))
}

// Get handles GET /:id.
func (h *BaseCatalogHandler[T, C, U]) Get(c *gin.Context) {
	ent, ok := h.getOwned(c)
	if !ok {
		return
	}
	h.OK(c, h.cfg.MapToDTO(ent))
}

// Update handles PUT /:id.
func (h *BaseCatalogHandler[T, C, U]) Update(c *gin.Context) {
	ctx := c.Request.Context()

	ent, ok := h.getOwned(c)
	if !ok {
		return
	}

	var req U
	if !h.BindJSON(c, &req) {
		return
	}

	h.cfg.MapUpdateDTO(req, ent)

	if err := h.cfg.Service.Update(ctx, ent); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, h.cfg.MapToDTO(ent))
}

// Delete handles DELETE /:id (soft delete).
func (h *BaseCatalogHandler[T, C, U]) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	ent, ok := h.getOwned(c)
	if !ok {
		return
	}
	_ = ent

	entityID, _ := id.Parse(c.Param("id"))
	if err := h.cfg.Service.Delete(ctx, entityID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// List handles GET /.
func (h *BaseCatalogHandler[T, C, U]) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := domain.DefaultListFilter()
	filter.OwnerID = h.GetOwnerID(c)
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "name")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	result, err := h.cfg.Service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, ent := range result.Items {
		items[i] = h.cfg.MapToDTO(ent)
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// getOwned loads the entity and enforces owner scoping.
func (h *BaseCatalogHandler[T, C, U]) getOwned(c *gin.Context) (T, bool) {
	var zero T
	ctx := c.Request.Context()

	entityID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return zero, false
	}

	ent, err := h.cfg.Service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return zero, false
	}

	if h.cfg.OwnerOf(ent) != h.GetOwnerID(c) {
		h.Error(c, apperror.NewNotFound(h.cfg.EntityName, entityID.String()))
		return zero, false
	}

	return ent, true
}
