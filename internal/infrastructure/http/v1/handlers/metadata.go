package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"facturago/internal/metadata"
)

// MetadataHandler serves entity schema definitions so clients can render
// forms and lists without hardcoding the model.
type MetadataHandler struct {
	registry *metadata.Registry
}

// NewMetadataHandler creates a metadata handler.
func NewMetadataHandler(registry *metadata.Registry) *MetadataHandler {
	return &MetadataHandler{registry: registry}
}

// RegisterRoutes registers metadata routes on the group.
func (h *MetadataHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListEntities)
	rg.GET("/:name", h.GetEntity)
}

// ListEntities returns every registered entity definition.
// GET /api/v1/meta
func (h *MetadataHandler) ListEntities(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.List())
}

// GetEntity returns the definition of one entity.
// GET /api/v1/meta/:name
func (h *MetadataHandler) GetEntity(c *gin.Context) {
	if def, ok := h.registry.Get(c.Param("name")); ok {
		c.JSON(http.StatusOK, def)
		return
	}
	c.Status(http.StatusNotFound)
}
