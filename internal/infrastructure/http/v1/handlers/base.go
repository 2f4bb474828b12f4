// Package handlers provides HTTP request handlers for API v1.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"facturago/internal/core/appctx"
	"facturago/internal/core/apperror"
	"facturago/internal/infrastructure/http/v1/dto"
)

// BaseHandler carries the helpers every handler embeds.
type BaseHandler struct{}

// NewBaseHandler creates the shared handler base.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON decodes the body into obj; a failed bind answers 400 and
// returns false.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error records err on the context and aborts. The JSON body is written
// later by middleware.ErrorHandler, nowhere else.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseIntQuery reads an int query param, falling back on absence or
// garbage.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, defaultVal int) int {
	val := c.Query(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// GetOwnerID extracts the authenticated user's ID from request context.
// It is the only source of owner scoping; payloads never carry it.
func (h *BaseHandler) GetOwnerID(c *gin.Context) string {
	return appctx.GetUserID(c.Request.Context())
}

// Created answers 201 with the new id.
func (h *BaseHandler) Created(c *gin.Context, id string) {
	c.JSON(http.StatusCreated, dto.IDResponse{ID: id})
}

// OK answers 200 with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// NoContent answers 204.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Success answers 200 with a confirmation message.
func (h *BaseHandler) Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: message})
}
