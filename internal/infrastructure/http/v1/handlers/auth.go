package handlers

import (
	"github.com/gin-gonic/gin"

	"facturago/internal/core/appctx"
	"facturago/internal/core/apperror"
	"facturago/internal/core/id"
	"facturago/internal/domain/auth"
	"facturago/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers public and protected auth routes.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/register", h.Register)
	public.POST("/login", h.Login)
	protected.GET("/me", h.Me)
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Register(ctx, req.Email, req.Name, req.Password)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromTokenResult(result))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromTokenResult(result))
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()

	user := appctx.GetUser(ctx)
	if user == nil {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return
	}

	userID, err := id.Parse(user.UserID)
	if err != nil {
		h.Error(c, apperror.NewUnauthorized("invalid token subject"))
		return
	}

	account, err := h.service.GetByID(ctx, userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromUser(account))
}
