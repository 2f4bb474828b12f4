// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"facturago/internal/domain"
	"facturago/internal/domain/auth"
	"facturago/internal/domain/catalogs/client"
	"facturago/internal/domain/catalogs/company"
	"facturago/internal/domain/invoice"
	"facturago/internal/domain/series"
	"facturago/internal/infrastructure/http/v1/handlers"
	"facturago/internal/infrastructure/http/v1/middleware"
	"facturago/internal/metadata"
	"facturago/pkg/logger"
)

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	// Pool is the database connection pool (health checks).
	Pool *pgxpool.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Version string reported by /health/info
	Version string

	AuthService    *auth.Service
	SeriesService  *series.Service
	InvoiceService *invoice.Service
	ClientService  *domain.CatalogService[*client.Client]
	CompanyService *domain.CatalogService[*company.Company]

	// AuditLog backs the invoice history endpoint. Optional.
	AuditLog handlers.AuditLog

	// MetadataRegistry serves entity schemas under /meta. Optional.
	MetadataRegistry *metadata.Registry
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	baseHandler := handlers.NewBaseHandler()

	// API v1
	apiV1 := router.Group("/api/v1")
	{
		// Auth: register/login are public, /me requires a token
		authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)
		publicAuth := apiV1.Group("/auth")
		protectedAuth := apiV1.Group("/auth")
		protectedAuth.Use(middleware.Auth(cfg.JWTValidator))
		authHandler.RegisterRoutes(publicAuth, protectedAuth)

		// Everything else requires a token
		protected := apiV1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		seriesHandler := handlers.NewSeriesHandler(baseHandler, cfg.SeriesService)
		seriesHandler.RegisterRoutes(protected.Group("/series"))

		invoiceHandler := handlers.NewInvoiceHandler(baseHandler, cfg.InvoiceService, cfg.AuditLog)
		invoiceHandler.RegisterRoutes(protected.Group("/invoices"))

		clientHandler := handlers.NewClientHandler(baseHandler, cfg.ClientService)
		clientHandler.RegisterRoutes(protected.Group("/clients"))

		companyHandler := handlers.NewCompanyHandler(baseHandler, cfg.CompanyService)
		companyHandler.RegisterRoutes(protected.Group("/companies"))

		// Schema introspection is an operator surface, not end-user API.
		if cfg.MetadataRegistry != nil {
			metaHandler := handlers.NewMetadataHandler(cfg.MetadataRegistry)
			meta := protected.Group("/meta")
			meta.Use(middleware.RequireAdmin())
			metaHandler.RegisterRoutes(meta)
		}
	}

	return router
}
