// Package main is the entry point for the facturago API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"facturago/internal/domain"
	"facturago/internal/domain/auth"
	"facturago/internal/domain/catalogs/client"
	"facturago/internal/domain/catalogs/company"
	"facturago/internal/domain/invoice"
	"facturago/internal/domain/series"
	v1 "facturago/internal/infrastructure/http/v1"
	"facturago/internal/infrastructure/storage/postgres"
	"facturago/internal/infrastructure/storage/postgres/auth_repo"
	"facturago/internal/infrastructure/storage/postgres/catalog_repo"
	"facturago/internal/infrastructure/storage/postgres/invoice_repo"
	"facturago/internal/infrastructure/storage/postgres/series_repo"
	"facturago/pkg/logger"
)

const version = "1.0.0"

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting facturago server")

	// --- Database ---
	dsn := mustEnv("DATABASE_URL")
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	userRepo := auth_repo.NewUserRepo(txManager)
	seriesRepo := series_repo.NewSeriesRepo(txManager)
	invoiceRepo := invoice_repo.NewInvoiceRepo(txManager)
	clientRepo := catalog_repo.NewClientRepo(txManager)
	companyRepo := catalog_repo.NewCompanyRepo(txManager)

	// --- Audit ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- JWT ---
	jwtSecret := mustEnv("JWT_SECRET")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))

	// --- Services ---
	authService := auth.NewService(userRepo, jwtService)
	seriesService := series.NewService(seriesRepo, invoiceRepo, txManager)

	// The invoice repo doubles as the artifact checker: artifact presence
	// lives on the invoice row.
	invoiceService := invoice.NewService(invoiceRepo, seriesRepo, invoiceRepo, txManager)

	clientService := domain.NewCatalogService(domain.CatalogServiceConfig[*client.Client]{
		Repo:       clientRepo,
		TxManager:  txManager,
		EntityName: "client",
	})
	companyService := domain.NewCatalogService(domain.CatalogServiceConfig[*company.Company]{
		Repo:       companyRepo,
		TxManager:  txManager,
		EntityName: "company",
	})

	registerAuditHooks(clientService, companyService, auditService)

	invoiceService.OnTransition(func(ctx context.Context, inv *invoice.Invoice) {
		action := postgres.AuditActionFinalize
		if inv.Status == invoice.StatusSubmitted {
			action = postgres.AuditActionSubmit
		}
		if err := auditService.LogChange(ctx, "invoice", inv.ID, action, map[string]any{
			"display_number": inv.Number,
			"series_id":      inv.SeriesID,
			"total":          inv.Total,
		}); err != nil {
			log.Warnw("audit log failed", "invoice_id", inv.ID, "error", err)
		}
	})

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:           pool.Unwrap(),
		Logger:         log,
		JWTValidator:   jwtService,
		Version:        version,
		AuthService:    authService,
		SeriesService:  seriesService,
		InvoiceService: invoiceService,
		ClientService:  clientService,
		CompanyService: companyService,

		AuditLog:         auditService,
		MetadataRegistry: setupMetadataRegistry(),
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// registerAuditHooks attaches create/update/delete audit logging to the
// catalog services.
func registerAuditHooks(
	clients *domain.CatalogService[*client.Client],
	companies *domain.CatalogService[*company.Company],
	audit *postgres.AuditService,
) {
	clients.Hooks().On(domain.AfterCreate, func(ctx context.Context, c *client.Client) error {
		return audit.LogChange(ctx, "client", c.ID, postgres.AuditActionCreate, postgres.StructToMap(c))
	})
	clients.Hooks().On(domain.AfterUpdate, func(ctx context.Context, c *client.Client) error {
		return audit.LogChange(ctx, "client", c.ID, postgres.AuditActionUpdate, postgres.StructToMap(c))
	})
	clients.Hooks().On(domain.AfterDelete, func(ctx context.Context, c *client.Client) error {
		return audit.LogChange(ctx, "client", c.ID, postgres.AuditActionDelete, nil)
	})

	companies.Hooks().On(domain.AfterCreate, func(ctx context.Context, c *company.Company) error {
		return audit.LogChange(ctx, "company", c.ID, postgres.AuditActionCreate, postgres.StructToMap(c))
	})
	companies.Hooks().On(domain.AfterUpdate, func(ctx context.Context, c *company.Company) error {
		return audit.LogChange(ctx, "company", c.ID, postgres.AuditActionUpdate, postgres.StructToMap(c))
	})
	companies.Hooks().On(domain.AfterDelete, func(ctx context.Context, c *company.Company) error {
		return audit.LogChange(ctx, "company", c.ID, postgres.AuditActionDelete, nil)
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}
