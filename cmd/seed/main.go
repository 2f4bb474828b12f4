// Package main provides a CLI tool for seeding the database with demo data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"facturago/internal/core/entity"
	"facturago/internal/core/types"
	"facturago/internal/domain/auth"
	"facturago/internal/domain/catalogs/client"
	"facturago/internal/domain/catalogs/company"
	"facturago/internal/domain/invoice"
	"facturago/internal/domain/series"
	"facturago/internal/infrastructure/storage/postgres"
	"facturago/internal/infrastructure/storage/postgres/auth_repo"
	"facturago/internal/infrastructure/storage/postgres/catalog_repo"
	"facturago/internal/infrastructure/storage/postgres/invoice_repo"
	"facturago/internal/infrastructure/storage/postgres/series_repo"
	"facturago/pkg/logger"
	"facturago/pkg/numfmt"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)

	if err := seed(ctx, txManager, log); err != nil {
		log.Fatalw("seed failed", "error", err)
	}

	log.Info("seed complete")
}

func seed(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	userRepo := auth_repo.NewUserRepo(txManager)
	seriesRepo := series_repo.NewSeriesRepo(txManager)
	invoiceRepo := invoice_repo.NewInvoiceRepo(txManager)
	clientRepo := catalog_repo.NewClientRepo(txManager)
	companyRepo := catalog_repo.NewCompanyRepo(txManager)

	return txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Demo account
		email := getEnv("SEED_EMAIL", "demo@facturago.test")
		exists, err := userRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("check demo user: %w", err)
		}
		if exists {
			log.Infow("demo user already exists, skipping", "email", email)
			return nil
		}

		user := auth.NewUser(email, "Demo User")
		// Admin so the seeded account can reach the /meta schema routes.
		user.IsAdmin = true
		password := getEnv("SEED_PASSWORD", "demo-password")
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)

		if err := userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("create demo user: %w", err)
		}
		ownerID := user.ID.String()
		log.Infow("demo user created", "email", email)

		// Issuing company
		co := &company.Company{
			Catalog: entity.NewCatalog(ownerID, "ACME", "Acme Consulting SL"),
			TaxID:   "B12345678",
			Email:   "billing@acme.test",
			City:    "Madrid",
			Country: "ES",
		}
		if err := companyRepo.Create(ctx, co); err != nil {
			return fmt.Errorf("create company: %w", err)
		}

		// Demo client
		cl := &client.Client{
			Catalog: entity.NewCatalog(ownerID, "CL-001", "Cliente Ejemplo SA"),
			TaxID:   "A87654321",
			Email:   "contact@cliente.test",
			City:    "Barcelona",
			Country: "ES",
		}
		if err := clientRepo.Create(ctx, cl); err != nil {
			return fmt.Errorf("create client: %w", err)
		}

		// Numbering series: default standard with a year segment, plus a
		// rectifying stream.
		std := series.New(ownerID, "FAC%%-####", series.TypeStandard, true)
		if err := seriesRepo.Create(ctx, std); err != nil {
			return fmt.Errorf("create standard series: %w", err)
		}

		rect := series.New(ownerID, "R-FAC%%-####", series.TypeRectifying, true)
		if err := seriesRepo.Create(ctx, rect); err != nil {
			return fmt.Errorf("create rectifying series: %w", err)
		}

		// One draft invoice so the UI has something to show
		inv := invoice.New(ownerID, std.ID, co.ID, cl.ID)
		inv.Date = time.Now().UTC()
		inv.Comment = "Demo draft"
		inv.AddLine("Consultoría", types.NewQuantityFromFloat64(10), types.MinorUnits(8500), "21")
		inv.RecalculateTotals()
		provisional, err := numfmt.Format(std.Pattern, std.Counter+1, time.Now())
		if err != nil {
			return fmt.Errorf("format provisional number: %w", err)
		}
		inv.Number = invoice.DraftPrefix + provisional
		if err := invoiceRepo.Create(ctx, inv); err != nil {
			return fmt.Errorf("create draft invoice: %w", err)
		}
		if err := invoiceRepo.SaveLines(ctx, inv.ID, inv.Lines); err != nil {
			return fmt.Errorf("save draft lines: %w", err)
		}

		log.Infow("demo data created",
			"company", co.Name,
			"client", cl.Name,
			"series", std.Pattern,
		)
		return nil
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
