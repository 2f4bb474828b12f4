package catalog_repo

import (
	"facturago/internal/domain"
	"facturago/internal/domain/catalogs/company"
	"facturago/internal/infrastructure/storage/postgres"
)

// Compile-time check.
var _ domain.CatalogRepository[*company.Company] = (*CompanyRepo)(nil)

// CompanyRepo is the PostgreSQL repository for issuing companies.
type CompanyRepo struct {
	*BaseCatalogRepo[*company.Company]
}

// NewCompanyRepo creates a company repository.
func NewCompanyRepo(txManager *postgres.TxManager) *CompanyRepo {
	return &CompanyRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"companies",
			postgres.ExtractDBColumns[company.Company](),
			func() *company.Company { return &company.Company{} },
		),
	}
}
