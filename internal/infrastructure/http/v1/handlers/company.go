package handlers

import (
	"facturago/internal/domain"
	"facturago/internal/domain/catalogs/company"
	"facturago/internal/infrastructure/http/v1/dto"
)

// CompanyHandler handles HTTP requests for issuing companies.
type CompanyHandler struct {
	*BaseCatalogHandler[*company.Company, dto.CreateCompanyRequest, dto.UpdateCompanyRequest]
}

// NewCompanyHandler creates a company handler.
func NewCompanyHandler(base *BaseHandler, service *domain.CatalogService[*company.Company]) *CompanyHandler {
	cfg := BaseCatalogHandlerConfig[*company.Company, dto.CreateCompanyRequest, dto.UpdateCompanyRequest]{
		Service:    service,
		EntityName: "company",
		MapCreateDTO: func(req dto.CreateCompanyRequest, ownerID string) *company.Company {
			return req.ToEntity(ownerID)
		},
		MapUpdateDTO: func(req dto.UpdateCompanyRequest, existing *company.Company) {
			req.ApplyTo(existing)
		},
		MapToDTO: func(c *company.Company) any {
			return dto.FromCompany(c)
		},
		OwnerOf: func(c *company.Company) string {
			return c.OwnerID
		},
	}

	return &CompanyHandler{
		BaseCatalogHandler: NewBaseCatalogHandler(base, cfg),
	}
}
