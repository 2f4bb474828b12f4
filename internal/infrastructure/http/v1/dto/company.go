package dto

import (
	"facturago/internal/core/entity"
	"facturago/internal/domain/catalogs/company"
)

// CreateCompanyRequest is the payload for creating an issuing company.
type CreateCompanyRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	TaxID   string `json:"taxId" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
	LogoURL string `json:"logoUrl"`
}

// ToEntity builds a company entity.
func (r CreateCompanyRequest) ToEntity(ownerID string) *company.Company {
	return &company.Company{
		Catalog: entity.NewCatalog(ownerID, r.Code, r.Name),
		TaxID:   r.TaxID,
		Email:   r.Email,
		Phone:   r.Phone,
		Address: r.Address,
		City:    r.City,
		ZipCode: r.ZipCode,
		Country: r.Country,
		LogoURL: r.LogoURL,
	}
}

// UpdateCompanyRequest is the payload for updating a company.
type UpdateCompanyRequest struct {
	Name    *string `json:"name"`
	TaxID   *string `json:"taxId"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	ZipCode *string `json:"zipCode"`
	Country *string `json:"country"`
	LogoURL *string `json:"logoUrl"`
}

// ApplyTo applies changed fields to an existing company.
func (r UpdateCompanyRequest) ApplyTo(c *company.Company) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.TaxID != nil {
		c.TaxID = *r.TaxID
	}
	if r.Email != nil {
		c.Email = *r.Email
	}
	if r.Phone != nil {
		c.Phone = *r.Phone
	}
	if r.Address != nil {
		c.Address = *r.Address
	}
	if r.City != nil {
		c.City = *r.City
	}
	if r.ZipCode != nil {
		c.ZipCode = *r.ZipCode
	}
	if r.Country != nil {
		c.Country = *r.Country
	}
	if r.LogoURL != nil {
		c.LogoURL = *r.LogoURL
	}
}

// CompanyResponse describes an issuing company.
type CompanyResponse struct {
	BaseResponse
	Code    string `json:"code"`
	Name    string `json:"name"`
	TaxID   string `json:"taxId"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
	LogoURL string `json:"logoUrl,omitempty"`
}

// FromCompany maps a company entity.
func FromCompany(c *company.Company) *CompanyResponse {
	return &CompanyResponse{
		BaseResponse: FromBaseEntity(c.BaseEntity),
		Code:         c.Code,
		Name:         c.Name,
		TaxID:        c.TaxID,
		Email:        c.Email,
		Phone:        c.Phone,
		Address:      c.Address,
		City:         c.City,
		ZipCode:      c.ZipCode,
		Country:      c.Country,
		LogoURL:      c.LogoURL,
	}
}
