package dto

import (
	"facturago/internal/core/entity"
	"facturago/internal/domain/catalogs/client"
)

// CreateClientRequest is the payload for creating a client.
type CreateClientRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	TaxID   string `json:"taxId" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// ToEntity builds a client entity.
func (r CreateClientRequest) ToEntity(ownerID string) *client.Client {
	return &client.Client{
		Catalog: entity.NewCatalog(ownerID, r.Code, r.Name),
		TaxID:   r.TaxID,
		Email:   r.Email,
		Phone:   r.Phone,
		Address: r.Address,
		City:    r.City,
		ZipCode: r.ZipCode,
		Country: r.Country,
	}
}

// UpdateClientRequest is the payload for updating a client.
type UpdateClientRequest struct {
	Name    *string `json:"name"`
	TaxID   *string `json:"taxId"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	ZipCode *string `json:"zipCode"`
	Country *string `json:"country"`
}

// ApplyTo applies changed fields to an existing client.
func (r UpdateClientRequest) ApplyTo(c *client.Client) {
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
}

// ClientResponse describes a client.
type ClientResponse struct {
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
}

// FromClient maps a client entity.
func FromClient(c *client.Client) *ClientResponse {
	return &ClientResponse{
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
	}
}
