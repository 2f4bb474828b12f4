package handlers

import (
	"facturago/internal/domain"
	"facturago/internal/domain/catalogs/client"
	"facturago/internal/infrastructure/http/v1/dto"
)

// ClientHandler handles HTTP requests for clients.
type ClientHandler struct {
	*BaseCatalogHandler[*client.Client, dto.CreateClientRequest, dto.UpdateClientRequest]
}

// NewClientHandler creates a client handler.
func NewClientHandler(base *BaseHandler, service *domain.CatalogService[*client.Client]) *ClientHandler {
	cfg := BaseCatalogHandlerConfig[*client.Client, dto.CreateClientRequest, dto.UpdateClientRequest]{
		Service:    service,
		EntityName: "client",
		MapCreateDTO: func(req dto.CreateClientRequest, ownerID string) *client.Client {
			return req.ToEntity(ownerID)
		},
		MapUpdateDTO: func(req dto.UpdateClientRequest, existing *client.Client) {
			req.ApplyTo(existing)
		},
		MapToDTO: func(c *client.Client) any {
			return dto.FromClient(c)
		},
		OwnerOf: func(c *client.Client) string {
			return c.OwnerID
		},
	}

	return &ClientHandler{
		BaseCatalogHandler: NewBaseCatalogHandler(base, cfg),
	}
}
