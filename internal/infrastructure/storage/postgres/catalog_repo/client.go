package catalog_repo

import (
	"facturago/internal/domain"
	"facturago/internal/domain/catalogs/client"
	"facturago/internal/infrastructure/storage/postgres"
)

// Compile-time check.
var _ domain.CatalogRepository[*client.Client] = (*ClientRepo)(nil)

// ClientRepo is the PostgreSQL repository for clients (invoice recipients).
type ClientRepo struct {
	*BaseCatalogRepo[*client.Client]
}

// NewClientRepo creates a client repository.
func NewClientRepo(txManager *postgres.TxManager) *ClientRepo {
	return &ClientRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"clients",
			postgres.ExtractDBColumns[client.Client](),
			func() *client.Client { return &client.Client{} },
		),
	}
}
