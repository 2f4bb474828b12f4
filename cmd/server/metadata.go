package main

import (
	"facturago/internal/domain/catalogs/client"
	"facturago/internal/domain/catalogs/company"
	"facturago/internal/domain/invoice"
	"facturago/internal/domain/series"
	"facturago/internal/metadata"
)

// setupMetadataRegistry populates the schema registry served under /meta.
func setupMetadataRegistry() *metadata.Registry {
	reg := metadata.NewRegistry()

	register := func(entity any, name string, typ metadata.EntityType, label string) {
		def := metadata.Inspect(entity, name, typ)
		def.Label = label
		reg.Register(def)
	}

	register(client.Client{}, "Client", metadata.TypeCatalog, "Clientes")
	register(company.Company{}, "Company", metadata.TypeCatalog, "Empresas")
	register(series.Series{}, "Series", metadata.TypeCatalog, "Series de numeración")
	register(invoice.Invoice{}, "Invoice", metadata.TypeDocument, "Facturas")

	return reg
}
