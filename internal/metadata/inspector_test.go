package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturago/internal/domain/invoice"
	"facturago/internal/domain/series"
)

func fieldByName(t *testing.T, fields []FieldDef, name string) FieldDef {
	t.Helper()
	for _, f := range fields {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("field %q not found", name)
	return FieldDef{}
}

func TestInspectInvoice(t *testing.T) {
	def := Inspect(invoice.Invoice{}, "Invoice", TypeDocument)

	assert.Equal(t, "Invoice", def.Name)
	assert.Equal(t, TypeDocument, def.Type)

	// Embedded Document flattens into the parent.
	num := fieldByName(t, def.Fields, "displayNumber")
	assert.Equal(t, TypeString, num.Type)

	ref := fieldByName(t, def.Fields, "seriesId")
	assert.Equal(t, TypeReference, ref.Type)
	assert.Equal(t, "series", ref.ReferenceType)

	total := fieldByName(t, def.Fields, "total")
	assert.Equal(t, TypeMoney, total.Type)

	idField := fieldByName(t, def.Fields, "id")
	assert.True(t, idField.ReadOnly)

	// Lines surface as a table part, not a field.
	require.Len(t, def.TableParts, 1)
	lines := def.TableParts[0]
	assert.Equal(t, "lines", lines.Name)
	qty := fieldByName(t, lines.Columns, "quantity")
	assert.Equal(t, TypeNumber, qty.Type)
	assert.Equal(t, 4, qty.Scale)
	price := fieldByName(t, lines.Columns, "unitPrice")
	assert.Equal(t, TypeMoney, price.Type)
}

func TestInspectSeries(t *testing.T) {
	def := Inspect(series.Series{}, "Series", TypeCatalog)

	pattern := fieldByName(t, def.Fields, "pattern")
	assert.Equal(t, TypeString, pattern.Type)

	counter := fieldByName(t, def.Fields, "counter")
	assert.Equal(t, TypeInteger, counter.Type)

	isDefault := fieldByName(t, def.Fields, "isDefault")
	assert.Equal(t, TypeBoolean, isDefault.Type)
}

func TestRegistryListSorted(t *testing.T) {
	reg := NewRegistry()
	reg.Register(EntityDef{Name: "Invoice"})
	reg.Register(EntityDef{Name: "Client"})
	reg.Register(EntityDef{Name: "Series"})

	list := reg.List()
	require.Len(t, list, 3)
	assert.Equal(t, "Client", list[0].Name)
	assert.Equal(t, "Invoice", list[1].Name)
	assert.Equal(t, "Series", list[2].Name)
}
