package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturago/internal/domain/catalogs/client"
	"facturago/internal/domain/series"
)

func TestExtractDBColumns(t *testing.T) {
	t.Run("catalog entity with embedded base", func(t *testing.T) {
		cols := ExtractDBColumns[client.Client]()

		// Embedded entity.Catalog -> entity.BaseEntity columns come through.
		assert.Contains(t, cols, "id")
		assert.Contains(t, cols, "owner_id")
		assert.Contains(t, cols, "deletion_mark")
		assert.Contains(t, cols, "version")
		assert.Contains(t, cols, "code")
		assert.Contains(t, cols, "name")
		assert.Contains(t, cols, "tax_id")
	})

	t.Run("series entity", func(t *testing.T) {
		cols := ExtractDBColumns[series.Series]()

		assert.Contains(t, cols, "pattern")
		assert.Contains(t, cols, "counter")
		assert.Contains(t, cols, "is_default")
		assert.Contains(t, cols, "type")
	})

	t.Run("non-struct returns nil", func(t *testing.T) {
		assert.Nil(t, ExtractDBColumns[int]())
	})
}

func TestStructToMap(t *testing.T) {
	s := series.New("owner-1", "FAC-####", series.TypeStandard, true)
	s.Counter = 7

	m := StructToMap(s)
	require.NotNil(t, m)

	assert.Equal(t, "FAC-####", m["pattern"])
	assert.Equal(t, 7, m["counter"])
	assert.Equal(t, true, m["is_default"])
	assert.Equal(t, "owner-1", m["owner_id"])
	assert.Equal(t, s.ID, m["id"])

	// Cached second pass returns the same shape.
	m2 := StructToMap(s)
	assert.Equal(t, m, m2)
}

func TestStructToMapNonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap("text"))
}
