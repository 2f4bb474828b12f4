package metadata

import (
	"reflect"
	"strings"
	"time"
	"unicode"

	"facturago/internal/core/id"
	"facturago/internal/core/types"
)

var (
	idType         = reflect.TypeOf(id.ID{})
	timeType       = reflect.TypeOf(time.Time{})
	minorUnitsType = reflect.TypeOf(types.MinorUnits(0))
	quantityType   = reflect.TypeOf(types.Quantity(0))
)

// Inspect derives an EntityDef from a struct via reflection. Embedded
// structs flatten into the parent; a slice-of-struct field becomes a table
// part (the invoice lines).
func Inspect(entity any, name string, entityType EntityType) EntityDef {
	t := reflect.TypeOf(entity)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if name == "" {
		name = t.Name()
	}

	def := EntityDef{
		Name:       name,
		Label:      name,
		Type:       entityType,
		Fields:     make([]FieldDef, 0),
		TableParts: make([]TablePartDef, 0),
	}

	inspectStruct(t, &def)

	return def
}

func inspectStruct(t reflect.Type, def *EntityDef) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.PkgPath != "" { // unexported
			continue
		}

		if field.Anonymous {
			inspectStruct(field.Type, def)
			continue
		}

		if field.Type.Kind() == reflect.Slice && field.Type.Elem().Kind() == reflect.Struct {
			def.TableParts = append(def.TableParts, TablePartDef{
				Name:    jsonName(field),
				Label:   field.Name,
				Columns: inspectColumns(field.Type.Elem()),
			})
			continue
		}

		fDef := FieldDef{
			Name:     jsonName(field),
			Label:    field.Name,
			Required: isRequired(field),
			ReadOnly: isReadOnly(field),
		}
		mapFieldType(&fDef, field)

		if fDef.Name == "-" {
			continue
		}
		def.Fields = append(def.Fields, fDef)
	}
}

func inspectColumns(t reflect.Type) []FieldDef {
	cols := make([]FieldDef, 0)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}

		fDef := FieldDef{
			Name:     jsonName(field),
			Label:    field.Name,
			Required: isRequired(field),
		}
		mapFieldType(&fDef, field)
		if fDef.Name == "-" {
			continue
		}
		cols = append(cols, fDef)
	}
	return cols
}

func mapFieldType(def *FieldDef, field reflect.StructField) {
	t := field.Type
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t {
	case idType:
		def.Type = TypeReference
		// "SeriesID" -> "series", "ClientID" -> "client"
		if base, ok := strings.CutSuffix(field.Name, "ID"); ok && base != "" {
			def.ReferenceType = strings.ToLower(base)
		}
		return
	case timeType:
		def.Type = TypeDate
		return
	case minorUnitsType:
		def.Type = TypeMoney
		return
	case quantityType:
		def.Type = TypeNumber
		def.Scale = 4
		return
	}

	switch t.Kind() {
	case reflect.String:
		def.Type = TypeString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		def.Type = TypeInteger
	case reflect.Float32, reflect.Float64:
		def.Type = TypeNumber
		def.Scale = 2
	case reflect.Bool:
		def.Type = TypeBoolean
	default:
		def.Type = TypeString
	}
}

func jsonName(field reflect.StructField) string {
	if tag, ok := field.Tag.Lookup("json"); ok {
		parts := strings.Split(tag, ",")
		if parts[0] != "" {
			return parts[0]
		}
	}
	runes := []rune(field.Name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

func isRequired(field reflect.StructField) bool {
	if tag, ok := field.Tag.Lookup("binding"); ok {
		return strings.Contains(tag, "required")
	}
	return false
}

func isReadOnly(field reflect.StructField) bool {
	switch field.Name {
	case "ID", "Version", "CreatedAt", "UpdatedAt", "CreatedBy", "UpdatedBy":
		return true
	}
	return false
}
