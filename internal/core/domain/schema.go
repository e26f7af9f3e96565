package domain

import (
	"fmt"
	"strings"
)

// SchemaVersion is the current version of the target schema table.
// Bumping it signals that at least one field name or type changed and
// the affected collections must be reindexed, never mutated in place.
const SchemaVersion = 3

// FieldType is the semantic type of a target field.
type FieldType int

const (
	// FieldToken is an exact-match, non-analysed field ("keyword").
	// Token values are always strings, even when they look numeric:
	// an object level code "10" stays "10", never the integer 10.
	FieldToken FieldType = iota

	// FieldText is an analysed free-text field.
	FieldText

	// FieldFloat is a floating-point amount.
	FieldFloat

	// FieldInteger is an integer count.
	FieldInteger

	// FieldDate is a calendar date or timestamp.
	FieldDate
)

// String returns the search-engine mapping name for the field type.
func (t FieldType) String() string {
	switch t {
	case FieldToken:
		return "keyword"
	case FieldText:
		return "text"
	case FieldFloat:
		return "float"
	case FieldInteger:
		return "integer"
	case FieldDate:
		return "date"
	default:
		return "unknown"
	}
}

// Field declares one target field of an entity schema.
type Field struct {
	// Name is the stable identifier used by both the index mapping
	// and the query layer.
	Name string

	// Type is the semantic type, fixed for the lifetime of the index.
	Type FieldType

	// Origin is the field name in the upstream export that this field
	// is extracted from. Extraction is by declared origin only, never
	// by name-guessing.
	Origin string
}

// Schema is the versioned target schema for one entity type.
// It is the single source of truth shared by the normaliser, the index
// mapping, and the LLM prompt reference, so the three cannot drift.
type Schema struct {
	Entity  EntityType
	Version int

	// KeyField names the field whose value identifies a record
	// (the search document ID). Always a token field.
	KeyField string

	Fields []Field
}

// Field returns the declared field with the given name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns the target field names in declaration order.
func (s Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// fld is a shorthand constructor for fields whose origin matches the
// target name, which is the common case.
func fld(name string, t FieldType) Field {
	return Field{Name: name, Type: t, Origin: name}
}

// from declares a field extracted from a differently-named origin.
func from(name string, t FieldType, origin string) Field {
	return Field{Name: name, Type: t, Origin: origin}
}

// schemas is the full target schema table, derived from the upstream
// field reference. Key fields: "number" for transactional entities,
// "code" for master data.
var schemas = map[EntityType]Schema{
	EntityInvoices: {
		Entity:   EntityInvoices,
		Version:  SchemaVersion,
		KeyField: "number",
		Fields: []Field{
			fld("number", FieldToken),
			fld("date", FieldDate),
			fld("duedate", FieldDate),
			fld("transactiondate", FieldDate),
			fld("vatzone", FieldToken),
			fld("paymentterm", FieldToken),
			fld("country", FieldToken),
			fld("currency", FieldToken),
			fld("currencyrate", FieldFloat),
			fld("customercode", FieldToken),
			fld("customername", FieldText),
			fld("comment", FieldText),
			fld("address1", FieldText),
			fld("address2", FieldText),
			fld("address3", FieldText),
			fld("salesman", FieldToken),
			fld("confirmed", FieldToken),
			fld("netamount", FieldFloat),
			fld("vat", FieldFloat),
			fld("balance", FieldFloat),
			fld("totalamount", FieldFloat),
			fld("ts", FieldDate),
		},
	},
	EntityPurchases: {
		Entity:   EntityPurchases,
		Version:  SchemaVersion,
		KeyField: "number",
		Fields: []Field{
			fld("number", FieldToken),
			fld("date", FieldDate),
			fld("duedate", FieldDate),
			fld("sum", FieldFloat),
			fld("supplierinvoiceno", FieldToken),
			fld("paymentterm", FieldToken),
			fld("supplier", FieldToken),
			fld("suppliername", FieldText),
			fld("transactiontime", FieldDate),
			fld("vat", FieldFloat),
			fld("asset", FieldToken),
			fld("confirmed", FieldToken),
			fld("ts", FieldDate),
		},
	},
	EntityItems: {
		Entity:   EntityItems,
		Version:  SchemaVersion,
		KeyField: "code",
		Fields: []Field{
			fld("code", FieldToken),
			fld("name", FieldText),
			fld("class", FieldToken),
			// Upstream exports the class name without the underscore.
			from("class_name", FieldText, "classname"),
			fld("unit", FieldToken),
			fld("salesprice", FieldFloat),
			fld("vatprice", FieldFloat),
			fld("vatprice1", FieldFloat),
			fld("vatprice2", FieldFloat),
			fld("vatprice3", FieldFloat),
			fld("vatprice4", FieldFloat),
			fld("cost", FieldFloat),
			fld("closed", FieldToken),
			fld("ts", FieldDate),
			fld("tscreated", FieldDate),
		},
	},
	EntityProjects: {
		Entity:   EntityProjects,
		Version:  SchemaVersion,
		KeyField: "code",
		Fields: []Field{
			fld("code", FieldToken),
			fld("name", FieldText),
			fld("manager", FieldToken),
			fld("start", FieldDate),
			fld("end", FieldDate),
			fld("master", FieldToken),
			fld("type", FieldToken),
			fld("country", FieldToken),
			fld("closed", FieldToken),
			fld("points", FieldInteger),
			fld("createdts", FieldDate),
			fld("ts", FieldDate),
		},
	},
	EntityCustomers: {
		Entity:   EntityCustomers,
		Version:  SchemaVersion,
		KeyField: "code",
		Fields: []Field{
			fld("code", FieldToken),
			fld("name", FieldText),
			fld("class", FieldToken),
			fld("regno", FieldToken),
			fld("type", FieldToken),
			fld("salesman", FieldToken),
			fld("country", FieldToken),
			fld("email", FieldToken),
			fld("address1", FieldText),
			fld("address2", FieldText),
			fld("ts", FieldDate),
			// Upstream exports the creation timestamp as "tscreated".
			from("ts_created", FieldDate, "tscreated"),
		},
	},
	EntityObjects: {
		Entity:   EntityObjects,
		Version:  SchemaVersion,
		KeyField: "code",
		Fields: []Field{
			fld("code", FieldToken),
			fld("name", FieldText),
			fld("type", FieldToken),
			// Level codes look numeric but are hierarchy labels.
			// Declared token so "10" is never coerced to 10.
			fld("level", FieldToken),
			fld("ts", FieldDate),
		},
	},
	EntityAccounts: {
		Entity:   EntityAccounts,
		Version:  SchemaVersion,
		KeyField: "code",
		Fields: []Field{
			fld("code", FieldToken),
			fld("name", FieldText),
			fld("class", FieldToken),
			fld("type", FieldToken),
			fld("ts", FieldDate),
		},
	},
	EntitySuppliers: {
		Entity:   EntitySuppliers,
		Version:  SchemaVersion,
		KeyField: "code",
		Fields: []Field{
			fld("code", FieldToken),
			fld("name", FieldText),
			fld("regno", FieldToken),
			fld("country", FieldToken),
			fld("email", FieldToken),
			fld("address1", FieldText),
			fld("address2", FieldText),
			fld("ts", FieldDate),
		},
	},
}

// SchemaFor returns the target schema for an entity type.
func SchemaFor(entity EntityType) (Schema, error) {
	s, ok := schemas[entity]
	if !ok {
		return Schema{}, fmt.Errorf("%w: no schema for entity %q", ErrInvalidInput, entity)
	}
	return s, nil
}

// AllSchemas returns the schemas for all entity types in ETL order.
func AllSchemas() []Schema {
	all := make([]Schema, 0, len(schemas))
	for _, e := range AllEntityTypes() {
		all = append(all, schemas[e])
	}
	return all
}

// SchemaReference renders the schema table as a compact, prompt-ready
// field reference. The query translator embeds this in its prompt so
// the model only sees field names the index actually has.
func SchemaReference() string {
	var b strings.Builder
	for _, s := range AllSchemas() {
		b.WriteString("- ")
		b.WriteString(string(s.Entity))
		b.WriteString(": ")
		parts := make([]string, len(s.Fields))
		for i, f := range s.Fields {
			parts[i] = f.Name + " (" + f.Type.String() + ")"
		}
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString("\n")
	}
	return b.String()
}
