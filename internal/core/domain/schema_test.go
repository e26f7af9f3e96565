package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSchemaFor tests schema lookup for every entity
func TestSchemaFor(t *testing.T) {
	for _, e := range AllEntityTypes() {
		t.Run(string(e), func(t *testing.T) {
			s, err := SchemaFor(e)
			require.NoError(t, err)

			assert.Equal(t, e, s.Entity)
			assert.Equal(t, SchemaVersion, s.Version)
			assert.NotEmpty(t, s.Fields)

			key, ok := s.Field(s.KeyField)
			require.True(t, ok, "key field %q must be declared", s.KeyField)
			assert.Equal(t, FieldToken, key.Type, "key field must be a token")
		})
	}
}

// TestSchemaFor_UnknownEntity tests lookup failure
func TestSchemaFor_UnknownEntity(t *testing.T) {
	_, err := SchemaFor(EntityType("ledgers"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// TestSchema_KeyFields tests the natural key of each entity
func TestSchema_KeyFields(t *testing.T) {
	tests := []struct {
		entity   EntityType
		keyField string
	}{
		{EntityInvoices, "number"},
		{EntityPurchases, "number"},
		{EntityItems, "code"},
		{EntityProjects, "code"},
		{EntityCustomers, "code"},
		{EntityObjects, "code"},
		{EntityAccounts, "code"},
		{EntitySuppliers, "code"},
	}

	for _, tt := range tests {
		t.Run(string(tt.entity), func(t *testing.T) {
			s, err := SchemaFor(tt.entity)
			require.NoError(t, err)
			assert.Equal(t, tt.keyField, s.KeyField)
		})
	}
}

// TestSchema_RenamedOrigins tests fields extracted from
// differently-named upstream fields
func TestSchema_RenamedOrigins(t *testing.T) {
	items, err := SchemaFor(EntityItems)
	require.NoError(t, err)
	f, ok := items.Field("class_name")
	require.True(t, ok)
	assert.Equal(t, "classname", f.Origin)

	customers, err := SchemaFor(EntityCustomers)
	require.NoError(t, err)
	f, ok = customers.Field("ts_created")
	require.True(t, ok)
	assert.Equal(t, "tscreated", f.Origin)
}

// TestSchema_ObjectLevelIsToken tests that numeric-looking hierarchy
// labels stay exact-match strings
func TestSchema_ObjectLevelIsToken(t *testing.T) {
	s, err := SchemaFor(EntityObjects)
	require.NoError(t, err)

	f, ok := s.Field("level")
	require.True(t, ok)
	assert.Equal(t, FieldToken, f.Type)
}

// TestFieldType_String tests the search-engine mapping names
func TestFieldType_String(t *testing.T) {
	tests := []struct {
		fieldType FieldType
		expected  string
	}{
		{FieldToken, "keyword"},
		{FieldText, "text"},
		{FieldFloat, "float"},
		{FieldInteger, "integer"},
		{FieldDate, "date"},
		{FieldType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.fieldType.String())
		})
	}
}

// TestSchema_FieldNames tests declaration-order field listing
func TestSchema_FieldNames(t *testing.T) {
	s, err := SchemaFor(EntityObjects)
	require.NoError(t, err)

	assert.Equal(t, []string{"code", "name", "type", "level", "ts"}, s.FieldNames())
}

// TestSchemaReference tests the prompt-ready rendering of the table
func TestSchemaReference(t *testing.T) {
	ref := SchemaReference()

	assert.Contains(t, ref, "- invoices: number (keyword)")
	assert.Contains(t, ref, "netamount (float)")
	assert.Contains(t, ref, "- objects:")
	assert.Contains(t, ref, "level (keyword)")

	// One line per entity.
	for _, e := range AllEntityTypes() {
		assert.Contains(t, ref, "- "+string(e)+": ")
	}
}
