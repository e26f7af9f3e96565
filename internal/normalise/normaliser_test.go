package normalise

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
)

func mustSchema(t *testing.T, entity domain.EntityType) domain.Schema {
	t.Helper()
	s, err := domain.SchemaFor(entity)
	require.NoError(t, err)
	return s
}

func TestRecordTokenFieldsStayStrings(t *testing.T) {
	schema := mustSchema(t, domain.EntityObjects)

	rec, err := Record(domain.RawRecord{
		"code":  "OBJ-1",
		"name":  "Tallinn office",
		"level": 10, // numeric-looking hierarchy label
	}, schema)
	require.NoError(t, err)

	assert.Equal(t, "10", rec.Fields["level"])
	assert.Equal(t, "OBJ-1", rec.ID)
}

func TestRecordFloatRenderedTokenHasNoDecimalPoint(t *testing.T) {
	schema := mustSchema(t, domain.EntityObjects)

	rec, err := Record(domain.RawRecord{"code": "X", "level": 10.0}, schema)
	require.NoError(t, err)

	assert.Equal(t, "10", rec.Fields["level"])
}

func TestRecordDropsUndeclaredRawFields(t *testing.T) {
	schema := mustSchema(t, domain.EntityInvoices)

	// Legacy export names with no declared origin must not be guessed
	// into the similarly-named target fields.
	rec, err := Record(domain.RawRecord{
		"number":   "INV-100",
		"amount":   500,
		"total":    1250.0,
		"custcode": "C1",
	}, schema)
	require.NoError(t, err)

	assert.False(t, rec.Has("netamount"))
	assert.False(t, rec.Has("totalamount"))
	assert.False(t, rec.Has("customercode"))
	assert.Equal(t, "INV-100", rec.ID)
}

func TestRecordAbsentOriginStaysUnset(t *testing.T) {
	schema := mustSchema(t, domain.EntityCustomers)

	rec, err := Record(domain.RawRecord{"code": "C1", "name": "Acme"}, schema)
	require.NoError(t, err)

	assert.False(t, rec.Has("email"))
	assert.False(t, rec.Has("ts_created"))
}

func TestRecordRenamedOrigins(t *testing.T) {
	items := mustSchema(t, domain.EntityItems)
	rec, err := Record(domain.RawRecord{
		"code":      "ITEM-1",
		"classname": "Hardware",
	}, items)
	require.NoError(t, err)
	assert.Equal(t, "Hardware", rec.Fields["class_name"])

	customers := mustSchema(t, domain.EntityCustomers)
	rec, err = Record(domain.RawRecord{
		"code":      "C1",
		"tscreated": "2020-05-01",
	}, customers)
	require.NoError(t, err)
	assert.Equal(t,
		time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC),
		rec.Fields["ts_created"])
}

func TestRecordCoercesNumericStrings(t *testing.T) {
	schema := mustSchema(t, domain.EntityInvoices)

	rec, err := Record(domain.RawRecord{
		"number":    "INV-1",
		"netamount": "199.90",
		"vat":       "39.98",
	}, schema)
	require.NoError(t, err)

	assert.Equal(t, 199.90, rec.Fields["netamount"])
	assert.Equal(t, 39.98, rec.Fields["vat"])
}

func TestRecordCoercesIntegers(t *testing.T) {
	schema := mustSchema(t, domain.EntityProjects)

	rec, err := Record(domain.RawRecord{"code": "P1", "points": "42"}, schema)
	require.NoError(t, err)
	assert.Equal(t, int64(42), rec.Fields["points"])

	rec, err = Record(domain.RawRecord{"code": "P1", "points": 42.0}, schema)
	require.NoError(t, err)
	assert.Equal(t, int64(42), rec.Fields["points"])
}

func TestRecordFractionalIntegerMismatch(t *testing.T) {
	schema := mustSchema(t, domain.EntityProjects)

	_, err := Record(domain.RawRecord{"code": "P1", "points": 42.5}, schema)
	require.Error(t, err)

	var mismatch *domain.TypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "points", mismatch.Field)
	assert.Equal(t, "P1", mismatch.Key)
}

func TestRecordDateLayouts(t *testing.T) {
	schema := mustSchema(t, domain.EntityInvoices)

	cases := map[string]time.Time{
		"2024-03-15":          time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		"2024-03-15 10:30:00": time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		"2024-03-15T10:30:00": time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		"15.03.2024":          time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		rec, err := Record(domain.RawRecord{"number": "I1", "date": raw}, schema)
		require.NoError(t, err, "layout %q", raw)
		assert.Equal(t, want, rec.Fields["date"], "layout %q", raw)
	}
}

func TestRecordUnparseableDateMismatch(t *testing.T) {
	schema := mustSchema(t, domain.EntityInvoices)

	_, err := Record(domain.RawRecord{"number": "I1", "date": "soon"}, schema)

	var mismatch *domain.TypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "date", mismatch.Field)
	assert.Equal(t, domain.FieldDate, mismatch.Type)
	assert.Equal(t, "I1", mismatch.Key)
}

func TestRecordEmptyStringIsUnset(t *testing.T) {
	schema := mustSchema(t, domain.EntityInvoices)

	// XML attributes are exported blank rather than omitted.
	rec, err := Record(domain.RawRecord{
		"number":    "I1",
		"netamount": "",
		"date":      "",
		"salesman":  "",
	}, schema)
	require.NoError(t, err)

	assert.False(t, rec.Has("netamount"))
	assert.False(t, rec.Has("date"))
	assert.False(t, rec.Has("salesman"))
}

func TestRecordIsIdempotentOverRawInput(t *testing.T) {
	schema := mustSchema(t, domain.EntityInvoices)
	raw := domain.RawRecord{
		"number":    "I1",
		"netamount": "100.50",
		"date":      "2024-01-01",
	}

	first, err := Record(raw, schema)
	require.NoError(t, err)
	second, err := Record(raw, schema)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBatchContinuesPastMismatches(t *testing.T) {
	schema := mustSchema(t, domain.EntityInvoices)

	result := Batch([]domain.RawRecord{
		{"number": "I1", "netamount": "100"},
		{"number": "I2", "netamount": "not-a-number"},
		{"number": "I3", "netamount": "300"},
	}, schema)

	require.Len(t, result.Records, 2)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "I1", result.Records[0].ID)
	assert.Equal(t, "I3", result.Records[1].ID)
	assert.Equal(t, "I2", result.Failures[0].Key)
	assert.Equal(t, "netamount", result.Failures[0].Field)
}

func TestBatchPartitionsEveryRecord(t *testing.T) {
	schema := mustSchema(t, domain.EntityInvoices)

	raws := []domain.RawRecord{
		{"number": "I1", "netamount": "100"},
		{"number": "I2", "netamount": "not-a-number"},
		{"number": "I3"},
		{"number": "I4", "date": "never"},
	}
	result := Batch(raws, schema)

	// Every input lands in exactly one bucket, and the success bucket
	// never carries a placeholder record for a failed input.
	assert.Equal(t, len(raws), len(result.Records)+len(result.Failures))
	for _, rec := range result.Records {
		assert.Equal(t, domain.EntityInvoices, rec.Entity)
		assert.NotEmpty(t, rec.ID)
	}
}

func TestBatchEmptyInput(t *testing.T) {
	schema := mustSchema(t, domain.EntityAccounts)

	result := Batch(nil, schema)

	assert.Empty(t, result.Records)
	assert.Empty(t, result.Failures)
}
