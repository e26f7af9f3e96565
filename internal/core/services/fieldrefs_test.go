package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldRefsExplicitFieldKeys(t *testing.T) {
	refs := fieldRefs(json.RawMessage(`{
		"total_net": {"sum": {"field": "netamount"}},
		"by_customer": {
			"terms": {"field": "customercode.keyword"},
			"aggs": {"avg_vat": {"avg": {"field": "vat"}}}
		}
	}`))

	assert.ElementsMatch(t, []string{"netamount", "customercode", "vat"}, refs)
}

func TestFieldRefsClausesKeyedByField(t *testing.T) {
	refs := fieldRefs(json.RawMessage(`{
		"bool": {
			"must": [
				{"term": {"salesman": "MK"}},
				{"match": {"customername": "Acme"}},
				{"range": {"date": {"gte": "2024-01-01", "lte": "2024-12-31"}}}
			],
			"must_not": [{"prefix": {"number": "CR-"}}]
		}
	}`))

	assert.ElementsMatch(t, []string{"salesman", "customername", "date", "number"}, refs)
}

func TestFieldRefsIgnoresStructuralKeys(t *testing.T) {
	refs := fieldRefs(json.RawMessage(`{"match_all": {}}`))
	assert.Empty(t, refs)

	refs = fieldRefs(json.RawMessage(`{"bool": {"filter": []}}`))
	assert.Empty(t, refs)
}

func TestFieldRefsEmptyAndMalformedBodies(t *testing.T) {
	assert.Empty(t, fieldRefs(nil))
	assert.Empty(t, fieldRefs(json.RawMessage(`not json`)))
}
