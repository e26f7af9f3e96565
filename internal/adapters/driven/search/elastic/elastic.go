// Package elastic implements the search engine port against an
// Elasticsearch-compatible HTTP API. It keeps to the small slice of the
// API the ETL and query layers need: index creation with explicit
// mappings, bulk writes, atomic alias swaps, _search and _count.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-cli/internal/core/ports/driven"
	"github.com/ledgerlens/ledgerlens-cli/internal/logger"
)

// defaultSearchSize caps returned documents when the query carries no
// aggregations and no explicit size.
const defaultSearchSize = 100

// maxBulkReasons bounds how many per-item rejection reasons a bulk
// result carries.
const maxBulkReasons = 5

// Config holds the connection settings for the search cluster.
type Config struct {
	// Endpoint is the full cluster URL (managed deployments). When set
	// it takes precedence over Host/Port.
	Endpoint string

	// APIKey authenticates requests via the ApiKey scheme. Optional for
	// local clusters.
	APIKey string

	// Host and Port describe a local cluster. Defaults: localhost:9200.
	Host string
	Port int

	// Timeout bounds a single request. Zero means 30s.
	Timeout time.Duration
}

func (c Config) baseURL() string {
	if c.Endpoint != "" {
		return strings.TrimRight(c.Endpoint, "/")
	}
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == 0 {
		port = 9200
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 30 * time.Second
}

// Engine implements driven.SearchEngine over the HTTP API.
type Engine struct {
	cfg  Config
	http *http.Client
}

var _ driven.SearchEngine = (*Engine)(nil)

// New creates a search engine client.
func New(cfg Config) *Engine {
	return &Engine{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.timeout()},
	}
}

// Ping implements driven.SearchEngine.
func (e *Engine) Ping(ctx context.Context) error {
	_, err := e.do(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return fmt.Errorf("pinging search engine: %w", err)
	}
	return nil
}

// CreateIndex implements driven.SearchEngine. The mapping is generated
// from the schema so the index and the normaliser can never disagree on
// a field's type.
func (e *Engine) CreateIndex(ctx context.Context, name string, schema domain.Schema) error {
	properties := make(map[string]any, len(schema.Fields)+1)
	for _, f := range schema.Fields {
		properties[f.Name] = map[string]any{"type": f.Type.String()}
	}
	properties["indexed_at"] = map[string]any{"type": "date"}

	body := map[string]any{
		"mappings": map[string]any{"properties": properties},
	}
	if _, err := e.do(ctx, http.MethodPut, "/"+name, body); err != nil {
		return fmt.Errorf("creating index %s: %w", name, err)
	}
	logger.Debug("elastic: created index %s (%d fields)", name, len(schema.Fields))
	return nil
}

// BulkWrite implements driven.SearchEngine.
func (e *Engine) BulkWrite(ctx context.Context, index string, records []domain.Record) (driven.BulkResult, error) {
	if len(records) == 0 {
		return driven.BulkResult{}, nil
	}

	var buf bytes.Buffer
	now := time.Now().UTC()
	for _, rec := range records {
		action := map[string]any{"_index": index}
		if rec.ID != "" {
			action["_id"] = rec.ID
		}
		if err := json.NewEncoder(&buf).Encode(map[string]any{"index": action}); err != nil {
			return driven.BulkResult{}, fmt.Errorf("encoding bulk action: %w", err)
		}
		doc := make(map[string]any, len(rec.Fields)+1)
		for k, v := range rec.Fields {
			doc[k] = v
		}
		doc["indexed_at"] = now
		if err := json.NewEncoder(&buf).Encode(doc); err != nil {
			return driven.BulkResult{}, fmt.Errorf("encoding bulk document: %w", err)
		}
	}

	resp, err := e.doRaw(ctx, http.MethodPost, "/_bulk", buf.Bytes(), "application/x-ndjson")
	if err != nil {
		return driven.BulkResult{}, fmt.Errorf("bulk write to %s: %w", index, err)
	}
	return parseBulkResponse(resp)
}

// bulkResponse is the slice of the _bulk response we care about.
type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

func parseBulkResponse(body []byte) (driven.BulkResult, error) {
	var resp bulkResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return driven.BulkResult{}, fmt.Errorf("parsing bulk response: %w", err)
	}

	var result driven.BulkResult
	for _, item := range resp.Items {
		for _, op := range item {
			if op.Status >= 200 && op.Status < 300 {
				result.Succeeded++
				continue
			}
			result.Failed++
			if op.Error != nil && len(result.Reasons) < maxBulkReasons {
				result.Reasons = append(result.Reasons,
					fmt.Sprintf("%s: %s", op.Error.Type, op.Error.Reason))
			}
		}
	}
	return result, nil
}

// SwapAlias implements driven.SearchEngine. The swap is one atomic
// _aliases call: remove-from-previous and add-to-new succeed or fail
// together, so readers never see an empty or doubled alias.
func (e *Engine) SwapAlias(ctx context.Context, alias, newIndex string) ([]string, error) {
	previous, err := e.aliasIndices(ctx, alias)
	if err != nil {
		return nil, err
	}

	actions := make([]map[string]any, 0, len(previous)+1)
	for _, idx := range previous {
		actions = append(actions, map[string]any{
			"remove": map[string]any{"index": idx, "alias": alias},
		})
	}
	actions = append(actions, map[string]any{
		"add": map[string]any{"index": newIndex, "alias": alias},
	})

	body := map[string]any{"actions": actions}
	if _, err := e.do(ctx, http.MethodPost, "/_aliases", body); err != nil {
		return nil, fmt.Errorf("swapping alias %s to %s: %w", alias, newIndex, err)
	}
	logger.Debug("elastic: alias %s now points at %s (detached %d)",
		alias, newIndex, len(previous))
	return previous, nil
}

// aliasIndices returns the indices an alias currently points at.
// A missing alias is not an error: first runs have nothing to detach.
func (e *Engine) aliasIndices(ctx context.Context, alias string) ([]string, error) {
	resp, status, err := e.doStatus(ctx, http.MethodGet, "/_alias/"+alias, nil)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving alias %s: %w", alias, err)
	}

	var byIndex map[string]json.RawMessage
	if err := json.Unmarshal(resp, &byIndex); err != nil {
		return nil, fmt.Errorf("parsing alias response: %w", err)
	}
	indices := make([]string, 0, len(byIndex))
	for idx := range byIndex {
		indices = append(indices, idx)
	}
	return indices, nil
}

// DeleteIndex implements driven.SearchEngine.
func (e *Engine) DeleteIndex(ctx context.Context, name string) error {
	_, status, err := e.doStatus(ctx, http.MethodDelete, "/"+name, nil)
	if status == http.StatusNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("deleting index %s: %w", name, err)
	}
	return nil
}

// searchResponse is the slice of the _search response we care about.
type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations json.RawMessage `json:"aggregations"`
}

// Search implements driven.SearchEngine. Aggregation queries are run
// with size 0; plain queries default to a bounded hit count.
func (e *Engine) Search(ctx context.Context, spec domain.QuerySpec) (*domain.QueryResult, error) {
	if len(spec.Indices) == 0 {
		return nil, fmt.Errorf("%w: no indices to search", domain.ErrInvalidQuery)
	}

	body := map[string]any{}
	if len(spec.Query) > 0 {
		body["query"] = spec.Query
	}
	switch {
	case spec.HasAggs():
		body["aggs"] = spec.Aggs
		body["size"] = 0
	case spec.Size > 0:
		body["size"] = spec.Size
	default:
		body["size"] = defaultSearchSize
	}

	path := "/" + strings.Join(spec.Indices, ",") + "/_search"
	resp, status, err := e.doStatus(ctx, http.MethodPost, path, body)
	if status == http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidQuery, errorReason(resp))
	}
	if err != nil {
		return nil, fmt.Errorf("executing search: %w", err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(resp, &parsed); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	result := &domain.QueryResult{
		Total:        parsed.Hits.Total.Value,
		Aggregations: parsed.Aggregations,
	}
	for _, hit := range parsed.Hits.Hits {
		result.Hits = append(result.Hits, hit.Source)
	}
	return result, nil
}

// Count implements driven.SearchEngine.
func (e *Engine) Count(ctx context.Context, index string) (int64, error) {
	resp, err := e.do(ctx, http.MethodGet, "/"+index+"/_count", nil)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", index, err)
	}
	var parsed struct {
		Count int64 `json:"count"`
	}
	if err := json.Unmarshal(resp, &parsed); err != nil {
		return 0, fmt.Errorf("parsing count response: %w", err)
	}
	return parsed.Count, nil
}

// errorReason extracts the engine's reason string from an error body.
func errorReason(body []byte) string {
	var parsed struct {
		Error struct {
			Reason    string `json:"reason"`
			RootCause []struct {
				Reason string `json:"reason"`
			} `json:"root_cause"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if len(parsed.Error.RootCause) > 0 && parsed.Error.RootCause[0].Reason != "" {
			return parsed.Error.RootCause[0].Reason
		}
		if parsed.Error.Reason != "" {
			return parsed.Error.Reason
		}
	}
	return strings.TrimSpace(string(body))
}

func (e *Engine) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	resp, _, err := e.doStatus(ctx, method, path, body)
	return resp, err
}

func (e *Engine) doStatus(ctx context.Context, method, path string, body any) ([]byte, int, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encoding request: %w", err)
		}
	}
	resp, status, err := e.roundTrip(ctx, method, path, payload, "application/json")
	return resp, status, err
}

func (e *Engine) doRaw(ctx context.Context, method, path string, payload []byte, contentType string) ([]byte, error) {
	resp, _, err := e.roundTrip(ctx, method, path, payload, contentType)
	return resp, err
}

func (e *Engine) roundTrip(ctx context.Context, method, path string, payload []byte, contentType string) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, e.cfg.baseURL()+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("building request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if e.cfg.APIKey != "" {
		req.Header.Set("Authorization", "ApiKey "+e.cfg.APIKey)
	}

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return respBody, resp.StatusCode,
			fmt.Errorf("engine returned %s: %s", resp.Status, errorReason(respBody))
	}
	return respBody, resp.StatusCode, nil
}
