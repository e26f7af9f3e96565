package directo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
)

func testConnector(t *testing.T, handler http.HandlerFunc) *Connector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	conn, err := New(Config{
		Token:             "test-token",
		BaseURL:           srv.URL,
		RetryMax:          1,
		RequestsPerSecond: 1000,
	})
	require.NoError(t, err)
	return conn
}

func collect(t *testing.T, records <-chan domain.RawRecord, errs <-chan error) ([]domain.RawRecord, error) {
	t.Helper()
	var out []domain.RawRecord
	for rec := range records {
		out = append(out, rec)
	}
	return out, <-errs
}

func TestFetchParsesRowAttributes(t *testing.T) {
	conn := testConnector(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "test-token", r.Form.Get("token"))
		assert.Equal(t, "1", r.Form.Get("get"))
		assert.Equal(t, "invoice", r.Form.Get("what"))
		assert.Equal(t, "15.03.2024", r.Form.Get("ts"))

		w.Write([]byte(`<transport>
			<invoice number="INV-1" date="2024-03-20" netamount="100.50"/>
			<invoice number="INV-2" date="2024-03-21" netamount="200"/>
		</transport>`))
	})

	from := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	records, errs := conn.Fetch(context.Background(), domain.EntityInvoices, from)

	out, err := collect(t, records, errs)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "INV-1", out[0]["number"])
	assert.Equal(t, "100.50", out[0]["netamount"])
	assert.Equal(t, "INV-2", out[1]["number"])
}

func TestFetchOmitsTsFilterForZeroTime(t *testing.T) {
	conn := testConnector(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.False(t, r.Form.Has("ts"))
		w.Write([]byte(`<transport/>`))
	})

	records, errs := conn.Fetch(context.Background(), domain.EntityItems, time.Time{})

	out, err := collect(t, records, errs)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFetchErrRootIsAPIError(t *testing.T) {
	conn := testConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<err desc="unknown export type"/>`))
	})

	records, errs := conn.Fetch(context.Background(), domain.EntityInvoices, time.Time{})

	_, err := collect(t, records, errs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown export type")
}

func TestFetchResultTypeFiveIsAuthFailure(t *testing.T) {
	conn := testConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<transport><result type="5" desc="Invalid key"/></transport>`))
	})

	records, errs := conn.Fetch(context.Background(), domain.EntityInvoices, time.Time{})

	_, err := collect(t, records, errs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAuthFailed))
}

func TestFetchRootResultTypeFiveIsAuthFailure(t *testing.T) {
	conn := testConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<result type="5" desc="Invalid key"/>`))
	})

	records, errs := conn.Fetch(context.Background(), domain.EntityInvoices, time.Time{})

	out, err := collect(t, records, errs)
	assert.Empty(t, out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAuthFailed))
}

func TestFetchRootResultOtherTypeIsEmptyExport(t *testing.T) {
	conn := testConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<result type="0"/>`))
	})

	records, errs := conn.Fetch(context.Background(), domain.EntityInvoices, time.Time{})

	out, err := collect(t, records, errs)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int
	conn := testConnector(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`<transport><invoice number="INV-1"/></transport>`))
	})

	records, errs := conn.Fetch(context.Background(), domain.EntityInvoices, time.Time{})

	out, err := collect(t, records, errs)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, out, 1)
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	conn := testConnector(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	records, errs := conn.Fetch(context.Background(), domain.EntityInvoices, time.Time{})

	_, err := collect(t, records, errs)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestValidateUsesCheapExport(t *testing.T) {
	conn := testConnector(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "account", r.Form.Get("what"))
		w.Write([]byte(`<transport/>`))
	})

	assert.NoError(t, conn.Validate(context.Background()))
}

func TestNewRejectsIncompleteConfig(t *testing.T) {
	_, err := New(Config{Company: "acme"})
	assert.Error(t, err)

	_, err = New(Config{Token: "tok"})
	assert.Error(t, err)
}
