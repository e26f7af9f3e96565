package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
)

func captureCmd() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	return cmd, &out
}

func TestRunSchemaAllEntities(t *testing.T) {
	cmd, out := captureCmd()

	require.NoError(t, runSchema(cmd, nil))

	assert.Contains(t, out.String(), "[invoices] (key: number)")
	assert.Contains(t, out.String(), "[objects] (key: code)")
	assert.Contains(t, out.String(), "level")
	assert.Contains(t, out.String(), "keyword")
}

func TestRunSchemaSingleEntityAcceptsSingular(t *testing.T) {
	cmd, out := captureCmd()

	require.NoError(t, runSchema(cmd, []string{"invoice"}))

	assert.Contains(t, out.String(), "[invoices]")
	assert.NotContains(t, out.String(), "[customers]")
}

func TestRunSchemaShowsRenamedOrigins(t *testing.T) {
	cmd, out := captureCmd()

	require.NoError(t, runSchema(cmd, []string{"items"}))

	assert.Contains(t, out.String(), "class_name")
	assert.Contains(t, out.String(), `from "classname"`)
}

func TestRunSchemaUnknownEntity(t *testing.T) {
	cmd, _ := captureCmd()

	err := runSchema(cmd, []string{"ledgers"})
	assert.Error(t, err)
}

func TestPrintReport(t *testing.T) {
	cmd, out := captureCmd()

	started := time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC)
	printReport(cmd, &domain.RunReport{
		ID:         "run-1",
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Entities: []domain.EntityReport{
			{Entity: domain.EntityInvoices, Fetched: 100, Normalised: 98, Mismatched: 2, Indexed: 98},
		},
	})

	assert.Contains(t, out.String(), "run-1")
	assert.Contains(t, out.String(), "1m30s")
	assert.Contains(t, out.String(), "invoices")
	assert.Contains(t, out.String(), "Total: 100 fetched, 98 indexed")
}

func TestPrintReportAborted(t *testing.T) {
	cmd, out := captureCmd()

	printReport(cmd, &domain.RunReport{
		ID:    "run-1",
		Error: "authentication failed: API token rejected",
	})

	assert.Contains(t, out.String(), "Run aborted")
	assert.Contains(t, out.String(), "authentication failed")
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "sk-a...wxyz", maskAPIKey("sk-abcdefghijklmnopqrstuvwxyz"))
}

func TestParseChoice(t *testing.T) {
	assert.Equal(t, 9200, parseChoice("", 65535, 9200))
	assert.Equal(t, 9300, parseChoice("9300", 65535, 9200))
	assert.Equal(t, 9200, parseChoice("not-a-number", 65535, 9200))
	assert.Equal(t, 9200, parseChoice("99999999", 65535, 9200))
}
