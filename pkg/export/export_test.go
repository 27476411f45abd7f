package export_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd-tools/databook/pkg/export"
	"github.com/dd-tools/databook/pkg/models/domain"
	"github.com/dd-tools/databook/pkg/services/engine"
)

func entry(t *testing.T, date, account, debit, credit string) domain.JournalEntry {
	t.Helper()
	d, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)
	return domain.JournalEntry{
		Date:       d,
		AccountNum: account,
		Label:      "ligne " + account,
		Debit:      decimal.RequireFromString(debit),
		Credit:     decimal.RequireFromString(credit),
	}
}

func runAnalysis(t *testing.T, opts engine.AnalyzerOptions, entries []domain.JournalEntry) *engine.Analysis {
	t.Helper()
	return engine.NewAnalyzer(opts).Run(context.Background(), entries)
}

func twoYearEntries(t *testing.T) []domain.JournalEntry {
	return []domain.JournalEntry{
		entry(t, "2022-03-01", "706000", "0", "100000"),
		entry(t, "2022-03-01", "411000", "100000", "0"),
		entry(t, "2023-03-01", "706000", "0", "120000"),
		entry(t, "2023-03-01", "411000", "120000", "0"),
	}
}

func TestBuildDashboardShape(t *testing.T) {
	analysis := runAnalysis(t, engine.AnalyzerOptions{}, twoYearEntries(t))

	d := export.BuildDashboard(analysis)

	assert.Equal(t, []int{2022, 2023}, d.Years)
	require.Len(t, d.ProfitLoss, 2)
	require.Len(t, d.BalanceSheet, 2)
	require.Len(t, d.KPIs, 2)
	require.Len(t, d.CashFlow, 2)
	require.Len(t, d.Variations, 1)

	assert.True(t, d.ProfitLoss[1].Revenue.Equal(decimal.NewFromInt(120000)))
	// 2023 balance cumulates both years of receivables.
	assert.True(t, d.BalanceSheet[1].Receivables.Equal(decimal.NewFromInt(220000)))

	// Executive summary rows in k€, one per year.
	require.Len(t, d.KPISynthesis, 2)
	assert.Equal(t, 2023, d.KPISynthesis[1].Year)
	assert.True(t, d.KPISynthesis[1].Revenue.Equal(decimal.NewFromInt(120)))

	// Two KPI years produce the trend table.
	require.NotEmpty(t, d.KPIEvolution)

	// Two P&L years are enough for the EBITDA bridge.
	require.NotEmpty(t, d.EBITDABridge)
	assert.Equal(t, "start", d.EBITDABridge[0].Type)
	assert.Equal(t, "end", d.EBITDABridge[len(d.EBITDABridge)-1].Type)

	// No adjustments configured, so no quality-of-earnings bridge.
	assert.Empty(t, d.QoEBridge)
}

func TestBuildDashboardSingleYearHasNoBridge(t *testing.T) {
	analysis := runAnalysis(t, engine.AnalyzerOptions{}, []domain.JournalEntry{
		entry(t, "2022-03-01", "706000", "0", "100000"),
		entry(t, "2022-03-01", "411000", "100000", "0"),
	})

	d := export.BuildDashboard(analysis)

	assert.Equal(t, []int{2022}, d.Years)
	assert.Empty(t, d.EBITDABridge)
	assert.Empty(t, d.KPIEvolution)
	assert.Empty(t, d.Variations)
}

func TestBuildDashboardQoEBridge(t *testing.T) {
	analysis := runAnalysis(t, engine.AnalyzerOptions{
		QoEAdjustments: map[int]map[string]decimal.Decimal{
			2023: {"Rémunération dirigeant": decimal.NewFromInt(30000)},
		},
	}, twoYearEntries(t))

	d := export.BuildDashboard(analysis)

	require.NotEmpty(t, d.QoEBridge)
	assert.Equal(t, "start", d.QoEBridge[0].Type)
	assert.Equal(t, "end", d.QoEBridge[len(d.QoEBridge)-1].Type)
}

func TestJSONWriterOutput(t *testing.T) {
	analysis := runAnalysis(t, engine.AnalyzerOptions{}, twoYearEntries(t))

	var buf bytes.Buffer
	require.NoError(t, export.NewJSONWriter(&buf).Handle(analysis))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "years")
	assert.Contains(t, decoded, "profit_loss")
	assert.Contains(t, decoded, "balance_sheet")
}

func TestReporterOutput(t *testing.T) {
	analysis := runAnalysis(t, engine.AnalyzerOptions{}, twoYearEntries(t))

	var buf bytes.Buffer
	require.NoError(t, export.NewReporter(&buf).Handle(analysis))

	out := buf.String()
	assert.Contains(t, out, "COMPTE DE RÉSULTAT")
	assert.Contains(t, out, "BILAN")
	assert.Contains(t, out, "INDICATEURS CLÉS")
	assert.Contains(t, out, "2022")
	assert.Contains(t, out, "2023")
}

func TestCSVWriterOutput(t *testing.T) {
	analysis := runAnalysis(t, engine.AnalyzerOptions{}, twoYearEntries(t))

	var buf bytes.Buffer
	require.NoError(t, export.NewCSVWriter(&buf).Handle(analysis))

	out := buf.String()
	assert.Contains(t, out, "Compte de résultat")
	assert.Contains(t, out, "Bilan")
	assert.Contains(t, out, "120000.00")
}

func TestFormatCapabilities(t *testing.T) {
	assert.True(t, export.FormatText.Supported())
	assert.True(t, export.FormatJSON.Supported())
	assert.True(t, export.FormatCSV.Supported())
	assert.False(t, export.FormatPDF.Supported())
	assert.Contains(t, export.Formats(), export.FormatPDF)
}

func TestCSVWriteEntries(t *testing.T) {
	analysis := runAnalysis(t, engine.AnalyzerOptions{}, twoYearEntries(t))

	var buf bytes.Buffer
	require.NoError(t, export.NewCSVWriter(&buf).WriteEntries(analysis))

	out := buf.String()
	assert.Contains(t, out, "date,account,label,debit,credit,source_year")
	assert.Contains(t, out, "706000")
}
