package agent

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd-tools/databook/pkg/models/domain"
	"github.com/dd-tools/databook/pkg/services/engine"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func entry(year int, account, label, debit, credit string) domain.JournalEntry {
	return domain.JournalEntry{
		Date:       time.Date(year, 3, 15, 0, 0, 0, 0, time.UTC),
		AccountNum: account,
		Label:      label,
		Debit:      dec(debit),
		Credit:     dec(credit),
		SourceYear: year,
	}
}

func testAnalysis(t *testing.T) *engine.Analysis {
	t.Helper()
	entries := []domain.JournalEntry{
		entry(2022, "706000", "Prestation", "0", "100000"),
		entry(2022, "607000", "Achats", "40000", "0"),
		entry(2023, "706000", "Prestation", "0", "120000"),
		entry(2023, "607000", "Achats", "45000", "0"),
		entry(2023, "411000", "Client", "144000", "0"),
	}
	return engine.NewAnalyzer(engine.AnalyzerOptions{}).Run(context.Background(), entries)
}

func TestGetPLDefaultsToLatestYear(t *testing.T) {
	a := NewDealAgent(testAnalysis(t))

	pl, err := a.GetPL(0)
	require.NoError(t, err)
	assert.True(t, pl["year"].Equal(dec("2023")))
	assert.True(t, pl["revenue"].Equal(dec("120000")))
	assert.True(t, pl["ebitda"].Equal(dec("75000")))
}

func TestGetPLUnknownYear(t *testing.T) {
	a := NewDealAgent(testAnalysis(t))

	_, err := a.GetPL(2019)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2019")
}

func TestGetBalanceExposesDerivedLines(t *testing.T) {
	a := NewDealAgent(testAnalysis(t))

	bs, err := a.GetBalance(2023)
	require.NoError(t, err)
	assert.True(t, bs["receivables"].Equal(dec("144000")))
	assert.True(t, bs["working_capital"].Equal(dec("144000")))
}

func TestGetEntriesFilters(t *testing.T) {
	a := NewDealAgent(testAnalysis(t))

	matched := a.GetEntries(EntryFilter{Year: 2022})
	assert.Len(t, matched, 2)

	matched = a.GetEntries(EntryFilter{AccountPrefix: "607"})
	assert.Len(t, matched, 2)

	matched = a.GetEntries(EntryFilter{LabelContains: "prestation"})
	assert.Len(t, matched, 2, "label match is case-insensitive")

	matched = a.GetEntries(EntryFilter{Limit: 1})
	assert.Len(t, matched, 1)
}

func TestExplainVariance(t *testing.T) {
	a := NewDealAgent(testAnalysis(t))

	explanation, err := a.ExplainVariance("revenue", 2022, 2023)
	require.NoError(t, err)
	assert.True(t, explanation.Delta.Equal(dec("20000")))
	assert.True(t, explanation.Pct.Equal(dec("20")))
	assert.NotEmpty(t, explanation.Drivers)
}

func TestExplainVarianceUnknownMetric(t *testing.T) {
	a := NewDealAgent(testAnalysis(t))

	_, err := a.ExplainVariance("cash_burn", 2022, 2023)
	var unknownErr *UnknownMetricError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "cash_burn", unknownErr.Metric)
}

func TestTraceMetric(t *testing.T) {
	a := NewDealAgent(testAnalysis(t))

	trace, err := a.TraceMetric("revenue", 2022)
	require.NoError(t, err)
	require.NotNil(t, trace)
	assert.True(t, trace.Value.Equal(dec("100000")))
	assert.Equal(t, 1, trace.EntryCount)

	trace, err = a.TraceMetric("receivables", 2023)
	require.NoError(t, err)
	require.NotNil(t, trace)
	assert.True(t, trace.Value.Equal(dec("144000")))

	trace, err = a.TraceMetric("no_such_field", 0)
	require.NoError(t, err)
	assert.Nil(t, trace)
}

func TestFindAnomalies(t *testing.T) {
	entries := []domain.JournalEntry{
		entry(2022, "607000", "Achat normal", "100", "0"),
		entry(2022, "607001", "Achat normal", "101", "0"),
		entry(2022, "607002", "Achat normal", "99", "0"),
		entry(2022, "607003", "Achat normal", "100", "0"),
		entry(2022, "607004", "Achat énorme", "100000", "0"),
	}
	analysis := engine.NewAnalyzer(engine.AnalyzerOptions{}).Run(context.Background(), entries)
	a := NewDealAgent(analysis)

	anomalies := a.FindAnomalies(1.5)

	require.Len(t, anomalies, 1)
	assert.Equal(t, "607004", anomalies[0].Entry.AccountNum)
	assert.Greater(t, anomalies[0].ZScore, 1.5)
}

func TestGetSummary(t *testing.T) {
	a := NewDealAgent(testAnalysis(t))

	summary := a.GetSummary()

	assert.Equal(t, []int{2022, 2023}, summary.Years)
	assert.Equal(t, 5, summary.EntryCount)
	require.NotNil(t, summary.LatestKPIs)
	assert.Equal(t, 2023, summary.LatestKPIs.Year)
	require.Len(t, summary.Variations, 1)
	assert.NotEmpty(t, summary.Warnings, "the fixture ledger is deliberately unbalanced")
}
