package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd-tools/databook/pkg/models/domain"
	"github.com/dd-tools/databook/pkg/services/mapper"
)

func monthlyEntries() []domain.JournalEntry {
	return []domain.JournalEntry{
		entry("2022-01-10", "706000", "Vente janvier", "0", "10000", 2022),
		entry("2022-06-15", "706000", "Vente juin", "0", "20000", 2022),
		entry("2022-06-20", "607000", "Achats juin", "8000", "0", 2022),
		entry("2022-12-05", "706000", "Vente décembre", "0", "30000", 2022),
	}
}

func TestBuildMonthlyRevenue(t *testing.T) {
	b := NewMonthlyBuilder(mapper.NewDefault())

	series := b.BuildMonthlyRevenue(monthlyEntries())

	assert.True(t, series.At(2022, 1).Equal(dec("10000")))
	assert.True(t, series.At(2022, 6).Equal(dec("20000")))
	assert.True(t, series.At(2022, 12).Equal(dec("30000")))
	assert.True(t, series.At(2022, 3).IsZero())
}

func TestMonthlyGroupsByPostingDateNotSourceYear(t *testing.T) {
	b := NewMonthlyBuilder(mapper.NewDefault())

	// Effective year 2022, posted January 2023: seasonality follows the
	// posting date.
	entries := []domain.JournalEntry{
		entry("2023-01-05", "706000", "FNP", "0", "5000", 2022),
	}
	series := b.BuildMonthlyRevenue(entries)

	assert.True(t, series.At(2023, 1).Equal(dec("5000")))
	assert.True(t, series.At(2022, 1).IsZero())
}

func TestBuildMonthlyEBITDA(t *testing.T) {
	b := NewMonthlyBuilder(mapper.NewDefault())

	series := b.BuildMonthlyEBITDA(monthlyEntries())

	assert.True(t, series.At(2022, 6).Equal(dec("12000")), "20000 revenue - 8000 costs")
	assert.True(t, series.At(2022, 1).Equal(dec("10000")))
}

func TestBuildQuarterlySummary(t *testing.T) {
	b := NewMonthlyBuilder(mapper.NewDefault())

	summary := b.BuildQuarterlySummary(monthlyEntries())

	require.Contains(t, summary, 2022)
	assert.True(t, summary[2022]["Q1"].Equal(dec("10000")))
	assert.True(t, summary[2022]["Q2"].Equal(dec("20000")))
	assert.True(t, summary[2022]["Q3"].IsZero())
	assert.True(t, summary[2022]["Q4"].Equal(dec("30000")))
}

func TestBuildCumulativeRevenue(t *testing.T) {
	b := NewMonthlyBuilder(mapper.NewDefault())

	cumulative := b.BuildCumulativeRevenue(monthlyEntries())

	assert.True(t, cumulative.At(2022, 1).Equal(dec("10000")))
	assert.True(t, cumulative.At(2022, 5).Equal(dec("10000")), "flat months carry the running total")
	assert.True(t, cumulative.At(2022, 12).Equal(dec("60000")))
}

func TestSeasonalityIndex(t *testing.T) {
	b := NewMonthlyBuilder(mapper.NewDefault())

	index := b.SeasonalityIndex(monthlyEntries())

	// Average month is 60000/12 = 5000. December at 30000 indexes to 600.
	assert.True(t, index[12].Equal(dec("600")), "december %s", index[12])
	assert.True(t, index[3].IsZero(), "empty month indexes to 0")
}

func TestSeasonalityIndexFlatWithoutData(t *testing.T) {
	b := NewMonthlyBuilder(mapper.NewDefault())

	index := b.SeasonalityIndex(nil)

	require.Len(t, index, 12)
	for month := 1; month <= 12; month++ {
		assert.True(t, index[month].Equal(dec("100")))
	}
}
