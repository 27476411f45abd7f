package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd-tools/databook/pkg/models/domain"
	"github.com/dd-tools/databook/pkg/services/mapper"
)

// balanceEntries posts receivables and a supplier debt across two years.
func balanceEntries() []domain.JournalEntry {
	return []domain.JournalEntry{
		entry("2022-03-15", "411000", "Client Alpha", "50000", "0", 2022),
		entry("2022-04-01", "401000", "Fournisseur Beta", "0", "10000", 2022),
		entry("2023-02-10", "411000", "Client Alpha", "20000", "0", 2023),
		entry("2023-05-20", "512000", "Encaissement", "30000", "0", 2023),
	}
}

func TestBalanceBuildCumulates(t *testing.T) {
	b := NewBalanceBuilder(mapper.NewDefault())

	bs2022 := b.Build(balanceEntries(), 2022)
	bs2023 := b.Build(balanceEntries(), 2023)

	// 2022 sees only its own movements.
	assert.True(t, bs2022.Receivables.Equal(dec("50000")))
	assert.True(t, bs2022.Cash.IsZero())

	// 2023 carries 2022 forward: positions cumulate, they do not reset.
	assert.True(t, bs2023.Receivables.Equal(dec("70000")))
	assert.True(t, bs2023.Payables.Equal(dec("10000")))
	assert.True(t, bs2023.Cash.Equal(dec("30000")))
}

func TestBalanceSignConventions(t *testing.T) {
	b := NewBalanceBuilder(mapper.NewDefault())

	entries := []domain.JournalEntry{
		// Credit on a liability account increases the reported value.
		entry("2022-01-10", "164000", "Emprunt bancaire", "0", "80000", 2022),
		// Debit on an asset account increases the reported value.
		entry("2022-01-10", "512000", "Déblocage emprunt", "80000", "0", 2022),
	}

	bs := b.Build(entries, 2022)

	assert.True(t, bs.FinancialDebt.Equal(dec("80000")))
	assert.True(t, bs.Cash.Equal(dec("80000")))
	assert.True(t, bs.NetDebt().IsZero())
}

func TestBalanceDerivedFields(t *testing.T) {
	b := NewBalanceBuilder(mapper.NewDefault())

	bs := b.Build(balanceEntries(), 2023)

	assert.True(t, bs.WorkingCapital().Equal(bs.Inventory.Add(bs.Receivables).Sub(bs.Payables)))
	assert.True(t, bs.TotalAssets().Equal(
		bs.FixedAssets.Add(bs.Inventory).Add(bs.Receivables).Add(bs.OtherReceivables).Add(bs.Cash)))
	assert.True(t, bs.NetDebt().Equal(bs.FinancialDebt.Sub(bs.Cash)))
}

func TestBalanceTraceConservation(t *testing.T) {
	b := NewBalanceBuilder(mapper.NewDefault())

	bs := b.Build(balanceEntries(), 2023)

	tv := bs.Trace("receivables")
	require.NotNil(t, tv)
	assert.Equal(t, 2, tv.EntryCount(), "both years' movements contribute")

	sum := dec("0")
	for _, e := range tv.Entries {
		sum = sum.Add(e.Amount)
	}
	assert.True(t, sum.Equal(bs.Receivables), "trace entries must sum to the line value")
}

func TestComputeBFREvolution(t *testing.T) {
	b := NewBalanceBuilder(mapper.NewDefault())

	balances := b.BuildMultiYear(balanceEntries())
	lines := b.ComputeBFREvolution(balances)

	require.Len(t, lines, 2)
	assert.Equal(t, 2022, lines[0].Year)
	assert.True(t, lines[0].BFR.Equal(dec("40000")))
	assert.True(t, lines[1].BFR.Equal(dec("60000")))
}
