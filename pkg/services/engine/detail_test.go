package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd-tools/databook/pkg/models/domain"
	"github.com/dd-tools/databook/pkg/services/mapper"
)

func detailEntries() []domain.JournalEntry {
	return []domain.JournalEntry{
		entry("2022-02-01", "706000", "Prestations", "0", "100000", 2022),
		entry("2022-03-01", "607000", "Achats", "40000", "0", 2022),
		entry("2022-03-15", "607100", "Achats annexes", "5000", "0", 2022),
		entry("2022-04-01", "890000", "Compte exotique", "1234", "0", 2022),
	}
}

func TestBuildAccountSummaryRetainsUnmapped(t *testing.T) {
	b := NewDetailBuilder(mapper.NewDefault())

	summary := b.BuildAccountSummary(detailEntries())

	require.Contains(t, summary, 2022)
	lines := summary[2022]
	require.Len(t, lines, 4)

	var exotic *AccountSummaryLine
	for i := range lines {
		if lines[i].Account == "890000" {
			exotic = &lines[i]
		}
	}
	require.NotNil(t, exotic, "unmapped accounts stay visible in drill-down")
	assert.Equal(t, UnclassifiedLabel, exotic.Category)
	assert.True(t, exotic.Balance.Equal(dec("1234")))
}

func TestBuildTopAccountsRanksByAbsoluteAmount(t *testing.T) {
	b := NewDetailBuilder(mapper.NewDefault())

	top := b.BuildTopAccounts(detailEntries(), 2022, AccountTypeExpense, 10)

	require.Len(t, top, 2)
	assert.Equal(t, "607000", top[0].Account)
	assert.True(t, top[0].Amount.Equal(dec("40000")))
	assert.Equal(t, "607100", top[1].Account)
}

func TestBuildTopAccountsTruncates(t *testing.T) {
	b := NewDetailBuilder(mapper.NewDefault())

	top := b.BuildTopAccounts(detailEntries(), 2022, AccountTypeExpense, 1)
	require.Len(t, top, 1)
	assert.Equal(t, "607000", top[0].Account)
}

func TestBuildCategoryBreakdownSigns(t *testing.T) {
	b := NewDetailBuilder(mapper.NewDefault())

	breakdown := b.BuildCategoryBreakdown(detailEntries(), 2022)

	rev, ok := breakdown["revenue"]
	require.True(t, ok)
	assert.True(t, rev.Total.Equal(dec("100000")), "class 7 credit-positive")

	purchases := breakdown["purchases"]
	assert.True(t, purchases.Total.Equal(dec("45000")))
	assert.Equal(t, 2, purchases.Count)
	assert.Equal(t, []string{"607000", "607100"}, purchases.Accounts)

	_, ok = breakdown[UnclassifiedLabel]
	assert.False(t, ok, "unmapped accounts never reach category totals")
}

func TestBuildPLDetailSubtotals(t *testing.T) {
	b := NewDetailBuilder(mapper.NewDefault())

	sections := b.BuildPLDetail(detailEntries(), 2022)

	byCategory := make(map[string]CategoryDetail, len(sections))
	for _, s := range sections {
		byCategory[s.Category] = s
	}

	rev := byCategory["revenue"]
	assert.True(t, rev.Total.Equal(dec("100000")))
	require.Len(t, rev.Accounts, 1)
	assert.Equal(t, "706000", rev.Accounts[0].Account)

	purchases := byCategory["purchases"]
	assert.True(t, purchases.Total.Equal(dec("45000")))
	require.Len(t, purchases.Accounts, 2)
}

func TestBuildBalanceDetailCumulative(t *testing.T) {
	b := NewDetailBuilder(mapper.NewDefault())

	entries := []domain.JournalEntry{
		entry("2022-03-15", "411000", "Client", "50000", "0", 2022),
		entry("2023-02-10", "411000", "Client", "20000", "0", 2023),
		entry("2023-02-15", "401000", "Fournisseur", "0", "7000", 2023),
	}

	sections := b.BuildBalanceDetail(entries, 2023)

	byLabel := make(map[string]CategoryDetail, len(sections))
	for _, s := range sections {
		byLabel[s.CategoryLabel] = s
	}

	assert.True(t, byLabel["ACTIF"].IsSection)
	assert.True(t, byLabel["Créances clients"].Total.Equal(dec("70000")), "both years cumulate")
	assert.True(t, byLabel["Dettes fournisseurs"].Total.Equal(dec("7000")), "liability credit-positive")
}

func TestBuildJournalExtract(t *testing.T) {
	b := NewDetailBuilder(mapper.NewDefault())

	lines := b.BuildJournalExtract(detailEntries(), 2022, "607", 10)

	require.Len(t, lines, 2)
	assert.Equal(t, "01/03/2022", lines[0].Date, "sorted ascending, French date format")
	assert.Equal(t, "607000", lines[0].Account)

	limited := b.BuildJournalExtract(detailEntries(), 2022, "", 2)
	assert.Len(t, limited, 2)
}
