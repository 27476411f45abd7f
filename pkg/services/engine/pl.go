package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dd-tools/databook/pkg/models/domain"
	"github.com/dd-tools/databook/pkg/services/mapper"
)

// PLBuilder aggregates classified entries into yearly income statements.
type PLBuilder struct {
	mapper *mapper.AccountMapper
}

// NewPLBuilder creates a PLBuilder.
func NewPLBuilder(m *mapper.AccountMapper) *PLBuilder {
	return &PLBuilder{mapper: m}
}

// Build aggregates the entries whose effective year equals year into a
// ProfitLoss. Entries without a P&L category are skipped. Class 7 accounts
// accumulate credit-positive, everything else debit-positive.
func (b *PLBuilder) Build(entries []domain.JournalEntry, year int) *domain.ProfitLoss {
	totals := make(map[mapper.Category]decimal.Decimal)
	traces := make(map[mapper.Category]*domain.TracedValue)

	for _, entry := range entries {
		if entry.EffectiveYear() != year {
			continue
		}
		category := b.mapper.PLCategory(entry.AccountNum)
		if category == "" {
			continue
		}

		var amount decimal.Decimal
		if entry.AccountClass() == "7" {
			amount = entry.Credit.Sub(entry.Debit)
		} else {
			amount = entry.Debit.Sub(entry.Credit)
		}

		totals[category] = totals[category].Add(amount)

		tv := traces[category]
		if tv == nil {
			tv = &domain.TracedValue{}
			traces[category] = tv
		}
		tv.Add(amount, domain.TraceEntry{
			Date:    entry.Date,
			Account: entry.AccountNum,
			Label:   entry.Label,
			Amount:  amount,
		})
	}

	pl := &domain.ProfitLoss{
		Year:               year,
		Revenue:            totals[mapper.CategoryRevenue],
		OtherRevenue:       totals[mapper.CategoryOtherRevenue],
		Purchases:          totals[mapper.CategoryPurchases],
		ExternalCharges:    totals[mapper.CategoryExternalCharges],
		Taxes:              totals[mapper.CategoryTaxes],
		Personnel:          totals[mapper.CategoryPersonnel],
		OtherCharges:       totals[mapper.CategoryOtherCharges],
		Depreciation:       totals[mapper.CategoryDepreciation],
		FinancialIncome:    totals[mapper.CategoryFinancialIncome],
		FinancialExpense:   totals[mapper.CategoryFinancialExpense],
		ExceptionalIncome:  totals[mapper.CategoryExceptionalIncome],
		ExceptionalExpense: totals[mapper.CategoryExceptionalExpense],
		IncomeTax:          totals[mapper.CategoryIncomeTax],
	}

	for category, tv := range traces {
		pl.SetTrace(string(category), tv)
	}

	return pl
}

// BuildMultiYear builds one statement per distinct effective year present in
// the entries, sorted ascending.
func (b *PLBuilder) BuildMultiYear(entries []domain.JournalEntry) []*domain.ProfitLoss {
	statements := make([]*domain.ProfitLoss, 0, len(effectiveYears(entries)))
	for _, year := range effectiveYears(entries) {
		statements = append(statements, b.Build(entries, year))
	}
	return statements
}

// ComputeVariations returns year-over-year deltas for each adjacent pair of
// statements. Fewer than two statements yield an empty list.
func (b *PLBuilder) ComputeVariations(plList []*domain.ProfitLoss) []domain.Variation {
	if len(plList) < 2 {
		return nil
	}

	variations := make([]domain.Variation, 0, len(plList)-1)
	for i := 1; i < len(plList); i++ {
		prev, curr := plList[i-1], plList[i]
		variations = append(variations, domain.Variation{
			FromYear:       prev.Year,
			ToYear:         curr.Year,
			RevenueDelta:   curr.Revenue.Sub(prev.Revenue),
			RevenuePct:     pctChange(prev.Revenue, curr.Revenue),
			EBITDADelta:    curr.EBITDA().Sub(prev.EBITDA()),
			EBITDAPct:      pctChange(prev.EBITDA(), curr.EBITDA()),
			NetIncomeDelta: curr.NetIncome().Sub(prev.NetIncome()),
			NetIncomePct:   pctChange(prev.NetIncome(), curr.NetIncome()),
		})
	}
	return variations
}

// pctChange is the percentage change from old to new, zero when old is zero.
func pctChange(old, new decimal.Decimal) decimal.Decimal {
	if old.IsZero() {
		return decimal.Zero
	}
	return new.Sub(old).Div(old.Abs()).Mul(decimal.NewFromInt(100))
}

// effectiveYears returns the distinct effective years present in the
// entries, ascending.
func effectiveYears(entries []domain.JournalEntry) []int {
	seen := make(map[int]bool)
	var years []int
	for _, entry := range entries {
		year := entry.EffectiveYear()
		if !seen[year] {
			seen[year] = true
			years = append(years, year)
		}
	}
	sort.Ints(years)
	return years
}
