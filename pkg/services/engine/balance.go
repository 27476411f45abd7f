package engine

import (
	"github.com/shopspring/decimal"

	"github.com/dd-tools/databook/pkg/models/domain"
	"github.com/dd-tools/databook/pkg/services/mapper"
)

// BalanceBuilder cumulates classified entries into fiscal-year-end balance
// sheets with provenance tracking.
type BalanceBuilder struct {
	mapper *mapper.AccountMapper
}

// NewBalanceBuilder creates a BalanceBuilder.
func NewBalanceBuilder(m *mapper.AccountMapper) *BalanceBuilder {
	return &BalanceBuilder{mapper: m}
}

// Build cumulates every entry with effective year <= year into a
// BalanceSheet. Cumulation, not period filtering: a balance for year Y
// includes all movements ever posted through Y. Amounts are signed by the
// mapper's debit-positive convention.
func (b *BalanceBuilder) Build(entries []domain.JournalEntry, year int) *domain.BalanceSheet {
	totals := make(map[mapper.Category]decimal.Decimal)
	traces := make(map[mapper.Category]*domain.TracedValue)

	for _, entry := range entries {
		if entry.EffectiveYear() > year {
			continue
		}
		category := b.mapper.BalanceCategory(entry.AccountNum)
		if category == "" {
			continue
		}

		var amount decimal.Decimal
		if b.mapper.IsDebitPositive(entry.AccountNum) {
			amount = entry.Debit.Sub(entry.Credit)
		} else {
			amount = entry.Credit.Sub(entry.Debit)
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

	bs := &domain.BalanceSheet{
		Year:             year,
		FixedAssets:      totals[mapper.CategoryFixedAssets],
		Inventory:        totals[mapper.CategoryInventory],
		Receivables:      totals[mapper.CategoryReceivables],
		OtherReceivables: totals[mapper.CategoryOtherReceivables],
		Cash:             totals[mapper.CategoryCash],
		Equity:           totals[mapper.CategoryEquity],
		Provisions:       totals[mapper.CategoryProvisions],
		FinancialDebt:    totals[mapper.CategoryFinancialDebt],
		Payables:         totals[mapper.CategoryPayables],
		OtherPayables:    totals[mapper.CategoryOtherPayables],
	}

	for category, tv := range traces {
		bs.SetTrace(string(category), tv)
	}

	return bs
}

// BuildMultiYear builds one balance sheet per distinct effective year,
// sorted ascending.
func (b *BalanceBuilder) BuildMultiYear(entries []domain.JournalEntry) []*domain.BalanceSheet {
	years := effectiveYears(entries)
	statements := make([]*domain.BalanceSheet, 0, len(years))
	for _, year := range years {
		statements = append(statements, b.Build(entries, year))
	}
	return statements
}

// ComputeBFREvolution emits per-year working-capital lines directly from
// already-built balances, no re-aggregation.
func (b *BalanceBuilder) ComputeBFREvolution(balances []*domain.BalanceSheet) []domain.BFRLine {
	evolution := make([]domain.BFRLine, 0, len(balances))
	for _, bs := range balances {
		evolution = append(evolution, domain.BFRLine{
			Year:         bs.Year,
			Stocks:       bs.Inventory,
			Clients:      bs.Receivables,
			Fournisseurs: bs.Payables,
			BFR:          bs.WorkingCapital(),
		})
	}
	return evolution
}
