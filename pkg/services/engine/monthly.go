package engine

import (
	"github.com/shopspring/decimal"

	"github.com/dd-tools/databook/pkg/models/domain"
	"github.com/dd-tools/databook/pkg/services/mapper"
)

// MonthlyBuilder breaks revenue and costs down by calendar month. Monthly
// views group by the entry date's calendar year, not the effective year: the
// point is intra-year seasonality, which only the posting date carries.
type MonthlyBuilder struct {
	mapper *mapper.AccountMapper
}

// NewMonthlyBuilder creates a MonthlyBuilder.
func NewMonthlyBuilder(m *mapper.AccountMapper) *MonthlyBuilder {
	return &MonthlyBuilder{mapper: m}
}

// MonthlySeries maps year -> month (1-12) -> amount.
type MonthlySeries map[int]map[int]decimal.Decimal

func (s MonthlySeries) add(year, month int, amount decimal.Decimal) {
	months := s[year]
	if months == nil {
		months = make(map[int]decimal.Decimal)
		s[year] = months
	}
	months[month] = months[month].Add(amount)
}

// At returns the amount for a year and month, zero when absent.
func (s MonthlySeries) At(year, month int) decimal.Decimal {
	return s[year][month]
}

// monthlyCostCategories are the operating cost lines included in monthly
// EBITDA, matching the P&L TotalCharges definition.
var monthlyCostCategories = map[mapper.Category]bool{
	mapper.CategoryPurchases:       true,
	mapper.CategoryExternalCharges: true,
	mapper.CategoryTaxes:           true,
	mapper.CategoryPersonnel:       true,
	mapper.CategoryOtherCharges:    true,
}

// BuildMonthlyRevenue returns the revenue by year and month, credit-positive.
func (b *MonthlyBuilder) BuildMonthlyRevenue(entries []domain.JournalEntry) MonthlySeries {
	series := make(MonthlySeries)
	for _, entry := range entries {
		if b.mapper.PLCategory(entry.AccountNum) != mapper.CategoryRevenue {
			continue
		}
		series.add(entry.FiscalYear(), int(entry.Date.Month()), entry.Credit.Sub(entry.Debit))
	}
	return series
}

// BuildMonthlyCosts returns total operating costs by year and month,
// debit-positive.
func (b *MonthlyBuilder) BuildMonthlyCosts(entries []domain.JournalEntry) MonthlySeries {
	series := make(MonthlySeries)
	for _, entry := range entries {
		if !monthlyCostCategories[b.mapper.PLCategory(entry.AccountNum)] {
			continue
		}
		series.add(entry.FiscalYear(), int(entry.Date.Month()), entry.Debit.Sub(entry.Credit))
	}
	return series
}

// BuildMonthlyEBITDA returns revenue minus operating costs for every month
// of every year present in either series.
func (b *MonthlyBuilder) BuildMonthlyEBITDA(entries []domain.JournalEntry) MonthlySeries {
	revenue := b.BuildMonthlyRevenue(entries)
	costs := b.BuildMonthlyCosts(entries)

	series := make(MonthlySeries)
	for year := range revenue {
		for month := 1; month <= 12; month++ {
			series.add(year, month, revenue.At(year, month).Sub(costs.At(year, month)))
		}
	}
	for year := range costs {
		if _, done := series[year]; done {
			continue
		}
		for month := 1; month <= 12; month++ {
			series.add(year, month, revenue.At(year, month).Sub(costs.At(year, month)))
		}
	}
	return series
}

// QuarterlySummary maps year -> quarter ("Q1".."Q4") -> revenue.
type QuarterlySummary map[int]map[string]decimal.Decimal

// BuildQuarterlySummary rolls monthly revenue up into calendar quarters.
func (b *MonthlyBuilder) BuildQuarterlySummary(entries []domain.JournalEntry) QuarterlySummary {
	monthlyRev := b.BuildMonthlyRevenue(entries)

	quarters := []struct {
		name   string
		months [3]int
	}{
		{"Q1", [3]int{1, 2, 3}},
		{"Q2", [3]int{4, 5, 6}},
		{"Q3", [3]int{7, 8, 9}},
		{"Q4", [3]int{10, 11, 12}},
	}

	summary := make(QuarterlySummary, len(monthlyRev))
	for year := range monthlyRev {
		summary[year] = make(map[string]decimal.Decimal, 4)
		for _, q := range quarters {
			total := decimal.Zero
			for _, m := range q.months {
				total = total.Add(monthlyRev.At(year, m))
			}
			summary[year][q.name] = total
		}
	}
	return summary
}

// BuildCumulativeRevenue returns year-to-date revenue by month.
func (b *MonthlyBuilder) BuildCumulativeRevenue(entries []domain.JournalEntry) MonthlySeries {
	monthlyRev := b.BuildMonthlyRevenue(entries)

	cumulative := make(MonthlySeries, len(monthlyRev))
	for year := range monthlyRev {
		running := decimal.Zero
		for month := 1; month <= 12; month++ {
			running = running.Add(monthlyRev.At(year, month))
			cumulative.add(year, month, running)
		}
	}
	return cumulative
}

var hundred = decimal.NewFromInt(100)

// SeasonalityIndex returns a per-month revenue index averaged across years,
// where 100 means an average month. All-flat data (no revenue at all) yields
// 100 everywhere.
func (b *MonthlyBuilder) SeasonalityIndex(entries []domain.JournalEntry) map[int]decimal.Decimal {
	monthlyRev := b.BuildMonthlyRevenue(entries)

	flat := func() map[int]decimal.Decimal {
		index := make(map[int]decimal.Decimal, 12)
		for month := 1; month <= 12; month++ {
			index[month] = hundred
		}
		return index
	}

	if len(monthlyRev) == 0 {
		return flat()
	}

	monthTotals := make(map[int]decimal.Decimal, 12)
	total := decimal.Zero
	for _, months := range monthlyRev {
		for month, amount := range months {
			monthTotals[month] = monthTotals[month].Add(amount)
			total = total.Add(amount)
		}
	}

	if total.IsZero() {
		return flat()
	}

	yearCount := decimal.NewFromInt(int64(len(monthlyRev)))
	avgMonthly := total.Div(decimal.NewFromInt(12))

	index := make(map[int]decimal.Decimal, 12)
	for month := 1; month <= 12; month++ {
		monthAvg := monthTotals[month].Div(yearCount)
		if avgMonthly.IsPositive() {
			index[month] = monthAvg.Div(avgMonthly).Mul(hundred)
		} else {
			index[month] = hundred
		}
	}
	return index
}
