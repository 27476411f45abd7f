package engine

import (
	"github.com/shopspring/decimal"

	"github.com/dd-tools/databook/pkg/models/domain"
)

// Named metric accessors. Variance drivers and agent tools look statement
// fields up by name; the tables below enumerate every known name so an
// unknown metric is a typed miss, not a reflective lookup.

// PLAccessor reads one metric from a ProfitLoss.
type PLAccessor func(*domain.ProfitLoss) decimal.Decimal

// KPIAccessor reads one metric from a KPIs bundle.
type KPIAccessor func(*domain.KPIs) decimal.Decimal

// BalanceAccessor reads one metric from a BalanceSheet.
type BalanceAccessor func(*domain.BalanceSheet) decimal.Decimal

var plMetrics = map[string]PLAccessor{
	"revenue":             func(p *domain.ProfitLoss) decimal.Decimal { return p.Revenue },
	"other_revenue":       func(p *domain.ProfitLoss) decimal.Decimal { return p.OtherRevenue },
	"production":          func(p *domain.ProfitLoss) decimal.Decimal { return p.Production() },
	"purchases":           func(p *domain.ProfitLoss) decimal.Decimal { return p.Purchases },
	"external_charges":    func(p *domain.ProfitLoss) decimal.Decimal { return p.ExternalCharges },
	"taxes":               func(p *domain.ProfitLoss) decimal.Decimal { return p.Taxes },
	"personnel":           func(p *domain.ProfitLoss) decimal.Decimal { return p.Personnel },
	"other_charges":       func(p *domain.ProfitLoss) decimal.Decimal { return p.OtherCharges },
	"total_charges":       func(p *domain.ProfitLoss) decimal.Decimal { return p.TotalCharges() },
	"depreciation":        func(p *domain.ProfitLoss) decimal.Decimal { return p.Depreciation },
	"ebitda":              func(p *domain.ProfitLoss) decimal.Decimal { return p.EBITDA() },
	"ebitda_margin":       func(p *domain.ProfitLoss) decimal.Decimal { return p.EBITDAMargin() },
	"ebit":                func(p *domain.ProfitLoss) decimal.Decimal { return p.EBIT() },
	"financial_income":    func(p *domain.ProfitLoss) decimal.Decimal { return p.FinancialIncome },
	"financial_expense":   func(p *domain.ProfitLoss) decimal.Decimal { return p.FinancialExpense },
	"financial_result":    func(p *domain.ProfitLoss) decimal.Decimal { return p.FinancialResult() },
	"exceptional_income":  func(p *domain.ProfitLoss) decimal.Decimal { return p.ExceptionalIncome },
	"exceptional_expense": func(p *domain.ProfitLoss) decimal.Decimal { return p.ExceptionalExpense },
	"exceptional_result":  func(p *domain.ProfitLoss) decimal.Decimal { return p.ExceptionalResult() },
	"income_tax":          func(p *domain.ProfitLoss) decimal.Decimal { return p.IncomeTax },
	"net_income":          func(p *domain.ProfitLoss) decimal.Decimal { return p.NetIncome() },
}

var kpiMetrics = map[string]KPIAccessor{
	"revenue":         func(k *domain.KPIs) decimal.Decimal { return k.Revenue },
	"ebitda":          func(k *domain.KPIs) decimal.Decimal { return k.EBITDA },
	"ebitda_margin":   func(k *domain.KPIs) decimal.Decimal { return k.EBITDAMargin },
	"net_income":      func(k *domain.KPIs) decimal.Decimal { return k.NetIncome },
	"adjusted_ebitda": func(k *domain.KPIs) decimal.Decimal { return k.AdjustedEBITDA() },
	"dso":             func(k *domain.KPIs) decimal.Decimal { return k.DSO },
	"dpo":             func(k *domain.KPIs) decimal.Decimal { return k.DPO },
	"dio":             func(k *domain.KPIs) decimal.Decimal { return k.DIO },
	"working_capital": func(k *domain.KPIs) decimal.Decimal { return k.WorkingCapital },
	"net_debt":        func(k *domain.KPIs) decimal.Decimal { return k.NetDebt },
}

var balanceMetrics = map[string]BalanceAccessor{
	"fixed_assets":      func(b *domain.BalanceSheet) decimal.Decimal { return b.FixedAssets },
	"inventory":         func(b *domain.BalanceSheet) decimal.Decimal { return b.Inventory },
	"receivables":       func(b *domain.BalanceSheet) decimal.Decimal { return b.Receivables },
	"other_receivables": func(b *domain.BalanceSheet) decimal.Decimal { return b.OtherReceivables },
	"cash":              func(b *domain.BalanceSheet) decimal.Decimal { return b.Cash },
	"equity":            func(b *domain.BalanceSheet) decimal.Decimal { return b.Equity },
	"provisions":        func(b *domain.BalanceSheet) decimal.Decimal { return b.Provisions },
	"financial_debt":    func(b *domain.BalanceSheet) decimal.Decimal { return b.FinancialDebt },
	"payables":          func(b *domain.BalanceSheet) decimal.Decimal { return b.Payables },
	"other_payables":    func(b *domain.BalanceSheet) decimal.Decimal { return b.OtherPayables },
	"total_assets":      func(b *domain.BalanceSheet) decimal.Decimal { return b.TotalAssets() },
	"total_liabilities": func(b *domain.BalanceSheet) decimal.Decimal { return b.TotalLiabilities() },
	"working_capital":   func(b *domain.BalanceSheet) decimal.Decimal { return b.WorkingCapital() },
	"net_debt":          func(b *domain.BalanceSheet) decimal.Decimal { return b.NetDebt() },
}

// PLMetric resolves a P&L metric accessor by name.
func PLMetric(name string) (PLAccessor, bool) {
	accessor, ok := plMetrics[name]
	return accessor, ok
}

// KPIMetric resolves a KPI metric accessor by name.
func KPIMetric(name string) (KPIAccessor, bool) {
	accessor, ok := kpiMetrics[name]
	return accessor, ok
}

// BalanceMetric resolves a balance-sheet metric accessor by name.
func BalanceMetric(name string) (BalanceAccessor, bool) {
	accessor, ok := balanceMetrics[name]
	return accessor, ok
}

// BalanceMetricNames lists every known balance-sheet metric name.
func BalanceMetricNames() []string {
	names := make([]string, 0, len(balanceMetrics))
	for name := range balanceMetrics {
		names = append(names, name)
	}
	return names
}

// PLMetricNames lists every known P&L metric name.
func PLMetricNames() []string {
	names := make([]string, 0, len(plMetrics))
	for name := range plMetrics {
		names = append(names, name)
	}
	return names
}
