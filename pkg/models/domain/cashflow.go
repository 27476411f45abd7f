package domain

import "github.com/shopspring/decimal"

// CashFlow is one fiscal year's indirect-method cash-flow statement.
// When no prior-year balance exists the working-capital, investing and
// financing sections stay at zero and OperatingCF degenerates to EBITDA.
type CashFlow struct {
	Year int

	// Operating
	EBITDA         decimal.Decimal
	VarReceivables decimal.Decimal
	VarInventory   decimal.Decimal
	VarPayables    decimal.Decimal
	VarOtherWC     decimal.Decimal
	VarBFR         decimal.Decimal
	OperatingCF    decimal.Decimal

	// Investing
	Capex       decimal.Decimal
	InvestingCF decimal.Decimal

	// Financing
	VarDebt     decimal.Decimal
	VarEquity   decimal.Decimal
	FinancingCF decimal.Decimal

	// Reconciliation
	NetCashChange decimal.Decimal
	CashStart     decimal.Decimal
	CashEnd       decimal.Decimal
}

// Variation is a year-over-year delta on the headline P&L figures.
// Percentage change against a zero base is zero, never infinite.
type Variation struct {
	FromYear int
	ToYear   int

	RevenueDelta   decimal.Decimal
	RevenuePct     decimal.Decimal
	EBITDADelta    decimal.Decimal
	EBITDAPct      decimal.Decimal
	NetIncomeDelta decimal.Decimal
	NetIncomePct   decimal.Decimal
}

// StepType positions a bridge step in a waterfall chart.
type StepType string

const (
	StepStart    StepType = "start"
	StepPositive StepType = "positive"
	StepNegative StepType = "negative"
	StepEnd      StepType = "end"
)

// BridgeStep is one bar of a waterfall chart. Order matters: start, then
// components, then end.
type BridgeStep struct {
	Label      string
	Value      decimal.Decimal
	Cumulative decimal.Decimal
	Type       StepType
}

// BFRLine is one year of working-capital evolution.
type BFRLine struct {
	Year         int
	Stocks       decimal.Decimal
	Clients      decimal.Decimal
	Fournisseurs decimal.Decimal
	BFR          decimal.Decimal
}

// CostVariance is one cost line of a year-over-year breakdown.
// Pct is zero when the prior value is zero.
type CostVariance struct {
	Label     string
	PrevYear  int
	PrevValue decimal.Decimal
	CurrYear  int
	CurrValue decimal.Decimal
	VarAbs    decimal.Decimal
	VarPct    decimal.Decimal
}

// Trend direction of a KPI over the covered years.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// KPITrendLine is one metric row of the KPI evolution table.
type KPITrendLine struct {
	Label  string
	Values []decimal.Decimal
	Trend  Trend
}
