package api

import (
	"github.com/shopspring/decimal"

	"github.com/dd-tools/databook/pkg/models/domain"
)

// ProfitLoss is the wire form of one fiscal year's P&L. Derived lines are
// materialized at serialization time; the domain model never stores them.
type ProfitLoss struct {
	Year                int             `json:"year"`
	Revenue             decimal.Decimal `json:"revenue"`
	OtherRevenue        decimal.Decimal `json:"other_revenue"`
	Purchases           decimal.Decimal `json:"purchases"`
	ExternalCharges     decimal.Decimal `json:"external_charges"`
	Taxes               decimal.Decimal `json:"taxes"`
	Personnel           decimal.Decimal `json:"personnel"`
	Depreciation        decimal.Decimal `json:"depreciation"`
	OtherCharges        decimal.Decimal `json:"other_charges"`
	FinancialIncome     decimal.Decimal `json:"financial_income"`
	FinancialExpense    decimal.Decimal `json:"financial_expense"`
	ExceptionalIncome   decimal.Decimal `json:"exceptional_income"`
	ExceptionalExpense  decimal.Decimal `json:"exceptional_expense"`
	IncomeTax           decimal.Decimal `json:"income_tax"`
	Production          decimal.Decimal `json:"production"`
	TotalCharges        decimal.Decimal `json:"total_charges"`
	EBITDA              decimal.Decimal `json:"ebitda"`
	EBIT                decimal.Decimal `json:"ebit"`
	FinancialResult     decimal.Decimal `json:"financial_result"`
	ExceptionalResult   decimal.Decimal `json:"exceptional_result"`
	NetIncome           decimal.Decimal `json:"net_income"`
	EBITDAMarginPercent decimal.Decimal `json:"ebitda_margin"`
}

func FromProfitLoss(pl *domain.ProfitLoss) ProfitLoss {
	return ProfitLoss{
		Year:                pl.Year,
		Revenue:             pl.Revenue,
		OtherRevenue:        pl.OtherRevenue,
		Purchases:           pl.Purchases,
		ExternalCharges:     pl.ExternalCharges,
		Taxes:               pl.Taxes,
		Personnel:           pl.Personnel,
		Depreciation:        pl.Depreciation,
		OtherCharges:        pl.OtherCharges,
		FinancialIncome:     pl.FinancialIncome,
		FinancialExpense:    pl.FinancialExpense,
		ExceptionalIncome:   pl.ExceptionalIncome,
		ExceptionalExpense:  pl.ExceptionalExpense,
		IncomeTax:           pl.IncomeTax,
		Production:          pl.Production(),
		TotalCharges:        pl.TotalCharges(),
		EBITDA:              pl.EBITDA(),
		EBIT:                pl.EBIT(),
		FinancialResult:     pl.FinancialResult(),
		ExceptionalResult:   pl.ExceptionalResult(),
		NetIncome:           pl.NetIncome(),
		EBITDAMarginPercent: pl.EBITDAMargin(),
	}
}

// BalanceSheet is the wire form of one cumulative year-end position.
type BalanceSheet struct {
	Year             int             `json:"year"`
	FixedAssets      decimal.Decimal `json:"fixed_assets"`
	Inventory        decimal.Decimal `json:"inventory"`
	Receivables      decimal.Decimal `json:"receivables"`
	OtherReceivables decimal.Decimal `json:"other_receivables"`
	Cash             decimal.Decimal `json:"cash"`
	Equity           decimal.Decimal `json:"equity"`
	Provisions       decimal.Decimal `json:"provisions"`
	FinancialDebt    decimal.Decimal `json:"financial_debt"`
	Payables         decimal.Decimal `json:"payables"`
	OtherPayables    decimal.Decimal `json:"other_payables"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	WorkingCapital   decimal.Decimal `json:"working_capital"`
	NetDebt          decimal.Decimal `json:"net_debt"`
}

func FromBalanceSheet(bs *domain.BalanceSheet) BalanceSheet {
	return BalanceSheet{
		Year:             bs.Year,
		FixedAssets:      bs.FixedAssets,
		Inventory:        bs.Inventory,
		Receivables:      bs.Receivables,
		OtherReceivables: bs.OtherReceivables,
		Cash:             bs.Cash,
		Equity:           bs.Equity,
		Provisions:       bs.Provisions,
		FinancialDebt:    bs.FinancialDebt,
		Payables:         bs.Payables,
		OtherPayables:    bs.OtherPayables,
		TotalAssets:      bs.TotalAssets(),
		TotalLiabilities: bs.TotalLiabilities(),
		WorkingCapital:   bs.WorkingCapital(),
		NetDebt:          bs.NetDebt(),
	}
}

// KPIs mirrors domain.KPIs with stable names and the adjusted figure
// materialized.
type KPIs struct {
	Year           int                        `json:"year"`
	Revenue        decimal.Decimal            `json:"revenue"`
	EBITDA         decimal.Decimal            `json:"ebitda"`
	EBITDAMargin   decimal.Decimal            `json:"ebitda_margin"`
	NetIncome      decimal.Decimal            `json:"net_income"`
	DSO            decimal.Decimal            `json:"dso"`
	DPO            decimal.Decimal            `json:"dpo"`
	DIO            decimal.Decimal            `json:"dio"`
	WorkingCapital decimal.Decimal            `json:"working_capital"`
	NetDebt        decimal.Decimal            `json:"net_debt"`
	QoEAdjustments map[string]decimal.Decimal `json:"qoe_adjustments,omitempty"`
	AdjustedEBITDA decimal.Decimal            `json:"adjusted_ebitda"`
}

func FromKPIs(k *domain.KPIs) KPIs {
	return KPIs{
		Year:           k.Year,
		Revenue:        k.Revenue,
		EBITDA:         k.EBITDA,
		EBITDAMargin:   k.EBITDAMargin,
		NetIncome:      k.NetIncome,
		DSO:            k.DSO,
		DPO:            k.DPO,
		DIO:            k.DIO,
		WorkingCapital: k.WorkingCapital,
		NetDebt:        k.NetDebt,
		QoEAdjustments: k.QoEAdjustments,
		AdjustedEBITDA: k.AdjustedEBITDA(),
	}
}

// CashFlow is the wire form of one indirect-method cash flow year.
type CashFlow struct {
	Year           int             `json:"year"`
	EBITDA         decimal.Decimal `json:"ebitda"`
	VarReceivables decimal.Decimal `json:"var_receivables"`
	VarInventory   decimal.Decimal `json:"var_inventory"`
	VarPayables    decimal.Decimal `json:"var_payables"`
	VarOtherWC     decimal.Decimal `json:"var_other_wc"`
	VarBFR         decimal.Decimal `json:"var_bfr"`
	OperatingCF    decimal.Decimal `json:"operating_cf"`
	Capex          decimal.Decimal `json:"capex"`
	InvestingCF    decimal.Decimal `json:"investing_cf"`
	VarDebt        decimal.Decimal `json:"var_debt"`
	VarEquity      decimal.Decimal `json:"var_equity"`
	FinancingCF    decimal.Decimal `json:"financing_cf"`
	NetCashChange  decimal.Decimal `json:"net_cash_change"`
	CashStart      decimal.Decimal `json:"cash_start"`
	CashEnd        decimal.Decimal `json:"cash_end"`
}

func FromCashFlow(cf *domain.CashFlow) CashFlow {
	return CashFlow{
		Year:           cf.Year,
		EBITDA:         cf.EBITDA,
		VarReceivables: cf.VarReceivables,
		VarInventory:   cf.VarInventory,
		VarPayables:    cf.VarPayables,
		VarOtherWC:     cf.VarOtherWC,
		VarBFR:         cf.VarBFR,
		OperatingCF:    cf.OperatingCF,
		Capex:          cf.Capex,
		InvestingCF:    cf.InvestingCF,
		VarDebt:        cf.VarDebt,
		VarEquity:      cf.VarEquity,
		FinancingCF:    cf.FinancingCF,
		NetCashChange:  cf.NetCashChange,
		CashStart:      cf.CashStart,
		CashEnd:        cf.CashEnd,
	}
}

// Variation is one year-over-year delta row.
type Variation struct {
	FromYear       int             `json:"from_year"`
	ToYear         int             `json:"to_year"`
	RevenueDelta   decimal.Decimal `json:"revenue_delta"`
	RevenuePct     decimal.Decimal `json:"revenue_pct"`
	EBITDADelta    decimal.Decimal `json:"ebitda_delta"`
	EBITDAPct      decimal.Decimal `json:"ebitda_pct"`
	NetIncomeDelta decimal.Decimal `json:"net_income_delta"`
	NetIncomePct   decimal.Decimal `json:"net_income_pct"`
}

func FromVariation(v domain.Variation) Variation {
	return Variation{
		FromYear:       v.FromYear,
		ToYear:         v.ToYear,
		RevenueDelta:   v.RevenueDelta,
		RevenuePct:     v.RevenuePct,
		EBITDADelta:    v.EBITDADelta,
		EBITDAPct:      v.EBITDAPct,
		NetIncomeDelta: v.NetIncomeDelta,
		NetIncomePct:   v.NetIncomePct,
	}
}

// BridgeStep is one bar of a waterfall chart.
type BridgeStep struct {
	Label      string          `json:"label"`
	Value      decimal.Decimal `json:"value"`
	Cumulative decimal.Decimal `json:"cumulative"`
	Type       string          `json:"type"`
}

func FromBridgeSteps(steps []domain.BridgeStep) []BridgeStep {
	out := make([]BridgeStep, len(steps))
	for i, s := range steps {
		out[i] = BridgeStep{
			Label:      s.Label,
			Value:      s.Value,
			Cumulative: s.Cumulative,
			Type:       string(s.Type),
		}
	}
	return out
}

// SynthesisRow is one executive-summary line, amounts in k€.
type SynthesisRow struct {
	Year           int             `json:"year"`
	Revenue        decimal.Decimal `json:"revenue_keur"`
	EBITDA         decimal.Decimal `json:"ebitda_keur"`
	EBITDAMargin   decimal.Decimal `json:"ebitda_margin"`
	NetIncome      decimal.Decimal `json:"net_income_keur"`
	WorkingCapital decimal.Decimal `json:"working_capital_keur"`
	DSO            decimal.Decimal `json:"dso"`
	DPO            decimal.Decimal `json:"dpo"`
	AdjustedEBITDA decimal.Decimal `json:"adjusted_ebitda_keur"`
	HasAdjustments bool            `json:"has_adjustments"`
}

// KPITrend is one metric row of the multi-year KPI evolution table.
type KPITrend struct {
	Label  string            `json:"label"`
	Values []decimal.Decimal `json:"values"`
	Trend  string            `json:"trend"`
}

func FromKPITrendLines(lines []domain.KPITrendLine) []KPITrend {
	out := make([]KPITrend, len(lines))
	for i, l := range lines {
		out[i] = KPITrend{
			Label:  l.Label,
			Values: l.Values,
			Trend:  string(l.Trend),
		}
	}
	return out
}

// TraceResponse carries a statement field back to its journal entries.
type TraceResponse struct {
	Field      string          `json:"field"`
	Year       int             `json:"year"`
	Value      decimal.Decimal `json:"value"`
	EntryCount int             `json:"entry_count"`
	Entries    []TraceEntry    `json:"entries"`
}

type TraceEntry struct {
	Date    string          `json:"date"`
	Account string          `json:"account"`
	Label   string          `json:"label"`
	Amount  decimal.Decimal `json:"amount"`
}

func FromTraceEntries(entries []domain.TraceEntry) []TraceEntry {
	out := make([]TraceEntry, len(entries))
	for i, e := range entries {
		out[i] = TraceEntry{
			Date:    e.Date.Format("2006-01-02"),
			Account: e.Account,
			Label:   e.Label,
			Amount:  e.Amount,
		}
	}
	return out
}
