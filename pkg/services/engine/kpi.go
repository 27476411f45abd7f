package engine

import (
	"github.com/shopspring/decimal"

	"github.com/dd-tools/databook/pkg/models/domain"
)

// Conventions used by the KPI turnover ratios. Both are exposed as
// calculator fields so an engagement can override them.
var (
	// DefaultDaysInYear is the banker's 360-day convention for DSO/DPO/DIO.
	DefaultDaysInYear = decimal.NewFromInt(360)
	// DefaultVATRate is the French 20% gross-up multiplier.
	DefaultVATRate = decimal.RequireFromString("1.20")
)

// KPICalculator computes ratio bundles from matched statement pairs.
type KPICalculator struct {
	// QoEAdjustments maps year -> label -> signed amount, consumed verbatim.
	QoEAdjustments map[int]map[string]decimal.Decimal
	// VATRate is the gross-up multiplier applied to revenue and purchases
	// for DSO/DPO.
	VATRate decimal.Decimal
	// DaysInYear is the day-count convention for turnover ratios.
	DaysInYear decimal.Decimal
}

// NewKPICalculator creates a calculator with the documented defaults. A nil
// adjustments map means no QoE normalization.
func NewKPICalculator(qoeAdjustments map[int]map[string]decimal.Decimal) *KPICalculator {
	return &KPICalculator{
		QoEAdjustments: qoeAdjustments,
		VATRate:        DefaultVATRate,
		DaysInYear:     DefaultDaysInYear,
	}
}

// Calculate builds the KPI bundle for one year from its P&L and balance
// sheet. Ratios whose denominator is not strictly positive stay at zero.
func (c *KPICalculator) Calculate(pl *domain.ProfitLoss, balance *domain.BalanceSheet) *domain.KPIs {
	kpis := &domain.KPIs{
		Year:           pl.Year,
		Revenue:        pl.Revenue,
		EBITDA:         pl.EBITDA(),
		EBITDAMargin:   pl.EBITDAMargin(),
		NetIncome:      pl.NetIncome(),
		WorkingCapital: balance.WorkingCapital(),
		NetDebt:        balance.NetDebt(),
	}

	// DSO = clients / CA TTC * 360
	if pl.Revenue.IsPositive() {
		caTTC := pl.Revenue.Mul(c.VATRate)
		kpis.DSO = balance.Receivables.Div(caTTC).Mul(c.DaysInYear)
	}

	// DPO = fournisseurs / achats TTC * 360
	if pl.Purchases.IsPositive() {
		achatsTTC := pl.Purchases.Mul(c.VATRate)
		kpis.DPO = balance.Payables.Div(achatsTTC).Mul(c.DaysInYear)

		// DIO = stocks / achats * 360
		kpis.DIO = balance.Inventory.Div(pl.Purchases).Mul(c.DaysInYear)
	}

	kpis.QoEAdjustments = c.QoEAdjustments[pl.Year]

	return kpis
}

// CalculateMultiYear pairs each P&L with its balance sheet by exact year
// equality. Years without a balance match are dropped; partial data is
// expected when statements are filtered.
func (c *KPICalculator) CalculateMultiYear(plList []*domain.ProfitLoss, balances []*domain.BalanceSheet) []*domain.KPIs {
	balanceByYear := make(map[int]*domain.BalanceSheet, len(balances))
	for _, bs := range balances {
		balanceByYear[bs.Year] = bs
	}

	var kpisList []*domain.KPIs
	for _, pl := range plList {
		balance, ok := balanceByYear[pl.Year]
		if !ok {
			continue
		}
		kpisList = append(kpisList, c.Calculate(pl, balance))
	}
	return kpisList
}

// SynthesisRow is one year's executive-summary line, figures in kEUR.
type SynthesisRow struct {
	Year           int
	Revenue        decimal.Decimal
	EBITDA         decimal.Decimal
	EBITDAMargin   decimal.Decimal
	NetIncome      decimal.Decimal
	WorkingCapital decimal.Decimal
	DSO            decimal.Decimal
	DPO            decimal.Decimal
	AdjustedEBITDA decimal.Decimal
	HasAdjustments bool
}

var thousand = decimal.NewFromInt(1000)

// BuildSynthesisTable builds the executive-summary table, one row per year.
func (c *KPICalculator) BuildSynthesisTable(kpisList []*domain.KPIs) []SynthesisRow {
	rows := make([]SynthesisRow, 0, len(kpisList))
	for _, kpis := range kpisList {
		row := SynthesisRow{
			Year:           kpis.Year,
			Revenue:        kpis.Revenue.Div(thousand),
			EBITDA:         kpis.EBITDA.Div(thousand),
			EBITDAMargin:   kpis.EBITDAMargin,
			NetIncome:      kpis.NetIncome.Div(thousand),
			WorkingCapital: kpis.WorkingCapital.Div(thousand),
			DSO:            kpis.DSO,
			DPO:            kpis.DPO,
		}
		if len(kpis.QoEAdjustments) > 0 {
			row.AdjustedEBITDA = kpis.AdjustedEBITDA().Div(thousand)
			row.HasAdjustments = true
		}
		rows = append(rows, row)
	}
	return rows
}
