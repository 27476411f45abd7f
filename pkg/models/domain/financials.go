package domain

import "github.com/shopspring/decimal"

// ProfitLoss is one fiscal year's income statement. Only the raw aggregated
// fields are stored; every summary figure is recomputed on access so a summary
// can never drift from its components.
type ProfitLoss struct {
	Year int

	Revenue      decimal.Decimal // chiffre d'affaires (70)
	OtherRevenue decimal.Decimal // autres produits (74, 75, 78, 79)

	Purchases       decimal.Decimal // achats (60)
	ExternalCharges decimal.Decimal // services exterieurs (61, 62)
	Taxes           decimal.Decimal // impots et taxes (63)
	Personnel       decimal.Decimal // charges de personnel (64)
	OtherCharges    decimal.Decimal // autres charges (65)
	Depreciation    decimal.Decimal // dotations aux amortissements (68)

	FinancialIncome  decimal.Decimal // produits financiers (76)
	FinancialExpense decimal.Decimal // charges financieres (66)

	ExceptionalIncome  decimal.Decimal // produits exceptionnels (77)
	ExceptionalExpense decimal.Decimal // charges exceptionnelles (67)

	IncomeTax decimal.Decimal // impot sur les societes (69)

	traces map[string]*TracedValue
}

// Production returns revenue plus other revenue.
func (p *ProfitLoss) Production() decimal.Decimal {
	return p.Revenue.Add(p.OtherRevenue)
}

// TotalCharges returns operating charges before depreciation.
func (p *ProfitLoss) TotalCharges() decimal.Decimal {
	return p.Purchases.Add(p.ExternalCharges).Add(p.Taxes).Add(p.Personnel).Add(p.OtherCharges)
}

// EBITDA returns production minus total operating charges.
func (p *ProfitLoss) EBITDA() decimal.Decimal {
	return p.Production().Sub(p.TotalCharges())
}

// EBIT returns EBITDA minus depreciation.
func (p *ProfitLoss) EBIT() decimal.Decimal {
	return p.EBITDA().Sub(p.Depreciation)
}

// FinancialResult returns financial income minus financial expense.
func (p *ProfitLoss) FinancialResult() decimal.Decimal {
	return p.FinancialIncome.Sub(p.FinancialExpense)
}

// ExceptionalResult returns exceptional income minus exceptional expense.
func (p *ProfitLoss) ExceptionalResult() decimal.Decimal {
	return p.ExceptionalIncome.Sub(p.ExceptionalExpense)
}

// NetIncome returns EBIT plus financial and exceptional results, less tax.
func (p *ProfitLoss) NetIncome() decimal.Decimal {
	return p.EBIT().Add(p.FinancialResult()).Add(p.ExceptionalResult()).Sub(p.IncomeTax)
}

// EBITDAMargin returns EBITDA over production as a percentage. Zero when
// production is zero.
func (p *ProfitLoss) EBITDAMargin() decimal.Decimal {
	production := p.Production()
	if production.IsZero() {
		return decimal.Zero
	}
	return p.EBITDA().Div(production).Mul(decimal.NewFromInt(100))
}

// SetTrace attaches the provenance record for a raw field.
func (p *ProfitLoss) SetTrace(field string, tv *TracedValue) {
	if p.traces == nil {
		p.traces = make(map[string]*TracedValue)
	}
	p.traces[field] = tv
}

// Trace returns the provenance record for a field, or nil when no entries
// contributed to it.
func (p *ProfitLoss) Trace(field string) *TracedValue {
	return p.traces[field]
}

// BalanceSheet is a fiscal-year-end snapshot of cumulated movements.
type BalanceSheet struct {
	Year int

	// Actif
	FixedAssets      decimal.Decimal // immobilisations (classe 2)
	Inventory        decimal.Decimal // stocks (classe 3)
	Receivables      decimal.Decimal // creances clients (41)
	OtherReceivables decimal.Decimal // autres creances (42-49)
	Cash             decimal.Decimal // tresorerie (51, 53)

	// Passif
	Equity        decimal.Decimal // capitaux propres (classe 1)
	Provisions    decimal.Decimal // provisions (15)
	FinancialDebt decimal.Decimal // dettes financieres (16, 17)
	Payables      decimal.Decimal // fournisseurs (40)
	OtherPayables decimal.Decimal // autres dettes (42-49)

	traces map[string]*TracedValue
}

// TotalAssets returns the sum of asset categories.
func (b *BalanceSheet) TotalAssets() decimal.Decimal {
	return b.FixedAssets.Add(b.Inventory).Add(b.Receivables).Add(b.OtherReceivables).Add(b.Cash)
}

// TotalLiabilities returns the sum of liability and equity categories.
func (b *BalanceSheet) TotalLiabilities() decimal.Decimal {
	return b.Equity.Add(b.Provisions).Add(b.FinancialDebt).Add(b.Payables).Add(b.OtherPayables)
}

// WorkingCapital returns the BFR: inventory + receivables - payables.
func (b *BalanceSheet) WorkingCapital() decimal.Decimal {
	return b.Inventory.Add(b.Receivables).Sub(b.Payables)
}

// NetDebt returns financial debt minus cash.
func (b *BalanceSheet) NetDebt() decimal.Decimal {
	return b.FinancialDebt.Sub(b.Cash)
}

// SetTrace attaches the provenance record for a raw field.
func (b *BalanceSheet) SetTrace(field string, tv *TracedValue) {
	if b.traces == nil {
		b.traces = make(map[string]*TracedValue)
	}
	b.traces[field] = tv
}

// Trace returns the provenance record for a field, or nil when no entries
// contributed to it.
func (b *BalanceSheet) Trace(field string) *TracedValue {
	return b.traces[field]
}

// KPIs is one fiscal year's ratio bundle, computed from a matched
// (ProfitLoss, BalanceSheet) pair.
type KPIs struct {
	Year int

	Revenue      decimal.Decimal
	EBITDA       decimal.Decimal
	EBITDAMargin decimal.Decimal
	NetIncome    decimal.Decimal

	DSO decimal.Decimal // days sales outstanding
	DPO decimal.Decimal // days payable outstanding
	DIO decimal.Decimal // days inventory outstanding

	WorkingCapital decimal.Decimal
	NetDebt        decimal.Decimal

	// QoEAdjustments holds analyst normalization entries, label -> signed
	// amount, consumed verbatim from the adjustments loader.
	QoEAdjustments map[string]decimal.Decimal
}

// AdjustedEBITDA returns EBITDA plus the sum of QoE adjustments.
func (k *KPIs) AdjustedEBITDA() decimal.Decimal {
	adjusted := k.EBITDA
	for _, amount := range k.QoEAdjustments {
		adjusted = adjusted.Add(amount)
	}
	return adjusted
}
