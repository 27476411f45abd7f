package engine

import (
	"github.com/dd-tools/databook/pkg/models/domain"
)

// CashFlowBuilder derives indirect-method cash-flow statements from a P&L
// and a pair of balance-sheet snapshots. Pure function of its inputs.
type CashFlowBuilder struct{}

// NewCashFlowBuilder creates a CashFlowBuilder.
func NewCashFlowBuilder() *CashFlowBuilder {
	return &CashFlowBuilder{}
}

// Build derives the cash-flow statement for balanceEnd's year. balanceStart
// may be nil for the first year in range: without a starting point no
// working-capital, investing or financing detail is computable, so operating
// cash flow degenerates to EBITDA and the net change to the closing cash.
func (b *CashFlowBuilder) Build(pl *domain.ProfitLoss, balanceStart, balanceEnd *domain.BalanceSheet) *domain.CashFlow {
	cf := &domain.CashFlow{
		Year:    balanceEnd.Year,
		EBITDA:  pl.EBITDA(),
		CashEnd: balanceEnd.Cash,
	}

	if balanceStart == nil {
		cf.OperatingCF = pl.EBITDA()
		cf.NetCashChange = balanceEnd.Cash
		return cf
	}

	// Working capital: an increase in receivables or inventory consumes
	// cash, an increase in payables releases it.
	cf.VarReceivables = balanceEnd.Receivables.Sub(balanceStart.Receivables).Neg()
	cf.VarInventory = balanceEnd.Inventory.Sub(balanceStart.Inventory).Neg()
	cf.VarPayables = balanceEnd.Payables.Sub(balanceStart.Payables)
	cf.VarOtherWC = balanceEnd.OtherReceivables.Sub(balanceStart.OtherReceivables).Neg().
		Add(balanceEnd.OtherPayables.Sub(balanceStart.OtherPayables))

	cf.VarBFR = cf.VarReceivables.Add(cf.VarInventory).Add(cf.VarPayables).Add(cf.VarOtherWC)
	cf.OperatingCF = pl.EBITDA().Add(cf.VarBFR)

	// Investing: gross capex approximated by the fixed-asset movement plus
	// the depreciation charge that reduced it.
	cf.Capex = balanceEnd.FixedAssets.Sub(balanceStart.FixedAssets).Add(pl.Depreciation).Neg()
	cf.InvestingCF = cf.Capex

	// Financing: the net-income subtraction isolates capital movements from
	// retained-earnings effects on equity.
	cf.VarDebt = balanceEnd.FinancialDebt.Sub(balanceStart.FinancialDebt)
	cf.VarEquity = balanceEnd.Equity.Sub(balanceStart.Equity).Sub(pl.NetIncome())
	cf.FinancingCF = cf.VarDebt.Add(cf.VarEquity)

	cf.CashStart = balanceStart.Cash
	cf.NetCashChange = cf.OperatingCF.Add(cf.InvestingCF).Add(cf.FinancingCF)

	return cf
}

// BuildMultiYear chains consecutive years in ascending order, supplying a
// nil prior balance only for the first year. Years missing either statement
// are skipped.
func (b *CashFlowBuilder) BuildMultiYear(plList []*domain.ProfitLoss, balances []*domain.BalanceSheet) []*domain.CashFlow {
	balanceByYear := make(map[int]*domain.BalanceSheet, len(balances))
	for _, bs := range balances {
		balanceByYear[bs.Year] = bs
	}

	var cashflows []*domain.CashFlow
	for i, pl := range plList {
		balanceEnd, ok := balanceByYear[pl.Year]
		if !ok {
			continue
		}

		var balanceStart *domain.BalanceSheet
		if i > 0 {
			balanceStart = balanceByYear[plList[i-1].Year]
		}

		cashflows = append(cashflows, b.Build(pl, balanceStart, balanceEnd))
	}
	return cashflows
}
