package engine

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dd-tools/databook/pkg/models/domain"
	"github.com/dd-tools/databook/pkg/services/fec"
	"github.com/dd-tools/databook/pkg/services/mapper"
)

// Analysis is one full derivation of statements from an entry set. Rebuilt
// from scratch on every processing request; there is no incremental update.
type Analysis struct {
	Entries []domain.JournalEntry

	PL       []*domain.ProfitLoss
	Balances []*domain.BalanceSheet
	KPIs     []*domain.KPIs
	CashFlow []*domain.CashFlow

	Variations   []domain.Variation
	BFREvolution []domain.BFRLine

	Warnings []fec.TrialBalanceWarning
}

// Years returns the ascending effective years covered by the analysis.
func (a *Analysis) Years() []int {
	years := make([]int, 0, len(a.PL))
	for _, pl := range a.PL {
		years = append(years, pl.Year)
	}
	return years
}

// Analyzer coordinates the statement builders into one deterministic
// pipeline run. Safe to re-run idempotently; builders share no state.
type Analyzer struct {
	mapper   *mapper.AccountMapper
	pl       *PLBuilder
	balance  *BalanceBuilder
	kpi      *KPICalculator
	cashflow *CashFlowBuilder

	trialBalanceTolerance decimal.Decimal
}

// AnalyzerOptions configure one Analyzer.
type AnalyzerOptions struct {
	Mapper                *mapper.AccountMapper
	QoEAdjustments        map[int]map[string]decimal.Decimal
	VATRate               decimal.Decimal
	TrialBalanceTolerance decimal.Decimal
}

// NewAnalyzer creates an Analyzer. Zero-valued options fall back to the
// documented defaults.
func NewAnalyzer(opts AnalyzerOptions) *Analyzer {
	m := opts.Mapper
	if m == nil {
		m = mapper.NewDefault()
	}

	kpi := NewKPICalculator(opts.QoEAdjustments)
	if !opts.VATRate.IsZero() {
		kpi.VATRate = opts.VATRate
	}

	tolerance := opts.TrialBalanceTolerance
	if tolerance.IsZero() {
		tolerance = fec.DefaultTrialBalanceTolerance
	}

	return &Analyzer{
		mapper:                m,
		pl:                    NewPLBuilder(m),
		balance:               NewBalanceBuilder(m),
		kpi:                   kpi,
		cashflow:              NewCashFlowBuilder(),
		trialBalanceTolerance: tolerance,
	}
}

// Mapper exposes the classifier for detail/monthly builders sharing the
// same configuration.
func (a *Analyzer) Mapper() *mapper.AccountMapper { return a.mapper }

// Run derives the full statement bundle from entries. Zero entries produce
// an empty but valid analysis; trial-balance imbalance is surfaced as
// warnings, never as an error.
func (a *Analyzer) Run(ctx context.Context, entries []domain.JournalEntry) *Analysis {
	logger := zerolog.Ctx(ctx)

	analysis := &Analysis{
		Entries:  entries,
		PL:       a.pl.BuildMultiYear(entries),
		Balances: a.balance.BuildMultiYear(entries),
		Warnings: fec.CheckTrialBalance(entries, a.trialBalanceTolerance),
	}
	analysis.KPIs = a.kpi.CalculateMultiYear(analysis.PL, analysis.Balances)
	analysis.CashFlow = a.cashflow.BuildMultiYear(analysis.PL, analysis.Balances)
	analysis.Variations = a.pl.ComputeVariations(analysis.PL)
	analysis.BFREvolution = a.balance.ComputeBFREvolution(analysis.Balances)

	for _, w := range analysis.Warnings {
		logger.Warn().Int("year", w.Year).Str("difference", w.Difference.String()).
			Msg("trial balance imbalance")
	}
	logger.Info().
		Int("entries", len(entries)).
		Ints("years", analysis.Years()).
		Msg("analysis complete")

	return analysis
}
