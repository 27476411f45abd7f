package engine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dd-tools/databook/pkg/models/domain"
)

// VarianceBuilder produces waterfall-ready bridge sequences and cost
// breakdowns from pairs of already-built statements. Pure functions.
type VarianceBuilder struct{}

// NewVarianceBuilder creates a VarianceBuilder.
func NewVarianceBuilder() *VarianceBuilder {
	return &VarianceBuilder{}
}

// costItem pairs a French display label with a P&L metric name.
type costItem struct {
	label  string
	metric string
}

var varianceCostItems = []costItem{
	{"Achats", "purchases"},
	{"Charges externes", "external_charges"},
	{"Impôts et taxes", "taxes"},
	{"Personnel", "personnel"},
	{"Autres charges", "other_charges"},
}

var breakdownCostItems = append(varianceCostItems[:len(varianceCostItems):len(varianceCostItems)],
	costItem{"Amortissements", "depreciation"})

func stepType(v decimal.Decimal) domain.StepType {
	if v.Sign() < 0 {
		return domain.StepNegative
	}
	return domain.StepPositive
}

// BuildPLVariance decomposes the EBITDA movement between two years into its
// revenue and cost-line components. Cost increases are shown negative
// because they reduce profit. Zero components are omitted.
func (v *VarianceBuilder) BuildPLVariance(prev, curr *domain.ProfitLoss) []domain.BridgeStep {
	steps := []domain.BridgeStep{
		{Label: fmt.Sprintf("CA FY%d", prev.Year), Value: prev.Revenue, Type: domain.StepStart},
	}

	revVar := curr.Revenue.Sub(prev.Revenue)
	steps = append(steps, domain.BridgeStep{Label: "Variation CA", Value: revVar, Type: stepType(revVar)})

	if otherRevVar := curr.OtherRevenue.Sub(prev.OtherRevenue); !otherRevVar.IsZero() {
		steps = append(steps, domain.BridgeStep{Label: "Autres produits", Value: otherRevVar, Type: stepType(otherRevVar)})
	}

	for _, item := range varianceCostItems {
		accessor, _ := PLMetric(item.metric)
		delta := accessor(curr).Sub(accessor(prev)).Neg()
		if delta.IsZero() {
			continue
		}
		steps = append(steps, domain.BridgeStep{Label: item.label, Value: delta, Type: stepType(delta)})
	}

	steps = append(steps, domain.BridgeStep{
		Label: fmt.Sprintf("EBITDA FY%d", curr.Year),
		Value: curr.EBITDA(),
		Type:  domain.StepEnd,
	})
	return steps
}

// BuildEBITDABridge decomposes the EBITDA delta into a volume effect
// (revenue delta at the prior year's EBITDA-to-production margin) and a
// residual price/mix effect. The decomposition is an approximation, not an
// exact activity-based attribution. Values in kEUR.
func (v *VarianceBuilder) BuildEBITDABridge(prev, curr *domain.ProfitLoss) []domain.BridgeStep {
	prevK := prev.EBITDA().Div(thousand)
	currK := curr.EBITDA().Div(thousand)

	bridge := []domain.BridgeStep{
		{
			Label:      fmt.Sprintf("EBITDA %d", prev.Year),
			Value:      prevK,
			Cumulative: prevK,
			Type:       domain.StepStart,
		},
	}

	prevMargin := decimal.Zero
	if !prev.Production().IsZero() {
		prevMargin = prev.EBITDA().Div(prev.Production())
	}
	volumeEffect := curr.Revenue.Sub(prev.Revenue).Mul(prevMargin)

	bridge = append(bridge, domain.BridgeStep{
		Label:      "Effet volume",
		Value:      volumeEffect.Div(thousand),
		Cumulative: prev.EBITDA().Add(volumeEffect).Div(thousand),
		Type:       stepType(volumeEffect),
	})

	priceMix := curr.EBITDA().Sub(prev.EBITDA()).Sub(volumeEffect)
	bridge = append(bridge, domain.BridgeStep{
		Label:      "Effet prix/mix",
		Value:      priceMix.Div(thousand),
		Cumulative: currK,
		Type:       stepType(priceMix),
	})

	bridge = append(bridge, domain.BridgeStep{
		Label:      fmt.Sprintf("EBITDA %d", curr.Year),
		Value:      currK,
		Cumulative: currK,
		Type:       domain.StepEnd,
	})
	return bridge
}

// BuildRevenueBridge builds the two-year revenue waterfall, values in kEUR.
func (v *VarianceBuilder) BuildRevenueBridge(prev, curr *domain.ProfitLoss) []domain.BridgeStep {
	delta := curr.Revenue.Sub(prev.Revenue)
	return []domain.BridgeStep{
		{Label: fmt.Sprintf("CA %d", prev.Year), Value: prev.Revenue.Div(thousand), Type: domain.StepStart},
		{Label: "Variation", Value: delta.Div(thousand), Type: stepType(delta)},
		{Label: fmt.Sprintf("CA %d", curr.Year), Value: curr.Revenue.Div(thousand), Type: domain.StepEnd},
	}
}

// BuildQoEBridge builds the normalization waterfall from accounting EBITDA
// to adjusted EBITDA, values in kEUR. Empty when the year carries no
// adjustments.
func (v *VarianceBuilder) BuildQoEBridge(kpis *domain.KPIs) []domain.BridgeStep {
	if len(kpis.QoEAdjustments) == 0 {
		return nil
	}

	bridge := []domain.BridgeStep{
		{Label: "EBITDA Comptable", Value: kpis.EBITDA.Div(thousand), Type: domain.StepStart},
	}
	for _, label := range sortedKeys(kpis.QoEAdjustments) {
		amount := kpis.QoEAdjustments[label]
		bridge = append(bridge, domain.BridgeStep{
			Label: label,
			Value: amount.Div(thousand),
			Type:  stepType(amount),
		})
	}
	bridge = append(bridge, domain.BridgeStep{
		Label: "EBITDA Ajusté",
		Value: kpis.AdjustedEBITDA().Div(thousand),
		Type:  domain.StepEnd,
	})
	return bridge
}

// sortedKeys keeps adjustment ordering deterministic across runs.
func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BuildCostBreakdownVariance returns per-cost-line absolute and percentage
// changes, values in kEUR. Percentage against a zero prior value is zero.
func (v *VarianceBuilder) BuildCostBreakdownVariance(prev, curr *domain.ProfitLoss) []domain.CostVariance {
	breakdown := make([]domain.CostVariance, 0, len(breakdownCostItems))
	for _, item := range breakdownCostItems {
		accessor, _ := PLMetric(item.metric)
		prevVal := accessor(prev)
		currVal := accessor(curr)
		varAbs := currVal.Sub(prevVal)

		varPct := decimal.Zero
		if !prevVal.IsZero() {
			varPct = varAbs.Div(prevVal).Mul(decimal.NewFromInt(100))
		}

		breakdown = append(breakdown, domain.CostVariance{
			Label:     item.label,
			PrevYear:  prev.Year,
			PrevValue: prevVal.Div(thousand),
			CurrYear:  curr.Year,
			CurrValue: currVal.Div(thousand),
			VarAbs:    varAbs.Div(thousand),
			VarPct:    varPct,
		})
	}
	return breakdown
}

// kpiEvolutionItems drive the KPI evolution table; divisor 1000 scales
// monetary figures to kEUR, day counts and margins stay as-is.
var kpiEvolutionItems = []struct {
	label   string
	metric  string
	divisor int64
}{
	{"CA (k€)", "revenue", 1000},
	{"EBITDA (k€)", "ebitda", 1000},
	{"Marge EBITDA (%)", "ebitda_margin", 1},
	{"BFR (k€)", "working_capital", 1000},
	{"DSO (jours)", "dso", 1},
	{"DPO (jours)", "dpo", 1},
}

// trendThreshold is the first-to-last percentage move beyond which a KPI is
// tagged up or down.
var trendThreshold = decimal.NewFromInt(5)

// BuildKPIEvolution builds the multi-year KPI table with a trend tag per
// metric. Fewer than two years yield an empty table.
func (v *VarianceBuilder) BuildKPIEvolution(kpisList []*domain.KPIs) []domain.KPITrendLine {
	if len(kpisList) < 2 {
		return nil
	}

	lines := make([]domain.KPITrendLine, 0, len(kpiEvolutionItems))
	for _, item := range kpiEvolutionItems {
		accessor, _ := KPIMetric(item.metric)
		divisor := decimal.NewFromInt(item.divisor)

		line := domain.KPITrendLine{Label: item.label, Trend: domain.TrendStable}
		for _, kpis := range kpisList {
			line.Values = append(line.Values, accessor(kpis).Div(divisor))
		}

		first := line.Values[0]
		last := line.Values[len(line.Values)-1]
		if !first.IsZero() {
			changePct := last.Sub(first).Div(first.Abs()).Mul(decimal.NewFromInt(100))
			if changePct.GreaterThan(trendThreshold) {
				line.Trend = domain.TrendUp
			} else if changePct.LessThan(trendThreshold.Neg()) {
				line.Trend = domain.TrendDown
			}
		}

		lines = append(lines, line)
	}
	return lines
}
