package agent

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dd-tools/databook/pkg/models/domain"
	"github.com/dd-tools/databook/pkg/services/engine"
)

// UnknownMetricError is returned when a tool is asked about a metric name
// outside the enumerated lookup tables.
type UnknownMetricError struct {
	Metric string
}

func (e *UnknownMetricError) Error() string {
	return fmt.Sprintf("unknown metric %q", e.Metric)
}

// DealAgent answers structured queries over an already-built analysis. It
// is a read-only facade: every tool is a pure function of the statement
// bundle it wraps.
type DealAgent struct {
	analysis *engine.Analysis
	variance *engine.VarianceBuilder
}

// NewDealAgent wraps an analysis.
func NewDealAgent(analysis *engine.Analysis) *DealAgent {
	return &DealAgent{
		analysis: analysis,
		variance: engine.NewVarianceBuilder(),
	}
}

// latestPL returns the statement for year, or the last element when year is
// zero (multi-year lists are ascending; the last element is the latest).
func latestPL(list []*domain.ProfitLoss, year int) *domain.ProfitLoss {
	if len(list) == 0 {
		return nil
	}
	if year == 0 {
		return list[len(list)-1]
	}
	for _, pl := range list {
		if pl.Year == year {
			return pl
		}
	}
	return nil
}

func latestBalance(list []*domain.BalanceSheet, year int) *domain.BalanceSheet {
	if len(list) == 0 {
		return nil
	}
	if year == 0 {
		return list[len(list)-1]
	}
	for _, bs := range list {
		if bs.Year == year {
			return bs
		}
	}
	return nil
}

func latestKPIs(list []*domain.KPIs, year int) *domain.KPIs {
	if len(list) == 0 {
		return nil
	}
	if year == 0 {
		return list[len(list)-1]
	}
	for _, k := range list {
		if k.Year == year {
			return k
		}
	}
	return nil
}

// GetPL returns every P&L line for a year (zero = latest), keyed by the
// stable metric names.
func (a *DealAgent) GetPL(year int) (map[string]decimal.Decimal, error) {
	pl := latestPL(a.analysis.PL, year)
	if pl == nil {
		return nil, fmt.Errorf("no P&L for year %d (available: %v)", year, a.analysis.Years())
	}

	out := map[string]decimal.Decimal{"year": decimal.NewFromInt(int64(pl.Year))}
	for _, name := range engine.PLMetricNames() {
		accessor, _ := engine.PLMetric(name)
		out[name] = accessor(pl)
	}
	return out, nil
}

// GetBalance returns every balance-sheet line for a year (zero = latest).
func (a *DealAgent) GetBalance(year int) (map[string]decimal.Decimal, error) {
	bs := latestBalance(a.analysis.Balances, year)
	if bs == nil {
		return nil, fmt.Errorf("no balance sheet for year %d (available: %v)", year, a.analysis.Years())
	}

	out := map[string]decimal.Decimal{"year": decimal.NewFromInt(int64(bs.Year))}
	for _, name := range engine.BalanceMetricNames() {
		accessor, _ := engine.BalanceMetric(name)
		out[name] = accessor(bs)
	}
	return out, nil
}

// GetKPIs returns the ratio bundle for a year (zero = latest).
func (a *DealAgent) GetKPIs(year int) (*domain.KPIs, error) {
	kpis := latestKPIs(a.analysis.KPIs, year)
	if kpis == nil {
		return nil, fmt.Errorf("no KPIs for year %d (available: %v)", year, a.analysis.Years())
	}
	return kpis, nil
}

// EntryFilter narrows a GetEntries search. Zero values match everything.
type EntryFilter struct {
	Year          int
	AccountPrefix string
	LabelContains string
	Limit         int
}

// GetEntries searches the raw entry list. Unmapped accounts are included:
// drill-down sees everything the statements exclude.
func (a *DealAgent) GetEntries(filter EntryFilter) []domain.JournalEntry {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var matched []domain.JournalEntry
	for _, entry := range a.analysis.Entries {
		if filter.Year != 0 && entry.EffectiveYear() != filter.Year {
			continue
		}
		if filter.AccountPrefix != "" && !strings.HasPrefix(entry.AccountNum, filter.AccountPrefix) {
			continue
		}
		if filter.LabelContains != "" &&
			!strings.Contains(strings.ToLower(entry.Label), strings.ToLower(filter.LabelContains)) {
			continue
		}
		matched = append(matched, entry)
		if len(matched) >= limit {
			break
		}
	}
	return matched
}

// VarianceExplanation decomposes one metric's movement between two years.
type VarianceExplanation struct {
	Metric    string
	FromYear  int
	ToYear    int
	FromValue decimal.Decimal
	ToValue   decimal.Decimal
	Delta     decimal.Decimal
	Pct       decimal.Decimal
	Drivers   []domain.CostVariance
}

// ExplainVariance reports how a named P&L metric moved between two years,
// with the cost-line breakdown as supporting drivers. Unknown names return
// an UnknownMetricError, never a reflective lookup.
func (a *DealAgent) ExplainVariance(metric string, fromYear, toYear int) (*VarianceExplanation, error) {
	accessor, ok := engine.PLMetric(metric)
	if !ok {
		return nil, &UnknownMetricError{Metric: metric}
	}

	prev := latestPL(a.analysis.PL, fromYear)
	curr := latestPL(a.analysis.PL, toYear)
	if prev == nil || curr == nil {
		return nil, fmt.Errorf("years %d/%d not both available (have %v)", fromYear, toYear, a.analysis.Years())
	}

	fromValue := accessor(prev)
	toValue := accessor(curr)
	delta := toValue.Sub(fromValue)

	pct := decimal.Zero
	if !fromValue.IsZero() {
		pct = delta.Div(fromValue.Abs()).Mul(decimal.NewFromInt(100))
	}

	return &VarianceExplanation{
		Metric:    metric,
		FromYear:  prev.Year,
		ToYear:    curr.Year,
		FromValue: fromValue,
		ToValue:   toValue,
		Delta:     delta,
		Pct:       pct,
		Drivers:   a.variance.BuildCostBreakdownVariance(prev, curr),
	}, nil
}

// MetricTrace is the provenance answer for one statement field.
type MetricTrace struct {
	Field      string
	Year       int
	Value      decimal.Decimal
	EntryCount int
	Entries    []domain.TraceEntry
}

// TraceMetric returns the source entries behind a statement field for a
// year (zero = latest). Fields with no contributing entries return nil.
func (a *DealAgent) TraceMetric(field string, year int) (*MetricTrace, error) {
	var tv *domain.TracedValue
	resolvedYear := year

	if bs := latestBalance(a.analysis.Balances, year); bs != nil {
		if t := bs.Trace(field); t != nil {
			tv = t
			resolvedYear = bs.Year
		}
	}
	if tv == nil {
		if pl := latestPL(a.analysis.PL, year); pl != nil {
			if t := pl.Trace(field); t != nil {
				tv = t
				resolvedYear = pl.Year
			}
		}
	}
	if tv == nil {
		return nil, nil
	}

	return &MetricTrace{
		Field:      field,
		Year:       resolvedYear,
		Value:      tv.Value,
		EntryCount: tv.EntryCount(),
		Entries:    tv.Entries,
	}, nil
}

// Anomaly is one entry whose amount is a statistical outlier within its
// account class.
type Anomaly struct {
	Entry  domain.JournalEntry
	ZScore float64
	Reason string
}

// FindAnomalies flags entries whose absolute amount deviates more than
// zThreshold standard deviations from their account class mean. A class
// with fewer than three entries is skipped.
func (a *DealAgent) FindAnomalies(zThreshold float64) []Anomaly {
	if zThreshold <= 0 {
		zThreshold = 3
	}

	byClass := make(map[string][]domain.JournalEntry)
	for _, entry := range a.analysis.Entries {
		byClass[entry.AccountClass()] = append(byClass[entry.AccountClass()], entry)
	}

	var anomalies []Anomaly
	for class, entries := range byClass {
		if len(entries) < 3 {
			continue
		}

		amounts := make([]float64, len(entries))
		sum := 0.0
		for i, entry := range entries {
			amounts[i] = math.Abs(entry.Amount().InexactFloat64())
			sum += amounts[i]
		}
		mean := sum / float64(len(amounts))

		variance := 0.0
		for _, v := range amounts {
			variance += (v - mean) * (v - mean)
		}
		stddev := math.Sqrt(variance / float64(len(amounts)))
		if stddev == 0 {
			continue
		}

		for i, entry := range entries {
			z := (amounts[i] - mean) / stddev
			if z > zThreshold {
				anomalies = append(anomalies, Anomaly{
					Entry:  entry,
					ZScore: z,
					Reason: fmt.Sprintf("amount %.2f is %.1f standard deviations above the class %s mean", amounts[i], z, class),
				})
			}
		}
	}

	sort.SliceStable(anomalies, func(i, j int) bool {
		return anomalies[i].ZScore > anomalies[j].ZScore
	})
	return anomalies
}

// Summary is the executive overview returned by GetSummary.
type Summary struct {
	Years        []int
	EntryCount   int
	LatestKPIs   *domain.KPIs
	Variations   []domain.Variation
	Warnings     []string
	AnomalyCount int
}

// GetSummary assembles the headline view of the whole analysis.
func (a *DealAgent) GetSummary() *Summary {
	summary := &Summary{
		Years:        a.analysis.Years(),
		EntryCount:   len(a.analysis.Entries),
		LatestKPIs:   latestKPIs(a.analysis.KPIs, 0),
		Variations:   a.analysis.Variations,
		AnomalyCount: len(a.FindAnomalies(0)),
	}
	for _, w := range a.analysis.Warnings {
		summary.Warnings = append(summary.Warnings, w.String())
	}
	return summary
}
