package export

import (
	"encoding/json"
	"io"

	"github.com/dd-tools/databook/pkg/models/api"
	"github.com/dd-tools/databook/pkg/services/engine"
)

// Dashboard is the full JSON payload a front end needs to render every
// view: statements, KPIs, cash flow, bridges and trial-balance warnings.
type Dashboard struct {
	Years        []int              `json:"years"`
	ProfitLoss   []api.ProfitLoss   `json:"profit_loss"`
	BalanceSheet []api.BalanceSheet `json:"balance_sheet"`
	KPIs         []api.KPIs         `json:"kpis"`
	CashFlow     []api.CashFlow     `json:"cash_flow"`
	Variations   []api.Variation    `json:"variations"`
	KPISynthesis []api.SynthesisRow `json:"kpi_synthesis,omitempty"`
	KPIEvolution []api.KPITrend     `json:"kpi_evolution,omitempty"`
	EBITDABridge []api.BridgeStep   `json:"ebitda_bridge,omitempty"`
	QoEBridge    []api.BridgeStep   `json:"qoe_bridge,omitempty"`
	Warnings     []string           `json:"warnings,omitempty"`
}

// BuildDashboard converts an analysis into its wire form.
func BuildDashboard(analysis *engine.Analysis) *Dashboard {
	d := &Dashboard{Years: analysis.Years()}

	for _, pl := range analysis.PL {
		d.ProfitLoss = append(d.ProfitLoss, api.FromProfitLoss(pl))
	}
	for _, bs := range analysis.Balances {
		d.BalanceSheet = append(d.BalanceSheet, api.FromBalanceSheet(bs))
	}
	for _, k := range analysis.KPIs {
		d.KPIs = append(d.KPIs, api.FromKPIs(k))
	}
	for _, cf := range analysis.CashFlow {
		d.CashFlow = append(d.CashFlow, api.FromCashFlow(cf))
	}
	for _, v := range analysis.Variations {
		d.Variations = append(d.Variations, api.FromVariation(v))
	}

	for _, row := range engine.NewKPICalculator(nil).BuildSynthesisTable(analysis.KPIs) {
		d.KPISynthesis = append(d.KPISynthesis, api.SynthesisRow{
			Year:           row.Year,
			Revenue:        row.Revenue,
			EBITDA:         row.EBITDA,
			EBITDAMargin:   row.EBITDAMargin,
			NetIncome:      row.NetIncome,
			WorkingCapital: row.WorkingCapital,
			DSO:            row.DSO,
			DPO:            row.DPO,
			AdjustedEBITDA: row.AdjustedEBITDA,
			HasAdjustments: row.HasAdjustments,
		})
	}

	variance := engine.NewVarianceBuilder()
	d.KPIEvolution = api.FromKPITrendLines(variance.BuildKPIEvolution(analysis.KPIs))
	if n := len(analysis.PL); n >= 2 {
		d.EBITDABridge = api.FromBridgeSteps(variance.BuildEBITDABridge(analysis.PL[n-2], analysis.PL[n-1]))
	}
	if n := len(analysis.KPIs); n > 0 {
		if steps := variance.BuildQoEBridge(analysis.KPIs[n-1]); steps != nil {
			d.QoEBridge = api.FromBridgeSteps(steps)
		}
	}
	for _, w := range analysis.Warnings {
		d.Warnings = append(d.Warnings, w.String())
	}
	return d
}

// JSONWriter serializes the dashboard payload.
type JSONWriter struct {
	writer io.Writer
}

func NewJSONWriter(writer io.Writer) *JSONWriter {
	return &JSONWriter{writer: writer}
}

func (j *JSONWriter) Handle(analysis *engine.Analysis) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDashboard(analysis))
}
