package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"

	"github.com/dd-tools/databook/pkg/services/engine"
)

type TableConfig struct {
	LabelWidth int
	ValueWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		LabelWidth: 34,
		ValueWidth: 14,
	}
}

// Reporter renders the statement bundle as fixed-width tables, one column
// per fiscal year.
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

// reportData is the template context built from an analysis.
type reportData struct {
	Years    []int
	PL       []statementTable
	Balance  []statementTable
	KPIs     []kpiRow
	Warnings []string
}

type statementTable struct {
	Rows []reportRow
}

type reportRow struct {
	Label   string
	Values  []string
	IsTotal bool
	Section bool
	Spacer  bool
}

type kpiRow struct {
	Label  string
	Values []string
}

func formatAmount(v decimal.Decimal) string {
	return v.StringFixed(2)
}

func buildStatementRows(lines []engine.ReportLine, years []int, resolve func(metric string, year int) (decimal.Decimal, bool)) []reportRow {
	rows := make([]reportRow, 0, len(lines))
	for _, line := range lines {
		switch line.Type {
		case engine.LineSpacer:
			rows = append(rows, reportRow{Spacer: true})
		case engine.LineSection:
			rows = append(rows, reportRow{Label: line.Label, Section: true})
		default:
			row := reportRow{Label: line.Label, IsTotal: line.IsTotal}
			for _, year := range years {
				if v, ok := resolve(line.Metric, year); ok {
					row.Values = append(row.Values, formatAmount(v))
				} else {
					row.Values = append(row.Values, "-")
				}
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// Handle writes the full text databook for an analysis.
func (r *Reporter) Handle(analysis *engine.Analysis) error {
	years := analysis.Years()

	plByYear := make(map[int]int, len(analysis.PL))
	for i, pl := range analysis.PL {
		plByYear[pl.Year] = i
	}
	balanceByYear := make(map[int]int, len(analysis.Balances))
	for i, bs := range analysis.Balances {
		balanceByYear[bs.Year] = i
	}

	data := reportData{Years: years}
	data.PL = []statementTable{{Rows: buildStatementRows(engine.PLReportLines, years,
		func(metric string, year int) (decimal.Decimal, bool) {
			i, ok := plByYear[year]
			if !ok {
				return decimal.Zero, false
			}
			accessor, ok := engine.PLMetric(metric)
			if !ok {
				return decimal.Zero, false
			}
			return accessor(analysis.PL[i]), true
		})}}
	data.Balance = []statementTable{{Rows: buildStatementRows(engine.BalanceReportLines, years,
		func(metric string, year int) (decimal.Decimal, bool) {
			i, ok := balanceByYear[year]
			if !ok {
				return decimal.Zero, false
			}
			accessor, ok := engine.BalanceMetric(metric)
			if !ok {
				return decimal.Zero, false
			}
			return accessor(analysis.Balances[i]), true
		})}}

	kpiLabels := []struct {
		label  string
		metric string
	}{
		{"Chiffre d'affaires", "revenue"},
		{"EBITDA", "ebitda"},
		{"Marge EBITDA (%)", "ebitda_margin"},
		{"EBITDA Ajusté", "adjusted_ebitda"},
		{"Résultat Net", "net_income"},
		{"DSO (jours)", "dso"},
		{"DPO (jours)", "dpo"},
		{"DIO (jours)", "dio"},
		{"BFR", "working_capital"},
		{"Dette nette", "net_debt"},
	}
	kpiByYear := make(map[int]int, len(analysis.KPIs))
	for i, k := range analysis.KPIs {
		kpiByYear[k.Year] = i
	}
	for _, kl := range kpiLabels {
		row := kpiRow{Label: kl.label}
		accessor, _ := engine.KPIMetric(kl.metric)
		for _, year := range years {
			if i, ok := kpiByYear[year]; ok && accessor != nil {
				row.Values = append(row.Values, formatAmount(accessor(analysis.KPIs[i])))
			} else {
				row.Values = append(row.Values, "-")
			}
		}
		data.KPIs = append(data.KPIs, row)
	}

	for _, w := range analysis.Warnings {
		data.Warnings = append(data.Warnings, w.String())
	}

	funcMap := template.FuncMap{
		"formatRow": func(label string, values []string) string {
			var b strings.Builder
			fmt.Fprintf(&b, "| %-*s |", r.config.LabelWidth, label)
			for _, v := range values {
				fmt.Fprintf(&b, " %*s |", r.config.ValueWidth, v)
			}
			return b.String()
		},
		"yearHeader": func(years []int) string {
			var b strings.Builder
			fmt.Fprintf(&b, "| %-*s |", r.config.LabelWidth, "")
			for _, y := range years {
				fmt.Fprintf(&b, " %*d |", r.config.ValueWidth, y)
			}
			return b.String()
		},
		"separator": func(n int) string {
			var b strings.Builder
			fmt.Fprintf(&b, "+%s+", strings.Repeat("-", r.config.LabelWidth+2))
			for i := 0; i < n; i++ {
				fmt.Fprintf(&b, "%s+", strings.Repeat("-", r.config.ValueWidth+2))
			}
			return b.String()
		},
	}

	tmpl := `
COMPTE DE RÉSULTAT
{{separator (len .Years)}}
{{yearHeader .Years}}
{{separator (len .Years)}}
{{range (index .PL 0).Rows}}{{if .Spacer}}{{separator (len $.Years)}}
{{else if .Section}}{{formatRow .Label nil}}
{{else}}{{formatRow .Label .Values}}
{{end}}{{end}}{{separator (len .Years)}}

BILAN
{{separator (len .Years)}}
{{yearHeader .Years}}
{{separator (len .Years)}}
{{range (index .Balance 0).Rows}}{{if .Spacer}}{{separator (len $.Years)}}
{{else if .Section}}{{formatRow .Label nil}}
{{else}}{{formatRow .Label .Values}}
{{end}}{{end}}{{separator (len .Years)}}

INDICATEURS CLÉS
{{separator (len .Years)}}
{{yearHeader .Years}}
{{separator (len .Years)}}
{{range .KPIs}}{{formatRow .Label .Values}}
{{end}}{{separator (len .Years)}}
{{if .Warnings}}
AVERTISSEMENTS
{{range .Warnings}}  - {{.}}
{{end}}{{end}}`

	t, err := template.New("databook").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(r.writer, data)
}
