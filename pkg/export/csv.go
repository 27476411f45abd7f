package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dd-tools/databook/pkg/services/engine"
)

// CSVWriter emits the statement bundle as flat year-column tables, one
// blank-line-separated block per statement. Spreadsheet tools open the
// result directly.
type CSVWriter struct {
	writer io.Writer
}

func NewCSVWriter(writer io.Writer) *CSVWriter {
	return &CSVWriter{writer: writer}
}

func (c *CSVWriter) Handle(analysis *engine.Analysis) error {
	w := csv.NewWriter(c.writer)
	years := analysis.Years()

	header := make([]string, 0, len(years)+1)
	header = append(header, "")
	for _, y := range years {
		header = append(header, strconv.Itoa(y))
	}

	writeBlock := func(title string, lines []engine.ReportLine, resolve func(metric string, year int) (string, bool)) error {
		if err := w.Write([]string{title}); err != nil {
			return err
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for _, line := range lines {
			if line.Type != engine.LineData {
				continue
			}
			record := make([]string, 0, len(years)+1)
			record = append(record, line.Label)
			for _, year := range years {
				if v, ok := resolve(line.Metric, year); ok {
					record = append(record, v)
				} else {
					record = append(record, "")
				}
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return w.Write([]string{})
	}

	plByYear := make(map[int]int, len(analysis.PL))
	for i, pl := range analysis.PL {
		plByYear[pl.Year] = i
	}
	if err := writeBlock("Compte de résultat", engine.PLReportLines, func(metric string, year int) (string, bool) {
		i, ok := plByYear[year]
		if !ok {
			return "", false
		}
		accessor, ok := engine.PLMetric(metric)
		if !ok {
			return "", false
		}
		return accessor(analysis.PL[i]).StringFixed(2), true
	}); err != nil {
		return fmt.Errorf("write P&L block: %w", err)
	}

	balanceByYear := make(map[int]int, len(analysis.Balances))
	for i, bs := range analysis.Balances {
		balanceByYear[bs.Year] = i
	}
	if err := writeBlock("Bilan", engine.BalanceReportLines, func(metric string, year int) (string, bool) {
		i, ok := balanceByYear[year]
		if !ok {
			return "", false
		}
		accessor, ok := engine.BalanceMetric(metric)
		if !ok {
			return "", false
		}
		return accessor(analysis.Balances[i]).StringFixed(2), true
	}); err != nil {
		return fmt.Errorf("write balance block: %w", err)
	}

	w.Flush()
	return w.Error()
}

// WriteEntries dumps the raw journal as CSV, the export counterpart of the
// FEC import.
func (c *CSVWriter) WriteEntries(analysis *engine.Analysis) error {
	w := csv.NewWriter(c.writer)
	if err := w.Write([]string{"date", "account", "label", "debit", "credit", "source_year"}); err != nil {
		return err
	}
	for _, entry := range analysis.Entries {
		record := []string{
			entry.Date.Format("2006-01-02"),
			entry.AccountNum,
			entry.Label,
			entry.Debit.StringFixed(2),
			entry.Credit.StringFixed(2),
			strconv.Itoa(entry.SourceYear),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
