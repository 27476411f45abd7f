package fec

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/dd-tools/databook/pkg/models/domain"
)

// Column-name synonyms seen across FEC exports, matched case-insensitively.
var (
	dateColumns    = map[string]bool{"dateecriture": true, "ecrituredate": true, "date": true}
	accountColumns = map[string]bool{"comptenum": true, "compte": true, "accountnum": true, "account": true}
	labelColumns   = map[string]bool{"libelle": true, "ecriturelib": true, "label": true, "description": true}
	debitColumns   = map[string]bool{"debit": true, "montantdebit": true}
	creditColumns  = map[string]bool{"credit": true, "montantcredit": true}
)

// fecYearPattern extracts the declared fiscal year from filenames like
// 844118190FEC20241231.txt.
var fecYearPattern = regexp.MustCompile(`FEC(\d{4})`)

var dateFormats = []string{"2006-01-02", "02/01/2006", "02-01-2006", "20060102"}

// DefaultErrorThreshold is the share of rows (percent) allowed to fail
// before parsing as a whole is rejected.
const DefaultErrorThreshold = 5.0

// ParseError is one rejected row with context.
type ParseError struct {
	Row     int
	Column  string
	Value   string
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("row %d, column %q: %s (value: %q)", e.Row, e.Column, e.Message, e.Value)
}

// ParseResult carries the parsed entries together with per-row errors and
// warnings. Rows below the error threshold never abort a parse.
type ParseResult struct {
	Entries   []domain.JournalEntry
	Errors    []ParseError
	Warnings  []string
	TotalRows int
}

// SuccessRate is the percentage of rows parsed successfully.
func (r *ParseResult) SuccessRate() float64 {
	if r.TotalRows == 0 {
		return 0
	}
	return float64(r.TotalRows-len(r.Errors)) / float64(r.TotalRows) * 100
}

// HasErrors reports whether any row failed.
func (r *ParseResult) HasErrors() bool { return len(r.Errors) > 0 }

// Parser reads one FEC file: sniffs encoding and delimiter, maps columns by
// synonym, and produces immutable journal entries stamped with the source
// year from the filename.
type Parser struct {
	path           string
	errorThreshold float64
	sourceYear     int
}

// NewParser creates a parser for path with the default error threshold.
func NewParser(path string) *Parser {
	return &Parser{
		path:           path,
		errorThreshold: DefaultErrorThreshold,
		sourceYear:     extractSourceYear(filepath.Base(path)),
	}
}

// WithErrorThreshold overrides the allowed row failure percentage.
func (p *Parser) WithErrorThreshold(threshold float64) *Parser {
	p.errorThreshold = threshold
	return p
}

// SourceYear is the fiscal year declared by the filename, zero when absent.
func (p *Parser) SourceYear() int { return p.sourceYear }

func extractSourceYear(name string) int {
	m := fecYearPattern.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	year, _ := strconv.Atoi(m[1])
	return year
}

// Parse reads and parses the file. It fails only on unreadable input,
// unmappable headers, or an error rate above the threshold; individual bad
// rows are collected in the result.
func (p *Parser) Parse() (*ParseResult, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("reading FEC file: %w", err)
	}

	content, err := decodeContent(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(p.path), err)
	}

	result, err := p.ParseReader(strings.NewReader(content))
	if err != nil {
		return nil, err
	}

	if result.TotalRows > 0 {
		errorRate := 100 - result.SuccessRate()
		if errorRate > p.errorThreshold {
			return nil, fmt.Errorf(
				"parse error rate (%.1f%%) exceeds threshold (%.1f%%): %d of %d rows failed, first: %s",
				errorRate, p.errorThreshold, len(result.Errors), result.TotalRows, result.Errors[0])
		}
	}

	return result, nil
}

// ParseReader parses already-decoded FEC content.
func (p *Parser) ParseReader(r io.Reader) (*ParseResult, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading FEC content: %w", err)
	}

	delimiter := detectDelimiter(string(content))

	cr := csv.NewReader(bytes.NewReader(content))
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1 // tolerate ragged rows, mapped columns are checked per row
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return &ParseResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading FEC header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{}
	for rowNum := 2; ; rowNum++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.TotalRows++
			result.Errors = append(result.Errors, ParseError{
				Row: rowNum, Column: "unknown", Message: err.Error(),
			})
			continue
		}
		if isEmptyRow(row) {
			continue
		}

		result.TotalRows++
		entry, perr := p.parseRow(row, cols, rowNum)
		if perr != nil {
			result.Errors = append(result.Errors, *perr)
			continue
		}
		result.Entries = append(result.Entries, entry)
	}

	return result, nil
}

// decodeContent sniffs the byte encoding: valid UTF-8 (with or without BOM)
// is taken as-is, anything else is decoded as Windows-1252, which covers the
// ISO-8859-1 exports French accounting packages produce.
func decodeContent(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("not valid UTF-8 or Windows-1252: %w", err)
	}
	return string(decoded), nil
}

// detectDelimiter picks the candidate occurring most often in the first
// line, requiring at least two occurrences; the French standard semicolon is
// the fallback. Tab is tried before semicolon because official FEC exports
// are tab-separated.
func detectDelimiter(content string) rune {
	firstLine, _, _ := strings.Cut(content, "\n")

	best := ';'
	bestCount := 0
	for _, candidate := range []rune{'\t', ';', ',', '|'} {
		if n := strings.Count(firstLine, string(candidate)); n > bestCount {
			best = candidate
			bestCount = n
		}
	}
	if bestCount < 2 {
		return ';'
	}
	return best
}

type columnMap struct {
	date, account, label, debit, credit int
}

func mapColumns(header []string) (columnMap, error) {
	cols := columnMap{date: -1, account: -1, label: -1, debit: -1, credit: -1}
	for idx, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		switch {
		case dateColumns[name]:
			cols.date = idx
		case accountColumns[name]:
			cols.account = idx
		case labelColumns[name]:
			cols.label = idx
		case debitColumns[name]:
			cols.debit = idx
		case creditColumns[name]:
			cols.credit = idx
		}
	}

	var missing []string
	for name, idx := range map[string]int{
		"date": cols.date, "account": cols.account, "label": cols.label,
		"debit": cols.debit, "credit": cols.credit,
	} {
		if idx < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("missing required columns %v in header %v", missing, header)
	}
	return cols, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func (p *Parser) parseRow(row []string, cols columnMap, rowNum int) (domain.JournalEntry, *ParseError) {
	fail := func(column, value, message string) (domain.JournalEntry, *ParseError) {
		return domain.JournalEntry{}, &ParseError{Row: rowNum, Column: column, Value: value, Message: message}
	}

	maxIdx := cols.date
	for _, idx := range []int{cols.account, cols.label, cols.debit, cols.credit} {
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	if len(row) <= maxIdx {
		return fail("unknown", fmt.Sprint(row), "row has fewer fields than the header")
	}

	dateStr := strings.TrimSpace(row[cols.date])
	date, err := parseDate(dateStr)
	if err != nil {
		return fail("date", dateStr, err.Error())
	}
	if !ValidYear(date.Year(), time.Now().Year()) {
		return fail("date", dateStr, fmt.Sprintf("year %d out of plausible range", date.Year()))
	}

	account := strings.TrimSpace(row[cols.account])
	if account == "" {
		return fail("account", "", "empty account number")
	}
	if !ValidAccountCode(account) {
		return fail("account", account, "invalid account code")
	}

	debit, err := ParseAmount(row[cols.debit])
	if err != nil {
		return fail("debit", row[cols.debit], err.Error())
	}
	credit, err := ParseAmount(row[cols.credit])
	if err != nil {
		return fail("credit", row[cols.credit], err.Error())
	}

	return domain.JournalEntry{
		Date:       date,
		AccountNum: account,
		Label:      strings.TrimSpace(row[cols.label]),
		Debit:      debit,
		Credit:     credit,
		SourceYear: p.sourceYear,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// ParseAmount converts a FEC amount string to a decimal, handling the French
// comma decimal separator, "1.234,56" thousands form, and space separators.
// Empty cells are zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return decimal.Zero, nil
	}

	if strings.Contains(cleaned, ",") {
		if strings.Contains(cleaned, ".") {
			// "1.234,56": dot is a thousands separator
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}
