package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TraceEntry is one contributing source line behind an aggregated figure.
type TraceEntry struct {
	Date    time.Time
	Account string
	Label   string
	Amount  decimal.Decimal
}

// TracedValue pairs an aggregated value with the ordered list of entries that
// produced it. Accumulation is append-only: the value always equals the sum
// of the recorded entry amounts.
type TracedValue struct {
	Value   decimal.Decimal
	Entries []TraceEntry
}

// Add accumulates amount and records the contributing entry.
func (t *TracedValue) Add(amount decimal.Decimal, entry TraceEntry) {
	t.Value = t.Value.Add(amount)
	t.Entries = append(t.Entries, entry)
}

// EntryCount returns the number of contributing entries.
func (t *TracedValue) EntryCount() int {
	return len(t.Entries)
}
