package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is a single line of a FEC export. Entries are immutable once
// constructed; only the FEC parser creates them.
type JournalEntry struct {
	Date       time.Time
	AccountNum string
	Label      string
	Debit      decimal.Decimal // zero if credit side
	Credit     decimal.Decimal // zero if debit side

	// SourceYear is the fiscal year declared by the originating file
	// (extracted from the FEC filename), independent of Date. Zero when
	// the filename carried no year.
	SourceYear int
}

// Amount returns the net movement (debit - credit).
func (e JournalEntry) Amount() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

// AccountClass returns the first digit of the account number (PCG class).
func (e JournalEntry) AccountClass() string {
	if e.AccountNum == "" {
		return ""
	}
	return e.AccountNum[:1]
}

// FiscalYear is the calendar year of the entry date.
func (e JournalEntry) FiscalYear() int {
	return e.Date.Year()
}

// EffectiveYear is the year used for statement attribution. It prefers the
// declared source year over the entry date: multi-file imports can contain
// year-end adjusting entries dated in the following January that still belong
// to the prior fiscal year.
func (e JournalEntry) EffectiveYear() int {
	if e.SourceYear != 0 {
		return e.SourceYear
	}
	return e.Date.Year()
}

func (e JournalEntry) String() string {
	return fmt.Sprintf("JournalEntry(%s, %s, %s)", e.Date.Format("2006-01-02"), e.AccountNum, e.Amount())
}
