package fec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dd-tools/databook/pkg/models/domain"
)

// DefaultTrialBalanceTolerance absorbs rounding differences when comparing
// yearly debit and credit totals.
var DefaultTrialBalanceTolerance = decimal.RequireFromString("0.01")

// TrialBalanceWarning reports a year whose debits and credits diverge beyond
// tolerance. A warning never blocks statement construction; due-diligence
// work proceeds and surfaces the anomaly.
type TrialBalanceWarning struct {
	Year       int
	DebitSum   decimal.Decimal
	CreditSum  decimal.Decimal
	Difference decimal.Decimal
}

func (w TrialBalanceWarning) String() string {
	return fmt.Sprintf("trial balance FY%d off by %s (debits %s, credits %s)",
		w.Year, w.Difference, w.DebitSum, w.CreditSum)
}

// CheckTrialBalance compares debit and credit totals per effective year and
// returns one warning per unbalanced year, ascending.
func CheckTrialBalance(entries []domain.JournalEntry, tolerance decimal.Decimal) []TrialBalanceWarning {
	type sums struct{ debit, credit decimal.Decimal }
	byYear := make(map[int]*sums)
	for _, entry := range entries {
		year := entry.EffectiveYear()
		s := byYear[year]
		if s == nil {
			s = &sums{}
			byYear[year] = s
		}
		s.debit = s.debit.Add(entry.Debit)
		s.credit = s.credit.Add(entry.Credit)
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	var warnings []TrialBalanceWarning
	for _, year := range years {
		s := byYear[year]
		diff := s.debit.Sub(s.credit)
		if diff.Abs().GreaterThan(tolerance) {
			warnings = append(warnings, TrialBalanceWarning{
				Year:       year,
				DebitSum:   s.debit,
				CreditSum:  s.credit,
				Difference: diff,
			})
		}
	}
	return warnings
}

// ValidAccountCode reports whether s is a plausible PCG account code: 1 to 8
// digits, first digit a class between 1 and 7.
func ValidAccountCode(s string) bool {
	if len(s) < 1 || len(s) > 8 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s[0] >= '1' && s[0] <= '7'
}

// ValidYear bounds fiscal years to a sane range for FEC data.
func ValidYear(year, currentYear int) bool {
	return year >= 1900 && year <= currentYear+1
}

// ValidVATRate bounds gross-up multipliers to plausible European rates.
func ValidVATRate(rate decimal.Decimal) bool {
	return rate.GreaterThanOrEqual(decimal.RequireFromString("0.5")) &&
		rate.LessThanOrEqual(decimal.NewFromInt(2))
}

// SanitizeFilename strips directory components and characters that are
// unsafe in stored upload names.
func SanitizeFilename(name string) string {
	// Drop any path component, whichever separator the client used.
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '|', '?', '*':
			return -1
		}
		return r
	}, name)
	return strings.TrimLeft(name, ".")
}
