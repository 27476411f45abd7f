package mapper

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Category is a financial-statement classification for an account prefix.
type Category string

// P&L categories (classes 6 and 7).
const (
	CategoryRevenue            Category = "revenue"
	CategoryOtherRevenue       Category = "other_revenue"
	CategoryPurchases          Category = "purchases"
	CategoryExternalCharges    Category = "external_charges"
	CategoryTaxes              Category = "taxes"
	CategoryPersonnel          Category = "personnel"
	CategoryOtherCharges       Category = "other_charges"
	CategoryDepreciation       Category = "depreciation"
	CategoryFinancialIncome    Category = "financial_income"
	CategoryFinancialExpense   Category = "financial_expense"
	CategoryExceptionalIncome  Category = "exceptional_income"
	CategoryExceptionalExpense Category = "exceptional_expense"
	CategoryIncomeTax          Category = "income_tax"
)

// Balance categories (classes 1 to 5).
const (
	CategoryFixedAssets      Category = "fixed_assets"
	CategoryInventory        Category = "inventory"
	CategoryReceivables      Category = "receivables"
	CategoryOtherReceivables Category = "other_receivables"
	CategoryCash             Category = "cash"
	CategoryEquity           Category = "equity"
	CategoryProvisions       Category = "provisions"
	CategoryFinancialDebt    Category = "financial_debt"
	CategoryPayables         Category = "payables"
	CategoryOtherPayables    Category = "other_payables"
)

var plCategories = map[Category]bool{
	CategoryRevenue:            true,
	CategoryOtherRevenue:       true,
	CategoryPurchases:          true,
	CategoryExternalCharges:    true,
	CategoryTaxes:              true,
	CategoryPersonnel:          true,
	CategoryOtherCharges:       true,
	CategoryDepreciation:       true,
	CategoryFinancialIncome:    true,
	CategoryFinancialExpense:   true,
	CategoryExceptionalIncome:  true,
	CategoryExceptionalExpense: true,
	CategoryIncomeTax:          true,
}

var assetCategories = map[Category]bool{
	CategoryFixedAssets:      true,
	CategoryInventory:        true,
	CategoryReceivables:      true,
	CategoryOtherReceivables: true,
	CategoryCash:             true,
}

var liabilityCategories = map[Category]bool{
	CategoryEquity:        true,
	CategoryProvisions:    true,
	CategoryFinancialDebt: true,
	CategoryPayables:      true,
	CategoryOtherPayables: true,
}

// IsPLCategory reports whether c belongs to the income statement.
func IsPLCategory(c Category) bool { return plCategories[c] }

// IsBalanceCategory reports whether c belongs to the balance sheet.
func IsBalanceCategory(c Category) bool {
	return assetCategories[c] || liabilityCategories[c]
}

// AccountMapper maps PCG account numbers to statement categories via
// longest-prefix match. Immutable after construction.
type AccountMapper struct {
	mapping map[string]Category
}

// NewDefault returns a mapper loaded with the built-in PCG table.
func NewDefault() *AccountMapper {
	m := make(map[string]Category, len(defaultMapping))
	for prefix, category := range defaultMapping {
		m[prefix] = category
	}
	return &AccountMapper{mapping: m}
}

// NewFromTable builds a mapper from an explicit prefix table. Prefixes must
// be non-empty digit strings and categories must belong to the fixed
// vocabulary; anything else is a configuration error.
func NewFromTable(table map[string]Category) (*AccountMapper, error) {
	m := make(map[string]Category, len(table))
	for prefix, category := range table {
		prefix = strings.TrimSpace(prefix)
		if prefix == "" {
			return nil, fmt.Errorf("empty account prefix for category %q", category)
		}
		for _, r := range prefix {
			if r < '0' || r > '9' {
				return nil, fmt.Errorf("invalid account prefix %q: digits only", prefix)
			}
		}
		if !IsPLCategory(category) && !IsBalanceCategory(category) {
			return nil, fmt.Errorf("unknown category %q for prefix %q", category, prefix)
		}
		m[prefix] = category
	}
	return &AccountMapper{mapping: m}, nil
}

// LoadFile reads a mapping override file (YAML, category -> list of
// prefixes) and returns the resulting mapper.
func LoadFile(path string) (*AccountMapper, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}

	table := make(map[string]Category)
	for _, key := range v.AllKeys() {
		category := Category(key)
		for _, prefix := range v.GetStringSlice(key) {
			table[prefix] = category
		}
	}
	return NewFromTable(table)
}

// Classify returns the category whose prefix is the longest string-prefix of
// accountNum, or "" when no configured prefix matches.
func (m *AccountMapper) Classify(accountNum string) Category {
	account := strings.TrimSpace(accountNum)

	var best Category
	bestLen := 0
	for prefix, category := range m.mapping {
		if len(prefix) > bestLen && strings.HasPrefix(account, prefix) {
			best = category
			bestLen = len(prefix)
		}
	}
	return best
}

// PLCategory returns the P&L category for the account, or "" when the
// account does not classify into the income statement.
func (m *AccountMapper) PLCategory(accountNum string) Category {
	if c := m.Classify(accountNum); IsPLCategory(c) {
		return c
	}
	return ""
}

// BalanceCategory returns the balance-sheet category for the account, or ""
// when the account does not classify into the balance sheet.
func (m *AccountMapper) BalanceCategory(accountNum string) Category {
	if c := m.Classify(accountNum); IsBalanceCategory(c) {
		return c
	}
	return ""
}

// IsDebitPositive reports whether a debit increases the account's reported
// value. Recognized balance categories use their fixed convention; anything
// else falls back to the class-digit heuristic (classes 2-6 debit-positive,
// classes 1 and 7 credit-positive).
func (m *AccountMapper) IsDebitPositive(accountNum string) bool {
	account := strings.TrimSpace(accountNum)
	if account == "" {
		return true
	}

	if c := m.BalanceCategory(account); c != "" {
		if assetCategories[c] {
			return true
		}
		return false
	}

	switch account[0] {
	case '2', '3', '4', '5', '6':
		return true
	default:
		return false
	}
}

// Size returns the number of configured prefixes.
func (m *AccountMapper) Size() int { return len(m.mapping) }
