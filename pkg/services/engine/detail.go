package engine

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dd-tools/databook/pkg/models/domain"
	"github.com/dd-tools/databook/pkg/services/mapper"
)

// UnclassifiedLabel marks accounts with no configured prefix in detail
// views. Such accounts never reach statement totals but stay visible for
// audit review.
const UnclassifiedLabel = "Non classé"

// DetailBuilder exposes the classifier's aggregation at account grain,
// directly against raw entries.
type DetailBuilder struct {
	mapper *mapper.AccountMapper
}

// NewDetailBuilder creates a DetailBuilder.
func NewDetailBuilder(m *mapper.AccountMapper) *DetailBuilder {
	return &DetailBuilder{mapper: m}
}

// AccountSummaryLine is one account's aggregated movements for a year.
type AccountSummaryLine struct {
	Account  string
	Label    string
	Category string
	Debit    decimal.Decimal
	Credit   decimal.Decimal
	Balance  decimal.Decimal
}

type accountAgg struct {
	debit  decimal.Decimal
	credit decimal.Decimal
	label  string
}

func (a *accountAgg) add(e domain.JournalEntry) {
	a.debit = a.debit.Add(e.Debit)
	a.credit = a.credit.Add(e.Credit)
	if a.label == "" {
		a.label = e.Label
	}
}

func (b *DetailBuilder) categoryLabel(account string) string {
	if c := b.mapper.Classify(account); c != "" {
		return string(c)
	}
	return UnclassifiedLabel
}

// BuildAccountSummary aggregates movements per account per fiscal year.
func (b *DetailBuilder) BuildAccountSummary(entries []domain.JournalEntry) map[int][]AccountSummaryLine {
	aggregated := make(map[int]map[string]*accountAgg)
	for _, entry := range entries {
		year := entry.FiscalYear()
		accounts := aggregated[year]
		if accounts == nil {
			accounts = make(map[string]*accountAgg)
			aggregated[year] = accounts
		}
		agg := accounts[entry.AccountNum]
		if agg == nil {
			agg = &accountAgg{}
			accounts[entry.AccountNum] = agg
		}
		agg.add(entry)
	}

	result := make(map[int][]AccountSummaryLine, len(aggregated))
	for year, accounts := range aggregated {
		lines := make([]AccountSummaryLine, 0, len(accounts))
		for _, account := range sortedAccountKeys(accounts) {
			agg := accounts[account]
			lines = append(lines, AccountSummaryLine{
				Account:  account,
				Label:    agg.label,
				Category: b.categoryLabel(account),
				Debit:    agg.debit,
				Credit:   agg.credit,
				Balance:  agg.debit.Sub(agg.credit),
			})
		}
		result[year] = lines
	}
	return result
}

// TopAccount is one account ranked by signed amount or volume.
type TopAccount struct {
	Account     string
	Label       string
	Amount      decimal.Decimal
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Volume      decimal.Decimal
	Category    string
}

// AccountType selects the PCG class for top-account rankings.
type AccountType string

const (
	AccountTypeExpense AccountType = "expense" // classe 6
	AccountTypeRevenue AccountType = "revenue" // classe 7
)

// BuildTopAccounts ranks the year's class 6 or 7 accounts by absolute
// aggregated amount, largest first, truncated to topN.
func (b *DetailBuilder) BuildTopAccounts(entries []domain.JournalEntry, year int, accountType AccountType, topN int) []TopAccount {
	classPrefix := "6"
	if accountType == AccountTypeRevenue {
		classPrefix = "7"
	}

	totals := make(map[string]*accountAgg)
	for _, entry := range entries {
		if entry.FiscalYear() != year || entry.AccountClass() != classPrefix {
			continue
		}
		agg := totals[entry.AccountNum]
		if agg == nil {
			agg = &accountAgg{}
			totals[entry.AccountNum] = agg
		}
		agg.add(entry)
	}

	ranked := make([]TopAccount, 0, len(totals))
	for account, agg := range totals {
		amount := agg.debit.Sub(agg.credit)
		if accountType == AccountTypeRevenue {
			amount = agg.credit.Sub(agg.debit)
		}
		ranked = append(ranked, TopAccount{
			Account:  account,
			Label:    agg.label,
			Amount:   amount,
			Category: b.categoryLabel(account),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		ai, aj := ranked[i].Amount.Abs(), ranked[j].Amount.Abs()
		if !ai.Equal(aj) {
			return ai.GreaterThan(aj)
		}
		return ranked[i].Account < ranked[j].Account
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// BuildTopAccountsAllYears ranks accounts across all years by total
// |debit|+|credit| volume, largest first, truncated to topN.
func (b *DetailBuilder) BuildTopAccountsAllYears(entries []domain.JournalEntry, topN int) []TopAccount {
	totals := make(map[string]*accountAgg)
	for _, entry := range entries {
		agg := totals[entry.AccountNum]
		if agg == nil {
			agg = &accountAgg{}
			totals[entry.AccountNum] = agg
		}
		agg.add(entry)
	}

	ranked := make([]TopAccount, 0, len(totals))
	for account, agg := range totals {
		ranked = append(ranked, TopAccount{
			Account:     account,
			Label:       agg.label,
			TotalDebit:  agg.debit,
			TotalCredit: agg.credit,
			Volume:      agg.debit.Add(agg.credit),
			Category:    b.categoryLabel(account),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if !ranked[i].Volume.Equal(ranked[j].Volume) {
			return ranked[i].Volume.GreaterThan(ranked[j].Volume)
		}
		return ranked[i].Account < ranked[j].Account
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// CategoryBreakdown aggregates a year's movements per category.
type CategoryBreakdown struct {
	Total    decimal.Decimal
	Count    int
	Accounts []string
}

// BuildCategoryBreakdown aggregates the year's classified entries per
// category with the contributing account list. Sign follows the account
// class: 6 debit-positive, 7 credit-positive, balance classes raw
// debit-credit.
func (b *DetailBuilder) BuildCategoryBreakdown(entries []domain.JournalEntry, year int) map[string]CategoryBreakdown {
	type agg struct {
		total    decimal.Decimal
		count    int
		accounts map[string]bool
	}
	categories := make(map[string]*agg)

	for _, entry := range entries {
		if entry.FiscalYear() != year {
			continue
		}
		category := b.mapper.Classify(entry.AccountNum)
		if category == "" {
			continue
		}

		var amount decimal.Decimal
		switch entry.AccountClass() {
		case "7":
			amount = entry.Credit.Sub(entry.Debit)
		default:
			amount = entry.Debit.Sub(entry.Credit)
		}

		a := categories[string(category)]
		if a == nil {
			a = &agg{accounts: make(map[string]bool)}
			categories[string(category)] = a
		}
		a.total = a.total.Add(amount)
		a.count++
		a.accounts[entry.AccountNum] = true
	}

	result := make(map[string]CategoryBreakdown, len(categories))
	for category, a := range categories {
		accounts := make([]string, 0, len(a.accounts))
		for account := range a.accounts {
			accounts = append(accounts, account)
		}
		sort.Strings(accounts)
		result[category] = CategoryBreakdown{Total: a.total, Count: a.count, Accounts: accounts}
	}
	return result
}

// VolumeBreakdown is a category's raw debit/credit totals across all years.
type VolumeBreakdown struct {
	Debit   decimal.Decimal
	Credit  decimal.Decimal
	Balance decimal.Decimal
}

// BuildCategoryBreakdownAllYears aggregates raw debit/credit volume per
// category over the whole entry set.
func (b *DetailBuilder) BuildCategoryBreakdownAllYears(entries []domain.JournalEntry) map[string]VolumeBreakdown {
	type agg struct{ debit, credit decimal.Decimal }
	categories := make(map[string]*agg)

	for _, entry := range entries {
		category := b.mapper.Classify(entry.AccountNum)
		if category == "" {
			continue
		}
		a := categories[string(category)]
		if a == nil {
			a = &agg{}
			categories[string(category)] = a
		}
		a.debit = a.debit.Add(entry.Debit)
		a.credit = a.credit.Add(entry.Credit)
	}

	result := make(map[string]VolumeBreakdown, len(categories))
	for category, a := range categories {
		result[category] = VolumeBreakdown{
			Debit:   a.debit,
			Credit:  a.credit,
			Balance: a.debit.Sub(a.credit),
		}
	}
	return result
}

// AccountDetail is one account line under a category grouping.
type AccountDetail struct {
	Account string
	Label   string
	Amount  decimal.Decimal
}

// CategoryDetail groups account lines under a statement category with its
// subtotal. Section rows carry no accounts.
type CategoryDetail struct {
	CategoryLabel string
	Category      string
	Total         decimal.Decimal
	Accounts      []AccountDetail
	IsSection     bool
}

var creditPositivePLCategories = map[mapper.Category]bool{
	mapper.CategoryRevenue:           true,
	mapper.CategoryOtherRevenue:      true,
	mapper.CategoryFinancialIncome:   true,
	mapper.CategoryExceptionalIncome: true,
}

// BuildPLDetail groups the year's P&L accounts under their categories in
// statement order, with category subtotals. Period semantics: fiscal-year
// equality.
func (b *DetailBuilder) BuildPLDetail(entries []domain.JournalEntry, year int) []CategoryDetail {
	accountData := make(map[mapper.Category]map[string]*accountAgg)
	for _, entry := range entries {
		if entry.FiscalYear() != year {
			continue
		}
		category := b.mapper.PLCategory(entry.AccountNum)
		if category == "" {
			continue
		}
		accounts := accountData[category]
		if accounts == nil {
			accounts = make(map[string]*accountAgg)
			accountData[category] = accounts
		}
		agg := accounts[entry.AccountNum]
		if agg == nil {
			agg = &accountAgg{}
			accounts[entry.AccountNum] = agg
		}
		agg.add(entry)
	}

	result := make([]CategoryDetail, 0, len(PLCategoryLines))
	for _, line := range PLCategoryLines {
		detail := CategoryDetail{CategoryLabel: line.Label, Category: string(line.Category)}
		for _, account := range sortedAccountKeys(accountData[line.Category]) {
			agg := accountData[line.Category][account]
			amount := agg.debit.Sub(agg.credit)
			if creditPositivePLCategories[line.Category] {
				amount = agg.credit.Sub(agg.debit)
			}
			detail.Total = detail.Total.Add(amount)
			detail.Accounts = append(detail.Accounts, AccountDetail{
				Account: account,
				Label:   agg.label,
				Amount:  amount,
			})
		}
		result = append(result, detail)
	}
	return result
}

// BuildBalanceDetail groups cumulated balance accounts under their
// categories in statement order. Cumulative semantics: effective year <=
// year, matching the balance builder.
func (b *DetailBuilder) BuildBalanceDetail(entries []domain.JournalEntry, year int) []CategoryDetail {
	accountData := make(map[mapper.Category]map[string]*accountAgg)
	for _, entry := range entries {
		if entry.EffectiveYear() > year {
			continue
		}
		category := b.mapper.BalanceCategory(entry.AccountNum)
		if category == "" {
			continue
		}
		accounts := accountData[category]
		if accounts == nil {
			accounts = make(map[string]*accountAgg)
			accountData[category] = accounts
		}
		agg := accounts[entry.AccountNum]
		if agg == nil {
			agg = &accountAgg{}
			accounts[entry.AccountNum] = agg
		}
		agg.add(entry)
	}

	result := make([]CategoryDetail, 0, len(BalanceCategoryLines))
	for _, line := range BalanceCategoryLines {
		if line.IsSection {
			result = append(result, CategoryDetail{CategoryLabel: line.Label, IsSection: true})
			continue
		}

		detail := CategoryDetail{CategoryLabel: line.Label, Category: string(line.Category)}
		for _, account := range sortedAccountKeys(accountData[line.Category]) {
			agg := accountData[line.Category][account]
			amount := agg.debit.Sub(agg.credit)
			if !b.mapper.IsDebitPositive(account) {
				amount = agg.credit.Sub(agg.debit)
			}
			detail.Total = detail.Total.Add(amount)
			detail.Accounts = append(detail.Accounts, AccountDetail{
				Account: account,
				Label:   agg.label,
				Amount:  amount,
			})
		}
		result = append(result, detail)
	}
	return result
}

// JournalLine is one extracted entry for review.
type JournalLine struct {
	Date     string
	Account  string
	Label    string
	Debit    decimal.Decimal
	Credit   decimal.Decimal
	Category string
}

// BuildJournalExtract returns the year's entries sorted by date, optionally
// filtered by account prefix, truncated to limit.
func (b *DetailBuilder) BuildJournalExtract(entries []domain.JournalEntry, year int, accountFilter string, limit int) []JournalLine {
	var filtered []domain.JournalEntry
	for _, entry := range entries {
		if entry.FiscalYear() != year {
			continue
		}
		if accountFilter != "" && !strings.HasPrefix(entry.AccountNum, accountFilter) {
			continue
		}
		filtered = append(filtered, entry)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date.Before(filtered[j].Date)
	})
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	lines := make([]JournalLine, 0, len(filtered))
	for _, entry := range filtered {
		lines = append(lines, JournalLine{
			Date:     entry.Date.Format("02/01/2006"),
			Account:  entry.AccountNum,
			Label:    entry.Label,
			Debit:    entry.Debit,
			Credit:   entry.Credit,
			Category: b.categoryLabel(entry.AccountNum),
		})
	}
	return lines
}

func sortedAccountKeys(m map[string]*accountAgg) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
