package mapper

// defaultMapping is the built-in PCG prefix table. Engagements with a custom
// chart of accounts override it with a YAML mapping file.
//
// Note the 44xx split: "44" classifies as other_receivables (TVA deductible,
// state receivables) while the more specific 4455/4457 prefixes classify the
// VAT-due accounts as other_payables. Longest prefix wins.
var defaultMapping = map[string]Category{
	// Classe 1 - capitaux
	"10": CategoryEquity,
	"11": CategoryEquity,
	"12": CategoryEquity,
	"13": CategoryEquity,
	"14": CategoryEquity,
	"15": CategoryProvisions,
	"16": CategoryFinancialDebt,
	"17": CategoryFinancialDebt,
	"18": CategoryFinancialDebt,

	// Classe 2 - immobilisations
	"2": CategoryFixedAssets,

	// Classe 3 - stocks
	"3": CategoryInventory,

	// Classe 4 - tiers
	"40":   CategoryPayables,
	"41":   CategoryReceivables,
	"42":   CategoryOtherPayables,
	"43":   CategoryOtherPayables,
	"44":   CategoryOtherReceivables,
	"4455": CategoryOtherPayables,
	"4457": CategoryOtherPayables,
	"45":   CategoryOtherReceivables,
	"46":   CategoryOtherReceivables,
	"47":   CategoryOtherReceivables,
	"48":   CategoryOtherReceivables,
	"49":   CategoryOtherReceivables,

	// Classe 5 - tresorerie
	"5": CategoryCash,

	// Classe 6 - charges
	"60": CategoryPurchases,
	"61": CategoryExternalCharges,
	"62": CategoryExternalCharges,
	"63": CategoryTaxes,
	"64": CategoryPersonnel,
	"65": CategoryOtherCharges,
	"66": CategoryFinancialExpense,
	"67": CategoryExceptionalExpense,
	"68": CategoryDepreciation,
	"69": CategoryIncomeTax,

	// Classe 7 - produits
	"70": CategoryRevenue,
	"74": CategoryOtherRevenue,
	"75": CategoryOtherRevenue,
	"76": CategoryFinancialIncome,
	"77": CategoryExceptionalIncome,
	"78": CategoryOtherRevenue,
	"79": CategoryOtherRevenue,
}
