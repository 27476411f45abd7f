package engine

import "github.com/dd-tools/databook/pkg/services/mapper"

// Shared report line schemas. Exporters and detail views bind to these so
// every surface renders statements in the same order with the same French
// labels.

// LineType distinguishes data rows from section headers and spacing.
type LineType string

const (
	LineData    LineType = "data"
	LineSection LineType = "section"
	LineSpacer  LineType = "spacer"
)

// ReportLine is one row of a rendered statement. Metric is a name resolvable
// through PLMetric / balance accessors; empty for sections and spacers.
type ReportLine struct {
	Label   string
	Metric  string
	IsTotal bool
	Type    LineType
}

// CategoryLine groups account detail under a statement category.
type CategoryLine struct {
	Label     string
	Category  mapper.Category
	IsSection bool
}

// PLReportLines is the income-statement layout.
var PLReportLines = []ReportLine{
	{Label: "Chiffre d'affaires", Metric: "revenue", Type: LineData},
	{Label: "Autres produits", Metric: "other_revenue", Type: LineData},
	{Label: "Production", Metric: "production", IsTotal: true, Type: LineData},
	{Type: LineSpacer},
	{Label: "Achats", Metric: "purchases", Type: LineData},
	{Label: "Charges externes", Metric: "external_charges", Type: LineData},
	{Label: "Impôts et taxes", Metric: "taxes", Type: LineData},
	{Label: "Charges de personnel", Metric: "personnel", Type: LineData},
	{Label: "Autres charges", Metric: "other_charges", Type: LineData},
	{Label: "Total charges", Metric: "total_charges", IsTotal: true, Type: LineData},
	{Type: LineSpacer},
	{Label: "EBITDA", Metric: "ebitda", IsTotal: true, Type: LineData},
	{Label: "Marge EBITDA (%)", Metric: "ebitda_margin", IsTotal: true, Type: LineData},
	{Type: LineSpacer},
	{Label: "Dotations aux amortissements", Metric: "depreciation", Type: LineData},
	{Label: "EBIT", Metric: "ebit", IsTotal: true, Type: LineData},
	{Type: LineSpacer},
	{Label: "Résultat financier", Metric: "financial_result", Type: LineData},
	{Label: "Résultat exceptionnel", Metric: "exceptional_result", Type: LineData},
	{Label: "Impôt sur les sociétés", Metric: "income_tax", Type: LineData},
	{Type: LineSpacer},
	{Label: "Résultat Net", Metric: "net_income", IsTotal: true, Type: LineData},
}

// BalanceReportLines is the balance-sheet layout.
var BalanceReportLines = []ReportLine{
	{Label: "ACTIF", Type: LineSection},
	{Label: "Immobilisations nettes", Metric: "fixed_assets", Type: LineData},
	{Label: "Stocks", Metric: "inventory", Type: LineData},
	{Label: "Créances clients", Metric: "receivables", Type: LineData},
	{Label: "Autres créances", Metric: "other_receivables", Type: LineData},
	{Label: "Trésorerie", Metric: "cash", Type: LineData},
	{Label: "Total Actif", Metric: "total_assets", IsTotal: true, Type: LineData},
	{Type: LineSpacer},
	{Label: "PASSIF", Type: LineSection},
	{Label: "Capitaux propres", Metric: "equity", Type: LineData},
	{Label: "Provisions", Metric: "provisions", Type: LineData},
	{Label: "Dettes financières", Metric: "financial_debt", Type: LineData},
	{Label: "Dettes fournisseurs", Metric: "payables", Type: LineData},
	{Label: "Autres dettes", Metric: "other_payables", Type: LineData},
	{Label: "Total Passif", Metric: "total_liabilities", IsTotal: true, Type: LineData},
}

// PLCategoryLines drive the P&L detail grouping.
var PLCategoryLines = []CategoryLine{
	{Label: "Chiffre d'affaires", Category: mapper.CategoryRevenue},
	{Label: "Autres produits", Category: mapper.CategoryOtherRevenue},
	{Label: "Achats", Category: mapper.CategoryPurchases},
	{Label: "Charges externes", Category: mapper.CategoryExternalCharges},
	{Label: "Impôts et taxes", Category: mapper.CategoryTaxes},
	{Label: "Charges de personnel", Category: mapper.CategoryPersonnel},
	{Label: "Autres charges", Category: mapper.CategoryOtherCharges},
	{Label: "Dotations aux amortissements", Category: mapper.CategoryDepreciation},
	{Label: "Charges financières", Category: mapper.CategoryFinancialExpense},
	{Label: "Produits financiers", Category: mapper.CategoryFinancialIncome},
	{Label: "Charges exceptionnelles", Category: mapper.CategoryExceptionalExpense},
	{Label: "Produits exceptionnels", Category: mapper.CategoryExceptionalIncome},
}

// BalanceCategoryLines drive the balance detail grouping.
var BalanceCategoryLines = []CategoryLine{
	{Label: "ACTIF", IsSection: true},
	{Label: "Immobilisations", Category: mapper.CategoryFixedAssets},
	{Label: "Stocks", Category: mapper.CategoryInventory},
	{Label: "Créances clients", Category: mapper.CategoryReceivables},
	{Label: "Autres créances", Category: mapper.CategoryOtherReceivables},
	{Label: "Trésorerie", Category: mapper.CategoryCash},
	{Label: "PASSIF", IsSection: true},
	{Label: "Capitaux propres", Category: mapper.CategoryEquity},
	{Label: "Provisions", Category: mapper.CategoryProvisions},
	{Label: "Dettes financières", Category: mapper.CategoryFinancialDebt},
	{Label: "Dettes fournisseurs", Category: mapper.CategoryPayables},
	{Label: "Autres dettes", Category: mapper.CategoryOtherPayables},
}
