package models

// Table identifiers.
const (
	TableIncomeStatement           = "incomeStatement"
	TableBalanceSheet              = "balanceSheet"
	TableCashFlow                  = "cashFlow"
	TableInvestedCapital           = "investedCapital"
	TableNOPAT                     = "nopat"
	TableOperationalPerformance    = "operationalPerformance"
	TableFinancingHealth           = "financingHealth"
	TableIncomeStatementCommonSize = "incomeStatementCommonSize"
	TableBalanceSheetCommonSize    = "balanceSheetCommonSize"
	TableCashFlowCommonSize        = "cashFlowCommonSize"
)

// MetricTables is the scan order used when locating a metric. When two
// tables define the same metric name only the earlier one is visible.
var MetricTables = []string{
	TableIncomeStatement,
	TableBalanceSheet,
	TableCashFlow,
	TableInvestedCapital,
	TableNOPAT,
	TableOperationalPerformance,
	TableFinancingHealth,
	TableIncomeStatementCommonSize,
	TableBalanceSheetCommonSize,
	TableCashFlowCommonSize,
}

// Metric identifies a line item. The constants cover the datasets shipped
// with the service; any other string converts for user-defined metrics.
type Metric string

func (m Metric) String() string { return string(m) }

// Income statement.
const (
	Revenue         Metric = "Revenue"
	CostOfRevenue   Metric = "Cost of Revenue"
	GrossProfit     Metric = "Gross Profit"
	SGA             Metric = "SG&A"
	MembershipFees  Metric = "Membership Fees"
	OperatingIncome Metric = "Operating Income"
	InterestExpense Metric = "Interest Expense"
	IncomeTax       Metric = "Income Tax"
	NetIncome       Metric = "Net Income"
)

// Balance sheet.
const (
	CashAndEquivalents      Metric = "Cash and Equivalents"
	Inventory               Metric = "Inventory"
	TotalCurrentAssets      Metric = "Total Current Assets"
	NetPPE                  Metric = "Net PP&E"
	TotalAssets             Metric = "Total Assets"
	TotalCurrentLiabilities Metric = "Total Current Liabilities"
	TotalDebt               Metric = "Total Debt"
	TotalLiabilities        Metric = "Total Liabilities"
	TotalEquity             Metric = "Total Equity"
)

// Cash flow.
const (
	OperatingCashFlow   Metric = "Operating Cash Flow"
	CapitalExpenditures Metric = "Capital Expenditures"
	FreeCashFlow        Metric = "Free Cash Flow"
	DividendsPaid       Metric = "Dividends Paid"
	ShareRepurchases    Metric = "Share Repurchases"
)

// Invested capital and NOPAT.
const (
	OperatingWorkingCapital Metric = "Operating Working Capital"
	OperatingFixedAssets    Metric = "Operating Fixed Assets"
	InvestedCapital         Metric = "Invested Capital"
	EBITA                   Metric = "EBITA"
	OperatingCashTaxes      Metric = "Operating Cash Taxes"
	NOPAT                   Metric = "NOPAT"
)

// Ratios.
const (
	ROIC               Metric = "ROIC"
	OperatingMargin    Metric = "Operating Margin"
	CapitalTurnover    Metric = "Capital Turnover"
	RevenueGrowth      Metric = "Revenue Growth"
	DebtToEquity       Metric = "Debt to Equity"
	InterestCoverage   Metric = "Interest Coverage"
	NetDebtToEBITDA    Metric = "Net Debt to EBITDA"
	CurrentRatio       Metric = "Current Ratio"
	GrossMargin        Metric = "Gross Margin"
	SGAPctRevenue      Metric = "SG&A % Revenue"
	NetMargin          Metric = "Net Margin"
	CashPctAssets      Metric = "Cash % Assets"
	InventoryPctAssets Metric = "Inventory % Assets"
	DebtPctAssets      Metric = "Debt % Assets"
)

// KnownMetrics groups the shipped metric identifiers by table.
var KnownMetrics = map[string][]Metric{
	TableIncomeStatement:           {Revenue, CostOfRevenue, GrossProfit, SGA, MembershipFees, OperatingIncome, InterestExpense, IncomeTax, NetIncome},
	TableBalanceSheet:              {CashAndEquivalents, Inventory, TotalCurrentAssets, NetPPE, TotalAssets, TotalCurrentLiabilities, TotalDebt, TotalLiabilities, TotalEquity},
	TableCashFlow:                  {OperatingCashFlow, CapitalExpenditures, FreeCashFlow, DividendsPaid, ShareRepurchases},
	TableInvestedCapital:           {OperatingWorkingCapital, OperatingFixedAssets, InvestedCapital},
	TableNOPAT:                     {EBITA, OperatingCashTaxes, NOPAT},
	TableOperationalPerformance:    {ROIC, OperatingMargin, CapitalTurnover, RevenueGrowth},
	TableFinancingHealth:           {DebtToEquity, InterestCoverage, NetDebtToEBITDA, CurrentRatio},
	TableIncomeStatementCommonSize: {GrossMargin, SGAPctRevenue, NetMargin},
	TableBalanceSheetCommonSize:    {CashPctAssets, InventoryPctAssets, DebtPctAssets},
}

// IsKnownMetric reports whether m is one of the shipped identifiers.
func IsKnownMetric(m Metric) bool {
	for _, metrics := range KnownMetrics {
		for _, known := range metrics {
			if known == m {
				return true
			}
		}
	}
	return false
}
