// Package mapper holds the static table mapping raw XBRL tags to the
// engine's canonical standard fields. The table is append-only by
// convention: new tags for a field are added at the end of its mapping
// list, never reordered, so Priority stays stable across releases.
package mapper

import "github.com/sells-group/pit-fundamentals/internal/model"

// Table is the ordered list of every tag mapping the engine knows about.
// It is grouped by field once, at package init (see byField).
var Table = []model.TagMapping{
	// Revenue
	{Field: model.FieldRevenue, Tag: "us-gaap:Revenues", Priority: 0, ExpectedPeriod: model.PeriodDuration},
	{Field: model.FieldRevenue, Tag: "us-gaap:RevenueFromContractWithCustomerExcludingAssessedTax", Priority: 1, ExpectedPeriod: model.PeriodDuration},
	{Field: model.FieldRevenue, Tag: "us-gaap:RevenueFromContractWithCustomerIncludingAssessedTax", Priority: 2, ExpectedPeriod: model.PeriodDuration},
	{Field: model.FieldRevenue, Tag: "us-gaap:SalesRevenueNet", Priority: 3, ExpectedPeriod: model.PeriodDuration},

	// Cost of revenue / gross profit
	{Field: model.FieldCostOfRevenue, Tag: "us-gaap:CostOfRevenue", Priority: 0, ExpectedPeriod: model.PeriodDuration},
	{Field: model.FieldCostOfRevenue, Tag: "us-gaap:CostOfGoodsAndServicesSold", Priority: 1, ExpectedPeriod: model.PeriodDuration},
	{Field: model.FieldGrossProfit, Tag: "us-gaap:GrossProfit", Priority: 0, ExpectedPeriod: model.PeriodDuration},

	// Operating expenses
	{Field: model.FieldSGAExpense, Tag: "us-gaap:SellingGeneralAndAdministrativeExpense", Priority: 0, ExpectedPeriod: model.PeriodDuration},
	{Field: model.FieldRAndDExpense, Tag: "us-gaap:ResearchAndDevelopmentExpense", Priority: 0, ExpectedPeriod: model.PeriodDuration},
	{Field: model.FieldOperatingIncome, Tag: "us-gaap:OperatingIncomeLoss", Priority: 0, ExpectedPeriod: model.PeriodDuration},

	// Below the line
	{Field: model.FieldInterestExpense, Tag: "us-gaap:InterestExpense", Priority: 0, ExpectedPeriod: model.PeriodDuration},
	{Field: model.FieldInterestExpense, Tag: "us-gaap:InterestExpenseDebt", Priority: 1, ExpectedPeriod: model.PeriodDuration},
	{Field: model.FieldIncomeTaxExpense, Tag: "us-gaap:IncomeTaxExpenseBenefit", Priority: 0, ExpectedPeriod: model.PeriodDuration},
	{Field: model.FieldNetIncome, Tag: "us-gaap:NetIncomeLoss", Priority: 0, ExpectedPeriod: model.PeriodDuration},
	{Field: model.FieldNetIncome, Tag: "us-gaap:ProfitLoss", Priority: 1, ExpectedPeriod: model.PeriodDuration},

	// Shares / EPS
	{Field: model.FieldDilutedSharesOutstanding, Tag: "us-gaap:WeightedAverageNumberOfDilutedSharesOutstanding", Priority: 0, ExpectedPeriod: model.PeriodDuration},
	{Field: model.FieldBasicSharesOutstanding, Tag: "us-gaap:WeightedAverageNumberOfSharesOutstandingBasic", Priority: 0, ExpectedPeriod: model.PeriodDuration},
	{Field: model.FieldDilutedEPS, Tag: "us-gaap:EarningsPerShareDiluted", Priority: 0, ExpectedPeriod: model.PeriodDuration},
	{Field: model.FieldDilutedEPS, Tag: "us-gaap:EarningsPerShareBasicAndDiluted", Priority: 1, ExpectedPeriod: model.PeriodDuration},

	// Balance sheet
	{Field: model.FieldTotalAssets, Tag: "us-gaap:Assets", Priority: 0, ExpectedPeriod: model.PeriodInstant},
	{Field: model.FieldTotalCurrentAssets, Tag: "us-gaap:AssetsCurrent", Priority: 0, ExpectedPeriod: model.PeriodInstant},
	{Field: model.FieldTotalLiabilities, Tag: "us-gaap:Liabilities", Priority: 0, ExpectedPeriod: model.PeriodInstant},
	{Field: model.FieldTotalCurrentLiabilities, Tag: "us-gaap:LiabilitiesCurrent", Priority: 0, ExpectedPeriod: model.PeriodInstant},
	{Field: model.FieldTotalEquity, Tag: "us-gaap:StockholdersEquity", Priority: 0, ExpectedPeriod: model.PeriodInstant},
	{Field: model.FieldTotalEquity, Tag: "us-gaap:StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest", Priority: 1, ExpectedPeriod: model.PeriodInstant},
	{Field: model.FieldCashAndEquivalents, Tag: "us-gaap:CashAndCashEquivalentsAtCarryingValue", Priority: 0, ExpectedPeriod: model.PeriodInstant},
	{Field: model.FieldCashAndEquivalents, Tag: "us-gaap:CashCashEquivalentsRestrictedCashAndRestrictedCashEquivalents", Priority: 1, ExpectedPeriod: model.PeriodInstant},
	{Field: model.FieldGoodwill, Tag: "us-gaap:Goodwill", Priority: 0, ExpectedPeriod: model.PeriodInstant},
	{Field: model.FieldRetainedEarnings, Tag: "us-gaap:RetainedEarningsAccumulatedDeficit", Priority: 0, ExpectedPeriod: model.PeriodInstant},
	{Field: model.FieldAccountsReceivable, Tag: "us-gaap:AccountsReceivableNetCurrent", Priority: 0, ExpectedPeriod: model.PeriodInstant},
	{Field: model.FieldInventory, Tag: "us-gaap:InventoryNet", Priority: 0, ExpectedPeriod: model.PeriodInstant},
	{Field: model.FieldLongTermDebt, Tag: "us-gaap:LongTermDebtNoncurrent", Priority: 0, ExpectedPeriod: model.PeriodInstant},
	{Field: model.FieldLongTermDebt, Tag: "us-gaap:LongTermDebt", Priority: 1, ExpectedPeriod: model.PeriodInstant},
	{Field: model.FieldShortTermDebt, Tag: "us-gaap:LongTermDebtCurrent", Priority: 0, ExpectedPeriod: model.PeriodInstant},
	{Field: model.FieldShortTermDebt, Tag: "us-gaap:ShortTermBorrowings", Priority: 1, ExpectedPeriod: model.PeriodInstant},

	// Cashflow statement
	{Field: model.FieldCashFromOperations, Tag: "us-gaap:NetCashProvidedByUsedInOperatingActivities", Priority: 0, ExpectedPeriod: model.PeriodDuration},
	{Field: model.FieldCashFromInvesting, Tag: "us-gaap:NetCashProvidedByUsedInInvestingActivities", Priority: 0, ExpectedPeriod: model.PeriodDuration},
	{Field: model.FieldCashFromFinancing, Tag: "us-gaap:NetCashProvidedByUsedInFinancingActivities", Priority: 0, ExpectedPeriod: model.PeriodDuration},
	{Field: model.FieldCapex, Tag: "us-gaap:PaymentsToAcquirePropertyPlantAndEquipment", Priority: 0, SignFlip: true, ExpectedPeriod: model.PeriodDuration},
	{Field: model.FieldDepreciationAmort, Tag: "us-gaap:DepreciationDepletionAndAmortization", Priority: 0, ExpectedPeriod: model.PeriodDuration},
	{Field: model.FieldDepreciationAmort, Tag: "us-gaap:DepreciationAmortizationAndAccretionNet", Priority: 1, ExpectedPeriod: model.PeriodDuration},
	{Field: model.FieldDividendsPaid, Tag: "us-gaap:PaymentsOfDividendsCommonStock", Priority: 0, SignFlip: true, ExpectedPeriod: model.PeriodDuration},
	{Field: model.FieldDividendsPaid, Tag: "us-gaap:PaymentsOfDividends", Priority: 1, SignFlip: true, ExpectedPeriod: model.PeriodDuration},
	{Field: model.FieldStockBasedComp, Tag: "us-gaap:ShareBasedCompensation", Priority: 0, ExpectedPeriod: model.PeriodDuration},
}

// byField groups Table by StandardField, built once at package init and
// kept in append order within each group.
var byField = func() map[model.StandardField][]model.TagMapping {
	out := make(map[model.StandardField][]model.TagMapping)
	for _, m := range Table {
		out[m.Field] = append(out[m.Field], m)
	}
	return out
}()

// byTag is the reverse index: raw tag -> the single mapping describing how
// that tag contributes to a standard field.
var byTag = func() map[string]model.TagMapping {
	out := make(map[string]model.TagMapping)
	for _, m := range Table {
		out[m.Tag] = m
	}
	return out
}()

// MappingsFor returns every tag mapping for field, in priority order
// (lowest Priority first).
func MappingsFor(field model.StandardField) []model.TagMapping {
	return byField[field]
}

// FieldForTag returns the mapping that owns tag, if any.
func FieldForTag(tag string) (model.TagMapping, bool) {
	m, ok := byTag[tag]
	return m, ok
}
