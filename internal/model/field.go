package model

// Statement identifies which of the three primary financial statements a
// StandardField belongs to, plus the synthetic "derived" statement for
// computed metrics that have no single XBRL tag.
type Statement string

const (
	StatementIncome   Statement = "income"
	StatementBalance  Statement = "balance"
	StatementCashflow Statement = "cashflow"
	StatementDerived  Statement = "derived"
)

// StandardField is one canonical, statement-agnostic line item the Tag
// Mapper resolves from one or more raw XBRL tags. The set is closed: adding
// a field means adding both the constant here and its TagMapping entries.
type StandardField string

const (
	// Income statement.
	FieldRevenue                    StandardField = "revenue"
	FieldCostOfRevenue              StandardField = "cost_of_revenue"
	FieldGrossProfit                StandardField = "gross_profit"
	FieldSGAExpense                 StandardField = "sga_expense"
	FieldRAndDExpense               StandardField = "r_and_d_expense"
	FieldOperatingIncome             StandardField = "operating_income"
	FieldInterestExpense            StandardField = "interest_expense"
	FieldIncomeTaxExpense           StandardField = "income_tax_expense"
	FieldNetIncome                  StandardField = "net_income"
	FieldDilutedSharesOutstanding   StandardField = "diluted_shares_outstanding"
	FieldBasicSharesOutstanding     StandardField = "basic_shares_outstanding"
	FieldDilutedEPS                 StandardField = "diluted_eps"

	// Balance sheet.
	FieldTotalAssets              StandardField = "total_assets"
	FieldTotalCurrentAssets       StandardField = "total_current_assets"
	FieldTotalLiabilities         StandardField = "total_liabilities"
	FieldTotalCurrentLiabilities  StandardField = "total_current_liabilities"
	FieldTotalEquity              StandardField = "total_equity"
	FieldCashAndEquivalents       StandardField = "cash_and_equivalents"
	FieldGoodwill                 StandardField = "goodwill"
	FieldRetainedEarnings         StandardField = "retained_earnings"
	FieldAccountsReceivable       StandardField = "accounts_receivable"
	FieldInventory                StandardField = "inventory"
	FieldLongTermDebt             StandardField = "long_term_debt"
	FieldShortTermDebt            StandardField = "short_term_debt"

	// Cashflow statement.
	FieldCashFromOperations      StandardField = "cash_from_operations"
	FieldCashFromInvesting       StandardField = "cash_from_investing"
	FieldCashFromFinancing       StandardField = "cash_from_financing"
	FieldCapex                   StandardField = "capex"
	FieldDepreciationAmort       StandardField = "depreciation_and_amortization"
	FieldDividendsPaid           StandardField = "dividends_paid"
	FieldStockBasedComp          StandardField = "stock_based_compensation"

	// Derived (computed from the above, never tagged directly).
	FieldFreeCashFlow      StandardField = "free_cash_flow"
	FieldGrossMargin       StandardField = "gross_margin"
	FieldOperatingMargin   StandardField = "operating_margin"
	FieldNetMargin         StandardField = "net_margin"
	FieldCurrentRatio      StandardField = "current_ratio"
)

// StatementOf reports which statement a standard field is reported on.
func StatementOf(f StandardField) Statement {
	switch f {
	case FieldRevenue, FieldCostOfRevenue, FieldGrossProfit, FieldSGAExpense,
		FieldRAndDExpense, FieldOperatingIncome, FieldInterestExpense,
		FieldIncomeTaxExpense, FieldNetIncome, FieldDilutedSharesOutstanding,
		FieldBasicSharesOutstanding, FieldDilutedEPS:
		return StatementIncome
	case FieldTotalAssets, FieldTotalCurrentAssets, FieldTotalLiabilities,
		FieldTotalCurrentLiabilities, FieldTotalEquity, FieldCashAndEquivalents,
		FieldGoodwill, FieldRetainedEarnings, FieldAccountsReceivable,
		FieldInventory, FieldLongTermDebt, FieldShortTermDebt:
		return StatementBalance
	case FieldCashFromOperations, FieldCashFromInvesting, FieldCashFromFinancing,
		FieldCapex, FieldDepreciationAmort, FieldDividendsPaid, FieldStockBasedComp:
		return StatementCashflow
	default:
		return StatementDerived
	}
}

// ExpectedPeriodKind reports whether a standard field is reported as an
// instant (balance sheet) or a duration (income/cashflow) fact.
func ExpectedPeriodKind(f StandardField) PeriodKind {
	if StatementOf(f) == StatementBalance {
		return PeriodInstant
	}
	return PeriodDuration
}

// TagMapping associates one raw XBRL tag with the standard field it
// contributes to. Multiple mappings may target the same field; Priority
// establishes tie-break order when more than one tag has a usable fact for
// the same period (lower Priority wins). The table is append-only by
// convention: new tags are added at the end of a field's mapping list
// rather than reordered, so Priority values for existing tags never change.
type TagMapping struct {
	Field          StandardField
	Tag            string // e.g. "us-gaap:Revenues"
	Priority       int
	SignFlip       bool // true if the raw tag's sign must be inverted to match convention
	ExpectedPeriod PeriodKind
}
