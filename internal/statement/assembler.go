// Package statement assembles typed statement rows for one (ticker,
// period) from resolved standard-field values, and validates the result
// against schema and accounting-identity invariants.
package statement

import (
	"time"

	"github.com/sells-group/pit-fundamentals/internal/mapper"
	"github.com/sells-group/pit-fundamentals/internal/model"
	"github.com/sells-group/pit-fundamentals/internal/xbrl"
)

// Assembler builds typed statement rows from a fact stream.
type Assembler struct {
	resolver *mapper.Resolver
}

// NewAssembler creates an Assembler.
func NewAssembler(resolver *mapper.Resolver) *Assembler {
	return &Assembler{resolver: resolver}
}

func (a *Assembler) resolve(stream xbrl.FactStream, field model.StandardField, periodStart, periodEnd, cutoff time.Time) *float64 {
	v, ok := a.resolver.Resolve(stream, field, periodStart, periodEnd, cutoff)
	if !ok {
		return nil
	}
	return &v
}

// AssembleIncome builds one IncomeRow for (ticker, period).
func (a *Assembler) AssembleIncome(ticker model.Ticker, asOf, periodStart, periodEnd, cutoff time.Time, stream xbrl.FactStream) model.IncomeRow {
	return model.IncomeRow{
		Ticker:                   ticker,
		PeriodEnd:                periodEnd,
		AsOfDate:                 asOf,
		Revenue:                  a.resolve(stream, model.FieldRevenue, periodStart, periodEnd, cutoff),
		CostOfRevenue:            a.resolve(stream, model.FieldCostOfRevenue, periodStart, periodEnd, cutoff),
		GrossProfit:              a.resolve(stream, model.FieldGrossProfit, periodStart, periodEnd, cutoff),
		SGAExpense:               a.resolve(stream, model.FieldSGAExpense, periodStart, periodEnd, cutoff),
		RAndDExpense:             a.resolve(stream, model.FieldRAndDExpense, periodStart, periodEnd, cutoff),
		OperatingIncome:          a.resolve(stream, model.FieldOperatingIncome, periodStart, periodEnd, cutoff),
		InterestExpense:          a.resolve(stream, model.FieldInterestExpense, periodStart, periodEnd, cutoff),
		IncomeTaxExpense:         a.resolve(stream, model.FieldIncomeTaxExpense, periodStart, periodEnd, cutoff),
		NetIncome:                a.resolve(stream, model.FieldNetIncome, periodStart, periodEnd, cutoff),
		DilutedSharesOutstanding: a.resolve(stream, model.FieldDilutedSharesOutstanding, periodStart, periodEnd, cutoff),
		BasicSharesOutstanding:   a.resolve(stream, model.FieldBasicSharesOutstanding, periodStart, periodEnd, cutoff),
		DilutedEPS:               a.resolve(stream, model.FieldDilutedEPS, periodStart, periodEnd, cutoff),
	}
}

// AssembleBalance builds one BalanceRow for (ticker, period). Balance sheet
// fields are instants, so only periodEnd matters for fact matching.
func (a *Assembler) AssembleBalance(ticker model.Ticker, asOf, periodEnd, cutoff time.Time, stream xbrl.FactStream) model.BalanceRow {
	return model.BalanceRow{
		Ticker:                  ticker,
		PeriodEnd:               periodEnd,
		AsOfDate:                asOf,
		TotalAssets:             a.resolve(stream, model.FieldTotalAssets, time.Time{}, periodEnd, cutoff),
		TotalCurrentAssets:      a.resolve(stream, model.FieldTotalCurrentAssets, time.Time{}, periodEnd, cutoff),
		TotalLiabilities:        a.resolve(stream, model.FieldTotalLiabilities, time.Time{}, periodEnd, cutoff),
		TotalCurrentLiabilities: a.resolve(stream, model.FieldTotalCurrentLiabilities, time.Time{}, periodEnd, cutoff),
		TotalEquity:             a.resolve(stream, model.FieldTotalEquity, time.Time{}, periodEnd, cutoff),
		CashAndEquivalents:      a.resolve(stream, model.FieldCashAndEquivalents, time.Time{}, periodEnd, cutoff),
		Goodwill:                a.resolve(stream, model.FieldGoodwill, time.Time{}, periodEnd, cutoff),
		RetainedEarnings:        a.resolve(stream, model.FieldRetainedEarnings, time.Time{}, periodEnd, cutoff),
		AccountsReceivable:      a.resolve(stream, model.FieldAccountsReceivable, time.Time{}, periodEnd, cutoff),
		Inventory:               a.resolve(stream, model.FieldInventory, time.Time{}, periodEnd, cutoff),
		LongTermDebt:            a.resolve(stream, model.FieldLongTermDebt, time.Time{}, periodEnd, cutoff),
		ShortTermDebt:           a.resolve(stream, model.FieldShortTermDebt, time.Time{}, periodEnd, cutoff),
	}
}

// AssembleCashflow builds one CashflowRow for (ticker, period).
func (a *Assembler) AssembleCashflow(ticker model.Ticker, asOf, periodStart, periodEnd, cutoff time.Time, stream xbrl.FactStream) model.CashflowRow {
	return model.CashflowRow{
		Ticker:             ticker,
		PeriodEnd:          periodEnd,
		AsOfDate:           asOf,
		CashFromOperations: a.resolve(stream, model.FieldCashFromOperations, periodStart, periodEnd, cutoff),
		CashFromInvesting:  a.resolve(stream, model.FieldCashFromInvesting, periodStart, periodEnd, cutoff),
		CashFromFinancing:  a.resolve(stream, model.FieldCashFromFinancing, periodStart, periodEnd, cutoff),
		Capex:              a.resolve(stream, model.FieldCapex, periodStart, periodEnd, cutoff),
		DepreciationAmort:  a.resolve(stream, model.FieldDepreciationAmort, periodStart, periodEnd, cutoff),
		DividendsPaid:      a.resolve(stream, model.FieldDividendsPaid, periodStart, periodEnd, cutoff),
		StockBasedComp:     a.resolve(stream, model.FieldStockBasedComp, periodStart, periodEnd, cutoff),
	}
}

// AssembleDerived computes derived metrics from already-assembled income,
// balance, and cashflow rows for the same (ticker, period). Any metric
// whose inputs are incomplete is left nil rather than computed from a
// partial set of inputs.
func (a *Assembler) AssembleDerived(income model.IncomeRow, balance model.BalanceRow, cashflow model.CashflowRow) model.DerivedMetricsRow {
	row := model.DerivedMetricsRow{
		Ticker:    income.Ticker,
		PeriodEnd: income.PeriodEnd,
		AsOfDate:  income.AsOfDate,
	}

	if cashflow.CashFromOperations != nil && cashflow.Capex != nil {
		fcf := *cashflow.CashFromOperations + *cashflow.Capex
		row.FreeCashFlow = &fcf
	}
	if income.Revenue != nil && *income.Revenue != 0 {
		if income.GrossProfit != nil {
			m := *income.GrossProfit / *income.Revenue
			row.GrossMargin = &m
		}
		if income.OperatingIncome != nil {
			m := *income.OperatingIncome / *income.Revenue
			row.OperatingMargin = &m
		}
		if income.NetIncome != nil {
			m := *income.NetIncome / *income.Revenue
			row.NetMargin = &m
		}
	}
	if balance.TotalCurrentAssets != nil && balance.TotalCurrentLiabilities != nil && *balance.TotalCurrentLiabilities != 0 {
		r := *balance.TotalCurrentAssets / *balance.TotalCurrentLiabilities
		row.CurrentRatio = &r
	}
	return row
}
