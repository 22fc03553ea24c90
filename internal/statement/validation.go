package statement

import (
	"fmt"
	"math"

	"github.com/sells-group/pit-fundamentals/internal/model"
)

// identityTolerance is the relative-error threshold (1%) a statement
// identity must fall within to be considered reconciled.
const identityTolerance = 0.01

// SchemaValidationError reports a closed-schema violation found by
// ValidateIncomeTable, ValidateBalanceTable or ValidateCashflowTable: a
// required key missing, or a duplicate (ticker, period)
// row in a table that must hold at most one row per period.
type SchemaValidationError struct {
	Table      string
	Violations []string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("statement: %s failed validation: %v", e.Table, e.Violations)
}

// rowKey uniquely identifies a statement row within its table.
type rowKey struct {
	Ticker    model.Ticker
	PeriodEnd int64 // unix seconds, comparable map key
}

// ValidateIncomeTable checks income rows for missing tickers and duplicate
// (ticker, period_end) keys, returning a human-readable violation per
// problem found. An empty slice means the table is valid.
func ValidateIncomeTable(rows []model.IncomeRow) []string {
	var violations []string
	seen := make(map[rowKey]bool)
	for i, r := range rows {
		if r.Ticker == "" {
			violations = append(violations, fmt.Sprintf("row %d: missing ticker", i))
			continue
		}
		key := rowKey{Ticker: r.Ticker, PeriodEnd: r.PeriodEnd.Unix()}
		if seen[key] {
			violations = append(violations, fmt.Sprintf("duplicate key: %s %s", r.Ticker, r.PeriodEnd.Format("2006-01-02")))
			continue
		}
		seen[key] = true
	}
	return violations
}

// ValidateBalanceTable checks balance rows the same way ValidateIncomeTable
// checks income rows.
func ValidateBalanceTable(rows []model.BalanceRow) []string {
	var violations []string
	seen := make(map[rowKey]bool)
	for i, r := range rows {
		if r.Ticker == "" {
			violations = append(violations, fmt.Sprintf("row %d: missing ticker", i))
			continue
		}
		key := rowKey{Ticker: r.Ticker, PeriodEnd: r.PeriodEnd.Unix()}
		if seen[key] {
			violations = append(violations, fmt.Sprintf("duplicate key: %s %s", r.Ticker, r.PeriodEnd.Format("2006-01-02")))
			continue
		}
		seen[key] = true
	}
	return violations
}

// ValidateCashflowTable checks cashflow rows the same way ValidateIncomeTable
// checks income rows.
func ValidateCashflowTable(rows []model.CashflowRow) []string {
	var violations []string
	seen := make(map[rowKey]bool)
	for i, r := range rows {
		if r.Ticker == "" {
			violations = append(violations, fmt.Sprintf("row %d: missing ticker", i))
			continue
		}
		key := rowKey{Ticker: r.Ticker, PeriodEnd: r.PeriodEnd.Unix()}
		if seen[key] {
			violations = append(violations, fmt.Sprintf("duplicate key: %s %s", r.Ticker, r.PeriodEnd.Format("2006-01-02")))
			continue
		}
		seen[key] = true
	}
	return violations
}

// AssertValidIncomeTable returns a SchemaValidationError if ValidateIncomeTable
// finds any violation.
func AssertValidIncomeTable(rows []model.IncomeRow) error {
	if v := ValidateIncomeTable(rows); len(v) > 0 {
		return &SchemaValidationError{Table: "statements_income", Violations: v}
	}
	return nil
}

// AssertValidBalanceTable returns a SchemaValidationError if ValidateBalanceTable
// finds any violation.
func AssertValidBalanceTable(rows []model.BalanceRow) error {
	if v := ValidateBalanceTable(rows); len(v) > 0 {
		return &SchemaValidationError{Table: "statements_balance", Violations: v}
	}
	return nil
}

// AssertValidCashflowTable returns a SchemaValidationError if
// ValidateCashflowTable finds any violation.
func AssertValidCashflowTable(rows []model.CashflowRow) error {
	if v := ValidateCashflowTable(rows); len(v) > 0 {
		return &SchemaValidationError{Table: "statements_cashflow", Violations: v}
	}
	return nil
}

// CheckBalanceSheetIdentity reports whether total_assets ==
// total_liabilities + total_equity within identityTolerance relative
// error. The second return value is false when any of the three inputs is
// nil, mirroring the original's NA-propagation behavior rather than
// treating a missing input as a failed identity.
func CheckBalanceSheetIdentity(row model.BalanceRow) (ok bool, known bool) {
	if row.TotalAssets == nil || row.TotalLiabilities == nil || row.TotalEquity == nil {
		return false, false
	}
	assets := *row.TotalAssets
	if assets == 0 {
		return false, false
	}
	expected := *row.TotalLiabilities + *row.TotalEquity
	relErr := math.Abs(assets-expected) / math.Abs(assets)
	return relErr <= identityTolerance, true
}

// CheckCashflowReconciliation reports whether cfo + cfi + cff equals
// netChangeInCash within identityTolerance relative error.
func CheckCashflowReconciliation(row model.CashflowRow, netChangeInCash float64) (ok bool, known bool) {
	if row.CashFromOperations == nil || row.CashFromInvesting == nil || row.CashFromFinancing == nil {
		return false, false
	}
	sum := *row.CashFromOperations + *row.CashFromInvesting + *row.CashFromFinancing
	denom := math.Abs(netChangeInCash)
	if denom == 0 {
		return sum == 0, true
	}
	relErr := math.Abs(sum-netChangeInCash) / denom
	return relErr <= identityTolerance, true
}

// ValidationWarningsForBalance builds ValidationWarning entries for any
// balance rows whose accounting identity fails to reconcile.
func ValidationWarningsForBalance(rows []model.BalanceRow) []model.ValidationWarning {
	var warnings []model.ValidationWarning
	for _, r := range rows {
		ok, known := CheckBalanceSheetIdentity(r)
		if known && !ok {
			warnings = append(warnings, model.ValidationWarning{
				Ticker:  r.Ticker,
				Period:  r.PeriodEnd,
				Message: "balance sheet identity does not reconcile within tolerance",
			})
		}
	}
	return warnings
}
