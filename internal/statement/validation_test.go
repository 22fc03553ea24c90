package statement_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/pit-fundamentals/internal/model"
	"github.com/sells-group/pit-fundamentals/internal/statement"
)

func floatPtr(v float64) *float64 { return &v }

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestValidIncomeTablePasses(t *testing.T) {
	rows := []model.IncomeRow{{Ticker: "AAPL", PeriodEnd: mustDate("2022-12-31")}}
	require.Empty(t, statement.ValidateIncomeTable(rows))
}

func TestMissingTickerFails(t *testing.T) {
	rows := []model.IncomeRow{{PeriodEnd: mustDate("2022-12-31")}}
	violations := statement.ValidateIncomeTable(rows)
	require.NotEmpty(t, violations)
}

func TestAssertValidRaisesOnViolation(t *testing.T) {
	rows := []model.IncomeRow{{PeriodEnd: mustDate("2022-12-31")}}
	err := statement.AssertValidIncomeTable(rows)
	require.Error(t, err)
	var sv *statement.SchemaValidationError
	require.ErrorAs(t, err, &sv)
	require.Equal(t, "statements_income", sv.Table)
}

func TestDuplicateKeysDetected(t *testing.T) {
	row := model.IncomeRow{Ticker: "AAPL", PeriodEnd: mustDate("2022-12-31")}
	rows := []model.IncomeRow{row, row}
	violations := statement.ValidateIncomeTable(rows)
	require.NotEmpty(t, violations)
}

func TestBalancedSheetPasses(t *testing.T) {
	row := model.BalanceRow{
		TotalAssets:      floatPtr(352_755_000_000),
		TotalLiabilities: floatPtr(302_083_000_000),
		TotalEquity:      floatPtr(50_672_000_000),
	}
	ok, known := statement.CheckBalanceSheetIdentity(row)
	require.True(t, known)
	require.True(t, ok)
}

func TestSlightlyOffBalanceFails(t *testing.T) {
	row := model.BalanceRow{
		TotalAssets:      floatPtr(100_000_000),
		TotalLiabilities: floatPtr(80_000_000),
		TotalEquity:      floatPtr(10_000_000),
	}
	ok, known := statement.CheckBalanceSheetIdentity(row)
	require.True(t, known)
	require.False(t, ok)
}

func TestMissingColumnsReturnsUnknown(t *testing.T) {
	row := model.BalanceRow{TotalAssets: floatPtr(100)}
	_, known := statement.CheckBalanceSheetIdentity(row)
	require.False(t, known)
}

func TestReconcilingCashflow(t *testing.T) {
	row := model.CashflowRow{
		CashFromOperations: floatPtr(100_000_000),
		CashFromInvesting:  floatPtr(-50_000_000),
		CashFromFinancing:  floatPtr(-30_000_000),
	}
	ok, known := statement.CheckCashflowReconciliation(row, 20_000_000)
	require.True(t, known)
	require.True(t, ok)
}

func TestNonReconcilingCashflow(t *testing.T) {
	row := model.CashflowRow{
		CashFromOperations: floatPtr(100_000_000),
		CashFromInvesting:  floatPtr(-50_000_000),
		CashFromFinancing:  floatPtr(-30_000_000),
	}
	ok, known := statement.CheckCashflowReconciliation(row, 999_000_000)
	require.True(t, known)
	require.False(t, ok)
}
