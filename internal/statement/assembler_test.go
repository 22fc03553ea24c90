package statement_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/pit-fundamentals/internal/mapper"
	"github.com/sells-group/pit-fundamentals/internal/model"
	"github.com/sells-group/pit-fundamentals/internal/statement"
	"github.com/sells-group/pit-fundamentals/internal/xbrl"
)

func TestAssembleDerivedComputesFreeCashFlow(t *testing.T) {
	a := statement.NewAssembler(mapper.NewResolver(xbrl.NewContextEngine()))
	income := model.IncomeRow{Ticker: "AAPL", PeriodEnd: mustDate("2022-12-31")}
	balance := model.BalanceRow{}
	cashflow := model.CashflowRow{
		CashFromOperations: floatPtr(100),
		Capex:              floatPtr(-30),
	}

	derived := a.AssembleDerived(income, balance, cashflow)
	require.NotNil(t, derived.FreeCashFlow)
	require.Equal(t, 70.0, *derived.FreeCashFlow)
}

func TestAssembleDerivedLeavesMarginsNilWhenRevenueZero(t *testing.T) {
	a := statement.NewAssembler(mapper.NewResolver(xbrl.NewContextEngine()))
	income := model.IncomeRow{Ticker: "AAPL", PeriodEnd: mustDate("2022-12-31"), Revenue: floatPtr(0)}
	derived := a.AssembleDerived(income, model.BalanceRow{}, model.CashflowRow{})
	require.Nil(t, derived.GrossMargin)
}

func TestAssembleDerivedComputesMargins(t *testing.T) {
	a := statement.NewAssembler(mapper.NewResolver(xbrl.NewContextEngine()))
	income := model.IncomeRow{
		Ticker: "AAPL", PeriodEnd: mustDate("2022-12-31"),
		Revenue: floatPtr(1000), GrossProfit: floatPtr(400), OperatingIncome: floatPtr(200), NetIncome: floatPtr(100),
	}
	derived := a.AssembleDerived(income, model.BalanceRow{}, model.CashflowRow{})
	require.Equal(t, 0.4, *derived.GrossMargin)
	require.Equal(t, 0.2, *derived.OperatingMargin)
	require.Equal(t, 0.1, *derived.NetMargin)
}

func TestAssembleDerivedComputesCurrentRatio(t *testing.T) {
	a := statement.NewAssembler(mapper.NewResolver(xbrl.NewContextEngine()))
	balance := model.BalanceRow{
		TotalCurrentAssets:      floatPtr(200),
		TotalCurrentLiabilities: floatPtr(100),
	}
	derived := a.AssembleDerived(model.IncomeRow{}, balance, model.CashflowRow{})
	require.Equal(t, 2.0, *derived.CurrentRatio)
}
