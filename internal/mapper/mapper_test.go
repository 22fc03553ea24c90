package mapper_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/pit-fundamentals/internal/mapper"
	"github.com/sells-group/pit-fundamentals/internal/model"
	"github.com/sells-group/pit-fundamentals/internal/xbrl"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRevenueHasMultiplePriorityTags(t *testing.T) {
	mappings := mapper.MappingsFor(model.FieldRevenue)
	require.GreaterOrEqual(t, len(mappings), 3)
	require.Equal(t, "us-gaap:Revenues", mappings[0].Tag)
}

func TestCapexSignFlip(t *testing.T) {
	mappings := mapper.MappingsFor(model.FieldCapex)
	require.True(t, mappings[0].SignFlip)
}

func TestRevenueNoSignFlip(t *testing.T) {
	mappings := mapper.MappingsFor(model.FieldRevenue)
	require.False(t, mappings[0].SignFlip)
}

func TestBalanceSheetFieldsAreInstant(t *testing.T) {
	for _, f := range []model.StandardField{model.FieldTotalAssets, model.FieldCashAndEquivalents, model.FieldTotalEquity, model.FieldGoodwill} {
		mappings := mapper.MappingsFor(f)
		require.NotEmpty(t, mappings)
		require.Equal(t, model.PeriodInstant, mappings[0].ExpectedPeriod)
	}
}

func TestIncomeFieldsAreDuration(t *testing.T) {
	for _, f := range []model.StandardField{model.FieldRevenue, model.FieldNetIncome, model.FieldCashFromOperations} {
		mappings := mapper.MappingsFor(f)
		require.NotEmpty(t, mappings)
		require.Equal(t, model.PeriodDuration, mappings[0].ExpectedPeriod)
	}
}

func TestFieldForTagReverseIndex(t *testing.T) {
	m, ok := mapper.FieldForTag("us-gaap:Revenues")
	require.True(t, ok)
	require.Equal(t, model.FieldRevenue, m.Field)
	require.False(t, m.SignFlip)
}

func TestResolverFallsBackToLowerPriorityTag(t *testing.T) {
	engine := xbrl.NewContextEngine()
	resolver := mapper.NewResolver(engine)

	periodStart, periodEnd := mustDate("2022-01-01"), mustDate("2022-12-31")
	cutoff := mustDate("2023-12-31")

	stream := xbrl.FactStream{
		"us-gaap:SalesRevenueNet": []model.XBRLFact{
			{
				Tag: "us-gaap:SalesRevenueNet", Value: 500, Unit: "USD",
				PeriodKind: model.PeriodDuration, PeriodStart: periodStart, PeriodEnd: periodEnd,
				FiledDate: mustDate("2023-02-01"), Form: "10-K",
			},
		},
	}

	value, ok := resolver.Resolve(stream, model.FieldRevenue, periodStart, periodEnd, cutoff)
	require.True(t, ok)
	require.Equal(t, 500.0, value)
}

func TestResolverAppliesSignFlip(t *testing.T) {
	engine := xbrl.NewContextEngine()
	resolver := mapper.NewResolver(engine)

	periodStart, periodEnd := mustDate("2022-01-01"), mustDate("2022-12-31")
	cutoff := mustDate("2023-12-31")

	stream := xbrl.FactStream{
		"us-gaap:PaymentsToAcquirePropertyPlantAndEquipment": []model.XBRLFact{
			{
				Tag: "us-gaap:PaymentsToAcquirePropertyPlantAndEquipment", Value: 100, Unit: "USD",
				PeriodKind: model.PeriodDuration, PeriodStart: periodStart, PeriodEnd: periodEnd,
				FiledDate: mustDate("2023-02-01"), Form: "10-K",
			},
		},
	}

	value, ok := resolver.Resolve(stream, model.FieldCapex, periodStart, periodEnd, cutoff)
	require.True(t, ok)
	require.Equal(t, -100.0, value)
}

func TestResolverReturnsFalseWhenNoTagPresent(t *testing.T) {
	engine := xbrl.NewContextEngine()
	resolver := mapper.NewResolver(engine)

	_, ok := resolver.Resolve(xbrl.FactStream{}, model.FieldRevenue, mustDate("2022-01-01"), mustDate("2022-12-31"), mustDate("2023-12-31"))
	require.False(t, ok)
}
