package filings_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/pit-fundamentals/internal/filings"
	"github.com/sells-group/pit-fundamentals/internal/model"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func mustDateTime(s string) time.Time {
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		panic(err)
	}
	return t
}

func makeFiling(periodEnd, acceptance string, form string) model.Filing {
	accepted := mustDateTime(acceptance)
	return model.Filing{
		Issuer:     "0000320193",
		FormType:   model.ClassifyFormType(form),
		RawForm:    form,
		PeriodEnd:  mustDate(periodEnd),
		FilingDate: accepted,
		Accepted:   accepted,
		Accession:  "0000320193-22-000100",
	}
}

func TestSelectRaisesCutoffViolationForLateAcceptance(t *testing.T) {
	sel := filings.NewSelector(filings.SelectorConfig{})
	cutoff := mustDate("2016-12-31")

	bad := makeFiling("2016-12-31", "2017-02-28T12:00:00", "10-K")
	_, err := sel.Select([]model.Filing{bad}, cutoff)
	require.Error(t, err)
	var cv *model.CutoffViolationError
	require.ErrorAs(t, err, &cv)
}

func TestSelectPrefersLaterAmendment(t *testing.T) {
	sel := filings.NewSelector(filings.SelectorConfig{AllowAmendments: true})
	cutoff := mustDate("2016-12-31")

	original := makeFiling("2015-12-31", "2016-02-01T12:00:00", "10-K")
	amendment := makeFiling("2015-12-31", "2016-03-01T12:00:00", "10-K/A")

	selected, err := sel.Select([]model.Filing{original, amendment}, cutoff)
	require.NoError(t, err)
	require.Len(t, selected, 1)
	require.Equal(t, "10-K/A", selected[0].RawForm)
}

func TestSelectDropsAmendmentsWhenDisallowed(t *testing.T) {
	sel := filings.NewSelector(filings.SelectorConfig{AllowAmendments: false})
	cutoff := mustDate("2016-12-31")

	original := makeFiling("2015-12-31", "2016-02-01T12:00:00", "10-K")
	amendment := makeFiling("2015-12-31", "2016-03-01T12:00:00", "10-K/A")

	selected, err := sel.Select([]model.Filing{original, amendment}, cutoff)
	require.NoError(t, err)
	require.Len(t, selected, 1)
	require.Equal(t, "10-K", selected[0].RawForm)
}

func TestSelectDeduplicatesPeriods(t *testing.T) {
	sel := filings.NewSelector(filings.SelectorConfig{})
	cutoff := mustDate("2016-12-31")

	f1 := makeFiling("2015-12-31", "2016-02-01T00:00:00", "10-K")
	f2 := makeFiling("2015-12-31", "2016-03-01T00:00:00", "10-K")

	selected, err := sel.Select([]model.Filing{f1, f2}, cutoff)
	require.NoError(t, err)
	require.Len(t, selected, 1)
	require.Equal(t, mustDateTime("2016-03-01T00:00:00"), selected[0].Accepted)
}

func TestSelectSortsAscendingByPeriodEnd(t *testing.T) {
	sel := filings.NewSelector(filings.SelectorConfig{})
	cutoff := mustDate("2020-12-31")

	f2019 := makeFiling("2019-12-31", "2020-02-01T00:00:00", "10-K")
	f2018 := makeFiling("2018-12-31", "2019-02-01T00:00:00", "10-K")

	selected, err := sel.Select([]model.Filing{f2019, f2018}, cutoff)
	require.NoError(t, err)
	require.Len(t, selected, 2)
	require.True(t, selected[0].PeriodEnd.Before(selected[1].PeriodEnd))
}
