package filings_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/pit-fundamentals/internal/filings"
	"github.com/sells-group/pit-fundamentals/internal/model"
	"github.com/sells-group/pit-fundamentals/internal/ratelimit"
	"github.com/sells-group/pit-fundamentals/internal/secclient"
)

const fixtureSubmissions = `{
	"cik": "320193",
	"name": "Apple Inc.",
	"filings": {
		"recent": {
			"accessionNumber": ["0000320193-23-000106", "0000320193-23-000006", "0000320193-23-000999"],
			"filingDate": ["2023-11-03", "2023-02-03", "2023-11-20"],
			"acceptanceDateTime": ["2023-11-02T18:01:00.000Z", "2023-02-02T18:01:00.000Z", "2023-11-20T10:00:00.000Z"],
			"reportDate": ["2023-09-30", "2022-09-24", ""],
			"form": ["10-K", "10-K", "8-K"]
		}
	}
}`

const fixtureMixedPeriodSubmissions = `{
	"cik": "320193",
	"name": "Apple Inc.",
	"filings": {
		"recent": {
			"accessionNumber": ["0000320193-23-000001", "0000320193-23-000002", "0000320193-23-000003"],
			"filingDate": ["2023-11-03", "2023-08-03", "2023-05-03"],
			"acceptanceDateTime": ["2023-11-02T18:01:00.000Z", "2023-08-02T18:01:00.000Z", "2023-05-02T18:01:00.000Z"],
			"reportDate": ["2023-09-30", "2023-06-30", "2023-03-31"],
			"form": ["10-K", "10-Q", "10-Q"]
		}
	}
}`

func newTestIndex(t *testing.T, body string) *filings.Index {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	cl, err := secclient.New(nil, ratelimit.New(100, 10), secclient.Options{UserAgent: "test-agent test@example.com"})
	require.NoError(t, err)

	return filings.New(cl, filings.WithSubmissionsURLTemplate(srv.URL+"/%s"))
}

func TestListParsesRecentFilings(t *testing.T) {
	idx := newTestIndex(t, fixtureSubmissions)
	out, err := idx.List(t.Context(), model.IssuerID("0000320193"), model.PeriodAnnual)
	require.NoError(t, err)
	require.Len(t, out, 2) // the 8-K is dropped: ClassifyFormType maps it to FormOther
	require.Equal(t, model.FormAnnual, out[0].FormType)
	require.Equal(t, time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC), out[0].PeriodEnd)
}

func TestListSkipsUnparseableRows(t *testing.T) {
	idx := newTestIndex(t, fixtureSubmissions)
	out, err := idx.List(t.Context(), model.IssuerID("0000320193"), model.PeriodAnnual)
	require.NoError(t, err)
	for _, f := range out {
		require.NotEmpty(t, f.Accession)
	}
}

func TestListFiltersByAnnualPeriodType(t *testing.T) {
	idx := newTestIndex(t, fixtureMixedPeriodSubmissions)
	out, err := idx.List(t.Context(), model.IssuerID("0000320193"), model.PeriodAnnual)
	require.NoError(t, err)
	require.Len(t, out, 1, "the two 10-Qs must not leak into an annual-only request")
	require.Equal(t, model.FormAnnual, out[0].FormType)
}

func TestListFiltersByQuarterlyPeriodType(t *testing.T) {
	idx := newTestIndex(t, fixtureMixedPeriodSubmissions)
	out, err := idx.List(t.Context(), model.IssuerID("0000320193"), model.PeriodQuarterly)
	require.NoError(t, err)
	require.Len(t, out, 2, "the 10-K must not leak into a quarterly-only request")
	for _, f := range out {
		require.Equal(t, model.FormQuarterly, f.FormType)
	}
}

func TestListPropagatesFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	cl, err := secclient.New(nil, ratelimit.New(100, 10), secclient.Options{UserAgent: "test-agent test@example.com"})
	require.NoError(t, err)

	idx := filings.New(cl, filings.WithSubmissionsURLTemplate(srv.URL+"/%s"))
	_, err = idx.List(t.Context(), model.IssuerID("0000320193"), model.PeriodAnnual)
	require.Error(t, err)
}
