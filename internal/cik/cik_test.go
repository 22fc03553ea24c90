package cik_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/pit-fundamentals/internal/cik"
	"github.com/sells-group/pit-fundamentals/internal/model"
	"github.com/sells-group/pit-fundamentals/internal/ratelimit"
	"github.com/sells-group/pit-fundamentals/internal/secclient"
)

const fixtureRegistry = `{
	"0": {"cik_str": "320193", "ticker": "AAPL", "title": "Apple Inc."},
	"1": {"cik_str": "789019", "ticker": "MSFT", "title": "Microsoft Corp"},
	"2": {"cik_str": "1652044", "ticker": "GOOGL", "title": "Alphabet Inc."}
}`

func newTestMap(t *testing.T, body string) (*cik.Map, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	cl, err := secclient.New(nil, ratelimit.New(100, 10), secclient.Options{UserAgent: "test-agent test@example.com"})
	require.NoError(t, err)

	m := cik.New(cl, cik.WithRegistryURL(srv.URL))
	return m, &calls
}

func TestResolveKnownTickerPadsCIK(t *testing.T) {
	m, _ := newTestMap(t, fixtureRegistry)
	issuer, err := m.Resolve(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, model.IssuerID("0000320193"), issuer)
}

func TestResolveCaseInsensitive(t *testing.T) {
	m, _ := newTestMap(t, fixtureRegistry)
	a, err := m.Resolve(context.Background(), "aapl")
	require.NoError(t, err)
	b, err := m.Resolve(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestResolveUnknownTickerIsNotFound(t *testing.T) {
	m, _ := newTestMap(t, fixtureRegistry)
	_, err := m.Resolve(context.Background(), "ZZZZ")
	require.Error(t, err)
	var nf *model.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestCompanyName(t *testing.T) {
	m, _ := newTestMap(t, fixtureRegistry)
	name, err := m.CompanyName(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, "Apple Inc.", name)
}

func TestLoadIsIdempotent(t *testing.T) {
	m, calls := newTestMap(t, fixtureRegistry)
	require.NoError(t, m.Load(context.Background()))
	require.NoError(t, m.Load(context.Background()))
	require.Equal(t, 1, *calls)
}

func TestResolveManySkipsUnknowns(t *testing.T) {
	m, _ := newTestMap(t, fixtureRegistry)
	result, err := m.ResolveMany(context.Background(), []model.Ticker{"AAPL", "FAKE_XYZ", "MSFT"})
	require.NoError(t, err)
	require.Contains(t, result, model.Ticker("AAPL"))
	require.Contains(t, result, model.Ticker("MSFT"))
	require.NotContains(t, result, model.Ticker("FAKE_XYZ"))
}
