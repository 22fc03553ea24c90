// Package cik resolves exchange tickers to SEC Central Index Keys via the
// regulator's company_tickers.json registry, loaded once per builder run
// and cached in memory for the lifetime of the Map.
package cik

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pit-fundamentals/internal/model"
	"github.com/sells-group/pit-fundamentals/internal/secclient"
)

// TickersURL is the SEC's canonical ticker-to-CIK registry.
const TickersURL = "https://www.sec.gov/files/company_tickers.json"

type registryEntry struct {
	CIK   json.Number `json:"cik_str"`
	Ticker string     `json:"ticker"`
	Title  string     `json:"title"`
}

// entity is a resolved ticker's issuer identity.
type entity struct {
	Issuer     model.IssuerID
	EntityName string
}

// Map resolves tickers to issuer identities, loading the registry lazily
// and at most once.
type Map struct {
	client      *secclient.Client
	registryURL string

	mu       sync.Mutex
	loaded   bool
	byTicker map[model.Ticker]entity
}

// Option configures a Map.
type Option func(*Map)

// WithRegistryURL overrides the registry endpoint, used in tests to point
// at a fixture server instead of the live SEC registry.
func WithRegistryURL(url string) Option {
	return func(m *Map) { m.registryURL = url }
}

// New creates a Map backed by client. The registry is not fetched until the
// first Resolve/ResolveMany/Load call.
func New(client *secclient.Client, opts ...Option) *Map {
	m := &Map{client: client, registryURL: TickersURL, byTicker: make(map[model.Ticker]entity)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load fetches and indexes the registry if it has not already been loaded.
// Calling Load more than once is a no-op: it never re-fetches.
func (m *Map) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded {
		return nil
	}

	body, err := m.client.Get(ctx, m.registryURL)
	if err != nil {
		return eris.Wrap(err, "cik: fetch ticker registry")
	}

	var raw map[string]registryEntry
	if err := json.Unmarshal(body, &raw); err != nil {
		return &model.ParseError{Source: m.registryURL, Err: err}
	}

	for _, e := range raw {
		t := model.NormalizeTicker(e.Ticker)
		m.byTicker[t] = entity{
			Issuer:     model.PadCIK(e.CIK.String()),
			EntityName: e.Title,
		}
	}

	zap.L().Info("cik: loaded ticker registry", zap.Int("count", len(m.byTicker)))
	m.loaded = true
	return nil
}

// Resolve returns the issuer ID for a ticker, loading the registry on first
// use. It returns a NotFoundError if the ticker is unknown to the registry.
func (m *Map) Resolve(ctx context.Context, ticker model.Ticker) (model.IssuerID, error) {
	if err := m.Load(ctx); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byTicker[model.NormalizeTicker(string(ticker))]
	if !ok {
		return "", &model.NotFoundError{URL: string(ticker)}
	}
	return e.Issuer, nil
}

// CompanyName returns the registry's entity name for a ticker.
func (m *Map) CompanyName(ctx context.Context, ticker model.Ticker) (string, error) {
	if err := m.Load(ctx); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byTicker[model.NormalizeTicker(string(ticker))]
	if !ok {
		return "", &model.NotFoundError{URL: string(ticker)}
	}
	return e.EntityName, nil
}

// ResolveMany resolves a batch of tickers in one pass over the loaded
// registry, silently skipping unknown tickers rather than failing the whole
// batch (callers inspect the returned map's length against their input to
// detect gaps).
func (m *Map) ResolveMany(ctx context.Context, tickers []model.Ticker) (map[model.Ticker]model.CompanyMaster, error) {
	if err := m.Load(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[model.Ticker]model.CompanyMaster, len(tickers))
	for _, raw := range tickers {
		t := model.NormalizeTicker(string(raw))
		e, ok := m.byTicker[t]
		if !ok {
			continue
		}
		out[t] = model.CompanyMaster{Issuer: e.Issuer, Ticker: t, EntityName: e.EntityName}
	}
	return out, nil
}
