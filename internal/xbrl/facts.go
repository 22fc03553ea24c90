// Package xbrl fetches a company's full XBRL fact history from the
// regulator's company-facts endpoint and selects, per tag and target
// period, the single fact a point-in-time snapshot may use.
package xbrl

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/pit-fundamentals/internal/model"
	"github.com/sells-group/pit-fundamentals/internal/secclient"
)

const companyFactsURLTemplate = "https://data.sec.gov/api/xbrl/companyfacts/CIK%s.json"

// companyFacts mirrors the EDGAR company-facts JSON-LD structure.
type companyFacts struct {
	CIK        int               `json:"cik"`
	EntityName string            `json:"entityName"`
	Facts      map[string]factNS `json:"facts"`
}

type factNS map[string]taggedFact

type taggedFact struct {
	Units map[string][]factValue `json:"units"`
}

type factValue struct {
	Start string  `json:"start,omitempty"`
	End   string  `json:"end"`
	Val   float64 `json:"val"`
	Accn  string  `json:"accn"`
	Form  string  `json:"form"`
	Filed string  `json:"filed"`
	Frame string  `json:"frame,omitempty"`
}

// Fetcher downloads a full per-tag fact stream for one issuer.
type Fetcher struct {
	client      *secclient.Client
	urlTemplate string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithCompanyFactsURLTemplate overrides the company-facts endpoint template,
// used in tests to point at a fixture server instead of the live SEC host.
// The template must contain exactly one %s for the zero-padded CIK.
func WithCompanyFactsURLTemplate(tmpl string) FetcherOption {
	return func(f *Fetcher) { f.urlTemplate = tmpl }
}

// NewFetcher creates a Fetcher backed by client.
func NewFetcher(client *secclient.Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{client: client, urlTemplate: companyFactsURLTemplate}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FactStream groups every XBRLFact observed for an issuer by tag
// (namespace-qualified, e.g. "us-gaap:Revenues").
type FactStream map[string][]model.XBRLFact

// Fetch downloads and flattens the full company-facts payload for issuer.
func (f *Fetcher) Fetch(ctx context.Context, issuer model.IssuerID) (FactStream, error) {
	url := fmt.Sprintf(f.urlTemplate, issuer)
	body, err := f.client.Get(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "xbrl: fetch company facts for %s", issuer)
	}

	var cf companyFacts
	if err := json.Unmarshal(body, &cf); err != nil {
		return nil, &model.ParseError{Source: url, Err: err}
	}

	out := make(FactStream)
	for _, ns := range []string{"us-gaap", "dei"} {
		nsMap, ok := cf.Facts[ns]
		if !ok {
			continue
		}
		for tagName, tagged := range nsMap {
			fullTag := ns + ":" + tagName
			for unit, values := range tagged.Units {
				for _, v := range values {
					fact, ok := toFact(fullTag, unit, v)
					if !ok {
						continue
					}
					out[fullTag] = append(out[fullTag], fact)
				}
			}
		}
	}
	return out, nil
}

func toFact(tag, unit string, v factValue) (model.XBRLFact, bool) {
	end, err := parseDate(v.End)
	if err != nil {
		return model.XBRLFact{}, false
	}
	filed, err := parseDate(v.Filed)
	if err != nil {
		return model.XBRLFact{}, false
	}

	fact := model.XBRLFact{
		Tag:       tag,
		Value:     v.Val,
		Unit:      unit,
		PeriodEnd: end,
		Accession: v.Accn,
		Form:      v.Form,
		FiledDate: filed,
		Frame:     v.Frame,
	}
	if v.Start != "" {
		start, err := parseDate(v.Start)
		if err != nil {
			return model.XBRLFact{}, false
		}
		fact.PeriodStart = start
		fact.PeriodKind = model.PeriodDuration
	} else {
		fact.PeriodKind = model.PeriodInstant
	}
	return fact, true
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, eris.New("xbrl: empty date")
	}
	return time.Parse("2006-01-02", s)
}
