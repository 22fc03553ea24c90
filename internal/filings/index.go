// Package filings fetches and point-in-time filters a single issuer's
// regulatory filing history, then selects the one filing per fiscal period
// that a snapshot as of a given cutoff date may legally see.
package filings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/pit-fundamentals/internal/model"
	"github.com/sells-group/pit-fundamentals/internal/secclient"
)

// submissionsURLTemplate is the per-issuer submissions endpoint.
const submissionsURLTemplate = "https://data.sec.gov/submissions/CIK%s.json"

type submissionJSON struct {
	CIK     json.Number   `json:"cik"`
	Name    string        `json:"name"`
	Filings recentFilings `json:"filings"`
}

type recentFilings struct {
	Recent filingList `json:"recent"`
}

// filingList is the SEC submissions API's parallel-array layout: each field
// is a same-length slice, index i across all fields describes one filing.
type filingList struct {
	AccessionNumber    []string `json:"accessionNumber"`
	FilingDate         []string `json:"filingDate"`
	AcceptanceDateTime []string `json:"acceptanceDateTime"`
	ReportDate         []string `json:"reportDate"`
	Form               []string `json:"form"`
}

// Index fetches an issuer's filing history from the regulator.
type Index struct {
	client      *secclient.Client
	urlTemplate string
}

// Option configures an Index.
type Option func(*Index)

// WithSubmissionsURLTemplate overrides the submissions endpoint template,
// used in tests to point at a fixture server instead of the live SEC host.
// The template must contain exactly one %s for the zero-padded CIK.
func WithSubmissionsURLTemplate(tmpl string) Option {
	return func(idx *Index) { idx.urlTemplate = tmpl }
}

// New creates an Index backed by client.
func New(client *secclient.Client, opts ...Option) *Index {
	idx := &Index{client: client, urlTemplate: submissionsURLTemplate}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// List returns every filing the regulator has recorded for issuer matching
// periodType, regardless of cutoff; callers apply PIT filtering via Select.
func (idx *Index) List(ctx context.Context, issuer model.IssuerID, periodType model.PeriodType) ([]model.Filing, error) {
	url := fmt.Sprintf(idx.urlTemplate, issuer)
	body, err := idx.client.Get(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "filings: fetch submissions for %s", issuer)
	}

	var sub submissionJSON
	if err := json.Unmarshal(body, &sub); err != nil {
		return nil, &model.ParseError{Source: url, Err: err}
	}

	recent := sub.Filings.Recent
	out := make([]model.Filing, 0, len(recent.AccessionNumber))
	for i := range recent.AccessionNumber {
		form := safeIndex(recent.Form, i)
		formType := model.ClassifyFormType(form)
		if formType == model.FormOther {
			continue
		}

		periodEnd, err := parseDate(safeIndex(recent.ReportDate, i))
		if err != nil {
			continue
		}
		filingDate, err := parseDate(safeIndex(recent.FilingDate, i))
		if err != nil {
			continue
		}
		accepted, err := parseDateTime(safeIndex(recent.AcceptanceDateTime, i))
		if err != nil {
			continue
		}

		filing := model.Filing{
			Issuer:     issuer,
			FormType:   formType,
			RawForm:    form,
			PeriodEnd:  periodEnd,
			FilingDate: filingDate,
			Accepted:   accepted,
			Accession:  safeIndex(recent.AccessionNumber, i),
		}
		if !filing.MatchesPeriodType(periodType) {
			continue
		}
		out = append(out, filing)
	}
	return out, nil
}

func safeIndex(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, eris.New("filings: empty date")
	}
	return time.Parse("2006-01-02", s)
}

func parseDateTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, eris.New("filings: empty acceptance datetime")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02T15:04:05", s)
}
