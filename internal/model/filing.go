package model

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// FormType classifies a regulatory filing.
type FormType string

const (
	FormAnnual    FormType = "annual"    // 10-K
	FormQuarterly FormType = "quarterly" // 10-Q
	FormAmendment FormType = "amendment" // 10-K/A, 10-Q/A
	FormOther     FormType = "other"
)

// ClassifyFormType maps a raw SEC form string (e.g. "10-K", "10-K/A") to the
// closed FormType enumeration.
func ClassifyFormType(raw string) FormType {
	switch raw {
	case "10-K":
		return FormAnnual
	case "10-Q":
		return FormQuarterly
	case "10-K/A", "10-Q/A":
		return FormAmendment
	default:
		return FormOther
	}
}

// IsAmendment reports whether the form is an amendment of either annual or
// quarterly filings.
func (f FormType) IsAmendment() bool { return f == FormAmendment }

// PeriodType selects which fiscal cadence a snapshot request targets.
type PeriodType string

const (
	PeriodAnnual    PeriodType = "annual"
	PeriodQuarterly PeriodType = "quarterly"
)

// Filing is one regulatory filing record. acceptance_datetime is the sole
// point-in-time availability gate: a row derived from this filing may never
// appear in a snapshot whose cutoff predates it.
type Filing struct {
	Issuer     IssuerID
	FormType   FormType
	RawForm    string // original form string, e.g. "10-K/A"
	PeriodEnd  time.Time
	FilingDate time.Time
	Accepted   time.Time // acceptance_datetime, second-granularity
	Accession  string
}

// Validate asserts the filing's internal ordering invariant:
// period_end <= filing_date <= acceptance_datetime. Violations indicate a
// malformed upstream record and are never expected in practice.
func (f Filing) Validate() error {
	if f.PeriodEnd.After(f.FilingDate) {
		return eris.Errorf("filing %s: period_end %s after filing_date %s", f.Accession, f.PeriodEnd, f.FilingDate)
	}
	if f.FilingDate.After(f.Accepted) {
		return eris.Errorf("filing %s: filing_date %s after acceptance_datetime %s", f.Accession, f.FilingDate, f.Accepted)
	}
	return nil
}

// MatchesPeriodType reports whether the filing's underlying form family
// (10-K/10-K/A vs 10-Q/10-Q/A) matches the requested fiscal cadence. An
// amendment is classified by the form it amends, read off RawForm, since
// FormType itself collapses both amendment families into FormAmendment.
func (f Filing) MatchesPeriodType(pt PeriodType) bool {
	switch pt {
	case PeriodAnnual:
		return f.FormType == FormAnnual || (f.FormType == FormAmendment && strings.HasPrefix(f.RawForm, "10-K"))
	case PeriodQuarterly:
		return f.FormType == FormQuarterly || (f.FormType == FormAmendment && strings.HasPrefix(f.RawForm, "10-Q"))
	default:
		return true
	}
}

// AcceptedDate truncates the acceptance datetime to a calendar date, the unit
// the PIT gate compares against a cutoff date.
func (f Filing) AcceptedDate() time.Time {
	return time.Date(f.Accepted.Year(), f.Accepted.Month(), f.Accepted.Day(), 0, 0, 0, 0, f.Accepted.Location())
}

// WithinCutoff is the primary PIT gate: a filing is visible at cutoff iff its
// acceptance date is on or before the cutoff date (same calendar day counts).
func (f Filing) WithinCutoff(cutoff time.Time) bool {
	return !f.AcceptedDate().After(dateOnly(cutoff))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
