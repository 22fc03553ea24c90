package model

import "time"

// PeriodKind distinguishes point-in-time facts (balance sheet) from
// duration facts (income/cashflow statements).
type PeriodKind string

const (
	PeriodInstant  PeriodKind = "instant"
	PeriodDuration PeriodKind = "duration"
)

// XBRLFact is one immutable tagged value extracted from a company-facts
// payload. The same logical value may appear in multiple filings (original
// plus restatements); those are distinct facts distinguished by Accession
// and FiledDate, never mutated or merged.
type XBRLFact struct {
	Tag         string // namespace-qualified, e.g. "us-gaap:Revenues"
	Value       float64
	Unit        string
	PeriodStart time.Time // zero for instant facts
	PeriodEnd   time.Time
	PeriodKind  PeriodKind
	Accession   string
	Form        string
	FiledDate   time.Time
	// Frame is the SEC's standardized calendar-period identifier (e.g.
	// "CY2022"), present only on facts reported without a dimensional
	// segment breakdown. Its presence is the company-facts API's signal
	// that a fact represents the whole consolidated entity.
	Frame string
}

// Consolidated reports whether the fact represents the whole entity rather
// than a segment or business-unit slice: the company-facts API omits
// Frame on any fact carrying a dimensional (segment) qualifier.
func (f XBRLFact) Consolidated() bool {
	return f.Frame != ""
}

// WithinCutoff is the secondary, defense-in-depth PIT gate on the fact's own
// filed date (as distinct from the filing's acceptance_datetime gate).
func (f XBRLFact) WithinCutoff(cutoff time.Time) bool {
	return !dateOnly(f.FiledDate).After(dateOnly(cutoff))
}

// periodTolerance absorbs 52/53-week fiscal calendar drift when matching a
// fact's reported period against a target fiscal period end.
const periodTolerance = 3 * 24 * time.Hour

// MatchesPeriodEnd reports whether the fact's period end falls within
// ±periodTolerance of the target fiscal period end.
func (f XBRLFact) MatchesPeriodEnd(target time.Time) bool {
	diff := f.PeriodEnd.Sub(target)
	if diff < 0 {
		diff = -diff
	}
	return diff <= periodTolerance
}

// MatchesDuration reports whether the fact's [start, end] window brackets
// the target fiscal period's [start, end] window within tolerance on both
// endpoints.
func (f XBRLFact) MatchesDuration(targetStart, targetEnd time.Time) bool {
	startDiff := f.PeriodStart.Sub(targetStart)
	if startDiff < 0 {
		startDiff = -startDiff
	}
	endDiff := f.PeriodEnd.Sub(targetEnd)
	if endDiff < 0 {
		endDiff = -endDiff
	}
	return startDiff <= periodTolerance && endDiff <= periodTolerance
}
