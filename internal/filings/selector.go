package filings

import (
	"sort"
	"time"

	"github.com/sells-group/pit-fundamentals/internal/model"
)

// SelectorConfig controls the Selector's amendment handling.
type SelectorConfig struct {
	// AllowAmendments, when true, lets a later-accepted 10-K/A or 10-Q/A
	// override its original for the same fiscal period. When false,
	// amendments are dropped from the candidate set entirely.
	AllowAmendments bool
}

// Selector reduces an issuer's full filing history to exactly one filing
// per fiscal period, as of a given cutoff date.
type Selector struct {
	cfg SelectorConfig
}

// NewSelector creates a Selector.
func NewSelector(cfg SelectorConfig) *Selector {
	return &Selector{cfg: cfg}
}

// Select applies the primary PIT gate, drops disallowed amendments, and
// collapses duplicate fiscal periods to their latest-accepted filing. It
// returns filings sorted ascending by PeriodEnd. It panics never and
// returns an error only if a surviving filing is somehow still past
// cutoff — a defense-in-depth assertion that should be unreachable given
// the filter above.
func (s *Selector) Select(all []model.Filing, cutoff time.Time) ([]model.Filing, error) {
	var candidates []model.Filing
	for _, f := range all {
		if !f.WithinCutoff(cutoff) {
			continue
		}
		if f.FormType.IsAmendment() && !s.cfg.AllowAmendments {
			continue
		}
		candidates = append(candidates, f)
	}

	byPeriod := make(map[time.Time]model.Filing)
	for _, f := range candidates {
		key := f.PeriodEnd
		existing, ok := byPeriod[key]
		if !ok || f.Accepted.After(existing.Accepted) {
			byPeriod[key] = f
		}
	}

	out := make([]model.Filing, 0, len(byPeriod))
	for _, f := range byPeriod {
		if !f.WithinCutoff(cutoff) {
			return nil, &model.CutoffViolationError{
				Cutoff:    cutoff,
				Accepted:  f.Accepted,
				Accession: f.Accession,
			}
		}
		out = append(out, f)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].PeriodEnd.Before(out[j].PeriodEnd) })
	return out, nil
}
