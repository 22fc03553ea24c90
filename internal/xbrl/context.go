package xbrl

import (
	"time"

	"github.com/sells-group/pit-fundamentals/internal/model"
)

// ContextEngine selects, from a tag's full fact history, the single fact
// that best represents one target fiscal period as of one cutoff date.
type ContextEngine struct{}

// NewContextEngine creates a ContextEngine. It is stateless.
func NewContextEngine() *ContextEngine { return &ContextEngine{} }

// FilterByPeriodKind keeps only facts whose PeriodKind matches kind.
func (e *ContextEngine) FilterByPeriodKind(facts []model.XBRLFact, kind model.PeriodKind) []model.XBRLFact {
	out := make([]model.XBRLFact, 0, len(facts))
	for _, f := range facts {
		if f.PeriodKind == kind {
			out = append(out, f)
		}
	}
	return out
}

// PreferConsolidated returns the subset of facts carrying the API's
// consolidated-entity frame marker, falling back to the full input set
// when none do (a segment-only reporter still needs a best-effort value).
func (e *ContextEngine) PreferConsolidated(facts []model.XBRLFact) []model.XBRLFact {
	var consolidated []model.XBRLFact
	for _, f := range facts {
		if f.Consolidated() {
			consolidated = append(consolidated, f)
		}
	}
	if len(consolidated) > 0 {
		return consolidated
	}
	return facts
}

// SelectForInstant picks the best fact for an instant (balance-sheet) tag
// at targetPeriodEnd, as of cutoff. It returns (zero, false) if no fact
// qualifies.
func (e *ContextEngine) SelectForInstant(facts []model.XBRLFact, targetPeriodEnd, cutoff time.Time) (model.XBRLFact, bool) {
	return e.selectBest(e.FilterByPeriodKind(facts, model.PeriodInstant), func(f model.XBRLFact) bool {
		return f.MatchesPeriodEnd(targetPeriodEnd)
	}, cutoff)
}

// SelectForDuration picks the best fact for a duration (income/cashflow)
// tag over [targetStart, targetEnd], as of cutoff.
func (e *ContextEngine) SelectForDuration(facts []model.XBRLFact, targetStart, targetEnd, cutoff time.Time) (model.XBRLFact, bool) {
	return e.selectBest(e.FilterByPeriodKind(facts, model.PeriodDuration), func(f model.XBRLFact) bool {
		return f.MatchesDuration(targetStart, targetEnd)
	}, cutoff)
}

// selectBest runs the five-step Context Engine algorithm over facts
// already filtered to the right period kind:
//  1. keep only facts within cutoff (defense-in-depth PIT gate)
//  2. keep only facts matching the target period window
//  3. prefer consolidated facts over segment-dimensioned ones
//  4. among survivors, prefer the latest FiledDate
//  5. break any remaining tie by preferring an amendment form over an
//     original, since a later amendment is presumed more accurate
func (e *ContextEngine) selectBest(facts []model.XBRLFact, matchesPeriod func(model.XBRLFact) bool, cutoff time.Time) (model.XBRLFact, bool) {
	var windowed []model.XBRLFact
	for _, f := range facts {
		if !f.WithinCutoff(cutoff) {
			continue
		}
		if !matchesPeriod(f) {
			continue
		}
		windowed = append(windowed, f)
	}
	if len(windowed) == 0 {
		return model.XBRLFact{}, false
	}

	candidates := e.PreferConsolidated(windowed)

	best := candidates[0]
	for _, f := range candidates[1:] {
		if f.FiledDate.After(best.FiledDate) {
			best = f
			continue
		}
		if f.FiledDate.Equal(best.FiledDate) && model.ClassifyFormType(f.Form).IsAmendment() && !model.ClassifyFormType(best.Form).IsAmendment() {
			best = f
		}
	}
	return best, true
}
