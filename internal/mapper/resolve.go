package mapper

import (
	"time"

	"github.com/sells-group/pit-fundamentals/internal/model"
	"github.com/sells-group/pit-fundamentals/internal/xbrl"
)

// Resolver resolves standard fields from a fact stream using the priority
// table and the Context Engine's period/cutoff selection.
type Resolver struct {
	engine *xbrl.ContextEngine
}

// NewResolver creates a Resolver.
func NewResolver(engine *xbrl.ContextEngine) *Resolver {
	return &Resolver{engine: engine}
}

// Resolve returns the value for field over [periodStart, periodEnd] (start
// is ignored for instant fields) as of cutoff, trying each tag mapping in
// priority order and stopping at the first that yields a fact. It returns
// (0, false) if no mapped tag has a usable fact for the period.
func (r *Resolver) Resolve(stream xbrl.FactStream, field model.StandardField, periodStart, periodEnd, cutoff time.Time) (float64, bool) {
	for _, mapping := range MappingsFor(field) {
		facts, ok := stream[mapping.Tag]
		if !ok {
			continue
		}

		var fact model.XBRLFact
		var found bool
		if mapping.ExpectedPeriod == model.PeriodInstant {
			fact, found = r.engine.SelectForInstant(facts, periodEnd, cutoff)
		} else {
			fact, found = r.engine.SelectForDuration(facts, periodStart, periodEnd, cutoff)
		}
		if !found {
			continue
		}

		value := fact.Value
		if mapping.SignFlip {
			value = -value
		}
		return value, true
	}
	return 0, false
}
