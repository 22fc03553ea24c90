// Package snapshot orchestrates the full pipeline — filing selection, fact
// fetching, tag resolution, and statement assembly — across a universe of
// tickers, and merges the per-ticker output into the final PIT snapshot
// tables.
package snapshot

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/pit-fundamentals/internal/cik"
	"github.com/sells-group/pit-fundamentals/internal/filings"
	"github.com/sells-group/pit-fundamentals/internal/model"
	"github.com/sells-group/pit-fundamentals/internal/statement"
	"github.com/sells-group/pit-fundamentals/internal/xbrl"
)

// Builder runs the end-to-end snapshot pipeline.
type Builder struct {
	ciks      *cik.Map
	index     *filings.Index
	selector  *filings.Selector
	fetcher   *xbrl.Fetcher
	assembler *statement.Assembler
	log       *zap.Logger
}

// NewBuilder wires the pipeline's collaborators into a Builder.
func NewBuilder(ciks *cik.Map, index *filings.Index, selector *filings.Selector, fetcher *xbrl.Fetcher, assembler *statement.Assembler) *Builder {
	return &Builder{
		ciks:      ciks,
		index:     index,
		selector:  selector,
		fetcher:   fetcher,
		assembler: assembler,
		log:       zap.L().With(zap.String("component", "snapshot")),
	}
}

// Build runs req across its ticker universe with bounded concurrency,
// merges the results by (ticker, period_end) with latest-asof-date wins,
// and re-asserts the global PIT invariant before returning.
func (b *Builder) Build(ctx context.Context, req model.SnapshotRequest) (model.SnapshotResult, error) {
	concurrency := req.MaxConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	periodType := req.PeriodType
	if periodType == "" {
		periodType = model.PeriodAnnual
	}

	companies, err := b.ciks.ResolveMany(ctx, req.Tickers)
	if err != nil {
		return model.SnapshotResult{}, eris.Wrap(err, "snapshot: resolve tickers")
	}

	type tickerResult struct {
		ticker   model.Ticker
		income   []model.IncomeRow
		balance  []model.BalanceRow
		cashflow []model.CashflowRow
		rawFacts []model.RawFactRow
		err      error
	}

	results := make([]tickerResult, len(req.Tickers))
	var succeeded, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, ticker := range req.Tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			log := b.log.With(zap.String("ticker", string(ticker)))

			company, ok := companies[model.NormalizeTicker(string(ticker))]
			if !ok {
				failed.Add(1)
				results[i] = tickerResult{ticker: ticker, err: &model.NotFoundError{URL: string(ticker)}}
				log.Warn("ticker not found in registry")
				return nil
			}

			income, balance, cashflow, rawFacts, err := b.buildOne(gctx, company, req.CutoffDate, req.LookbackYears, periodType)
			if err != nil {
				if isFatalPipelineError(err) {
					log.Error("fatal pipeline error, aborting snapshot", zap.Error(err))
					return err // abort the whole group, never recovered per-ticker
				}
				failed.Add(1)
				results[i] = tickerResult{ticker: ticker, err: err}
				log.Error("ticker pipeline failed", zap.Error(err))
				return nil // isolate per-ticker failure from the group
			}

			succeeded.Add(1)
			results[i] = tickerResult{ticker: ticker, income: income, balance: balance, cashflow: cashflow, rawFacts: rawFacts}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return model.SnapshotResult{}, eris.Wrap(err, "snapshot: build")
	}

	coverage := model.CoverageReport{
		RunID:       uuid.New().String(),
		GeneratedAt: req.CutoffDate,
		Requested:   len(req.Tickers),
		Failed:      make(map[model.Ticker]error),
	}

	var allIncome []model.IncomeRow
	var allBalance []model.BalanceRow
	var allCashflow []model.CashflowRow
	var allDerived []model.DerivedMetricsRow
	var allRawFacts []model.RawFactRow

	for _, r := range results {
		if r.err != nil {
			coverage.Failed[r.ticker] = r.err
			continue
		}
		coverage.Succeeded = append(coverage.Succeeded, r.ticker)
		allIncome = append(allIncome, r.income...)
		allBalance = append(allBalance, r.balance...)
		allCashflow = append(allCashflow, r.cashflow...)
		allRawFacts = append(allRawFacts, r.rawFacts...)

		for pi := range r.income {
			for bi := range r.balance {
				if !r.income[pi].PeriodEnd.Equal(r.balance[bi].PeriodEnd) {
					continue
				}
				for ci := range r.cashflow {
					if !r.income[pi].PeriodEnd.Equal(r.cashflow[ci].PeriodEnd) {
						continue
					}
					allDerived = append(allDerived, b.assembler.AssembleDerived(r.income[pi], r.balance[bi], r.cashflow[ci]))
				}
			}
		}
	}

	allIncome = mergeIncome(allIncome)
	allBalance = mergeBalance(allBalance)
	allCashflow = mergeCashflow(allCashflow)

	if err := assertNoCutoffViolations(allIncome, allBalance, allCashflow, req.CutoffDate); err != nil {
		return model.SnapshotResult{}, err
	}

	coverage.Warnings = statement.ValidationWarningsForBalance(allBalance)

	return model.SnapshotResult{
		Income:   allIncome,
		Balance:  allBalance,
		Cashflow: allCashflow,
		Derived:  allDerived,
		RawFacts: allRawFacts,
		Coverage: coverage,
	}, nil
}

// isFatalPipelineError reports whether err is one of the fatal,
// programmer-error conditions that must abort the whole snapshot rather
// than be isolated into one ticker's coverage failure: a PIT cutoff
// violation surviving the selector's own post-condition check, or a
// rejected/missing credential against the regulator's API.
func isFatalPipelineError(err error) bool {
	var cutoffErr *model.CutoffViolationError
	var authErr *model.AuthError
	return errors.As(err, &cutoffErr) || errors.As(err, &authErr)
}

// buildOne runs the single-ticker pipeline: filing selection, fact
// fetching, then sequential per-period statement assembly ascending by
// period_end.
func (b *Builder) buildOne(ctx context.Context, company model.CompanyMaster, cutoff time.Time, lookbackYears int, periodType model.PeriodType) ([]model.IncomeRow, []model.BalanceRow, []model.CashflowRow, []model.RawFactRow, error) {
	all, err := b.index.List(ctx, company.Issuer, periodType)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	selected, err := b.selector.Select(all, cutoff)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	if lookbackYears > 0 {
		earliest := cutoff.AddDate(-lookbackYears, 0, 0)
		filtered := selected[:0]
		for _, f := range selected {
			if !f.PeriodEnd.Before(earliest) {
				filtered = append(filtered, f)
			}
		}
		selected = filtered
	}

	if len(selected) == 0 {
		return nil, nil, nil, nil, nil
	}

	stream, err := b.fetcher.Fetch(ctx, company.Issuer)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	var income []model.IncomeRow
	var balance []model.BalanceRow
	var cashflow []model.CashflowRow

	for _, f := range selected {
		periodStart := periodStartFor(periodType, f.PeriodEnd)
		income = append(income, b.assembler.AssembleIncome(company.Ticker, f.Accepted, periodStart, f.PeriodEnd, cutoff, stream))
		balance = append(balance, b.assembler.AssembleBalance(company.Ticker, f.Accepted, f.PeriodEnd, cutoff, stream))
		cashflow = append(cashflow, b.assembler.AssembleCashflow(company.Ticker, f.Accepted, periodStart, f.PeriodEnd, cutoff, stream))
	}
	return income, balance, cashflow, rawFactRowsFor(company.Ticker, stream), nil
}

// rawFactRowsFor flattens a fetched fact stream into the audit-log rows
// persisted alongside (not instead of) the assembled statement tables —
// every fact the SEC returned for this ticker, whether or not the
// assembler ended up using it.
func rawFactRowsFor(ticker model.Ticker, stream xbrl.FactStream) []model.RawFactRow {
	var rows []model.RawFactRow
	for _, facts := range stream {
		for _, f := range facts {
			rows = append(rows, model.RawFactRow{
				Ticker:    ticker,
				Tag:       f.Tag,
				Value:     f.Value,
				Unit:      f.Unit,
				PeriodEnd: f.PeriodEnd,
				Accession: f.Accession,
				FiledDate: f.FiledDate,
			})
		}
	}
	return rows
}

// periodStartFor derives a fiscal period's start date from its end date and
// the request's period type, rather than inferring it per-filing from form
// type — an amendment's FormType never reveals which cadence it amends, and
// the cadence is a property of the request, not of any one filing in it.
func periodStartFor(periodType model.PeriodType, periodEnd time.Time) time.Time {
	if periodType == model.PeriodQuarterly {
		return periodEnd.AddDate(0, -3, 0)
	}
	return periodEnd.AddDate(-1, 0, 1)
}

func mergeIncome(rows []model.IncomeRow) []model.IncomeRow {
	best := make(map[rowKey]model.IncomeRow)
	for _, r := range rows {
		key := rowKey{r.Ticker, r.PeriodEnd}
		if existing, ok := best[key]; !ok || r.AsOfDate.After(existing.AsOfDate) {
			best[key] = r
		}
	}
	out := make([]model.IncomeRow, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	sortByTickerPeriod(out, func(i int) (model.Ticker, time.Time) { return out[i].Ticker, out[i].PeriodEnd })
	return out
}

func mergeBalance(rows []model.BalanceRow) []model.BalanceRow {
	best := make(map[rowKey]model.BalanceRow)
	for _, r := range rows {
		key := rowKey{r.Ticker, r.PeriodEnd}
		if existing, ok := best[key]; !ok || r.AsOfDate.After(existing.AsOfDate) {
			best[key] = r
		}
	}
	out := make([]model.BalanceRow, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	sortByTickerPeriod(out, func(i int) (model.Ticker, time.Time) { return out[i].Ticker, out[i].PeriodEnd })
	return out
}

func mergeCashflow(rows []model.CashflowRow) []model.CashflowRow {
	best := make(map[rowKey]model.CashflowRow)
	for _, r := range rows {
		key := rowKey{r.Ticker, r.PeriodEnd}
		if existing, ok := best[key]; !ok || r.AsOfDate.After(existing.AsOfDate) {
			best[key] = r
		}
	}
	out := make([]model.CashflowRow, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	sortByTickerPeriod(out, func(i int) (model.Ticker, time.Time) { return out[i].Ticker, out[i].PeriodEnd })
	return out
}

type rowKey struct {
	Ticker    model.Ticker
	PeriodEnd time.Time
}

func sortByTickerPeriod[T any](rows []T, key func(int) (model.Ticker, time.Time)) {
	sort.Slice(rows, func(i, j int) bool {
		ti, pi := key(i)
		tj, pj := key(j)
		if ti != tj {
			return ti < tj
		}
		return pi.Before(pj)
	})
}

// assertNoCutoffViolations re-asserts the PIT invariant at emission time,
// comparing at date granularity like Filing.WithinCutoff: a filing accepted
// on the cutoff date itself is visible, so AsOfDate (a full acceptance
// datetime) must be truncated before the comparison, not compared against
// a midnight cutoff directly.
func assertNoCutoffViolations(income []model.IncomeRow, balance []model.BalanceRow, cashflow []model.CashflowRow, cutoff time.Time) error {
	cutoffDate := dateOnly(cutoff)
	for _, r := range income {
		if dateOnly(r.AsOfDate).After(cutoffDate) {
			return &model.CutoffViolationError{Ticker: r.Ticker, Cutoff: cutoff, Accepted: r.AsOfDate}
		}
	}
	for _, r := range balance {
		if dateOnly(r.AsOfDate).After(cutoffDate) {
			return &model.CutoffViolationError{Ticker: r.Ticker, Cutoff: cutoff, Accepted: r.AsOfDate}
		}
	}
	for _, r := range cashflow {
		if dateOnly(r.AsOfDate).After(cutoffDate) {
			return &model.CutoffViolationError{Ticker: r.Ticker, Cutoff: cutoff, Accepted: r.AsOfDate}
		}
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
