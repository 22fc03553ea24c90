// Package store persists Snapshot Builder output into Postgres: the four
// statement tables and a run-level coverage record, written via the
// internal/db bulk-upsert helpers so repeated runs over the same
// (ticker, period_end) keys update in place rather than duplicate, plus an
// append-only raw-fact audit log written via internal/db's COPY helpers.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pit-fundamentals/internal/db"
	"github.com/sells-group/pit-fundamentals/internal/model"
)

// SnapshotStore writes a model.SnapshotResult's tables into Postgres.
type SnapshotStore struct {
	pool db.Pool
	log  *zap.Logger
}

// NewSnapshotStore creates a SnapshotStore backed by pool.
func NewSnapshotStore(pool db.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool, log: zap.L().With(zap.String("component", "store"))}
}

var incomeColumns = []string{"ticker", "period_end", "as_of_date", "revenue", "cost_of_revenue", "gross_profit",
	"sga_expense", "r_and_d_expense", "operating_income", "interest_expense", "income_tax_expense", "net_income",
	"diluted_shares_outstanding", "basic_shares_outstanding", "diluted_eps"}

var balanceColumns = []string{"ticker", "period_end", "as_of_date", "total_assets", "total_current_assets",
	"total_liabilities", "total_current_liabilities", "total_equity", "cash_and_equivalents", "goodwill",
	"retained_earnings", "accounts_receivable", "inventory", "long_term_debt", "short_term_debt"}

var cashflowColumns = []string{"ticker", "period_end", "as_of_date", "cash_from_operations", "cash_from_investing",
	"cash_from_financing", "capex", "depreciation_amort", "dividends_paid", "stock_based_comp"}

var derivedColumns = []string{"ticker", "period_end", "as_of_date", "free_cash_flow", "gross_margin",
	"operating_margin", "net_margin", "current_ratio"}

const conflictKeyTicker = "ticker"
const conflictKeyPeriodEnd = "period_end"

var rawFactColumns = []string{"run_id", "ticker", "tag", "unit", "period_end", "value", "accession", "filed_date"}

// rawFactBatchSize caps how many rows a single COPY statement carries, the
// same batching tiger.BulkLoad uses for its reference-data loads.
const rawFactBatchSize = 50000

// PersistRawFacts appends every raw XBRL fact fetched for runID into
// fundamentals.raw_facts via COPY. Unlike PersistIncome/PersistBalance/etc.
// this is a pure audit log: no ON CONFLICT handling, no update-in-place —
// each run's facts are archived as a new, immutable batch of rows.
func (s *SnapshotStore) PersistRawFacts(ctx context.Context, runID string, rows []model.RawFactRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	data := make([][]any, len(rows))
	for i, r := range rows {
		data[i] = []any{runID, r.Ticker, r.Tag, r.Unit, r.PeriodEnd, r.Value, r.Accession, r.FiledDate}
	}

	var total int64
	for i := 0; i < len(data); i += rawFactBatchSize {
		end := i + rawFactBatchSize
		if end > len(data) {
			end = len(data)
		}
		n, err := db.CopyFromSchema(ctx, s.pool, "fundamentals", "raw_facts", rawFactColumns, data[i:end])
		if err != nil {
			return total, eris.Wrap(err, "store: persist raw facts")
		}
		total += n
	}
	return total, nil
}

// PersistIncome upserts rows into fundamentals.income, keyed by (ticker,
// period_end).
func (s *SnapshotStore) PersistIncome(ctx context.Context, rows []model.IncomeRow) (int64, error) {
	data := make([][]any, len(rows))
	for i, r := range rows {
		data[i] = []any{r.Ticker, r.PeriodEnd, r.AsOfDate, r.Revenue, r.CostOfRevenue, r.GrossProfit, r.SGAExpense,
			r.RAndDExpense, r.OperatingIncome, r.InterestExpense, r.IncomeTaxExpense, r.NetIncome,
			r.DilutedSharesOutstanding, r.BasicSharesOutstanding, r.DilutedEPS}
	}
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "fundamentals.income",
		Columns:      incomeColumns,
		ConflictKeys: []string{conflictKeyTicker, conflictKeyPeriodEnd},
	}, data)
	if err != nil {
		return 0, eris.Wrap(err, "store: persist income")
	}
	return n, nil
}

// PersistBalance upserts rows into fundamentals.balance, keyed by (ticker,
// period_end).
func (s *SnapshotStore) PersistBalance(ctx context.Context, rows []model.BalanceRow) (int64, error) {
	data := make([][]any, len(rows))
	for i, r := range rows {
		data[i] = []any{r.Ticker, r.PeriodEnd, r.AsOfDate, r.TotalAssets, r.TotalCurrentAssets, r.TotalLiabilities,
			r.TotalCurrentLiabilities, r.TotalEquity, r.CashAndEquivalents, r.Goodwill, r.RetainedEarnings,
			r.AccountsReceivable, r.Inventory, r.LongTermDebt, r.ShortTermDebt}
	}
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "fundamentals.balance",
		Columns:      balanceColumns,
		ConflictKeys: []string{conflictKeyTicker, conflictKeyPeriodEnd},
	}, data)
	if err != nil {
		return 0, eris.Wrap(err, "store: persist balance")
	}
	return n, nil
}

// PersistCashflow upserts rows into fundamentals.cashflow, keyed by (ticker,
// period_end).
func (s *SnapshotStore) PersistCashflow(ctx context.Context, rows []model.CashflowRow) (int64, error) {
	data := make([][]any, len(rows))
	for i, r := range rows {
		data[i] = []any{r.Ticker, r.PeriodEnd, r.AsOfDate, r.CashFromOperations, r.CashFromInvesting,
			r.CashFromFinancing, r.Capex, r.DepreciationAmort, r.DividendsPaid, r.StockBasedComp}
	}
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "fundamentals.cashflow",
		Columns:      cashflowColumns,
		ConflictKeys: []string{conflictKeyTicker, conflictKeyPeriodEnd},
	}, data)
	if err != nil {
		return 0, eris.Wrap(err, "store: persist cashflow")
	}
	return n, nil
}

// PersistDerived upserts rows into fundamentals.derived_metrics, keyed by
// (ticker, period_end).
func (s *SnapshotStore) PersistDerived(ctx context.Context, rows []model.DerivedMetricsRow) (int64, error) {
	data := make([][]any, len(rows))
	for i, r := range rows {
		data[i] = []any{r.Ticker, r.PeriodEnd, r.AsOfDate, r.FreeCashFlow, r.GrossMargin, r.OperatingMargin,
			r.NetMargin, r.CurrentRatio}
	}
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "fundamentals.derived_metrics",
		Columns:      derivedColumns,
		ConflictKeys: []string{conflictKeyTicker, conflictKeyPeriodEnd},
	}, data)
	if err != nil {
		return 0, eris.Wrap(err, "store: persist derived metrics")
	}
	return n, nil
}

// PersistCoverage records one run's coverage report: requested/succeeded
// counts, the failed-ticker reasons, and any validation warnings, as a
// single audit row in fundamentals.snapshot_runs.
func (s *SnapshotStore) PersistCoverage(ctx context.Context, report model.CoverageReport) error {
	failed := make(map[string]string, len(report.Failed))
	for ticker, err := range report.Failed {
		failed[string(ticker)] = err.Error()
	}
	failedJSON, err := json.Marshal(failed)
	if err != nil {
		return eris.Wrap(err, "store: marshal failed tickers")
	}
	warningsJSON, err := json.Marshal(report.Warnings)
	if err != nil {
		return eris.Wrap(err, "store: marshal warnings")
	}

	const sql = `
		INSERT INTO fundamentals.snapshot_runs (run_id, generated_at, requested, succeeded, failed, warnings)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (run_id) DO NOTHING
	`
	if _, err := s.pool.Exec(ctx, sql,
		report.RunID, report.GeneratedAt, report.Requested, len(report.Succeeded), failedJSON, warningsJSON,
	); err != nil {
		return eris.Wrap(err, "store: persist coverage report")
	}
	return nil
}

// PersistSnapshot writes every table of result plus its coverage record in
// one call, logging row counts per table as it goes.
func (s *SnapshotStore) PersistSnapshot(ctx context.Context, result model.SnapshotResult) error {
	start := time.Now()

	if n, err := s.PersistIncome(ctx, result.Income); err != nil {
		return err
	} else {
		s.log.Info("persisted income rows", zap.Int64("rows", n))
	}
	if n, err := s.PersistBalance(ctx, result.Balance); err != nil {
		return err
	} else {
		s.log.Info("persisted balance rows", zap.Int64("rows", n))
	}
	if n, err := s.PersistCashflow(ctx, result.Cashflow); err != nil {
		return err
	} else {
		s.log.Info("persisted cashflow rows", zap.Int64("rows", n))
	}
	if n, err := s.PersistDerived(ctx, result.Derived); err != nil {
		return err
	} else {
		s.log.Info("persisted derived metric rows", zap.Int64("rows", n))
	}
	if err := s.PersistCoverage(ctx, result.Coverage); err != nil {
		return err
	}
	if n, err := s.PersistRawFacts(ctx, result.Coverage.RunID, result.RawFacts); err != nil {
		return err
	} else {
		s.log.Info("persisted raw fact audit rows", zap.Int64("rows", n))
	}

	s.log.Info("snapshot persisted", zap.Duration("elapsed", time.Since(start)), zap.String("run_id", result.Coverage.RunID))
	return nil
}
