package model

import "time"

// SnapshotRequest describes one Snapshot Builder invocation: the universe of
// tickers, the as-of cutoff date that bounds every fact and filing visible to
// the run, and how far back to look for fiscal periods.
type SnapshotRequest struct {
	Tickers        []Ticker
	CutoffDate     time.Time
	PeriodType     PeriodType // annual or quarterly; defaults to PeriodAnnual if empty
	LookbackYears  int
	MaxConcurrency int
}

// IncomeRow is one (ticker, period) row of the income statement table.
type IncomeRow struct {
	Ticker                   Ticker
	PeriodEnd                time.Time
	AsOfDate                 time.Time
	Revenue                  *float64
	CostOfRevenue            *float64
	GrossProfit              *float64
	SGAExpense               *float64
	RAndDExpense             *float64
	OperatingIncome          *float64
	InterestExpense          *float64
	IncomeTaxExpense         *float64
	NetIncome                *float64
	DilutedSharesOutstanding *float64
	BasicSharesOutstanding   *float64
	DilutedEPS               *float64
}

// BalanceRow is one (ticker, period) row of the balance sheet table.
type BalanceRow struct {
	Ticker                    Ticker
	PeriodEnd                 time.Time
	AsOfDate                  time.Time
	TotalAssets               *float64
	TotalCurrentAssets        *float64
	TotalLiabilities          *float64
	TotalCurrentLiabilities   *float64
	TotalEquity               *float64
	CashAndEquivalents        *float64
	Goodwill                  *float64
	RetainedEarnings          *float64
	AccountsReceivable        *float64
	Inventory                 *float64
	LongTermDebt              *float64
	ShortTermDebt             *float64
}

// CashflowRow is one (ticker, period) row of the cashflow statement table.
type CashflowRow struct {
	Ticker                Ticker
	PeriodEnd             time.Time
	AsOfDate              time.Time
	CashFromOperations    *float64
	CashFromInvesting     *float64
	CashFromFinancing     *float64
	Capex                 *float64
	DepreciationAmort     *float64
	DividendsPaid         *float64
	StockBasedComp        *float64
}

// DerivedMetricsRow is one (ticker, period) row of metrics computed from the
// three primary statements, never sourced directly from a tag.
type DerivedMetricsRow struct {
	Ticker           Ticker
	PeriodEnd        time.Time
	AsOfDate         time.Time
	FreeCashFlow     *float64
	GrossMargin      *float64
	OperatingMargin  *float64
	NetMargin        *float64
	CurrentRatio     *float64
}

// CompanyMaster is one row in the issuer registry: CIK, resolved company
// name, and the ticker it was resolved from.
type CompanyMaster struct {
	Issuer      IssuerID
	Ticker      Ticker
	EntityName  string
}

// CoverageReport summarizes one Snapshot Builder run: which tickers
// succeeded, which failed and why, and per-ticker validation warnings. It is
// the caller-facing audit trail, not a retry queue.
type CoverageReport struct {
	RunID        string
	GeneratedAt  time.Time
	Requested    int
	Succeeded    []Ticker
	Failed       map[Ticker]error
	Warnings     []ValidationWarning
}

// RawFactRow pairs one fetched XBRLFact with the ticker it was fetched for,
// the unit the raw-fact audit log (distinct from the assembled statement
// tables) is recorded in.
type RawFactRow struct {
	Ticker    Ticker
	Tag       string
	Value     float64
	Unit      string
	PeriodEnd time.Time
	Accession string
	FiledDate time.Time
}

// SnapshotResult is the full output of one builder run.
type SnapshotResult struct {
	Income   []IncomeRow
	Balance  []BalanceRow
	Cashflow []CashflowRow
	Derived  []DerivedMetricsRow
	RawFacts []RawFactRow
	Coverage CoverageReport
}
