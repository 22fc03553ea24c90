package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/pit-fundamentals/internal/cache"
	"github.com/sells-group/pit-fundamentals/internal/cik"
	"github.com/sells-group/pit-fundamentals/internal/filings"
	"github.com/sells-group/pit-fundamentals/internal/mapper"
	"github.com/sells-group/pit-fundamentals/internal/model"
	"github.com/sells-group/pit-fundamentals/internal/ratelimit"
	"github.com/sells-group/pit-fundamentals/internal/resilience"
	"github.com/sells-group/pit-fundamentals/internal/secclient"
	"github.com/sells-group/pit-fundamentals/internal/snapshot"
	"github.com/sells-group/pit-fundamentals/internal/statement"
	"github.com/sells-group/pit-fundamentals/internal/store"
	"github.com/sells-group/pit-fundamentals/internal/xbrl"
)

var (
	snapshotTickers     []string
	snapshotCutoff      string
	snapshotPeriod      string
	snapshotLookback    int
	snapshotConcurrency int
	snapshotPersist     bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Build a point-in-time fundamental snapshot for one or more tickers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cutoff, err := parseCutoff(snapshotCutoff)
		if err != nil {
			return err
		}
		periodType, err := parsePeriodType(snapshotPeriod)
		if err != nil {
			return err
		}

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		tickers := make([]model.Ticker, len(snapshotTickers))
		for i, t := range snapshotTickers {
			tickers[i] = model.Ticker(t)
		}

		req := model.SnapshotRequest{
			Tickers:        tickers,
			CutoffDate:     cutoff,
			PeriodType:     periodType,
			LookbackYears:  snapshotLookback,
			MaxConcurrency: snapshotConcurrency,
		}

		result, err := env.Builder.Build(ctx, req)
		if err != nil {
			return eris.Wrap(err, "snapshot: build")
		}

		zap.L().Info("snapshot complete",
			zap.Int("requested", result.Coverage.Requested),
			zap.Int("succeeded", len(result.Coverage.Succeeded)),
			zap.Int("failed", len(result.Coverage.Failed)),
			zap.Int("income_rows", len(result.Income)),
		)

		if env.Store != nil && snapshotPersist {
			if err := env.Store.PersistSnapshot(ctx, result); err != nil {
				return eris.Wrap(err, "snapshot: persist")
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshotOutput(result))
	},
}

// snapshotOutput re-shapes a model.SnapshotResult for JSON rendering: the
// error interface inside CoverageReport.Failed doesn't marshal to anything
// useful on its own, so it's flattened to its message string.
type snapshotOutputView struct {
	Income   []model.IncomeRow         `json:"income"`
	Balance  []model.BalanceRow        `json:"balance"`
	Cashflow []model.CashflowRow       `json:"cashflow"`
	Derived  []model.DerivedMetricsRow `json:"derived"`
	Coverage coverageView              `json:"coverage"`
}

type coverageView struct {
	RunID       string                        `json:"run_id"`
	GeneratedAt time.Time                     `json:"generated_at"`
	Requested   int                           `json:"requested"`
	Succeeded   []model.Ticker                `json:"succeeded"`
	Failed      map[model.Ticker]string       `json:"failed"`
	Warnings    []model.ValidationWarning     `json:"warnings"`
}

func snapshotOutput(result model.SnapshotResult) snapshotOutputView {
	failed := make(map[model.Ticker]string, len(result.Coverage.Failed))
	for ticker, err := range result.Coverage.Failed {
		failed[ticker] = err.Error()
	}
	return snapshotOutputView{
		Income:   result.Income,
		Balance:  result.Balance,
		Cashflow: result.Cashflow,
		Derived:  result.Derived,
		Coverage: coverageView{
			RunID:       result.Coverage.RunID,
			GeneratedAt: result.Coverage.GeneratedAt,
			Requested:   result.Coverage.Requested,
			Succeeded:   result.Coverage.Succeeded,
			Failed:      failed,
			Warnings:    result.Coverage.Warnings,
		},
	}
}

func init() {
	snapshotCmd.Flags().StringSliceVar(&snapshotTickers, "tickers", nil, "tickers to snapshot, e.g. AAPL,MSFT")
	snapshotCmd.Flags().StringVar(&snapshotCutoff, "cutoff", "", "as-of cutoff date (YYYY-MM-DD), defaults to today")
	snapshotCmd.Flags().StringVar(&snapshotPeriod, "period", "annual", "fiscal period type: annual or quarterly")
	snapshotCmd.Flags().IntVar(&snapshotLookback, "lookback-years", 0, "fiscal years to look back, 0 = use config default")
	snapshotCmd.Flags().IntVar(&snapshotConcurrency, "concurrency", 0, "max concurrent ticker resolutions, 0 = use config default")
	snapshotCmd.Flags().BoolVar(&snapshotPersist, "persist", false, "write the snapshot into the configured Postgres store")
	_ = snapshotCmd.MarkFlagRequired("tickers")
	rootCmd.AddCommand(snapshotCmd)
}

func parsePeriodType(s string) (model.PeriodType, error) {
	switch s {
	case "", "annual":
		return model.PeriodAnnual, nil
	case "quarterly":
		return model.PeriodQuarterly, nil
	default:
		return "", eris.Errorf("snapshot: --period must be \"annual\" or \"quarterly\", got %q", s)
	}
}

func parseCutoff(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "snapshot: parse --cutoff %q", s)
	}
	return t, nil
}

// engine holds the wired Snapshot Builder and its optional persistence
// backend for the lifetime of one command invocation.
type engine struct {
	Builder *snapshot.Builder
	Store   *store.SnapshotStore
	pool    *pgxpool.Pool
	cache   *cache.Cache
}

// Close releases the resources initEngine opened.
func (e *engine) Close() {
	if e.pool != nil {
		e.pool.Close()
	}
	if e.cache != nil {
		_ = e.cache.Close()
	}
}

// initEngine wires the full SEC ingestion and statement-assembly pipeline
// from cfg, and optionally a Postgres-backed SnapshotStore when
// store.database_url is configured.
func initEngine(ctx context.Context) (*engine, error) {
	if snapshotLookback > 0 {
		cfg.Snapshot.LookbackYears = snapshotLookback
	} else {
		snapshotLookback = cfg.Snapshot.LookbackYears
	}
	if snapshotConcurrency <= 0 {
		snapshotConcurrency = cfg.Snapshot.MaxConcurrency
	}

	var respCache *cache.Cache
	if cfg.Cache.DSN != "" {
		c, err := cache.Open(ctx, cfg.Cache.DSN)
		if err != nil {
			return nil, eris.Wrap(err, "engine: open response cache")
		}
		respCache = c
	}

	limiter := ratelimit.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	retryCfg := resilience.FromRetryConfig(cfg.Retry.MaxAttempts, cfg.Retry.BaseDelayMS, cfg.Retry.MaxDelayMS, 0, resilience.DefaultRetryConfig().JitterFraction)
	circuitCfg := resilience.FromCircuitConfig(cfg.Circuit.FailureThreshold, cfg.Circuit.ResetTimeoutSecs)

	client, err := secclient.New(respCache, limiter, secclient.Options{
		UserAgent:     cfg.SEC.UserAgent,
		Timeout:       cfg.SEC.Timeout(),
		RetryConfig:   retryCfg,
		CircuitConfig: circuitCfg,
	})
	if err != nil {
		if respCache != nil {
			_ = respCache.Close()
		}
		return nil, eris.Wrap(err, "engine: init sec client")
	}

	ciks := cik.New(client)
	index := filings.New(client)
	selector := filings.NewSelector(filings.SelectorConfig{AllowAmendments: cfg.Snapshot.AllowAmendments})
	fetcher := xbrl.NewFetcher(client)
	resolver := mapper.NewResolver(xbrl.NewContextEngine())
	assembler := statement.NewAssembler(resolver)

	builder := snapshot.NewBuilder(ciks, index, selector, fetcher, assembler)

	eng := &engine{Builder: builder, cache: respCache}

	if cfg.Store.DatabaseURL != "" {
		poolCfg, err := pgxpool.ParseConfig(cfg.Store.DatabaseURL)
		if err != nil {
			eng.Close()
			return nil, eris.Wrap(err, "engine: parse store.database_url")
		}
		poolCfg.MaxConns = cfg.Store.MaxConns
		poolCfg.MinConns = cfg.Store.MinConns

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			eng.Close()
			return nil, eris.Wrap(err, "engine: create store pool")
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			eng.Close()
			return nil, eris.Wrap(err, "engine: ping store")
		}
		if err := store.Migrate(ctx, pool); err != nil {
			pool.Close()
			eng.Close()
			return nil, eris.Wrap(err, "engine: migrate store")
		}

		eng.pool = pool
		eng.Store = store.NewSnapshotStore(pool)
		zap.L().Info("postgres store enabled")
	}

	return eng, nil
}
