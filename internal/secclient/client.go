// Package secclient is the sole HTTP boundary to the regulator's public
// APIs (ticker registry, submissions, company-facts). It generalizes
// the fedsync crawler's HTTPFetcher into a cache-first, rate-limited,
// retrying client with typed error classification in place of ad hoc
// status-code checks at call sites.
package secclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pit-fundamentals/internal/cache"
	"github.com/sells-group/pit-fundamentals/internal/model"
	"github.com/sells-group/pit-fundamentals/internal/ratelimit"
	"github.com/sells-group/pit-fundamentals/internal/resilience"
)

// Options configures a Client.
type Options struct {
	UserAgent     string // required: SEC fair-access policy rejects requests without one
	Timeout       time.Duration
	RetryConfig   resilience.RetryConfig
	CircuitConfig resilience.CircuitBreakerConfig
}

// Client fetches regulator documents, serving from cache on repeat calls
// and rate-limiting/retrying on miss. A single circuit breaker guards the
// one upstream this client talks to: the SEC's public APIs.
type Client struct {
	http    *http.Client
	cache   *cache.Cache
	limiter *ratelimit.Limiter
	breaker *resilience.CircuitBreaker
	opts    Options
	log     *zap.Logger
}

// New creates a Client. cache may be nil to disable response caching.
func New(c *cache.Cache, limiter *ratelimit.Limiter, opts Options) (*Client, error) {
	if opts.UserAgent == "" {
		return nil, eris.New("secclient: UserAgent is required by SEC fair access policy")
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	circuitCfg := opts.CircuitConfig
	if circuitCfg.ShouldTrip == nil {
		// only trip on transient failures (network errors, 429/5xx) — a 404
		// or auth error reflects the request, not an SEC-side outage.
		circuitCfg.ShouldTrip = resilience.IsTransient
	}
	return &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		cache:   c,
		limiter: limiter,
		breaker: resilience.NewCircuitBreaker(circuitCfg),
		opts:    opts,
		log:     zap.L().With(zap.String("component", "secclient")),
	}, nil
}

// Get fetches rawURL, serving from the response cache when present and
// otherwise rate-limiting, retrying transient failures, and caching the
// body only on a 200 response.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	key := cache.Key(rawURL, nil)
	if c.cache != nil {
		if body, ok, err := c.cache.Get(ctx, key); err != nil {
			c.log.Warn("cache read failed, falling back to network", zap.Error(err))
		} else if ok {
			return body, nil
		}
	}

	body, err := resilience.ExecuteVal(ctx, c.breaker, func(ctx context.Context) ([]byte, error) {
		return resilience.DoVal(ctx, c.opts.RetryConfig, func(ctx context.Context) ([]byte, error) {
			return c.getOnce(ctx, rawURL)
		})
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			c.log.Warn("circuit open, rejecting request without hitting SEC", zap.String("url", rawURL))
		}
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, key, body); err != nil {
			c.log.Warn("cache write failed", zap.Error(err))
		}
	}
	return body, nil
}

func (c *Client) getOnce(ctx context.Context, rawURL string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Acquire(ctx, 1); err != nil {
			return nil, eris.Wrap(err, "secclient: rate limiter wait")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "secclient: create request")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(&model.NetworkError{URL: rawURL, Err: err}, 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &model.NetworkError{URL: rawURL, Err: err}
		}
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, &model.NotFoundError{URL: rawURL}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &model.AuthError{URL: rawURL, Err: eris.Errorf("http %d", resp.StatusCode)}
	case resilience.IsTransientHTTPStatus(resp.StatusCode):
		return nil, resilience.NewTransientError(
			&model.NetworkError{URL: rawURL, Err: eris.Errorf("secclient: transient status %d", resp.StatusCode)},
			resp.StatusCode,
		)
	default:
		return nil, eris.Errorf("secclient: unexpected status %d from %s", resp.StatusCode, rawURL)
	}
}
