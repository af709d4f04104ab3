// Package maxpreps fetches and parses public scoreboard pages.
package maxpreps

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/prepscores/internal/domain/game"
	"github.com/riskibarqy/prepscores/internal/platform/cache"
	"github.com/riskibarqy/prepscores/internal/platform/logging"
	"github.com/riskibarqy/prepscores/internal/platform/resilience"
	"github.com/riskibarqy/prepscores/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const (
	userAgent           = "Mozilla/5.0 (compatible; CloudRunBot/1.0)"
	acceptLanguage      = "en-US,en;q=0.9"
	requestPause        = 100 * time.Millisecond
	maxBodyBytes        = 8 << 20
	defaultFetchTimeout = 20 * time.Second
)

var errMaxPrepsTransient = crerr.New("maxpreps transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	Cache          *cache.Store
}

// Client downloads scoreboard pages with retry, breaker, and request
// deduplication. Page bodies are large, so reads go through a buffer pool.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	cache          *cache.Store
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultFetchTimeout
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		cache:          cfg.Cache,
	}
}

// FetchScoreboard downloads the scoreboard page for one state, compound
// sport, and game date and returns the parsed contest rows.
func (c *Client) FetchScoreboard(ctx context.Context, stateCode, sportName, gameDate string) ([]game.Record, error) {
	sport, err := ParseCompoundSport(sportName)
	if err != nil {
		return nil, err
	}

	pageURL, raw, err := c.fetchScoreboardPage(ctx, stateCode, sport, gameDate)
	if err != nil {
		return nil, err
	}

	return ParseScoreboard(raw, ParseInput{
		StateCode: stateCode,
		Sport:     sport,
		PageURL:   pageURL,
		GameDate:  gameDate,
	})
}

// fetchScoreboardPage downloads the scoreboard page and returns the page URL
// plus the raw HTML.
func (c *Client) fetchScoreboardPage(ctx context.Context, stateCode string, sport CompoundSport, gameDate string) (string, []byte, error) {
	stateCode = strings.ToLower(strings.TrimSpace(stateCode))
	if stateCode == "" {
		return "", nil, fmt.Errorf("%w: state code is required", usecase.ErrInvalidInput)
	}
	if strings.TrimSpace(gameDate) == "" {
		return "", nil, fmt.Errorf("%w: game date is required", usecase.ErrInvalidInput)
	}

	pageURL := BuildScoresURL(c.baseURL, stateCode, sport.Path, gameDate)
	raw, err := c.fetch(ctx, pageURL)
	if err != nil {
		return pageURL, nil, fmt.Errorf("fetch scoreboard state=%s sport=%s: %w", stateCode, sport.Name, err)
	}
	return pageURL, raw, nil
}

func (c *Client) fetch(ctx context.Context, fullURL string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "maxpreps circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: scoreboard provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, fullURL); ok {
			if raw, ok := cached.([]byte); ok {
				return raw, nil
			}
		}
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errMaxPrepsTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		if reqErr == nil && c.cache != nil {
			c.cache.Set(ctx, fullURL, raw)
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		// Short pre-request pause keeps page fetches polite.
		if err := sleepCtx(ctx, requestPause); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept-Language", acceptLanguage)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errMaxPrepsTransient, err)
		} else {
			raw, readErr := readBody(resp.Body)
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errMaxPrepsTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d", errMaxPrepsTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("provider status=%d", resp.StatusCode)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		if err := sleepCtx(ctx, retryBackoff(attempt)); err != nil {
			return nil, err
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "maxpreps request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

// readBody drains the response through a pooled buffer and returns an owned
// copy, so the buffer can go back to the pool immediately.
func readBody(body io.Reader) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := buf.ReadFrom(io.LimitReader(body, maxBodyBytes)); err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.B...), nil
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// retryBackoff grows as 0.25s * 2^attempt plus a 0.2s * attempt linear term.
func retryBackoff(attempt int) time.Duration {
	seconds := 0.25*math.Pow(2, float64(attempt)) + 0.2*float64(attempt)
	return time.Duration(seconds * float64(time.Second))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
