package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"investor-edu/internal/model"
)

const (
	// DefaultBaseURL is the Alpha Vantage query endpoint.
	DefaultBaseURL = "https://www.alphavantage.co/query"

	// Free-tier allowance.
	requestsPerMinute = 5

	defaultMaxTries = 3
	dailyPath       = `$["Time Series (Daily)"]`
	maxBodyBytes    = 8 << 20
)

var (
	// ErrUnexpectedPayload means the upstream answered 2xx without a daily
	// time series (rate-limit notes and error messages look like this).
	ErrUnexpectedPayload = errors.New("unexpected upstream payload")
)

// UpstreamError is a non-2xx answer from the upstream API.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error %d", e.Status)
}

// Client fetches daily OHLC series from Alpha Vantage.
type Client struct {
	http     *http.Client
	baseURL  string
	apiKey   string
	limiter  *rate.Limiter
	maxTries uint
	backoff  func() backoff.BackOff

	// OnRetry is called before every retry.
	OnRetry func(err error, wait time.Duration)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithLimiter replaces the default 5 requests/minute limiter.
func WithLimiter(l *rate.Limiter) ClientOption {
	return func(c *Client) { c.limiter = l }
}

// WithRetry sets the number of attempts and the initial backoff interval.
func WithRetry(maxTries uint, initial time.Duration) ClientOption {
	return func(c *Client) {
		c.maxTries = maxTries
		c.backoff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = initial
			b.MaxInterval = initial * 10
			return b
		}
	}
}

// NewClient creates a client for baseURL (DefaultBaseURL when empty).
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		http:     &http.Client{Timeout: 10 * time.Second},
		baseURL:  baseURL,
		apiKey:   apiKey,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/requestsPerMinute), requestsPerMinute),
		maxTries: defaultMaxTries,
		backoff:  func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Daily returns the TIME_SERIES_DAILY candles for symbol, oldest first.
//
// Transport errors, 429 and 5xx answers are retried with exponential
// backoff; other 4xx answers and malformed payloads fail immediately.
func (c *Client) Daily(ctx context.Context, symbol string) ([]model.Candle, error) {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", symbol)
	q.Set("apikey", c.apiKey)
	addr := c.baseURL + "?" + q.Encode()

	op := func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("rate limiter: %w", err))
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			uerr := &UpstreamError{Status: resp.StatusCode}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return nil, uerr
			}
			return nil, backoff.Permanent(uerr)
		}
		return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	}

	notify := func(err error, wait time.Duration) {
		slog.Warn("retrying market data request", "component", "marketdata",
			"symbol", symbol, "error", err, "backoff", wait)
		if c.OnRetry != nil {
			c.OnRetry(err, wait)
		}
	}

	body, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(c.backoff()),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(notify))
	if err != nil {
		return nil, err
	}
	return parseDaily(body)
}

// parseDaily extracts candles from a TIME_SERIES_DAILY payload.
func parseDaily(body []byte) ([]model.Candle, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedPayload, err)
	}
	raw, err := jsonpath.Get(dailyPath, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedPayload, err)
	}
	days, ok := raw.(map[string]any)
	if !ok || len(days) == 0 {
		return nil, fmt.Errorf("%w: daily series is not an object", ErrUnexpectedPayload)
	}

	out := make([]model.Candle, 0, len(days))
	for date, v := range days {
		ohlc, ok := v.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, model.Candle{
			Date:   date,
			Open:   num(ohlc["1. open"]),
			High:   num(ohlc["2. high"]),
			Low:    num(ohlc["3. low"]),
			Close:  num(ohlc["4. close"]),
			Volume: int64(num(ohlc["5. volume"])),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// num converts the string-encoded numbers Alpha Vantage returns. Missing
// or malformed values become 0.
func num(v any) float64 {
	switch t := v.(type) {
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return f
	case float64:
		return t
	}
	return 0
}
