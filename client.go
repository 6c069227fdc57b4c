// Package coinbasepro is a read-only client for the Coinbase Exchange
// public market-data REST API. It exposes the public endpoints (products,
// order books, tickers, trades, candles, stats, currencies, server time)
// behind a token-bucket rate limiter so bursts of calls from any number of
// goroutines stay inside the exchange's request allowance.
package coinbasepro

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quotron/go-coinbasepro/internal/ratelimit"
)

// Version is the library version reported to the exchange.
const Version = "1.2.0"

// userAgent identifies this library on every request.
const userAgent = "go-coinbasepro/" + Version

// MetricsFunc is called when metrics are collected. Implementations must be
// safe for concurrent use.
type MetricsFunc func(metric string, value float64, tags map[string]string)

// Client is a read-only client for the Coinbase Exchange public market-data
// API. All endpoint methods funnel through one rate-limited dispatch path,
// so a single Client shared across goroutines keeps the whole process inside
// the configured request allowance. Construct with NewBuilder().Build() or
// New(); configuration cannot change afterwards.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	logger     zerolog.Logger
	metrics    MetricsFunc
}

// Config returns the resolved configuration the client was built with.
func (c *Client) Config() ClientConfig {
	return c.config
}

// Stable operation names used in error context, log fields and metric tags.
const (
	opProducts   = "products"
	opProduct    = "product"
	opBook       = "book"
	opTicker     = "ticker"
	opTrades     = "trades"
	opCandles    = "candles"
	opStats      = "stats"
	opCurrencies = "currencies"
	opTime       = "time"
)

// get is the single choke point every endpoint method dispatches through:
// assemble and validate the URL, wait for rate-limit admission, issue the
// GET under the per-request deadline, materialize the body. The returned
// string is the response body exactly as received; HTTP status is not
// inspected because the exchange reports request-level problems in the
// body itself.
func (c *Client) get(ctx context.Context, op, endpoint string, params []Param) (string, error) {
	fullURL, err := buildURL(c.config.APIURL, endpoint, params)
	if err != nil {
		return "", &APIError{Code: ErrCodeURL, Op: op, Endpoint: endpoint, Message: "assemble request URL", Cause: err}
	}

	requestID := uuid.NewString()
	c.logger.Debug().
		Str("request_id", requestID).
		Str("op", op).
		Str("url", fullURL).
		Msg("dispatching request")

	// Admission consumes one token per attempt. A request that later fails
	// or times out does not refund it; the failed attempt still counted
	// against the upstream allowance.
	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		code := ErrCodeTransport
		if isDeadlineErr(err) {
			code = ErrCodeTimeout
		}
		return "", &APIError{Code: code, Op: op, Endpoint: endpoint, Message: "rate limit wait failed", Cause: err}
	}
	waited := time.Since(waitStart)
	if c.metrics != nil {
		c.metrics("coinbasepro_ratelimit_wait_ms", float64(waited.Milliseconds()),
			map[string]string{"endpoint": op})
	}

	reqCtx := ctx
	if c.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.config.RequestTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", &APIError{Code: ErrCodeURL, Op: op, Endpoint: endpoint, Message: "build request", Cause: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		code := ErrCodeTransport
		if isDeadlineErr(err) {
			code = ErrCodeTimeout
		}
		c.observeRequest(op, "error", start)
		c.logger.Warn().
			Str("request_id", requestID).
			Str("op", op).
			Str("code", code).
			Err(err).
			Msg("request failed")
		return "", &APIError{Code: code, Op: op, Endpoint: endpoint, Message: "dispatch request", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		// The deadline keeps running while the body streams in, so a slow
		// read surfaces here rather than in Do.
		code := ErrCodeDecode
		if isDeadlineErr(err) {
			code = ErrCodeTimeout
		}
		c.observeRequest(op, "error", start)
		return "", &APIError{Code: code, Op: op, Endpoint: endpoint, Message: "read response body", Cause: err}
	}

	c.observeRequest(op, "success", start)
	c.logger.Debug().
		Str("request_id", requestID).
		Str("op", op).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("wait", waited).
		Dur("duration", time.Since(start)).
		Msg("request complete")

	return string(body), nil
}

// parseBody layers the deserializing final stage onto a raw fetch result.
// The body parses into an untyped tree (maps, slices, strings, float64s);
// no schema is enforced, so any syntactically valid JSON passes.
func (c *Client) parseBody(op string, body string, err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	var v interface{}
	if uerr := json.Unmarshal([]byte(body), &v); uerr != nil {
		return nil, &APIError{Code: ErrCodeParse, Op: op, Message: "parse response body", Cause: uerr}
	}
	return v, nil
}

func (c *Client) observeRequest(op, status string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics("coinbasepro_requests_total", 1,
		map[string]string{"endpoint": op, "status": status})
	c.metrics("coinbasepro_request_duration_ms", float64(time.Since(start).Milliseconds()),
		map[string]string{"endpoint": op})
}
