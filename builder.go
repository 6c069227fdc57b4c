package coinbasepro

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/quotron/go-coinbasepro/internal/ratelimit"
)

// Defaults applied by Build for any field left unset.
const (
	// DefaultAPIURL is the production Coinbase Exchange market-data endpoint.
	DefaultAPIURL = "https://api.exchange.coinbase.com"
	// DefaultRequestTimeout bounds each request from dispatch to body read.
	DefaultRequestTimeout = 30 * time.Second
	// DefaultRateLimit is the public-endpoint allowance in requests/second.
	DefaultRateLimit = 3.0
	// DefaultBurstSize is the token-bucket capacity paired with the default
	// rate, allowing short bursts above the sustained allowance.
	DefaultBurstSize = 6
)

// ClientConfig is the fully resolved configuration a Client was built with.
// It is a plain value; the Client it belongs to never changes it.
type ClientConfig struct {
	APIURL         string        `json:"api_url"`
	RequestTimeout time.Duration `json:"request_timeout"`
	RateLimit      float64       `json:"rate_limit_rps"`
	BurstSize      int           `json:"burst_size"`
}

// Builder accumulates configuration overrides for a Client. The zero value
// is ready to use; every setter returns an updated copy so calls chain:
//
//	client := coinbasepro.NewBuilder().
//		RateLimit(1.5).
//		BurstSize(3).
//		Build()
//
// Fields never set fall back to the documented defaults at Build time.
type Builder struct {
	apiURL    *string
	timeout   *time.Duration
	rateLimit *float64
	burstSize *int
	logger    *zerolog.Logger
	metrics   MetricsFunc
}

// NewBuilder returns an empty Builder.
func NewBuilder() Builder {
	return Builder{}
}

// APIURL overrides the base URL requests are sent to. The value is used
// exactly as given; a trailing slash therefore doubles up in assembled URLs.
func (b Builder) APIURL(u string) Builder {
	b.apiURL = &u
	return b
}

// RequestTimeout overrides the per-request deadline covering dispatch
// through body read. Zero or negative disables the deadline.
func (b Builder) RequestTimeout(d time.Duration) Builder {
	b.timeout = &d
	return b
}

// RateLimit overrides the sustained request rate in requests per second.
// Zero or negative disables rate limiting entirely.
func (b Builder) RateLimit(rps float64) Builder {
	b.rateLimit = &rps
	return b
}

// BurstSize overrides the token-bucket capacity. Values below one are
// floored to one token when rate limiting is enabled.
func (b Builder) BurstSize(n int) Builder {
	b.burstSize = &n
	return b
}

// Logger attaches a zerolog logger for per-request debug logging. Without
// one the client is silent.
func (b Builder) Logger(l zerolog.Logger) Builder {
	b.logger = &l
	return b
}

// Metrics attaches a callback receiving request count, duration and
// rate-limit wait measurements. The callback must be safe for concurrent
// use.
func (b Builder) Metrics(fn MetricsFunc) Builder {
	b.metrics = fn
	return b
}

// Build resolves defaults and constructs an immutable Client. Build never
// fails: every configuration value is taken as given and the HTTP transport
// falls back to a plain client when pooled transport settings cannot be
// applied.
func (b Builder) Build() *Client {
	cfg := ClientConfig{
		APIURL:         DefaultAPIURL,
		RequestTimeout: DefaultRequestTimeout,
		RateLimit:      DefaultRateLimit,
		BurstSize:      DefaultBurstSize,
	}
	if b.apiURL != nil {
		cfg.APIURL = *b.apiURL
	}
	if b.timeout != nil {
		cfg.RequestTimeout = *b.timeout
	}
	if b.rateLimit != nil {
		cfg.RateLimit = *b.rateLimit
	}
	if b.burstSize != nil {
		cfg.BurstSize = *b.burstSize
	}

	logger := zerolog.Nop()
	if b.logger != nil {
		logger = *b.logger
	}

	return &Client{
		config:     cfg,
		httpClient: newHTTPClient(),
		limiter:    ratelimit.NewLimiter(cfg.RateLimit, cfg.BurstSize),
		logger:     logger,
		metrics:    b.metrics,
	}
}

// New returns a Client with the default configuration.
func New() *Client {
	return NewBuilder().Build()
}

// newHTTPClient builds the pooled transport shared by every request. The
// request deadline lives on the context, not here, so a single transport
// serves any timeout configuration. When DefaultTransport has been replaced
// with a non-*http.Transport there is nothing to clone; a plain client
// works in that case.
func newHTTPClient() *http.Client {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return &http.Client{}
	}

	transport := base.Clone()
	transport.MaxIdleConns = 10
	transport.IdleConnTimeout = 30 * time.Second

	return &http.Client{Transport: transport}
}
