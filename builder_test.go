package coinbasepro

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Defaults(t *testing.T) {
	cfg := New().Config()

	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3.0, cfg.RateLimit)
	assert.Equal(t, 6, cfg.BurstSize)
}

func TestBuilder_Overrides(t *testing.T) {
	client := NewBuilder().
		APIURL("http://localhost:8080").
		RequestTimeout(5 * time.Second).
		RateLimit(1.5).
		BurstSize(2).
		Build()

	cfg := client.Config()
	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 1.5, cfg.RateLimit)
	assert.Equal(t, 2, cfg.BurstSize)
}

func TestBuilder_PartialOverridesKeepRemainingDefaults(t *testing.T) {
	cfg := NewBuilder().RateLimit(10).Build().Config()

	assert.Equal(t, 10.0, cfg.RateLimit)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, DefaultBurstSize, cfg.BurstSize)
}

func TestBuilder_ValueSemantics(t *testing.T) {
	// A builder is a value: branching it must not leak overrides between
	// branches or back into the original.
	base := NewBuilder().RateLimit(5)
	a := base.APIURL("http://a.example")
	b := base.APIURL("http://b.example")

	assert.Equal(t, "http://a.example", a.Build().Config().APIURL)
	assert.Equal(t, "http://b.example", b.Build().Config().APIURL)
	assert.Equal(t, DefaultAPIURL, base.Build().Config().APIURL)
	assert.Equal(t, 5.0, b.Build().Config().RateLimit)
}

func TestBuilder_MetricsAndLoggerAttached(t *testing.T) {
	var called bool
	client := NewBuilder().
		Metrics(func(metric string, value float64, tags map[string]string) {
			called = true
		}).
		Build()

	require.NotNil(t, client.metrics)
	client.metrics("test_metric", 1, nil)
	assert.True(t, called)

	// Without a metrics option the callback stays nil and emission is a no-op.
	assert.Nil(t, New().metrics)
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestNewHTTPClient_PooledTransport(t *testing.T) {
	client := newHTTPClient()
	require.NotNil(t, client)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok, "expected a cloned *http.Transport")
	assert.Equal(t, 10, transport.MaxIdleConns)
	assert.Equal(t, 30*time.Second, transport.IdleConnTimeout)
}

func TestNewHTTPClient_FallbackOnForeignDefaultTransport(t *testing.T) {
	orig := http.DefaultTransport
	defer func() { http.DefaultTransport = orig }()

	http.DefaultTransport = roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return nil, nil
	})

	client := newHTTPClient()
	require.NotNil(t, client)
	assert.Nil(t, client.Transport, "fallback should be a plain http.Client")
}
