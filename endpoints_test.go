package coinbasepro

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoints_RequestURLs(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, 0)
	ctx := context.Background()

	window := HistoricRatesOpts{
		Start:       time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC),
		Granularity: Granularity1h,
	}

	tests := []struct {
		name      string
		call      func() (string, error)
		wantPath  string
		wantQuery string
	}{
		{
			name:     "products",
			call:     func() (string, error) { return client.GetProducts(ctx) },
			wantPath: "/products",
		},
		{
			name:     "single_product",
			call:     func() (string, error) { return client.GetProduct(ctx, "BTC-USD") },
			wantPath: "/products/BTC-USD",
		},
		{
			name:      "order_book_level_1",
			call:      func() (string, error) { return client.GetProductOrderBook(ctx, "BTC-USD", BookLevel1) },
			wantPath:  "/products/BTC-USD/book",
			wantQuery: "level=1",
		},
		{
			name:      "order_book_level_2",
			call:      func() (string, error) { return client.GetProductOrderBook(ctx, "BTC-USD", BookLevel2) },
			wantPath:  "/products/BTC-USD/book",
			wantQuery: "level=2",
		},
		{
			name:      "order_book_level_3",
			call:      func() (string, error) { return client.GetProductOrderBook(ctx, "BTC-USD", BookLevel3) },
			wantPath:  "/products/BTC-USD/book",
			wantQuery: "level=3",
		},
		{
			name:     "ticker",
			call:     func() (string, error) { return client.GetProductTicker(ctx, "ETH-USD") },
			wantPath: "/products/ETH-USD/ticker",
		},
		{
			name:     "trades_without_cursor",
			call:     func() (string, error) { return client.GetProductTrades(ctx, "ETH-USD", 0) },
			wantPath: "/products/ETH-USD/trades",
		},
		{
			name: "trades_with_cursor_sends_successor",
			call: func() (string, error) {
				return client.GetProductTrades(ctx, "ETH-USD", 42)
			},
			wantPath:  "/products/ETH-USD/trades",
			wantQuery: "after=43",
		},
		{
			name:     "candles_without_options",
			call:     func() (string, error) { return client.GetProductHistoricRates(ctx, "BTC-USD", HistoricRatesOpts{}) },
			wantPath: "/products/BTC-USD/candles",
		},
		{
			name: "candles_with_window",
			call: func() (string, error) {
				return client.GetProductHistoricRates(ctx, "BTC-USD", window)
			},
			wantPath:  "/products/BTC-USD/candles",
			wantQuery: "start=2021-01-01T00%3A00%3A00Z&end=2021-01-02T00%3A00%3A00Z&granularity=3600",
		},
		{
			name:     "stats",
			call:     func() (string, error) { return client.GetProductStats(ctx, "BTC-USD") },
			wantPath: "/products/BTC-USD/stats",
		},
		{
			name:     "currencies",
			call:     func() (string, error) { return client.GetCurrencies(ctx) },
			wantPath: "/currencies",
		},
		{
			name:     "server_time",
			call:     func() (string, error) { return client.GetServerTime(ctx) },
			wantPath: "/time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotPath, gotQuery = "", ""

			_, err := tt.call()
			require.NoError(t, err)

			assert.Equal(t, tt.wantPath, gotPath)
			assert.Equal(t, tt.wantQuery, gotQuery)
		})
	}
}

func TestEndpoints_ProductIDPassedThrough(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, 0)

	// Ids are not case-normalized; the exchange decides what it accepts.
	_, err := client.GetProduct(context.Background(), "eth-usd")
	require.NoError(t, err)
	assert.Equal(t, "/products/eth-usd", gotPath)
}

func TestEndpoints_LargeTradeCursor(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, 0)

	// Cursor arithmetic happens in uint64 space without overflow surprises
	// anywhere near realistic sequence numbers.
	_, err := client.GetProductTrades(context.Background(), "BTC-USD", 18446744073709551614)
	require.NoError(t, err)
	assert.Equal(t, "after=18446744073709551615", gotQuery)
}
