package coinbasepro

import (
	"context"
	"strconv"
)

// Raw endpoint methods. Each returns the response body as an unparsed
// string; the *JSON variants in json.go return the same data deserialized.
// Product ids use the exchange's BASE-QUOTE form, e.g. "BTC-USD", and are
// passed through exactly as given.

// GetProducts lists the currency pairs available for trading.
func (c *Client) GetProducts(ctx context.Context) (string, error) {
	return c.get(ctx, opProducts, "/products", nil)
}

// GetProduct returns metadata for a single currency pair.
func (c *Client) GetProduct(ctx context.Context, productID string) (string, error) {
	return c.get(ctx, opProduct, "/products/"+productID, nil)
}

// GetProductOrderBook returns a snapshot of a product's order book at the
// requested aggregation level. BookLevel3 returns the full book and is
// expensive for the exchange to serve; poll it sparingly.
func (c *Client) GetProductOrderBook(ctx context.Context, productID string, level BookLevel) (string, error) {
	return c.get(ctx, opBook, "/products/"+productID+"/book", []Param{level.param()})
}

// GetProductTicker returns snapshot information about the last trade,
// best bid/ask and 24h volume for a product.
func (c *Client) GetProductTicker(ctx context.Context, productID string) (string, error) {
	return c.get(ctx, opTicker, "/products/"+productID+"/ticker", nil)
}

// GetProductTrades lists a product's latest trades, newest first. A
// non-zero after anchors the page at that trade sequence: the response
// holds trades with sequence numbers at or below it. The exchange's cursor
// is exclusive, so the anchor is adjusted by one to include the anchor
// trade itself. after == 0 requests the most recent page.
func (c *Client) GetProductTrades(ctx context.Context, productID string, after uint64) (string, error) {
	var params []Param
	if after > 0 {
		params = []Param{{Key: "after", Value: strconv.FormatUint(after+1, 10)}}
	}
	return c.get(ctx, opTrades, "/products/"+productID+"/trades", params)
}

// GetProductHistoricRates returns historic candles for a product, each row
// in the exchange's [timestamp, low, high, open, close, volume] form. With
// zero-valued opts the exchange returns 300 one-minute candles. Periods
// with no trades are omitted, and requests spanning more than 300 candles
// at the chosen granularity are rejected.
func (c *Client) GetProductHistoricRates(ctx context.Context, productID string, opts HistoricRatesOpts) (string, error) {
	return c.get(ctx, opCandles, "/products/"+productID+"/candles", opts.params())
}

// GetProductStats returns a product's 24-hour statistics.
func (c *Client) GetProductStats(ctx context.Context, productID string) (string, error) {
	return c.get(ctx, opStats, "/products/"+productID+"/stats", nil)
}

// GetCurrencies lists the currencies known to the exchange.
func (c *Client) GetCurrencies(ctx context.Context) (string, error) {
	return c.get(ctx, opCurrencies, "/currencies", nil)
}

// GetServerTime returns the API server time in ISO and epoch form.
func (c *Client) GetServerTime(ctx context.Context) (string, error) {
	return c.get(ctx, opTime, "/time", nil)
}
