package coinbasepro

import "context"

// Deserializing variants. Each method runs the same pipeline as its raw
// counterpart and then parses the body into an untyped JSON tree: maps,
// slices, strings, float64s, bools. A parse failure means the fetch itself
// already succeeded and surfaces as ErrCodeParse. No schema is enforced, so
// a well-formed exchange error payload deserializes like any other result.

// GetProductsJSON lists the currency pairs available for trading.
func (c *Client) GetProductsJSON(ctx context.Context) (interface{}, error) {
	body, err := c.GetProducts(ctx)
	return c.parseBody(opProducts, body, err)
}

// GetProductJSON returns metadata for a single currency pair.
func (c *Client) GetProductJSON(ctx context.Context, productID string) (interface{}, error) {
	body, err := c.GetProduct(ctx, productID)
	return c.parseBody(opProduct, body, err)
}

// GetProductOrderBookJSON returns a snapshot of a product's order book at
// the requested aggregation level.
func (c *Client) GetProductOrderBookJSON(ctx context.Context, productID string, level BookLevel) (interface{}, error) {
	body, err := c.GetProductOrderBook(ctx, productID, level)
	return c.parseBody(opBook, body, err)
}

// GetProductTickerJSON returns snapshot trade and quote information for a
// product.
func (c *Client) GetProductTickerJSON(ctx context.Context, productID string) (interface{}, error) {
	body, err := c.GetProductTicker(ctx, productID)
	return c.parseBody(opTicker, body, err)
}

// GetProductTradesJSON lists a product's latest trades; after works as in
// GetProductTrades.
func (c *Client) GetProductTradesJSON(ctx context.Context, productID string, after uint64) (interface{}, error) {
	body, err := c.GetProductTrades(ctx, productID, after)
	return c.parseBody(opTrades, body, err)
}

// GetProductHistoricRatesJSON returns historic candles for a product.
func (c *Client) GetProductHistoricRatesJSON(ctx context.Context, productID string, opts HistoricRatesOpts) (interface{}, error) {
	body, err := c.GetProductHistoricRates(ctx, productID, opts)
	return c.parseBody(opCandles, body, err)
}

// GetProductStatsJSON returns a product's 24-hour statistics.
func (c *Client) GetProductStatsJSON(ctx context.Context, productID string) (interface{}, error) {
	body, err := c.GetProductStats(ctx, productID)
	return c.parseBody(opStats, body, err)
}

// GetCurrenciesJSON lists the currencies known to the exchange.
func (c *Client) GetCurrenciesJSON(ctx context.Context) (interface{}, error) {
	body, err := c.GetCurrencies(ctx)
	return c.parseBody(opCurrencies, body, err)
}

// GetServerTimeJSON returns the API server time.
func (c *Client) GetServerTimeJSON(ctx context.Context) (interface{}, error) {
	body, err := c.GetServerTime(ctx)
	return c.parseBody(opTime, body, err)
}
