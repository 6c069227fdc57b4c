// Package mockexchange serves a Coinbase-Exchange-shaped market-data API
// with deterministic synthetic data. It exists for integration tests, local
// development and demos that should not burn real exchange rate limits.
package mockexchange

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the metadata served by /products and /products/{id}.
// BasePrice anchors all generated prices for the pair and is never exposed.
type Product struct {
	ID             string `json:"id" yaml:"id"`
	BaseCurrency   string `json:"base_currency" yaml:"base_currency"`
	QuoteCurrency  string `json:"quote_currency" yaml:"quote_currency"`
	BaseIncrement  string `json:"base_increment" yaml:"base_increment"`
	QuoteIncrement string `json:"quote_increment" yaml:"quote_increment"`
	DisplayName    string `json:"display_name" yaml:"display_name"`
	Status         string `json:"status" yaml:"status"`
	BasePrice      string `json:"-" yaml:"base_price"`
}

// Currency is the metadata served by /currencies.
type Currency struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	MinSize string `json:"min_size" yaml:"min_size"`
}

// OrderBook is the /products/{id}/book payload. Rows are mixed-type arrays
// exactly like the exchange's: [price, size, num_orders] at levels 1 and 2,
// [price, size, order_id] at level 3.
type OrderBook struct {
	Sequence uint64          `json:"sequence"`
	Bids     [][]interface{} `json:"bids"`
	Asks     [][]interface{} `json:"asks"`
}

// Ticker is the /products/{id}/ticker payload.
type Ticker struct {
	TradeID uint64 `json:"trade_id"`
	Price   string `json:"price"`
	Size    string `json:"size"`
	Bid     string `json:"bid"`
	Ask     string `json:"ask"`
	Volume  string `json:"volume"`
	Time    string `json:"time"`
}

// Trade is one element of the /products/{id}/trades page.
type Trade struct {
	Time    string `json:"time"`
	TradeID uint64 `json:"trade_id"`
	Price   string `json:"price"`
	Size    string `json:"size"`
	Side    string `json:"side"`
}

// Stats is the /products/{id}/stats payload.
type Stats struct {
	Open        string `json:"open"`
	High        string `json:"high"`
	Low         string `json:"low"`
	Volume      string `json:"volume"`
	Last        string `json:"last"`
	Volume30Day string `json:"volume_30day"`
}

// ServerTime is the /time payload.
type ServerTime struct {
	ISO   string  `json:"iso"`
	Epoch float64 `json:"epoch"`
}

// headSequence is the newest trade sequence number in every dataset. Trades
// page downward from here.
const headSequence uint64 = 1_000_000

// tradePageSize matches the exchange's public trades page.
const tradePageSize = 100

// maxCandles is the exchange's cap on candles per request.
const maxCandles = 300

// Dataset is the market state behind a mock server. All prices derive
// deterministically from each product's anchor price, so equal requests get
// equal answers across runs.
type Dataset struct {
	products   []Product
	currencies []Currency
	anchors    map[string]decimal.Decimal
	places     map[string]int32
}

// NewDataset validates products and currencies into a servable dataset.
// Every product needs a base_price that parses as a decimal.
func NewDataset(products []Product, currencies []Currency) (*Dataset, error) {
	d := &Dataset{
		products:   products,
		currencies: currencies,
		anchors:    make(map[string]decimal.Decimal, len(products)),
		places:     make(map[string]int32, len(products)),
	}

	for _, p := range products {
		anchor, err := decimal.NewFromString(p.BasePrice)
		if err != nil {
			return nil, &FixtureError{ProductID: p.ID, Field: "base_price", Cause: err}
		}
		increment, err := decimal.NewFromString(p.QuoteIncrement)
		if err != nil {
			return nil, &FixtureError{ProductID: p.ID, Field: "quote_increment", Cause: err}
		}
		d.anchors[p.ID] = anchor
		d.places[p.ID] = -increment.Exponent()
	}

	return d, nil
}

// DefaultDataset returns the built-in markets.
func DefaultDataset() *Dataset {
	d, err := NewDataset(defaultProducts, defaultCurrencies)
	if err != nil {
		// The built-in fixtures are constants; failing to parse them is a
		// programming error.
		panic(err)
	}
	return d
}

var defaultProducts = []Product{
	{ID: "BTC-USD", BaseCurrency: "BTC", QuoteCurrency: "USD", BaseIncrement: "0.00000001", QuoteIncrement: "0.01", DisplayName: "BTC/USD", Status: "online", BasePrice: "50000.00"},
	{ID: "ETH-USD", BaseCurrency: "ETH", QuoteCurrency: "USD", BaseIncrement: "0.00000001", QuoteIncrement: "0.01", DisplayName: "ETH/USD", Status: "online", BasePrice: "3000.00"},
	{ID: "ETH-BTC", BaseCurrency: "ETH", QuoteCurrency: "BTC", BaseIncrement: "0.00000001", QuoteIncrement: "0.00001", DisplayName: "ETH/BTC", Status: "online", BasePrice: "0.06000"},
	{ID: "SOL-USD", BaseCurrency: "SOL", QuoteCurrency: "USD", BaseIncrement: "0.00000001", QuoteIncrement: "0.01", DisplayName: "SOL/USD", Status: "online", BasePrice: "150.00"},
}

var defaultCurrencies = []Currency{
	{ID: "USD", Name: "United States Dollar", MinSize: "0.01"},
	{ID: "BTC", Name: "Bitcoin", MinSize: "0.00000001"},
	{ID: "ETH", Name: "Ethereum", MinSize: "0.00000001"},
	{ID: "SOL", Name: "Solana", MinSize: "0.00000001"},
}

// Products lists all products.
func (d *Dataset) Products() []Product {
	return d.products
}

// Currencies lists all currencies.
func (d *Dataset) Currencies() []Currency {
	return d.currencies
}

// Product looks up a product by id.
func (d *Dataset) Product(id string) (Product, bool) {
	for _, p := range d.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// wiggle nudges an anchor price by a deterministic offset in basis points,
// cycling with k so neighbouring keys give different but stable prices.
func wiggle(anchor decimal.Decimal, k int64, bps int64) decimal.Decimal {
	span := 2*bps + 1
	off := (k*37)%span - bps
	return anchor.Add(anchor.Mul(decimal.NewFromInt(off)).Div(decimal.NewFromInt(10000)))
}

// size produces a deterministic trade/level size between 0.1 and 2.0.
func size(k int64) decimal.Decimal {
	return decimal.NewFromInt(1 + k%20).Div(decimal.NewFromInt(10))
}

func (d *Dataset) format(id string, v decimal.Decimal) string {
	return v.StringFixed(d.places[id])
}

// Book builds an order book snapshot. Level 1 carries only the best bid and
// ask, level 2 the top 50 aggregated rows, level 3 the top 50 rows with
// stable synthetic order ids.
func (d *Dataset) Book(id string, level int) (OrderBook, bool) {
	anchor, ok := d.anchors[id]
	if !ok {
		return OrderBook{}, false
	}

	depth := 1
	if level > 1 {
		depth = 50
	}

	half := anchor.Div(decimal.NewFromInt(10000)) // 1bp half-spread
	step := anchor.Div(decimal.NewFromInt(100000))

	book := OrderBook{
		Sequence: headSequence,
		Bids:     make([][]interface{}, 0, depth),
		Asks:     make([][]interface{}, 0, depth),
	}

	for i := 0; i < depth; i++ {
		offset := step.Mul(decimal.NewFromInt(int64(i)))
		bidPrice := anchor.Sub(half).Sub(offset)
		askPrice := anchor.Add(half).Add(offset)
		bidSize := size(int64(i) + 3)
		askSize := size(int64(i) + 7)

		if level == 3 {
			book.Bids = append(book.Bids, []interface{}{d.format(id, bidPrice), bidSize.String(), orderID(id, "bid", i)})
			book.Asks = append(book.Asks, []interface{}{d.format(id, askPrice), askSize.String(), orderID(id, "ask", i)})
			continue
		}
		book.Bids = append(book.Bids, []interface{}{d.format(id, bidPrice), bidSize.String(), 1 + i%4})
		book.Asks = append(book.Asks, []interface{}{d.format(id, askPrice), askSize.String(), 1 + i%4})
	}

	return book, true
}

// orderID derives a stable UUID for a book row; the exchange shows opaque
// order ids at level 3 and these must not change between identical requests.
func orderID(productID, side string, row int) string {
	name := productID + "/" + side + "/" + string(rune('0'+row%10)) + string(rune('0'+row/10))
	return uuid.NewMD5(uuid.NameSpaceOID, []byte(name)).String()
}

// Ticker builds the current ticker for a product.
func (d *Dataset) Ticker(id string, now time.Time) (Ticker, bool) {
	anchor, ok := d.anchors[id]
	if !ok {
		return Ticker{}, false
	}

	half := anchor.Div(decimal.NewFromInt(10000))
	return Ticker{
		TradeID: headSequence,
		Price:   d.format(id, anchor),
		Size:    size(int64(headSequence)).String(),
		Bid:     d.format(id, anchor.Sub(half)),
		Ask:     d.format(id, anchor.Add(half)),
		Volume:  d.dayVolume(id).String(),
		Time:    now.UTC().Format(time.RFC3339Nano),
	}, true
}

// Trades pages downward from the newest sequence. A non-zero before cursor
// bounds the page to trade ids strictly below it, mirroring the exchange's
// exclusive `after` parameter.
func (d *Dataset) Trades(id string, before uint64, now time.Time) ([]Trade, bool) {
	anchor, ok := d.anchors[id]
	if !ok {
		return nil, false
	}

	start := headSequence
	if before > 0 && before <= headSequence {
		start = before - 1
	}

	trades := make([]Trade, 0, tradePageSize)
	for seq := start; seq > 0 && len(trades) < tradePageSize; seq-- {
		side := "buy"
		if seq%2 == 1 {
			side = "sell"
		}
		age := time.Duration(headSequence-seq) * time.Second
		trades = append(trades, Trade{
			Time:    now.UTC().Add(-age).Format(time.RFC3339Nano),
			TradeID: seq,
			Price:   d.format(id, wiggle(anchor, int64(seq), 10)),
			Size:    size(int64(seq)).String(),
			Side:    side,
		})
	}

	return trades, true
}

// Candles builds count candles of the given width ending at end, oldest
// offsets furthest back, newest first like the exchange. Rows are
// [timestamp, low, high, open, close, volume] as plain numbers.
func (d *Dataset) Candles(id string, end time.Time, width time.Duration, count int) ([][]float64, bool) {
	anchor, ok := d.anchors[id]
	if !ok {
		return nil, false
	}

	bucket := end.UTC().Truncate(width)
	rows := make([][]float64, 0, count)

	for i := 0; i < count; i++ {
		t := bucket.Add(-time.Duration(i) * width)
		open := wiggle(anchor, int64(i), 50)
		closep := wiggle(anchor, int64(i)+1, 50)

		high := decimal.Max(open, closep).Mul(decimal.NewFromFloat(1.001))
		low := decimal.Min(open, closep).Mul(decimal.NewFromFloat(0.999))
		volume := size(int64(i)).Mul(decimal.NewFromInt(25))

		rows = append(rows, []float64{
			float64(t.Unix()),
			low.InexactFloat64(),
			high.InexactFloat64(),
			open.InexactFloat64(),
			closep.InexactFloat64(),
			volume.InexactFloat64(),
		})
	}

	return rows, true
}

// Stats builds 24-hour statistics for a product.
func (d *Dataset) Stats(id string) (Stats, bool) {
	anchor, ok := d.anchors[id]
	if !ok {
		return Stats{}, false
	}

	return Stats{
		Open:        d.format(id, wiggle(anchor, 24, 80)),
		High:        d.format(id, anchor.Mul(decimal.NewFromFloat(1.02))),
		Low:         d.format(id, anchor.Mul(decimal.NewFromFloat(0.98))),
		Volume:      d.dayVolume(id).String(),
		Last:        d.format(id, anchor),
		Volume30Day: d.dayVolume(id).Mul(decimal.NewFromInt(30)).String(),
	}, true
}

// dayVolume derives a stable 24h volume from the product id so different
// markets report different but repeatable numbers.
func (d *Dataset) dayVolume(id string) decimal.Decimal {
	var sum int64
	for _, r := range id {
		sum += int64(r)
	}
	return decimal.NewFromInt(500 + sum%1000).Div(decimal.NewFromInt(10))
}

// Time builds the /time payload for the given instant.
func Time(now time.Time) ServerTime {
	utc := now.UTC()
	return ServerTime{
		ISO:   utc.Format("2006-01-02T15:04:05.000Z"),
		Epoch: float64(utc.UnixMilli()) / 1000.0,
	}
}
