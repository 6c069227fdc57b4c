package coinbasepro

import (
	"strconv"
	"time"
)

// BookLevel selects how much of the order book a book request returns.
type BookLevel int

const (
	// BookLevel1 returns only the best bid and ask.
	BookLevel1 BookLevel = 1
	// BookLevel2 returns the top 50 bids and asks, aggregated by price.
	BookLevel2 BookLevel = 2
	// BookLevel3 returns the full order book with individual orders.
	BookLevel3 BookLevel = 3
)

func (l BookLevel) String() string {
	return strconv.Itoa(int(l))
}

func (l BookLevel) param() Param {
	return Param{Key: "level", Value: l.String()}
}

// Granularity is a candle width in seconds. The exchange accepts only the
// six listed values and rejects everything else.
type Granularity int

const (
	Granularity1m  Granularity = 60
	Granularity5m  Granularity = 300
	Granularity15m Granularity = 900
	Granularity1h  Granularity = 3600
	Granularity6h  Granularity = 21600
	Granularity1d  Granularity = 86400
)

func (g Granularity) String() string {
	return strconv.Itoa(int(g))
}

func (g Granularity) param() Param {
	return Param{Key: "granularity", Value: g.String()}
}

// Valid reports whether g is one of the candle widths the exchange accepts.
func (g Granularity) Valid() bool {
	switch g {
	case Granularity1m, Granularity5m, Granularity15m, Granularity1h, Granularity6h, Granularity1d:
		return true
	}
	return false
}

// HistoricRatesOpts narrows a historic-rates request to a time window and
// candle width. Zero-valued fields are omitted from the query entirely, in
// which case the exchange applies its own defaults. Start and End are
// serialized as RFC 3339 timestamps; the exchange rejects windows spanning
// more than 300 candles at the requested granularity.
type HistoricRatesOpts struct {
	Start       time.Time
	End         time.Time
	Granularity Granularity
}

func (o HistoricRatesOpts) params() []Param {
	var params []Param
	if !o.Start.IsZero() {
		params = append(params, Param{Key: "start", Value: o.Start.Format(time.RFC3339)})
	}
	if !o.End.IsZero() {
		params = append(params, Param{Key: "end", Value: o.End.Format(time.RFC3339)})
	}
	if o.Granularity != 0 {
		params = append(params, o.Granularity.param())
	}
	return params
}
