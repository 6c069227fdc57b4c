// Command cbpro queries Coinbase Exchange public market data from the
// command line. Every subcommand maps to one REST endpoint and prints the
// response payload; dispatch is rate limited the same way as any other
// consumer of the client library.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	coinbasepro "github.com/quotron/go-coinbasepro"
)

const appName = "cbpro"

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Coinbase Exchange public market data client",
		Version: coinbasepro.Version,
		Long: `cbpro queries the public (unauthenticated) Coinbase Exchange REST API.

Each subcommand fetches one endpoint and writes the payload to stdout.
Requests are paced through a token bucket so scripted loops stay inside
the exchange's public rate limit.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("api-url", coinbasepro.DefaultAPIURL, "API base URL")
	flags.Duration("timeout", coinbasepro.DefaultRequestTimeout, "Per-request timeout (0 disables)")
	flags.Float64("rate", coinbasepro.DefaultRateLimit, "Requests per second (0 disables pacing)")
	flags.Int("burst", coinbasepro.DefaultBurstSize, "Rate limit burst size")
	flags.String("format", "auto", "Output format (auto|raw|json|yaml)")
	flags.Bool("stats", false, "Print request telemetry to stderr after the call")
	flags.BoolP("verbose", "v", false, "Enable debug logging")

	productsCmd := &cobra.Command{
		Use:   "products",
		Short: "List all trading pairs",
		Args:  cobra.NoArgs,
		RunE:  runProducts,
	}

	productCmd := &cobra.Command{
		Use:   "product <product-id>",
		Short: "Show one trading pair",
		Args:  cobra.ExactArgs(1),
		RunE:  runProduct,
	}

	bookCmd := &cobra.Command{
		Use:   "book <product-id>",
		Short: "Show the order book",
		Long:  "Fetch the order book at level 1 (best bid/ask), 2 (top 50 aggregated) or 3 (full, expensive).",
		Args:  cobra.ExactArgs(1),
		RunE:  runBook,
	}
	bookCmd.Flags().Var(bookLevel, "level", "Book detail level (1|2|3)")

	tickerCmd := &cobra.Command{
		Use:   "ticker <product-id>",
		Short: "Show the latest tick",
		Args:  cobra.ExactArgs(1),
		RunE:  runTicker,
	}

	tradesCmd := &cobra.Command{
		Use:   "trades <product-id>",
		Short: "List recent trades",
		Long:  "List the latest trades, newest first. --after resumes a descending walk from a trade id, inclusive.",
		Args:  cobra.ExactArgs(1),
		RunE:  runTrades,
	}
	tradesCmd.Flags().Uint64("after", 0, "Resume paging from this trade id (inclusive)")

	candlesCmd := &cobra.Command{
		Use:   "candles <product-id>",
		Short: "Fetch historic rates",
		Long: `Fetch OHLCV candles. Rows are [timestamp, low, high, open, close, volume].

The exchange caps one response at 300 candles; narrow the window or widen
the granularity if the request is rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: runCandles,
	}
	candlesCmd.Flags().String("start", "", "Window start (RFC3339)")
	candlesCmd.Flags().String("end", "", "Window end (RFC3339)")
	candlesCmd.Flags().Var(&candleWidth, "granularity", "Candle width in seconds (60|300|900|3600|21600|86400)")

	statsCmd := &cobra.Command{
		Use:   "stats <product-id>",
		Short: "Show 24-hour statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  runStats,
	}

	currenciesCmd := &cobra.Command{
		Use:   "currencies",
		Short: "List known currencies",
		Args:  cobra.NoArgs,
		RunE:  runCurrencies,
	}

	timeCmd := &cobra.Command{
		Use:   "time",
		Short: "Show the API server time",
		Args:  cobra.NoArgs,
		RunE:  runTime,
	}

	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(productCmd)
	rootCmd.AddCommand(bookCmd)
	rootCmd.AddCommand(tickerCmd)
	rootCmd.AddCommand(tradesCmd)
	rootCmd.AddCommand(candlesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(currenciesCmd)
	rootCmd.AddCommand(timeCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
