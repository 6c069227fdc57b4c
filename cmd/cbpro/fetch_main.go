package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	coinbasepro "github.com/quotron/go-coinbasepro"
	"github.com/quotron/go-coinbasepro/internal/telemetry"
)

// levelValue is a pflag.Value for --level, so out-of-range levels are
// rejected at parse time instead of mid-request.
type levelValue coinbasepro.BookLevel

func newLevelValue() *levelValue {
	v := levelValue(coinbasepro.BookLevel1)
	return &v
}

func (v *levelValue) String() string { return strconv.Itoa(int(*v)) }

func (v *levelValue) Set(raw string) error {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 3 {
		return fmt.Errorf("valid levels: 1, 2, 3")
	}
	*v = levelValue(n)
	return nil
}

func (v *levelValue) Type() string { return "level" }

func (v *levelValue) Level() coinbasepro.BookLevel { return coinbasepro.BookLevel(*v) }

// granularityValue is a pflag.Value for --granularity. Zero means the flag
// was never set and the candles request omits the parameter.
type granularityValue coinbasepro.Granularity

func (v *granularityValue) String() string {
	if *v == 0 {
		return ""
	}
	return strconv.Itoa(int(*v))
}

func (v *granularityValue) Set(raw string) error {
	n, err := strconv.Atoi(raw)
	if err != nil || !coinbasepro.Granularity(n).Valid() {
		return fmt.Errorf("valid granularities: 60, 300, 900, 3600, 21600, 86400")
	}
	*v = granularityValue(n)
	return nil
}

func (v *granularityValue) Type() string { return "seconds" }

var (
	bookLevel   = newLevelValue()
	candleWidth granularityValue
)

// fetchFunc runs one endpoint call against a built client.
type fetchFunc func(ctx context.Context, client *coinbasepro.Client) (string, error)

// fetch is the shared path behind every subcommand: build the client from
// the persistent flags, run the call, format the payload, optionally dump
// telemetry.
func fetch(cmd *cobra.Command, do fetchFunc) error {
	client, recorder := newClient(cmd.Flags())

	body, err := do(context.Background(), client)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	if err := writeOutput(os.Stdout, body, format); err != nil {
		return err
	}

	if stats, _ := cmd.Flags().GetBool("stats"); stats {
		printStats(os.Stderr, recorder)
	}
	return nil
}

func newClient(flags *pflag.FlagSet) (*coinbasepro.Client, *telemetry.Recorder) {
	apiURL, _ := flags.GetString("api-url")
	timeout, _ := flags.GetDuration("timeout")
	rate, _ := flags.GetFloat64("rate")
	burst, _ := flags.GetInt("burst")
	verbose, _ := flags.GetBool("verbose")

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	recorder := telemetry.NewRecorder()
	builder := coinbasepro.NewBuilder().
		APIURL(apiURL).
		RequestTimeout(timeout).
		RateLimit(rate).
		BurstSize(burst).
		Metrics(recorder.Observe)
	if verbose {
		builder = builder.Logger(log.Logger)
	}

	return builder.Build(), recorder
}

// writeOutput renders a response body. auto picks indented JSON on a
// terminal and the raw payload when piped, so scripts never see decoration.
func writeOutput(w io.Writer, body string, format string) error {
	switch format {
	case "auto":
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(w, body)
			return nil
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(body), "", "  "); err != nil {
			fmt.Fprintln(w, body)
			return nil
		}
		fmt.Fprintln(w, buf.String())
		return nil
	case "raw":
		fmt.Fprintln(w, body)
		return nil
	case "json":
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(body), "", "  "); err != nil {
			return fmt.Errorf("response is not valid JSON: %w", err)
		}
		fmt.Fprintln(w, buf.String())
		return nil
	case "yaml":
		var v interface{}
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			return fmt.Errorf("response is not valid JSON: %w", err)
		}
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		fmt.Fprint(w, string(out))
		return nil
	default:
		return fmt.Errorf("unknown format %q (valid: auto, raw, json, yaml)", format)
	}
}

func printStats(w io.Writer, recorder *telemetry.Recorder) {
	totals := recorder.Totals()
	if len(totals) == 0 {
		fmt.Fprintln(w, "no requests recorded")
		return
	}

	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(w, "Requests by endpoint/status:")
	for _, k := range keys {
		fmt.Fprintf(w, "  %-24s %.0f\n", k, totals[k])
	}
}

func runProducts(cmd *cobra.Command, args []string) error {
	return fetch(cmd, func(ctx context.Context, client *coinbasepro.Client) (string, error) {
		return client.GetProducts(ctx)
	})
}

func runProduct(cmd *cobra.Command, args []string) error {
	return fetch(cmd, func(ctx context.Context, client *coinbasepro.Client) (string, error) {
		return client.GetProduct(ctx, args[0])
	})
}

func runBook(cmd *cobra.Command, args []string) error {
	return fetch(cmd, func(ctx context.Context, client *coinbasepro.Client) (string, error) {
		return client.GetProductOrderBook(ctx, args[0], bookLevel.Level())
	})
}

func runTicker(cmd *cobra.Command, args []string) error {
	return fetch(cmd, func(ctx context.Context, client *coinbasepro.Client) (string, error) {
		return client.GetProductTicker(ctx, args[0])
	})
}

func runTrades(cmd *cobra.Command, args []string) error {
	after, _ := cmd.Flags().GetUint64("after")

	return fetch(cmd, func(ctx context.Context, client *coinbasepro.Client) (string, error) {
		return client.GetProductTrades(ctx, args[0], after)
	})
}

func runCandles(cmd *cobra.Command, args []string) error {
	var opts coinbasepro.HistoricRatesOpts

	if raw, _ := cmd.Flags().GetString("start"); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("invalid --start %q (want RFC3339, e.g. 2021-01-01T00:00:00Z)", raw)
		}
		opts.Start = start
	}
	if raw, _ := cmd.Flags().GetString("end"); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("invalid --end %q (want RFC3339, e.g. 2021-01-02T00:00:00Z)", raw)
		}
		opts.End = end
	}
	opts.Granularity = coinbasepro.Granularity(candleWidth)

	return fetch(cmd, func(ctx context.Context, client *coinbasepro.Client) (string, error) {
		return client.GetProductHistoricRates(ctx, args[0], opts)
	})
}

func runStats(cmd *cobra.Command, args []string) error {
	return fetch(cmd, func(ctx context.Context, client *coinbasepro.Client) (string, error) {
		return client.GetProductStats(ctx, args[0])
	})
}

func runCurrencies(cmd *cobra.Command, args []string) error {
	return fetch(cmd, func(ctx context.Context, client *coinbasepro.Client) (string, error) {
		return client.GetCurrencies(ctx)
	})
}

func runTime(cmd *cobra.Command, args []string) error {
	return fetch(cmd, func(ctx context.Context, client *coinbasepro.Client) (string, error) {
		return client.GetServerTime(ctx)
	})
}
