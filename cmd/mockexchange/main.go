// Command mockexchange runs a local Coinbase-Exchange-shaped market-data
// server with deterministic synthetic data.
package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/quotron/go-coinbasepro/internal/mockexchange"
)

var (
	addr     = pflag.String("addr", "", "Listen address host:port (default 127.0.0.1:8080, or MOCKEXCHANGE_PORT)")
	latency  = pflag.Duration("latency", 0, "Artificial delay added to every API response")
	fixtures = pflag.String("fixtures", "", "YAML fixture file overriding the built-in markets")
)

func main() {
	pflag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	config := mockexchange.DefaultServerConfig()
	config.Latency = *latency
	if *addr != "" {
		host, portStr, err := net.SplitHostPort(*addr)
		if err != nil {
			log.Fatal().Err(err).Str("addr", *addr).Msg("Invalid --addr, want host:port")
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			log.Fatal().Err(err).Str("addr", *addr).Msg("Invalid --addr port")
		}
		config.Host = host
		config.Port = port
	}

	data := mockexchange.DefaultDataset()
	if *fixtures != "" {
		loaded, err := mockexchange.LoadFixturesFile(*fixtures)
		if err != nil {
			log.Fatal().Err(err).Str("path", *fixtures).Msg("Failed to load fixtures")
		}
		data = loaded
		log.Info().Str("path", *fixtures).Int("products", len(data.Products())).Msg("Loaded fixtures")
	}

	server := mockexchange.NewServer(config, data)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatal().Err(err).Msg("Server failed")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
