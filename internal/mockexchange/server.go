package mockexchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/quotron/go-coinbasepro/internal/ratelimit"
	"github.com/quotron/go-coinbasepro/internal/telemetry"
)

// ServerConfig holds the HTTP server configuration. Latency is added to
// every API response to simulate upstream round-trip time.
type ServerConfig struct {
	Host         string        `json:"host" yaml:"host"`
	Port         int           `json:"port" yaml:"port"`
	RateLimit    float64       `json:"rate_limit" yaml:"rate_limit"`
	BurstSize    int           `json:"burst_size" yaml:"burst_size"`
	Latency      time.Duration `json:"latency" yaml:"latency"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
}

// DefaultServerConfig returns the default server configuration. The rate
// limit mirrors the real exchange's public allowance so clients tuned
// against the mock behave the same in production.
func DefaultServerConfig() ServerConfig {
	config := ServerConfig{
		Host:         "127.0.0.1",
		Port:         8080,
		RateLimit:    10,
		BurstSize:    20,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if portStr := os.Getenv("MOCKEXCHANGE_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.Port = port
		}
	}

	return config
}

// Server hosts the mock exchange API.
type Server struct {
	router   *mux.Router
	server   *http.Server
	config   ServerConfig
	data     *Dataset
	limiter  *ratelimit.Limiter
	recorder *telemetry.Recorder
	clock    func() time.Time
}

// NewServer creates a mock exchange server over the given dataset. A nil
// dataset serves the built-in markets.
func NewServer(config ServerConfig, data *Dataset) *Server {
	if data == nil {
		data = DefaultDataset()
	}

	s := &Server{
		router:   mux.NewRouter(),
		config:   config,
		data:     data,
		limiter:  ratelimit.NewLimiter(config.RateLimit, config.BurstSize),
		recorder: telemetry.NewRecorder(),
		clock:    time.Now,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      s.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return s
}

// Handler exposes the router so tests can mount the API on httptest servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Recorder exposes the server's telemetry so callers can inspect counters.
func (s *Server) Recorder() *telemetry.Recorder {
	return s.recorder
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return s.server.Addr
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	log.Info().
		Str("addr", s.server.Addr).
		Float64("rate_limit", s.config.RateLimit).
		Int("products", len(s.data.Products())).
		Msg("Mock exchange listening")
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down mock exchange")
	return s.server.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Telemetry stays outside the API middleware so scrapes are never
	// throttled or counted as market-data traffic.
	s.router.Handle("/metrics", s.recorder.Handler()).Methods("GET")

	api := s.router.PathPrefix("/").Subrouter()
	api.Use(s.requestIDMiddleware)
	api.Use(s.loggingMiddleware)
	api.Use(s.metricsMiddleware)
	api.Use(s.throttleMiddleware)
	api.Use(s.latencyMiddleware)

	api.HandleFunc("/products", s.handleProducts).Methods("GET").Name("products")
	api.HandleFunc("/products/{id}", s.handleProduct).Methods("GET").Name("product")
	api.HandleFunc("/products/{id}/book", s.handleBook).Methods("GET").Name("book")
	api.HandleFunc("/products/{id}/ticker", s.handleTicker).Methods("GET").Name("ticker")
	api.HandleFunc("/products/{id}/trades", s.handleTrades).Methods("GET").Name("trades")
	api.HandleFunc("/products/{id}/candles", s.handleCandles).Methods("GET").Name("candles")
	api.HandleFunc("/products/{id}/stats", s.handleStats).Methods("GET").Name("stats")
	api.HandleFunc("/currencies", s.handleCurrencies).Methods("GET").Name("currencies")
	api.HandleFunc("/time", s.handleTime).Methods("GET").Name("time")
}

type ctxKey int

const requestIDKey ctxKey = 0

// requestIDMiddleware tags every request with a short id for log correlation.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()[:8]
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		requestID, _ := r.Context().Value(requestIDKey).(string)
		log.Debug().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("Request served")
	})
}

// metricsMiddleware counts requests per route name so product ids never leak
// into label cardinality.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil && route.GetName() != "" {
			endpoint = route.GetName()
		}
		status := "success"
		if wrapper.statusCode >= 400 {
			status = "error"
		}
		tags := map[string]string{"endpoint": endpoint, "status": status}
		s.recorder.Observe(telemetry.MetricRequestsTotal, 1, tags)
		s.recorder.Observe(telemetry.MetricRequestDurationMS, float64(time.Since(start).Milliseconds()), map[string]string{"endpoint": endpoint})
	})
}

// throttleMiddleware enforces the simulated public rate limit. Rejected
// requests get the exchange's 429 payload so client backoff code sees the
// same bytes it would in production.
func (s *Server) throttleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"message": "Slow rate limit exceeded",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// latencyMiddleware holds every admitted request for the configured delay,
// aborting early if the caller gives up.
func (s *Server) latencyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.Latency > 0 {
			select {
			case <-time.After(s.config.Latency):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// responseWrapper captures the status code written by a handler.
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to encode response")
	}
}

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "NotFound"})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"message": message})
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.Products())
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := s.data.Product(mux.Vars(r)["id"])
	if !ok {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	level := 1
	if raw := r.URL.Query().Get("level"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 3 {
			writeBadRequest(w, "Invalid level")
			return
		}
		level = parsed
	}

	book, ok := s.data.Book(mux.Vars(r)["id"], level)
	if !ok {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) handleTicker(w http.ResponseWriter, r *http.Request) {
	ticker, ok := s.data.Ticker(mux.Vars(r)["id"], s.clock())
	if !ok {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, ticker)
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	var before uint64
	if raw := r.URL.Query().Get("after"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeBadRequest(w, "Invalid after")
			return
		}
		before = parsed
	}

	trades, ok := s.data.Trades(mux.Vars(r)["id"], before, s.clock())
	if !ok {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, trades)
}

var candleWidths = map[int]time.Duration{
	60:    time.Minute,
	300:   5 * time.Minute,
	900:   15 * time.Minute,
	3600:  time.Hour,
	21600: 6 * time.Hour,
	86400: 24 * time.Hour,
}

func (s *Server) handleCandles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	width := time.Minute
	if raw := query.Get("granularity"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeBadRequest(w, "Unsupported granularity")
			return
		}
		known, ok := candleWidths[parsed]
		if !ok {
			writeBadRequest(w, "Unsupported granularity")
			return
		}
		width = known
	}

	rawStart, rawEnd := query.Get("start"), query.Get("end")
	if (rawStart == "") != (rawEnd == "") {
		writeBadRequest(w, "start and end must both be provided")
		return
	}

	end := s.clock()
	count := maxCandles
	if rawStart != "" {
		start, err := time.Parse(time.RFC3339, rawStart)
		if err != nil {
			writeBadRequest(w, "Invalid start")
			return
		}
		parsedEnd, err := time.Parse(time.RFC3339, rawEnd)
		if err != nil {
			writeBadRequest(w, "Invalid end")
			return
		}
		if parsedEnd.Before(start) {
			writeBadRequest(w, "end must be after start")
			return
		}
		end = parsedEnd
		count = int(parsedEnd.Sub(start)/width) + 1
		if count > maxCandles {
			writeBadRequest(w, "granularity too small for the requested time range")
			return
		}
	}

	candles, ok := s.data.Candles(mux.Vars(r)["id"], end, width, count)
	if !ok {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, candles)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, ok := s.data.Stats(mux.Vars(r)["id"])
	if !ok {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.Currencies())
}

func (s *Server) handleTime(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Time(s.clock()))
}
