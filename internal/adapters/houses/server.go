package houses

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultAddress is used when ServerOptions.Addr is empty.
const DefaultAddress = "127.0.0.1:8000"

// Backend is the service behind the server; Count feeds /healthz.
type Backend interface {
	Service
	Count() int
}

// ServerOptions configures the HTTP server. Zero values take defaults.
type ServerOptions struct {
	Addr              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxBodyBytes      int64
	Logger            *slog.Logger
	// Registry receives the HTTP collectors and is served on /metrics.
	// A fresh registry with Go and process collectors is used when nil.
	Registry *prometheus.Registry
}

func (o *ServerOptions) applyDefaults() {
	if o.Addr == "" {
		o.Addr = DefaultAddress
	}
	if o.ReadTimeout == 0 {
		o.ReadTimeout = 5 * time.Second
	}
	if o.ReadHeaderTimeout == 0 {
		o.ReadHeaderTimeout = 2 * time.Second
	}
	if o.WriteTimeout == 0 {
		o.WriteTimeout = 10 * time.Second
	}
	if o.IdleTimeout == 0 {
		o.IdleTimeout = 60 * time.Second
	}
	if o.ShutdownTimeout == 0 {
		o.ShutdownTimeout = 5 * time.Second
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Registry == nil {
		o.Registry = prometheus.NewRegistry()
		o.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
}

// Server hosts the house API plus /healthz, /metrics and /debug/vars.
type Server struct {
	http    *http.Server
	backend Backend
	logger  *slog.Logger
	opts    ServerOptions

	mu       sync.Mutex
	listener net.Listener
	errs     chan error
}

// NewServer builds the server without listening.
func NewServer(backend Backend, opts ServerOptions) (*Server, error) {
	if backend == nil {
		return nil, errors.New("houses.NewServer: backend is nil")
	}
	opts.applyDefaults()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "housing",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by status code and method.",
	}, []string{"code", "method"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "housing",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
	for _, c := range []prometheus.Collector{requests, latency} {
		if err := opts.Registry.Register(c); err != nil {
			return nil, fmt.Errorf("register http metrics: %w", err)
		}
	}

	s := &Server{backend: backend, logger: opts.Logger, opts: opts, errs: make(chan error, 1)}

	api := &Handler{Service: backend, MaxBodyBytes: opts.MaxBodyBytes}
	instrumented := promhttp.InstrumentHandlerCounter(requests,
		promhttp.InstrumentHandlerDuration(latency, api))

	mux := http.NewServeMux()
	mux.Handle("/", instrumented)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{Registry: opts.Registry}))
	mux.Handle("/debug/vars", expvar.Handler())

	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           withRequestLogging(mux, opts.Logger),
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(opts.Logger.Handler(), slog.LevelError),
	}
	return s, nil
}

// Handler returns the root handler, for use with httptest.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Start binds the listener and serves in a background goroutine.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("http server listening", "addr", ln.Addr().String())
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped", "error", err)
			s.errs <- err
		}
		close(s.errs)
	}()
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.opts.Addr
	}
	return s.listener.Addr().String()
}

// Err is closed when serving stops and carries the failure, if any.
func (s *Server) Err() <-chan error { return s.errs }

// Stop gracefully shuts down, waiting up to ShutdownTimeout.
func (s *Server) Stop(ctx context.Context) error {
	if timeout := s.opts.ShutdownTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"houses": s.backend.Count(),
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func withRequestLogging(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration", time.Since(start),
		)
	})
}
