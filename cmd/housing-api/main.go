// Command housing-api loads the house pricing dataset into memory and serves
// the /houses CRUD API until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"housingapi/internal/adapters/houses"
	"housingapi/internal/core"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	exitFunc      = os.Exit
	notifyContext = signal.NotifyContext
)

type config struct {
	addr     string
	logLevel string
	trace    bool
	source   core.SourceConfig
}

func main() {
	exitFunc(cli(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func cli(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("housing-api", flag.ContinueOnError)
	fs.SetOutput(stderr)

	cfg := config{source: core.SourceConfigFromEnv()}
	driver := string(cfg.source.Driver)
	fs.StringVar(&cfg.addr, "addr", envOr("HOUSING_HTTP_ADDR", houses.DefaultAddress), "listen address")
	fs.StringVar(&driver, "source", driver, "seed source: csv|s3|sqlite|postgres (default csv)")
	fs.StringVar(&cfg.source.CSVPath, "csv", cfg.source.CSVPath, "CSV seed file for -source=csv")
	fs.StringVar(&cfg.source.SQLitePath, "sqlite", cfg.source.SQLitePath, "sqlite seed database for -source=sqlite")
	fs.StringVar(&cfg.source.Table, "table", cfg.source.Table, "seed table for sqlite and postgres")
	fs.StringVar(&cfg.logLevel, "log-level", envOr("HOUSING_LOG_LEVEL", "info"), "debug|info|warn|error")
	fs.BoolVar(&cfg.trace, "trace", false, "write service spans as JSON lines to stdout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg.source.Driver = core.SourceDriver(strings.ToLower(driver))

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.logLevel)); err != nil {
		_, _ = fmt.Fprintf(stderr, "invalid log level %q\n", cfg.logLevel)
		return 2
	}
	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := notifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg, logger, stdout); err != nil {
		logger.Error("housing-api failed", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg config, logger *slog.Logger, stdout io.Writer) error {
	src, err := core.OpenSource(ctx, cfg.source)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMetrics, err := core.NewPrometheusMetricsRecorder(reg)
	if err != nil {
		return fmt.Errorf("register service metrics: %w", err)
	}
	opts := []core.Option{
		core.WithLogger(logger),
		core.WithMetricsRecorder(core.MultiMetricsRecorder{promMetrics, core.NewExpvarMetricsRecorder("")}),
		core.WithAuditRecorder(core.LogAuditRecorder{Logger: logger}),
	}
	if cfg.trace {
		opts = append(opts, core.WithTracer(core.NewJSONTracer(stdout)))
	}

	svc, err := core.LoadService(ctx, src, opts...)
	if err != nil {
		return err
	}
	logger.Info("houses loaded", "source", sourceName(cfg.source.Driver), "count", svc.Count())

	srv, err := houses.NewServer(svc, houses.ServerOptions{
		Addr:     cfg.addr,
		Logger:   logger,
		Registry: reg,
	})
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case err := <-srv.Err():
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return errors.New("server stopped unexpectedly")
	}
	logger.Info("shutting down", "addr", srv.Addr())
	if err := srv.Stop(context.Background()); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func sourceName(d core.SourceDriver) string {
	if d == "" {
		return string(core.SourceCSV)
	}
	return string(d)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
