// Command unitconv converts values between units of the built-in catalog
// and runs the site calculators from the command line.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"unitconv"
	"unitconv/catalogdb"
	unitconvmsgpack "unitconv/msgpack"
	unitconvpb "unitconv/protobuf"
	"unitconv/rates"
)

const appName = "unitconv"

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

type app struct {
	cfg      Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *unitconv.Metrics
	loader   *rates.Loader
	catalog  *unitconv.Catalog

	stdin  io.Reader
	stdout io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", os.Getenv("UNITCONV_CONFIG"), "Path to YAML configuration file (env: UNITCONV_CONFIG)")
	logLevel := fs.String("log-level", "", "Override the configured log level")
	offline := fs.Bool("offline", false, "Use the fallback exchange rates without fetching")
	fs.Usage = func() { printUsage(fs) }
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *offline {
		cfg.Rates.Disabled = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a, err := newApp(ctx, cfg, stdin, stdout, stderr)
	if err != nil {
		return err
	}
	stopMetrics := a.serveMetrics()
	defer stopMetrics()

	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", fs.Arg(0))
		fs.Usage()
		return errUsage
	}
	rest := fs.Args()[1:]
	if len(rest) < cmd.minArgs {
		fmt.Fprintf(stderr, "usage: %s %s %s\n", appName, fs.Arg(0), cmd.usage)
		return errUsage
	}
	return cmd.run(ctx, a, rest)
}

func newApp(ctx context.Context, cfg Config, stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	logger := setupLogger(stderr, cfg.LogLevel, cfg.LogFormat)

	registry := prometheus.NewRegistry()
	metrics := unitconv.NewMetrics()
	if err := metrics.Register(registry); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	catalog, err := loadCatalog(ctx, cfg.Catalog)
	if err != nil {
		return nil, err
	}
	logger.Debug("catalog loaded", "source", cfg.Catalog.Source, "categories", len(catalog.Categories()))

	var source rates.Source
	if !cfg.Rates.Disabled {
		source = &rates.HTTPSource{URL: cfg.Rates.URL}
	}
	loader := rates.NewLoader(source,
		rates.WithTimeout(cfg.Rates.Timeout),
		rates.WithLogger(logger),
		rates.WithMetrics(metrics),
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  metrics,
		loader:   loader,
		catalog:  catalog,
		stdin:    stdin,
		stdout:   stdout,
	}, nil
}

func loadCatalog(ctx context.Context, cfg CatalogConfig) (*unitconv.Catalog, error) {
	switch cfg.Source {
	case CatalogSQLite:
		store, err := catalogdb.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Load(ctx)
	case CatalogMsgpack:
		data, err := os.ReadFile(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		return unitconvmsgpack.UnmarshalCatalog(data)
	case CatalogProtobuf:
		data, err := os.ReadFile(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		return unitconvpb.UnmarshalCatalog(data)
	default:
		return unitconv.DefaultCatalog(), nil
	}
}

// ratedCatalog waits for the exchange rates and returns the catalog with
// the currency category refreshed.
func (a *app) ratedCatalog(ctx context.Context) *unitconv.Catalog {
	a.loader.Load(ctx)
	return a.loader.Catalog(a.catalog)
}

// catalogFor only pays for the rate fetch when category needs it.
func (a *app) catalogFor(ctx context.Context, category string) *unitconv.Catalog {
	if category == "currency" {
		return a.ratedCatalog(ctx)
	}
	return a.catalog
}

func (a *app) serveMetrics() func() {
	if a.cfg.Metrics.Addr == "" {
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	srv := &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "addr", srv.Addr, "error", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", srv.Addr)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func printUsage(fs *flag.FlagSet) {
	w := bufio.NewWriter(fs.Output())
	defer w.Flush()
	fmt.Fprintf(w, "Usage: %s [options] <command> [args]\n\nCommands:\n", appName)
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-15s %s\n", name+" "+commands[name].usage, commands[name].help)
	}
	fmt.Fprintln(w, "\nOptions:")
	w.Flush()
	fs.PrintDefaults()
}
