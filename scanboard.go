package scanboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/jpalmerr/scanboard/chart"
	"github.com/jpalmerr/scanboard/dashboard"
	"github.com/jpalmerr/scanboard/internal/metrics"
	"github.com/jpalmerr/scanboard/internal/poller"
	"github.com/jpalmerr/scanboard/internal/server"
	"github.com/jpalmerr/scanboard/internal/store"
	"github.com/jpalmerr/scanboard/theme"
)

const (
	defaultRefreshInterval = 5 * time.Minute
	defaultPort            = 8080
	defaultMaxConcurrency  = 4
	defaultCountry         = "IS"
)

// Scanboard is the main orchestrator for summary refreshing and dashboard
// serving.
//
// Scanboard refreshes the country list and every country's scan summary
// from a [Source], keeps the latest results in memory and serves the
// dashboard over HTTP. It is created using [New] with functional options
// and started with [Scanboard.Start].
//
// The typical lifecycle is:
//
//	sb, err := scanboard.New(scanboard.WithSource(src))
//	if err != nil {
//	    slog.Error("failed to create scanboard", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	sb.Start(ctx) // blocks until context cancelled
type Scanboard struct {
	title            string
	defaultCountry   string
	source           Source
	refreshInterval  time.Duration
	port             int
	maxConcurrency   int
	theme            chart.ThemeProvider
	settings         chart.Settings
	logger           *slog.Logger
	refreshCallbacks []func(RefreshResult)
	registry         *prom.Registry
	recorder         metrics.Recorder
}

// New creates a new [Scanboard] instance with the given options.
//
// A source must be configured via [WithSource]. Other options have sensible
// defaults:
//   - Refresh interval: 5 minutes
//   - Port: 8080
//   - Max concurrency: 4
//   - Default country: IS
//   - Theme: the custom properties of the embedded stylesheet
//
// Returns an error if no source is configured or if any option is invalid.
func New(opts ...Option) (*Scanboard, error) {
	cfg := &sbConfig{
		refreshInterval: defaultRefreshInterval,
		port:            defaultPort,
		maxConcurrency:  defaultMaxConcurrency,
		defaultCountry:  defaultCountry,
		settings:        chart.DefaultSettings(),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.source == nil {
		return nil, errors.New("a source is required")
	}

	if cfg.port < 1 || cfg.port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", cfg.port)
	}

	provider := cfg.theme
	if provider == nil {
		sheet, err := theme.LoadStylesheetFS(dashboard.Assets, dashboard.Stylesheet)
		if err != nil {
			return nil, fmt.Errorf("failed to load embedded theme: %w", err)
		}
		provider = sheet
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := prom.NewRegistry()

	return &Scanboard{
		title:            cfg.title,
		defaultCountry:   cfg.defaultCountry,
		source:           cfg.source,
		refreshInterval:  cfg.refreshInterval,
		port:             cfg.port,
		maxConcurrency:   cfg.maxConcurrency,
		theme:            provider,
		settings:         cfg.settings,
		logger:           logger,
		refreshCallbacks: cfg.refreshCallbacks,
		registry:         registry,
		recorder:         metrics.NewPrometheusRecorder(registry),
	}, nil
}

// Start begins refreshing summaries and serving the dashboard.
//
// Start is a blocking call that runs until the provided context is
// cancelled. During execution:
//
//   - The country list and all summaries are refreshed immediately, then at
//     the configured interval
//   - The HTTP server starts on the configured port
//   - The dashboard is available at http://localhost:<port>
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server
// fails to start.
func (sb *Scanboard) Start(ctx context.Context) error {
	sb.logger.Info("scanboard starting", "default_country", sb.defaultCountry)
	sb.logger.Info("refresh configured", "interval", sb.refreshInterval.String())
	sb.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", sb.port))

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	summaryStore := store.NewMemoryStore()

	scheduler := poller.NewScheduler(sb.source, sb.refreshInterval, sb.maxConcurrency, sb.logger)
	scheduler.Start(ctx)

	// track the results consumer goroutine to ensure clean shutdown
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for result := range scheduler.Results() {
			sb.apply(summaryStore, result)
		}
	}()

	// cleanup ensures the scheduler is stopped and all results are processed
	cleanup := func() {
		scheduler.Stop() // closes results channel
		wg.Wait()
	}

	httpServer, err := server.NewServer(summaryStore, sb.port, dashboard.Assets, server.Options{
		Title:          sb.title,
		DefaultCountry: sb.defaultCountry,
		Theme:          sb.theme,
		Settings:       sb.settings,
		Metrics:        sb.recorder,
		MetricsHandler: metrics.Handler(sb.registry),
	}, sb.logger)
	if err != nil {
		cleanup()
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}
	if err := httpServer.Start(ctx); err != nil {
		cleanup()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-ctx.Done()
	cleanup()
	sb.logger.Info("scanboard stopped")
	return nil
}

// apply records one scheduler result in the store, then reports it to
// metrics and callbacks.
func (sb *Scanboard) apply(st store.Store, result poller.Result) {
	sb.recorder.ObserveRefresh(result.Kind.String(), metrics.Outcome(result.Err), result.Latency)

	switch result.Kind {
	case poller.KindCountries:
		if result.Err != nil {
			sb.logger.Warn("country list refresh failed", "error", result.Err.Error())
		} else {
			st.SetCountries(result.Countries)
			sb.logger.Debug("country list refreshed", "count", len(result.Countries))
		}
	case poller.KindSummary:
		sb.applySummary(st, result)
	}

	if len(sb.refreshCallbacks) > 0 {
		public := toRefreshResult(result)
		for _, cb := range sb.refreshCallbacks {
			invokeCallbackSafe(cb, public, sb.logger)
		}
	}
}

// applySummary stores a refreshed summary. A failed refresh keeps the last
// good summary and marks it stale with the error.
func (sb *Scanboard) applySummary(st store.Store, result poller.Result) {
	logAttrs := []any{
		"country", result.Country,
		"latency_ms", result.Latency.Milliseconds(),
	}

	if result.Err == nil {
		st.Update(store.Entry{
			Country:     result.Country,
			Summary:     result.Summary,
			RefreshedAt: result.RefreshedAt,
			LatencyMs:   result.Latency.Milliseconds(),
		})
		sb.logger.Debug("summary refreshed", logAttrs...)
		return
	}

	sb.logger.Warn("summary refresh failed", append(logAttrs, "error", result.Err.Error())...)

	prev, ok := st.Get(result.Country)
	if !ok {
		return
	}
	msg := result.Err.Error()
	prev.Error = &msg
	prev.LatencyMs = result.Latency.Milliseconds()
	st.Update(prev)
}

// Port returns the configured HTTP port for the dashboard server.
func (sb *Scanboard) Port() int {
	return sb.port
}

// RefreshInterval returns the configured interval between refresh cycles.
func (sb *Scanboard) RefreshInterval() time.Duration {
	return sb.refreshInterval
}

// DefaultCountry returns the country shown at the dashboard root.
func (sb *Scanboard) DefaultCountry() string {
	return sb.defaultCountry
}

// Registry returns the Prometheus registry served at /metrics. Callers may
// register their own collectors on it.
func (sb *Scanboard) Registry() *prom.Registry {
	return sb.registry
}

func toRefreshResult(r poller.Result) RefreshResult {
	out := RefreshResult{
		Country:     r.Country,
		Latency:     r.Latency,
		RefreshedAt: r.RefreshedAt,
		Err:         r.Err,
	}
	if r.Kind == poller.KindCountries {
		out.Country = ""
		out.Countries = append([]string(nil), r.Countries...)
		return out
	}
	if r.Err == nil {
		s := r.Summary
		out.Summary = &s
	}
	return out
}

// invokeCallbackSafe calls a refresh callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(RefreshResult), result RefreshResult, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("refresh callback panicked",
				"panic", r,
				"country", result.Country,
			)
		}
	}()
	cb(result)
}
