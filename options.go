package scanboard

import (
	"errors"
	"log/slog"
	"time"

	"github.com/jpalmerr/scanboard/chart"
	"github.com/jpalmerr/scanboard/internal/summary"
)

// sbConfig holds mutable state during Scanboard construction.
type sbConfig struct {
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
}

// Option is a function that configures a [Scanboard] instance during
// construction. Options return an error if validation fails.
type Option func(*sbConfig) error

// WithSource sets where summaries come from. Required.
//
// Example:
//
//	src := source.NewDemo(nil, 1)
//	sb, err := scanboard.New(scanboard.WithSource(src))
//
// Returns an error if the source is nil.
func WithSource(src Source) Option {
	return func(cfg *sbConfig) error {
		if src == nil {
			return errors.New("source cannot be nil")
		}
		cfg.source = src
		return nil
	}
}

// WithRefreshInterval sets how often the country list and all summaries are
// refreshed.
//
// Each cycle refreshes every country concurrently (up to the
// [WithMaxConcurrency] limit) and is bounded by the interval. Defaults to 5
// minutes if not specified.
//
// Returns an error if the duration is zero or negative.
func WithRefreshInterval(d time.Duration) Option {
	return func(cfg *sbConfig) error {
		if d <= 0 {
			return errors.New("refresh interval must be positive")
		}
		cfg.refreshInterval = d
		return nil
	}
}

// WithPort sets the HTTP port for the dashboard server.
//
// The dashboard UI and API will be available at http://localhost:<port>.
// Defaults to 8080 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *sbConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithMaxConcurrency sets the maximum number of concurrent summary requests
// to the source. Defaults to 4 if not specified.
//
// Returns an error if the value is zero or negative.
func WithMaxConcurrency(n int) Option {
	return func(cfg *sbConfig) error {
		if n <= 0 {
			return errors.New("max concurrency must be positive")
		}
		cfg.maxConcurrency = n
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Scanboard instance.
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *sbConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithTitle sets the dashboard title displayed in the browser tab and header.
//
// If not specified, defaults to "Scanboard".
func WithTitle(title string) Option {
	return func(cfg *sbConfig) error {
		cfg.title = title
		return nil
	}
}

// WithDefaultCountry sets the country shown at the dashboard root.
// Codes are case-insensitive. Defaults to IS.
//
// Returns an error if the code is empty.
func WithDefaultCountry(code string) Option {
	return func(cfg *sbConfig) error {
		code = summary.NormalizeCountry(code)
		if code == "" {
			return errors.New("default country cannot be empty")
		}
		cfg.defaultCountry = code
		return nil
	}
}

// WithTheme sets the provider of the CSS custom properties charts are
// colored with, typically a [theme.Stylesheet] or [theme.FileProvider].
//
// If not specified, the custom properties of the embedded dashboard
// stylesheet are used.
//
// Returns an error if the provider is nil.
func WithTheme(provider chart.ThemeProvider) Option {
	return func(cfg *sbConfig) error {
		if provider == nil {
			return errors.New("theme cannot be nil")
		}
		cfg.theme = provider
		return nil
	}
}

// WithChartSettings sets the chart font sizes and title color. Zero fields
// keep their defaults.
func WithChartSettings(s chart.Settings) Option {
	return func(cfg *sbConfig) error {
		cfg.settings = s
		return nil
	}
}

// WithRefreshCallback registers a function to be called after every source
// call, once the result is stored.
//
// Multiple callbacks may be registered; they execute in registration order.
//
// IMPORTANT: Callbacks must be non-blocking. They are invoked synchronously
// from a single goroutine, so a blocking callback delays the processing of
// subsequent results. Panics within callbacks are recovered and logged.
//
// Example:
//
//	sb, err := scanboard.New(
//	    scanboard.WithSource(src),
//	    scanboard.WithRefreshCallback(func(r scanboard.RefreshResult) {
//	        if r.Err != nil {
//	            log.Printf("ALERT: refresh of %q failed: %v", r.Country, r.Err)
//	        }
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithRefreshCallback(cb func(RefreshResult)) Option {
	return func(cfg *sbConfig) error {
		if cb == nil {
			return nil
		}
		cfg.refreshCallbacks = append(cfg.refreshCallbacks, cb)
		return nil
	}
}
