package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jpalmerr/scanboard"
	"github.com/jpalmerr/scanboard/chart"
	"github.com/jpalmerr/scanboard/internal/source"
	"github.com/jpalmerr/scanboard/theme"
)

// BuildSource opens the configured summary source.
//
// The returned close function releases connections held by the source and
// must be called once the source is no longer used. A Postgres source is
// pinged before it is returned.
func BuildSource(ctx context.Context, cfg *Config) (scanboard.Source, func() error, error) {
	switch cfg.Source.Type {
	case SourcePostgres:
		pc := cfg.Source.Postgres
		pg, err := source.OpenPostgres(ctx, source.PostgresConfig{
			Host:           pc.Host,
			Port:           pc.Port,
			Database:       pc.Database,
			User:           pc.User,
			Password:       pc.Password,
			SSLMode:        pc.SSLMode,
			ConnectTimeout: pc.ConnectTimeout.Duration(),
			Table:          pc.Table,
		})
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil

	case SourceHTTP:
		hc := cfg.Source.HTTP
		h, err := source.NewHTTP(source.HTTPConfig{
			CountriesURL:       hc.CountriesURL,
			CountriesPath:      hc.CountriesPath,
			SummaryURLTemplate: hc.SummaryURLTemplate,
			SummaryPath:        hc.SummaryPath,
			Headers:            hc.Headers,
			Timeout:            hc.Timeout.Duration(),
		})
		if err != nil {
			return nil, nil, err
		}
		return h, h.Close, nil

	case SourceDemo:
		d := source.NewDemo(cfg.Source.Demo.Countries, cfg.Source.Demo.Seed)
		return d, func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown source type %q", cfg.Source.Type)
	}
}

// BuildTheme returns the configured theme provider, or nil to use the
// embedded stylesheet.
func BuildTheme(cfg *Config, logger *slog.Logger) (chart.ThemeProvider, error) {
	if cfg.Theme.Stylesheet == "" {
		return nil, nil
	}
	provider, err := theme.NewFileProvider(cfg.Theme.Stylesheet, logger)
	if err != nil {
		return nil, fmt.Errorf("theme.stylesheet: %w", err)
	}
	return provider, nil
}

// ChartSettings converts the charts section into builder settings.
func (c *Config) ChartSettings() chart.Settings {
	return chart.Settings{
		FontSize:       c.Charts.FontSize,
		LegendFontSize: c.Charts.LegendFontSize,
		TitleFontSize:  c.Charts.TitleFontSize,
		TitleColor:     c.Charts.TitleColor,
	}
}

// BuildOptions converts parsed configuration into SDK options. The source
// and logger are supplied by the caller.
func BuildOptions(cfg *Config, logger *slog.Logger) ([]scanboard.Option, error) {
	opts := []scanboard.Option{
		scanboard.WithPort(cfg.Port),
		scanboard.WithRefreshInterval(cfg.RefreshInterval.Duration()),
		scanboard.WithChartSettings(cfg.ChartSettings()),
	}
	if cfg.Title != "" {
		opts = append(opts, scanboard.WithTitle(cfg.Title))
	}
	if cfg.DefaultCountry != "" {
		opts = append(opts, scanboard.WithDefaultCountry(cfg.DefaultCountry))
	}
	if cfg.MaxConcurrency > 0 {
		opts = append(opts, scanboard.WithMaxConcurrency(cfg.MaxConcurrency))
	}

	provider, err := BuildTheme(cfg, logger)
	if err != nil {
		return nil, err
	}
	if provider != nil {
		opts = append(opts, scanboard.WithTheme(provider))
	}

	return opts, nil
}
