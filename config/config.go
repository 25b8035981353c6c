// Package config provides YAML configuration parsing for scanboard.
//
// This package enables running scanboard as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Nordic scans
//	port: 8080
//	refresh_interval: 5m
//	default_country: IS
//
//	charts:
//	  font_size: 22
//
//	source:
//	  type: postgres
//	  postgres:
//	    host: ${DB_HOST:-localhost}
//	    database: scans
//	    user: dashboard
//	    password: ${DB_PASSWORD}
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"text/template"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/scanboard/internal/summary"
)

// minRefreshInterval is the minimum allowed refresh interval. It keeps an
// aggressive config from hammering the summary database.
const minRefreshInterval = 10 * time.Second

const (
	defaultPort            = 8080
	defaultRefreshInterval = 5 * time.Minute
)

// Source types.
const (
	SourcePostgres = "postgres"
	SourceHTTP     = "http"
	SourceDemo     = "demo"
)

// Config is the root configuration structure for scanboard.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "Scanboard" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// RefreshInterval is the time between refresh cycles.
	// Accepts duration strings like "30s", "5m". Defaults to 5m.
	RefreshInterval Duration `yaml:"refresh_interval"`

	// DefaultCountry is shown at the dashboard root. Defaults to IS.
	DefaultCountry string `yaml:"default_country"`

	// MaxConcurrency bounds concurrent summary requests. Defaults to 4.
	MaxConcurrency int `yaml:"max_concurrency"`

	Theme  ThemeConfig  `yaml:"theme"`
	Charts ChartsConfig `yaml:"charts"`
	Source SourceConfig `yaml:"source"`
}

// ThemeConfig selects the stylesheet charts are colored from.
type ThemeConfig struct {
	// Stylesheet is a CSS file whose root custom properties color the
	// charts. It is reloaded when it changes. Empty uses the embedded
	// dashboard stylesheet.
	Stylesheet string `yaml:"stylesheet"`
}

// ChartsConfig overrides the chart font sizes and title color.
// Zero values keep the defaults.
type ChartsConfig struct {
	FontSize       int    `yaml:"font_size"`
	LegendFontSize int    `yaml:"legend_font_size"`
	TitleFontSize  int    `yaml:"title_font_size"`
	TitleColor     string `yaml:"title_color"`
}

// SourceConfig selects where summaries come from.
type SourceConfig struct {
	// Type is "postgres", "http" or "demo".
	Type string `yaml:"type"`

	Postgres PostgresConfig `yaml:"postgres"`
	HTTP     HTTPConfig     `yaml:"http"`
	Demo     DemoConfig     `yaml:"demo"`
}

// PostgresConfig describes the summary database.
// String values support ${VAR} and ${VAR:-default} substitution.
type PostgresConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	Database       string   `yaml:"database"`
	User           string   `yaml:"user"`
	Password       string   `yaml:"password"`
	SSLMode        string   `yaml:"sslmode"`
	ConnectTimeout Duration `yaml:"connect_timeout"`

	// Table defaults to "summary".
	Table string `yaml:"table"`
}

// HTTPConfig describes a JSON summary feed.
type HTTPConfig struct {
	// CountriesURL returns the JSON array of country codes.
	CountriesURL string `yaml:"countries_url"`

	// CountriesPath is the dot path to the array inside the response.
	CountriesPath string `yaml:"countries_path"`

	// SummaryURLTemplate produces the per-country URL: {{.country}}.
	SummaryURLTemplate string `yaml:"summary_url_template"`

	// SummaryPath is the dot path to the summary inside the response.
	SummaryPath string `yaml:"summary_path"`

	// Headers are sent with each request. Values support env substitution.
	Headers map[string]string `yaml:"headers"`

	// Timeout is the per-request timeout. Defaults to 10s.
	Timeout Duration `yaml:"timeout"`
}

// DemoConfig configures the seeded demo source.
type DemoConfig struct {
	Countries []string `yaml:"countries"`
	Seed      int64    `yaml:"seed"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// countryPattern matches a two-letter country code after normalization.
var countryPattern = regexp.MustCompile(`^[A-Z]{2}$`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// LoadEnv loads environment variables from a dotenv file without
// overriding variables that are already set.
//
// An empty path reads ".env" in the working directory and is not an error
// when that file does not exist. An explicit path must exist.
func LoadEnv(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before parsing.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in source connection settings, URLs,
// header values and the stylesheet path. Defaults are applied for Port
// (8080), RefreshInterval (5m) and the demo source's countries.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = Duration(defaultRefreshInterval)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.RefreshInterval.Duration() < minRefreshInterval {
		return fmt.Errorf("refresh_interval must be at least %s, got %s", minRefreshInterval, c.RefreshInterval.Duration())
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency cannot be negative, got %d", c.MaxConcurrency)
	}

	if c.DefaultCountry != "" {
		c.DefaultCountry = summary.NormalizeCountry(c.DefaultCountry)
		if !countryPattern.MatchString(c.DefaultCountry) {
			return fmt.Errorf("default_country must be a two-letter code, got %q", c.DefaultCountry)
		}
	}

	if c.Theme.Stylesheet != "" {
		expanded, err := expandEnvVars(c.Theme.Stylesheet)
		if err != nil {
			return fmt.Errorf("theme.stylesheet: %w", err)
		}
		c.Theme.Stylesheet = expanded
	}

	if err := c.Charts.validate(); err != nil {
		return err
	}

	return c.Source.expandAndValidate()
}

func (ch ChartsConfig) validate() error {
	sizes := []struct {
		name string
		v    int
	}{
		{"font_size", ch.FontSize},
		{"legend_font_size", ch.LegendFontSize},
		{"title_font_size", ch.TitleFontSize},
	}
	for _, s := range sizes {
		if s.v < 0 {
			return fmt.Errorf("charts.%s cannot be negative, got %d", s.name, s.v)
		}
	}
	return nil
}

func (s *SourceConfig) expandAndValidate() error {
	switch s.Type {
	case SourcePostgres:
		return s.Postgres.expandAndValidate()
	case SourceHTTP:
		return s.HTTP.expandAndValidate()
	case SourceDemo:
		return s.Demo.validate()
	case "":
		return errors.New("source.type is required (postgres, http or demo)")
	default:
		return fmt.Errorf("source.type must be postgres, http or demo, got %q", s.Type)
	}
}

func (p *PostgresConfig) expandAndValidate() error {
	fields := []struct {
		name     string
		value    *string
		required bool
	}{
		{"host", &p.Host, true},
		{"database", &p.Database, true},
		{"user", &p.User, true},
		{"password", &p.Password, false},
		{"sslmode", &p.SSLMode, false},
		{"table", &p.Table, false},
	}
	for _, f := range fields {
		expanded, err := expandEnvVars(*f.value)
		if err != nil {
			return fmt.Errorf("source.postgres.%s: %w", f.name, err)
		}
		*f.value = expanded
		if f.required && expanded == "" {
			return fmt.Errorf("source.postgres.%s is required", f.name)
		}
	}

	if p.Port < 0 || p.Port > 65535 {
		return fmt.Errorf("source.postgres.port must be between 1 and 65535, got %d", p.Port)
	}
	if p.ConnectTimeout.Duration() < 0 {
		return fmt.Errorf("source.postgres.connect_timeout cannot be negative, got %s", p.ConnectTimeout.Duration())
	}
	return nil
}

func (h *HTTPConfig) expandAndValidate() error {
	if h.CountriesURL == "" {
		return errors.New("source.http.countries_url is required")
	}
	expanded, err := expandEnvVars(h.CountriesURL)
	if err != nil {
		return fmt.Errorf("source.http.countries_url: %w", err)
	}
	h.CountriesURL = expanded
	if err := validateURL(h.CountriesURL); err != nil {
		return fmt.Errorf("source.http.countries_url: %w", err)
	}

	if h.SummaryURLTemplate == "" {
		return errors.New("source.http.summary_url_template is required")
	}
	expanded, err = expandEnvVars(h.SummaryURLTemplate)
	if err != nil {
		return fmt.Errorf("source.http.summary_url_template: %w", err)
	}
	h.SummaryURLTemplate = expanded

	// fail fast before the source tries to use an invalid template
	if _, err := template.New("").Parse(h.SummaryURLTemplate); err != nil {
		return fmt.Errorf("source.http.summary_url_template: invalid template: %w", err)
	}

	for k, v := range h.Headers {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("source.http.headers[%s]: %w", k, err)
		}
		h.Headers[k] = expanded
	}

	if h.Timeout != 0 && h.Timeout.Duration() < time.Second {
		return fmt.Errorf("source.http.timeout must be at least 1s if specified, got %s", h.Timeout.Duration())
	}
	return nil
}

func (d *DemoConfig) validate() error {
	seen := make(map[string]struct{}, len(d.Countries))
	for i, c := range d.Countries {
		code := summary.NormalizeCountry(c)
		if !countryPattern.MatchString(code) {
			return fmt.Errorf("source.demo.countries[%d]: must be a two-letter code, got %q", i, c)
		}
		if _, dup := seen[code]; dup {
			return fmt.Errorf("source.demo.countries[%d]: duplicate country %q", i, code)
		}
		seen[code] = struct{}{}
		d.Countries[i] = code
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	return nil
}
