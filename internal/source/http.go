package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"text/template"
	"time"

	"github.com/jpalmerr/scanboard/internal/summary"
)

const (
	maxResponseBodySize = 1 << 20 // 1MB
	defaultHTTPTimeout  = 10 * time.Second
)

var errBodyTooLarge = errors.New("response exceeds 1MB")

// HTTPConfig describes a JSON summary feed.
type HTTPConfig struct {
	// CountriesURL returns the list of available country codes.
	CountriesURL string

	// CountriesPath is the dot-separated path to the code array inside the
	// countries response. Empty means the response body is the array.
	CountriesPath string

	// SummaryURLTemplate is a text/template producing the per-country URL,
	// e.g. "https://scanner.example.com/api/{{.country}}/summary".
	// The code is path-escaped before interpolation.
	SummaryURLTemplate string

	// SummaryPath is the dot-separated path to the summary object inside the
	// summary response. Empty means the response body is the summary.
	SummaryPath string

	// Headers are sent with every request.
	Headers map[string]string

	// Timeout is the per-request timeout. Defaults to 10s.
	Timeout time.Duration
}

// HTTP reads summaries from a JSON feed.
type HTTP struct {
	cfg        HTTPConfig
	tmpl       *template.Template
	httpClient *http.Client
}

// NewHTTP validates cfg and creates an [HTTP] source.
func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	if cfg.CountriesURL == "" {
		return nil, errors.New("countries URL required")
	}
	if cfg.SummaryURLTemplate == "" {
		return nil, errors.New("summary URL template required")
	}

	// missingkey=error fails fast on template variables other than country
	tmpl, err := template.New("summary").Option("missingkey=error").Parse(cfg.SummaryURLTemplate)
	if err != nil {
		return nil, fmt.Errorf("invalid summary URL template: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}

	return &HTTP{
		cfg:  cfg,
		tmpl: tmpl,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}, nil
}

// Close releases idle connections.
func (h *HTTP) Close() error {
	if transport, ok := h.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
	return nil
}

// SummaryURL returns the summary URL for a country.
func (h *HTTP) SummaryURL(country string) (string, error) {
	var buf bytes.Buffer
	data := map[string]string{"country": url.PathEscape(summary.NormalizeCountry(country))}
	if err := h.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}
	return buf.String(), nil
}

// Countries implements summary.Source.
func (h *HTTP) Countries(ctx context.Context) ([]string, error) {
	body, status, err := h.fetch(ctx, h.cfg.CountriesURL)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("countries request returned HTTP %d", status)
	}

	raw, err := extractJSONPath(body, h.cfg.CountriesPath)
	if err != nil {
		return nil, err
	}

	var codes []string
	if err := json.Unmarshal(raw, &codes); err != nil {
		return nil, fmt.Errorf("failed to decode countries: %w", err)
	}
	for i, c := range codes {
		codes[i] = summary.NormalizeCountry(c)
	}
	return codes, nil
}

// Summary implements summary.Source.
func (h *HTTP) Summary(ctx context.Context, country string) (summary.Summary, error) {
	country = summary.NormalizeCountry(country)

	target, err := h.SummaryURL(country)
	if err != nil {
		return summary.Summary{}, err
	}

	body, status, err := h.fetch(ctx, target)
	if err != nil {
		return summary.Summary{}, err
	}
	switch {
	case status == http.StatusNotFound:
		return summary.Summary{}, fmt.Errorf("%w: %s", summary.ErrUnknownCountry, country)
	case status < 200 || status >= 300:
		return summary.Summary{}, fmt.Errorf("summary request returned HTTP %d", status)
	}

	raw, err := extractJSONPath(body, h.cfg.SummaryPath)
	if err != nil {
		return summary.Summary{}, err
	}

	var s summary.Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		return summary.Summary{}, fmt.Errorf("failed to decode summary: %w", err)
	}
	if s.Country == "" {
		s.Country = country
	}
	s.History = summary.WindowHistory(s.History, summary.HistoryWindow)
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now()
	}
	return s, nil
}

// fetch performs a GET with the configured timeout and headers. Bodies over
// 1MB are rejected.
func (h *HTTP) fetch(ctx context.Context, target string) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, h.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range h.cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize+1))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > maxResponseBodySize {
		return nil, resp.StatusCode, fmt.Errorf("%s: %w", target, errBodyTooLarge)
	}
	return body, resp.StatusCode, nil
}

// extractJSONPath walks body along a dot-separated path of object keys and
// returns the raw JSON found there.
func extractJSONPath(body []byte, path string) (json.RawMessage, error) {
	if path == "" {
		return body, nil
	}

	current := json.RawMessage(body)
	for _, part := range strings.Split(path, ".") {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(current, &obj); err != nil {
			return nil, fmt.Errorf("path %q: %q is not an object", path, part)
		}
		next, ok := obj[part]
		if !ok {
			return nil, fmt.Errorf("path %q: field %q not found", path, part)
		}
		current = next
	}
	return current, nil
}
