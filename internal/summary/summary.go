// Package summary defines the scan summary model and the rules applied to it
// before display: country code validation, history windowing, and top-N
// trimming of the "identified" breakdowns.
package summary

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

const (
	// DefaultTop is the number of breakdown entries shown per category.
	DefaultTop = 5

	// HistoryWindow is the number of most recent scans kept for charts.
	HistoryWindow = 10

	// DateLayout formats chart labels (dd-mm-yyyy).
	DateLayout = "02-01-2006"
)

// ErrUnknownCountry is returned when a country code is not present in the
// source's country list.
var ErrUnknownCountry = errors.New("unknown country code")

// Category is a kind of identified item.
type Category string

const (
	CategoryPorts    Category = "ports"
	CategoryServices Category = "services"
	CategoryVersions Category = "versions"
	CategoryOS       Category = "os"
	CategoryProducts Category = "products"
	CategoryCPE      Category = "cpe"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryPorts,
	CategoryServices,
	CategoryVersions,
	CategoryOS,
	CategoryProducts,
	CategoryCPE,
}

// Title returns the display title of the category.
func (c Category) Title() string {
	switch c {
	case CategoryPorts:
		return "Ports Identified"
	case CategoryServices:
		return "Services Identified"
	case CategoryVersions:
		return "Versions Identified"
	case CategoryOS:
		return "OS Identified"
	case CategoryProducts:
		return "Products Identified"
	case CategoryCPE:
		return "CPE Identified"
	default:
		return string(c)
	}
}

// Sample is one scan in the summary history.
type Sample struct {
	Date       time.Time `json:"date"`
	PortsOpen  int64     `json:"ports_open"`
	IPsScanned int64     `json:"ips_scanned"`
	IPsActive  int64     `json:"ips_active"`
}

// Summary is the latest scan summary for one country.
type Summary struct {
	Country      string `json:"country"`
	IPsScanned   int64  `json:"ips_scanned"`
	IPsActive    int64  `json:"ips_active"`
	PortsScanned int64  `json:"ports_scanned"`
	PortsOpen    int64  `json:"ports_open"`

	// Identified holds the number of distinct items found per category.
	Identified map[Category]int64 `json:"identified"`

	// Breakdown holds per-item occurrence counts per category. Sources that
	// only know the totals leave it empty.
	Breakdown map[Category]map[string]int64 `json:"breakdown,omitempty"`

	// History holds recent scans in ascending date order.
	History []Sample `json:"history"`

	UpdatedAt time.Time `json:"updated_at"`
}

// IPsInactive returns the number of scanned IPs that did not respond.
func (s Summary) IPsInactive() int64 {
	if s.IPsActive >= s.IPsScanned {
		return 0
	}
	return s.IPsScanned - s.IPsActive
}

// Source provides scan summaries.
type Source interface {
	// Countries returns the country codes the source has data for.
	Countries(ctx context.Context) ([]string, error)

	// Summary returns the latest summary for the given country.
	Summary(ctx context.Context, country string) (Summary, error)
}

// NormalizeCountry trims and upper-cases a country code.
func NormalizeCountry(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Verify reports whether code, case-insensitively, is one of codes.
func Verify(codes []string, code string) bool {
	code = NormalizeCountry(code)
	if code == "" {
		return false
	}
	for _, c := range codes {
		if NormalizeCountry(c) == code {
			return true
		}
	}
	return false
}

// Count is one entry of a breakdown.
type Count struct {
	Key   string `json:"key"`
	Value int64  `json:"value"`
}

// Top sorts counts by value, highest first, and keeps at most n entries.
// Ties are ordered by key. n <= 0 keeps everything.
func Top(counts map[string]int64, n int) []Count {
	if len(counts) == 0 {
		return []Count{}
	}

	out := make([]Count, 0, len(counts))
	for k, v := range counts {
		out = append(out, Count{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Key < out[j].Key
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// WindowHistory returns the last n samples of history sorted by date
// ascending. The input is not modified.
func WindowHistory(history []Sample, n int) []Sample {
	sorted := append([]Sample(nil), history...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}
	return sorted
}

// Labels formats the sample dates as chart labels.
func Labels(history []Sample) []string {
	labels := make([]string, len(history))
	for i, s := range history {
		labels[i] = s.Date.Format(DateLayout)
	}
	return labels
}
