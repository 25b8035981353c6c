package source

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"time"

	"github.com/jpalmerr/scanboard/internal/summary"
)

// DefaultDemoCountries is used when a demo source is created without
// countries.
var DefaultDemoCountries = []string{"DK", "FI", "IS", "NO", "SE"}

// demoDays is the length of the generated history.
const demoDays = 13

var demoCatalog = map[summary.Category][]string{
	summary.CategoryPorts:    {"21", "22", "25", "53", "80", "443", "3306", "3389", "5432", "8080"},
	summary.CategoryServices: {"ftp", "ssh", "smtp", "domain", "http", "https", "mysql", "ms-wbt-server", "postgresql"},
	summary.CategoryVersions: {"OpenSSH 8.9p1", "nginx 1.24.0", "Apache httpd 2.4.57", "Postfix smtpd", "MySQL 8.0.36", "PostgreSQL 15"},
	summary.CategoryOS:       {"Linux", "Windows", "FreeBSD", "Cisco IOS", "RouterOS"},
	summary.CategoryProducts: {"OpenSSH", "nginx", "Apache httpd", "Microsoft IIS", "lighttpd", "Dropbear sshd"},
	summary.CategoryCPE: {
		"cpe:/a:openbsd:openssh", "cpe:/a:igor_sysoev:nginx", "cpe:/a:apache:http_server",
		"cpe:/o:linux:linux_kernel", "cpe:/o:microsoft:windows",
	},
}

// Demo generates stable random summaries. It needs no backing store and
// is used for local runs and tests.
type Demo struct {
	countries []string
	seed      int64
	now       func() time.Time
}

// NewDemo creates a demo source. The same seed and country always yield
// the same summary on a given day.
func NewDemo(countries []string, seed int64) *Demo {
	if len(countries) == 0 {
		countries = DefaultDemoCountries
	}
	codes := make([]string, len(countries))
	for i, c := range countries {
		codes[i] = summary.NormalizeCountry(c)
	}
	sort.Strings(codes)
	return &Demo{countries: codes, seed: seed, now: time.Now}
}

// Countries implements summary.Source.
func (d *Demo) Countries(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]string(nil), d.countries...), nil
}

// Summary implements summary.Source.
func (d *Demo) Summary(ctx context.Context, country string) (summary.Summary, error) {
	if err := ctx.Err(); err != nil {
		return summary.Summary{}, err
	}
	country = summary.NormalizeCountry(country)
	if !summary.Verify(d.countries, country) {
		return summary.Summary{}, fmt.Errorf("%w: %s", summary.ErrUnknownCountry, country)
	}

	rng := rand.New(rand.NewSource(d.seed + countrySeed(country)))
	now := d.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	history := make([]summary.Sample, demoDays)
	for i := range history {
		scanned := 1000 + rng.Int63n(4000)
		history[i] = summary.Sample{
			Date:       today.AddDate(0, 0, i-demoDays+1),
			PortsOpen:  rng.Int63n(26),
			IPsScanned: scanned,
			IPsActive:  rng.Int63n(scanned / 2),
		}
	}
	latest := history[len(history)-1]

	identified := make(map[summary.Category]int64, len(summary.Categories))
	breakdown := make(map[summary.Category]map[string]int64, len(summary.Categories))
	for _, cat := range summary.Categories {
		counts := make(map[string]int64)
		for _, item := range demoCatalog[cat] {
			if n := rng.Int63n(200); n > 0 {
				counts[item] = n
			}
		}
		breakdown[cat] = counts
		identified[cat] = int64(len(counts))
	}

	return summary.Summary{
		Country:      country,
		IPsScanned:   latest.IPsScanned,
		IPsActive:    latest.IPsActive,
		PortsScanned: latest.IPsActive * 1000,
		PortsOpen:    latest.PortsOpen,
		Identified:   identified,
		Breakdown:    breakdown,
		History:      summary.WindowHistory(history, summary.HistoryWindow),
		UpdatedAt:    now,
	}, nil
}

func countrySeed(country string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(country))
	return int64(h.Sum64() >> 1)
}
