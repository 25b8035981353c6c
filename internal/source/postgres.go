package source

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/jpalmerr/scanboard/internal/summary"
)

const (
	defaultPostgresPort   = 5432
	defaultConnectTimeout = 5 * time.Second
	defaultSummaryTable   = "summary"
)

// PostgresConfig describes the connection to the scan summary database.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string

	// SSLMode is passed through to lib/pq ("disable", "require", ...).
	// Empty leaves the driver default.
	SSLMode string

	// ConnectTimeout defaults to 5s.
	ConnectTimeout time.Duration

	// Table is the summary table name. Defaults to "summary".
	Table string
}

// DSN returns the key/value connection string for lib/pq.
func (c PostgresConfig) DSN() string {
	port := c.Port
	if port == 0 {
		port = defaultPostgresPort
	}
	timeout := c.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	parts := []string{
		"host=" + dsnValue(c.Host),
		"port=" + strconv.Itoa(port),
		"dbname=" + dsnValue(c.Database),
		"user=" + dsnValue(c.User),
		"password=" + dsnValue(c.Password),
		"connect_timeout=" + strconv.Itoa(int(timeout.Seconds())),
	}
	if c.SSLMode != "" {
		parts = append(parts, "sslmode="+dsnValue(c.SSLMode))
	}
	return strings.Join(parts, " ")
}

// dsnValue quotes a value for the key/value DSN format.
func dsnValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// countColumns lists the category columns in query order.
var countColumns = [6]summary.Category{
	summary.CategoryPorts,
	summary.CategoryServices,
	summary.CategoryVersions,
	summary.CategoryOS,
	summary.CategoryProducts,
	summary.CategoryCPE,
}

// decodeCount reads a category column. The scanner stores a JSON object of
// item counts; older tables hold only the total as an integer. NULL is zero.
func decodeCount(raw []byte) (int64, map[string]int64, error) {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")):
		return 0, nil, nil
	case raw[0] == '{':
		var items map[string]int64
		if err := json.Unmarshal(raw, &items); err != nil {
			return 0, nil, fmt.Errorf("invalid count object: %w", err)
		}
		return int64(len(items)), items, nil
	default:
		n, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, nil, fmt.Errorf("invalid count %q: %w", raw, err)
		}
		return n, nil, nil
	}
}

// Postgres reads scan summaries from the summary table written by the scanner.
type Postgres struct {
	db    *sql.DB
	table string
}

// OpenPostgres opens a connection pool and verifies it with a ping.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*Postgres, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	return NewPostgres(db, cfg.Table), nil
}

// NewPostgres wraps an existing database handle. An empty table name uses
// "summary".
func NewPostgres(db *sql.DB, table string) *Postgres {
	if table == "" {
		table = defaultSummaryTable
	}
	return &Postgres{db: db, table: pq.QuoteIdentifier(table)}
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// Countries implements summary.Source.
func (p *Postgres) Countries(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT country FROM ` + p.table + ` ORDER BY country`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("country query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var countries []string
	for rows.Next() {
		var code sql.NullString
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("country scan failed: %w", err)
		}
		if code.Valid && code.String != "" {
			countries = append(countries, summary.NormalizeCountry(code.String))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("country query failed: %w", err)
	}
	sort.Strings(countries)
	return countries, nil
}

// Summary implements summary.Source.
func (p *Postgres) Summary(ctx context.Context, country string) (summary.Summary, error) {
	country = summary.NormalizeCountry(country)

	query := `
		SELECT
			total_ips_scanned,
			total_ips_active,
			total_ports_scanned,
			total_ports_open,
			open_ports_count,
			services_count,
			versions_count,
			os_count,
			products_count,
			cpe_count
		FROM ` + p.table + `
		WHERE country = $1
		ORDER BY port_scan_done_ts DESC NULLS LAST
		LIMIT 1`

	var (
		ipsScanned, ipsActive, portsScanned, portsOpen sql.NullInt64
		counts                                         [6][]byte
	)
	err := p.db.QueryRowContext(ctx, query, country).Scan(
		&ipsScanned, &ipsActive, &portsScanned, &portsOpen,
		&counts[0], &counts[1], &counts[2], &counts[3], &counts[4], &counts[5],
	)
	if errors.Is(err, sql.ErrNoRows) {
		return summary.Summary{}, fmt.Errorf("%w: %s", summary.ErrUnknownCountry, country)
	}
	if err != nil {
		return summary.Summary{}, fmt.Errorf("summary query failed: %w", err)
	}

	identified := make(map[summary.Category]int64, len(countColumns))
	breakdown := make(map[summary.Category]map[string]int64)
	for i, cat := range countColumns {
		total, items, err := decodeCount(counts[i])
		if err != nil {
			return summary.Summary{}, fmt.Errorf("column %s: %w", cat, err)
		}
		identified[cat] = total
		if items != nil {
			breakdown[cat] = items
		}
	}

	history, err := p.history(ctx, country)
	if err != nil {
		return summary.Summary{}, err
	}

	return summary.Summary{
		Country:      country,
		IPsScanned:   ipsScanned.Int64,
		IPsActive:    ipsActive.Int64,
		PortsScanned: portsScanned.Int64,
		PortsOpen:    portsOpen.Int64,
		Identified:   identified,
		Breakdown:    breakdown,
		History:      history,
		UpdatedAt:    time.Now(),
	}, nil
}

// history returns the most recent completed port scans, oldest first.
func (p *Postgres) history(ctx context.Context, country string) ([]summary.Sample, error) {
	query := `
		SELECT done_date, open_ports, ips_scanned, ips_active
		FROM (
			SELECT
				port_scan_done_ts::date AS done_date,
				total_ports_open AS open_ports,
				COALESCE(total_ips_scanned, 0) AS ips_scanned,
				COALESCE(total_ips_active, 0) AS ips_active,
				port_scan_done_ts
			FROM ` + p.table + `
			WHERE
				total_ports_open IS NOT NULL AND
				port_scan_done_ts IS NOT NULL AND
				country = $1
			ORDER BY port_scan_done_ts DESC
			LIMIT $2
		) AS recent
		ORDER BY done_date ASC`

	rows, err := p.db.QueryContext(ctx, query, country, summary.HistoryWindow)
	if err != nil {
		return nil, fmt.Errorf("history query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var history []summary.Sample
	for rows.Next() {
		var s summary.Sample
		if err := rows.Scan(&s.Date, &s.PortsOpen, &s.IPsScanned, &s.IPsActive); err != nil {
			return nil, fmt.Errorf("history scan failed: %w", err)
		}
		history = append(history, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history query failed: %w", err)
	}
	return history, nil
}
