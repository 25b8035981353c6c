// Package scanboard provides an embeddable dashboard for internet scan
// summaries.
//
// For each country the dashboard shows headline counts (IPs scanned, active
// hosts, ports scanned, open ports), the top identified ports, services,
// versions, operating systems, products and CPEs, and three charts built
// with the [chart] package: open ports over time, scanned versus active IPs
// over time, and active versus inactive hosts.
//
// # Quick Start
//
//	src := source.NewDemo(nil, 1)
//	sb, _ := scanboard.New(scanboard.WithSource(src))
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	sb.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// Scanboard uses the functional options pattern for configuration:
//
//	sb, err := scanboard.New(
//	    scanboard.WithSource(src),
//	    scanboard.WithRefreshInterval(10 * time.Minute),
//	    scanboard.WithPort(9090),
//	    scanboard.WithDefaultCountry("no"),
//	    scanboard.WithChartSettings(chart.Settings{FontSize: 14}),
//	)
//
// # Sources
//
// A [Source] lists the available countries and returns each country's
// latest [Summary]. The internal/source package provides a Postgres source
// reading the scanner's summary table, an HTTP source reading a JSON feed
// and a seeded demo source; the cmd/scanboard binary picks one from its
// YAML configuration.
//
// # Architecture
//
//   - internal/poller: refresh scheduler with a bounded worker pool
//   - internal/store: in-memory storage with pub/sub for real-time updates
//   - internal/view: page model and chart mounting per country
//   - internal/render: server-side PNG rendering with go-chart
//   - internal/server: HTTP server with pages, REST API, PNG charts, SSE and /metrics
//   - internal/metrics: Prometheus instrumentation
//   - dashboard: embedded templates, stylesheet and Chart.js glue
//
// The internal packages are not part of the public API and may change
// without notice.
package scanboard
