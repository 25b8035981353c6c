package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/scanboard"
	"github.com/jpalmerr/scanboard/internal/source"
)

func main() {
	// start mock feed (see mock_server.go)
	go StartMockFeedServer(":9999")
	time.Sleep(100 * time.Millisecond)

	feed, err := source.NewHTTP(source.HTTPConfig{
		CountriesURL:       "http://localhost:9999/api/countries",
		CountriesPath:      "data.countries",
		SummaryURLTemplate: "http://localhost:9999/api/{{.country}}/summary",
		SummaryPath:        "result",
		Timeout:            5 * time.Second,
	})
	if err != nil {
		slog.Error("failed to create feed source", "error", err)
		os.Exit(1)
	}
	defer func() { _ = feed.Close() }()

	sb, err := scanboard.New(
		scanboard.WithSource(feed),
		scanboard.WithRefreshInterval(30*time.Second),
		scanboard.WithPort(8080),
		scanboard.WithTitle("Scanboard Demo"),
		scanboard.WithRefreshCallback(func(r scanboard.RefreshResult) {
			if r.Err != nil {
				slog.Warn("refresh failed", "country", r.Country, "error", r.Err)
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create scanboard", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Scanboard Demo                                      ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Feed: mock JSON feed on :9999 (DK FI IS NO SE)      ║")
	fmt.Println("  ║   Refresh: every 30s                                  ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sb.Start(ctx); err != nil {
		slog.Error("scanboard error", "error", err)
		os.Exit(1)
	}
}
