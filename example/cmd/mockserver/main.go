// Standalone mock summary feed for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/scanboard serve -c example/config.yaml
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jpalmerr/scanboard/internal/source"
	"github.com/jpalmerr/scanboard/internal/summary"
)

func main() {
	addr := flag.String("addr", ":9999", "listen address")
	seed := flag.Int64("seed", 1, "demo data seed")
	flag.Parse()

	fmt.Printf("Mock summary feed starting on %s\n", *addr)
	fmt.Println("Countries: GET /api/countries")
	fmt.Println("Summary:   GET /api/{country}/summary")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	demo := source.NewDemo(nil, *seed)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/countries", func(w http.ResponseWriter, r *http.Request) {
		codes, err := demo.Countries(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"countries": codes}})
	})
	mux.HandleFunc("GET /api/{country}/summary", func(w http.ResponseWriter, r *http.Request) {
		s, err := demo.Summary(r.Context(), r.PathValue("country"))
		if errors.Is(err, summary.ErrUnknownCountry) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"result": s})
	})

	if err := http.ListenAndServe(*addr, mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
