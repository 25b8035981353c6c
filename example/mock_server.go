package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/jpalmerr/scanboard/internal/source"
	"github.com/jpalmerr/scanboard/internal/summary"
)

// StartMockFeedServer runs a JSON summary feed backed by the demo generator.
//
//	GET /api/countries            {"data": {"countries": ["DK", ...]}}
//	GET /api/{country}/summary    {"result": {...summary...}}
//
// Call this in a goroutine before creating the HTTP source.
func StartMockFeedServer(addr string) {
	demo := source.NewDemo(nil, time.Now().Unix())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/countries", func(w http.ResponseWriter, r *http.Request) {
		codes, err := demo.Countries(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeFeed(w, map[string]any{"data": map[string]any{"countries": codes}})
	})
	mux.HandleFunc("GET /api/{country}/summary", func(w http.ResponseWriter, r *http.Request) {
		// simulate small latency variance
		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		s, err := demo.Summary(r.Context(), r.PathValue("country"))
		if errors.Is(err, summary.ErrUnknownCountry) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeFeed(w, map[string]any{"result": s})
	})

	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("mock feed error", "error", err)
	}
}

func writeFeed(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
