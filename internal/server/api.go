package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/jpalmerr/scanboard/internal/metrics"
	"github.com/jpalmerr/scanboard/internal/render"
	"github.com/jpalmerr/scanboard/internal/store"
)

type countriesResponse struct {
	Countries []string `json:"countries"`
	Default   string   `json:"default"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleCountries returns the known country codes.
func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	codes, ok := s.store.Countries()
	if !ok {
		s.writeError(w, http.StatusServiceUnavailable, "country list unavailable")
		return
	}
	if codes == nil {
		codes = []string{}
	}
	s.writeJSON(w, http.StatusOK, countriesResponse{Countries: codes, Default: s.opts.DefaultCountry})
}

// handleCountry returns the latest entry for a country.
func (s *Server) handleCountry(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.apiLookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

// handleCharts returns the chart configurations mounted for a country.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.apiLookup(w, r)
	if !ok {
		return
	}

	landing, err := s.buildLanding(entry)
	if err != nil {
		s.logger.Error("failed to build charts", "country", entry.Country, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to build charts")
		return
	}
	s.writeJSON(w, http.StatusOK, landing.Charts)
}

// handleChartPNG renders one chart of a country's landing page as PNG.
// Optional width and height query parameters set the image size.
func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	canvas, isPNG := strings.CutSuffix(file, ".png")
	if !isPNG || canvas == "" {
		s.writeError(w, http.StatusNotFound, "unknown chart image")
		return
	}

	width, err := imageSize(r, "width", render.DefaultWidth)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	height, err := imageSize(r, "height", render.DefaultHeight)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, ok := s.apiLookup(w, r)
	if !ok {
		return
	}

	landing, err := s.buildLanding(entry)
	if err != nil {
		s.logger.Error("failed to build charts", "country", entry.Country, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to build charts")
		return
	}

	c, ok := landing.Chart(canvas)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown canvas "+canvas)
		return
	}

	var buf bytes.Buffer
	err = render.PNG(&buf, c.Config, width, height)
	s.metrics.IncRender(metrics.Outcome(err))
	if err != nil {
		if errors.Is(err, render.ErrNoData) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error("failed to render chart", "country", entry.Country, "canvas", canvas, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Error("failed to write chart response", "error", err)
	}
}

// apiLookup resolves the {country} path value and writes the error response
// when it cannot be served.
func (s *Server) apiLookup(w http.ResponseWriter, r *http.Request) (store.Entry, bool) {
	code := s.requestedCountry(r)

	entry, res := s.lookup(code)
	switch res {
	case lookupNoCountries:
		s.writeError(w, http.StatusServiceUnavailable, "country list unavailable")
		return store.Entry{}, false
	case lookupUnknown:
		s.writeError(w, http.StatusNotFound, "unknown country "+code)
		return store.Entry{}, false
	case lookupPending:
		s.writeError(w, http.StatusServiceUnavailable, "no data for "+code+" yet")
		return store.Entry{}, false
	}
	return entry, true
}

func imageSize(r *http.Request, param string, def int) (int, error) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < minImageSize || n > maxImageSize {
		return 0, errors.New(param + " must be between " + strconv.Itoa(minImageSize) + " and " + strconv.Itoa(maxImageSize))
	}
	return n, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}
