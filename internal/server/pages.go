package server

import (
	"bytes"
	"net/http"
	"time"

	"github.com/jpalmerr/scanboard/internal/view"
)

// pageData is the template context shared by all pages.
type pageData struct {
	Title          string
	Country        string
	Countries      []string
	DefaultCountry string
	Landing        *view.Landing
	Error          string
	UpdatedAt      string
	Requested      string
}

func (s *Server) page(country string) pageData {
	codes, _ := s.store.Countries()
	return pageData{
		Title:          s.opts.Title,
		Country:        country,
		Countries:      codes,
		DefaultCountry: s.opts.DefaultCountry,
	}
}

// handleLanding serves the landing page for the requested country, or the
// default country at "/".
func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	code := s.requestedCountry(r)

	entry, res := s.lookup(code)
	switch res {
	case lookupNoCountries, lookupPending:
		// data is missing, not the page
		s.renderPage(w, http.StatusOK, "not_found.html", s.page(""))
		return
	case lookupUnknown:
		s.renderNotFound(w, code)
		return
	}

	landing, err := s.buildLanding(entry)
	if err != nil {
		s.logger.Error("failed to build landing page", "country", code, "error", err)
		http.Error(w, "Failed to build page", http.StatusInternalServerError)
		return
	}

	data := s.page(code)
	data.Landing = landing
	if entry.Error != nil {
		data.Error = *entry.Error
	}
	if !entry.RefreshedAt.IsZero() {
		data.UpdatedAt = entry.RefreshedAt.UTC().Format(time.RFC1123)
	}

	s.renderPage(w, http.StatusOK, "landing.html", data)
}

func (s *Server) renderNotFound(w http.ResponseWriter, requested string) {
	data := s.page("")
	data.Requested = requested
	s.renderPage(w, http.StatusNotFound, "404.html", data)
}

// renderPage executes a template into a buffer so a failure never leaves a
// half-written page.
func (s *Server) renderPage(w http.ResponseWriter, status int, name string, data pageData) {
	if s.templates == nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("failed to render page", "template", name, "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Error("failed to write page response", "error", err)
	}
}
