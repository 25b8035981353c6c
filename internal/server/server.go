package server

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jpalmerr/scanboard/chart"
	"github.com/jpalmerr/scanboard/internal/metrics"
	"github.com/jpalmerr/scanboard/internal/store"
	"github.com/jpalmerr/scanboard/internal/summary"
	"github.com/jpalmerr/scanboard/internal/view"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write operation.
	// Must be <= shutdown timeout to ensure clean shutdown.
	sseWriteTimeout = 5 * time.Second

	// shutdownTimeout bounds graceful shutdown after the context is cancelled.
	shutdownTimeout = 5 * time.Second

	defaultTitle   = "Scanboard"
	defaultCountry = "IS"

	// PNG size limits for /charts requests.
	minImageSize = 100
	maxImageSize = 4096
)

// Options configures a [Server].
type Options struct {
	// Title is the dashboard heading. Defaults to "Scanboard".
	Title string

	// DefaultCountry is shown at "/". Defaults to "IS".
	DefaultCountry string

	// Theme resolves chart colors. nil leaves theme colors empty.
	Theme chart.ThemeProvider

	// Settings are the chart font sizes and title color.
	Settings chart.Settings

	// Metrics records chart and render activity. nil discards.
	Metrics metrics.Recorder

	// MetricsHandler is served at /metrics when set.
	MetricsHandler http.Handler
}

// Server handles HTTP requests for the dashboard, the JSON API, and chart
// images.
//
// Routes:
//   - GET /, GET /{country}: landing page
//   - GET /api/countries: known country codes
//   - GET /api/countries/{country}: latest entry
//   - GET /api/countries/{country}/charts: mounted charts
//   - GET /charts/{country}/{canvas}.png: server-side chart image
//   - GET /api/sse: Server-Sent Events stream of store updates
//   - GET /static/: embedded stylesheet and scripts
//   - GET /metrics: Prometheus metrics
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	store      store.Store
	port       int
	httpServer *http.Server
	assets     fs.FS
	templates  *template.Template
	opts       Options
	metrics    metrics.Recorder
	logger     *slog.Logger
}

// NewServer creates a new HTTP [Server].
//
// assets must contain templates under assets/templates and static files
// under assets/static; it may be nil, in which case only the API, chart, and
// metrics routes work. The server is not started until [Server.Start] is
// called.
func NewServer(st store.Store, port int, assets fs.FS, opts Options, logger *slog.Logger) (*Server, error) {
	if opts.Title == "" {
		opts.Title = defaultTitle
	}
	opts.DefaultCountry = summary.NormalizeCountry(opts.DefaultCountry)
	if opts.DefaultCountry == "" {
		opts.DefaultCountry = defaultCountry
	}

	s := &Server{
		store:   st,
		port:    port,
		assets:  assets,
		opts:    opts,
		metrics: opts.Metrics,
		logger:  logger,
	}
	if s.metrics == nil {
		s.metrics = metrics.Noop{}
	}

	if assets != nil {
		tmpl, err := template.ParseFS(assets, "assets/templates/*.html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse templates: %w", err)
		}
		s.templates = tmpl
	}

	return s, nil
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/countries", s.handleCountries)
	mux.HandleFunc("GET /api/countries/{country}", s.handleCountry)
	mux.HandleFunc("GET /api/countries/{country}/charts", s.handleCharts)
	mux.HandleFunc("GET /api/sse", s.handleSSE)
	mux.HandleFunc("GET /charts/{country}/{file}", s.handleChartPNG)

	if s.opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", s.opts.MetricsHandler)
	}

	if s.assets != nil {
		if static, err := fs.Sub(s.assets, "assets/static"); err == nil {
			mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
		}
	}

	mux.HandleFunc("GET /{$}", s.handleLanding)
	mux.HandleFunc("GET /{country}", s.handleLanding)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.renderNotFound(w, strings.Trim(r.URL.Path, "/"))
	})

	return mux
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns after confirming the server is
// listening. When ctx is cancelled the server shuts down gracefully with a
// 5-second timeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts derive from ctx so SSE handlers exit on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// lookup resolves a requested country against the store.
type lookup int

const (
	lookupOK lookup = iota
	lookupNoCountries
	lookupUnknown
	lookupPending
)

func (s *Server) lookup(code string) (store.Entry, lookup) {
	codes, ok := s.store.Countries()
	if !ok {
		return store.Entry{}, lookupNoCountries
	}
	if !summary.Verify(codes, code) {
		return store.Entry{}, lookupUnknown
	}
	entry, ok := s.store.Get(code)
	if !ok {
		return store.Entry{}, lookupPending
	}
	return entry, lookupOK
}

func (s *Server) buildLanding(entry store.Entry) (*view.Landing, error) {
	return view.Build(entry.Summary, s.opts.Theme,
		chart.WithSettings(s.opts.Settings),
		chart.WithObserver(s.metrics.IncChartBuilt),
	)
}

func (s *Server) requestedCountry(r *http.Request) string {
	code := r.PathValue("country")
	if code == "" {
		return s.opts.DefaultCountry
	}
	return summary.NormalizeCountry(code)
}
