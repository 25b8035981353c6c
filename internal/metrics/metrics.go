// Package metrics records refresh, chart, and render activity.
//
// Components depend on the [Recorder] interface. [NewPrometheusRecorder]
// backs it with Prometheus collectors; [Noop] discards everything.
package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scanboard"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Recorder receives dashboard events.
type Recorder interface {
	// ObserveRefresh records one source call. kind is "countries" or
	// "summary".
	ObserveRefresh(kind, outcome string, d time.Duration)

	// IncChartBuilt counts a chart configuration mounted on a page.
	IncChartBuilt(chartType string)

	// IncRender counts a PNG render.
	IncRender(outcome string)
}

// Outcome maps an error to an outcome label value.
func Outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}

// Noop is a Recorder that does nothing.
type Noop struct{}

func (Noop) ObserveRefresh(string, string, time.Duration) {}
func (Noop) IncChartBuilt(string)                         {}
func (Noop) IncRender(string)                             {}

// PrometheusRecorder implements [Recorder] with Prometheus collectors.
type PrometheusRecorder struct {
	refreshes       *prom.CounterVec
	refreshDuration *prom.HistogramVec
	chartsBuilt     *prom.CounterVec
	renders         *prom.CounterVec
}

// NewPrometheusRecorder creates the collectors and registers them on reg.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		refreshes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Source calls by kind and outcome.",
		}, []string{"kind", "outcome"}),
		refreshDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of source calls.",
			Buckets:   prom.DefBuckets,
		}, []string{"kind"}),
		chartsBuilt: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "charts_built_total",
			Help:      "Chart configurations mounted, by chart type.",
		}, []string{"type"}),
		renders: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "png_renders_total",
			Help:      "Server-side PNG renders by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(r.refreshes, r.refreshDuration, r.chartsBuilt, r.renders)
	return r
}

func (r *PrometheusRecorder) ObserveRefresh(kind, outcome string, d time.Duration) {
	r.refreshes.WithLabelValues(kind, outcome).Inc()
	r.refreshDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (r *PrometheusRecorder) IncChartBuilt(chartType string) {
	r.chartsBuilt.WithLabelValues(chartType).Inc()
}

func (r *PrometheusRecorder) IncRender(outcome string) {
	r.renders.WithLabelValues(outcome).Inc()
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prom.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
