// Package view assembles the landing page model for one country: headline
// blocks, identified breakdowns, and the three charts bound to their
// canvases.
package view

import (
	"fmt"
	"time"

	"github.com/jpalmerr/scanboard/chart"
	"github.com/jpalmerr/scanboard/internal/summary"
)

// Canvas identifiers on the landing page.
const (
	CanvasOpenPorts  = "line-graph_total-open-ports"
	CanvasHosts      = "line-graph_hosts"
	CanvasHostStatus = "doughnut_host-status"
)

// Canvases lists the landing page canvases in page order.
var Canvases = []string{CanvasOpenPorts, CanvasHosts, CanvasHostStatus}

// Block is a headline number.
type Block struct {
	Title string `json:"title"`
	Value int64  `json:"value"`
}

// MultiBlock is one "identified" category. Items holds the top entries when
// the source provides a breakdown; otherwise only Total is known.
type MultiBlock struct {
	Title    string           `json:"title"`
	Category summary.Category `json:"category"`
	Total    int64            `json:"total"`
	Items    []summary.Count  `json:"items"`
}

// Landing is the landing page model.
type Landing struct {
	Country     string         `json:"country"`
	Blocks      []Block        `json:"blocks"`
	MultiBlocks []MultiBlock   `json:"multi_blocks"`
	Charts      []*chart.Chart `json:"charts"`
	UpdatedAt   time.Time      `json:"updated_at"`

	page *chart.Page
}

// Page returns the document the charts are mounted on.
func (l *Landing) Page() *chart.Page {
	return l.page
}

// Chart returns the chart mounted on a canvas.
func (l *Landing) Chart(canvasID string) (*chart.Chart, bool) {
	return l.page.Chart(canvasID)
}

// Build creates the landing page for s. Chart colors are resolved from theme
// when Build is called; opts configure the chart builder.
func Build(s summary.Summary, theme chart.ThemeProvider, opts ...chart.Option) (*Landing, error) {
	page := chart.NewPage(Canvases...)
	b := chart.NewBuilder(theme, page, opts...)

	history := summary.WindowHistory(s.History, summary.HistoryWindow)
	labels := summary.Labels(history)

	openPorts := make([]float64, len(history))
	scanned := make([]float64, len(history))
	active := make([]float64, len(history))
	for i, sample := range history {
		openPorts[i] = float64(sample.PortsOpen)
		scanned[i] = float64(sample.IPsScanned)
		active[i] = float64(sample.IPsActive)
	}

	if _, err := b.SingleSeries(chart.SingleSeries{
		Labels:      labels,
		Values:      openPorts,
		CanvasID:    CanvasOpenPorts,
		SeriesTitle: "Open Ports",
		ChartTitle:  "Total Open Ports",
	}); err != nil {
		return nil, fmt.Errorf("open ports chart: %w", err)
	}

	if _, err := b.DualSeries(chart.DualSeries{
		Labels:     labels,
		ValuesA:    scanned,
		ValuesB:    active,
		CanvasID:   CanvasHosts,
		LabelA:     "IPs Scanned",
		LabelB:     "Active IPs",
		ChartTitle: "Hosts",
	}); err != nil {
		return nil, fmt.Errorf("hosts chart: %w", err)
	}

	if _, err := b.DualSliceDoughnut(chart.DualSlice{
		ValueA:     float64(s.IPsActive),
		ValueB:     float64(s.IPsInactive()),
		CanvasID:   CanvasHostStatus,
		LabelA:     "Active",
		LabelB:     "Inactive",
		ChartTitle: "Host Status",
	}); err != nil {
		return nil, fmt.Errorf("host status chart: %w", err)
	}

	return &Landing{
		Country:     summary.NormalizeCountry(s.Country),
		Blocks:      blocks(s),
		MultiBlocks: multiBlocks(s),
		Charts:      page.Charts(),
		UpdatedAt:   s.UpdatedAt,
		page:        page,
	}, nil
}

func blocks(s summary.Summary) []Block {
	return []Block{
		{Title: "Total IPs Scanned", Value: s.IPsScanned},
		{Title: "Total Active IPs", Value: s.IPsActive},
		{Title: "Ports Scanned", Value: s.PortsScanned},
		{Title: "Total Open Ports", Value: s.PortsOpen},
	}
}

func multiBlocks(s summary.Summary) []MultiBlock {
	out := make([]MultiBlock, 0, len(summary.Categories))
	for _, cat := range summary.Categories {
		total := s.Identified[cat]
		breakdown := s.Breakdown[cat]
		if total == 0 {
			total = int64(len(breakdown))
		}
		out = append(out, MultiBlock{
			Title:    cat.Title(),
			Category: cat,
			Total:    total,
			Items:    summary.Top(breakdown, summary.DefaultTop),
		})
	}
	return out
}
