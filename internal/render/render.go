// Package render draws chart configurations to PNG with go-chart.
//
// The output approximates what Chart.js draws in the browser: the same
// title, labels, series, and theme colors. It is meant for embedding in
// reports and chat messages, not pixel parity.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/jpalmerr/scanboard/chart"
	"github.com/jpalmerr/scanboard/theme"
)

// Default image size in pixels.
const (
	DefaultWidth  = 1024
	DefaultHeight = 512
)

// Chart.js sizes are CSS pixels; go-chart sizes are points at 92 DPI.
const fontScale = 0.5

var (
	// ErrUnsupportedType is returned for chart types other than line and
	// doughnut.
	ErrUnsupportedType = errors.New("unsupported chart type")

	// ErrNoData is returned when there is nothing to plot.
	ErrNoData = errors.New("chart has no data")
)

// PNG renders cfg as a PNG image to w. Non-positive sizes use the
// defaults.
func PNG(w io.Writer, cfg chart.Config, width, height int) error {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	switch cfg.Type {
	case chart.TypeLine:
		return line(w, cfg, width, height)
	case chart.TypeDoughnut:
		return doughnut(w, cfg, width, height)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedType, cfg.Type)
	}
}

func line(w io.Writer, cfg chart.Config, width, height int) error {
	labels := cfg.Data.Labels
	n := len(labels)
	if n == 0 || len(cfg.Data.Datasets) == 0 {
		return ErrNoData
	}

	xs := make([]float64, n)
	ticks := make([]gochart.Tick, n)
	for i, label := range labels {
		xs[i] = float64(i)
		ticks[i] = gochart.Tick{Value: float64(i), Label: label}
	}

	lo, hi := 0.0, 0.0
	series := make([]gochart.Series, 0, len(cfg.Data.Datasets))
	for i, ds := range cfg.Data.Datasets {
		if len(ds.Data) != n {
			return fmt.Errorf("dataset %q has %d values for %d labels", ds.Label, len(ds.Data), n)
		}
		for _, v := range ds.Data {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		col := parseColor(ds.BorderColor, gochart.GetDefaultColor(i))
		series = append(series, gochart.ContinuousSeries{
			Name:    ds.Label,
			XValues: xs,
			YValues: ds.Data,
			Style: gochart.Style{
				StrokeColor: col,
				StrokeWidth: 3,
				DotColor:    col,
				DotWidth:    4,
			},
		})
	}
	if hi == lo {
		hi = lo + 1
	}

	opts := cfg.Options
	axisStyle := gochart.Style{
		FontSize:  fontSize(opts.Font.Size),
		FontColor: parseColor(opts.Scales["x"].Ticks.Color, drawing.ColorBlack),
	}
	yAxisStyle := axisStyle
	yAxisStyle.FontColor = parseColor(opts.Scales["y"].Ticks.Color, drawing.ColorBlack)

	ch := gochart.Chart{
		Title:      opts.Plugins.Title.Text,
		TitleStyle: titleStyle(opts),
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 60, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Range: &gochart.ContinuousRange{Min: -0.5, Max: float64(n) - 0.5},
			Ticks: ticks,
			Style: axisStyle,
		},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
			Style: yAxisStyle,
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch, legendStyle(opts))}

	return ch.Render(gochart.PNG, w)
}

func doughnut(w io.Writer, cfg chart.Config, width, height int) error {
	if len(cfg.Data.Datasets) == 0 {
		return ErrNoData
	}
	ds := cfg.Data.Datasets[0]

	var total float64
	values := make([]gochart.Value, 0, len(ds.Data))
	for i, v := range ds.Data {
		if v < 0 {
			return fmt.Errorf("slice %d has negative value %v", i, v)
		}
		total += v

		label := ""
		if i < len(cfg.Data.Labels) {
			label = cfg.Data.Labels[i]
		}
		fill := gochart.GetDefaultColor(i)
		if i < len(ds.BackgroundColor) {
			fill = parseColor(ds.BackgroundColor[i], fill)
		}
		values = append(values, gochart.Value{
			Value: v,
			Label: label,
			Style: gochart.Style{
				FillColor:   fill,
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
				FontColor:   parseColor(cfg.Options.Plugins.Legend.Labels.Color, drawing.ColorBlack),
				FontSize:    fontSize(legendFontSize(cfg.Options)),
			},
		})
	}
	if total <= 0 {
		return ErrNoData
	}

	dc := gochart.DonutChart{
		Title:      cfg.Options.Plugins.Title.Text,
		TitleStyle: titleStyle(cfg.Options),
		Width:      width,
		Height:     height,
		Values:     values,
	}
	return dc.Render(gochart.PNG, w)
}

func titleStyle(opts chart.Options) gochart.Style {
	return gochart.Style{
		FontSize:  fontSize(opts.Plugins.Title.Font.Size),
		FontColor: parseColor(opts.Plugins.Title.Color, drawing.ColorBlack),
	}
}

func legendStyle(opts chart.Options) gochart.Style {
	return gochart.Style{
		FontSize:  fontSize(legendFontSize(opts)),
		FontColor: parseColor(opts.Plugins.Legend.Labels.Color, drawing.ColorBlack),
	}
}

func legendFontSize(opts chart.Options) int {
	if f := opts.Plugins.Legend.Labels.Font; f != nil {
		return f.Size
	}
	return opts.Font.Size
}

func fontSize(px int) float64 {
	if px <= 0 {
		return 0
	}
	return float64(px) * fontScale
}

// parseColor converts a CSS color, falling back to def when it is empty or
// not understood.
func parseColor(css string, def drawing.Color) drawing.Color {
	c, err := theme.ParseColor(css)
	if err != nil {
		return def
	}
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
