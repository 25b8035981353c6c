package chart

import (
	"strings"
)

// SingleSeries describes a line chart with one dataset.
type SingleSeries struct {
	Labels   []string
	Values   []float64
	CanvasID string

	// SeriesTitle labels the dataset. Defaults to "No title given".
	SeriesTitle string

	// ChartTitle is the heading. Defaults to "Missing Title".
	ChartTitle string
}

// DualSeries describes a line chart with two datasets sharing one set of labels.
type DualSeries struct {
	Labels   []string
	ValuesA  []float64
	ValuesB  []float64
	CanvasID string

	// LabelA and LabelB label the datasets. Default to "Label1" and "Label2".
	LabelA string
	LabelB string

	// ChartTitle is the heading. Defaults to "Missing Title".
	ChartTitle string
}

// DualSlice describes a doughnut with two slices.
type DualSlice struct {
	ValueA   float64
	ValueB   float64
	CanvasID string

	// LabelA and LabelB name the slices. Default to "Label1" and "Label2".
	LabelA string
	LabelB string

	// ChartTitle is the heading. Defaults to "Missing Title".
	ChartTitle string
}

// Builder produces chart configurations and mounts them on a [Document].
//
// A Builder holds no per-chart state; the same instance can build any
// number of charts. Theme colors are looked up on every call.
type Builder struct {
	theme    ThemeProvider
	doc      Document
	settings Settings
	observer func(chartType string)
}

// Option configures a [Builder].
type Option func(*Builder)

// WithSettings overrides the default font sizes and title color.
// Zero fields keep their defaults.
func WithSettings(s Settings) Option {
	return func(b *Builder) {
		b.settings = s.withDefaults()
	}
}

// WithObserver registers a function called with the chart type after every
// successful mount.
func WithObserver(fn func(chartType string)) Option {
	return func(b *Builder) {
		b.observer = fn
	}
}

// NewBuilder creates a [Builder] reading colors from theme and mounting
// charts on doc. A nil theme resolves every color to "".
func NewBuilder(theme ThemeProvider, doc Document, opts ...Option) *Builder {
	if theme == nil {
		theme = noTheme{}
	}
	b := &Builder{
		theme:    theme,
		doc:      doc,
		settings: DefaultSettings(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Settings returns the settings applied to every chart.
func (b *Builder) Settings() Settings {
	return b.settings
}

// SingleSeries builds a single-series line chart and mounts it on the canvas
// named by s.CanvasID.
func (b *Builder) SingleSeries(s SingleSeries) (*Chart, error) {
	return b.mount(s.CanvasID, SingleSeriesConfig(b.theme, b.settings, s))
}

// DualSeries builds a dual-series line chart and mounts it on the canvas
// named by s.CanvasID.
func (b *Builder) DualSeries(s DualSeries) (*Chart, error) {
	return b.mount(s.CanvasID, DualSeriesConfig(b.theme, b.settings, s))
}

// DualSliceDoughnut builds a two-slice doughnut and mounts it on the canvas
// named by s.CanvasID.
func (b *Builder) DualSliceDoughnut(s DualSlice) (*Chart, error) {
	return b.mount(s.CanvasID, DualSliceDoughnutConfig(b.theme, b.settings, s))
}

func (b *Builder) mount(canvasID string, cfg Config) (*Chart, error) {
	if b.doc == nil {
		return nil, ErrNoDocument
	}
	c, err := b.doc.Mount(canvasID, cfg)
	if err != nil {
		return nil, err
	}
	if b.observer != nil {
		b.observer(cfg.Type)
	}
	return c, nil
}

// SingleSeriesConfig returns the configuration built by [Builder.SingleSeries]
// without mounting it.
func SingleSeriesConfig(theme ThemeProvider, settings Settings, s SingleSeries) Config {
	settings = settings.withDefaults()
	primary := color(theme, VarPrimary)

	return Config{
		Type: TypeLine,
		Data: Data{
			Labels: s.Labels,
			Datasets: []Dataset{{
				Label:       orDefault(s.SeriesTitle, DefaultSeriesTitle),
				Data:        s.Values,
				Fill:        boolPtr(false),
				BorderColor: color(theme, VarLine1),
				LineTension: lineTension,
			}},
		},
		Options: Options{
			Responsive: true,
			Font:       Font{Size: settings.FontSize},
			Plugins: Plugins{
				Title:  title(settings, s.ChartTitle),
				Legend: Legend{Labels: LegendLabels{Color: primary}},
			},
			Scales: axes(primary),
		},
	}
}

// DualSeriesConfig returns the configuration built by [Builder.DualSeries]
// without mounting it.
func DualSeriesConfig(theme ThemeProvider, settings Settings, s DualSeries) Config {
	settings = settings.withDefaults()
	secondary := color(theme, VarSecondary)

	return Config{
		Type: TypeLine,
		Data: Data{
			Labels: s.Labels,
			Datasets: []Dataset{
				{
					Label:       orDefault(s.LabelA, DefaultLabelA),
					Data:        s.ValuesA,
					Fill:        boolPtr(false),
					BorderColor: ColorSeriesA,
					LineTension: lineTension,
				},
				{
					Label:       orDefault(s.LabelB, DefaultLabelB),
					Data:        s.ValuesB,
					Fill:        boolPtr(false),
					BorderColor: ColorSeriesB,
					LineTension: lineTension,
				},
			},
		},
		Options: Options{
			Responsive: true,
			Font:       Font{Size: settings.FontSize},
			Plugins: Plugins{
				Title: title(settings, s.ChartTitle),
				Legend: Legend{Labels: LegendLabels{
					Font:  &Font{Size: settings.LegendFontSize},
					Color: secondary,
				}},
			},
			Scales: axes(secondary),
		},
	}
}

// DualSliceDoughnutConfig returns the configuration built by
// [Builder.DualSliceDoughnut] without mounting it.
func DualSliceDoughnutConfig(theme ThemeProvider, settings Settings, s DualSlice) Config {
	settings = settings.withDefaults()

	return Config{
		Type: TypeDoughnut,
		Data: Data{
			Labels: []string{
				orDefault(s.LabelA, DefaultLabelA),
				orDefault(s.LabelB, DefaultLabelB),
			},
			Datasets: []Dataset{{
				Label:           DoughnutDataset,
				Data:            []float64{s.ValueA, s.ValueB},
				BackgroundColor: []string{color(theme, VarLine1), ColorSliceB},
				HoverOffset:     4,
			}},
		},
		Options: Options{
			// fixed size; the page sets the canvas dimensions
			Responsive: false,
			Font:       Font{Size: settings.FontSize},
			Plugins: Plugins{
				Title: title(settings, s.ChartTitle),
				Legend: Legend{Labels: LegendLabels{
					Font:  &Font{Size: settings.LegendFontSize},
					Color: color(theme, VarSecondary),
				}},
			},
		},
	}
}

func title(settings Settings, text string) Title {
	return Title{
		Display: true,
		Text:    orDefault(text, DefaultChartTitle),
		Color:   settings.TitleColor,
		Font:    Font{Size: settings.TitleFontSize},
	}
}

func axes(tickColor string) map[string]Scale {
	return map[string]Scale{
		"x": {Ticks: Ticks{Color: tickColor}},
		"y": {Ticks: Ticks{Color: tickColor}},
	}
}

func color(theme ThemeProvider, name string) string {
	if theme == nil {
		return ""
	}
	return strings.TrimSpace(theme.Color(name))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
