package chart

// Chart types understood by Chart.js.
const (
	TypeLine     = "line"
	TypeDoughnut = "doughnut"
)

// Config is a Chart.js chart configuration.
//
// Config marshals to the exact object expected by the Chart.js constructor:
//
//	new Chart(canvas, config)
type Config struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

// Data holds the category labels and the datasets plotted against them.
type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is a single series (line charts) or the slice values (doughnuts).
type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	Fill            *bool     `json:"fill,omitempty"`
	BorderColor     string    `json:"borderColor,omitempty"`
	LineTension     float64   `json:"lineTension,omitempty"`
	BackgroundColor []string  `json:"backgroundColor,omitempty"`
	HoverOffset     int       `json:"hoverOffset,omitempty"`
}

// Options holds chart-wide options.
type Options struct {
	Responsive bool             `json:"responsive"`
	Font       Font             `json:"font"`
	Plugins    Plugins          `json:"plugins"`
	Scales     map[string]Scale `json:"scales,omitempty"`
}

// Font sets a font size in pixels.
type Font struct {
	Size int `json:"size"`
}

// Plugins configures the title and legend plugins.
type Plugins struct {
	Title  Title  `json:"title"`
	Legend Legend `json:"legend"`
}

// Title is the chart heading.
type Title struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
	Color   string `json:"color"`
	Font    Font   `json:"font"`
}

// Legend configures legend labels.
type Legend struct {
	Labels LegendLabels `json:"labels"`
}

// LegendLabels styles the legend entries. A nil Font inherits the chart font.
type LegendLabels struct {
	Font  *Font  `json:"font,omitempty"`
	Color string `json:"color"`
}

// Scale configures one axis.
type Scale struct {
	Ticks Ticks `json:"ticks"`
}

// Ticks styles the tick labels of an axis.
type Ticks struct {
	Color string `json:"color"`
}

// Chart is a configuration bound to a canvas.
type Chart struct {
	CanvasID string `json:"canvasId"`
	Config   Config `json:"config"`
}

// SeriesCount returns the number of datasets in the configuration.
func (c Config) SeriesCount() int {
	return len(c.Data.Datasets)
}

func boolPtr(b bool) *bool {
	return &b
}
