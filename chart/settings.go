package chart

// CSS custom properties read from the theme.
const (
	VarLine1     = "--line1"
	VarLine2     = "--line2"
	VarPrimary   = "--primary"
	VarSecondary = "--secondary"
)

// Fixed colors that are not themed.
const (
	ColorSeriesA    = "rgb(75, 192, 192)"
	ColorSeriesB    = "rgb(75, 192, 12)"
	ColorSliceB     = "rgb(140, 71, 147)"
	DoughnutDataset = "Host Status"
)

// Default titles used when the caller leaves them empty.
const (
	DefaultSeriesTitle = "No title given"
	DefaultChartTitle  = "Missing Title"
	DefaultLabelA      = "Label1"
	DefaultLabelB      = "Label2"
)

const lineTension = 0.1

// Settings holds the font sizes and title color applied to every chart.
type Settings struct {
	// FontSize is the base font size for all chart text.
	FontSize int `json:"font_size"`

	// LegendFontSize is used by the dual-series and doughnut legends.
	LegendFontSize int `json:"legend_font_size"`

	// TitleFontSize is the size of the chart heading.
	TitleFontSize int `json:"title_font_size"`

	// TitleColor is the heading color. It is not themed.
	TitleColor string `json:"title_color"`
}

// DefaultSettings returns the stock chart settings.
func DefaultSettings() Settings {
	return Settings{
		FontSize:       22,
		LegendFontSize: 28,
		TitleFontSize:  32,
		TitleColor:     "#000000",
	}
}

// withDefaults fills zero fields from DefaultSettings.
func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.FontSize <= 0 {
		s.FontSize = d.FontSize
	}
	if s.LegendFontSize <= 0 {
		s.LegendFontSize = d.LegendFontSize
	}
	if s.TitleFontSize <= 0 {
		s.TitleFontSize = d.TitleFontSize
	}
	if s.TitleColor == "" {
		s.TitleColor = d.TitleColor
	}
	return s
}

// ThemeProvider resolves theme colors by CSS custom property name.
//
// Color returns the trimmed property value, or "" when the property is not
// defined. Implementations are consulted every time a chart is built.
type ThemeProvider interface {
	Color(name string) string
}

// ThemeFunc adapts a function to [ThemeProvider].
type ThemeFunc func(name string) string

// Color implements [ThemeProvider].
func (f ThemeFunc) Color(name string) string {
	return f(name)
}

type noTheme struct{}

func (noTheme) Color(string) string { return "" }
