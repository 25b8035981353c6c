package render

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/jpalmerr/scanboard/chart"
)

var testTheme = chart.ThemeFunc(func(name string) string {
	return map[string]string{
		chart.VarLine1:     "#ff6600",
		chart.VarPrimary:   "rgb(10, 20, 30)",
		chart.VarSecondary: "#abcdef",
	}[name]
})

func decodeSize(t *testing.T, buf *bytes.Buffer) (int, int) {
	t.Helper()
	img, err := png.Decode(buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestPNG_SingleSeries(t *testing.T) {
	cfg := chart.SingleSeriesConfig(testTheme, chart.DefaultSettings(), chart.SingleSeries{
		Labels:     []string{"01-04-2025", "02-04-2025", "03-04-2025"},
		Values:     []float64{3, 7, 5},
		ChartTitle: "Total Open Ports",
	})

	var buf bytes.Buffer
	if err := PNG(&buf, cfg, 640, 320); err != nil {
		t.Fatalf("PNG() error = %v", err)
	}
	if w, h := decodeSize(t, &buf); w != 640 || h != 320 {
		t.Errorf("image size = %dx%d, want 640x320", w, h)
	}
}

func TestPNG_DualSeriesDefaultSize(t *testing.T) {
	cfg := chart.DualSeriesConfig(testTheme, chart.DefaultSettings(), chart.DualSeries{
		Labels:  []string{"a", "b"},
		ValuesA: []float64{100, 120},
		ValuesB: []float64{10, 12},
	})

	var buf bytes.Buffer
	if err := PNG(&buf, cfg, 0, 0); err != nil {
		t.Fatalf("PNG() error = %v", err)
	}
	if w, h := decodeSize(t, &buf); w != DefaultWidth || h != DefaultHeight {
		t.Errorf("image size = %dx%d, want %dx%d", w, h, DefaultWidth, DefaultHeight)
	}
}

func TestPNG_FlatSeries(t *testing.T) {
	cfg := chart.SingleSeriesConfig(testTheme, chart.DefaultSettings(), chart.SingleSeries{
		Labels: []string{"only"},
		Values: []float64{0},
	})

	var buf bytes.Buffer
	if err := PNG(&buf, cfg, 320, 200); err != nil {
		t.Fatalf("PNG() error = %v", err)
	}
}

func TestPNG_Doughnut(t *testing.T) {
	cfg := chart.DualSliceDoughnutConfig(testTheme, chart.DefaultSettings(), chart.DualSlice{
		ValueA: 40,
		ValueB: 60,
		LabelA: "Active",
		LabelB: "Inactive",
	})

	var buf bytes.Buffer
	if err := PNG(&buf, cfg, 400, 400); err != nil {
		t.Fatalf("PNG() error = %v", err)
	}
	if w, h := decodeSize(t, &buf); w != 400 || h != 400 {
		t.Errorf("image size = %dx%d, want 400x400", w, h)
	}
}

func TestPNG_Errors(t *testing.T) {
	settings := chart.DefaultSettings()
	mismatch := chart.SingleSeriesConfig(testTheme, settings, chart.SingleSeries{
		Labels: []string{"Jan", "Feb", "Mar"},
		Values: []float64{1, 2},
	})
	empty := chart.SingleSeriesConfig(testTheme, settings, chart.SingleSeries{})
	zeroDoughnut := chart.DualSliceDoughnutConfig(testTheme, settings, chart.DualSlice{})
	negative := chart.DualSliceDoughnutConfig(testTheme, settings, chart.DualSlice{ValueA: -1, ValueB: 3})

	tests := []struct {
		name    string
		cfg     chart.Config
		wantErr error
		wantMsg string
	}{
		{name: "unsupported", cfg: chart.Config{Type: "radar"}, wantErr: ErrUnsupportedType},
		{name: "length mismatch", cfg: mismatch, wantMsg: "2 values for 3 labels"},
		{name: "empty line", cfg: empty, wantErr: ErrNoData},
		{name: "zero doughnut", cfg: zeroDoughnut, wantErr: ErrNoData},
		{name: "negative slice", cfg: negative, wantMsg: "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := PNG(&buf, tt.cfg, 100, 100)
			if err == nil {
				t.Fatal("PNG() expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("PNG() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("PNG() error = %q, want to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	if got := parseColor("#ff6600", drawing.ColorBlack); got != (drawing.Color{R: 255, G: 102, B: 0, A: 255}) {
		t.Errorf("parseColor(#ff6600) = %v", got)
	}
	if got := parseColor("", drawing.ColorWhite); got != drawing.ColorWhite {
		t.Errorf("parseColor(empty) = %v, want fallback", got)
	}
	if got := parseColor("tomato", drawing.ColorWhite); got != (drawing.Color{R: 255, G: 99, B: 71, A: 255}) {
		t.Errorf("parseColor(tomato) = %v, want named color", got)
	}
	if got := parseColor("hsl(0, 100%, 50%)", drawing.ColorWhite); got != (drawing.Color{R: 255, G: 0, B: 0, A: 255}) {
		t.Errorf("parseColor(hsl) = %v, want red", got)
	}
	if got := parseColor("notacolor", drawing.ColorWhite); got != drawing.ColorWhite {
		t.Errorf("parseColor(notacolor) = %v, want fallback", got)
	}
}

func TestLegendFontSize(t *testing.T) {
	single := chart.SingleSeriesConfig(nil, chart.DefaultSettings(), chart.SingleSeries{})
	if got := legendFontSize(single.Options); got != 22 {
		t.Errorf("single series legend size = %d, want base font 22", got)
	}
	dual := chart.DualSeriesConfig(nil, chart.DefaultSettings(), chart.DualSeries{})
	if got := legendFontSize(dual.Options); got != 28 {
		t.Errorf("dual series legend size = %d, want 28", got)
	}
}
