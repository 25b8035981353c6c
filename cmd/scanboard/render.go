package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/scanboard/chart"
	"github.com/jpalmerr/scanboard/config"
	"github.com/jpalmerr/scanboard/dashboard"
	"github.com/jpalmerr/scanboard/internal/render"
	"github.com/jpalmerr/scanboard/internal/view"
	"github.com/jpalmerr/scanboard/theme"
)

const renderTimeout = 30 * time.Second

// renderCmd writes chart PNGs for one country.
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a country's charts to PNG",
	Long: `Fetch one country's summary from the configured source and write its
charts as PNG files, without starting the server.

With --canvas, a single chart is written to --output (default
<canvas>.png). Without it, every chart is written into the --output
directory (default the working directory) as <canvas>.png.

Canvases:
  line-graph_total-open-ports
  line-graph_hosts
  doughnut_host-status

Example:
  scanboard render -c config.yaml --country IS -o charts/
  scanboard render -c config.yaml --country NO --canvas line-graph_hosts -o hosts.png`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	addConfigFlag(renderCmd)
	renderCmd.Flags().String("country", "", "country code (default: the configured default country)")
	renderCmd.Flags().String("canvas", "", "render only this canvas")
	renderCmd.Flags().StringP("output", "o", "", "output file (with --canvas) or directory")
	renderCmd.Flags().Int("width", render.DefaultWidth, "image width in pixels")
	renderCmd.Flags().Int("height", render.DefaultHeight, "image height in pixels")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	country, _ := cmd.Flags().GetString("country")
	canvas, _ := cmd.Flags().GetString("canvas")
	output, _ := cmd.Flags().GetString("output")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")

	if country == "" {
		country = orDefault(cfg.DefaultCountry, "IS")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), renderTimeout)
	defer cancel()

	src, closeSource, err := config.BuildSource(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer func() { _ = closeSource() }()

	s, err := src.Summary(ctx, country)
	if err != nil {
		return fmt.Errorf("failed to fetch summary: %w", err)
	}

	provider, err := renderTheme(cfg)
	if err != nil {
		return err
	}

	landing, err := view.Build(s, provider, chart.WithSettings(cfg.ChartSettings()))
	if err != nil {
		return fmt.Errorf("failed to build charts: %w", err)
	}

	ids := view.Canvases
	if canvas != "" {
		if _, ok := landing.Chart(canvas); !ok {
			return fmt.Errorf("unknown canvas %q", canvas)
		}
		ids = []string{canvas}
		if output == "" {
			output = canvas + ".png"
		}
	} else {
		if output == "" {
			output = "."
		}
		if err := os.MkdirAll(output, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	for _, id := range ids {
		path := output
		if canvas == "" {
			path = filepath.Join(output, id+".png")
		}

		c, _ := landing.Chart(id)
		var buf bytes.Buffer
		if err := render.PNG(&buf, c.Config, width, height); err != nil {
			return fmt.Errorf("failed to render %s: %w", id, err)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintf(out, "wrote %s\n", path)
	}
	return nil
}

// renderTheme returns the configured stylesheet, or the embedded one.
func renderTheme(cfg *config.Config) (chart.ThemeProvider, error) {
	if cfg.Theme.Stylesheet != "" {
		sheet, err := theme.LoadStylesheet(cfg.Theme.Stylesheet)
		if err != nil {
			return nil, fmt.Errorf("theme.stylesheet: %w", err)
		}
		return sheet, nil
	}
	sheet, err := theme.LoadStylesheetFS(dashboard.Assets, dashboard.Stylesheet)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded theme: %w", err)
	}
	return sheet, nil
}
