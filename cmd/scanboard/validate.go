package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jpalmerr/scanboard/config"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a scanboard configuration file without starting the server.

This command parses the YAML, expands environment variables, and validates
all fields. It does not connect to the source. It's useful for CI/CD
pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  scanboard validate -c config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	addConfigFlag(validateCmd)
}

// reportStyles renders the validate summary. Colors are dropped when out
// is not a terminal.
type reportStyles struct {
	ok    lipgloss.Style
	label lipgloss.Style
	value lipgloss.Style
}

func newReportStyles(out io.Writer) reportStyles {
	r := lipgloss.NewRenderer(out)
	return reportStyles{
		ok:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		label: r.NewStyle().Foreground(lipgloss.Color("6")).Width(18),
		value: r.NewStyle().Bold(true),
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	out := cmd.OutOrStdout()
	st := newReportStyles(out)

	rows := [][2]string{
		{"Port:", strconv.Itoa(cfg.Port)},
		{"Refresh interval:", cfg.RefreshInterval.Duration().String()},
		{"Default country:", orDefault(cfg.DefaultCountry, "IS")},
		{"Source:", describeSource(cfg)},
	}
	if cfg.Theme.Stylesheet != "" {
		rows = append(rows, [2]string{"Stylesheet:", cfg.Theme.Stylesheet})
	}

	fmt.Fprintln(out, st.ok.Render("Config is valid!"))
	for _, row := range rows {
		fmt.Fprintln(out, "  "+st.label.Render(row[0])+st.value.Render(row[1]))
	}
	return nil
}

// describeSource summarizes the source without exposing credentials.
func describeSource(cfg *config.Config) string {
	s := cfg.Source
	switch s.Type {
	case config.SourcePostgres:
		return fmt.Sprintf("postgres %s@%s/%s", s.Postgres.User, s.Postgres.Host, s.Postgres.Database)
	case config.SourceHTTP:
		return "http " + s.HTTP.CountriesURL
	case config.SourceDemo:
		if len(s.Demo.Countries) == 0 {
			return "demo (default countries)"
		}
		return fmt.Sprintf("demo (%d countries)", len(s.Demo.Countries))
	default:
		return s.Type
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
