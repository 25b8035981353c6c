// Package main is the entry point for the scanboard CLI.
//
// Usage:
//
//	scanboard serve -c config.yaml                          # Start the dashboard
//	scanboard validate -c config.yaml                       # Validate configuration
//	scanboard render -c config.yaml --country IS -o charts/ # Write chart PNGs
//	scanboard version                                       # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/scanboard/config"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "scanboard",
	Short: "A dashboard for internet scan summaries",
	Long: `Scanboard serves per-country internet scan summaries: headline counts,
the top identified ports, services and products, and charts of open ports
and active hosts over time.

Quick start:
  1. Create a config file (scanboard.yaml)
  2. Run: scanboard serve -c scanboard.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  port: 8080
  refresh_interval: 5m
  source:
    type: demo`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this scanboard binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "scanboard %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("env-file", "", "dotenv file loaded before the config (default .env if present)")
}

// addConfigFlag registers the required -c/--config flag on cmd.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = cmd.MarkFlagRequired("config")
}

// loadConfig loads the dotenv file, then parses the config named by the
// --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadEnv(envFile); err != nil {
		return nil, err
	}

	configFile, _ := cmd.Flags().GetString("config")
	return config.Load(configFile)
}
