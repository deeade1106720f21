package main

import (
	"github.com/spf13/cobra"

	"github.com/splitscan/splitscan/internal/api"
	"github.com/splitscan/splitscan/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "splitscan",
	Short: "Scanned document splitting and invoice extraction pipeline",
	Long: `Splitscan turns a multi-page scanned document into validated,
individually split sub-documents with structured extracted records.

The pipeline includes:
  - Layout analysis of the uploaded scan
  - Document boundary detection with human review of split proposals
  - Physical PDF splitting into per-invoice files
  - Structured invoice extraction with schema validation
  - Human validation of every extracted record`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.splitscan/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "splitscan home directory (default: ~/.splitscan)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
