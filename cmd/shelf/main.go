// Package main provides the shelf CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "shelf",
	Short: "Personal paper library with best-effort metadata extraction",
	Long: `shelf indexes PDF papers into a searchable catalog.

Indexing extracts title, authors, year, and abstract with layout
heuristics, detects DOI and arXiv identifiers, enriches the record from
Crossref and arXiv where possible, and renders a thumbnail. All commands
output JSON by default for easy scripting.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	_ = godotenv.Load()
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}
