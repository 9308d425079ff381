package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchLimit  int
	searchOffset int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Full-text search over titles, abstracts, authors, and venues",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		db := mustOpenDB(cfg)
		defer db.Close()

		recs, err := db.Search(strings.Join(args, " "), searchLimit, searchOffset)
		if err != nil {
			exitWithError(ExitError, "searching papers: %v", err)
		}
		outputRecords(recs)
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 50, "Maximum records to return")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "Records to skip")
	rootCmd.AddCommand(searchCmd)
}
