package main

import (
	"github.com/spf13/cobra"

	"github.com/papershelf/papershelf/internal/paper"
)

var (
	listLimit  int
	listOffset int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List papers, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		db := mustOpenDB(cfg)
		defer db.Close()

		recs, err := db.List(listLimit, listOffset)
		if err != nil {
			exitWithError(ExitError, "listing papers: %v", err)
		}
		outputRecords(recs)
	},
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "Maximum records to return")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Records to skip")
	rootCmd.AddCommand(listCmd)
}

func outputRecords(recs []*paper.Record) {
	if humanOutput {
		for _, rec := range recs {
			printRecordSummary(rec)
		}
		return
	}
	if recs == nil {
		recs = []*paper.Record{}
	}
	outputJSON(recs)
}
