package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// RefetchResponse reports the outcome of a refetch.
type RefetchResponse struct {
	ID      string `json:"id"`
	Updated bool   `json:"updated"`
}

var refetchCmd = &cobra.Command{
	Use:   "refetch <id>",
	Short: "Re-run external enrichment for an indexed paper",
	Long: `Refetch re-detects identifiers in the stored PDF and queries
Crossref and arXiv again, updating any fields the registries improve.
Useful when a paper was indexed offline or before it had a DOI.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		db := mustOpenDB(cfg)
		defer db.Close()

		rec, err := db.Get(args[0])
		if err != nil {
			exitWithError(ExitNotFound, "%v", err)
		}
		if rec.Path == "" {
			exitWithError(ExitInputError, "paper %s has no stored PDF", rec.ID)
		}

		data, err := os.ReadFile(filepath.Join(cfg.ResolveDataDir(), filepath.FromSlash(rec.Path)))
		if err != nil {
			exitWithError(ExitInputError, "reading stored PDF: %v", err)
		}

		ix := newIndexer(cfg, db, false, true)
		updated, err := ix.Refetch(cmd.Context(), rec, data)
		if err != nil {
			exitWithError(ExitError, "refetching %s: %v", rec.ID, err)
		}

		if humanOutput {
			if updated {
				printRecordSummary(rec)
			} else {
				cmd.Println("no changes")
			}
			return
		}
		outputJSON(RefetchResponse{ID: rec.ID, Updated: updated})
	},
}

func init() {
	rootCmd.AddCommand(refetchCmd)
}
