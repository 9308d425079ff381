package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papershelf/papershelf/internal/export"
	"github.com/papershelf/papershelf/internal/paper"
)

var exportCmd = &cobra.Command{
	Use:   "export [id]...",
	Short: "Export papers as BibTeX",
	Long: `Export writes BibTeX entries for the given paper ids, or for the
whole library when no id is given. Output is plain BibTeX regardless of
the --human flag.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		db := mustOpenDB(cfg)
		defer db.Close()

		var recs []*paper.Record
		if len(args) == 0 {
			n, err := db.Count()
			if err != nil {
				exitWithError(ExitError, "counting papers: %v", err)
			}
			recs, err = db.List(n, 0)
			if err != nil {
				exitWithError(ExitError, "listing papers: %v", err)
			}
		} else {
			for _, id := range args {
				rec, err := db.Get(id)
				if err != nil {
					exitWithError(ExitNotFound, "%v", err)
				}
				recs = append(recs, rec)
			}
		}

		fmt.Print(export.ToBibTeXList(recs))
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
