package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a paper record",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		db := mustOpenDB(cfg)
		defer db.Close()

		rec, err := db.Get(args[0])
		if err != nil {
			exitWithError(ExitNotFound, "%v", err)
		}

		if humanOutput {
			printRecordSummary(rec)
			if rec.Abstract != "" {
				fmt.Printf("\n%s\n", rec.Abstract)
			}
			return
		}
		outputJSON(rec)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
