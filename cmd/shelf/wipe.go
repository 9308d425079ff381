package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var wipeForce bool

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete every record, upload, and thumbnail",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if !wipeForce {
			exitWithError(ExitError, "wipe deletes the entire library; pass --force to confirm")
		}

		cfg := mustLoadConfig()
		db := mustOpenDB(cfg)
		defer db.Close()

		n, err := db.Wipe()
		if err != nil {
			exitWithError(ExitError, "wiping catalog: %v", err)
		}

		removeGlob(filepath.Join(cfg.UploadsPath(), "*.pdf"))
		removeGlob(filepath.Join(cfg.ThumbsPath(), "*.png"))

		if humanOutput {
			cmd.Printf("removed %d papers\n", n)
			return
		}
		outputJSON(StatusResponse{Status: "wiped", Removed: n})
	},
}

func init() {
	wipeCmd.Flags().BoolVar(&wipeForce, "force", false, "Confirm deletion")
	rootCmd.AddCommand(wipeCmd)
}

// removeGlob deletes files matching the pattern, ignoring failures on
// individual files.
func removeGlob(pattern string) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return
	}
	for _, m := range matches {
		os.Remove(m)
	}
}
