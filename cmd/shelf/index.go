package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papershelf/papershelf/internal/guess"
	"github.com/papershelf/papershelf/internal/indexer"
	"github.com/papershelf/papershelf/internal/paper"
	"github.com/papershelf/papershelf/internal/pdftext"
)

var (
	indexTitle   string
	indexAuthors []string
	indexYear    string
	indexOffline bool
	indexNoThumb bool
)

var indexCmd = &cobra.Command{
	Use:   "index <pdf>...",
	Short: "Add PDF papers to the library",
	Long: `Index one or more PDF files: copy them into the library, extract
bibliographic metadata, enrich from Crossref and arXiv, and render a
thumbnail. Re-indexing a file with identical bytes updates the existing
record instead of creating a new one.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexTitle, "title", "", "Title to use when extraction finds none")
	indexCmd.Flags().StringSliceVar(&indexAuthors, "authors", nil, "Authors to use when extraction finds none")
	indexCmd.Flags().StringVar(&indexYear, "year", "", "Year to use when extraction finds none")
	indexCmd.Flags().BoolVar(&indexOffline, "offline", false, "Skip Crossref and arXiv lookups")
	indexCmd.Flags().BoolVar(&indexNoThumb, "no-thumb", false, "Skip thumbnail generation")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	db := mustOpenDB(cfg)
	defer db.Close()

	ix := newIndexer(cfg, db, indexOffline, indexNoThumb)

	var records []*paper.Record
	for _, arg := range args {
		data, err := os.ReadFile(arg)
		if err != nil {
			exitWithError(ExitInputError, "reading %s: %v", arg, err)
		}

		relPath, err := storeUpload(cfg.UploadsPath(), arg, data)
		if err != nil {
			exitWithError(ExitError, "storing %s: %v", arg, err)
		}

		rec, err := ix.Index(cmd.Context(), indexer.Request{
			Data:         data,
			RelativePath: relPath,
			Hints: indexer.Hints{
				Title:   indexTitle,
				Authors: indexAuthors,
				Year:    indexYear,
			},
		})
		if err != nil {
			exitWithError(ExitInputError, "indexing %s: %v", arg, err)
		}
		records = append(records, rec)
	}

	if humanOutput {
		for _, rec := range records {
			printRecordSummary(rec)
		}
		return
	}
	if len(records) == 1 {
		outputJSON(records[0])
		return
	}
	outputJSON(records)
}

// storeUpload copies the PDF into the uploads directory under a name
// built from a quick metadata pass, returning the library-relative path.
func storeUpload(uploadsDir, srcPath string, data []byte) (string, error) {
	name := uploadName(srcPath, data)
	if err := os.WriteFile(filepath.Join(uploadsDir, name), data, 0644); err != nil {
		return "", err
	}
	return filepath.ToSlash(filepath.Join("uploads", name)), nil
}

// uploadName builds a descriptive file name for a stored PDF:
// <safe-title>[_<authors>][_<year>]_<hash8>.pdf. The hash suffix keeps
// names unique across papers whose metadata collides.
func uploadName(srcPath string, data []byte) string {
	lines, _ := pdftext.ExtractLayout(data)
	page1, _ := pdftext.ExtractPageText(data, 1)
	page2, _ := pdftext.ExtractPageText(data, 2)
	g := guess.Extract(lines, page1, page2)

	title := g.Title
	if indexTitle != "" {
		title = indexTitle
	}
	if title == "" {
		base := filepath.Base(srcPath)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	parts := []string{paper.FileSafe(title, 100)}
	if len(g.Authors) > 0 {
		parts = append(parts, paper.FileSafe(strings.Join(g.Authors, "_"), 60))
	}
	if g.Year != "" {
		parts = append(parts, g.Year)
	}
	parts = append(parts, paper.HashBytes(data)[:8])

	return strings.Join(parts, "_") + ".pdf"
}
