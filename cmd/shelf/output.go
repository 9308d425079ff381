package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/papershelf/papershelf/internal/paper"
)

// Title truncation length for list/search summaries.
const listTitleMaxLen = 70

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status  string `json:"status"`
	Removed int    `json:"removed,omitempty"`
}

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// printRecordSummary writes a one-line human summary of a record.
func printRecordSummary(rec *paper.Record) {
	title := rec.Title
	if len(title) > listTitleMaxLen {
		title = title[:listTitleMaxLen-1] + "…"
	}
	year := rec.Year
	if year == "" {
		year = "----"
	}
	fmt.Printf("%s  %s  %s\n", rec.ID, year, title)
	if len(rec.Authors) > 0 {
		fmt.Printf("%s  %s\n", strings.Repeat(" ", len(rec.ID)), strings.Join(rec.Authors, ", "))
	}
}
