// Package export renders paper records in citation formats.
package export

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/papershelf/papershelf/internal/paper"
)

// ToBibTeX converts a paper record to a BibTeX entry.
func ToBibTeX(rec *paper.Record) string {
	entryType := determineEntryType(rec)
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", entryType, citationKey(rec)))

	if len(rec.Authors) > 0 {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", escapeLatex(strings.Join(rec.Authors, " and "))))
	}

	b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(rec.Title)))

	if rec.Venue != "" {
		fieldName := "journal"
		if entryType == "inproceedings" {
			fieldName = "booktitle"
		}
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", fieldName, escapeLatex(rec.Venue)))
	}

	if rec.Year != "" {
		b.WriteString(fmt.Sprintf("  year = {%s},\n", rec.Year))
	}

	if rec.DOI != "" {
		b.WriteString(fmt.Sprintf("  doi = {%s},\n", rec.DOI))
	}
	if rec.ArxivID != "" {
		b.WriteString(fmt.Sprintf("  eprint = {%s},\n", rec.ArxivID))
		b.WriteString("  archivePrefix = {arXiv},\n")
	}
	if rec.URL != "" {
		b.WriteString(fmt.Sprintf("  url = {%s},\n", rec.URL))
	}

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts multiple records to BibTeX entries.
func ToBibTeXList(recs []*paper.Record) string {
	var entries []string
	for _, rec := range recs {
		entries = append(entries, ToBibTeX(rec))
	}
	return strings.Join(entries, "\n")
}

// citationKey builds a stable, readable key: the first author's last name
// plus the year, falling back to the record id.
func citationKey(rec *paper.Record) string {
	if len(rec.Authors) == 0 {
		return rec.ID
	}
	fields := strings.Fields(rec.Authors[0])
	if len(fields) == 0 {
		return rec.ID
	}

	last := strings.ToLower(fields[len(fields)-1])
	last = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, last)
	if last == "" {
		return rec.ID
	}
	if rec.Year == "" {
		return last
	}
	return last + rec.Year
}

// determineEntryType returns the BibTeX entry type for a record.
func determineEntryType(rec *paper.Record) string {
	venue := strings.ToLower(rec.Venue)

	// Preprint servers are cited as articles
	if strings.Contains(venue, "arxiv") ||
		strings.Contains(venue, "biorxiv") ||
		strings.Contains(venue, "medrxiv") {
		return "article"
	}

	if strings.Contains(venue, "proceedings") ||
		strings.Contains(venue, "conference") ||
		strings.Contains(venue, "workshop") ||
		strings.Contains(venue, "symposium") {
		return "inproceedings"
	}

	return "article"
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// Order matters: & must be first (before other escapes that might produce &)
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
