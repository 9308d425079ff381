// Package abstract locates and extracts the abstract section from the
// plain text of a paper's first pages.
package abstract

import (
	"regexp"
	"strings"
)

const (
	// fallbackWindow bounds the abstract when no next-section header follows.
	fallbackWindow = 1200
	// maxLen is the hard cap on the returned abstract.
	maxLen = 4000
)

var (
	abstractHeader = regexp.MustCompile(`(?i)\babstract\b[:\s]*`)

	// Headers that typically follow the abstract. Anchored to a line start
	// or sentence boundary so ordinary prose mentioning "methods" or
	// "background" mid-sentence does not truncate the abstract.
	nextSection = regexp.MustCompile(`(?i)(?:\n\s*|\.\s+|^)((?:keywords|index\s+terms|introduction|background|related\s+work|methods?)\b|1\.\s)`)

	spaceRuns = regexp.MustCompile(`[ \t]{2,}`)
	blankRuns = regexp.MustCompile(`\n{2,}`)
)

// Extract returns the abstract found in the given first-pages text, or ""
// when no abstract header is present.
func Extract(text string) string {
	if text == "" {
		return ""
	}

	loc := abstractHeader.FindStringIndex(text)
	if loc == nil {
		return ""
	}

	body := text[loc[1]:]
	// Cut at the header itself (submatch 1), keeping the sentence
	// boundary that anchored it.
	if stop := nextSection.FindStringSubmatchIndex(body); stop != nil {
		body = body[:stop[2]]
	} else if len(body) > fallbackWindow {
		body = body[:fallbackWindow]
	}

	body = spaceRuns.ReplaceAllString(body, " ")
	body = blankRuns.ReplaceAllString(body, "\n")
	body = strings.TrimSpace(body)

	if len(body) > maxLen {
		body = body[:maxLen]
	}
	return body
}
