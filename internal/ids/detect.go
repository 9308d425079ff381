// Package ids detects DOI and arXiv identifiers in raw text.
package ids

import (
	"regexp"
	"strings"
)

var (
	doiPattern = regexp.MustCompile(`\b10\.\d{4,9}/[^\s"<>]+`)

	// Modern form 2301.04567 (optional version suffix) or legacy cs/0301001.
	arxivPattern = regexp.MustCompile(`(?i)\b(?:arXiv:)?((\d{4}\.\d{4,5})(?:v\d+)?|[a-z\-]+(?:\.[A-Z]{2})?/\d{7})\b`)
)

// DetectDOI returns the first DOI found in text, with trailing punctuation
// stripped, or "" when none is present.
func DetectDOI(text string) string {
	if text == "" {
		return ""
	}
	m := doiPattern.FindString(text)
	if m == "" {
		return ""
	}
	return strings.TrimRight(m, ").,;:]}>")
}

// DetectArxivID returns the first arXiv identifier found in text, without
// the "arXiv:" prefix or a version suffix, or "" when none is present.
func DetectArxivID(text string) string {
	if text == "" {
		return ""
	}
	m := arxivPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	// m[2] is the modern form without its version marker.
	if m[2] != "" {
		return m[2]
	}
	return m[1]
}
