// Package guess implements heuristic extraction of title, authors, and year
// from the text layout of a paper's first pages.
package guess

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/papershelf/papershelf/internal/pdftext"
)

// Guess holds best-effort bibliographic fields. Empty fields mean the
// heuristics found nothing; that is never an error.
type Guess struct {
	Title   string
	Authors []string
	Year    string
}

const (
	minTitleLen      = 8
	maxTitleLen      = 180
	maxJoinedTitle   = 200
	maxDigitsInTitle = 6
	maxAuthors       = 10
	authorScanLines  = 9

	// Vertical distance (layout units) within which the next line is
	// considered a continuation of the title.
	joinDistance = 25.0

	// Reference page height used to normalize the near-top bonus.
	nominalPageHeight = 792.0
)

var (
	// Publisher and venue boilerplate that never starts a title.
	headerStopPrefixes = regexp.MustCompile(`(?i)^(arxiv|preprint|manuscript|submitted|accepted|doi:|issn|icml|neurips|cvpr|eccv|ieee|acm|springer|elsevier|proceedings|journal|transactions|vol\.|no\.)\b`)

	sectionHeader = regexp.MustCompile(`(?i)^(abstract|summary|keywords?)\b`)

	affiliationMarker = regexp.MustCompile(`(?i)@|University|Department|Institute|Lab|College`)

	namePattern = regexp.MustCompile(`[A-Z][a-z]+\s+[A-Z][a-z]+`)
	nameWord    = regexp.MustCompile(`[A-Z][a-z]+`)

	authorSplit = regexp.MustCompile(`\s*,\s*|\s+and\s+|;`)

	yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

	// Words that pass the name pattern but are never author names.
	authorFalsePositives = map[string]bool{
		"paper":    true,
		"study":    true,
		"analysis": true,
	}

	titleJunk = regexp.MustCompile(`[^\w\s\-:()\[\],]+`)
)

// Extract guesses title, authors, and year from the page-1 layout lines and
// the plain text of the first two pages.
func Extract(lines []pdftext.Line, page1Text, page2Text string) Guess {
	var g Guess

	title, idx := chooseTitle(lines)
	g.Title = title
	if idx >= 0 {
		g.Authors = scanAuthors(lines, idx)
	}
	g.Year = findYear(page1Text, page2Text)

	return g
}

// chooseTitle scores every layout line and returns the winning title plus
// the index of the last line consumed into it, or -1 if nothing qualifies.
func chooseTitle(lines []pdftext.Line) (string, int) {
	bestScore := 0.0
	bestIdx := -1

	for i, line := range lines {
		score, ok := titleScore(line)
		if !ok {
			continue
		}
		if bestIdx == -1 || score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestIdx == -1 {
		return "", -1
	}

	title := cleanTitle(lines[bestIdx].Text)
	title, lastIdx := joinContinuation(title, strings.TrimSpace(lines[bestIdx].Text), lines, bestIdx)

	if uppercaseRatio(title) > 0.97 {
		title = toTitleCase(title)
	}

	return title, lastIdx
}

// titleScore computes the weighted title score for a single layout line.
// The second return is false for lines that are excluded outright.
func titleScore(line pdftext.Line) (float64, bool) {
	text := strings.TrimSpace(line.Text)
	if len(text) < minTitleLen || len(text) > maxTitleLen {
		return 0, false
	}
	if headerStopPrefixes.MatchString(text) || sectionHeader.MatchString(text) {
		return 0, false
	}
	if strings.Contains(text, "@") {
		return 0, false
	}
	if digitCount(text) > maxDigitsInTitle {
		return 0, false
	}

	lenScore := -abs(float64(len(text))-75.0) / 75.0
	posBonus := -line.YOffset / nominalPageHeight

	capsPenalty := 0.0
	if uppercaseRatio(text) > 0.9 {
		capsPenalty = -0.8
	}

	return line.MaxFontSize*2.0 + lenScore + posBonus + capsPenalty, true
}

// joinContinuation appends the next visual line when it looks like the
// second half of a wrapped title, returning the index of the last line
// consumed. The terminal-punctuation guard inspects the raw seed text,
// since cleaning strips most sentence-ending characters.
func joinContinuation(title, rawSeed string, lines []pdftext.Line, idx int) (string, int) {
	if idx+1 >= len(lines) {
		return title, idx
	}
	next := lines[idx+1]
	if next.YOffset-lines[idx].YOffset >= joinDistance {
		return title, idx
	}
	if strings.HasSuffix(rawSeed, ".") || strings.HasSuffix(rawSeed, ":") ||
		strings.HasSuffix(rawSeed, "?") || strings.HasSuffix(rawSeed, "!") ||
		strings.HasSuffix(rawSeed, ";") {
		return title, idx
	}
	if sectionHeader.MatchString(next.Text) || affiliationMarker.MatchString(next.Text) {
		return title, idx
	}

	joined := title + " " + cleanTitle(next.Text)
	if len(joined) < minTitleLen || len(joined) > maxJoinedTitle {
		return title, idx
	}
	return joined, idx + 1
}

// scanAuthors collects author names from the lines following the title.
func scanAuthors(lines []pdftext.Line, titleIdx int) []string {
	var candidates []string

	end := titleIdx + 1 + authorScanLines
	if end > len(lines) {
		end = len(lines)
	}
	for _, line := range lines[titleIdx+1 : end] {
		if sectionHeader.MatchString(line.Text) {
			break
		}
		if affiliationMarker.MatchString(line.Text) {
			break
		}
		if namePattern.MatchString(line.Text) {
			candidates = append(candidates, line.Text)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	parts := authorSplit.Split(strings.Join(candidates, " "), -1)

	seen := make(map[string]bool)
	var authors []string
	for _, part := range parts {
		name := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(part), "0123456789*†‡"))
		if name == "" || len(name) > 60 {
			continue
		}
		if !nameWord.MatchString(name) {
			continue
		}
		if isFalsePositiveName(name) {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		authors = append(authors, name)
		if len(authors) == maxAuthors {
			break
		}
	}

	return authors
}

func isFalsePositiveName(name string) bool {
	for _, w := range strings.Fields(name) {
		if authorFalsePositives[strings.ToLower(w)] {
			return true
		}
	}
	return false
}

// findYear returns the first plausible 4-digit year, preferring page 1.
func findYear(page1Text, page2Text string) string {
	if m := yearPattern.FindString(page1Text); m != "" {
		return m
	}
	return yearPattern.FindString(page2Text)
}

func cleanTitle(s string) string {
	s = titleJunk.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

func uppercaseRatio(s string) float64 {
	letters, upper := 0, 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(upper) / float64(letters)
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func toTitleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
