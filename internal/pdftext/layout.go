package pdftext

import (
	"bytes"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Line is one visually distinct text line on a page.
type Line struct {
	MaxFontSize float64 // Largest font size among the line's spans
	YOffset     float64 // Distance below the topmost text on the page
	Text        string
}

// baselineTolerance groups spans whose baselines differ by less than this
// many layout units into the same line.
const baselineTolerance = 2.0

// ExtractLayout returns the layout lines of page 1, ordered top to bottom.
// Unreadable or empty documents yield nil, not an error.
func ExtractLayout(data []byte) (lines []Line, err error) {
	defer func() {
		if r := recover(); r != nil {
			lines = nil
			err = nil
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	if r.NumPage() < 1 {
		return nil, nil
	}

	page := r.Page(1)
	if page.V.IsNull() {
		return nil, nil
	}

	content := page.Content()
	return GroupLines(content.Text), nil
}

// GroupLines builds layout lines from raw text spans by clustering spans
// with a shared baseline. Lines come back in visual order: topmost first
// (YOffset 0), left-to-right within a line.
func GroupLines(spans []pdf.Text) []Line {
	filtered := make([]pdf.Text, 0, len(spans))
	for _, s := range spans {
		if strings.TrimSpace(s.S) != "" || s.S == " " {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	// PDF user space has its origin bottom-left: larger Y is higher up.
	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Y != filtered[j].Y {
			return filtered[i].Y > filtered[j].Y
		}
		return filtered[i].X < filtered[j].X
	})

	topY := filtered[0].Y

	var lines []Line
	var cur []pdf.Text
	curY := filtered[0].Y

	flush := func() {
		if len(cur) == 0 {
			return
		}
		line := buildLine(cur, topY)
		if line.Text != "" {
			lines = append(lines, line)
		}
		cur = cur[:0]
	}

	for _, s := range filtered {
		if curY-s.Y > baselineTolerance {
			flush()
			curY = s.Y
		}
		cur = append(cur, s)
	}
	flush()

	return lines
}

func buildLine(spans []pdf.Text, topY float64) Line {
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].X < spans[j].X })

	var sb strings.Builder
	maxFont := 0.0
	y := spans[0].Y
	for _, s := range spans {
		sb.WriteString(s.S)
		if s.FontSize > maxFont {
			maxFont = s.FontSize
		}
		if s.Y > y {
			y = s.Y
		}
	}

	text := strings.Join(strings.Fields(sb.String()), " ")
	return Line{
		MaxFontSize: maxFont,
		YOffset:     topY - y,
		Text:        text,
	}
}
