package abstract

import (
	"strings"
	"testing"
)

func TestExtractStopsAtNextSection(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "keywords",
			text: "Abstract: Lorem ipsum dolor sit amet. Keywords: widgets, estimation",
			want: "Lorem ipsum dolor sit amet.",
		},
		{
			name: "numbered section",
			text: "ABSTRACT\nWe study widgets at scale.\n1. The Problem\nWidgets are everywhere.",
			want: "We study widgets at scale.",
		},
		{
			name: "index terms",
			text: "Abstract\nA short summary of the work.\nIndex Terms widgets, pipelines",
			want: "A short summary of the work.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.text); got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractKeepsHeaderWordsInProse(t *testing.T) {
	got := Extract("Abstract: We compare training methods and background models across widgets. Keywords: x")
	want := "We compare training methods and background models across widgets."
	if got != want {
		t.Errorf("Extract() = %q, want %q; header words inside a sentence must not truncate", got, want)
	}
}

func TestExtractNoHeader(t *testing.T) {
	if got := Extract("This text never announces a summary section."); got != "" {
		t.Errorf("expected empty abstract, got %q", got)
	}
	if got := Extract(""); got != "" {
		t.Errorf("expected empty abstract for empty text, got %q", got)
	}
}

func TestExtractFallbackWindow(t *testing.T) {
	body := strings.Repeat("widget estimation at scale ", 200)
	got := Extract("Abstract " + body)
	if got == "" {
		t.Fatal("expected a fallback abstract")
	}
	if len(got) > fallbackWindow {
		t.Errorf("fallback abstract length %d exceeds window %d", len(got), fallbackWindow)
	}
}

func TestExtractCollapsesWhitespace(t *testing.T) {
	got := Extract("Abstract: Lorem   ipsum\n\n\ndolor sit. Keywords: x")
	if strings.Contains(got, "  ") || strings.Contains(got, "\n\n") {
		t.Errorf("whitespace not collapsed: %q", got)
	}
}
