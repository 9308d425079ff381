package registry

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/papershelf/papershelf/internal/metadata"
)

// Raw arXiv Atom feed shapes. Internal to this package.
type arxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
	Links     []arxivLink   `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

// ByArxivID fetches the arXiv listing for an exact arXiv id.
func (c *Client) ByArxivID(ctx context.Context, arxivID string) (*metadata.External, error) {
	if arxivID == "" {
		return nil, fmt.Errorf("%w: empty arXiv id", ErrNotFound)
	}

	query := url.Values{}
	query.Set("id_list", arxivID)

	body, err := c.get(ctx, c.cfg.ArxivBaseURL+"/api/query", query, "application/atom+xml")
	if err != nil {
		return nil, err
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("%w: parsing arXiv feed: %v", ErrInvalidResponse, err)
	}
	if len(feed.Entries) == 0 {
		return nil, ErrNotFound
	}

	return normalizeArxiv(&feed.Entries[0], arxivID), nil
}

// normalizeArxiv converts an arXiv Atom entry into the common shape.
func normalizeArxiv(e *arxivEntry, arxivID string) *metadata.External {
	ext := &metadata.External{
		Title:       collapse(e.Title),
		ArxivID:     arxivID,
		Venue:       "arXiv",
		PublishedAt: strings.TrimSpace(e.Published),
		Source:      metadata.SourceArxiv,
	}

	if abs := collapse(e.Summary); abs != "" {
		ext.Abstract = abs
		ext.AbstractSource = metadata.SourceArxiv
	}

	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			ext.Authors = append(ext.Authors, name)
		}
	}

	// Published is an ISO date; the year is its first four digits.
	if len(ext.PublishedAt) >= 4 {
		ext.Year = ext.PublishedAt[:4]
	}

	// Prefer the PDF link, else the abstract page.
	var alternate string
	for _, l := range e.Links {
		if l.Type == "application/pdf" && ext.URL == "" {
			ext.URL = l.Href
		}
		if l.Rel == "alternate" && alternate == "" {
			alternate = l.Href
		}
	}
	if ext.URL == "" {
		ext.URL = alternate
	}

	return ext
}

// collapse trims and collapses internal whitespace runs.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
