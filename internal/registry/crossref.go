package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/papershelf/papershelf/internal/metadata"
)

// crossrefWork is the raw Crossref work message shape. It stays inside
// this package; callers only ever see metadata.External.
type crossrefWork struct {
	Title           []string         `json:"title"`
	Author          []crossrefAuthor `json:"author"`
	PublishedPrint  *crossrefDate    `json:"published-print"`
	PublishedOnline *crossrefDate    `json:"published-online"`
	Issued          *crossrefDate    `json:"issued"`
	DOI             string           `json:"DOI"`
	URL             string           `json:"URL"`
	ContainerTitle  []string         `json:"container-title"`
	Abstract        string           `json:"abstract"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

// ByDOI fetches a Crossref record by exact DOI.
func (c *Client) ByDOI(ctx context.Context, doi string) (*metadata.External, error) {
	if doi == "" {
		return nil, fmt.Errorf("%w: empty DOI", ErrNotFound)
	}

	u := c.cfg.CrossrefBaseURL + "/works/" + url.PathEscape(doi)
	body, err := c.get(ctx, u, nil, "application/json")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Message *crossrefWork `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: parsing Crossref record: %v", ErrInvalidResponse, err)
	}
	if resp.Message == nil {
		return nil, fmt.Errorf("%w: missing message", ErrInvalidResponse)
	}

	return normalizeCrossref(resp.Message, metadata.SourceCrossrefDOI), nil
}

// ByTitle queries the Crossref search endpoint with a guessed title and
// normalizes the top-ranked hit. Titles shorter than MinTitleQueryLen are
// not worth searching and return ErrNotFound.
func (c *Client) ByTitle(ctx context.Context, title string) (*metadata.External, error) {
	if len(title) < MinTitleQueryLen {
		return nil, fmt.Errorf("%w: title too short to search", ErrNotFound)
	}

	query := url.Values{}
	query.Set("query.title", title)
	query.Set("rows", "1")

	body, err := c.get(ctx, c.cfg.CrossrefBaseURL+"/works", query, "application/json")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Message struct {
			Items []*crossrefWork `json:"items"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: parsing Crossref search: %v", ErrInvalidResponse, err)
	}
	if len(resp.Message.Items) == 0 {
		return nil, ErrNotFound
	}

	return normalizeCrossref(resp.Message.Items[0], metadata.SourceCrossrefTitle), nil
}

var jatsMarkup = regexp.MustCompile(`<[^>]+>`)

// normalizeCrossref converts a raw Crossref work into the common shape.
func normalizeCrossref(w *crossrefWork, src metadata.Source) *metadata.External {
	ext := &metadata.External{
		DOI:    w.DOI,
		URL:    w.URL,
		Source: src,
	}

	if len(w.Title) > 0 {
		ext.Title = strings.TrimSpace(w.Title[0])
	}
	if len(w.ContainerTitle) > 0 {
		ext.Venue = strings.TrimSpace(w.ContainerTitle[0])
	}

	for _, a := range w.Author {
		name := strings.TrimSpace(strings.TrimSpace(a.Given) + " " + strings.TrimSpace(a.Family))
		if name == "" {
			name = strings.TrimSpace(a.Name)
		}
		if name != "" {
			ext.Authors = append(ext.Authors, name)
		}
	}

	// Earliest available of print, online, issued dates.
	for _, d := range []*crossrefDate{w.PublishedPrint, w.PublishedOnline, w.Issued} {
		if d == nil || len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
			continue
		}
		parts := d.DateParts[0]
		ext.Year = strconv.Itoa(parts[0])
		strs := make([]string, len(parts))
		for i, p := range parts {
			strs[i] = strconv.Itoa(p)
		}
		ext.PublishedAt = strings.Join(strs, "-")
		break
	}

	// Crossref abstracts often carry JATS markup.
	if w.Abstract != "" {
		abs := jatsMarkup.ReplaceAllString(w.Abstract, "")
		abs = strings.Join(strings.Fields(abs), " ")
		if abs != "" {
			ext.Abstract = abs
			ext.AbstractSource = src
		}
	}

	return ext
}
