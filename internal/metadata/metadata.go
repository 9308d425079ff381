// Package metadata defines the normalized external metadata shape and the
// rules for merging external and locally extracted bibliographic data.
package metadata

// Source tags the provenance of an external metadata result.
type Source string

const (
	// SourceCrossrefDOI is a Crossref record resolved by exact DOI.
	SourceCrossrefDOI Source = "crossref-doi"
	// SourceArxiv is an arXiv record resolved by exact arXiv id.
	SourceArxiv Source = "arxiv-id"
	// SourceCrossrefTitle is the top hit of a Crossref title search.
	SourceCrossrefTitle Source = "crossref-title"
	// SourceSystem marks data produced by local heuristics.
	SourceSystem Source = "system"
)

// External is the common normalized shape for one external fetch result.
// Raw registry payloads are converted into this at the client boundary and
// never travel further.
type External struct {
	Title       string
	Authors     []string
	Year        string
	Abstract    string
	DOI         string
	ArxivID     string
	Venue       string
	PublishedAt string
	URL         string

	// Source tags where this result came from. AbstractSource tracks the
	// origin of the Abstract field separately, since field-level fallback
	// can pull the abstract from a lower-priority result.
	Source         Source
	AbstractSource Source
}

// IsComplete reports whether the result carries the full field set
// (title, authors, year, abstract) required before its abstract may
// override a locally extracted one.
func (e *External) IsComplete() bool {
	return e != nil && e.Title != "" && len(e.Authors) > 0 && e.Year != "" && e.Abstract != ""
}

// isEmpty reports whether the result carries no usable field at all.
func (e *External) isEmpty() bool {
	return e.Title == "" && len(e.Authors) == 0 && e.Year == "" &&
		e.Abstract == "" && e.DOI == "" && e.ArxivID == "" &&
		e.Venue == "" && e.URL == ""
}
