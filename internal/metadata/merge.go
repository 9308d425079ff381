package metadata

// sourcePriority orders external sources, highest priority first.
func sourcePriority(s Source) int {
	switch s {
	case SourceCrossrefDOI:
		return 0
	case SourceArxiv:
		return 1
	case SourceCrossrefTitle:
		return 2
	default:
		return 3
	}
}

// MergeExternal combines zero or more external fetch results into one,
// honoring the priority crossref-doi > arxiv-id > crossref-title. Fields
// empty in the accumulated result are filled from lower-priority results.
// Identifiers detected in the document text but absent from every registry
// record are injected as a final fallback; a result built only from
// injected identifiers is tagged SourceSystem, since detection is a local
// heuristic, not a fetch.
//
// Returns nil only when no usable field survives the merge.
func MergeExternal(results []*External, detectedDOI, detectedArxivID string) *External {
	var ordered []*External
	for _, r := range results {
		if r != nil {
			ordered = append(ordered, r)
		}
	}
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && sourcePriority(ordered[j].Source) < sourcePriority(ordered[j-1].Source); j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}

	var merged *External
	for _, r := range ordered {
		if merged == nil {
			cp := *r
			merged = &cp
			continue
		}
		fill(merged, r)
	}
	if merged == nil {
		merged = &External{Source: SourceSystem}
	}

	if merged.DOI == "" {
		merged.DOI = detectedDOI
	}
	if merged.ArxivID == "" {
		merged.ArxivID = detectedArxivID
	}

	if merged.isEmpty() {
		return nil
	}
	return merged
}

// fill copies fields from src into dst wherever dst has no value.
func fill(dst, src *External) {
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if len(dst.Authors) == 0 {
		dst.Authors = src.Authors
	}
	if dst.Year == "" {
		dst.Year = src.Year
	}
	if dst.Abstract == "" && src.Abstract != "" {
		dst.Abstract = src.Abstract
		dst.AbstractSource = src.AbstractSource
	}
	if dst.DOI == "" {
		dst.DOI = src.DOI
	}
	if dst.ArxivID == "" {
		dst.ArxivID = src.ArxivID
	}
	if dst.Venue == "" {
		dst.Venue = src.Venue
	}
	if dst.PublishedAt == "" {
		dst.PublishedAt = src.PublishedAt
	}
	if dst.URL == "" {
		dst.URL = src.URL
	}
}

// Local holds the locally derived bibliographic fields entering the merge.
type Local struct {
	Title    string
	Authors  []string
	Year     string
	Abstract string
}

// Policy controls how external data competes with local heuristics.
type Policy struct {
	// RequireCompleteOverride, when true, lets an external abstract
	// replace a locally extracted one only if the external record is
	// complete (title, authors, year, and abstract all present). When
	// false, any non-empty external abstract wins.
	RequireCompleteOverride bool
}

// DefaultPolicy is the strict interpretation.
var DefaultPolicy = Policy{RequireCompleteOverride: true}

// Resolved is the outcome of merging local and external data: the final
// bibliographic fields plus provenance tags.
type Resolved struct {
	Title          string
	Authors        []string
	Year           string
	Abstract       string
	AbstractSource string // "system", a source tag, or "system+<tag>"
	DataSource     string // "system" or "system and external"
	DOI            string
	ArxivID        string
	Venue          string
	PublishedAt    string
	URL            string
}

// Resolve merges local heuristic fields with the merged external result.
// External fields win for title/authors/year; the abstract follows the
// override policy; identifiers and venue only exist externally.
func Resolve(local Local, ext *External, pol Policy) Resolved {
	res := Resolved{
		Title:      local.Title,
		Authors:    local.Authors,
		Year:       local.Year,
		DataSource: string(SourceSystem),
	}

	if local.Abstract != "" {
		res.Abstract = local.Abstract
		res.AbstractSource = string(SourceSystem)
	}

	if ext == nil {
		return res
	}
	// A result carrying only locally detected identifiers is not external
	// data; the provenance tag stays "system".
	if ext.Source != SourceSystem {
		res.DataSource = "system and external"
	}

	if ext.Title != "" {
		res.Title = ext.Title
	}
	if len(ext.Authors) > 0 {
		res.Authors = ext.Authors
	}
	if ext.Year != "" {
		res.Year = ext.Year
	}

	if ext.Abstract != "" {
		switch {
		case res.Abstract == "":
			res.Abstract = ext.Abstract
			res.AbstractSource = abstractTag(ext)
		case !pol.RequireCompleteOverride || ext.IsComplete():
			res.Abstract = ext.Abstract
			res.AbstractSource = string(SourceSystem) + "+" + abstractTag(ext)
		}
	}

	res.DOI = ext.DOI
	res.ArxivID = ext.ArxivID
	res.Venue = ext.Venue
	res.PublishedAt = ext.PublishedAt
	res.URL = ext.URL

	return res
}

func abstractTag(ext *External) string {
	if ext.AbstractSource != "" {
		return string(ext.AbstractSource)
	}
	return string(ext.Source)
}
