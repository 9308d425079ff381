// Package paper defines the core domain types for the paper catalog.
package paper

import (
	"encoding/hex"
	"regexp"
	"time"

	"golang.org/x/crypto/blake2b"
)

// IDLength is the number of hash hex characters used as the record ID.
const IDLength = 16

// Record represents one indexed paper in the catalog.
//
// Identity is derived from the content hash of the uploaded bytes, so
// re-indexing identical bytes always maps to the same record.
type Record struct {
	// Identity
	ID       string `json:"id"`        // First IDLength hex chars of FileHash
	FileHash string `json:"file_hash"` // Content hash of the PDF bytes (dedup key)

	// Bibliographic metadata
	Title    string   `json:"title"`
	Authors  []string `json:"authors"` // Free-text names, order preserved
	Year     string   `json:"year,omitempty"`
	Abstract string   `json:"abstract,omitempty"`
	Venue    string   `json:"venue,omitempty"`

	// Provenance
	AbstractSource string `json:"abstract_source,omitempty"` // e.g. "system", "crossref-doi"
	DataSource     string `json:"data_src,omitempty"`        // "system", "system and external"

	// External identifiers
	DOI         string `json:"doi,omitempty"`
	ArxivID     string `json:"arxiv_id,omitempty"`
	PublishedAt string `json:"published_at,omitempty"` // Calendar date, best effort
	URL         string `json:"url,omitempty"`

	// File paths (relative to the library data dir)
	Path      string `json:"path"`
	ThumbPath string `json:"thumb_path,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// HashBytes returns the hex content hash for uploaded PDF bytes.
func HashBytes(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// IDFromHash derives the record ID from a content hash.
func IDFromHash(hash string) string {
	if len(hash) <= IDLength {
		return hash
	}
	return hash[:IDLength]
}

var unsafeChars = regexp.MustCompile(`[^\w\-.]+`)

// FileSafe sanitizes a string for use in file names.
func FileSafe(name string, maxLen int) string {
	s := unsafeChars.ReplaceAllString(name, "_")
	if maxLen > 0 && len(s) > maxLen {
		s = s[:maxLen]
	}
	if s == "" || s == "_" {
		return "file"
	}
	return s
}
