// Package indexer orchestrates the per-document extraction and enrichment
// pipeline: hash, local heuristics, identifier detection, concurrent
// external fetches, merge, thumbnail, and persistence.
package indexer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/papershelf/papershelf/internal/abstract"
	"github.com/papershelf/papershelf/internal/guess"
	"github.com/papershelf/papershelf/internal/ids"
	"github.com/papershelf/papershelf/internal/metadata"
	"github.com/papershelf/papershelf/internal/paper"
	"github.com/papershelf/papershelf/internal/pdftext"
)

// Fetcher looks up external bibliographic metadata. Implementations must
// be safe for concurrent use.
type Fetcher interface {
	ByDOI(ctx context.Context, doi string) (*metadata.External, error)
	ByTitle(ctx context.Context, title string) (*metadata.External, error)
	ByArxivID(ctx context.Context, arxivID string) (*metadata.External, error)
}

// Store persists paper records.
type Store interface {
	Upsert(rec *paper.Record) error
}

// Thumbnailer produces a preview image for PDF bytes, returning the file
// name relative to the thumbnails directory.
type Thumbnailer interface {
	Generate(pdfBytes []byte, stem, title string) (string, error)
}

// Indexer runs the pipeline.
type Indexer struct {
	store   Store
	fetcher Fetcher
	thumbs  Thumbnailer
	policy  metadata.Policy
	log     *zap.SugaredLogger
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithThumbnailer enables thumbnail generation.
func WithThumbnailer(t Thumbnailer) Option {
	return func(ix *Indexer) {
		ix.thumbs = t
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(ix *Indexer) {
		ix.log = log
	}
}

// WithPolicy overrides the default merge policy.
func WithPolicy(pol metadata.Policy) Option {
	return func(ix *Indexer) {
		ix.policy = pol
	}
}

// New creates an Indexer. Pass a nil fetcher to index offline.
func New(store Store, fetcher Fetcher, opts ...Option) *Indexer {
	ix := &Indexer{
		store:   store,
		fetcher: fetcher,
		policy:  metadata.DefaultPolicy,
		log:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Hints are caller-supplied fallbacks for fields the heuristics miss.
type Hints struct {
	Title   string
	Authors []string
	Year    string
}

// Request describes one document to index.
type Request struct {
	// Data is the raw PDF bytes.
	Data []byte
	// RelativePath is where the PDF lives under the library data dir;
	// it is recorded on the resulting record and its stem is the title
	// fallback of last resort.
	RelativePath string
	Hints        Hints
}

// Index runs the full pipeline for one document and persists the result.
//
// Failures in external fetches, thumbnail rendering, or any heuristic step
// degrade to missing fields; the only hard failure is input that cannot be
// read as a PDF at all.
func (ix *Indexer) Index(ctx context.Context, req Request) (*paper.Record, error) {
	hash := paper.HashBytes(req.Data)
	id := paper.IDFromHash(hash)
	log := ix.log.With("paper", id)

	text, err := pdftext.ExtractText(req.Data, pdftext.DefaultTextPages)
	if err != nil {
		return nil, fmt.Errorf("reading PDF: %w", err)
	}

	local := ix.extractLocal(req, log)
	local.Abstract = abstract.Extract(text)

	doi := ids.DetectDOI(text)
	arxivID := ids.DetectArxivID(text)

	var thumbPath string
	ext := ix.fetchExternal(ctx, fetchInput{
		doi:     doi,
		arxivID: arxivID,
		title:   local.Title,
	}, func() {
		// Thumbnail rendering is CPU-bound; it rides along with the
		// network fetches instead of serializing after them.
		thumbPath = ix.makeThumbnail(req, local.Title, log)
	}, log)

	res := metadata.Resolve(local, ext, ix.policy)
	if res.Title == "" {
		res.Title = "Untitled"
	}

	rec := &paper.Record{
		ID:             id,
		FileHash:       hash,
		Title:          res.Title,
		Authors:        res.Authors,
		Year:           res.Year,
		Abstract:       res.Abstract,
		AbstractSource: res.AbstractSource,
		DataSource:     res.DataSource,
		DOI:            res.DOI,
		ArxivID:        res.ArxivID,
		Venue:          res.Venue,
		PublishedAt:    res.PublishedAt,
		URL:            res.URL,
		Path:           req.RelativePath,
		ThumbPath:      thumbPath,
	}

	if err := ix.store.Upsert(rec); err != nil {
		return nil, fmt.Errorf("persisting paper: %w", err)
	}

	log.Infow("indexed paper", "title", rec.Title, "data_src", rec.DataSource)
	return rec, nil
}

// extractLocal runs layout extraction and the bibliographic heuristics,
// applying hints and the filename stem as fallbacks.
func (ix *Indexer) extractLocal(req Request, log *zap.SugaredLogger) metadata.Local {
	lines, err := pdftext.ExtractLayout(req.Data)
	if err != nil || len(lines) == 0 {
		log.Debugw("no layout extracted", "error", err)
	}

	page1, _ := pdftext.ExtractPageText(req.Data, 1)
	page2, _ := pdftext.ExtractPageText(req.Data, 2)
	g := guess.Extract(lines, page1, page2)

	if g.Title == "" {
		g.Title = req.Hints.Title
	}
	if g.Title == "" {
		g.Title = filenameStem(req.RelativePath)
	}
	if len(g.Authors) == 0 {
		g.Authors = req.Hints.Authors
	}
	if g.Year == "" {
		g.Year = req.Hints.Year
	}

	return metadata.Local{
		Title:   g.Title,
		Authors: g.Authors,
		Year:    g.Year,
	}
}

type fetchInput struct {
	doi     string
	arxivID string
	title   string
}

// fetchExternal runs every applicable external lookup concurrently and
// merges the results. All lookups settle before the merge; one failing
// never blocks or fails the others. The sidecar function (may be nil)
// runs on its own worker alongside the fetches.
func (ix *Indexer) fetchExternal(ctx context.Context, in fetchInput, sidecar func(), log *zap.SugaredLogger) *metadata.External {
	var fromDOI, fromArxiv, fromTitle *metadata.External

	g := new(errgroup.Group)
	if sidecar != nil {
		g.Go(func() error {
			sidecar()
			return nil
		})
	}

	if ix.fetcher != nil {
		if in.doi != "" {
			g.Go(func() error {
				r, err := ix.fetcher.ByDOI(ctx, in.doi)
				if err != nil {
					log.Warnw("crossref doi lookup failed", "doi", in.doi, "error", err)
					return nil
				}
				fromDOI = r
				return nil
			})
		}
		if in.arxivID != "" {
			g.Go(func() error {
				r, err := ix.fetcher.ByArxivID(ctx, in.arxivID)
				if err != nil {
					log.Warnw("arxiv lookup failed", "arxiv_id", in.arxivID, "error", err)
					return nil
				}
				fromArxiv = r
				return nil
			})
		}
		// Title search is a fallback for papers without a direct DOI.
		if in.doi == "" && len(in.title) >= registryMinTitleLen {
			g.Go(func() error {
				r, err := ix.fetcher.ByTitle(ctx, in.title)
				if err != nil {
					log.Warnw("crossref title search failed", "title", in.title, "error", err)
					return nil
				}
				fromTitle = r
				return nil
			})
		}
	}

	g.Wait()

	return metadata.MergeExternal(
		[]*metadata.External{fromDOI, fromArxiv, fromTitle},
		in.doi, in.arxivID,
	)
}

// registryMinTitleLen mirrors registry.MinTitleQueryLen without importing
// the client package into the orchestrator.
const registryMinTitleLen = 7

// makeThumbnail generates a thumbnail, degrading to an empty path.
func (ix *Indexer) makeThumbnail(req Request, title string, log *zap.SugaredLogger) string {
	if ix.thumbs == nil {
		return ""
	}
	name, err := ix.thumbs.Generate(req.Data, filenameStem(req.RelativePath), title)
	if err != nil {
		log.Warnw("thumbnail generation failed", "error", err)
		return ""
	}
	return filepath.ToSlash(filepath.Join("thumbs", name))
}

// Refetch re-runs identifier detection and external enrichment for an
// already indexed paper, given its stored PDF bytes, updating fields the
// registries improve. Returns whether anything changed.
func (ix *Indexer) Refetch(ctx context.Context, rec *paper.Record, data []byte) (bool, error) {
	if ix.fetcher == nil {
		return false, fmt.Errorf("no fetcher configured")
	}

	text, err := pdftext.ExtractText(data, pdftext.DefaultTextPages)
	if err != nil {
		return false, fmt.Errorf("reading PDF: %w", err)
	}

	doi := rec.DOI
	if doi == "" {
		doi = ids.DetectDOI(text)
	}
	arxivID := rec.ArxivID
	if arxivID == "" {
		arxivID = ids.DetectArxivID(text)
	}

	ext := ix.fetchExternal(ctx, fetchInput{
		doi:     doi,
		arxivID: arxivID,
		title:   rec.Title,
	}, nil, ix.log.With("paper", rec.ID))
	if ext == nil {
		return false, nil
	}

	changed := applyRefetch(rec, ext)
	if !changed {
		return false, nil
	}
	if err := ix.store.Upsert(rec); err != nil {
		return false, fmt.Errorf("persisting paper: %w", err)
	}
	return true, nil
}

// applyRefetch overwrites record fields the external result improves.
// The abstract is only filled, never replaced.
func applyRefetch(rec *paper.Record, ext *metadata.External) bool {
	changed := false

	set := func(dst *string, v string) {
		if v != "" && v != *dst {
			*dst = v
			changed = true
		}
	}

	set(&rec.Title, ext.Title)
	set(&rec.Year, ext.Year)
	set(&rec.DOI, ext.DOI)
	set(&rec.ArxivID, ext.ArxivID)
	set(&rec.Venue, ext.Venue)
	set(&rec.PublishedAt, ext.PublishedAt)
	set(&rec.URL, ext.URL)

	if len(ext.Authors) > 0 && !sameAuthors(rec.Authors, ext.Authors) {
		rec.Authors = ext.Authors
		changed = true
	}
	if ext.Abstract != "" && rec.Abstract == "" {
		rec.Abstract = ext.Abstract
		rec.AbstractSource = string(ext.Source)
		changed = true
	}
	// Identifiers detected locally but unconfirmed by any registry do not
	// make the record externally sourced.
	if changed && ext.Source != metadata.SourceSystem {
		rec.DataSource = "system and external"
	}

	return changed
}

func sameAuthors(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// filenameStem returns the base name of a path without its extension.
func filenameStem(path string) string {
	base := filepath.Base(path)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
