package indexer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/papershelf/papershelf/internal/metadata"
	"github.com/papershelf/papershelf/internal/paper"
)

// minimalPDF builds a one-page PDF with the given content-stream text.
// Offsets are computed while writing so the xref table is always correct.
func minimalPDF(text string) []byte {
	var buf bytes.Buffer
	offsets := make([]int, 6)
	obj := func(n int, s string) {
		offsets[n] = buf.Len()
		buf.WriteString(s)
	}

	buf.WriteString("%PDF-1.4\n")
	obj(1, "1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	obj(2, "2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	obj(3, "3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
		"/Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>\nendobj\n")
	stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	obj(4, fmt.Sprintf("4 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(stream), stream))
	obj(5, "5 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	xref := buf.Len()
	buf.WriteString("xref\n0 6\n0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

type stubStore struct {
	mu   sync.Mutex
	recs []*paper.Record
	err  error
}

func (s *stubStore) Upsert(rec *paper.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.recs = append(s.recs, rec)
	return nil
}

func (s *stubStore) last() *paper.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.recs) == 0 {
		return nil
	}
	return s.recs[len(s.recs)-1]
}

type stubFetcher struct {
	mu      sync.Mutex
	calls   []string
	byDOI   *metadata.External
	byTitle *metadata.External
	byArxiv *metadata.External
	err     error
}

func (f *stubFetcher) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *stubFetcher) ByDOI(ctx context.Context, doi string) (*metadata.External, error) {
	f.record("doi:" + doi)
	return f.byDOI, f.err
}

func (f *stubFetcher) ByTitle(ctx context.Context, title string) (*metadata.External, error) {
	f.record("title:" + title)
	return f.byTitle, f.err
}

func (f *stubFetcher) ByArxivID(ctx context.Context, id string) (*metadata.External, error) {
	f.record("arxiv:" + id)
	return f.byArxiv, f.err
}

func (f *stubFetcher) called(prefix string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

type stubThumbnailer struct {
	name string
	err  error
}

func (s *stubThumbnailer) Generate(pdfBytes []byte, stem, title string) (string, error) {
	return s.name, s.err
}

func TestIndexOfflineUsesHints(t *testing.T) {
	store := &stubStore{}
	ix := New(store, nil)

	data := minimalPDF("x")
	rec, err := ix.Index(context.Background(), Request{
		Data:         data,
		RelativePath: "uploads/widget_paper.pdf",
		Hints: Hints{
			Title:   "Widget Estimation at Scale",
			Authors: []string{"Ashley Smith"},
			Year:    "2021",
		},
	})
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	if rec.Title != "Widget Estimation at Scale" {
		t.Errorf("title = %q, want the hint", rec.Title)
	}
	if rec.Year != "2021" || len(rec.Authors) != 1 {
		t.Errorf("hints not applied: %+v", rec)
	}
	if rec.DataSource != "system" {
		t.Errorf("data source = %q, want system when offline", rec.DataSource)
	}
	if rec.FileHash != paper.HashBytes(data) {
		t.Errorf("hash mismatch")
	}
	if rec.ID != paper.IDFromHash(rec.FileHash) {
		t.Errorf("id %q not derived from hash", rec.ID)
	}
	if store.last() == nil {
		t.Error("record not persisted")
	}
}

func TestIndexTitleNeverEmpty(t *testing.T) {
	store := &stubStore{}
	ix := New(store, nil)

	// No extractable title, no hints: the filename stem is the fallback.
	rec, err := ix.Index(context.Background(), Request{
		Data:         minimalPDF("x"),
		RelativePath: "uploads/widget_paper.pdf",
	})
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if rec.Title != "widget_paper" {
		t.Errorf("title = %q, want the filename stem", rec.Title)
	}

	// No path either: the last resort is a fixed placeholder.
	rec, err = ix.Index(context.Background(), Request{Data: minimalPDF("x")})
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if rec.Title != "Untitled" {
		t.Errorf("title = %q, want Untitled", rec.Title)
	}
}

func TestIndexRejectsNonPDF(t *testing.T) {
	ix := New(&stubStore{}, nil)
	if _, err := ix.Index(context.Background(), Request{Data: []byte("not a pdf")}); err == nil {
		t.Error("expected an error for unreadable input")
	}
}

func TestIndexTitleSearchEnriches(t *testing.T) {
	store := &stubStore{}
	fetcher := &stubFetcher{
		byTitle: &metadata.External{
			Title:   "Widget Estimation at Scale",
			Authors: []string{"Ashley Smith", "Jordan Lee"},
			Year:    "2022",
			DOI:     "10.1234/example",
			Venue:   "Journal of Widgets",
			Source:  metadata.SourceCrossrefTitle,
		},
	}
	ix := New(store, fetcher)

	rec, err := ix.Index(context.Background(), Request{
		Data:  minimalPDF("x"),
		Hints: Hints{Title: "widget estimation at scale"},
	})
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	if !fetcher.called("title:") {
		t.Fatal("expected a title search")
	}
	if fetcher.called("doi:") || fetcher.called("arxiv:") {
		t.Errorf("unexpected identifier lookups: %v", fetcher.calls)
	}
	if rec.Title != "Widget Estimation at Scale" || rec.Year != "2022" {
		t.Errorf("external fields not applied: %+v", rec)
	}
	if rec.DataSource != "system and external" {
		t.Errorf("data source = %q", rec.DataSource)
	}
	if rec.DOI != "10.1234/example" {
		t.Errorf("doi = %q", rec.DOI)
	}
}

func TestIndexShortTitleSkipsSearch(t *testing.T) {
	fetcher := &stubFetcher{}
	ix := New(&stubStore{}, fetcher)

	_, err := ix.Index(context.Background(), Request{
		Data:  minimalPDF("x"),
		Hints: Hints{Title: "Widget"},
	})
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if fetcher.called("title:") {
		t.Error("titles below the search threshold must not be queried")
	}
}

func TestIndexSurvivesFetchFailure(t *testing.T) {
	store := &stubStore{}
	fetcher := &stubFetcher{err: errors.New("registry down")}
	ix := New(store, fetcher)

	rec, err := ix.Index(context.Background(), Request{
		Data:  minimalPDF("x"),
		Hints: Hints{Title: "Widget Estimation at Scale", Year: "2021"},
	})
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if rec.Title != "Widget Estimation at Scale" || rec.Year != "2021" {
		t.Errorf("local fields lost on fetch failure: %+v", rec)
	}
	if rec.DataSource != "system" {
		t.Errorf("data source = %q, want system when every fetch fails", rec.DataSource)
	}
	if store.last() == nil {
		t.Error("record must still be persisted")
	}
}

func TestIndexThumbnailFailureDegrades(t *testing.T) {
	store := &stubStore{}
	ix := New(store, nil, WithThumbnailer(&stubThumbnailer{err: errors.New("no images")}))

	rec, err := ix.Index(context.Background(), Request{
		Data:  minimalPDF("x"),
		Hints: Hints{Title: "Widget Estimation at Scale"},
	})
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if rec.ThumbPath != "" {
		t.Errorf("thumb path = %q, want empty on failure", rec.ThumbPath)
	}
}

func TestIndexRecordsThumbnail(t *testing.T) {
	store := &stubStore{}
	ix := New(store, nil, WithThumbnailer(&stubThumbnailer{name: "widget_ab12cd34.png"}))

	rec, err := ix.Index(context.Background(), Request{
		Data:  minimalPDF("x"),
		Hints: Hints{Title: "Widget Estimation at Scale"},
	})
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if rec.ThumbPath != "thumbs/widget_ab12cd34.png" {
		t.Errorf("thumb path = %q", rec.ThumbPath)
	}
}

func TestIndexStoreFailure(t *testing.T) {
	store := &stubStore{err: errors.New("disk full")}
	ix := New(store, nil)

	_, err := ix.Index(context.Background(), Request{
		Data:  minimalPDF("x"),
		Hints: Hints{Title: "Widget Estimation at Scale"},
	})
	if err == nil {
		t.Error("expected persistence errors to surface")
	}
}

func TestRefetchUpdatesRecord(t *testing.T) {
	store := &stubStore{}
	fetcher := &stubFetcher{
		byDOI: &metadata.External{
			Title:  "Widget Estimation at Scale",
			Year:   "2022",
			Venue:  "Journal of Widgets",
			DOI:    "10.1234/example",
			Source: metadata.SourceCrossrefDOI,
		},
	}
	ix := New(store, fetcher)

	rec := &paper.Record{
		ID:       "abc",
		FileHash: "hash",
		Title:    "Widget Estimation at Scale",
		Year:     "2021",
		DOI:      "10.1234/example",
		Abstract: "local abstract",
	}
	updated, err := ix.Refetch(context.Background(), rec, minimalPDF("x"))
	if err != nil {
		t.Fatalf("Refetch() error = %v", err)
	}
	if !updated {
		t.Fatal("expected an update")
	}
	if rec.Year != "2022" || rec.Venue != "Journal of Widgets" {
		t.Errorf("fields not updated: %+v", rec)
	}
	if rec.Abstract != "local abstract" {
		t.Errorf("refetch must not replace an existing abstract: %q", rec.Abstract)
	}
	if rec.DataSource != "system and external" {
		t.Errorf("data source = %q", rec.DataSource)
	}
	if store.last() == nil {
		t.Error("updated record not persisted")
	}
}

func TestRefetchNoChanges(t *testing.T) {
	store := &stubStore{}
	fetcher := &stubFetcher{
		byDOI: &metadata.External{
			Title:  "Widget Estimation at Scale",
			DOI:    "10.1234/example",
			Source: metadata.SourceCrossrefDOI,
		},
	}
	ix := New(store, fetcher)

	rec := &paper.Record{
		ID:       "abc",
		FileHash: "hash",
		Title:    "Widget Estimation at Scale",
		DOI:      "10.1234/example",
	}
	updated, err := ix.Refetch(context.Background(), rec, minimalPDF("x"))
	if err != nil {
		t.Fatalf("Refetch() error = %v", err)
	}
	if updated {
		t.Error("identical external data must not report an update")
	}
	if store.last() != nil {
		t.Error("nothing should be persisted without changes")
	}
}

func TestApplyRefetchInjectedIDKeepsLocalProvenance(t *testing.T) {
	rec := &paper.Record{ID: "abc", Title: "T", DataSource: "system"}
	ext := &metadata.External{DOI: "10.1000/xyz123", Source: metadata.SourceSystem}

	if !applyRefetch(rec, ext) {
		t.Fatal("expected the detected DOI to be recorded")
	}
	if rec.DOI != "10.1000/xyz123" {
		t.Errorf("doi = %q", rec.DOI)
	}
	if rec.DataSource != "system" {
		t.Errorf("data source = %q, want system for a locally detected id", rec.DataSource)
	}
}

func TestRefetchRequiresFetcher(t *testing.T) {
	ix := New(&stubStore{}, nil)
	if _, err := ix.Refetch(context.Background(), &paper.Record{ID: "abc"}, minimalPDF("x")); err == nil {
		t.Error("expected an error without a fetcher")
	}
}

func TestFilenameStem(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"uploads/widget_paper.pdf", "widget_paper"},
		{"widget_paper.pdf", "widget_paper"},
		{"no_extension", "no_extension"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := filenameStem(tt.path); got != tt.want {
			t.Errorf("filenameStem(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
