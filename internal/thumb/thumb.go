// Package thumb generates small preview images for indexed papers.
//
// It prefers the largest raster image embedded in the first few pages of
// the PDF; when none qualifies it renders a synthesized cover card. Every
// failure is soft: callers get an empty path and keep indexing.
package thumb

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/papershelf/papershelf/internal/paper"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/image/draw"
)

const (
	// searchPages is how many leading pages are scanned for embedded images.
	searchPages = 5

	// minImageSide rejects tiny strips and artifacts.
	minImageSide = 150

	// maxWidth is the output thumbnail width cap.
	maxWidth = 400
)

// Generator writes thumbnails into a directory.
type Generator struct {
	// Dir is the absolute thumbnails directory.
	Dir string
}

// NewGenerator creates a thumbnail generator rooted at dir.
func NewGenerator(dir string) *Generator {
	return &Generator{Dir: dir}
}

// Generate writes a thumbnail for the given PDF bytes and returns the
// file name (relative to the generator's directory). The stem seeds the
// file name; the title seeds the fallback cover card.
func (g *Generator) Generate(pdfBytes []byte, stem, title string) (string, error) {
	if err := os.MkdirAll(g.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating thumbs dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s.png", paper.FileSafe(stem, 60), uuid.New().String()[:8])
	outPath := filepath.Join(g.Dir, name)

	img := bestEmbeddedImage(pdfBytes)
	if img == nil {
		var err error
		img, err = renderCard(title)
		if err != nil {
			return "", fmt.Errorf("rendering cover card: %w", err)
		}
	}

	img = downscale(img, maxWidth)

	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("creating thumbnail file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("encoding thumbnail: %w", err)
	}

	return name, nil
}

// bestEmbeddedImage returns the largest decodable raster image from the
// first searchPages pages, or nil when none qualifies.
func bestEmbeddedImage(pdfBytes []byte) image.Image {
	rs := bytes.NewReader(pdfBytes)

	pageCount, err := api.PageCount(rs, nil)
	if err != nil || pageCount == 0 {
		return nil
	}
	pages := searchPages
	if pageCount < pages {
		pages = pageCount
	}

	if _, err := rs.Seek(0, 0); err != nil {
		return nil
	}
	extracted, err := api.ExtractImagesRaw(rs, []string{fmt.Sprintf("1-%d", pages)}, nil)
	if err != nil {
		return nil
	}

	var best image.Image
	bestArea := 0
	for _, pageImages := range extracted {
		for _, raw := range pageImages {
			img, _, err := image.Decode(raw)
			if err != nil {
				continue
			}
			b := img.Bounds()
			w, h := b.Dx(), b.Dy()
			if w < minImageSide || h < minImageSide {
				continue
			}
			// Reject extreme aspect ratios (banners, rules)
			ar := float64(w) / float64(h)
			if ar < 0.33 || ar > 3.0 {
				continue
			}
			if area := w * h; area > bestArea {
				best = img
				bestArea = area
			}
		}
	}

	return best
}

// downscale resizes img to at most width pixels wide, keeping aspect.
func downscale(img image.Image, width int) image.Image {
	b := img.Bounds()
	if b.Dx() <= width {
		return img
	}

	h := b.Dy() * width / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
