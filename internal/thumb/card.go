package thumb

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	cardWidth  = 400
	cardHeight = 300
	cardMargin = 24.0
)

// palette for cover card backgrounds; picked deterministically per title.
var palette = []color.NRGBA{
	{R: 0x2f, G: 0x4f, B: 0x6f, A: 0xff},
	{R: 0x4a, G: 0x3f, B: 0x6b, A: 0xff},
	{R: 0x3d, G: 0x5a, B: 0x45, A: 0xff},
	{R: 0x6b, G: 0x43, B: 0x3a, A: 0xff},
	{R: 0x44, G: 0x44, B: 0x55, A: 0xff},
}

// renderCard draws a simple cover card with the paper title, used when a
// PDF carries no suitable embedded image.
func renderCard(title string) (image.Image, error) {
	if title == "" {
		title = "Untitled"
	}

	tf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	dc := gg.NewContext(cardWidth, cardHeight)

	dc.SetColor(pickColor(title))
	dc.Clear()

	// Accent bar along the top edge
	dc.SetColor(color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x59})
	dc.DrawRectangle(0, 0, cardWidth, 8)
	dc.Fill()

	dc.SetFontFace(truetype.NewFace(tf, &truetype.Options{
		Size:    20,
		DPI:     72,
		Hinting: xfont.HintingNone,
	}))
	dc.SetColor(color.White)

	if len(title) > 160 {
		title = title[:160]
	}
	dc.DrawStringWrapped(title, cardMargin, cardMargin*2, 0, 0,
		cardWidth-2*cardMargin, 1.4, gg.AlignLeft)

	dc.SetFontFace(truetype.NewFace(tf, &truetype.Options{
		Size:    13,
		DPI:     72,
		Hinting: xfont.HintingNone,
	}))
	dc.SetColor(color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xb3})
	dc.DrawString("PDF", cardMargin, cardHeight-cardMargin)

	return dc.Image(), nil
}

func pickColor(title string) color.NRGBA {
	sum := 0
	for _, r := range title {
		sum += int(r)
	}
	return palette[sum%len(palette)]
}
