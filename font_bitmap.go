package img2ascii

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/wbrown/img2ascii/imageutil"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

const (
	// GlyphWidth and GlyphHeight define the character cell size of a preview
	GlyphWidth  = 8
	GlyphHeight = 8
)

// GlyphBitmap represents an 8x8 character as a 64-bit integer
// Each bit represents a pixel: 1 = ink, 0 = paper
type GlyphBitmap uint64

// FontBitmaps holds pre-rendered character bitmaps for a font
type FontBitmaps struct {
	glyphs map[rune]GlyphBitmap
	name   string
}

// getBit checks if a specific bit is set in the bitmap
func (g GlyphBitmap) getBit(x, y int) bool {
	if x < 0 || x >= GlyphWidth || y < 0 || y >= GlyphHeight {
		return false
	}
	return g&(1<<(y*GlyphWidth+x)) != 0
}

// setBit sets a specific bit in the bitmap
func (g *GlyphBitmap) setBit(x, y int, value bool) {
	if x < 0 || x >= GlyphWidth || y < 0 || y >= GlyphHeight {
		return
	}
	pos := y*GlyphWidth + x
	if value {
		*g |= 1 << pos
	} else {
		*g &= ^(1 << pos)
	}
}

// coverage returns the number of ink pixels in the glyph.
func (g GlyphBitmap) coverage() int {
	n := 0
	for y := 0; y < GlyphHeight; y++ {
		for x := 0; x < GlyphWidth; x++ {
			if g.getBit(x, y) {
				n++
			}
		}
	}
	return n
}

// LoadFontBitmaps rasterises the printable ASCII range from a TrueType file.
// An empty path selects the embedded Go Mono font.
func LoadFontBitmaps(path string) (*FontBitmaps, error) {
	name := path
	if path == "" {
		name = "gomono"
	}
	ttf, err := loadFont(path)
	if err != nil {
		return nil, err
	}

	fb := &FontBitmaps{
		glyphs: make(map[rune]GlyphBitmap),
		name:   name,
	}
	for r := rune(32); r <= rune(126); r++ {
		fb.glyphs[r] = renderGlyphToBitmap(ttf, r)
	}
	return fb, nil
}

// loadFont loads a TrueType font from file, or Go Mono when path is empty.
func loadFont(path string) (*truetype.Font, error) {
	fontBytes := gomono.TTF
	if path != "" {
		var err error
		fontBytes, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read font: %w", ErrIO, err)
		}
	}

	ttf, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse font: %w", ErrInvalidInput, err)
	}
	return ttf, nil
}

// renderGlyphToBitmap renders a single glyph to an 8x8 bitmap.
//
// Coverage is read from an alpha image and thresholded at 25% (64/255).
// The baseline comes from the face metrics so descenders stay in the cell.
func renderGlyphToBitmap(ttf *truetype.Font, r rune) GlyphBitmap {
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    float64(GlyphHeight),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	img := image.NewAlpha(image.Rect(0, 0, GlyphWidth, GlyphHeight))

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(ttf)
	ctx.SetFontSize(float64(GlyphHeight))
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.White)
	ctx.SetHinting(font.HintingFull)

	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()
	baselineY := (GlyphHeight + ascent - descent) / 2

	ctx.DrawString(string(r), freetype.Pt(0, baselineY))

	var bitmap GlyphBitmap
	for y := 0; y < GlyphHeight; y++ {
		for x := 0; x < GlyphWidth; x++ {
			if img.AlphaAt(x, y).A > 64 {
				bitmap.setBit(x, y, true)
			}
		}
	}
	return bitmap
}

// GetGlyph returns the bitmap for a character
func (fb *FontBitmaps) GetGlyph(r rune) (GlyphBitmap, bool) {
	bitmap, exists := fb.glyphs[r]
	return bitmap, exists
}

// Name returns the font the bitmaps were rendered from.
func (fb *FontBitmaps) Name() string {
	return fb.name
}

// RenderGrid draws the grid as dark ink on light paper, each cell
// GlyphWidth*scale by GlyphHeight*scale pixels. Glyphs missing from the font
// render as blank paper.
func (fb *FontBitmaps) RenderGrid(grid *Grid, scale int) *imageutil.RGBAImage {
	if scale < 1 {
		scale = 1
	}
	cellW, cellH := GlyphWidth*scale, GlyphHeight*scale
	img := imageutil.NewRGBAImage(grid.Width*cellW, grid.Height*cellH)
	paper := imageutil.RGB{R: 255, G: 255, B: 255}
	ink := imageutil.RGB{}
	draw.Draw(img.RGBA, img.Bounds(), &image.Uniform{paper.ToColor()}, image.Point{}, draw.Src)

	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			bitmap, ok := fb.GetGlyph(grid.At(x, y))
			if !ok {
				continue
			}
			fb.renderBitmap(img, bitmap, x*cellW, y*cellH, scale, ink.ToColor())
		}
	}
	return img
}

// renderBitmap renders the ink pixels of a GlyphBitmap with scaling
func (fb *FontBitmaps) renderBitmap(img *imageutil.RGBAImage, bitmap GlyphBitmap, startX, startY, scale int, ink color.Color) {
	for y := 0; y < GlyphHeight; y++ {
		for x := 0; x < GlyphWidth; x++ {
			if !bitmap.getBit(x, y) {
				continue
			}
			rect := image.Rect(startX+x*scale, startY+y*scale,
				startX+(x+1)*scale, startY+(y+1)*scale)
			draw.Draw(img.RGBA, rect, &image.Uniform{ink}, image.Point{}, draw.Src)
		}
	}
}

// SavePreview renders grid with fb and writes it to path. The encoder is
// chosen from the extension, PNG when it has none or an unknown one.
func SavePreview(grid *Grid, fb *FontBitmaps, scale int, path string) error {
	if err := imageutil.SaveImage(fb.RenderGrid(grid, scale), path); err != nil {
		return fmt.Errorf("%w: failed to write preview: %w", ErrIO, err)
	}
	return nil
}
