package img2ascii

import (
	"fmt"
	"image"
	"image/draw"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/golang/freetype"
	"github.com/wbrown/img2ascii/imageutil"
	"golang.org/x/image/font"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultHistogramBins is the bin count used when a plotter does not set one.
const DefaultHistogramBins = 50

// Plotter observes the brightness sequence before it is clustered. A
// Plotter must not modify values.
type Plotter interface {
	Plot(values []float64) error
}

// Histogram holds bin counts; bin i covers [Dividers[i], Dividers[i+1]).
type Histogram struct {
	Dividers []float64
	Counts   []float64
}

// ComputeHistogram bins values into equal-width bins spanning their range.
func ComputeHistogram(values []float64, bins int) (Histogram, error) {
	if len(values) == 0 {
		return Histogram{}, fmt.Errorf("%w: no values to bin", ErrInvalidInput)
	}
	if bins < 1 {
		bins = DefaultHistogramBins
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi == lo {
		hi = lo + 1
	} else {
		// the last divider must lie strictly above the maximum
		hi = math.Nextafter(hi, math.Inf(1))
	}

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	dividers[bins] = hi
	counts := stat.Histogram(make([]float64, bins), dividers, sorted, nil)
	return Histogram{Dividers: dividers, Counts: counts}, nil
}

// Max returns the largest bin count.
func (h Histogram) Max() float64 {
	if len(h.Counts) == 0 {
		return 0
	}
	return floats.Max(h.Counts)
}

// total returns the number of binned values.
func (h Histogram) total() float64 {
	return floats.Sum(h.Counts)
}

// WriteText draws the histogram as horizontal bars of at most width '#'.
func (h Histogram) WriteText(w io.Writer, width int) error {
	peak := h.Max()
	for i, c := range h.Counts {
		bar := 0
		if peak > 0 {
			bar = int(math.Round(c / peak * float64(width)))
		}
		_, err := fmt.Fprintf(w, "%8.1f - %8.1f %7d %s\n",
			h.Dividers[i], h.Dividers[i+1], int(c), strings.Repeat("#", bar))
		if err != nil {
			return err
		}
	}
	return nil
}

// Image renders the histogram as a gray bar chart with a title.
func (h Histogram) Image(title string) (*imageutil.RGBAImage, error) {
	const (
		barWidth   = 8
		plotHeight = 200
		margin     = 16
		titleSpace = 24
	)
	bins := len(h.Counts)
	width := bins*barWidth + 2*margin
	height := plotHeight + titleSpace + 2*margin

	img := imageutil.NewRGBAImage(width, height)
	white := imageutil.RGB{R: 255, G: 255, B: 255}.ToColor()
	gray := imageutil.RGB{R: 128, G: 128, B: 128}.ToColor()
	black := imageutil.RGB{}.ToColor()
	draw.Draw(img.RGBA, img.Bounds(), &image.Uniform{white}, image.Point{}, draw.Src)

	baseline := margin + titleSpace + plotHeight
	peak := h.Max()
	for i, c := range h.Counts {
		if peak == 0 || c == 0 {
			continue
		}
		barHeight := max(int(math.Round(c/peak*plotHeight)), 1)
		x0 := margin + i*barWidth
		rect := image.Rect(x0, baseline-barHeight, x0+barWidth-1, baseline)
		draw.Draw(img.RGBA, rect, &image.Uniform{gray}, image.Point{}, draw.Src)
	}
	axis := image.Rect(margin, baseline, width-margin, baseline+1)
	draw.Draw(img.RGBA, axis, &image.Uniform{black}, image.Point{}, draw.Src)

	ttf, err := loadFont("")
	if err != nil {
		return nil, err
	}
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(ttf)
	ctx.SetFontSize(14)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img.RGBA)
	ctx.SetSrc(image.Black)
	ctx.SetHinting(font.HintingFull)
	if _, err := ctx.DrawString(title, freetype.Pt(margin, margin+14)); err != nil {
		return nil, fmt.Errorf("failed to draw title: %w", err)
	}
	return img, nil
}

// HistogramPlotter writes a brightness histogram as a PNG chart to Path
// and as text bars to Out. Either may be left empty.
type HistogramPlotter struct {
	Bins int
	Path string
	Out  io.Writer
}

func (p HistogramPlotter) Plot(values []float64) error {
	h, err := ComputeHistogram(values, p.Bins)
	if err != nil {
		return err
	}
	if p.Out != nil {
		fmt.Fprintln(p.Out, "Brightness Histogram")
		if err := h.WriteText(p.Out, 50); err != nil {
			return fmt.Errorf("%w: failed to write histogram: %w", ErrIO, err)
		}
	}
	if p.Path != "" {
		img, err := h.Image("Brightness Histogram")
		if err != nil {
			return err
		}
		if err := imageutil.SavePNG(img, p.Path); err != nil {
			return fmt.Errorf("%w: failed to write histogram: %w", ErrIO, err)
		}
	}
	return nil
}
