package img2ascii

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/wbrown/img2ascii/imageutil"
)

// BrightnessMethod reduces a pixel to a single brightness value. Only the
// ordering of values matters to the clusterer, so methods may use
// different ranges.
type BrightnessMethod interface {
	Name() string
	Brightness(c color.RGBA) float64
}

// SumMethod is the sum of the red, green and blue channels, in [0, 765].
// Alpha is not included.
type SumMethod struct{}

func (SumMethod) Name() string { return "sum" }

func (SumMethod) Brightness(c color.RGBA) float64 {
	return float64(int(c.R) + int(c.G) + int(c.B))
}

// LumaMethod is BT.601 luma, Y = 0.299*R + 0.587*G + 0.114*B, in [0, 255].
type LumaMethod struct{}

func (LumaMethod) Name() string { return "luma" }

func (LumaMethod) Brightness(c color.RGBA) float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// LightnessMethod is CIE L* (D65), in [0, 100]. It tracks perceived
// lightness more closely than either channel sum or luma.
type LightnessMethod struct{}

func (LightnessMethod) Name() string { return "lightness" }

func (LightnessMethod) Brightness(c color.RGBA) float64 {
	c.A = 255
	col, _ := colorful.MakeColor(c)
	l, _, _ := col.Lab()
	return l * 100
}

// ParseBrightnessMethod returns the method registered under name.
func ParseBrightnessMethod(name string) (BrightnessMethod, error) {
	switch name {
	case "sum", "":
		return SumMethod{}, nil
	case "luma":
		return LumaMethod{}, nil
	case "lightness", "lab":
		return LightnessMethod{}, nil
	}
	return nil, fmt.Errorf("%w: unknown brightness method %q", ErrInvalidInput, name)
}

// ExtractBrightness visits every pixel of img once in row-major order and
// returns its brightness. Index i corresponds to x = i % width,
// y = i / width.
func ExtractBrightness(img *imageutil.RGBAImage, method BrightnessMethod) []float64 {
	if method == nil {
		method = SumMethod{}
	}
	width, height := img.Width(), img.Height()
	values := make([]float64, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			values = append(values, method.Brightness(img.RGBAAt(x, y)))
		}
	}
	return values
}
