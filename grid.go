package img2ascii

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Grid is a rendered character grid. Cells is row-major: the glyph for
// (x, y) lives at Cells[y*Width+x].
type Grid struct {
	Width  int
	Height int
	Cells  []rune
}

// NewGrid looks up the glyph of every label. labels must be row-major and
// hold exactly width*height entries.
func NewGrid(labels []int, glyphs GlyphMap, width, height int) (*Grid, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: grid size %dx%d", ErrInvalidInput, width, height)
	}
	if len(labels) != width*height {
		return nil, fmt.Errorf("%w: %d labels for a %dx%d grid",
			ErrInvalidInput, len(labels), width, height)
	}
	g := &Grid{Width: width, Height: height, Cells: make([]rune, len(labels))}
	for i, label := range labels {
		if label < 0 || label >= len(glyphs) {
			return nil, fmt.Errorf("%w: label %d at (%d,%d) has no glyph",
				ErrInvalidInput, label, i%width, i/width)
		}
		g.Cells[i] = glyphs[label]
	}
	return g, nil
}

// At returns the glyph at (x, y).
func (g *Grid) At(x, y int) rune {
	return g.Cells[y*g.Width+x]
}

// Row returns row y as a string, without a line terminator.
func (g *Grid) Row(y int) string {
	return string(g.Cells[y*g.Width : (y+1)*g.Width])
}

// String returns the grid as newline-terminated rows.
func (g *Grid) String() string {
	var sb strings.Builder
	g.WriteTo(&sb)
	return sb.String()
}

// WriteTo writes Height lines of Width glyphs, each followed by '\n'.
func (g *Grid) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for y := 0; y < g.Height; y++ {
		c, err := bw.WriteString(g.Row(y))
		n += int64(c)
		if err != nil {
			return n, err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return n, err
		}
		n++
	}
	return n, bw.Flush()
}

// Save writes the grid to path. The text goes to a temporary file next to
// path that is renamed into place once complete, so a failed write never
// leaves a truncated artifact behind.
func (g *Grid) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: failed to create output: %w", ErrIO, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := g.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: failed to write output: %w", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to write output: %w", ErrIO, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("%w: failed to write output: %w", ErrIO, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: failed to write output: %w", ErrIO, err)
	}
	return nil
}
