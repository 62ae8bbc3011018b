package img2ascii

import (
	"fmt"
	"slices"
)

// Ramp is an ordered set of glyphs, the one carrying the most ink first.
// Its length fixes the number of brightness clusters.
type Ramp []rune

// DefaultRamp runs from '#' (darkest) to a space (lightest).
var DefaultRamp = Ramp{'#', 'X', '%', '*', ' '}

// ParseRamp builds a Ramp from a string, densest glyph first. Glyphs must be
// single-column runes; newlines and duplicates are rejected.
func ParseRamp(s string) (Ramp, error) {
	r := Ramp(s)
	if len(r) == 0 {
		return nil, fmt.Errorf("%w: glyph ramp is empty", ErrInvalidInput)
	}
	seen := make(map[rune]bool, len(r))
	for _, g := range r {
		if g == '\n' || g == '\r' {
			return nil, fmt.Errorf("%w: glyph ramp contains a line break", ErrInvalidInput)
		}
		if seen[g] {
			return nil, fmt.Errorf("%w: glyph %q appears twice in ramp", ErrInvalidInput, g)
		}
		seen[g] = true
	}
	return r, nil
}

// Contains reports whether g is one of the ramp's glyphs.
func (r Ramp) Contains(g rune) bool {
	return slices.Contains(r, g)
}

func (r Ramp) String() string {
	return string(r)
}

// GlyphMap maps a cluster label (the index) to its glyph.
type GlyphMap []rune

// OrderByCentroid returns cluster labels sorted by ascending centroid, ties
// broken by the lower label.
func OrderByCentroid(centroids []float64) []int {
	order := make([]int, len(centroids))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case centroids[a] < centroids[b]:
			return -1
		case centroids[a] > centroids[b]:
			return 1
		}
		return 0
	})
	return order
}

// MapGlyphs gives the darkest centroid the first ramp glyph, the next
// darkest the second, and so on. The result depends only on its arguments.
func MapGlyphs(centroids []float64, ramp Ramp) (GlyphMap, error) {
	if len(centroids) > len(ramp) {
		return nil, fmt.Errorf("%w: %d clusters but only %d glyphs",
			ErrInvalidInput, len(centroids), len(ramp))
	}
	glyphs := make(GlyphMap, len(centroids))
	for rank, label := range OrderByCentroid(centroids) {
		glyphs[label] = ramp[rank]
	}
	return glyphs, nil
}

// MapPopulated is MapGlyphs for an assignment whose clusters may be empty.
// Only clusters holding at least one label are ranked, and their glyphs are
// spread evenly over the ramp so the darkest and lightest populated clusters
// take its first and last glyphs. When every cluster is populated the result
// equals MapGlyphs(a.Centroids, ramp). A single populated cluster takes the
// first glyph.
func MapPopulated(a Assignment, ramp Ramp) (GlyphMap, error) {
	glyphs, err := MapGlyphs(a.Centroids, ramp)
	if err != nil {
		return nil, err
	}

	populated := make([]bool, len(a.Centroids))
	for _, label := range a.Labels {
		if label >= 0 && label < len(populated) {
			populated[label] = true
		}
	}
	var used []int
	for _, label := range OrderByCentroid(a.Centroids) {
		if populated[label] {
			used = append(used, label)
		}
	}
	if len(used) == len(a.Centroids) {
		return glyphs, nil
	}

	last := len(ramp) - 1
	for rank, label := range used {
		pos := 0
		if len(used) > 1 {
			// rounded rank*last/(len(used)-1); distinct and increasing
			pos = (rank*last*2 + len(used) - 1) / (2 * (len(used) - 1))
		}
		glyphs[label] = ramp[pos]
	}
	return glyphs, nil
}
