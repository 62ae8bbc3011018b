package img2ascii

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/wbrown/img2ascii/imageutil"
)

func TestComputeHistogram(t *testing.T) {
	values := []float64{0, 0, 1, 2, 3, 4, 5, 6, 7, 765}
	h, err := ComputeHistogram(values, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Counts) != 10 || len(h.Dividers) != 11 {
		t.Fatalf("Expected 10 bins and 11 dividers, got %d and %d", len(h.Counts), len(h.Dividers))
	}
	if h.total() != float64(len(values)) {
		t.Errorf("Expected %d values binned, got %v", len(values), h.total())
	}
	if h.Counts[0] != 9 {
		t.Errorf("Expected 9 values in the first bin, got %v", h.Counts[0])
	}
	if h.Counts[9] != 1 {
		t.Errorf("Expected the maximum in the last bin, got %v", h.Counts[9])
	}
	if h.Max() != 9 {
		t.Errorf("Expected peak 9, got %v", h.Max())
	}
	if h.Dividers[0] != 0 || h.Dividers[10] <= 765 {
		t.Errorf("Dividers %v do not cover [0, 765]", h.Dividers)
	}
}

func TestComputeHistogramSingleValue(t *testing.T) {
	h, err := ComputeHistogram([]float64{42, 42, 42}, DefaultHistogramBins)
	if err != nil {
		t.Fatal(err)
	}
	if h.Counts[0] != 3 || h.total() != 3 {
		t.Errorf("Expected all values in the first bin, got %v", h.Counts)
	}
}

func TestComputeHistogramEmpty(t *testing.T) {
	if _, err := ComputeHistogram(nil, 5); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestComputeHistogramDoesNotModifyInput(t *testing.T) {
	values := []float64{5, 3, 9, 1}
	orig := slices.Clone(values)
	if _, err := ComputeHistogram(values, 4); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(values, orig) {
		t.Errorf("Input reordered: %v", values)
	}
}

func TestHistogramWriteText(t *testing.T) {
	h, err := ComputeHistogram([]float64{0, 0, 0, 0, 10}, 2)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := h.WriteText(&buf, 8); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[0], " ########") {
		t.Errorf("Peak bin should have a full bar: %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], " ##") {
		t.Errorf("Expected a quarter bar: %q", lines[1])
	}
}

func TestHistogramPlotter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "histogram.png")
	var out bytes.Buffer
	p := HistogramPlotter{Bins: 20, Path: path, Out: &out}

	values := ExtractBrightness(imageutil.CreateGradientImage(64, 8), SumMethod{})
	orig := slices.Clone(values)
	if err := p.Plot(values); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(values, orig) {
		t.Error("Plot modified the brightness values")
	}

	img, err := imageutil.LoadImage(path)
	if err != nil {
		t.Fatalf("Histogram image not readable: %v", err)
	}
	if img.Width() == 0 || img.Height() == 0 {
		t.Error("Histogram image is empty")
	}
	if !strings.HasPrefix(out.String(), "Brightness Histogram\n") {
		t.Errorf("Unexpected text output %q", out.String())
	}
	if n := strings.Count(out.String(), "\n"); n != 21 {
		t.Errorf("Expected title and 20 bins, got %d lines", n)
	}
}

func TestHistogramPlotterUnwritable(t *testing.T) {
	p := HistogramPlotter{Path: filepath.Join(t.TempDir(), "nope", "h.png")}
	if err := p.Plot([]float64{1, 2, 3}); !errors.Is(err, ErrIO) {
		t.Errorf("Expected ErrIO, got %v", err)
	}
	if _, err := os.Stat(p.Path); !os.IsNotExist(err) {
		t.Error("No histogram should have been written")
	}
}
