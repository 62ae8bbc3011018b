package imageutil

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestNewRGBAImage(t *testing.T) {
	img := NewRGBAImage(100, 50)
	if img.Width() != 100 {
		t.Errorf("Expected width 100, got %d", img.Width())
	}
	if img.Height() != 50 {
		t.Errorf("Expected height 50, got %d", img.Height())
	}
}

func TestRGBAImageGetSetRGB(t *testing.T) {
	img := NewRGBAImage(10, 10)
	c := RGB{R: 100, G: 150, B: 200}
	img.SetRGB(5, 5, c)

	got := img.GetRGB(5, 5)
	if got != c {
		t.Errorf("Expected %v, got %v", c, got)
	}
}

func TestRGBAImageClone(t *testing.T) {
	img := NewRGBAImage(10, 10)
	img.SetRGB(5, 5, RGB{R: 255, G: 0, B: 0})

	clone := img.Clone()
	if clone.GetRGB(5, 5) != img.GetRGB(5, 5) {
		t.Error("Clone should have same pixel values")
	}

	// Modify clone, original should be unchanged
	clone.SetRGB(5, 5, RGB{R: 0, G: 255, B: 0})
	if img.GetRGB(5, 5).G != 0 {
		t.Error("Modifying clone should not affect original")
	}
}

func TestRGBAImageFromImageRebasesBounds(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 20, 14, 23))
	src.SetNRGBA(10, 20, color.NRGBA{R: 9, G: 8, B: 7, A: 255})
	src.SetNRGBA(13, 22, color.NRGBA{R: 200, G: 100, B: 50, A: 0})

	img := RGBAImageFromImage(src)
	if img.Bounds().Min != (image.Point{}) {
		t.Fatalf("Expected origin-based bounds, got %v", img.Bounds())
	}
	if img.Width() != 4 || img.Height() != 3 {
		t.Fatalf("Expected 4x3, got %dx%d", img.Width(), img.Height())
	}
	if got := img.GetRGB(0, 0); got != (RGB{9, 8, 7}) {
		t.Errorf("Expected {9 8 7} at origin, got %v", got)
	}
	// Fully transparent pixels are premultiplied to black
	if got := img.GetRGB(3, 2); got != (RGB{}) {
		t.Errorf("Expected transparent pixel to read as black, got %v", got)
	}
}

func TestScaledSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h, scale  int
		wantW, wantH int
		wantErr      error
	}{
		{"identity", 7, 5, 1, 7, 5, nil},
		{"floor", 7, 5, 2, 3, 2, nil},
		{"exact", 6, 6, 2, 3, 3, nil},
		{"zero scale", 6, 6, 0, 0, 0, ErrInvalidScale},
		{"negative scale", 6, 6, -3, 0, 0, ErrInvalidScale},
		{"too large", 6, 20, 7, 0, 0, ErrEmptyResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := ScaledSize(tt.w, tt.h, tt.scale)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Expected %dx%d, got %dx%d", tt.wantW, tt.wantH, w, h)
			}
		})
	}
}

func TestResize(t *testing.T) {
	img := CreateGradientImage(100, 100)

	// Downscale
	resized := Resize(img, 50, 50, InterpolationArea)
	if resized.Width() != 50 || resized.Height() != 50 {
		t.Errorf("Expected 50x50, got %dx%d", resized.Width(), resized.Height())
	}

	// Upscale
	resized = Resize(img, 200, 200, InterpolationLinear)
	if resized.Width() != 200 || resized.Height() != 200 {
		t.Errorf("Expected 200x200, got %dx%d", resized.Width(), resized.Height())
	}
}

func TestDownscaleSolidStaysSolid(t *testing.T) {
	c := RGB{R: 40, G: 80, B: 120}
	img := CreateSolidImage(12, 9, c)

	for _, interp := range []Interpolation{InterpolationArea, InterpolationLinear, InterpolationNearest} {
		out, err := Downscale(img, 3, interp)
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", interp, err)
		}
		if out.Width() != 4 || out.Height() != 3 {
			t.Fatalf("%v: expected 4x3, got %dx%d", interp, out.Width(), out.Height())
		}
		for y := 0; y < out.Height(); y++ {
			for x := 0; x < out.Width(); x++ {
				if got := out.GetRGB(x, y); got != c {
					t.Fatalf("%v: pixel (%d,%d) = %v, want %v", interp, x, y, got, c)
				}
			}
		}
	}
}

func TestDownscaleIdentityCopies(t *testing.T) {
	img := CreateCheckerboardImage(8, 8, 2)
	out, err := Downscale(img, 1, InterpolationArea)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i := range img.Pix {
		if out.Pix[i] != img.Pix[i] {
			t.Fatalf("Scale 1 should not resample, byte %d differs", i)
		}
	}
	out.SetRGB(0, 0, RGB{1, 2, 3})
	if img.GetRGB(0, 0) == (RGB{1, 2, 3}) {
		t.Error("Downscale must not alias the source buffer")
	}
}

func TestDownscaleDeterministic(t *testing.T) {
	img := CreateGradientImage(97, 61)
	a, err := Downscale(img, 4, InterpolationArea)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Downscale(img, 4, InterpolationArea)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("Resampling is not deterministic at byte %d", i)
		}
	}
}

func TestParseInterpolation(t *testing.T) {
	for _, name := range []string{"area", "linear", "nearest"} {
		interp, err := ParseInterpolation(name)
		if err != nil {
			t.Fatalf("ParseInterpolation(%q): %v", name, err)
		}
		if interp.String() != name {
			t.Errorf("Round trip of %q gave %q", name, interp.String())
		}
	}
	if _, err := ParseInterpolation("lanczos"); err == nil {
		t.Error("Expected error for unknown interpolation")
	}
}

func TestNormalizeFormat(t *testing.T) {
	tests := map[string]string{
		"png":  "png",
		".PNG": "png",
		"jpg":  "jpeg",
		"JPEG": "jpeg",
		"tif":  "tiff",
		".bmp": "bmp",
		"gif":  "gif",
	}
	for in, want := range tests {
		got, err := NormalizeFormat(in)
		if err != nil {
			t.Errorf("NormalizeFormat(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("NormalizeFormat(%q) = %q, want %q", in, got, want)
		}
	}

	for _, in := range []string{"webp", "", "xcf"} {
		if _, err := NormalizeFormat(in); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("NormalizeFormat(%q): expected ErrUnsupportedFormat, got %v", in, err)
		}
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	img := CreateBandsImage(10, 4, []uint8{0, 128, 255})

	// Lossless formats should give the pixels back unchanged
	for _, format := range []string{"png", "bmp", "tiff"} {
		path := filepath.Join(dir, "resized."+format)
		if err := SaveImageFormat(img, path, format); err != nil {
			t.Fatalf("SaveImageFormat(%s): %v", format, err)
		}
		loaded, err := LoadImage(path)
		if err != nil {
			t.Fatalf("LoadImage(%s): %v", format, err)
		}
		if loaded.Width() != 10 || loaded.Height() != 4 {
			t.Fatalf("%s: expected 10x4, got %dx%d", format, loaded.Width(), loaded.Height())
		}
		for y := 0; y < 4; y++ {
			for x := 0; x < 10; x++ {
				if loaded.GetRGB(x, y) != img.GetRGB(x, y) {
					t.Fatalf("%s: pixel (%d,%d) differs", format, x, y)
				}
			}
		}
	}
}

func TestSaveImageByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.jpg")
	if err := SaveImage(CreateGradientImage(16, 16), path); err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	_, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if format != "jpeg" {
		t.Errorf("Expected jpeg encoding for .jpg, got %s", format)
	}
}

func TestLoadImageErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadImage(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("Expected error for missing file")
	}

	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImage(garbage); err == nil {
		t.Error("Expected error for undecodable file")
	}
}

func TestSaveImageFormatUnwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "x.png")
	if err := SaveImageFormat(CreateGradientImage(2, 2), path, "png"); err == nil {
		t.Error("Expected error writing into a missing directory")
	}
}

// TestSaveTestImages saves test images to testdata directory for visual inspection.
// Run with: SAVE_TEST_IMAGES=1 go test -run TestSaveTestImages -v
func TestSaveTestImages(t *testing.T) {
	if os.Getenv("SAVE_TEST_IMAGES") != "1" {
		t.Skip("Set SAVE_TEST_IMAGES=1 to generate test images")
	}

	testdataDir := "../testdata"
	os.MkdirAll(testdataDir, 0755)

	SaveImage(CreateGradientImage(256, 256).RGBA, filepath.Join(testdataDir, "gradient.png"))
	SaveImage(CreateVerticalGradientImage(256, 256).RGBA, filepath.Join(testdataDir, "vgradient.png"))
	SaveImage(CreateCheckerboardImage(256, 256, 32).RGBA, filepath.Join(testdataDir, "checkerboard.png"))
	SaveImage(CreateBandsImage(256, 64, []uint8{0, 64, 128, 192, 255}).RGBA, filepath.Join(testdataDir, "bands.png"))

	t.Log("Test images saved to testdata/")
}
