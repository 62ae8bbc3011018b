package imageutil

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// ErrUnsupportedFormat is returned when no encoder exists for a format name.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// encoders maps a normalised format name to its encoder.
var encoders = map[string]func(io.Writer, image.Image) error{
	"png": png.Encode,
	"jpeg": func(w io.Writer, img image.Image) error {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	},
	"gif": func(w io.Writer, img image.Image) error {
		return gif.Encode(w, img, nil)
	},
	"bmp": bmp.Encode,
	"tiff": func(w io.Writer, img image.Image) error {
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	},
}

// NormalizeFormat maps a format name or file extension ("JPG", ".tif") to
// the canonical encoder name. It returns ErrUnsupportedFormat if the format
// cannot be written; decode-only formats such as webp fall in that class.
func NormalizeFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	switch f {
	case "jpg":
		f = "jpeg"
	case "tif":
		f = "tiff"
	}
	if _, ok := encoders[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return f, nil
}

// LoadImage loads an image from the specified path.
// Supports PNG, JPEG, GIF, TIFF, BMP and WebP formats.
func LoadImage(path string) (*RGBAImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return RGBAImageFromImage(img), nil
}

// SaveImage saves an image to the specified path.
// Format is determined by file extension, defaulting to PNG.
func SaveImage(img image.Image, path string) error {
	format, err := NormalizeFormat(filepath.Ext(path))
	if err != nil {
		format = "png"
	}
	return SaveImageFormat(img, path, format)
}

// SaveImageFormat saves an image to path using the named format.
func SaveImageFormat(img image.Image, path, format string) error {
	name, err := NormalizeFormat(format)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := encoders[name](f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return f.Close()
}

// SavePNG saves an image as PNG to the specified path.
func SavePNG(img image.Image, path string) error {
	return SaveImageFormat(img, path, "png")
}
