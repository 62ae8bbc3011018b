package img2ascii

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/wbrown/img2ascii/imageutil"
)

// Stats records where the time went in the last conversion and how the
// clustering behaved.
type Stats struct {
	SourceWidth, SourceHeight int
	Width, Height             int
	LoadTime                  time.Duration
	ResizeTime                time.Duration
	ClusterTime               time.Duration
	RenderTime                time.Duration
	Iterations                int
	Inertia                   float64
	Centroids                 []float64
}

// Converter holds the configuration of the image to ASCII pipeline. A
// Converter is not safe for concurrent use; its stats describe the most
// recent conversion.
type Converter struct {
	// Scale is the integer divisor applied to both image dimensions.
	Scale int
	// Ramp lists the glyphs densest first; its length is the cluster count.
	Ramp             Ramp
	Clusterer        Clusterer
	BrightnessMethod BrightnessMethod
	Interpolation    imageutil.Interpolation

	// IntermediateFormat, when set, persists the resized image to
	// IntermediatePath in that format.
	IntermediateFormat string
	IntermediatePath   string
	// ReloadIntermediate clusters the re-decoded intermediate file instead
	// of the in-memory buffer.
	ReloadIntermediate bool

	// Plotter, when set, observes the brightness sequence.
	Plotter Plotter

	// PreviewPath, when set, receives a PNG rendering of the grid.
	PreviewPath  string
	PreviewScale int
	PreviewFont  string

	Logger *slog.Logger

	stats Stats
}

// ConverterOption is a functional option for configuring a Converter.
type ConverterOption func(*Converter)

// NewConverter creates a Converter with the given options.
// Default values: Scale=1, Ramp=DefaultRamp, Clusterer=NewKMeans(DefaultSeed),
// BrightnessMethod=SumMethod{}, Interpolation=InterpolationArea, no
// intermediate file, no plotter, no preview, and a logger that discards.
func NewConverter(opts ...ConverterOption) *Converter {
	c := &Converter{
		Scale:            1,
		Ramp:             DefaultRamp,
		Clusterer:        NewKMeans(DefaultSeed),
		BrightnessMethod: SumMethod{},
		Interpolation:    imageutil.InterpolationArea,
		PreviewScale:     2,
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithScale sets the downscale divisor.
func WithScale(scale int) ConverterOption {
	return func(c *Converter) {
		c.Scale = scale
	}
}

// WithRamp sets the glyph ramp, densest glyph first.
func WithRamp(ramp Ramp) ConverterOption {
	return func(c *Converter) {
		c.Ramp = ramp
	}
}

// WithSeed replaces the clusterer with a k-means clusterer using seed.
func WithSeed(seed uint64) ConverterOption {
	return func(c *Converter) {
		c.Clusterer = NewKMeans(seed)
	}
}

// WithClusterer sets the clustering algorithm.
func WithClusterer(clusterer Clusterer) ConverterOption {
	return func(c *Converter) {
		c.Clusterer = clusterer
	}
}

// WithBrightnessMethod sets how a pixel is reduced to a brightness value.
func WithBrightnessMethod(method BrightnessMethod) ConverterOption {
	return func(c *Converter) {
		c.BrightnessMethod = method
	}
}

// WithInterpolation sets the resampling kernel used when downscaling.
func WithInterpolation(interp imageutil.Interpolation) ConverterOption {
	return func(c *Converter) {
		c.Interpolation = interp
	}
}

// WithIntermediate persists the resized image to path in format. A format
// without an encoder (webp is decode-only) logs a warning and is skipped.
func WithIntermediate(format, path string) ConverterOption {
	return func(c *Converter) {
		c.IntermediateFormat = format
		c.IntermediatePath = path
	}
}

// WithReloadIntermediate makes the pipeline re-read the persisted resized
// image before extracting brightness.
func WithReloadIntermediate(reload bool) ConverterOption {
	return func(c *Converter) {
		c.ReloadIntermediate = reload
	}
}

// WithPlotter sets the diagnostic plotter; nil disables plotting.
func WithPlotter(p Plotter) ConverterOption {
	return func(c *Converter) {
		c.Plotter = p
	}
}

// WithPreview writes a PNG rendering of the grid to path. fontPath may be
// empty for the embedded Go Mono font.
func WithPreview(path string, scale int, fontPath string) ConverterOption {
	return func(c *Converter) {
		c.PreviewPath = path
		c.PreviewScale = scale
		c.PreviewFont = fontPath
	}
}

// WithLogger sets the logger used for debug and warning output.
func WithLogger(logger *slog.Logger) ConverterOption {
	return func(c *Converter) {
		c.Logger = logger
	}
}

// Stats returns statistics for the most recent conversion.
func (c *Converter) Stats() Stats {
	return c.stats
}

// validate checks configuration that can be rejected before touching any
// file.
func (c *Converter) validate() error {
	if c.Scale < 1 {
		return fmt.Errorf("%w: %w: got %d", ErrInvalidInput, imageutil.ErrInvalidScale, c.Scale)
	}
	if c.IntermediateFormat != "" && c.IntermediatePath == "" {
		return fmt.Errorf("%w: intermediate format %q set without a path",
			ErrInvalidInput, c.IntermediateFormat)
	}
	if c.Clusterer == nil {
		return fmt.Errorf("%w: no clusterer configured", ErrInvalidInput)
	}
	return nil
}

// ImageToGrid runs the pipeline from the image at imagePath up to the
// finished character grid. Nothing is written except the optional
// intermediate image and histogram.
func (c *Converter) ImageToGrid(imagePath string) (*Grid, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.stats = Stats{}
	logger := c.logger()

	start := time.Now()
	src, err := imageutil.LoadImage(imagePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, imagePath, err)
	}
	c.stats.LoadTime = time.Since(start)
	c.stats.SourceWidth, c.stats.SourceHeight = src.Width(), src.Height()

	start = time.Now()
	resized, err := c.resize(src)
	if err != nil {
		return nil, err
	}
	c.stats.ResizeTime = time.Since(start)
	c.stats.Width, c.stats.Height = resized.Width(), resized.Height()
	logger.Debug("resized image",
		"source", fmt.Sprintf("%dx%d", src.Width(), src.Height()),
		"target", fmt.Sprintf("%dx%d", resized.Width(), resized.Height()),
		"interpolation", c.Interpolation.String())

	return c.imageToGrid(resized)
}

// imageToGrid clusters the brightness of an already resized image.
func (c *Converter) imageToGrid(resized *imageutil.RGBAImage) (*Grid, error) {
	logger := c.logger()
	values := ExtractBrightness(resized, c.BrightnessMethod)

	if c.Plotter != nil {
		if err := c.Plotter.Plot(values); err != nil {
			logger.Warn("histogram failed", "error", err)
		}
	}

	start := time.Now()
	assignment, err := c.Clusterer.Cluster(values, len(c.Ramp))
	if err != nil {
		return nil, err
	}
	c.stats.ClusterTime = time.Since(start)
	c.stats.Iterations = assignment.Iterations
	c.stats.Inertia = assignment.Inertia
	c.stats.Centroids = assignment.Centroids
	logger.Debug("clustered brightness",
		"method", c.Clusterer.Name(),
		"k", len(c.Ramp),
		"iterations", assignment.Iterations,
		"inertia", assignment.Inertia,
		"centroids", assignment.Centroids)

	start = time.Now()
	glyphs, err := MapPopulated(assignment, c.Ramp)
	if err != nil {
		return nil, err
	}
	grid, err := NewGrid(assignment.Labels, glyphs, resized.Width(), resized.Height())
	if err != nil {
		return nil, err
	}
	c.stats.RenderTime = time.Since(start)
	return grid, nil
}

// resize downscales src and, when configured, round-trips it through the
// intermediate file.
func (c *Converter) resize(src *imageutil.RGBAImage) (*imageutil.RGBAImage, error) {
	resized, err := imageutil.Downscale(src, c.Scale, c.Interpolation)
	if err != nil {
		if errors.Is(err, imageutil.ErrInvalidScale) || errors.Is(err, imageutil.ErrEmptyResult) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return nil, err
	}

	if c.IntermediateFormat == "" {
		return resized, nil
	}
	err = imageutil.SaveImageFormat(resized, c.IntermediatePath, c.IntermediateFormat)
	if errors.Is(err, imageutil.ErrUnsupportedFormat) {
		// the intermediate is optional; clustering uses the in-memory copy
		c.logger().Warn("no encoder for intermediate format, not saving",
			"format", c.IntermediateFormat, "path", c.IntermediatePath)
		return resized, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: intermediate %s: %w", ErrIO, c.IntermediatePath, err)
	}
	c.logger().Debug("saved intermediate image", "path", c.IntermediatePath)
	if !c.ReloadIntermediate {
		return resized, nil
	}
	reloaded, err := imageutil.LoadImage(c.IntermediatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: intermediate %s: %w", ErrIO, c.IntermediatePath, err)
	}
	return reloaded, nil
}

// Convert renders the image at imagePath and writes the text grid to
// outputPath. The output file is only created once the grid is complete.
func (c *Converter) Convert(imagePath, outputPath string) error {
	grid, err := c.ImageToGrid(imagePath)
	if err != nil {
		return err
	}
	if err := grid.Save(outputPath); err != nil {
		return err
	}
	c.logger().Debug("wrote output", "path", outputPath,
		"lines", grid.Height, "columns", grid.Width)
	return c.WritePreview(grid)
}

// WritePreview renders grid to PreviewPath as PNG. It does nothing when no
// preview path is configured.
func (c *Converter) WritePreview(grid *Grid) error {
	if c.PreviewPath == "" {
		return nil
	}
	fb, err := LoadFontBitmaps(c.PreviewFont)
	if err != nil {
		return err
	}
	c.logger().Debug("rendering preview", "font", fb.Name(),
		"scale", c.PreviewScale, "path", c.PreviewPath)
	return SavePreview(grid, fb, c.PreviewScale, c.PreviewPath)
}

// logger never returns nil so a zero Converter is usable.
func (c *Converter) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Logger
}

// Convert converts the image at imagePath to ASCII art at outputPath using
// the default ramp and a k-means clusterer seeded with DefaultSeed.
//
// A non-empty intermediateFormat writes the resized image to
// "resized.<format>" next to outputPath. When visualize is set a 50-bin
// brightness histogram is written to "histogram.png" next to outputPath;
// it has no effect on the text output.
func Convert(imagePath, intermediateFormat, outputPath string, scale int, visualize bool) error {
	dir := filepath.Dir(outputPath)
	opts := []ConverterOption{WithScale(scale)}
	if intermediateFormat != "" {
		opts = append(opts, WithIntermediate(intermediateFormat,
			filepath.Join(dir, "resized."+intermediateFormat)))
	}
	if visualize {
		opts = append(opts, WithPlotter(HistogramPlotter{
			Bins: DefaultHistogramBins,
			Path: filepath.Join(dir, "histogram.png"),
		}))
	}
	return NewConverter(opts...).Convert(imagePath, outputPath)
}
