package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wbrown/img2ascii"
	"github.com/wbrown/img2ascii/imageutil"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("asciify", flag.ContinueOnError)
	inputFile := fs.String("input", "",
		"Path to the input image file (required)")
	outputFile := fs.String("output", "",
		"Path to save the ASCII art (if not specified, prints to stdout)")
	scale := fs.Int("scale", 3,
		"Integer factor to downscale the image by")
	format := fs.String("format", "",
		"Save the resized image as resized.<format> next to the output "+
			"(png, jpg, gif, bmp, tiff; others are skipped with a warning)")
	reload := fs.Bool("reload", false,
		"Cluster the re-read intermediate image instead of the in-memory copy")
	visualize := fs.Bool("visualize", false,
		"Write a brightness histogram (histogram.png and text on stderr)")
	bins := fs.Int("bins", img2ascii.DefaultHistogramBins,
		"Number of histogram bins")
	ramp := fs.String("ramp", img2ascii.DefaultRamp.String(),
		"Glyphs from darkest to lightest; its length is the cluster count")
	seed := fs.Uint64("seed", img2ascii.DefaultSeed,
		"Random seed for k-means initialisation")
	method := fs.String("method", "kmeans",
		"Clustering method: kmeans or quantile")
	brightness := fs.String("brightness", "sum",
		"Brightness measure: sum, luma, or lightness")
	interp := fs.String("interp", "area",
		"Resampling kernel: area, linear, or nearest")
	preview := fs.String("preview", "",
		"Also render the ASCII art to this PNG file")
	fontPath := fs.String("font", "",
		"TTF font for -preview (default: embedded Go Mono)")
	fontScale := fs.Int("fontscale", 2,
		"Preview scaling factor (1 = 8x8 cells, 2 = 16x16, etc.)")
	verbose := fs.Bool("v", false,
		"Log pipeline details to stderr")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	// Validate required flags
	if *inputFile == "" {
		fmt.Fprintln(os.Stderr, "Please provide the image using the -input flag")
		fs.PrintDefaults()
		return 2
	}

	if *reload && *format == "" {
		fmt.Fprintln(os.Stderr, "The -reload flag needs an intermediate -format")
		return 2
	}

	r, err := img2ascii.ParseRamp(*ramp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid ramp: %v\n", err)
		return 2
	}
	clusterer, err := img2ascii.ParseClusterer(strings.ToLower(*method), *seed)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Invalid clustering method, options are kmeans or quantile")
		return 2
	}
	bm, err := img2ascii.ParseBrightnessMethod(strings.ToLower(*brightness))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Invalid brightness method, options are sum, luma, or lightness")
		return 2
	}
	ip, err := imageutil.ParseInterpolation(strings.ToLower(*interp))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Invalid interpolation, options are area, linear, or nearest")
		return 2
	}

	// Side files go next to the output, or the working directory for stdout
	dir := "."
	if *outputFile != "" {
		dir = filepath.Dir(*outputFile)
	}

	opts := []img2ascii.ConverterOption{
		img2ascii.WithScale(*scale),
		img2ascii.WithRamp(r),
		img2ascii.WithClusterer(clusterer),
		img2ascii.WithBrightnessMethod(bm),
		img2ascii.WithInterpolation(ip),
	}
	if *format != "" {
		opts = append(opts,
			img2ascii.WithIntermediate(*format, filepath.Join(dir, "resized."+*format)),
			img2ascii.WithReloadIntermediate(*reload))
	}
	if *visualize {
		opts = append(opts, img2ascii.WithPlotter(img2ascii.HistogramPlotter{
			Bins: *bins,
			Path: filepath.Join(dir, "histogram.png"),
			Out:  os.Stderr,
		}))
	}
	if *preview != "" {
		opts = append(opts, img2ascii.WithPreview(*preview, *fontScale, *fontPath))
	}
	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	opts = append(opts, img2ascii.WithLogger(slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))))

	conv := img2ascii.NewConverter(opts...)
	begin := time.Now()

	if *outputFile != "" {
		err = conv.Convert(*inputFile, *outputFile)
	} else {
		var grid *img2ascii.Grid
		grid, err = conv.ImageToGrid(*inputFile)
		if err == nil {
			_, err = grid.WriteTo(os.Stdout)
		}
		if err == nil {
			err = conv.WritePreview(grid)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error converting image: %v\n", err)
		if errors.Is(err, img2ascii.ErrInvalidInput) {
			return 2
		}
		return 1
	}

	stats := conv.Stats()
	if *outputFile != "" {
		fmt.Fprintf(os.Stderr, "Output written to %s\n", *outputFile)
	}
	if *preview != "" {
		fmt.Fprintf(os.Stderr, "PNG preview written to %s\n", *preview)
	}
	fmt.Fprintf(os.Stderr, "Image: %dx%d -> %dx%d characters\n",
		stats.SourceWidth, stats.SourceHeight, stats.Width, stats.Height)
	fmt.Fprintf(os.Stderr, "Clustering: %s, %d iterations, inertia %.1f\n",
		clusterer.Name(), stats.Iterations, stats.Inertia)
	fmt.Fprintf(os.Stderr, "Load time: %v, resize time: %v\n",
		stats.LoadTime, stats.ResizeTime)
	fmt.Fprintf(os.Stderr, "Cluster time: %v, render time: %v\n",
		stats.ClusterTime, stats.RenderTime)
	fmt.Fprintf(os.Stderr, "Total time: %v\n", time.Since(begin))
	return 0
}
