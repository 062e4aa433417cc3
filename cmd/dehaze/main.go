// Command dehaze removes atmospheric haze from images with the Dark Channel
// Prior.
//
// Usage:
//
//	dehaze -input hazy.jpg -output out/
//	dehaze -input frames/ -output out/ -config dehaze.yaml -workers 4 -maps
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nvr-ai/go-dehaze/haze"
	"github.com/nvr-ai/go-dehaze/images"
	"github.com/nvr-ai/go-dehaze/pipeline"
	"github.com/nvr-ai/go-dehaze/profiler"
	"github.com/nvr-ai/go-dehaze/util"
)

// options holds the command line settings that are not part of
// pipeline.Config.
type options struct {
	input         string
	outputDir     string
	configFile    string
	format        string
	maxResolution string
	workers       int
	saveMaps      bool
	logJSON       bool
	logLevel      string
	profile       bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "dehaze: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("dehaze", flag.ContinueOnError)
	defaults := pipeline.DefaultConfig()

	var (
		opts options
		cfg  = defaults
	)
	fs.StringVar(&opts.input, "input", "", "Image file or directory of images to dehaze")
	fs.StringVar(&opts.outputDir, "output", "dehazed", "Output directory")
	fs.StringVar(&opts.configFile, "config", "", "YAML or JSON config file; flags override it")
	fs.StringVar(&opts.format, "format", "png", "Output format (png, jpg, bmp, webp)")
	fs.StringVar(&opts.maxResolution, "max-resolution", "", "Downscale inputs to fit a working resolution (e.g. 720p, 1080p, 4k)")
	fs.IntVar(&opts.workers, "workers", runtime.NumCPU(), "Images processed concurrently in directory mode")
	fs.BoolVar(&opts.saveMaps, "maps", false, "Also write the dark channel, transmission and depth maps")
	fs.BoolVar(&opts.logJSON, "log-json", false, "Emit JSON logs instead of console output")
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.BoolVar(&opts.profile, "profile", false, "Print per-stage timing statistics when done")

	fs.IntVar(&cfg.PatchSize, "patch", defaults.PatchSize, "Dark channel patch size (odd)")
	fs.Float64Var(&cfg.Percentile, "percentile", defaults.Percentile, "Fraction of haziest pixels used for the airlight")
	fs.Float64Var(&cfg.Omega, "omega", defaults.Omega, "Haze removal strength")
	fs.Float64Var(&cfg.TransmissionFloor, "floor", defaults.TransmissionFloor, "Lower bound on transmission during recovery")
	fs.BoolVar(&cfg.EstimateDepth, "depth", defaults.EstimateDepth, "Estimate relative scene depth")
	fs.Float64Var(&cfg.Beta, "beta", defaults.Beta, "Scattering coefficient for depth estimation")
	fs.BoolVar(&cfg.ClampOutput, "clamp", defaults.ClampOutput, "Clamp recovered radiance to [0, 1]")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if opts.input == "" {
		return errors.New("input path is required (-input)")
	}

	logger, err := newLogger(opts.logJSON, opts.logLevel)
	if err != nil {
		return err
	}

	if opts.configFile != "" {
		fileCfg, err := pipeline.LoadConfig(opts.configFile)
		if err != nil {
			return err
		}
		cfg = mergeFlags(fs, fileCfg, cfg)
	}

	var resolution images.ResolutionPixels
	if opts.maxResolution != "" {
		if resolution, err = images.ParseResolution(opts.maxResolution); err != nil {
			return err
		}
	}
	if _, err := images.FormatFromPath("out." + opts.format); err != nil {
		return err
	}

	tracker := profiler.NewTracker(profiler.Options{})
	dehazer, err := pipeline.New(cfg,
		pipeline.WithLogger(logger),
		pipeline.WithTracker(tracker),
	)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.outputDir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	files, err := inputFiles(opts.input)
	if err != nil {
		return err
	}
	logger.Info().
		Int("files", len(files)).
		Int("patch", cfg.PatchSize).
		Float64("percentile", cfg.Percentile).
		Float64("omega", cfg.Omega).
		Float64("floor", cfg.TransmissionFloor).
		Bool("depth", cfg.EstimateDepth).
		Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.workers, 1))
	stems := outputStems(files)
	for _, file := range files {
		g.Go(func() error {
			return processFile(ctx, dehazer, file, stems[file.Path], opts, resolution, logger)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info().Int("files", len(files)).Dur("elapsed", time.Since(start)).Msg("done")
	if opts.profile {
		return tracker.Report(os.Stdout)
	}
	return nil
}

// processFile dehazes one image and writes its outputs as <stem>_<suffix>.<format>.
func processFile(ctx context.Context, d *pipeline.Dehazer, file util.ImageFile, stem string, opts options,
	resolution images.ResolutionPixels, logger zerolog.Logger,
) error {
	log := logger.With().Str("file", file.Path).Logger()

	im, err := images.Load(file.Path)
	if err != nil {
		return err
	}
	if resolution.Width > 0 && !resolution.Fits(im.Width, im.Height) {
		rgba, err := images.ToRGBA(im)
		if err != nil {
			return err
		}
		im = images.FromImage(images.Downscale(rgba, resolution))
		log.Debug().Int("width", im.Width).Int("height", im.Height).Msg("downscaled")
	}

	res, err := d.Run(ctx, im)
	if err != nil {
		return errors.Wrapf(err, "failed to dehaze %s", file.Path)
	}

	out := func(suffix string) string {
		return filepath.Join(opts.outputDir, fmt.Sprintf("%s_%s.%s", stem, suffix, opts.format))
	}

	radiance, err := images.ToRGBA(res.Radiance)
	if err != nil {
		return err
	}
	if err := images.Save(out("dehazed"), radiance); err != nil {
		return err
	}

	if opts.saveMaps {
		if err := saveMap(out("dark"), res.DarkChannel, 0, im.MaxValue); err != nil {
			return err
		}
		if err := saveMap(out("transmission"), res.Transmission, 0, 1); err != nil {
			return err
		}
		if res.Depth != nil {
			gray, err := images.MapToGrayAuto(res.Depth)
			if err != nil {
				return err
			}
			if err := images.Save(out("depth"), gray); err != nil {
				return err
			}
		}
	}

	log.Info().
		Floats32("airlight", res.Airlight[:]).
		Float64("transmission_mean", res.TransmissionStats.Mean).
		Str("checksum", images.Checksum(res.Radiance)).
		Msg("wrote outputs")
	return nil
}

func saveMap(path string, m *haze.Map, lo, hi float32) error {
	gray, err := images.MapToGray(m, lo, hi)
	if err != nil {
		return err
	}
	return images.Save(path, gray)
}

// outputStems maps each input path to the stem its outputs are named after.
// Inputs sharing a stem (scene.jpg, scene.png) keep their source extension
// so their outputs do not overwrite each other.
func outputStems(files []util.ImageFile) map[string]string {
	counts := make(map[string]int, len(files))
	for _, f := range files {
		counts[f.Stem]++
	}
	stems := make(map[string]string, len(files))
	for _, f := range files {
		stem := f.Stem
		if counts[stem] > 1 {
			stem += "_" + strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Path), "."))
		}
		stems[f.Path] = stem
	}
	return stems
}

// inputFiles resolves the -input path to the list of images to process.
func inputFiles(path string) ([]util.ImageFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat input")
	}
	if info.IsDir() {
		files, err := util.ListImageFiles(path)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, errors.Errorf("no images found in %s", path)
		}
		return files, nil
	}
	ext := filepath.Ext(path)
	return []util.ImageFile{{
		Path:  path,
		Stem:  filepath.Base(path[:len(path)-len(ext)]),
		Frame: -1,
	}}, nil
}

// mergeFlags starts from the file configuration and applies only the
// pipeline flags that were set explicitly on the command line.
func mergeFlags(fs *flag.FlagSet, fileCfg, flagCfg pipeline.Config) pipeline.Config {
	merged := fileCfg
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "patch":
			merged.PatchSize = flagCfg.PatchSize
		case "percentile":
			merged.Percentile = flagCfg.Percentile
		case "omega":
			merged.Omega = flagCfg.Omega
		case "floor":
			merged.TransmissionFloor = flagCfg.TransmissionFloor
		case "depth":
			merged.EstimateDepth = flagCfg.EstimateDepth
		case "beta":
			merged.Beta = flagCfg.Beta
		case "clamp":
			merged.ClampOutput = flagCfg.ClampOutput
		}
	})
	return merged
}

// newLogger builds a console or JSON zerolog logger at the given level.
func newLogger(useJSON bool, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), errors.Wrapf(err, "invalid log level %q", level)
	}
	if useJSON {
		return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger(), nil
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger(), nil
}
