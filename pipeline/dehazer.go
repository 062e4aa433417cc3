// Package pipeline composes the haze stages into a configured dehazing run.
package pipeline

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/nvr-ai/go-dehaze/haze"
	"github.com/nvr-ai/go-dehaze/profiler"
)

// Stage names, as used in timings and logs.
const (
	StageDarkChannel  = "dark_channel"
	StageAirlight     = "atmospheric_light"
	StageTransmission = "transmission"
	StageRadiance     = "radiance"
	StageClamp        = "clamp"
	StageDepth        = "depth"
)

// StageTiming is the wall time one stage took.
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// Result carries every product of a run. Each field is freshly allocated and
// owned by the caller.
type Result struct {
	// DarkChannel of the input image.
	DarkChannel *haze.Map
	// Airlight estimate, in the sample scale of the input.
	Airlight haze.Airlight
	// Transmission map, unclamped.
	Transmission *haze.Map
	// Radiance is the recovered image on the [0, 1] scale; clamped only when
	// Config.ClampOutput is set.
	Radiance *haze.Image
	// Depth is nil unless Config.EstimateDepth is set.
	Depth *haze.Map
	// TransmissionStats summarizes Transmission.
	TransmissionStats MapStats
	// DepthStats summarizes Depth (zero when Depth is nil).
	DepthStats MapStats
	// Timings lists the stages in execution order.
	Timings []StageTiming
}

// Dehazer runs the stages in dependency order with a fixed configuration. It
// holds no per-run state and is safe for concurrent use.
type Dehazer struct {
	config  Config
	logger  zerolog.Logger
	tracker *profiler.Tracker
}

// Option customizes a Dehazer.
type Option func(*Dehazer)

// WithLogger sets the logger. Stage completions are logged at debug level and
// the run summary at info level.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dehazer) {
		d.logger = logger
	}
}

// WithTracker records every stage duration into tracker, aggregating across
// runs.
func WithTracker(tracker *profiler.Tracker) Option {
	return func(d *Dehazer) {
		d.tracker = tracker
	}
}

// New validates config and returns a Dehazer.
//
// Arguments:
// - config: The run parameters.
// - opts: Optional logger and tracker.
//
// Returns:
// - The Dehazer, or an error wrapping haze.ErrInvalidArgument.
func New(config Config, opts ...Option) (*Dehazer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	d := &Dehazer{
		config: config,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Config returns the configuration the Dehazer was built with.
func (d *Dehazer) Config() Config {
	return d.config
}

// Run dehazes im: DarkChannel, AtmosphericLight, Transmission,
// RecoverRadiance and, when enabled, ClampImage and DepthFromTransmission.
// ctx is checked between stages; a stage itself always runs to completion.
// On failure no partial Result is returned.
func (d *Dehazer) Run(ctx context.Context, im *haze.Image) (*Result, error) {
	res := &Result{}
	cfg := d.config

	err := d.stage(ctx, res, StageDarkChannel, func() (err error) {
		res.DarkChannel, err = haze.DarkChannel(im, cfg.PatchSize)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = d.stage(ctx, res, StageAirlight, func() (err error) {
		res.Airlight, err = haze.AtmosphericLight(im, res.DarkChannel, cfg.Percentile)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = d.stage(ctx, res, StageTransmission, func() (err error) {
		res.Transmission, err = haze.Transmission(im, res.Airlight, cfg.Omega, cfg.PatchSize)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = d.stage(ctx, res, StageRadiance, func() (err error) {
		res.Radiance, err = haze.RecoverRadiance(im, res.Airlight, res.Transmission, cfg.TransmissionFloor)
		return err
	})
	if err != nil {
		return nil, err
	}

	if cfg.ClampOutput {
		err = d.stage(ctx, res, StageClamp, func() (err error) {
			res.Radiance, err = haze.ClampImage(res.Radiance, 0, 1)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	if cfg.EstimateDepth {
		// Depth is undefined where t <= 0, so it uses the same floor as recovery.
		err = d.stage(ctx, res, StageDepth, func() error {
			hi := math.Max(1, cfg.TransmissionFloor)
			bounded, err := haze.ClampMap(res.Transmission, float32(cfg.TransmissionFloor), float32(hi))
			if err != nil {
				return err
			}
			res.Depth, err = haze.DepthFromTransmission(bounded, cfg.Beta)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	res.TransmissionStats = Summarize(res.Transmission)
	res.DepthStats = Summarize(res.Depth)

	d.logger.Info().
		Int("width", im.Width).
		Int("height", im.Height).
		Floats32("airlight", res.Airlight[:]).
		Float64("transmission_mean", res.TransmissionStats.Mean).
		Float64("transmission_min", res.TransmissionStats.Min).
		Dur("elapsed", res.total()).
		Msg("dehaze complete")

	return res, nil
}

// stage runs fn as the named stage, recording its timing.
func (d *Dehazer) stage(ctx context.Context, res *Result, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "dehaze cancelled before %s", name)
	}

	start := time.Now()
	if err := fn(); err != nil {
		d.logger.Error().Err(err).Str("stage", name).Msg("stage failed")
		return errors.Wrapf(err, "%s stage", name)
	}
	elapsed := time.Since(start)

	res.Timings = append(res.Timings, StageTiming{Stage: name, Duration: elapsed})
	if d.tracker != nil {
		d.tracker.Record(name, elapsed)
	}
	d.logger.Debug().Str("stage", name).Dur("elapsed", elapsed).Msg("stage complete")
	return nil
}

// total sums the stage timings.
func (r *Result) total() time.Duration {
	var sum time.Duration
	for _, t := range r.Timings {
		sum += t.Duration
	}
	return sum
}
