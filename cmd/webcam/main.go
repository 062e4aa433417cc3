// Command webcam shows a live side-by-side preview of camera frames and their
// dehazed version. Every frame is dehazed independently.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-dehaze/images"
	"github.com/nvr-ai/go-dehaze/pipeline"
)

// settings holds the command line flags.
type settings struct {
	deviceID      int
	patch         int
	omega         float64
	maxResolution string
}

func main() {
	var set settings
	flag.IntVar(&set.deviceID, "device", 0, "Video capture device ID")
	flag.IntVar(&set.patch, "patch", 7, "Dark channel patch size (odd)")
	flag.Float64Var(&set.omega, "omega", 0.95, "Haze removal strength")
	flag.StringVar(&set.maxResolution, "max-resolution", "360p", "Working resolution for dehazing")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	if err := run(set, logger); err != nil {
		logger.Error().Err(err).Msg("webcam stopped")
		os.Exit(1)
	}
}

// newDehazer validates the flags that do not need a camera.
func newDehazer(set settings, logger zerolog.Logger) (*pipeline.Dehazer, images.ResolutionPixels, error) {
	resolution, err := images.ParseResolution(set.maxResolution)
	if err != nil {
		return nil, resolution, err
	}

	cfg := pipeline.DefaultConfig()
	cfg.PatchSize = set.patch
	cfg.Omega = set.omega
	cfg.ClampOutput = true
	dehazer, err := pipeline.New(cfg, pipeline.WithLogger(logger.Level(zerolog.WarnLevel)))
	if err != nil {
		return nil, resolution, err
	}
	return dehazer, resolution, nil
}

// run previews the camera until a key is pressed or the device stops.
func run(set settings, logger zerolog.Logger) error {
	dehazer, resolution, err := newDehazer(set, logger)
	if err != nil {
		return err
	}

	// open webcam
	webcam, err := gocv.OpenVideoCapture(set.deviceID)
	if err != nil {
		return errors.Wrapf(err, "cannot open capture device %d", set.deviceID)
	}
	defer webcam.Close()

	// open display window
	window := gocv.NewWindow("Dehaze")
	defer window.Close()

	// prepare image matrix
	frame := gocv.NewMat()
	defer frame.Close()
	small := gocv.NewMat()
	defer small.Close()
	preview := gocv.NewMat()
	defer preview.Close()

	green := color.RGBA{0, 255, 0, 0}

	// FPS tracking variables
	fps := 0.0
	frameCount := 0
	lastTime := time.Now()

	logger.Info().Int("device", set.deviceID).Msg("start reading camera device")
	for {
		if ok := webcam.Read(&frame); !ok {
			return errors.Errorf("cannot read device %d", set.deviceID)
		}
		if frame.Empty() {
			continue
		}

		// Update FPS calculation every second
		frameCount++
		if elapsed := time.Since(lastTime).Seconds(); elapsed >= 1.0 {
			fps = float64(frameCount) / elapsed
			frameCount = 0
			lastTime = time.Now()
		}

		workingCopy(frame, &small, resolution)
		im, err := images.FromMat(small)
		if err != nil {
			logger.Error().Err(err).Msg("conversion failed")
			continue
		}
		res, err := dehazer.Run(context.Background(), im)
		if err != nil {
			logger.Error().Err(err).Msg("dehaze failed")
			continue
		}
		out, err := images.ToMat(res.Radiance)
		if err != nil {
			logger.Error().Err(err).Msg("conversion failed")
			continue
		}

		gocv.Hconcat(small, out, &preview)
		out.Close()
		gocv.PutText(&preview, fmt.Sprintf("FPS: %.1f  A=%.0f,%.0f,%.0f", fps,
			res.Airlight[0], res.Airlight[1], res.Airlight[2]),
			image.Pt(10, 20), gocv.FontHersheyPlain, 1.2, green, 2)

		// show the image in the window, and wait 1 millisecond
		window.IMShow(preview)
		if window.WaitKey(1) >= 0 {
			return nil
		}
	}
}

// workingCopy writes frame into dst, shrunk to fit resolution if needed.
func workingCopy(frame gocv.Mat, dst *gocv.Mat, resolution images.ResolutionPixels) {
	w, h := frame.Cols(), frame.Rows()
	if resolution.Fits(w, h) {
		frame.CopyTo(dst)
		return
	}
	scale := min(float64(resolution.Width)/float64(w), float64(resolution.Height)/float64(h))
	gocv.Resize(frame, dst, image.Point{}, scale, scale, gocv.InterpolationArea)
}
