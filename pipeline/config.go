package pipeline

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-dehaze/haze"
)

// Config holds the user-chosen parameters of a dehazing run.
type Config struct {
	// PatchSize is the odd window size of both dark channel passes.
	PatchSize int `json:"patch_size" yaml:"patch_size"`
	// Percentile is the fraction of haziest pixels used to estimate the airlight.
	Percentile float64 `json:"percentile" yaml:"percentile"`
	// Omega keeps a little haze for depth perception (1 removes it all).
	Omega float64 `json:"omega" yaml:"omega"`
	// TransmissionFloor bounds transmission from below during recovery.
	TransmissionFloor float64 `json:"transmission_floor" yaml:"transmission_floor"`
	// EstimateDepth enables the depth stage.
	EstimateDepth bool `json:"estimate_depth" yaml:"estimate_depth"`
	// Beta is the scattering coefficient used by the depth stage.
	Beta float64 `json:"beta" yaml:"beta"`
	// ClampOutput clamps the recovered radiance to [0, 1].
	ClampOutput bool `json:"clamp_output" yaml:"clamp_output"`
}

// DefaultConfig returns the parameters of the reference method.
//
// Returns:
//   - Config: patch 15, percentile 0.001, omega 0.95, floor 0.1, beta 1.
func DefaultConfig() Config {
	return Config{
		PatchSize:         15,
		Percentile:        0.001,
		Omega:             0.95,
		TransmissionFloor: 0.1,
		EstimateDepth:     false,
		Beta:              1.0,
		ClampOutput:       false,
	}
}

// Validate checks the parameters that do not depend on the image. Stage
// preconditions that do (percentile selecting zero pixels, airlight
// channels) are reported by the stages themselves. Errors wrap
// haze.ErrInvalidArgument.
func (c Config) Validate() error {
	if c.PatchSize <= 0 || c.PatchSize%2 == 0 {
		return errors.Wrapf(haze.ErrInvalidArgument, "patch_size %d must be a positive odd integer", c.PatchSize)
	}
	if !(c.Percentile > 0 && c.Percentile <= 1) {
		return errors.Wrapf(haze.ErrInvalidArgument, "percentile %v must be in (0, 1]", c.Percentile)
	}
	if !(c.Omega > 0) {
		return errors.Wrapf(haze.ErrInvalidArgument, "omega %v must be > 0", c.Omega)
	}
	if !(c.TransmissionFloor > 0) {
		return errors.Wrapf(haze.ErrInvalidArgument, "transmission_floor %v must be > 0", c.TransmissionFloor)
	}
	if c.EstimateDepth && !(c.Beta > 0) {
		return errors.Wrapf(haze.ErrInvalidArgument, "beta %v must be > 0", c.Beta)
	}
	return nil
}

// LoadConfig reads a YAML or JSON file on top of DefaultConfig, so a file only
// needs the fields it changes.
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrap(err, "failed to read config file")
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := config.Validate(); err != nil {
		return config, errors.Wrapf(err, "invalid config %s", filename)
	}
	return config, nil
}

// SaveConfig writes the configuration as YAML.
func (c Config) SaveConfig(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}
