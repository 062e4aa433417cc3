package pipeline

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/nvr-ai/go-dehaze/haze"
)

// MapStats summarizes the values of a map.
type MapStats struct {
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
}

// Summarize computes min, max, mean and sample standard deviation of m. A nil
// or empty map yields the zero value.
func Summarize(m *haze.Map) MapStats {
	if m == nil || len(m.Data) == 0 {
		return MapStats{}
	}
	values := make([]float64, len(m.Data))
	for i, v := range m.Data {
		values[i] = float64(v)
	}

	s := MapStats{
		Min: floats.Min(values),
		Max: floats.Max(values),
	}
	if len(values) == 1 {
		s.Mean = values[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	return s
}
