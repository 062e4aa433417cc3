package haze

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The transforms must start without any runtime guard environment variables,
// so none of the tensor stack may be linked into this package.
func TestNoTensorRuntimeLinked(t *testing.T) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		t.Skip("build info not available")
	}
	for _, dep := range info.Deps {
		assert.NotEqual(t, "gorgonia.org/tensor", dep.Path)
		assert.NotEqual(t, "go4.org/unsafe/assume-no-moving-gc", dep.Path)
	}
}
