package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-dehaze/pipeline"
	"github.com/nvr-ai/go-dehaze/util"
)

func TestMergeFlagsOnlyAppliesExplicitFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flagCfg := pipeline.DefaultConfig()
	fs.IntVar(&flagCfg.PatchSize, "patch", flagCfg.PatchSize, "")
	fs.Float64Var(&flagCfg.Omega, "omega", flagCfg.Omega, "")
	require.NoError(t, fs.Parse([]string{"-omega", "0.7"}))

	fileCfg := pipeline.DefaultConfig()
	fileCfg.PatchSize = 9
	fileCfg.Omega = 0.9

	merged := mergeFlags(fs, fileCfg, flagCfg)
	assert.Equal(t, 9, merged.PatchSize, "file value kept when flag unset")
	assert.Equal(t, 0.7, merged.Omega, "explicit flag wins")
}

func TestInputFilesSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hazy.scene.jpg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	files, err := inputFiles(path)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "hazy.scene", files[0].Stem)
}

func TestInputFilesEmptyDirectory(t *testing.T) {
	_, err := inputFiles(t.TempDir())
	assert.Error(t, err)
}

func TestRunRequiresInput(t *testing.T) {
	assert.Error(t, run([]string{}))
}

func TestRunRejectsBadFlags(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, run([]string{"-input", dir, "-output", dir, "-patch", "4"}))
	assert.Error(t, run([]string{"-input", dir, "-output", dir, "-format", "gif"}))
	assert.Error(t, run([]string{"-input", dir, "-output", dir, "-log-level", "loud"}))
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger(true, "debug")
	assert.NoError(t, err)
	_, err = newLogger(false, "warn")
	assert.NoError(t, err)
}

func TestOutputStemsDisambiguateSharedStems(t *testing.T) {
	files := []util.ImageFile{
		{Path: "in/scene.jpg", Stem: "scene", Frame: -1},
		{Path: "in/scene.PNG", Stem: "scene", Frame: -1},
		{Path: "in/frame-1.png", Stem: "frame-1", Frame: 1},
	}

	stems := outputStems(files)
	assert.Equal(t, map[string]string{
		"in/scene.jpg":   "scene_jpg",
		"in/scene.PNG":   "scene_png",
		"in/frame-1.png": "frame-1",
	}, stems)
}
