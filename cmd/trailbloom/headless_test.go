package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailbloom/internal/convert"
	"trailbloom/internal/params"
	"trailbloom/internal/postfx"
	"trailbloom/internal/postfx/soft"
)

func TestBlobSceneDrawsIntoSoftTargets(t *testing.T) {
	dev := soft.NewDevice(32, 32)
	tex, err := dev.NewTexture(32, 32)
	require.NoError(t, err)
	defer tex.Release()

	scene := newBlobScene(3, 4)
	require.NoError(t, scene.RenderScene(tex))
	mean := tex.(*soft.Texture).Mean()
	// the background alone sums to 0.08
	assert.Greater(t, mean[0]+mean[1]+mean[2], float32(0.0801), "blobs add light")
	assert.Equal(t, float32(1), mean[3])

	assert.Error(t, scene.RenderScene(fakeTexture{}))
}

type fakeTexture struct{}

func (fakeTexture) Size() (int, int) { return 1, 1 }
func (fakeTexture) Release()         {}

func TestRunHeadless(t *testing.T) {
	out := t.TempDir()
	opts := options{
		width: 32, height: 24,
		maxTexture: 1024,
		frames:     4,
		every:      2,
		outDir:     out,
		seed:       5,
	}
	source := params.NewSource(postfx.DefaultSnapshot(), "")

	require.NoError(t, runHeadless(context.Background(), opts, source, convert.GeneratePaper(32, 24, 5)))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"frame_00002.png", "frame_00004.png"}, names)

	img, err := convert.LoadImageFile(filepath.Join(out, "frame_00004.png"))
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 24, img.Bounds().Dy())
}

func TestRunHeadlessRejectsZeroFrames(t *testing.T) {
	opts := options{width: 8, height: 8, outDir: t.TempDir()}
	err := runHeadless(context.Background(), opts, params.NewSource(postfx.DefaultSnapshot(), ""), nil)
	assert.Error(t, err)
}
