package postfx_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailbloom/internal/postfx"
	"trailbloom/internal/postfx/soft"
)

func TestRenderTargetClampsToOnePixel(t *testing.T) {
	dev := soft.NewDevice(4, 4)
	rt, err := postfx.NewRenderTarget(dev, "tiny", 0, -3)
	require.NoError(t, err)
	defer rt.Release()

	w, h := rt.Size()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
	tw, th := rt.Texture().Size()
	assert.Equal(t, [2]int{1, 1}, [2]int{tw, th})
}

func TestRenderTargetResize(t *testing.T) {
	dev := soft.NewDevice(4, 4)
	rt, err := postfx.NewRenderTarget(dev, "rt", 64, 32)
	require.NoError(t, err)
	defer rt.Release()

	before := rt.Texture()
	require.NoError(t, rt.Resize(64, 32))
	assert.Same(t, before, rt.Texture(), "same size must not reallocate")

	require.NoError(t, rt.Resize(20, 10))
	w, h := rt.Size()
	assert.Equal(t, 20, w)
	assert.Equal(t, 10, h)
	assert.True(t, softTex(t, before).Released())
	assert.Equal(t, 1, dev.LiveTextures())

	require.NoError(t, rt.Resize(64, 32))
	w, h = rt.Size()
	assert.Equal(t, [2]int{64, 32}, [2]int{w, h})
}

func TestRenderTargetFailedResizeKeepsStorage(t *testing.T) {
	dev := soft.NewDevice(4, 4)
	dev.SetMaxTextureSize(128)
	rt, err := postfx.NewRenderTarget(dev, "rt", 64, 64)
	require.NoError(t, err)
	defer rt.Release()

	before := rt.Texture()
	err = rt.Resize(256, 64)
	var allocErr *postfx.AllocationError
	require.True(t, errors.As(err, &allocErr))
	assert.Equal(t, "rt", allocErr.Target)
	assert.Equal(t, 256, allocErr.Width)

	w, h := rt.Size()
	assert.Equal(t, [2]int{64, 64}, [2]int{w, h})
	assert.Same(t, before, rt.Texture())
	assert.False(t, softTex(t, before).Released())
}

func TestRenderTargetReleaseIsIdempotent(t *testing.T) {
	dev := soft.NewDevice(4, 4)
	rt, err := postfx.NewRenderTarget(dev, "rt", 8, 8)
	require.NoError(t, err)

	rt.Release()
	rt.Release()
	assert.Nil(t, rt.Texture())
	assert.Equal(t, 0, dev.LiveTextures())

	var nilTarget *postfx.RenderTarget
	assert.NotPanics(t, nilTarget.Release)
}
