package postfx_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailbloom/internal/postfx"
	"trailbloom/internal/postfx/soft"
)

func newPingPong(t *testing.T, dev *soft.Device, w, h int) *postfx.PingPong {
	t.Helper()
	pp, err := postfx.NewPingPong(dev, "trail", w, h)
	require.NoError(t, err)
	t.Cleanup(pp.Release)
	return pp
}

func TestPingPongZeroDecayCopiesScene(t *testing.T) {
	dev := soft.NewDevice(8, 8)
	pp := newPingPong(t, dev, 8, 8)
	scene := newTarget(t, dev, "scene", red)

	require.NoError(t, pp.Update(scene.Texture(), 0, 1))
	got := softTex(t, pp.Current().Texture())
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, red, got.At(x, y))
		}
	}
}

func TestPingPongDecaysToBlack(t *testing.T) {
	dev := soft.NewDevice(4, 4)
	pp := newPingPong(t, dev, 4, 4)
	scene := newTarget(t, dev, "scene", red)

	require.NoError(t, pp.Update(scene.Texture(), 0.9, 1))
	softTex(t, scene.Texture()).Fill(black)

	for k := 1; k <= 200; k++ {
		require.NoError(t, pp.Update(scene.Texture(), 0.9, 1))
		if k == 10 {
			assert.InDelta(t, math.Pow(0.9, 10), softTex(t, pp.Current().Texture()).At(2, 2)[0], 1e-5)
		}
	}
	mean := softTex(t, pp.Current().Texture()).Mean()
	assert.Less(t, mean[0], float32(1e-6))
	assert.Equal(t, float32(1), mean[3], "alpha stays opaque")
}

func TestPingPongSaturates(t *testing.T) {
	dev := soft.NewDevice(4, 4)
	pp := newPingPong(t, dev, 4, 4)
	scene := newTarget(t, dev, "scene", gray)

	for i := 0; i < 30; i++ {
		require.NoError(t, pp.Update(scene.Texture(), 0.99, 1))
	}
	c := softTex(t, pp.Current().Texture()).At(0, 0)
	assert.Equal(t, float32(1), c[0], "accumulated trail is clamped to 1")
}

func TestPingPongFlipsEachUpdate(t *testing.T) {
	dev := soft.NewDevice(4, 4)
	pp := newPingPong(t, dev, 4, 4)
	scene := newTarget(t, dev, "scene", gray)

	first := pp.Current()
	assert.Equal(t, 0, pp.CurrentIndex())
	require.NoError(t, pp.Update(scene.Texture(), 0.5, 1))
	assert.Equal(t, 1, pp.CurrentIndex())
	assert.NotSame(t, first, pp.Current())
	require.NoError(t, pp.Update(scene.Texture(), 0.5, 1))
	assert.Equal(t, 0, pp.CurrentIndex())
	assert.Same(t, first, pp.Current())
}

func TestPingPongResize(t *testing.T) {
	dev := soft.NewDevice(4, 4)
	pp := newPingPong(t, dev, 16, 16)

	require.NoError(t, pp.Resize(10, 6))
	w, h := pp.Current().Size()
	assert.Equal(t, [2]int{10, 6}, [2]int{w, h})

	require.NoError(t, pp.Resize(16, 16))
	w, h = pp.Current().Size()
	assert.Equal(t, [2]int{16, 16}, [2]int{w, h})
}
