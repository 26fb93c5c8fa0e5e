package postfx_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"trailbloom/internal/postfx"
	"trailbloom/internal/postfx/soft"
)

var (
	black = soft.RGBA{0, 0, 0, 1}
	red   = soft.RGBA{1, 0, 0, 1}
	blue  = soft.RGBA{0, 0, 1, 1}
	gray  = soft.RGBA{0.5, 0.5, 0.5, 1}
)

// solidScene fills the capture target with a changeable color.
type solidScene struct {
	color soft.RGBA
}

func (s *solidScene) RenderScene(dst postfx.Texture) error {
	dst.(*soft.Texture).Fill(s.color)
	return nil
}

// stripeScene draws a bright column at x on a black background.
func stripeScene(x int, c soft.RGBA) postfx.SceneFunc {
	return func(dst postfx.Texture) error {
		tex := dst.(*soft.Texture)
		tex.Fill(black)
		_, h := tex.Size()
		for y := 0; y < h; y++ {
			tex.Set(x, y, c)
		}
		return nil
	}
}

func softTex(t *testing.T, tex postfx.Texture) *soft.Texture {
	t.Helper()
	st, ok := tex.(*soft.Texture)
	require.True(t, ok, "texture %T is not a soft texture", tex)
	return st
}

// plainSnapshot has every modifier off.
func plainSnapshot() postfx.Snapshot {
	s := postfx.DefaultSnapshot()
	s.TrailEnabled = false
	s.BloomEnabled = false
	s.OverlayEnabled = false
	s.TintEnabled = false
	return s
}

func newPipeline(t *testing.T, w, h int) (*soft.Device, *postfx.Pipeline) {
	t.Helper()
	dev := soft.NewDevice(w, h)
	p, err := postfx.NewPipeline(dev, postfx.Config{Width: w, Height: h, Downsample: 4})
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return dev, p
}

// failingDevice fails the n-th texture allocation and optionally one
// program by name.
type failingDevice struct {
	*soft.Device
	failAt      int
	allocs      int
	failProgram string
}

func (d *failingDevice) NewTexture(w, h int) (postfx.Texture, error) {
	d.allocs++
	if d.allocs == d.failAt {
		return nil, errInjected
	}
	return d.Device.NewTexture(w, h)
}

func (d *failingDevice) CompileProgram(src postfx.ProgramSource) (postfx.Program, error) {
	if src.Name == d.failProgram {
		return nil, errInjected
	}
	return d.Device.CompileProgram(src)
}

type injectedError struct{}

func (injectedError) Error() string { return "injected failure" }

var errInjected error = injectedError{}
