package postfx_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailbloom/internal/postfx"
	"trailbloom/internal/postfx/soft"
)

func newMixPass(t *testing.T, dev *soft.Device) *postfx.FullscreenPass {
	t.Helper()
	pass, err := postfx.NewFullscreenPass(dev, postfx.MixProgram())
	require.NoError(t, err)
	t.Cleanup(pass.Release)
	return pass
}

func newTarget(t *testing.T, dev *soft.Device, name string, c soft.RGBA) *postfx.RenderTarget {
	t.Helper()
	rt, err := postfx.NewRenderTarget(dev, name, 4, 4)
	require.NoError(t, err)
	t.Cleanup(rt.Release)
	softTex(t, rt.Texture()).Fill(c)
	return rt
}

func TestPassExecute(t *testing.T) {
	dev := soft.NewDevice(4, 4)
	pass := newMixPass(t, dev)
	current := newTarget(t, dev, "current", soft.RGBA{0.2, 0.1, 0, 1})
	trail := newTarget(t, dev, "trail", soft.RGBA{0.5, 1, 0, 1})
	out := newTarget(t, dev, "out", black)

	err := pass.
		SetTexture("current", current.Texture()).
		SetTexture("trail", trail.Texture()).
		SetFloat("blend", 0.4).
		Execute(out)
	require.NoError(t, err)

	got := softTex(t, out.Texture()).At(1, 2)
	assert.InDelta(t, 0.4, got[0], 1e-6)
	assert.InDelta(t, 0.5, got[1], 1e-6)
	assert.InDelta(t, 0, got[2], 1e-6)
}

func TestPassMissingUniform(t *testing.T) {
	dev := soft.NewDevice(4, 4)
	pass := newMixPass(t, dev)
	current := newTarget(t, dev, "current", red)
	out := newTarget(t, dev, "out", black)

	err := pass.
		SetTexture("current", current.Texture()).
		SetTexture("trail", current.Texture()).
		Execute(out)

	var bindErr *postfx.BindingError
	require.True(t, errors.As(err, &bindErr), "got %v", err)
	assert.Equal(t, "blend", bindErr.Uniform)
	assert.Equal(t, postfx.ProgramMix, bindErr.Pass)
	assert.Equal(t, 0, dev.Draws())
}

func TestPassBindingsDoNotCarryOver(t *testing.T) {
	dev := soft.NewDevice(4, 4)
	pass := newMixPass(t, dev)
	src := newTarget(t, dev, "src", red)
	out := newTarget(t, dev, "out", black)

	require.NoError(t, pass.
		SetTexture("current", src.Texture()).
		SetTexture("trail", src.Texture()).
		SetFloat("blend", 1).
		Execute(out))

	err := pass.SetFloat("blend", 1).Execute(out)
	var bindErr *postfx.BindingError
	require.True(t, errors.As(err, &bindErr))
	assert.Equal(t, "current", bindErr.Uniform)
}

func TestPassRejectsBadBindings(t *testing.T) {
	dev := soft.NewDevice(4, 4)
	pass := newMixPass(t, dev)
	src := newTarget(t, dev, "src", red)
	out := newTarget(t, dev, "out", black)

	tests := []struct {
		name    string
		bind    func()
		uniform string
	}{
		{"undeclared", func() { pass.SetFloat("gain", 1) }, "gain"},
		{"kind mismatch", func() { pass.SetVec2("blend", 1, 1) }, "blend"},
		{"nil texture", func() { pass.SetTexture("trail", nil) }, "trail"},
		{"aliased output", func() {
			pass.SetTexture("current", out.Texture()).SetTexture("trail", src.Texture()).SetFloat("blend", 1)
		}, "current"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pass.SetTexture("current", src.Texture()).
				SetTexture("trail", src.Texture()).
				SetFloat("blend", 1)
			tt.bind()

			err := pass.Execute(out)
			var bindErr *postfx.BindingError
			require.True(t, errors.As(err, &bindErr), "got %v", err)
			assert.Equal(t, tt.uniform, bindErr.Uniform)
		})
	}
}

func TestPassIntoReleasedTarget(t *testing.T) {
	dev := soft.NewDevice(4, 4)
	pass := newMixPass(t, dev)
	src := newTarget(t, dev, "src", red)
	out := newTarget(t, dev, "out", black)
	out.Release()

	err := pass.
		SetTexture("current", src.Texture()).
		SetTexture("trail", src.Texture()).
		SetFloat("blend", 1).
		Execute(out)
	var bindErr *postfx.BindingError
	assert.True(t, errors.As(err, &bindErr))
}

func TestUnknownProgramIsCompileError(t *testing.T) {
	dev := soft.NewDevice(4, 4)
	_, err := postfx.NewFullscreenPass(dev, postfx.ProgramSource{Name: "sharpen"})

	var compileErr *postfx.ShaderCompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "sharpen", compileErr.Program)
}

func TestCompileErrorIsWrapped(t *testing.T) {
	dev := &failingDevice{Device: soft.NewDevice(4, 4), failProgram: postfx.ProgramBlur}
	_, err := postfx.NewFullscreenPass(dev, postfx.BlurProgram())

	var compileErr *postfx.ShaderCompileError
	require.True(t, errors.As(err, &compileErr))
	assert.ErrorIs(t, err, errInjected)
}
