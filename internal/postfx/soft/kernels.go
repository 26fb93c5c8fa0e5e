package soft

import (
	"fmt"

	"github.com/chewxy/math32"

	"trailbloom/internal/postfx"
)

// A kernel binds uniforms and returns the per-pixel shading function.
type kernel func(uniforms []postfx.Uniform) (func(u, v float32) RGBA, error)

var kernels = map[string]func(postfx.ProgramSource) kernel{
	postfx.ProgramTrail:     func(postfx.ProgramSource) kernel { return trailKernel },
	postfx.ProgramMix:       func(postfx.ProgramSource) kernel { return mixKernel },
	postfx.ProgramBright:    func(postfx.ProgramSource) kernel { return brightKernel },
	postfx.ProgramBlur:      func(postfx.ProgramSource) kernel { return blurKernel },
	postfx.ProgramComposite: compositeKernel,
}

type binder struct {
	uniforms []postfx.Uniform
	err      error
}

func (b *binder) find(name string, kind postfx.UniformKind) *postfx.Uniform {
	if b.err != nil {
		return nil
	}
	u := postfx.FindUniform(b.uniforms, name)
	if u == nil || u.Kind != kind {
		b.err = fmt.Errorf("uniform %s (%s) missing", name, kind)
		return nil
	}
	return u
}

func (b *binder) float(name string) float32 {
	if u := b.find(name, postfx.UniformFloat); u != nil {
		return u.Value[0]
	}
	return 0
}

func (b *binder) vec(name string, kind postfx.UniformKind) [3]float32 {
	if u := b.find(name, kind); u != nil {
		return u.Value
	}
	return [3]float32{}
}

func (b *binder) texture(name string) *Texture {
	u := b.find(name, postfx.UniformSampler)
	if u == nil {
		return nil
	}
	t, ok := u.Texture.(*Texture)
	if !ok || t == nil || t.released {
		b.err = fmt.Errorf("sampler %s: unusable texture %T", name, u.Texture)
		return nil
	}
	return t
}

func saturate(v float32) float32 { return math32.Min(math32.Max(v, 0), 1) }

func trailKernel(uniforms []postfx.Uniform) (func(u, v float32) RGBA, error) {
	b := binder{uniforms: uniforms}
	current, prev := b.texture("current"), b.texture("prev")
	decay, weight := b.float("decay"), b.float("blendWeight")
	if b.err != nil {
		return nil, b.err
	}
	return func(u, v float32) RGBA {
		c, p := current.Sample(u, v), prev.Sample(u, v)
		return RGBA{
			saturate(c[0]*weight + p[0]*decay),
			saturate(c[1]*weight + p[1]*decay),
			saturate(c[2]*weight + p[2]*decay),
			1,
		}
	}, nil
}

func mixKernel(uniforms []postfx.Uniform) (func(u, v float32) RGBA, error) {
	b := binder{uniforms: uniforms}
	current, trail := b.texture("current"), b.texture("trail")
	blend := b.float("blend")
	if b.err != nil {
		return nil, b.err
	}
	return func(u, v float32) RGBA {
		c, t := current.Sample(u, v), trail.Sample(u, v)
		return RGBA{saturate(c[0] + t[0]*blend), saturate(c[1] + t[1]*blend), saturate(c[2] + t[2]*blend), 1}
	}, nil
}

func brightKernel(uniforms []postfx.Uniform) (func(u, v float32) RGBA, error) {
	b := binder{uniforms: uniforms}
	src := b.texture("src")
	thresh := b.float("thresh")
	if b.err != nil {
		return nil, b.err
	}
	return func(u, v float32) RGBA {
		c := src.Sample(u, v)
		if math32.Max(math32.Max(c[0], c[1]), c[2]) > thresh {
			return RGBA{c[0], c[1], c[2], 1}
		}
		return RGBA{0, 0, 0, 1}
	}, nil
}

func blurKernel(uniforms []postfx.Uniform) (func(u, v float32) RGBA, error) {
	b := binder{uniforms: uniforms}
	src := b.texture("src")
	off := b.vec("offset", postfx.UniformVec2)
	if b.err != nil {
		return nil, b.err
	}
	return func(u, v float32) RGBA {
		c := src.Sample(u, v)
		p := src.Sample(u+off[0], v+off[1])
		n := src.Sample(u-off[0], v-off[1])
		var out RGBA
		for i := 0; i < 3; i++ {
			out[i] = c[i]*postfx.BlurCenterWeight + p[i]*postfx.BlurSideWeight + n[i]*postfx.BlurSideWeight
		}
		out[3] = 1
		return out
	}, nil
}

// SoftLight is the per-channel soft-light blend used by the overlay.
func SoftLight(base, blend float32) float32 {
	if blend < 0.5 {
		return 2*base*blend + base*base*(1-2*blend)
	}
	return math32.Sqrt(math32.Max(base, 0))*(2*blend-1) + 2*base*(1-blend)
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

func compositeKernel(src postfx.ProgramSource) kernel {
	useBloom := src.Combo(postfx.ComboBloom)
	useOverlay := src.Combo(postfx.ComboOverlay)
	useTint := src.Combo(postfx.ComboTint)

	return func(uniforms []postfx.Uniform) (func(u, v float32) RGBA, error) {
		b := binder{uniforms: uniforms}
		base := b.texture("base")

		var bloom, paper *Texture
		var intensity, bloomBlend, paperBlend float32
		tint := [3]float32{1, 1, 1}
		if useBloom {
			bloom = b.texture("bloom")
			intensity, bloomBlend = b.float("intensity"), b.float("bloomBlend")
		}
		if useOverlay {
			paper = b.texture("paper")
			paperBlend = b.float("paperBlend")
		}
		if useTint {
			tint = b.vec("finalColorOverlay", postfx.UniformVec3)
		}
		if b.err != nil {
			return nil, b.err
		}

		return func(u, v float32) RGBA {
			col := base.Sample(u, v)
			if useBloom {
				bc := bloom.Sample(u, v)
				for i := 0; i < 3; i++ {
					g := bc[i] * intensity
					col[i] = lerp(col[i]+g, g, bloomBlend)
				}
			}
			if useOverlay {
				pc := paper.Sample(u, v)
				for i := 0; i < 3; i++ {
					col[i] = lerp(col[i], SoftLight(col[i], pc[i]), paperBlend)
				}
			}
			for i := 0; i < 3; i++ {
				col[i] = saturate(col[i] * tint[i])
			}
			col[3] = 1
			return col
		}, nil
	}
}
