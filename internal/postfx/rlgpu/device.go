// Package rlgpu implements postfx.Device on raylib's OpenGL backend.
// All calls must happen on the thread that owns the raylib window.
package rlgpu

import (
	"errors"
	"fmt"
	"image"

	rl "github.com/gen2brain/raylib-go/raylib"

	"trailbloom/internal/postfx"
	"trailbloom/internal/utils"
)

// rlgl attachment constants.
const (
	attachmentColor0   int32 = 0
	attachmentTexture2 int32 = 100
)

// DefaultMaxTextureSize is used when the limit is not configured.
const DefaultMaxTextureSize = 16384

type texture struct {
	target   rl.RenderTexture2D
	static   rl.Texture2D
	isTarget bool
	released bool
}

func (t *texture) Size() (int, int) {
	tex := t.tex()
	return int(tex.Width), int(tex.Height)
}

func (t *texture) tex() rl.Texture2D {
	if t.isTarget {
		return t.target.Texture
	}
	return t.static
}

func (t *texture) Release() {
	if t.released {
		return
	}
	t.released = true
	if t.isTarget {
		rl.UnloadRenderTexture(t.target)
	} else {
		rl.UnloadTexture(t.static)
	}
}

// RenderTexture exposes the raylib render texture behind a postfx target
// so that scenes can draw into it.
func RenderTexture(t postfx.Texture) (rl.RenderTexture2D, bool) {
	tex, ok := t.(*texture)
	if !ok || !tex.isTarget || tex.released {
		return rl.RenderTexture2D{}, false
	}
	return tex.target, true
}

type program struct {
	name      string
	shader    rl.Shader
	locations map[string]int32
}

func (p *program) Release() {
	if p.shader.ID != 0 {
		rl.UnloadShader(p.shader)
		p.shader = rl.Shader{}
	}
}

// Device draws through raylib. A window must already be open.
type Device struct {
	maxSize int
	quad    rl.Texture2D
	scratch [3]float32
}

func NewDevice(maxTextureSize int) *Device {
	if maxTextureSize <= 0 {
		maxTextureSize = DefaultMaxTextureSize
	}
	img := rl.GenImageColor(1, 1, rl.White)
	quad := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	return &Device{maxSize: maxTextureSize, quad: quad}
}

func (d *Device) Close() {
	if d.quad.ID != 0 {
		rl.UnloadTexture(d.quad)
		d.quad = rl.Texture2D{}
	}
}

func (d *Device) MaxTextureSize() int { return d.maxSize }

// NewTexture creates a render texture and swaps its 8-bit color
// attachment for an RGBA16F one.
func (d *Device) NewTexture(width, height int) (postfx.Texture, error) {
	if width <= 0 || height <= 0 || width > d.maxSize || height > d.maxSize {
		return nil, fmt.Errorf("texture %dx%d outside 1..%d", width, height, d.maxSize)
	}

	rt := rl.LoadRenderTexture(int32(width), int32(height))
	if rt.ID == 0 {
		return nil, errors.New("framebuffer creation failed")
	}

	img := rl.GenImageColor(width, height, rl.Blank)
	rl.ImageFormat(img, rl.UncompressedR16g16b16a16)
	hdr := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	if hdr.ID == 0 {
		rl.UnloadRenderTexture(rt)
		return nil, errors.New("half-float texture upload failed")
	}

	rl.UnloadTexture(rt.Texture)
	rl.FramebufferAttach(rt.ID, hdr.ID, attachmentColor0, attachmentTexture2, 0)
	rt.Texture = hdr
	if !rl.FramebufferComplete(rt.ID) {
		rl.UnloadRenderTexture(rt)
		return nil, errors.New("half-float framebuffer incomplete")
	}

	rl.SetTextureFilter(rt.Texture, rl.FilterBilinear)
	rl.SetTextureWrap(rt.Texture, rl.TextureWrapClamp)
	return &texture{target: rt, isTarget: true}, nil
}

func (d *Device) LoadImage(img image.Image) (postfx.Texture, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	b := img.Bounds()
	if b.Dx() > d.maxSize || b.Dy() > d.maxSize {
		return nil, fmt.Errorf("image %dx%d exceeds limit %d", b.Dx(), b.Dy(), d.maxSize)
	}
	rimg := rl.NewImageFromImage(img)
	tex := rl.LoadTextureFromImage(rimg)
	rl.UnloadImage(rimg)
	if tex.ID == 0 {
		return nil, errors.New("texture upload failed")
	}
	rl.SetTextureFilter(tex, rl.FilterBilinear)
	rl.SetTextureWrap(tex, rl.TextureWrapClamp)
	return &texture{static: tex}, nil
}

// CompileProgram builds src against raylib's default vertex shader and
// resolves every declared uniform.
func (d *Device) CompileProgram(src postfx.ProgramSource) (postfx.Program, error) {
	fSource := postfx.Preprocess(src)

	var shader rl.Shader
	var panicked error
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicked = fmt.Errorf("compilation panic: %v", r)
				shader = rl.Shader{}
			}
		}()
		shader = rl.LoadShaderFromMemory("", fSource)
	}()
	if panicked != nil {
		return nil, &postfx.ShaderCompileError{Program: src.Name, Err: panicked}
	}
	if shader.ID == 0 || shader.ID == rl.GetShaderIdDefault() {
		return nil, &postfx.ShaderCompileError{Program: src.Name, Err: errors.New("compile or link failed")}
	}

	p := &program{name: src.Name, shader: shader, locations: make(map[string]int32, len(src.Uniforms))}
	for _, u := range src.Uniforms {
		loc := rl.GetShaderLocation(shader, u.Name)
		if loc < 0 {
			p.Release()
			return nil, &postfx.ShaderCompileError{Program: src.Name, Err: fmt.Errorf("uniform %s not active", u.Name)}
		}
		p.locations[u.Name] = loc
	}
	utils.Info("Shader: %s - Loaded successfully (ID: %d)", src.Name, shader.ID)
	return p, nil
}

func (d *Device) Draw(prog postfx.Program, dst postfx.Texture, uniforms []postfx.Uniform) error {
	p, ok := prog.(*program)
	if !ok || p.shader.ID == 0 {
		return fmt.Errorf("rlgpu: unusable program %T", prog)
	}

	width, height := rl.GetScreenWidth(), rl.GetScreenHeight()
	var target rl.RenderTexture2D
	if dst != nil {
		var ok bool
		if target, ok = RenderTexture(dst); !ok {
			return fmt.Errorf("rlgpu: %s: destination is not a live render target", p.name)
		}
		width, height = int(target.Texture.Width), int(target.Texture.Height)
	}

	// Resolve sampler inputs before touching GL state.
	for i := range uniforms {
		u := &uniforms[i]
		if u.Kind != postfx.UniformSampler {
			continue
		}
		t, ok := u.Texture.(*texture)
		if !ok || t.released {
			return fmt.Errorf("rlgpu: %s: sampler %s has no live texture", p.name, u.Name)
		}
	}

	if dst != nil {
		rl.BeginTextureMode(target)
	}
	rl.ClearBackground(rl.Blank)
	rl.BeginShaderMode(p.shader)

	for i := range uniforms {
		u := &uniforms[i]
		loc := p.locations[u.Name]
		switch u.Kind {
		case postfx.UniformFloat:
			d.scratch[0] = u.Value[0]
			rl.SetShaderValue(p.shader, loc, d.scratch[:1], rl.ShaderUniformFloat)
		case postfx.UniformVec2:
			d.scratch[0], d.scratch[1] = u.Value[0], u.Value[1]
			rl.SetShaderValue(p.shader, loc, d.scratch[:2], rl.ShaderUniformVec2)
		case postfx.UniformVec3:
			d.scratch = u.Value
			rl.SetShaderValue(p.shader, loc, d.scratch[:3], rl.ShaderUniformVec3)
		case postfx.UniformSampler:
			rl.SetShaderValueTexture(p.shader, loc, u.Texture.(*texture).tex())
		}
	}

	rl.DrawTexturePro(d.quad,
		rl.NewRectangle(0, 0, 1, 1),
		rl.NewRectangle(0, 0, float32(width), float32(height)),
		rl.NewVector2(0, 0), 0, rl.White)

	rl.EndShaderMode()
	if dst != nil {
		rl.EndTextureMode()
	}
	return nil
}
