package soft

import (
	"errors"
	"fmt"
	"image"

	"trailbloom/internal/postfx"
)

// DefaultMaxTextureSize matches a common desktop GPU limit.
const DefaultMaxTextureSize = 16384

// Device is a CPU postfx.Device. The screen is an ordinary texture sized
// through SetScreenSize.
type Device struct {
	maxSize int
	screen  *Texture
	live    int
	draws   int
}

// NewDevice returns a device with a screen of width x height.
func NewDevice(width, height int) *Device {
	d := &Device{maxSize: DefaultMaxTextureSize}
	d.screen = &Texture{w: max(1, width), h: max(1, height), pix: make([]float32, max(1, width)*max(1, height)*4)}
	return d
}

// SetMaxTextureSize overrides the allocation limit. Non-positive values
// restore the default.
func (d *Device) SetMaxTextureSize(n int) {
	if n <= 0 {
		n = DefaultMaxTextureSize
	}
	d.maxSize = n
}

func (d *Device) MaxTextureSize() int { return d.maxSize }

func (d *Device) SetScreenSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid screen size %dx%d", width, height)
	}
	if width > d.maxSize || height > d.maxSize {
		return fmt.Errorf("screen %dx%d exceeds limit %d", width, height, d.maxSize)
	}
	if d.screen.w == width && d.screen.h == height {
		return nil
	}
	d.screen = &Texture{w: width, h: height, pix: make([]float32, width*height*4)}
	return nil
}

// Screen returns the presentation surface.
func (d *Device) Screen() *Texture { return d.screen }

// LiveTextures counts textures allocated and not yet released.
func (d *Device) LiveTextures() int { return d.live }

// Draws counts Draw calls since the device was created.
func (d *Device) Draws() int { return d.draws }

func (d *Device) NewTexture(width, height int) (postfx.Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid texture size %dx%d", width, height)
	}
	if width > d.maxSize || height > d.maxSize {
		return nil, fmt.Errorf("texture %dx%d exceeds limit %d", width, height, d.maxSize)
	}
	d.live++
	return newTexture(d, width, height), nil
}

func (d *Device) LoadImage(img image.Image) (postfx.Texture, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	b := img.Bounds()
	if b.Dx() > d.maxSize || b.Dy() > d.maxSize {
		return nil, fmt.Errorf("image %dx%d exceeds limit %d", b.Dx(), b.Dy(), d.maxSize)
	}
	d.live++
	return fromImage(d, img), nil
}

type program struct {
	name   string
	kernel kernel
}

func (p *program) Release() {}

// CompileProgram resolves the shading function for src.Name.
func (d *Device) CompileProgram(src postfx.ProgramSource) (postfx.Program, error) {
	build, ok := kernels[src.Name]
	if !ok {
		return nil, &postfx.ShaderCompileError{Program: src.Name, Err: errors.New("no kernel for program")}
	}
	return &program{name: src.Name, kernel: build(src)}, nil
}

func (d *Device) Draw(p postfx.Program, dst postfx.Texture, uniforms []postfx.Uniform) error {
	prog, ok := p.(*program)
	if !ok || prog == nil {
		return fmt.Errorf("soft: foreign program %T", p)
	}

	out := d.screen
	if dst != nil {
		t, ok := dst.(*Texture)
		if !ok {
			return fmt.Errorf("soft: foreign texture %T", dst)
		}
		out = t
	}
	if out.released {
		return errors.New("soft: draw into released texture")
	}

	shade, err := prog.kernel(uniforms)
	if err != nil {
		return fmt.Errorf("soft: %s: %w", prog.name, err)
	}

	d.draws++
	clear(out.pix)
	out.Paint(shade)
	return nil
}
