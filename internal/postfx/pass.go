package postfx

import (
	"errors"

	"trailbloom/internal/utils"
)

// FullscreenPass is a compiled program plus its uniform slots. Every
// declared slot must be bound before each Execute; Execute resets all
// bindings afterwards.
type FullscreenPass struct {
	name    string
	device  Device
	program Program
	slots   []Uniform
	err     *BindingError
}

// NewFullscreenPass compiles src on device.
func NewFullscreenPass(device Device, src ProgramSource) (*FullscreenPass, error) {
	program, err := device.CompileProgram(src)
	if err != nil {
		var compileErr *ShaderCompileError
		if errors.As(err, &compileErr) {
			return nil, err
		}
		return nil, &ShaderCompileError{Program: src.Name, Err: err}
	}

	slots := make([]Uniform, len(src.Uniforms))
	for i, decl := range src.Uniforms {
		slots[i] = Uniform{Name: decl.Name, Kind: decl.Kind}
	}

	utils.Debug("Pass: %s compiled (combos: %v, uniforms: %d)", src.Name, src.Combos, len(slots))
	return &FullscreenPass{
		name:    src.Name,
		device:  device,
		program: program,
		slots:   slots,
	}, nil
}

func (p *FullscreenPass) Name() string { return p.name }

func (p *FullscreenPass) slot(name string, kind UniformKind) *Uniform {
	u := FindUniform(p.slots, name)
	if u == nil {
		p.fail(name, "is not declared")
		return nil
	}
	if u.Kind != kind {
		p.fail(name, "bound as "+kind.String()+", declared "+u.Kind.String())
		return nil
	}
	return u
}

func (p *FullscreenPass) fail(name, reason string) {
	if p.err == nil {
		p.err = &BindingError{Pass: p.name, Uniform: name, Reason: reason}
	}
}

func (p *FullscreenPass) SetFloat(name string, v float32) *FullscreenPass {
	if u := p.slot(name, UniformFloat); u != nil {
		u.Value = [3]float32{v}
		u.bound = true
	}
	return p
}

func (p *FullscreenPass) SetVec2(name string, x, y float32) *FullscreenPass {
	if u := p.slot(name, UniformVec2); u != nil {
		u.Value = [3]float32{x, y}
		u.bound = true
	}
	return p
}

func (p *FullscreenPass) SetColor(name string, c Color) *FullscreenPass {
	if u := p.slot(name, UniformVec3); u != nil {
		u.Value = [3]float32{c.R, c.G, c.B}
		u.bound = true
	}
	return p
}

// SetTexture binds tex for the next Execute only.
func (p *FullscreenPass) SetTexture(name string, tex Texture) *FullscreenPass {
	if tex == nil {
		p.fail(name, "bound to a nil texture")
		return p
	}
	if u := p.slot(name, UniformSampler); u != nil {
		u.Texture = tex
		u.bound = true
	}
	return p
}

// Execute draws into dst, or into the screen when dst is nil.
func (p *FullscreenPass) Execute(dst *RenderTarget) error {
	defer p.reset()

	if p.err != nil {
		return p.err
	}
	for i := range p.slots {
		if !p.slots[i].bound {
			return &BindingError{Pass: p.name, Uniform: p.slots[i].Name, Reason: "is not bound"}
		}
	}

	var out Texture
	if dst != nil {
		out = dst.Texture()
		if out == nil {
			return &BindingError{Pass: p.name, Uniform: "<output>", Reason: "target " + dst.Name() + " is released"}
		}
		for i := range p.slots {
			if p.slots[i].Texture == out {
				return &BindingError{Pass: p.name, Uniform: p.slots[i].Name, Reason: "aliases the output target"}
			}
		}
	}
	return p.device.Draw(p.program, out, p.slots)
}

func (p *FullscreenPass) reset() {
	p.err = nil
	for i := range p.slots {
		p.slots[i].bound = false
		p.slots[i].Texture = nil
	}
}

// Release frees the compiled program.
func (p *FullscreenPass) Release() {
	if p == nil || p.program == nil {
		return
	}
	p.program.Release()
	p.program = nil
}
