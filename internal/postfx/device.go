package postfx

import "image"

// Texture is a backend-owned color buffer. Only RenderTarget and the
// pipeline hold textures across calls; passes borrow them for one draw.
type Texture interface {
	Size() (width, height int)
	Release()
}

// Program is a compiled fragment program.
type Program interface {
	Release()
}

// Device is the backend the pipeline draws through.
type Device interface {
	// NewTexture allocates an HDR RGBA texture usable both as a draw
	// destination and as a sampler input.
	NewTexture(width, height int) (Texture, error)
	// LoadImage uploads a static, read-only texture.
	LoadImage(img image.Image) (Texture, error)
	CompileProgram(src ProgramSource) (Program, error)
	// Draw clears dst (the screen when dst is nil) and shades every pixel
	// once with program, reading the given uniforms.
	Draw(program Program, dst Texture, uniforms []Uniform) error
	MaxTextureSize() int
}

// ScreenSizer is implemented by devices whose presentation surface is
// sized by the pipeline rather than by a window system.
type ScreenSizer interface {
	SetScreenSize(width, height int) error
}

// SceneRenderer produces the color image of the current frame.
type SceneRenderer interface {
	RenderScene(dst Texture) error
}

// SceneFunc adapts a function to SceneRenderer.
type SceneFunc func(dst Texture) error

func (f SceneFunc) RenderScene(dst Texture) error { return f(dst) }

type UniformKind int

const (
	UniformFloat UniformKind = iota
	UniformVec2
	UniformVec3
	UniformSampler
)

func (k UniformKind) String() string {
	switch k {
	case UniformFloat:
		return "float"
	case UniformVec2:
		return "vec2"
	case UniformVec3:
		return "vec3"
	case UniformSampler:
		return "sampler2D"
	}
	return "unknown"
}

// UniformDecl names a uniform the fragment stage reads.
type UniformDecl struct {
	Name string
	Kind UniformKind
}

// Uniform is one bound uniform slot as handed to Device.Draw.
type Uniform struct {
	Name    string
	Kind    UniformKind
	Value   [3]float32
	Texture Texture
	bound   bool
}

// ProgramSource describes a fragment program. Name identifies the
// shading function; Combos are compile-time switches injected as
// #defines.
type ProgramSource struct {
	Name     string
	Fragment string
	Combos   map[string]int
	Uniforms []UniformDecl
}

// Combo reports whether the named combo is set to a non-zero value.
func (s ProgramSource) Combo(name string) bool {
	return s.Combos[name] != 0
}

// FindUniform returns the slot with the given name, or nil.
func FindUniform(uniforms []Uniform, name string) *Uniform {
	for i := range uniforms {
		if uniforms[i].Name == name {
			return &uniforms[i]
		}
	}
	return nil
}
