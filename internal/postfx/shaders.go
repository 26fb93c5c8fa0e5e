package postfx

import (
	"fmt"
	"sort"
	"strings"
)

// Program names. Backends without a GLSL compiler dispatch on these.
const (
	ProgramTrail     = "trail"
	ProgramMix       = "mix"
	ProgramBright    = "bright"
	ProgramBlur      = "blur"
	ProgramComposite = "composite"
)

// Blur tap weights: center, +offset, -offset.
const (
	BlurCenterWeight = 0.294
	BlurSideWeight   = 0.353
)

// Composite combos.
const (
	ComboBloom   = "BLOOM"
	ComboOverlay = "OVERLAY"
	ComboTint    = "TINT"
)

// Render targets are stored bottom-up, so inputs are sampled with a
// flipped v. The static overlay is uploaded top-down and is not.
const fragmentPrelude = `
in vec2 fragTexCoord;
in vec4 fragColor;
out vec4 finalColor;
#define RT_UV vec2(fragTexCoord.x, 1.0 - fragTexCoord.y)
`

const softLightSource = `
float BlendSoftLightf(float base, float blend) {
    return (blend < 0.5)
        ? (2.0 * base * blend + base * base * (1.0 - 2.0 * blend))
        : (sqrt(base) * (2.0 * blend - 1.0) + 2.0 * base * (1.0 - blend));
}
vec3 BlendSoftLight(vec3 base, vec3 blend) {
    return vec3(BlendSoftLightf(base.r, blend.r),
                BlendSoftLightf(base.g, blend.g),
                BlendSoftLightf(base.b, blend.b));
}
`

// TrailProgram writes clamp(current*blendWeight + prev*decay, 0, 1).
func TrailProgram() ProgramSource {
	return ProgramSource{
		Name: ProgramTrail,
		Fragment: `
uniform sampler2D current;
uniform sampler2D prev;
uniform float decay;
uniform float blendWeight;
void main() {
    vec3 c = texture(current, RT_UV).rgb * blendWeight;
    vec3 p = texture(prev, RT_UV).rgb * decay;
    finalColor = vec4(clamp(c + p, 0.0, 1.0), 1.0);
}`,
		Uniforms: []UniformDecl{
			{"current", UniformSampler},
			{"prev", UniformSampler},
			{"decay", UniformFloat},
			{"blendWeight", UniformFloat},
		},
	}
}

// MixProgram writes clamp(current + trail*blend, 0, 1).
func MixProgram() ProgramSource {
	return ProgramSource{
		Name: ProgramMix,
		Fragment: `
uniform sampler2D current;
uniform sampler2D trail;
uniform float blend;
void main() {
    vec3 c = texture(current, RT_UV).rgb;
    vec3 t = texture(trail, RT_UV).rgb;
    finalColor = vec4(clamp(c + t * blend, 0.0, 1.0), 1.0);
}`,
		Uniforms: []UniformDecl{
			{"current", UniformSampler},
			{"trail", UniformSampler},
			{"blend", UniformFloat},
		},
	}
}

// BrightProgram keeps texels whose max channel exceeds thresh.
func BrightProgram() ProgramSource {
	return ProgramSource{
		Name: ProgramBright,
		Fragment: `
uniform sampler2D src;
uniform float thresh;
void main() {
    vec3 c = texture(src, RT_UV).rgb;
    float l = max(max(c.r, c.g), c.b);
    finalColor = vec4(l > thresh ? c : vec3(0.0), 1.0);
}`,
		Uniforms: []UniformDecl{
			{"src", UniformSampler},
			{"thresh", UniformFloat},
		},
	}
}

// BlurProgram is one directional 3-tap blur step.
func BlurProgram() ProgramSource {
	return ProgramSource{
		Name: ProgramBlur,
		Fragment: fmt.Sprintf(`
uniform sampler2D src;
uniform vec2 offset;
void main() {
    vec2 uv = RT_UV;
    vec3 s = texture(src, uv).rgb * %.3f;
    s += texture(src, uv + offset).rgb * %.3f;
    s += texture(src, uv - offset).rgb * %.3f;
    finalColor = vec4(s, 1.0);
}`, BlurCenterWeight, BlurSideWeight, BlurSideWeight),
		Uniforms: []UniformDecl{
			{"src", UniformSampler},
			{"offset", UniformVec2},
		},
	}
}

// CompositeProgram builds the final composite variant for the given
// modifiers. Disabled modifiers are compiled out entirely.
func CompositeProgram(bloom, overlay, tint bool) ProgramSource {
	combos := map[string]int{
		ComboBloom:   boolInt(bloom),
		ComboOverlay: boolInt(overlay),
		ComboTint:    boolInt(tint),
	}

	uniforms := []UniformDecl{{"base", UniformSampler}}
	if bloom {
		uniforms = append(uniforms,
			UniformDecl{"bloom", UniformSampler},
			UniformDecl{"intensity", UniformFloat},
			UniformDecl{"bloomBlend", UniformFloat})
	}
	if overlay {
		uniforms = append(uniforms,
			UniformDecl{"paper", UniformSampler},
			UniformDecl{"paperBlend", UniformFloat})
	}
	if tint {
		uniforms = append(uniforms, UniformDecl{"finalColorOverlay", UniformVec3})
	}

	return ProgramSource{
		Name:   ProgramComposite,
		Combos: combos,
		Fragment: softLightSource + `
uniform sampler2D base;
#if BLOOM
uniform sampler2D bloom;
uniform float intensity;
uniform float bloomBlend;
#endif
#if OVERLAY
uniform sampler2D paper;
uniform float paperBlend;
#endif
#if TINT
uniform vec3 finalColorOverlay;
#endif
void main() {
    vec3 col = texture(base, RT_UV).rgb;
#if BLOOM
    vec3 bloomC = texture(bloom, RT_UV).rgb * intensity;
    col = mix(col + bloomC, bloomC, bloomBlend);
#endif
#if OVERLAY
    vec3 paperC = texture(paper, fragTexCoord).rgb;
    col = mix(col, BlendSoftLight(col, paperC), paperBlend);
#endif
#if TINT
    col *= finalColorOverlay;
#endif
    finalColor = vec4(clamp(col, 0.0, 1.0), 1.0);
}`,
		Uniforms: uniforms,
	}
}

// CompositeVariant indexes the eight composite variants.
func CompositeVariant(bloom, overlay, tint bool) int {
	return boolInt(bloom) | boolInt(overlay)<<1 | boolInt(tint)<<2
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Preprocess assembles the GLSL 330 fragment source for src: version
// header, combo defines, compatibility macros, then the program body.
func Preprocess(src ProgramSource) string {
	var sb strings.Builder
	sb.WriteString("#version 330\n")

	keys := make([]string, 0, len(src.Combos))
	for k := range src.Combos {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "#define %s %d\n", k, src.Combos[k])
	}

	sb.WriteString("#define saturate(x) clamp(x, 0.0, 1.0)\n")
	sb.WriteString("#define lerp mix\n")
	sb.WriteString("#define frac fract\n")
	sb.WriteString(fragmentPrelude)
	sb.WriteString(src.Fragment)
	sb.WriteString("\n")
	return sb.String()
}
