package postfx

import (
	"fmt"
	"strconv"
	"strings"
)

// Parameter ranges.
const (
	MaxDecay       = 0.995
	MinIterations  = 1
	MaxIterations  = 20
	MinDownsample  = 1
	MaxDownsample  = 8
	MinDelayFrames = 1
	MaxDelayFrames = 100
	MinScatter     = 0.3
	MaxScatter     = 30
	MaxIntensity   = 3
)

// Color is a linear RGB triple.
type Color struct {
	R, G, B float32
}

var White = Color{1, 1, 1}

// ParseColor accepts "#rgb", "#rrggbb" or "r g b" with components in [0,1].
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return Color{}, fmt.Errorf("invalid color %q", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		return Color{
			R: float32(v>>16&0xff) / 255,
			G: float32(v>>8&0xff) / 255,
			B: float32(v&0xff) / 255,
		}, nil
	}

	parts := strings.Fields(s)
	if len(parts) != 3 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	var c [3]float32
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		c[i] = float32(f)
	}
	return Color{c[0], c[1], c[2]}, nil
}

// Hex formats c as "#rrggbb".
func (c Color) Hex() string {
	b := func(v float32) int { return int(clamp(v, 0, 1)*255 + 0.5) }
	return fmt.Sprintf("#%02x%02x%02x", b(c.R), b(c.G), b(c.B))
}

// Snapshot holds every tunable value for one frame. It is passed by
// value and never modified by the pipeline.
type Snapshot struct {
	// Trail
	TrailEnabled bool
	TrailPaused  bool
	BlendFactor  float32
	Decay        float32
	TrailWeight  float32
	DelayFrames  int

	// Bloom
	BloomEnabled   bool
	BloomThreshold float32
	BloomIntensity float32
	BloomScatter   float32
	Iterations     int
	Downsample     int
	BloomBlend     float32

	// Final
	OverlayEnabled bool
	OverlayBlend   float32
	TintEnabled    bool
	Tint           Color
}

// DefaultSnapshot returns the stock look.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		TrailEnabled: true,
		BlendFactor:  0.4,
		Decay:        0.9,
		TrailWeight:  1,
		DelayFrames:  10,

		BloomEnabled:   true,
		BloomThreshold: 0.1,
		BloomIntensity: 0.6,
		BloomScatter:   1,
		Iterations:     14,
		Downsample:     4,
		BloomBlend:     0,

		OverlayEnabled: true,
		OverlayBlend:   0.5,
		TintEnabled:    true,
		Tint:           White,
	}
}

// Sanitized returns a copy with every value clamped to its range.
func (s Snapshot) Sanitized() Snapshot {
	s.BlendFactor = clamp(s.BlendFactor, 0, 1)
	s.Decay = clamp(s.Decay, 0, MaxDecay)
	s.TrailWeight = clamp(s.TrailWeight, 0, 1)
	s.DelayFrames = clampInt(s.DelayFrames, MinDelayFrames, MaxDelayFrames)

	s.BloomThreshold = clamp(s.BloomThreshold, 0, 1)
	s.BloomIntensity = clamp(s.BloomIntensity, 0, MaxIntensity)
	s.BloomScatter = clamp(s.BloomScatter, MinScatter, MaxScatter)
	s.Iterations = clampInt(s.Iterations, MinIterations, MaxIterations)
	s.Downsample = clampInt(s.Downsample, MinDownsample, MaxDownsample)
	s.BloomBlend = clamp(s.BloomBlend, 0, 1)

	s.OverlayBlend = clamp(s.OverlayBlend, 0, 1)
	s.Tint = Color{clamp(s.Tint.R, 0, 1), clamp(s.Tint.G, 0, 1), clamp(s.Tint.B, 0, 1)}
	return s
}

func clamp(v, lo, hi float32) float32 {
	// NaN collapses to lo.
	if !(v >= lo) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
