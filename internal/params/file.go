// Package params loads parameter presets from YAML, TOML or JSON files
// and publishes them to the render loop as immutable snapshots.
package params

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"trailbloom/internal/postfx"
)

type TrailSection struct {
	Enabled     bool    `yaml:"enabled" toml:"enabled" json:"enabled"`
	Paused      bool    `yaml:"paused" toml:"paused" json:"paused"`
	BlendFactor float32 `yaml:"blend" toml:"blend" json:"blend"`
	Decay       float32 `yaml:"decay" toml:"decay" json:"decay"`
	Weight      float32 `yaml:"weight" toml:"weight" json:"weight"`
	DelayFrames int     `yaml:"delay_frames" toml:"delay_frames" json:"delay_frames"`
}

type BloomSection struct {
	Enabled    bool    `yaml:"enabled" toml:"enabled" json:"enabled"`
	Threshold  float32 `yaml:"threshold" toml:"threshold" json:"threshold"`
	Intensity  float32 `yaml:"intensity" toml:"intensity" json:"intensity"`
	Scatter    float32 `yaml:"scatter" toml:"scatter" json:"scatter"`
	Iterations int     `yaml:"iterations" toml:"iterations" json:"iterations"`
	Downsample int     `yaml:"downsample" toml:"downsample" json:"downsample"`
	Blend      float32 `yaml:"blend" toml:"blend" json:"blend"`
}

type FinalSection struct {
	OverlayEnabled bool    `yaml:"overlay" toml:"overlay" json:"overlay"`
	OverlayBlend   float32 `yaml:"overlay_blend" toml:"overlay_blend" json:"overlay_blend"`
	TintEnabled    bool    `yaml:"tint_enabled" toml:"tint_enabled" json:"tint_enabled"`
	Tint           string  `yaml:"tint" toml:"tint" json:"tint"`
}

// File is the on-disk preset layout. Keys missing from a file keep the
// values File was initialized with.
type File struct {
	Trail TrailSection `yaml:"trail" toml:"trail" json:"trail"`
	Bloom BloomSection `yaml:"bloom" toml:"bloom" json:"bloom"`
	Final FinalSection `yaml:"final" toml:"final" json:"final"`
}

func FromSnapshot(s postfx.Snapshot) File {
	return File{
		Trail: TrailSection{
			Enabled:     s.TrailEnabled,
			Paused:      s.TrailPaused,
			BlendFactor: s.BlendFactor,
			Decay:       s.Decay,
			Weight:      s.TrailWeight,
			DelayFrames: s.DelayFrames,
		},
		Bloom: BloomSection{
			Enabled:    s.BloomEnabled,
			Threshold:  s.BloomThreshold,
			Intensity:  s.BloomIntensity,
			Scatter:    s.BloomScatter,
			Iterations: s.Iterations,
			Downsample: s.Downsample,
			Blend:      s.BloomBlend,
		},
		Final: FinalSection{
			OverlayEnabled: s.OverlayEnabled,
			OverlayBlend:   s.OverlayBlend,
			TintEnabled:    s.TintEnabled,
			Tint:           s.Tint.Hex(),
		},
	}
}

// Snapshot converts f, clamping every value into its range. An empty
// tint is white.
func (f File) Snapshot() (postfx.Snapshot, error) {
	return f.snapshot(postfx.White)
}

// snapshot converts f, using fallback when f has no tint.
func (f File) snapshot(fallback postfx.Color) (postfx.Snapshot, error) {
	tint := fallback
	if f.Final.Tint != "" {
		var err error
		if tint, err = postfx.ParseColor(f.Final.Tint); err != nil {
			return postfx.Snapshot{}, fmt.Errorf("final.tint: %w", err)
		}
	}
	s := postfx.Snapshot{
		TrailEnabled:   f.Trail.Enabled,
		TrailPaused:    f.Trail.Paused,
		BlendFactor:    f.Trail.BlendFactor,
		Decay:          f.Trail.Decay,
		TrailWeight:    f.Trail.Weight,
		DelayFrames:    f.Trail.DelayFrames,
		BloomEnabled:   f.Bloom.Enabled,
		BloomThreshold: f.Bloom.Threshold,
		BloomIntensity: f.Bloom.Intensity,
		BloomScatter:   f.Bloom.Scatter,
		Iterations:     f.Bloom.Iterations,
		Downsample:     f.Bloom.Downsample,
		BloomBlend:     f.Bloom.Blend,
		OverlayEnabled: f.Final.OverlayEnabled,
		OverlayBlend:   f.Final.OverlayBlend,
		TintEnabled:    f.Final.TintEnabled,
		Tint:           tint,
	}
	return s.Sanitized(), nil
}

// Format is a preset encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
	FormatJSON
)

// FormatOf picks the encoding from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return 0, fmt.Errorf("unsupported preset extension %q", filepath.Ext(path))
}

// Decode overlays data onto base. The base tint is kept exactly unless
// the data sets one.
func Decode(data []byte, format Format, base postfx.Snapshot) (postfx.Snapshot, error) {
	f := FromSnapshot(base)
	f.Final.Tint = ""
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	case FormatTOML:
		err = toml.Unmarshal(data, &f)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&f)
	default:
		err = fmt.Errorf("unknown format %d", format)
	}
	if err != nil {
		return postfx.Snapshot{}, err
	}
	return f.snapshot(base.Tint)
}

// Encode renders s in the given format.
func Encode(s postfx.Snapshot, format Format) ([]byte, error) {
	f := FromSnapshot(s)
	switch format {
	case FormatYAML:
		return yaml.Marshal(f)
	case FormatTOML:
		return toml.Marshal(f)
	case FormatJSON:
		return json.MarshalIndent(f, "", "  ")
	}
	return nil, fmt.Errorf("unknown format %d", format)
}

// Load reads a preset over the defaults.
func Load(path string) (postfx.Snapshot, error) {
	format, err := FormatOf(path)
	if err != nil {
		return postfx.Snapshot{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return postfx.Snapshot{}, err
	}
	// An editor may truncate before writing; never publish defaults for it.
	if len(bytes.TrimSpace(data)) == 0 {
		return postfx.Snapshot{}, fmt.Errorf("preset %s is empty", path)
	}
	s, err := Decode(data, format, postfx.DefaultSnapshot())
	if err != nil {
		return postfx.Snapshot{}, fmt.Errorf("preset %s: %w", path, err)
	}
	return s, nil
}
