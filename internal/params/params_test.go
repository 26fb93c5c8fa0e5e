package params

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailbloom/internal/postfx"
)

const yamlPreset = `
trail:
  decay: 0.5
  delay_frames: 2
bloom:
  enabled: false
  iterations: 40
final:
  tint: "#ff0000"
`

const tomlPreset = `
[trail]
decay = 0.5
delay_frames = 2

[bloom]
enabled = false
iterations = 40

[final]
tint = "#ff0000"
`

const jsonPreset = `{
  "trail": {"decay": 0.5, "delay_frames": 2},
  "bloom": {"enabled": false, "iterations": 40},
  "final": {"tint": "#ff0000"}
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"preset.yaml": yamlPreset,
		"preset.yml":  yamlPreset,
		"preset.toml": tomlPreset,
		"preset.json": jsonPreset,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			s, err := Load(writeFile(t, dir, name, content))
			require.NoError(t, err)

			assert.Equal(t, float32(0.5), s.Decay)
			assert.Equal(t, 2, s.DelayFrames)
			assert.False(t, s.BloomEnabled)
			assert.Equal(t, postfx.MaxIterations, s.Iterations, "out-of-range values are clamped")
			assert.Equal(t, postfx.Color{R: 1}, s.Tint)

			// untouched keys keep their defaults
			def := postfx.DefaultSnapshot()
			assert.Equal(t, def.BlendFactor, s.BlendFactor)
			assert.Equal(t, def.TrailEnabled, s.TrailEnabled)
			assert.Equal(t, def.Downsample, s.Downsample)
			assert.Equal(t, def.OverlayBlend, s.OverlayBlend)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(writeFile(t, dir, "preset.ini", "decay=1"))
	assert.ErrorContains(t, err, "unsupported preset extension")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, dir, "empty.yaml", "\n  \n"))
	assert.ErrorContains(t, err, "empty")

	_, err = Load(writeFile(t, dir, "bad.yaml", "trail: [1, 2"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, dir, "tint.toml", "[final]\ntint = \"teal\""))
	assert.ErrorContains(t, err, "final.tint")

	_, err = Load(writeFile(t, dir, "unknown.json", `{"trail": {"speed": 3}}`))
	assert.Error(t, err)
}

func TestEncodeDecode(t *testing.T) {
	s := postfx.DefaultSnapshot()
	s.Decay = 0.75
	s.BloomBlend = 0.25
	s.Tint = postfx.Color{R: 1, G: 0, B: 1}
	s.TrailPaused = true

	for _, format := range []Format{FormatYAML, FormatTOML, FormatJSON} {
		data, err := Encode(s, format)
		require.NoError(t, err)
		got, err := Decode(data, format, postfx.Snapshot{})
		require.NoError(t, err)
		assert.Equal(t, s, got, string(data))
	}
}

func TestSourceUpdate(t *testing.T) {
	src := NewSource(postfx.DefaultSnapshot(), "")

	got := src.Update(func(s *postfx.Snapshot) {
		s.BloomEnabled = false
		s.Iterations = 99
	})
	assert.False(t, got.BloomEnabled)
	assert.Equal(t, postfx.MaxIterations, got.Iterations)
	assert.Equal(t, got, src.Current())

	// snapshots are copies
	snap := src.Current()
	snap.Decay = 0
	assert.NotEqual(t, snap.Decay, src.Current().Decay)
}

func TestWatchWithoutFileReturnsOnCancel(t *testing.T) {
	src := NewSource(postfx.DefaultSnapshot(), "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, src.Watch(ctx))
}

// replaceFile writes content next to path and renames it into place, the
// way most editors save.
func replaceFile(t *testing.T, path, content string) {
	t.Helper()
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(content), 0644))
	require.NoError(t, os.Rename(tmp, path))
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "live.yaml", "trail:\n  decay: 0.2\n")

	src, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, float32(0.2), src.Current().Decay)

	results := make(chan error)
	src.Reloaded = results
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Watch(ctx) }()
	defer func() {
		cancel()
		assert.NoError(t, <-done)
	}()

	// Rewrite until the watcher has picked up a change; the watch may not
	// be registered when the first write lands.
	waitFor := func(content string, ok func(error) bool) {
		deadline := time.After(5 * time.Second)
		tick := time.NewTicker(50 * time.Millisecond)
		defer tick.Stop()
		replaceFile(t, path, content)
		for {
			select {
			case err := <-results:
				if ok(err) {
					return
				}
			case <-tick.C:
				replaceFile(t, path, content)
			case <-deadline:
				t.Fatalf("no reload observed for %q", content)
			}
		}
	}

	waitFor("trail:\n  decay: 0.6\n", func(err error) bool {
		return err == nil && src.Current().Decay == 0.6
	})
	assert.Equal(t, float32(0.6), src.Current().Decay)

	waitFor("trail: [broken", func(err error) bool { return err != nil })
	assert.Equal(t, float32(0.6), src.Current().Decay, "invalid edits keep the previous snapshot")
}

func TestDecodeKeepsBaseTint(t *testing.T) {
	base := postfx.DefaultSnapshot()
	base.Tint = postfx.Color{R: 0.3001, G: 0.7003, B: 0.123}

	for format, data := range map[Format]string{
		FormatYAML: "trail:\n  decay: 0.5\n",
		FormatTOML: "[trail]\ndecay = 0.5\n",
		FormatJSON: `{"trail": {"decay": 0.5}}`,
	} {
		got, err := Decode([]byte(data), format, base)
		require.NoError(t, err)
		assert.Equal(t, base.Tint, got.Tint, "format %d", format)
		assert.Equal(t, float32(0.5), got.Decay)
	}

	got, err := Decode([]byte("final:\n  tint: \"#ff0000\"\n"), FormatYAML, base)
	require.NoError(t, err)
	assert.Equal(t, postfx.Color{R: 1}, got.Tint)
}
