package postfx_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailbloom/internal/postfx"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want postfx.Color
	}{
		{"#ffffff", postfx.White},
		{"#f00", postfx.Color{R: 1}},
		{" #00ff00 ", postfx.Color{G: 1}},
		{"0.5 0.25 1", postfx.Color{R: 0.5, G: 0.25, B: 1}},
	}
	for _, tt := range tests {
		got, err := postfx.ParseColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "#12", "#gggggg", "1 2", "a b c"} {
		_, err := postfx.ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestColorHex(t *testing.T) {
	assert.Equal(t, "#ffffff", postfx.White.Hex())
	assert.Equal(t, "#ff8000", postfx.Color{R: 1, G: 0.5, B: 0}.Hex())
	assert.Equal(t, "#ff0000", postfx.Color{R: 2, G: -1}.Hex())
}

func TestDefaultSnapshotIsInRange(t *testing.T) {
	s := postfx.DefaultSnapshot()
	assert.Equal(t, s, s.Sanitized())
	assert.Equal(t, 14, s.Iterations)
	assert.Equal(t, 4, s.Downsample)
}

func TestSanitized(t *testing.T) {
	s := postfx.Snapshot{
		BlendFactor:    -1,
		Decay:          1,
		TrailWeight:    float32(math.NaN()),
		DelayFrames:    1000,
		BloomThreshold: 2,
		BloomIntensity: 10,
		BloomScatter:   0,
		Iterations:     0,
		Downsample:     16,
		BloomBlend:     -0.5,
		OverlayBlend:   1.5,
		Tint:           postfx.Color{R: -1, G: 0.5, B: 9},
	}.Sanitized()

	assert.Equal(t, float32(0), s.BlendFactor)
	assert.Equal(t, float32(postfx.MaxDecay), s.Decay)
	assert.Equal(t, float32(0), s.TrailWeight, "NaN collapses to the lower bound")
	assert.Equal(t, postfx.MaxDelayFrames, s.DelayFrames)
	assert.Equal(t, float32(1), s.BloomThreshold)
	assert.Equal(t, float32(postfx.MaxIntensity), s.BloomIntensity)
	assert.Equal(t, float32(postfx.MinScatter), s.BloomScatter)
	assert.Equal(t, postfx.MinIterations, s.Iterations)
	assert.Equal(t, postfx.MaxDownsample, s.Downsample)
	assert.Equal(t, float32(0), s.BloomBlend)
	assert.Equal(t, float32(1), s.OverlayBlend)
	assert.Equal(t, postfx.Color{R: 0, G: 0.5, B: 1}, s.Tint)
}
