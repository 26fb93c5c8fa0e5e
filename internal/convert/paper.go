package convert

import (
	"image"
	"image/color"
	"math/rand/v2"

	"github.com/chewxy/math32"
)

// GeneratePaper renders a procedural paper grain centered on mid-gray:
// fine per-pixel noise plus a few low-frequency fibers. Soft light with
// mid-gray is the identity, so the result only adds texture.
func GeneratePaper(width, height int, seed uint64) *image.Gray {
	width, height = max(1, width), max(1, height)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	// fiber phases
	var phase [4]float32
	for i := range phase {
		phase[i] = rng.Float32() * 2 * math32.Pi
	}

	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		fy := float32(y) / float32(height)
		for x := 0; x < width; x++ {
			fx := float32(x) / float32(width)
			fiber := math32.Sin(fx*37+phase[0])*math32.Sin(fy*11+phase[1]) +
				0.5*math32.Sin((fx+fy)*83+phase[2])*math32.Cos(fx*23-fy*19+phase[3])
			grain := rng.Float32() - 0.5
			v := 0.5 + 0.03*fiber + 0.08*grain
			img.SetGray(x, y, color.Gray{Y: uint8(math32.Min(math32.Max(v, 0), 1)*255 + 0.5)})
		}
	}
	return img
}
