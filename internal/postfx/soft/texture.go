// Package soft is a CPU implementation of postfx.Device. It shades every
// pixel in Go and is used by tests and headless rendering.
package soft

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
)

// RGBA is one float32 texel.
type RGBA [4]float32

// Texture is a float32 RGBA image. Row 0 is the top of the image.
type Texture struct {
	w, h     int
	pix      []float32
	released bool
	device   *Device
}

func newTexture(d *Device, w, h int) *Texture {
	return &Texture{w: w, h: h, pix: make([]float32, w*h*4), device: d}
}

func (t *Texture) Size() (int, int) { return t.w, t.h }

func (t *Texture) Release() {
	if t.released {
		return
	}
	t.released = true
	t.pix = nil
	if t.device != nil {
		t.device.live--
	}
}

// Released reports whether Release has been called.
func (t *Texture) Released() bool { return t.released }

func (t *Texture) At(x, y int) RGBA {
	i := (y*t.w + x) * 4
	return RGBA{t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3]}
}

func (t *Texture) Set(x, y int, c RGBA) {
	i := (y*t.w + x) * 4
	copy(t.pix[i:i+4], c[:])
}

// Fill sets every texel to c.
func (t *Texture) Fill(c RGBA) {
	for i := 0; i < len(t.pix); i += 4 {
		copy(t.pix[i:i+4], c[:])
	}
}

// Paint sets every texel from f, called with texel-center UVs.
func (t *Texture) Paint(f func(u, v float32) RGBA) {
	for y := 0; y < t.h; y++ {
		v := (float32(y) + 0.5) / float32(t.h)
		for x := 0; x < t.w; x++ {
			u := (float32(x) + 0.5) / float32(t.w)
			t.Set(x, y, f(u, v))
		}
	}
}

// Mean returns the average of each channel.
func (t *Texture) Mean() RGBA {
	var sum [4]float64
	for i := 0; i < len(t.pix); i += 4 {
		for c := 0; c < 4; c++ {
			sum[c] += float64(t.pix[i+c])
		}
	}
	n := float64(t.w * t.h)
	return RGBA{float32(sum[0] / n), float32(sum[1] / n), float32(sum[2] / n), float32(sum[3] / n)}
}

// Sample reads the texture at uv with bilinear filtering and
// clamp-to-edge addressing, as a GPU sampler would.
func (t *Texture) Sample(u, v float32) RGBA {
	x := u*float32(t.w) - 0.5
	y := v*float32(t.h) - 0.5
	x0, fx := split(x)
	y0, fy := split(y)

	c00 := t.at(x0, y0)
	c10 := t.at(x0+1, y0)
	c01 := t.at(x0, y0+1)
	c11 := t.at(x0+1, y0+1)

	var out RGBA
	for c := 0; c < 4; c++ {
		top := c00[c] + (c10[c]-c00[c])*fx
		bottom := c01[c] + (c11[c]-c01[c])*fx
		out[c] = top + (bottom-top)*fy
	}
	return out
}

// subtexelSnap absorbs float rounding so that texel-center coordinates
// fetch exactly one texel, like the limited subtexel precision of GPU
// samplers.
const subtexelSnap = 1.0 / 4096

func split(x float32) (int, float32) {
	f := math32.Floor(x)
	frac := x - f
	switch {
	case frac < subtexelSnap:
		return int(f), 0
	case frac > 1-subtexelSnap:
		return int(f) + 1, 0
	}
	return int(f), frac
}

func (t *Texture) at(x, y int) RGBA {
	x = min(max(x, 0), t.w-1)
	y = min(max(y, 0), t.h-1)
	return t.At(x, y)
}

// Image converts the texture to an 8-bit image, clamping to [0,1].
func (t *Texture) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.w, t.h))
	for y := 0; y < t.h; y++ {
		for x := 0; x < t.w; x++ {
			c := t.At(x, y)
			img.SetRGBA(x, y, color.RGBA{to8(c[0]), to8(c[1]), to8(c[2]), to8(c[3])})
		}
	}
	return img
}

func to8(v float32) uint8 {
	return uint8(math32.Min(math32.Max(v, 0), 1)*255 + 0.5)
}

func fromImage(d *Device, img image.Image) *Texture {
	b := img.Bounds()
	t := newTexture(d, max(1, b.Dx()), max(1, b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			t.Set(x, y, RGBA{float32(r) / 0xffff, float32(g) / 0xffff, float32(bl) / 0xffff, float32(a) / 0xffff})
		}
	}
	return t
}
