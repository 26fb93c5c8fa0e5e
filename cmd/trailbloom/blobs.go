package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/chewxy/math32"

	"trailbloom/internal/postfx"
	"trailbloom/internal/postfx/soft"
)

type blob struct {
	x, y, vx, vy, radius float32
	color                soft.RGBA
}

// blobScene moves a few glowing discs across a dark background. It is
// drawn on the CPU for headless rendering.
type blobScene struct {
	blobs []blob
}

func newBlobScene(seed uint64, count int) *blobScene {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	palette := []soft.RGBA{
		{1, 0.35, 0.2, 1},
		{0.2, 0.8, 1, 1},
		{1, 0.9, 0.3, 1},
		{0.7, 0.3, 1, 1},
	}
	s := &blobScene{blobs: make([]blob, count)}
	for i := range s.blobs {
		s.blobs[i] = blob{
			x:      rng.Float32(),
			y:      rng.Float32(),
			vx:     (rng.Float32() - 0.5) * 0.02,
			vy:     (rng.Float32() - 0.5) * 0.02,
			radius: 0.03 + rng.Float32()*0.05,
			color:  palette[i%len(palette)],
		}
	}
	return s
}

func (s *blobScene) step() {
	for i := range s.blobs {
		b := &s.blobs[i]
		b.x += b.vx
		b.y += b.vy
		if b.x < 0 || b.x > 1 {
			b.vx = -b.vx
		}
		if b.y < 0 || b.y > 1 {
			b.vy = -b.vy
		}
	}
}

// RenderScene advances the scene by one frame and paints it into dst.
func (s *blobScene) RenderScene(dst postfx.Texture) error {
	tex, ok := dst.(*soft.Texture)
	if !ok {
		return fmt.Errorf("blob scene needs a soft texture, got %T", dst)
	}
	s.step()

	w, h := tex.Size()
	aspect := float32(w) / float32(h)
	tex.Paint(func(u, v float32) soft.RGBA {
		c := soft.RGBA{0.02, 0.02, 0.04, 1}
		for _, b := range s.blobs {
			dx, dy := (u-b.x)*aspect, v-b.y
			d := math32.Sqrt(dx*dx+dy*dy) / b.radius
			if d >= 1 {
				continue
			}
			k := 1 - d*d
			for i := 0; i < 3; i++ {
				c[i] += b.color[i] * k
			}
		}
		return c
	})
	return nil
}
