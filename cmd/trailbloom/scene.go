package main

import (
	"errors"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"trailbloom/internal/postfx"
	"trailbloom/internal/postfx/rlgpu"
)

var orbitColors = [...]rl.Color{rl.Orange, rl.SkyBlue, rl.Gold, rl.Purple, rl.Lime}

// orbitScene draws a few lit shapes circling the origin. The camera
// orbits slowly and can be tilted with the pointer.
type orbitScene struct {
	camera rl.Camera3D
	time   float32
	tiltX  float32
	tiltY  float32

	// positions of the orbiting shapes, updated in place each frame
	positions [len(orbitColors)]rl.Vector3
}

func newOrbitScene() *orbitScene {
	return &orbitScene{
		camera: rl.Camera3D{
			Position:   rl.NewVector3(0, 4, 10),
			Target:     rl.NewVector3(0, 0, 0),
			Up:         rl.NewVector3(0, 1, 0),
			Fovy:       45,
			Projection: rl.CameraPerspective,
		},
	}
}

// Update advances the animation. pointerX and pointerY are normalized
// to [-1,1].
func (s *orbitScene) Update(dt, pointerX, pointerY float32) {
	s.time += dt
	s.tiltX += (pointerX - s.tiltX) * math32.Min(dt*4, 1)
	s.tiltY += (pointerY - s.tiltY) * math32.Min(dt*4, 1)

	angle := s.time*0.2 + s.tiltX
	s.camera.Position = rl.NewVector3(10*math32.Sin(angle), 4-s.tiltY*3, 10*math32.Cos(angle))

	for i := range s.positions {
		phase := s.time*(0.6+0.15*float32(i)) + float32(i)*2*math32.Pi/float32(len(orbitColors))
		s.positions[i] = rl.NewVector3(3.5*math32.Cos(phase), 0.8*math32.Sin(phase*2), 3.5*math32.Sin(phase))
	}
}

func (s *orbitScene) RenderScene(dst postfx.Texture) error {
	rt, ok := rlgpu.RenderTexture(dst)
	if !ok {
		return errors.New("orbit scene needs a raylib render target")
	}

	rl.BeginTextureMode(rt)
	rl.ClearBackground(rl.NewColor(8, 8, 14, 255))
	rl.BeginMode3D(s.camera)

	for i, col := range orbitColors {
		pos := s.positions[i]
		if i%2 == 0 {
			rl.DrawSphere(pos, 0.6, col)
		} else {
			rl.DrawCube(pos, 0.9, 0.9, 0.9, col)
		}
	}
	rl.DrawSphere(rl.NewVector3(0, 0, 0), 1.2, rl.RayWhite)
	rl.DrawGrid(20, 1)

	rl.EndMode3D()
	rl.EndTextureMode()
	return nil
}
