package main

import (
	"context"
	"image"

	rl "github.com/gen2brain/raylib-go/raylib"

	"trailbloom/internal/debug"
	"trailbloom/internal/params"
	"trailbloom/internal/postfx"
	"trailbloom/internal/postfx/rlgpu"
	"trailbloom/internal/utils"
)

// Window owns the raylib window, the GPU pipeline and the demo scene.
type Window struct {
	opts     options
	source   *params.Source
	device   *rlgpu.Device
	pipeline *postfx.Pipeline
	scene    *orbitScene
	overlay  *debug.Overlay
}

func runWindow(ctx context.Context, opts options, source *params.Source, overlay image.Image) error {
	rl.SetTraceLogCallback(utils.RaylibLogCallback)
	flags := uint32(rl.FlagWindowResizable | rl.FlagVsyncHint)
	if opts.root {
		flags |= rl.FlagWindowUndecorated
	}
	rl.SetConfigFlags(flags)
	rl.InitWindow(int32(opts.width), int32(opts.height), "trailbloom")
	defer rl.CloseWindow()

	device := rlgpu.NewDevice(opts.maxTexture)
	defer device.Close()

	pipeline, err := postfx.NewPipeline(device, postfx.Config{
		Width:      rl.GetScreenWidth(),
		Height:     rl.GetScreenHeight(),
		Downsample: source.Current().Downsample,
		Overlay:    overlay,
	})
	if err != nil {
		return err
	}
	defer pipeline.Close()

	window := &Window{
		opts:     opts,
		source:   source,
		device:   device,
		pipeline: pipeline,
		scene:    newOrbitScene(),
		overlay:  debug.NewOverlay(),
	}
	window.overlay.Visible = utils.ShowDebugUI
	return window.Run(ctx)
}

func (window *Window) Run(ctx context.Context) error {
	rl.SetTargetFPS(int32(window.opts.fps))

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		window.Update()

		snap := window.source.Current()
		err := presentFrame(rl.BeginDrawing, func() error {
			if err := window.pipeline.RenderFrame(window.scene, snap); err != nil {
				return err
			}
			window.overlay.Draw(window.pipeline.Stats(), snap)
			return nil
		}, rl.EndDrawing)
		if err != nil {
			return err
		}
	}
	return nil
}

// presentFrame runs render between begin and present. A frame whose
// render fails is never presented.
func presentFrame(begin func(), render func() error, present func()) error {
	begin()
	if err := render(); err != nil {
		return err
	}
	present()
	return nil
}

func (window *Window) Update() {
	if rl.IsWindowResized() {
		window.pipeline.RequestResize(rl.GetScreenWidth(), rl.GetScreenHeight())
	}

	px, py := window.pointer()
	window.scene.Update(rl.GetFrameTime(), px, py)

	switch {
	case rl.IsKeyPressed(rl.KeyP):
		window.toggle("trail pause", func(s *postfx.Snapshot) *bool { return &s.TrailPaused })
	case rl.IsKeyPressed(rl.KeyB):
		window.toggle("bloom", func(s *postfx.Snapshot) *bool { return &s.BloomEnabled })
	case rl.IsKeyPressed(rl.KeyO):
		window.toggle("overlay", func(s *postfx.Snapshot) *bool { return &s.OverlayEnabled })
	case rl.IsKeyPressed(rl.KeyT):
		window.toggle("tint", func(s *postfx.Snapshot) *bool { return &s.TintEnabled })
	}

	if rl.IsKeyPressed(rl.KeyF8) {
		window.overlay.Toggle()
		utils.ShowDebugUI = window.overlay.Visible
	}
}

func (window *Window) toggle(name string, field func(*postfx.Snapshot) *bool) {
	snap := window.source.Update(func(s *postfx.Snapshot) {
		f := field(s)
		*f = !*f
	})
	utils.Info("Toggled %s: %v", name, *field(&snap))
}

// pointer returns the pointer position normalized to [-1,1]. A window
// behind the desktop gets no pointer events, so in root mode the global
// X11 pointer is queried instead.
func (window *Window) pointer() (float32, float32) {
	w, h := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
	var x, y float32
	if window.opts.root {
		gx, gy, err := utils.GetGlobalMousePosition()
		if err != nil {
			return 0, 0
		}
		x, y = float32(gx), float32(gy)
	} else {
		pos := rl.GetMousePosition()
		x, y = pos.X, pos.Y
	}
	return x/w*2 - 1, y/h*2 - 1
}
