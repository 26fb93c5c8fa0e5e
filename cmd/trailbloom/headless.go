package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"trailbloom/internal/convert"
	"trailbloom/internal/params"
	"trailbloom/internal/postfx"
	"trailbloom/internal/postfx/soft"
	"trailbloom/internal/utils"
)

func runHeadless(ctx context.Context, opts options, source *params.Source, overlay image.Image) error {
	if opts.frames <= 0 {
		return fmt.Errorf("headless: -frames must be positive, got %d", opts.frames)
	}
	outDir := utils.ExpandPath(opts.outDir)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	device := soft.NewDevice(opts.width, opts.height)
	device.SetMaxTextureSize(opts.maxTexture)

	pipeline, err := postfx.NewPipeline(device, postfx.Config{
		Width:      opts.width,
		Height:     opts.height,
		Downsample: source.Current().Downsample,
		Overlay:    overlay,
	})
	if err != nil {
		return err
	}
	defer pipeline.Close()

	scene := newBlobScene(opts.seed, 6)
	bar := progressbar.Default(int64(opts.frames), "rendering")
	defer bar.Close()

	for i := 1; i <= opts.frames; i++ {
		if ctx.Err() != nil {
			utils.Warn("Headless: interrupted after %d frames", i-1)
			return nil
		}
		if err := pipeline.RenderFrame(scene, source.Current()); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}

		if (opts.every > 0 && i%opts.every == 0) || i == opts.frames {
			path := filepath.Join(outDir, fmt.Sprintf("frame_%05d.png", i))
			if err := convert.SavePNG(path, device.Screen().Image()); err != nil {
				return err
			}
			utils.Debug("Headless: wrote %s", path)
		}
		bar.Add(1)
	}

	stats := pipeline.Stats()
	utils.Info("Headless: %d frames, %d trail updates, output in %s", stats.Frames, stats.TrailUpdates, outDir)
	return nil
}
