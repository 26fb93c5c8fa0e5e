package main

import (
	"context"
	"flag"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"trailbloom/internal/convert"
	"trailbloom/internal/params"
	"trailbloom/internal/postfx"
	"trailbloom/internal/utils"
)

type options struct {
	width, height int
	root          bool
	paramsPath    string
	overlayPath   string
	fps           int
	maxTexture    int
	headless      bool
	frames        int
	outDir        string
	every         int
	seed          uint64
}

func main() {
	var opts options
	flag.IntVar(&opts.width, "width", 1280, "Output width")
	flag.IntVar(&opts.height, "height", 720, "Output height")
	flag.BoolVar(&opts.root, "root", false, "Size the output to the X11 root window")
	flag.StringVar(&opts.paramsPath, "params", "", "Preset file (.yaml, .toml or .json), reloaded on change")
	flag.StringVar(&opts.overlayPath, "overlay", "", "Paper texture (png, jpg, webp, bmp or .tex); procedural when empty")
	flag.IntVar(&opts.fps, "fps", 60, "Target frame rate")
	flag.IntVar(&opts.maxTexture, "max-texture", 16384, "Largest texture dimension the device may allocate")
	flag.BoolVar(&opts.headless, "headless", false, "Render on the CPU without opening a window")
	flag.IntVar(&opts.frames, "frames", 120, "Frames to render in headless mode")
	flag.StringVar(&opts.outDir, "out", "out", "Output directory for headless frames")
	flag.IntVar(&opts.every, "every", 0, "Write every N-th headless frame (0 writes only the last)")
	flag.Uint64Var(&opts.seed, "seed", 1, "Seed for procedural paper and the headless scene")
	logLevel := flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	debugFlag := flag.Bool("debug", false, "Enable verbose debug logging")
	flag.BoolVar(&utils.ShowDebugUI, "debug-ui", false, "Show the stats overlay at startup (toggle with F8)")
	flag.BoolVar(&utils.ShowRaylibInfo, "raylib-info", false, "Log raylib info messages at any log level")
	flag.Parse()

	level, err := utils.ParseLevel(*logLevel)
	if err != nil {
		utils.Error("%v", err)
		os.Exit(2)
	}
	utils.CurrentLevel = level
	utils.DebugMode = *debugFlag
	if utils.DebugMode {
		utils.CurrentLevel = utils.LevelDebug
	}

	if err := run(opts); err != nil {
		utils.Error("%v", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.root {
		defer utils.CloseX11()
		w, h, err := utils.RootWindowSize()
		if err != nil {
			utils.Warn("X11 root size unavailable, using %dx%d: %v", opts.width, opts.height, err)
		} else {
			opts.width, opts.height = w, h
		}
	}

	source, err := openParams(opts.paramsPath)
	if err != nil {
		return err
	}
	go func() {
		if err := source.Watch(ctx); err != nil {
			utils.Warn("Params: hot reload disabled: %v", err)
		}
	}()

	overlay, err := loadOverlay(opts)
	if err != nil {
		return err
	}

	if opts.headless {
		return runHeadless(ctx, opts, source, overlay)
	}
	return runWindow(ctx, opts, source, overlay)
}

// openParams loads the given preset, or the first preset found in the
// user config directory, or the defaults.
func openParams(path string) (*params.Source, error) {
	if path == "" {
		for _, name := range []string{"params.yaml", "params.toml", "params.json"} {
			p := filepath.Join(utils.ConfigDir(), name)
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path == "" {
		return params.NewSource(postfx.DefaultSnapshot(), ""), nil
	}
	path = utils.ResolveAssetPath(path)
	utils.Info("Params: loading %s", path)
	return params.Open(path)
}

func loadOverlay(opts options) (image.Image, error) {
	if opts.overlayPath == "" {
		utils.Debug("Overlay: generating procedural paper %dx%d", opts.width, opts.height)
		return convert.GeneratePaper(opts.width, opts.height, opts.seed), nil
	}
	img, err := convert.LoadImageFile(opts.overlayPath)
	if err != nil {
		return nil, err
	}
	return img, nil
}
