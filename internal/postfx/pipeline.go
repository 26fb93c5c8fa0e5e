package postfx

import (
	"image"
	"image/color"

	"trailbloom/internal/utils"
)

// Config sizes a new pipeline.
type Config struct {
	Width      int
	Height     int
	Downsample int
	// Overlay is the static paper texture. A nil overlay is replaced by
	// a 1x1 mid-gray image, which soft light leaves almost unchanged.
	Overlay image.Image
}

// Stats describes the pipeline for diagnostics.
type Stats struct {
	Width, Height       int
	LowWidth, LowHeight int
	Downsample          int
	Frames              uint64
	TrailUpdates        uint64
	TrailIndex          int
}

// Pipeline owns every render target and pass of the compositor and runs
// the fixed per-frame sequence: capture, trail, mix, bloom, composite.
type Pipeline struct {
	device Device

	width, height int
	pendingW      int
	pendingH      int
	hasPending    bool

	source  *RenderTarget
	display *RenderTarget
	trail   *PingPong
	bloom   *BloomChain

	mixPass         *FullscreenPass
	compositePasses [8]*FullscreenPass

	overlay   Texture
	lastBloom *RenderTarget

	frames       uint64
	trailUpdates uint64
}

// NewPipeline compiles every pass and allocates every target. Any
// failure releases whatever was already acquired.
func NewPipeline(device Device, cfg Config) (p *Pipeline, err error) {
	p = &Pipeline{
		device: device,
		width:  max(1, cfg.Width),
		height: max(1, cfg.Height),
	}
	defer func() {
		if err != nil {
			utils.Error("Pipeline: construction failed: %v", err)
			p.Close()
			p = nil
		}
	}()

	if p.source, err = NewRenderTarget(device, "source", p.width, p.height); err != nil {
		return p, err
	}
	if p.display, err = NewRenderTarget(device, "display", p.width, p.height); err != nil {
		return p, err
	}
	if p.trail, err = NewPingPong(device, "trail", p.width, p.height); err != nil {
		return p, err
	}
	if p.bloom, err = NewBloomChain(device, p.width, p.height, cfg.Downsample); err != nil {
		return p, err
	}
	if p.mixPass, err = NewFullscreenPass(device, MixProgram()); err != nil {
		return p, err
	}
	for i := range p.compositePasses {
		bloom, overlay, tint := i&1 != 0, i&2 != 0, i&4 != 0
		if p.compositePasses[i], err = NewFullscreenPass(device, CompositeProgram(bloom, overlay, tint)); err != nil {
			return p, err
		}
	}

	if sizer, ok := device.(ScreenSizer); ok {
		if err = sizer.SetScreenSize(p.width, p.height); err != nil {
			return p, &AllocationError{Target: "screen", Width: p.width, Height: p.height, Err: err}
		}
	}

	overlay := cfg.Overlay
	if overlay == nil {
		gray := image.NewRGBA(image.Rect(0, 0, 1, 1))
		gray.Set(0, 0, color.RGBA{128, 128, 128, 255})
		overlay = gray
	}
	if p.overlay, err = device.LoadImage(overlay); err != nil {
		b := overlay.Bounds()
		return p, &AllocationError{Target: "overlay", Width: b.Dx(), Height: b.Dy(), Err: err}
	}

	lw, lh := p.bloom.LowSize()
	utils.Info("Pipeline: ready at %dx%d (bloom %dx%d, factor %d)", p.width, p.height, lw, lh, p.bloom.Factor())
	return p, nil
}

// RequestResize records a new output size. It is applied at the start
// of the next RenderFrame, never in the middle of a pass sequence.
func (p *Pipeline) RequestResize(width, height int) {
	p.pendingW, p.pendingH = max(1, width), max(1, height)
	p.hasPending = p.pendingW != p.width || p.pendingH != p.height
}

// Resize resizes every full-resolution target in place and recomputes
// the bloom chain from the new size. It must not be called while a frame
// is being rendered. On error the pipeline, its targets and the screen
// keep their previous sizes.
func (p *Pipeline) Resize(width, height int) error {
	width, height = max(1, width), max(1, height)
	if width == p.width && height == p.height {
		p.hasPending = false
		return nil
	}

	factor := p.bloom.Factor()
	if err := checkSize(p.device, p.source.Name(), width, height); err != nil {
		return err
	}
	if err := checkSize(p.device, p.bloom.Bright().Name(), LowResolution(width, factor), LowResolution(height, factor)); err != nil {
		return err
	}

	full := p.fullTargets()
	if err := resizeAll(width, height, full...); err != nil {
		return err
	}
	if err := p.bloom.Resize(width, height, factor); err != nil {
		restore(full, p.width, p.height)
		return err
	}
	if sizer, ok := p.device.(ScreenSizer); ok {
		if err := sizer.SetScreenSize(width, height); err != nil {
			restore(full, p.width, p.height)
			if rerr := p.bloom.Resize(p.width, p.height, factor); rerr != nil {
				utils.Warn("Pipeline: bloom not restored: %v", rerr)
			}
			return &AllocationError{Target: "screen", Width: width, Height: height, Err: err}
		}
	}

	p.width, p.height = width, height
	p.hasPending = false
	utils.Info("Pipeline: resized to %dx%d", width, height)
	return nil
}

// fullTargets lists every target sized to the output.
func (p *Pipeline) fullTargets() []*RenderTarget {
	return []*RenderTarget{p.source, p.display, p.trail.buffers[0], p.trail.buffers[1]}
}

// RenderFrame runs one full frame. The snapshot is clamped to its
// ranges on a local copy. The screen is written only by the final
// composite, so a frame that fails earlier presents nothing.
func (p *Pipeline) RenderFrame(scene SceneRenderer, snapshot Snapshot) error {
	params := snapshot.Sanitized()

	if p.hasPending {
		if err := p.Resize(p.pendingW, p.pendingH); err != nil {
			return err
		}
	}
	if params.Downsample != p.bloom.Factor() {
		if err := p.bloom.Resize(p.width, p.height, params.Downsample); err != nil {
			return err
		}
	}

	p.frames++

	// 1. capture
	if err := scene.RenderScene(p.source.Texture()); err != nil {
		return err
	}

	// 2-3. trail feedback and mix
	base := p.source
	if params.TrailEnabled {
		if !params.TrailPaused && p.frames%uint64(params.DelayFrames) == 0 {
			if err := p.trail.Update(p.source.Texture(), params.Decay, params.TrailWeight); err != nil {
				return err
			}
			p.trailUpdates++
		}

		err := p.mixPass.
			SetTexture("current", p.source.Texture()).
			SetTexture("trail", p.trail.Current().Texture()).
			SetFloat("blend", params.BlendFactor).
			Execute(p.display)
		if err != nil {
			return err
		}
		base = p.display
	}

	// 4. bloom
	var bloom *RenderTarget
	if params.BloomEnabled {
		var err error
		bloom, err = p.bloom.ExtractAndBlur(base.Texture(), params.BloomThreshold, params.Iterations, params.BloomScatter)
		if err != nil {
			return err
		}
		p.lastBloom = bloom
	}

	// 5-6. composite to the screen
	return p.composite(base, bloom, params)
}

func (p *Pipeline) composite(base, bloom *RenderTarget, params Snapshot) error {
	useBloom := bloom != nil
	pass := p.compositePasses[CompositeVariant(useBloom, params.OverlayEnabled, params.TintEnabled)]

	pass.SetTexture("base", base.Texture())
	if useBloom {
		pass.SetTexture("bloom", bloom.Texture()).
			SetFloat("intensity", params.BloomIntensity).
			SetFloat("bloomBlend", params.BloomBlend)
	}
	if params.OverlayEnabled {
		pass.SetTexture("paper", p.overlay).
			SetFloat("paperBlend", params.OverlayBlend)
	}
	if params.TintEnabled {
		pass.SetColor("finalColorOverlay", params.Tint)
	}
	return pass.Execute(nil)
}

// Source is the full-resolution capture target.
func (p *Pipeline) Source() *RenderTarget { return p.source }

// Display is the full-resolution mix of source and trail.
func (p *Pipeline) Display() *RenderTarget { return p.display }

func (p *Pipeline) Trail() *PingPong { return p.trail }

func (p *Pipeline) Bloom() *BloomChain { return p.bloom }

// LastBloom is the target holding the most recent bloom result, or nil
// before bloom has run.
func (p *Pipeline) LastBloom() *RenderTarget { return p.lastBloom }

// Size returns the current output size.
func (p *Pipeline) Size() (int, int) { return p.width, p.height }

func (p *Pipeline) Stats() Stats {
	lw, lh := p.bloom.LowSize()
	return Stats{
		Width:        p.width,
		Height:       p.height,
		LowWidth:     lw,
		LowHeight:    lh,
		Downsample:   p.bloom.Factor(),
		Frames:       p.frames,
		TrailUpdates: p.trailUpdates,
		TrailIndex:   p.trail.CurrentIndex(),
	}
}

// Close releases every GPU resource. It is safe to call more than once
// and on a partially constructed pipeline.
func (p *Pipeline) Close() {
	if p == nil {
		return
	}
	releaseAll(p.source, p.display)
	p.trail.Release()
	p.bloom.Release()
	p.mixPass.Release()
	for _, pass := range p.compositePasses {
		pass.Release()
	}
	if p.overlay != nil {
		p.overlay.Release()
		p.overlay = nil
	}
}
