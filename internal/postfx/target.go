package postfx

import (
	"fmt"

	"trailbloom/internal/utils"
)

// RenderTarget owns one off-screen texture. Its dimensions are never
// zero; resizing replaces the backing texture.
type RenderTarget struct {
	device Device
	name   string
	tex    Texture
	width  int
	height int
}

// NewRenderTarget allocates a target of at least 1x1 pixels.
func NewRenderTarget(device Device, name string, width, height int) (*RenderTarget, error) {
	t := &RenderTarget{device: device, name: name}
	tex, w, h, err := t.allocate(width, height)
	if err != nil {
		return nil, err
	}
	t.tex, t.width, t.height = tex, w, h
	utils.Debug("RenderTarget: %s allocated %dx%d", name, w, h)
	return t, nil
}

// checkSize reports the AllocationError a target of the given size
// would hit against the device limit, without allocating.
func checkSize(device Device, name string, width, height int) error {
	w, h := max(1, width), max(1, height)
	if limit := device.MaxTextureSize(); limit > 0 && (w > limit || h > limit) {
		return &AllocationError{
			Target: name, Width: w, Height: h,
			Err: fmt.Errorf("exceeds device limit %d", limit),
		}
	}
	return nil
}

func (t *RenderTarget) allocate(width, height int) (Texture, int, int, error) {
	w, h := max(1, width), max(1, height)
	if err := checkSize(t.device, t.name, w, h); err != nil {
		return nil, 0, 0, err
	}
	tex, err := t.device.NewTexture(w, h)
	if err != nil {
		return nil, 0, 0, &AllocationError{Target: t.name, Width: w, Height: h, Err: err}
	}
	return tex, w, h, nil
}

// Resize is a no-op when the clamped size is unchanged. Otherwise new
// storage is allocated before the old is released, so a failed resize
// leaves the target at its previous size.
func (t *RenderTarget) Resize(width, height int) error {
	w, h := max(1, width), max(1, height)
	if t.tex != nil && w == t.width && h == t.height {
		return nil
	}
	tex, w, h, err := t.allocate(w, h)
	if err != nil {
		return err
	}
	if t.tex != nil {
		t.tex.Release()
	}
	t.tex, t.width, t.height = tex, w, h
	utils.Debug("RenderTarget: %s resized to %dx%d", t.name, w, h)
	return nil
}

// Release frees the backing texture. Calling it again does nothing.
func (t *RenderTarget) Release() {
	if t == nil || t.tex == nil {
		return
	}
	t.tex.Release()
	t.tex = nil
}

func (t *RenderTarget) Name() string { return t.name }

func (t *RenderTarget) Size() (int, int) { return t.width, t.height }

// Texture returns the current backing texture. Callers must not keep it
// beyond the current frame: a resize releases it.
func (t *RenderTarget) Texture() Texture { return t.tex }

// releaseAll releases every non-nil target.
func releaseAll(targets ...*RenderTarget) {
	for _, t := range targets {
		t.Release()
	}
}

// resizeAll resizes every target to width x height. If one fails, the
// targets already resized are returned to their previous sizes.
func resizeAll(width, height int, targets ...*RenderTarget) error {
	for i, t := range targets {
		if err := t.Resize(width, height); err != nil {
			restore(targets[:i], targets[i].width, targets[i].height)
			return err
		}
	}
	return nil
}

// restore resizes targets back to width x height after a failed
// resize. Targets that cannot be restored are logged and left as is.
func restore(targets []*RenderTarget, width, height int) {
	for _, t := range targets {
		if err := t.Resize(width, height); err != nil {
			utils.Warn("RenderTarget: %s not restored to %dx%d: %v", t.name, width, height, err)
		}
	}
}
