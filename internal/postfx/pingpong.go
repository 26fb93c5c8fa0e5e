package postfx

// PingPong is a two-slot feedback buffer. buffers[current] holds the
// most recently written state; an update reads it and writes the other
// slot, then flips the index.
type PingPong struct {
	buffers [2]*RenderTarget
	current int
	pass    *FullscreenPass
}

// NewPingPong allocates both slots and the trail program. On error
// nothing is left allocated.
func NewPingPong(device Device, name string, width, height int) (pp *PingPong, err error) {
	pp = &PingPong{}
	defer func() {
		if err != nil {
			pp.Release()
			pp = nil
		}
	}()

	if pp.buffers[0], err = NewRenderTarget(device, name+".a", width, height); err != nil {
		return pp, err
	}
	if pp.buffers[1], err = NewRenderTarget(device, name+".b", width, height); err != nil {
		return pp, err
	}
	if pp.pass, err = NewFullscreenPass(device, TrailProgram()); err != nil {
		return pp, err
	}
	return pp, nil
}

// Update writes next = clamp(scene*weight + current*decay, 0, 1) and
// makes it current. decay and weight are expected to be clamped already.
func (pp *PingPong) Update(scene Texture, decay, weight float32) error {
	prev := pp.buffers[pp.current]
	next := pp.buffers[1-pp.current]

	err := pp.pass.
		SetTexture("current", scene).
		SetTexture("prev", prev.Texture()).
		SetFloat("decay", decay).
		SetFloat("blendWeight", weight).
		Execute(next)
	if err != nil {
		return err
	}
	pp.current = 1 - pp.current
	return nil
}

// Current returns the slot holding the latest feedback state.
func (pp *PingPong) Current() *RenderTarget { return pp.buffers[pp.current] }

// CurrentIndex is 0 when slot A is current and 1 for slot B.
func (pp *PingPong) CurrentIndex() int { return pp.current }

// Resize resizes both slots in place. Contents are not preserved or
// rescaled. If the second slot fails, the first returns to its old size.
func (pp *PingPong) Resize(width, height int) error {
	return resizeAll(width, height, pp.buffers[0], pp.buffers[1])
}

func (pp *PingPong) Release() {
	if pp == nil {
		return
	}
	releaseAll(pp.buffers[0], pp.buffers[1])
	pp.pass.Release()
}
