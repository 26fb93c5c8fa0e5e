package postfx

import "trailbloom/internal/utils"

// LowResolution returns the bloom chain size for one output dimension.
func LowResolution(size, factor int) int {
	factor = clampInt(factor, MinDownsample, MaxDownsample)
	return max(1, size/factor)
}

// BloomChain extracts bright texels into a low-resolution target and
// blurs them with alternating horizontal/vertical 3-tap passes.
type BloomChain struct {
	bright *RenderTarget
	blur   [2]*RenderTarget

	brightPass *FullscreenPass
	blurPass   *FullscreenPass

	factor     int
	lowW, lowH int
}

// NewBloomChain sizes the chain for an output of width x height.
func NewBloomChain(device Device, width, height, factor int) (b *BloomChain, err error) {
	b = &BloomChain{factor: clampInt(factor, MinDownsample, MaxDownsample)}
	defer func() {
		if err != nil {
			b.Release()
			b = nil
		}
	}()

	b.lowW, b.lowH = LowResolution(width, b.factor), LowResolution(height, b.factor)

	if b.bright, err = NewRenderTarget(device, "bloom.bright", b.lowW, b.lowH); err != nil {
		return b, err
	}
	if b.blur[0], err = NewRenderTarget(device, "bloom.blurA", b.lowW, b.lowH); err != nil {
		return b, err
	}
	if b.blur[1], err = NewRenderTarget(device, "bloom.blurB", b.lowW, b.lowH); err != nil {
		return b, err
	}
	if b.brightPass, err = NewFullscreenPass(device, BrightProgram()); err != nil {
		return b, err
	}
	if b.blurPass, err = NewFullscreenPass(device, BlurProgram()); err != nil {
		return b, err
	}
	return b, nil
}

// Resize recomputes the low resolution from the output size and factor
// and resizes all chain targets together. On error the chain keeps its
// previous factor and size.
func (b *BloomChain) Resize(width, height, factor int) error {
	factor = clampInt(factor, MinDownsample, MaxDownsample)
	lowW, lowH := LowResolution(width, factor), LowResolution(height, factor)
	if lowW != b.lowW || lowH != b.lowH {
		if err := checkSize(b.bright.device, b.bright.name, lowW, lowH); err != nil {
			return err
		}
		if err := resizeAll(lowW, lowH, b.targets()...); err != nil {
			return err
		}
		utils.Debug("Bloom: low resolution %dx%d (factor %d)", lowW, lowH, factor)
	}
	b.factor, b.lowW, b.lowH = factor, lowW, lowH
	return nil
}

func (b *BloomChain) targets() []*RenderTarget {
	return []*RenderTarget{b.bright, b.blur[0], b.blur[1]}
}

// ExtractAndBlur runs the bright-pass on src and then iterations blur
// passes (clamped to [1,20]). Even iterations blur horizontally, odd
// ones vertically. The returned target holds the bloom contribution
// until the next call.
func (b *BloomChain) ExtractAndBlur(src Texture, threshold float32, iterations int, scatter float32) (*RenderTarget, error) {
	err := b.brightPass.
		SetTexture("src", src).
		SetFloat("thresh", threshold).
		Execute(b.bright)
	if err != nil {
		return nil, err
	}

	iterations = clampInt(iterations, MinIterations, MaxIterations)
	input := b.bright
	write := 1
	for i := 0; i < iterations; i++ {
		var dx, dy float32
		if i&1 == 0 {
			dx = scatter / float32(b.lowW)
		} else {
			dy = scatter / float32(b.lowH)
		}

		out := b.blur[write]
		err := b.blurPass.
			SetTexture("src", input.Texture()).
			SetVec2("offset", dx, dy).
			Execute(out)
		if err != nil {
			return nil, err
		}
		input = out
		write = 1 - write
	}
	return input, nil
}

// Bright is the bright-pass target.
func (b *BloomChain) Bright() *RenderTarget { return b.bright }

// Buffers returns the two blur targets.
func (b *BloomChain) Buffers() [2]*RenderTarget { return b.blur }

// LowSize returns the current chain resolution.
func (b *BloomChain) LowSize() (int, int) { return b.lowW, b.lowH }

func (b *BloomChain) Factor() int { return b.factor }

func (b *BloomChain) Release() {
	if b == nil {
		return
	}
	releaseAll(b.bright, b.blur[0], b.blur[1])
	b.brightPass.Release()
	b.blurPass.Release()
}
