package debug

import (
	"fmt"
	"runtime"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"trailbloom/internal/postfx"
)

// Overlay is the F8 diagnostics panel drawn on top of the composite.
type Overlay struct {
	Visible bool

	fontHeight int
	lineHeight int

	lastSample time.Time
	memStats   runtime.MemStats
	// panel size from the previous frame, used for the backdrop
	panelW, panelH int
}

func NewOverlay() *Overlay {
	return &Overlay{fontHeight: 18, lineHeight: 22}
}

func (o *Overlay) Toggle() { o.Visible = !o.Visible }

// Draw renders the panel. It must be called between BeginDrawing and
// EndDrawing, after the composite.
func (o *Overlay) Draw(stats postfx.Stats, snap postfx.Snapshot) {
	if !o.Visible {
		return
	}
	if time.Since(o.lastSample) > 500*time.Millisecond {
		runtime.ReadMemStats(&o.memStats)
		o.lastSample = time.Now()
	}

	if o.panelW > 0 {
		rl.DrawRectangle(4, 4, int32(o.panelW+16), int32(o.panelH+8), rl.NewColor(0, 0, 0, 170))
	}

	ui := NewUIContext(12, 8, o.lineHeight, o.fontHeight)

	ui.Header("Timing:")
	ui.IndentLabel(fmt.Sprintf("FPS: %d", rl.GetFPS()), 10)
	ui.IndentLabel(fmt.Sprintf("Frame Time: %.2f ms", rl.GetFrameTime()*1000), 10)
	ui.IndentLabel(fmt.Sprintf("Frames: %d", stats.Frames), 10)
	ui.Separator()

	ui.Header("Memory Usage:")
	ui.IndentLabel(fmt.Sprintf("Heap Alloc: %.2f MB", float64(o.memStats.HeapAlloc)/1024/1024), 10)
	ui.IndentLabel(fmt.Sprintf("Process Total: %.2f MB", float64(o.memStats.Sys)/1024/1024), 10)
	ui.IndentLabel(fmt.Sprintf("Goroutines: %d", runtime.NumGoroutine()), 10)
	ui.Separator()

	ui.Header("Pipeline:")
	ui.IndentLabel(fmt.Sprintf("Output: %dx%d", stats.Width, stats.Height), 10)
	ui.IndentLabel(fmt.Sprintf("Bloom: %dx%d (1/%d)", stats.LowWidth, stats.LowHeight, stats.Downsample), 10)
	ui.IndentLabel(fmt.Sprintf("Trail Updates: %d (slot %d)", stats.TrailUpdates, stats.TrailIndex), 10)
	ui.Separator()

	ui.Header("Modifiers:")
	ui.Flag("Trail", snap.TrailEnabled && !snap.TrailPaused, 10)
	ui.Flag("Bloom", snap.BloomEnabled, 10)
	ui.Flag("Overlay", snap.OverlayEnabled, 10)
	ui.Flag("Tint", snap.TintEnabled, 10)
	ui.Separator()
	ui.Label("P B O T toggle, F8 hides")

	o.panelW, o.panelH = ui.Width, ui.Y-8
}
