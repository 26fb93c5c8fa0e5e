package debug

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

type UIContext struct {
	X, Y       int
	LineHeight int
	FontHeight int
	Width      int
}

func NewUIContext(x, y, lineHeight, fontHeight int) *UIContext {
	return &UIContext{X: x, Y: y, LineHeight: lineHeight, FontHeight: fontHeight}
}

func (ui *UIContext) drawText(text string, x, y int32, color rl.Color) {
	rl.DrawText(text, x, y, int32(ui.FontHeight), color)
	if w := int(x) - ui.X + int(rl.MeasureText(text, int32(ui.FontHeight))); w > ui.Width {
		ui.Width = w
	}
}

func (ui *UIContext) Label(text string) {
	ui.drawText(text, int32(ui.X), int32(ui.Y), rl.White)
	ui.Y += ui.LineHeight
}

func (ui *UIContext) IndentLabel(text string, indent int) {
	ui.drawText(text, int32(ui.X+indent), int32(ui.Y), rl.White)
	ui.Y += ui.LineHeight
}

// Flag renders "name: on/off" in green or gray.
func (ui *UIContext) Flag(name string, on bool, indent int) {
	state, color := "off", rl.Gray
	if on {
		state, color = "on", rl.Green
	}
	ui.drawText(name+": "+state, int32(ui.X+indent), int32(ui.Y), color)
	ui.Y += ui.LineHeight
}

func (ui *UIContext) Separator() {
	ui.Y += ui.LineHeight / 2
}

func (ui *UIContext) Header(text string) {
	ui.drawText(text, int32(ui.X), int32(ui.Y), rl.SkyBlue)
	ui.Y += ui.LineHeight
}
