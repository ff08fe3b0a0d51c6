package main

import (
	"fmt"
	"time"
)

// hudStatus is one frame's worth of HUD content.
type hudStatus struct {
	FPS       float64
	Mesh      string
	Triangles int
	Mode      string
	Skybox    string
	Loading   string
	Wireframe bool
}

// HUD renders an overlay with model info and controls
type HUD struct {
	Visible   bool
	fps       float64
	fpsFrames int
	fpsTime   time.Time
	now       func() time.Time
}

// NewHUD creates a new HUD
func NewHUD(visible bool) *HUD {
	return &HUD{
		Visible: visible,
		fpsTime: time.Now(),
		now:     time.Now,
	}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() float64 {
	h.fpsFrames++
	elapsed := h.now().Sub(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = h.now()
	}
	return h.fps
}

// ANSI escape codes for positioning and styling
const (
	reset     = "\x1b[0m"
	bold      = "\x1b[1m"
	dim       = "\x1b[2m"
	bgBlack   = "\x1b[40m"
	fgWhite   = "\x1b[97m"
	fgGreen   = "\x1b[92m"
	fgYellow  = "\x1b[93m"
	fgCyan    = "\x1b[96m"
	clearLine = "\x1b[2K"
)

func moveTo(row, col int) string {
	return fmt.Sprintf("\x1b[%d;%dH", row, col)
}

// topLine is the left part of the first HUD row.
func (st hudStatus) topLine() string {
	return fmt.Sprintf("%.0f FPS", st.FPS)
}

// title is the centered mesh label.
func (st hudStatus) title() string {
	if st.Triangles == 0 {
		return st.Mesh
	}
	return fmt.Sprintf("%s (%d tris)", st.Mesh, st.Triangles)
}

// bottomLine shows shading and skybox state.
func (st hudStatus) bottomLine() string {
	wire := "[ ]"
	if st.Wireframe {
		wire = "[✓]"
	}
	return fmt.Sprintf("mode: %s  skybox: %s  %s X-Ray", st.Mode, st.Skybox, wire)
}

// Overlay returns the escape sequences that draw the HUD on a terminal of
// the given size. The HUD rows are always cleared so toggling off works.
func (h *HUD) Overlay(width, height int, st hudStatus) string {
	out := moveTo(1, 1) + clearLine + moveTo(height, 1) + clearLine
	if !h.Visible {
		return out
	}

	out += fmt.Sprintf("%s%s%s %s %s", moveTo(1, 1), bgBlack, fgGreen, st.topLine(), reset)

	title := st.title()
	titleCol := max((width-len(title)-2)/2, 1)
	out += fmt.Sprintf("%s%s%s%s %s %s", moveTo(1, titleCol), bold, bgBlack, fgWhite, title, reset)

	out += fmt.Sprintf("%s%s%s %s %s", moveTo(height, 1), bgBlack, fgWhite, st.bottomLine(), reset)

	status := st.Loading
	color := fgCyan
	if status != "ready" {
		color = fgYellow
	}
	statusCol := max(width-len(status)-2, 1)
	out += fmt.Sprintf("%s%s%s%s %s %s", moveTo(height, statusCol), bgBlack, dim, color, status, reset)
	return out
}
