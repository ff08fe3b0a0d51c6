package main

import (
	"context"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/taigrr/teapot/pkg/input"
	"github.com/taigrr/teapot/pkg/render"
)

// ebitenKeys maps polled ebiten keys onto input keys.
var ebitenKeys = map[input.Key]ebiten.Key{
	input.KeyLeft:   ebiten.KeyArrowLeft,
	input.KeyRight:  ebiten.KeyArrowRight,
	input.KeyA:      ebiten.KeyA,
	input.KeyD:      ebiten.KeyD,
	input.Key1:      ebiten.KeyDigit1,
	input.Key2:      ebiten.KeyDigit2,
	input.Key3:      ebiten.KeyDigit3,
	input.KeyB:      ebiten.KeyB,
	input.KeyR:      ebiten.KeyR,
	input.KeyX:      ebiten.KeyX,
	input.KeyEscape: ebiten.KeyEscape,
}

// windowGame is the ebiten.Game of the window backend.
type windowGame struct {
	ctx        context.Context
	app        *app
	keys       *input.KeyState
	fb         *render.Framebuffer
	rasterizer *render.Rasterizer
	pixels     []byte
	err        error
}

func (g *windowGame) Update() error {
	if g.err != nil {
		return g.err
	}
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	for k, ek := range ebitenKeys {
		g.keys.Set(k, ebiten.IsKeyPressed(ek))
	}
	if g.keys.Pressed(input.KeyEscape) {
		return ebiten.Termination
	}
	g.app.scene.Update(g.keys)
	return nil
}

func (g *windowGame) Draw(screen *ebiten.Image) {
	if err := g.app.scene.Render(g.rasterizer); err != nil {
		g.err = err
		return
	}
	if n := g.fb.Width * g.fb.Height * 4; len(g.pixels) != n {
		g.pixels = make([]byte, n)
	}
	g.fb.CopyRGBA(g.pixels)
	screen.WritePixels(g.pixels)
}

func (g *windowGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.fb.Width, g.fb.Height
}

// runWindow opens a desktop window and polls the keyboard each tick.
func runWindow(ctx context.Context, a *app) error {
	w, h := a.cfg.Display.Width, a.cfg.Display.Height
	fb := render.NewFramebuffer(w, h)
	game := &windowGame{
		ctx:        ctx,
		app:        a,
		keys:       input.NewKeyState(0),
		fb:         fb,
		rasterizer: render.NewRasterizer(fb),
	}

	ebiten.SetWindowTitle("teapot")
	ebiten.SetWindowSize(w, h)
	ebiten.SetTPS(a.cfg.Display.FPS)

	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}
