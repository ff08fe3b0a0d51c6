package main

import (
	"context"
	"fmt"
	"os"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"go.uber.org/zap"

	"github.com/taigrr/teapot/pkg/input"
	"github.com/taigrr/teapot/pkg/render"
)

// runTerminal draws into the alternate screen with half-block pixels until
// Esc, Ctrl+C or a signal.
func runTerminal(ctx context.Context, a *app) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	termRenderer := render.NewTerminalRenderer(term, width, height)
	fb := render.NewFramebuffer(termRenderer.FramebufferSize())
	rasterizer := render.NewRasterizer(fb)

	hud := NewHUD(a.cfg.Display.ShowHUD)
	// Terminals rarely report key releases, so holds expire.
	keys := input.NewKeyState(input.DefaultHoldWindow)

	type size struct{ w, h int }
	resized := make(chan size, 1)
	toggleHUD := make(chan struct{}, 1)

	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				select {
				case <-resized:
				default:
				}
				resized <- size{ev.Width, ev.Height}

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape"), ev.MatchString("ctrl+c"):
					cancel()
					return
				case ev.MatchString("?"), ev.MatchString("shift+/"):
					select {
					case toggleHUD <- struct{}{}:
					default:
					}
				}
				for _, k := range input.Keys {
					if ev.MatchString(string(k)) {
						keys.Press(k)
					}
				}

			case uv.KeyReleaseEvent:
				for _, k := range input.Keys {
					if ev.MatchString(string(k)) {
						keys.Release(k)
					}
				}
			}
		}
	}()

	targetDuration := time.Second / time.Duration(a.cfg.Display.FPS)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		case s := <-resized:
			width, height = s.w, s.h
			term.Erase()
			term.Resize(width, height)
			termRenderer = render.NewTerminalRenderer(term, width, height)
			fb.Resize(termRenderer.FramebufferSize())
			a.log.Debug("Terminal resized", zap.Int("width", width), zap.Int("height", height))
		case <-toggleHUD:
			hud.Visible = !hud.Visible
		default:
		}

		now := time.Now()

		a.scene.Update(keys)
		if err := a.scene.Render(rasterizer); err != nil {
			cleanup()
			return err
		}

		termRenderer.Render(fb)
		if err := termRenderer.Flush(); err != nil {
			cleanup()
			return fmt.Errorf("flush: %w", err)
		}

		fps := hud.UpdateFPS()
		fmt.Fprint(os.Stdout, hud.Overlay(width, height, a.status(fps)))

		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
