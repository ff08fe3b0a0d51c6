package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/taigrr/teapot/pkg/render"
)

// runSnapshot waits for the assets, renders the configured number of
// frames headless and writes the last one as a PNG.
func runSnapshot(ctx context.Context, a *app) error {
	timeout := a.cfg.Mesh.FetchTimeout + a.cfg.Mesh.AttemptTimeout
	if err := a.waitForAssets(ctx, timeout); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	fb := render.NewFramebuffer(a.cfg.Display.Width, a.cfg.Display.Height)
	rasterizer := render.NewRasterizer(fb)
	for range a.cfg.Display.Frames {
		a.scene.Update(nil)
		if err := a.scene.Render(rasterizer); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
	}

	if err := fb.SavePNG(a.cfg.Display.Snapshot); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	a.log.Info("Snapshot written",
		zap.String("path", a.cfg.Display.Snapshot),
		zap.Int("frames", a.cfg.Display.Frames),
		zap.Int("drawn", rasterizer.Stats.TrianglesDrawn),
		zap.Int("culled", rasterizer.Stats.TrianglesCulled))
	return nil
}
