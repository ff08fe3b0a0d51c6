package main

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/taigrr/teapot/internal/config"
	"github.com/taigrr/teapot/pkg/models"
	"github.com/taigrr/teapot/pkg/scene"
	"github.com/taigrr/teapot/pkg/skybox"
)

// app is the state shared by every backend.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	scene *scene.Scene
	skies *skybox.Library

	meshDone chan struct{}
	meshErr  atomic.Pointer[error]
}

func newApp(cfg *config.Config, log *zap.Logger) (*app, error) {
	skies := skybox.NewLibrary(cfg.Skybox.Sets, log.Named("skybox"))
	if cfg.Skybox.Initial != "" && !skies.Select(cfg.Skybox.Initial) {
		log.Warn("Unknown initial skybox, using the first set", zap.String("set", cfg.Skybox.Initial))
	}

	opts := scene.DefaultOptions()
	opts.FPS = cfg.Display.FPS
	opts.Mode = cfg.ShaderMode()
	opts.RefractionIndex = cfg.Shading.RefractionIndex
	opts.Material.Shininess = cfg.Shading.Shininess
	if cfg.Shading.SpringFrequency > 0 {
		opts.SpringFrequency = cfg.Shading.SpringFrequency
	}
	opts.Logger = log.Named("scene")

	sc, err := scene.New(opts, skies)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:      cfg,
		log:      log,
		scene:    sc,
		skies:    skies,
		meshDone: make(chan struct{}),
	}, nil
}

// startLoading fetches the mesh and every skybox set in the background.
func (a *app) startLoading(ctx context.Context) {
	go func() {
		defer close(a.meshDone)
		opts := a.cfg.LoadOptions()
		opts.Logger = a.log.Named("models")

		start := time.Now()
		mesh, err := models.Load(ctx, a.cfg.Mesh.Source, opts)
		if err != nil {
			a.meshErr.Store(&err)
			a.log.Error("Mesh load failed", zap.String("source", a.cfg.Mesh.Source), zap.Error(err))
			return
		}
		a.log.Info("Mesh loaded", zap.String("source", a.cfg.Mesh.Source), zap.Duration("took", time.Since(start)))
		a.scene.SetMesh(mesh)
	}()

	go func() {
		// Failures are logged by each loader; missing faces stay black.
		_ = a.skies.Start(ctx)
	}()

	if a.cfg.Skybox.Watch {
		go func() {
			if err := a.skies.Watch(ctx); err != nil {
				a.log.Warn("Skybox watch stopped", zap.Error(err))
			}
		}()
	}
}

// meshError returns the mesh load failure, if any.
func (a *app) meshError() error {
	if p := a.meshErr.Load(); p != nil {
		return *p
	}
	return nil
}

// loadingState describes asset loading for the HUD.
func (a *app) loadingState() string {
	var parts []string
	select {
	case <-a.meshDone:
		if a.meshError() != nil {
			parts = append(parts, "mesh failed")
		}
	default:
		parts = append(parts, "loading mesh")
	}
	if cur := a.skies.Current(); cur != nil && cur.Loading() {
		parts = append(parts, fmt.Sprintf("skybox %d/6", cur.Loaded()))
	}
	if len(parts) == 0 {
		return "ready"
	}
	return strings.Join(parts, ", ")
}

// waitForAssets blocks until the mesh and the current skybox have
// finished loading, or timeout elapses.
func (a *app) waitForAssets(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case <-a.meshDone:
	case <-ctx.Done():
		return fmt.Errorf("waiting for mesh: %w", ctx.Err())
	}
	if err := a.meshError(); err != nil {
		return err
	}
	if cur := a.skies.Current(); cur != nil {
		if err := cur.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for skybox: %w", err)
		}
	}
	return nil
}

// status is what the HUD shows.
func (a *app) status(fps float64) hudStatus {
	st := hudStatus{
		FPS:       fps,
		Mode:      a.scene.Mode().String(),
		Wireframe: a.scene.Wireframe(),
		Loading:   a.loadingState(),
	}
	if m := a.scene.Mesh(); m != nil {
		st.Mesh = m.Name
		st.Triangles = m.TriangleCount()
	} else {
		st.Mesh = models.SourceName(a.cfg.Mesh.Source)
	}
	if cur := a.skies.Current(); cur != nil {
		st.Skybox = cur.Set().Name
	}
	return st
}
