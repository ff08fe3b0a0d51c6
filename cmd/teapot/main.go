// teapot - Phong-shaded teapot over a skybox cube map
// Renders in the terminal, in a desktop window, or headless to a PNG.
//
// Controls:
//
//	Left/Right  - Orbit the skybox
//	A/D         - Turn the teapot
//	1/2/3       - Phong, reflection, refraction
//	B           - Next skybox set
//	R           - Reset rotation
//	X           - Toggle wireframe mode (x-ray)
//	?           - Toggle HUD overlay (terminal)
//	Esc         - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/taigrr/teapot/internal/config"
	"github.com/taigrr/teapot/internal/logger"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "teapot - Phong teapot over a skybox\n\n")
		fmt.Fprintf(os.Stderr, "Usage: teapot [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Left/Right  - Orbit the skybox\n")
		fmt.Fprintf(os.Stderr, "  A/D         - Turn the teapot\n")
		fmt.Fprintf(os.Stderr, "  1/2/3       - Phong, reflection, refraction\n")
		fmt.Fprintf(os.Stderr, "  B           - Next skybox set\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset rotation\n")
		fmt.Fprintf(os.Stderr, "  X           - Toggle wireframe\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The terminal backend owns stdout, so it only logs to the file.
	console := cfg.Display.Backend != config.BackendTerminal
	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, console); err != nil {
		fmt.Fprintf(os.Stderr, "Error: init logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		logger.Error("teapot failed", zap.Error(err))
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Sync()
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, logger.Log)
	if err != nil {
		return err
	}
	a.startLoading(ctx)

	logger.Info("Starting",
		zap.String("backend", cfg.Display.Backend),
		zap.String("mesh", cfg.Mesh.Source),
		zap.Stringer("mode", cfg.ShaderMode()))

	switch cfg.Display.Backend {
	case config.BackendTerminal:
		return runTerminal(ctx, a)
	case config.BackendWindow:
		return runWindow(ctx, a)
	case config.BackendSnapshot:
		return runSnapshot(ctx, a)
	default:
		return fmt.Errorf("unsupported backend: %s", cfg.Display.Backend)
	}
}
