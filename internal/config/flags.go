package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagBackend  = flag.String("backend", "", "Presentation backend: terminal, window or snapshot")
	flagMesh     = flag.String("mesh", "", "Mesh URL or path (.obj, .glb, .gltf)")
	flagMode     = flag.String("mode", "", "Shader mode: phong, reflection or refraction")
	flagFPS      = flag.Int("fps", 0, "Target FPS")
	flagSnapshot = flag.String("snapshot", "", "Render headless and write a PNG to this path")
	flagFrames   = flag.Int("frames", 0, "Frames to render before the snapshot")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Display.ShowHUD = true
	}
	if *flagBackend != "" {
		cfg.Display.Backend = *flagBackend
	}
	if *flagMesh != "" {
		cfg.Mesh.Source = *flagMesh
	}
	if *flagMode != "" {
		cfg.Shading.Mode = *flagMode
	}
	if *flagFPS > 0 {
		cfg.Display.FPS = *flagFPS
	}
	if *flagSnapshot != "" {
		cfg.Display.Snapshot = *flagSnapshot
		if *flagBackend == "" {
			cfg.Display.Backend = BackendSnapshot
		}
	}
	if *flagFrames > 0 {
		cfg.Display.Frames = *flagFrames
	}
}
