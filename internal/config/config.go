// Package config handles teapot configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/taigrr/teapot/pkg/models"
	"github.com/taigrr/teapot/pkg/render"
	"github.com/taigrr/teapot/pkg/skybox"
)

// Backend names.
const (
	BackendTerminal = "terminal"
	BackendWindow   = "window"
	BackendSnapshot = "snapshot"
)

// Backends lists the supported presentation backends.
var Backends = []string{BackendTerminal, BackendWindow, BackendSnapshot}

// Config holds all teapot settings.
type Config struct {
	Display DisplayConfig `yaml:"display"`
	Mesh    MeshConfig    `yaml:"mesh"`
	Skybox  SkyboxConfig  `yaml:"skybox"`
	Shading ShadingConfig `yaml:"shading"`
	Logging LoggingConfig `yaml:"logging"`
}

// DisplayConfig holds presentation settings.
type DisplayConfig struct {
	Backend  string `yaml:"backend"`
	FPS      int    `yaml:"fps"`
	Width    int    `yaml:"width"`  // window and snapshot width
	Height   int    `yaml:"height"` // window and snapshot height
	ShowHUD  bool   `yaml:"show_hud"`
	Snapshot string `yaml:"snapshot"` // output PNG for the snapshot backend
	Frames   int    `yaml:"frames"`   // frames rendered before the snapshot
}

// MeshConfig holds where the teapot comes from and how it is fetched.
type MeshConfig struct {
	Source         string        `yaml:"source"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	NormalizeSize  float64       `yaml:"normalize_size"` // 0 keeps file coordinates
}

// SkyboxConfig holds the cube map sets.
type SkyboxConfig struct {
	Sets    []skybox.Set `yaml:"sets"`
	Initial string       `yaml:"initial"`
	Watch   bool         `yaml:"watch"`
}

// ShadingConfig holds the teapot program settings.
type ShadingConfig struct {
	Mode            string  `yaml:"mode"`
	RefractionIndex float64 `yaml:"refraction_index"`
	Shininess       float64 `yaml:"shininess"`
	SpringFrequency float64 `yaml:"spring_frequency"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			Backend:  BackendTerminal,
			FPS:      60,
			Width:    640,
			Height:   480,
			ShowHUD:  true,
			Snapshot: "teapot.png",
			Frames:   1,
		},
		Mesh: MeshConfig{
			Source:         models.DefaultTeapotURL,
			AttemptTimeout: 10 * time.Second,
			FetchTimeout:   30 * time.Second,
		},
		Skybox: SkyboxConfig{
			Sets:    skybox.DefaultSets(),
			Initial: "default",
		},
		Shading: ShadingConfig{
			Mode:            render.ModePhong.String(),
			RefractionIndex: 1.5,
			Shininess:       render.DefaultMaterial().Shininess,
			SpringFrequency: 6.0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "teapot.log",
		},
	}
}

// Validate reports every setting that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(Backends, c.Display.Backend) {
		errs = append(errs, fmt.Errorf("display.backend: unknown backend %q", c.Display.Backend))
	}
	if c.Display.FPS <= 0 {
		errs = append(errs, fmt.Errorf("display.fps: must be positive, got %d", c.Display.FPS))
	}
	if c.Display.Backend != BackendTerminal && (c.Display.Width <= 0 || c.Display.Height <= 0) {
		errs = append(errs, fmt.Errorf("display: size must be positive, got %dx%d", c.Display.Width, c.Display.Height))
	}
	if c.Display.Backend == BackendSnapshot {
		if c.Display.Snapshot == "" {
			errs = append(errs, errors.New("display.snapshot: output path required"))
		}
		if c.Display.Frames < 1 {
			errs = append(errs, fmt.Errorf("display.frames: must be at least 1, got %d", c.Display.Frames))
		}
	}
	if c.Mesh.Source == "" {
		errs = append(errs, errors.New("mesh.source: required"))
	}
	if _, err := render.ParseShaderMode(c.Shading.Mode); err != nil {
		errs = append(errs, fmt.Errorf("shading.mode: %w", err))
	}
	if c.Shading.RefractionIndex <= 0 {
		errs = append(errs, fmt.Errorf("shading.refraction_index: must be positive, got %v", c.Shading.RefractionIndex))
	}
	if len(c.Skybox.Sets) == 0 {
		errs = append(errs, errors.New("skybox.sets: at least one set required"))
	}
	for i, s := range c.Skybox.Sets {
		if s.Name == "" || s.Dir == "" {
			errs = append(errs, fmt.Errorf("skybox.sets[%d]: name and dir required", i))
		}
		if s.FaceSize < 1 {
			errs = append(errs, fmt.Errorf("skybox.sets[%d]: face_size must be positive, got %d", i, s.FaceSize))
		}
	}
	return errors.Join(errs...)
}

// ShaderMode returns the parsed shading mode, falling back to Phong.
func (c *Config) ShaderMode() render.ShaderMode {
	m, err := render.ParseShaderMode(c.Shading.Mode)
	if err != nil {
		return render.ModePhong
	}
	return m
}

// LoadOptions returns the mesh load options for this config.
func (c *Config) LoadOptions() models.LoadOptions {
	opts := models.DefaultLoadOptions()
	if c.Mesh.AttemptTimeout > 0 {
		opts.AttemptTimeout = c.Mesh.AttemptTimeout
	}
	if c.Mesh.FetchTimeout > 0 {
		opts.MaxElapsed = c.Mesh.FetchTimeout
	}
	opts.NormalizeSize = c.Mesh.NormalizeSize
	return opts
}
