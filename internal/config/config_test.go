package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/teapot/pkg/models"
	"github.com/taigrr/teapot/pkg/render"
	"github.com/taigrr/teapot/pkg/skybox"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, BackendTerminal, cfg.Display.Backend)
	assert.Equal(t, 60, cfg.Display.FPS)
	assert.Equal(t, models.DefaultTeapotURL, cfg.Mesh.Source)
	assert.Equal(t, skybox.DefaultSets(), cfg.Skybox.Sets)
	assert.Equal(t, "phong", cfg.Shading.Mode)
	assert.Equal(t, 1.5, cfg.Shading.RefractionIndex)
	assert.Equal(t, 23.0, cfg.Shading.Shininess)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), FileName)
	yamlContent := `
display:
  backend: window
  fps: 30
  width: 800
  height: 600
mesh:
  source: ./teapot.obj
  fetch_timeout: 5s
skybox:
  sets:
    - name: lake
      dir: ./lake
      face_size: 256
  watch: true
shading:
  mode: refraction
  refraction_index: 1.33
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	cfg := Default()
	require.NoError(t, loadFromFile(cfg, configPath))

	assert.Equal(t, BackendWindow, cfg.Display.Backend)
	assert.Equal(t, 30, cfg.Display.FPS)
	assert.Equal(t, 800, cfg.Display.Width)
	assert.Equal(t, "./teapot.obj", cfg.Mesh.Source)
	assert.Equal(t, 5*time.Second, cfg.Mesh.FetchTimeout)
	assert.Equal(t, 10*time.Second, cfg.Mesh.AttemptTimeout, "unset keys keep defaults")
	assert.Equal(t, []skybox.Set{{Name: "lake", Dir: "./lake", FaceSize: 256}}, cfg.Skybox.Sets)
	assert.True(t, cfg.Skybox.Watch)
	assert.Equal(t, render.ModeRefraction, cfg.ShaderMode())
	assert.Equal(t, 1.33, cfg.Shading.RefractionIndex)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("display:\n  fps: not a number\n  bad syntax\n"), 0o644))

	assert.Error(t, loadFromFile(Default(), configPath))
	assert.Error(t, loadFromFile(Default(), "/nonexistent/path/teapot.yaml"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Display.Backend = "webgl" }},
		{"zero fps", func(c *Config) { c.Display.FPS = 0 }},
		{"unknown mode", func(c *Config) { c.Shading.Mode = "toon" }},
		{"no skybox sets", func(c *Config) { c.Skybox.Sets = nil }},
		{"bad face size", func(c *Config) { c.Skybox.Sets[0].FaceSize = 0 }},
		{"empty mesh", func(c *Config) { c.Mesh.Source = "" }},
		{"bad refraction", func(c *Config) { c.Shading.RefractionIndex = 0 }},
		{"snapshot without path", func(c *Config) {
			c.Display.Backend = BackendSnapshot
			c.Display.Snapshot = ""
		}},
		{"window without size", func(c *Config) {
			c.Display.Backend = BackendWindow
			c.Display.Width = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateReportsAll(t *testing.T) {
	cfg := Default()
	cfg.Display.FPS = -1
	cfg.Shading.Mode = "toon"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "display.fps")
	assert.Contains(t, err.Error(), "shading.mode")
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	assert.NotEmpty(t, dir)
	assert.True(t, filepath.IsAbs(dir), "ConfigDir should be absolute, got %s", dir)
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	assert.Empty(t, findConfigFile())

	require.NoError(t, os.WriteFile(FileName, []byte("display:\n  fps: 24\n"), 0o644))
	assert.NotEmpty(t, findConfigFile())
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "backend and mode",
			setup: func() { *flagBackend = "window"; *flagMode = "reflection" },
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, BackendWindow, cfg.Display.Backend)
				assert.Equal(t, render.ModeReflection, cfg.ShaderMode())
			},
			teardown: func() { *flagBackend = ""; *flagMode = "" },
		},
		{
			name:  "snapshot implies backend",
			setup: func() { *flagSnapshot = "out.png"; *flagFrames = 5 },
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, BackendSnapshot, cfg.Display.Backend)
				assert.Equal(t, "out.png", cfg.Display.Snapshot)
				assert.Equal(t, 5, cfg.Display.Frames)
			},
			teardown: func() { *flagSnapshot = ""; *flagFrames = 0 },
		},
		{
			name:  "mesh and fps",
			setup: func() { *flagMesh = "teapot.glb"; *flagFPS = 24 },
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "teapot.glb", cfg.Mesh.Source)
				assert.Equal(t, 24, cfg.Display.FPS)
			},
			teardown: func() { *flagMesh = ""; *flagFPS = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(configPath, []byte("display:\n  fps: 30\n  width: 1024\n"), 0o644))

	*flagConfig = configPath
	*flagFPS = 90
	defer func() {
		*flagConfig = ""
		*flagFPS = 0
	}()

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.Display.FPS, "flag wins over file")
	assert.Equal(t, 1024, cfg.Display.Width, "file wins over default")
}

func TestLoadRejectsInvalid(t *testing.T) {
	*flagBackend = "webgl"
	defer func() { *flagBackend = "" }()

	_, err := Load()
	assert.Error(t, err)
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	cfg := Default()
	cfg.Shading.Mode = "reflection"
	require.NoError(t, cfg.SaveTo(path))

	loaded := Default()
	require.NoError(t, loadFromFile(loaded, path))
	assert.Equal(t, cfg, loaded)
}

func TestLoadOptions(t *testing.T) {
	cfg := Default()
	cfg.Mesh.FetchTimeout = 3 * time.Second
	cfg.Mesh.NormalizeSize = 2
	opts := cfg.LoadOptions()
	assert.Equal(t, 3*time.Second, opts.MaxElapsed)
	assert.Equal(t, 10*time.Second, opts.AttemptTimeout)
	assert.Equal(t, 2.0, opts.NormalizeSize)
}
