// Package scene is the per-frame body of the teapot demo: it turns held
// keys into rotation, rebuilds every matrix from scratch and draws the
// teapot followed by the skybox.
package scene

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/charmbracelet/harmonica"
	"go.uber.org/zap"

	"github.com/taigrr/teapot/pkg/input"
	"github.com/taigrr/teapot/pkg/math3d"
	"github.com/taigrr/teapot/pkg/models"
	"github.com/taigrr/teapot/pkg/render"
	"github.com/taigrr/teapot/pkg/skybox"
)

const (
	// SkyboxStep is the skybox angle change per frame an arrow key is held.
	SkyboxStep = 0.01
	// TeapotStepDeg is the teapot angle change per frame a/d is held.
	TeapotStepDeg = 1.0
)

// Options configures a Scene.
type Options struct {
	FPS             int
	Mode            render.ShaderMode
	ModelOffset     math3d.Vec3
	Light           render.Light
	Material        render.Material
	RefractionIndex float64
	Background      render.Color
	WireframeColor  render.Color
	Wireframe       bool

	// Spring frequency and damping for the displayed angles. Damping 1 is
	// critically damped.
	SpringFrequency float64
	SpringDamping   float64

	Logger *zap.Logger
}

// DefaultOptions returns the stock teapot placement, light and material.
func DefaultOptions() Options {
	return Options{
		FPS:             60,
		Mode:            render.ModePhong,
		ModelOffset:     math3d.V3(-0.3, -1, -10),
		Light:           render.DefaultLight(),
		Material:        render.DefaultMaterial(),
		RefractionIndex: 1.5,
		Background:      render.ColorBlack,
		WireframeColor:  render.RGB(0, 255, 128),
		SpringFrequency: 6.0,
		SpringDamping:   1.0,
	}
}

// easedAngle follows a target angle through a spring.
type easedAngle struct {
	Target  float64
	Shown   float64
	vel     float64
	spring  harmonica.Spring
	initial float64
}

func newEasedAngle(fps int, freq, damping, initial float64) easedAngle {
	return easedAngle{
		Target:  initial,
		Shown:   initial,
		spring:  harmonica.NewSpring(harmonica.FPS(fps), freq, damping),
		initial: initial,
	}
}

func (a *easedAngle) update() {
	a.Shown, a.vel = a.spring.Update(a.Shown, a.vel, a.Target)
}

func (a *easedAngle) reset() {
	a.Target = a.initial
}

// Transforms are the matrices of one frame.
type Transforms struct {
	View       math3d.Mat4
	ModelView  math3d.Mat4
	Projection math3d.Mat4
	Normal     math3d.Mat3

	// SkyboxView is the orbit camera's view with translation removed.
	SkyboxView math3d.Mat4
	// SkyboxInverse is inverse(Projection · SkyboxView).
	SkyboxInverse math3d.Mat4

	LightPosition math3d.Vec3
}

// Scene holds the demo state between frames.
type Scene struct {
	opts   Options
	log    *zap.Logger
	camera *render.Camera
	phong  *render.PhongProgram
	sky    *render.SkyboxProgram
	skies  *skybox.Library

	mesh atomic.Pointer[models.Mesh]

	skyAngle easedAngle
	teaAngle easedAngle

	mode      render.ShaderMode
	wireframe bool
}

// New links both programs and returns a scene drawing skies. skies may be
// nil, in which case the environment is black.
func New(opts Options, skies *skybox.Library) (*Scene, error) {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.SpringFrequency <= 0 {
		opts.SpringFrequency = DefaultOptions().SpringFrequency
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Scene{
		opts:      opts,
		log:       log,
		camera:    render.NewCamera(),
		phong:     render.NewPhongProgram(),
		sky:       render.NewSkyboxProgram(),
		skies:     skies,
		mode:      opts.Mode,
		wireframe: opts.Wireframe,
		skyAngle:  newEasedAngle(opts.FPS, opts.SpringFrequency, opts.SpringDamping, 0),
		teaAngle:  newEasedAngle(opts.FPS, opts.SpringFrequency, opts.SpringDamping, 0),
	}

	u := &s.phong.Uniforms
	u.Light = opts.Light
	u.Material = opts.Material
	u.Mode = opts.Mode
	u.RefractionIndex = opts.RefractionIndex
	if err := s.phong.Link(); err != nil {
		return nil, fmt.Errorf("link phong program: %w", err)
	}
	if err := s.sky.Link(); err != nil {
		return nil, fmt.Errorf("link skybox program: %w", err)
	}
	return s, nil
}

// Camera returns the scene camera.
func (s *Scene) Camera() *render.Camera { return s.camera }

// SetMesh publishes a loaded mesh. It may be called from any goroutine.
func (s *Scene) SetMesh(m *models.Mesh) {
	s.mesh.Store(m)
	if m != nil {
		s.log.Info("Mesh ready",
			zap.String("name", m.Name),
			zap.Int("vertices", m.VertexCount()),
			zap.Int("triangles", m.TriangleCount()))
	}
}

// Mesh returns the loaded mesh, or nil while it is still loading.
func (s *Scene) Mesh() *models.Mesh { return s.mesh.Load() }

// Mode returns the current shader mode.
func (s *Scene) Mode() render.ShaderMode { return s.mode }

// Wireframe reports whether the x-ray view is on.
func (s *Scene) Wireframe() bool { return s.wireframe }

// Skyboxes returns the skybox library, which may be nil.
func (s *Scene) Skyboxes() *skybox.Library { return s.skies }

// Angles returns the target skybox and teapot angles in radians.
func (s *Scene) Angles() (skyAngle, teaAngle float64) {
	return s.skyAngle.Target, s.teaAngle.Target
}

// ShownAngles returns the spring-smoothed angles used for drawing.
func (s *Scene) ShownAngles() (skyAngle, teaAngle float64) {
	return s.skyAngle.Shown, s.teaAngle.Shown
}

// Update applies one frame of input and advances the springs.
func (s *Scene) Update(p input.Poller) {
	if p != nil {
		s.handleKeys(p)
	}
	s.skyAngle.update()
	s.teaAngle.update()
}

func (s *Scene) handleKeys(p input.Poller) {
	if p.Pressed(input.KeyRight) {
		s.skyAngle.Target -= SkyboxStep
	}
	if p.Pressed(input.KeyLeft) {
		s.skyAngle.Target += SkyboxStep
	}
	if p.Pressed(input.KeyA) {
		s.teaAngle.Target -= math3d.DegToRad(TeapotStepDeg)
	}
	if p.Pressed(input.KeyD) {
		s.teaAngle.Target += math3d.DegToRad(TeapotStepDeg)
	}

	modeKeys := []struct {
		key  input.Key
		mode render.ShaderMode
	}{
		{input.Key1, render.ModePhong},
		{input.Key2, render.ModeReflection},
		{input.Key3, render.ModeRefraction},
	}
	for _, mk := range modeKeys {
		if p.JustPressed(mk.key) && s.mode != mk.mode {
			s.mode = mk.mode
			s.log.Debug("Shader mode changed", zap.Stringer("mode", mk.mode))
		}
	}

	if p.JustPressed(input.KeyB) && s.skies != nil && s.skies.Len() > 0 {
		next := s.skies.Next()
		s.log.Debug("Skybox changed", zap.String("set", next.Set().Name))
	}
	if p.JustPressed(input.KeyR) {
		s.skyAngle.reset()
		s.teaAngle.reset()
	}
	if p.JustPressed(input.KeyX) {
		s.wireframe = !s.wireframe
	}
}

// currentCubemap returns the snapshot of the selected skybox, or nil.
func (s *Scene) currentCubemap() *render.Cubemap {
	if s.skies == nil {
		return nil
	}
	if l := s.skies.Current(); l != nil {
		return l.Cubemap()
	}
	return nil
}

// Frame computes every matrix for a viewport of the given aspect ratio.
// Nothing carries over from earlier frames except the angles.
func (s *Scene) Frame(aspect float64) Transforms {
	if aspect <= 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		aspect = 1
	}
	s.camera.Aspect = aspect

	skyAngle, teaAngle := s.ShownAngles()

	var t Transforms
	t.View = s.camera.ViewMatrix()
	t.Projection = s.camera.ProjectionMatrix()
	t.ModelView = t.View.
		Mul(math3d.Translate(s.opts.ModelOffset)).
		Mul(math3d.RotateY(teaAngle))
	t.Normal = math3d.NormalMatrix(t.ModelView)

	orbit := math3d.V3(math.Cos(skyAngle), 0, math.Sin(skyAngle))
	t.SkyboxView = math3d.LookAt(orbit, math3d.Zero3(), math3d.Up()).WithoutTranslation()
	t.SkyboxInverse = t.Projection.Mul(t.SkyboxView).Inverse()
	t.LightPosition = orbit
	return t
}

// upload copies t into the program uniforms.
func (s *Scene) upload(t Transforms, screenHeight int) {
	cube := s.currentCubemap()
	lod := 0.0
	if cube != nil {
		lod = render.EstimateLOD(cube.Size(), s.camera.FOV, screenHeight)
	}

	u := &s.phong.Uniforms
	u.ModelView = t.ModelView
	u.Projection = t.Projection
	u.Normal = t.Normal
	u.SkyboxView = t.SkyboxView
	u.Light.Position = t.LightPosition
	u.Mode = s.mode
	u.Env = cube
	u.LOD = lod

	s.sky.Uniforms.ViewDirectionProjectionInverse = t.SkyboxInverse
	s.sky.Uniforms.Skybox = cube
	s.sky.Uniforms.LOD = lod
}

// Render clears r, draws the teapot if loaded and then the skybox behind
// it.
func (s *Scene) Render(r *render.Rasterizer) error {
	fb := r.Framebuffer()
	if fb == nil {
		return nil
	}
	t := s.Frame(fb.Aspect())
	s.upload(t, fb.Height)

	r.Clear(s.opts.Background)
	if mesh := s.Mesh(); mesh != nil {
		var err error
		if s.wireframe {
			err = r.DrawMeshWireframe(mesh, s.phong, s.opts.WireframeColor)
		} else {
			err = r.DrawMesh(mesh, s.phong)
		}
		if err != nil {
			return fmt.Errorf("draw teapot: %w", err)
		}
	}
	// The wireframe view has no depth, so the skybox would cover it.
	if s.wireframe {
		return nil
	}
	if err := r.DrawSkybox(s.sky); err != nil {
		return fmt.Errorf("draw skybox: %w", err)
	}
	return nil
}
