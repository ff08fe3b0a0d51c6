package render

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/taigrr/teapot/pkg/math3d"
)

// ErrNotLinked is returned when drawing with a program that has not been
// linked successfully.
var ErrNotLinked = errors.New("render: program not linked")

// LinkError reports a uniform that failed validation at link time.
type LinkError struct {
	Program string
	Uniform string
	Reason  string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("link %s: uniform %s: %s", e.Program, e.Uniform, e.Reason)
}

// ShaderMode selects the fragment path of the Phong program.
type ShaderMode int

const (
	ModePhong      ShaderMode = iota // Per-fragment Phong lighting
	ModeReflection                   // Environment reflection
	ModeRefraction                   // Environment refraction
)

// ShaderModes lists the modes in key order (1, 2, 3).
var ShaderModes = []ShaderMode{ModePhong, ModeReflection, ModeRefraction}

func (m ShaderMode) String() string {
	switch m {
	case ModePhong:
		return "phong"
	case ModeReflection:
		return "reflection"
	case ModeRefraction:
		return "refraction"
	default:
		return fmt.Sprintf("ShaderMode(%d)", int(m))
	}
}

// Valid reports whether m is a known mode.
func (m ShaderMode) Valid() bool {
	return m >= ModePhong && m <= ModeRefraction
}

// ParseShaderMode parses a mode name as printed by String.
func ParseShaderMode(s string) (ShaderMode, error) {
	for _, m := range ShaderModes {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown shader mode %q", s)
}

// Light is a point light. Position is in view space.
type Light struct {
	Position math3d.Vec3
	Ambient  math3d.Vec3
	Diffuse  math3d.Vec3
	Specular math3d.Vec3
}

// DefaultLight returns a white light at (1, 0, 0).
func DefaultLight() Light {
	white := math3d.V3(1, 1, 1)
	return Light{
		Position: math3d.V3(1, 0, 0),
		Ambient:  white,
		Diffuse:  white,
		Specular: white,
	}
}

// Material holds Phong reflection coefficients.
type Material struct {
	Ambient   math3d.Vec3
	Diffuse   math3d.Vec3
	Specular  math3d.Vec3
	Shininess float64
}

// DefaultMaterial returns the teapot's gold-ish material.
func DefaultMaterial() Material {
	return Material{
		Ambient:   math3d.V3(0.7, 0.4, 0.5),
		Diffuse:   math3d.V3(205.0/255, 163.0/255, 63.0/255),
		Specular:  math3d.V3(0.5, 0.5, 0.5),
		Shininess: 23,
	}
}

// PhongUniforms is the uniform block of the Phong program.
type PhongUniforms struct {
	ModelView  math3d.Mat4
	Projection math3d.Mat4
	Normal     math3d.Mat3
	// SkyboxView maps skybox directions into view space. Its rotation is
	// inverted to look environment directions up in the cubemap.
	SkyboxView math3d.Mat4

	Light    Light
	Material Material
	Mode     ShaderMode

	Env             *Cubemap
	LOD             float64
	RefractionIndex float64
}

// Varyings are the per-vertex outputs interpolated across a triangle.
type Varyings struct {
	ViewPos    math3d.Vec3
	ViewNormal math3d.Vec3
}

// PhongProgram shades the teapot: Phong lighting, or environment
// reflection and refraction against the skybox cubemap.
type PhongProgram struct {
	Uniforms PhongUniforms

	linked bool
	envRot math3d.Mat3
	mvp    math3d.Mat4
}

// NewPhongProgram returns an unlinked program with default light and
// material and a refraction index of 1.5.
func NewPhongProgram() *PhongProgram {
	return &PhongProgram{
		Uniforms: PhongUniforms{
			ModelView:       math3d.Identity(),
			Projection:      math3d.Identity(),
			Normal:          math3d.Identity3(),
			SkyboxView:      math3d.Identity(),
			Light:           DefaultLight(),
			Material:        DefaultMaterial(),
			Mode:            ModePhong,
			RefractionIndex: 1.5,
		},
	}
}

// Link validates the uniforms and marks the program usable. It stands in
// for shader compilation and linking.
func (p *PhongProgram) Link() error {
	p.linked = false
	u := &p.Uniforms

	checks := []struct {
		name string
		v    math3d.Vec3
	}{
		{"uLightAmbient", u.Light.Ambient},
		{"uLightDiffuse", u.Light.Diffuse},
		{"uLightSpecular", u.Light.Specular},
		{"uKAmbient", u.Material.Ambient},
		{"uKDiffuse", u.Material.Diffuse},
		{"uKSpecular", u.Material.Specular},
	}
	for _, c := range checks {
		if !c.v.IsFinite() {
			return &LinkError{Program: "phong", Uniform: c.name, Reason: "non-finite color"}
		}
		if c.v.X < 0 || c.v.Y < 0 || c.v.Z < 0 {
			return &LinkError{Program: "phong", Uniform: c.name, Reason: "negative color"}
		}
	}
	if sh := u.Material.Shininess; math.IsNaN(sh) || math.IsInf(sh, 0) || sh < 0 {
		return &LinkError{Program: "phong", Uniform: "uShininess", Reason: fmt.Sprintf("must be finite and >= 0, got %v", sh)}
	}
	if !u.Mode.Valid() {
		return &LinkError{Program: "phong", Uniform: "uMode", Reason: fmt.Sprintf("unknown mode %d", int(u.Mode))}
	}
	if ri := u.RefractionIndex; math.IsNaN(ri) || math.IsInf(ri, 0) || ri <= 0 {
		return &LinkError{Program: "phong", Uniform: "uRefractionIndex", Reason: fmt.Sprintf("must be > 0, got %v", ri)}
	}

	p.linked = true
	return nil
}

// Linked reports whether Link succeeded.
func (p *PhongProgram) Linked() bool { return p.linked }

// begin derives per-draw state from the uniforms.
func (p *PhongProgram) begin() {
	p.mvp = p.Uniforms.Projection.Mul(p.Uniforms.ModelView)
	p.envRot = math3d.Mat3FromMat4(p.Uniforms.SkyboxView).Transpose()
}

// Vertex transforms an object-space vertex to clip space and emits the
// view-space position and normal.
func (p *PhongProgram) Vertex(pos, normal math3d.Vec3) (math3d.Vec4, Varyings) {
	clip := p.mvp.MulVec4(math3d.V4FromV3(pos, 1))
	return clip, Varyings{
		ViewPos:    p.Uniforms.ModelView.MulVec3(pos),
		ViewNormal: p.Uniforms.Normal.MulVec3(normal),
	}
}

// Fragment shades one fragment and returns a color in [0,1].
func (p *PhongProgram) Fragment(v Varyings) math3d.Vec3 {
	u := &p.Uniforms
	n := v.ViewNormal.Normalize()
	// Eye is at the view-space origin.
	incident := v.ViewPos.Normalize()

	switch u.Mode {
	case ModeReflection:
		return p.environment(incident.Reflect(n))
	case ModeRefraction:
		dir := incident.Refract(n, 1/u.RefractionIndex)
		if dir == math3d.Zero3() {
			dir = incident.Reflect(n)
		}
		return p.environment(dir)
	}

	return Phong(v.ViewPos, n, u.Light, u.Material)
}

func (p *PhongProgram) environment(viewDir math3d.Vec3) math3d.Vec3 {
	if p.Uniforms.Env == nil {
		return math3d.Zero3()
	}
	return p.Uniforms.Env.Sample(p.envRot.MulVec3(viewDir), p.Uniforms.LOD)
}

// Phong evaluates ambient + diffuse + specular at a view-space point with
// unit normal n, clamped to [0,1].
func Phong(pos, n math3d.Vec3, light Light, mat Material) math3d.Vec3 {
	l := light.Position.Sub(pos).Normalize()
	view := pos.Negate().Normalize()
	r := l.Negate().Reflect(n)

	diffuse := math.Max(n.Dot(l), 0)
	specular := 0.0
	// No highlight on surfaces facing away from the light.
	if diffuse > 0 {
		specular = math.Pow(math.Max(r.Dot(view), 0), mat.Shininess)
	}

	color := mat.Ambient.Mul(light.Ambient).
		Add(mat.Diffuse.Mul(light.Diffuse).Scale(diffuse)).
		Add(mat.Specular.Mul(light.Specular).Scale(specular))
	return color.Clamp01()
}

// SkyboxUniforms is the uniform block of the skybox program.
type SkyboxUniforms struct {
	// ViewDirectionProjectionInverse is inverse(projection · view) with
	// the view translation removed.
	ViewDirectionProjectionInverse math3d.Mat4
	Skybox                         *Cubemap
	LOD                            float64
}

// SkyboxProgram fills the background by unprojecting each pixel into a
// cubemap direction.
type SkyboxProgram struct {
	Uniforms SkyboxUniforms
	linked   bool
}

// NewSkyboxProgram returns an unlinked skybox program.
func NewSkyboxProgram() *SkyboxProgram {
	return &SkyboxProgram{
		Uniforms: SkyboxUniforms{ViewDirectionProjectionInverse: math3d.Identity()},
	}
}

// Link validates the uniforms and marks the program usable.
func (p *SkyboxProgram) Link() error {
	p.linked = false
	if lod := p.Uniforms.LOD; math.IsNaN(lod) || math.IsInf(lod, 0) {
		return &LinkError{Program: "skybox", Uniform: "uLOD", Reason: "non-finite"}
	}
	p.linked = true
	return nil
}

// Linked reports whether Link succeeded.
func (p *SkyboxProgram) Linked() bool { return p.linked }

// Fragment returns the skybox color at normalized device coordinates
// (x, y) on the far plane.
func (p *SkyboxProgram) Fragment(ndcX, ndcY float64) math3d.Vec3 {
	if p.Uniforms.Skybox == nil {
		return math3d.Zero3()
	}
	t := p.Uniforms.ViewDirectionProjectionInverse.MulVec4(math3d.V4(ndcX, ndcY, 1, 1))
	dir := t.PerspectiveDivide().Normalize()
	return p.Uniforms.Skybox.Sample(dir, p.Uniforms.LOD)
}
