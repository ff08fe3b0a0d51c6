package render

import (
	"math"

	"github.com/taigrr/teapot/pkg/math3d"
)

// MeshRenderer is the read-only view of a mesh the rasterizer draws.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer is a MeshRenderer that can report its local bounds
// for frustum culling.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// DepthFunc selects the depth comparison for a draw.
type DepthFunc int

const (
	DepthLess      DepthFunc = iota // Pass when z < stored depth
	DepthLessEqual                  // Pass when z <= stored depth
)

func (d DepthFunc) pass(z, stored float64) bool {
	if d == DepthLessEqual {
		return z <= stored
	}
	return z < stored
}

// FrameStats counts work done since the last Clear.
type FrameStats struct {
	TrianglesDrawn   int // Triangles that reached the fill stage
	TrianglesCulled  int // Back faces rejected
	TrianglesClipped int // Triangles with a vertex behind the eye
	MeshesTested     int // Meshes tested against the frustum
	MeshesCulled     int // Meshes entirely outside the frustum
}

// Rasterizer draws triangles into a Framebuffer with depth testing,
// back-face culling and perspective-correct interpolation. Front faces
// wind counter-clockwise in normalized device coordinates.
type Rasterizer struct {
	fb                     *Framebuffer
	Stats                  FrameStats
	DisableBackfaceCulling bool // If true, render both sides of triangles

	// Per-draw scratch, reused across frames.
	clip []math3d.Vec4
	vary []Varyings
}

// NewRasterizer creates a rasterizer targeting fb.
func NewRasterizer(fb *Framebuffer) *Rasterizer {
	return &Rasterizer{fb: fb}
}

// Framebuffer returns the render target.
func (r *Rasterizer) Framebuffer() *Framebuffer { return r.fb }

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// Clear fills the color buffer with c, resets depth to 1 and zeroes the
// frame statistics.
func (r *Rasterizer) Clear(c Color) {
	r.Stats = FrameStats{}
	if r.fb == nil {
		return
	}
	r.fb.Clear(c)
	r.fb.ClearDepth()
}

// screenVertex is a vertex after perspective divide and viewport mapping.
type screenVertex struct {
	X, Y float64 // Pixel coordinates, origin top-left
	Z    float64 // Window depth in [0,1]
	InvW float64 // 1/w for perspective-correct interpolation
}

func (r *Rasterizer) toScreen(c math3d.Vec4) screenVertex {
	invW := 1 / c.W
	return screenVertex{
		X:    (c.X*invW + 1) * 0.5 * float64(r.Width()),
		Y:    (1 - c.Y*invW) * 0.5 * float64(r.Height()),
		Z:    (c.Z*invW + 1) * 0.5,
		InvW: invW,
	}
}

// cullMesh reports whether mesh lies entirely outside the frustum of mvp.
// Meshes without bounds are never culled.
func (r *Rasterizer) cullMesh(mesh MeshRenderer, mvp math3d.Mat4) bool {
	bounded, ok := mesh.(BoundedMeshRenderer)
	if !ok {
		return false
	}
	r.Stats.MeshesTested++

	// Planes extracted from the full MVP are in object space.
	minBounds, maxBounds := bounded.GetBounds()
	if !ExtractFrustum(mvp).IntersectAABB(AABB{Min: minBounds, Max: maxBounds}) {
		r.Stats.MeshesCulled++
		return true
	}
	return false
}

// DrawMesh runs prog over every triangle of mesh with LESS depth testing.
func (r *Rasterizer) DrawMesh(mesh MeshRenderer, prog *PhongProgram) error {
	if !prog.Linked() {
		return ErrNotLinked
	}
	if r.fb == nil || mesh == nil || mesh.TriangleCount() == 0 {
		return nil
	}

	prog.begin()
	if r.cullMesh(mesh, prog.mvp) {
		return nil
	}

	// Vertex stage, once per vertex.
	n := mesh.VertexCount()
	r.clip = r.clip[:0]
	r.vary = r.vary[:0]
	for i := range n {
		pos, normal, _ := mesh.GetVertex(i)
		c, v := prog.Vertex(pos, normal)
		r.clip = append(r.clip, c)
		r.vary = append(r.vary, v)
	}

	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)
		c0, c1, c2 := r.clip[face[0]], r.clip[face[1]], r.clip[face[2]]
		if c0.W <= 0 || c1.W <= 0 || c2.W <= 0 {
			r.Stats.TrianglesClipped++
			continue
		}

		sv := [3]screenVertex{r.toScreen(c0), r.toScreen(c1), r.toScreen(c2)}
		// Screen Y points down, so counter-clockwise fronts have negative area.
		area := signedArea(sv)
		if area == 0 {
			continue
		}
		if area > 0 && !r.DisableBackfaceCulling {
			r.Stats.TrianglesCulled++
			continue
		}

		v0, v1, v2 := r.vary[face[0]], r.vary[face[1]], r.vary[face[2]]
		r.fillTriangle(sv, area, DepthLess, true, func(_, _ int, bc [3]float64) Color {
			return vecColor(prog.Fragment(Varyings{
				ViewPos:    v0.ViewPos.Scale(bc[0]).Add(v1.ViewPos.Scale(bc[1])).Add(v2.ViewPos.Scale(bc[2])),
				ViewNormal: v0.ViewNormal.Scale(bc[0]).Add(v1.ViewNormal.Scale(bc[1])).Add(v2.ViewNormal.Scale(bc[2])),
			}))
		})
		r.Stats.TrianglesDrawn++
	}
	return nil
}

// skyboxQuad is the full-screen quad in NDC as two triangles.
var skyboxQuad = [6]math3d.Vec2{
	{X: -1, Y: -1}, {X: 1, Y: -1}, {X: -1, Y: 1},
	{X: -1, Y: 1}, {X: 1, Y: -1}, {X: 1, Y: 1},
}

// DrawSkybox draws a full-screen quad on the far plane (depth 1) with
// LEQUAL depth testing, so it only fills pixels nothing else covered.
func (r *Rasterizer) DrawSkybox(prog *SkyboxProgram) error {
	if !prog.Linked() {
		return ErrNotLinked
	}
	if r.fb == nil || r.Width() == 0 || r.Height() == 0 {
		return nil
	}

	w, h := float64(r.Width()), float64(r.Height())
	for i := 0; i < len(skyboxQuad); i += 3 {
		var sv [3]screenVertex
		for j := range 3 {
			sv[j] = r.toScreen(math3d.V4(skyboxQuad[i+j].X, skyboxQuad[i+j].Y, 1, 1))
		}
		area := signedArea(sv)
		r.fillTriangle(sv, area, DepthLessEqual, false, func(x, y int, _ [3]float64) Color {
			ndcX := (float64(x)+0.5)/w*2 - 1
			ndcY := 1 - (float64(y)+0.5)/h*2
			return vecColor(prog.Fragment(ndcX, ndcY))
		})
		r.Stats.TrianglesDrawn++
	}
	return nil
}

func signedArea(sv [3]screenVertex) float64 {
	return (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
}

// edgeCoeffs returns A, B, C for the edge function A*x + B*y + C, which is
// zero on the line through (x0, y0) and (x1, y1).
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y0 - y1
	B = x1 - x0
	C = x0*y1 - x1*y0
	return
}

// fillTriangle scans the pixel centers covered by sv using incremental edge
// functions. For each pixel passing the depth test it calls shade with
// perspective-correct barycentrics and stores the color; depth is written
// when writeDepth is set. Fragments with depth outside [0,1] are clipped.
func (r *Rasterizer) fillTriangle(sv [3]screenVertex, area float64, depth DepthFunc, writeDepth bool, shade func(x, y int, bc [3]float64) Color) {
	minX := int(math.Max(0, math.Floor(min(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max(sv[0].Y, sv[1].Y, sv[2].Y))))
	if minX > maxX || minY > maxY {
		return
	}

	// Edge i is opposite vertex i.
	A0, B0, C0 := edgeCoeffs(sv[1].X, sv[1].Y, sv[2].X, sv[2].Y)
	A1, B1, C1 := edgeCoeffs(sv[2].X, sv[2].Y, sv[0].X, sv[0].Y)
	A2, B2, C2 := edgeCoeffs(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y)
	invArea := 1 / area

	px := float64(minX) + 0.5
	py := float64(minY) + 0.5
	w0Row := A0*px + B0*py + C0
	w1Row := A1*px + B1*py + C1
	w2Row := A2*px + B2*py + C2

	width := r.fb.Width
	pixels := r.fb.Pixels
	zbuf := r.fb.Depth

	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		rowOffset := y * width

		for x := minX; x <= maxX; x++ {
			// Dividing by the signed area makes the test winding-independent.
			l0, l1, l2 := w0*invArea, w1*invArea, w2*invArea
			if l0 >= 0 && l1 >= 0 && l2 >= 0 {
				z := snapDepth(l0*sv[0].Z + l1*sv[1].Z + l2*sv[2].Z)
				idx := rowOffset + x
				if z >= 0 && z <= 1 && depth.pass(z, zbuf[idx]) {
					p0 := l0 * sv[0].InvW
					p1 := l1 * sv[1].InvW
					p2 := l2 * sv[2].InvW
					s := 1 / (p0 + p1 + p2)

					pixels[idx] = shade(x, y, [3]float64{p0 * s, p1 * s, p2 * s})
					if writeDepth {
						zbuf[idx] = z
					}
				}
			}
			w0 += A0
			w1 += A1
			w2 += A2
		}
		w0Row += B0
		w1Row += B1
		w2Row += B2
	}
}

// depthEpsilon absorbs rounding in the interpolated depth, where the
// barycentric weights can sum to slightly more than one.
const depthEpsilon = 1e-9

// snapDepth pulls depths within depthEpsilon of the [0,1] range onto it,
// so geometry on the far plane still passes LEQUAL against a cleared
// buffer.
func snapDepth(z float64) float64 {
	switch {
	case z > 1 && z <= 1+depthEpsilon:
		return 1
	case z < 0 && z >= -depthEpsilon:
		return 0
	}
	return z
}

// DrawMeshWireframe draws every triangle edge of mesh through prog's
// model-view-projection, ignoring depth (x-ray view).
func (r *Rasterizer) DrawMeshWireframe(mesh MeshRenderer, prog *PhongProgram, color Color) error {
	if !prog.Linked() {
		return ErrNotLinked
	}
	if r.fb == nil || mesh == nil {
		return nil
	}

	prog.begin()
	if r.cullMesh(mesh, prog.mvp) {
		return nil
	}

	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)

		p0, _, _ := mesh.GetVertex(face[0])
		p1, _, _ := mesh.GetVertex(face[1])
		p2, _, _ := mesh.GetVertex(face[2])

		r.drawLine3D(prog.mvp, p0, p1, color)
		r.drawLine3D(prog.mvp, p1, p2, color)
		r.drawLine3D(prog.mvp, p2, p0, color)
	}
	return nil
}

// drawLine3D projects a segment through mvp and draws it. Segments with an
// endpoint behind the eye are skipped.
func (r *Rasterizer) drawLine3D(mvp math3d.Mat4, a, b math3d.Vec3, color Color) {
	clipA := mvp.MulVec4(math3d.V4FromV3(a, 1))
	clipB := mvp.MulVec4(math3d.V4FromV3(b, 1))
	if clipA.W <= 0 || clipB.W <= 0 {
		return
	}

	sa, sb := r.toScreen(clipA), r.toScreen(clipB)
	r.fb.DrawLine(int(sa.X), int(sa.Y), int(sb.X), int(sb.Y), color)
}
