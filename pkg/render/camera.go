package render

import (
	"math"

	"github.com/taigrr/teapot/pkg/math3d"
)

// Camera is a look-at camera with a perspective projection. Matrices are
// derived on every call; nothing is cached between frames.
type Camera struct {
	// Eye is the camera position in world space.
	Eye math3d.Vec3
	// ViewDir is the direction the camera looks along.
	ViewDir math3d.Vec3
	// Up is the world-space up hint.
	Up math3d.Vec3

	FOV    float64 // Vertical field of view in radians
	Aspect float64 // Width / Height
	Near   float64 // Near clipping plane
	Far    float64 // Far clipping plane
}

// NewCamera creates a camera at the origin looking down -Z with a 60°
// field of view and clip planes at 0.1 and 400.
func NewCamera() *Camera {
	return &Camera{
		Eye:     math3d.Zero3(),
		ViewDir: math3d.Forward(),
		Up:      math3d.Up(),
		FOV:     math.Pi / 3,
		Aspect:  1,
		Near:    0.1,
		Far:     400,
	}
}

// Target returns the point the camera looks at, Eye + ViewDir.
func (c *Camera) Target() math3d.Vec3 {
	return c.Eye.Add(c.ViewDir)
}

// ViewMatrix returns the world-to-view transform.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	return math3d.LookAt(c.Eye, c.Target(), c.Up)
}

// ProjectionMatrix returns the perspective projection.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	return math3d.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

// ViewProjectionMatrix returns projection · view.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// WorldToScreen transforms a world point to screen coordinates.
// Returns (screenX, screenY, depth, visible) with depth in [0,1].
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clipPos := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))

	// Behind the camera
	if clipPos.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clipPos.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight) // Y is flipped
	depth = (ndc.Z + 1) * 0.5

	return x, y, depth, true
}
