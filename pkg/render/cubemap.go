package render

import (
	"fmt"
	"math"

	"github.com/taigrr/teapot/pkg/math3d"
)

// CubeFace indexes a cubemap face in OpenGL order.
type CubeFace int

const (
	FacePosX CubeFace = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// CubeFaces lists all faces in upload order.
var CubeFaces = [6]CubeFace{FacePosX, FaceNegX, FacePosY, FaceNegY, FacePosZ, FaceNegZ}

func (f CubeFace) String() string {
	switch f {
	case FacePosX:
		return "+x"
	case FaceNegX:
		return "-x"
	case FacePosY:
		return "+y"
	case FaceNegY:
		return "-y"
	case FacePosZ:
		return "+z"
	case FaceNegZ:
		return "-z"
	default:
		return fmt.Sprintf("CubeFace(%d)", int(f))
	}
}

// Cubemap is an immutable set of six square faces with mip chains.
// Updates go through WithFace, which returns a new value, so a *Cubemap
// can be shared between a loader and the render loop without locking.
type Cubemap struct {
	size int
	// mips[face][level]; level 0 is the full-size face.
	mips [6][]*Texture
}

// NewCubemap returns a cubemap whose faces are black size x size
// placeholders.
func NewCubemap(size int) *Cubemap {
	if size < 1 {
		size = 1
	}
	c := &Cubemap{size: size}
	black := buildMips(NewSolidTexture(size, ColorBlack))
	for i := range c.mips {
		c.mips[i] = black
	}
	return c
}

// Size returns the edge length of each face in texels.
func (c *Cubemap) Size() int { return c.size }

// Levels returns the number of mip levels per face.
func (c *Cubemap) Levels() int { return len(c.mips[0]) }

// Face returns the level-0 texture of face f.
func (c *Cubemap) Face(f CubeFace) *Texture { return c.mips[f][0] }

// WithFace returns a copy of c with face f replaced by tex, resampled to
// the cubemap size. The receiver is left unchanged.
func (c *Cubemap) WithFace(f CubeFace, tex *Texture) *Cubemap {
	next := &Cubemap{size: c.size, mips: c.mips}
	next.mips[f] = buildMips(tex.Resample(c.size))
	return next
}

func buildMips(base *Texture) []*Texture {
	levels := []*Texture{base}
	for t := base; t.Width > 1 || t.Height > 1; {
		t = t.Downsample()
		levels = append(levels, t)
	}
	return levels
}

// Sample returns the color seen along dir at level of detail lod, with
// components in [0,1]. Face selection and face coordinates follow the
// OpenGL cube map table; faces are addressed with the image origin at the
// top-left. Fractional lods blend the two nearest levels.
func (c *Cubemap) Sample(dir math3d.Vec3, lod float64) math3d.Vec3 {
	face, s, t, ok := CubeCoords(dir)
	if !ok {
		return math3d.Zero3()
	}

	levels := c.mips[face]
	last := float64(len(levels) - 1)
	if lod <= 0 || math.IsNaN(lod) {
		return levels[0].SampleRGB(s, t)
	}
	if lod >= last {
		return levels[len(levels)-1].SampleRGB(s, t)
	}

	lo := math.Floor(lod)
	frac := lod - lo
	c0 := levels[int(lo)].SampleRGB(s, t)
	if frac == 0 {
		return c0
	}
	return c0.Lerp(levels[int(lo)+1].SampleRGB(s, t), frac)
}

// CubeCoords maps a direction to a face and (s, t) coordinates in [0,1].
// ok is false for the zero vector or non-finite input.
func CubeCoords(dir math3d.Vec3) (face CubeFace, s, t float64, ok bool) {
	if !dir.IsFinite() {
		return 0, 0, 0, false
	}

	ax, ay, az := math.Abs(dir.X), math.Abs(dir.Y), math.Abs(dir.Z)
	var sc, tc, ma float64

	switch {
	case ax >= ay && ax >= az:
		ma = ax
		if dir.X >= 0 {
			face, sc, tc = FacePosX, -dir.Z, -dir.Y
		} else {
			face, sc, tc = FaceNegX, dir.Z, -dir.Y
		}
	case ay >= az:
		ma = ay
		if dir.Y >= 0 {
			face, sc, tc = FacePosY, dir.X, dir.Z
		} else {
			face, sc, tc = FaceNegY, dir.X, -dir.Z
		}
	default:
		ma = az
		if dir.Z >= 0 {
			face, sc, tc = FacePosZ, dir.X, -dir.Y
		} else {
			face, sc, tc = FaceNegZ, -dir.X, -dir.Y
		}
	}
	if ma == 0 {
		return 0, 0, 0, false
	}

	s = (sc/ma + 1) * 0.5
	t = (tc/ma + 1) * 0.5
	return face, s, t, true
}

// EstimateLOD picks a mip level for a cubemap seen through a perspective
// camera: log2 of how many face texels one screen pixel spans at the
// center of the view.
func EstimateLOD(faceSize int, fov float64, screenHeight int) float64 {
	if faceSize <= 0 || screenHeight <= 0 {
		return 0
	}
	texelsPerRadian := float64(faceSize) / (math.Pi / 2)
	radiansPerPixel := fov / float64(screenHeight)
	return math.Log2(math.Max(1, texelsPerRadian*radiansPerPixel))
}
