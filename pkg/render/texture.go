package render

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"math"
	"os"

	"github.com/taigrr/teapot/pkg/math3d"
	"golang.org/x/image/draw"
)

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // Tile the texture
	WrapClamp                  // Clamp to edge
)

// FilterMode determines how texture sampling is performed.
type FilterMode int

const (
	FilterNearest  FilterMode = iota // Nearest-neighbor (pixelated)
	FilterBilinear                   // Bilinear interpolation (smooth)
)

// Texture holds a 2D image for texture mapping.
type Texture struct {
	Width      int
	Height     int
	Pixels     []Color    // Row-major pixel data, origin top-left
	WrapU      WrapMode   // Horizontal wrap mode
	WrapV      WrapMode   // Vertical wrap mode
	FilterMode FilterMode // Sampling filter mode
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:      width,
		Height:     height,
		Pixels:     make([]Color, width*height),
		WrapU:      WrapRepeat,
		WrapV:      WrapRepeat,
		FilterMode: FilterNearest,
	}
}

// NewSolidTexture creates a square texture filled with c.
func NewSolidTexture(size int, c Color) *Texture {
	tex := NewTexture(size, size)
	for i := range tex.Pixels {
		tex.Pixels[i] = c
	}
	return tex
}

// LoadTexture loads a texture from an image file.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}
	defer f.Close()

	return DecodeTexture(f)
}

// DecodeTexture decodes a PNG or JPEG stream into a texture.
func DecodeTexture(r io.Reader) (*Texture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return TextureFromImage(img), nil
}

// TextureFromImage creates a texture from an image.Image.
func TextureFromImage(img image.Image) *Texture {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) || rgba.Stride != 4*b.Dx() {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	tex := NewTexture(b.Dx(), b.Dy())
	for i := range tex.Pixels {
		o := i * 4
		tex.Pixels[i] = Color{R: rgba.Pix[o], G: rgba.Pix[o+1], B: rgba.Pix[o+2], A: rgba.Pix[o+3]}
	}
	return tex
}

// ToImage converts the texture to an image.RGBA.
func (t *Texture) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))
	for i, c := range t.Pixels {
		o := i * 4
		img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// Resample scales the texture to a size x size square with a Catmull-Rom
// filter. A texture that already has that size is returned as is.
func (t *Texture) Resample(size int) *Texture {
	if t.Width == size && t.Height == size {
		return t
	}
	return t.scaleWith(size, size, draw.CatmullRom)
}

// Downsample halves each dimension (minimum 1), for building mip chains.
func (t *Texture) Downsample() *Texture {
	return t.scaleWith(max(1, t.Width/2), max(1, t.Height/2), draw.BiLinear)
}

func (t *Texture) scaleWith(w, h int, k *draw.Kernel) *Texture {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	src := t.ToImage()
	k.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	out := TextureFromImage(dst)
	out.WrapU, out.WrapV, out.FilterMode = t.WrapU, t.WrapV, t.FilterMode
	return out
}

// SetPixel sets a pixel in the texture.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the pixel at (x, y) with bounds checking.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample samples the texture at UV coordinates (0-1 range), V=0 at the
// bottom of the image.
func (t *Texture) Sample(u, v float64) Color {
	u = t.wrapCoord(u, t.WrapU)
	v = t.wrapCoord(v, t.WrapV)

	// Flip V coordinate (image Y=0 at top, UV V=0 at bottom)
	v = 1.0 - v

	switch t.FilterMode {
	case FilterBilinear:
		return t.sampleBilinear(u, v)
	default:
		return t.sampleNearest(u, v)
	}
}

// SampleRGB samples bilinearly at image coordinates (s, t) in [0,1] with
// the origin at the top-left, clamping to the edges. The result is a
// linear color with components in [0,1].
func (t *Texture) SampleRGB(s, tc float64) math3d.Vec3 {
	fx := clampUnit(s)*float64(t.Width) - 0.5
	fy := clampUnit(tc)*float64(t.Height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := t.wrapPixelCoord(x0+1, t.Width, WrapClamp)
	y1 := t.wrapPixelCoord(y0+1, t.Height, WrapClamp)
	x0 = t.wrapPixelCoord(x0, t.Width, WrapClamp)
	y0 = t.wrapPixelCoord(y0, t.Height, WrapClamp)

	c00 := colorVec(t.Pixels[y0*t.Width+x0])
	c10 := colorVec(t.Pixels[y0*t.Width+x1])
	c01 := colorVec(t.Pixels[y1*t.Width+x0])
	c11 := colorVec(t.Pixels[y1*t.Width+x1])

	return c00.Lerp(c10, tx).Lerp(c01.Lerp(c11, tx), ty)
}

func clampUnit(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

// wrapCoord applies the wrap mode to a coordinate.
func (t *Texture) wrapCoord(coord float64, mode WrapMode) float64 {
	switch mode {
	case WrapRepeat:
		coord = coord - math.Floor(coord) // fmod to [0,1)
	case WrapClamp:
		coord = clampUnit(coord)
	}
	return coord
}

// sampleNearest returns the nearest pixel.
func (t *Texture) sampleNearest(u, v float64) Color {
	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int(v*float64(t.Height)), t.Height-1)
	return t.GetPixel(x, y)
}

// sampleBilinear returns bilinearly interpolated color.
func (t *Texture) sampleBilinear(u, v float64) Color {
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	x1 := x0 + 1
	y1 := y0 + 1

	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x0 = t.wrapPixelCoord(x0, t.Width, t.WrapU)
	x1 = t.wrapPixelCoord(x1, t.Width, t.WrapU)
	y0 = t.wrapPixelCoord(y0, t.Height, t.WrapV)
	y1 = t.wrapPixelCoord(y1, t.Height, t.WrapV)

	top := lerpColor(t.GetPixel(x0, y0), t.GetPixel(x1, y0), tx)
	bot := lerpColor(t.GetPixel(x0, y1), t.GetPixel(x1, y1), tx)
	return lerpColor(top, bot, ty)
}

// wrapPixelCoord wraps a pixel coordinate.
func (t *Texture) wrapPixelCoord(x, size int, mode WrapMode) int {
	switch mode {
	case WrapRepeat:
		x = x % size
		if x < 0 {
			x += size
		}
	case WrapClamp:
		if x < 0 {
			x = 0
		} else if x >= size {
			x = size - 1
		}
	}
	return x
}

// lerpColor linearly interpolates between two colors.
func lerpColor(a, b Color, t float64) Color {
	return Color{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: uint8(float64(a.A) + (float64(b.A)-float64(a.A))*t),
	}
}

// colorVec converts an 8-bit color to a [0,1] RGB vector.
func colorVec(c Color) math3d.Vec3 {
	return math3d.V3(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
}

// vecColor converts a [0,1] RGB vector to an opaque 8-bit color.
func vecColor(v math3d.Vec3) Color {
	v = v.Clamp01()
	return Color{
		R: uint8(v.X*255 + 0.5),
		G: uint8(v.Y*255 + 0.5),
		B: uint8(v.Z*255 + 0.5),
		A: 255,
	}
}
