package render

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestFramebufferClearAndPixels(t *testing.T) {
	fb := NewFramebuffer(5, 3)
	fb.Clear(RGB(9, 8, 7))

	for i, p := range fb.Pixels {
		if p != RGB(9, 8, 7) {
			t.Fatalf("pixel %d = %v after Clear", i, p)
		}
	}

	fb.SetPixel(4, 2, ColorWhite)
	fb.SetPixel(-1, 0, ColorWhite) // ignored
	if got := fb.GetPixel(4, 2); got != ColorWhite {
		t.Errorf("GetPixel(4,2) = %v", got)
	}
	if got := fb.GetPixel(5, 0); got != (Color{}) {
		t.Errorf("out of bounds GetPixel = %v, want zero", got)
	}
	if got := fb.GetDepth(-1, -1); got != 1 {
		t.Errorf("out of bounds GetDepth = %v, want 1", got)
	}
}

func TestFramebufferResize(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.Resize(6, 2)
	if fb.Width != 6 || fb.Height != 2 || len(fb.Pixels) != 12 || len(fb.Depth) != 12 {
		t.Errorf("Resize gave %dx%d with %d/%d samples", fb.Width, fb.Height, len(fb.Pixels), len(fb.Depth))
	}
	if a := fb.Aspect(); a != 3 {
		t.Errorf("Aspect() = %v, want 3", a)
	}
}

func TestFramebufferDrawLine(t *testing.T) {
	fb := NewFramebuffer(10, 10)
	fb.DrawLine(0, 0, 9, 9, ColorWhite)
	for i := range 10 {
		if fb.GetPixel(i, i) != ColorWhite {
			t.Errorf("diagonal pixel %d not set", i)
		}
	}
}

func TestFramebufferSavePNG(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	fb.Clear(ColorBlack)
	fb.SetPixel(2, 1, RGB(1, 2, 3))

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := fb.SavePNG(path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, _ := img.At(2, 1).RGBA()
	if r>>8 != 1 || g>>8 != 2 || b>>8 != 3 {
		t.Errorf("saved pixel = (%d,%d,%d), want (1,2,3)", r>>8, g>>8, b>>8)
	}
}
