package renderer

import (
	"testing"

	"github.com/andrej6/bokeh/types"
)

func TestImageRowsStoredBottomUp(t *testing.T) {
	img := NewImage(4, 3)
	img.SetPixel(0, 0, types.XYZ(1, 0, 0))

	// y=0 addresses the top row, which lives at the end of the buffer.
	idx := (3 - 1) * 4 * 4
	pix := img.Pix()
	if pix[idx] != 255 || pix[idx+1] != 0 || pix[idx+2] != 0 || pix[idx+3] != 255 {
		t.Fatalf("expected red pixel at buffer row %d; got %v", idx, pix[idx:idx+4])
	}
}

func TestImagePixelRoundTrip(t *testing.T) {
	img := NewImage(8, 8)

	img.SetPixel(3, 5, types.XYZ(0.5, 0.25, 1.0))
	c := img.Pixel(3, 5)

	if abs32(c[0]-0.5) > 0.01 || abs32(c[1]-0.25) > 0.01 || abs32(c[2]-1.0) > 0.01 {
		t.Fatalf("unexpected round-trip color %v", c)
	}
}

func TestImageChannelClamping(t *testing.T) {
	img := NewImage(2, 2)
	img.SetPixel(0, 0, types.XYZ(2.0, -1.0, 0.5))

	c := img.Pixel(0, 0)
	if c[0] != 1.0 || c[1] != 0.0 {
		t.Fatalf("expected clamped channels; got %v", c)
	}
}

func TestImageSetPixelRangeClips(t *testing.T) {
	img := NewImage(4, 4)
	img.SetPixelRange(2, 2, 10, 10, types.XYZ(1, 1, 1))

	if c := img.Pixel(3, 3); c[0] != 1 {
		t.Fatalf("expected filled corner pixel; got %v", c)
	}
	if c := img.Pixel(1, 1); c[0] != 0 {
		t.Fatalf("expected pixel outside the range untouched; got %v", c)
	}
}

func TestImageDirtyFlag(t *testing.T) {
	img := NewImage(2, 2)
	if img.Dirty() {
		t.Fatal("expected a fresh image to be clean")
	}

	img.SetPixel(0, 0, types.XYZ(1, 1, 1))
	if !img.Dirty() {
		t.Fatal("expected SetPixel to mark the image dirty")
	}

	img.ClearDirty()
	if img.Dirty() {
		t.Fatal("expected ClearDirty to reset the flag")
	}
}

func TestImageToRGBA(t *testing.T) {
	img := NewImage(3, 2)
	img.SetPixel(1, 0, types.XYZ(0, 1, 0))

	out := img.ToRGBA()
	r, g, b, a := out.At(1, 0).RGBA()
	if r != 0 || g != 0xffff || b != 0 || a != 0xffff {
		t.Fatalf("expected green at (1,0); got (%d, %d, %d, %d)", r, g, b, a)
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
