package renderer

import (
	"image"
	"sync/atomic"

	"github.com/andrej6/bokeh/types"
)

// A row-major 8-bit-per-channel RGBA buffer. Callers address pixels
// with y = 0 at the top; rows are stored bottom-up in memory so the
// buffer can be handed to OpenGL directly.
type Image struct {
	w, h  int
	data  []uint8
	dirty atomic.Bool
}

func NewImage(w, h int) *Image {
	return &Image{
		w:    w,
		h:    h,
		data: make([]uint8, w*h*4),
	}
}

func (img *Image) Width() int  { return img.w }
func (img *Image) Height() int { return img.h }

// The raw pixel bytes, bottom row first.
func (img *Image) Pix() []uint8 { return img.data }

// Whether the image changed since the dirty flag was last cleared.
func (img *Image) Dirty() bool      { return img.dirty.Load() }
func (img *Image) ClearDirty()      { img.dirty.Store(false) }
func (img *Image) markDirty()       { img.dirty.Store(true) }

func (img *Image) index(x, y int) int {
	return ((img.h-1-y)*img.w + x) * 4
}

// Set one pixel from a [0, 1] RGB color with full alpha.
func (img *Image) SetPixel(x, y int, color types.Vec3) {
	i := img.index(x, y)
	img.data[i] = channelByte(color[0])
	img.data[i+1] = channelByte(color[1])
	img.data[i+2] = channelByte(color[2])
	img.data[i+3] = 0xff
	img.markDirty()
}

// Read back one pixel as a [0, 1] RGB color.
func (img *Image) Pixel(x, y int) types.Vec3 {
	i := img.index(x, y)
	return types.XYZ(
		float32(img.data[i])/255.0,
		float32(img.data[i+1])/255.0,
		float32(img.data[i+2])/255.0,
	)
}

// Fill a pixel rectangle, clipped to the image bounds.
func (img *Image) SetPixelRange(x0, y0, w, h int, color types.Vec3) {
	x1 := min(x0+w, img.w)
	y1 := min(y0+h, img.h)
	r, g, b := channelByte(color[0]), channelByte(color[1]), channelByte(color[2])
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			i := img.index(x, y)
			img.data[i] = r
			img.data[i+1] = g
			img.data[i+2] = b
			img.data[i+3] = 0xff
		}
	}
	img.markDirty()
}

// Fill the whole image with one color.
func (img *Image) Clear(color types.Vec3) {
	img.SetPixelRange(0, 0, img.w, img.h, color)
}

// Convert to a standard library image (top row first) for encoding.
func (img *Image) ToRGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.w, img.h))
	for y := 0; y < img.h; y++ {
		srcRow := (img.h - 1 - y) * img.w * 4
		dstRow := y * out.Stride
		copy(out.Pix[dstRow:dstRow+img.w*4], img.data[srcRow:srcRow+img.w*4])
	}
	return out
}

func channelByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}
