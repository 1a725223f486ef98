package renderer

import (
	"github.com/andrej6/bokeh/scene"
)

// The coarse-to-fine single-thread progressive driver. The image is
// tiled by a cell grid; each call to TraceNextPixel shoots one
// cell-centered ray and paints the whole cell. Once every cell at the
// current resolution has been drawn the grid doubles, until cells are
// single pixels.
type Progressive struct {
	sc  *scene.Scene
	img *Image

	xdivs, ydivs int
	curX, curY   int
	done         bool
}

func NewProgressive(sc *scene.Scene, img *Image) *Progressive {
	p := &Progressive{sc: sc, img: img}
	p.Reset()
	return p
}

// Restart the scan from the coarsest resolution.
func (p *Progressive) Reset() {
	divs := p.img.Height() / 20
	if divs < 1 {
		divs = 1
	}
	p.xdivs = min(divs, p.img.Width())
	p.ydivs = min(divs, p.img.Height())
	p.curX, p.curY = 0, 0
	p.done = false
}

// The current grid resolution.
func (p *Progressive) Divs() (xdivs, ydivs int) {
	return p.xdivs, p.ydivs
}

// Whether the native-resolution pass has completed.
func (p *Progressive) Done() bool { return p.done }

// Trace one cell-centered ray, paint its cell, and advance the
// row-major scan, doubling the grid when a resolution is exhausted.
// Returns false once every pixel at native resolution has been
// visited.
func (p *Progressive) TraceNextPixel() bool {
	if p.done {
		return false
	}

	w, h := p.img.Width(), p.img.Height()
	x0 := p.curX * w / p.xdivs
	x1 := (p.curX + 1) * w / p.xdivs
	y0 := p.curY * h / p.ydivs
	y1 := (p.curY + 1) * h / p.ydivs

	color := p.sc.TracePixel((x0+x1)/2, (y0+y1)/2, w, h, nil)
	p.img.SetPixelRange(x0, y0, x1-x0, y1-y0, color)

	p.curX++
	if p.curX >= p.xdivs {
		p.curX = 0
		p.curY++
	}
	if p.curY >= p.ydivs {
		p.curY = 0
		if p.xdivs >= w && p.ydivs >= h {
			p.done = true
		} else {
			p.xdivs = min(p.xdivs*2, w)
			p.ydivs = min(p.ydivs*2, h)
		}
	}

	return true
}
