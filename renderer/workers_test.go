package renderer

import (
	"bytes"
	"testing"

	"github.com/andrej6/bokeh/types"
)

func TestSectionPartition(t *testing.T) {
	specs := []struct {
		w, h   int
		xd, yd int
	}{
		{64, 64, 4, 4},
		{63, 41, 4, 8},
		{200, 200, 4, 16},
		{7, 5, 3, 3},
	}

	for index, s := range specs {
		sc := testScene()
		img := NewImage(s.w, s.h)
		j := NewRenderJob(sc, img, Options{
			FrameW: s.w, FrameH: s.h,
			SectionXDivs: s.xd, SectionYDivs: s.yd,
			Workers: 1,
		})

		covered := make([]int, s.w*s.h)
		total := s.xd * s.yd
		for idx := 0; idx < total; idx++ {
			x0, y0, x1, y1 := j.sectionBounds(idx)
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					covered[y*s.w+x]++
				}
			}
		}

		for pix, c := range covered {
			if c != 1 {
				t.Fatalf("[spec %d] pixel %d covered %d times", index, pix, c)
			}
		}
	}
}

func TestRenderJobCoversImage(t *testing.T) {
	sc := testScene()
	w, h := 32, 32
	img := NewImage(w, h)

	j := NewRenderJob(sc, img, Options{FrameW: w, FrameH: h, Workers: 4})
	if err := j.Render(); err != nil {
		t.Fatalf("Render failed: %s", err.Error())
	}

	// Every pixel was written: alpha is opaque everywhere.
	pix := img.Pix()
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0xff {
			t.Fatalf("pixel byte %d not written", i)
		}
	}
}

func TestRenderJobMatchesDirectRender(t *testing.T) {
	sc := testScene()
	w, h := 24, 24
	img := NewImage(w, h)

	j := NewRenderJob(sc, img, Options{FrameW: w, FrameH: h, Workers: 3})
	if err := j.Render(); err != nil {
		t.Fatalf("Render failed: %s", err.Error())
	}

	direct := NewImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			direct.SetPixel(x, y, sc.TracePixel(x, y, w, h, nil))
		}
	}

	if !bytes.Equal(img.Pix(), direct.Pix()) {
		t.Fatal("threaded render differs from the direct render")
	}
}

func TestRenderJobStop(t *testing.T) {
	sc := testScene()
	img := NewImage(64, 64)

	j := NewRenderJob(sc, img, Options{FrameW: 64, FrameH: 64, Workers: 2})
	j.Stop()
	j.Start()
	if err := j.Wait(); err != ErrStopped {
		t.Fatalf("expected ErrStopped; got %v", err)
	}
}

func TestRenderJobValidation(t *testing.T) {
	img := NewImage(8, 8)

	j := NewRenderJob(nil, img, Options{FrameW: 8, FrameH: 8})
	if err := j.Render(); err != ErrSceneNotDefined {
		t.Fatalf("expected ErrSceneNotDefined; got %v", err)
	}

	sc := testScene()
	sc.SetCamera(nil)
	j = NewRenderJob(sc, img, Options{FrameW: 8, FrameH: 8})
	if err := j.Render(); err != ErrCameraNotDefined {
		t.Fatalf("expected ErrCameraNotDefined; got %v", err)
	}
}

func TestWorkerStatsAccumulate(t *testing.T) {
	sc := testScene()
	w, h := 16, 16
	img := NewImage(w, h)

	j := NewRenderJob(sc, img, Options{
		FrameW: w, FrameH: h, Workers: 2,
		SectionXDivs: 2, SectionYDivs: 4,
	})
	if err := j.Render(); err != nil {
		t.Fatalf("Render failed: %s", err.Error())
	}

	stats := j.Stats()
	if len(stats.Workers) != 2 {
		t.Fatalf("expected stats for 2 workers; got %d", len(stats.Workers))
	}

	totalPixels := 0
	totalSections := 0
	for _, ws := range stats.Workers {
		totalPixels += ws.Pixels
		totalSections += ws.Sections
	}
	if totalPixels != w*h {
		t.Fatalf("expected %d pixels rendered; got %d", w*h, totalPixels)
	}
	if totalSections != 2*4 {
		t.Fatalf("expected %d sections; got %d", 2*4, totalSections)
	}
}

func TestHeadlessRenderer(t *testing.T) {
	sc := testScene()

	r, err := NewHeadless(sc, Options{FrameW: 16, FrameH: 16, Workers: 2})
	if err != nil {
		t.Fatalf("NewHeadless failed: %s", err.Error())
	}
	if err = r.Render(); err != nil {
		t.Fatalf("Render failed: %s", err.Error())
	}

	img := r.Image()
	if img.Width() != 16 || img.Height() != 16 {
		t.Fatalf("unexpected image dims %dx%d", img.Width(), img.Height())
	}

	// The ambient quad occupies the image center.
	center := img.Pixel(8, 8)
	if center.Sub(types.XYZ(0.8, 0.4, 0.2)).Len() > 0.02 {
		t.Fatalf("unexpected center color %v", center)
	}
}
