package renderer

import "github.com/andrej6/bokeh/scene"

type Renderer interface {
	// Render frame(s) until done or closed.
	Render() error

	// Shutdown the renderer.
	Close()

	// Get render statistics.
	Stats() FrameStats
}

// A windowless renderer: one threaded full-resolution pass into an
// image buffer.
type HeadlessRenderer struct {
	job *RenderJob
	img *Image
}

func NewHeadless(sc *scene.Scene, opts Options) (*HeadlessRenderer, error) {
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if sc.Camera() == nil {
		return nil, ErrCameraNotDefined
	}

	opts = opts.withDefaults()
	img := NewImage(opts.FrameW, opts.FrameH)
	sc.Camera().SetAspect(float32(opts.FrameW) / float32(opts.FrameH))
	sc.SetShadowSamples(opts.ShadowSamples)
	sc.SetLensSamples(opts.LensSamples)
	sc.SetRayBounces(opts.RayDepth)

	return &HeadlessRenderer{
		job: NewRenderJob(sc, img, opts),
		img: img,
	}, nil
}

func (r *HeadlessRenderer) Render() error {
	return r.job.Render()
}

func (r *HeadlessRenderer) Close() {
	r.job.Stop()
}

func (r *HeadlessRenderer) Stats() FrameStats {
	return r.job.Stats()
}

// The rendered image buffer.
func (r *HeadlessRenderer) Image() *Image {
	return r.img
}
