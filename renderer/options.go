package renderer

import "runtime"

type Options struct {
	// Frame dims.
	FrameW int
	FrameH int

	// Number of surface samples per area light per shaded point.
	ShadowSamples int

	// Number of jittered lens/antialias samples per pixel.
	LensSamples int

	// Maximum ray recursion depth.
	RayDepth int

	// Number of parallel render workers for the full-resolution pass.
	Workers int

	// Section grid used by the threaded renderer. Zero values fall
	// back to a grid matched to the worker count.
	SectionXDivs int
	SectionYDivs int
}

// Fill unset option fields with usable defaults.
func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.ShadowSamples <= 0 {
		o.ShadowSamples = 1
	}
	if o.LensSamples <= 0 {
		o.LensSamples = 1
	}
	if o.RayDepth <= 0 {
		o.RayDepth = 1
	}
	if o.SectionXDivs <= 0 {
		o.SectionXDivs = 4
	}
	if o.SectionYDivs <= 0 {
		o.SectionYDivs = 4 * o.Workers
	}
	return o
}
