package renderer

import "time"

// Per-worker statistics for one full-resolution render.
type WorkerStats struct {
	ID       int
	Sections int
	Pixels   int

	// Time the worker spent rendering (in wall clock).
	RenderTime time.Duration
}

// Frame statistics for one full-resolution render.
type FrameStats struct {
	Workers    []WorkerStats
	RenderTime time.Duration
}
