package renderer

import (
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andrej6/bokeh/sampler"
	"github.com/andrej6/bokeh/scene"
	"github.com/andrej6/bokeh/types"
)

// Base seed for the deterministic per-worker RNG streams.
const workerSeedBase int64 = 0x50bae

// A threaded full-resolution render. The image is partitioned into a
// rectangular section grid; workers compete for the next section
// under a mutex-protected counter and write disjoint pixel ranges. A
// stop flag observed at pixel granularity cancels the run.
type RenderJob struct {
	sc   *scene.Scene
	img  *Image
	opts Options

	mu   sync.Mutex
	next int

	stop atomic.Bool
	wg   sync.WaitGroup

	startTime time.Time
	stats     FrameStats
}

func NewRenderJob(sc *scene.Scene, img *Image, opts Options) *RenderJob {
	return &RenderJob{
		sc:   sc,
		img:  img,
		opts: opts.withDefaults(),
	}
}

// Launch the render workers.
func (j *RenderJob) Start() {
	j.stats = FrameStats{Workers: make([]WorkerStats, j.opts.Workers)}
	j.startTime = time.Now()

	for id := 0; id < j.opts.Workers; id++ {
		j.wg.Add(1)
		go j.worker(id)
	}
}

// Request cancellation. Workers halt at the next pixel.
func (j *RenderJob) Stop() {
	j.stop.Store(true)
}

// Wait for all workers to finish. Returns ErrStopped if the job was
// cancelled before completing.
func (j *RenderJob) Wait() error {
	j.wg.Wait()
	j.stats.RenderTime = time.Since(j.startTime)
	if j.stop.Load() {
		return ErrStopped
	}
	return nil
}

// Start the workers and block until the frame is done.
func (j *RenderJob) Render() error {
	if j.sc == nil {
		return ErrSceneNotDefined
	}
	if j.sc.Camera() == nil {
		return ErrCameraNotDefined
	}

	j.Start()
	return j.Wait()
}

// Render statistics for the last frame.
func (j *RenderJob) Stats() FrameStats {
	return j.stats
}

// Claim the next unrendered section index, or false when none remain.
func (j *RenderJob) claimSection() (int, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	total := j.opts.SectionXDivs * j.opts.SectionYDivs
	if j.next >= total {
		return 0, false
	}
	idx := j.next
	j.next++
	return idx, true
}

// The pixel rectangle [x0, x1) x [y0, y1) of a section index.
func (j *RenderJob) sectionBounds(idx int) (x0, y0, x1, y1 int) {
	w, h := j.img.Width(), j.img.Height()
	sx := idx % j.opts.SectionXDivs
	sy := idx / j.opts.SectionXDivs
	x0 = sx * w / j.opts.SectionXDivs
	x1 = (sx + 1) * w / j.opts.SectionXDivs
	y0 = sy * h / j.opts.SectionYDivs
	y1 = (sy + 1) * h / j.opts.SectionYDivs
	return x0, y0, x1, y1
}

func (j *RenderJob) worker(id int) {
	defer j.wg.Done()
	start := time.Now()
	stats := &j.stats.Workers[id]
	stats.ID = id

	rng := rand.New(rand.NewSource(workerSeedBase + int64(id)*7919))

	// Stratify sub-pixel samples with a CMJ pattern when the sample
	// count forms a square grid; otherwise fall back to uniform
	// jitter.
	var smp *sampler.CmjSampler2D
	gridN := int(math.Round(math.Sqrt(float64(j.opts.LensSamples))))
	if j.opts.LensSamples > 1 && gridN*gridN == j.opts.LensSamples {
		smp = sampler.NewSeeded(uint32(gridN), uint32(gridN), uint32(workerSeedBase)+uint32(id))
	}

	w, h := j.img.Width(), j.img.Height()

	for {
		idx, ok := j.claimSection()
		if !ok {
			break
		}

		x0, y0, x1, y1 := j.sectionBounds(idx)

		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				if j.stop.Load() {
					stats.RenderTime = time.Since(start)
					return
				}
				j.img.SetPixel(x, y, j.tracePixel(x, y, w, h, smp, rng))
				stats.Pixels++
			}
		}
		stats.Sections++
	}

	stats.RenderTime = time.Since(start)
}

func (j *RenderJob) tracePixel(x, y, w, h int, smp *sampler.CmjSampler2D, rng *rand.Rand) types.Vec3 {
	if smp == nil {
		return j.sc.TracePixel(x, y, w, h, rng)
	}

	var sum types.Vec3
	n := smp.XDivs()
	for i := uint32(0); i < n; i++ {
		for k := uint32(0); k < n; k++ {
			s := smp.Sample(i, k)
			sum = sum.Add(j.sc.TraceSample(x, y, w, h, s.X-0.5, s.Y-0.5, rng))
		}
	}
	return sum.Mul(1.0 / float32(n*n))
}
