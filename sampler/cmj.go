// Package sampler provides a 2-D correlated multi-jittered sampler
// after Kensler, "Correlated Multi-Jittered Sampling".
package sampler

import (
	"math"
	"math/rand"
)

// A 2-D sample in [0,1] x [0,1] before distribution warping.
type Sample struct {
	X float64
	Y float64
}

// A distribution function warps a canonical coordinate in [0,1]. It
// must be monotonically increasing on that range.
type DistrFunc func(float64) float64

// A 2-D correlated multi-jittered sampler over an xdivs by ydivs
// stratum grid. Sample generation is deterministic for a fixed
// permutation seed.
type CmjSampler2D struct {
	xdivs, ydivs uint32
	permutation  uint32

	distrX DistrFunc
	distrY DistrFunc
}

// Create a sampler with a linear distribution on both axes.
func NewLinear(xdivs, ydivs uint32) *CmjSampler2D {
	return NewWithDistr(xdivs, ydivs, nil, nil)
}

// Create a sampler with an arcsin distribution on the y coordinate and
// linear on x, for hemispherical polar angles.
func NewHemispherical(xdivs, ydivs uint32) *CmjSampler2D {
	return NewWithDistr(xdivs, ydivs, nil, math.Asin)
}

// Create a sampler distributing samples over the full sphere:
// x becomes an azimuth in [0, 2pi), y a polar angle in [-pi/2, pi/2].
func NewSpherical(xdivs, ydivs uint32) *CmjSampler2D {
	return NewWithDistr(xdivs, ydivs,
		func(x float64) float64 { return 2 * math.Pi * x },
		func(y float64) float64 { return math.Asin(2*y - 1) },
	)
}

// Create a sampler with arbitrary per-axis distributions. Nil leaves
// an axis linear.
func NewWithDistr(xdivs, ydivs uint32, distrX, distrY DistrFunc) *CmjSampler2D {
	return &CmjSampler2D{
		xdivs:       xdivs,
		ydivs:       ydivs,
		permutation: rand.Uint32(),
		distrX:      distrX,
		distrY:      distrY,
	}
}

// Create a sampler with an explicit permutation seed, for
// reproducible sequences.
func NewSeeded(xdivs, ydivs, seed uint32) *CmjSampler2D {
	return &CmjSampler2D{
		xdivs:       xdivs,
		ydivs:       ydivs,
		permutation: seed,
	}
}

// Re-randomize the sample pattern.
func (s *CmjSampler2D) Jitter() {
	s.permutation = rand.Uint32()
}

func (s *CmjSampler2D) XDivs() uint32 { return s.xdivs }
func (s *CmjSampler2D) YDivs() uint32 { return s.ydivs }

// The sample coordinates for stratum cell (i, j).
func (s *CmjSampler2D) Sample(i, j uint32) Sample {
	sIdx := i*s.ydivs + j
	sx := permute(i, s.xdivs, s.permutation*0xa511e9b3)
	sy := permute(j, s.ydivs, s.permutation*0x63d83595)
	jx := randFloat(sIdx, s.permutation*0xa399d265)
	jy := randFloat(sIdx, s.permutation*0x711ad6a5)

	out := Sample{
		X: (float64(i) + (float64(sy)+jx)/float64(s.ydivs)) / float64(s.xdivs),
		Y: (float64(j) + (float64(sx)+jy)/float64(s.xdivs)) / float64(s.ydivs),
	}

	if s.distrX != nil {
		out.X = s.distrX(out.X)
	}
	if s.distrY != nil {
		out.Y = s.distrY(out.Y)
	}

	return out
}

// Kensler's cycle-walking permutation kernel: a bijection of
// [0, length) parameterized by p.
func permute(i, length, p uint32) uint32 {
	w := length - 1
	w |= w >> 1
	w |= w >> 2
	w |= w >> 4
	w |= w >> 8
	w |= w >> 16
	for {
		i ^= p
		i *= 0xe170893d
		i ^= (i & w) >> 4
		i ^= p >> 8
		i *= 0x0929eb3f
		i ^= p >> 23
		i ^= (i & w) >> 1
		i *= 1 | p>>27
		i *= 0x6935fa69
		i ^= (i & w) >> 11
		i *= 0x74dcb303
		i ^= (i & w) >> 2
		i *= 0x9e501cc3
		i ^= (i & w) >> 2
		i *= 0xc860a3df
		i &= w
		i ^= i >> 5
		if i < length {
			break
		}
	}
	return (i + p) % length
}

// Kensler's hash-based uniform float in [0, 1).
func randFloat(i, p uint32) float64 {
	i ^= p
	i ^= i >> 17
	i ^= i >> 10
	i *= 0xb36534e5
	i ^= i >> 12
	i ^= i >> 21
	i *= 0x93fc4795
	i ^= 0xdf6e307f
	i ^= i >> 17
	i *= 1 | p>>18
	return float64(i) / (float64(math.MaxUint32) + 1.0)
}
