package sampler

import (
	"math"
	"testing"
)

func TestSamplesStayInStratum(t *testing.T) {
	smp := NewSeeded(8, 8, 0xdecafbad)

	for i := uint32(0); i < 8; i++ {
		for j := uint32(0); j < 8; j++ {
			s := smp.Sample(i, j)
			xlo, xhi := float64(i)/8.0, float64(i+1)/8.0
			ylo, yhi := float64(j)/8.0, float64(j+1)/8.0
			if s.X < xlo || s.X >= xhi {
				t.Fatalf("cell (%d,%d): x sample %f outside [%f, %f)", i, j, s.X, xlo, xhi)
			}
			if s.Y < ylo || s.Y >= yhi {
				t.Fatalf("cell (%d,%d): y sample %f outside [%f, %f)", i, j, s.Y, ylo, yhi)
			}
		}
	}
}

func TestDeterministicForFixedSeed(t *testing.T) {
	smp1 := NewSeeded(16, 16, 12345)
	smp2 := NewSeeded(16, 16, 12345)

	for i := uint32(0); i < 16; i++ {
		for j := uint32(0); j < 16; j++ {
			s1 := smp1.Sample(i, j)
			s2 := smp2.Sample(i, j)
			if s1 != s2 {
				t.Fatalf("cell (%d,%d): seeded samplers disagree: %v vs %v", i, j, s1, s2)
			}
		}
	}
}

func TestJitterChangesPattern(t *testing.T) {
	smp := NewLinear(4, 4)

	before := make([]Sample, 0, 16)
	for i := uint32(0); i < 4; i++ {
		for j := uint32(0); j < 4; j++ {
			before = append(before, smp.Sample(i, j))
		}
	}

	smp.Jitter()

	same := 0
	idx := 0
	for i := uint32(0); i < 4; i++ {
		for j := uint32(0); j < 4; j++ {
			if smp.Sample(i, j) == before[idx] {
				same++
			}
			idx++
		}
	}

	if same == 16 {
		t.Fatal("expected jitter to change the sample pattern")
	}
}

func TestPermuteIsBijection(t *testing.T) {
	specs := []uint32{2, 7, 16, 100}

	for index, length := range specs {
		seen := make(map[uint32]bool, length)
		for i := uint32(0); i < length; i++ {
			v := permute(i, length, 0xa511e9b3)
			if v >= length {
				t.Fatalf("[spec %d] permute returned %d >= %d", index, v, length)
			}
			if seen[v] {
				t.Fatalf("[spec %d] permute repeated value %d", index, v)
			}
			seen[v] = true
		}
	}
}

func TestRandFloatRange(t *testing.T) {
	for i := uint32(0); i < 1000; i++ {
		v := randFloat(i, 0x711ad6a5)
		if v < 0 || v >= 1 {
			t.Fatalf("randFloat(%d) = %f outside [0, 1)", i, v)
		}
	}
}

func TestHemisphericalDistribution(t *testing.T) {
	smp := NewHemispherical(8, 8)

	for i := uint32(0); i < 8; i++ {
		for j := uint32(0); j < 8; j++ {
			s := smp.Sample(i, j)
			if s.Y < 0 || s.Y > math.Pi/2+1e-9 {
				t.Fatalf("cell (%d,%d): polar angle %f outside [0, pi/2]", i, j, s.Y)
			}
		}
	}
}

func TestSphericalDistribution(t *testing.T) {
	smp := NewSpherical(8, 8)

	for i := uint32(0); i < 8; i++ {
		for j := uint32(0); j < 8; j++ {
			s := smp.Sample(i, j)
			if s.X < 0 || s.X > 2*math.Pi {
				t.Fatalf("cell (%d,%d): azimuth %f outside [0, 2pi]", i, j, s.X)
			}
			if s.Y < -math.Pi/2-1e-9 || s.Y > math.Pi/2+1e-9 {
				t.Fatalf("cell (%d,%d): polar angle %f outside [-pi/2, pi/2]", i, j, s.Y)
			}
		}
	}
}
