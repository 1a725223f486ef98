package types

import (
	"math"
	"testing"
)

func TestRayDirectionNormalized(t *testing.T) {
	specs := []struct {
		dir Vec3
	}{
		{Vec3{1, 0, 0}},
		{Vec3{10, 0, 0}},
		{Vec3{1, 2, 3}},
		{Vec3{-5, 0.2, 100}},
		{Vec3{0.001, -0.002, 0.0005}},
	}

	for index, s := range specs {
		r := NewRay(Vec3{1, 2, 3}, s.dir)
		l := r.Direction().Len()
		if l < 1.0-1e-5 || l > 1.0+1e-5 {
			t.Fatalf("[spec %d] expected unit direction; got length %f", index, l)
		}
	}
}

func TestRayPointAt(t *testing.T) {
	r := NewRay(Vec3{0, 0, 5}, Vec3{0, 0, -2})

	p := r.PointAt(4)
	expected := Vec3{0, 0, 1}
	if p.Sub(expected).Len() > 1e-5 {
		t.Fatalf("expected point %v at t=4; got %v", expected, p)
	}
}

func TestMatrixPointAndDirTransforms(t *testing.T) {
	m := Translate4(Vec3{1, 2, 3})

	p := m.ApplyToPoint(Vec3{1, 0, 0})
	if p.Sub(Vec3{2, 2, 3}).Len() > 1e-5 {
		t.Fatalf("expected translated point (2,2,3); got %v", p)
	}

	// Directions carry w=0 and ignore translation.
	d := m.ApplyToDir(Vec3{1, 0, 0})
	if d.Sub(Vec3{1, 0, 0}).Len() > 1e-5 {
		t.Fatalf("expected direction unchanged by translation; got %v", d)
	}
}

func TestMatrixInverse(t *testing.T) {
	m := Translate4(Vec3{4, -1, 2}).
		Mul4(Rotate4(DegToRad(33), Vec3{0, 1, 0})).
		Mul4(Scale4(Vec3{2, 2, 2}))

	p := Vec3{0.5, -2, 7}
	roundTrip := m.Inv().ApplyToPoint(m.ApplyToPoint(p))
	if roundTrip.Sub(p).Len() > 1e-4 {
		t.Fatalf("expected inverse round trip to recover %v; got %v", p, roundTrip)
	}
}

func TestDegRadConversions(t *testing.T) {
	if d := float64(DegToRad(180)); math.Abs(d-math.Pi) > 1e-6 {
		t.Fatalf("expected 180 deg = pi rad; got %f", d)
	}
	if d := float64(RadToDeg(math.Pi / 2)); math.Abs(d-90) > 1e-4 {
		t.Fatalf("expected pi/2 rad = 90 deg; got %f", d)
	}
}
