package scene

import (
	"math"
	"testing"

	"github.com/andrej6/bokeh/types"
)

func TestOrthographicSphereScenario(t *testing.T) {
	resetRegistries()

	cam := NewOrthographicCamera()
	cam.SetPosition(types.XYZ(0, 0, 5))
	cam.SetPointOfInterest(types.Vec3{})
	cam.SetUp(types.XYZ(0, 1, 0))
	cam.SetSize(4)
	cam.SetAspect(1)

	// 1x1 pixel image: the center sample goes through (0.5, 0.5).
	ray := cam.CastRay(0.5, 0.5, nil)

	h := NewRayHitFromRay(ray)
	if !h.IntersectSphere(types.Vec3{}, 1) {
		t.Fatal("expected center ray to hit the unit sphere")
	}
	if math.Abs(float64(h.T()-4)) > 1e-4 {
		t.Fatalf("expected t=4; got %f", h.T())
	}
	if p := h.IntersectionPoint(); p.Sub(types.XYZ(0, 0, 1)).Len() > 1e-4 {
		t.Fatalf("expected first intersection (0,0,1); got %v", p)
	}
	if n := h.Norm(); n.Sub(types.XYZ(0, 0, 1)).Len() > 1e-4 {
		t.Fatalf("expected normal (0,0,1); got %v", n)
	}
}

func TestOrthographicWindow(t *testing.T) {
	cam := NewOrthographicCamera()
	cam.SetPosition(types.XYZ(0, 0, 5))
	cam.SetPointOfInterest(types.Vec3{})
	cam.SetUp(types.XYZ(0, 1, 0))
	cam.SetSize(4)
	cam.SetAspect(2)

	// Rays are parallel to the view direction and offset in the image
	// plane; the larger dimension spans the full size.
	left := cam.CastRay(0, 0.5, nil)
	right := cam.CastRay(1, 0.5, nil)

	span := right.Origin().Sub(left.Origin()).Len()
	if math.Abs(float64(span-4)) > 1e-4 {
		t.Fatalf("expected horizontal span 4; got %f", span)
	}
	if left.Direction().Sub(right.Direction()).Len() > 1e-6 {
		t.Fatal("expected parallel orthographic rays")
	}
}

func TestPerspectiveCenterRay(t *testing.T) {
	cam := NewPerspectiveCamera()
	cam.SetPosition(types.XYZ(1, 2, 5))
	cam.SetPointOfInterest(types.XYZ(0, 0, 0))
	cam.SetUp(types.XYZ(0, 1, 0))
	cam.SetAngle(45)
	cam.SetAspect(1)

	ray := cam.CastRay(0.5, 0.5, nil)

	want := types.XYZ(0, 0, 0).Sub(cam.Position()).Normalize()
	if ray.Direction().Sub(want).Len() > 1e-5 {
		t.Fatalf("expected center ray towards the POI; got %v", ray.Direction())
	}
	if ray.Origin().Sub(cam.Position()).Len() > 1e-6 {
		t.Fatal("expected perspective rays to originate at the eye")
	}
}

func TestPerspectiveWindowHeight(t *testing.T) {
	cam := NewPerspectiveCamera()
	cam.SetPosition(types.XYZ(0, 0, 5))
	cam.SetPointOfInterest(types.Vec3{})
	cam.SetUp(types.XYZ(0, 1, 0))
	cam.SetAngle(90)
	cam.SetAspect(1)

	// With a 90 degree vertical FOV the top-center ray leaves at 45
	// degrees above the view direction.
	top := cam.CastRay(0.5, 1.0, nil)
	angle := math.Acos(float64(top.Direction().Dot(types.XYZ(0, 0, -1))))
	if math.Abs(angle-math.Pi/4) > 1e-4 {
		t.Fatalf("expected 45 degree elevation; got %f rad", angle)
	}
}

func TestOrbitKeepsDistance(t *testing.T) {
	cam := NewPerspectiveCamera()
	cam.SetPosition(types.XYZ(0, 0, 5))
	cam.SetPointOfInterest(types.Vec3{})
	cam.SetUp(types.XYZ(0, 1, 0))

	before := cam.Position().Sub(cam.PointOfInterest()).Len()
	cam.Rotate(30, 10)
	after := cam.Position().Sub(cam.PointOfInterest()).Len()

	if math.Abs(float64(before-after)) > 1e-3 {
		t.Fatalf("expected orbit to preserve distance to POI; %f -> %f", before, after)
	}
}

func TestOrbitVerticalClamp(t *testing.T) {
	cam := NewPerspectiveCamera()
	cam.SetPosition(types.XYZ(0, 0, 5))
	cam.SetPointOfInterest(types.Vec3{})
	cam.SetUp(types.XYZ(0, 1, 0))

	// Repeatedly rotate upward; the view direction must stay at least
	// 5 degrees away from up.
	for i := 0; i < 100; i++ {
		cam.Rotate(0, 50)
	}

	dir := cam.PointOfInterest().Sub(cam.Position()).Normalize()
	angle := types.RadToDeg(float32(math.Acos(float64(cam.Up().Dot(dir)))))
	if angle < 5.0-0.5 || angle > 175.0+0.5 {
		t.Fatalf("expected clamped vertical angle in [5, 175]; got %f", angle)
	}
}

func TestTruckMovesPOI(t *testing.T) {
	cam := NewPerspectiveCamera()
	cam.SetPosition(types.XYZ(0, 0, 5))
	cam.SetPointOfInterest(types.Vec3{})
	cam.SetUp(types.XYZ(0, 1, 0))

	cam.Truck(100, 0)

	if cam.PointOfInterest().Len() < 1e-6 {
		t.Fatal("expected truck to translate the POI")
	}
	dir := cam.PointOfInterest().Sub(cam.Position()).Normalize()
	if dir.Sub(types.XYZ(0, 0, -1)).Len() > 1e-5 {
		t.Fatal("expected truck to preserve the view direction")
	}
}

func TestDollyScalesWithDistance(t *testing.T) {
	cam := NewPerspectiveCamera()
	cam.SetPosition(types.XYZ(0, 0, 10))
	cam.SetPointOfInterest(types.Vec3{})
	cam.SetUp(types.XYZ(0, 1, 0))

	cam.Dolly(100)
	d := cam.Position().Sub(cam.PointOfInterest()).Len()
	if d >= 10 {
		t.Fatalf("expected positive dolly to move towards the POI; distance %f", d)
	}
}
