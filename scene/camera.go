package scene

import (
	"math"
	"math/rand"

	"github.com/andrej6/bokeh/types"
)

const defaultRotateSpeed float32 = 0.2

// A viewpoint in the scene. Cameras share orbit-style motion controls
// around a point of interest and cast primary rays through normalized
// screen coordinates.
type Camera interface {
	SetPosition(pos types.Vec3)
	SetPointOfInterest(poi types.Vec3)
	SetUp(up types.Vec3)

	Position() types.Vec3
	PointOfInterest() types.Vec3
	Up() types.Vec3

	// Move the camera forward (positive) or backward (negative) along
	// its view direction, proportionally to the distance from the
	// point of interest.
	Dolly(dist float32)

	// Move the camera and its point of interest perpendicular to the
	// view direction.
	Truck(dx, dy float32)

	// Orbit the camera around the point of interest.
	Rotate(rx, ry float32)

	// Decrease or increase the camera's field of view.
	Zoom(factor float32)

	// Set the canvas aspect ratio (width over height) used by the
	// projection and by CastRay.
	SetAspect(aspect float32)

	// Compute the view and projection matrices for this camera.
	ViewProjection() (view, proj types.Mat4)

	// Generate a ray through the given coordinates, both normalized to
	// [0, 1] with (0, 0) at the bottom-left screen corner. Cameras with
	// a stochastic element (the lens camera) draw randomness from rng.
	CastRay(x, y float64, rng *rand.Rand) types.Ray
}

// Shared camera state and orbit motion.
type cameraBase struct {
	position        types.Vec3
	pointOfInterest types.Vec3
	up              types.Vec3
	rotateSpeed     float32
	aspect          float32
}

func newCameraBase(pos, poi, up types.Vec3) cameraBase {
	return cameraBase{
		position:        pos,
		pointOfInterest: poi,
		up:              up.Normalize(),
		rotateSpeed:     defaultRotateSpeed,
		aspect:          1.0,
	}
}

func (c *cameraBase) SetPosition(pos types.Vec3)        { c.position = pos }
func (c *cameraBase) SetPointOfInterest(poi types.Vec3) { c.pointOfInterest = poi }
func (c *cameraBase) SetUp(up types.Vec3)               { c.up = up.Normalize() }
func (c *cameraBase) SetAspect(aspect float32)          { c.aspect = aspect }
func (c *cameraBase) SetRotateSpeed(rs float32)         { c.rotateSpeed = rs }

func (c *cameraBase) Position() types.Vec3        { return c.position }
func (c *cameraBase) PointOfInterest() types.Vec3 { return c.pointOfInterest }
func (c *cameraBase) Up() types.Vec3              { return c.up }
func (c *cameraBase) RotateSpeed() float32        { return c.rotateSpeed }

// The unit-length view direction.
func (c *cameraBase) direction() types.Vec3 {
	return c.pointOfInterest.Sub(c.position).Normalize()
}

// The unit-length horizontal screen axis.
func (c *cameraBase) horizontal() types.Vec3 {
	return c.direction().Cross(c.up).Normalize()
}

// The unit-length vertical screen axis.
func (c *cameraBase) screenUp() types.Vec3 {
	return c.horizontal().Cross(c.direction()).Normalize()
}

func (c *cameraBase) Dolly(dist float32) {
	d := c.position.Sub(c.pointOfInterest).Len()
	c.position = c.position.Add(c.direction().Mul(0.004 * d * dist))
}

func (c *cameraBase) Truck(dx, dy float32) {
	d := c.position.Sub(c.pointOfInterest).Len()
	translate := c.horizontal().Mul(dx).Add(c.screenUp().Mul(dy)).Mul(d * 0.0007)
	c.position = c.position.Add(translate)
	c.pointOfInterest = c.pointOfInterest.Add(translate)
}

// Orbit around the point of interest. Vertical rotation is clamped so
// the camera-to-POI vector stays between 5 and 175 degrees from up.
func (c *cameraBase) Rotate(rx, ry float32) {
	rx *= c.rotateSpeed
	ry *= c.rotateSpeed

	angle := types.RadToDeg(float32(math.Acos(float64(c.up.Dot(c.direction())))))
	if angle-ry > 175.0 && ry < 0.0 {
		if angle > 175.0 {
			ry = 0.0
		} else {
			ry = 175.0 - angle
		}
	} else if angle-ry < 5.0 && ry > 0.0 {
		if angle < 5.0 {
			ry = 0.0
		} else {
			ry = angle - 5.0
		}
	}

	m := types.Translate4(c.pointOfInterest).
		Mul4(types.Rotate4(types.DegToRad(rx), c.up)).
		Mul4(types.Rotate4(types.DegToRad(ry), c.horizontal())).
		Mul4(types.Translate4(c.pointOfInterest.Neg()))
	c.position = m.ApplyToPoint(c.position)
}

// A camera with an orthographic projection: an axis-aligned box whose
// larger screen dimension spans size units, the other following the
// canvas aspect.
type OrthographicCamera struct {
	cameraBase
	size float32
}

func NewOrthographicCamera() *OrthographicCamera {
	return &OrthographicCamera{
		cameraBase: newCameraBase(types.XYZ(0, 0, 1), types.Vec3{}, types.XYZ(0, 1, 0)),
		size:       100,
	}
}

func (c *OrthographicCamera) SetSize(size float32) { c.size = size }

func (c *OrthographicCamera) Zoom(factor float32) {
	c.size *= float32(math.Pow(1.003, float64(factor)))
}

// Half extents of the projection window.
func (c *OrthographicCamera) window() (w, h float32) {
	if c.aspect >= 1.0 {
		w = c.size / 2.0
		h = w / c.aspect
	} else {
		h = c.size / 2.0
		w = h * c.aspect
	}
	return w, h
}

func (c *OrthographicCamera) ViewProjection() (view, proj types.Mat4) {
	w, h := c.window()
	proj = types.Ortho4(-w, w, -h, h, 0.1, 100.0)
	view = types.LookAtV(c.position, c.pointOfInterest, c.screenUp())
	return view, proj
}

func (c *OrthographicCamera) CastRay(x, y float64, _ *rand.Rand) types.Ray {
	w, h := c.window()
	origin := c.position.
		Add(c.horizontal().Mul(2 * w * (float32(x) - 0.5))).
		Add(c.screenUp().Mul(2 * h * (float32(y) - 0.5)))
	return types.NewRay(origin, c.direction())
}

// A pinhole camera with a perspective projection.
type PerspectiveCamera struct {
	cameraBase
	angle float32 // vertical field of view, degrees
}

func NewPerspectiveCamera() *PerspectiveCamera {
	return &PerspectiveCamera{
		cameraBase: newCameraBase(types.XYZ(0, 0, 1), types.Vec3{}, types.XYZ(0, 1, 0)),
		angle:      45,
	}
}

func (c *PerspectiveCamera) SetAngle(fov float32) { c.angle = fov }

func (c *PerspectiveCamera) Zoom(factor float32) {
	c.angle *= float32(math.Pow(1.002, float64(factor)))
	if c.angle < 5 {
		c.angle = 5
	} else if c.angle > 175 {
		c.angle = 175
	}
}

func (c *PerspectiveCamera) ViewProjection() (view, proj types.Mat4) {
	proj = types.Perspective4(c.angle, c.aspect, 0.1, 1000.0)
	view = types.LookAtV(c.position, c.pointOfInterest, c.screenUp())
	return view, proj
}

// Shoot a ray from the eye through a sample point on a screen window
// of height 2*tan(angle/2) placed one unit in front of the camera.
func (c *PerspectiveCamera) CastRay(x, y float64, _ *rand.Rand) types.Ray {
	h := 2 * float32(math.Tan(float64(types.DegToRad(c.angle))/2))
	w := c.aspect * h

	point := c.position.
		Add(c.direction()).
		Add(c.horizontal().Mul(w * (float32(x) - 0.5))).
		Add(c.screenUp().Mul(h * (float32(y) - 0.5)))
	return types.NewRay(c.position, point.Sub(c.position))
}

// A camera backed by a thick-lens assembly. The rasterized preview
// projection matches the pinhole camera; primary rays are generated by
// sampling the assembly's exit pupil and refracting through its
// surfaces.
type LensCamera struct {
	PerspectiveCamera
	assembly *LensAssembly
}

func NewLensCamera(assembly *LensAssembly) *LensCamera {
	return &LensCamera{
		PerspectiveCamera: *NewPerspectiveCamera(),
		assembly:          assembly,
	}
}

func (c *LensCamera) Assembly() *LensAssembly { return c.assembly }

func (c *LensCamera) CastRay(x, y float64, rng *rand.Rand) types.Ray {
	// Map screen coordinates to the film plane. The lens inverts the
	// image, so film coordinates are mirrored to keep the rendered
	// image upright.
	halfH := c.assembly.Dist() * float32(math.Tan(float64(types.DegToRad(c.angle))/2))
	halfW := c.aspect * halfH
	fx := 2 * halfW * (0.5 - float32(x))
	fy := 2 * halfH * (0.5 - float32(y))

	lensRay := c.assembly.GenerateRay(fx, fy, rng)

	// Lens space to world space: +x is the horizontal screen axis, +y
	// the vertical, and rays leave the assembly travelling along -z.
	lo := lensRay.Origin()
	ld := lensRay.Direction()

	origin := c.position.
		Add(c.horizontal().Mul(lo[0])).
		Add(c.screenUp().Mul(lo[1]))
	dir := c.horizontal().Mul(ld[0]).
		Add(c.screenUp().Mul(ld[1])).
		Add(c.direction().Mul(-ld[2]))

	return types.NewRay(origin, dir)
}
