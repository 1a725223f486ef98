package scene

import (
	"math"
	"math/rand"

	"github.com/andrej6/bokeh/types"
)

// A spherical cap centered on the optical z axis. The vertex sits at
// z = vertex; the radius of curvature is signed (positive centers lie
// towards the film) and zero-ish magnitudes mean a planar surface.
// index is the refractive index of the glass on the scene side of the
// surface; aperture is the surface's aperture radius.
type LensSurface struct {
	vertex   float32
	radius   float32
	index    float32
	aperture float32
}

func NewLensSurface(vertex, radius, index, aperture float32) LensSurface {
	return LensSurface{vertex: vertex, radius: radius, index: index, aperture: aperture}
}

func (s LensSurface) VertexPosition() float32    { return s.vertex }
func (s LensSurface) RadiusOfCurvature() float32 { return s.radius }
func (s LensSurface) IndexOfRefraction() float32 { return s.index }
func (s LensSurface) ApertureRadius() float32    { return s.aperture }

// The z position of the sphere center.
func (s LensSurface) Center() float32 { return s.vertex + s.radius }

func (s LensSurface) Planar() bool {
	return float32(math.Abs(float64(s.radius))) < types.Epsilon
}

// 1/radius, or zero for a planar surface.
func (s LensSurface) Curvature() float32 {
	if s.Planar() {
		return 0
	}
	return 1.0 / s.radius
}

// Aggregate cardinal quantities of a reduced (sub)system. All z
// values are absolute axis positions; the film side is +z and the
// scene side is -z.
type cardinalPoints struct {
	power      float32
	zFocalScene float32 // front (scene-side) focal point
	zFocalFilm  float32 // rear (film-side) focal point
	zPScene     float32 // scene-side principal plane
	zPFilm      float32 // film-side principal plane
	valid       bool
}

// A compound lens: an ordered list of spherical surfaces along the
// optical axis, sensor-side first at z = 0 with z decreasing towards
// the scene, plus the film-to-rear-vertex distance. The aperture stop
// index, cardinal points and exit pupil are computed once up front.
type LensAssembly struct {
	surfaces []LensSurface
	dist     float32

	stop     int
	pupilPos float32
	pupilRad float32
	cardinal cardinalPoints

	// Marginal ray state at the stop, rescaled to graze its edge.
	marginalY float32
	marginalU float32
}

func NewLensAssembly(dist float32, surfaces []LensSurface) *LensAssembly {
	la := &LensAssembly{
		surfaces: surfaces,
		dist:     dist,
	}
	la.analyze()
	return la
}

func (la *LensAssembly) Dist() float32           { return la.dist }
func (la *LensAssembly) NumSurfaces() int        { return len(la.surfaces) }
func (la *LensAssembly) Surface(i int) LensSurface {
	return la.surfaces[i]
}

// The aperture stop surface index.
func (la *LensAssembly) StopIndex() int { return la.stop }

// The exit pupil's z position and radius.
func (la *LensAssembly) ExitPupil() (pos, radius float32) {
	return la.pupilPos, la.pupilRad
}

// The system power of the reduced full assembly. Zero when the
// assembly has no power (empty or all planar).
func (la *LensAssembly) Power() float32 { return la.cardinal.power }

// The film-side and scene-side principal plane z positions. The
// second return value is false when the system has no power.
func (la *LensAssembly) PrincipalPlanes() (zFilm, zScene float32, ok bool) {
	return la.cardinal.zPFilm, la.cardinal.zPScene, la.cardinal.valid
}

// The film-side and scene-side focal point z positions. The second
// return value is false when the system has no power.
func (la *LensAssembly) FocalPoints() (zFilm, zScene float32, ok bool) {
	return la.cardinal.zFocalFilm, la.cardinal.zFocalScene, la.cardinal.valid
}

// The refractive index of the gap on the film side of surface i. Gap 0
// (between film and the rear surface) is air.
func (la *LensAssembly) gapIndex(i int) float32 {
	if i == 0 {
		return 1.0
	}
	return la.surfaces[i-1].index
}

// The optical power of surface i: (n' - n) * curvature.
func (la *LensAssembly) opticalPower(i int) float32 {
	return (la.surfaces[i].index - la.gapIndex(i)) * la.surfaces[i].Curvature()
}

// Refract a paraxial ray at surface i travelling film-to-scene:
// u' = (n*u - y*phi) / n'.
func (la *LensAssembly) paraxialRefract(i int, y, u float32) float32 {
	return (la.gapIndex(i)*u - y*la.opticalPower(i)) / la.surfaces[i].index
}

// Refract a paraxial ray at surface i travelling scene-to-film:
// u' = (n'*u + y*phi) / n.
func (la *LensAssembly) paraxialRefractRev(i int, y, u float32) float32 {
	return (la.surfaces[i].index*u + y*la.opticalPower(i)) / la.gapIndex(i)
}

// Propagate a paraxial ray height from surface i to surface i+1.
func (la *LensAssembly) paraxialTransfer(i int, y, u float32) float32 {
	return y + u*(la.surfaces[i+1].vertex-la.surfaces[i].vertex)
}

// Propagate a paraxial ray height from surface i+1 back to surface i.
func (la *LensAssembly) paraxialTransferRev(i int, y, u float32) float32 {
	return y + u*(la.surfaces[i].vertex-la.surfaces[i+1].vertex)
}

// Reduce the surfaces in [from, to] to their cardinal points by
// tracing a unit-height parallel ray through the range in both
// directions.
func (la *LensAssembly) reduce(from, to int) cardinalPoints {
	var cp cardinalPoints
	if from > to || from < 0 || to >= len(la.surfaces) {
		return cp
	}

	// Film-to-scene trace.
	y, u := float32(1.0), float32(0.0)
	for i := from; i <= to; i++ {
		u = la.paraxialRefract(i, y, u)
		if i < to {
			y = la.paraxialTransfer(i, y, u)
		}
	}
	if float32(math.Abs(float64(u))) < types.Epsilon {
		return cp
	}
	vScene := la.surfaces[to].vertex
	cp.zFocalScene = vScene - y/u
	cp.zPScene = vScene + (1-y)/u

	// Scene-to-film trace.
	y, u = 1.0, 0.0
	for i := to; i >= from; i-- {
		u = la.paraxialRefractRev(i, y, u)
		if i > from {
			y = la.paraxialTransferRev(i-1, y, u)
		}
	}
	if float32(math.Abs(float64(u))) < types.Epsilon {
		return cp
	}
	vFilm := la.surfaces[from].vertex
	cp.zFocalFilm = vFilm - y/u
	cp.zPFilm = vFilm + (1-y)/u

	cp.power = cp.zPScene - cp.zFocalScene
	if cp.power != 0 {
		cp.power = 1.0 / cp.power
	}
	cp.valid = true
	return cp
}

// Locate the aperture stop and exit pupil, and reduce the full system
// to its cardinal points.
func (la *LensAssembly) analyze() {
	la.cardinal = la.reduce(0, len(la.surfaces)-1)

	switch len(la.surfaces) {
	case 0:
		la.stop = 0
		la.pupilPos = 0
		la.pupilRad = 0
		return
	case 1:
		la.stop = 0
		la.pupilPos = la.surfaces[0].vertex
		la.pupilRad = la.surfaces[0].aperture
		return
	}

	la.findStop()
	la.findPupil()
}

// Shoot a paraxial ray in from the scene side; the stop is the surface
// most constraining relative to its aperture, i.e. with the smallest
// |aperture/height| ratio. The marginal ray is the same ray rescaled
// to graze the stop edge.
func (la *LensAssembly) findStop() {
	maxRatio := float32(0.0)
	la.stop = len(la.surfaces) - 1

	y := float32(0.1)
	u := float32(0.1)

	for i := len(la.surfaces) - 1; i >= 0; i-- {
		u = la.paraxialRefractRev(i, y, u)

		ratio := float32(math.Abs(float64(y / la.surfaces[i].aperture)))
		if ratio > maxRatio {
			maxRatio = ratio
			la.stop = i
			la.marginalY = y / ratio
			la.marginalU = u / ratio
		}

		if i > 0 {
			y = la.paraxialTransferRev(i-1, y, u)
		}
	}
}

// Image the stop through the subsystem between it and the film: march
// an axial ray from the stop center and the marginal ray towards the
// film; the axis crossing of the axial ray behind the rear vertex is
// the pupil position, the marginal height there its radius.
func (la *LensAssembly) findPupil() {
	if la.stop == 0 {
		la.pupilPos = la.surfaces[0].vertex
		la.pupilRad = la.surfaces[0].aperture
		return
	}

	y := float32(0.0)
	u := float32(0.1)
	my := la.marginalY
	mu := la.marginalU

	for i := la.stop - 1; i >= 0; i-- {
		y = la.paraxialTransferRev(i, y, u)
		u = la.paraxialRefractRev(i, y, u)

		my = la.paraxialTransferRev(i, my, mu)
		mu = la.paraxialRefractRev(i, my, mu)
	}

	if float32(math.Abs(float64(u))) < types.Epsilon {
		la.pupilPos = la.surfaces[la.stop].vertex
		la.pupilRad = la.surfaces[la.stop].aperture
		return
	}

	dz := -y / u
	la.pupilPos = la.surfaces[0].vertex + dz
	la.pupilRad = float32(math.Abs(float64(mu*dz + my)))
}

// The z position of the film plane: the film-side principal plane
// offset by dist, falling back to the rear vertex when the system has
// no power (all planar surfaces).
func (la *LensAssembly) filmZ() float32 {
	if la.cardinal.valid {
		return la.cardinal.zPFilm + la.dist
	}
	if len(la.surfaces) > 0 {
		return la.surfaces[0].vertex + la.dist
	}
	return la.dist
}

// Retry cap for aperture samples rejected by the surface trace.
const maxLensTries = 1024

// Generate a lens-space ray for a film point, in image-plane
// coordinates. A point on the exit pupil disk is sampled uniformly and
// the film-to-pupil ray is refracted through the surface list in
// reverse physical order (sensor side first). Samples that miss a
// surface or undergo total internal reflection are rejected and
// redrawn for the same (x, y). The returned ray is re-anchored to the
// film plane z = 0.
func (la *LensAssembly) GenerateRay(x, y float32, rng *rand.Rand) types.Ray {
	filmZ := la.filmZ()
	origin := types.XYZ(x, y, filmZ)

	for try := 0; try < maxLensTries; try++ {
		theta := 2 * math.Pi * rng.Float64()
		r := float32(math.Sqrt(rng.Float64())) * la.pupilRad
		pupilPt := types.XYZ(
			r*float32(math.Cos(theta)),
			r*float32(math.Sin(theta)),
			la.pupilPos,
		)

		ray, ok := la.traceThrough(origin, pupilPt)
		if !ok {
			continue
		}

		ro := ray.Origin()
		return types.NewRay(types.XYZ(ro[0], ro[1], 0), ray.Direction())
	}

	// Pathological assemblies: fall back to the unrefracted
	// film-to-pupil-center ray.
	return types.NewRay(
		types.XYZ(x, y, 0),
		types.XYZ(0, 0, la.pupilPos).Sub(origin),
	)
}

// Refract the film-to-pupil ray through every surface. Returns false
// if the ray misses a surface or is totally internally reflected.
func (la *LensAssembly) traceThrough(origin, pupilPt types.Vec3) (types.Ray, bool) {
	rayhit := NewRayHit(origin, pupilPt.Sub(origin))
	indexA := float32(1.0)

	for i := range la.surfaces {
		surf := la.surfaces[i]
		center := types.XYZ(0, 0, surf.Center())

		var hit bool
		if surf.Planar() {
			hit = rayhit.IntersectPlane(types.XYZ(0, 0, 1), types.XYZ(0, 0, surf.vertex))
		} else {
			hit = rayhit.IntersectSphere(center, float32(math.Abs(float64(surf.radius))))
		}
		if !hit {
			return types.Ray{}, false
		}

		indexB := surf.index
		point := rayhit.IntersectionPoint()
		if point[0]*point[0]+point[1]*point[1] > surf.aperture*surf.aperture {
			return types.Ray{}, false
		}

		// Orient the normal against the incident direction so the
		// refracted ray continues towards the scene.
		dir := rayhit.Ray().Direction()
		n := rayhit.Norm()
		if dir.Dot(n) > 0 {
			n = n.Neg()
		}

		cosI := -dir.Dot(n)
		ratio := indexA / indexB
		det := 1 - ratio*ratio*(1-cosI*cosI)
		if det < 0 {
			return types.Ray{}, false
		}

		newDir := dir.Mul(ratio).
			Add(n.Mul(ratio*cosI - float32(math.Sqrt(float64(det)))))

		rayhit = NewRayHit(point, newDir)
		indexA = indexB
	}

	return rayhit.Ray(), true
}
