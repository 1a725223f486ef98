package scene

import (
	"math/rand"

	"github.com/andrej6/bokeh/types"
)

// Ray classification for debug visualization.
type rayType int

const (
	primaryRay rayType = iota
	reflectionRay
	shadowRay
)

var rayTypeColors = map[rayType]types.Vec3{
	primaryRay:    {0, 0, 1},
	reflectionRay: {1, 0, 0},
	shadowRay:     {0, 1, 0},
}

// A renderable scene: an ordered sequence of primitives, the indices
// of the emitter instances, one camera, a background color and the
// rendering parameters.
type Scene struct {
	primitives []Primitive
	lights     []int

	camera  Camera
	bgColor types.Vec3
	raytree *RayTree

	shadowSamples int
	lensSamples   int
	rayBounces    int

	// Driver-thread RNG; worker threads supply their own through the
	// trace entry points.
	rng *rand.Rand
}

func New() *Scene {
	return &Scene{
		raytree:       NewRayTree(),
		shadowSamples: 1,
		lensSamples:   1,
		rayBounces:    1,
		rng:           rand.New(rand.NewSource(rand.Int63())),
	}
}

func (s *Scene) Camera() Camera          { return s.camera }
func (s *Scene) SetCamera(c Camera)      { s.camera = c }
func (s *Scene) BgColor() types.Vec3     { return s.bgColor }
func (s *Scene) SetBgColor(c types.Vec3) { s.bgColor = c }

func (s *Scene) ShadowSamples() int { return s.shadowSamples }
func (s *Scene) LensSamples() int   { return s.lensSamples }
func (s *Scene) RayBounces() int    { return s.rayBounces }

func (s *Scene) SetShadowSamples(n int) { s.shadowSamples = n }
func (s *Scene) SetLensSamples(n int)   { s.lensSamples = n }
func (s *Scene) SetRayBounces(n int)    { s.rayBounces = n }

// Seed the driver-thread RNG deterministically.
func (s *Scene) SeedRNG(seed int64) {
	s.rng = rand.New(rand.NewSource(seed))
}

func (s *Scene) NumPrimitives() int        { return len(s.primitives) }
func (s *Scene) Primitive(i int) Primitive { return s.primitives[i] }

// Append a primitive and return its index.
func (s *Scene) AddPrimitive(p Primitive) int {
	s.primitives = append(s.primitives, p)
	return len(s.primitives) - 1
}

// The indices of the emitter primitives.
func (s *Scene) Lights() []int { return s.lights }

// Scan the primitive list and record every instance whose material
// emits as a light. Called once after loading.
func (s *Scene) FindLights() {
	s.lights = s.lights[:0]
	for i, p := range s.primitives {
		mtl := p.Instance().Material()
		if mtl != nil && mtl.Emitted().Len() > types.Epsilon {
			s.lights = append(s.lights, i)
		}
	}
}

func (s *Scene) RayTree() *RayTree { return s.raytree }

// Trace the pixel (x, y) of a w by h image and return its color.
// When more than one lens sample is configured the samples jitter the
// pixel position uniformly and are averaged.
func (s *Scene) TracePixel(x, y, w, h int, rng *rand.Rand) types.Vec3 {
	if rng == nil {
		rng = s.rng
	}

	if s.lensSamples <= 1 {
		return s.TraceSample(x, y, w, h, 0, 0, rng)
	}

	var sum types.Vec3
	for i := 0; i < s.lensSamples; i++ {
		jx := rng.Float64() - 0.5
		jy := rng.Float64() - 0.5
		sum = sum.Add(s.TraceSample(x, y, w, h, jx, jy, rng))
	}
	return sum.Mul(1.0 / float32(s.lensSamples))
}

// Trace a single sample through pixel (x, y) with an explicit jitter
// offset in [-0.5, 0.5]. Coordinates are normalized to the pixel
// center with the y axis flipped so (0, 0) addresses the top-left
// image pixel while cameras see bottom-left origin coordinates.
func (s *Scene) TraceSample(x, y, w, h int, jx, jy float64, rng *rand.Rand) types.Vec3 {
	if rng == nil {
		rng = s.rng
	}
	u := (float64(x) + 0.5 + jx) / float64(w)
	v := 1.0 - (float64(y)+0.5+jy)/float64(h)
	return s.trace(s.camera.CastRay(u, v, rng), -1, s.rayBounces, primaryRay, rng)
}

// Clear the ray tree and re-trace the pixel with the tree as sink, for
// the preview's line visualizer.
func (s *Scene) VisualizeRayTree(x, y, w, h int) {
	s.raytree.Clear()
	u := (float64(x) + 0.5) / float64(w)
	v := 1.0 - (float64(y)+0.5)/float64(h)
	s.trace(s.camera.CastRay(u, v, s.rng), RayTreeRoot, s.rayBounces, primaryRay, s.rng)
}

// The recursive ray core. treenode is the ray tree sink index, -1 to
// disable logging.
func (s *Scene) trace(ray types.Ray, treenode, depth int, rtype rayType, rng *rand.Rand) types.Vec3 {
	if depth == 0 {
		return types.Vec3{}
	}

	rayhit := NewRayHitFromRay(ray)
	for _, p := range s.primitives {
		p.Intersect(rayhit)
	}

	childnode := -1
	if treenode >= 0 {
		childnode = s.raytree.AddChild(treenode, *rayhit, rayTypeColors[rtype])
	}

	if !rayhit.Intersected() {
		return s.bgColor
	}

	mtl := rayhit.Material()
	if mtl == nil {
		return s.bgColor
	}

	// A ray that reaches an emitter saturates.
	if mtl.EmittancePower() > 0 {
		return types.XYZ(1, 1, 1)
	}

	color := mtl.Ambient()

	for _, li := range s.lights {
		color = color.Add(s.directLight(rayhit, li, childnode, rng))
	}

	if mtl.ReflectOn() {
		d := ray.Direction()
		n := rayhit.Norm()
		reflected := types.NewRay(
			rayhit.IntersectionPoint().Add(n.Mul(types.Epsilon)),
			d.Sub(n.Mul(2*d.Dot(n))),
		)
		color = color.Add(mtl.Specular().MulVec(
			s.trace(reflected, childnode, depth-1, reflectionRay, rng)))
	}

	return clampColor(color)
}

// Direct illumination of a hit by one area light, estimated with
// shadowSamples uniform surface samples.
func (s *Scene) directLight(rayhit *RayHit, lightIdx, treenode int, rng *rand.Rand) types.Vec3 {
	light := s.primitives[lightIdx].Instance()
	lightMesh := light.Mesh()
	if lightMesh == nil || lightMesh.NumFaces() == 0 {
		return types.Vec3{}
	}

	mtl := rayhit.Material()
	surface := rayhit.IntersectionPoint()
	offset := surface.Add(rayhit.Norm().Mul(types.Epsilon))

	var accum types.Vec3
	for i := 0; i < s.shadowSamples; i++ {
		face := lightMesh.Face(rng.Intn(lightMesh.NumFaces()))
		sample := light.ModelMat().ApplyToPoint(face.RandomPoint(rng))

		ray := types.NewRay(offset, sample.Sub(offset))

		// Distance to the light itself.
		lightHit := NewRayHitFromRay(ray)
		if !lightHit.IntersectMesh(light) {
			continue
		}

		if treenode >= 0 {
			s.raytree.AddChild(treenode, *lightHit, rayTypeColors[shadowRay])
		}

		// Occlusion against the whole scene, the light included.
		globalHit := NewRayHitFromRay(ray)
		for _, p := range s.primitives {
			p.Intersect(globalHit)
		}
		if globalHit.Intersected() && globalHit.T() < lightHit.T() {
			continue
		}

		accum = accum.Add(mtl.Shade(rayhit, lightHit))
	}

	return accum.Mul(1.0 / float32(s.shadowSamples))
}

func clampColor(c types.Vec3) types.Vec3 {
	for i := 0; i < 3; i++ {
		if c[i] < 0 {
			c[i] = 0
		} else if c[i] > 1 {
			c[i] = 1
		}
	}
	return c
}
