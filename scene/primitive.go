package scene

import (
	"math"

	"github.com/andrej6/bokeh/mesh"
	"github.com/andrej6/bokeh/types"
)

// Anything a ray can be intersected with: a placed mesh or an analytic
// sphere.
type Primitive interface {
	Intersect(h *RayHit) bool

	// The mesh instance backing this primitive.
	Instance() *MeshInstance
}

// A placed copy of a shared mesh: a non-owning mesh reference plus an
// affine transform and a material id. The model matrix is
// translate * rotate * scale applied to a column vector.
type MeshInstance struct {
	meshID mesh.ID
	mtl    MtlID

	translate types.Vec3
	rotate    types.Mat4
	scale     types.Vec3

	modelmat types.Mat4
}

func NewMeshInstance(id mesh.ID) *MeshInstance {
	return &MeshInstance{
		meshID:   id,
		rotate:   types.Ident4(),
		scale:    types.XYZ(1, 1, 1),
		modelmat: types.Ident4(),
	}
}

func (mi *MeshInstance) Mesh() *mesh.Mesh { return mesh.ByID(mi.meshID) }
func (mi *MeshInstance) MeshID() mesh.ID  { return mi.meshID }
func (mi *MeshInstance) MtlID() MtlID     { return mi.mtl }

func (mi *MeshInstance) Material() *Material { return MtlByID(mi.mtl) }

func (mi *MeshInstance) SetMtl(id MtlID) { mi.mtl = id }

// Replace the translation component.
func (mi *MeshInstance) SetTranslate(v types.Vec3) {
	mi.translate = v
	mi.recompose()
}

// Compose an additional translation onto the existing transform.
func (mi *MeshInstance) Translate(v types.Vec3) {
	mi.translate = mi.translate.Add(v)
	mi.recompose()
}

// Replace the rotation component with an axis-angle rotation. The
// angle is in radians.
func (mi *MeshInstance) SetRotate(angle float32, axis types.Vec3) {
	mi.rotate = rotationMat(angle, axis)
	mi.recompose()
}

// Compose an additional axis-angle rotation onto the existing
// rotation.
func (mi *MeshInstance) Rotate(angle float32, axis types.Vec3) {
	mi.rotate = rotationMat(angle, axis).Mul4(mi.rotate)
	mi.recompose()
}

// Replace the scale component.
func (mi *MeshInstance) SetScale(v types.Vec3) {
	mi.scale = v
	mi.recompose()
}

// Compose an additional scale onto the existing scale.
func (mi *MeshInstance) Scale(v types.Vec3) {
	mi.scale = mi.scale.MulVec(v)
	mi.recompose()
}

func rotationMat(angle float32, axis types.Vec3) types.Mat4 {
	q := types.QuatFromAxisAngle(axis.Normalize(), angle)
	return q.Normalize().Mat4()
}

// Recompute the cached model matrix. Called from the setters so the
// matrix is immutable by the time render workers share the instance.
func (mi *MeshInstance) recompose() {
	mi.modelmat = types.Translate4(mi.translate).
		Mul4(mi.rotate).
		Mul4(types.Scale4(mi.scale))
}

// The instance's model matrix, T * R * S.
func (mi *MeshInstance) ModelMat() types.Mat4 {
	return mi.modelmat
}

func (mi *MeshInstance) Intersect(h *RayHit) bool {
	return h.IntersectMesh(mi)
}

func (mi *MeshInstance) Instance() *MeshInstance { return mi }

// Reserved registry name for the shared tessellated sphere mesh.
const sphereMeshName = "__PRIMITIVE_sphere"

// An analytic sphere. Intersection uses the quadratic directly; the
// backing tessellated mesh instance exists for previews and light
// sampling.
type Sphere struct {
	center types.Vec3
	radius float32

	meshInstance *MeshInstance
}

func NewSphere(center types.Vec3, radius float32) *Sphere {
	id := mesh.IDByName(sphereMeshName)
	if id == mesh.None {
		id = sphereMesh(8, 16)
	}

	s := &Sphere{meshInstance: NewMeshInstance(id)}
	s.SetRadius(radius)
	s.SetCenter(center)
	return s
}

func (s *Sphere) Center() types.Vec3 { return s.center }
func (s *Sphere) Radius() float32    { return s.radius }

func (s *Sphere) SetCenter(center types.Vec3) {
	s.center = center
	s.meshInstance.SetTranslate(center)
}

func (s *Sphere) SetRadius(radius float32) {
	s.radius = radius
	s.meshInstance.SetScale(types.XYZ(radius, radius, radius))
}

func (s *Sphere) SetMtl(id MtlID) { s.meshInstance.SetMtl(id) }

func (s *Sphere) Intersect(h *RayHit) bool {
	if !h.IntersectSphere(s.center, s.radius) {
		return false
	}
	h.instance = s.meshInstance
	h.mtl = s.meshInstance.MtlID()
	return true
}

func (s *Sphere) Instance() *MeshInstance { return s.meshInstance }

// Build and register the shared unit-sphere mesh from latitude and
// longitude bands.
func sphereMesh(latdivs, londivs int) mesh.ID {
	m := mesh.New()

	m.AddVert(types.XYZ(0, 0, 1))

	for i := 1; i < latdivs; i++ {
		for j := 0; j < londivs; j++ {
			theta := float64(j) * 2 * math.Pi / float64(londivs)
			phi := float64(i) * math.Pi / float64(latdivs)
			m.AddVert(types.XYZ(
				float32(math.Sin(phi)*math.Cos(theta)),
				float32(math.Sin(phi)*math.Sin(theta)),
				float32(math.Cos(phi)),
			))
		}
	}

	m.AddVert(types.XYZ(0, 0, -1))

	// Top cap
	for i := 0; i < londivs; i++ {
		m.AddTri(0, i+1, (i+1)%londivs+1)
	}

	// Bottom cap
	for i := 0; i < londivs; i++ {
		m.AddTri(
			m.NumVerts()-1,
			m.NumVerts()-londivs-1+(i+1)%londivs,
			m.NumVerts()-londivs-1+i,
		)
	}

	// Bands
	for i := 0; i < latdivs-2; i++ {
		for j := 0; j < londivs; j++ {
			a := 1 + i*londivs + j
			b := 1 + (i+1)*londivs + j
			c := 1 + (i+1)*londivs + (j+1)%londivs
			d := 1 + i*londivs + (j+1)%londivs
			m.AddQuad(a, b, c, d)
		}
	}

	m.ComputeVertNorms()
	m.BuildTree()

	return mesh.Register(sphereMeshName, m)
}
