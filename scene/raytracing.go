package scene

import (
	"math"

	"github.com/andrej6/bokeh/mesh"
	"github.com/andrej6/bokeh/types"
)

// A ray paired with its current best intersection. The parameter t is
// NaN until something is hit; every Intersect* operation updates the
// record only when it produces a strictly nearer t.
type RayHit struct {
	t   float32
	ray types.Ray

	norm     types.Vec3
	modelmat types.Mat4
	face     mesh.Face
	hasFace  bool
	instance *MeshInstance
	mtl      MtlID
}

func NewRayHit(origin, direction types.Vec3) *RayHit {
	return NewRayHitFromRay(types.NewRay(origin, direction))
}

func NewRayHitFromRay(ray types.Ray) *RayHit {
	return &RayHit{
		t:        float32(math.NaN()),
		ray:      ray,
		modelmat: types.Ident4(),
	}
}

func (h *RayHit) Intersected() bool {
	return !math.IsNaN(float64(h.t))
}

func (h *RayHit) T() float32      { return h.t }
func (h *RayHit) Ray() types.Ray  { return h.ray }
func (h *RayHit) Norm() types.Vec3 {
	return h.norm
}

func (h *RayHit) IntersectionPoint() types.Vec3 {
	return h.ray.PointAt(h.t)
}

// The face hit, if the nearest intersection came from a mesh face.
func (h *RayHit) Face() (mesh.Face, bool) { return h.face, h.hasFace }

// The instance hit, if any; nil until IntersectMesh records a hit.
func (h *RayHit) Instance() *MeshInstance { return h.instance }

// The model matrix of the hit instance.
func (h *RayHit) ModelMat() types.Mat4 { return h.modelmat }

// The material of the nearest hit so far, nil if none was recorded.
func (h *RayHit) Material() *Material { return MtlByID(h.mtl) }

func (h *RayHit) MtlID() MtlID { return h.mtl }

// Whether t improves on the current best hit.
func (h *RayHit) closer(t float32) bool {
	if math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) || t < 0 {
		return false
	}
	return !h.Intersected() || t < h.t
}

// Intersect with the plane through s with normal n. The hit is updated
// only on a strictly nearer non-negative t; degenerate geometry (ray
// parallel to the plane) is treated as a miss.
func (h *RayHit) IntersectPlane(n, s types.Vec3) bool {
	t := (n.Dot(s) - n.Dot(h.ray.Origin())) / n.Dot(h.ray.Direction())
	if !h.closer(t) {
		return false
	}

	h.t = t
	h.norm = n
	return true
}

// Intersect with a sphere, accepting the smallest non-negative root
// that improves the current t.
func (h *RayHit) IntersectSphere(center types.Vec3, radius float32) bool {
	o := h.ray.Origin().Sub(center)
	d := h.ray.Direction()

	b := 2 * o.Dot(d)
	c := o.Dot(o) - radius*radius

	disc := float64(b*b - 4*c)
	if disc < 0 {
		return false
	}

	sq := float32(math.Sqrt(disc))
	t := (-b - sq) / 2
	if t < 0 {
		t = (-b + sq) / 2
	}

	if !h.closer(t) {
		return false
	}

	h.t = t
	h.norm = h.ray.PointAt(t).Sub(center).Normalize()
	return true
}

// Intersect with a mesh face under a model transform. On a hit the
// stored normal is the face's smoothing normal interpolated at the
// barycentric coordinates of the intersection and transformed in
// direction mode.
func (h *RayHit) IntersectFace(face mesh.Face, modelmat types.Mat4) bool {
	a, b, c := face.TransformedVerts(modelmat)
	n := face.TransformedNorm(modelmat)

	t := (n.Dot(a) - n.Dot(h.ray.Origin())) / n.Dot(h.ray.Direction())
	if !h.closer(t) {
		return false
	}

	r := h.ray.PointAt(t)
	alpha, beta, gamma := mesh.BarycentricCoords(r, a, b, c)
	if alpha < 0 || beta < 0 || gamma < 0 {
		return false
	}

	h.t = t
	h.face = face
	h.hasFace = true
	h.modelmat = modelmat
	h.norm = modelmat.ApplyToDir(face.InterpNorm(alpha, beta, gamma)).Normalize()
	return true
}

// Intersect with a mesh instance, using the mesh's k-d tree to cull
// candidate faces. Records the instance and its material id on a hit.
func (h *RayHit) IntersectMesh(mi *MeshInstance) bool {
	modelmat := mi.ModelMat()
	candidates := mi.Mesh().Tree().CollectPossibleFaces(h.ray, modelmat)

	intersected := false
	for face := range candidates {
		if h.IntersectFace(face, modelmat) {
			intersected = true
		}
	}

	if intersected {
		h.instance = mi
		h.mtl = mi.MtlID()
	}
	return intersected
}

// One node of the debug ray tree: a recorded hit, a color tag, and the
// shadow/reflection rays spawned from it.
type RayTreeNode struct {
	Hit      RayHit
	Color    types.Vec3
	Children []int
}

// A debug tree of the rays spawned while tracing one pixel. Nodes live
// in an arena and reference their children by index; the root is a
// pseudo-node with no hit.
type RayTree struct {
	nodes []RayTreeNode
}

// The arena index of the root pseudo-node.
const RayTreeRoot = 0

func NewRayTree() *RayTree {
	t := &RayTree{}
	t.Clear()
	return t
}

// Drop all recorded rays, leaving only the root pseudo-node.
func (t *RayTree) Clear() {
	t.nodes = t.nodes[:0]
	t.nodes = append(t.nodes, RayTreeNode{})
}

// Record a hit as a child of the given node and return the new node's
// index.
func (t *RayTree) AddChild(parent int, hit RayHit, color types.Vec3) int {
	idx := len(t.nodes)
	t.nodes = append(t.nodes, RayTreeNode{Hit: hit, Color: color})
	t.nodes[parent].Children = append(t.nodes[parent].Children, idx)
	return idx
}

func (t *RayTree) Node(i int) *RayTreeNode { return &t.nodes[i] }
func (t *RayTree) NumNodes() int           { return len(t.nodes) }

// A colored world-space line segment for the debug visualizer.
type VizLine struct {
	From, To           types.Vec3
	FromColor, ToColor types.Vec4
}

// Flatten the tree into renderable line segments. Rays that missed
// everything fade out over a fixed distance.
func (t *RayTree) Lines() []VizLine {
	lines := make([]VizLine, 0, len(t.nodes)-1)
	for i := 1; i < len(t.nodes); i++ {
		node := &t.nodes[i]
		start := node.Hit.Ray().Origin()
		color := node.Color.Vec4(1)

		var end types.Vec3
		endColor := color
		if node.Hit.Intersected() {
			end = node.Hit.IntersectionPoint()
		} else {
			end = node.Hit.Ray().PointAt(20.0)
			endColor[3] = 0
		}

		lines = append(lines, VizLine{
			From: start, To: end,
			FromColor: color, ToColor: endColor,
		})
	}
	return lines
}
