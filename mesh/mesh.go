package mesh

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/andrej6/bokeh/types"
)

// Sentinel index for absent arena references.
const none = -1

// VPair is the half-edge map key: the (root, dest) vertex index pair
// of a directed edge. Two pairs are equal iff both indices match.
type VPair struct {
	Root int
	Vert int
}

type vertData struct {
	position types.Vec3
}

type edgeData struct {
	vert     int // destination vertex
	root     int // origin vertex
	next     int // CCW successor around the face
	opposite int // other half of the edge, none on a boundary
	face     int

	// Smoothing normal at the destination vertex.
	norm    types.Vec3
	hasNorm bool
}

type faceData struct {
	edge int
}

// A triangle mesh backed by a half-edge structure. Vertices, edges and
// faces live in arenas and reference each other by index; Vertex, Edge
// and Face are cheap handles into those arenas.
type Mesh struct {
	verts   []vertData
	edges   []edgeData
	faces   []faceData
	edgeMap map[VPair]int

	tree *KDTree
}

// Handle to a mesh vertex.
type Vertex struct {
	m   *Mesh
	idx int
}

// Handle to a mesh half-edge.
type Edge struct {
	m   *Mesh
	idx int
}

// Handle to a mesh face.
type Face struct {
	m   *Mesh
	idx int
}

func New() *Mesh {
	return &Mesh{
		edgeMap: make(map[VPair]int),
	}
}

// Append a vertex and return its index within the mesh.
func (m *Mesh) AddVert(position types.Vec3) int {
	m.verts = append(m.verts, vertData{position: position})
	return len(m.verts) - 1
}

// Add a triangle from three vertex indices in CCW order.
func (m *Mesh) AddTri(v1, v2, v3 int) (Face, error) {
	for _, v := range []int{v1, v2, v3} {
		if v < 0 || v >= len(m.verts) {
			return Face{}, fmt.Errorf("mesh: vertex index %d out of range", v)
		}
	}

	faceIdx := len(m.faces)
	m.faces = append(m.faces, faceData{edge: none})

	e1, err := m.addEdge(v1, v2, faceIdx)
	if err != nil {
		return Face{}, err
	}
	e2, err := m.addEdge(v2, v3, faceIdx)
	if err != nil {
		return Face{}, err
	}
	e3, err := m.addEdge(v3, v1, faceIdx)
	if err != nil {
		return Face{}, err
	}

	m.edges[e1].next = e2
	m.edges[e2].next = e3
	m.edges[e3].next = e1
	// Anchor on the edge ending at v1 so Vert(0..2) is (v1, v2, v3).
	m.faces[faceIdx].edge = e3

	return Face{m, faceIdx}, nil
}

// Add a quadrilateral, triangulated into two triangles sharing the
// (v1, v3) diagonal.
func (m *Mesh) AddQuad(v1, v2, v3, v4 int) error {
	if _, err := m.AddTri(v1, v2, v3); err != nil {
		return err
	}
	_, err := m.AddTri(v1, v3, v4)
	return err
}

// Create a half-edge from root to vert belonging to face. Errors if the
// directed edge already exists; links opposite pointers with any
// pre-existing (vert, root) half.
func (m *Mesh) addEdge(root, vert, face int) (int, error) {
	key := VPair{Root: root, Vert: vert}
	if _, exists := m.edgeMap[key]; exists {
		return none, fmt.Errorf("mesh: duplicate edge %d -> %d", root, vert)
	}

	idx := len(m.edges)
	m.edges = append(m.edges, edgeData{
		vert:     vert,
		root:     root,
		next:     none,
		opposite: none,
		face:     face,
	})
	m.edgeMap[key] = idx

	if opp, exists := m.edgeMap[VPair{Root: vert, Vert: root}]; exists {
		m.edges[idx].opposite = opp
		m.edges[opp].opposite = idx
	}

	return idx, nil
}

func (m *Mesh) NumVerts() int { return len(m.verts) }
func (m *Mesh) NumEdges() int { return len(m.edges) }
func (m *Mesh) NumFaces() int { return len(m.faces) }

func (m *Mesh) Vert(i int) Vertex { return Vertex{m, i} }
func (m *Mesh) Edge(i int) Edge   { return Edge{m, i} }
func (m *Mesh) Face(i int) Face   { return Face{m, i} }

// Look up the half-edge from root to vert. The second return value is
// false if no such edge exists.
func (m *Mesh) EdgeBetween(root, vert int) (Edge, bool) {
	idx, ok := m.edgeMap[VPair{Root: root, Vert: vert}]
	if !ok {
		return Edge{}, false
	}
	return Edge{m, idx}, true
}

// Build the k-d tree over the mesh faces. Must be called again if
// faces are added later.
func (m *Mesh) BuildTree() {
	m.tree = NewKDTree(m)
}

// The mesh's k-d tree, building it on first use.
func (m *Mesh) Tree() *KDTree {
	if m.tree == nil {
		m.BuildTree()
	}
	return m.tree
}

// Vertex accessors.

func (v Vertex) Index() int           { return v.idx }
func (v Vertex) Position() types.Vec3 { return v.m.verts[v.idx].position }

// Edge accessors.

func (e Edge) Valid() bool { return e.m != nil && e.idx != none }

// The destination vertex.
func (e Edge) Vert() Vertex { return Vertex{e.m, e.m.edges[e.idx].vert} }

// The origin vertex.
func (e Edge) Root() Vertex { return Vertex{e.m, e.m.edges[e.idx].root} }

// The CCW successor around the face.
func (e Edge) Next() Edge { return Edge{e.m, e.m.edges[e.idx].next} }

// The other half of this edge. Valid() is false on a boundary.
func (e Edge) Opposite() Edge {
	opp := e.m.edges[e.idx].opposite
	if opp == none {
		return Edge{}
	}
	return Edge{e.m, opp}
}

func (e Edge) Face() Face { return Face{e.m, e.m.edges[e.idx].face} }

// Rotate clockwise around the destination vertex. Valid() is false at
// a boundary.
func (e Edge) NextCW() Edge {
	return e.Next().Opposite()
}

// Rotate counter-clockwise around the destination vertex. Valid() is
// false at a boundary.
func (e Edge) NextCCW() Edge {
	opp := e.Opposite()
	if !opp.Valid() {
		return Edge{}
	}
	return opp.Next().Next()
}

// The smoothing normal stored at the destination vertex.
func (e Edge) Norm() types.Vec3 { return e.m.edges[e.idx].norm }

func (e Edge) SetNorm(n types.Vec3) {
	e.m.edges[e.idx].norm = n
	e.m.edges[e.idx].hasNorm = true
}

func (e Edge) HasNorm() bool { return e.m.edges[e.idx].hasNorm }

// Face accessors.

func (f Face) Index() int { return f.idx }
func (f Face) Edge() Edge { return Edge{f.m, f.m.faces[f.idx].edge} }

// The i'th vertex of the triangle, counting CCW from the anchor edge's
// destination.
func (f Face) Vert(i int) Vertex {
	e := f.Edge()
	for ; i > 0; i-- {
		e = e.Next()
	}
	return e.Vert()
}

// The half-edge whose destination is the i'th vertex.
func (f Face) edgeAt(i int) Edge {
	e := f.Edge()
	for ; i > 0; i-- {
		e = e.Next()
	}
	return e
}

// The face normal from the CCW vertex winding.
func (f Face) Normal() types.Vec3 {
	a := f.Vert(1).Position().Sub(f.Vert(0).Position())
	b := f.Vert(2).Position().Sub(f.Vert(0).Position())
	return a.Cross(b).Normalize()
}

func (f Face) Centroid() types.Vec3 {
	return f.Vert(0).Position().
		Add(f.Vert(1).Position()).
		Add(f.Vert(2).Position()).
		Mul(1.0 / 3.0)
}

func (f Face) Area() float32 {
	a := f.Vert(1).Position().Sub(f.Vert(0).Position())
	b := f.Vert(2).Position().Sub(f.Vert(0).Position())
	return 0.5 * a.Cross(b).Len()
}

// Compute the barycentric coordinates of a point with respect to the
// face. Points on an edge produce a zero component; points outside the
// triangle yield a negative component. Coordinates are computed from
// signed sub-triangle areas so alpha+beta+gamma == 1 for coplanar
// points.
func (f Face) BarycentricCoords(point types.Vec3) (alpha, beta, gamma float32) {
	return BarycentricCoords(point,
		f.Vert(0).Position(), f.Vert(1).Position(), f.Vert(2).Position())
}

// Compute the barycentric coordinates of a point with respect to the
// triangle (va, vb, vc), via signed sub-triangle areas.
func BarycentricCoords(point, va, vb, vc types.Vec3) (alpha, beta, gamma float32) {
	n := vb.Sub(va).Cross(vc.Sub(va))
	area2 := n.Len()
	nrm := n.Normalize()

	abr := vb.Sub(va).Cross(point.Sub(va))
	bcr := vc.Sub(vb).Cross(point.Sub(vb))
	car := va.Sub(vc).Cross(point.Sub(vc))

	alpha = sign(nrm.Dot(bcr)) * bcr.Len() / area2
	beta = sign(nrm.Dot(car)) * car.Len() / area2
	gamma = sign(nrm.Dot(abr)) * abr.Len() / area2
	return alpha, beta, gamma
}

func sign(v float32) float32 {
	if v < 0 {
		return -1.0
	}
	return 1.0
}

// The point with the given barycentric coordinates.
func (f Face) PointAt(alpha, beta, gamma float32) types.Vec3 {
	return f.Vert(0).Position().Mul(alpha).
		Add(f.Vert(1).Position().Mul(beta)).
		Add(f.Vert(2).Position().Mul(gamma))
}

// The smoothing normal interpolated at the given barycentric
// coordinates, normalized.
func (f Face) InterpNorm(alpha, beta, gamma float32) types.Vec3 {
	return f.edgeAt(0).Norm().Mul(alpha).
		Add(f.edgeAt(1).Norm().Mul(beta)).
		Add(f.edgeAt(2).Norm().Mul(gamma)).
		Normalize()
}

// A uniformly distributed random point on the face.
func (f Face) RandomPoint(rng *rand.Rand) types.Vec3 {
	r1 := float32(rng.Float64())
	sqrtR2 := float32(math.Sqrt(rng.Float64()))
	return f.PointAt(1.0-sqrtR2, sqrtR2*(1.0-r1), r1*sqrtR2)
}

// Transform the three face vertices by modelmat.
func (f Face) TransformedVerts(modelmat types.Mat4) (a, b, c types.Vec3) {
	a = modelmat.ApplyToPoint(f.Vert(0).Position())
	b = modelmat.ApplyToPoint(f.Vert(1).Position())
	c = modelmat.ApplyToPoint(f.Vert(2).Position())
	return a, b, c
}

// Transform the face normal by modelmat in direction mode and
// re-normalize.
func (f Face) TransformedNorm(modelmat types.Mat4) types.Vec3 {
	return modelmat.ApplyToDir(f.Normal()).Normalize()
}

// Fill in smoothing normals for every edge that was not assigned one
// from geometry input. The normal at a vertex is the average of the
// normals of the faces around it, found by walking CW around the
// vertex until a boundary or the starting edge, then CCW from the
// start if a boundary cut the walk short.
func (m *Mesh) ComputeVertNorms() {
	for i := range m.edges {
		if m.edges[i].hasNorm {
			continue
		}
		e := Edge{m, i}
		e.SetNorm(m.averageNorm(e))
	}
}

func (m *Mesh) averageNorm(start Edge) types.Vec3 {
	sum := start.Face().Normal()

	full := false
	for e := start.NextCW(); e.Valid(); e = e.NextCW() {
		if e.idx == start.idx {
			full = true
			break
		}
		sum = sum.Add(e.Face().Normal())
	}

	if !full {
		for e := start.NextCCW(); e.Valid(); e = e.NextCCW() {
			sum = sum.Add(e.Face().Normal())
		}
	}

	return sum.Normalize()
}
