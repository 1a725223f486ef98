package mesh

import (
	"math"
	"math/rand"
	"testing"

	"github.com/andrej6/bokeh/types"
)

// Build a mesh of n disconnected random triangles.
func makeRandomMesh(n int, rng *rand.Rand) *Mesh {
	m := New()
	for i := 0; i < n; i++ {
		base := randVec(rng).Mul(2)
		v0 := m.AddVert(base)
		v1 := m.AddVert(base.Add(randVec(rng).Mul(0.4)))
		v2 := m.AddVert(base.Add(randVec(rng).Mul(0.4)))
		if _, err := m.AddTri(v0, v1, v2); err != nil {
			panic(err)
		}
	}
	return m
}

func randVec(rng *rand.Rand) types.Vec3 {
	return types.XYZ(
		float32(rng.Float64()*2-1),
		float32(rng.Float64()*2-1),
		float32(rng.Float64()*2-1),
	)
}

func TestKDTreeHoldsEveryFace(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := makeRandomMesh(100, rng)
	tree := NewKDTree(m)

	faces := tree.Faces()
	if len(faces) != m.NumFaces() {
		t.Fatalf("expected %d faces reachable from the root; got %d", m.NumFaces(), len(faces))
	}
	for i := 0; i < m.NumFaces(); i++ {
		if _, ok := faces[m.Face(i)]; !ok {
			t.Fatalf("face %d is not reachable from the root", i)
		}
	}
}

func TestKDTreeRootBBoxContainsMesh(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	m := makeRandomMesh(50, rng)
	tree := NewKDTree(m)

	box := tree.BBox()
	for i := 0; i < m.NumVerts(); i++ {
		p := m.Vert(i).Position()
		for axis := 0; axis < 3; axis++ {
			if p[axis] < box.Min[axis] || p[axis] > box.Max[axis] {
				t.Fatalf("vertex %d (%v) outside root bbox [%v, %v]", i, p, box.Min, box.Max)
			}
		}
	}
}

// Brute-force ray/triangle test through the face plane and barycentric
// coordinates, mirroring the tracer's intersection routine.
func rayHitsFace(ray types.Ray, f Face) (float32, bool) {
	a := f.Vert(0).Position()
	n := f.Normal()

	denom := n.Dot(ray.Direction())
	if float32(math.Abs(float64(denom))) < types.Epsilon {
		return 0, false
	}
	t := (n.Dot(a) - n.Dot(ray.Origin())) / denom
	if t < 0 {
		return 0, false
	}

	p := ray.PointAt(t)
	alpha, beta, gamma := f.BarycentricCoords(p)
	if alpha < 0 || beta < 0 || gamma < 0 {
		return 0, false
	}
	return t, true
}

func TestKDTreeCullingSoundness(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	m := makeRandomMesh(100, rng)
	tree := NewKDTree(m)
	ident := types.Ident4()

	for rayIdx := 0; rayIdx < 1000; rayIdx++ {
		origin := randVec(rng).Mul(4)
		dir := randVec(rng)
		if dir.Len() < 1e-3 {
			continue
		}
		ray := types.NewRay(origin, dir)

		candidates := tree.CollectPossibleFaces(ray, ident)

		// The nearest linear-scan hit must be among the candidates.
		bestT := float32(math.Inf(1))
		var bestFace Face
		found := false
		for i := 0; i < m.NumFaces(); i++ {
			if ft, ok := rayHitsFace(ray, m.Face(i)); ok && ft < bestT {
				bestT = ft
				bestFace = m.Face(i)
				found = true
			}
		}

		if !found {
			continue
		}
		if _, ok := candidates[bestFace]; !ok {
			t.Fatalf("[ray %d] nearest face missing from k-d candidates", rayIdx)
		}
	}
}

func TestBBoxRayIntersects(t *testing.T) {
	box := BBox{Min: types.XYZ(-1, -1, -1), Max: types.XYZ(1, 1, 1)}

	type spec struct {
		origin types.Vec3
		dir    types.Vec3
		hit    bool
	}
	specs := []spec{
		{types.XYZ(0, 0, 5), types.XYZ(0, 0, -1), true},
		{types.XYZ(0, 0, 5), types.XYZ(0, 0, 1), false},
		{types.XYZ(5, 5, 5), types.XYZ(-1, -1, -1), true},
		{types.XYZ(0, 5, 0), types.XYZ(1, 0, 0), false},
		{types.XYZ(-5, 0.5, 0.5), types.XYZ(1, 0, 0), true},
	}

	for index, s := range specs {
		ray := types.NewRay(s.origin, s.dir)
		if got := box.RayIntersects(ray); got != s.hit {
			t.Fatalf("[spec %d] expected hit=%v; got %v", index, s.hit, got)
		}
	}
}

func TestBBoxVolume(t *testing.T) {
	box := BBox{Min: types.XYZ(0, 0, 0), Max: types.XYZ(2, 3, 4)}
	if v := box.Volume(); abs(v-24) > 1e-5 {
		t.Fatalf("expected volume 24; got %f", v)
	}
}

func TestKDTreeLeafBoxes(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	m := makeRandomMesh(64, rng)
	tree := NewKDTree(m)

	boxes := tree.LeafBoxes()
	if len(boxes) == 0 {
		t.Fatal("expected at least one leaf box")
	}

	root := tree.BBox()
	for i, b := range boxes {
		for axis := 0; axis < 3; axis++ {
			if b.Min[axis] < root.Min[axis]-1e-4 || b.Max[axis] > root.Max[axis]+1e-4 {
				t.Fatalf("leaf box %d exceeds the root bbox", i)
			}
		}
	}
}
