package scene

import (
	"math"
	"testing"

	"github.com/andrej6/bokeh/types"
)

func TestIntersectSphereAlongZ(t *testing.T) {
	h := NewRayHit(types.XYZ(0, 0, 5), types.XYZ(0, 0, -1))

	if !h.IntersectSphere(types.Vec3{}, 1) {
		t.Fatal("expected sphere hit")
	}
	if math.Abs(float64(h.T()-4)) > 1e-5 {
		t.Fatalf("expected t=4; got %f", h.T())
	}
	if p := h.IntersectionPoint(); p.Sub(types.XYZ(0, 0, 1)).Len() > 1e-5 {
		t.Fatalf("expected intersection (0,0,1); got %v", p)
	}
	if n := h.Norm(); n.Sub(types.XYZ(0, 0, 1)).Len() > 1e-5 {
		t.Fatalf("expected normal (0,0,1); got %v", n)
	}
}

func TestIntersectSphereFromInside(t *testing.T) {
	h := NewRayHit(types.Vec3{}, types.XYZ(0, 0, -1))

	if !h.IntersectSphere(types.Vec3{}, 1) {
		t.Fatal("expected hit from inside the sphere")
	}
	if math.Abs(float64(h.T()-1)) > 1e-5 {
		t.Fatalf("expected t=1; got %f", h.T())
	}
}

func TestIntersectPlaneMiss(t *testing.T) {
	// The plane lies behind the ray origin; t would be negative.
	h := NewRayHit(types.XYZ(0, 0, 5), types.XYZ(0, 0, 1))

	if h.IntersectPlane(types.XYZ(0, 0, 1), types.Vec3{}) {
		t.Fatal("expected plane miss for negative t")
	}
	if h.Intersected() {
		t.Fatal("expected hit record to stay empty")
	}
}

func TestIntersectPlaneParallel(t *testing.T) {
	h := NewRayHit(types.XYZ(0, 0, 5), types.XYZ(1, 0, 0))

	if h.IntersectPlane(types.XYZ(0, 0, 1), types.Vec3{}) {
		t.Fatal("expected miss for a ray parallel to the plane")
	}
}

func TestIntersectPlaneHit(t *testing.T) {
	h := NewRayHit(types.XYZ(0, 0, 5), types.XYZ(0, 0, -1))

	if !h.IntersectPlane(types.XYZ(0, 0, 1), types.Vec3{}) {
		t.Fatal("expected plane hit")
	}
	if math.Abs(float64(h.T()-5)) > 1e-5 {
		t.Fatalf("expected t=5; got %f", h.T())
	}
}

func TestIntersectKeepsNearest(t *testing.T) {
	centers := []types.Vec3{
		{0, 0, -4},
		{0, 0, 0},
		{0, 0, 2},
	}

	// The set of hit t values is min-reduced: any evaluation order
	// yields the same final t.
	orders := [][]int{
		{0, 1, 2},
		{2, 1, 0},
		{1, 0, 2},
		{2, 0, 1},
	}

	var want float32 = 2 // sphere at z=2, radius 1, hit at z=3
	for index, order := range orders {
		h := NewRayHit(types.XYZ(0, 0, 5), types.XYZ(0, 0, -1))
		for _, i := range order {
			h.IntersectSphere(centers[i], 1)
		}
		if math.Abs(float64(h.T()-want)) > 1e-5 {
			t.Fatalf("[spec %d] expected nearest t=%f; got %f", index, want, h.T())
		}
	}
}

func TestIntersectFace(t *testing.T) {
	resetRegistries()
	id := registerQuad("quad")
	m := meshByIDForTest(t, id)

	h := NewRayHit(types.XYZ(0.25, 0.25, 5), types.XYZ(0, 0, -1))
	hit := false
	for i := 0; i < m.NumFaces(); i++ {
		if h.IntersectFace(m.Face(i), types.Ident4()) {
			hit = true
		}
	}

	if !hit {
		t.Fatal("expected face hit")
	}
	if math.Abs(float64(h.T()-5)) > 1e-5 {
		t.Fatalf("expected t=5; got %f", h.T())
	}
	if n := h.Norm(); n.Sub(types.XYZ(0, 0, 1)).Len() > 1e-4 {
		t.Fatalf("expected smoothing normal (0,0,1); got %v", n)
	}
}

func TestIntersectFaceOutside(t *testing.T) {
	resetRegistries()
	id := registerQuad("quad")
	m := meshByIDForTest(t, id)

	h := NewRayHit(types.XYZ(5, 5, 5), types.XYZ(0, 0, -1))
	for i := 0; i < m.NumFaces(); i++ {
		if h.IntersectFace(m.Face(i), types.Ident4()) {
			t.Fatal("expected miss outside the quad")
		}
	}
}

func TestIntersectMeshRecordsInstance(t *testing.T) {
	resetRegistries()
	id := registerQuad("quad")
	mtlID := registerDiffuseMtl("gray", types.XYZ(0.7, 0.7, 0.7), types.Vec3{})

	inst := NewMeshInstance(id)
	inst.SetMtl(mtlID)
	inst.SetTranslate(types.XYZ(0, 0, -2))

	h := NewRayHit(types.XYZ(0, 0, 5), types.XYZ(0, 0, -1))
	if !h.IntersectMesh(inst) {
		t.Fatal("expected mesh hit")
	}
	if math.Abs(float64(h.T()-7)) > 1e-4 {
		t.Fatalf("expected t=7 through the translated quad; got %f", h.T())
	}
	if h.Instance() != inst {
		t.Fatal("expected hit to record the instance")
	}
	if h.MtlID() != mtlID {
		t.Fatal("expected hit to record the material id")
	}
}

func TestRayTreeArena(t *testing.T) {
	tree := NewRayTree()

	hit := NewRayHit(types.Vec3{}, types.XYZ(0, 0, -1))
	a := tree.AddChild(RayTreeRoot, *hit, types.XYZ(0, 0, 1))
	b := tree.AddChild(a, *hit, types.XYZ(1, 0, 0))

	if tree.NumNodes() != 3 {
		t.Fatalf("expected 3 nodes; got %d", tree.NumNodes())
	}
	if len(tree.Node(RayTreeRoot).Children) != 1 || tree.Node(RayTreeRoot).Children[0] != a {
		t.Fatal("root does not own its child")
	}
	if len(tree.Node(a).Children) != 1 || tree.Node(a).Children[0] != b {
		t.Fatal("child does not own its grandchild")
	}

	// Misses produce fading lines; hits end at the intersection.
	lines := tree.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines; got %d", len(lines))
	}
	if lines[0].ToColor[3] != 0 {
		t.Fatal("expected missing ray line to fade out")
	}

	tree.Clear()
	if tree.NumNodes() != 1 {
		t.Fatalf("expected only the root after Clear; got %d nodes", tree.NumNodes())
	}
	if len(tree.Node(RayTreeRoot).Children) != 0 {
		t.Fatal("expected root children to be dropped on Clear")
	}
}
