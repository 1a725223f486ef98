package mesh

import (
	"math"
	"sort"

	"github.com/andrej6/bokeh/types"
)

// Nodes holding this many faces or fewer become leaves.
const leafFaceCount = 16

const (
	splitLeft = iota
	splitRight
	splitNeither
)

// An axis-aligned k-d tree over the faces of a single mesh, in object
// space. Instance transforms are applied at query time by transforming
// the ray into object space.
type KDTree struct {
	bbox   BBox
	child1 *KDTree
	child2 *KDTree

	axis  int
	plane float32

	// Faces straddling the split plane, or all faces for a leaf.
	faces []Face
}

type sortedFaces struct {
	byX []Face
	byY []Face
	byZ []Face
}

// Build a k-d tree over all faces of the mesh. The three face lists are
// kept centroid-sorted per axis so each level picks its split plane
// from the median centroids in O(1) and re-partitions in O(n).
func NewKDTree(m *Mesh) *KDTree {
	sorted := sortedFaces{}
	min := types.XYZ(float32(math.Inf(1)), float32(math.Inf(1)), float32(math.Inf(1)))
	max := types.XYZ(float32(math.Inf(-1)), float32(math.Inf(-1)), float32(math.Inf(-1)))

	for i := 0; i < m.NumFaces(); i++ {
		f := m.Face(i)
		for v := 0; v < 3; v++ {
			min = types.MinVec3(min, f.Vert(v).Position())
			max = types.MaxVec3(max, f.Vert(v).Position())
		}
		sorted.byX = append(sorted.byX, f)
		sorted.byY = append(sorted.byY, f)
		sorted.byZ = append(sorted.byZ, f)
	}

	sortByAxis(sorted.byX, xAxis)
	sortByAxis(sorted.byY, yAxis)
	sortByAxis(sorted.byZ, zAxis)

	eps := types.XYZ(types.Epsilon, types.Epsilon, types.Epsilon)
	bbox := BBox{Min: min.Sub(eps), Max: max.Add(eps)}

	tree := &KDTree{}
	tree.construct(sorted, bbox)
	return tree
}

func sortByAxis(faces []Face, axis int) {
	sort.SliceStable(faces, func(i, j int) bool {
		return faces[i].Centroid()[axis] < faces[j].Centroid()[axis]
	})
}

func (t *KDTree) construct(sorted sortedFaces, bbox BBox) {
	t.bbox = bbox

	if len(sorted.byX) <= leafFaceCount {
		t.faces = append(t.faces, sorted.byX...)
		return
	}

	rangeX := sorted.byX[len(sorted.byX)-1].Centroid()[xAxis] - sorted.byX[0].Centroid()[xAxis]
	rangeY := sorted.byY[len(sorted.byY)-1].Centroid()[yAxis] - sorted.byY[0].Centroid()[yAxis]
	rangeZ := sorted.byZ[len(sorted.byZ)-1].Centroid()[zAxis] - sorted.byZ[0].Centroid()[zAxis]

	var median []Face
	if rangeX >= rangeY && rangeX >= rangeZ {
		t.axis = xAxis
		median = sorted.byX
	} else if rangeY >= rangeX && rangeY >= rangeZ {
		t.axis = yAxis
		median = sorted.byY
	} else {
		t.axis = zAxis
		median = sorted.byZ
	}

	mid1 := median[len(median)/2-1].Centroid()[t.axis]
	mid2 := median[len(median)/2].Centroid()[t.axis]
	t.plane = 0.5 * (mid1 + mid2)

	bbox1, bbox2 := t.bbox, t.bbox
	bbox1.Max[t.axis] = t.plane
	bbox2.Min[t.axis] = t.plane

	if bbox1.Volume() < types.Epsilon || bbox2.Volume() < types.Epsilon {
		t.faces = append(t.faces, sorted.byX...)
		return
	}

	var sorted1, sorted2 sortedFaces
	for i := range sorted.byX {
		switch t.faceSplit(sorted.byX[i]) {
		case splitLeft:
			sorted1.byX = append(sorted1.byX, sorted.byX[i])
		case splitRight:
			sorted2.byX = append(sorted2.byX, sorted.byX[i])
		default:
			t.faces = append(t.faces, sorted.byX[i])
		}

		switch t.faceSplit(sorted.byY[i]) {
		case splitLeft:
			sorted1.byY = append(sorted1.byY, sorted.byY[i])
		case splitRight:
			sorted2.byY = append(sorted2.byY, sorted.byY[i])
		}

		switch t.faceSplit(sorted.byZ[i]) {
		case splitLeft:
			sorted1.byZ = append(sorted1.byZ, sorted.byZ[i])
		case splitRight:
			sorted2.byZ = append(sorted2.byZ, sorted.byZ[i])
		}
	}

	t.child1 = &KDTree{}
	t.child2 = &KDTree{}
	t.child1.construct(sorted1, bbox1)
	t.child2.construct(sorted2, bbox2)
}

// Classify a face against the node's split plane. Faces with all three
// vertices strictly below the plane descend left, faces with all three
// at or above it descend right; any other face straddles.
func (t *KDTree) faceSplit(f Face) int {
	count := 0
	for v := 0; v < 3; v++ {
		if f.Vert(v).Position()[t.axis] >= t.plane {
			count++
		}
	}

	switch count {
	case 0:
		return splitLeft
	case 3:
		return splitRight
	default:
		return splitNeither
	}
}

// Collect the faces a world-space ray could intersect. The ray is
// transformed into object space by the inverse model matrix (origin as
// a point, direction as a direction) and tested against node boxes;
// faces held by any intersected node are candidates.
func (t *KDTree) CollectPossibleFaces(ray types.Ray, modelmat types.Mat4) map[Face]struct{} {
	inv := modelmat.Inv()
	invRay := types.NewRay(inv.ApplyToPoint(ray.Origin()), inv.ApplyToDir(ray.Direction()))

	set := make(map[Face]struct{})
	t.addIntersecting(invRay, set)
	return set
}

func (t *KDTree) addIntersecting(ray types.Ray, set map[Face]struct{}) {
	if !t.bbox.RayIntersects(ray) {
		return
	}

	for _, f := range t.faces {
		set[f] = struct{}{}
	}

	if t.child1 != nil {
		t.child1.addIntersecting(ray, set)
	}
	if t.child2 != nil {
		t.child2.addIntersecting(ray, set)
	}
}

// The bounding boxes of all leaf nodes, for the k-d overlay.
func (t *KDTree) LeafBoxes() []BBox {
	var boxes []BBox
	t.appendLeafBoxes(&boxes)
	return boxes
}

func (t *KDTree) appendLeafBoxes(boxes *[]BBox) {
	if t.child1 == nil && t.child2 == nil {
		*boxes = append(*boxes, t.bbox)
		return
	}
	if t.child1 != nil {
		t.child1.appendLeafBoxes(boxes)
	}
	if t.child2 != nil {
		t.child2.appendLeafBoxes(boxes)
	}
}

// The root bounding box.
func (t *KDTree) BBox() BBox {
	return t.bbox
}

// Every face reachable from the root.
func (t *KDTree) Faces() map[Face]struct{} {
	set := make(map[Face]struct{})
	t.collectFaces(set)
	return set
}

func (t *KDTree) collectFaces(set map[Face]struct{}) {
	for _, f := range t.faces {
		set[f] = struct{}{}
	}
	if t.child1 != nil {
		t.child1.collectFaces(set)
	}
	if t.child2 != nil {
		t.child2.collectFaces(set)
	}
}
