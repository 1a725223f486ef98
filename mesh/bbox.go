package mesh

import (
	"math"

	"github.com/andrej6/bokeh/types"
)

const (
	xAxis = 0
	yAxis = 1
	zAxis = 2
)

// An axis-aligned bounding box.
type BBox struct {
	Min types.Vec3
	Max types.Vec3
}

func (b BBox) XRange() float32 { return b.Max[0] - b.Min[0] }
func (b BBox) YRange() float32 { return b.Max[1] - b.Min[1] }
func (b BBox) ZRange() float32 { return b.Max[2] - b.Min[2] }

func (b BBox) Volume() float32 {
	return b.XRange() * b.YRange() * b.ZRange()
}

// Intersect the ray with each of the six box face planes; the box is
// hit iff one of the intersection points lies within the orthogonal
// 2-D slab of the other two axes. Rays nearly parallel to an axis are
// rejected against that axis' planes.
func (b BBox) RayIntersects(ray types.Ray) bool {
	for axis := xAxis; axis <= zAxis; axis++ {
		if point, ok := rayPlaneIntersect(ray, axis, b.Min[axis]); ok {
			if b.pointWithinFace(point, axis) {
				return true
			}
		}
		if point, ok := rayPlaneIntersect(ray, axis, b.Max[axis]); ok {
			if b.pointWithinFace(point, axis) {
				return true
			}
		}
	}
	return false
}

func rayPlaneIntersect(ray types.Ray, axis int, plane float32) (types.Vec3, bool) {
	origDim := ray.Origin()[axis]
	dirDim := ray.Direction()[axis]

	if float32(math.Abs(float64(dirDim))) < types.Epsilon {
		return types.Vec3{}, false
	}

	t := (plane - origDim) / dirDim
	if t < 0 {
		return types.Vec3{}, false
	}

	return ray.PointAt(t), true
}

func (b BBox) pointWithinFace(point types.Vec3, axis int) bool {
	dim1 := (axis + 1) % 3
	dim2 := (axis + 2) % 3
	return b.Min[dim1] <= point[dim1] && point[dim1] <= b.Max[dim1] &&
		b.Min[dim2] <= point[dim2] && point[dim2] <= b.Max[dim2]
}

// The eight box corners, for debug line rendering.
func (b BBox) Corners() [8]types.Vec3 {
	return [8]types.Vec3{
		{b.Min[0], b.Min[1], b.Min[2]},
		{b.Min[0], b.Min[1], b.Max[2]},
		{b.Min[0], b.Max[1], b.Min[2]},
		{b.Min[0], b.Max[1], b.Max[2]},
		{b.Max[0], b.Min[1], b.Min[2]},
		{b.Max[0], b.Min[1], b.Max[2]},
		{b.Max[0], b.Max[1], b.Min[2]},
		{b.Max[0], b.Max[1], b.Max[2]},
	}
}

// The twelve box edges as corner index pairs into Corners().
var BoxEdges = [12][2]int{
	{0, 1}, {0, 2}, {0, 4},
	{1, 3}, {1, 5},
	{2, 3}, {2, 6},
	{3, 7},
	{4, 5}, {4, 6},
	{5, 7}, {6, 7},
}
