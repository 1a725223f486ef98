package types

// A ray with a unit-length direction. Points along the ray are
// origin + t*direction.
type Ray struct {
	origin    Vec3
	direction Vec3
}

// Create a new ray. The direction is normalized on construction.
func NewRay(origin, direction Vec3) Ray {
	return Ray{
		origin:    origin,
		direction: direction.Normalize(),
	}
}

func (r Ray) Origin() Vec3 {
	return r.origin
}

func (r Ray) Direction() Vec3 {
	return r.direction
}

// Get the point at parameter t along the ray.
func (r Ray) PointAt(t float32) Vec3 {
	return r.origin.Add(r.direction.Mul(t))
}
