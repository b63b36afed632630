package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vec is a 3D point or direction.
type Vec = v3.Vec

// Epsilon is the threshold below which a vector is treated as zero length.
const Epsilon = 1e-12

// World axes.
var (
	Origin = Vec{}
	XAxis  = Vec{X: 1}
	YAxis  = Vec{Y: 1}
	ZAxis  = Vec{Z: 1}
)

// V is shorthand for constructing a Vec.
func V(x, y, z float64) Vec {
	return Vec{X: x, Y: y, Z: z}
}

// IsZero reports whether v has length below Epsilon.
func IsZero(v Vec) bool {
	return v.Length() < Epsilon
}

// Unitize returns v scaled to unit length. A zero vector unitizes to itself;
// callers check IsZero before relying on the result as a direction.
func Unitize(v Vec) Vec {
	l := v.Length()
	if l < Epsilon {
		return v
	}
	return v.DivScalar(l)
}

// Distance returns |a - b|.
func Distance(a, b Vec) float64 {
	return a.Sub(b).Length()
}

// Lerp interpolates between a (t=0) and b (t=1).
func Lerp(a, b Vec, t float64) Vec {
	return a.Add(b.Sub(a).MulScalar(t))
}

// WithZ returns v with its Z component replaced.
func WithZ(v Vec, z float64) Vec {
	return Vec{X: v.X, Y: v.Y, Z: z}
}

// Horizontal returns v with its Z component zeroed.
func Horizontal(v Vec) Vec {
	return Vec{X: v.X, Y: v.Y}
}

// VectorAngle returns the unsigned angle between a and b in radians.
// Degenerate input yields 0.
func VectorAngle(a, b Vec) float64 {
	la, lb := a.Length(), b.Length()
	if la < Epsilon || lb < Epsilon {
		return 0
	}
	c := a.Dot(b) / (la * lb)
	return math.Acos(clamp(c, -1, 1))
}

// VectorAngleDeg is VectorAngle in degrees.
func VectorAngleDeg(a, b Vec) float64 {
	return sdf.RtoD(VectorAngle(a, b))
}

// Rotate rotates v about axis by deg degrees (right hand rule). A zero axis
// leaves v unchanged.
func Rotate(v, axis Vec, deg float64) Vec {
	if IsZero(axis) {
		return v
	}
	m := sdf.Rotate3d(Unitize(axis), sdf.DtoR(deg))
	return m.MulPosition(v)
}

// Approx reports whether a and b are within tol of each other.
func Approx(a, b Vec, tol float64) bool {
	return Distance(a, b) <= tol
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
