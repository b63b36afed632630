package geom

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
)

// ErrDegenerateAxis is returned when frame axes cannot be built from the
// candidate vectors (zero length or parallel).
var ErrDegenerateAxis = errors.New("degenerate frame axis")

// Frame is an orthonormal, right-handed coordinate frame.
type Frame struct {
	Origin Vec `codec:"origin" json:"origin"`
	X      Vec `codec:"x" json:"x"`
	Y      Vec `codec:"y" json:"y"`
	Z      Vec `codec:"z" json:"z"`
}

// WorldXY returns the world frame translated to origin.
func WorldXY(origin Vec) Frame {
	return Frame{Origin: origin, X: XAxis, Y: YAxis, Z: ZAxis}
}

// NewFrame builds a frame whose X axis points along x and whose Y axis lies
// in the plane spanned by x and y. The result is orthonormalized:
// X = unit(x), Z = unit(X × y), Y = Z × X.
func NewFrame(origin, x, y Vec) (Frame, error) {
	if IsZero(x) || IsZero(y) {
		return Frame{}, fmt.Errorf("new frame: zero axis: %w", ErrDegenerateAxis)
	}
	ux := Unitize(x)
	z := ux.Cross(y)
	if z.Length() < 1e-9*y.Length() {
		return Frame{}, fmt.Errorf("new frame: parallel axes: %w", ErrDegenerateAxis)
	}
	uz := Unitize(z)
	return Frame{Origin: origin, X: ux, Y: uz.Cross(ux), Z: uz}, nil
}

// WithOrigin returns a copy of f moved to origin.
func (f Frame) WithOrigin(origin Vec) Frame {
	f.Origin = origin
	return f
}

// IsValid reports whether every component is finite and the axes are
// orthonormal within eps.
func (f Frame) IsValid(eps float64) bool {
	for _, v := range []Vec{f.Origin, f.X, f.Y, f.Z} {
		if !finite(v) {
			return false
		}
	}
	return math.Abs(f.X.Length()-1) < eps &&
		math.Abs(f.Y.Length()-1) < eps &&
		math.Abs(f.Z.Length()-1) < eps &&
		math.Abs(f.X.Dot(f.Y)) < eps &&
		math.Abs(f.Y.Dot(f.Z)) < eps &&
		math.Abs(f.Z.Dot(f.X)) < eps
}

// RotationAngle returns the angle in degrees of the rotation that maps ref
// onto f, computed from the trace of the plane-to-plane transform. The
// angle is negative when the transform is a reflection.
func (f Frame) RotationAngle(ref Frame) float64 {
	trace := f.X.Dot(ref.X) + f.Y.Dot(ref.Y) + f.Z.Dot(ref.Z)
	angle := sdf.RtoD(math.Acos(clamp((trace-1)/2, -1, 1)))
	if determinant(f)*determinant(ref) < 0 {
		angle = -angle
	}
	return angle
}

func determinant(f Frame) float64 {
	return f.X.Dot(f.Y.Cross(f.Z))
}

func finite(v Vec) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
