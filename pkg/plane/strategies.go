package plane

import (
	"github.com/fgam/spatialam/pkg/geom"
)

// tangentOf returns the unit override if given, else the segment tangent.
func tangentOf(l geom.Line, tangent *geom.Vec) geom.Vec {
	if tangent != nil && !geom.IsZero(*tangent) {
		return geom.Unitize(*tangent)
	}
	return l.Tangent()
}

// faceRoot returns the horizontal unit vector from ref toward the root,
// or world Y when ref is directly above or below it.
func (g *Generator) faceRoot(ref geom.Vec) (geom.Vec, bool) {
	y := geom.Unitize(geom.Horizontal(g.opts.Root.Sub(ref)))
	if geom.IsZero(y) {
		return geom.YAxis, true
	}
	return y, false
}

// vertical: Z down, Y facing the root horizontally, X = Y × Z.
func (g *Generator) vertical(_ geom.Line, ref geom.Vec, _ *geom.Vec) (geom.Frame, bool) {
	y, fallback := g.faceRoot(ref)
	z := geom.ZAxis.Neg()
	x := geom.Unitize(y.Cross(z))
	return build(ref, x, y, fallback)
}

// horizontal frames face the root exactly like vertical ones rather than
// following the segment.
func (g *Generator) horizontal(l geom.Line, ref geom.Vec, tangent *geom.Vec) (geom.Frame, bool) {
	return g.vertical(l, ref, tangent)
}

// closestToRoot returns the component of ref→root orthogonal to t,
// unitized, or t itself when that component vanishes.
func (g *Generator) closestToRoot(ref, t geom.Vec) (geom.Vec, bool) {
	toRoot := g.opts.Root.Sub(ref)
	y := geom.Unitize(toRoot.Sub(t.MulScalar(toRoot.Dot(t))))
	if geom.IsZero(y) {
		return t, true
	}
	return y, false
}

// angledUp: Y is the closest approach toward the root, Z down, X = Y × Z.
func (g *Generator) angledUp(l geom.Line, ref geom.Vec, tangent *geom.Vec) (geom.Frame, bool) {
	t := tangentOf(l, tangent)
	y, fallback := g.closestToRoot(ref, t)
	z := geom.ZAxis.Neg()
	x := geom.Unitize(y.Cross(z))
	if geom.IsZero(x) {
		x = geom.Unitize(geom.YAxis.Cross(y))
		fallback = true
	}
	return build(ref, x, y, fallback)
}

// riseAngle returns the angle in degrees between end→start and its
// horizontal projection. A vertical segment rises at 90°.
func riseAngle(l geom.Line) float64 {
	crv := l.From.Sub(l.To)
	projected := geom.WithZ(l.From, l.To.Z).Sub(l.To)
	if geom.IsZero(projected) {
		return 90
	}
	return geom.VectorAngleDeg(crv, projected)
}

// angledDown: Y follows the tangent, tilted back to TargetAngle when the
// segment rises steeper than SteepAngle. X = Z × Y, both negated, then both
// negated again if X ends up within 90° of world X. Short segments use the
// vertical construction.
func (g *Generator) angledDown(l geom.Line, ref geom.Vec, tangent *geom.Vec) (geom.Frame, bool) {
	if l.Length() < g.opts.ShortSegmentLength {
		return g.vertical(l, ref, tangent)
	}

	fallback := false
	y := tangentOf(l, tangent)
	if angle := riseAngle(l); angle > g.opts.SteepAngle {
		y = geom.Rotate(y, y.Cross(geom.ZAxis), angle-g.opts.TargetAngle)
	}

	x := geom.Unitize(geom.ZAxis.Cross(y)).Neg()
	y = y.Neg()
	if geom.IsZero(x) {
		x = geom.Unitize(geom.YAxis.Cross(y))
		fallback = true
	}
	if geom.VectorAngleDeg(x, geom.XAxis) < 90 {
		x, y = x.Neg(), y.Neg()
	}
	return build(ref, x, y, fallback)
}
