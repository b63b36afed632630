package geom

// Line is a straight segment between two points.
type Line struct {
	From Vec `codec:"from" json:"from"`
	To   Vec `codec:"to" json:"to"`
}

// L is shorthand for constructing a Line.
func L(from, to Vec) Line {
	return Line{From: from, To: to}
}

// Direction returns To - From.
func (l Line) Direction() Vec {
	return l.To.Sub(l.From)
}

// Tangent returns the unit direction. Zero for a degenerate line.
func (l Line) Tangent() Vec {
	return Unitize(l.Direction())
}

// Length returns the distance between the endpoints.
func (l Line) Length() float64 {
	return l.Direction().Length()
}

// Midpoint returns the point halfway along the line.
func (l Line) Midpoint() Vec {
	return l.PointAt(0.5)
}

// PointAt evaluates the line at normalized parameter t (0 = From, 1 = To).
func (l Line) PointAt(t float64) Vec {
	return Lerp(l.From, l.To, t)
}

// PointAtLength returns the point s units from From along the line,
// with s clamped to [0, Length].
func (l Line) PointAtLength(s float64) Vec {
	n := l.Length()
	if n < Epsilon {
		return l.From
	}
	return l.PointAt(clamp(s, 0, n) / n)
}

// PointAtLengthFromEnd returns the point s units back from To.
func (l Line) PointAtLengthFromEnd(s float64) Vec {
	return l.PointAtLength(l.Length() - s)
}

// Reverse swaps the endpoints.
func (l Line) Reverse() Line {
	return Line{From: l.To, To: l.From}
}

// IsDegenerate reports whether the line is shorter than tol.
func (l Line) IsDegenerate(tol float64) bool {
	return l.Length() < tol
}

// MaxZ returns the endpoint with the larger Z (From on ties).
func (l Line) MaxZ() Vec {
	if l.To.Z > l.From.Z {
		return l.To
	}
	return l.From
}

// Polyline is an ordered list of vertices.
type Polyline []Vec

// Length is the sum of the segment lengths.
func (p Polyline) Length() float64 {
	var n float64
	for _, s := range p.Segments() {
		n += s.Length()
	}
	return n
}

// Segments explodes the polyline into its straight segments.
func (p Polyline) Segments() []Line {
	if len(p) < 2 {
		return nil
	}
	out := make([]Line, 0, len(p)-1)
	for i := 1; i < len(p); i++ {
		out = append(out, Line{From: p[i-1], To: p[i]})
	}
	return out
}

// Reverse returns a copy with the vertex order reversed.
func (p Polyline) Reverse() Polyline {
	out := make(Polyline, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}

// First returns the first vertex, or the origin for an empty polyline.
func (p Polyline) First() Vec {
	if len(p) == 0 {
		return Origin
	}
	return p[0]
}

// Last returns the final vertex, or the origin for an empty polyline.
func (p Polyline) Last() Vec {
	if len(p) == 0 {
		return Origin
	}
	return p[len(p)-1]
}
