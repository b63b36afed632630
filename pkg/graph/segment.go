package graph

import (
	"math"

	"github.com/fgam/spatialam/pkg/geom"
)

// DefaultOrientationTolerance is the direction-component threshold used to
// classify segments.
const DefaultOrientationTolerance = 0.01

// Classify returns the orientation of l under tol. The vertical test runs
// first, so a direction that is both near-vertical and near-horizontal under
// a loose tolerance resolves to Vertical.
func Classify(l geom.Line, tol float64) Orientation {
	d := l.Tangent()
	switch {
	case math.Abs(d.X) < tol && math.Abs(d.Y) < tol && math.Abs(d.Z) > tol:
		return Vertical
	case math.Abs(d.Z) < tol:
		return Horizontal
	case d.Z > 0:
		return AngledUp
	default:
		return AngledDown
	}
}

// InnerPointCount is the number of interior frames sampled along a segment
// of orientation o when a path is densified for preview.
func InnerPointCount(o Orientation) int {
	switch o {
	case Vertical:
		return 5
	case AngledUp, AngledDown:
		return 6
	default:
		return 2
	}
}

// PathSegment is one input line inside a SpatialPaths graph.
type PathSegment struct {
	ID          SegmentID   `codec:"id" json:"id"`
	Index       int         `codec:"index" json:"index"`
	Line        geom.Line   `codec:"line" json:"line"`
	Orientation Orientation `codec:"orientation" json:"orientation"`

	// Ids of segments with an endpoint within tolerance of Line.From / Line.To,
	// in input order.
	StartConnections []SegmentID `codec:"startConnections" json:"startConnections"`
	EndConnections   []SegmentID `codec:"endConnections" json:"endConnections"`
}

// NewPathSegment classifies l and assigns its id. Connections are filled in
// by the graph builder.
func NewPathSegment(index int, l geom.Line, orientationTol float64) *PathSegment {
	return &PathSegment{
		ID:          NewSegmentID(index, l),
		Index:       index,
		Line:        l,
		Orientation: Classify(l, orientationTol),
	}
}

// InnerPointCount returns the preview sample count for the segment.
func (s *PathSegment) InnerPointCount() int {
	return InnerPointCount(s.Orientation)
}

// InnerPoints returns InnerPointCount evenly spaced interior points.
func (s *PathSegment) InnerPoints() []geom.Vec {
	n := s.InnerPointCount()
	pts := make([]geom.Vec, 0, n)
	for i := 1; i <= n; i++ {
		pts = append(pts, s.Line.PointAt(float64(i)/float64(n+1)))
	}
	return pts
}

// Midpoint returns the midpoint of the segment's line.
func (s *PathSegment) Midpoint() geom.Vec {
	return s.Line.Midpoint()
}

// Touches reports whether p is within tol of either endpoint.
func (s *PathSegment) Touches(p geom.Vec, tol float64) bool {
	return geom.Distance(s.Line.From, p) < tol || geom.Distance(s.Line.To, p) < tol
}
