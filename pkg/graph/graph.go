package graph

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/fgam/spatialam/pkg/geom"
	"github.com/fgam/spatialam/pkg/logging"
)

// Options controls graph construction and the analyses built on it.
type Options struct {
	// Tolerance is the endpoint coincidence distance for connectivity.
	Tolerance float64 `yaml:"connectivityTolerance"`
	// OrientationTolerance is the direction-component threshold for Classify.
	OrientationTolerance float64 `yaml:"orientationTolerance"`
	// ZLayerTolerance is the bucket size for layer clustering.
	ZLayerTolerance float64 `yaml:"zLayerTolerance"`
	// PairingTolerance is the shared-endpoint distance for pairing and chains.
	PairingTolerance float64 `yaml:"pairingTolerance"`
	// IndexThreshold is the segment count above which connectivity uses the
	// R-tree broad phase instead of the all-pairs scan.
	IndexThreshold int `yaml:"indexThreshold"`
}

// DefaultOptions returns the graph defaults.
func DefaultOptions() Options {
	return Options{
		Tolerance:            1e-6,
		OrientationTolerance: DefaultOrientationTolerance,
		ZLayerTolerance:      1e-3,
		PairingTolerance:     1e-6,
		IndexThreshold:       256,
	}
}

// SpatialPaths is the connectivity graph over a set of path segments.
// It is built once and not updated incrementally; rebuild it from the
// lines to change the input.
type SpatialPaths struct {
	opts      Options
	segments  []*PathSegment
	byID      map[SegmentID]*PathSegment
	adjacency map[SegmentID][]SegmentID

	// Diagnostics collected while building (skipped degenerate lines).
	Diagnostics []Diagnostic
}

// New builds a graph from lines. Lines shorter than opts.Tolerance are
// skipped and reported as DegenerateInput diagnostics.
func New(lines []geom.Line, opts Options) *SpatialPaths {
	g := &SpatialPaths{
		opts: opts,
		byID: make(map[SegmentID]*PathSegment, len(lines)),
	}
	for i, l := range lines {
		if l.IsDegenerate(opts.Tolerance) || l.Length() < geom.Epsilon {
			g.Diagnostics = append(g.Diagnostics, Diagnostic{
				Kind:     DegenerateInput,
				Index:    i,
				Message:  fmt.Sprintf("line %d has length %g, skipped", i, l.Length()),
				Severity: SeverityError,
			})
			continue
		}
		s := NewPathSegment(i, l, opts.OrientationTolerance)
		g.segments = append(g.segments, s)
		g.byID[s.ID] = s
	}

	if len(g.segments) > opts.IndexThreshold && opts.IndexThreshold > 0 {
		g.connectIndexed()
	} else {
		g.connectAllPairs()
	}
	g.buildAdjacency()

	logging.Logger().Info("graph built",
		"segments", len(g.segments),
		"skipped", len(g.Diagnostics),
		"indexed", len(g.segments) > opts.IndexThreshold && opts.IndexThreshold > 0)
	return g
}

// connectAllPairs fills the connection lists with the O(n²) scan.
func (g *SpatialPaths) connectAllPairs() {
	tol := g.opts.Tolerance
	for _, a := range g.segments {
		for _, b := range g.segments {
			if a == b {
				continue
			}
			if b.Touches(a.Line.From, tol) {
				a.StartConnections = append(a.StartConnections, b.ID)
			}
			if b.Touches(a.Line.To, tol) {
				a.EndConnections = append(a.EndConnections, b.ID)
			}
		}
	}
}

// buildAdjacency unions start and end connections per segment.
func (g *SpatialPaths) buildAdjacency() {
	g.adjacency = make(map[SegmentID][]SegmentID, len(g.segments))
	for _, s := range g.segments {
		all := make([]SegmentID, 0, len(s.StartConnections)+len(s.EndConnections))
		all = append(all, s.StartConnections...)
		all = append(all, s.EndConnections...)
		g.adjacency[s.ID] = lo.Uniq(all)
	}
}

// Options returns the options the graph was built with.
func (g *SpatialPaths) Options() Options {
	return g.opts
}

// Len returns the number of segments in the graph.
func (g *SpatialPaths) Len() int {
	return len(g.segments)
}

// Segments returns the segments in input order.
func (g *SpatialPaths) Segments() []*PathSegment {
	return g.segments
}

// Segment looks up a segment by id.
func (g *SpatialPaths) Segment(id SegmentID) (*PathSegment, bool) {
	s, ok := g.byID[id]
	return s, ok
}

// IDs returns all segment ids in input order.
func (g *SpatialPaths) IDs() []SegmentID {
	return lo.Map(g.segments, func(s *PathSegment, _ int) SegmentID { return s.ID })
}

// Neighbors returns the ids adjacent to id at either end.
func (g *SpatialPaths) Neighbors(id SegmentID) []SegmentID {
	return g.adjacency[id]
}

// Adjacent reports whether a and b share an endpoint within tolerance.
func (g *SpatialPaths) Adjacent(a, b SegmentID) bool {
	return lo.Contains(g.adjacency[a], b)
}
