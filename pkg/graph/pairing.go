package graph

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/fgam/spatialam/pkg/geom"
	"github.com/fgam/spatialam/pkg/logging"
)

// Pair associates a vertical segment with the angled-down segment that
// shares its highest point.
type Pair struct {
	Vertical SegmentID `codec:"vertical" json:"vertical"`
	Angled   SegmentID `codec:"angled" json:"angled"`
	Top      geom.Vec  `codec:"top" json:"top"`
}

// SharedEndpoint returns the endpoint of a that coincides with an endpoint
// of b within tol.
func SharedEndpoint(a, b geom.Line, tol float64) (geom.Vec, error) {
	for _, p := range []geom.Vec{a.From, a.To} {
		for _, q := range []geom.Vec{b.From, b.To} {
			if geom.Distance(p, q) < tol {
				return p, nil
			}
		}
	}
	return geom.Vec{}, ErrNoSharedEndpoint
}

// PairPolyline returns [vertical base, shared top, angled tip] for a
// vertical and angled-down line that meet at one endpoint.
func PairPolyline(vertical, angled geom.Line, tol float64) (geom.Polyline, error) {
	top, err := SharedEndpoint(vertical, angled, tol)
	if err != nil {
		return nil, fmt.Errorf("pair polyline: %w", err)
	}
	base := vertical.From
	if geom.Distance(vertical.From, top) < tol {
		base = vertical.To
	}
	tip := angled.To
	if geom.Distance(angled.To, top) < tol {
		tip = angled.From
	}
	return geom.Polyline{base, top, tip}, nil
}

// PairPolyline resolves p's segments and returns its polyline.
func (g *SpatialPaths) PairPolyline(p Pair, tol float64) (geom.Polyline, error) {
	v, ok := g.byID[p.Vertical]
	if !ok {
		return nil, fmt.Errorf("pair polyline: unknown vertical %s", p.Vertical.Short())
	}
	a, ok := g.byID[p.Angled]
	if !ok {
		return nil, fmt.Errorf("pair polyline: unknown angled %s", p.Angled.Short())
	}
	return PairPolyline(v.Line, a.Line, tol)
}

// highestPoint returns the first endpoint with maximal Z among both lines,
// scanning a.From, a.To, b.From, b.To.
func highestPoint(a, b geom.Line) geom.Vec {
	best := a.From
	for _, p := range []geom.Vec{a.To, b.From, b.To} {
		if p.Z > best.Z {
			best = p
		}
	}
	return best
}

func isEndpoint(l geom.Line, p geom.Vec, tol float64) bool {
	return geom.Distance(l.From, p) < tol || geom.Distance(l.To, p) < tol
}

// FindVerticalAngledPairs pairs each vertical in members with the first
// unused angled-down segment whose highest point, taken over both
// segments, is an endpoint of both. Members are scanned in the given order,
// which makes the greedy assignment deterministic. Unmatched segments are
// reported as warnings.
func (g *SpatialPaths) FindVerticalAngledPairs(members []SegmentID, tol float64) ([]Pair, []Diagnostic) {
	segs := lo.FilterMap(members, func(id SegmentID, _ int) (*PathSegment, bool) {
		s, ok := g.byID[id]
		return s, ok
	})
	verticals := lo.Filter(segs, func(s *PathSegment, _ int) bool { return s.Orientation == Vertical })
	angleds := lo.Filter(segs, func(s *PathSegment, _ int) bool { return s.Orientation == AngledDown })

	usedAngled := make([]bool, len(angleds))
	var pairs []Pair
	var diags []Diagnostic
	for _, v := range verticals {
		matched := false
		for j, a := range angleds {
			if usedAngled[j] {
				continue
			}
			top := highestPoint(v.Line, a.Line)
			if isEndpoint(v.Line, top, tol) && isEndpoint(a.Line, top, tol) {
				usedAngled[j] = true
				pairs = append(pairs, Pair{Vertical: v.ID, Angled: a.ID, Top: top})
				matched = true
				break
			}
		}
		if !matched {
			diags = append(diags, unmatched(v))
		}
	}
	for j, a := range angleds {
		if !usedAngled[j] {
			diags = append(diags, unmatched(a))
		}
	}

	logging.Logger().Debug("paired cluster",
		"verticals", len(verticals), "angled", len(angleds), "pairs", len(pairs))
	return pairs, diags
}

func unmatched(s *PathSegment) Diagnostic {
	return Diagnostic{
		Kind:     UnmatchedSegment,
		Segment:  s.ID,
		Index:    s.Index,
		Message:  fmt.Sprintf("%s segment has no partner sharing its top point", s.Orientation),
		Severity: SeverityWarning,
	}
}
