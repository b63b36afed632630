package graph

import (
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/fgam/spatialam/pkg/geom"
)

// endpoint is an R-tree entry for one end of one segment.
type endpoint struct {
	seg  int // position in g.segments
	rect rtreego.Rect
}

func (e *endpoint) Bounds() rtreego.Rect {
	return e.rect
}

func toPoint(v geom.Vec) rtreego.Point {
	return rtreego.Point{v.X, v.Y, v.Z}
}

// connectIndexed fills the connection lists using an R-tree over segment
// endpoints as the broad phase. The exact distance test and the ordering of
// the resulting lists match connectAllPairs.
func (g *SpatialPaths) connectIndexed() {
	tol := g.opts.Tolerance
	// Boxes need a positive side length.
	half := tol
	if half <= 0 {
		half = geom.Epsilon
	}

	tree := rtreego.NewTree(3, 25, 50)
	for i, s := range g.segments {
		for _, p := range []geom.Vec{s.Line.From, s.Line.To} {
			tree.Insert(&endpoint{seg: i, rect: toPoint(p).ToRect(half)})
		}
	}

	near := func(self int, p geom.Vec) []SegmentID {
		hits := tree.SearchIntersect(toPoint(p).ToRect(half))
		idx := make([]int, 0, len(hits))
		seen := make(map[int]bool, len(hits))
		for _, h := range hits {
			e := h.(*endpoint)
			if e.seg == self || seen[e.seg] {
				continue
			}
			if g.segments[e.seg].Touches(p, tol) {
				seen[e.seg] = true
				idx = append(idx, e.seg)
			}
		}
		if len(idx) == 0 {
			return nil
		}
		sort.Ints(idx)
		ids := make([]SegmentID, len(idx))
		for i, j := range idx {
			ids[i] = g.segments[j].ID
		}
		return ids
	}

	for i, s := range g.segments {
		s.StartConnections = near(i, s.Line.From)
		s.EndConnections = near(i, s.Line.To)
	}
}
