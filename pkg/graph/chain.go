package graph

import (
	"fmt"

	"github.com/fgam/spatialam/pkg/geom"
	"github.com/fgam/spatialam/pkg/logging"
)

// Chain is a bracing polyline assembled from vertical/angled pairs.
type Chain struct {
	Points geom.Polyline `codec:"points" json:"points"`
	// Pairs holds indices into the pair slice the chain was built from,
	// in the order they were attached.
	Pairs []int `codec:"pairs" json:"pairs"`
}

// chainLink is a pair resolved to geometry.
type chainLink struct {
	poly     geom.Polyline // base, top, tip
	vertical geom.Line
	angled   geom.Line
}

// BuildLongestChains concatenates pairs into polylines. Each unused pair
// seeds a chain; the chain then grows at its tail by a pair whose vertical
// touches the tail, and at its head by a pair whose angled segment touches
// the head. Extensions alternate: after a tail extension only the head may
// grow next, and after a head extension only the tail. Growth stops when
// neither end can be extended. Every pair whose geometry resolves ends up in
// exactly one chain; the others are reported as NoSharedEndpoint.
func (g *SpatialPaths) BuildLongestChains(pairs []Pair, tol float64) ([]Chain, []Diagnostic) {
	links := make([]*chainLink, len(pairs))
	used := make([]bool, len(pairs))
	var diags []Diagnostic
	for i, p := range pairs {
		poly, err := g.PairPolyline(p, tol)
		if err != nil {
			used[i] = true
			diags = append(diags, Diagnostic{
				Kind:     NoSharedEndpoint,
				Segment:  p.Vertical,
				Index:    i,
				Message:  fmt.Sprintf("pair %d dropped from chains: %v", i, err),
				Severity: SeverityError,
			})
			continue
		}
		links[i] = &chainLink{
			poly:     poly,
			vertical: g.byID[p.Vertical].Line,
			angled:   g.byID[p.Angled].Line,
		}
	}

	// touch returns the first unused pair whose line (selected by pick)
	// touches p, with the polyline index of the touching vertex. Candidate
	// vertices are tried in the order given.
	touch := func(p geom.Vec, pick func(*chainLink) geom.Line, vertices ...int) (int, int) {
		for i, l := range links {
			if used[i] || l == nil || !isEndpoint(pick(l), p, tol) {
				continue
			}
			for _, v := range vertices {
				if geom.Distance(l.poly[v], p) < tol {
					return i, v
				}
			}
		}
		return -1, -1
	}
	verticalOf := func(l *chainLink) geom.Line { return l.vertical }
	angledOf := func(l *chainLink) geom.Line { return l.angled }

	var chains []Chain
	for seed, l := range links {
		if used[seed] {
			continue
		}
		used[seed] = true
		pts := append(geom.Polyline{}, l.poly...)
		members := []int{seed}
		expectVerticalAtTail, expectAngledAtHead := true, true

		for {
			extended := false
			if expectVerticalAtTail {
				if i, at := touch(pts.Last(), verticalOf, 0, 1); i >= 0 {
					used[i] = true
					members = append(members, i)
					pts = append(pts, tailPoints(links[i].poly, at)...)
					expectVerticalAtTail, expectAngledAtHead = false, true
					extended = true
				}
			}
			if expectAngledAtHead {
				if i, at := touch(pts.First(), angledOf, 2, 1); i >= 0 {
					used[i] = true
					members = append(members, i)
					pts = append(headPoints(links[i].poly, at), pts...)
					expectAngledAtHead, expectVerticalAtTail = false, true
					extended = true
				}
			}
			if !extended {
				break
			}
		}
		chains = append(chains, Chain{Points: pts, Pairs: members})
	}

	logging.Logger().Debug("built chains", "pairs", len(pairs), "chains", len(chains))
	return chains, diags
}

// tailPoints returns the vertices of poly to append after the chain tail,
// which coincides with poly[at]. The touching vertex is dropped and the rest
// run away from it.
func tailPoints(poly geom.Polyline, at int) geom.Polyline {
	if at == len(poly)-1 {
		return poly[:at].Reverse()
	}
	return append(geom.Polyline{}, poly[at+1:]...)
}

// headPoints returns the vertices of poly to insert before the chain head,
// which coincides with poly[at]. The touching vertex is dropped and the rest
// run into the head.
func headPoints(poly geom.Polyline, at int) geom.Polyline {
	if at == 0 {
		return poly[1:].Reverse()
	}
	return append(geom.Polyline{}, poly[:at]...)
}

// BuildClusteredChains pairs and chains every cluster independently.
// Chain pair indices refer to the returned pair slice.
func (g *SpatialPaths) BuildClusteredChains(clusters []Cluster, tol float64) ([]Pair, []Chain, []Diagnostic) {
	var (
		allPairs  []Pair
		allChains []Chain
		diags     []Diagnostic
	)
	for _, c := range clusters {
		pairs, d := g.FindVerticalAngledPairs(c.Members, tol)
		diags = append(diags, d...)
		chains, d := g.BuildLongestChains(pairs, tol)
		diags = append(diags, d...)

		offset := len(allPairs)
		for _, ch := range chains {
			for k := range ch.Pairs {
				ch.Pairs[k] += offset
			}
			allChains = append(allChains, ch)
		}
		allPairs = append(allPairs, pairs...)
	}
	return allPairs, allChains, diags
}
