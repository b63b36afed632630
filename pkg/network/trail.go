package network

import (
	"context"
	"slices"

	"github.com/samber/lo"

	"github.com/fgam/spatialam/pkg/geom"
	"github.com/fgam/spatialam/pkg/logging"
)

// Trail is a walk that uses every edge at most once.
type Trail struct {
	Nodes  []int   `codec:"nodes" json:"nodes"`
	Edges  []int   `codec:"edges" json:"edges"`
	Length float64 `codec:"length" json:"length"`
}

// Polyline returns the node positions along t.
func (n *Network) Polyline(t Trail) geom.Polyline {
	return lo.Map(t.Nodes, func(id int, _ int) geom.Vec { return n.Nodes[id].Point })
}

// checkEvery is the number of search steps between context checks.
const checkEvery = 1024

type search struct {
	n     *Network
	ctx   context.Context
	used  []bool
	nodes []int
	edges []int
	steps int
	best  Trail
	err   error
}

// LongestTrail returns the trail of greatest total length by exhaustive
// depth-first search. The search stops at the context deadline or after
// Options.TrailTimeout, whichever comes first; the best trail found so far
// is then returned together with the context error.
func (n *Network) LongestTrail(ctx context.Context) (Trail, error) {
	if n.opts.TrailTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.opts.TrailTimeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return Trail{}, err
	}

	s := &search{n: n, ctx: ctx, used: make([]bool, len(n.Edges))}
	for start := range n.Nodes {
		if n.Degree(start) == 0 {
			continue
		}
		s.nodes = append(s.nodes[:0], start)
		s.edges = s.edges[:0]
		s.visit(start, 0)
		if s.err != nil || len(s.best.Edges) == len(n.Edges) {
			break
		}
	}

	logging.Logger().Debug("longest trail",
		"edges", len(s.best.Edges), "length", s.best.Length, "steps", s.steps, "err", s.err)
	return s.best, s.err
}

func (s *search) visit(node int, length float64) {
	for _, id := range s.n.Nodes[node].Edges {
		if s.err != nil {
			return
		}
		if s.used[id] {
			continue
		}
		s.steps++
		if s.steps%checkEvery == 0 {
			if err := s.ctx.Err(); err != nil {
				s.err = err
				return
			}
		}

		e := s.n.Edges[id]
		next := e.Other(node)
		s.used[id] = true
		s.edges = append(s.edges, id)
		s.nodes = append(s.nodes, next)
		if l := length + e.Length; l > s.best.Length {
			s.best = Trail{Nodes: slices.Clone(s.nodes), Edges: slices.Clone(s.edges), Length: l}
		}
		s.visit(next, length+e.Length)
		s.nodes = s.nodes[:len(s.nodes)-1]
		s.edges = s.edges[:len(s.edges)-1]
		s.used[id] = false
	}
}
