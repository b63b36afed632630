package graph

import (
	"math"

	"github.com/samber/lo"
)

// Cluster is one connected component of segments inside one Z layer.
type Cluster struct {
	Layer   float64     `codec:"layer" json:"layer"`
	Members []SegmentID `codec:"members" json:"members"`
}

// layerKey returns the integer bucket for height z.
func layerKey(z, zTol float64) int64 {
	return int64(math.Round(z / zTol))
}

// LayerOf returns the rounded bucket height for z: round(z/zTol)*zTol.
func LayerOf(z, zTol float64) float64 {
	return float64(layerKey(z, zTol)) * zTol
}

// GroupByZ buckets segment ids by rounded midpoint height. Buckets are
// returned in order of first appearance, members in input order.
func (g *SpatialPaths) GroupByZ(zTol float64) []Cluster {
	var order []int64
	buckets := make(map[int64][]SegmentID)
	for _, s := range g.segments {
		k := layerKey(s.Midpoint().Z, zTol)
		if _, ok := buckets[k]; !ok {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], s.ID)
	}
	return lo.Map(order, func(k int64, _ int) Cluster {
		return Cluster{Layer: float64(k) * zTol, Members: buckets[k]}
	})
}

// FindZLayeredClusters groups segments by layer, then splits each layer into
// connected components using only neighbors in the same layer. A segment
// with no neighbors forms its own cluster.
func (g *SpatialPaths) FindZLayeredClusters(zTol float64) []Cluster {
	var clusters []Cluster
	for _, layer := range g.GroupByZ(zTol) {
		inLayer := make(map[SegmentID]bool, len(layer.Members))
		for _, id := range layer.Members {
			inLayer[id] = true
		}
		for _, members := range g.components(layer.Members, func(id SegmentID) bool { return inLayer[id] }) {
			clusters = append(clusters, Cluster{Layer: layer.Layer, Members: members})
		}
	}
	return clusters
}

// FindClusters returns the connected components of the whole graph,
// ignoring layers. Layer is left at zero.
func (g *SpatialPaths) FindClusters() []Cluster {
	comps := g.components(g.IDs(), func(SegmentID) bool { return true })
	return lo.Map(comps, func(m []SegmentID, _ int) Cluster {
		return Cluster{Members: m}
	})
}

// components labels connected components among ids with an iterative
// depth-first search. allow restricts which neighbors may be followed.
func (g *SpatialPaths) components(ids []SegmentID, allow func(SegmentID) bool) [][]SegmentID {
	visited := make(map[SegmentID]bool, len(ids))
	var out [][]SegmentID
	for _, root := range ids {
		if visited[root] {
			continue
		}
		var comp []SegmentID
		stack := []SegmentID{root}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[id] {
				continue
			}
			visited[id] = true
			comp = append(comp, id)
			for _, n := range g.adjacency[id] {
				if !visited[n] && allow(n) {
					stack = append(stack, n)
				}
			}
		}
		out = append(out, comp)
	}
	return out
}
