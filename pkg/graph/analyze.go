package graph

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/fgam/spatialam/pkg/logging"
)

// Analysis bundles the structural analyses of one graph.
type Analysis struct {
	Stats       map[Orientation]int `codec:"stats" json:"stats"`
	Clusters    []Cluster           `codec:"clusters" json:"clusters"`
	Pairs       []Pair              `codec:"pairs" json:"pairs"`
	Chains      []Chain             `codec:"chains" json:"chains"`
	Diagnostics []Diagnostic        `codec:"diagnostics" json:"diagnostics"`
}

// OrientationStats counts segments per orientation. Every orientation is
// present in the result, possibly with a zero count.
func (g *SpatialPaths) OrientationStats() map[Orientation]int {
	stats := lo.CountValuesBy(g.segments, func(s *PathSegment) Orientation { return s.Orientation })
	for _, o := range Orientations {
		if _, ok := stats[o]; !ok {
			stats[o] = 0
		}
	}
	return stats
}

// ConnectionReport returns one line per segment describing its connection
// counts and orientation.
func (g *SpatialPaths) ConnectionReport() []string {
	return lo.Map(g.segments, func(s *PathSegment, _ int) string {
		return fmt.Sprintf("Curve %d has %d connections at start, %d at end. Orientation: %s",
			s.Index, len(s.StartConnections), len(s.EndConnections), s.Orientation)
	})
}

// Analyze runs layer clustering, pairing and chain building over the whole
// graph using the graph's own tolerances.
func (g *SpatialPaths) Analyze() Analysis {
	clusters := g.FindZLayeredClusters(g.opts.ZLayerTolerance)
	pairs, chains, diags := g.BuildClusteredChains(clusters, g.opts.PairingTolerance)

	a := Analysis{
		Stats:    g.OrientationStats(),
		Clusters: clusters,
		Pairs:    pairs,
		Chains:   chains,
	}
	a.Diagnostics = append(a.Diagnostics, g.Diagnostics...)
	a.Diagnostics = append(a.Diagnostics, Validate(g)...)
	a.Diagnostics = append(a.Diagnostics, diags...)

	logging.Logger().Info("analysis complete",
		"clusters", len(clusters), "pairs", len(pairs), "chains", len(chains),
		"diagnostics", len(a.Diagnostics))
	return a
}
