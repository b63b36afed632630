package graph

import "fmt"

// Validate runs the read-only structural checks on a built graph and
// returns its findings. An empty result means nothing was flagged.
func Validate(g *SpatialPaths) []Diagnostic {
	var diags []Diagnostic
	diags = append(diags, validateIsolated(g)...)
	diags = append(diags, validateSymmetry(g)...)
	return diags
}

// validateIsolated flags segments connected to nothing when the graph has
// more than one segment.
func validateIsolated(g *SpatialPaths) []Diagnostic {
	if g.Len() < 2 {
		return nil
	}
	var diags []Diagnostic
	for _, s := range g.segments {
		if len(g.adjacency[s.ID]) == 0 {
			diags = append(diags, Diagnostic{
				Kind:     IsolatedSegment,
				Segment:  s.ID,
				Index:    s.Index,
				Message:  fmt.Sprintf("%s segment %d touches no other segment", s.Orientation, s.Index),
				Severity: SeverityWarning,
			})
		}
	}
	return diags
}

// validateSymmetry reports adjacency entries without a reverse entry.
// A correctly built graph never produces one.
func validateSymmetry(g *SpatialPaths) []Diagnostic {
	var diags []Diagnostic
	for _, s := range g.segments {
		for _, n := range g.adjacency[s.ID] {
			if !g.Adjacent(n, s.ID) {
				diags = append(diags, Diagnostic{
					Kind:     NoSharedEndpoint,
					Segment:  s.ID,
					Index:    s.Index,
					Message:  fmt.Sprintf("adjacent to %s but not the reverse", n.Short()),
					Severity: SeverityError,
				})
			}
		}
	}
	return diags
}
