package engine

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/fgam/spatialam/pkg/geom"
)

// Path is a named polyline produced by a toolpath source.
type Path struct {
	Name   string        `codec:"name" json:"name"`
	Points geom.Polyline `codec:"points" json:"points"`
}

// Design is the ordered set of paths a source evaluates to.
type Design struct {
	Paths []Path `codec:"paths" json:"paths"`
}

// NewDesign returns an empty design.
func NewDesign() *Design {
	return &Design{}
}

// add registers points as a new path and returns its index.
func (d *Design) add(points geom.Polyline) int {
	idx := len(d.Paths)
	d.Paths = append(d.Paths, Path{Name: fmt.Sprintf("path-%d", idx+1), Points: points})
	return idx
}

// Lookup returns the path named name, or nil.
func (d *Design) Lookup(name string) *Path {
	for i := range d.Paths {
		if d.Paths[i].Name == name {
			return &d.Paths[i]
		}
	}
	return nil
}

// Polylines returns the points of every path in order.
func (d *Design) Polylines() []geom.Polyline {
	return lo.Map(d.Paths, func(p Path, _ int) geom.Polyline { return p.Points })
}

// Lines explodes every path into its segments.
func (d *Design) Lines() []geom.Line {
	return lo.FlatMap(d.Paths, func(p Path, _ int) []geom.Line { return p.Points.Segments() })
}
