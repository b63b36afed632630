// Package network models a printed lattice as an undirected graph of merged
// nodes and straight edges, and searches it for the longest continuous
// trail a single extrusion could follow.
package network

import (
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/fgam/spatialam/pkg/geom"
	"github.com/fgam/spatialam/pkg/logging"
)

// Class is the angle class of an edge relative to world Z.
type Class int

const (
	Vertical Class = iota
	Horizontal
	Angled
)

func (c Class) String() string {
	switch c {
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	case Angled:
		return "angled"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// Options configures node merging, edge classification and the trail
// search.
type Options struct {
	// MergeTolerance is the distance within which endpoints become one node.
	MergeTolerance float64 `yaml:"mergeTolerance"`
	// VerticalAngle is the maximum deviation from Z, in degrees, of a
	// vertical edge.
	VerticalAngle float64 `yaml:"verticalAngle"`
	// HorizontalAngle is the maximum deviation from the XY plane, in
	// degrees, of a horizontal edge.
	HorizontalAngle float64 `yaml:"horizontalAngle"`
	// TrailTimeout bounds LongestTrail. Zero means no bound beyond the
	// caller's context.
	TrailTimeout time.Duration `yaml:"trailTimeout"`
}

// DefaultOptions returns the defaults.
func DefaultOptions() Options {
	return Options{
		MergeTolerance:  1e-3,
		VerticalAngle:   10,
		HorizontalAngle: 10,
		TrailTimeout:    5 * time.Second,
	}
}

// Node is a merged endpoint.
type Node struct {
	ID    int      `codec:"id" json:"id"`
	Point geom.Vec `codec:"point" json:"point"`
	// Edges lists the incident edge ids in insertion order.
	Edges []int `codec:"edges" json:"edges"`
}

// Edge is one input line between two nodes.
type Edge struct {
	ID     int       `codec:"id" json:"id"`
	A      int       `codec:"a" json:"a"`
	B      int       `codec:"b" json:"b"`
	Line   geom.Line `codec:"line" json:"line"`
	Length float64   `codec:"length" json:"length"`
	Class  Class     `codec:"class" json:"class"`
	// Low and High are the node ids of the lower and upper endpoints.
	Low  int     `codec:"low" json:"low"`
	High int     `codec:"high" json:"high"`
	ZMin float64 `codec:"zMin" json:"zMin"`
	ZMax float64 `codec:"zMax" json:"zMax"`
}

// Other returns the endpoint of e that is not node.
func (e Edge) Other(node int) int {
	if e.A == node {
		return e.B
	}
	return e.A
}

type cell [3]int64

// Network is the merged node/edge graph.
type Network struct {
	opts    Options
	Nodes   []Node
	Edges   []Edge
	buckets map[cell][]int
	// Skipped counts input lines shorter than the merge tolerance.
	Skipped int
}

// New builds the network for lines.
func New(lines []geom.Line, opts Options) *Network {
	n := &Network{opts: opts, buckets: make(map[cell][]int)}
	cosVertical := math.Cos(opts.VerticalAngle * math.Pi / 180)
	sinHorizontal := math.Sin(opts.HorizontalAngle * math.Pi / 180)

	for _, l := range lines {
		if l.Length() < opts.MergeTolerance {
			n.Skipped++
			continue
		}
		a, b := n.node(l.From), n.node(l.To)
		if a == b {
			n.Skipped++
			continue
		}
		e := Edge{ID: len(n.Edges), A: a, B: b, Line: geom.L(n.Nodes[a].Point, n.Nodes[b].Point)}
		e.Length = e.Line.Length()
		e.Class = classify(e.Line.Tangent(), cosVertical, sinHorizontal)
		e.Low, e.High = a, b
		if n.Nodes[a].Point.Z > n.Nodes[b].Point.Z {
			e.Low, e.High = b, a
		}
		e.ZMin = math.Min(e.Line.From.Z, e.Line.To.Z)
		e.ZMax = math.Max(e.Line.From.Z, e.Line.To.Z)

		n.Edges = append(n.Edges, e)
		n.Nodes[a].Edges = append(n.Nodes[a].Edges, e.ID)
		n.Nodes[b].Edges = append(n.Nodes[b].Edges, e.ID)
	}

	logging.Logger().Debug("network built",
		"nodes", len(n.Nodes), "edges", len(n.Edges), "skipped", n.Skipped)
	return n
}

func classify(d geom.Vec, cosVertical, sinHorizontal float64) Class {
	cosZ := math.Abs(d.Dot(geom.ZAxis))
	switch {
	case cosZ >= cosVertical:
		return Vertical
	case cosZ <= sinHorizontal:
		return Horizontal
	default:
		return Angled
	}
}

func (n *Network) key(p geom.Vec) cell {
	tol := n.opts.MergeTolerance
	return cell{
		int64(math.Floor(p.X / tol)),
		int64(math.Floor(p.Y / tol)),
		int64(math.Floor(p.Z / tol)),
	}
}

// node returns the id of the node within MergeTolerance of p, creating one
// if none exists. The 27 cells around p are searched so points straddling
// a cell boundary still merge.
func (n *Network) node(p geom.Vec) int {
	k := n.key(p)
	tol2 := n.opts.MergeTolerance * n.opts.MergeTolerance
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, id := range n.buckets[cell{k[0] + dx, k[1] + dy, k[2] + dz}] {
					if d := n.Nodes[id].Point.Sub(p); d.Dot(d) <= tol2 {
						return id
					}
				}
			}
		}
	}
	id := len(n.Nodes)
	n.Nodes = append(n.Nodes, Node{ID: id, Point: p})
	n.buckets[k] = append(n.buckets[k], id)
	return id
}

// ClassCounts returns the number of edges in each class.
func (n *Network) ClassCounts() map[Class]int {
	counts := lo.CountValuesBy(n.Edges, func(e Edge) Class { return e.Class })
	for _, c := range []Class{Vertical, Horizontal, Angled} {
		if _, ok := counts[c]; !ok {
			counts[c] = 0
		}
	}
	return counts
}

// Degree returns the number of edges incident to node.
func (n *Network) Degree(node int) int {
	return len(n.Nodes[node].Edges)
}
