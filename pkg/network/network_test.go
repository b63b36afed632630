package network

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/fgam/spatialam/pkg/geom"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNodeMerging(t *testing.T) {
	lines := []geom.Line{
		geom.L(geom.V(0, 0, 0), geom.V(0, 0, 10)),
		geom.L(geom.V(0, 0, 10.0004), geom.V(10, 0, 10)),
		geom.L(geom.V(10, 0, 10), geom.V(10, 0, 0)),
	}
	n := New(lines, DefaultOptions())
	if len(n.Nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(n.Nodes))
	}
	if n.Edges[0].B != n.Edges[1].A {
		t.Errorf("endpoints within tolerance were not merged")
	}
	if n.Degree(n.Edges[0].B) != 2 {
		t.Errorf("merged node degree = %d", n.Degree(n.Edges[0].B))
	}
	// The merged node keeps the first point seen.
	if got := n.Edges[1].Line.From; !geom.Approx(got, geom.V(0, 0, 10), 0) {
		t.Errorf("edge 1 starts at %v", got)
	}
}

func TestNodeMergingAcrossCells(t *testing.T) {
	// 0.0009999 and 0.0010001 fall in different 1e-3 cells.
	lines := []geom.Line{
		geom.L(geom.V(0.0009999, 0, 0), geom.V(5, 0, 0)),
		geom.L(geom.V(0.0010001, 0, 0), geom.V(0, 5, 0)),
	}
	n := New(lines, DefaultOptions())
	if n.Edges[0].A != n.Edges[1].A {
		t.Errorf("points straddling a cell boundary were not merged")
	}
	if len(n.Nodes) != 3 {
		t.Errorf("expected 3 nodes, got %d", len(n.Nodes))
	}
}

func TestShortEdgesSkipped(t *testing.T) {
	lines := []geom.Line{
		geom.L(geom.V(0, 0, 0), geom.V(0, 0, 0.0001)),
		geom.L(geom.V(0, 0, 0), geom.V(0, 0, 1)),
	}
	n := New(lines, DefaultOptions())
	if len(n.Edges) != 1 || n.Skipped != 1 {
		t.Errorf("edges=%d skipped=%d", len(n.Edges), n.Skipped)
	}
}

func TestEdgeClassification(t *testing.T) {
	tests := []struct {
		name string
		to   geom.Vec
		want Class
	}{
		{"straight up", geom.V(0, 0, 10), Vertical},
		{"straight down", geom.V(0, 0, -10), Vertical},
		{"5 degrees off vertical", geom.V(math.Sin(5*math.Pi/180), 0, math.Cos(5*math.Pi/180)), Vertical},
		{"flat", geom.V(10, 0, 0), Horizontal},
		{"4 degree slope", geom.V(math.Cos(4*math.Pi/180), 0, math.Sin(4*math.Pi/180)), Horizontal},
		{"45 degrees", geom.V(10, 0, 10), Angled},
		{"45 degrees down", geom.V(10, 10, -10), Angled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New([]geom.Line{geom.L(geom.Origin, tt.to)}, DefaultOptions())
			if got := n.Edges[0].Class; got != tt.want {
				t.Errorf("class = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLowHighNodes(t *testing.T) {
	n := New([]geom.Line{geom.L(geom.V(0, 0, 10), geom.V(5, 0, 2))}, DefaultOptions())
	e := n.Edges[0]
	if n.Nodes[e.Low].Point.Z != 2 || n.Nodes[e.High].Point.Z != 10 {
		t.Errorf("low=%v high=%v", n.Nodes[e.Low].Point, n.Nodes[e.High].Point)
	}
	if e.ZMin != 2 || e.ZMax != 10 {
		t.Errorf("z range = [%v, %v]", e.ZMin, e.ZMax)
	}
}

func TestClassCounts(t *testing.T) {
	n := New([]geom.Line{
		geom.L(geom.V(0, 0, 0), geom.V(0, 0, 10)),
		geom.L(geom.V(0, 0, 10), geom.V(10, 0, 0)),
	}, DefaultOptions())
	c := n.ClassCounts()
	if c[Vertical] != 1 || c[Angled] != 1 || c[Horizontal] != 0 {
		t.Errorf("counts = %v", c)
	}
	if _, ok := c[Horizontal]; !ok {
		t.Errorf("zero classes should be present")
	}
	empty := New(nil, DefaultOptions()).ClassCounts()
	if len(empty) != 3 || empty[Vertical] != 0 || empty[Horizontal] != 0 || empty[Angled] != 0 {
		t.Errorf("empty network counts = %v", empty)
	}
}

func TestLongestTrail(t *testing.T) {
	// A unit square with a 5 long spur: the square plus the spur forms
	// an open trail covering every edge.
	lines := []geom.Line{
		geom.L(geom.V(0, 0, 0), geom.V(1, 0, 0)),
		geom.L(geom.V(1, 0, 0), geom.V(1, 1, 0)),
		geom.L(geom.V(1, 1, 0), geom.V(0, 1, 0)),
		geom.L(geom.V(0, 1, 0), geom.V(0, 0, 0)),
		geom.L(geom.V(0, 0, 0), geom.V(0, 0, 5)),
	}
	n := New(lines, DefaultOptions())
	trail, err := n.LongestTrail(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !approx(trail.Length, 9) || len(trail.Edges) != 5 {
		t.Errorf("trail length=%v edges=%d", trail.Length, len(trail.Edges))
	}
	if len(trail.Nodes) != len(trail.Edges)+1 {
		t.Errorf("trail has %d nodes for %d edges", len(trail.Nodes), len(trail.Edges))
	}
	if pl := n.Polyline(trail); !approx(pl.Length(), trail.Length) {
		t.Errorf("polyline length %v != trail length %v", pl.Length(), trail.Length)
	}
}

func TestLongestTrailBranching(t *testing.T) {
	// A star with three arms: only two arms can be walked.
	lines := []geom.Line{
		geom.L(geom.Origin, geom.V(3, 0, 0)),
		geom.L(geom.Origin, geom.V(0, 2, 0)),
		geom.L(geom.Origin, geom.V(0, 0, 1)),
	}
	trail, err := New(lines, DefaultOptions()).LongestTrail(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !approx(trail.Length, 5) || len(trail.Edges) != 2 {
		t.Errorf("trail length=%v edges=%v", trail.Length, trail.Edges)
	}
}

func TestLongestTrailCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n := New([]geom.Line{geom.L(geom.Origin, geom.V(1, 0, 0))}, DefaultOptions())
	_, err := n.LongestTrail(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLongestTrailEmpty(t *testing.T) {
	trail, err := New(nil, DefaultOptions()).LongestTrail(context.Background())
	if err != nil || len(trail.Edges) != 0 {
		t.Errorf("trail=%+v err=%v", trail, err)
	}
}

func TestClassString(t *testing.T) {
	if Vertical.String() != "vertical" || Angled.String() != "angled" || Class(7).String() != "Class(7)" {
		t.Errorf("unexpected class names")
	}
}
