package program

import (
	"math"
	"testing"

	"github.com/fgam/spatialam/pkg/geom"
	"github.com/fgam/spatialam/pkg/graph"
	"github.com/fgam/spatialam/pkg/motion"
	"github.com/fgam/spatialam/pkg/plane"
)

func build(t *testing.T, paths ...geom.Polyline) *Program {
	t.Helper()
	b := NewBuilder(DefaultOptions(), plane.DefaultOptions(), motion.DefaultPolicy())
	prog, err := b.Build(paths)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return prog
}

func kinds(p *Program) []Kind {
	out := make([]Kind, len(p.Records))
	for i, r := range p.Records {
		out[i] = r.Kind
	}
	return out
}

func TestSingleSegment(t *testing.T) {
	prog := build(t, geom.Polyline{geom.V(100, 0, 0), geom.V(100, 0, 10)})

	want := []Kind{PreExtrusion, Motion, Motion, StopExtrusion}
	got := kinds(prog)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", got, want)
		}
	}

	pre := prog.Records[0]
	if !geom.Approx(pre.Frame.Origin, geom.V(100, 0, 6), 1e-9) {
		t.Errorf("pre-extrusion origin = %v", pre.Frame.Origin)
	}
	if pre.VelocityRatio != 0.05 || !pre.ExtrudeOn || pre.CoolingOn || pre.HeatOn {
		t.Errorf("pre-extrusion = %+v", pre)
	}
	if pre.ExtrusionAxisValue != motion.DefaultPolicy().ExtrusionValue(graph.Vertical) {
		t.Errorf("pre-extrusion e5 = %v", pre.ExtrusionAxisValue)
	}

	stop := prog.Records[3]
	if !geom.Approx(stop.Frame.Origin, geom.V(100, 0, 14.5), 1e-9) {
		t.Errorf("short segment stop should be lifted, got %v", stop.Frame.Origin)
	}
	if stop.ExtrudeOn || stop.CoolingOn || stop.HeatOn || stop.VelocityRatio != 0.05 {
		t.Errorf("stop = %+v", stop)
	}
	if prog.Segments != 1 || prog.Skipped != 0 {
		t.Errorf("segments=%d skipped=%d", prog.Segments, prog.Skipped)
	}
}

func TestLongSegmentStopAtEnd(t *testing.T) {
	prog := build(t, geom.Polyline{geom.V(100, 0, 0), geom.V(100, 0, 40)})
	stop := prog.Records[len(prog.Records)-1]
	if stop.Kind != StopExtrusion {
		t.Fatalf("last record is %s", stop.Kind)
	}
	if !geom.Approx(stop.Frame.Origin, geom.V(100, 0, 40), 1e-9) {
		t.Errorf("stop origin = %v", stop.Frame.Origin)
	}
}

func TestTraversalInserted(t *testing.T) {
	prog := build(t,
		geom.Polyline{geom.V(100, 0, 0), geom.V(100, 0, 10)},
		geom.Polyline{geom.V(120, 0, 0), geom.V(120, 0, 10)},
	)
	if len(prog.Records) != 11 {
		t.Fatalf("expected 11 records, got %d: %v", len(prog.Records), kinds(prog))
	}
	if prog.Count(Traversal) != 3 {
		t.Fatalf("expected one traversal of 3 records, got %d", prog.Count(Traversal))
	}

	tr := prog.Records[4:7]
	wantAt := []geom.Vec{geom.V(100, 0, 10), geom.V(100, 0, 80), geom.V(120, 0, 80)}
	wantVel := []float64{1.0, 1.0, 0.8}
	wantE5 := []float64{0, 0, 0.4}
	for i, r := range tr {
		if r.Kind != Traversal {
			t.Fatalf("record %d is %s", r.Index, r.Kind)
		}
		if !geom.Approx(r.Frame.Origin, wantAt[i], 1e-9) {
			t.Errorf("traversal %d at %v, want %v", i, r.Frame.Origin, wantAt[i])
		}
		if math.Abs(r.VelocityRatio-wantVel[i]) > 1e-9 || math.Abs(r.ExtrusionAxisValue-wantE5[i]) > 1e-9 {
			t.Errorf("traversal %d vel=%v e5=%v", i, r.VelocityRatio, r.ExtrusionAxisValue)
		}
		if r.ExtrudeOn || r.CoolingOn || r.HeatOn {
			t.Errorf("traversal %d has events on", i)
		}
		if r.Segment != 1 || r.Path != 1 {
			t.Errorf("traversal %d belongs to segment %d path %d", i, r.Segment, r.Path)
		}
	}
	// Traversal frames share the axes of the following pre-extrusion frame.
	pre := prog.Records[7]
	if pre.Kind != PreExtrusion || !geom.Approx(tr[0].Frame.X, pre.Frame.X, 1e-12) {
		t.Errorf("traversal axes differ from pre-extrusion frame")
	}
}

func TestNoTraversalWithinGap(t *testing.T) {
	tests := []struct {
		name  string
		paths []geom.Polyline
	}{
		{"contiguous polyline", []geom.Polyline{{geom.V(100, 0, 0), geom.V(100, 0, 10), geom.V(110, 0, 10)}}},
		{"close paths", []geom.Polyline{
			{geom.V(100, 0, 0), geom.V(100, 0, 10)},
			{geom.V(105, 0, 10), geom.V(105, 0, 20)},
		}},
		{"exactly at gap", []geom.Polyline{
			{geom.V(100, 0, 0), geom.V(100, 0, 10)},
			{geom.V(110, 0, 10), geom.V(110, 0, 20)},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := build(t, tt.paths...)
			if n := prog.Count(Traversal); n != 0 {
				t.Errorf("expected no traversal, got %d records", n)
			}
			if prog.Segments != 2 {
				t.Errorf("segments = %d", prog.Segments)
			}
		})
	}
}

func TestRecordInvariants(t *testing.T) {
	prog := build(t,
		geom.Polyline{geom.V(100, 0, 0), geom.V(100, 0, 60), geom.V(140, 0, 90), geom.V(180, 0, 60)},
		geom.Polyline{geom.V(300, 50, 0), geom.V(340, 50, 0)},
	)
	for i, r := range prog.Records {
		if r.Index != i {
			t.Fatalf("record %d has index %d", i, r.Index)
		}
		if !r.Frame.IsValid(1e-6) {
			t.Errorf("record %d (%s) has invalid frame %+v", i, r.Kind, r.Frame)
		}
		if r.VelocityRatio <= 0 || r.VelocityRatio > 1 {
			t.Errorf("record %d velocity %v out of range", i, r.VelocityRatio)
		}
	}
	if got := prog.Count(PreExtrusion); got != 4 {
		t.Errorf("pre-extrusion records = %d, want 4", got)
	}
	if prog.Count(PreExtrusion) != prog.Count(StopExtrusion) {
		t.Errorf("unbalanced pre/stop records")
	}
}

func TestDegenerateSegmentSkipped(t *testing.T) {
	prog := build(t, geom.Polyline{geom.V(100, 0, 0), geom.V(100, 0, 0), geom.V(100, 0, 10)})
	if prog.Skipped != 1 || prog.Segments != 1 {
		t.Fatalf("skipped=%d segments=%d", prog.Skipped, prog.Segments)
	}
	if len(prog.Diagnostics) != 1 || prog.Diagnostics[0].Kind != graph.DegenerateInput {
		t.Errorf("diagnostics = %v", prog.Diagnostics)
	}
	if prog.Records[0].Segment != 1 {
		t.Errorf("first record belongs to segment %d", prog.Records[0].Segment)
	}
}

func TestEmptyInput(t *testing.T) {
	prog := build(t)
	if len(prog.Records) != 0 || prog.Segments != 0 {
		t.Errorf("expected empty program, got %+v", prog)
	}
}

func TestKindString(t *testing.T) {
	for k, want := range map[Kind]string{
		Traversal:     "traversal",
		PreExtrusion:  "pre-extrusion",
		Motion:        "motion",
		StopExtrusion: "stop-extrusion",
		Kind(9):       "Kind(9)",
	} {
		if k.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(k), k.String(), want)
		}
	}
}
