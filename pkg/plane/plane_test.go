package plane

import (
	"errors"
	"math"
	"testing"

	"github.com/fgam/spatialam/pkg/geom"
	"github.com/fgam/spatialam/pkg/graph"
)

const eps = 1e-9

func generate(t *testing.T, o graph.Orientation, l geom.Line, ref geom.Vec) Result {
	t.Helper()
	res, err := New(DefaultOptions()).Generate(o, l, ref, nil)
	if err != nil {
		t.Fatalf("Generate(%s): %v", o, err)
	}
	return res
}

func sameVec(a, b geom.Vec) bool {
	return geom.Approx(a, b, 1e-6)
}

func TestFramesOrthonormal(t *testing.T) {
	lines := []geom.Line{
		geom.L(geom.V(100, 50, 0), geom.V(100, 50, 40)),
		geom.L(geom.V(100, 50, 0), geom.V(180, 90, 0)),
		geom.L(geom.V(-40, 10, 0), geom.V(-20, 30, 25)),
		geom.L(geom.V(0, 0, 200), geom.V(20, 0, 0)),
		geom.L(geom.V(0, 0, 30), geom.V(0, 100, 0)),
		geom.L(geom.V(5, 5, 5), geom.V(6, 5, 4)),
		geom.L(geom.V(0, 0, 0), geom.V(0, 0, 10)),
	}
	gen := New(DefaultOptions())
	for _, l := range lines {
		for _, o := range graph.Orientations {
			for _, ref := range []geom.Vec{l.From, l.Midpoint(), l.To, geom.Origin} {
				res, err := gen.Generate(o, l, ref, nil)
				if err != nil {
					t.Fatal(err)
				}
				if !res.Frame.IsValid(eps) {
					t.Fatalf("%s frame for %v at %v not orthonormal: %+v", o, l, ref, res.Frame)
				}
				if !sameVec(res.Frame.Origin, ref) {
					t.Fatalf("frame origin %v, want %v", res.Frame.Origin, ref)
				}
			}
		}
	}
}

func TestVerticalFacesRoot(t *testing.T) {
	l := geom.L(geom.V(10, 0, 0), geom.V(10, 0, 20))
	res := generate(t, graph.Vertical, l, geom.V(10, 0, 5))
	f := res.Frame
	if !sameVec(f.Y, geom.V(-1, 0, 0)) {
		t.Errorf("Y = %v, want toward origin", f.Y)
	}
	if !sameVec(f.Z, geom.V(0, 0, -1)) {
		t.Errorf("Z = %v, want down", f.Z)
	}
	if !sameVec(f.X, geom.V(0, -1, 0)) {
		t.Errorf("X = %v", f.X)
	}
	if res.Fallback {
		t.Error("unexpected fallback")
	}
	if math.Abs(res.XAxisDeviation-90) > 1e-6 || math.Abs(res.YAxisDeviation-90) > 1e-6 {
		t.Errorf("deviations = %v, %v", res.XAxisDeviation, res.YAxisDeviation)
	}
}

func TestVerticalAboveRootFallsBack(t *testing.T) {
	res := generate(t, graph.Vertical, geom.L(geom.Origin, geom.V(0, 0, 10)), geom.V(0, 0, 5))
	if !res.Fallback {
		t.Error("expected fallback above the root")
	}
	if !sameVec(res.Frame.Y, geom.YAxis) {
		t.Errorf("Y = %v, want world Y", res.Frame.Y)
	}
}

func TestCustomRoot(t *testing.T) {
	opts := DefaultOptions()
	opts.Root = geom.V(10, 0, 0)
	res, err := New(opts).Generate(graph.Vertical, geom.L(geom.Origin, geom.V(0, 0, 10)), geom.Origin, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !sameVec(res.Frame.Y, geom.XAxis) {
		t.Errorf("Y = %v, want toward root", res.Frame.Y)
	}
}

func TestHorizontalMatchesVertical(t *testing.T) {
	l := geom.L(geom.V(50, 20, 3), geom.V(90, 60, 3))
	ref := l.Midpoint()
	h := generate(t, graph.Horizontal, l, ref).Frame
	v := generate(t, graph.Vertical, l, ref).Frame
	if !sameVec(h.X, v.X) || !sameVec(h.Y, v.Y) {
		t.Errorf("horizontal frame %+v differs from vertical %+v", h, v)
	}
}

func TestAngledUpClosestToRoot(t *testing.T) {
	l := geom.L(geom.V(100, 0, 0), geom.V(110, 0, 10))
	ref := l.Midpoint()
	f := generate(t, graph.AngledUp, l, ref).Frame
	if math.Abs(f.Y.Dot(l.Tangent())) > 1e-9 {
		t.Errorf("Y %v not orthogonal to tangent", f.Y)
	}
	if f.Y.Dot(geom.Origin.Sub(ref)) <= 0 {
		t.Errorf("Y %v does not face the root", f.Y)
	}
	if math.Abs(f.X.Z) > 1e-9 {
		t.Errorf("X %v should be horizontal", f.X)
	}
}

func TestAngledUpTangentOverride(t *testing.T) {
	l := geom.L(geom.V(100, 0, 0), geom.V(110, 0, 10))
	ref := l.Midpoint()
	override := geom.V(0, 1, 1)
	res, err := New(DefaultOptions()).Generate(graph.AngledUp, l, ref, &override)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Frame.Y.Dot(geom.Unitize(override))) > 1e-9 {
		t.Errorf("Y %v not orthogonal to override", res.Frame.Y)
	}
}

func TestAngledDownShortUsesVertical(t *testing.T) {
	l := geom.L(geom.V(20, 0, 30), geom.V(40, 0, 0))
	ref := l.Midpoint()
	a := generate(t, graph.AngledDown, l, ref).Frame
	v := generate(t, graph.Vertical, l, ref).Frame
	if !sameVec(a.X, v.X) || !sameVec(a.Y, v.Y) {
		t.Errorf("short angled-down frame %+v, want vertical %+v", a, v)
	}
}

func TestAngledDownSteepIsCapped(t *testing.T) {
	l := geom.L(geom.V(0, 0, 200), geom.V(20, 0, 0))
	if riseAngle(l) <= 45 {
		t.Fatalf("test segment should be steep, rise %v", riseAngle(l))
	}
	f := generate(t, graph.AngledDown, l, l.Midpoint()).Frame
	rise := math.Asin(math.Abs(f.Y.Z)) * 180 / math.Pi
	if math.Abs(rise-35) > 1e-6 {
		t.Errorf("Y rise = %v degrees, want 35", rise)
	}
	if f.X.Dot(geom.XAxis) > 1e-9 {
		t.Errorf("X %v should not point along world X", f.X)
	}
}

func TestAngledDownShallowFlips(t *testing.T) {
	l := geom.L(geom.V(0, 0, 30), geom.V(0, 100, 0))
	f := generate(t, graph.AngledDown, l, l.Midpoint()).Frame
	if !sameVec(f.X, geom.XAxis.Neg()) {
		t.Errorf("X = %v, want -X", f.X)
	}
	if !sameVec(f.Y, l.Tangent()) {
		t.Errorf("Y = %v, want tangent %v", f.Y, l.Tangent())
	}
}

func TestRiseAngle(t *testing.T) {
	tests := []struct {
		name string
		l    geom.Line
		want float64
	}{
		{"45", geom.L(geom.V(0, 0, 10), geom.V(10, 0, 0)), 45},
		{"vertical", geom.L(geom.V(0, 0, 10), geom.V(0, 0, 0)), 90},
		{"flat", geom.L(geom.V(0, 0, 0), geom.V(10, 0, 0)), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := riseAngle(tt.l); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("riseAngle = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnsupportedOrientation(t *testing.T) {
	_, err := New(DefaultOptions()).For(graph.Orientation(42))
	if !errors.Is(err, graph.ErrUnsupportedOrientation) {
		t.Errorf("expected ErrUnsupportedOrientation, got %v", err)
	}
}

func TestRotationAngle(t *testing.T) {
	if got := RotationAngle(geom.WorldXY(geom.V(1, 2, 3))); math.Abs(got) > 1e-9 {
		t.Errorf("world frame rotation = %v", got)
	}
	// Vertical frame at +X: X=(0,-1,0), Y=(-1,0,0), Z=(0,0,-1) is a half
	// turn about the (1,-1,0) diagonal.
	f := generate(t, graph.Vertical, geom.L(geom.V(10, 0, 0), geom.V(10, 0, 20)), geom.V(10, 0, 5)).Frame
	if got := RotationAngle(f); math.Abs(got-180) > 1e-6 {
		t.Errorf("rotation = %v, want 180", got)
	}
}
