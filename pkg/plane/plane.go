// Package plane generates build frames along toolpath segments. Each
// orientation has its own construction rule; a table keyed by
// graph.Orientation selects it.
package plane

import (
	"fmt"

	"github.com/fgam/spatialam/pkg/geom"
	"github.com/fgam/spatialam/pkg/graph"
	"github.com/fgam/spatialam/pkg/logging"
)

// Options holds the plane generation constants.
type Options struct {
	// ShortSegmentLength is the length below which angled-down segments use
	// the vertical construction.
	ShortSegmentLength float64 `yaml:"shortSegmentLength"`
	// SteepAngle is the rise angle (degrees) above which angled-down frames
	// are rotated back.
	SteepAngle float64 `yaml:"steepAngle"`
	// TargetAngle is the rise angle (degrees) the rotation brings them to.
	TargetAngle float64 `yaml:"targetAngle"`
	// Root is the point frames face toward, normally the robot base.
	Root geom.Vec `yaml:"root"`
}

// DefaultOptions returns the calibrated defaults.
func DefaultOptions() Options {
	return Options{
		ShortSegmentLength: 80,
		SteepAngle:         45,
		TargetAngle:        35,
	}
}

// Result is a generated frame with its angular deviations from the world
// axes. The deviations are diagnostic only.
type Result struct {
	Frame          geom.Frame
	XAxisDeviation float64 // degrees between Frame.X and world X
	YAxisDeviation float64 // degrees between Frame.Y and world Y
	// Fallback is set when a degenerate axis forced a substitute.
	Fallback bool
}

// Func builds the frame for segment l at ref. tangent, when non-nil,
// replaces the segment direction.
type Func func(l geom.Line, ref geom.Vec, tangent *geom.Vec) Result

// strategy is the internal form of a Func; it returns the frame and whether
// a fallback axis was used.
type strategy func(g *Generator, l geom.Line, ref geom.Vec, tangent *geom.Vec) (geom.Frame, bool)

var strategies = map[graph.Orientation]strategy{
	graph.Vertical:   (*Generator).vertical,
	graph.Horizontal: (*Generator).horizontal,
	graph.AngledUp:   (*Generator).angledUp,
	graph.AngledDown: (*Generator).angledDown,
}

// Generator produces frames with a fixed set of options.
type Generator struct {
	opts Options
}

// New returns a Generator using opts.
func New(opts Options) *Generator {
	return &Generator{opts: opts}
}

// For returns the frame function for orientation o.
func (g *Generator) For(o graph.Orientation) (Func, error) {
	s, ok := strategies[o]
	if !ok {
		return nil, fmt.Errorf("plane generator for %s: %w", o, graph.ErrUnsupportedOrientation)
	}
	return func(l geom.Line, ref geom.Vec, tangent *geom.Vec) Result {
		f, fallback := s(g, l, ref, tangent)
		x, y := AxisDeviations(f)
		return Result{Frame: f, XAxisDeviation: x, YAxisDeviation: y, Fallback: fallback}
	}, nil
}

// Generate is shorthand for For(o) followed by a call.
func (g *Generator) Generate(o graph.Orientation, l geom.Line, ref geom.Vec, tangent *geom.Vec) (Result, error) {
	fn, err := g.For(o)
	if err != nil {
		return Result{}, err
	}
	return fn(l, ref, tangent), nil
}

// AxisDeviations returns the angles in degrees between the frame's X and Y
// axes and the world X and Y axes.
func AxisDeviations(f geom.Frame) (x, y float64) {
	return geom.VectorAngleDeg(f.X, geom.XAxis), geom.VectorAngleDeg(f.Y, geom.YAxis)
}

// RotationAngle returns the signed rotation in degrees from the world XY
// frame to f.
func RotationAngle(f geom.Frame) float64 {
	return f.RotationAngle(geom.WorldXY(f.Origin))
}

// toolDown is the frame used when every candidate axis is degenerate:
// tool Z pointing down, Y along world Y.
func toolDown(ref geom.Vec) geom.Frame {
	return geom.Frame{Origin: ref, X: geom.XAxis.Neg(), Y: geom.YAxis, Z: geom.ZAxis.Neg()}
}

// build orthonormalizes x and y into a frame at ref, falling back to
// toolDown if they are degenerate.
func build(ref, x, y geom.Vec, fallback bool) (geom.Frame, bool) {
	f, err := geom.NewFrame(ref, x, y)
	if err != nil {
		logging.Logger().Debug("plane fallback", "ref", ref, "err", err)
		return toolDown(ref), true
	}
	return f, fallback
}
