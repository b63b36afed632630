package program

import (
	"fmt"

	"github.com/fgam/spatialam/pkg/geom"
	"github.com/fgam/spatialam/pkg/graph"
	"github.com/fgam/spatialam/pkg/logging"
	"github.com/fgam/spatialam/pkg/motion"
	"github.com/fgam/spatialam/pkg/plane"
)

// Builder assembles programs with a fixed configuration.
type Builder struct {
	opts   Options
	planes *plane.Generator
	policy motion.Policy
}

// NewBuilder returns a Builder.
func NewBuilder(opts Options, planes plane.Options, policy motion.Policy) *Builder {
	return &Builder{opts: opts, planes: plane.New(planes), policy: policy}
}

// segment is one input line with its position.
type segment struct {
	path, index int
	line        geom.Line
}

// flatten explodes paths into segments in order.
func flatten(paths []geom.Polyline) []segment {
	var out []segment
	for i, p := range paths {
		for _, l := range p.Segments() {
			out = append(out, segment{path: i, index: len(out), line: l})
		}
	}
	return out
}

// Build assembles the program for paths. Degenerate segments are skipped
// and reported; an orientation without a plane or motion strategy aborts
// the build.
func (b *Builder) Build(paths []geom.Polyline) (*Program, error) {
	prog := &Program{}
	var (
		records     []Record
		prevEnd     geom.Vec
		hasPrevious bool
	)
	for _, seg := range flatten(paths) {
		if seg.line.Length() < b.opts.MinSegmentLength || seg.line.Length() < geom.Epsilon {
			prog.Skipped++
			prog.Diagnostics = append(prog.Diagnostics, graph.Diagnostic{
				Kind:     graph.DegenerateInput,
				Index:    seg.index,
				Message:  fmt.Sprintf("segment %d of path %d has zero length, skipped", seg.index, seg.path),
				Severity: graph.SeverityError,
			})
			logging.Logger().Warn("skipped degenerate segment", "path", seg.path, "segment", seg.index)
			continue
		}

		recs, fallbacks, err := b.segmentRecords(seg, prevEnd, hasPrevious)
		if err != nil {
			return nil, fmt.Errorf("segment %d of path %d: %w", seg.index, seg.path, err)
		}
		records = append(records, recs...)
		prog.Fallbacks += fallbacks
		prog.Segments++
		prevEnd, hasPrevious = seg.line.To, true
	}

	for i := range records {
		records[i].Index = i
	}
	prog.Records = records

	logging.Logger().Info("program assembled",
		"segments", prog.Segments, "records", len(records),
		"traversals", prog.Count(Traversal)/3, "skipped", prog.Skipped)
	return prog, nil
}

// segmentRecords returns the records for one segment, preceded by a
// traversal when the previous segment ended more than TraversalGap away.
func (b *Builder) segmentRecords(seg segment, prevEnd geom.Vec, hasPrevious bool) ([]Record, int, error) {
	l := seg.line
	o := graph.Classify(l, b.opts.OrientationTolerance)
	frameFor, err := b.planes.For(o)
	if err != nil {
		return nil, 0, err
	}
	points, err := motion.ControlPoints(o, l, b.policy)
	if err != nil {
		return nil, 0, err
	}
	e5 := b.policy.ExtrusionValue(o)

	fallbacks := 0
	record := func(kind Kind, at geom.Vec) Record {
		res := frameFor(l, at, nil)
		if res.Fallback {
			fallbacks++
		}
		return Record{
			Kind:        kind,
			Path:        seg.path,
			Segment:     seg.index,
			Orientation: o,
			Frame:       res.Frame,
			Deviation: Deviation{
				X:        res.XAxisDeviation,
				Y:        res.YAxisDeviation,
				Rotation: plane.RotationAngle(res.Frame),
			},
		}
	}

	var out []Record
	pre := record(PreExtrusion, l.From.Add(geom.V(0, 0, b.opts.PreExtrusionLift)))
	pre.VelocityRatio = b.opts.BoundaryVelocity
	pre.ExtrusionAxisValue = e5
	pre.ExtrudeOn = true

	if hasPrevious && geom.Distance(prevEnd, l.From) > b.opts.TraversalGap {
		out = append(out, b.traversal(seg, o, prevEnd, pre.Frame)...)
	}
	out = append(out, pre)

	for _, cp := range points {
		r := record(Motion, cp.Point)
		r.VelocityRatio = cp.VelocityRatio
		r.ExtrusionAxisValue = cp.ExtrusionRate
		r.CoolingOn = cp.CoolingOn
		r.ExtrudeOn = cp.ExtrudeOn
		r.HeatOn = cp.HeatOn
		r.CycleWait = cp.CycleWait
		out = append(out, r)
	}

	stopAt := l.To
	if l.Length() < b.opts.ShortStopLength {
		stopAt = stopAt.Add(geom.V(0, 0, b.opts.ShortStopLift))
	}
	stop := record(StopExtrusion, stopAt)
	stop.VelocityRatio = b.opts.BoundaryVelocity
	stop.ExtrusionAxisValue = e5
	out = append(out, stop)

	return out, fallbacks, nil
}

// traversal returns the three records that end the previous segment, lift
// clear of the part and move above the next pre-extrusion point. All three
// reuse the axes of the next pre-extrusion frame.
func (b *Builder) traversal(seg segment, o graph.Orientation, prevEnd geom.Vec, next geom.Frame) []Record {
	lift := prevEnd.Add(geom.V(0, 0, b.opts.LiftHeight))
	approach := geom.WithZ(next.Origin, lift.Z)

	rec := func(at geom.Vec, vel, e5 float64) Record {
		f := next.WithOrigin(at)
		x, y := plane.AxisDeviations(f)
		return Record{
			Kind:               Traversal,
			Path:               seg.path,
			Segment:            seg.index,
			Orientation:        o,
			Frame:              f,
			VelocityRatio:      vel,
			ExtrusionAxisValue: e5,
			Deviation:          Deviation{X: x, Y: y, Rotation: plane.RotationAngle(f)},
		}
	}
	return []Record{
		rec(prevEnd, b.opts.TraversalVelocity, 0),
		rec(lift, b.opts.TraversalVelocity, 0),
		rec(approach, b.opts.TraversalVelocity*b.opts.ApproachFactor, b.opts.ApproachE5),
	}
}
