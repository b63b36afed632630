// Package program assembles the ordered record stream a robot program is
// built from. For every segment it emits a pre-extrusion frame, one record
// per motion control point and a stop-extrusion frame, and inserts a
// lift-and-move traversal between segments that do not meet.
//
// Everything here is a pure function of its input. Record indices are
// assigned once the whole stream is known.
package program

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/fgam/spatialam/pkg/geom"
	"github.com/fgam/spatialam/pkg/graph"
)

// Kind identifies the role of a record in the stream.
type Kind int

const (
	Traversal Kind = iota
	PreExtrusion
	Motion
	StopExtrusion
)

func (k Kind) String() string {
	switch k {
	case Traversal:
		return "traversal"
	case PreExtrusion:
		return "pre-extrusion"
	case Motion:
		return "motion"
	case StopExtrusion:
		return "stop-extrusion"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Deviation holds the display-only angular diagnostics of a frame, in
// degrees.
type Deviation struct {
	X        float64 `codec:"x" json:"x"`
	Y        float64 `codec:"y" json:"y"`
	Rotation float64 `codec:"rotation" json:"rotation"`
}

// Record is one target of the robot program.
type Record struct {
	Index              int               `codec:"index" json:"index"`
	Kind               Kind              `codec:"kind" json:"kind"`
	Path               int               `codec:"path" json:"path"`
	Segment            int               `codec:"segment" json:"segment"`
	Orientation        graph.Orientation `codec:"orientation" json:"orientation"`
	Frame              geom.Frame        `codec:"frame" json:"frame"`
	VelocityRatio      float64           `codec:"velocityRatio" json:"velocityRatio"`
	ExtrusionAxisValue float64           `codec:"e5" json:"e5"`
	CoolingOn          bool              `codec:"coolingOn" json:"coolingOn"`
	ExtrudeOn          bool              `codec:"extrudeOn" json:"extrudeOn"`
	HeatOn             bool              `codec:"heatOn" json:"heatOn"`
	CycleWait          bool              `codec:"cycleWait" json:"cycleWait"`
	Deviation          Deviation         `codec:"deviation" json:"deviation"`
}

// Program is the assembled record stream.
type Program struct {
	Records     []Record           `codec:"records" json:"records"`
	Diagnostics []graph.Diagnostic `codec:"diagnostics" json:"diagnostics"`
	// Segments is the number of segments that produced records.
	Segments int `codec:"segments" json:"segments"`
	// Skipped is the number of degenerate segments left out.
	Skipped int `codec:"skipped" json:"skipped"`
	// Fallbacks counts frames built with a substitute axis.
	Fallbacks int `codec:"fallbacks" json:"fallbacks"`
}

// Count returns the number of records of kind k.
func (p *Program) Count(k Kind) int {
	return lo.CountBy(p.Records, func(r Record) bool { return r.Kind == k })
}

// Options holds the assembly constants.
type Options struct {
	// OrientationTolerance is not configured on its own. Callers copy it
	// from the graph options so analysis and assembly classify alike.
	OrientationTolerance float64 `yaml:"-"`
	// MinSegmentLength is the length below which a segment is skipped.
	MinSegmentLength float64 `yaml:"minSegmentLength"`

	PreExtrusionLift float64 `yaml:"preExtrusionLift"`
	BoundaryVelocity float64 `yaml:"boundaryVelocity"`
	ShortStopLength  float64 `yaml:"shortStopLength"`
	ShortStopLift    float64 `yaml:"shortStopLift"`

	TraversalGap      float64 `yaml:"traversalGap"`
	LiftHeight        float64 `yaml:"liftHeight"`
	TraversalVelocity float64 `yaml:"traversalVelocity"`
	// ApproachFactor scales TraversalVelocity for the move to the next start.
	ApproachFactor float64 `yaml:"approachFactor"`
	ApproachE5     float64 `yaml:"approachE5"`
}

// DefaultOptions returns the calibrated defaults.
func DefaultOptions() Options {
	return Options{
		OrientationTolerance: graph.DefaultOrientationTolerance,
		MinSegmentLength:     1e-6,
		PreExtrusionLift:     6,
		BoundaryVelocity:     0.05,
		ShortStopLength:      25,
		ShortStopLift:        4.5,
		TraversalGap:         10,
		LiftHeight:           70,
		TraversalVelocity:    1.0,
		ApproachFactor:       0.8,
		ApproachE5:           0.4,
	}
}
