// Package motion turns a toolpath segment into the ordered control points
// the robot executes along it: where extrusion starts and stops, when the
// nozzle cooling switches, how fast to move and where to pause.
package motion

import (
	"fmt"
	"math"

	"github.com/fgam/spatialam/pkg/geom"
	"github.com/fgam/spatialam/pkg/graph"
)

// ControlPoint is one process instruction at a point on a segment.
type ControlPoint struct {
	Point         geom.Vec `codec:"point" json:"point"`
	ExtrusionRate float64  `codec:"extrusionRate" json:"extrusionRate"`
	CoolingOn     bool     `codec:"coolingOn" json:"coolingOn"`
	ExtrudeOn     bool     `codec:"extrudeOn" json:"extrudeOn"`
	HeatOn        bool     `codec:"heatOn" json:"heatOn"`
	VelocityRatio float64  `codec:"velocityRatio" json:"velocityRatio"`
	CycleWait     bool     `codec:"cycleWait" json:"cycleWait"`
}

// Policy holds the process calibration. The zero value is not useful;
// start from DefaultPolicy.
type Policy struct {
	// Extrusion axis values for the boundary frames around each segment.
	VerticalE5   float64 `yaml:"verticalE5"`
	AngledE5     float64 `yaml:"angledE5"`
	HorizontalE5 float64 `yaml:"horizontalE5"`

	// VelocityRatioMultiplier scales every velocity ratio.
	VelocityRatioMultiplier float64 `yaml:"velocityRatioMultiplier"`
	// MinVelocityRatio is the floor applied after scaling and decay.
	MinVelocityRatio float64 `yaml:"minVelocityRatio"`

	// LeadIn is the height above the start where extrusion begins.
	LeadIn float64 `yaml:"leadIn"`
	// WaypointStep is the spacing of wait points on vertical runs.
	WaypointStep float64 `yaml:"waypointStep"`
	// VelocityDecay multiplies the velocity ratio at each waypoint.
	VelocityDecay float64 `yaml:"velocityDecay"`
	// ShortLength is the vertical length below which no cooling or
	// slow-down points are added.
	ShortLength float64 `yaml:"shortLength"`
	// LongAngledLength is the angled-up length from which cooling and
	// stop points are added.
	LongAngledLength float64 `yaml:"longAngledLength"`
	// PullbackDistance is the horizontal lead-in on angled-down segments.
	PullbackDistance float64 `yaml:"pullbackDistance"`
	// CoolingHeight is the Z above which horizontals print with cooling.
	CoolingHeight float64 `yaml:"coolingHeight"`
}

// DefaultPolicy returns the calibrated defaults.
func DefaultPolicy() Policy {
	return Policy{
		VerticalE5:              1.4,
		AngledE5:                1.4,
		HorizontalE5:            1.4,
		VelocityRatioMultiplier: 1.4,
		MinVelocityRatio:        0.01,
		LeadIn:                  2.5,
		WaypointStep:            15,
		VelocityDecay:           0.38,
		ShortLength:             25,
		LongAngledLength:        50,
		PullbackDistance:        10,
		CoolingHeight:           609,
	}
}

// ExtrusionValue returns the boundary-frame extrusion value for o.
func (p Policy) ExtrusionValue(o graph.Orientation) float64 {
	switch o {
	case graph.Vertical:
		return p.VerticalE5
	case graph.Horizontal:
		return p.HorizontalE5
	default:
		return p.AngledE5
	}
}

// velocity scales a base ratio by the multiplier and clamps it to
// [MinVelocityRatio, 1].
func (p Policy) velocity(base float64) float64 {
	return math.Max(p.MinVelocityRatio, math.Min(1, base*p.VelocityRatioMultiplier))
}

// Sequencer produces the control points for one segment.
type Sequencer func(l geom.Line, p Policy) []ControlPoint

var sequencers = map[graph.Orientation]Sequencer{
	graph.Vertical:   verticalPoints,
	graph.Horizontal: horizontalPoints,
	graph.AngledUp:   angledUpPoints,
	graph.AngledDown: angledDownPoints,
}

// For returns the sequencer for orientation o.
func For(o graph.Orientation) (Sequencer, error) {
	s, ok := sequencers[o]
	if !ok {
		return nil, fmt.Errorf("motion sequencer for %s: %w", o, graph.ErrUnsupportedOrientation)
	}
	return s, nil
}

// ControlPoints is shorthand for For(o) followed by a call.
func ControlPoints(o graph.Orientation, l geom.Line, p Policy) ([]ControlPoint, error) {
	s, err := For(o)
	if err != nil {
		return nil, err
	}
	return s(l, p), nil
}
