package motion

import (
	"github.com/fgam/spatialam/pkg/geom"
)

// Extrusion rates per step.
const (
	verticalRate       = 1.8
	angledUpRate       = 2.4
	pullbackRate       = 1.1
	angledDownRate     = 2.4
	angledDownTailRate = 1.2
	horizontalRate     = 1.6
	horizontalHotRate  = 2.0
)

// Base velocity ratios before the policy multiplier.
const (
	leadInVelocity = 0.5
	travelVelocity = 0.075
)

// Offsets along the lead-in path.
const (
	verticalCoolingOffset = 0.1
	verticalSlowDown      = 4.0
	angledUpCoolingFrac   = 0.06
	angledUpStopFrac      = 0.85
	angledDownEndFrac     = 0.5
)

// verticalPoints starts extruding LeadIn along the run from the start. Runs
// of at least ShortLength switch cooling on just after the lead-in and stop
// extruding verticalSlowDown before the end. Every WaypointStep along the run
// a pair of points is added with a decaying velocity, the second one waiting
// for the cycle. All points lie on the segment whichever way it is drawn.
func verticalPoints(l geom.Line, p Policy) []ControlPoint {
	end := l.To
	lead := l.PointAtLength(p.LeadIn)
	path := geom.L(lead, end)
	long := l.Length() >= p.ShortLength

	v := p.velocity(leadInVelocity)
	pts := []ControlPoint{{Point: lead, ExtrusionRate: verticalRate, ExtrudeOn: true, VelocityRatio: v}}
	if long {
		pts = append(pts, ControlPoint{
			Point: path.PointAtLength(verticalCoolingOffset), ExtrusionRate: verticalRate,
			CoolingOn: true, ExtrudeOn: true, VelocityRatio: v,
		})
	}

	limit := l.Length()
	if long {
		limit -= verticalSlowDown
	}
	if p.WaypointStep > 0 {
		for s := p.WaypointStep; s < limit; s += p.WaypointStep {
			v = max(p.MinVelocityRatio, v*p.VelocityDecay)
			wp := l.PointAtLength(s)
			step := ControlPoint{Point: wp, ExtrusionRate: verticalRate, CoolingOn: long, ExtrudeOn: true, VelocityRatio: v}
			wait := step
			wait.CycleWait = true
			pts = append(pts, step, wait)
		}
	}

	if long {
		pts = append(pts, ControlPoint{
			Point: l.PointAtLengthFromEnd(verticalSlowDown), ExtrusionRate: verticalRate,
			CoolingOn: true, VelocityRatio: v,
		})
	}
	return append(pts, ControlPoint{Point: end, ExtrusionRate: verticalRate, VelocityRatio: v})
}

// angledUpPoints starts extruding LeadIn above the start. From
// LongAngledLength on, cooling starts at 6% of the segment length along the
// lead-in path and extrusion stops at 85%, followed by a cycle wait there.
func angledUpPoints(l geom.Line, p Policy) []ControlPoint {
	start, end := l.From, l.To
	lead := start.Add(geom.V(0, 0, p.LeadIn))
	path := geom.L(lead, end)
	n := l.Length()

	pts := []ControlPoint{{Point: lead, ExtrusionRate: angledUpRate, ExtrudeOn: true, VelocityRatio: p.velocity(leadInVelocity)}}
	v := p.velocity(travelVelocity)
	if n >= p.LongAngledLength {
		stop := path.PointAtLength(n * angledUpStopFrac)
		pts = append(pts,
			ControlPoint{Point: path.PointAtLength(n * angledUpCoolingFrac), ExtrusionRate: angledUpRate, CoolingOn: true, ExtrudeOn: true, VelocityRatio: v},
			ControlPoint{Point: stop, ExtrusionRate: angledUpRate, CoolingOn: true, VelocityRatio: v},
			ControlPoint{Point: stop, ExtrusionRate: angledUpRate, VelocityRatio: v, CycleWait: true},
		)
	}
	return append(pts, ControlPoint{Point: end, ExtrusionRate: angledUpRate, VelocityRatio: v})
}

// angledDownPoints pulls back PullbackDistance horizontally behind the
// start before extruding, switches cooling on at the start, stops
// extruding halfway down the drop above the end and finishes with
// everything off.
func angledDownPoints(l geom.Line, p Policy) []ControlPoint {
	start, end := l.From, l.To
	back := geom.Unitize(geom.WithZ(start, end.Z).Sub(end))
	pullback := start.Add(back.MulScalar(p.PullbackDistance))
	modifiedEnd := end.Add(geom.V(0, 0, (start.Z-end.Z)*angledDownEndFrac))

	lead, v := p.velocity(leadInVelocity), p.velocity(travelVelocity)
	return []ControlPoint{
		{Point: pullback, ExtrusionRate: pullbackRate, ExtrudeOn: true, VelocityRatio: lead},
		{Point: start, ExtrusionRate: angledDownRate, ExtrudeOn: true, VelocityRatio: v},
		{Point: start, ExtrusionRate: angledDownRate, CoolingOn: true, ExtrudeOn: true, VelocityRatio: v},
		{Point: modifiedEnd, ExtrusionRate: angledDownTailRate, CoolingOn: true, VelocityRatio: v},
		{Point: end, ExtrusionRate: angledDownTailRate, VelocityRatio: v},
	}
}

// horizontalPoints prints above CoolingHeight with cooling on throughout;
// below it, with cooling off and a lower start rate.
func horizontalPoints(l geom.Line, p Policy) []ControlPoint {
	lead, v := p.velocity(leadInVelocity), p.velocity(travelVelocity)
	if l.Midpoint().Z > p.CoolingHeight {
		return []ControlPoint{
			{Point: l.From, ExtrusionRate: horizontalHotRate, CoolingOn: true, ExtrudeOn: true, VelocityRatio: lead},
			{Point: l.To, ExtrusionRate: horizontalHotRate, CoolingOn: true, VelocityRatio: v},
		}
	}
	return []ControlPoint{
		{Point: l.From, ExtrusionRate: horizontalRate, ExtrudeOn: true, VelocityRatio: lead},
		{Point: l.To, ExtrusionRate: horizontalHotRate, VelocityRatio: v},
	}
}
