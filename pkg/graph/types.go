package graph

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fgam/spatialam/pkg/geom"
)

// Orientation is the spatial class of a segment.
type Orientation int

const (
	Vertical Orientation = iota
	Horizontal
	AngledUp
	AngledDown
)

// Orientations lists every orientation in declaration order.
var Orientations = []Orientation{Vertical, Horizontal, AngledUp, AngledDown}

func (o Orientation) String() string {
	switch o {
	case Vertical:
		return "Vertical"
	case Horizontal:
		return "Horizontal"
	case AngledUp:
		return "AngledUp"
	case AngledDown:
		return "AngledDown"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// ParseOrientation is the inverse of Orientation.String.
func ParseOrientation(s string) (Orientation, error) {
	for _, o := range Orientations {
		if o.String() == s {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown orientation %q", s)
}

// SegmentID is a stable identifier for a PathSegment, derived from the
// segment's input position and endpoints.
type SegmentID string

// ZeroID is the empty SegmentID.
const ZeroID SegmentID = ""

var segmentNamespace = uuid.MustParse("6f1c3a52-2d7e-4b8e-9a0f-5c1d2e3f4a5b")

// NewSegmentID derives the id for the line at position index.
func NewSegmentID(index int, l geom.Line) SegmentID {
	key := fmt.Sprintf("%d:%g,%g,%g:%g,%g,%g", index,
		l.From.X, l.From.Y, l.From.Z, l.To.X, l.To.Y, l.To.Z)
	return SegmentID(uuid.NewSHA1(segmentNamespace, []byte(key)).String())
}

// Short returns the first 8 characters of the id for log output.
func (id SegmentID) Short() string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}

// IsZero reports whether id is unset.
func (id SegmentID) IsZero() bool {
	return id == ZeroID
}

// ErrUnsupportedOrientation is returned by strategy tables that have no
// entry for an orientation.
var ErrUnsupportedOrientation = errors.New("unsupported orientation")

// ErrNoSharedEndpoint is returned when two segments expected to meet do not
// share an endpoint within tolerance.
var ErrNoSharedEndpoint = errors.New("no shared endpoint")

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

// Severity indicates whether a finding means output was dropped or is
// merely informational.
type Severity int

const (
	SeverityError   Severity = iota // input was skipped
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// DiagnosticKind classifies a finding.
type DiagnosticKind int

const (
	DegenerateInput DiagnosticKind = iota
	NoSharedEndpoint
	UnmatchedSegment
	IsolatedSegment
)

func (k DiagnosticKind) String() string {
	switch k {
	case DegenerateInput:
		return "DegenerateInput"
	case NoSharedEndpoint:
		return "NoSharedEndpoint"
	case UnmatchedSegment:
		return "UnmatchedSegment"
	case IsolatedSegment:
		return "IsolatedSegment"
	default:
		return fmt.Sprintf("DiagnosticKind(%d)", int(k))
	}
}

// Diagnostic describes a single finding produced while building or
// analyzing a graph.
type Diagnostic struct {
	Kind     DiagnosticKind `codec:"kind" json:"kind"`
	Segment  SegmentID      `codec:"segment,omitempty" json:"segment,omitempty"`
	Index    int            `codec:"index" json:"index"` // input position, -1 if not applicable
	Message  string         `codec:"message" json:"message"`
	Severity Severity       `codec:"severity" json:"severity"`
}

func (d Diagnostic) Error() string {
	if d.Segment.IsZero() {
		return fmt.Sprintf("[%s] %s: %s", d.Severity, d.Kind, d.Message)
	}
	return fmt.Sprintf("[%s] %s: segment %s: %s", d.Severity, d.Kind, d.Segment.Short(), d.Message)
}
