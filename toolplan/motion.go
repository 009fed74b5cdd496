// Package toolplan holds the motion-command sum type and the
// ToolpathPlan record the compiler produces and the optimizer mutates
// in place: a fully resolved stream of absolute-coordinate moves, plus
// the metadata that drives clustering, ordering, and simplification.
package toolplan

import "github.com/isoroute/toolpath/primitive"

// MotionKind is the tag of the MotionCommand sum type.
type MotionKind uint8

const (
	Rapid MotionKind = iota
	Linear
	Plunge
	Retract
	ArcCW
	ArcCCW
	Dwell
)

func (k MotionKind) String() string {
	switch k {
	case Rapid:
		return "rapid"
	case Linear:
		return "linear"
	case Plunge:
		return "plunge"
	case Retract:
		return "retract"
	case ArcCW:
		return "arc_cw"
	case ArcCCW:
		return "arc_ccw"
	case Dwell:
		return "dwell"
	default:
		return "unknown"
	}
}

// Metadata carries the per-command flags that must survive
// simplification and ordering untouched.
type Metadata struct {
	// IsTab marks a command as part of a tab's Z-raise window; it must
	// never be merged or dropped by segment simplification.
	IsTab bool
}

// MotionCommand is a single resolved motion in a plan: an absolute
// (x,y,z) destination (the running-position model has already
// resolved any "keep previous axis" gap before construction), an
// optional feed rate, arc center offsets for the two arc variants, and
// a dwell duration for Dwell.
type MotionCommand struct {
	Kind MotionKind

	X, Y, Z float64

	FeedRate float64

	// I, J are the arc center offset relative to this command's start
	// point, valid only when Kind is ArcCW or ArcCCW. The optimizer
	// recomputes them when it rotates a simple circle's entry point.
	I, J float64

	// DwellSeconds is valid only when Kind is Dwell.
	DwellSeconds float64

	Metadata Metadata
}

// Point returns the command's destination as a primitive.Point.
func (m MotionCommand) Point() primitive.Point {
	z := m.Z
	return primitive.Point{X: m.X, Y: m.Y, Z: &z}
}

// LinkType classifies how the optimizer connected two consecutive
// plans in its output order.
type LinkType uint8

const (
	LinkStaydown LinkType = iota
	LinkRapid
)

func (l LinkType) String() string {
	if l == LinkStaydown {
		return "staydown"
	}
	return "rapid"
}

// OptimizationInfo records what the optimizer did to a plan during its
// pass: how it was linked to the previous plan in the output order,
// and, if it was a closed loop and got rotated, where it used to start.
type OptimizationInfo struct {
	LinkType           LinkType
	OriginalEntryPoint primitive.Point
	OptimizedEntryPoint primitive.Point
	// EntryCommandIndex is the index within Commands the plan was
	// rotated to start from; 0 if no rotation occurred.
	EntryCommandIndex int
}

// ToolDefinition names the cutting tool a plan was generated for.
type ToolDefinition struct {
	Diameter float64
	Type     string
}

// ToolpathPlan is one compiled, ordered list of motion commands plus
// the metadata the optimizer reads and (after its pass) augments with
// an OptimizationInfo. The optimizer owns a plan exclusively during
// its pass and mutates Commands/Optimization in place; before that,
// plans are treated as produced-once-and-read values.
type ToolpathPlan struct {
	OperationID string

	Commands []MotionCommand

	Tool ToolDefinition

	EntryPoint primitive.Point
	ExitPoint  primitive.Point

	CutDepth float64
	FeedRate float64

	BoundingBox primitive.BBox

	IsClosedLoop     bool
	IsSimpleCircle   bool
	HasArcs          bool
	IsPeckMark       bool
	IsDrillMilling   bool
	IsCenterlinePath bool

	ToolDiameter float64
	StepOver     float64
	Pass         int

	// GroupKey partitions plans for the optimizer's stage (A); by
	// convention it is the tool diameter formatted as a string.
	GroupKey string

	// SimpleCircleCenter and SimpleCircleRadius are populated only when
	// IsSimpleCircle, so the optimizer's analytic closest-point and
	// rotation logic never has to re-derive them from Commands.
	SimpleCircleCenter primitive.Point
	SimpleCircleRadius float64

	Optimization *OptimizationInfo

	// Cancelled is set when the pipeline's cooperative cancellation
	// fired before this plan's pass completed; the plan carries
	// whatever commands were already built.
	Cancelled bool
}

// Rotated reports whether the optimizer has applied entry rotation to
// this plan (i.e. it recorded a nonzero EntryCommandIndex).
func (p *ToolpathPlan) Rotated() bool {
	return p.Optimization != nil && p.Optimization.EntryCommandIndex != 0
}
