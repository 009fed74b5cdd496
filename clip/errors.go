package clip

import "errors"

var (
	// ErrInvalidRectangle indicates an invalid rectangle was provided
	ErrInvalidRectangle = errors.New("invalid rectangle: must have exactly 4 points")

	// ErrNotImplemented indicates a feature is not yet implemented
	ErrNotImplemented = errors.New("not implemented yet")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input parameters")

	// ErrDegenerateTrace indicates a board path collapsed to fewer than
	// 3 vertices or zero area before it reached the engine, usually the
	// result of an aperture flash or trace segment shrinking to nothing
	// under the active fixed-point scale.
	ErrDegenerateTrace = errors.New("degenerate trace: path has fewer than 3 vertices or zero area")

	// ErrSelfIntersectingCopper indicates a path crosses itself in a way
	// its fill rule cannot resolve into a single consistent region —
	// the self-union step in the pipeline's polarity resolution exists
	// precisely to avoid this reaching the offset generator.
	ErrSelfIntersectingCopper = errors.New("self-intersecting copper: path is not a simple polygon under the given fill rule")

	// ErrClearanceViolation indicates two offset islands end up closer
	// than the isolation gap CheckClearance was asked to enforce.
	ErrClearanceViolation = errors.New("clearance violation: offset islands closer than the required isolation gap")
)
