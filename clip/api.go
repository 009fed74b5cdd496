package clip

// UnionSelf64 fuses overlapping and touching paths within a single path
// set, using fillRule to resolve self-intersections. This is the common
// case after converting PCB primitives (pads, traces, regions) to
// polygons: many of them overlap and must be treated as one shape before
// offsetting.
//
// Possible errors: ErrInvalidFillRule
func UnionSelf64(paths Paths64, fillRule FillRule) (Paths64, error) {
	result, _, err := BooleanOp64(Union, fillRule, paths, nil, nil)
	return result, err
}

// ExecutePolyTree runs clipType against subjects and clips, returning the
// hierarchical PolyTree64 result (outer contours with nested hole/island
// children) alongside any open-path solution. This is the named
// `executePolyTree` entry point distinguishing outer contours from holes.
//
// Possible errors: ErrInvalidClipType, ErrInvalidFillRule
func ExecutePolyTree(subjects, clips Paths64, clipType ClipType, fillRule FillRule) (*PolyTree64, Paths64, error) {
	return BooleanOp64Tree(clipType, fillRule, subjects, clips)
}

// Offset inflates (delta > 0) or deflates (delta < 0) paths by delta
// integer units, joining corners per joinType and capping open ends per
// endType. It is the direct implementation of the offset generator's
// per-pass polygon expansion.
//
// Possible errors: ErrInvalidJoinType, ErrInvalidEndType, ErrInvalidOptions
func Offset(paths Paths64, delta float64, joinType JoinType, endType EndType, miterLimit float64) (Paths64, error) {
	opts := OffsetOptions{MiterLimit: miterLimit, ArcTolerance: 0.25}
	if miterLimit <= 0 {
		opts.MiterLimit = 2.0
	}
	return InflatePaths64(paths, delta, joinType, endType, opts)
}

// Simplify removes vertices from paths that deviate from their neighbors
// by less than epsilon integer units. closed marks whether each path
// wraps (first point adjacent to last); the toolpath optimizer's
// segment-simplification stage applies its own angle-aware tolerance on
// top of this and is the place tab/arc preservation actually lives.
func Simplify(paths Paths64, epsilon float64, closed bool) (Paths64, error) {
	return SimplifyPaths64(paths, epsilon, closed)
}
