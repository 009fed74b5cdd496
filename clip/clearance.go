package clip

import "fmt"

// CheckClearance reports every pair of paths in paths that ends up
// closer than minGap integer units of each other, by inflating each path
// by half the gap and testing the grown shapes pairwise for overlap —
// two islands maintain the gap iff their half-grown boundaries don't
// touch. minGap<=0 or fewer than two paths is trivially satisfied.
//
// This is the isolation-routing counterpart to the offset generator's
// per-pass expansion: the offset generator grows a boundary outward to
// build a tool path, CheckClearance grows two boundaries outward toward
// each other to confirm the tool path it will cut still leaves enough
// copper-to-copper (or copper-to-board-edge) gap for the board's
// fabrication rules.
func CheckClearance(paths Paths64, minGap float64, fillRule FillRule) ([][2]int, error) {
	if minGap <= 0 || len(paths) < 2 {
		return nil, nil
	}

	half := minGap / 2
	grown := make([]Paths64, len(paths))
	for i, p := range paths {
		inflated, err := Offset(Paths64{p}, half, Round, ClosedPolygon, 0)
		if err != nil {
			return nil, fmt.Errorf("clearance inflate: %w", err)
		}
		grown[i] = inflated
	}

	var violations [][2]int
	for i := 0; i < len(grown); i++ {
		for j := i + 1; j < len(grown); j++ {
			overlap, _, err := BooleanOp64(Intersection, fillRule, grown[i], nil, grown[j])
			if err != nil {
				return nil, fmt.Errorf("clearance check: %w", err)
			}
			if len(overlap) > 0 {
				violations = append(violations, [2]int{i, j})
			}
		}
	}

	if len(violations) > 0 {
		return violations, ErrClearanceViolation
	}
	return nil, nil
}
