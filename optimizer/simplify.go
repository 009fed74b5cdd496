package optimizer

import (
	"math"

	"github.com/isoroute/toolpath/config"
	"github.com/isoroute/toolpath/toolplan"
)

const significantArcLength = 0.01 // mm

// simplifyPlan implements stage (F): tab commands pass through and
// break any accumulating LINEAR sequence; ignorable arcs are promoted
// to LINEAR; consecutive LINEAR runs are filtered by an angle-aware
// perpendicular-distance tolerance. Feed-rate and Z changes terminate
// a sequence so they are never silently dropped.
func simplifyPlan(p *toolplan.ToolpathPlan, s config.Simplification) {
	promoted := promoteIgnorableArcs(p.Commands)
	p.Commands = filterSequences(promoted, s)
}

// promoteIgnorableArcs rewrites arcs with arc-length < 0.01mm and no Z
// change into LINEAR commands so they participate in sequence
// filtering; significant arcs (longer, or with a Z change) pass
// through untouched.
func promoteIgnorableArcs(cmds []toolplan.MotionCommand) []toolplan.MotionCommand {
	out := make([]toolplan.MotionCommand, len(cmds))
	copy(out, cmds)
	var prevX, prevY, prevZ float64
	havePrev := false
	for i := range out {
		c := out[i]
		if (c.Kind == toolplan.ArcCW || c.Kind == toolplan.ArcCCW) && havePrev {
			length := arcLength(prevX, prevY, c.X, c.Y, c.I, c.J)
			if length < significantArcLength && c.Z == prevZ {
				out[i].Kind = toolplan.Linear
				out[i].I, out[i].J = 0, 0
			}
		}
		prevX, prevY, prevZ = c.X, c.Y, c.Z
		havePrev = true
	}
	return out
}

// arcLength approximates swept arc length via radius and chord/center
// geometry: radius from the center offset, swept angle from start and
// end vectors relative to center.
func arcLength(startX, startY, endX, endY, i, j float64) float64 {
	cx, cy := startX+i, startY+j
	r := math.Hypot(i, j)
	if r < 1e-12 {
		return 0
	}
	a1 := math.Atan2(startY-cy, startX-cx)
	a2 := math.Atan2(endY-cy, endX-cx)
	d := math.Abs(a2 - a1)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return r * d
}

// filterSequences groups consecutive LINEAR commands (broken by tabs,
// non-linear moves, feed changes, or Z changes) and applies the
// angle-aware tolerance to each group independently.
func filterSequences(cmds []toolplan.MotionCommand, s config.Simplification) []toolplan.MotionCommand {
	var out []toolplan.MotionCommand
	i := 0
	for i < len(cmds) {
		c := cmds[i]
		if c.Kind != toolplan.Linear || c.Metadata.IsTab {
			out = append(out, c)
			i++
			continue
		}
		start := i
		for i < len(cmds) && cmds[i].Kind == toolplan.Linear && !cmds[i].Metadata.IsTab &&
			cmds[i].FeedRate == cmds[start].FeedRate && cmds[i].Z == cmds[start].Z {
			i++
		}
		seq := cmds[start:i]
		out = append(out, filterLinearSequence(seq, s)...)
	}
	return out
}

func filterLinearSequence(seq []toolplan.MotionCommand, s config.Simplification) []toolplan.MotionCommand {
	if len(seq) <= 2 {
		return seq
	}
	kept := []toolplan.MotionCommand{seq[0]}
	for i := 1; i < len(seq)-1; i++ {
		prev := kept[len(kept)-1]
		cur := seq[i]
		next := seq[i+1]

		tol := toleranceFor(prev, cur, next, s)
		dist := perpendicularDistance(prev.X, prev.Y, next.X, next.Y, cur.X, cur.Y)
		if dist >= tol {
			kept = append(kept, cur)
		}
	}
	kept = append(kept, seq[len(seq)-1])
	return kept
}

func toleranceFor(prev, cur, next toolplan.MotionCommand, s config.Simplification) float64 {
	angle := turnAngleDegrees(prev.X, prev.Y, cur.X, cur.Y, next.X, next.Y)
	switch {
	case angle > s.SharpAngleThreshold:
		return s.SharpCornerTolerance
	case angle < s.StraightAngleThreshold:
		return s.StraightToleranceFallback
	default:
		return s.CurveToleranceFallback
	}
}

// turnAngleDegrees returns the deviation from straight at cur between
// the incoming segment (prev->cur) and outgoing segment (cur->next),
// in degrees: 0 for a straight run, 180 for a full reversal.
func turnAngleDegrees(px, py, cx, cy, nx, ny float64) float64 {
	v1x, v1y := cx-px, cy-py
	v2x, v2y := nx-cx, ny-cy
	len1, len2 := math.Hypot(v1x, v1y), math.Hypot(v2x, v2y)
	if len1 < 1e-12 || len2 < 1e-12 {
		return 180
	}
	dot := (v1x*v2x + v1y*v2y) / (len1 * len2)
	if dot > 1 {
		dot = 1
	}
	if dot < -1 {
		dot = -1
	}
	return math.Acos(dot) * 180 / math.Pi
}

// perpendicularDistance returns the distance from (px,py) to the
// infinite line through (ax,ay) and (bx,by).
func perpendicularDistance(ax, ay, bx, by, px, py float64) float64 {
	dx, dy := bx-ax, by-ay
	length := math.Hypot(dx, dy)
	if length < 1e-12 {
		return math.Hypot(px-ax, py-ay)
	}
	cross := (px-ax)*dy - (py-ay)*dx
	return math.Abs(cross) / length
}
