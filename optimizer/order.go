package optimizer

import (
	"math"

	"github.com/isoroute/toolpath/config"
	"github.com/isoroute/toolpath/primitive"
	"github.com/isoroute/toolpath/toolplan"
)

// linkCost is the result of calculatePathLinkCost: the chosen cost,
// its classification, and — if staydown — the point and command index
// the plan should (possibly after rotation) begin at.
type linkCost struct {
	cost          float64
	linkType      toolplan.LinkType
	point         primitive.Point
	commandIndex  int
}

// staydownThreshold is the theoretical step distance plus tolerance:
// the longest air-hop worth keeping the spindle down for.
func staydownThreshold(toolDiameter, stepOver, epsilon float64) float64 {
	stepDistance := toolDiameter * (1 - stepOver)
	tol := epsilon
	if tol <= 0 {
		tol = 0.1 * toolDiameter
	}
	return stepDistance + tol
}

// calculatePathLinkCost implements §4.4 stage (D)/(E)'s per-candidate
// cost function. allowStaydown is false for inter-cluster ordering
// (stage E), where every link must be rapid.
func calculatePathLinkCost(curPos primitive.Point, p *toolplan.ToolpathPlan, allowStaydown bool, rc config.RapidCost, threshold float64) linkCost {
	entryDist := math.Hypot(p.EntryPoint.X-curPos.X, p.EntryPoint.Y-curPos.Y)

	staydownLegal := allowStaydown && !p.IsDrillMilling && !p.IsPeckMark
	if staydownLegal {
		if entryDist <= threshold {
			return linkCost{cost: entryDist, linkType: toolplan.LinkStaydown, point: p.EntryPoint, commandIndex: 0}
		}

		if !p.IsCenterlinePath {
			closestDist, closestPoint, idx := closestPointOn(p, curPos)
			if closestDist <= threshold && closestDist < 0.7*entryDist && idx > 0 {
				return linkCost{cost: closestDist, linkType: toolplan.LinkStaydown, point: closestPoint, commandIndex: idx}
			}
		}
	}

	zCost := rc.ZCostFactor * rc.ZTravelThreshold
	if entryDist >= rc.ZTravelThreshold {
		zCost = rc.ZCostFactor * 1.0 // retract-to-safeZ path: flat unit surcharge beyond the threshold band
	}
	cost := entryDist + zCost + rc.BaseCost
	return linkCost{cost: cost, linkType: toolplan.LinkRapid, point: p.EntryPoint, commandIndex: 0}
}

// closestPointOn finds the closest point on p's commands to curPos.
// Drill plans are pinned to their entry point; simple circles use the
// analytic closest point on the circle via center projection; closed
// loops scan commands allowing rotation (idx>0 permitted); open paths
// scan but the caller must not rotate them (§4.4 — centerline/open
// paths disallow rotation, enforced by IsCenterlinePath at the call
// site, not here).
func closestPointOn(p *toolplan.ToolpathPlan, curPos primitive.Point) (float64, primitive.Point, int) {
	if p.IsDrillMilling || p.IsPeckMark {
		d := math.Hypot(p.EntryPoint.X-curPos.X, p.EntryPoint.Y-curPos.Y)
		return d, p.EntryPoint, 0
	}

	if p.IsSimpleCircle {
		cx, cy, r := p.SimpleCircleCenter.X, p.SimpleCircleCenter.Y, p.SimpleCircleRadius
		dx, dy := curPos.X-cx, curPos.Y-cy
		dist := math.Hypot(dx, dy)
		if dist < 1e-9 {
			return 0, p.EntryPoint, 0
		}
		px := cx + r*dx/dist
		py := cy + r*dy/dist
		closestDist := math.Hypot(px-curPos.X, py-curPos.Y)
		return closestDist, primitive.Point{X: px, Y: py}, 1
	}

	best := math.MaxFloat64
	bestIdx := 0
	bestPoint := p.EntryPoint
	for i, c := range p.Commands {
		d := math.Hypot(c.X-curPos.X, c.Y-curPos.Y)
		if d < best {
			best = d
			bestIdx = i
			bestPoint = primitive.Point{X: c.X, Y: c.Y}
		}
	}
	return best, bestPoint, bestIdx
}

// orderPlans runs the nearest-neighbor heuristic over plans starting
// from curPos, applying entry rotation when a candidate's best point
// requires it. Returns the ordered plans and the final machine
// position. allowStaydown controls whether staydown candidates are
// considered at all (false for inter-cluster ordering, stage E).
func orderPlans(curPos primitive.Point, plans []*toolplan.ToolpathPlan, allowStaydown bool, rc config.RapidCost, threshold float64) ([]*toolplan.ToolpathPlan, primitive.Point) {
	remaining := make([]*toolplan.ToolpathPlan, len(plans))
	copy(remaining, plans)
	ordered := make([]*toolplan.ToolpathPlan, 0, len(plans))

	pos := curPos
	for len(remaining) > 0 {
		bestIdx := -1
		var best linkCost
		for i, p := range remaining {
			lc := calculatePathLinkCost(pos, p, allowStaydown, rc, threshold)
			if bestIdx < 0 || lc.cost < best.cost {
				bestIdx = i
				best = lc
			}
		}

		chosen := remaining[bestIdx]
		if best.commandIndex > 0 {
			rotatePlan(chosen, best.commandIndex, best.point)
		}
		chosen.Optimization = &toolplan.OptimizationInfo{
			LinkType:            best.linkType,
			OriginalEntryPoint:  chosen.EntryPoint,
			OptimizedEntryPoint: best.point,
			EntryCommandIndex:   best.commandIndex,
		}
		ordered = append(ordered, chosen)
		pos = chosen.ExitPoint

		remaining[bestIdx] = remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
	}
	return ordered, pos
}

// rotatePlan rotates a closed-loop plan's command list so it begins at
// pivotIdx, the index closestPointOn identified as the new entry.
// Rotation bridges the implicit closure gap by appending a LINEAR back
// to the original entry, then the slice before the pivot, then the
// pivot command itself — producing a loop whose entry equals its exit.
// Simple circles get an analytic rotation instead: the incoming
// LINEAR-to-entry + ARC pair is replaced with a fresh entry on the
// circle, I,J recomputed from the new entry.
func rotatePlan(p *toolplan.ToolpathPlan, pivotIdx int, pivot primitive.Point) {
	if p.IsDrillMilling || p.IsPeckMark || p.IsCenterlinePath || !p.IsClosedLoop {
		return
	}
	if p.IsSimpleCircle {
		rotateSimpleCircle(p, pivot)
		return
	}
	if pivotIdx <= 0 || pivotIdx >= len(p.Commands) {
		return
	}

	original := p.Commands
	closeBack := toolplan.MotionCommand{
		Kind: toolplan.Linear, X: original[0].X, Y: original[0].Y, Z: original[0].Z, FeedRate: original[0].FeedRate,
	}

	rotated := make([]toolplan.MotionCommand, 0, len(original)+1)
	rotated = append(rotated, original[pivotIdx:]...)
	rotated = append(rotated, closeBack)
	rotated = append(rotated, original[1:pivotIdx]...)
	rotated = append(rotated, original[pivotIdx])

	p.Commands = rotated
	p.EntryPoint = pivot
	p.ExitPoint = pivot
}

// rotateSimpleCircle replaces the entry point and recomputes I,J for
// every arc command relative to the circle's center, without
// rebuilding the whole command list's point order (a circle has no
// meaningful "which segment" to splice at — only where tracing
// begins).
func rotateSimpleCircle(p *toolplan.ToolpathPlan, newEntry primitive.Point) {
	cx, cy := p.SimpleCircleCenter.X, p.SimpleCircleCenter.Y
	if len(p.Commands) == 0 {
		return
	}
	p.Commands[0].X, p.Commands[0].Y = newEntry.X, newEntry.Y
	for i := range p.Commands {
		if p.Commands[i].Kind == toolplan.ArcCW || p.Commands[i].Kind == toolplan.ArcCCW {
			p.Commands[i].I = cx - p.Commands[i].X
			p.Commands[i].J = cy - p.Commands[i].Y
		}
	}
	p.EntryPoint = newEntry
	p.ExitPoint = newEntry
}
