// Package compiler is the toolpath compiler: it converts one offset
// layer's closed polygons (or a drill pattern) into a ToolpathPlan —
// depth levels, entry strategies, tabs, and canned drill cycles — per
// a ToolSettings record. The compiler never orders or links plans;
// that is the optimizer's job.
package compiler

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/isoroute/toolpath/clip"
	"github.com/isoroute/toolpath/config"
	"github.com/isoroute/toolpath/primitive"
	"github.com/isoroute/toolpath/toolplan"
)

// Options bundles the inputs a single CompilePath/CompileDrill call
// needs beyond the path geometry itself.
type Options struct {
	Scale     float64 // fixed-point scale the path's integer coordinates were built at
	Settings  config.ToolSettings
	Heights   config.MachineHeights
	Precision config.Precision
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return 1e5
	}
	return o.Scale
}

// depthLevels returns the sequence of cut Z levels, shallowest first.
// Z is signed negative (into stock).
func depthLevels(settings config.ToolSettings) []float64 {
	cutDepth := -math.Abs(settings.CutDepth)
	if !settings.MultiDepth || settings.DepthPerPass <= 0 {
		return []float64{cutDepth}
	}
	p := math.Abs(settings.DepthPerPass)
	var levels []float64
	z := -p
	for z > cutDepth {
		levels = append(levels, z)
		z -= p
	}
	levels = append(levels, cutDepth)
	return levels
}

// CompilePath converts one closed polygon path into a ToolpathPlan,
// cutting every configured depth level, applying the configured entry
// strategy on the first level, and inserting tabs along the final
// pass's perimeter when enabled. ctx is checked between depth levels;
// on cancellation the partially built plan is discarded and
// context.Canceled is returned.
func CompilePath(ctx context.Context, path clip.Path64, pass int, opts Options) (*toolplan.ToolpathPlan, error) {
	if err := opts.Settings.Validate(); err != nil {
		return nil, err
	}
	if len(path) < 3 {
		return nil, fmt.Errorf("compiler: path has fewer than 3 points")
	}

	pts := toMMPoints(path, opts.scale())
	pts = dedupeZeroLength(pts, opts.Precision.ZeroLength)
	if len(pts) < 3 {
		return nil, fmt.Errorf("compiler: path degenerates to fewer than 3 points after zero-length cleanup")
	}

	levels := depthLevels(opts.Settings)
	var commands []toolplan.MotionCommand

	entry := pts[0]
	commands = append(commands, toolplan.MotionCommand{Kind: toolplan.Rapid, X: entry.X, Y: entry.Y, Z: opts.Heights.TravelZ})

	for levelIdx, z := range levels {
		select {
		case <-ctx.Done():
			return nil, context.Canceled
		default:
		}

		if levelIdx == 0 {
			commands = append(commands, entryCommands(entry, z, opts.Settings, pts)...)
		} else {
			commands = append(commands, toolplan.MotionCommand{
				Kind: toolplan.Plunge, X: entry.X, Y: entry.Y, Z: z, FeedRate: opts.Settings.PlungeRate,
			})
		}

		isFinalPass := levelIdx == len(levels)-1
		perimeter := emitPerimeter(pts, z, opts.Settings, isFinalPass)
		commands = append(commands, perimeter...)

		commands = append(commands, toolplan.MotionCommand{
			Kind: toolplan.Retract, X: entry.X, Y: entry.Y, Z: opts.Heights.TravelZ,
		})
	}

	bbox := primitive.BBox{}
	for i, p := range pts {
		b := primitive.BBox{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
		if i == 0 {
			bbox = b
		} else {
			bbox = bbox.Union(b)
		}
	}

	isSimpleCircle, center, radius := detectSimpleCircle(pts)

	plan := &toolplan.ToolpathPlan{
		OperationID:        uuid.NewString(),
		Commands:           commands,
		Tool:               toolplan.ToolDefinition{Diameter: opts.Settings.ToolDiameter, Type: "end_mill"},
		EntryPoint:         primitive.Point{X: entry.X, Y: entry.Y},
		ExitPoint:          primitive.Point{X: entry.X, Y: entry.Y},
		CutDepth:           levels[len(levels)-1],
		FeedRate:           opts.Settings.FeedRate,
		BoundingBox:        bbox,
		IsClosedLoop:       true,
		IsSimpleCircle:     isSimpleCircle,
		HasArcs:            isSimpleCircle,
		ToolDiameter:       opts.Settings.ToolDiameter,
		StepOver:           opts.Settings.StepOver,
		Pass:               pass,
		GroupKey:           fmt.Sprintf("%g", opts.Settings.ToolDiameter),
		SimpleCircleCenter: center,
		SimpleCircleRadius: radius,
	}
	return plan, nil
}

// entryCommands emits the configured plunge/ramp/helix sequence that
// brings the tool from travel height down to z at the path's entry point.
func entryCommands(entry primitive.Point, z float64, settings config.ToolSettings, pts []primitive.Point) []toolplan.MotionCommand {
	switch settings.EntryType {
	case config.EntryRamp:
		return rampEntry(entry, z, settings, pts)
	case config.EntryHelix:
		return helixEntry(entry, z, settings)
	default:
		return []toolplan.MotionCommand{{
			Kind: toolplan.Plunge, X: entry.X, Y: entry.Y, Z: z, FeedRate: settings.PlungeRate,
		}}
	}
}

// rampEntry descends linearly along the first ~3*|depth| of the path.
func rampEntry(entry primitive.Point, z float64, settings config.ToolSettings, pts []primitive.Point) []toolplan.MotionCommand {
	rampLen := 3 * math.Abs(z)
	travelled := 0.0
	var out []toolplan.MotionCommand
	n := len(pts)
	for i := 1; i <= n && travelled < rampLen; i++ {
		a, b := pts[(i-1)%n], pts[i%n]
		segLen := math.Hypot(b.X-a.X, b.Y-a.Y)
		travelled += segLen
		frac := travelled / rampLen
		if frac > 1 {
			frac = 1
		}
		curZ := z * frac
		out = append(out, toolplan.MotionCommand{
			Kind: toolplan.Linear, X: b.X, Y: b.Y, Z: curZ, FeedRate: settings.PlungeRate,
		})
	}
	return out
}

// helixEntry spirals down at the entry point with a radius of
// approximately 1.5x the tool diameter.
func helixEntry(entry primitive.Point, z float64, settings config.ToolSettings) []toolplan.MotionCommand {
	radius := 1.5 * settings.ToolDiameter
	turns := 3
	cx, cy := entry.X, entry.Y-radius
	var out []toolplan.MotionCommand
	steps := turns * 8
	prevX, prevY := entry.X, entry.Y
	for i := 1; i <= steps; i++ {
		frac := float64(i) / float64(steps)
		theta := 2 * math.Pi * float64(i) / 8
		x := cx + radius*math.Sin(theta)
		y := cy + radius*math.Cos(theta)
		curZ := z * frac
		out = append(out, toolplan.MotionCommand{
			Kind: toolplan.ArcCW, X: x, Y: y, Z: curZ, FeedRate: settings.PlungeRate,
			I: cx - prevX, J: cy - prevY,
		})
		prevX, prevY = x, y
	}
	out = append(out, toolplan.MotionCommand{Kind: toolplan.Linear, X: entry.X, Y: entry.Y, Z: z, FeedRate: settings.PlungeRate})
	return out
}

// emitPerimeter walks pts as a closed loop, inserting tab Z-raises at
// n evenly spaced arc-length positions when tabs are enabled and this
// is the final pass.
func emitPerimeter(pts []primitive.Point, z float64, settings config.ToolSettings, isFinalPass bool) []toolplan.MotionCommand {
	n := len(pts)
	perimeterLen := 0.0
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		perimeterLen += math.Hypot(b.X-a.X, b.Y-a.Y)
	}

	var tabCenters []float64
	if isFinalPass && settings.Tabs && settings.TabCount > 0 {
		for i := 0; i < settings.TabCount; i++ {
			tabCenters = append(tabCenters, perimeterLen*float64(i)/float64(settings.TabCount))
		}
	}

	var out []toolplan.MotionCommand
	travelled := 0.0
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		segLen := math.Hypot(b.X-a.X, b.Y-a.Y)

		isTab := false
		for _, c := range tabCenters {
			lo, hi := c-settings.TabWidth/2, c+settings.TabWidth/2
			segStart, segEnd := travelled, travelled+segLen
			if segEnd >= lo && segStart <= hi {
				isTab = true
				break
			}
		}

		cmdZ := z
		if isTab {
			cmdZ = z + settings.TabHeight
		}
		out = append(out, toolplan.MotionCommand{
			Kind: toolplan.Linear, X: b.X, Y: b.Y, Z: cmdZ, FeedRate: settings.FeedRate,
			Metadata: toolplan.Metadata{IsTab: isTab},
		})
		travelled += segLen
	}
	return out
}

// detectSimpleCircle reports whether pts approximates a regular
// tessellated circle (every vertex nearly equidistant from the
// centroid), returning the analytic center/radius if so.
func detectSimpleCircle(pts []primitive.Point) (bool, primitive.Point, float64) {
	if len(pts) < 8 {
		return false, primitive.Point{}, 0
	}
	var cx, cy float64
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(pts))
	cy /= float64(len(pts))

	var rSum float64
	radii := make([]float64, len(pts))
	for i, p := range pts {
		r := math.Hypot(p.X-cx, p.Y-cy)
		radii[i] = r
		rSum += r
	}
	avg := rSum / float64(len(pts))
	for _, r := range radii {
		if math.Abs(r-avg) > avg*0.02+1e-6 {
			return false, primitive.Point{}, 0
		}
	}
	return true, primitive.Point{X: cx, Y: cy}, avg
}

func toMMPoints(path clip.Path64, scale float64) []primitive.Point {
	out := make([]primitive.Point, len(path))
	for i, p := range path {
		x, y := clip.PointUnitsToMM(p, scale)
		out[i] = primitive.Point{X: x, Y: y}
	}
	return out
}

// dedupeZeroLength removes consecutive points within tol of each
// other (zero-length draws), per §4.3: never emit a zero-length
// LINEAR.
func dedupeZeroLength(pts []primitive.Point, tol float64) []primitive.Point {
	if tol <= 0 {
		tol = 1e-6
	}
	if len(pts) == 0 {
		return pts
	}
	out := []primitive.Point{pts[0]}
	for _, p := range pts[1:] {
		last := out[len(out)-1]
		if math.Hypot(p.X-last.X, p.Y-last.Y) > tol {
			out = append(out, p)
		}
	}
	if len(out) > 1 {
		first, last := out[0], out[len(out)-1]
		if math.Hypot(first.X-last.X, first.Y-last.Y) <= tol {
			out = out[:len(out)-1]
		}
	}
	return out
}
