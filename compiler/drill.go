package compiler

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/isoroute/toolpath/config"
	"github.com/isoroute/toolpath/primitive"
	"github.com/isoroute/toolpath/toolplan"
)

// CompileDrill converts a single drill point into a canned-cycle
// ToolpathPlan: peck_mark primitives emit G81/G82/G83/G73-equivalent
// plunge/retract sequences (dwell at bottom, peck retract between
// levels); the plan is never rotated by the optimizer.
func CompileDrill(point primitive.Point, opts Options) (*toolplan.ToolpathPlan, error) {
	if err := opts.Settings.Validate(); err != nil {
		return nil, err
	}
	cutDepth := -math.Abs(opts.Settings.CutDepth)

	var commands []toolplan.MotionCommand
	commands = append(commands, toolplan.MotionCommand{
		Kind: toolplan.Rapid, X: point.X, Y: point.Y, Z: opts.Heights.TravelZ,
	})

	if opts.Settings.CannedCycle && opts.Settings.PeckDepth > 0 && opts.Settings.PeckDepth < math.Abs(cutDepth) {
		commands = append(commands, peckSequence(point, cutDepth, opts.Settings)...)
	} else {
		commands = append(commands,
			toolplan.MotionCommand{Kind: toolplan.Plunge, X: point.X, Y: point.Y, Z: cutDepth, FeedRate: opts.Settings.PlungeRate},
		)
		if opts.Settings.DwellTime > 0 {
			commands = append(commands, toolplan.MotionCommand{Kind: toolplan.Dwell, X: point.X, Y: point.Y, Z: cutDepth, DwellSeconds: opts.Settings.DwellTime})
		}
	}

	commands = append(commands, toolplan.MotionCommand{
		Kind: toolplan.Retract, X: point.X, Y: point.Y, Z: opts.Heights.TravelZ,
	})

	bbox := primitive.BBox{MinX: point.X, MinY: point.Y, MaxX: point.X, MaxY: point.Y}

	return &toolplan.ToolpathPlan{
		OperationID:    uuid.NewString(),
		Commands:       commands,
		Tool:           toolplan.ToolDefinition{Diameter: opts.Settings.ToolDiameter, Type: "drill"},
		EntryPoint:     point,
		ExitPoint:      point,
		CutDepth:       cutDepth,
		FeedRate:       opts.Settings.FeedRate,
		BoundingBox:    bbox,
		IsPeckMark:     opts.Settings.CannedCycle,
		IsDrillMilling: false,
		ToolDiameter:   opts.Settings.ToolDiameter,
		GroupKey:       fmt.Sprintf("%g", opts.Settings.ToolDiameter),
	}, nil
}

// peckSequence emits repeated plunge-to-level/retract-to-clearance
// pairs down to cutDepth, peckDepth per level, with a dwell at the
// final bottom.
func peckSequence(point primitive.Point, cutDepth float64, settings config.ToolSettings) []toolplan.MotionCommand {
	var out []toolplan.MotionCommand
	levelZ := -settings.PeckDepth
	clearZ := settings.RetractHeight
	for levelZ-cutDepth > 1e-9 {
		out = append(out, toolplan.MotionCommand{Kind: toolplan.Plunge, X: point.X, Y: point.Y, Z: levelZ, FeedRate: settings.PlungeRate})
		out = append(out, toolplan.MotionCommand{Kind: toolplan.Retract, X: point.X, Y: point.Y, Z: clearZ, FeedRate: settings.PlungeRate})
		levelZ -= settings.PeckDepth
	}
	out = append(out, toolplan.MotionCommand{Kind: toolplan.Plunge, X: point.X, Y: point.Y, Z: cutDepth, FeedRate: settings.PlungeRate})
	if settings.DwellTime > 0 {
		out = append(out, toolplan.MotionCommand{Kind: toolplan.Dwell, X: point.X, Y: point.Y, Z: cutDepth, DwellSeconds: settings.DwellTime})
	}
	return out
}
