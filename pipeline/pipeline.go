// Package pipeline is the ambient orchestration layer: it runs one
// operation (one Gerber layer, or one drill pattern) through polygon
// building, boolean self-union, offset generation, compilation,
// optimization, and metadata calculation, and fans independent
// operations out across goroutines since they share no mutable state.
package pipeline

import (
	"context"
	"fmt"

	"github.com/isoroute/toolpath/clip"
	"github.com/isoroute/toolpath/compiler"
	"github.com/isoroute/toolpath/config"
	"github.com/isoroute/toolpath/gerber"
	"github.com/isoroute/toolpath/metadata"
	"github.com/isoroute/toolpath/offsetgen"
	"github.com/isoroute/toolpath/optimizer"
	"github.com/isoroute/toolpath/polygonbuilder"
	"github.com/isoroute/toolpath/primitive"
	"github.com/isoroute/toolpath/toolplan"
)

// Status classifies how an operation finished.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Kind distinguishes a routed/isolated operation (Gerber source,
// offset+compile) from a drill operation (a list of points, no
// polygon builder or boolean engine involved).
type Kind int

const (
	KindRoute Kind = iota
	KindDrill
)

// Operation is everything one independent pipeline run needs.
type Operation struct {
	Name string
	Kind Kind

	// GerberSource is the RS-274X text for KindRoute operations.
	GerberSource string
	// DrillPoints are the hit locations for KindDrill operations.
	DrillPoints []primitive.Point

	Settings config.ToolSettings
	Config   config.Config

	JoinType   clip.JoinType
	EndType    clip.EndType
	MiterLimit float64

	// StartPosition is the machine's position before this operation
	// begins, used by the optimizer's first link-cost evaluation.
	StartPosition primitive.Point
}

// OperationResult is what one Run call produces: the final plans
// (ordered and simplified by the optimizer), per-plan metadata,
// optimizer statistics, accumulated warnings, and a status summarizing
// whether anything went wrong.
type OperationResult struct {
	Name     string
	Plans    []*toolplan.ToolpathPlan
	Metadata []metadata.Result
	Stats    optimizer.Statistics
	Warnings []string
	Status   Status
	// Cancelled mirrors Stats.Cancelled for callers that don't look at
	// Stats directly.
	Cancelled bool
}

// Run executes one operation's full pipeline. Per §7's propagation
// policy, configuration errors (invalid Config or ToolSettings) are
// fatal and returned before any stage runs; everything downstream of
// that — parse warnings, discarded degenerate paths, boolean failures
// — is folded into the result's Warnings/Status instead of aborting,
// so a caller fanning out many operations (RunMany) never has one
// operation's geometry quirk take down another's.
func Run(ctx context.Context, op Operation) (OperationResult, error) {
	result := OperationResult{Name: op.Name, Status: StatusOK}

	if err := op.Config.Validate(); err != nil {
		return result, err
	}
	if err := op.Settings.Validate(); err != nil {
		return result, err
	}

	var plans []*toolplan.ToolpathPlan

	switch op.Kind {
	case KindDrill:
		plans = compileDrillPlans(op, &result)
	default:
		var err error
		plans, err = compileRoutePlans(ctx, op, &result)
		if err != nil {
			result.Status = StatusError
			result.Warnings = append(result.Warnings, err.Error())
			return result, nil
		}
	}

	select {
	case <-ctx.Done():
		result.Cancelled = true
		result.Status = StatusWarning
		return result, nil
	default:
	}

	ordered, stats, err := optimizer.Optimize(ctx, plans, optimizer.Options{
		Config:         op.Config,
		RapidCost:      op.Config.RapidCost,
		Simplification: op.Config.Simplification,
		StartPosition:  op.StartPosition,
	})
	if err != nil {
		result.Status = StatusError
		result.Warnings = append(result.Warnings, err.Error())
		return result, nil
	}

	result.Plans = ordered
	result.Stats = stats
	result.Cancelled = stats.Cancelled
	result.Metadata = metadata.WalkAll(ordered, metadata.Options{})

	switch {
	case stats.Cancelled:
		result.Status = StatusWarning
	case len(result.Warnings) > 0:
		result.Status = StatusWarning
	}
	return result, nil
}

// compileRoutePlans runs the polygon builder, boolean self-union,
// offset generator, and compiler for one Gerber-sourced operation.
func compileRoutePlans(ctx context.Context, op Operation, result *OperationResult) ([]*toolplan.ToolpathPlan, error) {
	parsed, err := gerber.Parse(op.GerberSource)
	if err != nil {
		return nil, fmt.Errorf("gerber parse: %w", err)
	}
	result.Warnings = append(result.Warnings, parsed.Set.Warnings...)

	scale := op.Config.Precision.Coordinate
	final, polarityWarnings, err := resolvePolarity(parsed.Set, scale)
	result.Warnings = append(result.Warnings, polarityWarnings...)
	if err != nil {
		return nil, fmt.Errorf("boolean self-union: %w", err)
	}
	if len(final) == 0 {
		return nil, nil
	}

	if op.Config.MinClearance > 0 {
		minGap := clip.MMToUnits(op.Config.MinClearance, scale)
		if violations, err := clip.CheckClearance(final, float64(minGap), clip.NonZero); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%v: %d island pair(s) closer than %gmm", err, len(violations), op.Config.MinClearance))
		}
	}

	layers, err := offsetLayers(final, op)
	if err != nil {
		return nil, fmt.Errorf("offset generator: %w", err)
	}

	compilerOpts := compiler.Options{
		Scale:     scale,
		Settings:  op.Settings,
		Heights:   op.Config.MachineHeights,
		Precision: op.Config.Precision,
	}

	var plans []*toolplan.ToolpathPlan
	for _, layer := range layers {
		for _, path := range layer.Paths {
			select {
			case <-ctx.Done():
				result.Warnings = append(result.Warnings, "cancelled mid-compile; remaining paths discarded")
				return plans, nil
			default:
			}

			plan, err := compiler.CompilePath(ctx, path, layer.Pass, compilerOpts)
			if err != nil {
				if err == context.Canceled {
					result.Warnings = append(result.Warnings, "cancelled mid-compile; partial plan discarded")
					return plans, nil
				}
				result.Warnings = append(result.Warnings, fmt.Sprintf("discarded path: %v", err))
				continue
			}
			plans = append(plans, plan)
		}
	}
	return plans, nil
}

func compileDrillPlans(op Operation, result *OperationResult) []*toolplan.ToolpathPlan {
	compilerOpts := compiler.Options{
		Scale:     op.Config.Precision.Coordinate,
		Settings:  op.Settings,
		Heights:   op.Config.MachineHeights,
		Precision: op.Config.Precision,
	}

	var plans []*toolplan.ToolpathPlan
	for _, pt := range op.DrillPoints {
		plan, err := compiler.CompileDrill(pt, compilerOpts)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("discarded drill point: %v", err))
			continue
		}
		plans = append(plans, plan)
	}
	return plans
}

// resolvePolarity splits primitives by polarity, unions every dark
// primitive into one solid (the round-trip property in §8 requires
// this self-union step to be idempotent), then subtracts the unioned
// clear primitives from it. Degenerate or self-crossing primitives
// dropped by the polygon builder (clip.ValidateTrace) come back as
// warnings rather than failing the whole operation.
func resolvePolarity(s primitive.Set, scale float64) (clip.Paths64, []string, error) {
	var dark, clearSet primitive.Set
	for _, p := range s.Primitives {
		if p.PolarityOf() == primitive.Clear {
			clearSet.Primitives = append(clearSet.Primitives, p)
		} else {
			dark.Primitives = append(dark.Primitives, p)
		}
	}

	opts := polygonbuilder.Options{Scale: scale}
	darkPaths, warnings := polygonbuilder.Build(dark, opts)
	if len(darkPaths) == 0 {
		return nil, warnings, nil
	}

	unioned, _, err := clip.BooleanOp64(clip.Union, clip.NonZero, darkPaths, nil, nil)
	if err != nil {
		return nil, warnings, err
	}

	if len(clearSet.Primitives) == 0 {
		return unioned, warnings, nil
	}
	clearPaths, clearWarnings := polygonbuilder.Build(clearSet, opts)
	warnings = append(warnings, clearWarnings...)
	final, _, err := clip.BooleanOp64(clip.Difference, clip.NonZero, unioned, nil, clearPaths)
	if err != nil {
		return nil, warnings, err
	}
	return final, warnings, nil
}

// offsetLayers derives an offsetgen.Params from the operation's tool
// settings and cut side. CutOn skips the offset generator entirely —
// the tool runs directly on the input polygons, one pass, zero delta.
func offsetLayers(source clip.Paths64, op Operation) ([]offsetgen.Layer, error) {
	if op.Settings.CutSide == config.CutOn {
		return []offsetgen.Layer{{
			Paths:        source,
			Pass:         0,
			GroupKey:     fmt.Sprintf("%g", op.Settings.ToolDiameter),
			StepOver:     op.Settings.StepOver,
			ToolDiameter: op.Settings.ToolDiameter,
			Delta:        0,
		}}, nil
	}

	direction := offsetgen.External
	if op.Settings.CutSide == config.CutInside {
		direction = offsetgen.Internal
	}

	params := offsetgen.Params{
		ToolDiameter:    op.Settings.ToolDiameter,
		Passes:          op.Settings.Passes,
		StepOver:        op.Settings.StepOver,
		Direction:       direction,
		JoinType:        op.JoinType,
		EndType:         op.EndType,
		MiterLimit:      op.MiterLimit,
		TangencyEnabled: op.Config.Tangency.Enabled,
		TangencyEpsilon: op.Config.Tangency.Epsilon,
		TangencySeed:    op.Config.Tangency.Seed,
		Scale:           op.Config.Precision.Coordinate,
	}
	return offsetgen.Generate(source, params)
}
