// Package offsetgen is the offset generator: given a tool diameter,
// pass count, and step-over fraction, it produces an ordered set of
// offset polygon layers against a tangency-resolved, self-unioned
// source polygon set — positive deltas for external isolation routing,
// negative for internal pocket clearing.
package offsetgen

import (
	"fmt"
	"strconv"

	"github.com/isoroute/toolpath/clip"
)

// Direction selects which side of the source polygons a pass cuts.
type Direction int

const (
	External Direction = iota // isolation routing: offset outward
	Internal                  // pocket/drill milling: offset inward
)

func (d Direction) sign() float64 {
	if d == Internal {
		return -1
	}
	return 1
}

// Params configures one offsetgen.Generate call.
type Params struct {
	ToolDiameter float64
	Passes       int
	StepOver     float64 // fraction in (0, 1]
	Direction    Direction
	JoinType     clip.JoinType
	EndType      clip.EndType
	MiterLimit   float64

	// TangencyEnabled gates the pre-offset tangency resolution pass;
	// when false Generate offsets source as given. TangencyEpsilon and
	// TangencySeed configure that pass when enabled; TangencyEpsilon<=0
	// uses clip.DefaultTangencyEpsilon.
	TangencyEnabled bool
	TangencyEpsilon float64
	TangencySeed    int64

	// Scale is the fixed-point scale factor paths were built at
	// (polygonbuilder.Options.Scale); deltas below are computed in
	// millimeters and converted to integer units via this factor.
	// Scale<=0 defaults to 1e5.
	Scale float64
}

func (p Params) scale() float64 {
	if p.Scale <= 0 {
		return 1e5
	}
	return p.Scale
}

// Layer is one offset pass's output: the resulting paths plus the
// metadata the compiler and optimizer read.
type Layer struct {
	Paths        clip.Paths64
	Pass         int
	GroupKey     string
	StepOver     float64
	ToolDiameter float64
	Delta        float64
}

// Validate reports an InvalidParameter-class error for out-of-range
// inputs, per the propagation policy: configuration/parameter errors
// are fatal and raised before the pipeline proceeds.
func (p Params) Validate() error {
	if p.ToolDiameter <= 0 {
		return fmt.Errorf("offsetgen: tool diameter must be positive, got %g", p.ToolDiameter)
	}
	if p.Passes < 1 {
		return fmt.Errorf("offsetgen: passes must be >= 1, got %d", p.Passes)
	}
	if p.StepOver <= 0 || p.StepOver > 1 {
		return fmt.Errorf("offsetgen: step-over must be in (0,1], got %g", p.StepOver)
	}
	return nil
}

// Generate computes each pass's delta independently against source
// (already self-unioned and tangency-resolved by the caller) and
// returns one Layer per pass, ordered by pass index: pass 0, the one
// nearest the source outline, first.
//
//	delta_i = sign * (d/2 + i*d*(1-s))   for i in [0, passes)
func Generate(source clip.Paths64, p Params) ([]Layer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	resolved := source
	if p.TangencyEnabled {
		resolver := clip.NewResolver(p.TangencyEpsilon, p.TangencySeed)
		r, err := resolver.Resolve(source, p.JoinType)
		if err != nil {
			return nil, fmt.Errorf("offsetgen: tangency resolution: %w", err)
		}
		resolved = r
	}

	groupKey := strconv.FormatFloat(p.ToolDiameter, 'g', -1, 64)
	sign := p.Direction.sign()

	layers := make([]Layer, 0, p.Passes)
	for i := 0; i < p.Passes; i++ {
		deltaMM := sign * (p.ToolDiameter/2 + float64(i)*p.ToolDiameter*(1-p.StepOver))
		delta := deltaMM * p.scale()
		paths, err := clip.Offset(resolved, delta, p.JoinType, p.EndType, p.MiterLimit)
		if err != nil {
			return nil, fmt.Errorf("offsetgen: pass %d offset: %w", i, err)
		}
		layers = append(layers, Layer{
			Paths:        paths,
			Pass:         i,
			GroupKey:     groupKey,
			StepOver:     p.StepOver,
			ToolDiameter: p.ToolDiameter,
			Delta:        deltaMM,
		})
	}
	return layers, nil
}
