// Package config is the single Config value threaded through the
// pipeline at construction: precision, tangency, optimizer tuning, and
// per-operation tool settings. There is no ambient/global
// configuration state anywhere in this module — every stage that
// needs a setting receives it explicitly.
package config

import "fmt"

// Precision groups the geometric tolerances shared across stages.
type Precision struct {
	// Coordinate is the fixed-point scale factor (integer units per mm).
	Coordinate float64 `json:"coordinate"`
	// ZeroLength is the distance below which a draw is treated as a
	// zero-length flash-equivalent plunge+retract.
	ZeroLength float64 `json:"zero_length"`
	// Epsilon is a general-purpose geometric comparison tolerance.
	Epsilon float64 `json:"epsilon"`
}

// Tangency configures the boolean engine's pre-operation tangency
// resolution pass.
type Tangency struct {
	Enabled   bool    `json:"enabled"`
	Epsilon   float64 `json:"epsilon"`
	Threshold float64 `json:"threshold"`
	Strategy  string  `json:"strategy"`
	MinOffset float64 `json:"min_offset"`
	MaxOffset float64 `json:"max_offset"`
	// Seed seeds the per-operation PRNG; 0 uses the resolver's fixed
	// default seed.
	Seed int64 `json:"seed"`
}

// GCodeOptimization toggles the optimizer's coarser-grained stages.
type GCodeOptimization struct {
	PathOrdering           bool `json:"path_ordering"`
	SegmentSimplification  bool `json:"segment_simplification"`
	ZLevelGrouping         bool `json:"z_level_grouping"`
}

// Simplification configures the optimizer's angle-aware segment
// simplification stage (F).
type Simplification struct {
	CurveToleranceFallback float64 `json:"curve_tolerance_fallback"`
	StraightToleranceFallback float64 `json:"straight_tolerance_fallback"`
	SharpCornerTolerance   float64 `json:"sharp_corner_tolerance"`
	StraightAngleThreshold float64 `json:"straight_angle_threshold"`
	SharpAngleThreshold    float64 `json:"sharp_angle_threshold"`
}

// RapidCost configures the optimizer's rapid-link cost model (stage D/E).
type RapidCost struct {
	ZTravelThreshold float64 `json:"z_travel_threshold"`
	ZCostFactor      float64 `json:"z_cost_factor"`
	BaseCost         float64 `json:"base_cost"`
}

// MachineHeights gives the Z heights the compiler and optimizer use
// for retracts and travel moves.
type MachineHeights struct {
	SafeZ   float64 `json:"safe_z"`
	TravelZ float64 `json:"travel_z"`
}

// CutSide selects which side of a closed toolpath the tool center runs on.
type CutSide int

const (
	CutOutside CutSide = iota
	CutInside
	CutOn
)

// EntryType selects the compiler's plunge strategy for a pass.
type EntryType int

const (
	EntryPlunge EntryType = iota
	EntryRamp
	EntryHelix
)

// Direction names the milling direction relative to feed.
type Direction int

const (
	Conventional Direction = iota
	Climb
)

// ToolSettings are the per-operation settings the compiler consumes to
// turn one offset layer (or drill pattern) into a ToolpathPlan.
type ToolSettings struct {
	ToolDiameter float64   `json:"tool_diameter"`
	Passes       int       `json:"passes"`
	StepOver     float64   `json:"step_over"`
	CutDepth     float64   `json:"cut_depth"`
	DepthPerPass float64   `json:"depth_per_pass"`
	MultiDepth   bool      `json:"multi_depth"`
	FeedRate     float64   `json:"feed_rate"`
	PlungeRate   float64   `json:"plunge_rate"`
	SpindleSpeed float64   `json:"spindle_speed"`
	Direction    Direction `json:"direction"`
	EntryType    EntryType `json:"entry_type"`

	Tabs       bool    `json:"tabs"`
	TabWidth   float64 `json:"tab_width"`
	TabHeight  float64 `json:"tab_height"`
	TabCount   int     `json:"tab_count"`

	CannedCycle   bool    `json:"canned_cycle"`
	PeckDepth     float64 `json:"peck_depth"`
	DwellTime     float64 `json:"dwell_time"`
	RetractHeight float64 `json:"retract_height"`

	CutSide    CutSide `json:"cut_side"`
	MillHoles  bool    `json:"mill_holes"`
}

// DefaultToolSettings returns conservative single-pass defaults; most
// fields still require a caller-supplied ToolDiameter.
func DefaultToolSettings() ToolSettings {
	return ToolSettings{
		Passes:        1,
		StepOver:      0.5,
		FeedRate:      1000,
		PlungeRate:    300,
		SpindleSpeed:  12000,
		EntryType:     EntryPlunge,
		PeckDepth:     0.6,
		RetractHeight: 0.5,
		CutSide:       CutOutside,
	}
}

// Config is the single value threaded through the pipeline at
// construction. It carries no behavior beyond Validate.
type Config struct {
	Precision         Precision         `json:"precision"`
	Tangency          Tangency          `json:"tangency"`
	GCodeOptimization GCodeOptimization `json:"gcode_optimization"`
	Simplification    Simplification    `json:"simplification"`
	RapidCost         RapidCost         `json:"rapid_cost"`
	MachineHeights    MachineHeights    `json:"machine_heights"`

	// MinClearance is the minimum required gap, in millimeters, between
	// two resolved copper islands on the same layer. 0 disables the
	// check (the default — not every board enforces a fabrication rule
	// beyond what the tool geometry itself already guarantees).
	MinClearance float64 `json:"min_clearance"`
}

// Default returns the pipeline's documented defaults: scale 1e5,
// epsilon 50 (≈0.0005mm at that scale), and the §4.4 magic constants.
func Default() Config {
	return Config{
		Precision: Precision{
			Coordinate: 1e5,
			ZeroLength: 1e-4,
			Epsilon:    1e-6,
		},
		Tangency: Tangency{
			Enabled:   true,
			Epsilon:   50,
			Threshold: 0.01,
			Strategy:  "outward-inflate",
			MinOffset: 10,
			MaxOffset: 1000,
		},
		GCodeOptimization: GCodeOptimization{
			PathOrdering:          true,
			SegmentSimplification: true,
			ZLevelGrouping:        true,
		},
		Simplification: Simplification{
			CurveToleranceFallback:    0.02,
			StraightToleranceFallback: 0.01,
			SharpCornerTolerance:      0.002,
			StraightAngleThreshold:    5,
			SharpAngleThreshold:       150,
		},
		RapidCost: RapidCost{
			ZTravelThreshold: 5,
			ZCostFactor:      1.5,
			BaseCost:         10000,
		},
		MachineHeights: MachineHeights{
			SafeZ:   5,
			TravelZ: 1,
		},
	}
}

// Validate checks the configuration-level invariants the propagation
// policy treats as fatal: these are raised to the caller before the
// pipeline starts, never folded into per-operation warnings.
func (c Config) Validate() error {
	if c.Precision.Coordinate <= 0 {
		return fmt.Errorf("config: precision.coordinate must be positive")
	}
	if c.Tangency.MinOffset <= 0 || c.Tangency.MaxOffset < c.Tangency.MinOffset {
		return fmt.Errorf("config: tangency min/max offset out of order")
	}
	if c.Simplification.StraightAngleThreshold >= c.Simplification.SharpAngleThreshold {
		return fmt.Errorf("config: straight angle threshold must be below sharp angle threshold")
	}
	if c.MachineHeights.SafeZ < c.MachineHeights.TravelZ {
		return fmt.Errorf("config: safe Z must be at or above travel Z")
	}
	if c.MinClearance < 0 {
		return fmt.Errorf("config: min_clearance must be >= 0, got %g", c.MinClearance)
	}
	return nil
}

// Validate checks the per-operation tool settings' InvalidParameter
// conditions named in §7.
func (t ToolSettings) Validate() error {
	if t.ToolDiameter <= 0 {
		return fmt.Errorf("config: tool diameter must be positive, got %g", t.ToolDiameter)
	}
	if t.Passes < 1 {
		return fmt.Errorf("config: passes must be >= 1, got %d", t.Passes)
	}
	if t.StepOver <= 0 || t.StepOver > 1 {
		return fmt.Errorf("config: step-over must be in (0,1], got %g", t.StepOver)
	}
	return nil
}
