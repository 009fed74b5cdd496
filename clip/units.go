package clip

import "math"

// MMToUnits converts a millimeter coordinate into the engine's fixed-point
// integer board units at the given scale (integer units per millimeter).
// This is the one place that coordinate conversion happens; callers that
// used to inline their own `int64(math.Round(x*scale))` (the polygon
// builder and the toolpath compiler both did) now go through here so the
// rounding rule lives with the coordinate system it rounds into.
func MMToUnits(mm float64, scale float64) int64 {
	return int64(math.Round(mm * scale))
}

// UnitsToMM converts a fixed-point integer board unit back into
// millimeters at the given scale. The inverse of MMToUnits.
func UnitsToMM(units int64, scale float64) float64 {
	return float64(units) / scale
}

// PointMMToUnits converts a millimeter (x, y) pair into a Point64 at the
// given scale.
func PointMMToUnits(x, y float64, scale float64) Point64 {
	return Point64{X: MMToUnits(x, scale), Y: MMToUnits(y, scale)}
}

// PointUnitsToMM converts a Point64 back into a millimeter (x, y) pair at
// the given scale.
func PointUnitsToMM(p Point64, scale float64) (x, y float64) {
	return UnitsToMM(p.X, scale), UnitsToMM(p.Y, scale)
}
