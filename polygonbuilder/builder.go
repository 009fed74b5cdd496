// Package polygonbuilder converts a primitive.Set into fixed-point
// integer paths at a configured scale, normalizing every closed loop
// to CCW winding before it reaches the boolean engine. Circles are
// tessellated into straight segments using the same steps-per-radian
// approach the boolean engine's round-join offsetting uses. An Arc
// primitive is not tessellated: it is stroked along its chord with zero
// width, which has no area, so Build drops it with a warning.
package polygonbuilder

import (
	"fmt"
	"math"

	"github.com/isoroute/toolpath/clip"
	"github.com/isoroute/toolpath/primitive"
)

// Options configures the conversion from millimeter-space primitives
// to integer clip.Paths64.
type Options struct {
	// Scale is the fixed-point scale factor (default 1e5: one integer
	// unit is 1/1e5 mm).
	Scale float64
	// ArcTolerance bounds the chord error when tessellating circles, in
	// millimeters.
	ArcTolerance float64
}

// DefaultOptions matches the pipeline's default precision.coordinate
// scale and a 0.01 mm arc chord tolerance.
func DefaultOptions() Options {
	return Options{Scale: 1e5, ArcTolerance: 0.01}
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return 1e5
	}
	return o.Scale
}

func (o Options) arcTolerance() float64 {
	if o.ArcTolerance <= 0 {
		return 0.01
	}
	return o.ArcTolerance
}

// Build converts every primitive in s to a closed, CCW-normalized
// clip.Path64 (open primitives — bare Trace segments without an
// implied stadium outline — are rendered as a stroked stadium, since
// the boolean engine only operates on closed regions). Dark and clear
// primitives are not distinguished here; the caller composes them with
// the boolean engine's union/difference according to polarity.
//
// A path that tessellates to fewer than 3 vertices, zero area, or a
// self-crossing boundary (clip.ValidateTrace) is dropped rather than
// handed to the boolean engine, and a warning is returned describing
// why; this is the usual fate of a flash whose aperture collapsed to a
// point under the active scale, or a trace whose two endpoints coincide.
func Build(s primitive.Set, opts Options) (clip.Paths64, []string) {
	var out clip.Paths64
	var warnings []string
	for i, p := range s.Primitives {
		paths := buildOne(p, opts)
		for _, path := range paths {
			path = normalizeCCW(path)
			if err := clip.ValidateTrace(path); err != nil {
				warnings = append(warnings, fmt.Sprintf("primitive %d: %v", i, err))
				continue
			}
			out = append(out, path)
		}
	}
	return out, warnings
}

func buildOne(p primitive.Primitive, opts Options) []clip.Path64 {
	switch v := p.(type) {
	case primitive.Circle:
		return []clip.Path64{tessellateCircle(v.Center, v.Radius, opts)}
	case primitive.Rectangle:
		corners := v.Corners()
		return []clip.Path64{toIntPath(corners[:], opts)}
	case primitive.Arc:
		return []clip.Path64{strokeStadium(v.Start, v.End, 0, opts)}
	case primitive.PathPrimitive:
		return []clip.Path64{toIntPath(v.Path.Points, opts)}
	case primitive.Trace:
		return []clip.Path64{strokeStadium(v.Start, v.End, v.Width, opts)}
	case primitive.Flash:
		return []clip.Path64{flashOutline(v, opts)}
	case primitive.Region:
		paths := []clip.Path64{toIntPath(pointsToPrimitive(v.Points), opts)}
		for _, h := range v.Holes {
			paths = append(paths, toIntPath(pointsToPrimitive(h), opts))
		}
		return paths
	default:
		return nil
	}
}

func pointsToPrimitive(pts []primitive.Point) []primitive.Point { return pts }

func toIntPath(pts []primitive.Point, opts Options) clip.Path64 {
	scale := opts.scale()
	path := make(clip.Path64, 0, len(pts))
	for _, p := range pts {
		path = append(path, clip.PointMMToUnits(p.X, p.Y, scale))
	}
	return path
}

// tessellateCircle approximates a circle of the given radius by a
// regular polygon whose chord error stays within opts.ArcTolerance.
func tessellateCircle(center primitive.Point, radius float64, opts Options) clip.Path64 {
	steps := stepsForRadius(radius, opts.arcTolerance())
	scale := opts.scale()
	path := make(clip.Path64, 0, steps)
	for i := 0; i < steps; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		x := center.X + radius*math.Cos(theta)
		y := center.Y + radius*math.Sin(theta)
		path = append(path, clip.PointMMToUnits(x, y, scale))
	}
	return path
}

// stepsForRadius picks a step count so the chord-to-arc sagitta stays
// within tol; mirrors the offset package's round-join tessellation.
func stepsForRadius(radius, tol float64) int {
	if radius <= 0 {
		return 8
	}
	if tol <= 0 {
		tol = 0.01
	}
	ratio := 1 - tol/radius
	if ratio < -1 {
		ratio = -1
	}
	if ratio > 1 {
		ratio = 1
	}
	steps := int(math.Ceil(2 * math.Pi / math.Acos(ratio)))
	if steps < 8 {
		steps = 8
	}
	if steps > 720 {
		steps = 720
	}
	return steps
}

// strokeStadium builds the closed stadium outline of a segment stroked
// by a round tool of the given width (width==0 puts every point on the
// segment itself, giving a zero-area outline that Build drops).
func strokeStadium(start, end primitive.Point, width float64, opts Options) clip.Path64 {
	r := width / 2
	dx, dy := end.X-start.X, end.Y-start.Y
	length := math.Hypot(dx, dy)
	if length < 1e-9 {
		return tessellateCircle(start, r, opts)
	}
	ux, uy := dx/length, dy/length
	nx, ny := -uy, ux

	steps := stepsForRadius(r, opts.arcTolerance())
	if steps < 8 {
		steps = 8
	}
	half := steps / 2

	var pts []primitive.Point
	pts = append(pts, primitive.Point{X: start.X + nx*r, Y: start.Y + ny*r})
	pts = append(pts, primitive.Point{X: end.X + nx*r, Y: end.Y + ny*r})
	startAngle := math.Atan2(ny, nx)
	for i := 1; i <= half; i++ {
		theta := startAngle - math.Pi*float64(i)/float64(half)
		pts = append(pts, primitive.Point{X: end.X + r*math.Cos(theta), Y: end.Y + r*math.Sin(theta)})
	}
	for i := 1; i <= half; i++ {
		theta := (startAngle + math.Pi) - math.Pi*float64(i)/float64(half)
		pts = append(pts, primitive.Point{X: start.X + r*math.Cos(theta), Y: start.Y + r*math.Sin(theta)})
	}
	return toIntPath(pts, opts)
}

// flashOutline renders a Flash's aperture as a polygon at the flash position.
func flashOutline(f primitive.Flash, opts Options) clip.Path64 {
	switch f.Aperture.Shape {
	case primitive.ShapeCircle:
		return tessellateCircle(f.Position, f.Aperture.Diameter/2, opts)
	case primitive.ShapeRect, primitive.ShapeObround:
		hw, hh := f.Aperture.Width/2, f.Aperture.Height/2
		corners := []primitive.Point{
			{X: f.Position.X - hw, Y: f.Position.Y - hh},
			{X: f.Position.X + hw, Y: f.Position.Y - hh},
			{X: f.Position.X + hw, Y: f.Position.Y + hh},
			{X: f.Position.X - hw, Y: f.Position.Y + hh},
		}
		return toIntPath(corners, opts)
	case primitive.ShapePolygon:
		n := f.Aperture.Vertices
		if n < 3 {
			n = 3
		}
		r := f.Aperture.Diameter / 2
		rot := f.Aperture.Rotation * math.Pi / 180
		pts := make([]primitive.Point, 0, n)
		for i := 0; i < n; i++ {
			theta := rot + 2*math.Pi*float64(i)/float64(n)
			pts = append(pts, primitive.Point{X: f.Position.X + r*math.Cos(theta), Y: f.Position.Y + r*math.Sin(theta)})
		}
		return toIntPath(pts, opts)
	case primitive.ShapeMacro:
		box := f.Aperture.BoundingBox()
		corners := []primitive.Point{
			{X: f.Position.X + box.MinX, Y: f.Position.Y + box.MinY},
			{X: f.Position.X + box.MaxX, Y: f.Position.Y + box.MinY},
			{X: f.Position.X + box.MaxX, Y: f.Position.Y + box.MaxY},
			{X: f.Position.X + box.MinX, Y: f.Position.Y + box.MaxY},
		}
		return toIntPath(corners, opts)
	default:
		return tessellateCircle(f.Position, 0, opts)
	}
}

// normalizeCCW reverses path if its signed area is negative, matching
// §3's invariant that every closed path has CCW winding before
// reaching the boolean engine.
func normalizeCCW(path clip.Path64) clip.Path64 {
	if clip.IsPositive64(path) {
		return path
	}
	return clip.Reverse64(path)
}
