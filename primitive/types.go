// Package primitive holds the PCB primitive set the Gerber parser
// produces and the polygon builder consumes: points, paths, the
// primitive shape union, apertures, and the macro expression language
// over numbered variables.
package primitive

import "math"

// Polarity marks whether a primitive adds copper (Dark) or removes it
// from everything drawn before it (Clear).
type Polarity uint8

const (
	Dark Polarity = iota
	Clear
)

// Point is a 2D/3D coordinate in millimeters at the machine layer. Z is
// a pointer so "no Z given" (a 2D primitive) is distinguishable from
// "Z is zero".
type Point struct {
	X, Y float64
	Z    *float64
}

// WithZ returns a copy of p with Z set.
func (p Point) WithZ(z float64) Point {
	p.Z = &z
	return p
}

// BBox is an axis-aligned bounding box in millimeters.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// Union returns the smallest BBox containing both b and o.
func (b BBox) Union(o BBox) BBox {
	if o.MinX < b.MinX {
		b.MinX = o.MinX
	}
	if o.MinY < b.MinY {
		b.MinY = o.MinY
	}
	if o.MaxX > b.MaxX {
		b.MaxX = o.MaxX
	}
	if o.MaxY > b.MaxY {
		b.MaxY = o.MaxY
	}
	return b
}

// Inflate grows the box by d on every side (d may be negative to shrink).
func (b BBox) Inflate(d float64) BBox {
	return BBox{b.MinX - d, b.MinY - d, b.MaxX + d, b.MaxY + d}
}

// Intersects reports whether b and o overlap, including touching edges.
func (b BBox) Intersects(o BBox) bool {
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX && b.MinY <= o.MaxY && o.MinY <= b.MaxY
}

func bboxFromPoints(pts []Point) BBox {
	if len(pts) == 0 {
		return BBox{}
	}
	box := BBox{pts[0].X, pts[0].Y, pts[0].X, pts[0].Y}
	for _, p := range pts[1:] {
		if p.X < box.MinX {
			box.MinX = p.X
		}
		if p.Y < box.MinY {
			box.MinY = p.Y
		}
		if p.X > box.MaxX {
			box.MaxX = p.X
		}
		if p.Y > box.MaxY {
			box.MaxY = p.Y
		}
	}
	return box
}

// Path is an ordered sequence of points, open or closed.
type Path struct {
	Points []Point
	Closed bool
}

// BoundingBox returns the smallest box containing every point on the path.
func (p Path) BoundingBox() BBox {
	return bboxFromPoints(p.Points)
}

// Primitive is the sum type of everything the polygon builder accepts:
// Circle, Rectangle, Arc, PathPrimitive, Trace, Flash, Region.
type Primitive interface {
	isPrimitive()
	BoundingBox() BBox
	PolarityOf() Polarity
}

// Circle is a filled circle primitive.
type Circle struct {
	Center   Point
	Radius   float64
	Polarity Polarity
}

func (Circle) isPrimitive() {}

// BoundingBox implements Primitive.
func (c Circle) BoundingBox() BBox {
	return BBox{c.Center.X - c.Radius, c.Center.Y - c.Radius, c.Center.X + c.Radius, c.Center.Y + c.Radius}
}

// PolarityOf implements Primitive.
func (c Circle) PolarityOf() Polarity { return c.Polarity }

// Rectangle is an axis-aligned (before rotation) filled rectangle
// primitive, center-referenced.
type Rectangle struct {
	X, Y, W, H float64
	RotationDeg float64
	Polarity    Polarity
}

func (Rectangle) isPrimitive() {}

// Corners returns the four corners of the rectangle after rotation
// about its center, in CCW order starting from the bottom-left.
func (r Rectangle) Corners() [4]Point {
	hw, hh := r.W/2, r.H/2
	local := [4][2]float64{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
	rad := r.RotationDeg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	var out [4]Point
	for i, pt := range local {
		rx := pt[0]*cos - pt[1]*sin
		ry := pt[0]*sin + pt[1]*cos
		out[i] = Point{X: r.X + rx, Y: r.Y + ry}
	}
	return out
}

// BoundingBox implements Primitive.
func (r Rectangle) BoundingBox() BBox {
	corners := r.Corners()
	return bboxFromPoints(corners[:])
}

// PolarityOf implements Primitive.
func (r Rectangle) PolarityOf() Polarity { return r.Polarity }

// Arc is a circular arc primitive defined by start, end, center, and
// winding direction.
type Arc struct {
	Start, End, Center Point
	Clockwise          bool
	Polarity           Polarity
}

func (Arc) isPrimitive() {}

// BoundingBox implements Primitive. Conservative: returns the bounding
// box of the full circle through Start around Center, which is always a
// superset of the true arc bounding box.
func (a Arc) BoundingBox() BBox {
	r := math.Hypot(a.Start.X-a.Center.X, a.Start.Y-a.Center.Y)
	return BBox{a.Center.X - r, a.Center.Y - r, a.Center.X + r, a.Center.Y + r}
}

// PolarityOf implements Primitive.
func (a Arc) PolarityOf() Polarity { return a.Polarity }

// PathPrimitive wraps a raw point sequence (open or closed) as a
// primitive, e.g. an outline macro primitive.
type PathPrimitive struct {
	Path     Path
	Polarity Polarity
}

func (PathPrimitive) isPrimitive() {}

// BoundingBox implements Primitive.
func (p PathPrimitive) BoundingBox() BBox { return p.Path.BoundingBox() }

// PolarityOf implements Primitive.
func (p PathPrimitive) PolarityOf() Polarity { return p.Polarity }

// InterpolationMode names how a Trace's midpoint, if any, is computed.
type InterpolationMode uint8

const (
	Linear InterpolationMode = iota
	ClockwiseArc
	CounterClockwiseArc
)

// Trace is a segment stroked with a fixed-width round aperture (or an
// arc segment, for ClockwiseArc/CounterClockwiseArc).
type Trace struct {
	Start, End Point
	Width      float64
	Mode       InterpolationMode
	// I, J are the arc center offset relative to Start, used when Mode != Linear.
	I, J     float64
	Polarity Polarity
}

func (Trace) isPrimitive() {}

// BoundingBox implements Primitive.
func (t Trace) BoundingBox() BBox {
	box := BBox{
		MinX: math.Min(t.Start.X, t.End.X) - t.Width/2,
		MinY: math.Min(t.Start.Y, t.End.Y) - t.Width/2,
		MaxX: math.Max(t.Start.X, t.End.X) + t.Width/2,
		MaxY: math.Max(t.Start.Y, t.End.Y) + t.Width/2,
	}
	if t.Mode != Linear {
		cx, cy := t.Start.X+t.I, t.Start.Y+t.J
		r := math.Hypot(t.I, t.J)
		box = box.Union(BBox{cx - r, cy - r, cx + r, cy + r})
	}
	return box
}

// PolarityOf implements Primitive.
func (t Trace) PolarityOf() Polarity { return t.Polarity }

// Flash stamps an aperture at a point.
type Flash struct {
	Position Point
	Aperture Aperture
	Polarity Polarity
}

func (Flash) isPrimitive() {}

// BoundingBox implements Primitive.
func (f Flash) BoundingBox() BBox {
	local := f.Aperture.BoundingBox()
	return BBox{
		local.MinX + f.Position.X, local.MinY + f.Position.Y,
		local.MaxX + f.Position.X, local.MaxY + f.Position.Y,
	}
}

// PolarityOf implements Primitive.
func (f Flash) PolarityOf() Polarity { return f.Polarity }

// Region is a closed polygon filled per its own polarity, with optional
// holes.
type Region struct {
	Points   []Point
	Holes    [][]Point
	Polarity Polarity
}

func (Region) isPrimitive() {}

// BoundingBox implements Primitive.
func (r Region) BoundingBox() BBox { return bboxFromPoints(r.Points) }

// PolarityOf implements Primitive.
func (r Region) PolarityOf() Polarity { return r.Polarity }

// Set is an ordered collection of primitives making up one Gerber
// operation/layer, plus the warnings accumulated while building it.
type Set struct {
	Primitives []Primitive
	Warnings   []string
}

// BoundingBox returns the union of every primitive's bounding box.
func (s Set) BoundingBox() BBox {
	if len(s.Primitives) == 0 {
		return BBox{}
	}
	box := s.Primitives[0].BoundingBox()
	for _, p := range s.Primitives[1:] {
		box = box.Union(p.BoundingBox())
	}
	return box
}
