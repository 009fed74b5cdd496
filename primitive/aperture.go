package primitive

import "math"

// ApertureShape names the built-in Gerber aperture shapes. Macro
// apertures carry their own primitive list instead of a fixed shape.
type ApertureShape uint8

const (
	ShapeCircle ApertureShape = iota
	ShapeRect
	ShapeObround
	ShapePolygon
	ShapeMacro
)

// Aperture is a parametric shape definition referenced by a Dnn code. A
// macro aperture additionally carries a list of MacroPrimitive values
// evaluated against the aperture's modifier parameters.
type Aperture struct {
	Code  int
	Shape ApertureShape

	// Circle/Polygon
	Diameter float64
	// Rect/Obround
	Width, Height float64
	// Polygon
	Vertices int
	Rotation float64
	HoleDiameter float64

	// Macro
	MacroName  string
	Primitives []MacroPrimitive
	Modifiers  []float64
}

// BoundingBox returns the aperture's bounding box centered on its own
// origin (i.e. as if flashed at (0,0)).
func (a Aperture) BoundingBox() BBox {
	switch a.Shape {
	case ShapeCircle:
		r := a.Diameter / 2
		return BBox{-r, -r, r, r}
	case ShapeRect:
		hw, hh := a.Width/2, a.Height/2
		return BBox{-hw, -hh, hw, hh}
	case ShapeObround:
		hw, hh := a.Width/2, a.Height/2
		return BBox{-hw, -hh, hw, hh}
	case ShapePolygon:
		r := a.Diameter / 2
		return BBox{-r, -r, r, r}
	case ShapeMacro:
		return a.macroBoundingBox()
	default:
		return BBox{}
	}
}

func (a Aperture) macroBoundingBox() BBox {
	env := newMacroEnv(a.Modifiers)
	var box BBox
	first := true
	for _, mp := range a.Primitives {
		b, ok := mp.boundingBox(env)
		if !ok {
			continue
		}
		if first {
			box = b
			first = false
			continue
		}
		box = box.Union(b)
	}
	return box
}

// MacroPrimitiveCode is the Gerber AM primitive code (§6).
type MacroPrimitiveCode int

const (
	MacroCircle          MacroPrimitiveCode = 1
	MacroOutline         MacroPrimitiveCode = 4
	MacroRegularPolygon  MacroPrimitiveCode = 5
	MacroVectorLine      MacroPrimitiveCode = 20
	MacroCenterLineRect  MacroPrimitiveCode = 21
	MacroLowerLeftRect   MacroPrimitiveCode = 22
)

// MacroPrimitive is one expression-parameterized shape inside an AM
// aperture macro. Params are unevaluated expressions over the macro's
// numbered variables ($1..$n); each Expr's Eval resolves it against a
// variable environment built from the Dnn modifier list.
type MacroPrimitive struct {
	Code   MacroPrimitiveCode
	Params []Expr
}

// Exposure evaluates this primitive's exposure parameter: 1 means draw
// (add material per the macro's net polarity), 0 means erase.
func (mp MacroPrimitive) Exposure(env *Env) bool {
	if len(mp.Params) == 0 {
		return true
	}
	return mp.Params[0].Eval(env) != 0
}

func (mp MacroPrimitive) boundingBox(env *Env) (BBox, bool) {
	vals := make([]float64, len(mp.Params))
	for i, e := range mp.Params {
		vals[i] = e.Eval(env)
	}
	switch mp.Code {
	case MacroCircle:
		if len(vals) < 4 {
			return BBox{}, false
		}
		diameter, cx, cy := vals[1], vals[2], vals[3]
		r := diameter / 2
		return BBox{cx - r, cy - r, cx + r, cy + r}, true
	case MacroOutline:
		if len(vals) < 2 {
			return BBox{}, false
		}
		n := int(vals[1])
		pts := make([]Point, 0, n+1)
		for i := 0; i <= n; i++ {
			xi, yi := 2+2*i, 2+2*i+1
			if yi >= len(vals) {
				break
			}
			pts = append(pts, Point{X: vals[xi], Y: vals[yi]})
		}
		return bboxFromPoints(pts), true
	case MacroRegularPolygon:
		if len(vals) < 5 {
			return BBox{}, false
		}
		cx, cy, diameter := vals[2], vals[3], vals[4]
		r := diameter / 2
		return BBox{cx - r, cy - r, cx + r, cy + r}, true
	case MacroVectorLine:
		if len(vals) < 6 {
			return BBox{}, false
		}
		width, x1, y1, x2, y2 := vals[1], vals[2], vals[3], vals[4], vals[5]
		return BBox{
			math.Min(x1, x2) - width/2, math.Min(y1, y2) - width/2,
			math.Max(x1, x2) + width/2, math.Max(y1, y2) + width/2,
		}, true
	case MacroCenterLineRect:
		if len(vals) < 5 {
			return BBox{}, false
		}
		w, h, cx, cy := vals[1], vals[2], vals[3], vals[4]
		return BBox{cx - w/2, cy - h/2, cx + w/2, cy + h/2}, true
	case MacroLowerLeftRect:
		if len(vals) < 5 {
			return BBox{}, false
		}
		w, h, llx, lly := vals[1], vals[2], vals[3], vals[4]
		return BBox{llx, lly, llx + w, lly + h}, true
	default:
		return BBox{}, false
	}
}
