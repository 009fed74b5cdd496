package gerber

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/isoroute/toolpath/primitive"
)

// handleStandard processes one *-delimited standard command body
// (without the trailing *), e.g. "G01", "X1000Y2000D01", "D10", "M02".
func (st *parserState) handleStandard(cmd string) {
	switch {
	case cmd == "":
		return
	case cmd == "M02" || cmd == "M00" || cmd == "M01":
		return
	case cmd == "G01":
		st.interp = primitive.Linear
	case cmd == "G02":
		st.interp = primitive.ClockwiseArc
	case cmd == "G03":
		st.interp = primitive.CounterClockwiseArc
	case cmd == "G36":
		st.region = true
		st.regionPts = nil
	case cmd == "G37":
		st.closeRegion()
		st.region = false
	case strings.HasPrefix(cmd, "D") && isAllDigits(cmd[1:]):
		code, err := strconv.Atoi(cmd[1:])
		if err != nil {
			st.warn(fmt.Sprintf("malformed D code %q", cmd))
			return
		}
		if code >= 10 {
			st.curAperture = code
			return
		}
		st.applyDCode(code, 0, 0, false, false, false)
	default:
		st.handleCoordCommand(cmd)
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// handleCoordCommand parses a command carrying X/Y/I/J coordinates and
// an optional trailing Dnn (nn in {1,2,3}) drawing op.
func (st *parserState) handleCoordCommand(cmd string) {
	x, y := st.x, st.y
	var i, j float64
	gotX, gotY := false, false
	dcode := -1

	rest := cmd
	for len(rest) > 0 {
		c := rest[0]
		var val string
		var ok bool
		switch c {
		case 'X', 'Y', 'I', 'J', 'D':
			val, rest, ok = scanField(rest[1:])
			if !ok {
				st.warn(fmt.Sprintf("malformed coordinate field in %q", cmd))
				return
			}
			switch c {
			case 'X':
				x = st.decodeCoord(val)
				gotX = true
			case 'Y':
				y = st.decodeCoord(val)
				gotY = true
			case 'I':
				i = st.decodeCoord(val)
			case 'J':
				j = st.decodeCoord(val)
			case 'D':
				d, err := strconv.Atoi(val)
				if err != nil {
					st.warn(fmt.Sprintf("malformed D code in %q", cmd))
					return
				}
				dcode = d
			}
		default:
			rest = rest[1:]
		}
	}
	if !gotX {
		x = st.x
	}
	if !gotY {
		y = st.y
	}
	if dcode < 0 {
		// Coordinate-only command with no draw op: update position silently.
		st.x, st.y, st.hasPos = x, y, true
		return
	}
	st.applyDCode(dcode, x, y, true, i != 0, j != 0)
	_ = i
	_ = j
	st.applyArcOffsets(dcode, x, y, i, j)
}

// scanField reads a leading sign and digit run after a coordinate
// letter, returning the digit string (sign included) and the
// remainder of the command.
func scanField(s string) (val, rest string, ok bool) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return "", s, false
	}
	return s[:i], s[i:], true
}

// decodeCoord converts a raw digit string to real units using the
// current FS format (leading-zero-omit) and MO units.
func (st *parserState) decodeCoord(raw string) float64 {
	neg := false
	if strings.HasPrefix(raw, "-") {
		neg = true
		raw = raw[1:]
	} else if strings.HasPrefix(raw, "+") {
		raw = raw[1:]
	}
	total := st.fs.IntDigits + st.fs.DecDigits
	if len(raw) < total {
		raw = strings.Repeat("0", total-len(raw)) + raw
	}
	intPart := raw[:len(raw)-st.fs.DecDigits]
	decPart := raw[len(raw)-st.fs.DecDigits:]
	val, err := strconv.ParseFloat(intPart+"."+decPart, 64)
	if err != nil {
		st.warn(fmt.Sprintf("malformed coordinate digits %q", raw))
		return 0
	}
	if neg {
		val = -val
	}
	if st.units == UnitsInch {
		val *= 25.4
	}
	return val
}

func (st *parserState) applyArcOffsets(dcode int, x, y, i, j float64) {
	if dcode != 1 || st.interp == primitive.Linear {
		return
	}
	if st.region {
		// I,J are used for region perimeter arcs too, but the region
		// primitive stores a flattened point list; tessellate a coarse
		// arc approximation here to keep the region polygon convex-safe.
		st.appendArcPoints(x, y, i, j)
		return
	}
	if n := len(st.out); n > 0 {
		if tr, ok := st.out[n-1].(primitive.Trace); ok && tr.End == (primitive.Point{X: x, Y: y}) {
			tr.I, tr.J = i, j
			st.out[n-1] = tr
		}
	}
}

// appendArcPoints approximates the last region edge's arc with
// straight segments using the region's last point as the arc start.
func (st *parserState) appendArcPoints(x, y, i, j float64) {
	if len(st.regionPts) == 0 {
		return
	}
	start := st.regionPts[len(st.regionPts)-1]
	cx, cy := start.X+i, start.Y+j
	const steps = 16
	startAngle := math.Atan2(start.Y-cy, start.X-cx)
	endAngle := math.Atan2(y-cy, x-cx)
	cw := st.interp == primitive.ClockwiseArc
	if cw && endAngle > startAngle {
		endAngle -= 2 * math.Pi
	}
	if !cw && endAngle < startAngle {
		endAngle += 2 * math.Pi
	}
	for s := 1; s <= steps; s++ {
		t := float64(s) / float64(steps)
		a := startAngle + (endAngle-startAngle)*t
		r := math.Hypot(start.X-cx, start.Y-cy)
		st.regionPts = append(st.regionPts, primitive.Point{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)})
	}
}

// applyDCode executes D01 (draw), D02 (move), D03 (flash). x,y are the
// resolved absolute target; hasXY is false for a bare Dnn aperture select.
func (st *parserState) applyDCode(code int, x, y float64, hasXY bool, hasI, hasJ bool) {
	if !hasXY {
		return
	}
	switch code {
	case 1:
		st.draw(x, y)
	case 2:
		if st.region && len(st.regionPts) > 0 {
			st.closeRegion()
		}
		st.x, st.y, st.hasPos = x, y, true
		if st.region {
			st.regionPts = []primitive.Point{{X: x, Y: y}}
		}
	case 3:
		st.flash(x, y)
		st.x, st.y, st.hasPos = x, y, true
	default:
		st.warn(fmt.Sprintf("unsupported D%d", code))
	}
}

func (st *parserState) draw(x, y float64) {
	if st.region {
		if len(st.regionPts) == 0 {
			st.regionPts = append(st.regionPts, primitive.Point{X: st.x, Y: st.y})
		}
		if st.interp == primitive.Linear {
			st.regionPts = append(st.regionPts, primitive.Point{X: x, Y: y})
		}
		st.x, st.y, st.hasPos = x, y, true
		return
	}

	ap, ok := st.apertures[st.curAperture]
	width := 0.0
	if ok {
		width = ap.Diameter
	}
	tr := primitive.Trace{
		Start:    primitive.Point{X: st.x, Y: st.y},
		End:      primitive.Point{X: x, Y: y},
		Width:    width,
		Mode:     st.interp,
		Polarity: st.polarity,
	}
	st.out = append(st.out, tr)
	st.x, st.y, st.hasPos = x, y, true
}

func (st *parserState) flash(x, y float64) {
	ap, ok := st.apertures[st.curAperture]
	if !ok {
		st.warn(fmt.Sprintf("flash with undefined aperture D%d", st.curAperture))
		return
	}
	st.out = append(st.out, primitive.Flash{
		Position: primitive.Point{X: x, Y: y},
		Aperture: ap,
		Polarity: st.polarity,
	})
}

// closeRegion finalizes the accumulated region point list into a
// Region primitive, auto-closing if the path wasn't explicitly closed.
func (st *parserState) closeRegion() {
	if len(st.regionPts) < 3 {
		if len(st.regionPts) > 0 {
			st.warn("region with fewer than 3 points discarded")
		}
		st.regionPts = nil
		return
	}
	pts := st.regionPts
	if pts[0] != pts[len(pts)-1] {
		pts = append(pts, pts[0])
	}
	st.out = append(st.out, primitive.Region{Points: pts, Polarity: st.polarity})
	st.regionPts = nil
}
