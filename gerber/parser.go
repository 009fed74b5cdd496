// Package gerber tokenizes and parses the RS-274X subset described by
// the pipeline's external interface: extended %...% parameter blocks
// (FS, MO, LP, AD, AM) and *-delimited standard commands (G01/G02/G03,
// G36/G37, X/Y/I/J, D01/D02/D03, Dnn, M02). It produces a
// primitive.Set and never aborts on a recoverable problem — unknown
// constructs are recorded as warnings, the same tolerant-input
// philosophy the boolean engine uses for degenerate paths.
package gerber

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/isoroute/toolpath/primitive"
)

// Units names the Gerber MO (mode) setting.
type Units int

const (
	UnitsMM Units = iota
	UnitsInch
)

// FormatSpec is the FS block: integer/decimal digit counts and whether
// coordinates are absolute or incremental. The zero-omission policy is
// not recorded; coordinates are always decoded as leading-zero-omit.
type FormatSpec struct {
	IntDigits, DecDigits int
	Absolute             bool
}

// ParseResult is everything one Gerber file/operation produces: the
// primitive set plus non-fatal warnings folded into it.
type ParseResult struct {
	Set primitive.Set
}

type parserState struct {
	fs       FormatSpec
	units    Units
	polarity primitive.Polarity
	interp   primitive.InterpolationMode
	region   bool
	regionPts []primitive.Point

	apertures map[int]primitive.Aperture
	macros    map[string][]primitive.MacroPrimitive

	curAperture int
	x, y        float64
	hasPos      bool

	out      []primitive.Primitive
	warnings []string
}

// Parse scans src (a full Gerber file's text) and returns the
// resulting primitive set. It never returns an error for malformed
// input; problems are folded into Set.Warnings. A non-nil error is
// only returned for an unreadable input stream.
func Parse(src string) (ParseResult, error) {
	st := &parserState{
		fs:        FormatSpec{IntDigits: 2, DecDigits: 4, Absolute: true},
		units:     UnitsMM,
		polarity:  primitive.Dark,
		interp:    primitive.Linear,
		apertures: map[int]primitive.Aperture{},
		macros:    map[string][]primitive.MacroPrimitive{},
	}

	scanner := bufio.NewScanner(strings.NewReader(src))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pending strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		pending.WriteString(line)
		buf := pending.String()

		for {
			block, rest, kind, ok := nextBlock(buf)
			if !ok {
				break
			}
			buf = rest
			switch kind {
			case blockExtended:
				st.handleExtended(block)
			case blockStandard:
				st.handleStandard(block)
			}
		}
		pending.Reset()
		pending.WriteString(buf)
	}
	if err := scanner.Err(); err != nil {
		return ParseResult{}, fmt.Errorf("gerber: reading input: %w", err)
	}

	if st.region && len(st.regionPts) > 0 {
		st.warn("unclosed region at end of file, auto-closed")
		st.closeRegion()
	}

	return ParseResult{Set: primitive.Set{Primitives: st.out, Warnings: st.warnings}}, nil
}

type blockKind int

const (
	blockNone blockKind = iota
	blockExtended
	blockStandard
)

// nextBlock extracts the next complete %...% or ...* block from buf,
// returning the block body, the remaining unconsumed buffer, and
// whether one was found.
func nextBlock(buf string) (block, rest string, kind blockKind, ok bool) {
	trimmed := strings.TrimLeft(buf, " \t\r\n")
	if trimmed == "" {
		return "", "", blockNone, false
	}
	if strings.HasPrefix(trimmed, "%") {
		end := strings.Index(trimmed[1:], "%")
		if end < 0 {
			return "", buf, blockNone, false
		}
		return trimmed[1 : 1+end], trimmed[1+end+1:], blockExtended, true
	}
	end := strings.Index(trimmed, "*")
	if end < 0 {
		return "", buf, blockNone, false
	}
	return trimmed[:end], trimmed[end+1:], blockStandard, true
}

func (st *parserState) warn(msg string) {
	st.warnings = append(st.warnings, msg)
}

// handleExtended processes the body of a %...% block, which may itself
// contain one or more *-delimited commands (e.g. an AM macro body).
func (st *parserState) handleExtended(body string) {
	cmds := splitStar(body)
	if len(cmds) == 0 {
		return
	}
	head := cmds[0]
	switch {
	case strings.HasPrefix(head, "FS"):
		st.parseFS(head)
	case strings.HasPrefix(head, "MO"):
		st.parseMO(head)
	case strings.HasPrefix(head, "LP"):
		st.parseLP(head)
	case strings.HasPrefix(head, "AD"):
		st.parseAD(head)
	case strings.HasPrefix(head, "AM"):
		st.parseAM(cmds)
	default:
		st.warn(fmt.Sprintf("unsupported extended command %q", head))
	}
}

func splitStar(s string) []string {
	parts := strings.Split(s, "*")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (st *parserState) parseFS(cmd string) {
	// FS LAX34Y34 or FSTAX34Y34 etc; only leading-zero-omit is modeled.
	rest := cmd[2:]
	st.fs.Absolute = true
	for len(rest) > 0 {
		switch rest[0] {
		case 'L', 'T':
			rest = rest[1:]
		case 'A':
			st.fs.Absolute = true
			rest = rest[1:]
		case 'I':
			st.fs.Absolute = false
			rest = rest[1:]
		case 'X', 'Y':
			if len(rest) < 3 {
				st.warn("malformed FS block")
				return
			}
			intDigits := int(rest[1] - '0')
			decDigits := int(rest[2] - '0')
			st.fs.IntDigits, st.fs.DecDigits = intDigits, decDigits
			rest = rest[3:]
		default:
			rest = rest[1:]
		}
	}
}

func (st *parserState) parseMO(cmd string) {
	switch strings.TrimSpace(cmd[2:]) {
	case "MM":
		st.units = UnitsMM
	case "IN":
		st.units = UnitsInch
	default:
		st.warn(fmt.Sprintf("unknown MO unit %q", cmd))
	}
}

func (st *parserState) parseLP(cmd string) {
	switch strings.TrimSpace(cmd[2:]) {
	case "D":
		st.polarity = primitive.Dark
	case "C":
		st.polarity = primitive.Clear
	default:
		st.warn(fmt.Sprintf("unknown LP polarity %q", cmd))
	}
}

// parseAD parses %ADDnn<shape>,<params>*%.
func (st *parserState) parseAD(cmd string) {
	rest := cmd[2:] // after "AD"
	if !strings.HasPrefix(rest, "D") {
		st.warn(fmt.Sprintf("malformed AD command %q", cmd))
		return
	}
	rest = rest[1:]
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	code, err := strconv.Atoi(rest[:i])
	if err != nil {
		st.warn(fmt.Sprintf("malformed aperture code in %q", cmd))
		return
	}
	rest = rest[i:]
	var shapeName, paramStr string
	if comma := strings.Index(rest, ","); comma >= 0 {
		shapeName, paramStr = rest[:comma], rest[comma+1:]
	} else {
		shapeName = rest
	}
	params := strings.Split(paramStr, "X")

	ap := primitive.Aperture{Code: code}
	switch shapeName {
	case "C":
		ap.Shape = primitive.ShapeCircle
		ap.Diameter = parseFloatOr(params, 0, 0)
	case "R":
		ap.Shape = primitive.ShapeRect
		ap.Width = parseFloatOr(params, 0, 0)
		ap.Height = parseFloatOr(params, 1, ap.Width)
	case "O":
		ap.Shape = primitive.ShapeObround
		ap.Width = parseFloatOr(params, 0, 0)
		ap.Height = parseFloatOr(params, 1, ap.Width)
	case "P":
		ap.Shape = primitive.ShapePolygon
		ap.Diameter = parseFloatOr(params, 0, 0)
		ap.Vertices = int(parseFloatOr(params, 1, 3))
		ap.Rotation = parseFloatOr(params, 2, 0)
	default:
		macroPrims, ok := st.macros[shapeName]
		if !ok {
			st.warn(fmt.Sprintf("aperture D%d references undefined macro %q", code, shapeName))
			return
		}
		ap.Shape = primitive.ShapeMacro
		ap.MacroName = shapeName
		ap.Primitives = macroPrims
		ap.Modifiers = parseFloats(params)
	}
	st.apertures[code] = ap
}

func parseFloats(params []string) []float64 {
	out := make([]float64, 0, len(params))
	for _, p := range params {
		v, _ := strconv.ParseFloat(strings.TrimSpace(p), 64)
		out = append(out, v)
	}
	return out
}

func parseFloatOr(params []string, idx int, def float64) float64 {
	if idx >= len(params) {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(params[idx]), 64)
	if err != nil {
		return def
	}
	return v
}

// parseAM parses %AMname*primitive1*primitive2*...*%. Each primitive
// clause is "code,expr,expr,...".
func (st *parserState) parseAM(cmds []string) {
	head := cmds[0] // "AMname"
	name := strings.TrimSpace(head[2:])
	if name == "" {
		st.warn("malformed AM block: missing macro name")
		return
	}
	var prims []primitive.MacroPrimitive
	for _, clause := range cmds[1:] {
		if strings.HasPrefix(clause, "$") {
			// local variable assignment ($n=expr); skipped and not
			// stored, so a later parameter reading $n sees only the
			// aperture's modifier value.
			continue
		}
		comma := strings.Index(clause, ",")
		var codeStr, paramStr string
		if comma >= 0 {
			codeStr, paramStr = clause[:comma], clause[comma+1:]
		} else {
			codeStr = clause
		}
		code, err := strconv.Atoi(strings.TrimSpace(codeStr))
		if err != nil {
			st.warn(fmt.Sprintf("malformed macro primitive code %q in %q", codeStr, name))
			continue
		}
		exprs, err := primitive.ParseExprList(paramStr)
		if err != nil {
			st.warn(fmt.Sprintf("malformed macro primitive params in %q: %v", name, err))
			continue
		}
		prims = append(prims, primitive.MacroPrimitive{Code: primitive.MacroPrimitiveCode(code), Params: exprs})
	}
	st.macros[name] = prims
}
