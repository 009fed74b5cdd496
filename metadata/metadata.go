// Package metadata is the metadata calculator: it walks a finalized
// plan with a running (x,y,z) position, accumulating total distance,
// estimated time, bounding box, and the depth levels actually visited.
package metadata

import (
	"math"

	"github.com/isoroute/toolpath/primitive"
	"github.com/isoroute/toolpath/toolplan"
)

// Result is everything a walk over a plan accumulates.
type Result struct {
	TotalDistance    float64
	RapidDistance    float64
	CuttingDistance  float64
	EstimatedSeconds float64
	BoundingBox      primitive.BBox
	MinZ, MaxZ       float64
	DepthLevels      []float64
}

// Options configures rapid feed defaults for the time estimate; a
// plan's own Linear/Plunge/ArcCW/ArcCCW commands carry their own feed
// rate, but Rapid commands do not (they run at the machine's rapid
// traverse rate, external to the toolpath's own feed model).
type Options struct {
	RapidFeed float64 // mm/min
}

func (o Options) rapidFeed() float64 {
	if o.RapidFeed <= 0 {
		return 10000
	}
	return o.RapidFeed
}

// Walk computes a Result for one plan.
func Walk(p *toolplan.ToolpathPlan, opts Options) Result {
	var res Result
	depthSeen := map[float64]bool{}

	var x, y, z float64
	havePos := false
	haveBox := false

	visit := func(px, py, pz float64) {
		b := primitive.BBox{MinX: px, MinY: py, MaxX: px, MaxY: py}
		if !haveBox {
			res.BoundingBox = b
			res.MinZ, res.MaxZ = pz, pz
			haveBox = true
		} else {
			res.BoundingBox = res.BoundingBox.Union(b)
			if pz < res.MinZ {
				res.MinZ = pz
			}
			if pz > res.MaxZ {
				res.MaxZ = pz
			}
		}
	}

	for _, c := range p.Commands {
		var segLen float64
		if havePos {
			segLen = segmentLength(x, y, z, c)
		}
		havePos = true
		feed := c.FeedRate
		switch c.Kind {
		case toolplan.Rapid:
			res.RapidDistance += segLen
			feed = opts.rapidFeed()
		case toolplan.Dwell:
			res.EstimatedSeconds += c.DwellSeconds
		default:
			res.CuttingDistance += segLen
		}
		res.TotalDistance += segLen
		if feed > 0 && c.Kind != toolplan.Dwell {
			res.EstimatedSeconds += (segLen / feed) * 60
		}

		x, y, z = c.X, c.Y, c.Z
		visit(x, y, z)
		if c.Kind == toolplan.Plunge || c.Kind == toolplan.Linear || c.Kind == toolplan.ArcCW || c.Kind == toolplan.ArcCCW {
			depthSeen[math.Round(z*1000)/1000] = true
		}
	}

	for d := range depthSeen {
		res.DepthLevels = append(res.DepthLevels, d)
	}
	sortDescending(res.DepthLevels)

	return res
}

// segmentLength is the 3D Euclidean distance for linear-family moves.
// Arcs approximate the planar sweep via radius and swept angle, then
// combine it with any simultaneous Z change (helical entry) as two
// orthogonal legs.
func segmentLength(startX, startY, startZ float64, c toolplan.MotionCommand) float64 {
	dz := c.Z - startZ
	if c.Kind == toolplan.ArcCW || c.Kind == toolplan.ArcCCW {
		planar := arcLength(startX, startY, c.X, c.Y, c.I, c.J)
		return math.Hypot(planar, dz)
	}
	return math.Sqrt((c.X-startX)*(c.X-startX) + (c.Y-startY)*(c.Y-startY) + dz*dz)
}

func arcLength(startX, startY, endX, endY, i, j float64) float64 {
	cx, cy := startX+i, startY+j
	r := math.Hypot(i, j)
	if r < 1e-12 {
		return math.Hypot(endX-startX, endY-startY)
	}
	a1 := math.Atan2(startY-cy, startX-cx)
	a2 := math.Atan2(endY-cy, endX-cx)
	d := math.Abs(a2 - a1)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return r * d
}

func sortDescending(vals []float64) {
	for i := 1; i < len(vals); i++ {
		for j := i; j > 0 && vals[j] > vals[j-1]; j-- {
			vals[j], vals[j-1] = vals[j-1], vals[j]
		}
	}
}

// WalkAll computes a Result for each plan independently.
func WalkAll(plans []*toolplan.ToolpathPlan, opts Options) []Result {
	out := make([]Result, len(plans))
	for i, p := range plans {
		out[i] = Walk(p, opts)
	}
	return out
}
