// Package optimizer is the toolpath optimizer — the core of the core:
// a six-stage pipeline that groups plans by tool and Z-level, builds
// staydown clusters via connected-component analysis, orders plans
// within and across clusters by nearest-neighbor link cost, and
// simplifies each plan's command sequence under an angle-aware
// tolerance. It never fails on geometry; a pathological plan is passed
// through unchanged and any quirk is folded into Statistics.
package optimizer

import (
	"context"
	"math"
	"sort"

	"github.com/isoroute/toolpath/config"
	"github.com/isoroute/toolpath/primitive"
	"github.com/isoroute/toolpath/toolplan"
)

// Statistics accumulates what one Optimize call did, replacing the
// source system's mutable global "stats" side-table with a typed,
// per-call value.
type Statistics struct {
	PlansOrdered        int
	ClustersFound       int
	StaydownLinksUsed   int
	OriginalTravel      float64
	OptimizedTravel     float64
	PointsRemoved       int
	Cancelled           bool
}

// Options configures one Optimize call.
type Options struct {
	Config         config.Config
	RapidCost      config.RapidCost
	Simplification config.Simplification
	// StartPosition is the machine's current position before the
	// first plan; defaults to the origin.
	StartPosition primitive.Point
}

// Optimize runs the six-stage pipeline over plans in place (the
// optimizer owns plans exclusively during its pass) and returns the
// final ordering plus accumulated statistics. ctx is checked before
// each tool group and passed to the cluster search; the plan-ordering
// loops do not check it. Cancellation seen at a tool-group boundary
// returns the already-ordered plans with Statistics.Cancelled set;
// cancellation seen by the cluster search is returned as an error.
func Optimize(ctx context.Context, plans []*toolplan.ToolpathPlan, opts Options) ([]*toolplan.ToolpathPlan, Statistics, error) {
	var stats Statistics
	if len(plans) == 0 {
		return nil, stats, nil
	}

	stats.OriginalTravel = totalEntryToEntryTravel(opts.StartPosition, plans)

	groups := groupByTool(plans)
	var result []*toolplan.ToolpathPlan
	pos := opts.StartPosition

	for _, groupKey := range groups.keys {
		groupPlans := groups.byKey[groupKey]

		select {
		case <-ctx.Done():
			stats.Cancelled = true
			return result, finalizeStats(stats, result), nil
		default:
		}

		zGroups := groupByZLevel(groupPlans, opts.Config.GCodeOptimization.ZLevelGrouping)

		for _, zGroup := range zGroups {
			margin := staydownThreshold(toolDiameterOf(zGroup), stepOverOf(zGroup), 0)
			clusters, err := BuildClusters(ctx, zGroup, margin)
			if err != nil {
				return result, finalizeStats(stats, result), err
			}
			stats.ClustersFound += len(clusters)

			orderedClusters, finalPos := orderClusters(ctx, pos, clusters, opts.RapidCost, margin)
			pos = finalPos

			for _, c := range orderedClusters {
				result = append(result, c...)
			}
		}
	}

	for _, p := range result {
		if p.Optimization != nil && p.Optimization.LinkType == toolplan.LinkStaydown {
			stats.StaydownLinksUsed++
		}
		if opts.Config.GCodeOptimization.SegmentSimplification {
			before := len(p.Commands)
			simplifyPlan(p, opts.Simplification)
			stats.PointsRemoved += before - len(p.Commands)
		}
	}

	stats.PlansOrdered = len(result)
	stats.OptimizedTravel = totalEntryToEntryTravel(opts.StartPosition, result)
	return result, stats, nil
}

func finalizeStats(stats Statistics, result []*toolplan.ToolpathPlan) Statistics {
	stats.PlansOrdered = len(result)
	stats.OptimizedTravel = totalEntryToEntryTravel(primitive.Point{}, result)
	return stats
}

type toolGroups struct {
	keys   []string
	byKey  map[string][]*toolplan.ToolpathPlan
}

// groupByTool partitions by groupKey using an order-preserving
// associative container (insertion order), per §5's ordering
// guarantee that tool-group iteration order matches input order.
func groupByTool(plans []*toolplan.ToolpathPlan) toolGroups {
	g := toolGroups{byKey: map[string][]*toolplan.ToolpathPlan{}}
	for _, p := range plans {
		if _, ok := g.byKey[p.GroupKey]; !ok {
			g.keys = append(g.keys, p.GroupKey)
		}
		g.byKey[p.GroupKey] = append(g.byKey[p.GroupKey], p)
	}
	return g
}

// groupByZLevel partitions a tool group by rounded cutDepth, deepest
// first, when zLevelGrouping is enabled; otherwise returns one group.
func groupByZLevel(plans []*toolplan.ToolpathPlan, enabled bool) [][]*toolplan.ToolpathPlan {
	if !enabled {
		return [][]*toolplan.ToolpathPlan{plans}
	}
	byZ := map[float64][]*toolplan.ToolpathPlan{}
	var zs []float64
	for _, p := range plans {
		z := math.Round(p.CutDepth*100) / 100
		if _, ok := byZ[z]; !ok {
			zs = append(zs, z)
		}
		byZ[z] = append(byZ[z], p)
	}
	// Z is signed negative (into stock); ascending order puts the
	// deepest level first.
	sort.Slice(zs, func(i, j int) bool { return zs[i] < zs[j] })

	out := make([][]*toolplan.ToolpathPlan, 0, len(zs))
	for _, z := range zs {
		out = append(out, byZ[z])
	}
	return out
}

func toolDiameterOf(plans []*toolplan.ToolpathPlan) float64 {
	if len(plans) == 0 {
		return 0
	}
	return plans[0].ToolDiameter
}

func stepOverOf(plans []*toolplan.ToolpathPlan) float64 {
	if len(plans) == 0 || plans[0].StepOver <= 0 {
		return 0.5
	}
	return plans[0].StepOver
}

// orderClusters applies stage (D) within each cluster and stage (E)
// across clusters: intra-cluster nearest-neighbor with staydown
// allowed, inter-cluster nearest-neighbor with allowStaydown=false so
// every inter-cluster link is a rapid retract-travel-plunge.
func orderClusters(ctx context.Context, pos primitive.Point, clusters []Cluster, rc config.RapidCost, margin float64) ([][]*toolplan.ToolpathPlan, primitive.Point) {
	for i := range clusters {
		ordered, _ := orderPlans(pos, clusters[i].Plans, true, rc, margin)
		clusters[i].Plans = ordered
		clusters[i].EntryPoint = ordered[0].EntryPoint
		clusters[i].ExitPoint = ordered[len(ordered)-1].ExitPoint
	}

	asPlans := make([]*toolplan.ToolpathPlan, len(clusters))
	index := map[*toolplan.ToolpathPlan]int{}
	for i := range clusters {
		stub := &toolplan.ToolpathPlan{EntryPoint: clusters[i].EntryPoint, ExitPoint: clusters[i].ExitPoint}
		asPlans[i] = stub
		index[stub] = i
	}
	orderedStubs, finalPos := orderPlans(pos, asPlans, false, rc, margin)

	out := make([][]*toolplan.ToolpathPlan, 0, len(clusters))
	for _, stub := range orderedStubs {
		out = append(out, clusters[index[stub]].Plans)
	}
	return out, finalPos
}

func totalEntryToEntryTravel(start primitive.Point, plans []*toolplan.ToolpathPlan) float64 {
	pos := start
	total := 0.0
	for _, p := range plans {
		total += math.Hypot(p.EntryPoint.X-pos.X, p.EntryPoint.Y-pos.Y)
		pos = p.ExitPoint
	}
	return total
}
