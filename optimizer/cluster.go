package optimizer

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"

	"github.com/isoroute/toolpath/primitive"
	"github.com/isoroute/toolpath/toolplan"
)

// Cluster is a connected component of plans linked by feasible
// staydown hops: their inflated bounding boxes overlap and their
// closest sampled points are within margin.
type Cluster struct {
	Plans      []*toolplan.ToolpathPlan
	EntryPoint primitive.Point
	ExitPoint  primitive.Point
}

// samplePoints draws up to 20 evenly spaced points along a plan's
// commands for the proximity test in stage (C).
func samplePoints(p *toolplan.ToolpathPlan) []primitive.Point {
	const maxSamples = 20
	n := len(p.Commands)
	if n == 0 {
		return nil
	}
	if n <= maxSamples {
		pts := make([]primitive.Point, n)
		for i, c := range p.Commands {
			pts[i] = primitive.Point{X: c.X, Y: c.Y}
		}
		return pts
	}
	pts := make([]primitive.Point, maxSamples)
	for i := 0; i < maxSamples; i++ {
		idx := i * (n - 1) / (maxSamples - 1)
		c := p.Commands[idx]
		pts[i] = primitive.Point{X: c.X, Y: c.Y}
	}
	return pts
}

func minXYDistance(a, b []primitive.Point) float64 {
	best := math.MaxFloat64
	for _, pa := range a {
		for _, pb := range b {
			d := math.Hypot(pa.X-pb.X, pa.Y-pb.Y)
			if d < best {
				best = d
			}
		}
	}
	return best
}

// BuildClusters partitions plans (already grouped by tool and Z-level)
// into connected components: an edge exists between two plans iff
// their margin-inflated bounding boxes intersect AND their minimum
// sampled-point XY distance is <= margin. Connected components are
// found via repeated DFS traversal, grouping by component root.
func BuildClusters(ctx context.Context, plans []*toolplan.ToolpathPlan, margin float64) ([]Cluster, error) {
	if len(plans) == 0 {
		return nil, nil
	}
	if len(plans) == 1 {
		return []Cluster{singlePlanCluster(plans[0])}, nil
	}

	g := core.NewGraph()
	ids := make([]string, len(plans))
	samples := make([][]primitive.Point, len(plans))
	for i, p := range plans {
		ids[i] = strconv.Itoa(i)
		if err := g.AddVertex(ids[i]); err != nil {
			return nil, fmt.Errorf("optimizer: building cluster graph: %w", err)
		}
		samples[i] = samplePoints(p)
	}

	for i := 0; i < len(plans); i++ {
		inflatedI := plans[i].BoundingBox.Inflate(margin)
		for j := i + 1; j < len(plans); j++ {
			if !inflatedI.Intersects(plans[j].BoundingBox) {
				continue
			}
			if minXYDistance(samples[i], samples[j]) > margin {
				continue
			}
			if _, err := g.AddEdge(ids[i], ids[j], 0); err != nil {
				return nil, fmt.Errorf("optimizer: linking cluster candidates: %w", err)
			}
		}
	}

	result, err := dfs.DFS(g, ids[0], dfs.WithFullTraversal(), dfs.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("optimizer: connected-component search: %w", err)
	}

	root := func(id string) string {
		cur := id
		for {
			parent, ok := result.Parent[cur]
			if !ok {
				return cur
			}
			cur = parent
		}
	}

	byRoot := map[string][]int{}
	var order []string
	for i, id := range ids {
		r := root(id)
		if _, ok := byRoot[r]; !ok {
			order = append(order, r)
		}
		byRoot[r] = append(byRoot[r], i)
	}

	clusters := make([]Cluster, 0, len(order))
	for _, r := range order {
		idxs := byRoot[r]
		var clusterPlans []*toolplan.ToolpathPlan
		for _, idx := range idxs {
			clusterPlans = append(clusterPlans, plans[idx])
		}
		clusters = append(clusters, Cluster{
			Plans:      clusterPlans,
			EntryPoint: clusterPlans[0].EntryPoint,
			ExitPoint:  clusterPlans[len(clusterPlans)-1].ExitPoint,
		})
	}
	return clusters, nil
}

func singlePlanCluster(p *toolplan.ToolpathPlan) Cluster {
	return Cluster{Plans: []*toolplan.ToolpathPlan{p}, EntryPoint: p.EntryPoint, ExitPoint: p.ExitPoint}
}
