package influence

import (
	"cmp"
	"context"
	"slices"

	"github.com/secmon-lab/riskmap/pkg/domain/model"
)

type convergenceStep struct {
	node  int
	cum   float64
	depth int
}

func convergencePoints(ctx context.Context, g *graph, limit int) ([]model.ConvergencePoint, error) {
	var results []model.ConvergencePoint

	for target := range g.nodes {
		if err := checkCanceled(ctx); err != nil {
			return nil, err
		}
		if len(g.in[target]) == 0 {
			continue
		}
		if cp := converge(g, target); cp.Score > 0 {
			results = append(results, cp)
		}
	}

	slices.SortStableFunc(results, func(a, b model.ConvergencePoint) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if results == nil {
		return []model.ConvergencePoint{}, nil
	}
	return head(results, limit), nil
}

// converge walks upstream from target through risk sources. PathCount counts
// every incoming edge examined while expanding, so several edges arriving at
// an already visited source still raise it above SourceCount.
func converge(g *graph, target int) model.ConvergencePoint {
	var score float64
	var sources, paths int

	visited := make([]bool, len(g.nodes))
	queue := []convergenceStep{{node: target, cum: 1.0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true

		if cur.node != target && g.isRisk(cur.node) {
			sources++
			weight := operationalSourceWeight
			if g.nodes[cur.node].risk.Level.IsBusiness() {
				weight = businessSourceWeight
			}
			score += cur.cum * weight * decay(cur.depth)
		}

		if cur.depth >= maxDepth {
			continue
		}
		for _, e := range g.in[cur.node] {
			if !g.isRisk(e.peer) || e.peer == target {
				continue
			}
			paths++
			if visited[e.peer] {
				continue
			}
			queue = append(queue, convergenceStep{
				node:  e.peer,
				cum:   cur.cum * (e.weight / strengthNormalize),
				depth: cur.depth + 1,
			})
		}
	}

	if sources > 0 {
		score *= 1 + (float64(paths)/float64(sources))*convergenceFactor
	}

	n := &g.nodes[target]
	cp := model.ConvergencePoint{
		ID:                n.id,
		Score:             score,
		SourceCount:       sources,
		PathCount:         paths,
		IsHighConvergence: sources > 0 && float64(paths) > float64(sources)*highConvergence,
	}
	if n.isTPO() {
		cp.Name = n.tpo.Label()
		cp.Level = string(model.NodeTypeTPO)
		cp.NodeType = model.NodeTypeTPO
	} else {
		cp.Name = n.risk.Name
		cp.Level = n.risk.Level.String()
		cp.NodeType = model.NodeTypeRisk
	}
	return cp
}
