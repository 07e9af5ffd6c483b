package influence

import (
	"cmp"
	"context"
	"slices"

	"github.com/secmon-lab/riskmap/pkg/domain/model"
)

type pathStep struct {
	node  int
	cum   float64
	nodes []model.PathNode
	edges []model.PathEdge
}

func criticalPaths(ctx context.Context, g *graph, limit int) ([]model.CriticalPath, error) {
	results := []model.CriticalPath{}

	for start := 0; start < g.riskCount; start++ {
		if err := checkCanceled(ctx); err != nil {
			return nil, err
		}
		if g.nodes[start].risk.Level.IsBusiness() {
			continue
		}
		results = append(results, pathsFrom(g, start)...)
	}

	slices.SortStableFunc(results, func(a, b model.CriticalPath) int {
		return cmp.Compare(b.Strength, a.Strength)
	})
	return head(results, limit), nil
}

// pathsFrom returns the first path found to each TPO reachable from start
// within the path length bound
func pathsFrom(g *graph, start int) []model.CriticalPath {
	var found []model.CriticalPath

	visited := make([]bool, len(g.nodes))
	queue := []pathStep{{
		node:  start,
		cum:   1.0,
		nodes: []model.PathNode{g.pathNode(start)},
	}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true

		if g.nodes[cur.node].isTPO() && len(cur.nodes) > 1 {
			found = append(found, model.CriticalPath{
				Path:     cur.nodes,
				Edges:    cur.edges,
				Strength: cur.cum,
				Length:   len(cur.nodes) - 1,
			})
			continue
		}

		if len(cur.nodes) >= maxPathNodes {
			continue
		}
		for _, e := range g.out[cur.node] {
			if visited[e.peer] {
				continue
			}
			queue = append(queue, pathStep{
				node:  e.peer,
				cum:   cur.cum * (e.weight / strengthNormalize),
				nodes: extend(cur.nodes, g.pathNode(e.peer)),
				edges: extend(cur.edges, model.PathEdge{Type: e.kind, Score: e.weight}),
			})
		}
	}
	return found
}

func (g *graph) pathNode(i int) model.PathNode {
	n := &g.nodes[i]
	if n.isTPO() {
		return model.PathNode{ID: n.id, Name: n.name(), Type: string(model.NodeTypeTPO)}
	}
	return model.PathNode{ID: n.id, Name: n.name(), Type: n.risk.Level.String()}
}
