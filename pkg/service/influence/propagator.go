package influence

import (
	"cmp"
	"context"
	"slices"

	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/domain/types"
)

type propagationStep struct {
	node  int
	cum   float64
	depth int
	path  []int
}

func topPropagators(ctx context.Context, g *graph, limit int) ([]model.Propagator, error) {
	results := make([]model.Propagator, 0, g.riskCount)

	for start := 0; start < g.riskCount; start++ {
		if err := checkCanceled(ctx); err != nil {
			return nil, err
		}
		results = append(results, propagate(g, start))
	}

	slices.SortStableFunc(results, func(a, b model.Propagator) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return head(results, limit), nil
}

// propagate walks downstream from start breadth first. A node is scored when
// first dequeued and never again, so cycles terminate.
func propagate(g *graph, start int) model.Propagator {
	risk := g.nodes[start].risk
	p := model.Propagator{
		ID:         risk.ID,
		Name:       risk.Name,
		Level:      risk.Level,
		TPOIDs:     []types.TPOID{},
		PathsToTPO: []model.PropagationPath{},
	}

	visited := make([]bool, len(g.nodes))
	queue := []propagationStep{{node: start, cum: 1.0, path: []int{start}}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true

		if cur.node != start {
			d := decay(cur.depth)
			n := &g.nodes[cur.node]
			switch {
			case n.isTPO():
				p.TPOsReached++
				p.TPOIDs = append(p.TPOIDs, n.tpo.ID)
				p.Score += tpoNodeValue * cur.cum * d
				p.PathsToTPO = append(p.PathsToTPO, model.PropagationPath{
					Path:  g.ids(cur.path),
					Score: cur.cum * d,
				})
			case n.risk.Level.IsBusiness():
				p.RisksReached++
				p.Score += businessNodeValue * cur.cum * d
			default:
				p.RisksReached++
				p.Score += operationalNodeValue * cur.cum * d
			}
		}

		if cur.depth >= maxDepth {
			continue
		}
		for _, e := range g.out[cur.node] {
			if visited[e.peer] {
				continue
			}
			queue = append(queue, propagationStep{
				node:  e.peer,
				cum:   cur.cum * (e.weight / strengthNormalize),
				depth: cur.depth + 1,
				path:  extend(cur.path, e.peer),
			})
		}
	}

	slices.Sort(p.TPOIDs)
	slices.SortStableFunc(p.PathsToTPO, func(a, b model.PropagationPath) int {
		return cmp.Compare(b.Score, a.Score)
	})
	p.PathsToTPO = head(p.PathsToTPO, pathsPerTPO)
	return p
}

func (g *graph) ids(path []int) []string {
	ids := make([]string, len(path))
	for i, n := range path {
		ids[i] = g.nodes[n].id
	}
	return ids
}

// extend returns a copy of path with n appended
func extend[T any](path []T, n T) []T {
	next := make([]T, len(path), len(path)+1)
	copy(next, path)
	return append(next, n)
}
