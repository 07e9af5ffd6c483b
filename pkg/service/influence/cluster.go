package influence

import (
	"cmp"
	"context"
	"slices"

	"github.com/secmon-lab/riskmap/pkg/domain/model"
)

// mixedCategory names a cluster whose members carry no category
const mixedCategory = "Mixed"

func riskClusters(ctx context.Context, g *graph, limit int) ([]model.RiskCluster, error) {
	neighbors := make([][]int, g.riskCount)
	for src := 0; src < g.riskCount; src++ {
		for _, e := range g.out[src] {
			if !g.isRisk(e.peer) {
				continue
			}
			neighbors[src] = append(neighbors[src], e.peer)
			neighbors[e.peer] = append(neighbors[e.peer], src)
		}
	}

	results := []model.RiskCluster{}
	visited := make([]bool, g.riskCount)

	for start := 0; start < g.riskCount; start++ {
		if err := checkCanceled(ctx); err != nil {
			return nil, err
		}
		if visited[start] || len(neighbors[start]) == 0 {
			continue
		}

		var members []int
		queue := []int{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			if visited[cur] {
				continue
			}
			visited[cur] = true
			members = append(members, cur)
			for _, n := range neighbors[cur] {
				if !visited[n] {
					queue = append(queue, n)
				}
			}
		}

		if len(members) < minClusterSize {
			continue
		}
		slices.Sort(members)
		results = append(results, g.cluster(members))
	}

	slices.SortStableFunc(results, func(a, b model.RiskCluster) int {
		if c := cmp.Compare(b.Size, a.Size); c != 0 {
			return c
		}
		return cmp.Compare(b.Density, a.Density)
	})
	return head(results, limit), nil
}

// cluster describes a connected component given its members in snapshot order
func (g *graph) cluster(members []int) model.RiskCluster {
	inside := make(map[int]bool, len(members))
	for _, m := range members {
		inside[m] = true
	}

	c := model.RiskCluster{
		Size: len(members),
	}
	var categories []string
	for _, m := range members {
		risk := g.nodes[m].risk
		c.Nodes = append(c.Nodes, risk.ID)
		c.NodeNames = append(c.NodeNames, risk.Name)
		categories = append(categories, risk.Categories...)

		if risk.Level.IsBusiness() {
			c.Levels.Business++
		} else {
			c.Levels.Operational++
		}

		for _, e := range g.out[m] {
			if e.kind == model.EdgeInfluences && inside[e.peer] {
				c.InternalEdges++
			}
		}
	}

	n := float64(c.Size)
	c.Density = float64(c.InternalEdges) / (n * (n - 1))
	c.PrimaryCategory = primaryCategory(categories)
	return c
}

// primaryCategory returns the most frequent category, the alphabetically
// first one on ties
func primaryCategory(categories []string) string {
	if len(categories) == 0 {
		return mixedCategory
	}

	freq := make(map[string]int, len(categories))
	for _, c := range categories {
		freq[c]++
	}

	best := ""
	for c, n := range freq {
		if best == "" || n > freq[best] || (n == freq[best] && c < best) {
			best = c
		}
	}
	return best
}
