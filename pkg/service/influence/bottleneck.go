package influence

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/secmon-lab/riskmap/pkg/domain/model"
)

func bottlenecks(ctx context.Context, g *graph, limit int) ([]model.Bottleneck, error) {
	counts := make([]int, g.riskCount)
	var total int

	for start := 0; start < g.riskCount; start++ {
		if err := checkCanceled(ctx); err != nil {
			return nil, err
		}
		total += tallySimplePaths(g, start, counts)
	}

	results := []model.Bottleneck{}
	for i, count := range counts {
		if count < minBottleneck {
			continue
		}
		risk := g.nodes[i].risk
		results = append(results, model.Bottleneck{
			ID:         risk.ID,
			Name:       risk.Name,
			Level:      risk.Level,
			PathCount:  count,
			TotalPaths: total,
			Percentage: float64(count) / float64(max(total, 1)) * 100,
		})
	}

	slices.SortStableFunc(results, func(a, b model.Bottleneck) int {
		return cmp.Compare(b.PathCount, a.PathCount)
	})
	return head(results, limit), nil
}

// tallySimplePaths enumerates the distinct simple paths from start to any
// TPO, adds one to counts for every risk strictly inside each path and
// returns the number of paths.
func tallySimplePaths(g *graph, start int, counts []int) int {
	var total int
	seen := make(map[string]struct{})
	queue := [][]int{{start}}

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]

		key := pathKey(path)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		cur := path[len(path)-1]
		if g.nodes[cur].isTPO() && len(path) > 1 {
			total++
			for _, n := range path[1 : len(path)-1] {
				if g.isRisk(n) {
					counts[n]++
				}
			}
			continue
		}

		if len(path) >= maxPathNodes {
			continue
		}
		for _, e := range g.out[cur] {
			if slices.Contains(path, e.peer) {
				continue
			}
			queue = append(queue, extend(path, e.peer))
		}
	}
	return total
}

func pathKey(path []int) string {
	var b strings.Builder
	for i, n := range path {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}
