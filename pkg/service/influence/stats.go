package influence

import (
	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/domain/types"
)

var influenceCategories = []types.InfluenceCategory{
	types.InfluenceOperationalToBusiness,
	types.InfluenceBusinessToBusiness,
	types.InfluenceOperationalToOperational,
	types.InfluenceUnknown,
}

func networkStats(snapshot *model.Snapshot, g *graph) model.NetworkStats {
	stats := model.NetworkStats{
		TotalRisks:      g.riskCount,
		TotalTPOs:       len(g.nodes) - g.riskCount,
		TotalInfluences: len(snapshot.Influences),
		TotalTPOImpacts: len(snapshot.TPOImpacts),
		SkippedEdges:    g.skipped,
	}

	for i := 0; i < g.riskCount; i++ {
		if g.nodes[i].risk.Level.IsBusiness() {
			stats.BusinessRisks++
		} else {
			stats.OperationalRisks++
		}
	}

	byCategory := make(map[types.InfluenceCategory]int)
	byStrength := make(map[types.InfluenceStrength]int)
	for _, inf := range snapshot.Influences {
		src, okSrc := g.risks[inf.SourceID]
		dst, okDst := g.risks[inf.TargetID]
		if !okSrc || !okDst {
			continue
		}
		category := types.InfluenceCategoryOf(g.nodes[src].risk.Level, g.nodes[dst].risk.Level)
		byCategory[category]++
		byStrength[types.ParseInfluenceStrength(inf.Strength.String())]++
	}

	for _, c := range influenceCategories {
		stats.InfluencesByCategory = append(stats.InfluencesByCategory, model.CountByKey{Key: c.String(), Count: byCategory[c]})
	}
	for _, s := range types.InfluenceStrengths {
		stats.InfluencesByStrength = append(stats.InfluencesByStrength, model.CountByKey{Key: s.String(), Count: byStrength[s]})
	}
	return stats
}
