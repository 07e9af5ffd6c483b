package influence

import (
	"context"

	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/domain/types"
	"github.com/secmon-lab/riskmap/pkg/utils/logging"
)

type edge struct {
	// peer is the target node for outgoing edges and the source for incoming ones
	peer   int
	weight float64
	kind   string
}

type node struct {
	id   string
	risk *model.Risk
	tpo  *model.TPO
}

func (n *node) isTPO() bool {
	return n.tpo != nil
}

// name is the display name: the reference for a TPO
func (n *node) name() string {
	if n.tpo != nil {
		return n.tpo.Reference
	}
	return n.risk.Name
}

// graph is an immutable arena of risk and TPO nodes. Risks occupy
// [0, riskCount) in snapshot order, TPOs follow in snapshot order. Adjacency
// lists keep the input order of edges: influences first, then TPO impacts.
type graph struct {
	nodes     []node
	riskCount int
	risks     map[types.RiskID]int
	tpos      map[types.TPOID]int
	out       [][]edge
	in        [][]edge
	skipped   int
}

func newGraph(ctx context.Context, snapshot *model.Snapshot) *graph {
	logger := logging.From(ctx)

	g := &graph{
		nodes: make([]node, 0, len(snapshot.Risks)+len(snapshot.TPOs)),
		risks: make(map[types.RiskID]int, len(snapshot.Risks)),
		tpos:  make(map[types.TPOID]int, len(snapshot.TPOs)),
	}

	for i := range snapshot.Risks {
		r := &snapshot.Risks[i]
		if _, ok := g.risks[r.ID]; ok {
			logger.Warn("duplicate risk id, keeping the first one", "risk_id", r.ID)
			continue
		}
		g.risks[r.ID] = len(g.nodes)
		g.nodes = append(g.nodes, node{id: string(r.ID), risk: r})
	}
	g.riskCount = len(g.nodes)

	for i := range snapshot.TPOs {
		t := &snapshot.TPOs[i]
		if _, ok := g.tpos[t.ID]; ok {
			logger.Warn("duplicate TPO id, keeping the first one", "tpo_id", t.ID)
			continue
		}
		g.tpos[t.ID] = len(g.nodes)
		g.nodes = append(g.nodes, node{id: string(t.ID), tpo: t})
	}

	g.out = make([][]edge, len(g.nodes))
	g.in = make([][]edge, len(g.nodes))

	for i := range snapshot.Influences {
		inf := &snapshot.Influences[i]
		src, okSrc := g.risks[inf.SourceID]
		dst, okDst := g.risks[inf.TargetID]
		if !okSrc || !okDst {
			g.skipped++
			logger.Warn("skipping influence with unknown endpoint",
				"influence_id", inf.ID,
				"source_id", inf.SourceID,
				"target_id", inf.TargetID)
			continue
		}
		weight := float64(inf.Strength.Score()) * inf.EffectiveConfidence()
		g.link(src, dst, weight, model.EdgeInfluences)
	}

	for i := range snapshot.TPOImpacts {
		imp := &snapshot.TPOImpacts[i]
		src, okSrc := g.risks[imp.RiskID]
		dst, okDst := g.tpos[imp.TPOID]
		if !okSrc || !okDst {
			g.skipped++
			logger.Warn("skipping TPO impact with unknown endpoint",
				"impact_id", imp.ID,
				"risk_id", imp.RiskID,
				"tpo_id", imp.TPOID)
			continue
		}
		weight := float64(imp.ImpactLevel.Score()) * tpoImpactBoost
		g.link(src, dst, weight, model.EdgeImpactsTPO)
	}

	return g
}

func (g *graph) link(src, dst int, weight float64, kind string) {
	g.out[src] = append(g.out[src], edge{peer: dst, weight: weight, kind: kind})
	g.in[dst] = append(g.in[dst], edge{peer: src, weight: weight, kind: kind})
}

func (g *graph) isRisk(i int) bool {
	return i < g.riskCount
}
