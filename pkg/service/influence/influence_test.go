package influence_test

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/domain/types"
	"github.com/secmon-lab/riskmap/pkg/service/influence"
)

func near(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("got %v, want %v", got, want)
	}
}

func risk(id, name string, level types.RiskLevel, categories ...string) model.Risk {
	return model.Risk{
		ID:         types.RiskID(id),
		Name:       name,
		Level:      level,
		Categories: categories,
		Status:     types.RiskStatusActive,
		Origin:     types.RiskOriginNew,
	}
}

func influenceEdge(id, src, dst string, s types.InfluenceStrength, confidence float64) model.Influence {
	return model.Influence{
		ID:         id,
		SourceID:   types.RiskID(src),
		TargetID:   types.RiskID(dst),
		Strength:   s,
		Confidence: confidence,
	}
}

func impactEdge(id, src, dst string, level types.ImpactLevel) model.TPOImpact {
	return model.TPOImpact{
		ID:          id,
		RiskID:      types.RiskID(src),
		TPOID:       types.TPOID(dst),
		ImpactLevel: level,
	}
}

// Two operational risks feed a business risk, which escalates into another
// business risk and both reach objectives. R5 stands alone.
func networkSnapshot() *model.Snapshot {
	return &model.Snapshot{
		Risks: []model.Risk{
			risk("R1", "Supplier Delay", types.RiskLevelOperational, "Supply"),
			risk("R2", "Machine Failure", types.RiskLevelOperational, "Production"),
			risk("R3", "Cost Overrun", types.RiskLevelBusiness, "Finance"),
			risk("R4", "Market Loss", types.RiskLevelBusiness, "Finance", "Market"),
			risk("R5", "Isolated", types.RiskLevelOperational, "IT"),
		},
		TPOs: []model.TPO{
			{ID: "T1", Reference: "TPO-1", Name: "Margin", Cluster: types.TPOClusterBusinessEfficiency},
			{ID: "T2", Reference: "TPO-2", Name: "Delivery", Cluster: types.TPOClusterProductEfficiency},
		},
		Influences: []model.Influence{
			influenceEdge("I1", "R1", "R3", types.StrengthStrong, 1.0),
			influenceEdge("I2", "R2", "R3", types.StrengthModerate, 0),
			influenceEdge("I3", "R3", "R4", types.StrengthCritical, 1.0),
		},
		TPOImpacts: []model.TPOImpact{
			impactEdge("P1", "R4", "T1", types.ImpactHigh),
			impactEdge("P2", "R3", "T2", types.ImpactMedium),
			impactEdge("P3", "R1", "T2", types.ImpactLow),
		},
	}
}

func analyze(t *testing.T, snapshot *model.Snapshot, opts ...influence.Option) *model.InfluenceResult {
	t.Helper()
	result, err := influence.Analyze(context.Background(), snapshot, opts...)
	gt.NoError(t, err).Required()
	return result
}

func TestTopPropagators(t *testing.T) {
	result := analyze(t, networkSnapshot())

	props := result.TopPropagators
	gt.Array(t, props).Length(5)
	gt.Value(t, result.PropagatorIDs()).Equal([]types.RiskID{"R3", "R1", "R4", "R2", "R5"})

	near(t, props[0].Score, 18.753125)
	near(t, props[1].Score, 14.2660546875)
	near(t, props[2].Score, 9.5625)
	near(t, props[3].Score, 8.0760625)
	near(t, props[4].Score, 0)

	supplier := props[1]
	gt.Value(t, supplier.Name).Equal("Supplier Delay")
	gt.Number(t, supplier.TPOsReached).Equal(2)
	gt.Number(t, supplier.RisksReached).Equal(2)
	gt.Value(t, supplier.TPOIDs).Equal([]types.TPOID{"T1", "T2"})
	gt.Array(t, supplier.PathsToTPO).Length(2)
	gt.Value(t, supplier.PathsToTPO[0].Path).Equal([]string{"R1", "R3", "R4", "T1"})
	near(t, supplier.PathsToTPO[0].Score, 0.51816796875)
	gt.Value(t, supplier.PathsToTPO[1].Path).Equal([]string{"R1", "T2"})
	near(t, supplier.PathsToTPO[1].Score, 0.31875)

	isolated := props[4]
	gt.Value(t, isolated.ID).Equal(types.RiskID("R5"))
	gt.Array(t, isolated.TPOIDs).Length(0)
	gt.Array(t, isolated.PathsToTPO).Length(0)
}

func TestTopPropagatorsCycle(t *testing.T) {
	snapshot := &model.Snapshot{
		Risks: []model.Risk{
			risk("R1", "A", types.RiskLevelOperational),
			risk("R2", "B", types.RiskLevelOperational),
			risk("R3", "C", types.RiskLevelOperational),
		},
		Influences: []model.Influence{
			influenceEdge("I1", "R1", "R2", types.StrengthModerate, 0.8),
			influenceEdge("I2", "R2", "R3", types.StrengthModerate, 0.8),
			influenceEdge("I3", "R3", "R1", types.StrengthModerate, 0.8),
		},
	}

	result := analyze(t, snapshot)
	gt.Array(t, result.TopPropagators).Length(3)
	for _, p := range result.TopPropagators {
		gt.Number(t, p.RisksReached).Equal(2)
		near(t, p.Score, 2*0.4*0.85+2*0.16*0.85*0.85)
	}

	t.Run("clustered as one group", func(t *testing.T) {
		gt.Array(t, result.RiskClusters).Length(1)
		c := result.RiskClusters[0]
		gt.Value(t, c.Nodes).Equal([]types.RiskID{"R1", "R2", "R3"})
		gt.Number(t, c.InternalEdges).Equal(3)
		near(t, c.Density, 0.5)
		gt.Value(t, c.PrimaryCategory).Equal("Mixed")
		gt.Value(t, c.Levels).Equal(model.LevelCounts{Operational: 3})
	})
}

func TestConvergencePoints(t *testing.T) {
	result := analyze(t, networkSnapshot())

	points := result.ConvergencePoints
	gt.Array(t, points).Length(4)

	ids := make([]string, len(points))
	for i, p := range points {
		ids[i] = p.ID
	}
	gt.Value(t, ids).Equal([]string{"T1", "R4", "T2", "R3"})

	margin := points[0]
	gt.Value(t, margin.Name).Equal("TPO-1: Margin")
	gt.Value(t, margin.Level).Equal("TPO")
	gt.Value(t, margin.NodeType).Equal(model.NodeTypeTPO)
	near(t, margin.Score, 2.4394415625)
	gt.Number(t, margin.SourceCount).Equal(4)
	gt.Number(t, margin.PathCount).Equal(4)
	gt.Bool(t, margin.IsHighConvergence).False()

	market := points[1]
	gt.Value(t, market.Level).Equal("Business")
	gt.Value(t, market.NodeType).Equal(model.NodeTypeRisk)
	near(t, market.Score, 1.71105)

	delivery := points[2]
	near(t, delivery.Score, 1.24355)
	gt.Number(t, delivery.SourceCount).Equal(3)
	gt.Number(t, delivery.PathCount).Equal(4)

	near(t, points[3].Score, 1.173)
	gt.Value(t, result.ConvergenceRiskIDs()).Equal([]types.RiskID{"R4", "R3"})
}

func TestConvergenceParallelEdges(t *testing.T) {
	snapshot := &model.Snapshot{
		Risks: []model.Risk{
			risk("R1", "Source", types.RiskLevelOperational),
			risk("R2", "Sink", types.RiskLevelBusiness),
		},
		Influences: []model.Influence{
			influenceEdge("I1", "R1", "R2", types.StrengthCritical, 1.0),
			influenceEdge("I2", "R1", "R2", types.StrengthWeak, 1.0),
		},
	}

	result := analyze(t, snapshot)
	gt.Array(t, result.ConvergencePoints).Length(1)

	cp := result.ConvergencePoints[0]
	gt.Value(t, cp.ID).Equal("R2")
	gt.Number(t, cp.SourceCount).Equal(1)
	gt.Number(t, cp.PathCount).Equal(2)
	gt.Bool(t, cp.IsHighConvergence).True()
	near(t, cp.Score, 0.85*1.4)
}

func TestConvergenceDiamond(t *testing.T) {
	snapshot := &model.Snapshot{
		Risks: []model.Risk{
			risk("A", "Root", types.RiskLevelOperational),
			risk("B", "Left", types.RiskLevelOperational),
			risk("C", "Right", types.RiskLevelOperational),
			risk("D", "Join", types.RiskLevelOperational),
		},
		Influences: []model.Influence{
			influenceEdge("I1", "A", "B", types.StrengthStrong, 1.0),
			influenceEdge("I2", "A", "C", types.StrengthStrong, 1.0),
			influenceEdge("I3", "B", "D", types.StrengthStrong, 1.0),
			influenceEdge("I4", "C", "D", types.StrengthStrong, 1.0),
		},
	}

	result := analyze(t, snapshot)
	gt.Array(t, result.ConvergencePoints).Length(3)

	// A is reached through both B and C, so D sees four incoming risk edges
	// from three sources
	cp := result.ConvergencePoints[0]
	gt.Value(t, cp.ID).Equal("D")
	gt.Number(t, cp.SourceCount).Equal(3)
	gt.Number(t, cp.PathCount).Equal(4)
	gt.Bool(t, cp.IsHighConvergence).False()
	near(t, cp.Score, (0.75*0.85+0.75*0.85+0.5625*0.85*0.85)*(1+0.2*4.0/3.0))

	near(t, result.ConvergencePoints[1].Score, 0.75*0.85*1.2)
}

func TestCriticalPaths(t *testing.T) {
	result := analyze(t, networkSnapshot())

	paths := result.CriticalPaths
	gt.Array(t, paths).Length(4)
	near(t, paths[0].Strength, 0.84375)
	near(t, paths[1].Strength, 0.45)
	near(t, paths[2].Strength, 0.375)
	near(t, paths[3].Strength, 0.3)

	top := paths[0]
	gt.Number(t, top.Length).Equal(3)
	gt.Value(t, top.Path).Equal([]model.PathNode{
		{ID: "R1", Name: "Supplier Delay", Type: "Operational"},
		{ID: "R3", Name: "Cost Overrun", Type: "Business"},
		{ID: "R4", Name: "Market Loss", Type: "Business"},
		{ID: "T1", Name: "TPO-1", Type: "TPO"},
	})
	gt.Value(t, top.Edges).Equal([]model.PathEdge{
		{Type: model.EdgeInfluences, Score: 3},
		{Type: model.EdgeInfluences, Score: 4},
		{Type: model.EdgeImpactsTPO, Score: 4.5},
	})

	gt.Value(t, paths[2].Path[0].ID).Equal("R1")
	gt.Value(t, paths[2].Path[1].ID).Equal("T2")
	for _, p := range paths {
		gt.Bool(t, p.Length <= 5).True()
		gt.Number(t, len(p.Edges)).Equal(p.Length)
	}
}

func TestBottlenecks(t *testing.T) {
	result := analyze(t, networkSnapshot())

	gt.Value(t, result.Bottlenecks).Equal([]model.Bottleneck{
		{ID: "R3", Name: "Cost Overrun", Level: types.RiskLevelBusiness, PathCount: 4, TotalPaths: 8, Percentage: 50},
		{ID: "R4", Name: "Market Loss", Level: types.RiskLevelBusiness, PathCount: 3, TotalPaths: 8, Percentage: 37.5},
	})
	gt.Value(t, result.BottleneckIDs()).Equal([]types.RiskID{"R3", "R4"})
}

func TestRiskClusters(t *testing.T) {
	result := analyze(t, networkSnapshot())

	gt.Array(t, result.RiskClusters).Length(1)
	c := result.RiskClusters[0]
	gt.Value(t, c.Nodes).Equal([]types.RiskID{"R1", "R2", "R3", "R4"})
	gt.Value(t, c.NodeNames).Equal([]string{"Supplier Delay", "Machine Failure", "Cost Overrun", "Market Loss"})
	gt.Number(t, c.Size).Equal(4)
	gt.Number(t, c.InternalEdges).Equal(3)
	near(t, c.Density, 0.25)
	gt.Value(t, c.PrimaryCategory).Equal("Finance")
	gt.Value(t, c.Levels).Equal(model.LevelCounts{Business: 2, Operational: 2})
}

func TestNetworkStats(t *testing.T) {
	snapshot := networkSnapshot()
	snapshot.Influences = append(snapshot.Influences, influenceEdge("I9", "R1", "R404", types.StrengthWeak, 1))
	snapshot.TPOImpacts = append(snapshot.TPOImpacts, impactEdge("P9", "R1", "T404", types.ImpactLow))

	result := analyze(t, snapshot)
	stats := result.Stats
	gt.Number(t, stats.TotalRisks).Equal(5)
	gt.Number(t, stats.BusinessRisks).Equal(2)
	gt.Number(t, stats.OperationalRisks).Equal(3)
	gt.Number(t, stats.TotalTPOs).Equal(2)
	gt.Number(t, stats.TotalInfluences).Equal(4)
	gt.Number(t, stats.TotalTPOImpacts).Equal(4)
	gt.Number(t, stats.SkippedEdges).Equal(2)
	gt.Value(t, stats.InfluencesByCategory).Equal([]model.CountByKey{
		{Key: "operational_to_business", Count: 2},
		{Key: "business_to_business", Count: 1},
		{Key: "operational_to_operational", Count: 0},
		{Key: "unknown", Count: 0},
	})
	gt.Value(t, stats.InfluencesByStrength).Equal([]model.CountByKey{
		{Key: "Weak", Count: 0},
		{Key: "Moderate", Count: 1},
		{Key: "Strong", Count: 1},
		{Key: "Critical", Count: 1},
	})

	// dangling edges change nothing else
	gt.Value(t, result.Bottlenecks).Equal(analyze(t, networkSnapshot()).Bottlenecks)
}

func TestAnalyzeEmptySnapshot(t *testing.T) {
	result := analyze(t, &model.Snapshot{})
	gt.Array(t, result.TopPropagators).Length(0)
	gt.Array(t, result.ConvergencePoints).Length(0)
	gt.Array(t, result.CriticalPaths).Length(0)
	gt.Array(t, result.Bottlenecks).Length(0)
	gt.Array(t, result.RiskClusters).Length(0)
	gt.Bool(t, result.TopPropagators != nil).True()
	gt.Bool(t, result.ConvergencePoints != nil).True()

	data, err := json.Marshal(result)
	gt.NoError(t, err).Required()
	gt.String(t, string(data)).Contains(`"top_propagators":[]`)
	gt.Number(t, result.Stats.TotalRisks).Equal(0)
}

func TestAnalyzeLimit(t *testing.T) {
	result := analyze(t, networkSnapshot(), influence.WithLimit(2))
	gt.Array(t, result.TopPropagators).Length(2)
	gt.Array(t, result.ConvergencePoints).Length(2)
	gt.Array(t, result.CriticalPaths).Length(2)

	full := analyze(t, networkSnapshot())
	gt.Value(t, result.TopPropagators).Equal(full.TopPropagators[:2])
	gt.Value(t, result.ConvergencePoints).Equal(full.ConvergencePoints[:2])
	gt.Value(t, result.CriticalPaths).Equal(full.CriticalPaths[:2])
}

func TestAnalyzeDeterministic(t *testing.T) {
	first := analyze(t, networkSnapshot())
	for i := 0; i < 5; i++ {
		gt.Value(t, analyze(t, networkSnapshot())).Equal(first)
	}
}

func TestAnalyzeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := influence.Analyze(ctx, networkSnapshot())
	gt.Error(t, err).Is(context.Canceled)
}
