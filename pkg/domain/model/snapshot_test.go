package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/domain/types"
)

func ptr(v float64) *float64 { return &v }

func sampleSnapshot() model.Snapshot {
	return model.Snapshot{
		Risks: []model.Risk{
			{
				ID: "R1", Name: "Supplier Delay", Level: types.RiskLevelOperational,
				Categories: []string{"Supply"}, Status: types.RiskStatusActive, Origin: types.RiskOriginNew,
				Probability: ptr(6), Impact: ptr(8), Owner: "ops",
			},
			{
				ID: "R2", Name: "Cost Overrun", Level: types.RiskLevelBusiness,
				Categories: []string{"Finance", "Supply"}, Status: types.RiskStatusContingent, Origin: types.RiskOriginLegacy,
				Probability: ptr(5), Impact: ptr(6),
				ActivationCondition: "budget review fails", ActivationDecisionDate: "2026-03-01",
			},
		},
		TPOs: []model.TPO{
			{ID: "T1", Reference: "TPO-01", Name: "Unit cost", Cluster: types.TPOClusterBusinessEfficiency},
		},
		Mitigations: []model.Mitigation{
			{ID: "M1", Name: "Dual sourcing", Type: types.MitigationTypeDedicated, Status: types.MitigationStatusImplemented},
		},
		Influences: []model.Influence{
			{ID: "I1", SourceID: "R1", TargetID: "R2", Strength: types.StrengthStrong, Confidence: 0.9},
		},
		TPOImpacts: []model.TPOImpact{
			{ID: "P1", RiskID: "R2", TPOID: "T1", ImpactLevel: types.ImpactHigh},
		},
		Mitigates: []model.MitigatesRelationship{
			{ID: "L1", MitigationID: "M1", RiskID: "R2", Effectiveness: types.EffectivenessHigh},
		},
	}
}

func TestRiskExposure(t *testing.T) {
	t.Run("both inputs present", func(t *testing.T) {
		r := model.Risk{Probability: ptr(6), Impact: ptr(8)}
		v, ok := r.Exposure()
		gt.Bool(t, ok).True()
		gt.Value(t, v).Equal(48.0)
	})

	t.Run("missing impact", func(t *testing.T) {
		r := model.Risk{Probability: ptr(6)}
		_, ok := r.Exposure()
		gt.Bool(t, ok).False()
	})

	t.Run("zero probability has no data", func(t *testing.T) {
		r := model.Risk{Probability: ptr(0), Impact: ptr(8)}
		_, ok := r.Exposure()
		gt.Bool(t, ok).False()
	})
}

func TestEffectiveConfidence(t *testing.T) {
	gt.Value(t, (&model.Influence{}).EffectiveConfidence()).Equal(model.DefaultConfidence)
	gt.Value(t, (&model.Influence{Confidence: 0.5}).EffectiveConfidence()).Equal(0.5)
	gt.Value(t, (&model.Influence{Confidence: 3}).EffectiveConfidence()).Equal(1.0)
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	src := sampleSnapshot()
	raw, err := json.Marshal(src)
	gt.NoError(t, err).Required()

	var dst model.Snapshot
	gt.NoError(t, json.Unmarshal(raw, &dst)).Required()
	gt.Value(t, dst).Equal(src)
}

func TestSnapshotCheck(t *testing.T) {
	t.Run("clean snapshot", func(t *testing.T) {
		s := sampleSnapshot()
		gt.Array(t, s.Check()).Length(0)
	})

	t.Run("dangling references", func(t *testing.T) {
		s := sampleSnapshot()
		s.Influences = append(s.Influences, model.Influence{ID: "I2", SourceID: "R1", TargetID: "R404", Strength: types.StrengthWeak})
		s.Mitigates = append(s.Mitigates, model.MitigatesRelationship{ID: "L2", MitigationID: "M404", RiskID: "R1", Effectiveness: types.EffectivenessLow})

		issues := s.Check()
		gt.Array(t, issues).Length(2)
		gt.Value(t, issues[0].Entity).Equal("influence")
		gt.Value(t, issues[0].ID).Equal("I2")
		gt.Bool(t, errors.Is(issues[0].Err, model.ErrDanglingReference)).True()
		gt.Value(t, issues[1].Entity).Equal("mitigates")
	})

	t.Run("duplicate tpo reference and out of range values", func(t *testing.T) {
		s := sampleSnapshot()
		s.TPOs = append(s.TPOs, model.TPO{ID: "T2", Reference: "TPO-01", Name: "Other", Cluster: types.TPOClusterSafety})
		s.Risks[0].Impact = ptr(12)

		issues := s.Check()
		gt.Array(t, issues).Length(2)
		gt.Bool(t, errors.Is(issues[0].Err, model.ErrOutOfRange)).True()
		gt.Bool(t, errors.Is(issues[1].Err, model.ErrDuplicateID)).True()
	})

	t.Run("unknown enumeration value", func(t *testing.T) {
		s := sampleSnapshot()
		s.Influences[0].Strength = "Huge"
		issues := s.Check()
		gt.Array(t, issues).Length(1)
		gt.Bool(t, errors.Is(issues[0].Err, types.ErrUnknownValue)).True()
	})

	t.Run("risk without category", func(t *testing.T) {
		s := sampleSnapshot()
		s.Risks[1].Categories = nil
		issues := s.Check()
		gt.Array(t, issues).Length(1)
		gt.Bool(t, errors.Is(issues[0].Err, model.ErrMissingRequired)).True()
	})
}

func TestHighPriorityIDs(t *testing.T) {
	result := model.InfluenceResult{
		TopPropagators: []model.Propagator{{ID: "R1"}, {ID: "R2"}},
		ConvergencePoints: []model.ConvergencePoint{
			{ID: "T1", NodeType: model.NodeTypeTPO},
			{ID: "R3", NodeType: model.NodeTypeRisk},
			{ID: "R1", NodeType: model.NodeTypeRisk},
		},
		Bottlenecks: []model.Bottleneck{{ID: "R4"}},
	}

	gt.Value(t, result.HighPriorityIDs()).Equal([]types.RiskID{"R1", "R2", "R3", "R4"})
	gt.Value(t, result.ConvergenceRiskIDs()).Equal([]types.RiskID{"R3", "R1"})
}
