package model

import (
	"github.com/secmon-lab/riskmap/pkg/domain/types"
)

// DefaultConfidence replaces a zero or absent influence confidence
const DefaultConfidence = 0.8

// Influence is a directed risk to risk edge
type Influence struct {
	ID          string                  `json:"id"`
	SourceID    types.RiskID            `json:"source_id"`
	TargetID    types.RiskID            `json:"target_id"`
	Strength    types.InfluenceStrength `json:"strength"`
	Confidence  float64                 `json:"confidence"`
	Description string                  `json:"description,omitempty"`
}

// EffectiveConfidence returns the confidence clamped to (0,1], using
// DefaultConfidence when the recorded value is not positive.
func (i *Influence) EffectiveConfidence() float64 {
	switch {
	case i.Confidence <= 0:
		return DefaultConfidence
	case i.Confidence > 1:
		return 1
	default:
		return i.Confidence
	}
}

// TPOImpact is a directed risk to TPO edge
type TPOImpact struct {
	ID          string            `json:"id"`
	RiskID      types.RiskID      `json:"risk_id"`
	TPOID       types.TPOID       `json:"tpo_id"`
	ImpactLevel types.ImpactLevel `json:"impact_level"`
	Description string            `json:"description,omitempty"`
}

// MitigatesRelationship is a directed mitigation to risk edge
type MitigatesRelationship struct {
	ID            string              `json:"id"`
	MitigationID  types.MitigationID  `json:"mitigation_id"`
	RiskID        types.RiskID        `json:"risk_id"`
	Effectiveness types.Effectiveness `json:"effectiveness"`
	Description   string              `json:"description,omitempty"`
}
