package model

import "github.com/secmon-lab/riskmap/pkg/domain/types"

// RiskExposure is the exposure breakdown of a single risk. Risks without
// probability or impact are listed with HasData=false and zero magnitudes.
type RiskExposure struct {
	RiskID                    types.RiskID    `json:"risk_id"`
	RiskName                  string          `json:"risk_name"`
	Level                     types.RiskLevel `json:"level"`
	HasData                   bool            `json:"has_data"`
	Probability               float64         `json:"probability"`
	Impact                    float64         `json:"impact"`
	BaseExposure              float64         `json:"base_exposure"`
	MitigationFactor          float64         `json:"mitigation_factor"`
	MitigatedExposure         float64         `json:"mitigated_exposure"`
	MitigationCount           int             `json:"mitigation_count"`
	InfluenceLimitation       float64         `json:"influence_limitation"`
	EffectiveMitigationFactor float64         `json:"effective_mitigation_factor"`
	UpstreamRiskCount         int             `json:"upstream_risk_count"`
	FinalExposure             float64         `json:"final_exposure"`
}

// ExposureAggregate summarizes exposure over the whole perimeter
type ExposureAggregate struct {
	ResidualRiskPercentage float64            `json:"residual_risk_percentage"`
	WeightedRiskScore      float64            `json:"weighted_risk_score"`
	MaxSingleExposure      float64            `json:"max_single_exposure"`
	MaxExposureRiskID      types.RiskID       `json:"max_exposure_risk_id"`
	MaxExposureRiskName    string             `json:"max_exposure_risk_name"`
	TotalBaseExposure      float64            `json:"total_base_exposure"`
	TotalFinalExposure     float64            `json:"total_final_exposure"`
	BusinessExposure       float64            `json:"business_exposure"`
	OperationalExposure    float64            `json:"operational_exposure"`
	MitigatedRisksCount    int                `json:"mitigated_risks_count"`
	UnmitigatedRisksCount  int                `json:"unmitigated_risks_count"`
	RisksWithData          int                `json:"risks_with_data"`
	TotalRisks             int                `json:"total_risks"`
	HealthStatus           types.HealthStatus `json:"health_status"`
}

// ExposureResult is the output of the exposure calculator
type ExposureResult struct {
	Risks     []RiskExposure    `json:"risks"`
	Aggregate ExposureAggregate `json:"aggregate"`
}

// Find returns the exposure of the given risk
func (x *ExposureResult) Find(id types.RiskID) (*RiskExposure, bool) {
	for i := range x.Risks {
		if x.Risks[i].RiskID == id {
			return &x.Risks[i], true
		}
	}
	return nil, false
}
