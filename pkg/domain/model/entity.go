package model

import (
	"github.com/secmon-lab/riskmap/pkg/domain/types"
)

// Risk is a node of the influence map, either Business or Operational tier
type Risk struct {
	ID          types.RiskID     `json:"id"`
	Name        string           `json:"name"`
	Level       types.RiskLevel  `json:"level"`
	Categories  []string         `json:"categories"`
	Status      types.RiskStatus `json:"status"`
	Origin      types.RiskOrigin `json:"origin"`
	Probability *float64         `json:"probability,omitempty"`
	Impact      *float64         `json:"impact,omitempty"`
	Owner       string           `json:"owner,omitempty"`
	Description string           `json:"description,omitempty"`

	// Only meaningful for contingent risks
	ActivationCondition    string `json:"activation_condition,omitempty"`
	ActivationDecisionDate string `json:"activation_decision_date,omitempty"`
}

// Exposure returns probability × impact. The second value is false when
// either input is absent or non-positive, in which case the risk has no
// usable base exposure.
func (r *Risk) Exposure() (float64, bool) {
	if r.Probability == nil || r.Impact == nil {
		return 0, false
	}
	if *r.Probability <= 0 || *r.Impact <= 0 {
		return 0, false
	}
	return *r.Probability * *r.Impact, true
}

// ImpactValue returns the impact score or 0 when absent
func (r *Risk) ImpactValue() float64 {
	if r.Impact == nil {
		return 0
	}
	return *r.Impact
}

// TPO is a top program objective that risks can impact
type TPO struct {
	ID          types.TPOID      `json:"id"`
	Reference   string           `json:"reference"`
	Name        string           `json:"name"`
	Cluster     types.TPOCluster `json:"cluster"`
	Description string           `json:"description,omitempty"`
}

// Label returns "REFERENCE: Name"
func (t *TPO) Label() string {
	return t.Reference + ": " + t.Name
}

// Mitigation is an action that reduces the exposure of one or more risks
type Mitigation struct {
	ID           types.MitigationID     `json:"id"`
	Name         string                 `json:"name"`
	Type         types.MitigationType   `json:"type"`
	Status       types.MitigationStatus `json:"status"`
	Owner        string                 `json:"owner,omitempty"`
	SourceEntity string                 `json:"source_entity,omitempty"`
	Description  string                 `json:"description,omitempty"`
}
