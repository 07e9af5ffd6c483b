package model

import "github.com/secmon-lab/riskmap/pkg/domain/types"

// CoverageStats counts how many risks have at least one mitigation
type CoverageStats struct {
	TotalRisks         int     `json:"total_risks"`
	MitigatedRisks     int     `json:"mitigated_risks"`
	UnmitigatedRisks   int     `json:"unmitigated_risks"`
	CoveragePercentage float64 `json:"coverage_percentage"`
	TotalMitigations   int     `json:"total_mitigations"`
	TotalLinks         int     `json:"total_links"`
}

// MitigationLink is a mitigation as seen from one of the risks it addresses
type MitigationLink struct {
	MitigationID   types.MitigationID     `json:"mitigation_id"`
	MitigationName string                 `json:"mitigation_name"`
	MitigationType types.MitigationType   `json:"mitigation_type"`
	Status         types.MitigationStatus `json:"status"`
	Effectiveness  types.Effectiveness    `json:"effectiveness"`
	Description    string                 `json:"description,omitempty"`
}

// RiskMitigationSummary is the treatment state of one risk
type RiskMitigationSummary struct {
	ID               types.RiskID          `json:"id"`
	Name             string                `json:"name"`
	Level            types.RiskLevel       `json:"level"`
	Origin           types.RiskOrigin      `json:"origin"`
	Exposure         float64               `json:"exposure"`
	Categories       []string              `json:"categories"`
	MitigationCount  int                   `json:"mitigation_count"`
	ImplementedCount int                   `json:"implemented_count"`
	ProposedCount    int                   `json:"proposed_count"`
	MitigationScore  int                   `json:"mitigation_score"`
	Mitigations      []MitigationLink      `json:"mitigations"`
	CoverageStatus   types.CoverageStatus  `json:"coverage_status"`
	InfluenceFlags   []types.InfluenceFlag `json:"influence_flags"`
}

// EffectivenessCount is one bucket of the effectiveness distribution
type EffectivenessCount struct {
	Effectiveness types.Effectiveness `json:"effectiveness"`
	Count         int                 `json:"count"`
}

// CategoryCoverage is the mitigation coverage of one risk category
type CategoryCoverage struct {
	Category           string  `json:"category"`
	Total              int     `json:"total"`
	Mitigated          int     `json:"mitigated"`
	Unmitigated        int     `json:"unmitigated"`
	CoveragePercentage float64 `json:"coverage_percentage"`
}

// CoverageResult is the output of the mitigation coverage analyzer
type CoverageResult struct {
	Stats                     CoverageStats           `json:"coverage_stats"`
	RiskSummaries             []RiskMitigationSummary `json:"risk_summaries"`
	UnmitigatedRisks          []RiskMitigationSummary `json:"unmitigated_risks"`
	ProposedOnlyRisks         []RiskMitigationSummary `json:"proposed_only_risks"`
	PartiallyCoveredRisks     []RiskMitigationSummary `json:"partially_covered_risks"`
	WellCoveredRisks          []RiskMitigationSummary `json:"well_covered_risks"`
	HighPriorityUnmitigated   []RiskMitigationSummary `json:"high_priority_unmitigated"`
	CategoryCoverage          []CategoryCoverage      `json:"category_coverage"`
	EffectivenessDistribution []EffectivenessCount    `json:"effectiveness_distribution"`
}

// GapRisk is a risk listed by the gap analysis
type GapRisk struct {
	ID                       types.RiskID          `json:"id"`
	Name                     string                `json:"name"`
	Level                    types.RiskLevel       `json:"level"`
	Exposure                 float64               `json:"exposure"`
	Categories               []string              `json:"categories"`
	IsHighPriority           bool                  `json:"is_high_priority"`
	InfluenceFlags           []types.InfluenceFlag `json:"influence_flags"`
	ProposedMitigations      []string              `json:"proposed_mitigations,omitempty"`
	ImplementedEffectiveness *int                  `json:"implemented_effectiveness,omitempty"`
}

// CoverageGaps lists the weak spots of the mitigation strategy
type CoverageGaps struct {
	AverageExposure          float64            `json:"average_exposure"`
	ExposureThreshold        float64            `json:"exposure_threshold"`
	CriticalUnmitigated      []GapRisk          `json:"critical_unmitigated"`
	HighPriorityUnmitigated  []GapRisk          `json:"high_priority_unmitigated"`
	ProposedOnlyHighExposure []GapRisk          `json:"proposed_only_high_exposure"`
	BusinessGaps             []GapRisk          `json:"business_gaps"`
	CategoryCoverage         []CategoryCoverage `json:"category_coverage"`
}

// InfluenceInfo is what the influence analysis says about one risk
type InfluenceInfo struct {
	IsTopPropagator    bool    `json:"is_top_propagator"`
	PropagationScore   float64 `json:"propagation_score,omitempty"`
	TPOsReached        int     `json:"tpos_reached,omitempty"`
	IsConvergencePoint bool    `json:"is_convergence_point"`
	ConvergenceScore   float64 `json:"convergence_score,omitempty"`
	SourceCount        int     `json:"source_count,omitempty"`
	IsBottleneck       bool    `json:"is_bottleneck"`
	PathPercentage     float64 `json:"path_percentage,omitempty"`
}

// RiskDetails is the mitigation detail of one risk. Found is false when the
// requested id is not part of the snapshot.
type RiskDetails struct {
	Found                   bool                 `json:"found"`
	Risk                    *Risk                `json:"risk,omitempty"`
	Mitigations             []MitigationLink     `json:"mitigations"`
	MitigationCount         int                  `json:"mitigation_count"`
	ImplementedCount        int                  `json:"implemented_count"`
	TotalEffectivenessScore int                  `json:"total_effectiveness_score"`
	CoverageStatus          types.CoverageStatus `json:"coverage_status,omitempty"`
	Influence               InfluenceInfo        `json:"influence_info"`
}

// AddressedRisk is a risk as seen from a mitigation addressing it
type AddressedRisk struct {
	Risk          Risk                `json:"risk"`
	Effectiveness types.Effectiveness `json:"effectiveness"`
}

// PriorityImpact marks an addressed risk the influence analysis flagged
type PriorityImpact struct {
	RiskID   types.RiskID          `json:"risk_id"`
	RiskName string                `json:"risk_name"`
	Flags    []types.InfluenceFlag `json:"flags"`
}

// MitigationDetails is the impact of one mitigation. Found is false when the
// requested id is not part of the snapshot.
type MitigationDetails struct {
	Found                 bool             `json:"found"`
	Mitigation            *Mitigation      `json:"mitigation,omitempty"`
	Risks                 []AddressedRisk  `json:"risks"`
	RiskCount             int              `json:"risk_count"`
	BusinessCount         int              `json:"business_count"`
	OperationalCount      int              `json:"operational_count"`
	TotalExposureCovered  float64          `json:"total_exposure_covered"`
	PriorityImpacts       []PriorityImpact `json:"priority_impacts"`
	AddressesHighPriority bool             `json:"addresses_high_priority"`
}
