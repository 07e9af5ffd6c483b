package types

// CoverageStatus classifies how well a risk is treated by its mitigations
type CoverageStatus string

const (
	CoverageUnmitigated      CoverageStatus = "unmitigated"
	CoverageProposedOnly     CoverageStatus = "proposed_only"
	CoveragePartiallyCovered CoverageStatus = "partially_covered"
	CoverageWellCovered      CoverageStatus = "well_covered"
)

// Label returns a human readable label
func (s CoverageStatus) Label() string {
	switch s {
	case CoverageUnmitigated:
		return "No Mitigations"
	case CoverageProposedOnly:
		return "Only Proposed"
	case CoveragePartiallyCovered:
		return "Partially Covered"
	case CoverageWellCovered:
		return "Well Covered"
	default:
		return "Unknown"
	}
}

func (s CoverageStatus) String() string {
	return string(s)
}

// InfluenceFlag marks a risk singled out by the influence network analysis
type InfluenceFlag string

const (
	FlagTopPropagator    InfluenceFlag = "Top Propagator"
	FlagConvergencePoint InfluenceFlag = "Convergence Point"
	FlagBottleneck       InfluenceFlag = "Bottleneck"
)

// HealthStatus bands the weighted risk score for executives
type HealthStatus string

const (
	HealthExcellent  HealthStatus = "Excellent"
	HealthGood       HealthStatus = "Good"
	HealthModerate   HealthStatus = "Moderate"
	HealthConcerning HealthStatus = "Concerning"
	HealthCritical   HealthStatus = "Critical"
)

// HealthStatusOf bands a weighted risk score in [0,100]
func HealthStatusOf(score float64) HealthStatus {
	switch {
	case score <= 10:
		return HealthExcellent
	case score <= 30:
		return HealthGood
	case score <= 50:
		return HealthModerate
	case score <= 70:
		return HealthConcerning
	default:
		return HealthCritical
	}
}

func (h HealthStatus) String() string {
	return string(h)
}
