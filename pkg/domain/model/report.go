package model

import (
	"time"

	"github.com/secmon-lab/riskmap/pkg/domain/types"
)

// ReportID identifies a generated analysis report
type ReportID string

// Report bundles every analysis computed from one snapshot
type Report struct {
	ID          ReportID         `json:"id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Exposure    *ExposureResult  `json:"exposure"`
	Influence   *InfluenceResult `json:"influence"`
	Coverage    *CoverageResult  `json:"coverage"`
	Gaps        *CoverageGaps    `json:"coverage_gaps"`
	Stats       NetworkStats     `json:"stats"`
	Issues      []IntegrityIssue `json:"integrity_issues"`
}

// Health returns the health band of the report, Excellent when no exposure was computed
func (x *Report) Health() types.HealthStatus {
	if x.Exposure == nil {
		return types.HealthExcellent
	}
	return x.Exposure.Aggregate.HealthStatus
}
