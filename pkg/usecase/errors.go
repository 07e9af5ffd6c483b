package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Snapshot errors
	ErrInvalidSnapshot = errors.New("snapshot has integrity issues")
	ErrEmptySnapshot   = errors.New("snapshot is empty")

	// Export errors
	ErrNoReportWriter = errors.New("report writer is not set")
)

// Context keys for error values
const (
	ReportIDKey   = "report_id"
	IssueCountKey = "issue_count"
)
