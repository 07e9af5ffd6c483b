package interfaces

import (
	"context"

	"github.com/secmon-lab/riskmap/pkg/domain/model"
)

// GraphRepository provides read access to the risk graph and a bulk
// replacement used by imports. List methods return records in a stable
// order so that analyses built on them are reproducible.
type GraphRepository interface {
	ListRisks(ctx context.Context) ([]model.Risk, error)
	ListTPOs(ctx context.Context) ([]model.TPO, error)
	ListMitigations(ctx context.Context) ([]model.Mitigation, error)
	ListInfluences(ctx context.Context) ([]model.Influence, error)
	ListTPOImpacts(ctx context.Context) ([]model.TPOImpact, error)
	ListMitigates(ctx context.Context) ([]model.MitigatesRelationship, error)

	// ReplaceSnapshot drops the stored graph and stores the given one
	ReplaceSnapshot(ctx context.Context, snapshot *model.Snapshot) error

	Close() error
}

// ReportWriter stores a rendered analysis report under the given name
type ReportWriter interface {
	WriteReport(ctx context.Context, name string, data []byte) error
}
