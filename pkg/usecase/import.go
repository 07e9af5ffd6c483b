package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskmap/pkg/domain/interfaces"
	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/service/snapshotfile"
	"github.com/secmon-lab/riskmap/pkg/utils/logging"
)

// invalidator drops cached analysis after the graph changes
type invalidator interface {
	Invalidate()
}

// ImportUseCase replaces the stored graph with a snapshot
type ImportUseCase struct {
	repo     interfaces.GraphRepository
	analysis invalidator
}

// NewImportUseCase creates a new ImportUseCase. analysis may be nil.
func NewImportUseCase(repo interfaces.GraphRepository, analysis invalidator) *ImportUseCase {
	return &ImportUseCase{
		repo:     repo,
		analysis: analysis,
	}
}

// ImportResult summarizes an import
type ImportResult struct {
	Risks       int                    `json:"risks"`
	TPOs        int                    `json:"tpos"`
	Mitigations int                    `json:"mitigations"`
	Influences  int                    `json:"influences"`
	TPOImpacts  int                    `json:"tpo_impacts"`
	Mitigates   int                    `json:"mitigates"`
	Issues      []model.IntegrityIssue `json:"integrity_issues"`
}

type importConfig struct {
	strict bool
	dryRun bool
}

// ImportOption configures a single import
type ImportOption func(*importConfig)

// WithStrict rejects snapshots that have integrity issues
func WithStrict() ImportOption {
	return func(c *importConfig) {
		c.strict = true
	}
}

// WithDryRun checks the snapshot without writing it
func WithDryRun() ImportOption {
	return func(c *importConfig) {
		c.dryRun = true
	}
}

// Import checks snapshot and stores it in place of the current graph.
// Integrity issues are reported in the result and only fail the import
// in strict mode.
func (uc *ImportUseCase) Import(ctx context.Context, snapshot *model.Snapshot, opts ...ImportOption) (*ImportResult, error) {
	var cfg importConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if snapshot == nil || len(snapshot.Risks) == 0 {
		return nil, goerr.Wrap(ErrEmptySnapshot, "nothing to import")
	}

	result := &ImportResult{
		Risks:       len(snapshot.Risks),
		TPOs:        len(snapshot.TPOs),
		Mitigations: len(snapshot.Mitigations),
		Influences:  len(snapshot.Influences),
		TPOImpacts:  len(snapshot.TPOImpacts),
		Mitigates:   len(snapshot.Mitigates),
		Issues:      snapshot.Check(),
	}

	logger := logging.From(ctx)
	for _, issue := range result.Issues {
		logger.Warn("Snapshot integrity issue",
			"entity", issue.Entity,
			"id", issue.ID,
			"message", issue.Message)
	}

	if cfg.strict && len(result.Issues) > 0 {
		return result, goerr.Wrap(ErrInvalidSnapshot, "import rejected",
			goerr.V(IssueCountKey, len(result.Issues)))
	}

	if cfg.dryRun {
		logger.Info("Dry run, snapshot not stored", "risks", result.Risks)
		return result, nil
	}

	if err := uc.repo.ReplaceSnapshot(ctx, snapshot); err != nil {
		return nil, goerr.Wrap(err, "failed to store snapshot")
	}
	if uc.analysis != nil {
		uc.analysis.Invalidate()
	}

	logger.Info("Snapshot imported",
		"risks", result.Risks,
		"tpos", result.TPOs,
		"mitigations", result.Mitigations,
		"influences", result.Influences,
		"tpo_impacts", result.TPOImpacts,
		"mitigates", result.Mitigates,
		"issues", len(result.Issues))
	return result, nil
}

// ImportFile decodes a TOML, YAML or JSON snapshot file and imports it
func (uc *ImportUseCase) ImportFile(ctx context.Context, path string, opts ...ImportOption) (*ImportResult, error) {
	snapshot, err := snapshotfile.Load(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load snapshot file", goerr.V("path", path))
	}
	return uc.Import(ctx, snapshot, opts...)
}
