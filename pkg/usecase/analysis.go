package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskmap/pkg/domain/interfaces"
	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/domain/types"
	"github.com/secmon-lab/riskmap/pkg/service/coverage"
	"github.com/secmon-lab/riskmap/pkg/service/exposure"
	"github.com/secmon-lab/riskmap/pkg/service/influence"
	"github.com/secmon-lab/riskmap/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// AnalysisUseCase computes analysis reports from the graph repository and
// serves them from a short lived cache
type AnalysisUseCase struct {
	repo  interfaces.GraphRepository
	cache *reportCache
	now   func() time.Time
}

// NewAnalysisUseCase creates a new AnalysisUseCase. A non-positive ttl
// disables caching.
func NewAnalysisUseCase(repo interfaces.GraphRepository, ttl time.Duration) *AnalysisUseCase {
	return &AnalysisUseCase{
		repo:  repo,
		cache: newReportCache(ttl),
		now:   time.Now,
	}
}

// Snapshot reads the whole graph from the repository
func (uc *AnalysisUseCase) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	var s model.Snapshot
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		v, err := uc.repo.ListRisks(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to list risks")
		}
		s.Risks = v
		return nil
	})
	eg.Go(func() error {
		v, err := uc.repo.ListTPOs(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to list TPOs")
		}
		s.TPOs = v
		return nil
	})
	eg.Go(func() error {
		v, err := uc.repo.ListMitigations(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to list mitigations")
		}
		s.Mitigations = v
		return nil
	})
	eg.Go(func() error {
		v, err := uc.repo.ListInfluences(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to list influences")
		}
		s.Influences = v
		return nil
	})
	eg.Go(func() error {
		v, err := uc.repo.ListTPOImpacts(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to list TPO impacts")
		}
		s.TPOImpacts = v
		return nil
	})
	eg.Go(func() error {
		v, err := uc.repo.ListMitigates(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to list mitigations links")
		}
		s.Mitigates = v
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Report returns the current analysis report, computing it on cache miss
func (uc *AnalysisUseCase) Report(ctx context.Context) (*model.Report, error) {
	a, err := uc.current(ctx)
	if err != nil {
		return nil, err
	}
	return a.report, nil
}

// Refresh drops the cached report and computes a new one
func (uc *AnalysisUseCase) Refresh(ctx context.Context) (*model.Report, error) {
	uc.Invalidate()
	return uc.Report(ctx)
}

// Invalidate drops the cached report. The next read recomputes it.
func (uc *AnalysisUseCase) Invalidate() {
	uc.cache.remove()
}

func (uc *AnalysisUseCase) Exposure(ctx context.Context) (*model.ExposureResult, error) {
	report, err := uc.Report(ctx)
	if err != nil {
		return nil, err
	}
	return report.Exposure, nil
}

func (uc *AnalysisUseCase) Influence(ctx context.Context) (*model.InfluenceResult, error) {
	report, err := uc.Report(ctx)
	if err != nil {
		return nil, err
	}
	return report.Influence, nil
}

func (uc *AnalysisUseCase) Coverage(ctx context.Context) (*model.CoverageResult, error) {
	report, err := uc.Report(ctx)
	if err != nil {
		return nil, err
	}
	return report.Coverage, nil
}

func (uc *AnalysisUseCase) CoverageGaps(ctx context.Context) (*model.CoverageGaps, error) {
	report, err := uc.Report(ctx)
	if err != nil {
		return nil, err
	}
	return report.Gaps, nil
}

func (uc *AnalysisUseCase) Statistics(ctx context.Context) (*model.NetworkStats, error) {
	report, err := uc.Report(ctx)
	if err != nil {
		return nil, err
	}
	stats := report.Stats
	return &stats, nil
}

// RiskDetails returns the mitigation detail of one risk. The result has
// Found=false when the risk does not exist.
func (uc *AnalysisUseCase) RiskDetails(ctx context.Context, id types.RiskID) (*model.RiskDetails, error) {
	a, err := uc.current(ctx)
	if err != nil {
		return nil, err
	}
	return a.coverage.RiskDetails(id), nil
}

// MitigationDetails returns the impact of one mitigation. The result has
// Found=false when the mitigation does not exist.
func (uc *AnalysisUseCase) MitigationDetails(ctx context.Context, id types.MitigationID) (*model.MitigationDetails, error) {
	a, err := uc.current(ctx)
	if err != nil {
		return nil, err
	}
	return a.coverage.MitigationDetails(id), nil
}

// ExportReport writes the current report as JSON to writer under name
func (uc *AnalysisUseCase) ExportReport(ctx context.Context, writer interfaces.ReportWriter, name string) (*model.Report, error) {
	if writer == nil {
		return nil, goerr.Wrap(ErrNoReportWriter, "cannot export report")
	}

	report, err := uc.Report(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(report)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal report", goerr.V(ReportIDKey, report.ID))
	}
	if err := writer.WriteReport(ctx, name, data); err != nil {
		return nil, goerr.Wrap(err, "failed to write report",
			goerr.V(ReportIDKey, report.ID),
			goerr.V("name", name))
	}

	logging.From(ctx).Info("Report exported",
		"report_id", report.ID,
		"name", name,
		"size", len(data))
	return report, nil
}

func (uc *AnalysisUseCase) current(ctx context.Context) (*analysis, error) {
	if a, ok := uc.cache.get(); ok {
		return a, nil
	}

	snapshot, err := uc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	a, err := uc.analyze(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	uc.cache.set(a)
	return a, nil
}

// Analyze computes a report from snapshot without touching the repository
// or the cache
func (uc *AnalysisUseCase) Analyze(ctx context.Context, snapshot *model.Snapshot) (*model.Report, error) {
	a, err := uc.analyze(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	return a.report, nil
}

// analyze runs the exposure calculator and the influence analyzer
// concurrently, then the coverage analyzer on top of the influence result.
// Coverage flags are taken from the same rankings the report shows.
func (uc *AnalysisUseCase) analyze(ctx context.Context, snapshot *model.Snapshot) (*analysis, error) {
	startTime := uc.now()
	issues := snapshot.Check()
	if len(issues) > 0 {
		logging.From(ctx).Warn("Snapshot has integrity issues",
			"issues", len(issues))
	}

	var (
		exp *model.ExposureResult
		inf *model.InfluenceResult
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		exp = exposure.Calculate(egCtx, snapshot)
		return nil
	})
	eg.Go(func() error {
		result, err := influence.Analyze(egCtx, snapshot)
		if err != nil {
			return goerr.Wrap(err, "failed to analyze influence network")
		}
		inf = result
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	analyzer := coverage.New(ctx, snapshot, inf)
	report := &model.Report{
		ID:          model.ReportID(uuid.NewString()),
		GeneratedAt: startTime,
		Exposure:    exp,
		Influence:   inf,
		Coverage:    analyzer.Analyze(),
		Gaps:        analyzer.Gaps(),
		Stats:       inf.Stats,
		Issues:      issues,
	}

	logging.From(ctx).Info("Analysis completed",
		"report_id", report.ID,
		"risks", len(snapshot.Risks),
		"health", report.Health(),
		"duration", uc.now().Sub(startTime).String())

	return &analysis{report: report, coverage: analyzer}, nil
}
