package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskmap/pkg/domain/interfaces"
	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/domain/types"
	"github.com/secmon-lab/riskmap/pkg/utils/logging"
)

// Refresher recomputes the analysis report from the current graph
type Refresher interface {
	Refresh(ctx context.Context) (*model.Report, error)
}

// RefreshStatus is the outcome of the latest refresh cycles
type RefreshStatus struct {
	LastRefreshSuccess time.Time          `json:"last_refresh_success"`
	LastRefreshAttempt time.Time          `json:"last_refresh_attempt"`
	LastError          string             `json:"last_error,omitempty"`
	ReportID           model.ReportID     `json:"report_id,omitempty"`
	Health             types.HealthStatus `json:"health,omitempty"`
	RefreshCount       int                `json:"refresh_count"`
}

// AnalysisRefreshWorker periodically recomputes the analysis report and,
// when a writer is set, exports it
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - Export overwrites the same report name on every cycle
type AnalysisRefreshWorker struct {
	analysis   Refresher
	writer     interfaces.ReportWriter
	reportName string
	interval   time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}

	mu     sync.RWMutex
	status RefreshStatus
}

// WorkerOption configures AnalysisRefreshWorker
type WorkerOption func(*AnalysisRefreshWorker)

// WithReportExport exports every refreshed report to writer under name
func WithReportExport(writer interfaces.ReportWriter, name string) WorkerOption {
	return func(w *AnalysisRefreshWorker) {
		w.writer = writer
		w.reportName = name
	}
}

// NewAnalysisRefreshWorker creates a new worker refreshing the analysis every interval
func NewAnalysisRefreshWorker(analysis Refresher, interval time.Duration, opts ...WorkerOption) *AnalysisRefreshWorker {
	w := &AnalysisRefreshWorker{
		analysis: analysis,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins the background refresh loop
// - Initial refresh and periodic refresh both run in a background goroutine
// - Does not block server startup
func (w *AnalysisRefreshWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("refresh interval must be positive", goerr.V("interval", w.interval.String()))
	}

	logging.Default().Info("Analysis refresh worker starting",
		"interval", w.interval.String(),
		"export", w.writer != nil)

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *AnalysisRefreshWorker) Stop() {
	logging.Default().Info("Analysis refresh worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Analysis refresh worker stopped")
}

// Status returns a copy of the latest refresh status
func (w *AnalysisRefreshWorker) Status() RefreshStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.status
}

func (w *AnalysisRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if err := w.refresh(ctx); err != nil {
		logging.Default().Error("Initial analysis refresh failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.refresh(ctx); err != nil {
				logging.Default().Error("Analysis refresh failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			logging.Default().Info("Analysis refresh worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Analysis refresh worker context cancelled")
			return
		}
	}
}

// refresh performs a single cycle. A failed cycle keeps the previous
// success time so callers can tell how stale the report is.
func (w *AnalysisRefreshWorker) refresh(ctx context.Context) error {
	startTime := time.Now()
	logging.Default().Info("Starting analysis refresh")

	w.mu.Lock()
	w.status.LastRefreshAttempt = startTime
	w.mu.Unlock()

	report, err := w.analysis.Refresh(ctx)
	if err == nil && w.writer != nil {
		err = w.export(ctx, report)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.status.LastError = err.Error()
		return goerr.Wrap(err, "failed to refresh analysis")
	}

	w.status.LastRefreshSuccess = startTime
	w.status.LastError = ""
	w.status.ReportID = report.ID
	w.status.Health = report.Health()
	w.status.RefreshCount++

	logging.Default().Info("Analysis refresh completed",
		"report_id", report.ID,
		"health", report.Health(),
		"issues", len(report.Issues),
		"duration", time.Since(startTime).String())
	return nil
}

func (w *AnalysisRefreshWorker) export(ctx context.Context, report *model.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal report", goerr.V("report_id", report.ID))
	}
	if err := w.writer.WriteReport(ctx, w.reportName, data); err != nil {
		return goerr.Wrap(err, "failed to export report", goerr.V("name", w.reportName))
	}
	return nil
}
