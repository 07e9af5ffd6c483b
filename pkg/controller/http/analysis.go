package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/domain/types"
	"github.com/secmon-lab/riskmap/pkg/service/worker"
	"github.com/secmon-lab/riskmap/pkg/utils/async"
	"github.com/secmon-lab/riskmap/pkg/utils/errutil"
)

// AnalysisUseCase is the read side of the analysis served over HTTP
type AnalysisUseCase interface {
	Report(ctx context.Context) (*model.Report, error)
	Exposure(ctx context.Context) (*model.ExposureResult, error)
	Influence(ctx context.Context) (*model.InfluenceResult, error)
	Coverage(ctx context.Context) (*model.CoverageResult, error)
	CoverageGaps(ctx context.Context) (*model.CoverageGaps, error)
	Statistics(ctx context.Context) (*model.NetworkStats, error)
	RiskDetails(ctx context.Context, id types.RiskID) (*model.RiskDetails, error)
	MitigationDetails(ctx context.Context, id types.MitigationID) (*model.MitigationDetails, error)
	Invalidate()
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status  string                `json:"status"`
	Version string                `json:"version,omitempty"`
	Refresh *worker.RefreshStatus `json:"refresh,omitempty"`
}

type refreshResponse struct {
	Status string `json:"status"`
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		_ = errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}

// serve writes the result of fetch, or a 500 when it fails
func serve[T any](w http.ResponseWriter, r *http.Request, name string, fetch func(ctx context.Context) (T, error)) {
	ctx := r.Context()
	result, err := fetch(ctx)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to compute analysis", goerr.V("analysis", name)), http.StatusInternalServerError)
		return
	}
	writeJSON(ctx, w, http.StatusOK, result)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Version: s.version}
	if s.status != nil {
		status := s.status()
		resp.Refresh = &status
	}
	writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (s *Server) reportHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "report", s.analysis.Report)
}

func (s *Server) exposureHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "exposure", s.analysis.Exposure)
}

func (s *Server) influenceHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "influence", s.analysis.Influence)
}

func (s *Server) coverageHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "coverage", s.analysis.Coverage)
}

func (s *Server) gapsHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "coverage_gaps", s.analysis.CoverageGaps)
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "stats", s.analysis.Statistics)
}

// refreshHandler drops the cached report and recomputes it in the
// background so the next read is served from a warm cache
func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	s.analysis.Invalidate()
	async.Dispatch(r.Context(), "analysis_refresh", func(ctx context.Context) error {
		_, err := s.analysis.Report(ctx)
		return err
	})
	writeJSON(r.Context(), w, http.StatusAccepted, refreshResponse{Status: "refresh scheduled"})
}

func (s *Server) riskDetailsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	details, err := s.analysis.RiskDetails(ctx, types.RiskID(id))
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to get risk details", goerr.V("risk_id", id)), http.StatusInternalServerError)
		return
	}
	if !details.Found {
		writeJSON(ctx, w, http.StatusNotFound, errorResponse{Error: "risk " + id + " not found"})
		return
	}
	writeJSON(ctx, w, http.StatusOK, details)
}

func (s *Server) mitigationDetailsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	details, err := s.analysis.MitigationDetails(ctx, types.MitigationID(id))
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to get mitigation details", goerr.V("mitigation_id", id)), http.StatusInternalServerError)
		return
	}
	if !details.Found {
		writeJSON(ctx, w, http.StatusNotFound, errorResponse{Error: "mitigation " + id + " not found"})
		return
	}
	writeJSON(ctx, w, http.StatusOK, details)
}
