// Package coverage analyzes how the risks of a snapshot are treated by
// mitigations and where the treatment has gaps.
package coverage

import (
	"cmp"
	"context"
	"slices"

	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/domain/types"
	"github.com/secmon-lab/riskmap/pkg/utils/logging"
)

const (
	// DefaultAverageExposure replaces the average when no risk has exposure data
	DefaultAverageExposure = 5.0
	// HighExposureRatio scales the average exposure into the gap threshold
	HighExposureRatio = 1.2

	wellCoveredImplemented = 2
	wellCoveredScore       = 6
	weakBusinessScore      = 4
)

type addressed struct {
	risk          int
	effectiveness types.Effectiveness
}

// Analyzer indexes risks, mitigations and their links once. It is read only
// after New and safe for concurrent use.
type Analyzer struct {
	snapshot    *model.Snapshot
	risks       map[types.RiskID]int
	mitigations map[types.MitigationID]int
	links       [][]model.MitigationLink
	addressed   map[types.MitigationID][]addressed
	linkCount   int
	exposures   []float64
	influence   *model.InfluenceResult
	flags       map[types.RiskID][]types.InfluenceFlag
	priority    map[types.RiskID]bool
}

// New builds the analyzer. influence may be nil, in which case no risk
// carries influence flags.
func New(ctx context.Context, snapshot *model.Snapshot, influence *model.InfluenceResult) *Analyzer {
	logger := logging.From(ctx)

	a := &Analyzer{
		snapshot:    snapshot,
		risks:       make(map[types.RiskID]int, len(snapshot.Risks)),
		mitigations: make(map[types.MitigationID]int, len(snapshot.Mitigations)),
		links:       make([][]model.MitigationLink, len(snapshot.Risks)),
		addressed:   make(map[types.MitigationID][]addressed),
		exposures:   make([]float64, len(snapshot.Risks)),
		influence:   influence,
		flags:       make(map[types.RiskID][]types.InfluenceFlag),
		priority:    make(map[types.RiskID]bool),
	}

	for i := range snapshot.Risks {
		r := &snapshot.Risks[i]
		if _, ok := a.risks[r.ID]; !ok {
			a.risks[r.ID] = i
		}
		a.exposures[i], _ = r.Exposure()
	}
	for i, m := range snapshot.Mitigations {
		if _, ok := a.mitigations[m.ID]; !ok {
			a.mitigations[m.ID] = i
		}
	}

	for _, rel := range snapshot.Mitigates {
		ri, okRisk := a.risks[rel.RiskID]
		mi, okMit := a.mitigations[rel.MitigationID]
		if !okRisk || !okMit {
			logger.Warn("skipping mitigation link with unknown endpoint",
				"link_id", rel.ID,
				"risk_id", rel.RiskID,
				"mitigation_id", rel.MitigationID)
			continue
		}
		m := &snapshot.Mitigations[mi]
		a.links[ri] = append(a.links[ri], model.MitigationLink{
			MitigationID:   m.ID,
			MitigationName: m.Name,
			MitigationType: m.Type,
			Status:         m.Status,
			Effectiveness:  rel.Effectiveness,
			Description:    rel.Description,
		})
		a.addressed[m.ID] = append(a.addressed[m.ID], addressed{risk: ri, effectiveness: rel.Effectiveness})
		a.linkCount++
	}

	if influence != nil {
		a.flag(influence.PropagatorIDs(), types.FlagTopPropagator)
		a.flag(influence.ConvergenceRiskIDs(), types.FlagConvergencePoint)
		a.flag(influence.BottleneckIDs(), types.FlagBottleneck)
		for _, id := range influence.HighPriorityIDs() {
			a.priority[id] = true
		}
	}

	return a
}

func (a *Analyzer) flag(ids []types.RiskID, f types.InfluenceFlag) {
	for _, id := range ids {
		a.flags[id] = append(a.flags[id], f)
	}
}

func (a *Analyzer) flagsOf(id types.RiskID) []types.InfluenceFlag {
	if f, ok := a.flags[id]; ok {
		return slices.Clone(f)
	}
	return []types.InfluenceFlag{}
}

type treatment struct {
	implemented int
	proposed    int
	score       int
	status      types.CoverageStatus
}

func treat(links []model.MitigationLink) treatment {
	var t treatment
	for _, l := range links {
		t.score += l.Effectiveness.Score()
		switch {
		case l.Status.IsImplemented():
			t.implemented++
		case l.Status.IsPending():
			t.proposed++
		}
	}

	switch {
	case len(links) == 0:
		t.status = types.CoverageUnmitigated
	case t.implemented == 0:
		t.status = types.CoverageProposedOnly
	case t.implemented >= wellCoveredImplemented || t.score >= wellCoveredScore:
		t.status = types.CoverageWellCovered
	default:
		t.status = types.CoveragePartiallyCovered
	}
	return t
}

// implementedScore sums the effectiveness of implemented mitigations only
func implementedScore(links []model.MitigationLink) int {
	var score int
	for _, l := range links {
		if l.Status.IsImplemented() {
			score += l.Effectiveness.Score()
		}
	}
	return score
}

func byExposure[T any](exposure func(T) float64) func(a, b T) int {
	return func(a, b T) int {
		return cmp.Compare(exposure(b), exposure(a))
	}
}

func summaryExposure(s model.RiskMitigationSummary) float64 { return s.Exposure }

func gapExposure(g model.GapRisk) float64 { return g.Exposure }
