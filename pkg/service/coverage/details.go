package coverage

import (
	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/domain/types"
)

// RiskDetails returns the treatment of one risk together with what the
// influence analysis says about it
func (a *Analyzer) RiskDetails(id types.RiskID) *model.RiskDetails {
	i, ok := a.risks[id]
	if !ok {
		return &model.RiskDetails{Mitigations: []model.MitigationLink{}}
	}

	risk := a.snapshot.Risks[i]
	links := a.links[i]
	t := treat(links)

	return &model.RiskDetails{
		Found:                   true,
		Risk:                    &risk,
		Mitigations:             linksOf(links),
		MitigationCount:         len(links),
		ImplementedCount:        t.implemented,
		TotalEffectivenessScore: t.score,
		CoverageStatus:          t.status,
		Influence:               a.influenceInfo(id),
	}
}

func (a *Analyzer) influenceInfo(id types.RiskID) model.InfluenceInfo {
	var info model.InfluenceInfo
	if a.influence == nil {
		return info
	}

	for _, p := range a.influence.TopPropagators {
		if p.ID == id {
			info.IsTopPropagator = true
			info.PropagationScore = p.Score
			info.TPOsReached = p.TPOsReached
			break
		}
	}
	for _, c := range a.influence.ConvergencePoints {
		if c.NodeType == model.NodeTypeRisk && c.ID == id.String() {
			info.IsConvergencePoint = true
			info.ConvergenceScore = c.Score
			info.SourceCount = c.SourceCount
			break
		}
	}
	for _, b := range a.influence.Bottlenecks {
		if b.ID == id {
			info.IsBottleneck = true
			info.PathPercentage = b.Percentage
			break
		}
	}
	return info
}

// MitigationDetails returns the risks one mitigation addresses and whether
// any of them is a high priority risk
func (a *Analyzer) MitigationDetails(id types.MitigationID) *model.MitigationDetails {
	mi, ok := a.mitigations[id]
	if !ok {
		return &model.MitigationDetails{
			Risks:           []model.AddressedRisk{},
			PriorityImpacts: []model.PriorityImpact{},
		}
	}

	mitigation := a.snapshot.Mitigations[mi]
	details := &model.MitigationDetails{
		Found:           true,
		Mitigation:      &mitigation,
		Risks:           []model.AddressedRisk{},
		PriorityImpacts: []model.PriorityImpact{},
	}

	for _, ad := range a.addressed[id] {
		r := a.snapshot.Risks[ad.risk]
		details.Risks = append(details.Risks, model.AddressedRisk{Risk: r, Effectiveness: ad.effectiveness})
		details.TotalExposureCovered += a.exposures[ad.risk]

		if r.Level.IsBusiness() {
			details.BusinessCount++
		} else {
			details.OperationalCount++
		}

		if flags, ok := a.flags[r.ID]; ok {
			details.PriorityImpacts = append(details.PriorityImpacts, model.PriorityImpact{
				RiskID:   r.ID,
				RiskName: r.Name,
				Flags:    append([]types.InfluenceFlag(nil), flags...),
			})
		}
	}

	details.RiskCount = len(details.Risks)
	details.AddressesHighPriority = len(details.PriorityImpacts) > 0
	return details
}
