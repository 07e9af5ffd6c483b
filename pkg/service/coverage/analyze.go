package coverage

import (
	"slices"

	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/domain/types"
)

// Analyze classifies every risk of the snapshot by its treatment
func (a *Analyzer) Analyze() *model.CoverageResult {
	risks := a.snapshot.Risks
	result := &model.CoverageResult{
		Stats: model.CoverageStats{
			TotalRisks:       len(risks),
			TotalMitigations: len(a.snapshot.Mitigations),
			TotalLinks:       a.linkCount,
		},
		RiskSummaries:           make([]model.RiskMitigationSummary, 0, len(risks)),
		UnmitigatedRisks:        []model.RiskMitigationSummary{},
		ProposedOnlyRisks:       []model.RiskMitigationSummary{},
		PartiallyCoveredRisks:   []model.RiskMitigationSummary{},
		WellCoveredRisks:        []model.RiskMitigationSummary{},
		HighPriorityUnmitigated: []model.RiskMitigationSummary{},
		CategoryCoverage:        a.categoryCoverage(),
	}

	for i := range risks {
		s := a.summary(i)
		result.RiskSummaries = append(result.RiskSummaries, s)

		switch s.CoverageStatus {
		case types.CoverageUnmitigated:
			result.UnmitigatedRisks = append(result.UnmitigatedRisks, s)
			if a.priority[s.ID] {
				result.HighPriorityUnmitigated = append(result.HighPriorityUnmitigated, s)
			}
		case types.CoverageProposedOnly:
			result.ProposedOnlyRisks = append(result.ProposedOnlyRisks, s)
		case types.CoveragePartiallyCovered:
			result.PartiallyCoveredRisks = append(result.PartiallyCoveredRisks, s)
		case types.CoverageWellCovered:
			result.WellCoveredRisks = append(result.WellCoveredRisks, s)
		}
	}

	result.Stats.UnmitigatedRisks = len(result.UnmitigatedRisks)
	result.Stats.MitigatedRisks = len(risks) - result.Stats.UnmitigatedRisks
	if len(risks) > 0 {
		result.Stats.CoveragePercentage = float64(result.Stats.MitigatedRisks) / float64(len(risks)) * 100
	}

	for _, list := range [][]model.RiskMitigationSummary{
		result.UnmitigatedRisks,
		result.ProposedOnlyRisks,
		result.PartiallyCoveredRisks,
		result.WellCoveredRisks,
		result.HighPriorityUnmitigated,
	} {
		slices.SortStableFunc(list, byExposure(summaryExposure))
	}

	result.EffectivenessDistribution = a.effectivenessDistribution()
	return result
}

func (a *Analyzer) summary(i int) model.RiskMitigationSummary {
	r := &a.snapshot.Risks[i]
	links := a.links[i]
	t := treat(links)

	return model.RiskMitigationSummary{
		ID:               r.ID,
		Name:             r.Name,
		Level:            r.Level,
		Origin:           r.Origin,
		Exposure:         a.exposures[i],
		Categories:       categoriesOf(r),
		MitigationCount:  len(links),
		ImplementedCount: t.implemented,
		ProposedCount:    t.proposed,
		MitigationScore:  t.score,
		Mitigations:      linksOf(links),
		CoverageStatus:   t.status,
		InfluenceFlags:   a.flagsOf(r.ID),
	}
}

// categoryCoverage lists categories in order of first appearance
func (a *Analyzer) categoryCoverage() []model.CategoryCoverage {
	results := []model.CategoryCoverage{}
	index := make(map[string]int)

	for i, r := range a.snapshot.Risks {
		mitigated := len(a.links[i]) > 0
		for _, c := range r.Categories {
			j, ok := index[c]
			if !ok {
				j = len(results)
				index[c] = j
				results = append(results, model.CategoryCoverage{Category: c})
			}
			results[j].Total++
			if mitigated {
				results[j].Mitigated++
			}
		}
	}

	for i := range results {
		c := &results[i]
		c.Unmitigated = c.Total - c.Mitigated
		c.CoveragePercentage = float64(c.Mitigated) / float64(c.Total) * 100
	}
	return results
}

// effectivenessDistribution counts links per effectiveness, strongest first
func (a *Analyzer) effectivenessDistribution() []model.EffectivenessCount {
	counts := make(map[types.Effectiveness]int)
	for _, rel := range a.snapshot.Mitigates {
		counts[rel.Effectiveness]++
	}

	results := make([]model.EffectivenessCount, 0, len(types.Effectivenesses))
	for i := len(types.Effectivenesses) - 1; i >= 0; i-- {
		e := types.Effectivenesses[i]
		results = append(results, model.EffectivenessCount{Effectiveness: e, Count: counts[e]})
	}
	return results
}

func categoriesOf(r *model.Risk) []string {
	if r.Categories == nil {
		return []string{}
	}
	return slices.Clone(r.Categories)
}

func linksOf(links []model.MitigationLink) []model.MitigationLink {
	if links == nil {
		return []model.MitigationLink{}
	}
	return slices.Clone(links)
}
