package coverage

import (
	"slices"

	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/domain/types"
)

// Gaps finds the weak spots of the mitigation strategy. A risk is critical
// when its exposure reaches HighExposureRatio times the average exposure of
// the risks that have exposure data.
func (a *Analyzer) Gaps() *model.CoverageGaps {
	avg := a.averageExposure()
	threshold := avg * HighExposureRatio

	gaps := &model.CoverageGaps{
		AverageExposure:          avg,
		ExposureThreshold:        threshold,
		CriticalUnmitigated:      []model.GapRisk{},
		HighPriorityUnmitigated:  []model.GapRisk{},
		ProposedOnlyHighExposure: []model.GapRisk{},
		BusinessGaps:             []model.GapRisk{},
		CategoryCoverage:         a.categoryCoverage(),
	}

	for i := range a.snapshot.Risks {
		r := &a.snapshot.Risks[i]
		links := a.links[i]
		exposure := a.exposures[i]
		t := treat(links)

		if t.status == types.CoverageUnmitigated {
			if a.priority[r.ID] {
				gaps.HighPriorityUnmitigated = append(gaps.HighPriorityUnmitigated, a.gapRisk(i))
			}
			if exposure >= threshold {
				gaps.CriticalUnmitigated = append(gaps.CriticalUnmitigated, a.gapRisk(i))
			}
		}

		if t.status == types.CoverageProposedOnly && exposure >= threshold {
			g := a.gapRisk(i)
			g.ProposedMitigations = make([]string, 0, len(links))
			for _, l := range links {
				g.ProposedMitigations = append(g.ProposedMitigations, l.MitigationName)
			}
			gaps.ProposedOnlyHighExposure = append(gaps.ProposedOnlyHighExposure, g)
		}

		if r.Level.IsBusiness() {
			if score := implementedScore(links); score < weakBusinessScore {
				g := a.gapRisk(i)
				if len(links) > 0 {
					g.ImplementedEffectiveness = &score
				}
				gaps.BusinessGaps = append(gaps.BusinessGaps, g)
			}
		}
	}

	for _, list := range [][]model.GapRisk{
		gaps.CriticalUnmitigated,
		gaps.HighPriorityUnmitigated,
		gaps.ProposedOnlyHighExposure,
		gaps.BusinessGaps,
	} {
		slices.SortStableFunc(list, byExposure(gapExposure))
	}
	return gaps
}

func (a *Analyzer) averageExposure() float64 {
	var total float64
	var n int
	for _, x := range a.exposures {
		if x > 0 {
			total += x
			n++
		}
	}
	if n == 0 {
		return DefaultAverageExposure
	}
	return total / float64(n)
}

func (a *Analyzer) gapRisk(i int) model.GapRisk {
	r := &a.snapshot.Risks[i]
	return model.GapRisk{
		ID:             r.ID,
		Name:           r.Name,
		Level:          r.Level,
		Exposure:       a.exposures[i],
		Categories:     categoriesOf(r),
		IsHighPriority: a.priority[r.ID],
		InfluenceFlags: a.flagsOf(r.ID),
	}
}
