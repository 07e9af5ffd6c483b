// Package exposure computes per-risk and aggregate exposure from likelihood,
// impact, mitigations and upstream influences.
package exposure

import (
	"context"

	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/domain/types"
	"github.com/secmon-lab/riskmap/pkg/utils/logging"
)

// MaxBaseExposure is the largest possible probability × impact
const MaxBaseExposure = 100.0

type upstreamEdge struct {
	source   int
	strength types.InfluenceStrength
}

type calculator struct {
	risks    []model.Risk
	index    map[types.RiskID]int
	factors  []float64
	counts   []int
	upstream [][]upstreamEdge
}

// Calculate computes the exposure of every risk of the snapshot and the
// aggregate metrics. The limitation of a risk uses the mitigation factor of
// each upstream risk rather than its resolved final exposure, so the result
// does not depend on traversal order and is defined for cyclic graphs.
func Calculate(ctx context.Context, snapshot *model.Snapshot) *model.ExposureResult {
	c := newCalculator(ctx, snapshot)

	result := &model.ExposureResult{
		Risks: make([]model.RiskExposure, 0, len(c.risks)),
	}
	for i := range c.risks {
		result.Risks = append(result.Risks, c.riskExposure(i))
	}
	result.Aggregate = aggregate(result.Risks)
	return result
}

func newCalculator(ctx context.Context, snapshot *model.Snapshot) *calculator {
	logger := logging.From(ctx)

	c := &calculator{
		risks: snapshot.Risks,
		index: make(map[types.RiskID]int, len(snapshot.Risks)),
	}
	for i, r := range snapshot.Risks {
		if _, ok := c.index[r.ID]; ok {
			logger.Warn("duplicate risk id, keeping the first one", "risk_id", r.ID)
			continue
		}
		c.index[r.ID] = i
	}

	mitigations := make(map[types.MitigationID]struct{}, len(snapshot.Mitigations))
	for _, m := range snapshot.Mitigations {
		mitigations[m.ID] = struct{}{}
	}

	c.factors = make([]float64, len(c.risks))
	c.counts = make([]int, len(c.risks))
	for i := range c.factors {
		c.factors[i] = 1.0
	}
	for _, rel := range snapshot.Mitigates {
		i, ok := c.index[rel.RiskID]
		if !ok {
			logger.Warn("skipping mitigation link to unknown risk", "link_id", rel.ID, "risk_id", rel.RiskID)
			continue
		}
		if _, ok := mitigations[rel.MitigationID]; !ok {
			logger.Warn("skipping mitigation link from unknown mitigation", "link_id", rel.ID, "mitigation_id", rel.MitigationID)
			continue
		}
		c.factors[i] *= 1.0 - rel.Effectiveness.Reduction()
		c.counts[i]++
	}

	c.upstream = make([][]upstreamEdge, len(c.risks))
	for _, inf := range snapshot.Influences {
		src, okSrc := c.index[inf.SourceID]
		dst, okDst := c.index[inf.TargetID]
		if !okSrc || !okDst {
			logger.Warn("skipping influence with unknown endpoint",
				"influence_id", inf.ID,
				"source_id", inf.SourceID,
				"target_id", inf.TargetID)
			continue
		}
		c.upstream[dst] = append(c.upstream[dst], upstreamEdge{source: src, strength: inf.Strength})
	}

	return c
}

// limitation averages the residual of upstream risks that have usable data,
// weighted by influence strength
func (c *calculator) limitation(i int) float64 {
	var total float64
	var n int
	for _, e := range c.upstream[i] {
		if _, ok := c.risks[e.source].Exposure(); !ok {
			continue
		}
		total += c.factors[e.source] * e.strength.Weight()
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

func (c *calculator) riskExposure(i int) model.RiskExposure {
	r := &c.risks[i]
	mf := c.factors[i]
	lim := c.limitation(i)
	effective := mf + (1.0-mf)*lim

	x := model.RiskExposure{
		RiskID:                    r.ID,
		RiskName:                  r.Name,
		Level:                     r.Level,
		MitigationFactor:          mf,
		MitigationCount:           c.counts[i],
		InfluenceLimitation:       lim,
		EffectiveMitigationFactor: effective,
		UpstreamRiskCount:         len(c.upstream[i]),
	}

	base, ok := r.Exposure()
	if !ok {
		return x
	}
	x.HasData = true
	x.Probability = *r.Probability
	x.Impact = *r.Impact
	x.BaseExposure = base
	x.MitigatedExposure = base * mf
	x.FinalExposure = base * effective
	return x
}

func aggregate(risks []model.RiskExposure) model.ExposureAggregate {
	agg := model.ExposureAggregate{
		TotalRisks: len(risks),
	}

	var weighted, weightedMax float64
	found := false
	for _, x := range risks {
		if !x.HasData {
			continue
		}
		agg.RisksWithData++
		agg.TotalBaseExposure += x.BaseExposure
		agg.TotalFinalExposure += x.FinalExposure

		sq := x.Impact * x.Impact
		weighted += x.FinalExposure * sq
		weightedMax += MaxBaseExposure * sq

		if !found || x.FinalExposure > agg.MaxSingleExposure {
			found = true
			agg.MaxSingleExposure = x.FinalExposure
			agg.MaxExposureRiskID = x.RiskID
			agg.MaxExposureRiskName = x.RiskName
		}

		switch x.Level {
		case types.RiskLevelBusiness:
			agg.BusinessExposure += x.FinalExposure
		case types.RiskLevelOperational:
			agg.OperationalExposure += x.FinalExposure
		}

		if x.MitigationCount > 0 {
			agg.MitigatedRisksCount++
		} else {
			agg.UnmitigatedRisksCount++
		}
	}

	if agg.TotalBaseExposure > 0 {
		agg.ResidualRiskPercentage = clamp(agg.TotalFinalExposure/agg.TotalBaseExposure*100, 0, 100)
	}
	if weightedMax > 0 {
		agg.WeightedRiskScore = clamp(weighted/weightedMax*100, 0, 100)
	}
	agg.HealthStatus = types.HealthStatusOf(agg.WeightedRiskScore)
	return agg
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
