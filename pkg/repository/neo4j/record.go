package neo4j

import (
	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/domain/types"
)

func str(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// num accepts both integer and float properties
func num(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func numPtr(m map[string]any, key string) *float64 {
	if v, ok := num(m, key); ok {
		return &v
	}
	return nil
}

func strs(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v != "" {
			return []string{v}
		}
	}
	return nil
}

func riskFromRecord(m map[string]any) model.Risk {
	return model.Risk{
		ID:                     types.RiskID(str(m, "id")),
		Name:                   str(m, "name"),
		Level:                  types.ParseRiskLevel(str(m, "level")),
		Categories:             strs(m, "categories"),
		Status:                 types.ParseRiskStatus(str(m, "status")),
		Origin:                 types.ParseRiskOrigin(str(m, "origin")),
		Probability:            numPtr(m, "probability"),
		Impact:                 numPtr(m, "impact"),
		Owner:                  str(m, "owner"),
		Description:            str(m, "description"),
		ActivationCondition:    str(m, "activation_condition"),
		ActivationDecisionDate: str(m, "activation_decision_date"),
	}
}

func tpoFromRecord(m map[string]any) model.TPO {
	return model.TPO{
		ID:          types.TPOID(str(m, "id")),
		Reference:   str(m, "reference"),
		Name:        str(m, "name"),
		Cluster:     types.ParseTPOCluster(str(m, "cluster")),
		Description: str(m, "description"),
	}
}

func mitigationFromRecord(m map[string]any) model.Mitigation {
	return model.Mitigation{
		ID:           types.MitigationID(str(m, "id")),
		Name:         str(m, "name"),
		Type:         types.ParseMitigationType(str(m, "type")),
		Status:       types.ParseMitigationStatus(str(m, "status")),
		Owner:        str(m, "owner"),
		SourceEntity: str(m, "source_entity"),
		Description:  str(m, "description"),
	}
}

func influenceFromRecord(m map[string]any) model.Influence {
	confidence, _ := num(m, "confidence")
	return model.Influence{
		ID:          str(m, "id"),
		SourceID:    types.RiskID(str(m, "source_id")),
		TargetID:    types.RiskID(str(m, "target_id")),
		Strength:    types.ParseInfluenceStrength(str(m, "strength")),
		Confidence:  confidence,
		Description: str(m, "description"),
	}
}

func tpoImpactFromRecord(m map[string]any) model.TPOImpact {
	return model.TPOImpact{
		ID:          str(m, "id"),
		RiskID:      types.RiskID(str(m, "risk_id")),
		TPOID:       types.TPOID(str(m, "tpo_id")),
		ImpactLevel: types.ParseImpactLevel(str(m, "impact_level")),
		Description: str(m, "description"),
	}
}

func mitigatesFromRecord(m map[string]any) model.MitigatesRelationship {
	return model.MitigatesRelationship{
		ID:            str(m, "id"),
		MitigationID:  types.MitigationID(str(m, "mitigation_id")),
		RiskID:        types.RiskID(str(m, "risk_id")),
		Effectiveness: types.ParseEffectiveness(str(m, "effectiveness")),
		Description:   str(m, "description"),
	}
}

func riskRows(risks []model.Risk) []any {
	rows := make([]any, 0, len(risks))
	for i, r := range risks {
		row := map[string]any{
			"seq":                      i,
			"id":                       string(r.ID),
			"name":                     r.Name,
			"level":                    string(r.Level),
			"categories":               r.Categories,
			"status":                   string(r.Status),
			"origin":                   string(r.Origin),
			"owner":                    r.Owner,
			"description":              r.Description,
			"activation_condition":     r.ActivationCondition,
			"activation_decision_date": r.ActivationDecisionDate,
		}
		if r.Probability != nil {
			row["probability"] = *r.Probability
		}
		if r.Impact != nil {
			row["impact"] = *r.Impact
		}
		if exposure, ok := r.Exposure(); ok {
			row["exposure"] = exposure
		}
		rows = append(rows, row)
	}
	return rows
}

func tpoRows(tpos []model.TPO) []any {
	rows := make([]any, 0, len(tpos))
	for i, t := range tpos {
		rows = append(rows, map[string]any{
			"seq":         i,
			"id":          string(t.ID),
			"reference":   t.Reference,
			"name":        t.Name,
			"cluster":     string(t.Cluster),
			"description": t.Description,
		})
	}
	return rows
}

func mitigationRows(mitigations []model.Mitigation) []any {
	rows := make([]any, 0, len(mitigations))
	for i, m := range mitigations {
		rows = append(rows, map[string]any{
			"seq":           i,
			"id":            string(m.ID),
			"name":          m.Name,
			"type":          string(m.Type),
			"status":        string(m.Status),
			"owner":         m.Owner,
			"source_entity": m.SourceEntity,
			"description":   m.Description,
		})
	}
	return rows
}

func influenceRows(influences []model.Influence, risks []model.Risk) []any {
	levels := make(map[types.RiskID]types.RiskLevel, len(risks))
	for _, r := range risks {
		levels[r.ID] = r.Level
	}

	rows := make([]any, 0, len(influences))
	for i, inf := range influences {
		rows = append(rows, map[string]any{
			"source_id": string(inf.SourceID),
			"target_id": string(inf.TargetID),
			"props": map[string]any{
				"seq":            i,
				"id":             inf.ID,
				"strength":       string(inf.Strength),
				"confidence":     inf.Confidence,
				"description":    inf.Description,
				"influence_type": string(types.InfluenceCategoryOf(levels[inf.SourceID], levels[inf.TargetID])),
			},
		})
	}
	return rows
}

func tpoImpactRows(impacts []model.TPOImpact) []any {
	rows := make([]any, 0, len(impacts))
	for i, imp := range impacts {
		rows = append(rows, map[string]any{
			"risk_id": string(imp.RiskID),
			"tpo_id":  string(imp.TPOID),
			"props": map[string]any{
				"seq":          i,
				"id":           imp.ID,
				"impact_level": string(imp.ImpactLevel),
				"description":  imp.Description,
			},
		})
	}
	return rows
}

func mitigatesRows(rels []model.MitigatesRelationship) []any {
	rows := make([]any, 0, len(rels))
	for i, rel := range rels {
		rows = append(rows, map[string]any{
			"mitigation_id": string(rel.MitigationID),
			"risk_id":       string(rel.RiskID),
			"props": map[string]any{
				"seq":           i,
				"id":            rel.ID,
				"effectiveness": string(rel.Effectiveness),
				"description":   rel.Description,
			},
		})
	}
	return rows
}
