package firestore

import (
	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/domain/types"
)

type riskDocument struct {
	SnapshotID             string   `firestore:"snapshot_id"`
	Seq                    int      `firestore:"seq"`
	ID                     string   `firestore:"id"`
	Name                   string   `firestore:"name"`
	Level                  string   `firestore:"level"`
	Categories             []string `firestore:"categories"`
	Status                 string   `firestore:"status"`
	Origin                 string   `firestore:"origin"`
	Probability            *float64 `firestore:"probability"`
	Impact                 *float64 `firestore:"impact"`
	Owner                  string   `firestore:"owner"`
	Description            string   `firestore:"description"`
	ActivationCondition    string   `firestore:"activation_condition"`
	ActivationDecisionDate string   `firestore:"activation_decision_date"`
}

func newRiskDocument(snapshotID string, seq int, r model.Risk) *riskDocument {
	return &riskDocument{
		SnapshotID:             snapshotID,
		Seq:                    seq,
		ID:                     string(r.ID),
		Name:                   r.Name,
		Level:                  string(r.Level),
		Categories:             r.Categories,
		Status:                 string(r.Status),
		Origin:                 string(r.Origin),
		Probability:            r.Probability,
		Impact:                 r.Impact,
		Owner:                  r.Owner,
		Description:            r.Description,
		ActivationCondition:    r.ActivationCondition,
		ActivationDecisionDate: r.ActivationDecisionDate,
	}
}

func (d *riskDocument) toModel() model.Risk {
	return model.Risk{
		ID:                     types.RiskID(d.ID),
		Name:                   d.Name,
		Level:                  types.ParseRiskLevel(d.Level),
		Categories:             d.Categories,
		Status:                 types.ParseRiskStatus(d.Status),
		Origin:                 types.ParseRiskOrigin(d.Origin),
		Probability:            d.Probability,
		Impact:                 d.Impact,
		Owner:                  d.Owner,
		Description:            d.Description,
		ActivationCondition:    d.ActivationCondition,
		ActivationDecisionDate: d.ActivationDecisionDate,
	}
}

type tpoDocument struct {
	SnapshotID  string `firestore:"snapshot_id"`
	Seq         int    `firestore:"seq"`
	ID          string `firestore:"id"`
	Reference   string `firestore:"reference"`
	Name        string `firestore:"name"`
	Cluster     string `firestore:"cluster"`
	Description string `firestore:"description"`
}

func newTPODocument(snapshotID string, seq int, t model.TPO) *tpoDocument {
	return &tpoDocument{
		SnapshotID:  snapshotID,
		Seq:         seq,
		ID:          string(t.ID),
		Reference:   t.Reference,
		Name:        t.Name,
		Cluster:     string(t.Cluster),
		Description: t.Description,
	}
}

func (d *tpoDocument) toModel() model.TPO {
	return model.TPO{
		ID:          types.TPOID(d.ID),
		Reference:   d.Reference,
		Name:        d.Name,
		Cluster:     types.ParseTPOCluster(d.Cluster),
		Description: d.Description,
	}
}

type mitigationDocument struct {
	SnapshotID   string `firestore:"snapshot_id"`
	Seq          int    `firestore:"seq"`
	ID           string `firestore:"id"`
	Name         string `firestore:"name"`
	Type         string `firestore:"type"`
	Status       string `firestore:"status"`
	Owner        string `firestore:"owner"`
	SourceEntity string `firestore:"source_entity"`
	Description  string `firestore:"description"`
}

func newMitigationDocument(snapshotID string, seq int, m model.Mitigation) *mitigationDocument {
	return &mitigationDocument{
		SnapshotID:   snapshotID,
		Seq:          seq,
		ID:           string(m.ID),
		Name:         m.Name,
		Type:         string(m.Type),
		Status:       string(m.Status),
		Owner:        m.Owner,
		SourceEntity: m.SourceEntity,
		Description:  m.Description,
	}
}

func (d *mitigationDocument) toModel() model.Mitigation {
	return model.Mitigation{
		ID:           types.MitigationID(d.ID),
		Name:         d.Name,
		Type:         types.ParseMitigationType(d.Type),
		Status:       types.ParseMitigationStatus(d.Status),
		Owner:        d.Owner,
		SourceEntity: d.SourceEntity,
		Description:  d.Description,
	}
}

type influenceDocument struct {
	SnapshotID  string  `firestore:"snapshot_id"`
	Seq         int     `firestore:"seq"`
	ID          string  `firestore:"id"`
	SourceID    string  `firestore:"source_id"`
	TargetID    string  `firestore:"target_id"`
	Strength    string  `firestore:"strength"`
	Confidence  float64 `firestore:"confidence"`
	Description string  `firestore:"description"`
}

func newInfluenceDocument(snapshotID string, seq int, inf model.Influence) *influenceDocument {
	return &influenceDocument{
		SnapshotID:  snapshotID,
		Seq:         seq,
		ID:          inf.ID,
		SourceID:    string(inf.SourceID),
		TargetID:    string(inf.TargetID),
		Strength:    string(inf.Strength),
		Confidence:  inf.Confidence,
		Description: inf.Description,
	}
}

func (d *influenceDocument) toModel() model.Influence {
	return model.Influence{
		ID:          d.ID,
		SourceID:    types.RiskID(d.SourceID),
		TargetID:    types.RiskID(d.TargetID),
		Strength:    types.ParseInfluenceStrength(d.Strength),
		Confidence:  d.Confidence,
		Description: d.Description,
	}
}

type tpoImpactDocument struct {
	SnapshotID  string `firestore:"snapshot_id"`
	Seq         int    `firestore:"seq"`
	ID          string `firestore:"id"`
	RiskID      string `firestore:"risk_id"`
	TPOID       string `firestore:"tpo_id"`
	ImpactLevel string `firestore:"impact_level"`
	Description string `firestore:"description"`
}

func newTPOImpactDocument(snapshotID string, seq int, imp model.TPOImpact) *tpoImpactDocument {
	return &tpoImpactDocument{
		SnapshotID:  snapshotID,
		Seq:         seq,
		ID:          imp.ID,
		RiskID:      string(imp.RiskID),
		TPOID:       string(imp.TPOID),
		ImpactLevel: string(imp.ImpactLevel),
		Description: imp.Description,
	}
}

func (d *tpoImpactDocument) toModel() model.TPOImpact {
	return model.TPOImpact{
		ID:          d.ID,
		RiskID:      types.RiskID(d.RiskID),
		TPOID:       types.TPOID(d.TPOID),
		ImpactLevel: types.ParseImpactLevel(d.ImpactLevel),
		Description: d.Description,
	}
}

type mitigatesDocument struct {
	SnapshotID    string `firestore:"snapshot_id"`
	Seq           int    `firestore:"seq"`
	ID            string `firestore:"id"`
	MitigationID  string `firestore:"mitigation_id"`
	RiskID        string `firestore:"risk_id"`
	Effectiveness string `firestore:"effectiveness"`
	Description   string `firestore:"description"`
}

func newMitigatesDocument(snapshotID string, seq int, rel model.MitigatesRelationship) *mitigatesDocument {
	return &mitigatesDocument{
		SnapshotID:    snapshotID,
		Seq:           seq,
		ID:            rel.ID,
		MitigationID:  string(rel.MitigationID),
		RiskID:        string(rel.RiskID),
		Effectiveness: string(rel.Effectiveness),
		Description:   rel.Description,
	}
}

func (d *mitigatesDocument) toModel() model.MitigatesRelationship {
	return model.MitigatesRelationship{
		ID:            d.ID,
		MitigationID:  types.MitigationID(d.MitigationID),
		RiskID:        types.RiskID(d.RiskID),
		Effectiveness: types.ParseEffectiveness(d.Effectiveness),
		Description:   d.Description,
	}
}
