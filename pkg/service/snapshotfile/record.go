package snapshotfile

import (
	"github.com/google/uuid"
	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/domain/types"
)

// File is the on-disk layout of a snapshot. TOML files use arrays of tables
// ([[risk]], [[tpo]], ...), YAML and JSON use the plural keys.
type File struct {
	Risks       []RiskRecord       `toml:"risk" yaml:"risks" json:"risks" validate:"dive"`
	TPOs        []TPORecord        `toml:"tpo" yaml:"tpos" json:"tpos" validate:"dive"`
	Mitigations []MitigationRecord `toml:"mitigation" yaml:"mitigations" json:"mitigations" validate:"dive"`
	Influences  []InfluenceRecord  `toml:"influence" yaml:"influences" json:"influences" validate:"dive"`
	TPOImpacts  []TPOImpactRecord  `toml:"tpo_impact" yaml:"tpo_impacts" json:"tpo_impacts" validate:"dive"`
	Mitigates   []MitigatesRecord  `toml:"mitigates" yaml:"mitigates" json:"mitigates" validate:"dive"`
}

// RiskRecord is a risk as written in a snapshot file
type RiskRecord struct {
	ID                     string   `toml:"id" yaml:"id" json:"id" validate:"required"`
	Name                   string   `toml:"name" yaml:"name" json:"name" validate:"required"`
	Level                  string   `toml:"level" yaml:"level" json:"level" validate:"required"`
	Categories             []string `toml:"categories,omitempty" yaml:"categories,omitempty" json:"categories,omitempty"`
	Status                 string   `toml:"status,omitempty" yaml:"status,omitempty" json:"status,omitempty"`
	Origin                 string   `toml:"origin,omitempty" yaml:"origin,omitempty" json:"origin,omitempty"`
	Probability            *float64 `toml:"probability,omitempty" yaml:"probability,omitempty" json:"probability,omitempty" validate:"omitempty,gte=0,lte=10"`
	Impact                 *float64 `toml:"impact,omitempty" yaml:"impact,omitempty" json:"impact,omitempty" validate:"omitempty,gte=0,lte=10"`
	Owner                  string   `toml:"owner,omitempty" yaml:"owner,omitempty" json:"owner,omitempty"`
	Description            string   `toml:"description,omitempty" yaml:"description,omitempty" json:"description,omitempty"`
	ActivationCondition    string   `toml:"activation_condition,omitempty" yaml:"activation_condition,omitempty" json:"activation_condition,omitempty"`
	ActivationDecisionDate string   `toml:"activation_decision_date,omitempty" yaml:"activation_decision_date,omitempty" json:"activation_decision_date,omitempty"`
}

// TPORecord is a top program objective as written in a snapshot file
type TPORecord struct {
	ID          string `toml:"id" yaml:"id" json:"id" validate:"required"`
	Reference   string `toml:"reference" yaml:"reference" json:"reference" validate:"required"`
	Name        string `toml:"name" yaml:"name" json:"name" validate:"required"`
	Cluster     string `toml:"cluster,omitempty" yaml:"cluster,omitempty" json:"cluster,omitempty"`
	Description string `toml:"description,omitempty" yaml:"description,omitempty" json:"description,omitempty"`
}

// MitigationRecord is a mitigation as written in a snapshot file
type MitigationRecord struct {
	ID           string `toml:"id" yaml:"id" json:"id" validate:"required"`
	Name         string `toml:"name" yaml:"name" json:"name" validate:"required"`
	Type         string `toml:"type,omitempty" yaml:"type,omitempty" json:"type,omitempty"`
	Status       string `toml:"status,omitempty" yaml:"status,omitempty" json:"status,omitempty"`
	Owner        string `toml:"owner,omitempty" yaml:"owner,omitempty" json:"owner,omitempty"`
	SourceEntity string `toml:"source_entity,omitempty" yaml:"source_entity,omitempty" json:"source_entity,omitempty"`
	Description  string `toml:"description,omitempty" yaml:"description,omitempty" json:"description,omitempty"`
}

// InfluenceRecord is a risk to risk influence as written in a snapshot file
type InfluenceRecord struct {
	ID          string  `toml:"id,omitempty" yaml:"id,omitempty" json:"id,omitempty"`
	Source      string  `toml:"source_id" yaml:"source_id" json:"source_id" validate:"required"`
	Target      string  `toml:"target_id" yaml:"target_id" json:"target_id" validate:"required"`
	Strength    string  `toml:"strength,omitempty" yaml:"strength,omitempty" json:"strength,omitempty"`
	Confidence  float64 `toml:"confidence,omitempty" yaml:"confidence,omitempty" json:"confidence,omitempty" validate:"gte=0,lte=1"`
	Description string  `toml:"description,omitempty" yaml:"description,omitempty" json:"description,omitempty"`
}

// TPOImpactRecord is a risk to TPO impact as written in a snapshot file
type TPOImpactRecord struct {
	ID          string `toml:"id,omitempty" yaml:"id,omitempty" json:"id,omitempty"`
	Risk        string `toml:"risk_id" yaml:"risk_id" json:"risk_id" validate:"required"`
	TPO         string `toml:"tpo_id" yaml:"tpo_id" json:"tpo_id" validate:"required"`
	ImpactLevel string `toml:"impact_level,omitempty" yaml:"impact_level,omitempty" json:"impact_level,omitempty"`
	Description string `toml:"description,omitempty" yaml:"description,omitempty" json:"description,omitempty"`
}

// MitigatesRecord is a mitigation to risk link as written in a snapshot file
type MitigatesRecord struct {
	ID            string `toml:"id,omitempty" yaml:"id,omitempty" json:"id,omitempty"`
	Mitigation    string `toml:"mitigation_id" yaml:"mitigation_id" json:"mitigation_id" validate:"required"`
	Risk          string `toml:"risk_id" yaml:"risk_id" json:"risk_id" validate:"required"`
	Effectiveness string `toml:"effectiveness,omitempty" yaml:"effectiveness,omitempty" json:"effectiveness,omitempty"`
	Description   string `toml:"description,omitempty" yaml:"description,omitempty" json:"description,omitempty"`
}

// idOr returns id, or a new random id when it is empty
func idOr(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// ToSnapshot converts the file into a snapshot. Enumerations are decoded
// permissively and edges without an id get a random one.
func (f *File) ToSnapshot() *model.Snapshot {
	s := &model.Snapshot{
		Risks:       make([]model.Risk, 0, len(f.Risks)),
		TPOs:        make([]model.TPO, 0, len(f.TPOs)),
		Mitigations: make([]model.Mitigation, 0, len(f.Mitigations)),
		Influences:  make([]model.Influence, 0, len(f.Influences)),
		TPOImpacts:  make([]model.TPOImpact, 0, len(f.TPOImpacts)),
		Mitigates:   make([]model.MitigatesRelationship, 0, len(f.Mitigates)),
	}

	for _, r := range f.Risks {
		s.Risks = append(s.Risks, model.Risk{
			ID:                     types.RiskID(r.ID),
			Name:                   r.Name,
			Level:                  types.ParseRiskLevel(r.Level),
			Categories:             r.Categories,
			Status:                 types.ParseRiskStatus(r.Status),
			Origin:                 types.ParseRiskOrigin(r.Origin),
			Probability:            r.Probability,
			Impact:                 r.Impact,
			Owner:                  r.Owner,
			Description:            r.Description,
			ActivationCondition:    r.ActivationCondition,
			ActivationDecisionDate: r.ActivationDecisionDate,
		})
	}

	for _, t := range f.TPOs {
		s.TPOs = append(s.TPOs, model.TPO{
			ID:          types.TPOID(t.ID),
			Reference:   t.Reference,
			Name:        t.Name,
			Cluster:     types.ParseTPOCluster(t.Cluster),
			Description: t.Description,
		})
	}

	for _, m := range f.Mitigations {
		s.Mitigations = append(s.Mitigations, model.Mitigation{
			ID:           types.MitigationID(m.ID),
			Name:         m.Name,
			Type:         types.ParseMitigationType(m.Type),
			Status:       types.ParseMitigationStatus(m.Status),
			Owner:        m.Owner,
			SourceEntity: m.SourceEntity,
			Description:  m.Description,
		})
	}

	for _, i := range f.Influences {
		s.Influences = append(s.Influences, model.Influence{
			ID:          idOr(i.ID),
			SourceID:    types.RiskID(i.Source),
			TargetID:    types.RiskID(i.Target),
			Strength:    types.ParseInfluenceStrength(i.Strength),
			Confidence:  i.Confidence,
			Description: i.Description,
		})
	}

	for _, p := range f.TPOImpacts {
		s.TPOImpacts = append(s.TPOImpacts, model.TPOImpact{
			ID:          idOr(p.ID),
			RiskID:      types.RiskID(p.Risk),
			TPOID:       types.TPOID(p.TPO),
			ImpactLevel: types.ParseImpactLevel(p.ImpactLevel),
			Description: p.Description,
		})
	}

	for _, l := range f.Mitigates {
		s.Mitigates = append(s.Mitigates, model.MitigatesRelationship{
			ID:            idOr(l.ID),
			MitigationID:  types.MitigationID(l.Mitigation),
			RiskID:        types.RiskID(l.Risk),
			Effectiveness: types.ParseEffectiveness(l.Effectiveness),
			Description:   l.Description,
		})
	}

	return s
}

// FromSnapshot converts a snapshot into its file layout
func FromSnapshot(s *model.Snapshot) *File {
	f := &File{}

	for _, r := range s.Risks {
		f.Risks = append(f.Risks, RiskRecord{
			ID:                     r.ID.String(),
			Name:                   r.Name,
			Level:                  r.Level.String(),
			Categories:             r.Categories,
			Status:                 r.Status.String(),
			Origin:                 r.Origin.String(),
			Probability:            r.Probability,
			Impact:                 r.Impact,
			Owner:                  r.Owner,
			Description:            r.Description,
			ActivationCondition:    r.ActivationCondition,
			ActivationDecisionDate: r.ActivationDecisionDate,
		})
	}

	for _, t := range s.TPOs {
		f.TPOs = append(f.TPOs, TPORecord{
			ID:          t.ID.String(),
			Reference:   t.Reference,
			Name:        t.Name,
			Cluster:     t.Cluster.String(),
			Description: t.Description,
		})
	}

	for _, m := range s.Mitigations {
		f.Mitigations = append(f.Mitigations, MitigationRecord{
			ID:           m.ID.String(),
			Name:         m.Name,
			Type:         m.Type.String(),
			Status:       m.Status.String(),
			Owner:        m.Owner,
			SourceEntity: m.SourceEntity,
			Description:  m.Description,
		})
	}

	for _, i := range s.Influences {
		f.Influences = append(f.Influences, InfluenceRecord{
			ID:          i.ID,
			Source:      i.SourceID.String(),
			Target:      i.TargetID.String(),
			Strength:    i.Strength.String(),
			Confidence:  i.Confidence,
			Description: i.Description,
		})
	}

	for _, p := range s.TPOImpacts {
		f.TPOImpacts = append(f.TPOImpacts, TPOImpactRecord{
			ID:          p.ID,
			Risk:        p.RiskID.String(),
			TPO:         p.TPOID.String(),
			ImpactLevel: p.ImpactLevel.String(),
			Description: p.Description,
		})
	}

	for _, l := range s.Mitigates {
		f.Mitigates = append(f.Mitigates, MitigatesRecord{
			ID:            l.ID,
			Mitigation:    l.MitigationID.String(),
			Risk:          l.RiskID.String(),
			Effectiveness: l.Effectiveness.String(),
			Description:   l.Description,
		})
	}

	return f
}
