package model

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskmap/pkg/domain/types"
)

// Snapshot is a consistent copy of the whole graph. Analyzers only read it.
type Snapshot struct {
	Risks       []Risk                  `json:"risks"`
	TPOs        []TPO                   `json:"tpos"`
	Mitigations []Mitigation            `json:"mitigations"`
	Influences  []Influence             `json:"influences"`
	TPOImpacts  []TPOImpact             `json:"tpo_impacts"`
	Mitigates   []MitigatesRelationship `json:"mitigates"`
}

// IntegrityIssue describes one problem found by Snapshot.Check
type IntegrityIssue struct {
	Entity  string `json:"entity"`
	ID      string `json:"id"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (x IntegrityIssue) String() string {
	return fmt.Sprintf("%s %q: %s", x.Entity, x.ID, x.Message)
}

// Check reports referential and value problems of the snapshot. Analyzers
// tolerate every issue reported here; the list exists for operators.
func (s *Snapshot) Check() []IntegrityIssue {
	var issues []IntegrityIssue
	add := func(entity, id string, err error) {
		issues = append(issues, IntegrityIssue{Entity: entity, ID: id, Message: err.Error(), Err: err})
	}

	risks := make(map[types.RiskID]struct{}, len(s.Risks))
	for _, r := range s.Risks {
		id := string(r.ID)
		if r.ID == "" {
			add("risk", r.Name, goerr.Wrap(ErrMissingRequired, "risk has no id", goerr.V(FieldKey, "id")))
			continue
		}
		if _, ok := risks[r.ID]; ok {
			add("risk", id, goerr.Wrap(ErrDuplicateID, "duplicate risk id"))
		}
		risks[r.ID] = struct{}{}

		if len(r.Categories) == 0 {
			add("risk", id, goerr.Wrap(ErrMissingRequired, "risk has no category", goerr.V(FieldKey, "categories")))
		}
		if err := r.Level.Validate(); err != nil {
			add("risk", id, err)
		}
		if err := r.Status.Validate(); err != nil {
			add("risk", id, err)
		}
		if err := r.Origin.Validate(); err != nil {
			add("risk", id, err)
		}
		for _, f := range []struct {
			name string
			v    *float64
		}{{"probability", r.Probability}, {"impact", r.Impact}} {
			if f.v != nil && (*f.v < 0 || *f.v > 10) {
				add("risk", id, goerr.Wrap(ErrOutOfRange, f.name+" must be within 0 and 10",
					goerr.V(FieldKey, f.name), goerr.V(ValueKey, *f.v)))
			}
		}
	}

	tpos := make(map[types.TPOID]struct{}, len(s.TPOs))
	refs := make(map[string]types.TPOID, len(s.TPOs))
	for _, t := range s.TPOs {
		id := string(t.ID)
		if _, ok := tpos[t.ID]; ok {
			add("tpo", id, goerr.Wrap(ErrDuplicateID, "duplicate tpo id"))
		}
		tpos[t.ID] = struct{}{}
		if prev, ok := refs[t.Reference]; ok {
			add("tpo", id, goerr.Wrap(ErrDuplicateID, "tpo reference already used",
				goerr.V(FieldKey, "reference"), goerr.V(ValueKey, t.Reference), goerr.V("other_tpo_id", string(prev))))
		}
		refs[t.Reference] = t.ID
		if err := t.Cluster.Validate(); err != nil {
			add("tpo", id, err)
		}
	}

	mitigations := make(map[types.MitigationID]struct{}, len(s.Mitigations))
	for _, m := range s.Mitigations {
		id := string(m.ID)
		if _, ok := mitigations[m.ID]; ok {
			add("mitigation", id, goerr.Wrap(ErrDuplicateID, "duplicate mitigation id"))
		}
		mitigations[m.ID] = struct{}{}
		if err := m.Type.Validate(); err != nil {
			add("mitigation", id, err)
		}
		if err := m.Status.Validate(); err != nil {
			add("mitigation", id, err)
		}
	}

	for _, inf := range s.Influences {
		if _, ok := risks[inf.SourceID]; !ok {
			add("influence", inf.ID, danglingRef("source_id", string(inf.SourceID)))
		}
		if _, ok := risks[inf.TargetID]; !ok {
			add("influence", inf.ID, danglingRef("target_id", string(inf.TargetID)))
		}
		if err := inf.Strength.Validate(); err != nil {
			add("influence", inf.ID, err)
		}
		if inf.Confidence < 0 || inf.Confidence > 1 {
			add("influence", inf.ID, goerr.Wrap(ErrOutOfRange, "confidence must be within 0 and 1",
				goerr.V(FieldKey, "confidence"), goerr.V(ValueKey, inf.Confidence)))
		}
	}

	for _, imp := range s.TPOImpacts {
		if _, ok := risks[imp.RiskID]; !ok {
			add("tpo_impact", imp.ID, danglingRef("risk_id", string(imp.RiskID)))
		}
		if _, ok := tpos[imp.TPOID]; !ok {
			add("tpo_impact", imp.ID, danglingRef("tpo_id", string(imp.TPOID)))
		}
		if err := imp.ImpactLevel.Validate(); err != nil {
			add("tpo_impact", imp.ID, err)
		}
	}

	for _, rel := range s.Mitigates {
		if _, ok := mitigations[rel.MitigationID]; !ok {
			add("mitigates", rel.ID, danglingRef("mitigation_id", string(rel.MitigationID)))
		}
		if _, ok := risks[rel.RiskID]; !ok {
			add("mitigates", rel.ID, danglingRef("risk_id", string(rel.RiskID)))
		}
		if err := rel.Effectiveness.Validate(); err != nil {
			add("mitigates", rel.ID, err)
		}
	}

	return issues
}

func danglingRef(field, value string) error {
	return goerr.Wrap(ErrDanglingReference, field+" does not exist",
		goerr.V(FieldKey, field), goerr.V(ValueKey, value))
}
