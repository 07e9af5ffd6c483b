package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskmap/pkg/domain/interfaces"
	"github.com/secmon-lab/riskmap/pkg/domain/model"
)

// ErrClosed is returned by operations on a closed repository
var ErrClosed = goerr.New("repository is closed")

// Memory keeps the whole graph in process. Records are returned in the
// order they were stored.
type Memory struct {
	mu       sync.RWMutex
	snapshot model.Snapshot
	closed   bool
}

var _ interfaces.GraphRepository = &Memory{}

func New() *Memory {
	return &Memory{}
}

// NewWithSnapshot creates a repository preloaded with a copy of snapshot
func NewWithSnapshot(snapshot *model.Snapshot) *Memory {
	m := New()
	if snapshot != nil {
		m.snapshot = cloneSnapshot(snapshot)
	}
	return m
}

func (m *Memory) read(fn func(s *model.Snapshot)) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return goerr.Wrap(ErrClosed, "memory repository")
	}
	fn(&m.snapshot)
	return nil
}

func (m *Memory) ListRisks(ctx context.Context) ([]model.Risk, error) {
	var out []model.Risk
	err := m.read(func(s *model.Snapshot) {
		out = make([]model.Risk, 0, len(s.Risks))
		for _, r := range s.Risks {
			out = append(out, cloneRisk(r))
		}
	})
	return out, err
}

func (m *Memory) ListTPOs(ctx context.Context) ([]model.TPO, error) {
	var out []model.TPO
	err := m.read(func(s *model.Snapshot) { out = slices.Clone(s.TPOs) })
	return out, err
}

func (m *Memory) ListMitigations(ctx context.Context) ([]model.Mitigation, error) {
	var out []model.Mitigation
	err := m.read(func(s *model.Snapshot) { out = slices.Clone(s.Mitigations) })
	return out, err
}

func (m *Memory) ListInfluences(ctx context.Context) ([]model.Influence, error) {
	var out []model.Influence
	err := m.read(func(s *model.Snapshot) { out = slices.Clone(s.Influences) })
	return out, err
}

func (m *Memory) ListTPOImpacts(ctx context.Context) ([]model.TPOImpact, error) {
	var out []model.TPOImpact
	err := m.read(func(s *model.Snapshot) { out = slices.Clone(s.TPOImpacts) })
	return out, err
}

func (m *Memory) ListMitigates(ctx context.Context) ([]model.MitigatesRelationship, error) {
	var out []model.MitigatesRelationship
	err := m.read(func(s *model.Snapshot) { out = slices.Clone(s.Mitigates) })
	return out, err
}

func (m *Memory) ReplaceSnapshot(ctx context.Context, snapshot *model.Snapshot) error {
	if snapshot == nil {
		return goerr.New("snapshot is nil")
	}
	copied := cloneSnapshot(snapshot)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return goerr.Wrap(ErrClosed, "memory repository")
	}
	m.snapshot = copied
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func cloneRisk(r model.Risk) model.Risk {
	r.Categories = slices.Clone(r.Categories)
	if r.Probability != nil {
		v := *r.Probability
		r.Probability = &v
	}
	if r.Impact != nil {
		v := *r.Impact
		r.Impact = &v
	}
	return r
}

func cloneSnapshot(s *model.Snapshot) model.Snapshot {
	risks := make([]model.Risk, 0, len(s.Risks))
	for _, r := range s.Risks {
		risks = append(risks, cloneRisk(r))
	}
	return model.Snapshot{
		Risks:       risks,
		TPOs:        slices.Clone(s.TPOs),
		Mitigations: slices.Clone(s.Mitigations),
		Influences:  slices.Clone(s.Influences),
		TPOImpacts:  slices.Clone(s.TPOImpacts),
		Mitigates:   slices.Clone(s.Mitigates),
	}
}
