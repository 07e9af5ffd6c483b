package usecase

import (
	"time"

	"github.com/secmon-lab/riskmap/pkg/domain/interfaces"
)

type UseCases struct {
	repo     interfaces.GraphRepository
	cacheTTL time.Duration
	Analysis *AnalysisUseCase
	Import   *ImportUseCase
}

type Option func(*UseCases)

// WithCacheTTL overrides how long a computed report is served from cache
func WithCacheTTL(ttl time.Duration) Option {
	return func(uc *UseCases) {
		uc.cacheTTL = ttl
	}
}

func New(repo interfaces.GraphRepository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		cacheTTL: reportCacheTTL,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Analysis = NewAnalysisUseCase(repo, uc.cacheTTL)
	uc.Import = NewImportUseCase(repo, uc.Analysis)

	return uc
}
