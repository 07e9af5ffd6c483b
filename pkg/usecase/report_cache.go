package usecase

import (
	"sync"
	"time"

	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/service/coverage"
)

const (
	reportCacheTTL = 30 * time.Second
)

// currentKey is the only cache key. The graph has a single current state.
const currentKey = "current"

// analysis is one computed report with the coverage index it was built
// from, kept for risk and mitigation detail lookups
type analysis struct {
	report   *model.Report
	coverage *coverage.Analyzer
}

type cachedAnalysis struct {
	analysis  *analysis
	expiresAt time.Time
}

type reportCache struct {
	cache sync.Map
	ttl   time.Duration
}

func newReportCache(ttl time.Duration) *reportCache {
	return &reportCache{ttl: ttl}
}

func (c *reportCache) get() (*analysis, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	val, ok := c.cache.Load(currentKey)
	if !ok {
		return nil, false
	}

	cached := val.(*cachedAnalysis)
	if time.Now().After(cached.expiresAt) {
		c.cache.CompareAndDelete(currentKey, val)
		return nil, false
	}

	return cached.analysis, true
}

func (c *reportCache) set(a *analysis) {
	if c.ttl <= 0 {
		return
	}
	cached := &cachedAnalysis{
		analysis:  a,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.cache.Store(currentKey, cached)
}

func (c *reportCache) remove() {
	c.cache.Delete(currentKey)
}
