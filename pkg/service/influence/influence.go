// Package influence analyzes the risk influence network: who propagates,
// where pressure converges, which chains reach objectives and which risks
// sit on many of them.
package influence

import (
	"context"
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultLimit is the number of entries kept per ranking
	DefaultLimit = 5

	maxDepth          = 10
	maxPathNodes      = 6
	decayFactor       = 0.85
	tpoImpactBoost    = 1.5
	strengthNormalize = 4.0
	convergenceFactor = 0.2
	highConvergence   = 1.5
	minBottleneck     = 2
	minClusterSize    = 2
	pathsPerTPO       = 3

	tpoNodeValue         = 10.0
	businessNodeValue    = 5.0
	operationalNodeValue = 2.0

	operationalSourceWeight = 1.0
	businessSourceWeight    = 0.7
)

type config struct {
	limit int
}

// Option configures Analyze
type Option func(*config)

// WithLimit sets how many entries each ranking keeps. Non-positive values are ignored.
func WithLimit(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.limit = n
		}
	}
}

// Analyze builds the influence graph of the snapshot and runs the five
// sub-analyses concurrently. The snapshot is only read.
func Analyze(ctx context.Context, snapshot *model.Snapshot, opts ...Option) (*model.InfluenceResult, error) {
	cfg := &config{limit: DefaultLimit}
	for _, opt := range opts {
		opt(cfg)
	}

	g := newGraph(ctx, snapshot)
	result := &model.InfluenceResult{
		Stats: networkStats(snapshot, g),
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		v, err := topPropagators(ctx, g, cfg.limit)
		result.TopPropagators = v
		return err
	})
	eg.Go(func() error {
		v, err := convergencePoints(ctx, g, cfg.limit)
		result.ConvergencePoints = v
		return err
	})
	eg.Go(func() error {
		v, err := criticalPaths(ctx, g, cfg.limit)
		result.CriticalPaths = v
		return err
	})
	eg.Go(func() error {
		v, err := bottlenecks(ctx, g, cfg.limit)
		result.Bottlenecks = v
		return err
	})
	eg.Go(func() error {
		v, err := riskClusters(ctx, g, cfg.limit)
		result.RiskClusters = v
		return err
	})

	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "failed to analyze influence network")
	}
	return result, nil
}

func decay(depth int) float64 {
	return math.Pow(decayFactor, float64(depth))
}

func checkCanceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return goerr.Wrap(err, "influence analysis canceled")
	}
	return nil
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
