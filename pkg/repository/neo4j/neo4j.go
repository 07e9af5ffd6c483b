package neo4j

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/secmon-lab/riskmap/pkg/domain/interfaces"
	"github.com/secmon-lab/riskmap/pkg/domain/model"
)

// Config holds connection settings of the graph database
type Config struct {
	URI      string
	Username string
	Password string `masq:"secret"`
	Database string
}

// Neo4j reads the risk graph from a Neo4j (or Bolt compatible) database
// using the node labels Risk, TPO and Mitigation and the relationship types
// INFLUENCES, IMPACTS_TPO and MITIGATES.
type Neo4j struct {
	driver   neo4j.DriverWithContext
	database string
}

var _ interfaces.GraphRepository = &Neo4j{}

func New(ctx context.Context, cfg Config) (*Neo4j, error) {
	auth := neo4j.NoAuth()
	if cfg.Username != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create neo4j driver", goerr.V("uri", cfg.URI))
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, goerr.Wrap(err, "failed to connect to neo4j", goerr.V("uri", cfg.URI))
	}

	return &Neo4j{driver: driver, database: cfg.Database}, nil
}

func (n *Neo4j) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return n.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: n.database,
	})
}

// query runs a read transaction and converts each record with conv
func query[T any](ctx context.Context, n *Neo4j, cypher string, conv func(map[string]any) T) ([]T, error) {
	session := n.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, nil)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}

		items := make([]T, 0, len(records))
		for _, record := range records {
			items = append(items, conv(record.AsMap()))
		}
		return items, nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to run cypher query", goerr.V("query", cypher))
	}
	return out.([]T), nil
}

func (n *Neo4j) ListRisks(ctx context.Context) ([]model.Risk, error) {
	return query(ctx, n, listRisksQuery, riskFromRecord)
}

func (n *Neo4j) ListTPOs(ctx context.Context) ([]model.TPO, error) {
	return query(ctx, n, listTPOsQuery, tpoFromRecord)
}

func (n *Neo4j) ListMitigations(ctx context.Context) ([]model.Mitigation, error) {
	return query(ctx, n, listMitigationsQuery, mitigationFromRecord)
}

func (n *Neo4j) ListInfluences(ctx context.Context) ([]model.Influence, error) {
	return query(ctx, n, listInfluencesQuery, influenceFromRecord)
}

func (n *Neo4j) ListTPOImpacts(ctx context.Context) ([]model.TPOImpact, error) {
	return query(ctx, n, listTPOImpactsQuery, tpoImpactFromRecord)
}

func (n *Neo4j) ListMitigates(ctx context.Context) ([]model.MitigatesRelationship, error) {
	return query(ctx, n, listMitigatesQuery, mitigatesFromRecord)
}

// ReplaceSnapshot deletes every Risk, TPO and Mitigation node with their
// relationships and creates the snapshot in a single write transaction.
func (n *Neo4j) ReplaceSnapshot(ctx context.Context, snapshot *model.Snapshot) error {
	if snapshot == nil {
		return goerr.New("snapshot is nil")
	}

	session := n.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	steps := []struct {
		name   string
		cypher string
		params map[string]any
	}{
		{"delete", deleteGraphQuery, nil},
		{"risks", createRisksQuery, map[string]any{"rows": riskRows(snapshot.Risks)}},
		{"tpos", createTPOsQuery, map[string]any{"rows": tpoRows(snapshot.TPOs)}},
		{"mitigations", createMitigationsQuery, map[string]any{"rows": mitigationRows(snapshot.Mitigations)}},
		{"influences", createInfluencesQuery, map[string]any{"rows": influenceRows(snapshot.Influences, snapshot.Risks)}},
		{"tpo_impacts", createTPOImpactsQuery, map[string]any{"rows": tpoImpactRows(snapshot.TPOImpacts)}},
		{"mitigates", createMitigatesQuery, map[string]any{"rows": mitigatesRows(snapshot.Mitigates)}},
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, step := range steps {
			result, err := tx.Run(ctx, step.cypher, step.params)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to run step", goerr.V("step", step.name))
			}
			if _, err := result.Consume(ctx); err != nil {
				return nil, goerr.Wrap(err, "failed to consume step result", goerr.V("step", step.name))
			}
		}
		return nil, nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to replace graph snapshot")
	}
	return nil
}

func (n *Neo4j) Close() error {
	return n.driver.Close(context.Background())
}
