package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskmap/pkg/domain/interfaces"
	"github.com/secmon-lab/riskmap/pkg/repository/firestore"
	"github.com/secmon-lab/riskmap/pkg/repository/memory"
	"github.com/secmon-lab/riskmap/pkg/repository/neo4j"
	"github.com/secmon-lab/riskmap/pkg/service/snapshotfile"
	"github.com/secmon-lab/riskmap/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendNeo4j     = "neo4j"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend          string
	projectID        string
	databaseID       string
	collectionPrefix string
	neo4j            neo4j.Config
	snapshotPath     string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (memory, firestore or neo4j)",
			Value:       BackendMemory,
			Category:    "Repository",
			Sources:     cli.EnvVars("RISKMAP_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "snapshot",
			Usage:       "Snapshot file (TOML, YAML or JSON) preloaded into the memory backend",
			Category:    "Repository",
			Sources:     cli.EnvVars("RISKMAP_SNAPSHOT"),
			Destination: &r.snapshotPath,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Firestore",
			Sources:     cli.EnvVars("RISKMAP_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Firestore",
			Sources:     cli.EnvVars("RISKMAP_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix of the Firestore collection names",
			Category:    "Firestore",
			Sources:     cli.EnvVars("RISKMAP_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
		&cli.StringFlag{
			Name:        "neo4j-uri",
			Usage:       "Neo4j URI, e.g. bolt://localhost:7687 (required when using neo4j backend)",
			Category:    "Neo4j",
			Sources:     cli.EnvVars("RISKMAP_NEO4J_URI"),
			Destination: &r.neo4j.URI,
		},
		&cli.StringFlag{
			Name:        "neo4j-user",
			Usage:       "Neo4j user name",
			Category:    "Neo4j",
			Sources:     cli.EnvVars("RISKMAP_NEO4J_USER"),
			Destination: &r.neo4j.Username,
		},
		&cli.StringFlag{
			Name:        "neo4j-password",
			Usage:       "Neo4j password",
			Category:    "Neo4j",
			Sources:     cli.EnvVars("RISKMAP_NEO4J_PASSWORD"),
			Destination: &r.neo4j.Password,
		},
		&cli.StringFlag{
			Name:        "neo4j-database",
			Usage:       "Neo4j database name (server default when empty)",
			Category:    "Neo4j",
			Sources:     cli.EnvVars("RISKMAP_NEO4J_DATABASE"),
			Destination: &r.neo4j.Database,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// CollectionPrefix returns the Firestore collection name prefix
func (r *Repository) CollectionPrefix() string {
	return r.collectionPrefix
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("snapshot", r.snapshotPath),
		slog.String("firestore_project_id", r.projectID),
		slog.String("firestore_database_id", r.databaseID),
		slog.Any("neo4j", r.neo4j),
	)
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.GraphRepository, error) {
	if r.snapshotPath != "" && r.backend != BackendMemory {
		return nil, goerr.Wrap(ErrInvalidBackend, "snapshot preload requires the memory backend",
			goerr.V(BackendKey, r.backend))
	}

	switch r.backend {
	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingFlag, "firestore-project-id is required when using firestore backend",
				goerr.V(FlagKey, "firestore-project-id"))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID, firestore.WithCollectionPrefix(r.collectionPrefix))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case BackendNeo4j:
		if r.neo4j.URI == "" {
			return nil, goerr.Wrap(ErrMissingFlag, "neo4j-uri is required when using neo4j backend",
				goerr.V(FlagKey, "neo4j-uri"))
		}
		repo, err := neo4j.New(ctx, r.neo4j)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize neo4j repository")
		}
		logging.Default().Info("Using Neo4j repository", "neo4j", r.neo4j)
		return repo, nil

	case BackendMemory:
		if r.snapshotPath == "" {
			logging.Default().Info("Using in-memory repository (empty graph)")
			return memory.New(), nil
		}
		snapshot, err := snapshotfile.Load(r.snapshotPath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to preload snapshot")
		}
		logging.Default().Info("Using in-memory repository",
			"snapshot", r.snapshotPath,
			"risks", len(snapshot.Risks))
		return memory.NewWithSnapshot(snapshot), nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "unknown repository backend", goerr.V(BackendKey, r.backend))
	}
}
