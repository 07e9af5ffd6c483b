package repository_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskmap/pkg/domain/interfaces"
	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/domain/types"
	"github.com/secmon-lab/riskmap/pkg/repository/firestore"
	"github.com/secmon-lab/riskmap/pkg/repository/memory"
	"github.com/secmon-lab/riskmap/pkg/repository/neo4j"
)

func ptr(v float64) *float64 { return &v }

func newSnapshot(suffix string) *model.Snapshot {
	r1 := types.RiskID("R1-" + suffix)
	r2 := types.RiskID("R2-" + suffix)
	r3 := types.RiskID("R3-" + suffix)
	t1 := types.TPOID("T1-" + suffix)
	m1 := types.MitigationID("M1-" + suffix)

	return &model.Snapshot{
		Risks: []model.Risk{
			{
				ID: r1, Name: "Supplier Delay", Level: types.RiskLevelOperational,
				Categories: []string{"Supply"}, Status: types.RiskStatusActive, Origin: types.RiskOriginNew,
				Probability: ptr(6), Impact: ptr(8), Owner: "ops",
			},
			{
				ID: r2, Name: "Cost Overrun", Level: types.RiskLevelBusiness,
				Categories: []string{"Finance"}, Status: types.RiskStatusActive, Origin: types.RiskOriginLegacy,
				Probability: ptr(5), Impact: ptr(6),
			},
			{
				ID: r3, Name: "Unscored", Level: types.RiskLevelOperational,
				Categories: []string{"Quality"}, Status: types.RiskStatusContingent, Origin: types.RiskOriginNew,
				ActivationCondition: "audit finding",
			},
		},
		TPOs: []model.TPO{
			{ID: t1, Reference: "TPO-" + suffix, Name: "Unit cost", Cluster: types.TPOClusterBusinessEfficiency},
		},
		Mitigations: []model.Mitigation{
			{ID: m1, Name: "Dual sourcing", Type: types.MitigationTypeDedicated, Status: types.MitigationStatusImplemented},
		},
		Influences: []model.Influence{
			{ID: "I1-" + suffix, SourceID: r1, TargetID: r2, Strength: types.StrengthStrong, Confidence: 0.9},
			{ID: "I2-" + suffix, SourceID: r3, TargetID: r1, Strength: types.StrengthWeak, Confidence: 0.5},
		},
		TPOImpacts: []model.TPOImpact{
			{ID: "P1-" + suffix, RiskID: r2, TPOID: t1, ImpactLevel: types.ImpactHigh},
		},
		Mitigates: []model.MitigatesRelationship{
			{ID: "L1-" + suffix, MitigationID: m1, RiskID: r2, Effectiveness: types.EffectivenessHigh},
		},
	}
}

func runGraphRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.GraphRepository) {
	t.Helper()

	t.Run("empty repository lists nothing", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		risks, err := repo.ListRisks(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(0)

		influences, err := repo.ListInfluences(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, influences).Length(0)
	})

	t.Run("ReplaceSnapshot stores records in order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		src := newSnapshot(uuid.NewString()[:8])
		gt.NoError(t, repo.ReplaceSnapshot(ctx, src)).Required()

		risks, err := repo.ListRisks(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, risks).Equal(src.Risks)

		tpos, err := repo.ListTPOs(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, tpos).Equal(src.TPOs)

		mitigations, err := repo.ListMitigations(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, mitigations).Equal(src.Mitigations)

		influences, err := repo.ListInfluences(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, influences).Equal(src.Influences)

		impacts, err := repo.ListTPOImpacts(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, impacts).Equal(src.TPOImpacts)

		mitigates, err := repo.ListMitigates(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, mitigates).Equal(src.Mitigates)
	})

	t.Run("ReplaceSnapshot drops the previous graph", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		gt.NoError(t, repo.ReplaceSnapshot(ctx, newSnapshot(uuid.NewString()[:8]))).Required()

		next := newSnapshot(uuid.NewString()[:8])
		next.Risks = next.Risks[:2]
		next.Influences = next.Influences[:1]
		gt.NoError(t, repo.ReplaceSnapshot(ctx, next)).Required()

		risks, err := repo.ListRisks(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(2)
		gt.Value(t, risks[0].ID).Equal(next.Risks[0].ID)

		influences, err := repo.ListInfluences(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, influences).Length(1)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		src := newSnapshot(uuid.NewString()[:8])
		gt.NoError(t, repo.ReplaceSnapshot(ctx, src)).Required()

		risks, err := repo.ListRisks(ctx)
		gt.NoError(t, err).Required()
		risks[0].Categories[0] = "changed"
		*risks[0].Impact = 1

		again, err := repo.ListRisks(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, again[0].Categories[0]).Equal("Supply")
		gt.Value(t, *again[0].Impact).Equal(8.0)
	})

	t.Run("ReplaceSnapshot rejects nil", func(t *testing.T) {
		repo := newRepo(t)
		gt.Error(t, repo.ReplaceSnapshot(context.Background(), nil))
	})
}

func TestMemoryGraphRepository(t *testing.T) {
	runGraphRepositoryTest(t, func(t *testing.T) interfaces.GraphRepository {
		return memory.New()
	})
}

func TestMemoryClosed(t *testing.T) {
	repo := memory.NewWithSnapshot(newSnapshot("x"))
	gt.NoError(t, repo.Close())
	_, err := repo.ListRisks(context.Background())
	gt.Error(t, err).Is(memory.ErrClosed)
}

func newFirestoreGraphRepository(t *testing.T) interfaces.GraphRepository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	// Random prefix isolates each test from the others
	repo, err := firestore.New(ctx, projectID, databaseID,
		firestore.WithCollectionPrefix("test_"+uuid.NewString()[:8]))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func TestFirestoreGraphRepository(t *testing.T) {
	runGraphRepositoryTest(t, newFirestoreGraphRepository)
}

func newNeo4jGraphRepository(t *testing.T) interfaces.GraphRepository {
	t.Helper()

	uri := os.Getenv("TEST_NEO4J_URI")
	if uri == "" {
		t.Skip("TEST_NEO4J_URI not set")
	}

	repo, err := neo4j.New(context.Background(), neo4j.Config{
		URI:      uri,
		Username: os.Getenv("TEST_NEO4J_USERNAME"),
		Password: os.Getenv("TEST_NEO4J_PASSWORD"),
		Database: os.Getenv("TEST_NEO4J_DATABASE"),
	})
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.ReplaceSnapshot(context.Background(), &model.Snapshot{}))
		gt.NoError(t, repo.Close())
	})
	return repo
}

func TestNeo4jGraphRepository(t *testing.T) {
	runGraphRepositoryTest(t, newNeo4jGraphRepository)
}
