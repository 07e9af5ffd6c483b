package usecase_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/repository/memory"
	"github.com/secmon-lab/riskmap/pkg/service/snapshotfile"
	"github.com/secmon-lab/riskmap/pkg/usecase"
)

func TestImportUseCase_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("stores snapshot and invalidates cached report", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)

		before, err := uc.Analysis.Report(ctx)
		gt.NoError(t, err).Required()
		gt.Number(t, before.Exposure.Aggregate.TotalRisks).Equal(0)

		result, err := uc.Import.Import(ctx, testSnapshot())
		gt.NoError(t, err).Required()
		gt.Number(t, result.Risks).Equal(2)
		gt.Number(t, result.TPOs).Equal(1)
		gt.Number(t, result.Mitigations).Equal(1)
		gt.Number(t, result.Influences).Equal(1)
		gt.Number(t, result.TPOImpacts).Equal(1)
		gt.Number(t, result.Mitigates).Equal(1)
		gt.Array(t, result.Issues).Length(0)

		risks, err := repo.ListRisks(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(2)

		after, err := uc.Analysis.Report(ctx)
		gt.NoError(t, err).Required()
		gt.Number(t, after.Exposure.Aggregate.TotalRisks).Equal(2)
	})

	t.Run("issues are reported but do not block", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)

		s := testSnapshot()
		s.Risks[1].Categories = nil

		result, err := uc.Import.Import(ctx, s)
		gt.NoError(t, err).Required()
		gt.Array(t, result.Issues).Length(1)
		gt.Error(t, result.Issues[0].Err).Is(model.ErrMissingRequired)

		risks, err := repo.ListRisks(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(2)
	})

	t.Run("strict mode rejects snapshot with issues", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)

		s := testSnapshot()
		s.Mitigates[0].RiskID = "R404"

		result, err := uc.Import.Import(ctx, s, usecase.WithStrict())
		gt.Error(t, err).Is(usecase.ErrInvalidSnapshot)
		gt.Array(t, result.Issues).Length(1)

		risks, err := repo.ListRisks(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(0)
	})

	t.Run("dry run does not store", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)

		result, err := uc.Import.Import(ctx, testSnapshot(), usecase.WithDryRun())
		gt.NoError(t, err).Required()
		gt.Number(t, result.Risks).Equal(2)

		risks, err := repo.ListRisks(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(0)
	})

	t.Run("empty snapshot is rejected", func(t *testing.T) {
		uc := usecase.New(memory.New())

		_, err := uc.Import.Import(ctx, &model.Snapshot{})
		gt.Error(t, err).Is(usecase.ErrEmptySnapshot)

		_, err = uc.Import.Import(ctx, nil)
		gt.Error(t, err).Is(usecase.ErrEmptySnapshot)
	})

	t.Run("closed repository", func(t *testing.T) {
		repo := memory.New()
		gt.NoError(t, repo.Close()).Required()

		_, err := usecase.New(repo).Import.Import(ctx, testSnapshot())
		gt.Error(t, err).Is(memory.ErrClosed)
	})
}

func TestImportUseCase_ImportFile(t *testing.T) {
	ctx := context.Background()

	for _, name := range []string{"graph.toml", "graph.yaml", "graph.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			gt.NoError(t, snapshotfile.Save(path, testSnapshot())).Required()

			repo := memory.New()
			result, err := usecase.New(repo).Import.ImportFile(ctx, path)
			gt.NoError(t, err).Required()
			gt.Number(t, result.Risks).Equal(2)

			impacts, err := repo.ListTPOImpacts(ctx)
			gt.NoError(t, err).Required()
			gt.Array(t, impacts).Length(1)
		})
	}

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := usecase.New(memory.New()).Import.ImportFile(ctx, "graph.csv")
		gt.Error(t, err).Is(snapshotfile.ErrUnsupportedFormat)
	})
}
