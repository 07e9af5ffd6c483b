package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskmap/pkg/cli"
	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/domain/types"
	"github.com/secmon-lab/riskmap/pkg/repository/firestore"
	"github.com/secmon-lab/riskmap/pkg/repository/memory"
	"github.com/secmon-lab/riskmap/pkg/service/snapshotfile"
	"github.com/secmon-lab/riskmap/pkg/usecase"
)

func ptr(v float64) *float64 {
	return &v
}

func testSnapshot() *model.Snapshot {
	return &model.Snapshot{
		Risks: []model.Risk{
			{
				ID: "R1", Name: "Supplier Delay", Level: types.RiskLevelOperational,
				Categories: []string{"Supply"}, Status: types.RiskStatusActive, Origin: types.RiskOriginNew,
				Probability: ptr(5), Impact: ptr(6),
			},
			{
				ID: "R2", Name: "Revenue Loss", Level: types.RiskLevelBusiness,
				Categories: []string{"Finance"}, Status: types.RiskStatusActive, Origin: types.RiskOriginNew,
				Probability: ptr(4), Impact: ptr(5),
			},
		},
		TPOs: []model.TPO{
			{ID: "T1", Reference: "TPO-1", Name: "Margin", Cluster: types.TPOClusterBusinessEfficiency},
		},
		Mitigations: []model.Mitigation{
			{ID: "M1", Name: "Dual sourcing", Type: types.MitigationTypeDedicated, Status: types.MitigationStatusImplemented},
		},
		Influences: []model.Influence{
			{ID: "I1", SourceID: "R1", TargetID: "R2", Strength: types.StrengthStrong, Confidence: 0.8},
		},
		TPOImpacts: []model.TPOImpact{
			{ID: "P1", RiskID: "R2", TPOID: "T1", ImpactLevel: types.ImpactHigh},
		},
		Mitigates: []model.MitigatesRelationship{
			{ID: "L1", MitigationID: "M1", RiskID: "R1", Effectiveness: types.EffectivenessHigh},
		},
	}
}

func writeSnapshot(t *testing.T, snapshot *model.Snapshot) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.toml")
	gt.NoError(t, snapshotfile.Save(path, snapshot)).Required()
	return path
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	var buf bytes.Buffer
	app := cli.NewApp("test")
	app.Writer = &buf
	app.ErrWriter = &buf
	err := app.Run(context.Background(), append([]string{"riskmap"}, args...))
	return buf.String(), err
}

func TestAnalyze(t *testing.T) {
	path := writeSnapshot(t, testSnapshot())

	t.Run("text summary", func(t *testing.T) {
		out, err := runApp(t, "analyze", "--snapshot", path)
		gt.NoError(t, err).Required()
		gt.String(t, out).Contains("Risk Map Analysis")
		gt.String(t, out).Contains("Top propagators")
		gt.String(t, out).Contains("R1 Supplier Delay")
		gt.String(t, out).Contains("1/2 risks mitigated")
	})

	t.Run("json report", func(t *testing.T) {
		out, err := runApp(t, "analyze", "--snapshot", path, "--format", "json")
		gt.NoError(t, err).Required()

		var report model.Report
		gt.NoError(t, json.Unmarshal([]byte(out), &report)).Required()
		gt.Number(t, report.Exposure.Aggregate.TotalRisks).Equal(2)
		gt.Number(t, report.Coverage.Stats.MitigatedRisks).Equal(1)
	})

	t.Run("writes report to output file", func(t *testing.T) {
		output := filepath.Join(t.TempDir(), "report.json")
		_, err := runApp(t, "analyze", "--snapshot", path, "--output", output)
		gt.NoError(t, err).Required()

		data, err := os.ReadFile(output)
		gt.NoError(t, err).Required()

		var report model.Report
		gt.NoError(t, json.Unmarshal(data, &report)).Required()
		gt.Number(t, report.Stats.TotalRisks).Equal(2)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := runApp(t, "analyze", "--snapshot", path, "--format", "xml")
		gt.Value(t, err).NotNil()
	})

	t.Run("snapshot with firestore backend", func(t *testing.T) {
		_, err := runApp(t, "analyze", "--snapshot", path, "--repository-backend", "firestore")
		gt.Value(t, err).NotNil()
	})
}

func TestValidate(t *testing.T) {
	t.Run("clean snapshot", func(t *testing.T) {
		path := writeSnapshot(t, testSnapshot())
		out, err := runApp(t, "validate", path)
		gt.NoError(t, err).Required()
		gt.String(t, out).Contains("ok")
		gt.String(t, out).Contains("2 risks, 1 TPOs, 1 mitigations")
	})

	t.Run("dangling reference", func(t *testing.T) {
		s := testSnapshot()
		s.Mitigates[0].RiskID = "R404"
		path := writeSnapshot(t, s)

		out, err := runApp(t, "validate", path)
		gt.Error(t, err).Is(usecase.ErrInvalidSnapshot)
		gt.String(t, out).Contains("1 issue(s) found")
	})

	t.Run("missing file argument", func(t *testing.T) {
		_, err := runApp(t, "validate")
		gt.Value(t, err).NotNil()
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := runApp(t, "validate", "graph.csv")
		gt.Error(t, err).Is(snapshotfile.ErrUnsupportedFormat)
	})
}

func TestImport(t *testing.T) {
	path := writeSnapshot(t, testSnapshot())

	t.Run("dry run", func(t *testing.T) {
		out, err := runApp(t, "import", "--dry-run", path)
		gt.NoError(t, err).Required()
		gt.String(t, out).Contains("imported 2 risks, 1 TPOs, 1 mitigations")
	})

	t.Run("strict rejects issues", func(t *testing.T) {
		s := testSnapshot()
		s.Influences[0].TargetID = "R404"
		broken := writeSnapshot(t, s)

		_, err := runApp(t, "import", "--strict", broken)
		gt.Error(t, err).Is(usecase.ErrInvalidSnapshot)
	})
}

func TestPrintSummary(t *testing.T) {
	color.NoColor = true

	uc := usecase.New(memory.NewWithSnapshot(testSnapshot()))
	report, err := uc.Analysis.Report(context.Background())
	gt.NoError(t, err).Required()

	var buf bytes.Buffer
	cli.PrintSummary(&buf, report)
	out := buf.String()

	gt.String(t, out).Contains("Health:")
	gt.String(t, out).Contains("Highest:   R2 Revenue Loss")
	gt.String(t, out).Contains("Critical paths")
	gt.String(t, out).Contains("R1 -> R2 -> T1")
	gt.String(t, out).Contains("critical unmitigated:")
}

func TestGetIndexConfig(t *testing.T) {
	t.Run("without prefix", func(t *testing.T) {
		cfg := cli.GetIndexConfig("")
		gt.Array(t, cfg.Collections).Length(len(firestore.GraphCollections))

		for i, col := range cfg.Collections {
			gt.Value(t, col.Name).Equal(firestore.GraphCollections[i])
			gt.Array(t, col.Indexes).Length(1)
			fields := col.Indexes[0].Fields
			gt.Array(t, fields).Length(2)
			gt.Value(t, fields[0].Path).Equal(firestore.FieldSnapshotID)
			gt.Value(t, fields[0].Order).Equal(fireconf.OrderAscending)
			gt.Value(t, fields[1].Path).Equal(firestore.FieldSeq)
		}
	})

	t.Run("with prefix", func(t *testing.T) {
		cfg := cli.GetIndexConfig("staging")
		gt.Value(t, cfg.Collections[0].Name).Equal("staging_" + firestore.CollectionRisks)
	})
}
