package config_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskmap/pkg/cli/config"
	"github.com/secmon-lab/riskmap/pkg/domain/interfaces"
	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/domain/types"
	"github.com/secmon-lab/riskmap/pkg/repository/neo4j"
	"github.com/secmon-lab/riskmap/pkg/service/snapshotfile"
	"github.com/secmon-lab/riskmap/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// run parses args against flags and calls action, like a subcommand would
func run(t *testing.T, flags []cli.Flag, args []string, action cli.ActionFunc) error {
	t.Helper()
	cmd := &cli.Command{
		Name:   "test",
		Flags:  flags,
		Action: action,
	}
	return cmd.Run(context.Background(), append([]string{"test"}, args...))
}

func writeSnapshot(t *testing.T) string {
	t.Helper()
	p := 7.0
	i := 8.0
	path := filepath.Join(t.TempDir(), "graph.toml")
	gt.NoError(t, snapshotfile.Save(path, &model.Snapshot{
		Risks: []model.Risk{
			{
				ID: "R1", Name: "Supplier Delay", Level: types.RiskLevelOperational,
				Categories: []string{"Supply"}, Status: types.RiskStatusActive, Origin: types.RiskOriginNew,
				Probability: &p, Impact: &i,
			},
		},
	})).Required()
	return path
}

func TestRepository_Configure(t *testing.T) {
	t.Run("memory backend with snapshot preload", func(t *testing.T) {
		var cfg config.Repository
		path := writeSnapshot(t)

		var repo interfaces.GraphRepository
		err := run(t, cfg.Flags(), []string{"--snapshot", path}, func(ctx context.Context, c *cli.Command) error {
			r, err := cfg.Configure(ctx)
			repo = r
			return err
		})
		gt.NoError(t, err).Required()
		defer repo.Close()

		risks, err := repo.ListRisks(context.Background())
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(1)
		gt.Value(t, cfg.Backend()).Equal(config.BackendMemory)
	})

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{
			name:    "snapshot requires memory backend",
			args:    []string{"--repository-backend", "neo4j", "--snapshot", "graph.toml"},
			wantErr: config.ErrInvalidBackend,
		},
		{
			name:    "firestore requires project id",
			args:    []string{"--repository-backend", "firestore"},
			wantErr: config.ErrMissingFlag,
		},
		{
			name:    "neo4j requires uri",
			args:    []string{"--repository-backend", "neo4j"},
			wantErr: config.ErrMissingFlag,
		},
		{
			name:    "unknown backend",
			args:    []string{"--repository-backend", "sqlite"},
			wantErr: config.ErrInvalidBackend,
		},
		{
			name:    "missing snapshot file",
			args:    []string{"--snapshot", filepath.Join(t.TempDir(), "absent.toml")},
			wantErr: os.ErrNotExist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg config.Repository
			err := run(t, cfg.Flags(), tt.args, func(ctx context.Context, c *cli.Command) error {
				_, err := cfg.Configure(ctx)
				return err
			})
			gt.Error(t, err).Is(tt.wantErr)
		})
	}
}

func TestLogger_Configure(t *testing.T) {
	original := logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	t.Run("json output to file masks secrets", func(t *testing.T) {
		var cfg config.Logger
		path := filepath.Join(t.TempDir(), "riskmap.log")

		err := run(t, cfg.Flags(), []string{"--log-format", "json", "--log-output", path, "--log-level", "debug"},
			func(ctx context.Context, c *cli.Command) error {
				closer, err := cfg.Configure()
				if err != nil {
					return err
				}
				logging.Default().Debug("connecting",
					"neo4j", neo4j.Config{URI: "bolt://db:7687", Username: "riskmap", Password: "s3cr3t-pass"})
				closer()
				return nil
			})
		gt.NoError(t, err).Required()

		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.Bool(t, strings.Contains(string(data), "s3cr3t-pass")).False()

		var entry map[string]any
		gt.NoError(t, json.Unmarshal(data, &entry)).Required()
		gt.Value(t, entry["msg"]).Equal("connecting")
		gt.String(t, string(data)).Contains("bolt://db:7687")
	})

	t.Run("invalid level", func(t *testing.T) {
		var cfg config.Logger
		err := run(t, cfg.Flags(), []string{"--log-level", "verbose"}, func(ctx context.Context, c *cli.Command) error {
			_, err := cfg.Configure()
			return err
		})
		gt.Error(t, err).Is(config.ErrInvalidLogLevel)
	})

	t.Run("invalid format", func(t *testing.T) {
		var cfg config.Logger
		err := run(t, cfg.Flags(), []string{"--log-format", "xml"}, func(ctx context.Context, c *cli.Command) error {
			_, err := cfg.Configure()
			return err
		})
		gt.Error(t, err).Is(config.ErrInvalidLogFormat)
	})
}

func TestExport_Configure(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		var cfg config.Export
		err := run(t, cfg.Flags(), nil, func(ctx context.Context, c *cli.Command) error {
			w, name, err := cfg.Configure(ctx)
			gt.Value(t, w).Nil()
			gt.Value(t, name).Equal("")
			return err
		})
		gt.NoError(t, err)
	})

	t.Run("local file", func(t *testing.T) {
		var cfg config.Export
		dir := t.TempDir()
		dest := filepath.Join(dir, "reports", "latest.json")

		err := run(t, cfg.Flags(), []string{"--export-report", dest}, func(ctx context.Context, c *cli.Command) error {
			w, name, err := cfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer w.Close()
			gt.Value(t, name).Equal("latest.json")
			return w.WriteReport(ctx, name, []byte(`{"id":"x"}`))
		})
		gt.NoError(t, err).Required()

		data, err := os.ReadFile(dest)
		gt.NoError(t, err).Required()
		gt.Value(t, string(data)).Equal(`{"id":"x"}`)
	})
}

func TestSentry_ConfigureWithoutDSN(t *testing.T) {
	var cfg config.Sentry
	err := run(t, cfg.Flags(), nil, func(ctx context.Context, c *cli.Command) error {
		closer, err := cfg.Configure("test")
		if err != nil {
			return err
		}
		closer()
		return nil
	})
	gt.NoError(t, err)
}
