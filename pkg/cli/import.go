package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskmap/pkg/cli/config"
	"github.com/secmon-lab/riskmap/pkg/usecase"
	"github.com/secmon-lab/riskmap/pkg/utils/logging"
	"github.com/secmon-lab/riskmap/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdImport() *cli.Command {
	var repoCfg config.Repository
	var strict bool
	var dryRun bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "strict",
			Usage:       "Reject the snapshot when it has integrity issues",
			Sources:     cli.EnvVars("RISKMAP_IMPORT_STRICT"),
			Destination: &strict,
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Check the snapshot without storing it",
			Destination: &dryRun,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:      "import",
		Aliases:   []string{"i"},
		Usage:     "Replace the stored risk graph with a snapshot file",
		ArgsUsage: "FILE",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			path := c.Args().First()
			if path == "" {
				return goerr.New("snapshot file is required")
			}

			if repoCfg.Backend() == config.BackendMemory && !dryRun {
				logging.Default().Warn("Importing into the memory backend, data is dropped on exit")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			var opts []usecase.ImportOption
			if strict {
				opts = append(opts, usecase.WithStrict())
			}
			if dryRun {
				opts = append(opts, usecase.WithDryRun())
			}

			result, err := usecase.New(repo).Import.ImportFile(ctx, path, opts...)
			if err != nil {
				return goerr.Wrap(err, "failed to import snapshot", goerr.V("path", path))
			}

			fmt.Fprintf(c.Root().Writer, "%s %d risks, %d TPOs, %d mitigations, %d influences, %d TPO impacts, %d links (%d issues)\n",
				goodColor.Sprint("imported"),
				result.Risks, result.TPOs, result.Mitigations,
				result.Influences, result.TPOImpacts, result.Mitigates, len(result.Issues))
			return nil
		},
	}
}
