package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskmap/pkg/service/snapshotfile"
	"github.com/secmon-lab/riskmap/pkg/usecase"
	"github.com/secmon-lab/riskmap/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Check a snapshot file for structural and referential problems",
		ArgsUsage: "FILE",
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			path := c.Args().First()
			if path == "" {
				return goerr.New("snapshot file is required")
			}

			snapshot, err := snapshotfile.Load(path)
			if err != nil {
				return goerr.Wrap(err, "snapshot file validation failed", goerr.V("path", path))
			}

			out := c.Root().Writer
			issues := snapshot.Check()
			if len(issues) > 0 {
				for _, issue := range issues {
					fmt.Fprintf(out, "%s: %s\n", warnColor.Sprint("issue"), issue)
				}
				fmt.Fprintf(out, "%d issue(s) found in %s\n", len(issues), path)
				return goerr.Wrap(usecase.ErrInvalidSnapshot, "snapshot check failed",
					goerr.V("path", path),
					goerr.V(usecase.IssueCountKey, len(issues)))
			}

			logger.Info("Snapshot validation passed",
				"path", path,
				"risks", len(snapshot.Risks),
				"tpos", len(snapshot.TPOs),
				"mitigations", len(snapshot.Mitigations),
				"influences", len(snapshot.Influences),
				"tpo_impacts", len(snapshot.TPOImpacts),
				"mitigates", len(snapshot.Mitigates))
			fmt.Fprintf(out, "%s %s: %d risks, %d TPOs, %d mitigations\n",
				goodColor.Sprint("ok"), path, len(snapshot.Risks), len(snapshot.TPOs), len(snapshot.Mitigations))
			return nil
		},
	}
}
