package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskmap/pkg/service/storage"
	"github.com/urfave/cli/v3"
)

// Export holds CLI flags for report export by the refresh worker
type Export struct {
	location string
}

// Flags returns CLI flags for report export
func (x *Export) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "export-report",
			Usage:       "Write every refreshed report to this file or gs://bucket/object",
			Category:    "Export",
			Sources:     cli.EnvVars("RISKMAP_EXPORT_REPORT"),
			Destination: &x.location,
		},
	}
}

// Enabled reports whether a destination is set
func (x *Export) Enabled() bool {
	return x.location != ""
}

// Configure opens the export destination. It returns a nil writer when no
// destination is set.
func (x *Export) Configure(ctx context.Context) (storage.Writer, string, error) {
	if !x.Enabled() {
		return nil, "", nil
	}
	w, name, err := storage.Open(ctx, x.location)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to open export destination", goerr.V("location", x.location))
	}
	return w, name, nil
}
