package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskmap/pkg/cli/config"
	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/domain/types"
	"github.com/secmon-lab/riskmap/pkg/service/storage"
	"github.com/secmon-lab/riskmap/pkg/usecase"
	"github.com/secmon-lab/riskmap/pkg/utils/logging"
	"github.com/secmon-lab/riskmap/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func cmdAnalyze() *cli.Command {
	var repoCfg config.Repository
	var format string
	var output string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "Output format (text, json)",
			Value:       formatText,
			Sources:     cli.EnvVars("RISKMAP_FORMAT"),
			Destination: &format,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Also write the JSON report to this file or gs://bucket/object",
			Sources:     cli.EnvVars("RISKMAP_OUTPUT"),
			Destination: &output,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "analyze",
		Aliases: []string{"a"},
		Usage:   "Run the exposure, influence and coverage analyses once",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if format != formatText && format != formatJSON {
				return goerr.New("invalid output format", goerr.V("format", format))
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			uc := usecase.New(repo)
			report, err := uc.Analysis.Report(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to analyze risk map")
			}

			if output != "" {
				w, name, err := storage.Open(ctx, output)
				if err != nil {
					return goerr.Wrap(err, "failed to open output")
				}
				defer safe.Close(ctx, w)

				if _, err := uc.Analysis.ExportReport(ctx, w, name); err != nil {
					return goerr.Wrap(err, "failed to write report", goerr.V("output", output))
				}
				logging.Default().Info("Report written", "output", output, "report_id", report.ID)
			}

			out := c.Root().Writer
			if format == formatJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return goerr.Wrap(err, "failed to encode report")
				}
				return nil
			}

			printSummary(out, report)
			return nil
		},
	}
}

var (
	headerColor = color.New(color.FgHiWhite, color.Bold)
	dimColor    = color.New(color.FgHiBlack)
	goodColor   = color.New(color.FgGreen, color.Bold)
	warnColor   = color.New(color.FgYellow, color.Bold)
	badColor    = color.New(color.FgRed, color.Bold)
)

func healthColor(h types.HealthStatus) *color.Color {
	switch h {
	case types.HealthExcellent, types.HealthGood:
		return goodColor
	case types.HealthModerate:
		return warnColor
	default:
		return badColor
	}
}

// printSummary renders the executive summary of report
func printSummary(w io.Writer, report *model.Report) {
	exp := report.Exposure.Aggregate
	stats := report.Stats

	_, _ = headerColor.Fprintln(w, "Risk Map Analysis")
	_, _ = dimColor.Fprintf(w, "report %s generated %s\n\n", report.ID, report.GeneratedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(w, "Health:    ")
	_, _ = healthColor(exp.HealthStatus).Fprintf(w, "%s", exp.HealthStatus)
	fmt.Fprintf(w, " (weighted risk score %.2f)\n", exp.WeightedRiskScore)
	fmt.Fprintf(w, "Exposure:  base %.2f, final %.2f, residual %.1f%%\n",
		exp.TotalBaseExposure, exp.TotalFinalExposure, exp.ResidualRiskPercentage)
	if exp.MaxExposureRiskID != "" {
		fmt.Fprintf(w, "Highest:   %s %s (%.2f)\n", exp.MaxExposureRiskID, exp.MaxExposureRiskName, exp.MaxSingleExposure)
	}
	fmt.Fprintf(w, "Network:   %d risks (%d business, %d operational), %d TPOs, %d influences, %d TPO impacts\n",
		stats.TotalRisks, stats.BusinessRisks, stats.OperationalRisks,
		stats.TotalTPOs, stats.TotalInfluences, stats.TotalTPOImpacts)

	inf := report.Influence
	section(w, "Top propagators")
	for i, p := range inf.TopPropagators {
		fmt.Fprintf(w, "  %d. %s %s  score %.2f, reaches %d TPOs\n", i+1, p.ID, p.Name, p.Score, p.TPOsReached)
	}

	section(w, "Convergence points")
	for i, p := range inf.ConvergencePoints {
		mark := ""
		if p.IsHighConvergence {
			mark = warnColor.Sprint(" high")
		}
		fmt.Fprintf(w, "  %d. %s %s (%s)  score %.2f, %d sources%s\n", i+1, p.ID, p.Name, p.NodeType, p.Score, p.SourceCount, mark)
	}

	section(w, "Critical paths")
	for i, p := range inf.CriticalPaths {
		ids := make([]string, 0, len(p.Path))
		for _, n := range p.Path {
			ids = append(ids, n.ID)
		}
		fmt.Fprintf(w, "  %d. %s  strength %.2f\n", i+1, strings.Join(ids, " -> "), p.Strength)
	}

	section(w, "Bottlenecks")
	for i, b := range inf.Bottlenecks {
		fmt.Fprintf(w, "  %d. %s %s  %d/%d paths (%.1f%%)\n", i+1, b.ID, b.Name, b.PathCount, b.TotalPaths, b.Percentage)
	}

	cov := report.Coverage
	section(w, "Mitigation coverage")
	fmt.Fprintf(w, "  %d/%d risks mitigated (%.1f%%), %d mitigations, %d links\n",
		cov.Stats.MitigatedRisks, cov.Stats.TotalRisks, cov.Stats.CoveragePercentage,
		cov.Stats.TotalMitigations, cov.Stats.TotalLinks)
	fmt.Fprintf(w, "  well covered %d, partially covered %d, proposed only %d, unmitigated %d\n",
		len(cov.WellCoveredRisks), len(cov.PartiallyCoveredRisks), len(cov.ProposedOnlyRisks), len(cov.UnmitigatedRisks))

	gaps := report.Gaps
	section(w, "Gaps")
	gapLine(w, "critical unmitigated", gaps.CriticalUnmitigated)
	gapLine(w, "high priority unmitigated", gaps.HighPriorityUnmitigated)
	gapLine(w, "proposed only, high exposure", gaps.ProposedOnlyHighExposure)
	gapLine(w, "weak business coverage", gaps.BusinessGaps)

	if len(report.Issues) > 0 {
		fmt.Fprintln(w)
		_, _ = warnColor.Fprintf(w, "%d integrity issues, run `riskmap validate` for details\n", len(report.Issues))
	}
}

func section(w io.Writer, title string) {
	fmt.Fprintln(w)
	_, _ = headerColor.Fprintln(w, title)
}

func gapLine(w io.Writer, label string, risks []model.GapRisk) {
	if len(risks) == 0 {
		fmt.Fprintf(w, "  %s: none\n", label)
		return
	}
	ids := make([]string, 0, len(risks))
	for _, r := range risks {
		ids = append(ids, string(r.ID))
	}
	fmt.Fprintf(w, "  %s: ", label)
	_, _ = badColor.Fprintln(w, strings.Join(ids, ", "))
}
