package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"platebundle/internal/ledger"
	"platebundle/internal/packager"
	"platebundle/internal/workflow"
)

func newPipelineCommands(ctx *commandContext) []*cobra.Command {
	plates := &cobra.Command{
		Use:   "plates",
		Short: "Convert every plate in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx, workflow.NewStageSet(workflow.StagePlates))
		},
	}

	supplements := &cobra.Command{
		Use:   "supplements",
		Short: "Convert chart supplement pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx, workflow.NewStageSet(workflow.StageSupplements))
		},
	}

	pkg := &cobra.Command{
		Use:       "package [plates|supplements]",
		Short:     "Rebuild bundles and manifests from converted files",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{packager.KindPlates, packager.KindSupplements},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx, workflow.NewStageSet(workflow.StagePackage), workflow.WithBundleKinds(args...))
		},
	}

	var skipPublish bool
	run := &cobra.Command{
		Use:   "run",
		Short: "Convert, package and publish the current cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stages := workflow.NewStageSet(workflow.AllStages()...)
			if skipPublish {
				delete(stages, workflow.StagePublish)
			}
			return runPipeline(cmd, ctx, stages)
		},
	}
	run.Flags().BoolVar(&skipPublish, "no-publish", false, "Skip uploading bundles")

	return []*cobra.Command{plates, supplements, pkg, run}
}

func runPipeline(cmd *cobra.Command, ctx *commandContext, stages workflow.StageSet, opts ...workflow.ManagerOption) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	return ctx.withRunLock(func() error {
		return ctx.withLedger(func(store *ledger.Store) error {
			if stages[workflow.StagePublish] {
				publisher, err := workflow.NewPublisher(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				if publisher != nil {
					opts = append(opts, workflow.WithPublisher(publisher))
				}
			}
			mgr, err := workflow.NewManager(cfg, store, logger, opts...)
			if err != nil {
				return err
			}
			report, runErr := mgr.Run(cmd.Context(), stages)
			if report != nil {
				printReport(cmd.OutOrStdout(), report)
			}
			return runErr
		})
	})
}

func printReport(out io.Writer, report *workflow.Report) {
	fmt.Fprintf(out, "Run %s (cycle %s, stages %s)\n", report.RunID, report.Cycle, report.Stages)
	if report.Documents > 0 || report.Skipped > 0 {
		fmt.Fprintf(out, "Converted %d documents, skipped %d missing sources\n", report.Documents, report.Skipped)
	}
	if len(report.Bundles) == 0 {
		return
	}
	rows := make([][]string, 0, len(report.Bundles))
	for _, b := range report.Bundles {
		if len(b.Members) == 0 {
			continue
		}
		rows = append(rows, []string{b.Name, strconv.Itoa(len(b.Members)), formatBytes(b.Size), shortDigest(b.SHA256)})
	}
	fmt.Fprintf(out, "Wrote %d bundles (%d non-empty)\n", len(report.Bundles), len(rows))
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable(out, []string{"Bundle", "Members", "Size", "SHA-256"}, rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft}))
	}
	if len(report.URIs) > 0 {
		fmt.Fprintf(out, "Published %d objects\n", len(report.URIs))
	}
}

func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}

func formatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
