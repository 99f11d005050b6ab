package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"platebundle/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent pipeline runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLedger(func(store *ledger.Store) error {
				runs, err := store.RecentRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						run.ID,
						run.Cycle,
						run.Stages,
						string(run.Status),
						strconv.Itoa(run.Documents),
						run.StartedAt.Local().Format(time.DateTime),
						formatDuration(run),
					})
				}
				fmt.Fprintln(out, renderTable(out,
					[]string{"Run", "Cycle", "Stages", "Status", "Docs", "Started", "Duration"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight}))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the bundles written by a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLedger(func(store *ledger.Store) error {
				run, err := store.Run(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", args[0])
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run %s: %s, cycle %s (effective %s)\n", run.ID, run.Status, run.Cycle, run.Effective)
				if run.ErrorMessage != "" {
					fmt.Fprintf(out, "Error: %s\n", run.ErrorMessage)
				}
				bundles, err := store.Bundles(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if len(bundles) == 0 {
					fmt.Fprintln(out, "No bundles recorded")
					return nil
				}
				rows := make([][]string, 0, len(bundles))
				for _, b := range bundles {
					rows = append(rows, []string{b.Name, strconv.Itoa(b.Members), formatBytes(b.Size), shortDigest(b.SHA256), b.URI})
				}
				fmt.Fprintln(out, renderTable(out, []string{"Bundle", "Members", "Size", "SHA-256", "Published"}, rows,
					[]columnAlignment{alignLeft, alignRight, alignRight}))
				return nil
			})
		},
	}
}

func formatDuration(run ledger.Run) string {
	if run.FinishedAt == nil {
		return "-"
	}
	return run.Duration().Round(time.Second).String()
}
