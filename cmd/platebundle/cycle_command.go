package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"platebundle/internal/airac"
	"platebundle/internal/services"
)

func newCycleCommand(ctx *commandContext) *cobra.Command {
	var (
		offset int
		at     string
	)

	cmd := &cobra.Command{
		Use:         "cycle",
		Short:       "Show the current and effective AIRAC cycles",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("offset") {
				if cfg, err := ctx.ensureConfig(); err == nil {
					offset = cfg.Cycle.Offset
				}
			}

			now := airac.Now()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("parse --at: %w", err)
				}
				now = parsed
			}

			current, effective := airac.CurrentAndEffective(now, offset)
			if current == "" {
				return services.Wrap(services.ErrConfiguration, "cycle", "resolve",
					fmt.Sprintf("no cycle anchor known for %s with offset %d", now.UTC().Format(time.DateOnly), offset), nil)
			}

			rows := [][]string{
				{"current", current, airac.VersionStart(current)},
				{"effective", effective, airac.VersionStart(effective)},
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Slot", "Cycle", "Starts"}, rows, nil))
			fmt.Fprintf(out, "Offset: %d periods\n", offset)
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "Offset in 28-day periods (defaults to cycle.offset)")
	cmd.Flags().StringVar(&at, "at", "", "Evaluate at this RFC3339 time instead of now")
	return cmd
}
