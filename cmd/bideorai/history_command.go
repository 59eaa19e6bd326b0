package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"bideorai/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded packaging runs",
		Long:  "List recent runs, or show one run with its artifacts when a run ID (or unique prefix) is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.LedgerPath()
			out := cmd.OutOrStdout()
			if path == "" {
				return errors.New("history requires paths.state_dir to be configured")
			}
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			store, err := ledger.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				run, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("run %s: %w", args[0], err)
				}
				fmt.Fprintln(out, renderRun(run))
				return nil
			}

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					shortID(r.ID),
					formatTime(r.StartedAt),
					r.State,
					orDash(r.FailedStage),
					r.Bucket + "/" + r.Prefix,
					formatDuration(r.Duration()),
				})
			}
			fmt.Fprintln(out, renderTable("", []string{"Run", "Started", "State", "Failed Stage", "Destination", "Duration"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	return cmd
}

func renderRun(run *ledger.Run) string {
	summary := [][]string{
		{"Run", run.ID},
		{"Input", run.Input},
		{"Destination", run.Bucket + "/" + run.Prefix},
		{"State", run.State},
		{"Failed Stage", orDash(run.FailedStage)},
		{"Plan", orDash(run.Plan)},
		{"Started", formatTime(run.StartedAt)},
		{"Duration", formatDuration(run.Duration())},
	}
	if run.ErrorMessage != "" {
		summary = append(summary, []string{"Error", run.ErrorMessage})
	}
	text := renderTable("", []string{"Field", "Value"}, summary, nil)
	if len(run.Artifacts) == 0 {
		return text
	}

	rows := make([][]string, 0, len(run.Artifacts))
	for _, a := range run.Artifacts {
		rows = append(rows, []string{strconv.Itoa(a.Position + 1), a.Kind, a.RemotePath, a.Status, orDash(a.ErrorMessage)})
	}
	return text + "\n" + renderTable("Artifacts", []string{"#", "Kind", "Remote Path", "Status", "Error"}, rows,
		[]columnAlignment{alignRight})
}
