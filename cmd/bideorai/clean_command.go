package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"bideorai/internal/workdir"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	var list bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove working directories left behind by interrupted runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if list {
				dirs, err := workdir.List(cfg.Paths.WorkRoot)
				if err != nil {
					return fmt.Errorf("list working directories: %w", err)
				}
				if len(dirs) == 0 {
					fmt.Fprintln(out, "No working directories found")
					return nil
				}
				rows := make([][]string, 0, len(dirs))
				for _, d := range dirs {
					rows = append(rows, []string{d.Name, humanize.Time(d.ModTime), humanize.Bytes(uint64(d.Size))})
				}
				fmt.Fprintln(out, renderTable(cfg.Paths.WorkRoot, []string{"Directory", "Modified", "Size"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight}))
				return nil
			}

			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			result := workdir.CleanStale(cmd.Context(), cfg.Paths.WorkRoot, olderThan, logger)
			for _, path := range result.Removed {
				fmt.Fprintf(out, "Removed %s\n", path)
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d working directories could not be removed; first: %s: %w",
					len(result.Errors), result.Errors[0].Path, result.Errors[0].Error)
			}
			if len(result.Removed) == 0 {
				fmt.Fprintln(out, "Nothing to clean")
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Only remove directories not modified within this duration")
	cmd.Flags().BoolVar(&list, "list", false, "List working directories without removing them")
	return cmd
}
