package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bideorai/internal/command"
	"bideorai/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify external tools and directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			runner := command.NewExecRunner(nil, logger)
			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg, runner)

			var failed []string
			rows := make([][]string, 0, len(statuses)+2)
			for _, s := range statuses {
				detail := s.Path
				if !s.Available || detail == "" {
					detail = s.Detail
				}
				rows = append(rows, []string{s.Name, yesNo(s.Available), detail})
				if !s.Available && !s.Optional {
					failed = append(failed, s.Name)
				}
			}
			for _, r := range preflight.RunAll(cfg) {
				rows = append(rows, []string{r.Name, yesNo(r.Passed), r.Detail})
				if !r.Passed {
					failed = append(failed, strings.ToLower(r.Name))
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable("Backend: "+cfg.Publish.Backend, []string{"Check", "OK", "Detail"}, rows, nil))
			if len(failed) > 0 {
				return errors.New("checks failed: " + strings.Join(failed, ", "))
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}
