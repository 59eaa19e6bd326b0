package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"bideorai/internal/artifact"
	"bideorai/internal/command"
	"bideorai/internal/config"
	"bideorai/internal/deps"
	"bideorai/internal/ledger"
	"bideorai/internal/logging"
	"bideorai/internal/metrics"
	"bideorai/internal/pipeline"
	"bideorai/internal/preflight"
	"bideorai/internal/services"
)

type packageOptions struct {
	input     string
	prefix    string
	bucket    string
	dryRun    bool
	episodeID string
	season    int
	episode   int
}

func newPackageCommand(ctx *commandContext) *cobra.Command {
	var opts packageOptions

	cmd := &cobra.Command{
		Use:   "package",
		Short: "Convert one input to DASH and publish it",
		Long: `Probe, transcode, package, and publish one input file.

Every external command is printed on stdout before it runs. With --dry-run the
commands are printed and nothing is executed or written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			req, err := opts.request()
			if err != nil {
				return err
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runPackage(runCtx, cfg, req, opts.dryRun, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Input media file")
	cmd.Flags().StringVarP(&opts.prefix, "prefix", "p", "", "Remote directory prefix inside the bucket")
	cmd.Flags().StringVarP(&opts.bucket, "bucket", "b", "", "Destination bucket")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print planned commands without executing them")
	cmd.Flags().StringVar(&opts.episodeID, "episode-id", "", "Series identifier used to build content/<id>/SxxEyy when --prefix is omitted")
	cmd.Flags().IntVar(&opts.season, "season", 0, "Season number for --episode-id")
	cmd.Flags().IntVar(&opts.episode, "episode", 0, "Episode number for --episode-id")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("bucket")
	cmd.MarkFlagsMutuallyExclusive("prefix", "episode-id")

	return cmd
}

func (o packageOptions) request() (pipeline.Request, error) {
	input := strings.TrimSpace(o.input)
	if input == "" {
		return pipeline.Request{}, errors.New("--input is required")
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return pipeline.Request{}, fmt.Errorf("resolve input path: %w", err)
	}

	prefix := strings.TrimSpace(o.prefix)
	if prefix == "" && strings.TrimSpace(o.episodeID) != "" {
		if prefix, err = artifact.EpisodePrefix(o.episodeID, o.season, o.episode); err != nil {
			return pipeline.Request{}, err
		}
	}
	if prefix == "" {
		return pipeline.Request{}, errors.New("either --prefix or --episode-id is required")
	}

	return pipeline.Request{Input: abs, Bucket: strings.TrimSpace(o.bucket), Prefix: prefix}, nil
}

func runPackage(ctx context.Context, cfg *config.Config, req pipeline.Request, dryRun bool, stdout io.Writer) error {
	runCfg := *cfg
	if dryRun {
		runCfg.Logging.File = ""
	}
	logger, err := logging.NewFromConfig(&runCfg)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	tools, err := deps.ResolveTools(runCfg.Tools, runCfg.UsesUploadTool())
	if err != nil {
		return err
	}

	var runner command.Runner
	var opts []pipeline.Option
	opts = append(opts, pipeline.WithLogger(logger))

	if dryRun {
		runner = command.NewDryRunRunner(stdout)
	} else {
		runner = command.NewExecRunner(stdout, logger)
		if err := runCfg.EnsureDirectories(); err != nil {
			return err
		}
		if failure, failed := preflight.FirstFailure(preflight.RunAll(&runCfg)); failed {
			return fmt.Errorf("preflight %s: %s", strings.ToLower(failure.Name), failure.Detail)
		}
		if path := runCfg.LedgerPath(); path != "" {
			store, err := ledger.Open(path)
			if err != nil {
				logger.Warn("run ledger unavailable", logging.String("path", path), logging.Error(err))
			} else {
				defer store.Close()
				opts = append(opts, pipeline.WithLedger(store))
			}
		}
		if runCfg.Metrics.TextfilePath != "" {
			opts = append(opts, pipeline.WithMetrics(metrics.NewRecorder()))
		}
	}

	p, err := pipeline.New(&runCfg, tools, runner, opts...)
	if err != nil {
		return err
	}
	report, err := p.Run(ctx, req)
	if err != nil {
		var partial *services.PartialPublishError
		if errors.As(err, &partial) {
			return fmt.Errorf("run %s: %w", shortID(report.RunID), err)
		}
		return err
	}
	if !dryRun {
		fmt.Fprintf(stdout, "Published %d artifacts to %s/%s (run %s, %s)\n",
			len(report.Artifacts), req.Bucket, req.Prefix, shortID(report.RunID), formatDuration(report.Duration()))
	}
	return nil
}
