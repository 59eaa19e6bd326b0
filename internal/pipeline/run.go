package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bideorai/internal/artifact"
	"bideorai/internal/logging"
	"bideorai/internal/packager"
	"bideorai/internal/plan"
	"bideorai/internal/prefixlock"
	"bideorai/internal/probe"
	"bideorai/internal/publish"
	"bideorai/internal/services"
	"bideorai/internal/transcode"
	"bideorai/internal/workdir"
)

// StatePreparing is reported as the failed stage when run setup (prefix lock,
// working directory, uploader) fails.
const StatePreparing State = "preparing"

// Run executes one request. The returned report is always populated; the
// error is non-nil exactly when the report's state is failed.
func (p *Pipeline) Run(ctx context.Context, req Request) (Report, error) {
	req.Input = strings.TrimSpace(req.Input)
	req.Bucket = strings.TrimSpace(req.Bucket)
	req.Prefix = strings.TrimSpace(req.Prefix)

	report := Report{
		RunID:          p.newID(),
		StageDurations: make(map[State]time.Duration),
		StartedAt:      time.Now(),
	}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(p.logger, "pipeline"))
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("input", req.Input),
		logging.String("bucket", req.Bucket),
		logging.String("prefix", req.Prefix),
		logging.Bool("dry_run", p.dryRun),
	)

	if err := validateRequest(req); err != nil {
		return p.finish(ctx, &report, StateValidating, err, nil)
	}

	lock, err := p.acquireLock(req)
	if err != nil {
		return p.finish(ctx, &report, StatePreparing, err, nil)
	}
	if lock != nil {
		defer func() {
			if err := lock.Release(); err != nil {
				logger.Warn("prefix lock release failed", logging.Error(err))
			}
		}()
	}

	workDir, cleanup, err := p.prepareWorkDir(report.RunID)
	if err != nil {
		return p.finish(ctx, &report, StatePreparing, err, nil)
	}
	defer cleanup(ctx)
	report.WorkDir = workDir

	uploader, err := p.resolveUploader(ctx)
	if err != nil {
		return p.finish(ctx, &report, StatePreparing, err, nil)
	}

	p.beginLedger(ctx, req, report)

	var extracted transcode.Output
	var set *artifact.Set

	stages := []struct {
		state State
		fn    func(context.Context) error
	}{
		{StateProbing, func(ctx context.Context) error {
			inv, err := probe.Probe(ctx, probe.Request{
				Input:             req.Input,
				FFprobe:           p.tools.FFprobe,
				AcceptedFormat:    p.cfg.Media.AcceptedFormat,
				AcceptedExtension: p.cfg.Media.AcceptedExtension,
				Runner:            p.runner,
				Logger:            p.logger,
			})
			report.Inventory = inv
			return err
		}},
		{StatePlanning, func(ctx context.Context) error {
			report.Plan = plan.Build(report.Inventory, plan.Targets{
				VideoCodec: p.cfg.Media.VideoCodec,
				AudioCodec: p.cfg.Media.AudioCodec,
			})
			logging.WithContext(ctx, p.logger).Info("plan built", logging.String("plan", report.Plan.String()))
			return nil
		}},
		{StateTranscoding, func(ctx context.Context) error {
			var err error
			extracted, err = p.transcoder.Run(ctx, req.Input, workDir, report.Plan)
			return err
		}},
		{StatePackaging, func(ctx context.Context) error {
			var err error
			set, err = p.packager.Run(ctx, packager.Request{
				WorkDir:      workDir,
				Intermediate: extracted.IntermediatePath,
				Subtitles:    extracted.Subtitles,
				ManifestName: packager.ManifestName(req.Input),
				BaseURL:      packager.BaseURL(p.cfg.Publish.BaseURL, req.Bucket, req.Prefix),
				Prefix:       req.Prefix,
			})
			if set != nil {
				report.Artifacts = set.Items()
			}
			return err
		}},
		{StatePublishing, func(ctx context.Context) error {
			publisher := &publish.Publisher{
				Uploader:    uploader,
				Concurrency: p.publishConcurrency(),
				Logger:      p.logger,
			}
			var err error
			report.Publish, err = publisher.Publish(ctx, req.Bucket, set)
			return err
		}},
	}

	for _, st := range stages {
		if err := p.runStage(ctx, &report, st.state, st.fn); err != nil {
			return p.finish(ctx, &report, st.state, err, &extracted)
		}
	}
	return p.finish(ctx, &report, "", nil, &extracted)
}

func (p *Pipeline) runStage(ctx context.Context, report *Report, state State, fn func(context.Context) error) error {
	report.State = state
	stageCtx := services.WithStage(ctx, string(state))
	logger := logging.WithContext(stageCtx, logging.NewComponentLogger(p.logger, "pipeline"))
	logger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	started := time.Now()
	err := fn(stageCtx)
	elapsed := time.Since(started)
	report.StageDurations[state] = elapsed
	p.metrics.ObserveStage(string(state), elapsed)

	if err != nil {
		return err
	}
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("stage_duration", elapsed),
	)
	return nil
}

// finish moves the report to its terminal state, records it, and returns
// the stage-annotated error.
func (p *Pipeline) finish(ctx context.Context, report *Report, failed State, err error, extracted *transcode.Output) (Report, error) {
	report.FinishedAt = time.Now()
	logger := logging.WithContext(ctx, logging.NewComponentLogger(p.logger, "pipeline"))

	if err != nil {
		report.State = StateFailed
		report.FailedStage = failed
		err = annotate(failed, err)
		logger.Error("run failed",
			logging.String(logging.FieldEventType, "run_failed"),
			logging.String("failed_stage", string(failed)),
			logging.Duration("run_duration", report.Duration()),
			logging.Error(err),
		)
	} else {
		report.State = StateDone
		logger.Info("run finished",
			logging.String(logging.FieldEventType, "run_complete"),
			logging.Int("artifacts", len(report.Artifacts)),
			logging.Duration("run_duration", report.Duration()),
		)
	}

	p.finishLedger(ctx, *report, err)
	p.recordMetrics(ctx, *report, extracted)
	return *report, err
}

// annotate prefixes errors that do not already name their stage.
func annotate(state State, err error) error {
	var stageErr *services.StageError
	if errors.As(err, &stageErr) && stageErr.Stage == string(state) {
		return err
	}
	return fmt.Errorf("%s: %w", state, err)
}

func validateRequest(req Request) error {
	if !filepath.IsAbs(req.Input) {
		return services.Rejectf("input path %q is not absolute", req.Input)
	}
	if req.Bucket == "" {
		return services.Wrap(services.ErrInvalidRequest, string(StateValidating), "validate", "bucket required", nil)
	}
	return artifact.ValidatePrefix(req.Prefix)
}

func (p *Pipeline) acquireLock(req Request) (*prefixlock.Lock, error) {
	if p.dryRun || !p.cfg.Publish.LockPrefix {
		return nil, nil
	}
	dir := p.cfg.LockDir()
	if dir == "" {
		return nil, nil
	}
	return prefixlock.Acquire(dir, req.Bucket, req.Prefix)
}

// prepareWorkDir creates the run's working directory exclusively. Dry runs
// get a fixed path that is never created.
func (p *Pipeline) prepareWorkDir(runID string) (string, func(context.Context), error) {
	root := p.cfg.Paths.WorkRoot
	if root == "" {
		root = os.TempDir()
	}
	if p.dryRun {
		return filepath.Join(root, DryRunDirName), func(context.Context) {}, nil
	}

	dir, err := workdir.Create(root, runID)
	if err != nil {
		return "", nil, err
	}
	return dir, func(ctx context.Context) { workdir.Remove(ctx, dir, p.logger) }, nil
}

func (p *Pipeline) resolveUploader(ctx context.Context) (publish.Uploader, error) {
	if p.uploader != nil {
		return p.uploader, nil
	}
	u, err := publish.NewUploader(ctx, p.cfg, p.tools.B2, p.runner)
	if err != nil {
		return nil, fmt.Errorf("configure uploader: %w", err)
	}
	p.uploader = u
	return u, nil
}

// publishConcurrency forces sequential uploads in dry-run so printed output
// keeps artifact order.
func (p *Pipeline) publishConcurrency() int {
	if p.dryRun || p.cfg.Publish.Concurrency < 1 {
		return 1
	}
	return p.cfg.Publish.Concurrency
}
