package pipeline

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"bideorai/internal/command"
	"bideorai/internal/config"
	"bideorai/internal/deps"
	"bideorai/internal/ledger"
	"bideorai/internal/logging"
	"bideorai/internal/metrics"
	"bideorai/internal/packager"
	"bideorai/internal/publish"
	"bideorai/internal/transcode"
	"bideorai/internal/workdir"
)

// DryRunDirName is the working directory name used, but never created, by
// dry runs.
const DryRunDirName = workdir.DryRunName

// Pipeline runs packaging requests against one configuration and tool set.
type Pipeline struct {
	cfg    *config.Config
	tools  deps.Tools
	runner command.Runner
	dryRun bool
	logger *slog.Logger

	transcoder Transcoder
	packager   Packager
	uploader   publish.Uploader
	ledger     *ledger.Store
	metrics    *metrics.Recorder
	newID      func() string
}

// Option configures optional Pipeline collaborators.
type Option func(*Pipeline)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithTranscoder replaces the ffmpeg-backed transcoder.
func WithTranscoder(t Transcoder) Option {
	return func(p *Pipeline) { p.transcoder = t }
}

// WithPackager replaces the Shaka packager adapter.
func WithPackager(pk Packager) Option {
	return func(p *Pipeline) { p.packager = pk }
}

// WithUploader sets the uploader. Without one the configured backend is
// built when a run starts.
func WithUploader(u publish.Uploader) Option {
	return func(p *Pipeline) { p.uploader = u }
}

// WithLedger records runs in store. Dry runs never touch it.
func WithLedger(store *ledger.Store) Option {
	return func(p *Pipeline) { p.ledger = store }
}

// WithMetrics records stage and run metrics. Dry runs never touch it.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(p *Pipeline) { p.metrics = rec }
}

// WithIDGenerator overrides run ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(p *Pipeline) { p.newID = fn }
}

// New constructs a Pipeline. A dry-run runner puts the whole pipeline in
// dry-run mode.
func New(cfg *config.Config, tools deps.Tools, runner command.Runner, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: config required")
	}
	if runner == nil {
		return nil, errors.New("pipeline: command runner required")
	}
	p := &Pipeline{
		cfg:    cfg,
		tools:  tools,
		runner: runner,
		dryRun: command.IsDryRun(runner),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logging.NewNop()
	}
	if p.transcoder == nil {
		p.transcoder = &transcode.Executor{
			FFmpeg:       tools.FFmpeg,
			VideoEncoder: cfg.Media.VideoEncoder,
			AudioEncoder: cfg.Media.AudioEncoder,
			Runner:       runner,
			Logger:       p.logger,
		}
	}
	if p.packager == nil {
		p.packager = &packager.Packager{Binary: tools.Packager, Runner: runner, Logger: p.logger}
	}
	if p.dryRun {
		p.ledger = nil
		p.metrics = nil
	}
	return p, nil
}

// DryRun reports whether the pipeline only prints commands.
func (p *Pipeline) DryRun() bool {
	return p.dryRun
}
