package publish

import (
	"context"
	"fmt"

	"bideorai/internal/command"
	"bideorai/internal/config"
)

// NewUploader selects the uploader for the configured backend. With a
// dry-run runner neither backend touches the network.
func NewUploader(ctx context.Context, cfg *config.Config, b2Binary string, runner command.Runner) (Uploader, error) {
	switch cfg.Publish.Backend {
	case config.BackendB2:
		return &B2CLIUploader{Binary: b2Binary, Runner: runner}, nil
	case config.BackendS3:
		if dry, ok := runner.(*command.DryRunRunner); ok {
			return &S3Uploader{DryRun: dry}, nil
		}
		client, err := NewS3Client(ctx, cfg.Publish.S3)
		if err != nil {
			return nil, err
		}
		return &S3Uploader{Client: client}, nil
	default:
		return nil, fmt.Errorf("unsupported publish backend %q", cfg.Publish.Backend)
	}
}
