package publish

import (
	"context"
	"strings"

	"bideorai/internal/artifact"
	"bideorai/internal/command"
)

// B2CLIUploader uploads with the Backblaze b2 command-line tool.
type B2CLIUploader struct {
	Binary string
	Runner command.Runner
}

// Upload runs `b2 upload-file <bucket> <local> <remote>`.
func (u *B2CLIUploader) Upload(ctx context.Context, bucket string, a artifact.Artifact) error {
	binary := strings.TrimSpace(u.Binary)
	if binary == "" {
		binary = "b2"
	}
	_, err := u.Runner.Run(ctx, command.Command{
		Stage:  "publishing",
		Step:   a.RemotePath,
		Binary: binary,
		Args:   []string{"upload-file", bucket, a.LocalPath, a.RemotePath},
	})
	return err
}
