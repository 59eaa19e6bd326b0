package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"bideorai/internal/command"
	"bideorai/internal/config"
	"bideorai/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external tools for the given config. The
// encoder check runs only when ffmpeg itself resolved.
func CheckSystemDeps(ctx context.Context, cfg *config.Config, runner command.Runner) []deps.Status {
	statuses := deps.CheckBinaries(deps.Requirements(cfg.Tools, cfg.UsesUploadTool()))
	for _, status := range statuses {
		if status.Name == "ffmpeg" && status.Available && runner != nil {
			statuses = append(statuses, deps.CheckFFmpegEncoders(ctx, runner, status.Path, cfg.Media.VideoEncoder, cfg.Media.AudioEncoder, "webvtt"))
			break
		}
	}
	return statuses
}
