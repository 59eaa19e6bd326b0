// Package workdir manages the per-run working directories under the work
// root: exclusive creation, best-effort removal, and sweeping directories
// left behind by interrupted runs.
package workdir

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bideorai/internal/logging"
)

// Prefix starts every run directory name.
const Prefix = "bideorai-"

// DryRunName is the directory name reported by dry runs. It is never created.
const DryRunName = Prefix + "dry-run"

// Path returns the working directory for runID under root.
func Path(root, runID string) string {
	return filepath.Join(root, Prefix+runID)
}

// Create makes the working directory for runID. It fails if the directory
// already exists.
func Create(root, runID string) (string, error) {
	if strings.TrimSpace(runID) == "" {
		return "", fmt.Errorf("create working directory: run id required")
	}
	dir := Path(root, runID)
	if err := os.Mkdir(dir, 0o750); err != nil {
		return "", fmt.Errorf("create working directory: %w", err)
	}
	return dir, nil
}

// Remove deletes dir and everything in it. Failures are logged at warn and
// otherwise ignored.
func Remove(ctx context.Context, dir string, logger *slog.Logger) {
	if strings.TrimSpace(dir) == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		logging.WithContext(ctx, logging.NewComponentLogger(logger, "workdir")).Warn(
			"working directory cleanup failed",
			logging.String("work_dir", dir),
			logging.Error(err),
			logging.String(logging.FieldEventType, "workdir_cleanup_failed"),
		)
	}
}

// CleanResult contains the outcome of a stale directory sweep.
type CleanResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes run directories under root whose modification time is
// older than maxAge. Entries without the run prefix are never touched.
func CleanStale(ctx context.Context, root string, maxAge time.Duration, logger *slog.Logger) CleanResult {
	result := CleanResult{}
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "workdir"))

	dirs, err := List(root)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: root, Error: err})
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, dir := range dirs {
		if !dir.ModTime.Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(dir.Path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dir.Path, Error: err})
			logger.Warn("failed to remove stale working directory",
				logging.String("path", dir.Path),
				logging.Error(err),
				logging.String(logging.FieldEventType, "workdir_cleanup_failed"),
			)
			continue
		}
		result.Removed = append(result.Removed, dir.Path)
		logger.Info("removed stale working directory",
			logging.String("path", dir.Path),
			logging.Duration("age", time.Since(dir.ModTime)),
			logging.String(logging.FieldEventType, "workdir_cleanup"),
		)
	}
	return result
}

// DirInfo contains metadata about a run directory.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// List returns the run directories under root, oldest first. A missing root
// yields no entries.
func List(root string) ([]DirInfo, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), Prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirPath := filepath.Join(root, entry.Name())
		size, _ := dirSize(dirPath)
		dirs = append(dirs, DirInfo{
			Name:    entry.Name(),
			Path:    dirPath,
			ModTime: info.ModTime(),
			Size:    size,
		})
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].ModTime.Before(dirs[j].ModTime) })
	return dirs, nil
}

func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
