package main

import (
	"errors"
	"os"
	"strings"
	"testing"

	"bideorai/internal/services"
)

func TestPackageDryRunPrintsCommandsOnly(t *testing.T) {
	env := setupCLITestEnv(t)
	input := env.writeInput(t, "pilot.mkv")
	args := []string{"package", "--input", input, "--bucket", "media", "--prefix", "content/pilot", "--dry-run"}

	first, _, err := runCLI(t, args, env.configPath)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	second, _, err := runCLI(t, args, env.configPath)
	if err != nil {
		t.Fatalf("second dry run: %v", err)
	}
	if first != second {
		t.Fatalf("dry-run output not deterministic:\n%s\n---\n%s", first, second)
	}

	requireContains(t, first, env.cfg.Tools.FFprobe+" -v quiet -print_format json")
	requireContains(t, first, "--mpd_output pilot.mpd --base_urls https://f000.backblazeb2.com/file/media/content/pilot/")
	requireContains(t, first, "upload-file media")

	entries, err := os.ReadDir(env.cfg.Paths.WorkRoot)
	if err != nil {
		t.Fatalf("read work root: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("dry run created %d entries in the work root", len(entries))
	}
	if _, err := os.Stat(env.cfg.Paths.StateDir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("dry run created the state directory (stat err=%v)", err)
	}
	if _, err := os.Stat(env.uploadLog); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("dry run executed the upload tool")
	}
}

func TestPackagePublishesAndRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	input := env.writeInput(t, "pilot.mkv")

	out, _, err := runCLI(t, []string{
		"package", "--input", input, "--bucket", "media",
		"--episode-id", "pilot", "--season", "1", "--episode", "2",
	}, env.configPath)
	if err != nil {
		t.Fatalf("package: %v", err)
	}
	requireContains(t, out, "Published 4 artifacts to media/content/pilot/S01E02")
	requireContains(t, out, "-c:v copy -c:a copy")

	uploads, err := os.ReadFile(env.uploadLog)
	if err != nil {
		t.Fatalf("read upload log: %v", err)
	}
	want := strings.Join([]string{
		"content/pilot/S01E02/video.mp4",
		"content/pilot/S01E02/audio.mp4",
		"content/pilot/S01E02/text_0_eng.vtt",
		"content/pilot/S01E02/pilot.mpd",
	}, "\n") + "\n"
	if string(uploads) != want {
		t.Fatalf("unexpected uploads:\n%s", uploads)
	}

	entries, err := os.ReadDir(env.cfg.Paths.WorkRoot)
	if err != nil {
		t.Fatalf("read work root: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("working directory not cleaned up: %d entries", len(entries))
	}

	history, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, history, "media/content/pilot/S01E02")
	requireContains(t, history, "done")
}

func TestPackageRejectsInvalidInput(t *testing.T) {
	env := setupCLITestEnv(t)
	input := env.writeInput(t, "pilot.avi")

	_, _, err := runCLI(t, []string{"package", "--input", input, "--bucket", "media", "--prefix", "x"}, env.configPath)
	if !errors.Is(err, services.ErrInputRejected) {
		t.Fatalf("expected input rejection, got %v", err)
	}
	if _, statErr := os.Stat(env.uploadLog); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("upload tool ran for a rejected input")
	}
}

func TestPackageReportsMissingTools(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Tools.Packager = "bideorai-test-missing-packager"
	writeTestConfig(t, env.configPath, env.cfg)
	input := env.writeInput(t, "pilot.mkv")

	_, _, err := runCLI(t, []string{"package", "--input", input, "--bucket", "media", "--prefix", "x", "--dry-run"}, env.configPath)
	if !errors.Is(err, services.ErrToolUnavailable) {
		t.Fatalf("expected tool unavailable, got %v", err)
	}
	requireContains(t, err.Error(), "packager")
}

func TestPackageRequiresPrefixOrEpisode(t *testing.T) {
	env := setupCLITestEnv(t)
	input := env.writeInput(t, "pilot.mkv")

	_, _, err := runCLI(t, []string{"package", "--input", input, "--bucket", "media"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "--prefix") {
		t.Fatalf("expected prefix error, got %v", err)
	}
}
