package command_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bideorai/internal/command"
	"bideorai/internal/services"
)

func TestCommandStringQuotesArguments(t *testing.T) {
	cmd := command.Command{
		Binary: "ffmpeg",
		Args:   []string{"-i", "/media/My Show's Pilot.mkv", "-c:v", "copy", ""},
	}
	want := `ffmpeg -i '/media/My Show'"'"'s Pilot.mkv' -c:v copy ''`
	if got := cmd.String(); got != want {
		t.Fatalf("unexpected command string\n got: %s\nwant: %s", got, want)
	}
}

func TestQuoteLeavesSafeValues(t *testing.T) {
	for _, value := range []string{"in=converted.mp4,stream=audio,output=audio.mp4", "content/1/S01E01/video.mp4", "https://f000.backblazeb2.com/file/b/p/"} {
		if got := command.Quote(value); got != value {
			t.Fatalf("expected %q unquoted, got %q", value, got)
		}
	}
}

func TestDryRunRunnerPrintsWithoutExecuting(t *testing.T) {
	var out bytes.Buffer
	runner := command.NewDryRunRunner(&out)
	marker := filepath.Join(t.TempDir(), "marker")

	result, err := runner.Run(context.Background(), command.Command{Binary: "touch", Args: []string{marker}})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("expected zero exit code, got %d", result.ExitCode)
	}
	if _, err := os.Stat(marker); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected marker to be absent, stat err=%v", err)
	}
	if got := out.String(); got != "touch "+marker+"\n" {
		t.Fatalf("unexpected dry-run output %q", got)
	}
	if !command.IsDryRun(runner) {
		t.Fatal("expected IsDryRun to report true")
	}
}

func TestExecRunnerCapturesOutputAndEchoes(t *testing.T) {
	var echo bytes.Buffer
	runner := command.NewExecRunner(&echo, nil)
	dir := t.TempDir()

	result, err := runner.Run(context.Background(), command.Command{
		Stage:  "probing",
		Binary: "sh",
		Args:   []string{"-c", "pwd; echo warn >&2"},
		Dir:    dir,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	resolved, _ := filepath.EvalSymlinks(dir)
	if got := strings.TrimSpace(string(result.Stdout)); got != dir && got != resolved {
		t.Fatalf("expected command to run in %s, got %q", dir, got)
	}
	if strings.TrimSpace(string(result.Stderr)) != "warn" {
		t.Fatalf("unexpected stderr %q", result.Stderr)
	}
	if !strings.HasPrefix(echo.String(), "sh -c ") {
		t.Fatalf("expected echoed command, got %q", echo.String())
	}
}

func TestExecRunnerReportsStageError(t *testing.T) {
	runner := command.NewExecRunner(nil, nil)

	_, err := runner.Run(context.Background(), command.Command{
		Stage:  "packaging",
		Binary: "sh",
		Args:   []string{"-c", "echo 'bad descriptor' >&2; exit 3"},
	})
	if !errors.Is(err, services.ErrStageFailed) {
		t.Fatalf("expected ErrStageFailed, got %v", err)
	}
	var stageErr *services.StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageError, got %T", err)
	}
	if stageErr.Stage != "packaging" || stageErr.ExitStatus != 3 {
		t.Fatalf("unexpected stage error %+v", stageErr)
	}
	if !strings.Contains(stageErr.Output, "bad descriptor") {
		t.Fatalf("expected tool output in error, got %q", stageErr.Output)
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	runner := command.NewExecRunner(nil, nil)
	_, err := runner.Run(context.Background(), command.Command{Stage: "probing", Binary: filepath.Join(t.TempDir(), "missing")})
	if !errors.Is(err, services.ErrStageFailed) {
		t.Fatalf("expected ErrStageFailed for missing binary, got %v", err)
	}
}
