package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"bideorai/internal/logging"
	"bideorai/internal/services"
)

// ExecRunner runs commands with os/exec. No timeout is applied beyond the
// caller's context.
type ExecRunner struct {
	// Echo receives each command line before it starts. Nil disables echo.
	Echo   io.Writer
	Logger *slog.Logger

	mu sync.Mutex
}

// NewExecRunner constructs an ExecRunner that echoes to the provided writer.
func NewExecRunner(echo io.Writer, logger *slog.Logger) *ExecRunner {
	return &ExecRunner{Echo: echo, Logger: logging.NewComponentLogger(logger, "command")}
}

// Run executes cmd and waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	if cmd.Binary == "" {
		return Result{}, services.Wrap(services.ErrInvalidRequest, cmd.Stage, "run command", "binary not set", nil)
	}
	r.echo(cmd)

	execCmd := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec
	execCmd.Dir = cmd.Dir
	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	started := time.Now()
	err := execCmd.Run()
	result := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if execCmd.ProcessState != nil {
		result.ExitCode = execCmd.ProcessState.ExitCode()
	}

	logger := logging.WithContext(ctx, r.logger())
	logger.Debug("command finished",
		logging.String("binary", cmd.Binary),
		logging.Int("exit_code", result.ExitCode),
		logging.Duration("elapsed", time.Since(started)),
	)

	if err == nil {
		return result, nil
	}

	stageErr := &services.StageError{
		Stage:  cmd.Stage,
		Step:   cmd.Step,
		Output: result.Output(),
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && result.ExitCode > 0 {
		stageErr.ExitStatus = result.ExitCode
		stageErr.Err = fmt.Errorf("%s exited with status %d", cmd.Binary, result.ExitCode)
	} else {
		stageErr.Err = err
	}
	return result, stageErr
}

func (r *ExecRunner) echo(cmd Command) {
	if r.Echo == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintln(r.Echo, cmd.String())
}

func (r *ExecRunner) logger() *slog.Logger {
	if r.Logger == nil {
		return logging.NewNop()
	}
	return r.Logger
}

// DryRunRunner prints commands instead of executing them. Output depends only
// on the commands received.
type DryRunRunner struct {
	Out io.Writer

	mu sync.Mutex
}

// NewDryRunRunner constructs a DryRunRunner writing to out.
func NewDryRunRunner(out io.Writer) *DryRunRunner {
	return &DryRunRunner{Out: out}
}

// Run prints cmd and reports success without side effects.
func (r *DryRunRunner) Run(_ context.Context, cmd Command) (Result, error) {
	r.Print(cmd.String())
	return Result{}, nil
}

// Print writes an arbitrary planned action line, used by in-process
// operations that have no command line of their own.
func (r *DryRunRunner) Print(line string) {
	if r.Out == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintln(r.Out, line)
}

// IsDryRun reports whether runner only prints commands.
func IsDryRun(runner Runner) bool {
	_, ok := runner.(*DryRunRunner)
	return ok
}
