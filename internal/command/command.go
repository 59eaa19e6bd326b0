package command

import (
	"context"
	"strings"
)

// Command describes one external tool invocation.
type Command struct {
	// Stage names the pipeline stage issuing the command.
	Stage string
	// Step optionally narrows the stage, e.g. "subtitle 2".
	Step   string
	Binary string
	Args   []string
	// Dir is the working directory; empty means the current directory.
	Dir string
}

// String renders the command as a POSIX shell command line.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, Quote(c.Binary))
	for _, arg := range c.Args {
		parts = append(parts, Quote(arg))
	}
	return strings.Join(parts, " ")
}

// Result captures the streams of a finished invocation.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Output joins stderr and stdout for diagnostics.
func (r Result) Output() string {
	stderr := strings.TrimSpace(string(r.Stderr))
	stdout := strings.TrimSpace(string(r.Stdout))
	switch {
	case stderr == "":
		return stdout
	case stdout == "":
		return stderr
	default:
		return stderr + "\n" + stdout
	}
}

// Runner executes commands. Implementations block until the tool exits.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Quote returns value quoted for a POSIX shell when needed.
func Quote(value string) string {
	if value == "" {
		return "''"
	}
	if isShellSafe(value) {
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

func isShellSafe(value string) bool {
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("@%+=:,./-_", r):
		default:
			return false
		}
	}
	return true
}
