package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInputRejected   = errors.New("input rejected")
	ErrToolUnavailable = errors.New("tool unavailable")
	ErrStageFailed     = errors.New("stage failed")
	ErrPartialPublish  = errors.New("partial publish")
	ErrInvalidRequest  = errors.New("invalid request")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrStageFailed
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// InputRejectedError reports a source container that failed inventory
// validation. It is never retried.
type InputRejectedError struct {
	Reason string
}

func (e *InputRejectedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInputRejected, e.Reason)
}

func (e *InputRejectedError) Is(target error) bool { return target == ErrInputRejected }

// Rejectf builds an InputRejectedError with a formatted reason.
func Rejectf(format string, args ...any) error {
	return &InputRejectedError{Reason: fmt.Sprintf(format, args...)}
}

// MissingTool describes one external binary that could not be resolved.
type MissingTool struct {
	Name    string
	Command string
	Detail  string
}

// ToolUnavailableError lists every required tool that could not be located.
type ToolUnavailableError struct {
	Missing []MissingTool
}

func (e *ToolUnavailableError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		detail := strings.TrimSpace(m.Detail)
		if detail == "" {
			detail = "not found"
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", m.Name, detail))
	}
	return fmt.Sprintf("%s: %s", ErrToolUnavailable, strings.Join(parts, ", "))
}

func (e *ToolUnavailableError) Is(target error) bool { return target == ErrToolUnavailable }

// StageError reports an external invocation that exited unsuccessfully.
// Output holds the tool's captured diagnostics verbatim.
type StageError struct {
	Stage      string
	Step       string
	ExitStatus int
	Output     string
	Err        error
}

func (e *StageError) Error() string {
	var b strings.Builder
	b.WriteString(e.Stage)
	if e.Step != "" {
		b.WriteString(" (")
		b.WriteString(e.Step)
		b.WriteString(")")
	}
	b.WriteString(" failed")
	if e.ExitStatus != 0 {
		fmt.Fprintf(&b, ": exit status %d", e.ExitStatus)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		b.WriteString("\n")
		b.WriteString(out)
	}
	return b.String()
}

func (e *StageError) Is(target error) bool { return target == ErrStageFailed }

func (e *StageError) Unwrap() error { return e.Err }

// PublishFailure identifies one artifact whose upload failed.
type PublishFailure struct {
	LocalPath string
	RemoteKey string
	Err       error
}

// PartialPublishError reports uploads that failed after packaging succeeded.
// Succeeded uploads are left in place; callers re-run the publish step.
type PartialPublishError struct {
	Failed    []PublishFailure
	Succeeded []string
}

func (e *PartialPublishError) Error() string {
	lines := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		lines = append(lines, fmt.Sprintf("  %s: %v", f.RemoteKey, f.Err))
	}
	return fmt.Sprintf("%s: %d of %d uploads failed\n%s",
		ErrPartialPublish, len(e.Failed), len(e.Failed)+len(e.Succeeded), strings.Join(lines, "\n"))
}

func (e *PartialPublishError) Is(target error) bool { return target == ErrPartialPublish }

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
