package transcode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"bideorai/internal/command"
	"bideorai/internal/logging"
	"bideorai/internal/plan"
	"bideorai/internal/services"
)

// IntermediateName is the file name of the transcoded container inside the
// working directory.
const IntermediateName = "converted.mp4"

const stageName = "transcoding"

// ExtractedSubtitle pairs a subtitle selection with its extracted file.
type ExtractedSubtitle struct {
	Selection plan.SubtitleSelection
	Path      string
}

// Output lists the files written into the working directory.
type Output struct {
	IntermediatePath string
	Subtitles        []ExtractedSubtitle
}

// Executor runs ffmpeg according to a TranscodePlan.
type Executor struct {
	FFmpeg       string
	VideoEncoder string
	AudioEncoder string
	Runner       command.Runner
	Logger       *slog.Logger
}

// Run transcodes input into workDir. Files already extracted when a later
// subtitle fails are left for working-directory cleanup.
func (e *Executor) Run(ctx context.Context, input, workDir string, p plan.TranscodePlan) (Output, error) {
	if e == nil || e.Runner == nil {
		return Output{}, services.Wrap(services.ErrInvalidRequest, stageName, "run", "executor not configured", nil)
	}
	if strings.TrimSpace(workDir) == "" {
		return Output{}, services.Wrap(services.ErrInvalidRequest, stageName, "run", "working directory required", nil)
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(e.Logger, "transcode"))

	out := Output{IntermediatePath: filepath.Join(workDir, IntermediateName)}
	started := time.Now()
	if _, err := e.Runner.Run(ctx, e.mainCommand(input, out.IntermediatePath, p)); err != nil {
		return Output{}, annotate(err, "main transcode")
	}
	logger.Info("intermediate written",
		logging.String("path", out.IntermediatePath),
		logging.String("video", string(p.Video)),
		logging.String("audio", string(p.Audio)),
		logging.Duration("elapsed", time.Since(started)),
	)

	for _, sel := range p.Subtitles {
		dest := filepath.Join(workDir, SubtitleName(sel.Index))
		step := fmt.Sprintf("subtitle %d", sel.Index)
		if _, err := e.Runner.Run(ctx, e.subtitleCommand(input, dest, sel, step)); err != nil {
			return out, annotate(err, step)
		}
		out.Subtitles = append(out.Subtitles, ExtractedSubtitle{Selection: sel, Path: dest})
		logger.Debug("subtitle extracted", logging.Int("subtitle_index", sel.Index), logging.String("path", dest))
	}
	return out, nil
}

// SubtitleName is the extracted WebVTT file name for a subtitle index.
func SubtitleName(index int) string {
	return fmt.Sprintf("subtitle_%d.vtt", index)
}

func (e *Executor) mainCommand(input, dest string, p plan.TranscodePlan) command.Command {
	return command.Command{
		Stage:  stageName,
		Step:   "main transcode",
		Binary: e.ffmpeg(),
		Args: []string{
			"-nostdin", "-y",
			"-i", input,
			"-map", streamSpec(p.VideoStream),
			"-map", streamSpec(p.AudioStream),
			"-c:v", codecArg(p.Video, e.VideoEncoder, "libx264"),
			"-c:a", codecArg(p.Audio, e.AudioEncoder, "aac"),
			dest,
		},
	}
}

// streamSpec addresses a stream by container index. Type selectors such as
// 0:v:0 would also match attached pictures.
func streamSpec(index int) string {
	return fmt.Sprintf("0:%d", index)
}

func (e *Executor) subtitleCommand(input, dest string, sel plan.SubtitleSelection, step string) command.Command {
	return command.Command{
		Stage:  stageName,
		Step:   step,
		Binary: e.ffmpeg(),
		Args: []string{
			"-nostdin", "-y",
			"-i", input,
			"-map", fmt.Sprintf("0:s:%d", sel.Index),
			"-c:s", "webvtt",
			dest,
		},
	}
}

func (e *Executor) ffmpeg() string {
	if strings.TrimSpace(e.FFmpeg) == "" {
		return "ffmpeg"
	}
	return e.FFmpeg
}

func codecArg(action plan.Action, encoder, fallback string) string {
	if action == plan.ActionCopy {
		return "copy"
	}
	if strings.TrimSpace(encoder) == "" {
		return fallback
	}
	return encoder
}

// annotate ensures the failing step is named on stage errors.
func annotate(err error, step string) error {
	var stageErr *services.StageError
	if errors.As(err, &stageErr) {
		if stageErr.Stage == "" {
			stageErr.Stage = stageName
		}
		if stageErr.Step == "" {
			stageErr.Step = step
		}
		return err
	}
	return &services.StageError{Stage: stageName, Step: step, Err: err}
}
