package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"bideorai/internal/command"
	"bideorai/internal/language"
	"bideorai/internal/logging"
	"bideorai/internal/media/ffprobe"
	"bideorai/internal/services"
)

// Stream codec types.
const (
	TypeVideo    = "video"
	TypeAudio    = "audio"
	TypeSubtitle = "subtitle"
)

// UnknownCodec is reported for streams whose codec was not inspected.
const UnknownCodec = "unknown"

// StreamInfo describes one elementary stream.
type StreamInfo struct {
	CodecType string
	CodecName string
	// Language is the canonical ISO 639-2 code, or "" when unspecified.
	Language string
	// TypeIndex is the stream's position among streams of the same type.
	TypeIndex int
	// Index is ffprobe's container-wide stream index.
	Index int
}

// MediaInventory groups streams by type in discovery order.
type MediaInventory struct {
	FormatName string
	Video      []StreamInfo
	Audio      []StreamInfo
	Subtitles  []StreamInfo
}

// Request describes a probe invocation.
type Request struct {
	Input             string
	FFprobe           string
	AcceptedFormat    string
	AcceptedExtension string
	Runner            command.Runner
	Logger            *slog.Logger
}

// Probe inspects the input and validates the resulting inventory. With a
// dry-run runner the command is only printed and a placeholder inventory of
// one video and one audio stream with unknown codecs is returned.
func Probe(ctx context.Context, req Request) (MediaInventory, error) {
	if req.Runner == nil {
		return MediaInventory{}, services.Wrap(services.ErrInvalidRequest, "probing", "probe", "runner required", nil)
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(req.Logger, "probe"))

	input := strings.TrimSpace(req.Input)
	if !filepath.IsAbs(input) {
		return MediaInventory{}, services.Rejectf("input path %q is not absolute", req.Input)
	}
	info, err := os.Stat(input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return MediaInventory{}, services.Rejectf("input %s does not exist", input)
		}
		return MediaInventory{}, services.Rejectf("input %s is not accessible: %v", input, err)
	}
	if info.IsDir() {
		return MediaInventory{}, services.Rejectf("input %s is a directory", input)
	}

	if command.IsDryRun(req.Runner) {
		if _, err := req.Runner.Run(ctx, command.Command{Stage: "probing", Binary: req.FFprobe, Args: ffprobe.Args(input)}); err != nil {
			return MediaInventory{}, err
		}
		if err := checkExtension(input, req.AcceptedExtension); err != nil {
			return MediaInventory{}, err
		}
		return placeholderInventory(), nil
	}

	result, err := ffprobe.Inspect(ctx, req.Runner, req.FFprobe, input)
	if err != nil {
		return MediaInventory{}, err
	}

	inv, err := Validate(result, input, req.AcceptedFormat, req.AcceptedExtension)
	if err != nil {
		logger.Warn("input rejected", logging.String("input", input), logging.Error(err))
		return MediaInventory{}, err
	}

	logger.Info("input inspected",
		logging.String("input", input),
		logging.String("format", inv.FormatName),
		logging.Int("audio_streams", len(inv.Audio)),
		logging.Int("subtitle_streams", len(inv.Subtitles)),
		logging.Any("duration_seconds", result.DurationSeconds()),
	)
	return inv, nil
}

// Validate applies the acceptance rules to parsed ffprobe output.
func Validate(result ffprobe.Result, input, acceptedFormat, acceptedExtension string) (MediaInventory, error) {
	if acceptedFormat != "" && result.Format.FormatLongName != acceptedFormat {
		return MediaInventory{}, services.Rejectf("container format %q is not %q", result.Format.FormatLongName, acceptedFormat)
	}
	if err := checkExtension(input, acceptedExtension); err != nil {
		return MediaInventory{}, err
	}

	inv := MediaInventory{
		FormatName: result.Format.FormatLongName,
		Video:      toStreamInfo(result.VideoStreams(), TypeVideo),
		Audio:      toStreamInfo(result.AudioStreams(), TypeAudio),
		Subtitles:  toStreamInfo(result.SubtitleStreams(), TypeSubtitle),
	}

	switch n := len(inv.Video); {
	case n == 0:
		return MediaInventory{}, services.Rejectf("no video stream found")
	case n > 1:
		return MediaInventory{}, services.Rejectf("%d video streams found, exactly one is supported", n)
	}
	if len(inv.Audio) == 0 {
		return MediaInventory{}, services.Rejectf("no audio stream found")
	}
	return inv, nil
}

func checkExtension(input, accepted string) error {
	if accepted == "" {
		return nil
	}
	ext := filepath.Ext(input)
	if !strings.EqualFold(ext, accepted) {
		return services.Rejectf("file extension %q is not %q", ext, accepted)
	}
	return nil
}

func toStreamInfo(streams []ffprobe.Stream, codecType string) []StreamInfo {
	if len(streams) == 0 {
		return nil
	}
	out := make([]StreamInfo, 0, len(streams))
	for i, s := range streams {
		out = append(out, StreamInfo{
			CodecType: codecType,
			CodecName: strings.ToLower(strings.TrimSpace(s.CodecName)),
			Language:  language.Canonical(s.Tags.Language),
			TypeIndex: i,
			Index:     s.Index,
		})
	}
	return out
}

func placeholderInventory() MediaInventory {
	return MediaInventory{
		FormatName: UnknownCodec,
		Video:      []StreamInfo{{CodecType: TypeVideo, CodecName: UnknownCodec}},
		Audio:      []StreamInfo{{CodecType: TypeAudio, CodecName: UnknownCodec, Index: 1}},
	}
}

// String summarizes the inventory for logs and error messages.
func (inv MediaInventory) String() string {
	return fmt.Sprintf("video=%d audio=%d subtitles=%d", len(inv.Video), len(inv.Audio), len(inv.Subtitles))
}
