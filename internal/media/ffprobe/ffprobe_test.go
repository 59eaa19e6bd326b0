package ffprobe

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"bideorai/internal/command"
)

const sampleJSON = `{
  "streams": [
    {"index": 0, "codec_name": "hevc", "codec_type": "video", "disposition": {"attached_pic": 0}},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "tags": {"language": "jpn"}},
    {"index": 2, "codec_name": "ac3", "codec_type": "audio", "tags": {"language": "eng"}},
    {"index": 3, "codec_name": "subrip", "codec_type": "subtitle", "tags": {"language": "eng"}},
    {"index": 4, "codec_name": "mjpeg", "codec_type": "video", "disposition": {"attached_pic": 1}}
  ],
  "format": {"format_name": "matroska,webm", "format_long_name": "Matroska / WebM", "duration": "1420.5"}
}`

type stubRunner struct {
	got    command.Command
	stdout string
	err    error
}

func (s *stubRunner) Run(_ context.Context, cmd command.Command) (command.Result, error) {
	s.got = cmd
	return command.Result{Stdout: []byte(s.stdout)}, s.err
}

func TestInspectParsesStreams(t *testing.T) {
	runner := &stubRunner{stdout: sampleJSON}
	result, err := Inspect(context.Background(), runner, "/usr/bin/ffprobe", "/media/show.mkv")
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if runner.got.Binary != "/usr/bin/ffprobe" || runner.got.Stage != "probing" {
		t.Fatalf("unexpected command %+v", runner.got)
	}
	wantArgs := "-v quiet -print_format json -show_format -show_streams -- /media/show.mkv"
	if got := strings.Join(runner.got.Args, " "); got != wantArgs {
		t.Fatalf("unexpected args %q", got)
	}
	if result.Format.FormatLongName != "Matroska / WebM" {
		t.Fatalf("unexpected format %q", result.Format.FormatLongName)
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected cover art to be ignored, got %d video streams", result.VideoStreamCount())
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	subs := result.SubtitleStreams()
	if len(subs) != 1 || subs[0].Tags.Language != "eng" {
		t.Fatalf("unexpected subtitles %+v", subs)
	}
	if result.DurationSeconds() != 1420.5 {
		t.Fatalf("unexpected duration %v", result.DurationSeconds())
	}
	if len(result.RawJSON()) == 0 {
		t.Fatal("expected raw JSON to be retained")
	}
}

func TestInspectPropagatesRunnerError(t *testing.T) {
	runner := &stubRunner{err: errors.New("boom")}
	if _, err := Inspect(context.Background(), runner, "ffprobe", "/media/show.mkv"); err == nil {
		t.Fatal("expected error")
	}
}

func TestInspectRejectsEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), &stubRunner{}, "ffprobe", " "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDurationHandlesInvalidNumbers(t *testing.T) {
	result := Result{Format: Format{Duration: "bad"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected NaN, got %v", result.DurationSeconds())
	}
}
