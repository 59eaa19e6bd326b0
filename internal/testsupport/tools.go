package testsupport

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"bideorai/internal/command"
	"bideorai/internal/services"
)

// FakeTools is a command.Runner that imitates ffprobe, ffmpeg, packager, and
// the b2 CLI in-process. ffmpeg and packager create their output files so
// later stages find them on disk.
type FakeTools struct {
	// ProbeJSON is returned as ffprobe's stdout.
	ProbeJSON []byte
	// FailSteps fails commands whose stage or "stage/step" is present,
	// returning the mapped value as tool output.
	FailSteps map[string]string
	// FailUploads fails b2 uploads of the listed remote keys.
	FailUploads map[string]bool

	mu       sync.Mutex
	commands []command.Command
	uploads  []string
}

// Run implements command.Runner.
func (f *FakeTools) Run(_ context.Context, cmd command.Command) (command.Result, error) {
	f.mu.Lock()
	f.commands = append(f.commands, cmd)
	f.mu.Unlock()

	if output, ok := f.failure(cmd); ok {
		return command.Result{Stderr: []byte(output), ExitCode: 1}, &services.StageError{
			Stage:      cmd.Stage,
			Step:       cmd.Step,
			ExitStatus: 1,
			Output:     output,
		}
	}

	switch filepath.Base(cmd.Binary) {
	case "ffprobe":
		return command.Result{Stdout: f.ProbeJSON}, nil
	case "ffmpeg":
		if len(cmd.Args) == 0 {
			return command.Result{}, fmt.Errorf("ffmpeg: no output")
		}
		return command.Result{}, touch(resolve(cmd.Dir, cmd.Args[len(cmd.Args)-1]))
	case "packager":
		return command.Result{}, f.packagerOutputs(cmd)
	case "b2":
		return command.Result{}, f.upload(cmd)
	default:
		return command.Result{}, nil
	}
}

// Commands returns the commands received so far.
func (f *FakeTools) Commands() []command.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]command.Command(nil), f.commands...)
}

// CommandsFor returns the commands whose binary base name is name.
func (f *FakeTools) CommandsFor(name string) []command.Command {
	var out []command.Command
	for _, cmd := range f.Commands() {
		if filepath.Base(cmd.Binary) == name {
			out = append(out, cmd)
		}
	}
	return out
}

// Uploads returns the remote keys uploaded successfully.
func (f *FakeTools) Uploads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploads...)
}

func (f *FakeTools) failure(cmd command.Command) (string, bool) {
	if out, ok := f.FailSteps[cmd.Stage+"/"+cmd.Step]; ok && cmd.Step != "" {
		return out, true
	}
	out, ok := f.FailSteps[cmd.Stage]
	return out, ok
}

func (f *FakeTools) packagerOutputs(cmd command.Command) error {
	for i, arg := range cmd.Args {
		if arg == "--mpd_output" && i+1 < len(cmd.Args) {
			if err := touch(resolve(cmd.Dir, cmd.Args[i+1])); err != nil {
				return err
			}
			continue
		}
		for _, field := range strings.Split(arg, ",") {
			if name, ok := strings.CutPrefix(field, "output="); ok {
				if err := touch(resolve(cmd.Dir, name)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (f *FakeTools) upload(cmd command.Command) error {
	if len(cmd.Args) != 4 || cmd.Args[0] != "upload-file" {
		return fmt.Errorf("b2: unexpected arguments %v", cmd.Args)
	}
	local, remote := cmd.Args[2], cmd.Args[3]
	if f.FailUploads[remote] {
		return &services.StageError{Stage: cmd.Stage, Step: cmd.Step, ExitStatus: 1, Output: "upload refused"}
	}
	if _, err := os.Stat(local); err != nil {
		return &services.StageError{Stage: cmd.Stage, Step: cmd.Step, ExitStatus: 1, Output: err.Error()}
	}
	f.mu.Lock()
	f.uploads = append(f.uploads, remote)
	f.mu.Unlock()
	return nil
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}

func touch(path string) error {
	return os.WriteFile(path, []byte("x"), 0o644)
}

// ProbeStream describes one stream for ProbeJSON.
type ProbeStream struct {
	CodecType   string
	CodecName   string
	Language    string
	AttachedPic bool
}

// ProbeJSON renders ffprobe -show_format -show_streams output.
func ProbeJSON(formatLongName string, streams ...ProbeStream) []byte {
	type tags struct {
		Language string `json:"language,omitempty"`
	}
	type disposition struct {
		AttachedPic int `json:"attached_pic"`
	}
	type stream struct {
		Index       int         `json:"index"`
		CodecName   string      `json:"codec_name"`
		CodecType   string      `json:"codec_type"`
		Tags        tags        `json:"tags"`
		Disposition disposition `json:"disposition"`
	}
	doc := struct {
		Streams []stream       `json:"streams"`
		Format  map[string]any `json:"format"`
	}{
		Format: map[string]any{
			"nb_streams":       len(streams),
			"format_name":      "matroska,webm",
			"format_long_name": formatLongName,
			"duration":         "60.000000",
		},
	}
	for i, s := range streams {
		st := stream{Index: i, CodecName: s.CodecName, CodecType: s.CodecType, Tags: tags{Language: s.Language}}
		if s.AttachedPic {
			st.Disposition.AttachedPic = 1
		}
		doc.Streams = append(doc.Streams, st)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return data
}

// MatroskaProbe renders a Matroska probe result with one video stream, one
// audio stream, and a subtitle stream per language ("" for untagged).
func MatroskaProbe(videoCodec, audioCodec string, subtitleLanguages ...string) []byte {
	streams := []ProbeStream{
		{CodecType: "video", CodecName: videoCodec},
		{CodecType: "audio", CodecName: audioCodec, Language: "eng"},
	}
	for _, lang := range subtitleLanguages {
		streams = append(streams, ProbeStream{CodecType: "subtitle", CodecName: "subrip", Language: lang})
	}
	return ProbeJSON("Matroska / WebM", streams...)
}
