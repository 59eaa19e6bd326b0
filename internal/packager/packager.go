package packager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"bideorai/internal/artifact"
	"bideorai/internal/command"
	"bideorai/internal/logging"
	"bideorai/internal/services"
	"bideorai/internal/transcode"
)

const stageName = "packaging"

// Output track file names.
const (
	VideoName = "video.mp4"
	AudioName = "audio.mp4"
)

// Request describes one packaging invocation.
type Request struct {
	WorkDir      string
	Intermediate string
	Subtitles    []transcode.ExtractedSubtitle
	ManifestName string
	BaseURL      string
	Prefix       string
}

// Packager wraps the Shaka packager binary.
type Packager struct {
	Binary string
	Runner command.Runner
	Logger *slog.Logger
}

// Run packages the intermediate file and returns the produced artifacts with
// video, audio, and subtitles in order and the manifest last.
func (p *Packager) Run(ctx context.Context, req Request) (*artifact.Set, error) {
	if p == nil || p.Runner == nil {
		return nil, services.Wrap(services.ErrInvalidRequest, stageName, "run", "packager not configured", nil)
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(p.Logger, "packager"))

	set, descriptors, err := layout(req)
	if err != nil {
		return nil, services.Wrap(services.ErrStageFailed, stageName, "plan outputs", "", err)
	}

	args := append(descriptors, "--mpd_output", req.ManifestName, "--base_urls", req.BaseURL)
	cmd := command.Command{Stage: stageName, Binary: p.binary(), Args: args, Dir: req.WorkDir}
	if _, err := p.Runner.Run(ctx, cmd); err != nil {
		var stageErr *services.StageError
		if errors.As(err, &stageErr) {
			return nil, err
		}
		return nil, &services.StageError{Stage: stageName, Err: err}
	}

	if !command.IsDryRun(p.Runner) {
		if err := verifyOutputs(set); err != nil {
			return nil, err
		}
	}

	logger.Info("package written",
		logging.String("manifest", req.ManifestName),
		logging.Int("artifacts", set.Len()),
		logging.String("base_url", req.BaseURL),
	)
	return set, nil
}

// BaseURL substitutes {bucket} and {prefix} in the configured template. Each
// path segment is escaped so object keys with spaces or '#' still resolve.
// The result always ends with a slash.
func BaseURL(template, bucket, prefix string) string {
	segments := strings.Split(prefix, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	base := strings.NewReplacer(
		"{bucket}", url.PathEscape(bucket),
		"{prefix}", strings.Join(segments, "/"),
	).Replace(template)
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

// ManifestName derives the manifest file name from the input path.
func ManifestName(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".mpd"
}

// SubtitleOutputName is the packaged WebVTT name for a subtitle selection.
func SubtitleOutputName(index int, lang string) string {
	if lang == "" {
		return fmt.Sprintf("text_%d.vtt", index)
	}
	return fmt.Sprintf("text_%d_%s.vtt", index, lang)
}

func (r Request) validate() error {
	missing := make([]string, 0, 4)
	if strings.TrimSpace(r.WorkDir) == "" {
		missing = append(missing, "work dir")
	}
	if strings.TrimSpace(r.Intermediate) == "" {
		missing = append(missing, "intermediate")
	}
	if strings.TrimSpace(r.ManifestName) == "" {
		missing = append(missing, "manifest name")
	}
	if strings.TrimSpace(r.BaseURL) == "" {
		missing = append(missing, "base url")
	}
	if len(missing) > 0 {
		return services.Wrap(services.ErrInvalidRequest, stageName, "validate request", strings.Join(missing, ", ")+" required", nil)
	}
	return artifact.ValidatePrefix(r.Prefix)
}

func layout(req Request) (*artifact.Set, []string, error) {
	set := &artifact.Set{}
	intermediate := relativeTo(req.WorkDir, req.Intermediate)
	descriptors := make([]string, 0, len(req.Subtitles)+2)

	add := func(kind artifact.Kind, name, lang string) error {
		return set.Add(artifact.Artifact{
			Kind:       kind,
			Name:       name,
			LocalPath:  filepath.Join(req.WorkDir, name),
			RemotePath: artifact.RemotePath(req.Prefix, name),
			Language:   lang,
		})
	}

	descriptors = append(descriptors, fmt.Sprintf("in=%s,stream=video,output=%s", intermediate, VideoName))
	if err := add(artifact.KindVideo, VideoName, ""); err != nil {
		return nil, nil, err
	}
	descriptors = append(descriptors, fmt.Sprintf("in=%s,stream=audio,output=%s", intermediate, AudioName))
	if err := add(artifact.KindAudio, AudioName, ""); err != nil {
		return nil, nil, err
	}

	for _, sub := range req.Subtitles {
		lang := sub.Selection.Language
		name := SubtitleOutputName(sub.Selection.Index, lang)
		descriptor := fmt.Sprintf("in=%s,stream=text,output=%s", relativeTo(req.WorkDir, sub.Path), name)
		if lang != "" {
			descriptor += ",language=" + lang
		}
		descriptors = append(descriptors, descriptor)
		if err := add(artifact.KindSubtitle, name, lang); err != nil {
			return nil, nil, err
		}
	}

	if err := add(artifact.KindManifest, req.ManifestName, ""); err != nil {
		return nil, nil, err
	}
	return set, descriptors, nil
}

func verifyOutputs(set *artifact.Set) error {
	var missing []string
	for _, a := range set.Items() {
		info, err := os.Stat(a.LocalPath)
		if err != nil || info.IsDir() {
			missing = append(missing, a.Name)
		}
	}
	if len(missing) > 0 {
		return &services.StageError{
			Stage: stageName,
			Step:  "verify outputs",
			Err:   fmt.Errorf("missing outputs: %s", strings.Join(missing, ", ")),
		}
	}
	return nil
}

func relativeTo(dir, path string) string {
	if rel, err := filepath.Rel(dir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func (p *Packager) binary() string {
	if strings.TrimSpace(p.Binary) == "" {
		return "packager"
	}
	return p.Binary
}
