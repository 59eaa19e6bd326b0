// Package artifact models the files a packaging run produces and where each
// one is published.
package artifact

import (
	"fmt"
	"path"
	"strings"

	"bideorai/internal/services"
)

// Kind classifies an artifact.
type Kind string

const (
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindSubtitle Kind = "subtitle"
	KindManifest Kind = "manifest"
)

// Artifact is one produced file and its remote relative path.
type Artifact struct {
	Kind       Kind
	Name       string
	LocalPath  string
	RemotePath string
	// Language is set for subtitle artifacts with a known language.
	Language string
}

// ContentType returns the MIME type used when uploading the artifact.
func (a Artifact) ContentType() string {
	switch strings.ToLower(path.Ext(a.Name)) {
	case ".mpd":
		return "application/dash+xml"
	case ".vtt":
		return "text/vtt"
	case ".mp4", ".m4s":
		if a.Kind == KindAudio {
			return "audio/mp4"
		}
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}

// Set is an append-only, ordered list of artifacts with unique remote paths.
type Set struct {
	items  []Artifact
	remote map[string]struct{}
}

// Add appends an artifact. Entries never change once added.
func (s *Set) Add(a Artifact) error {
	if strings.TrimSpace(a.RemotePath) == "" {
		return fmt.Errorf("artifact %q: remote path required", a.Name)
	}
	if s.remote == nil {
		s.remote = make(map[string]struct{})
	}
	if _, ok := s.remote[a.RemotePath]; ok {
		return fmt.Errorf("artifact %q: duplicate remote path %q", a.Name, a.RemotePath)
	}
	s.remote[a.RemotePath] = struct{}{}
	s.items = append(s.items, a)
	return nil
}

// Items returns a copy of the artifacts in insertion order.
func (s *Set) Items() []Artifact {
	if s == nil {
		return nil
	}
	out := make([]Artifact, len(s.items))
	copy(out, s.items)
	return out
}

// Len reports the number of artifacts.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Count reports how many artifacts have the given kind.
func (s *Set) Count(kind Kind) int {
	n := 0
	for _, a := range s.Items() {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

// RemotePath joins a validated prefix and an artifact name.
func RemotePath(prefix, name string) string {
	return prefix + "/" + name
}

// ValidatePrefix enforces the remote prefix contract: non-empty with no
// leading or trailing separator.
func ValidatePrefix(prefix string) error {
	switch {
	case strings.TrimSpace(prefix) == "":
		return services.Wrap(services.ErrInvalidRequest, "", "prefix", "must not be empty", nil)
	case strings.HasPrefix(prefix, "/"):
		return services.Wrap(services.ErrInvalidRequest, "", "prefix", fmt.Sprintf("%q must not start with /", prefix), nil)
	case strings.HasSuffix(prefix, "/"):
		return services.Wrap(services.ErrInvalidRequest, "", "prefix", fmt.Sprintf("%q must not end with /", prefix), nil)
	}
	return nil
}

// EpisodePrefix builds the content/{id}/SxxEyy layout used for episodic
// uploads.
func EpisodePrefix(id string, season, episode int) (string, error) {
	id = strings.Trim(strings.TrimSpace(id), "/")
	if id == "" {
		return "", services.Wrap(services.ErrInvalidRequest, "", "episode prefix", "id required", nil)
	}
	if season < 0 || episode < 0 {
		return "", services.Wrap(services.ErrInvalidRequest, "", "episode prefix", "season and episode must not be negative", nil)
	}
	return fmt.Sprintf("content/%s/S%02dE%02d", id, season, episode), nil
}
