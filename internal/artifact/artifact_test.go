package artifact

import (
	"errors"
	"testing"

	"bideorai/internal/services"
)

func TestSetRejectsDuplicateRemotePaths(t *testing.T) {
	var set Set
	if err := set.Add(Artifact{Kind: KindVideo, Name: "video.mp4", RemotePath: "p/video.mp4"}); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if err := set.Add(Artifact{Kind: KindVideo, Name: "video.mp4", RemotePath: "p/video.mp4"}); err == nil {
		t.Fatal("expected duplicate remote path error")
	}
	if err := set.Add(Artifact{Kind: KindAudio, Name: "audio.mp4"}); err == nil {
		t.Fatal("expected missing remote path error")
	}
	if set.Len() != 1 || set.Count(KindVideo) != 1 {
		t.Fatalf("unexpected set contents %+v", set.Items())
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	var set Set
	_ = set.Add(Artifact{Kind: KindManifest, Name: "a.mpd", RemotePath: "p/a.mpd"})
	items := set.Items()
	items[0].RemotePath = "changed"
	if set.Items()[0].RemotePath != "p/a.mpd" {
		t.Fatal("expected set entries to be immutable")
	}
}

func TestContentType(t *testing.T) {
	tests := []struct {
		artifact Artifact
		want     string
	}{
		{Artifact{Kind: KindManifest, Name: "show.mpd"}, "application/dash+xml"},
		{Artifact{Kind: KindVideo, Name: "video.mp4"}, "video/mp4"},
		{Artifact{Kind: KindAudio, Name: "audio.mp4"}, "audio/mp4"},
		{Artifact{Kind: KindSubtitle, Name: "text_0_eng.vtt"}, "text/vtt"},
		{Artifact{Name: "blob.bin"}, "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := tt.artifact.ContentType(); got != tt.want {
			t.Fatalf("ContentType(%s) = %q, want %q", tt.artifact.Name, got, tt.want)
		}
	}
}

func TestValidatePrefix(t *testing.T) {
	for _, bad := range []string{"", " ", "/content/1", "content/1/"} {
		if err := ValidatePrefix(bad); !errors.Is(err, services.ErrInvalidRequest) {
			t.Fatalf("expected ErrInvalidRequest for %q, got %v", bad, err)
		}
	}
	if err := ValidatePrefix("content/81189/S01E02"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := RemotePath("content/1", "video.mp4"); got != "content/1/video.mp4" {
		t.Fatalf("unexpected remote path %q", got)
	}
}

func TestEpisodePrefix(t *testing.T) {
	got, err := EpisodePrefix("81189", 1, 2)
	if err != nil {
		t.Fatalf("EpisodePrefix returned error: %v", err)
	}
	if got != "content/81189/S01E02" {
		t.Fatalf("unexpected prefix %q", got)
	}
	if _, err := EpisodePrefix("", 1, 1); err == nil {
		t.Fatal("expected error for empty id")
	}
}
