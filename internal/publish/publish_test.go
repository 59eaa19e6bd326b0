package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"bideorai/internal/artifact"
	"bideorai/internal/command"
	"bideorai/internal/config"
	"bideorai/internal/services"
)

// memoryUploader stores uploads in a map and fails the configured keys.
type memoryUploader struct {
	mu      sync.Mutex
	objects map[string]string
	fail    map[string]bool
	calls   int
}

func (m *memoryUploader) Upload(_ context.Context, bucket string, a artifact.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.fail[a.RemotePath] {
		return fmt.Errorf("upload %s: connection reset", a.RemotePath)
	}
	if m.objects == nil {
		m.objects = map[string]string{}
	}
	m.objects[bucket+"/"+a.RemotePath] = a.LocalPath
	return nil
}

func fourArtifacts(t *testing.T) *artifact.Set {
	t.Helper()
	set := &artifact.Set{}
	for _, a := range []artifact.Artifact{
		{Kind: artifact.KindVideo, Name: "video.mp4"},
		{Kind: artifact.KindAudio, Name: "audio.mp4"},
		{Kind: artifact.KindSubtitle, Name: "text_0_eng.vtt"},
		{Kind: artifact.KindManifest, Name: "show.mpd"},
	} {
		a.LocalPath = "/work/" + a.Name
		a.RemotePath = artifact.RemotePath("content/1", a.Name)
		if err := set.Add(a); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	return set
}

func TestPublishPartialFailure(t *testing.T) {
	for _, concurrency := range []int{1, 3} {
		t.Run(fmt.Sprintf("concurrency=%d", concurrency), func(t *testing.T) {
			uploader := &memoryUploader{fail: map[string]bool{"content/1/text_0_eng.vtt": true}}
			p := &Publisher{Uploader: uploader, Concurrency: concurrency}

			report, err := p.Publish(context.Background(), "media", fourArtifacts(t))
			if !errors.Is(err, services.ErrPartialPublish) {
				t.Fatalf("expected ErrPartialPublish, got %v", err)
			}
			var partial *services.PartialPublishError
			if !errors.As(err, &partial) {
				t.Fatalf("expected PartialPublishError, got %T", err)
			}
			if len(partial.Failed) != 1 || partial.Failed[0].RemoteKey != "content/1/text_0_eng.vtt" {
				t.Fatalf("unexpected failures %+v", partial.Failed)
			}
			if uploader.calls != 4 {
				t.Fatalf("expected all 4 uploads attempted, got %d", uploader.calls)
			}
			for _, key := range []string{"media/content/1/video.mp4", "media/content/1/audio.mp4", "media/content/1/show.mpd"} {
				if _, ok := uploader.objects[key]; !ok {
					t.Fatalf("expected %s to remain uploaded", key)
				}
			}
			succeeded := report.Succeeded()
			sort.Strings(succeeded)
			if len(succeeded) != 3 || len(partial.Succeeded) != 3 {
				t.Fatalf("unexpected successes %v", succeeded)
			}
			if !strings.Contains(err.Error(), "1 of 4 uploads failed") {
				t.Fatalf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestPublishSuccess(t *testing.T) {
	uploader := &memoryUploader{}
	report, err := (&Publisher{Uploader: uploader}).Publish(context.Background(), "media", fourArtifacts(t))
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if len(report.Outcomes) != 4 || len(report.Failed()) != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Outcomes[3].Artifact.Kind != artifact.KindManifest {
		t.Fatalf("expected outcomes in artifact order, got %+v", report.Outcomes)
	}
}

func TestPublishRequiresBucket(t *testing.T) {
	if _, err := (&Publisher{Uploader: &memoryUploader{}}).Publish(context.Background(), "", fourArtifacts(t)); !errors.Is(err, services.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestB2CLIUploaderCommand(t *testing.T) {
	var out bytes.Buffer
	u := &B2CLIUploader{Binary: "/usr/local/bin/b2", Runner: command.NewDryRunRunner(&out)}
	a := artifact.Artifact{Name: "video.mp4", LocalPath: "/work/video.mp4", RemotePath: "content/1/video.mp4"}
	if err := u.Upload(context.Background(), "media", a); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if got := out.String(); got != "/usr/local/bin/b2 upload-file media /work/video.mp4 content/1/video.mp4\n" {
		t.Fatalf("unexpected command %q", got)
	}
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	data, _ := io.ReadAll(params.Body)
	f.body = string(data)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3UploaderSetsContentType(t *testing.T) {
	local := filepath.Join(t.TempDir(), "show.mpd")
	if err := os.WriteFile(local, []byte("<MPD/>"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	putter := &fakePutter{}
	u := &S3Uploader{Client: putter}
	a := artifact.Artifact{Kind: artifact.KindManifest, Name: "show.mpd", LocalPath: local, RemotePath: "content/1/show.mpd"}

	if err := u.Upload(context.Background(), "media", a); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if aws.ToString(putter.input.Bucket) != "media" || aws.ToString(putter.input.Key) != "content/1/show.mpd" {
		t.Fatalf("unexpected target %s/%s", aws.ToString(putter.input.Bucket), aws.ToString(putter.input.Key))
	}
	if aws.ToString(putter.input.ContentType) != "application/dash+xml" {
		t.Fatalf("unexpected content type %q", aws.ToString(putter.input.ContentType))
	}
	if putter.body != "<MPD/>" {
		t.Fatalf("unexpected body %q", putter.body)
	}
}

func TestS3UploaderReportsErrors(t *testing.T) {
	u := &S3Uploader{Client: &fakePutter{err: errors.New("access denied")}}
	missing := artifact.Artifact{Name: "video.mp4", LocalPath: filepath.Join(t.TempDir(), "video.mp4"), RemotePath: "p/video.mp4"}
	if err := u.Upload(context.Background(), "media", missing); err == nil {
		t.Fatal("expected error for missing local file")
	}
}

func TestS3UploaderDryRun(t *testing.T) {
	var out bytes.Buffer
	u := &S3Uploader{DryRun: command.NewDryRunRunner(&out)}
	a := artifact.Artifact{Name: "audio.mp4", LocalPath: "/work/audio.mp4", RemotePath: "content/1/audio.mp4"}
	if err := u.Upload(context.Background(), "media", a); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if got := out.String(); got != "s3 put /work/audio.mp4 s3://media/content/1/audio.mp4\n" {
		t.Fatalf("unexpected dry-run output %q", got)
	}
}

func TestNewUploaderSelectsBackend(t *testing.T) {
	cfg := config.Default()
	dry := command.NewDryRunRunner(io.Discard)

	u, err := NewUploader(context.Background(), &cfg, "/bin/b2", dry)
	if err != nil {
		t.Fatalf("NewUploader: %v", err)
	}
	if b2, ok := u.(*B2CLIUploader); !ok || b2.Binary != "/bin/b2" {
		t.Fatalf("expected b2 uploader, got %#v", u)
	}

	cfg.Publish.Backend = config.BackendS3
	u, err = NewUploader(context.Background(), &cfg, "", dry)
	if err != nil {
		t.Fatalf("NewUploader: %v", err)
	}
	if s3u, ok := u.(*S3Uploader); !ok || s3u.DryRun != dry {
		t.Fatalf("expected dry-run s3 uploader, got %#v", u)
	}

	cfg.Publish.Backend = "ftp"
	if _, err := NewUploader(context.Background(), &cfg, "", dry); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}
