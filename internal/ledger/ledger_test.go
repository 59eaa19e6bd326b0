package ledger_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bideorai/internal/ledger"
)

func openStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(filepath.Join(t.TempDir(), "state", "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	started := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	if err := store.BeginRun(ctx, ledger.Run{
		ID:        "3f1c2a7e-0000-4000-8000-000000000001",
		Input:     "/media/show.mkv",
		Bucket:    "media",
		Prefix:    "content/1/S01E01",
		State:     "probing",
		StartedAt: started,
	}); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	records := []ledger.ArtifactRecord{
		{Position: 0, Kind: "video", RemotePath: "content/1/S01E01/video.mp4", Status: ledger.ArtifactUploaded},
		{Position: 1, Kind: "audio", RemotePath: "content/1/S01E01/audio.mp4", Status: ledger.ArtifactFailed, ErrorMessage: "timeout"},
	}
	if err := store.RecordArtifacts(ctx, "3f1c2a7e-0000-4000-8000-000000000001", records); err != nil {
		t.Fatalf("RecordArtifacts: %v", err)
	}
	if err := store.FinishRun(ctx, "3f1c2a7e-0000-4000-8000-000000000001", ledger.Outcome{
		State:        "failed",
		FailedStage:  "publishing",
		ErrorMessage: "partial publish",
		Plan:         "video=copy audio=encode subtitles=[]",
		FinishedAt:   started.Add(90 * time.Second),
	}); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	run, err := store.Get(ctx, "3f1c2a7e")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.State != "failed" || run.FailedStage != "publishing" || run.Plan == "" {
		t.Fatalf("unexpected run %+v", run)
	}
	if run.Duration() != 90*time.Second {
		t.Fatalf("unexpected duration %v", run.Duration())
	}
	if len(run.Artifacts) != 2 || run.Artifacts[1].ErrorMessage != "timeout" {
		t.Fatalf("unexpected artifacts %+v", run.Artifacts)
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := store.BeginRun(ctx, ledger.Run{ID: id, Input: "/in.mkv", Bucket: "b", Prefix: "p", State: "done", StartedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("BeginRun: %v", err)
		}
	}
	runs, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("unexpected runs %+v", runs)
	}
}

func TestGetMissingRun(t *testing.T) {
	store := openStore(t)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.FinishRun(context.Background(), "nope", ledger.Outcome{State: "done"}); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from FinishRun, got %v", err)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.BeginRun(context.Background(), ledger.Run{ID: "x", Input: "/in.mkv", Bucket: "b", Prefix: "p", State: "probing"}); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	_ = store.Close()

	reopened, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Get(context.Background(), "x"); err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
}
