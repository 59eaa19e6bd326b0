package prefixlock

import (
	"errors"
	"testing"
)

func TestAcquireIsExclusivePerPrefix(t *testing.T) {
	dir := t.TempDir()

	first, err := Acquire(dir, "media", "content/1/S01E01")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	if _, err := Acquire(dir, "media", "content/1/S01E01"); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	other, err := Acquire(dir, "media", "content/1/S01E02")
	if err != nil {
		t.Fatalf("expected distinct prefix to lock, got %v", err)
	}
	defer other.Release()

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := Acquire(dir, "media", "content/1/S01E01")
	if err != nil {
		t.Fatalf("expected lock after release, got %v", err)
	}
	_ = again.Release()
}

func TestFileNameIsStable(t *testing.T) {
	if FileName("a", "b/c") != FileName("a", "b/c") {
		t.Fatal("expected stable file name")
	}
	if FileName("a", "b/c") == FileName("a/b", "c") {
		t.Fatal("expected bucket and prefix to be separated")
	}
}
