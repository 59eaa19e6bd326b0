package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteInput creates a placeholder media file named name under dir/media and
// returns its absolute path. Tools are faked, so only its existence matters.
func WriteInput(t testing.TB, dir, name string) string {
	t.Helper()

	path, err := filepath.Abs(filepath.Join(dir, "media", name))
	if err != nil {
		t.Fatalf("resolve %s: %v", name, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("\x1a\x45\xdf\xa3"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
