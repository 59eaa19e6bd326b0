package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bideorai/internal/config"
	"bideorai/internal/ledger"
	"bideorai/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	baseDir    string
	binDir     string
	configPath string
	uploadLog  string
}

// Shell stand-ins for the external tools. ffmpeg and packager create their
// outputs so the pipeline finds them; b2 appends the remote key to a log.
const (
	stubFFmpeg = `#!/bin/sh
for a in "$@"; do last="$a"; done
case "$last" in
  -*) exit 0 ;;
esac
: > "$last"
`
	stubPackager = `#!/bin/sh
for a in "$@"; do
  case "$a" in
    *output=*) f="${a#*output=}"; f="${f%%,*}"; : > "$f" ;;
  esac
done
while [ $# -gt 0 ]; do
  if [ "$1" = "--mpd_output" ]; then : > "$2"; fi
  shift
done
`
)

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	env := &cliTestEnv{
		cfg:        cfg,
		baseDir:    base,
		binDir:     filepath.Join(base, "bin"),
		configPath: filepath.Join(base, "bideorai.toml"),
		uploadLog:  filepath.Join(base, "uploads.log"),
	}

	probeJSON := filepath.Join(base, "probe.json")
	if err := os.WriteFile(probeJSON, testsupport.MatroskaProbe("h264", "aac", "eng"), 0o644); err != nil {
		t.Fatalf("write probe json: %v", err)
	}
	writeStub(t, env.binDir, "ffprobe", fmt.Sprintf("#!/bin/sh\ncat %q\n", probeJSON))
	writeStub(t, env.binDir, "ffmpeg", stubFFmpeg)
	writeStub(t, env.binDir, "packager", stubPackager)
	writeStub(t, env.binDir, "b2", fmt.Sprintf("#!/bin/sh\nprintf '%%s\\n' \"$4\" >> %q\n", env.uploadLog))

	cfg.Tools = config.Tools{
		FFprobe:  filepath.Join(env.binDir, "ffprobe"),
		FFmpeg:   filepath.Join(env.binDir, "ffmpeg"),
		Packager: filepath.Join(env.binDir, "packager"),
		B2:       filepath.Join(env.binDir, "b2"),
	}
	writeTestConfig(t, env.configPath, cfg)
	return env
}

func writeStub(t *testing.T, dir, name, script string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[tools]
ffprobe = %q
ffmpeg = %q
packager = %q
b2 = %q

[paths]
work_root = %q
state_dir = %q

[logging]
format = "json"
level = "error"
`,
		cfg.Tools.FFprobe, cfg.Tools.FFmpeg, cfg.Tools.Packager, cfg.Tools.B2,
		cfg.Paths.WorkRoot, cfg.Paths.StateDir,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) writeInput(t *testing.T, name string) string {
	t.Helper()
	return testsupport.WriteInput(t, e.baseDir, name)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func ledgerRunIDs(t *testing.T, env *cliTestEnv) []string {
	t.Helper()
	store, err := ledger.Open(env.cfg.LedgerPath())
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	defer store.Close()
	runs, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	ids := make([]string, 0, len(runs))
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	return ids
}
