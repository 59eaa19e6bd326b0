package main

import "testing"

func TestHistoryWithoutLedger(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")
}

func TestHistoryShowsRunDetail(t *testing.T) {
	env := setupCLITestEnv(t)
	input := env.writeInput(t, "pilot.mkv")
	if _, _, err := runCLI(t, []string{"package", "--input", input, "--bucket", "media", "--prefix", "shows/pilot"}, env.configPath); err != nil {
		t.Fatalf("package: %v", err)
	}

	list, _, err := runCLI(t, []string{"history", "--limit", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, list, "media/shows/pilot")

	runs := ledgerRunIDs(t, env)
	if len(runs) != 1 {
		t.Fatalf("expected one run, got %d", len(runs))
	}
	detail, _, err := runCLI(t, []string{"history", runs[0][:8]}, env.configPath)
	if err != nil {
		t.Fatalf("history detail: %v", err)
	}
	requireContains(t, detail, "shows/pilot/pilot.mpd")
	requireContains(t, detail, "uploaded")
	requireContains(t, detail, "video=copy audio=copy subtitles=[0:eng]")
}
