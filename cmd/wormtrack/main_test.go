package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vovakirdan/wormtrack/internal/sim"
)

// execute runs the CLI with an isolated home directory and database.
func execute(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--db", filepath.Join(home, "results.db")))
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

const winningScript = `
seed: 3
actions:
  - {at_ms: 5000, kind: switch, node: J}
`

func TestReplayWinsAndSaves(t *testing.T) {
	home := t.TempDir()
	script := writeFile(t, home, "win.yaml", winningScript)

	out, err := execute(t, home, "replay", "first-fork", "--script", script, "--save")
	if err != nil {
		t.Fatalf("replay error: %v\n%s", err, out)
	}
	for _, want := range []string{"seed 3", "Result:    win", "Arrived:   2/2", "Score:     98", "Saved as result #1"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}

	out, err = execute(t, home, "scores", "first-fork")
	if err != nil {
		t.Fatalf("scores error: %v", err)
	}
	if !strings.Contains(out, "complete") || !strings.Contains(out, "Runs: 1  Wins: 1 (100%)") {
		t.Errorf("Expected the saved run in scores output:\n%s", out)
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	home := t.TempDir()
	script := writeFile(t, home, "win.yaml", winningScript)

	first, err := execute(t, home, "replay", "windy-junction", "--script", script, "--events")
	if err != nil {
		t.Fatalf("replay error: %v\n%s", err, first)
	}
	second, _ := execute(t, home, "replay", "windy-junction", "--script", script, "--events")
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Expected identical replays (-first +second):\n%s", diff)
	}
}

func TestReplayWithoutSwitchLoses(t *testing.T) {
	home := t.TempDir()
	script := writeFile(t, home, "idle.yaml", "actions: []\n")

	out, err := execute(t, home, "replay", "first-fork", "--script", script)
	if err != nil {
		t.Fatalf("replay error: %v", err)
	}
	if !strings.Contains(out, "loss (wrong-goal), worm blue") {
		t.Errorf("Expected wrong-goal loss by the blue worm:\n%s", out)
	}
}

func TestLoadScript(t *testing.T) {
	dir := t.TempDir()

	path := writeFile(t, dir, "unsorted.yaml", `
actions:
  - {at_ms: 900, kind: reset}
  - {at_ms: 100, kind: switch, node: A}
  - {at_ms: 900, kind: switch, node: B}
`)
	script, err := loadScript(path)
	if err != nil {
		t.Fatalf("loadScript() error: %v", err)
	}
	want := []sim.PlayerAction{
		{AtMs: 100, Kind: sim.ActionSwitch, Node: "A"},
		{AtMs: 900, Kind: sim.ActionReset},
		{AtMs: 900, Kind: sim.ActionSwitch, Node: "B"},
	}
	if diff := cmp.Diff(want, script.Actions); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	if script.Seed != nil {
		t.Errorf("Expected no seed, got %d", *script.Seed)
	}

	tests := map[string]string{
		"unknown kind":   "actions: [{at_ms: 1, kind: jump}]",
		"switch no node": "actions: [{at_ms: 1, kind: switch}]",
		"negative time":  "actions: [{at_ms: -5, kind: reset}]",
		"malformed":      "actions: {",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := loadScript(writeFile(t, dir, "bad.yaml", content)); err == nil {
				t.Error("Expected error")
			}
		})
	}

	if _, err := loadScript(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLevelsCommand(t *testing.T) {
	home := t.TempDir()

	out, err := execute(t, home, "levels")
	if err != nil {
		t.Fatalf("levels error: %v", err)
	}
	for _, id := range []string{"blockade", "first-fork", "narrow-pass", "rush-hour", "windy-junction"} {
		if !strings.Contains(out, id) {
			t.Errorf("Expected %s in level list", id)
		}
	}

	out, err = execute(t, home, "levels", "--check")
	if err != nil {
		t.Fatalf("levels --check error: %v", err)
	}
	if !strings.Contains(out, "5 valid level(s)") {
		t.Errorf("Expected 5 valid levels, got:\n%s", out)
	}
}

func TestLevelsCheckReportsInvalidFiles(t *testing.T) {
	home := t.TempDir()
	dir := filepath.Join(home, "levels")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("Mkdir() error: %v", err)
	}
	writeFile(t, dir, "broken.yaml", "id: [")

	out, err := execute(t, home, "levels", "--check", "--levels", dir)
	if err == nil {
		t.Fatal("Expected an error for an invalid level file")
	}
	if !strings.Contains(out, "invalid:") {
		t.Errorf("Expected the invalid file to be reported:\n%s", out)
	}
}

func TestRejectsUnknownDifficulty(t *testing.T) {
	home := t.TempDir()
	_, err := execute(t, home, "levels", "--difficulty", "brutal")
	if err == nil || !strings.Contains(err.Error(), "unknown difficulty") {
		t.Errorf("Expected unknown difficulty error, got %v", err)
	}
}

func TestScoresSummary(t *testing.T) {
	home := t.TempDir()
	out, err := execute(t, home, "scores")
	if err != nil {
		t.Fatalf("scores error: %v", err)
	}
	if !strings.Contains(out, "First Fork") || !strings.Contains(out, "never") {
		t.Errorf("Expected unplayed levels in summary:\n%s", out)
	}
}
