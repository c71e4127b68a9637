package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/forPelevin/dmcut/internal/pipeline"
	"github.com/forPelevin/dmcut/internal/types"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "dmcut.toml")
	body := "[paths]\n" +
		"output_dir = " + quote(filepath.Join(dir, "out")) + "\n" +
		"state_db = " + quote(filepath.Join(dir, "state", "dmcut.db")) + "\n" +
		"[logging]\nlevel = \"error\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func quote(s string) string { return `"` + filepath.ToSlash(s) + `"` }

func TestConfigInit(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DMCUT_LLM_API_KEY", "")
	target := filepath.Join(t.TempDir(), "cfg", "config.toml")

	out, err := execute(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("output does not name the file: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample not written: %v", err)
	}

	if _, err := execute(t, "config", "init", "--path", target); err == nil || !strings.Contains(err.Error(), "--overwrite") {
		t.Fatalf("second init err = %v, want overwrite hint", err)
	}
	if err := os.WriteFile(target, []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	b, _ := os.ReadFile(target)
	if !strings.Contains(string(b), "[analysis]") {
		t.Fatalf("overwritten file is not the sample:\n%s", b)
	}

	out, err = execute(t, "config", "validate", "-c", target)
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	if !strings.Contains(out, "configuration valid") || !strings.Contains(out, "llm.api_key is empty") {
		t.Fatalf("validate output = %q", out)
	}
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte("[subtitle]\norientation = \"diagonal\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := execute(t, "config", "validate", "-c", path)
	if err == nil || !strings.Contains(err.Error(), "orientation") {
		t.Fatalf("err = %v, want orientation error", err)
	}
}

func TestArgValidation(t *testing.T) {
	cfg := writeConfig(t, t.TempDir())
	cases := [][]string{
		{"analyze"},
		{"analyze", "a", "b"},
		{"export"},
		{"regen"},
		{"runs", "a", "b"},
		{"correct"},
		{"shift", "m.json", "--ref", "00:00:10"},
	}
	for _, args := range cases {
		if _, err := execute(t, append(args, "-c", cfg)...); err == nil {
			t.Errorf("%v: expected an error", args)
		}
	}
}

func TestAnalyzeNeedsAPIKeyWithoutNoLLM(t *testing.T) {
	t.Setenv("DMCUT_LLM_API_KEY", "")
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	_, err := execute(t, "analyze", dir, "-c", cfg)
	if err == nil || !strings.Contains(err.Error(), "api key") {
		t.Fatalf("err = %v, want api key error", err)
	}
}

func TestAnalyzeMissingFolder(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	_, err := execute(t, "analyze", filepath.Join(dir, "nope"), "--no-llm", "-c", cfg)
	if err == nil {
		t.Fatal("expected an error for a missing input folder")
	}
}

func TestRunsEmpty(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	out, err := execute(t, "runs", "-c", cfg)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if !strings.Contains(out, "no runs recorded") {
		t.Fatalf("output = %q", out)
	}
	if _, err := execute(t, "runs", "deadbeef", "-c", cfg); err == nil {
		t.Fatal("expected not-found for an unknown run id")
	}
}

func TestShiftCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	path := filepath.Join(dir, "data_source.json")
	m := types.Manifest{Input: "live", Clips: []types.ManifestClip{
		{Index: 1, Timestamp: "00:10:00-00:10:30", StartSec: 600, EndSec: 630},
	}}
	if err := pipeline.WriteManifest(path, m); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "shift", path, "--ref", "00:05:00", "--target", "00:04:00", "-c", cfg)
	if err != nil {
		t.Fatalf("shift: %v", err)
	}
	if !strings.Contains(out, "shifted 1 clip(s) by -1m0s") {
		t.Fatalf("output = %q", out)
	}
	got, err := pipeline.ReadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Clips[0].Timestamp != "00:09:00-00:09:30" {
		t.Fatalf("timestamp = %q", got.Clips[0].Timestamp)
	}

	if _, err := execute(t, "shift", path, "--ref", "nine", "--target", "00:04:00", "-c", cfg); err == nil || !strings.Contains(err.Error(), "--ref") {
		t.Fatalf("bad ref err = %v", err)
	}
}

func TestRenderTable(t *testing.T) {
	got := renderTable(
		[]string{"#", "Title"},
		[][]string{{"1", "名场面"}, {"12"}},
		[]columnAlignment{alignRight, alignLeft},
	)
	for _, want := range []string{"#", "Title", "名场面", "12"} {
		if !strings.Contains(got, want) {
			t.Fatalf("table missing %q:\n%s", want, got)
		}
	}
	if !strings.Contains(got, "╭") {
		t.Fatalf("expected rounded style:\n%s", got)
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("empty headers should render nothing")
	}
}

func TestShouldColorizeHonoursNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if shouldColorize(os.Stdout) {
		t.Fatal("NO_COLOR must disable colour")
	}
	if shouldColorize(&bytes.Buffer{}) {
		t.Fatal("buffers are never terminals")
	}
	if paint("x", ansiRed, false) != "x" {
		t.Fatal("paint without colour must be identity")
	}
}
