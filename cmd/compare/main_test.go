package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const run = "alpha beta gamma delta epsilon zeta eta"

const wantReport = "[FILE1-1] one two three alpha beta gamma delta epsilon zeta eta four five\n" +
	"[FILE2-1] x alpha beta gamma delta epsilon zeta eta y\n\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func inputs(t *testing.T) (string, string, string) {
	t.Helper()
	dir := t.TempDir()
	file1 := writeFile(t, dir, "a.txt", "one two three "+run+" four five\n")
	file2 := writeFile(t, dir, "b.txt", "x "+run+" y\n")
	return dir, file1, file2
}

func TestCompareFiles(t *testing.T) {
	_, file1, file2 := inputs(t)

	stdout, _, err := execute(t, "", file1, file2)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if stdout != wantReport {
		t.Fatalf("unexpected report:\n got %q\nwant %q", stdout, wantReport)
	}
}

func TestCompareReadsMissingFileFromStdin(t *testing.T) {
	_, file1, _ := inputs(t)

	stdout, _, err := execute(t, "x "+run+" y\n", file1, "-")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if stdout != wantReport {
		t.Fatalf("unexpected report:\n got %q\nwant %q", stdout, wantReport)
	}
}

func TestCompareWritesOutfile(t *testing.T) {
	dir, file1, file2 := inputs(t)
	outfile := filepath.Join(dir, "report.txt")

	stdout, _, err := execute(t, "", file1, file2, outfile)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if stdout != "" {
		t.Fatalf("nothing should go to stdout, got %q", stdout)
	}
	got, err := os.ReadFile(outfile)
	if err != nil {
		t.Fatalf("read outfile: %v", err)
	}
	if string(got) != wantReport {
		t.Fatalf("unexpected outfile:\n got %q\nwant %q", got, wantReport)
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	dir, file1, file2 := inputs(t)
	configPath := writeFile(t, dir, "textaegis.toml", "[matching]\nthreshold = 20\n")

	stdout, stderr, err := execute(t, "", "--config", configPath, file1, file2)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if stdout != "" {
		t.Fatalf("an unreachable threshold should report nothing, got %q", stdout)
	}
	if !strings.Contains(stderr, "No matches found") {
		t.Fatalf("expected a no-match notice, got %q", stderr)
	}

	stdout, _, err = execute(t, "", "--config", configPath, "-t", "6", file1, file2)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if stdout != wantReport {
		t.Fatalf("flag should win over the file:\n got %q\nwant %q", stdout, wantReport)
	}
}

func TestSummaryTable(t *testing.T) {
	_, file1, file2 := inputs(t)

	_, stderr, err := execute(t, "", "--summary", file1, file2)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	for _, want := range []string{"FILE1", "FILE2", "similarity", "risk", "cache hits/misses"} {
		if !strings.Contains(stderr, want) {
			t.Fatalf("summary lacks %q:\n%s", want, stderr)
		}
	}
}

func TestCompareErrors(t *testing.T) {
	_, file1, file2 := inputs(t)

	tests := []struct {
		name string
		args []string
	}{
		{"zero range", []string{"-r", "0", file1, file2}},
		{"huge partition range", []string{"-r", "9223372036854775807", "--strategy", "partition", file1, file2}},
		{"negative exclude", []string{"--exclude=-1", file1, file2}},
		{"unknown strategy", []string{"--strategy", "spiral", file1, file2}},
		{"missing file", []string{filepath.Join(t.TempDir(), "nope.txt"), file2}},
		{"too many args", []string{file1, file2, "out.txt", "extra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, "", tt.args...); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
