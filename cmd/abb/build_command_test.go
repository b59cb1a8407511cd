package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"abb/internal/build"
	"abb/internal/chapters"
	"abb/internal/testsupport"
)

func writeBook(t *testing.T, env *cliTestEnv) (dir, list string) {
	t.Helper()
	dir = testsupport.WriteMediaFiles(t, filepath.Join(env.baseDir, "My Book"),
		"01 Intro-JXCDcGmuibo.mp3", "02 Middle.mp3")
	list = testsupport.WriteText(t, filepath.Join(dir, "list.txt"), "01 Intro.mp3\n02 Middle.mp3\n")
	return dir, list
}

func TestBuildDirectoryWritesOutputAndHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	dir, list := writeBook(t, env)
	output := filepath.Join(env.baseDir, "out", "book.m4b")
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		t.Fatalf("mkdir output dir: %v", err)
	}

	stdout, stderr, err := runCLI(t, []string{"build", dir, "-l", list, "-o", output}, env.configPath)
	if err != nil {
		t.Fatalf("build returned error: %v (stderr %q)", err, stderr)
	}
	if !strings.Contains(stdout, "2 chapters, 00:00:04") {
		t.Fatalf("unexpected build summary %q", stdout)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if !strings.Contains(stderr, "audiobook written") {
		t.Fatalf("expected completion log on stderr, got %q", stderr)
	}

	stdout, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history returned error: %v", err)
	}
	if !strings.Contains(stdout, output) || !strings.Contains(stdout, "directory") {
		t.Fatalf("expected build in history, got %q", stdout)
	}
}

func TestCatAliasRefusesExistingOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	dir, list := writeBook(t, env)
	output := testsupport.WriteText(t, filepath.Join(env.baseDir, "book.m4b"), "old")

	_, _, err := runCLI(t, []string{"cat", dir, "-l", list, "-o", output}, env.configPath)
	if !errors.Is(err, build.ErrOutputExists) {
		t.Fatalf("expected ErrOutputExists, got %v", err)
	}
	data, _ := os.ReadFile(output)
	if string(data) != "old" {
		t.Fatalf("existing output modified: %q", data)
	}

	if _, _, err := runCLI(t, []string{"cat", dir, "-l", list, "-o", output, "--overwrite"}, env.configPath); err != nil {
		t.Fatalf("overwrite build returned error: %v", err)
	}
	data, _ = os.ReadFile(output)
	if string(data) == "old" {
		t.Fatal("expected output replaced")
	}
}

func TestBuildDryRunPrintsCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	dir, list := writeBook(t, env)
	output := filepath.Join(env.baseDir, "book.m4b")

	stdout, _, err := runCLI(t, []string{"build", dir, "-l", list, "-o", output, "--dry-run", "--no-reencode"}, env.configPath)
	if err != nil {
		t.Fatalf("dry run returned error: %v", err)
	}
	for _, want := range []string{env.ffmpeg, "-f concat", "-c copy", "-map_chapters 1"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("dry-run output missing %q: %q", want, stdout)
		}
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Fatalf("dry run must not create output, stat err %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	workDir := strings.TrimPrefix(lines[len(lines)-1], "# manifests kept in ")
	t.Cleanup(func() { os.RemoveAll(workDir) })
	if _, err := os.Stat(filepath.Join(workDir, "chapters.txt")); err != nil {
		t.Fatalf("expected chapter metadata kept: %v", err)
	}
}

func TestBuildFileModeRejectsBadChapterList(t *testing.T) {
	env := setupCLITestEnv(t)
	media := filepath.Join(env.baseDir, "talk.mp3")
	testsupport.WriteFile(t, media, 32)
	list := testsupport.WriteText(t, filepath.Join(env.baseDir, "chapters.txt"), "00:00:00 Start\n00:00:00 Again\n")

	_, _, err := runCLI(t, []string{"build", media, "-l", list, "-o", filepath.Join(env.baseDir, "talk.m4b")}, env.configPath)
	var orderErr *chapters.OrderError
	if !errors.As(err, &orderErr) {
		t.Fatalf("expected OrderError, got %v", err)
	}
	if orderErr.Line != 2 {
		t.Fatalf("expected failure on line 2, got %d", orderErr.Line)
	}
}
