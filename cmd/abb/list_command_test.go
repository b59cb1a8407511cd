package main

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"abb/internal/manifest"
	"abb/internal/testsupport"
)

func TestListPrintsManifest(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := testsupport.WriteMediaFiles(t, filepath.Join(env.baseDir, "book"),
		"b-JXCDcGmuibo.m4a", "a.mp3", "notes.txt", ".hidden.mp3")

	stdout, _, err := runCLI(t, []string{"list", dir}, env.configPath)
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if stdout != "a.mp3\nb.m4a\n" {
		t.Fatalf("unexpected manifest %q", stdout)
	}
}

func TestListWritesFile(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := testsupport.WriteMediaFiles(t, filepath.Join(env.baseDir, "book"), "02.mp3", "01.mp3")
	target := filepath.Join(dir, "list.txt")

	stdout, _, err := runCLI(t, []string{"list", dir, "-o", target}, env.configPath)
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if stdout != "" {
		t.Fatalf("expected empty stdout, got %q", stdout)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if string(data) != "01.mp3\n02.mp3\n" {
		t.Fatalf("unexpected manifest %q", data)
	}
}

func TestListArchive(t *testing.T) {
	env := setupCLITestEnv(t)
	archivePath := filepath.Join(env.baseDir, "book.zip")
	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	zw := zip.NewWriter(f)
	for _, name := range []string{"disc/02-AbCdEfGhIjK.mp3", "disc/01.mp3", "cover.jpg"} {
		if _, err := zw.Create(name); err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	f.Close()

	stdout, _, err := runCLI(t, []string{"list", archivePath}, env.configPath)
	if err != nil {
		t.Fatalf("list archive returned error: %v", err)
	}
	if stdout != "01.mp3\n02.mp3\n" {
		t.Fatalf("unexpected archive manifest %q", stdout)
	}
}

func TestListDirectoryWithArchiveExtension(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := testsupport.WriteMediaFiles(t, filepath.Join(env.baseDir, "book.zip"), "02.mp3", "01.mp3")

	stdout, _, err := runCLI(t, []string{"list", dir}, env.configPath)
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if stdout != "01.mp3\n02.mp3\n" {
		t.Fatalf("unexpected manifest %q", stdout)
	}
}

func TestListMissingDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"list", filepath.Join(env.baseDir, "missing")}, env.configPath)
	if !errors.Is(err, manifest.ErrInputNotFound) {
		t.Fatalf("expected ErrInputNotFound, got %v", err)
	}
}
