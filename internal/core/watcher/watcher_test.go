package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitFor(t *testing.T, ch <-chan []string, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case paths := <-ch:
			for _, p := range paths {
				if p == want {
					return
				}
			}
		case <-deadline:
			t.Fatalf("timed out waiting for change of %s", want)
		}
	}
}

func TestNewWatcher_RejectsNilCallback(t *testing.T) {
	w, err := NewWatcher(100*time.Millisecond, nil, nil, nil)
	if err == nil {
		t.Fatal("expected error for nil callback")
	}
	if !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("expected os.ErrInvalid, got %v", err)
	}
	if w != nil {
		t.Fatal("expected nil watcher when callback is invalid")
	}
}

func TestNewWatcher_RejectsBadGlob(t *testing.T) {
	if _, err := NewWatcher(time.Millisecond, []string{"["}, nil, func([]string) {}); err == nil {
		t.Fatal("expected invalid exclude glob to fail")
	}
}

func TestWatcher(t *testing.T) {
	tmpDir := t.TempDir()

	changedFiles := make(chan []string, 8)
	w, err := NewWatcher(100*time.Millisecond, []string{"vendor"}, []string{"*Test.php"}, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{tmpDir}); err != nil {
		t.Fatal(err)
	}

	testFile := filepath.Join(tmpDir, "User.php")
	if err := os.WriteFile(testFile, []byte("<?php class User {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changedFiles, testFile, 2*time.Second)

	for _, name := range []string{"UserTest.php", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	select {
	case paths := <-changedFiles:
		t.Errorf("excluded files triggered event: %v", paths)
	case <-time.After(500 * time.Millisecond):
	}

	subdir := filepath.Join(tmpDir, "Model")
	if err := os.MkdirAll(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	subFile := filepath.Join(subdir, "Account.php")
	if err := os.WriteFile(subFile, []byte("<?php class Account {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changedFiles, subFile, 2*time.Second)
}

func TestWatcher_IgnoresOutputDir(t *testing.T) {
	tmpDir := t.TempDir()
	out := filepath.Join(tmpDir, "docs")
	if err := os.MkdirAll(out, 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(10*time.Millisecond, nil, nil, func([]string) {})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	w.Ignore(out)

	if !w.shouldExcludeDir(out) {
		t.Fatal("expected output directory to be excluded")
	}
	if !w.shouldExcludeFile(filepath.Join(out, "App", "User.php")) {
		t.Fatal("expected files below the output directory to be excluded")
	}
	if w.shouldExcludeFile(filepath.Join(tmpDir, "src", "User.php")) {
		t.Fatal("expected source file to be included")
	}
}

func TestWatcher_Extensions(t *testing.T) {
	w, err := NewWatcher(10*time.Millisecond, nil, nil, func([]string) {})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if w.shouldExcludeFile("User.php") {
		t.Fatal("expected .php to be watched by default")
	}
	w.SetExtensions([]string{"inc", " .PHTML "})
	if !w.shouldExcludeFile("User.php") {
		t.Fatal("expected .php to be excluded after replacing extensions")
	}
	if w.shouldExcludeFile("view.phtml") || w.shouldExcludeFile("legacy.inc") {
		t.Fatal("expected configured extensions to be watched")
	}
}

func TestWatcher_ContentHashing(t *testing.T) {
	tmpDir := t.TempDir()

	changedFiles := make(chan []string, 10)
	w, err := NewWatcher(50*time.Millisecond, nil, nil, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{tmpDir}); err != nil {
		t.Fatal(err)
	}

	testFile := filepath.Join(tmpDir, "Target.php")
	content := []byte("<?php class Target {}")
	if err := os.WriteFile(testFile, content, 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changedFiles, testFile, time.Second)

	if err := os.WriteFile(testFile, content, 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case paths := <-changedFiles:
		t.Errorf("received unexpected event for identical content: %v", paths)
	case <-time.After(300 * time.Millisecond):
	}

	if err := os.WriteFile(testFile, []byte("<?php class Target { public $a; }"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changedFiles, testFile, time.Second)

	if err := os.Remove(testFile); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changedFiles, testFile, time.Second)
}
