package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestChmod(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "test.txt")
	if err := os.WriteFile(path, []byte("test"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Chmod(path, 0600); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("permissions = %o, want %o", perm, 0600)
		}
	}
}

func TestCopyMode(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "run.sh")
	dst := filepath.Join(tmp, "copy.sh")
	if err := os.WriteFile(src, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("#!/bin/sh\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Chmod(src, 0750); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := CopyMode(dst, info); err != nil {
		t.Fatalf("CopyMode failed: %v", err)
	}

	if runtime.GOOS != "windows" {
		got, err := os.Stat(dst)
		if err != nil {
			t.Fatal(err)
		}
		if perm := got.Mode().Perm(); perm != 0750 {
			t.Errorf("permissions = %o, want %o", perm, 0750)
		}
	}
}

func TestCopyModeMissingTarget(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Chmod is a no-op on Windows")
	}
	tmp := t.TempDir()
	info, err := os.Stat(tmp)
	if err != nil {
		t.Fatal(err)
	}
	if err := CopyMode(filepath.Join(tmp, "missing"), info); err == nil {
		t.Error("expected error for missing target")
	}
}
