//go:build integration

package integration_test

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	Root   string // allowed scope root
	Source string // populated source tree
	Dest   string // copy destination, not created
}

// setupTestEnv creates a source tree inside a temp root:
//
//	src/a.txt
//	src/b/c.txt
//	src/b/d/e.bin
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	root := t.TempDir()
	env := &testEnv{
		Root:   root,
		Source: filepath.Join(root, "src"),
		Dest:   filepath.Join(root, "dst"),
	}

	writeFile(t, filepath.Join(env.Source, "a.txt"), "alpha")
	writeFile(t, filepath.Join(env.Source, "b", "c.txt"), "charlie")
	writeFile(t, filepath.Join(env.Source, "b", "d", "e.bin"), strings.Repeat("\x00\x01", 100000))

	return env
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// writeFile creates a file and its parent directories.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertSameFile fails if the two files differ in content.
func assertSameFile(t *testing.T, want, got string) {
	t.Helper()
	w, err := os.ReadFile(want)
	if err != nil {
		t.Errorf("reading %s: %v", want, err)
		return
	}
	g, err := os.ReadFile(got)
	if err != nil {
		t.Errorf("reading %s: %v", got, err)
		return
	}
	if string(w) != string(g) {
		t.Errorf("%s differs from %s (%d vs %d bytes)", got, want, len(g), len(w))
	}
}
