package bridge

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agentx-labs/copybridge/internal/metrics"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func rawArgs(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// fakeRecorder captures metric calls.
type fakeRecorder struct {
	mu          sync.Mutex
	results     map[string]int // "command/result"
	copyErrors  map[string]int
	files       int
	bytes       int64
	inflight    int
	maxInflight int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{results: map[string]int{}, copyErrors: map[string]int{}}
}

func (f *fakeRecorder) ObserveInvocation(command string, _ time.Duration, result metrics.ResultLabel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[command+"/"+string(result)]++
}

func (f *fakeRecorder) IncCopyError(kind string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.copyErrors[kind]++
}

func (f *fakeRecorder) AddCopied(files int, bytes int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files += files
	f.bytes += bytes
}

func (f *fakeRecorder) IncInflight() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inflight++
	if f.inflight > f.maxInflight {
		f.maxInflight = f.inflight
	}
}

func (f *fakeRecorder) DecInflight() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inflight--
}

func (f *fakeRecorder) currentInflight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inflight
}

func (f *fakeRecorder) result(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results[key]
}

// safeBuffer is a strings.Builder safe for one writer and one reader.
type safeBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (s *safeBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *safeBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}
