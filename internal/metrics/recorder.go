package metrics

import "time"

// ResultLabel enumerates invocation outcomes for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailure ResultLabel = "failure"
	ResultBusy    ResultLabel = "busy"
)

// Recorder defines observability hooks for the dispatcher and the copy command.
type Recorder interface {
	ObserveInvocation(command string, d time.Duration, result ResultLabel)
	IncCopyError(kind string)
	AddCopied(files int, bytes int64)
	IncInflight()
	DecInflight()
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveInvocation(string, time.Duration, ResultLabel) {}
func (NoopRecorder) IncCopyError(string)                                  {}
func (NoopRecorder) AddCopied(int, int64)                                 {}
func (NoopRecorder) IncInflight()                                         {}
func (NoopRecorder) DecInflight()                                         {}
