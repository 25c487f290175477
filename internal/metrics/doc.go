// Package metrics records bridge invocation and copy metrics. The Recorder
// interface keeps callers independent of the backend; NoopRecorder is the
// default when metrics are not configured.
package metrics
