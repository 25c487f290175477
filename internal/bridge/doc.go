// Package bridge is the command-invocation boundary between a frontend and
// the backend operations it may trigger. Commands live in a Registry keyed by
// name; a Dispatcher runs them on background workers and hands the caller a
// Future that resolves exactly once with a Response. Failures cross the
// boundary as text only. Serve exposes a Dispatcher over a JSON-lines stream
// so a GUI shell can spawn the bridge as a child process.
package bridge
