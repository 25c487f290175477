package bridge

import (
	"context"
	"sync"
)

// Future is a handle on an invocation that resolves exactly once.
type Future struct {
	id   string
	done chan struct{}
	once sync.Once
	resp Response
}

func newFuture(id string) *Future {
	return &Future{id: id, done: make(chan struct{})}
}

// resolve sets the response. Later calls are ignored and report false.
func (f *Future) resolve(resp Response) bool {
	resolved := false
	f.once.Do(func() {
		f.resp = resp
		close(f.done)
		resolved = true
	})
	return resolved
}

// ID returns the invocation ID.
func (f *Future) ID() string { return f.id }

// Done is closed once the response is available.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the invocation finishes.
func (f *Future) Wait() Response {
	<-f.done
	return f.resp
}

// Await is Wait bounded by ctx. Giving up does not stop the invocation.
func (f *Future) Await(ctx context.Context) (Response, error) {
	select {
	case <-f.done:
		return f.resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}
