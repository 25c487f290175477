package bridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// MaxRequestSize bounds a single request line.
const MaxRequestSize = 1 << 20

// Serve reads one JSON Request per line from r, dispatches each on d and
// writes one JSON Response per line to w as invocations complete, so
// responses may come back out of order. It returns when r is exhausted or
// ctx is done, after every accepted invocation has been answered.
func Serve(ctx context.Context, r io.Reader, w io.Writer, d *Dispatcher) error {
	var (
		mu       sync.Mutex
		writeErr error
		pending  sync.WaitGroup
	)
	enc := json.NewEncoder(w)
	write := func(resp Response) {
		mu.Lock()
		defer mu.Unlock()
		if writeErr != nil {
			return
		}
		writeErr = enc.Encode(resp)
	}

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), MaxRequestSize)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				continue
			}

			var req Request
			if err := json.Unmarshal(line, &req); err != nil {
				write(failure("", fmt.Errorf("malformed request: %w", err)))
				continue
			}

			f := d.Invoke(req)
			pending.Add(1)
			go func() {
				defer pending.Done()
				write(f.Wait())
			}()
		}
	}

	pending.Wait()

	var err error
	select {
	case err = <-readErr:
	default:
	}
	if err != nil {
		return fmt.Errorf("reading requests: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if writeErr != nil {
		return fmt.Errorf("writing responses: %w", writeErr)
	}
	return nil
}
