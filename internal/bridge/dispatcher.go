package bridge

import (
	"fmt"
	"sync"
	"time"

	"github.com/agentx-labs/copybridge/internal/logfields"
	"github.com/agentx-labs/copybridge/internal/metrics"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
)

const (
	DefaultWorkers   = 4
	DefaultQueueSize = 64
)

// DispatcherOptions configures a Dispatcher. Zero values pick defaults.
type DispatcherOptions struct {
	Workers   int
	QueueSize int
	Logger    *logrus.Logger
	Recorder  metrics.Recorder
}

// Dispatcher runs invocations on a fixed set of background workers.
// Invoke never blocks; each invocation runs to completion on one worker.
type Dispatcher struct {
	registry *Registry
	log      *logrus.Entry
	recorder metrics.Recorder
	queue    chan *task
	workers  *pool.Pool

	mu     sync.RWMutex
	closed bool
}

type task struct {
	req      Request
	future   *Future
	enqueued time.Time
}

// NewDispatcher starts the workers. Call Close to stop them.
func NewDispatcher(reg *Registry, opts DispatcherOptions) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}

	d := &Dispatcher{
		registry: reg,
		log:      logrus.NewEntry(opts.Logger),
		recorder: opts.Recorder,
		queue:    make(chan *task, opts.QueueSize),
		workers:  pool.New().WithMaxGoroutines(opts.Workers),
	}
	for i := 0; i < opts.Workers; i++ {
		d.workers.Go(d.work)
	}
	d.log.WithField(logfields.KeyWorkers, opts.Workers).Debug("dispatcher started")
	return d
}

// Invoke queues req and returns its Future. A full queue or a closed
// dispatcher resolves the Future immediately with a failure.
func (d *Dispatcher) Invoke(req Request) *Future {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	f := newFuture(req.ID)

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		f.resolve(failure(req.ID, ErrClosed))
		return f
	}

	d.recorder.IncInflight()
	select {
	case d.queue <- &task{req: req, future: f, enqueued: time.Now()}:
	default:
		d.recorder.DecInflight()
		d.recorder.ObserveInvocation(d.metricLabel(req.Command), 0, metrics.ResultBusy)
		d.log.WithFields(logfields.Invocation(req.ID, req.Command)).Warn("queue full, rejecting invocation")
		f.resolve(failure(req.ID, ErrBusy))
	}
	return f
}

// Close stops accepting invocations, lets queued ones finish and waits for the workers.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.workers.Wait()
	d.log.Debug("dispatcher stopped")
}

func (d *Dispatcher) work() {
	for t := range d.queue {
		d.run(t)
	}
}

func (d *Dispatcher) run(t *task) {
	log := d.log.WithFields(logfields.Invocation(t.req.ID, t.req.Command))
	resp := d.execute(t.req, log)
	t.future.resolve(resp)

	d.recorder.DecInflight()
	result := metrics.ResultSuccess
	if !resp.OK {
		result = metrics.ResultFailure
	}
	elapsed := time.Since(t.enqueued)
	d.recorder.ObserveInvocation(d.metricLabel(t.req.Command), elapsed, result)
	log.WithFields(logfields.Duration(elapsed)).WithField("ok", resp.OK).Debug("invocation resolved")
}

func (d *Dispatcher) execute(req Request, log *logrus.Entry) Response {
	cmd, err := d.registry.resolve(req)
	if err != nil {
		log.WithFields(logfields.Error(err)).Warn("invocation rejected")
		return failure(req.ID, err)
	}

	var (
		payload any
		herr    error
		pc      panics.Catcher
	)
	pc.Try(func() {
		payload, herr = cmd.Handler(&Invocation{
			ID:      req.ID,
			Command: req.Command,
			Args:    req.Args,
			Log:     log,
		})
	})
	if r := pc.Recovered(); r != nil {
		log.WithField("stack", string(r.Stack)).Errorf("command panicked: %v", r.Value)
		return failure(req.ID, fmt.Errorf("command %s panicked: %v", req.Command, r.Value))
	}
	if herr != nil {
		return failure(req.ID, herr)
	}
	return success(req.ID, payload)
}

// metricLabel keeps unregistered names out of metric labels.
func (d *Dispatcher) metricLabel(name string) string {
	if _, ok := d.registry.Lookup(name); ok {
		return name
	}
	return "unknown"
}
