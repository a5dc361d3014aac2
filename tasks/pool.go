// Package tasks runs long filesystem jobs (compress, extract) on a fixed
// set of worker goroutines with a bounded queue. Every task can be
// cancelled and reports a structured outcome to a completion callback.
package tasks

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrQueueFull = errors.New("task queue is full")
	ErrClosed    = errors.New("task pool is closed")
	ErrNotFound  = errors.New("no such task")
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Func is the body of a task. Its return value is passed through to the
// completion callback untouched.
type Func func(ctx context.Context) (any, error)

// Task is a snapshot of one submitted job.
type Task struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Status     Status    `json:"status"`
	Result     any       `json:"result,omitempty"`
	Error      string    `json:"error,omitempty"`
	Err        error     `json:"-"`
	SubmitAt   time.Time `json:"submittedAt"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

// Done reports whether the task has reached a final state.
func (t Task) Done() bool {
	return t.Status == StatusSucceeded || t.Status == StatusFailed || t.Status == StatusCancelled
}

type job struct {
	task   *Task
	fn     Func
	ctx    context.Context
	cancel context.CancelFunc
}

// Config sizes a pool.
type Config struct {
	Workers   int
	QueueSize int
	// Keep bounds how many finished tasks are remembered for List.
	Keep int
}

type Pool struct {
	mu       sync.Mutex
	jobs     map[string]*job
	finished []string
	queue    chan *job
	wg       sync.WaitGroup
	inflight sync.WaitGroup
	closed   bool
	keep     int
	onDone   func(Task)
	metrics  *Metrics
	baseCtx  context.Context
	stop     context.CancelFunc
}

// DefaultConcurrency returns the smaller of GOMAXPROCS and the CPU count.
func DefaultConcurrency() int {
	maxProcs := runtime.GOMAXPROCS(0)
	numCPU := runtime.NumCPU()
	if maxProcs < numCPU {
		return maxProcs
	}
	return numCPU
}

// New starts the workers. onDone is called from the worker goroutine once
// per task, after the task reaches a final state; it may be nil.
func New(cfg Config, metrics *Metrics, onDone func(Task)) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConcurrency()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Keep <= 0 {
		cfg.Keep = 100
	}

	ctx, stop := context.WithCancel(context.Background())
	p := &Pool{
		jobs:    make(map[string]*job),
		queue:   make(chan *job, cfg.QueueSize),
		keep:    cfg.Keep,
		onDone:  onDone,
		metrics: metrics,
		baseCtx: ctx,
		stop:    stop,
	}

	p.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go func() {
			defer p.wg.Done()
			for j := range p.queue {
				p.run(j)
			}
		}()
	}
	return p
}

// Submit queues fn under kind. It fails fast when the queue is full
// rather than blocking the caller.
func (p *Pool) Submit(kind string, fn Func) (Task, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return Task{}, ErrClosed
	}

	ctx, cancel := context.WithCancel(p.baseCtx)
	j := &job{
		task: &Task{
			ID:       uuid.NewString(),
			Kind:     kind,
			Status:   StatusQueued,
			SubmitAt: time.Now(),
		},
		fn:     fn,
		ctx:    ctx,
		cancel: cancel,
	}

	p.inflight.Add(1)
	select {
	case p.queue <- j:
	default:
		p.inflight.Done()
		cancel()
		p.metrics.rejected(kind)
		return Task{}, ErrQueueFull
	}

	p.jobs[j.task.ID] = j
	p.metrics.submitted(kind)
	return *j.task, nil
}

func (p *Pool) run(j *job) {
	defer p.inflight.Done()

	p.mu.Lock()
	if j.ctx.Err() != nil {
		p.mu.Unlock()
		p.finish(j, nil, j.ctx.Err())
		return
	}
	j.task.Status = StatusRunning
	p.mu.Unlock()

	p.metrics.started(j.task.Kind)
	result, err := j.fn(j.ctx)
	p.metrics.stopped(j.task.Kind)

	p.finish(j, result, err)
}

func (p *Pool) finish(j *job, result any, err error) {
	j.cancel()

	p.mu.Lock()
	t := j.task
	t.Result = result
	t.Err = err
	t.FinishedAt = time.Now()
	switch {
	case err == nil:
		t.Status = StatusSucceeded
	case errors.Is(err, context.Canceled):
		t.Status = StatusCancelled
		t.Error = err.Error()
	default:
		t.Status = StatusFailed
		t.Error = err.Error()
	}
	p.finished = append(p.finished, t.ID)
	for len(p.finished) > p.keep {
		delete(p.jobs, p.finished[0])
		p.finished = p.finished[1:]
	}
	snapshot := *t
	p.mu.Unlock()

	p.metrics.completed(snapshot.Kind, snapshot.Status)
	if p.onDone != nil {
		p.onDone(snapshot)
	}
}

// Cancel asks a queued or running task to stop. A running task stops at
// its next context check.
func (p *Pool) Cancel(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	j, ok := p.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.cancel()
	return nil
}

// Get returns a snapshot of one task.
func (p *Pool) Get(id string) (Task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	j, ok := p.jobs[id]
	if !ok {
		return Task{}, false
	}
	return *j.task, true
}

// List returns snapshots of all known tasks, oldest submission first.
func (p *Pool) List() []Task {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Task, 0, len(p.jobs))
	for _, j := range p.jobs {
		out = append(out, *j.task)
	}
	sortBySubmit(out)
	return out
}

// Wait blocks until every submitted task has finished.
func (p *Pool) Wait() {
	p.inflight.Wait()
}

// Close stops accepting work, lets queued tasks drain and waits for the
// workers. Pass cancel=true to cancel everything still pending.
func (p *Pool) Close(cancel bool) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	if cancel {
		p.stop()
	}
	p.wg.Wait()
	p.stop()
}

func sortBySubmit(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].SubmitAt.Before(tasks[j].SubmitAt)
	})
}
