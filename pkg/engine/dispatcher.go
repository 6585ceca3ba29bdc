package engine

import (
	"context"
	"sync"
)

// Dispatcher marshals completions back onto the goroutine that owns the
// engine. Post is safe to call from any goroutine.
type Dispatcher interface {
	Post(fn func())
}

// Drainer runs queued completions on the calling goroutine and reports how
// many ran.
type Drainer interface {
	Drain() int
}

// LoopDispatcher feeds completions to a Run loop.
type LoopDispatcher struct {
	ch chan func()
}

// NewLoopDispatcher creates a dispatcher with the given buffer size.
func NewLoopDispatcher(buffer int) *LoopDispatcher {
	if buffer < 0 {
		buffer = 0
	}
	return &LoopDispatcher{ch: make(chan func(), buffer)}
}

func (d *LoopDispatcher) Post(fn func()) {
	if fn != nil {
		d.ch <- fn
	}
}

// Run executes completions until ctx is done.
func (d *LoopDispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-d.ch:
			fn()
		}
	}
}

// Drain runs whatever is queued without blocking.
func (d *LoopDispatcher) Drain() int {
	n := 0
	for {
		select {
		case fn := <-d.ch:
			fn()
			n++
		default:
			return n
		}
	}
}

// QueueDispatcher buffers completions until Drain is called. Used by the
// terminal runner between prompts and by tests for deterministic ordering.
type QueueDispatcher struct {
	mu    sync.Mutex
	queue []func()
}

// NewQueueDispatcher creates an empty queue.
func NewQueueDispatcher() *QueueDispatcher {
	return &QueueDispatcher{}
}

func (d *QueueDispatcher) Post(fn func()) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	d.queue = append(d.queue, fn)
	d.mu.Unlock()
}

// Len reports queued completions.
func (d *QueueDispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Drain runs queued completions in FIFO order, including any posted while
// draining.
func (d *QueueDispatcher) Drain() int {
	n := 0
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return n
		}
		fn := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()
		fn()
		n++
	}
}
