package engine

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultPoolSize bounds concurrent network work.
const DefaultPoolSize = 4

// Pool runs background work with a global concurrency bound. Go never blocks
// the caller; tasks wait for a slot on their own goroutine.
type Pool struct {
	group    errgroup.Group
	launched sync.WaitGroup
}

// NewPool builds a pool allowing size concurrent tasks.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = DefaultPoolSize
	}
	p := &Pool{}
	p.group.SetLimit(size)
	return p
}

// Go schedules task.
func (p *Pool) Go(task func()) {
	if task == nil {
		return
	}
	p.launched.Add(1)
	go func() {
		defer p.launched.Done()
		p.group.Go(func() error {
			task()
			return nil
		})
	}()
}

// Wait blocks until every scheduled task has finished. It must not race with
// Go calls from the owning goroutine.
func (p *Pool) Wait() {
	p.launched.Wait()
	_ = p.group.Wait()
}
