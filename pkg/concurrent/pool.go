package concurrent

import (
	"errors"
	"time"
)

// ErrScheduleTimeout returned by Pool when no worker became free during the
// given period of time.
var ErrScheduleTimeout = errors.New("schedule error: timed out")

// Pool goroutine reuse for connection handling. workers are spawned lazily
// up to the pool size, ref: https://sergey.kamardin.org/articles/million-websockets-and-go/
type Pool struct {
	sem  chan struct{}
	work chan func()
}

// NewPool creates a goroutine pool with given size, a work queue of given
// queue size, and spawns the given amount of workers immediately.
func NewPool(size, queue, spawn int) *Pool {
	if spawn <= 0 && queue > 0 {
		panic("dead queue configuration detected")
	}
	if spawn > size {
		panic("spawn > workers")
	}
	p := &Pool{
		sem:  make(chan struct{}, size),
		work: make(chan func(), queue),
	}
	for i := 0; i < spawn; i++ {
		p.sem <- struct{}{}
		go p.worker(func() {})
	}
	return p
}

// Schedule schedules task to be executed over pool's workers, blocking until
// a worker or a queue slot is free.
func (p *Pool) Schedule(task func()) {
	p.schedule(task, nil)
}

// ScheduleTimeout schedules task to be executed over pool's workers. returns
// ErrScheduleTimeout when no worker became free within timeout.
func (p *Pool) ScheduleTimeout(timeout time.Duration, task func()) error {
	return p.schedule(task, time.After(timeout))
}

func (p *Pool) schedule(task func(), timeout <-chan time.Time) error {
	select {
	case <-timeout:
		return ErrScheduleTimeout
	case p.work <- task:
		return nil
	case p.sem <- struct{}{}:
		go p.worker(task)
		return nil
	}
}

// Close stops idle workers. tasks already queued still run.
func (p *Pool) Close() {
	close(p.work)
}

func (p *Pool) worker(task func()) {
	defer func() { <-p.sem }()

	task()

	for task := range p.work {
		task()
	}
}
