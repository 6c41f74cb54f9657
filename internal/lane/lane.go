// Package lane provides the single-consumer task queue backing the three
// serial execution contexts the engine's concurrency model requires
// (read, write, and user-notification): a buffered channel of closures
// drained by one goroutine, giving FIFO ordering with no busy-wait.
package lane

import (
	"errors"
	"sync"
)

// ErrLaneClosed is returned by Post after Close instead of letting the
// caller panic on a send to a closed channel.
var ErrLaneClosed = errors.New("lane: closed")

// Lane is a single-consumer task queue: tasks posted to it run, in
// submission order, on the one goroutine Lane starts at construction.
type Lane struct {
	tasks     chan func()
	closed    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New starts a Lane with the given task-queue capacity and returns it
// ready for use.
func New(capacity int) *Lane {
	l := &Lane{
		tasks:  make(chan func(), capacity),
		closed: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Lane) run() {
	defer close(l.done)
	for {
		select {
		case task, ok := <-l.tasks:
			if !ok {
				return
			}
			task()
		case <-l.closed:
			l.drain()
			return
		}
	}
}

// drain runs any tasks already queued before Close was called, then
// returns, so work submitted just before a teardown is not silently lost.
func (l *Lane) drain() {
	for {
		select {
		case task := <-l.tasks:
			task()
		default:
			return
		}
	}
}

// Post enqueues task for execution on the lane's goroutine. It returns
// ErrLaneClosed, rather than blocking forever or panicking, once Close has
// been called.
func (l *Lane) Post(task func()) error {
	select {
	case <-l.closed:
		return ErrLaneClosed
	default:
	}
	select {
	case l.tasks <- task:
		return nil
	case <-l.closed:
		return ErrLaneClosed
	}
}

// Close stops accepting new tasks and waits for the consumer goroutine to
// drain whatever was already queued and exit. Close is idempotent and safe
// to call concurrently from multiple goroutines: sync.Once, not a
// check-then-act select, guards the channel close against a double-close
// panic.
func (l *Lane) Close() {
	l.closeOnce.Do(func() { close(l.closed) })
	<-l.done
}
