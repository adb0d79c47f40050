package session

import (
	"errors"
	"sync"
)

// ErrClosed is returned when work is handed to a stopped Loop.
var ErrClosed = errors.New("session closed")

// Loop runs closures one at a time on a single goroutine. Every mutation
// of a visitor's view state goes through it.
type Loop struct {
	queue     chan func()
	done      chan struct{}
	closeOnce sync.Once
}

// NewLoop starts a loop with room for buffer pending closures.
func NewLoop(buffer int) *Loop {
	l := &Loop{
		queue: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	for {
		select {
		case fn := <-l.queue:
			fn()
		case <-l.done:
			return
		}
	}
}

// Post enqueues fn without waiting for it to run. It reports false if the
// loop is closed. Post must not be called from the loop itself when the
// queue may be full.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for it. Calling Do from inside the loop
// deadlocks.
func (l *Loop) Do(fn func()) error {
	finished := make(chan struct{})
	ok := l.Post(func() {
		defer close(finished)
		fn()
	})
	if !ok {
		return ErrClosed
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		// fn may still be running; wait unless it was dropped
		select {
		case <-finished:
			return nil
		default:
			return ErrClosed
		}
	}
}

// Close stops the loop. Queued closures that have not started are dropped.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}
