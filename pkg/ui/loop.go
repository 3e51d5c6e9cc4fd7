package ui

import (
	"context"
	"log/slog"
	"sync"
)

// Loop runs posted functions one at a time on the goroutine calling Run.
// Post never blocks and never drops: callbacks wait in a pending buffer
// until Run drains it, so store completions always reach the controller.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	closed  bool

	wake   chan struct{}
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// NewLoop creates a loop. capacity sizes the initial pending buffer.
func NewLoop(capacity int, logger *slog.Logger) *Loop {
	if capacity <= 0 {
		capacity = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		pending: make([]func(), 0, capacity),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		logger:  logger,
	}
}

// Post queues fn. It is safe from any goroutine, including loop callbacks.
// Functions posted after Close are discarded.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// drain takes the pending callbacks in post order.
func (l *Loop) drain() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fns := l.pending
	l.pending = nil
	return fns
}

// Run executes posted functions until ctx is done or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		for _, fn := range l.drain() {
			select {
			case <-l.done:
				return nil
			default:
			}
			l.execute(fn)
		}
		select {
		case <-l.wake:
		case <-l.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop callback panic", "panic", r)
		}
	}()
	fn()
}

// Pending reports how many callbacks are waiting to run.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Close stops Run and discards callbacks that have not started.
func (l *Loop) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.pending = nil
		l.mu.Unlock()
		close(l.done)
	})
}
