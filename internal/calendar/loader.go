package calendar

import (
	"context"
	"sync"
	"time"
)

// Ticket identifies one month load
type Ticket struct {
	Month time.Time
	Ctx   context.Context
	gen   uint64
}

// Loader makes month loads last-result-wins. Starting a load cancels the
// previous one and only the newest ticket is accepted.
type Loader struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// Begin starts a load for month derived from parent
func (l *Loader) Begin(parent context.Context, month time.Time) Ticket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	l.cancel = cancel
	l.gen++
	return Ticket{Month: month, Ctx: ctx, gen: l.gen}
}

// Accept reports whether the ticket is still the newest load
func (l *Loader) Accept(t Ticket) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return t.gen == l.gen
}

// Stop cancels the running load
func (l *Loader) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
}
