// Package dashboard keeps the state of the independently loading dashboard
// panels. Every load is tied to a context and a ticket; results for a
// superseded or deactivated load are dropped instead of overwriting newer
// state.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/felixggj/happy-robot-fde/internal/telemetry"
)

// State is a snapshot of one panel. Data keeps the last successful result
// even while a reload is in flight or after a failed one.
type State[T any] struct {
	Loading   bool
	Data      T
	HasData   bool
	Err       error
	UpdatedAt time.Time
}

// Ticket identifies one load of one panel.
type Ticket uint64

type Fetcher[T any] func(ctx context.Context) (T, error)

type Panel[T any] struct {
	name  string
	fetch Fetcher[T]
	now   func() time.Time

	mu     sync.Mutex
	state  State[T]
	gen    uint64
	cancel context.CancelFunc
}

func NewPanel[T any](name string, fetch Fetcher[T]) *Panel[T] {
	return &Panel[T]{name: name, fetch: fetch, now: time.Now}
}

func (p *Panel[T]) Name() string { return p.name }

// Begin starts a new load and cancels the one in flight, if any. The
// returned context is what the fetch must run under.
func (p *Panel[T]) Begin(parent context.Context) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(parent)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
	p.gen++
	p.cancel = cancel
	p.state.Loading = true
	return ctx, Ticket(p.gen)
}

// Finish applies a result. It reports false, and changes nothing, when t is
// no longer the current ticket.
func (p *Panel[T]) Finish(t Ticket, data T, err error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if Ticket(p.gen) != t {
		return false
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.state.Loading = false
	if err != nil {
		p.state.Err = err
		return true
	}
	p.state.Data = data
	p.state.HasData = true
	p.state.Err = nil
	p.state.UpdatedAt = p.now()
	return true
}

// Deactivate cancels the load in flight and invalidates its ticket.
func (p *Panel[T]) Deactivate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.gen++
	p.state.Loading = false
}

// Load runs one full fetch cycle and returns the resulting state along with
// whether this load was the one applied.
func (p *Panel[T]) Load(ctx context.Context) (State[T], bool) {
	start := time.Now()
	fctx, t := p.Begin(ctx)
	data, err := p.fetch(fctx)
	applied := p.Finish(t, data, err)
	telemetry.ObservePanel(p.name, time.Since(start).Seconds(), err, applied)
	return p.State(), applied
}

// Fetch exposes the panel's fetcher so callers that manage tickets
// themselves can run it under a context from Begin.
func (p *Panel[T]) Fetch(ctx context.Context) (T, error) {
	return p.fetch(ctx)
}

func (p *Panel[T]) State() State[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}
