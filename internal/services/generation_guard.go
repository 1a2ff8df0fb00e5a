package services

import (
	"context"
	"sync"

	"go.uber.org/atomic"
)

// GenerationGuard makes overlapping calculations of the same session
// resolve to the most recently started one. Starting a calculation cancels
// the one it supersedes, and a superseded calculation can tell that its
// result is stale.
type GenerationGuard struct {
	next atomic.Uint64

	mu       sync.Mutex
	sessions map[string]*inflight
}

type inflight struct {
	gen    uint64
	cancel context.CancelFunc
}

func NewGenerationGuard() *GenerationGuard {
	return &GenerationGuard{sessions: make(map[string]*inflight)}
}

// Ticket identifies one started calculation.
type Ticket struct {
	guard   *GenerationGuard
	session string
	gen     uint64
	cancel  context.CancelFunc
}

// Begin registers a calculation for session and returns its context, which
// is cancelled as soon as a newer calculation for the same session begins.
// An empty session is never superseded.
func (g *GenerationGuard) Begin(ctx context.Context, session string) (context.Context, *Ticket) {
	ctx, cancel := context.WithCancel(ctx)
	t := &Ticket{guard: g, session: session, gen: g.next.Inc(), cancel: cancel}

	if session == "" {
		return ctx, t
	}

	g.mu.Lock()
	if prev, ok := g.sessions[session]; ok {
		prev.cancel()
	}
	g.sessions[session] = &inflight{gen: t.gen, cancel: cancel}
	g.mu.Unlock()

	return ctx, t
}

// Generation is the ticket's position in the global start order.
func (t *Ticket) Generation() uint64 { return t.gen }

// Current reports whether no newer calculation began for the session.
func (t *Ticket) Current() bool {
	if t.session == "" {
		return true
	}

	t.guard.mu.Lock()
	defer t.guard.mu.Unlock()

	cur, ok := t.guard.sessions[t.session]
	return ok && cur.gen == t.gen
}

// Done releases the ticket's context and its session slot.
func (t *Ticket) Done() {
	t.cancel()
	if t.session == "" {
		return
	}

	t.guard.mu.Lock()
	if cur, ok := t.guard.sessions[t.session]; ok && cur.gen == t.gen {
		delete(t.guard.sessions, t.session)
	}
	t.guard.mu.Unlock()
}
