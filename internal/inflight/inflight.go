// Package inflight discards Generator results that arrive after the user
// has moved on. Each request takes a token for a scope; starting a new
// request or leaving the screen supersedes it.
package inflight

import (
	"context"
	"sync"
)

// Guard tracks the current token per scope. The zero value is ready to use.
type Guard struct {
	mu      sync.Mutex
	current map[string]*Token
}

// Token identifies one request within a scope.
type Token struct {
	guard  *Guard
	scope  string
	ctx    context.Context
	cancel context.CancelFunc
}

// Begin issues a new token for scope and supersedes the previous one. The
// token's context derives from parent and is cancelled when the token is
// superseded or cancelled.
func (g *Guard) Begin(parent context.Context, scope string) *Token {
	ctx, cancel := context.WithCancel(parent)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		g.current = make(map[string]*Token)
	}
	if prev := g.current[scope]; prev != nil {
		prev.cancel()
	}
	t := &Token{guard: g, scope: scope, ctx: ctx, cancel: cancel}
	g.current[scope] = t
	return t
}

// Cancel supersedes the current token of scope, if any.
func (g *Guard) Cancel(scope string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if t := g.current[scope]; t != nil {
		t.cancel()
		delete(g.current, scope)
	}
}

// CancelAll supersedes every outstanding token.
func (g *Guard) CancelAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for scope, t := range g.current {
		t.cancel()
		delete(g.current, scope)
	}
}

// Context is cancelled once the token is superseded.
func (t *Token) Context() context.Context { return t.ctx }

func (t *Token) Scope() string { return t.scope }

// Valid reports whether t is still the current token of its scope.
func (t *Token) Valid() bool {
	t.guard.mu.Lock()
	defer t.guard.mu.Unlock()
	return t.validLocked()
}

func (t *Token) validLocked() bool {
	return t.guard.current[t.scope] == t
}

// Commit runs fn and retires the token if it is still current. It reports
// whether fn ran. fn must not call back into the guard.
func (t *Token) Commit(fn func()) bool {
	t.guard.mu.Lock()
	defer t.guard.mu.Unlock()
	if !t.validLocked() {
		return false
	}
	fn()
	delete(t.guard.current, t.scope)
	t.cancel()
	return true
}

// Release retires the token without committing, freeing its context.
func (t *Token) Release() {
	t.guard.mu.Lock()
	defer t.guard.mu.Unlock()
	if t.validLocked() {
		delete(t.guard.current, t.scope)
	}
	t.cancel()
}
