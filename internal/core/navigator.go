package core

import (
	"sync"

	"floatchat.com/core/internal/page"
)

// Navigator is the single source of truth for the active page. The guard rule
// is a pure function of (current page, session.authenticated) and re-applies
// after every navigation and after every session change, so a logout while
// viewing a protected page also redirects to login.
type Navigator struct {
	mu      sync.Mutex
	current page.PageID
	session *SessionStore
	notify  func()
}

func NewNavigator(session *SessionStore, notify func()) *Navigator {
	n := &Navigator{
		current: page.Home,
		session: session,
		notify:  notify,
	}
	session.Subscribe(func(bool) { n.reapplyGuard() })
	return n
}

// Navigate sets the current page to the target, coercing unknown identifiers
// to home, then re-evaluates the guard. Returns the resolved page.
func (n *Navigator) Navigate(target string) page.PageID {
	p := page.Parse(target)

	n.mu.Lock()
	n.current = p
	n.applyGuardLocked()
	resolved := n.current
	n.mu.Unlock()

	n.changed()
	return resolved
}

func (n *Navigator) Current() page.PageID {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *Navigator) reapplyGuard() {
	n.mu.Lock()
	before := n.current
	n.applyGuardLocked()
	moved := n.current != before
	n.mu.Unlock()

	if moved {
		n.changed()
	}
}

func (n *Navigator) applyGuardLocked() {
	if n.current.Protected() && !n.session.Authenticated() {
		n.current = page.Login
	}
}

func (n *Navigator) changed() {
	if n.notify != nil {
		n.notify()
	}
}
