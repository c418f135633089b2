package core

import (
	"sync"

	"floatchat.com/core/internal/page"
	"floatchat.com/core/internal/store"
)

// Snapshot is the full state exposed to presentation after every mutation:
// current page, session, and chat transcript with the pending flag.
type Snapshot struct {
	Page    page.PageID  `json:"page"`
	Session SessionState `json:"session"`
	Chat    QueryState   `json:"chat"`
}

// Coordinator composes the three state stores and fans out snapshots to push
// consumers. It holds no reference back into presentation; presentation sends
// intents in and reads snapshots out.
type Coordinator struct {
	session   *SessionStore
	navigator *Navigator
	query     *QuerySession

	mu      sync.Mutex
	subs    map[int]chan Snapshot
	nextSub int
}

func NewCoordinator(client AnswerClient) *Coordinator {
	c := &Coordinator{
		subs: make(map[int]chan Snapshot),
	}
	c.session = NewSessionStore()
	// The navigator subscribes first so the guard runs before snapshots go out.
	c.navigator = NewNavigator(c.session, c.broadcast)
	c.session.Subscribe(func(bool) { c.broadcast() })
	c.query = NewQuerySession(client, store.NewTranscriptStore(), c.broadcast)
	return c
}

// Navigate handles a navigate intent and returns the resolved page.
func (c *Coordinator) Navigate(target string) page.PageID {
	return c.navigator.Navigate(target)
}

// Login handles a login intent. A successful login lands on the dashboard.
func (c *Coordinator) Login(email, password string) bool {
	if !c.session.Login(email, password) {
		return false
	}
	c.navigator.Navigate(page.Dashboard.String())
	return true
}

// Logout clears the session and returns to the home page.
func (c *Coordinator) Logout() {
	c.session.Logout()
	c.navigator.Navigate(page.Home.String())
}

// Submit handles a submit-query intent.
func (c *Coordinator) Submit(text string) bool {
	return c.query.Submit(text)
}

func (c *Coordinator) Snapshot() Snapshot {
	return Snapshot{
		Page:    c.navigator.Current(),
		Session: c.session.Snapshot(),
		Chat:    c.query.Snapshot(),
	}
}

// Subscribe returns a channel receiving a snapshot after every mutation and a
// cancel function. Slow consumers drop snapshots rather than block mutations.
func (c *Coordinator) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	ch := make(chan Snapshot, 8)
	c.subs[id] = ch
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

// Close tears down the coordinator. A query resolution arriving afterwards
// safely no-ops.
func (c *Coordinator) Close() {
	c.query.Close()

	c.mu.Lock()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
	c.mu.Unlock()
}

func (c *Coordinator) broadcast() {
	snap := c.Snapshot()

	c.mu.Lock()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
		}
	}
	c.mu.Unlock()
}
