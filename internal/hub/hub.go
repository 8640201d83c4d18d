// Package hub contains the realtime core of the service: the session
// registry with its fan-out, the dispatcher that applies inbound client
// frames to the reservation store, and the sweeper that evicts expired
// leases on a timer.
package hub

import (
    "sort"
    "sync"

    "github.com/samber/lo"

    "github.com/iliyamo/number-reservation/internal/model"
)

// Hub tracks every live connection together with the identity it was
// opened with and fans frames out to all of them.  Delivery is
// best-effort: a client whose buffer is full is skipped, never retried,
// never queued elsewhere.
type Hub struct {
    mu       sync.RWMutex
    sessions map[*Client]model.Session
}

// New returns an empty hub.
func New() *Hub {
    return &Hub{sessions: make(map[*Client]model.Session)}
}

// Register adds a client under the given identity and queues the frame
// built by welcome as its very first one.  The closure runs under the
// registry lock, in the same critical section that inserts the session:
// no concurrent Broadcast can slip a frame in front of the welcome, and
// no state change can land between the welcome snapshot and the moment
// the client starts receiving broadcasts.  A change broadcast before
// this lock is already inside the welcome; one broadcast after it
// reaches the client directly.
func (h *Hub) Register(c *Client, session model.Session, welcome func() []byte) {
    h.mu.Lock()
    defer h.mu.Unlock()
    h.sessions[c] = session
    if welcome != nil {
        if frame := welcome(); frame != nil {
            c.enqueue(frame)
        }
    }
}

// Unregister drops the client and closes its send channel, which stops
// its write pump.  Safe to call twice.
func (h *Hub) Unregister(c *Client) {
    h.mu.Lock()
    defer h.mu.Unlock()
    if _, ok := h.sessions[c]; !ok {
        return
    }
    delete(h.sessions, c)
    close(c.send)
}

// Lookup resolves the identity a connection was registered with.  A
// frame from an unregistered connection is a protocol violation that the
// dispatcher logs.
func (h *Hub) Lookup(c *Client) (model.Session, bool) {
    h.mu.RLock()
    defer h.mu.RUnlock()
    s, ok := h.sessions[c]
    return s, ok
}

// OnlineEmails returns the distinct emails across all live sessions,
// sorted for stable presence payloads.  Multiple tabs of the same person
// count once.
func (h *Hub) OnlineEmails() []string {
    h.mu.RLock()
    emails := make([]string, 0, len(h.sessions))
    for _, s := range h.sessions {
        emails = append(emails, s.UserEmail)
    }
    h.mu.RUnlock()

    emails = lo.Uniq(emails)
    sort.Strings(emails)
    return emails
}

// Broadcast offers frame to every live client.  Clients that cannot take
// it right now are skipped; the hub never blocks on a slow consumer.
func (h *Hub) Broadcast(frame []byte) {
    h.mu.RLock()
    defer h.mu.RUnlock()
    for c := range h.sessions {
        c.enqueue(frame)
    }
}
