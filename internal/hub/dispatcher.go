package hub

import (
    "context"
    "encoding/json"
    "log"
    "sync"
    "time"

    "github.com/iliyamo/number-reservation/internal/protocol"
    "github.com/iliyamo/number-reservation/internal/queue"
    "github.com/iliyamo/number-reservation/internal/repository"
)

// Dispatcher interprets inbound client frames, applies the one permitted
// transition on the reservation store and fans the fresh snapshot out
// when something actually changed.  Invalid transitions are silent
// no-ops; malformed frames are logged and dropped with the connection
// left open.
type Dispatcher struct {
    store *repository.ReservationStore
    hub   *Hub

    // broadcastMu keeps snapshot-taking and fan-out one atomic step, so
    // concurrent state changes cannot deliver an older snapshot after a
    // newer one to the same client.
    broadcastMu sync.Mutex

    // Publish, when set, receives a best-effort telemetry event after a
    // successful purchase.  It runs on its own goroutine and its error
    // is only logged.
    Publish func(ctx context.Context, ev queue.ReservationPurchasedEvent) error
}

// NewDispatcher wires the dispatcher to its store and hub.
func NewDispatcher(store *repository.ReservationStore, h *Hub) *Dispatcher {
    return &Dispatcher{store: store, hub: h}
}

// HandleFrame processes one inbound frame from the given client.  It
// never panics outward and never closes the connection; a broken frame
// costs nothing but a log line.
func (d *Dispatcher) HandleFrame(c *Client, frame []byte) {
    defer func() {
        if r := recover(); r != nil {
            log.Printf("dispatch: recovered from panic: %v", r)
        }
    }()

    session, ok := d.hub.Lookup(c)
    if !ok {
        log.Printf("dispatch: frame from unregistered connection dropped")
        return
    }

    var env protocol.Envelope
    if err := json.Unmarshal(frame, &env); err != nil {
        log.Printf("dispatch: malformed frame from %s: %v", session.UserEmail, err)
        return
    }

    switch env.Type {
    case protocol.TypeToggleNumberReservation:
        var body protocol.TogglePayload
        if err := json.Unmarshal(env.Payload, &body); err != nil {
            log.Printf("dispatch: malformed toggle payload from %s: %v", session.UserEmail, err)
            return
        }
        d.toggle(session.UserName, session.UserEmail, body.Number)
    case protocol.TypePurchaseMyReservations:
        d.purchase(session.UserName, session.UserEmail)
    default:
        // Unknown types are a forward-compatible no-op.
        log.Printf("dispatch: ignoring unknown frame type %q from %s", env.Type, session.UserEmail)
    }
}

// toggle flips the caller's claim on a number: free → reserve, own lease
// → release, anything else → no-op without a broadcast.
func (d *Dispatcher) toggle(name, email string, number int) {
    if d.store.Release(number, email) {
        log.Printf("dispatch: number %d released by %s", number, email)
        d.BroadcastReservations()
        return
    }
    if _, ok := d.store.Create(number, name, email); ok {
        log.Printf("dispatch: number %d reserved by %s", number, email)
        d.BroadcastReservations()
        return
    }
    log.Printf("dispatch: toggle of number %d by %s ignored", number, email)
}

// purchase converts all of the caller's leases.  Nothing converted means
// nothing to announce.
func (d *Dispatcher) purchase(name, email string) {
    count := d.store.Purchase(email)
    if count == 0 {
        log.Printf("dispatch: no reservations to purchase for %s", email)
        return
    }
    log.Printf("dispatch: %d reservation(s) purchased by %s", count, email)
    d.BroadcastReservations()

    if d.Publish != nil {
        ev := queue.ReservationPurchasedEvent{
            UserName:    name,
            UserEmail:   email,
            Count:       count,
            PurchasedAt: time.Now().UTC().Format(time.RFC3339),
        }
        go func() {
            if err := d.Publish(context.Background(), ev); err != nil {
                log.Printf("dispatch: purchase event publish failed: %v", err)
            }
        }()
    }
}

// BroadcastReservations fans the current snapshot out to every client.
// Snapshot and fan-out run under one mutex so every client observes
// snapshots in the order they were taken.
func (d *Dispatcher) BroadcastReservations() {
    d.broadcastMu.Lock()
    defer d.broadcastMu.Unlock()

    frame, err := protocol.Encode(protocol.TypeReservationsUpdated, protocol.ProjectReservations(d.store.Snapshot()))
    if err != nil {
        log.Printf("dispatch: encode reservations failed: %v", err)
        return
    }
    d.hub.Broadcast(frame)
}

// BroadcastOnlineUsers fans the distinct set of connected emails out to
// every client.  Called by the transport on connect and disconnect.
// Serialized for the same reason as BroadcastReservations.
func (d *Dispatcher) BroadcastOnlineUsers() {
    d.broadcastMu.Lock()
    defer d.broadcastMu.Unlock()

    frame, err := protocol.Encode(protocol.TypeOnlineUsersUpdated, d.hub.OnlineEmails())
    if err != nil {
        log.Printf("dispatch: encode online users failed: %v", err)
        return
    }
    d.hub.Broadcast(frame)
}
