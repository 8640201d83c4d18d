// Package queue defines the message payloads exchanged over the broker
// and the background consumer that turns them into an audit log.
package queue

// ReservationPurchasedEvent is published after a client converts its
// leases into purchases.  It carries enough for downstream consumers to
// log or notify without asking the server for state.
type ReservationPurchasedEvent struct {
    UserName    string `json:"user_name"`
    UserEmail   string `json:"user_email"`
    Count       int    `json:"count"`
    PurchasedAt string `json:"purchased_at"`
}
