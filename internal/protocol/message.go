// Package protocol defines the JSON frames exchanged with clients over the
// websocket.  Every frame is an Envelope carrying a type tag and a payload;
// the server always ships the full reservation list on change rather than
// incremental diffs.
package protocol

import (
    "encoding/json"
    "time"

    "github.com/iliyamo/number-reservation/internal/model"
)

// Server → client frame types.
const (
    TypeInitialState        = "INITIAL_STATE"
    TypeReservationsUpdated = "RESERVATIONS_UPDATED"
    TypeOnlineUsersUpdated  = "ONLINE_USERS_UPDATED"
)

// Client → server frame types.  Anything else is ignored as a
// forward-compatible no-op.
const (
    TypeToggleNumberReservation = "TOGGLE_NUMBER_RESERVATION"
    TypePurchaseMyReservations  = "PURCHASE_MY_RESERVATIONS"
)

// Envelope is the bidirectional wire frame.  The payload stays raw on
// decode so each handler can bind it to its own shape.
type Envelope struct {
    Type    string          `json:"type"`
    Payload json.RawMessage `json:"payload,omitempty"`
}

// TogglePayload is the body of a TOGGLE_NUMBER_RESERVATION frame.
type TogglePayload struct {
    Number int `json:"number"`
}

// Reservation is the outbound projection of a model.Reservation.
// expires_at appears iff the record is reserved and purchased_at iff it
// is purchased; the two are never present together.
type Reservation struct {
    ID          string `json:"id"`
    Number      int    `json:"number"`
    UserName    string `json:"user_name"`
    UserEmail   string `json:"user_email"`
    Status      string `json:"status"`
    ReservedAt  string `json:"reserved_at"`
    ExpiresAt   string `json:"expires_at,omitempty"`
    PurchasedAt string `json:"purchased_at,omitempty"`
}

// ProjectReservation maps one domain record onto its wire shape.
func ProjectReservation(r model.Reservation) Reservation {
    out := Reservation{
        ID:         r.ID,
        Number:     r.Number,
        UserName:   r.UserName,
        UserEmail:  r.UserEmail,
        Status:     r.Status,
        ReservedAt: r.ReservedAt.UTC().Format(time.RFC3339),
    }
    switch r.Status {
    case model.StatusReserved:
        out.ExpiresAt = r.ExpiresAt.UTC().Format(time.RFC3339)
    case model.StatusPurchased:
        out.PurchasedAt = r.PurchasedAt.UTC().Format(time.RFC3339)
    }
    return out
}

// ProjectReservations maps a snapshot onto the wire.  The result is never
// nil so an empty table serializes as [] rather than null.
func ProjectReservations(rs []model.Reservation) []Reservation {
    out := make([]Reservation, 0, len(rs))
    for _, r := range rs {
        out = append(out, ProjectReservation(r))
    }
    return out
}

// Encode builds a ready-to-send frame of the given type around payload.
func Encode(frameType string, payload any) ([]byte, error) {
    raw, err := json.Marshal(payload)
    if err != nil {
        return nil, err
    }
    return json.Marshal(Envelope{Type: frameType, Payload: raw})
}
