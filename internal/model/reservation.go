package model

import "time"

// Reservation status values.  A number starts its life as StatusReserved
// (a time-limited lease) and either disappears when the lease expires or
// is converted to StatusPurchased.  Purchased is terminal: no transition
// out of it exists.
const (
    StatusReserved  = "reserved"
    StatusPurchased = "purchased"
)

// Reservation represents the live claim on a single number.  At most one
// live record exists per number at any instant; the store enforces this.
//
// Fields:
//  ID          – opaque unique identifier, assigned at creation, never reused.
//  Number      – the number being claimed.
//  UserName    – display name of the claimant.
//  UserEmail   – identity key; the only credential authorizing release
//                and purchase of this record.  Never changes after creation.
//  Status      – StatusReserved or StatusPurchased.
//  ReservedAt  – creation timestamp, immutable.
//  ExpiresAt   – lease deadline; meaningful only while Status is
//                StatusReserved, zero once purchased.
//  PurchasedAt – conversion timestamp; zero until purchased.
type Reservation struct {
    ID          string    // unique reservation id
    Number      int       // claimed number
    UserName    string    // claimant display name
    UserEmail   string    // claimant identity key
    Status      string    // reserved | purchased
    ReservedAt  time.Time // when the lease was taken
    ExpiresAt   time.Time // when the lease lapses (reserved only)
    PurchasedAt time.Time // when the record was purchased (purchased only)
}

// Expired reports whether the lease has lapsed at the given instant.
// Purchased records never expire.
func (r Reservation) Expired(now time.Time) bool {
    return r.Status == StatusReserved && !r.ExpiresAt.After(now)
}
