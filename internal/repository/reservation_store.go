package repository

import (
    "log"
    "sync"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/number-reservation/internal/model"
)

// ReservationStore is the single authoritative in-memory table of number
// reservations.  Every mutation (Create, Release, Purchase, Sweep) and
// every read (Snapshot) runs under one mutex, so no interleaving can
// violate the one-live-record-per-number invariant.  The lock is never
// held across I/O; callers serialize fan-out outside the store.
//
// The clock is injected so that lease expiry can be tested without
// sleeping.  Passing a nil clock selects time.Now.
type ReservationStore struct {
    mu    sync.Mutex
    items []model.Reservation // insertion order, preserved by Snapshot

    leaseDuration time.Duration
    now           func() time.Time
}

// NewReservationStore returns an empty store whose leases last for
// leaseDuration from the moment of creation.
func NewReservationStore(leaseDuration time.Duration, now func() time.Time) *ReservationStore {
    if now == nil {
        now = time.Now
    }
    return &ReservationStore{
        items:         []model.Reservation{},
        leaseDuration: leaseDuration,
        now:           now,
    }
}

// Create claims number for the given identity.  It succeeds only when no
// live record exists for the number; an expired-but-unswept lease does not
// block a new claim.  Concurrent claims racing for the same number are
// expected, so losing the race is a normal outcome reported by ok=false,
// never an error.  First writer wins: the existence check and the insert
// are one atomic step under the store mutex.
func (s *ReservationStore) Create(number int, name, email string) (model.Reservation, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()

    now := s.now().UTC()
    if existing, idx := s.find(number); idx >= 0 {
        if !existing.Expired(now) {
            return model.Reservation{}, false
        }
        // The previous lease lapsed but no sweep has run yet; drop it so
        // the number is claimable again.
        s.removeAt(idx)
    }

    r := model.Reservation{
        ID:         uuid.NewString(),
        Number:     number,
        UserName:   name,
        UserEmail:  email,
        Status:     model.StatusReserved,
        ReservedAt: now,
        ExpiresAt:  now.Add(s.leaseDuration),
    }
    s.items = append(s.items, r)
    return r, true
}

// Release frees the lease on number, but only when a reserved record
// exists and its holder email matches the caller.  A non-owner, a missing
// record or a purchased record all make this a no-op reported by false.
func (s *ReservationStore) Release(number int, email string) bool {
    s.mu.Lock()
    defer s.mu.Unlock()

    existing, idx := s.find(number)
    if idx < 0 || existing.Status != model.StatusReserved || existing.UserEmail != email {
        return false
    }
    s.removeAt(idx)
    return true
}

// Purchase converts every unexpired reserved record held by email into a
// purchased one, stamping PurchasedAt and clearing the lease deadline.
// It returns how many records were converted; zero means nothing changed
// and callers should skip the broadcast.
func (s *ReservationStore) Purchase(email string) int {
    s.mu.Lock()
    defer s.mu.Unlock()

    now := s.now().UTC()
    count := 0
    for i := range s.items {
        r := &s.items[i]
        if r.Status != model.StatusReserved || r.UserEmail != email || r.Expired(now) {
            continue
        }
        r.Status = model.StatusPurchased
        r.PurchasedAt = now
        r.ExpiresAt = time.Time{}
        count++
    }
    return count
}

// Sweep removes every reserved record whose lease deadline has passed at
// the given instant and returns the removed records for logging.
// Purchased records are never swept.
func (s *ReservationStore) Sweep(now time.Time) []model.Reservation {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.evictExpired(now.UTC())
}

// Snapshot returns a copy of all live reservations in insertion order.
// Expired leases are pruned before the copy is taken, so no caller ever
// observes a lapsed lease even between sweeper ticks.
func (s *ReservationStore) Snapshot() []model.Reservation {
    s.mu.Lock()
    defer s.mu.Unlock()

    s.evictExpired(s.now().UTC())
    out := make([]model.Reservation, len(s.items))
    copy(out, s.items)
    return out
}

// evictExpired drops lapsed leases in place and returns them.  Callers
// must hold the mutex.
func (s *ReservationStore) evictExpired(now time.Time) []model.Reservation {
    var removed []model.Reservation
    kept := s.items[:0]
    for _, r := range s.items {
        if r.Expired(now) {
            log.Printf("store: lease on number %d held by %s expired", r.Number, r.UserEmail)
            removed = append(removed, r)
            continue
        }
        kept = append(kept, r)
    }
    s.items = kept
    return removed
}

// find returns the live record for number and its index, or idx -1.
// Callers must hold the mutex.
func (s *ReservationStore) find(number int) (model.Reservation, int) {
    for i, r := range s.items {
        if r.Number == number {
            return r, i
        }
    }
    return model.Reservation{}, -1
}

// removeAt deletes the record at idx preserving order.  Callers must
// hold the mutex.
func (s *ReservationStore) removeAt(idx int) {
    s.items = append(s.items[:idx], s.items[idx+1:]...)
}
