package hub

import (
    "context"
    "log"
    "time"

    "github.com/iliyamo/number-reservation/internal/repository"
)

// Sweeper periodically evicts expired leases from the store and triggers
// a broadcast when it removed anything.  It is the only component that
// removes a lease purely because time passed.  Leases are soft bounds: a
// missed tick just delays eviction until the next one.
type Sweeper struct {
    store     *repository.ReservationStore
    interval  time.Duration
    broadcast func()
    now       func() time.Time
}

// NewSweeper builds a sweeper that fires every interval and calls
// broadcast after a tick that removed at least one lease.  A nil clock
// selects time.Now.
func NewSweeper(store *repository.ReservationStore, interval time.Duration, broadcast func(), now func() time.Time) *Sweeper {
    if now == nil {
        now = time.Now
    }
    return &Sweeper{store: store, interval: interval, broadcast: broadcast, now: now}
}

// Run ticks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
    ticker := time.NewTicker(s.interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            s.tick()
        }
    }
}

// tick performs one sweep.  A panic inside one tick must not take the
// loop down with it, so it is recovered and logged here.
func (s *Sweeper) tick() {
    defer func() {
        if r := recover(); r != nil {
            log.Printf("sweeper: tick recovered from panic: %v", r)
        }
    }()

    removed := s.store.Sweep(s.now())
    if len(removed) == 0 {
        return
    }
    for _, r := range removed {
        log.Printf("sweeper: lease on number %d held by %s evicted", r.Number, r.UserEmail)
    }
    s.broadcast()
}
