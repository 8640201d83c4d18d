package repository

import (
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/number-reservation/internal/model"
)

// fakeClock is a manually advanced clock shared with the store under test.
type fakeClock struct {
    mu sync.Mutex
    t  time.Time
}

func newFakeClock() *fakeClock {
    return &fakeClock{t: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
    c.mu.Lock()
    defer c.mu.Unlock()
    return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
    c.mu.Lock()
    c.t = c.t.Add(d)
    c.mu.Unlock()
}

const lease = 60 * time.Second

func newTestStore() (*ReservationStore, *fakeClock) {
    clock := newFakeClock()
    return NewReservationStore(lease, clock.Now), clock
}

func TestCreateFirstWriterWins(t *testing.T) {
    store, clock := newTestStore()

    first, ok := store.Create(7, "Alice", "a@x.com")
    require.True(t, ok)
    assert.Equal(t, 7, first.Number)
    assert.Equal(t, model.StatusReserved, first.Status)
    assert.Equal(t, clock.Now(), first.ReservedAt)
    assert.Equal(t, clock.Now().Add(lease), first.ExpiresAt)
    assert.NotEmpty(t, first.ID)

    _, ok = store.Create(7, "Bob", "b@y.com")
    assert.False(t, ok, "second claim on a held number must lose")

    snap := store.Snapshot()
    require.Len(t, snap, 1)
    assert.Equal(t, "a@x.com", snap[0].UserEmail)
}

func TestCreateReclaimsExpiredLease(t *testing.T) {
    store, clock := newTestStore()

    first, ok := store.Create(3, "Alice", "a@x.com")
    require.True(t, ok)

    clock.Advance(lease + time.Second)

    second, ok := store.Create(3, "Bob", "b@y.com")
    require.True(t, ok, "an expired lease must not block a new claim")
    assert.NotEqual(t, first.ID, second.ID)

    snap := store.Snapshot()
    require.Len(t, snap, 1)
    assert.Equal(t, "b@y.com", snap[0].UserEmail)
}

func TestReleaseRequiresOwner(t *testing.T) {
    store, _ := newTestStore()

    _, ok := store.Create(5, "Alice", "a@x.com")
    require.True(t, ok)

    assert.False(t, store.Release(5, "b@y.com"), "non-owner must not release")
    require.Len(t, store.Snapshot(), 1)

    assert.True(t, store.Release(5, "a@x.com"))
    assert.Empty(t, store.Snapshot())

    assert.False(t, store.Release(5, "a@x.com"), "releasing a freed number is a no-op")
}

func TestReleaseIgnoresPurchased(t *testing.T) {
    store, _ := newTestStore()

    _, ok := store.Create(9, "Alice", "a@x.com")
    require.True(t, ok)
    require.Equal(t, 1, store.Purchase("a@x.com"))

    assert.False(t, store.Release(9, "a@x.com"), "purchased records cannot be released")
    require.Len(t, store.Snapshot(), 1)
}

func TestPurchaseConvertsOnlyCallers(t *testing.T) {
    store, clock := newTestStore()

    _, _ = store.Create(1, "Alice", "a@x.com")
    _, _ = store.Create(2, "Alice", "a@x.com")
    _, _ = store.Create(3, "Bob", "b@y.com")

    require.Equal(t, 2, store.Purchase("a@x.com"))

    for _, r := range store.Snapshot() {
        switch r.UserEmail {
        case "a@x.com":
            assert.Equal(t, model.StatusPurchased, r.Status)
            assert.Equal(t, clock.Now(), r.PurchasedAt)
            assert.True(t, r.ExpiresAt.IsZero(), "purchased records carry no lease deadline")
        case "b@y.com":
            assert.Equal(t, model.StatusReserved, r.Status)
            assert.True(t, r.PurchasedAt.IsZero())
        }
    }
}

func TestPurchaseIdempotent(t *testing.T) {
    store, _ := newTestStore()

    _, _ = store.Create(1, "Alice", "a@x.com")
    require.Equal(t, 1, store.Purchase("a@x.com"))
    assert.Equal(t, 0, store.Purchase("a@x.com"), "second purchase converts nothing")
    assert.Equal(t, 0, store.Purchase("nobody@x.com"))
}

func TestSweepRemovesExpiredReservedOnly(t *testing.T) {
    store, clock := newTestStore()

    _, _ = store.Create(7, "Alice", "a@x.com")
    require.Equal(t, 1, store.Purchase("a@x.com"))
    _, _ = store.Create(8, "Alice", "a@x.com")

    clock.Advance(lease + time.Second)

    removed := store.Sweep(clock.Now())
    require.Len(t, removed, 1)
    assert.Equal(t, 8, removed[0].Number)

    snap := store.Snapshot()
    require.Len(t, snap, 1)
    assert.Equal(t, 7, snap[0].Number)
    assert.Equal(t, model.StatusPurchased, snap[0].Status)

    assert.Empty(t, store.Sweep(clock.Now()), "nothing left to sweep")
}

func TestSnapshotPrunesExpiredLeases(t *testing.T) {
    store, clock := newTestStore()

    _, _ = store.Create(4, "Alice", "a@x.com")
    clock.Advance(lease + time.Second)

    assert.Empty(t, store.Snapshot(), "a lapsed lease is invisible even before a sweep runs")
}

func TestSnapshotPreservesInsertionOrderAndCopies(t *testing.T) {
    store, _ := newTestStore()

    for _, n := range []int{5, 1, 9} {
        _, ok := store.Create(n, "Alice", "a@x.com")
        require.True(t, ok)
    }

    snap := store.Snapshot()
    require.Len(t, snap, 3)
    assert.Equal(t, []int{5, 1, 9}, []int{snap[0].Number, snap[1].Number, snap[2].Number})

    // Mutating the copy must not leak into the store.
    snap[0].UserEmail = "evil@x.com"
    assert.Equal(t, "a@x.com", store.Snapshot()[0].UserEmail)
}

func TestConcurrentClaimsSingleWinner(t *testing.T) {
    store, _ := newTestStore()

    const claimants = 32
    var wg sync.WaitGroup
    wins := make(chan string, claimants)
    for i := 0; i < claimants; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            email := string(rune('a'+i%26)) + "@x.com"
            if _, ok := store.Create(42, "racer", email); ok {
                wins <- email
            }
        }(i)
    }
    wg.Wait()
    close(wins)

    var winners []string
    for w := range wins {
        winners = append(winners, w)
    }
    require.Len(t, winners, 1, "exactly one claimant may win the number")

    snap := store.Snapshot()
    require.Len(t, snap, 1)
    assert.Equal(t, winners[0], snap[0].UserEmail)
}
