package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Guard serializes operations per account. Each account gets a one-slot
// channel acting as a mutex; multi-account operations always acquire in
// sorted ID order, so two opposed transfers cannot deadlock each other.
type Guard struct {
	mu      sync.Mutex
	locks   map[uuid.UUID]chan struct{}
	timeout time.Duration
}

// DefaultLockTimeout bounds how long an operation waits for a contended
// account before reporting busy.
const DefaultLockTimeout = 3 * time.Second

// NewGuard creates a guard with the given lock acquisition timeout. A
// non-positive timeout falls back to the default.
func NewGuard(timeout time.Duration) *Guard {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	return &Guard{
		locks:   make(map[uuid.UUID]chan struct{}),
		timeout: timeout,
	}
}

func (g *Guard) lockFor(id uuid.UUID) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()

	lock, ok := g.locks[id]
	if !ok {
		lock = make(chan struct{}, 1)
		g.locks[id] = lock
	}
	return lock
}

// Acquire takes the locks for the given accounts, in sorted order, and
// returns a release function. If any lock cannot be taken before the timeout
// or context cancellation, already-held locks are released and a busy error
// is returned.
func (g *Guard) Acquire(ctx context.Context, ids ...uuid.UUID) (func(), error) {
	ordered := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			ordered = append(ordered, id)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].String() < ordered[j].String()
	})

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	held := make([]chan struct{}, 0, len(ordered))
	releaseHeld := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	for _, id := range ordered {
		lock := g.lockFor(id)
		select {
		case lock <- struct{}{}:
			held = append(held, lock)
		case <-timer.C:
			releaseHeld()
			return nil, NewError(KindBusy, "account is busy, try again")
		case <-ctx.Done():
			releaseHeld()
			return nil, WrapError(KindBusy, "operation cancelled while waiting for account", ctx.Err())
		}
	}

	var once sync.Once
	return func() {
		once.Do(releaseHeld)
	}, nil
}
