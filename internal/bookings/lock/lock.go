// Package lock serializes the check-then-insert of a booking per room.
package lock

import (
	"context"
	"errors"
	"sync"
)

var ErrNotAcquired = errors.New("room lock not acquired")

// ReleaseFunc gives the lock back. Calling it more than once is a no-op.
type ReleaseFunc func()

type RoomLocker interface {
	Acquire(ctx context.Context, roomID string) (ReleaseFunc, error)
}

func once(fn func()) ReleaseFunc {
	var o sync.Once
	return func() { o.Do(fn) }
}

// Chain acquires lockers in order and releases them in reverse order.
// If a later locker fails the ones already held are released.
func Chain(lockers ...RoomLocker) RoomLocker {
	return chain(lockers)
}

type chain []RoomLocker

func (c chain) Acquire(ctx context.Context, roomID string) (ReleaseFunc, error) {
	held := make([]ReleaseFunc, 0, len(c))
	releaseAll := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i]()
		}
	}

	for _, l := range c {
		release, err := l.Acquire(ctx, roomID)
		if err != nil {
			releaseAll()
			return nil, err
		}
		held = append(held, release)
	}
	return once(releaseAll), nil
}
