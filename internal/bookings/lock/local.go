package lock

import (
	"context"
	"fmt"
	"sync"
)

// LocalLocker is an in-process keyed mutex. Each room gets a one-slot
// channel that lives only while someone holds or waits for it.
type LocalLocker struct {
	mu    sync.Mutex
	rooms map[string]*roomSlot
}

type roomSlot struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{rooms: make(map[string]*roomSlot)}
}

func (l *LocalLocker) Acquire(ctx context.Context, roomID string) (ReleaseFunc, error) {
	slot := l.ref(roomID)

	select {
	case slot.ch <- struct{}{}:
		return once(func() {
			<-slot.ch
			l.unref(roomID)
		}), nil
	case <-ctx.Done():
		l.unref(roomID)
		return nil, fmt.Errorf("%w: room %s: %w", ErrNotAcquired, roomID, ctx.Err())
	}
}

func (l *LocalLocker) ref(roomID string) *roomSlot {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.rooms[roomID]
	if !ok {
		slot = &roomSlot{ch: make(chan struct{}, 1)}
		l.rooms[roomID] = slot
	}
	slot.refs++
	return slot
}

func (l *LocalLocker) unref(roomID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.rooms[roomID]
	if !ok {
		return
	}
	slot.refs--
	if slot.refs == 0 {
		delete(l.rooms, roomID)
	}
}

// size is the number of rooms currently tracked.
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rooms)
}
