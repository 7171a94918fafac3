package room

import (
	"sync"

	"github.com/RexySaragih/rapid-quack/internal/model"
)

// roomLocks serializes read-modify-write cycles per room id. Two concurrent
// transitions for the same room queue behind one mutex; transitions for
// different rooms proceed independently. Entries are reference counted so
// the map does not grow with dead rooms.
type roomLocks struct {
	mu    sync.Mutex
	locks map[model.RoomID]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[model.RoomID]*roomLock)}
}

// lock acquires the mutex for the given room and returns its release func
func (l *roomLocks) lock(id model.RoomID) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &roomLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
