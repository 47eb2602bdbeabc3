package booking

import (
	"context"
	"sync"
)

// MutexLocker is the single-process EventLocker: one mutex per event ID.
// Lock blocks until the event is free, so acquisition always succeeds.
// Multi-instance deployments use the redis locker instead.
type MutexLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMutexLocker() *MutexLocker {
	return &MutexLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *MutexLocker) Lock(ctx context.Context, eventID, ownerID string) (bool, error) {
	l.mu.Lock()
	m, ok := l.locks[eventID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[eventID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return true, nil
}

func (l *MutexLocker) Unlock(ctx context.Context, eventID, ownerID string) error {
	l.mu.Lock()
	m, ok := l.locks[eventID]
	l.mu.Unlock()
	if ok {
		m.Unlock()
	}
	return nil
}
