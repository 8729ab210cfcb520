package pipeline

import "sync"

// keyedLocks provides per-event-hash mutual exclusion. Entries are
// reference-counted and removed once the last holder releases, so the map
// stays bounded by the number of in-flight reports.
type keyedLocks struct {
	mu   sync.Mutex
	held map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{held: make(map[string]*keyedLock)}
}

// Acquire blocks until the lock for key is held and returns the release
// function.
func (k *keyedLocks) Acquire(key string) func() {
	k.mu.Lock()
	lock, ok := k.held[key]
	if !ok {
		lock = &keyedLock{}
		k.held[key] = lock
	}
	lock.refs++
	k.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()
		k.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(k.held, key)
		}
		k.mu.Unlock()
	}
}
