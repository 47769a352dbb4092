package service

import "sync"

// keyedMutex serializes mutating operations per room id. Operations on
// different rooms proceed fully in parallel; there is no global lock.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*roomEntry
}

type roomEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[string]*roomEntry),
	}
}

// Lock blocks until the caller holds the exclusive scope for key. The
// returned func releases it and must run on every exit path.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &roomEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
