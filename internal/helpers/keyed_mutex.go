package helpers

import "sync"

// KeyedMutex serializes work per key. Different keys proceed in parallel.
// Entries are reference counted and dropped once no goroutine holds or
// waits on them, so the map does not grow with every key ever seen.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex creates an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedEntry)}
}

// Lock acquires the lock for key and returns the matching unlock function.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyedEntry{}
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

// WithLock runs fn while holding the lock for key.
func (k *KeyedMutex) WithLock(key string, fn func() error) error {
	unlock := k.Lock(key)
	defer unlock()
	return fn()
}
