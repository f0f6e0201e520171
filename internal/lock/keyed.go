package lock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// Keyed hands out one mutex per key, created on first use and dropped
// once the last holder releases it. The orchestrator uses it to
// serialize read-modify-write turns on the same simulation id.
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewKeyed returns an empty lock table.
func NewKeyed() *Keyed {
	return &Keyed{entries: make(map[string]*entry)}
}

// Acquire blocks until the lock for key is held and returns the release
// function. Release must be called exactly once, on every exit path.
func (k *Keyed) Acquire(key string) func() {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()

			k.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(k.entries, key)
			}
			k.mu.Unlock()
		})
	}
}
