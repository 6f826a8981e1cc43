package client

import "sync"

// maxRetired bounds how many replaced incarnations are remembered per key.
const maxRetired = 8

// Tracker remembers, per entity key, the newest version accepted so far and
// its value. An entity deleted and recreated under the same key starts a new
// incarnation whose versions restart at 1; the incarnation string (a
// creation stamp) tells the two apart.
// INVARIANT: within one incarnation the stored version never decreases
// INVARIANT: a replaced incarnation is never accepted again
type Tracker[T any] struct {
	mu     sync.Mutex
	latest map[string]tracked[T]
}

type tracked[T any] struct {
	incarnation string
	version     int64
	value       T
	retired     []string
}

// NewTracker creates an empty Tracker.
func NewTracker[T any]() *Tracker[T] {
	return &Tracker[T]{latest: make(map[string]tracked[T])}
}

// Observe offers value at (incarnation, version) for key. It returns value
// and true when the response is current, otherwise the previously accepted
// value and false.
//
// A response is current when it belongs to the accepted incarnation with a
// version at least the accepted one, or to an incarnation never seen before,
// which replaces the accepted one.
func (t *Tracker[T]) Observe(key, incarnation string, version int64, value T) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.latest[key]
	if !ok {
		t.latest[key] = tracked[T]{incarnation: incarnation, version: version, value: value}
		return value, true
	}
	if incarnation == cur.incarnation {
		if version < cur.version {
			return cur.value, false
		}
		cur.version, cur.value = version, value
		t.latest[key] = cur
		return value, true
	}
	for _, old := range cur.retired {
		if old == incarnation {
			return cur.value, false
		}
	}
	retired := append(cur.retired, cur.incarnation)
	if len(retired) > maxRetired {
		retired = retired[len(retired)-maxRetired:]
	}
	t.latest[key] = tracked[T]{incarnation: incarnation, version: version, value: value, retired: retired}
	return value, true
}

// Version returns the highest accepted version of key, or 0.
func (t *Tracker[T]) Version(key string) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest[key].version
}

// Forget drops key, so a recreated entity is accepted whatever its stamp.
func (t *Tracker[T]) Forget(key string) {
	t.mu.Lock()
	delete(t.latest, key)
	t.mu.Unlock()
}

// Retain drops every key for which keep reports false.
// List reads use it to forget entities the server no longer returns.
func (t *Tracker[T]) Retain(keep func(key string) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key := range t.latest {
		if !keep(key) {
			delete(t.latest, key)
		}
	}
}
