package eventbus

import "sync"

// Registry maps pattern keys to the registrations filed under them, in
// insertion order. A key is present only while it has at least one
// registration. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	subs  map[string][]Registration
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		subs: make(map[string][]Registration),
	}
}

// AddMethod files a registration calling receiver.method(payload) under the
// pattern's key. The method is not checked until dispatch.
func (r *Registry) AddMethod(pattern Pattern, receiver any, method string) Registration {
	reg := newMethodRegistration(pattern, receiver, method)
	r.add(reg)
	return reg
}

// AddFunc files a registration calling fn(payload) under the pattern's key.
func (r *Registry) AddFunc(pattern Pattern, fn ListenerFunc) Registration {
	reg := newFuncRegistration(pattern, fn)
	r.add(reg)
	return reg
}

func (r *Registry) add(reg Registration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := reg.pattern.Key()
	if _, ok := r.subs[key]; !ok {
		r.order = append(r.order, key)
	}
	r.subs[key] = append(r.subs[key], reg)
}

// Remove deletes the first registration equal to reg from its key. Zero or
// unknown registrations are ignored. It reports whether anything was removed.
func (r *Registry) Remove(reg Registration) bool {
	if reg.IsZero() {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := reg.pattern.Key()
	subs, ok := r.subs[key]
	if !ok {
		return false
	}

	for i, s := range subs {
		if s.Equal(reg) {
			// Copy so snapshots handed out earlier stay intact.
			rest := make([]Registration, 0, len(subs)-1)
			rest = append(rest, subs[:i]...)
			rest = append(rest, subs[i+1:]...)
			if len(rest) == 0 {
				r.deleteKey(key)
			} else {
				r.subs[key] = rest
			}
			return true
		}
	}
	return false
}

// RemoveKey deletes every registration filed under key.
// It reports whether the key was present.
func (r *Registry) RemoveKey(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[key]; !ok {
		return false
	}
	r.deleteKey(key)
	return true
}

// deleteKey must be called with mu held.
func (r *Registry) deleteKey(key string) {
	delete(r.subs, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
}

// ListenersFor returns a copy of the registrations filed under exactly key,
// in insertion order. No pattern matching is done.
func (r *Registry) ListenersFor(key string) []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := r.subs[key]
	if len(subs) == 0 {
		return nil
	}
	result := make([]Registration, len(subs))
	copy(result, subs)
	return result
}

// Last returns the most recently added registration under key.
func (r *Registry) Last(key string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := r.subs[key]
	if len(subs) == 0 {
		return Registration{}, false
	}
	return subs[len(subs)-1], true
}

// Has reports whether key has any registrations.
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.subs[key]
	return ok
}

// Keys returns the keys with registrations, oldest first.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return nil
	}
	keys := make([]string, len(r.order))
	copy(keys, r.order)
	return keys
}

// Len returns the total number of registrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, subs := range r.subs {
		n += len(subs)
	}
	return n
}

// Clear removes all registrations.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subs = make(map[string][]Registration)
	r.order = nil
}

// candidates returns the registrations to test for an announced key. With
// scan set it also returns the non-exact registrations of every other key.
func (r *Registry) candidates(key string, scan bool) []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.subs[key]
	if !scan {
		return bucket
	}

	result := bucket[:len(bucket):len(bucket)]
	for _, k := range r.order {
		if k == key {
			continue
		}
		for _, s := range r.subs[k] {
			if s.pattern.kind != PatternExact {
				result = append(result, s)
			}
		}
	}
	return result
}
